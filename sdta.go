package sf2

import (
	"encoding/binary"
	"fmt"
	"io"
)

// sdtaInfo records where the raw sample data lives in the file. No sample
// bytes are read here, spec.md §4.3 - only chunk headers.
type sdtaInfo struct {
	smplPos, smplSize   int64
	sm24Pos, sm24Size   int64
	hasSm24             bool
}

// ceilHalfEven computes ceil(n/2) then rounds that up to the next even
// number, the expected sm24 chunk size for a smpl chunk of size n.
func ceilHalfEven(n int64) int64 {
	half := (n + 1) / 2
	if half%2 != 0 {
		half++
	}
	return half
}

// readSDTA reads the sdta LIST body (the "sdta" form-type tag has already
// been consumed by the caller) up to endPos, the absolute file offset one
// past the end of the sdta LIST's data.
func readSDTA(r FileCallbacks, endPos int64, version Info) (*sdtaInfo, error) {
	info := &sdtaInfo{}

	ck, err := expectChunk(r, "smpl")
	if err != nil {
		return nil, err
	}
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("tell after smpl header: %w", errIO(err))
	}
	info.smplPos = pos
	info.smplSize = int64(ck.size)
	if err := skipBytes(r, int64(ck.size)); err != nil {
		return nil, err
	}

	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("tell after smpl chunk: %w", errIO(err))
	}
	if cur >= endPos {
		return info, nil
	}

	// An sm24 chunk is only meaningful for SoundFont >= 2.04, which is
	// when 24-bit sample support was introduced.
	supportsSm24 := version.VersionMajor > 2 || (version.VersionMajor == 2 && version.VersionMinor >= 4)

	ck2, err := readChunk(r)
	if err != nil {
		return nil, err
	}
	if string(ck2.id[:]) != "sm24" {
		warnf("unexpected sub-chunk %q inside sdta, ignoring", ck2.id[:])
		if err := skipBytes(r, int64(ck2.size)); err != nil {
			return nil, err
		}
		return info, nil
	}

	wantSize := ceilHalfEven(info.smplSize)
	if !supportsSm24 || ck2.size != uint32(wantSize) {
		warnf("sm24 sub-chunk size %d does not match expected %d (or file predates 2.04), ignoring", ck2.size, wantSize)
		if err := skipBytes(r, int64(ck2.size)); err != nil {
			return nil, err
		}
		return info, nil
	}

	pos2, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("tell after sm24 header: %w", errIO(err))
	}
	info.sm24Pos = pos2
	info.sm24Size = int64(ck2.size)
	info.hasSm24 = true
	if err := skipBytes(r, int64(ck2.size)); err != nil {
		return nil, err
	}

	return info, nil
}

// loadSampleData reads the smpl (and, if present, sm24) chunk bytes info
// locates, decoding smpl into signed 16-bit frames. This mirrors
// fluid_defsfont_load_sampledata: the whole PCM block is read into memory
// once at load time rather than re-seeked per sample, so Sample.DataOffset
// can index directly into SoundFont.SampleData16.
func loadSampleData(r FileCallbacks, info *sdtaInfo) (data16 []int16, data24 []byte, err error) {
	if _, err = r.Seek(info.smplPos, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seek smpl data: %w", errIO(err))
	}
	raw := make([]byte, info.smplSize)
	if _, err = io.ReadFull(r, raw); err != nil {
		return nil, nil, fmt.Errorf("read smpl data: %w", errIO(err))
	}
	data16 = make([]int16, len(raw)/2)
	for i := range data16 {
		data16[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}

	if !info.hasSm24 {
		return data16, nil, nil
	}
	if _, err = r.Seek(info.sm24Pos, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seek sm24 data: %w", errIO(err))
	}
	data24 = make([]byte, info.sm24Size)
	if _, err = io.ReadFull(r, data24); err != nil {
		return nil, nil, fmt.Errorf("read sm24 data: %w", errIO(err))
	}
	return data16, data24, nil
}
