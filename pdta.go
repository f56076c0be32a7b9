package sf2

import (
	"fmt"
	"io"
)

// pdtaSpec describes one of the nine fixed-layout HYDRA sub-chunks: its
// wire tag, its fixed record size, and the minimum number of records a
// well-formed file must contain (1 for everything that always carries at
// least a terminal sentinel, 0 for the generator/modulator lists which may
// be legitimately empty).
type pdtaSpec struct {
	tag       string
	recordLen uint32
	minCount  uint32
}

// pdtaOrder is normative: SoundFont 2.01 requires these nine sub-chunks to
// appear inside pdta in exactly this sequence.
var pdtaOrder = []pdtaSpec{
	{"phdr", 38, 1},
	{"pbag", 4, 1},
	{"pmod", 10, 0},
	{"pgen", 4, 0},
	{"inst", 22, 1},
	{"ibag", 4, 1},
	{"imod", 10, 0},
	{"igen", 4, 0},
	{"shdr", 46, 1},
}

// pdtaChunkInfo is the recorded position (absolute offset of the first
// record) and record count (including the terminal sentinel) of one HYDRA
// sub-chunk.
type pdtaChunkInfo struct {
	pos   int64
	count uint32
}

// pdtaLayout is the result of the PDTA layout pass, spec.md §4.4: no record
// is read here, only chunk identity, size, and position.
type pdtaLayout struct {
	phdr, pbag, pmod, pgen pdtaChunkInfo
	inst, ibag, imod, igen pdtaChunkInfo
	shdr                   pdtaChunkInfo
}

// readPDTALayout walks the nine HYDRA sub-chunks in order, sanity-checking
// each one's size and record count, and records where its records start.
// pdtaSize is the total byte count of the pdta LIST's data (not including
// the "pdta" form-type tag, already consumed by the caller).
func readPDTALayout(r FileCallbacks, pdtaSize int64) (*pdtaLayout, error) {
	layout := &pdtaLayout{}
	infos := []*pdtaChunkInfo{
		&layout.phdr, &layout.pbag, &layout.pmod, &layout.pgen,
		&layout.inst, &layout.ibag, &layout.imod, &layout.igen,
		&layout.shdr,
	}

	remaining := pdtaSize
	for i, spec := range pdtaOrder {
		ck, err := readChunk(r)
		if err != nil {
			return nil, err
		}
		if string(ck.id[:]) != spec.tag {
			return nil, fmt.Errorf("%w: expected HYDRA chunk %q, got %q", ErrFormat, spec.tag, ck.id[:])
		}
		if ck.size%spec.recordLen != 0 {
			return nil, fmt.Errorf("%w: %s size %d is not a multiple of %d", ErrFormat, spec.tag, ck.size, spec.recordLen)
		}
		count := ck.size / spec.recordLen
		if count < spec.minCount {
			return nil, fmt.Errorf("%w: %s has %d records, need at least %d", ErrFormat, spec.tag, count, spec.minCount)
		}

		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("tell after %s header: %w", spec.tag, errIO(err))
		}
		infos[i].pos = pos
		infos[i].count = count

		remaining -= 8 + int64(ck.size)
		if remaining < 0 {
			return nil, fmt.Errorf("%w: pdta chunk list overruns its LIST size at %s", ErrFormat, spec.tag)
		}

		if err := skipBytes(r, int64(ck.size)); err != nil {
			return nil, err
		}
	}

	return layout, nil
}
