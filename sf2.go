// Package sf2 loads SoundFont 2 (SF2/SF3) files into a runtime preset
// graph ready to drive a wavetable synthesizer's voice allocation, per
// the two-stage parse/fixup/import pipeline described at the type
// boundaries in this package: RIFF parsing (riff.go, info.go, sdta.go,
// pdta.go, hydra.go, generator.go, modulator.go), fixup (fixup.go),
// import (preset.go), and note-on voice enumeration (voice.go).
package sf2

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/wavetable-go/sf2/internal/handlepool"
)

// OggSupported reports whether the caller has linked in an external Ogg
// Vorbis decoder for SF3 sample data. Ogg decompression itself is out of
// scope for this package (spec.md §1); this flag only gates whether a
// major-version-3 file is accepted at all. Left false, a v3 file is a
// FormatError.
var OggSupported = false

// SoundFont is the retained runtime graph produced by Open/OpenReader,
// spec.md §3. It exclusively owns its Presets, Instruments, and Samples;
// PresetZone.Inst and InstZone.Sample are weak references into it.
type SoundFont struct {
	filename string
	r        FileCallbacks
	cfg      Config

	info *Info
	sdta *sdtaInfo

	// SampleData16 holds the entire smpl chunk, decoded into signed
	// 16-bit frames; Sample.DataOffset indexes into it directly, and
	// Sample.EndOffset/LoopStart/LoopEnd are relative to DataOffset.
	// SampleData24, present only when the file carries an sm24 chunk, is
	// the raw low-byte extension for 24-bit reconstruction - spec.md §3's
	// sample_data_16/sample_data_24 fields.
	SampleData16 []int16
	SampleData24 []byte

	presets     []*Preset
	instruments []*Instrument
	samples     []*Sample

	handles        *handlepool.Pool[*Preset]
	channelHandles []*handlepool.Handle[*Preset]
}

// Open loads path with the default Config, using *os.File as the file
// callbacks.
func Open(path string) (*SoundFont, error) {
	return OpenWithConfig(path, DefaultConfig)
}

// OpenWithConfig loads path with an explicit Config.
func OpenWithConfig(path string, cfg Config) (*SoundFont, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errIO(err)
	}
	return OpenReader(path, f, cfg)
}

// OpenReader loads an SF2/SF3 file through caller-supplied FileCallbacks,
// spec.md §6.3. On any failure r is closed before returning, and no
// partially-built SoundFont is ever returned, spec.md §7.
func OpenReader(filename string, r FileCallbacks, cfg Config) (sf *SoundFont, err error) {
	defer func() {
		if err != nil {
			r.Close()
		}
	}()

	fileSize, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("tell file size: %w", errIO(err))
	}
	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", errIO(err))
	}

	outer, err := expectChunk(r, "RIFF")
	if err != nil {
		return nil, err
	}
	if int64(outer.size) != fileSize-8 {
		return nil, fmt.Errorf("%w: RIFF size %d does not match file size %d", ErrFormat, outer.size, fileSize)
	}
	if err = expectTag(r, "sfbk"); err != nil {
		return nil, err
	}

	info, err := readInfoList(r)
	if err != nil {
		return nil, err
	}
	if err = checkVersion(*info); err != nil {
		return nil, err
	}

	sdta, err := readSDTAList(r, *info)
	if err != nil {
		return nil, err
	}

	layout, err := readPDTAList(r)
	if err != nil {
		return nil, err
	}

	samples, err := readSampleHeaders(r, layout.shdr.pos, layout.shdr.count)
	if err != nil {
		return nil, err
	}

	pbags, err := readBagSpans(r, layout.pbag.pos, layout.pbag.count, "pbag")
	if err != nil {
		return nil, err
	}
	ibags, err := readBagSpans(r, layout.ibag.pos, layout.ibag.count, "ibag")
	if err != nil {
		return nil, err
	}

	presetHeaders, err := readPresetHeaders(r, layout.phdr.pos, layout.phdr.count, pbags, layout.pgen.pos, layout.pmod.pos)
	if err != nil {
		return nil, err
	}
	instHeaders, err := readInstrumentHeaders(r, layout.inst.pos, layout.inst.count, ibags, layout.igen.pos, layout.imod.pos)
	if err != nil {
		return nil, err
	}

	tree := &SfFile{
		VersionMajor:     info.VersionMajor,
		VersionMinor:     info.VersionMinor,
		RomVersionMajor:  info.RomVersionMajor,
		RomVersionMinor:  info.RomVersionMinor,
		Info:             info,
		SampleDataPos:    sdta.smplPos,
		SampleDataSize:   sdta.smplSize,
		SampleData24Pos:  sdta.sm24Pos,
		SampleData24Size: sdta.sm24Size,
		HasSampleData24:  sdta.hasSm24,
		Presets:          presetHeaders,
		Instruments:      instHeaders,
		Samples:          samples,
	}

	if err = fixupInstruments(tree.Instruments, tree.Samples); err != nil {
		return nil, err
	}
	if err = fixupPresets(tree.Presets, tree.Instruments); err != nil {
		return nil, err
	}
	fixupSamples(tree.Samples, tree.SampleDataSize, tree.VersionMajor == 3)

	data16, data24, err := loadSampleData(r, sdta)
	if err != nil {
		return nil, err
	}

	runtimeSamples := importSamples(tree.Samples)

	instruments := make([]*Instrument, len(tree.Instruments))
	instByHeader := make(map[*IHeader]*Instrument, len(tree.Instruments))
	for i, ih := range tree.Instruments {
		inst, ierr := importInstrument(ih, runtimeSamples)
		if ierr != nil {
			return nil, ierr
		}
		instruments[i] = inst
		instByHeader[ih] = inst
	}

	presets := make([]*Preset, len(tree.Presets))
	for i, ph := range tree.Presets {
		p, perr := importPreset(ph, instruments, instByHeader)
		if perr != nil {
			return nil, perr
		}
		presets[i] = p
	}
	sortPresets(presets)

	sf = &SoundFont{
		filename:       filename,
		r:              r,
		cfg:            cfg,
		info:           info,
		sdta:           sdta,
		SampleData16:   data16,
		SampleData24:   data24,
		presets:        presets,
		instruments:    instruments,
		samples:        runtimeSamples,
		handles:        handlepool.New[*Preset](cfg.MidiChannels + 1),
		channelHandles: make([]*handlepool.Handle[*Preset], cfg.MidiChannels+1),
	}
	return sf, nil
}

func readInfoList(r FileCallbacks) (*Info, error) {
	ck, err := expectChunk(r, "LIST")
	if err != nil {
		return nil, err
	}
	if err := expectTag(r, "INFO"); err != nil {
		return nil, err
	}
	return readInfo(io.LimitReader(r, int64(ck.size)-4))
}

func readSDTAList(r FileCallbacks, info Info) (*sdtaInfo, error) {
	ck, err := expectChunk(r, "LIST")
	if err != nil {
		return nil, err
	}
	if err := expectTag(r, "sdta"); err != nil {
		return nil, err
	}
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("tell sdta start: %w", errIO(err))
	}
	endPos := pos + int64(ck.size) - 4
	return readSDTA(r, endPos, info)
}

func readPDTAList(r FileCallbacks) (*pdtaLayout, error) {
	ck, err := expectChunk(r, "LIST")
	if err != nil {
		return nil, err
	}
	if err := expectTag(r, "pdta"); err != nil {
		return nil, err
	}
	return readPDTALayout(r, int64(ck.size)-4)
}

// checkVersion implements spec.md §4.2's version gate.
func checkVersion(info Info) error {
	if info.VersionMinor < 2 {
		return fmt.Errorf("%w: SoundFont minor version %d is unsupported (SF1 files are not supported)", ErrFormat, info.VersionMinor)
	}
	if info.VersionMajor == 3 {
		if !OggSupported {
			return fmt.Errorf("%w: SF3 (Ogg-compressed) file but no Ogg decoder is linked in", ErrFormat)
		}
		return nil
	}
	if info.VersionMajor > 2 {
		return fmt.Errorf("%w: unsupported SoundFont major version %d", ErrFormat, info.VersionMajor)
	}
	return nil
}

// Name returns the SoundFont's INAM bank name, falling back to the
// filename it was opened from if INAM was empty.
func (sf *SoundFont) Name() string {
	if sf.info.Name != "" {
		return sf.info.Name
	}
	return sf.filename
}

// GetPreset looks up a preset by (bank, program); presets are stored
// sorted by (bank, program) ascending, spec.md §3 invariant 7, and
// lookup returns the first exact match.
func (sf *SoundFont) GetPreset(bank, program uint16) (*Preset, bool) {
	lo, hi := 0, len(sf.presets)
	for lo < hi {
		mid := (lo + hi) / 2
		p := sf.presets[mid]
		if p.Bank < bank || (p.Bank == bank && p.Program < program) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(sf.presets) && sf.presets[lo].Bank == bank && sf.presets[lo].Program == program {
		for lo > 0 && sf.presets[lo-1].Bank == bank && sf.presets[lo-1].Program == program {
			lo--
		}
		return sf.presets[lo], true
	}
	return nil, false
}

// SelectProgram resolves (bank, program) for MIDI channel ch and returns
// the matching preset, recycling ch's previously selected handle back into
// the pool rather than leaving it checked out forever - spec.md §9 Design
// Notes' bounded ring of reusable handle objects, exercised here on every
// program-change event instead of sitting unused.
func (sf *SoundFont) SelectProgram(ch int, bank, program uint16) (*Preset, error) {
	if ch < 0 || ch >= len(sf.channelHandles) {
		return nil, fmt.Errorf("sf2: channel %d out of range (pool sized for %d)", ch, len(sf.channelHandles))
	}
	preset, ok := sf.GetPreset(bank, program)
	if !ok {
		return nil, fmt.Errorf("sf2: no preset for bank=%d program=%d", bank, program)
	}

	if old := sf.channelHandles[ch]; old != nil {
		sf.handles.Release(old)
	}
	h := sf.handles.Acquire()
	if h == nil {
		return nil, fmt.Errorf("sf2: preset handle pool exhausted")
	}
	h.Value = preset
	sf.channelHandles[ch] = h
	return preset, nil
}

// PresetIterator walks a SoundFont's presets in (bank, program) order.
type PresetIterator struct {
	presets []*Preset
	idx     int
}

// IterPresets returns a fresh, restartable iterator over sf's presets.
func (sf *SoundFont) IterPresets() *PresetIterator {
	return &PresetIterator{presets: sf.presets}
}

// Next advances the iterator, returning (nil, false) once exhausted.
func (it *PresetIterator) Next() (*Preset, bool) {
	if it.idx >= len(it.presets) {
		return nil, false
	}
	p := it.presets[it.idx]
	it.idx++
	return p, true
}

// AcquireRef increments a Sample's reference count; callers (typically a
// synthesizer's voice allocator) must call ReleaseRef when the voice
// referencing it stops, spec.md §3 invariant 6.
func (s *Sample) AcquireRef() { atomic.AddInt32(&s.refcount, 1) }

// ReleaseRef decrements a Sample's reference count.
func (s *Sample) ReleaseRef() { atomic.AddInt32(&s.refcount, -1) }

// Close releases the underlying file handle. It fails if any sample's
// refcount is still positive, spec.md §5 ("SoundFont destruction fails if
// any Sample.refcount > 0; caller must stop all voices first").
func (sf *SoundFont) Close() error {
	for _, s := range sf.samples {
		if atomic.LoadInt32(&s.refcount) > 0 {
			return fmt.Errorf("sf2: cannot close %q: sample %q still has active voices", sf.filename, s.Name)
		}
	}
	return sf.r.Close()
}
