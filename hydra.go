package sf2

import (
	"fmt"
	"io"
)

// zoneRange is an inclusive [Lo, Hi] range over MIDI key number or
// velocity. The zero value {0,0} is NOT "matches nothing" - callers must
// default it to {0,127} when a zone carries no explicit KeyRange/VelRange
// generator, per spec.md §4.8.
type zoneRange struct {
	Lo, Hi uint8
}

var fullRange = zoneRange{0, 127}

func (r zoneRange) contains(v uint8) bool { return v >= r.Lo && v <= r.Hi }

// empty reports whether the range can never match anything, which happens
// after two ranges are intersected and their overlap is void. Per spec.md
// §9 Design Notes, an empty range is "never matches", not an error.
func (r zoneRange) empty() bool { return r.Lo > r.Hi }

func intersectRange(a, b zoneRange) zoneRange {
	lo := a.Lo
	if b.Lo > lo {
		lo = b.Lo
	}
	hi := a.Hi
	if b.Hi < hi {
		hi = b.Hi
	}
	return zoneRange{lo, hi}
}

// PZone is one preset zone of the intermediate tree: a key/vel rectangle
// plus raw generator and modulator lists. InstIdx is the raw parsed
// terminal-generator value (instrument index); it is resolved into Inst
// during the fixup pass, spec.md §4.9.
type PZone struct {
	KeyRange, VelRange zoneRange
	Gens               []Gen
	Mods               []Mod

	hasInstRef bool
	instIdx    uint16
	Inst       *IHeader // resolved at fixup; nil means "this is the global zone"
}

// PHeader is one PHDR record plus its resolved zones.
type PHeader struct {
	Name    string
	Program uint16
	Bank    uint16
	Zones   []*PZone

	bagIdx uint16
}

// IZone is the instrument-side counterpart to PZone.
type IZone struct {
	KeyRange, VelRange zoneRange
	Gens               []Gen
	Mods               []Mod

	hasSampleRef bool
	sampleIdx    uint16
	Sample       *SHeader // resolved at fixup; nil means "this is the global zone"
}

// IHeader is one inst record plus its resolved zones.
type IHeader struct {
	Name  string
	Index int
	Zones []*IZone

	bagIdx uint16
}

// Sample type bit flags, spec.md §3.
const (
	SampleTypeMono    uint16 = 1
	SampleTypeRight   uint16 = 2
	SampleTypeLeft    uint16 = 4
	SampleTypeLinked  uint16 = 8
	SampleTypeROMFlag uint16 = 0x8000
)

// SHeader is one SHDR record. Start/End/LoopStart/LoopEnd are in absolute
// file-position (sample point) form until the fixup pass rebases them,
// spec.md §4.9.
type SHeader struct {
	Name                         string
	Start, End                   uint32
	LoopStart, LoopEnd           uint32
	SampleRate                   uint32
	OrigPitch                    uint8
	PitchAdj                     int8
	SampleLink                   uint16
	SampleType                   uint16
	Index                        int
}

// SfFile is the parser's intermediate tree, spec.md §3. It is discarded
// unconditionally after import, success or failure.
type SfFile struct {
	VersionMajor, VersionMinor       uint16
	RomVersionMajor, RomVersionMinor uint16
	Info                             *Info

	SampleDataPos, SampleDataSize     int64
	SampleData24Pos, SampleData24Size int64
	HasSampleData24                   bool

	Presets     []*PHeader
	Instruments []*IHeader
	Samples     []*SHeader
}

// bagSpan is one PBAG/IBAG record's resolved (gen, mod) index span, after
// differencing against the next bag record per spec.md §4.6.
type bagSpan struct {
	GenIdx, GenCount uint16
	ModIdx, ModCount uint16
}

// readBagSpans reads count raw (genIdx, modIdx) pairs starting at pos and
// differences adjacent records into count-1 spans, the last (terminal)
// record consumed only to close the final span.
func readBagSpans(r FileCallbacks, pos int64, count uint32, tag string) ([]bagSpan, error) {
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", tag, errIO(err))
	}

	type rawBag struct{ genIdx, modIdx uint16 }
	raw := make([]rawBag, count)
	for i := range raw {
		genIdx, err := readU16LE(r)
		if err != nil {
			return nil, fmt.Errorf("read %s[%d]: %w", tag, i, err)
		}
		modIdx, err := readU16LE(r)
		if err != nil {
			return nil, fmt.Errorf("read %s[%d]: %w", tag, i, err)
		}
		raw[i] = rawBag{genIdx, modIdx}
	}

	spans := make([]bagSpan, count-1)
	for i := range spans {
		genCount := raw[i+1].genIdx - raw[i].genIdx
		modCount := raw[i+1].modIdx - raw[i].modIdx
		if raw[i+1].genIdx < raw[i].genIdx || raw[i+1].modIdx < raw[i].modIdx {
			return nil, fmt.Errorf("%w: %s record %d has non-monotonic gen/mod index", ErrFormat, tag, i)
		}
		spans[i] = bagSpan{raw[i].genIdx, genCount, raw[i].modIdx, modCount}
	}
	return spans, nil
}

// buildPZone parses one preset zone's generators and modulators and
// assembles a *PZone. A trailing GenInstrument generator (the zone's
// terminal generator, spec.md §4.8) is recorded as the zone's raw
// instrument reference and stripped from Gens; fixup resolves it into Inst.
func buildPZone(r FileCallbacks, span bagSpan, genBasePos, modBasePos int64) (*PZone, error) {
	keyRange, velRange, gens, err := parseZoneGens(r, genBasePos, span, GenInstrument, &presetValidGens)
	if err != nil {
		return nil, err
	}
	rawMods, err := parseZoneMods(r, modBasePos, span)
	if err != nil {
		return nil, err
	}

	zone := &PZone{KeyRange: keyRange, VelRange: velRange, Mods: rawMods}
	if n := len(gens); n > 0 && gens[n-1].ID == GenInstrument {
		zone.hasInstRef = true
		zone.instIdx = gens[n-1].UWord
		gens = gens[:n-1]
	}
	zone.Gens = gens
	return zone, nil
}

// buildIZone is the instrument-side counterpart to buildPZone.
func buildIZone(r FileCallbacks, span bagSpan, genBasePos, modBasePos int64) (*IZone, error) {
	keyRange, velRange, gens, err := parseZoneGens(r, genBasePos, span, GenSampleID, &instrumentValidGens)
	if err != nil {
		return nil, err
	}
	rawMods, err := parseZoneMods(r, modBasePos, span)
	if err != nil {
		return nil, err
	}

	zone := &IZone{KeyRange: keyRange, VelRange: velRange, Mods: rawMods}
	if n := len(gens); n > 0 && gens[n-1].ID == GenSampleID {
		zone.hasSampleRef = true
		zone.sampleIdx = gens[n-1].UWord
		gens = gens[:n-1]
	}
	zone.Gens = gens
	return zone, nil
}

// readPresetHeaders reads PHDR records and resolves each preset's zone
// count via adjacent bagIdx differencing, spec.md §4.5. genBasePos/modBasePos
// are the absolute file positions of the first pgen/pmod records.
func readPresetHeaders(r FileCallbacks, pos int64, count uint32, bags []bagSpan, genBasePos, modBasePos int64) ([]*PHeader, error) {
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek phdr: %w", errIO(err))
	}

	type rawPHeader struct {
		name    string
		program uint16
		bank    uint16
		bagIdx  uint16
	}
	raw := make([]rawPHeader, count)
	for i := range raw {
		name, err := readName20(r)
		if err != nil {
			return nil, fmt.Errorf("read phdr[%d]: %w", i, err)
		}
		program, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		bank, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		bagIdx, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		if err := skipBytes(r, 12); err != nil { // library, genre, morphology
			return nil, err
		}
		raw[i] = rawPHeader{name, program, bank, bagIdx}
	}

	headers := make([]*PHeader, count-1)
	for i := range headers {
		zoneCount := int(raw[i+1].bagIdx) - int(raw[i].bagIdx)
		if zoneCount < 0 {
			return nil, fmt.Errorf("%w: preset %q has negative zone count", ErrFormat, raw[i].name)
		}
		if int(raw[i].bagIdx)+zoneCount > len(bags) {
			return nil, fmt.Errorf("%w: preset %q zone range exceeds pbag size", ErrFormat, raw[i].name)
		}

		h := &PHeader{Name: raw[i].name, Program: raw[i].program, Bank: raw[i].bank, bagIdx: raw[i].bagIdx}
		for z := 0; z < zoneCount; z++ {
			span := bags[int(raw[i].bagIdx)+z]
			zone, err := buildPZone(r, span, genBasePos, modBasePos)
			if err != nil {
				return nil, fmt.Errorf("preset %q zone %d: %w", h.Name, z, err)
			}
			h.Zones = append(h.Zones, zone)
		}
		headers[i] = h
	}
	return headers, nil
}

// readInstrumentHeaders mirrors readPresetHeaders for the inst/ibag pair.
func readInstrumentHeaders(r FileCallbacks, pos int64, count uint32, bags []bagSpan, genBasePos, modBasePos int64) ([]*IHeader, error) {
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek inst: %w", errIO(err))
	}

	type rawIHeader struct {
		name   string
		bagIdx uint16
	}
	raw := make([]rawIHeader, count)
	for i := range raw {
		name, err := readName20(r)
		if err != nil {
			return nil, fmt.Errorf("read inst[%d]: %w", i, err)
		}
		bagIdx, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		raw[i] = rawIHeader{name, bagIdx}
	}

	headers := make([]*IHeader, count-1)
	for i := range headers {
		zoneCount := int(raw[i+1].bagIdx) - int(raw[i].bagIdx)
		if zoneCount < 0 {
			return nil, fmt.Errorf("%w: instrument %q has negative zone count", ErrFormat, raw[i].name)
		}
		if int(raw[i].bagIdx)+zoneCount > len(bags) {
			return nil, fmt.Errorf("%w: instrument %q zone range exceeds ibag size", ErrFormat, raw[i].name)
		}

		h := &IHeader{Name: raw[i].name, Index: i, bagIdx: raw[i].bagIdx}
		for z := 0; z < zoneCount; z++ {
			span := bags[int(raw[i].bagIdx)+z]
			zone, err := buildIZone(r, span, genBasePos, modBasePos)
			if err != nil {
				return nil, fmt.Errorf("instrument %q zone %d: %w", h.Name, z, err)
			}
			h.Zones = append(h.Zones, zone)
		}
		headers[i] = h
	}
	return headers, nil
}

// readSampleHeaders reads SHDR records verbatim; offsets stay in
// file-position form until fixup.
func readSampleHeaders(r FileCallbacks, pos int64, count uint32) ([]*SHeader, error) {
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek shdr: %w", errIO(err))
	}

	// count includes the terminal sentinel record (all-zero name, all
	// other fields meaningless); it carries no index-span information to
	// resolve so we simply drop it.
	headers := make([]*SHeader, 0, count-1)
	for i := uint32(0); i < count; i++ {
		name, err := readName20(r)
		if err != nil {
			return nil, fmt.Errorf("read shdr[%d]: %w", i, err)
		}
		start, err := readU32LE(r)
		if err != nil {
			return nil, err
		}
		end, err := readU32LE(r)
		if err != nil {
			return nil, err
		}
		loopStart, err := readU32LE(r)
		if err != nil {
			return nil, err
		}
		loopEnd, err := readU32LE(r)
		if err != nil {
			return nil, err
		}
		sampleRate, err := readU32LE(r)
		if err != nil {
			return nil, err
		}
		var origPitchByte, pitchAdjByte [1]byte
		if _, err := io.ReadFull(r, origPitchByte[:]); err != nil {
			return nil, fmt.Errorf("read shdr[%d] origPitch: %w", i, errIO(err))
		}
		if _, err := io.ReadFull(r, pitchAdjByte[:]); err != nil {
			return nil, fmt.Errorf("read shdr[%d] pitchAdj: %w", i, errIO(err))
		}
		sampleLink, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		sampleType, err := readU16LE(r)
		if err != nil {
			return nil, err
		}

		if i == count-1 {
			continue // terminal sentinel
		}
		headers = append(headers, &SHeader{
			Name:       name,
			Start:      start,
			End:        end,
			LoopStart:  loopStart,
			LoopEnd:    loopEnd,
			SampleRate: sampleRate,
			OrigPitch:  origPitchByte[0],
			PitchAdj:   int8(pitchAdjByte[0]),
			SampleLink: sampleLink,
			SampleType: sampleType,
			Index:      int(i),
		})
	}
	return headers, nil
}
