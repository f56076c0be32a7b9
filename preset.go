package sf2

import "sort"

// Sample is the runtime, post-fixup form of an SHeader, spec.md §3.
// DataOffset is the index of the sample's first frame in
// SoundFont.SampleData16; EndOffset, LoopStart and LoopEnd are frame counts
// relative to DataOffset. EndOffset is inclusive of the last valid frame, a
// deliberate divergence from the raw SF2 end-offset convention, spec.md
// §4.9 / §9.
type Sample struct {
	Name       string
	DataOffset uint32
	EndOffset  uint32
	LoopStart  uint32
	LoopEnd    uint32
	SampleRate uint32
	OrigPitch  uint8
	PitchAdj   int8
	Flags      uint16
	Index      int

	refcount int32
}

// Modulator, InstZone, Instrument, PresetZone, Preset, SoundFont are the
// retained runtime graph, spec.md §3.

// InstZone is one instrument zone after import: generators translated into
// a fixed slot array, modulators decoded, and its key/vel range already
// intersected with its owning preset zone's range (spec.md §4.10).
type InstZone struct {
	Name      string
	KeyRange  zoneRange
	VelRange  zoneRange
	Gens      GenSet
	Mods      []Modulator
	Sample    *Sample
}

// Instrument is one inst record after import.
type Instrument struct {
	Name       string
	GlobalZone *InstZone
	Zones      []*InstZone
}

// PresetZone is one preset zone after import.
type PresetZone struct {
	Name     string
	KeyRange zoneRange
	VelRange zoneRange
	Gens     GenSet
	Mods     []Modulator
	Inst     *Instrument
}

// Preset is one (bank, program) addressable patch after import.
type Preset struct {
	Name       string
	Bank       uint16
	Program    uint16
	GlobalZone *PresetZone
	Zones      []*PresetZone
}

// importGens translates a zone's sparse []Gen list into a dense GenSet,
// applying the attenuation scale at index GenAttenuation, spec.md §4.10.
func importGens(gens []Gen) GenSet {
	var set GenSet
	for _, g := range gens {
		v := float64(g.SWord)
		if g.ID == GenAttenuation {
			v *= attenuationScale
		}
		set[g.ID] = GenValue{Value: v, Set: true}
	}
	return set
}

func importMods(raw []Mod) []Modulator {
	if len(raw) == 0 {
		return nil
	}
	mods := make([]Modulator, len(raw))
	for i, m := range raw {
		mods[i] = translateModulator(m)
	}
	return mods
}

// importInstrument translates one intermediate IHeader into a runtime
// Instrument, splitting its global zone (if any) out of the zone list.
func importInstrument(ih *IHeader, samples []*Sample) (*Instrument, error) {
	inst := &Instrument{Name: ih.Name}

	for _, iz := range ih.Zones {
		zone := &InstZone{
			Name:     ih.Name,
			KeyRange: iz.KeyRange,
			VelRange: iz.VelRange,
			Gens:     importGens(iz.Gens),
			Mods:     importMods(iz.Mods),
		}
		if iz.Sample != nil {
			zone.Sample = samples[iz.Sample.Index]
		}

		if iz.Sample == nil && !iz.hasSampleRef {
			inst.GlobalZone = zone
			continue
		}
		inst.Zones = append(inst.Zones, zone)
	}

	return inst, nil
}

// importPreset translates one intermediate PHeader into a runtime Preset.
// Each non-global preset-zone's instrument-zone ranges are intersected
// with the preset-zone's own range here, spec.md §4.10, so note_on only
// ever tests one precomputed range per instrument zone.
func importPreset(ph *PHeader, instruments []*Instrument, instByHeader map[*IHeader]*Instrument) (*Preset, error) {
	p := &Preset{Name: ph.Name, Bank: ph.Bank, Program: ph.Program}

	for _, pz := range ph.Zones {
		zone := &PresetZone{
			Name:     ph.Name,
			KeyRange: pz.KeyRange,
			VelRange: pz.VelRange,
			Gens:     importGens(pz.Gens),
			Mods:     importMods(pz.Mods),
		}

		if pz.Inst == nil && !pz.hasInstRef {
			p.GlobalZone = zone
			continue
		}

		srcInst := instByHeader[pz.Inst]
		intersected := cloneInstrumentForZone(srcInst, zone.KeyRange, zone.VelRange)
		zone.Inst = intersected
		p.Zones = append(p.Zones, zone)
	}

	return p, nil
}

// cloneInstrumentForZone builds the effective, range-intersected view of
// an instrument as seen through one preset zone. The source Instrument and
// its zones are left untouched; each surviving zone is shallow-copied so the
// copy can carry its own intersected range, since the same Instrument can be
// referenced by many preset zones with different ranges. The global zone is
// shared, not copied.
func cloneInstrumentForZone(src *Instrument, pzKey, pzVel zoneRange) *Instrument {
	out := &Instrument{Name: src.Name, GlobalZone: src.GlobalZone}
	out.Zones = make([]*InstZone, 0, len(src.Zones))
	for _, iz := range src.Zones {
		kr := intersectRange(iz.KeyRange, pzKey)
		vr := intersectRange(iz.VelRange, pzVel)
		if kr.empty() || vr.empty() {
			continue
		}
		clone := *iz
		clone.KeyRange = kr
		clone.VelRange = vr
		out.Zones = append(out.Zones, &clone)
	}
	return out
}

// importSamples translates fixed-up SHeaders into runtime Samples, index
// for index (Sample.Index mirrors SHeader.Index so instrument zones can
// resolve their reference with a single slice lookup).
func importSamples(headers []*SHeader) []*Sample {
	samples := make([]*Sample, len(headers))
	for i, h := range headers {
		samples[i] = &Sample{
			Name:       h.Name,
			DataOffset: h.Start,
			EndOffset:  h.End,
			LoopStart:  h.LoopStart,
			LoopEnd:    h.LoopEnd,
			SampleRate: h.SampleRate,
			OrigPitch:  h.OrigPitch,
			PitchAdj:   h.PitchAdj,
			Flags:      h.SampleType,
			Index:      i,
		}
	}
	return samples
}

// sortPresets orders presets ascending by (bank, program), spec.md §3
// invariant 7, stably so duplicate (bank, program) pairs keep file order
// and the first one found wins under lookup.
func sortPresets(presets []*Preset) {
	sort.SliceStable(presets, func(i, j int) bool {
		a, b := presets[i], presets[j]
		if a.Bank != b.Bank {
			return a.Bank < b.Bank
		}
		return a.Program < b.Program
	})
}
