package sf2

import "fmt"

// fixupPresets walks every preset's zone list, dropping empty zones,
// resolving instrument references, and promoting at most one global zone
// per preset, spec.md §4.9.
func fixupPresets(presets []*PHeader, instruments []*IHeader) error {
	for _, p := range presets {
		zones, err := fixupPZones(p.Name, p.Zones, instruments)
		if err != nil {
			return err
		}
		p.Zones = zones
	}
	return nil
}

func fixupPZones(ownerName string, zones []*PZone, instruments []*IHeader) ([]*PZone, error) {
	var global *PZone
	out := make([]*PZone, 0, len(zones))

	for _, z := range zones {
		if len(z.Gens) == 0 && !z.hasInstRef && len(z.Mods) == 0 {
			continue // rule 1: no generators, no terminal ref, no modulators
		}

		if z.hasInstRef {
			if int(z.instIdx) >= len(instruments) {
				return nil, fmt.Errorf("%w: preset %q zone references out-of-range instrument %d", ErrFormat, ownerName, z.instIdx)
			}
			z.Inst = instruments[z.instIdx]
			out = append(out, z)
			continue
		}

		// No terminal Instrument generator: a global zone candidate. The
		// first one found (whether or not it's zones[0]) is promoted;
		// spec.md §4.9 treats "first zone" and "first unresolved zone
		// seen" identically since both land at the front either way.
		if global != nil {
			warnf("preset %q: discarding extra global zone", ownerName)
			continue
		}
		global = z
	}

	if global != nil {
		out = append([]*PZone{global}, out...)
	}
	return out, nil
}

// fixupInstruments is the instrument-side counterpart to fixupPresets.
func fixupInstruments(instruments []*IHeader, samples []*SHeader) error {
	for _, inst := range instruments {
		zones, err := fixupIZones(inst.Name, inst.Zones, samples)
		if err != nil {
			return err
		}
		inst.Zones = zones
	}
	return nil
}

func fixupIZones(ownerName string, zones []*IZone, samples []*SHeader) ([]*IZone, error) {
	var global *IZone
	out := make([]*IZone, 0, len(zones))

	for _, z := range zones {
		if len(z.Gens) == 0 && !z.hasSampleRef && len(z.Mods) == 0 {
			continue
		}

		if z.hasSampleRef {
			if int(z.sampleIdx) >= len(samples) {
				return nil, fmt.Errorf("%w: instrument %q zone references out-of-range sample %d", ErrFormat, ownerName, z.sampleIdx)
			}
			z.Sample = samples[z.sampleIdx]
			out = append(out, z)
			continue
		}

		if global != nil {
			warnf("instrument %q: discarding extra global zone", ownerName)
			continue
		}
		global = z
	}

	if global != nil {
		out = append([]*IZone{global}, out...)
	}
	return out, nil
}

// fixupSamples applies the sample-window validation and final rebasing of
// spec.md §4.9. isOggCompressed selects the byte-vs-word interpretation of
// the sample data window size (true for SF3, where the sdta chunk holds Ogg
// Vorbis streams rather than PCM frames).
func fixupSamples(samples []*SHeader, sampleDataSize int64, isOggCompressed bool) {
	var maxEnd int64
	if isOggCompressed {
		maxEnd = sampleDataSize
	} else {
		maxEnd = sampleDataSize / 2 // 16-bit words
	}

	for _, s := range samples {
		if s.SampleType&SampleTypeROMFlag != 0 {
			s.Start, s.End, s.LoopStart, s.LoopEnd = 0, 0, 0, 0
			continue
		}

		if int64(s.End) > maxEnd || int64(s.Start)+4 > int64(s.End) {
			warnf("sample %q out of bounds (start=%d end=%d max_end=%d), zeroing", s.Name, s.Start, s.End, maxEnd)
			s.Start, s.End, s.LoopStart, s.LoopEnd = 0, 0, 0, 0
			continue
		}

		invalidLoopStart := s.LoopStart < s.Start || s.LoopStart >= s.LoopEnd
		invalidLoopEnd := int64(s.LoopEnd) > maxEnd || s.LoopStart >= s.LoopEnd
		if invalidLoopStart || invalidLoopEnd {
			debugf("sample %q has invalid loop points (start=%d loop=[%d,%d]), clamping to full sample", s.Name, s.Start, s.LoopStart, s.LoopEnd)
			s.LoopStart = s.Start
			s.LoopEnd = s.End
		}

		start := s.Start
		s.End = s.End - start - 1
		s.LoopStart = s.LoopStart - start
		s.LoopEnd = s.LoopEnd - start
	}
}
