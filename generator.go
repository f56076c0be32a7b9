package sf2

import (
	"fmt"
	"io"
)

// parseZoneGens implements the generator ordering state machine, spec.md
// §4.8. KeyRange and VelRange are extracted into dedicated return values
// rather than left in the generator list; everything else (including a
// trailing terminal Instrument/SampleID generator, if present) accumulates
// in order, with same-id duplicates replaced in place.
//
// The Open Question in spec.md §9 about duplicate handling across
// iterations is resolved here the recommended way: every generator record
// searches the zone's current list fresh, so there is no cross-iteration
// state beyond `level` and the list itself.
func parseZoneGens(r FileCallbacks, genBasePos int64, span bagSpan, terminalID uint16, valid *[GenLast]bool) (keyRange, velRange zoneRange, gens []Gen, err error) {
	keyRange, velRange = fullRange, fullRange
	if span.GenCount == 0 {
		return keyRange, velRange, nil, nil
	}

	pos := genBasePos + int64(span.GenIdx)*4
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return keyRange, velRange, nil, fmt.Errorf("seek gen: %w", errIO(err))
	}

	level := 0
	for i := 0; i < int(span.GenCount); i++ {
		id, err := readU16LE(r)
		if err != nil {
			return keyRange, velRange, nil, fmt.Errorf("read gen[%d] id: %w", i, err)
		}

		switch {
		case level == 0 && id == GenKeyRange:
			lo, hi, err := readRangeBytes(r)
			if err != nil {
				return keyRange, velRange, nil, err
			}
			keyRange = zoneRange{lo, hi}
			level = 1

		case level <= 1 && id == GenVelRange:
			lo, hi, err := readRangeBytes(r)
			if err != nil {
				return keyRange, velRange, nil, err
			}
			velRange = zoneRange{lo, hi}
			level = 2

		case level < 3 && id == terminalID:
			uw, err := readU16LE(r)
			if err != nil {
				return keyRange, velRange, nil, err
			}
			gens = appendOrReplaceGen(gens, Gen{ID: id, UWord: uw})
			level = 3

		case level <= 2 && int(id) < GenLast && valid[id]:
			sw, err := readI16LE(r)
			if err != nil {
				return keyRange, velRange, nil, err
			}
			gens = appendOrReplaceGen(gens, Gen{ID: id, SWord: sw})
			level = 2

		default:
			if err := skipBytes(r, 2); err != nil {
				return keyRange, velRange, nil, err
			}
			warnf("ignoring out-of-order or unrecognized generator id %d", id)
		}
	}

	return keyRange, velRange, gens, nil
}

// appendOrReplaceGen implements the duplicate-replacement rule: a
// generator id already present in the zone has its amount overwritten in
// place; otherwise it's appended.
func appendOrReplaceGen(gens []Gen, g Gen) []Gen {
	for i := range gens {
		if gens[i].ID == g.ID {
			gens[i] = g
			return gens
		}
	}
	return append(gens, g)
}
