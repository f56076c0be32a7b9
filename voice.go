package sf2

import "fmt"

// VoiceRequest is everything the voice enumerator hands the synthesizer for
// one sample trigger: the chosen sample, its composed generator values, and
// its merged modulator list, spec.md §4.11.
type VoiceRequest struct {
	Channel  int
	Key      uint8
	Velocity uint8

	Sample *Sample
	Gens   GenSet
	Mods   []Modulator
}

// VoiceAllocator is the synthesizer-side collaborator the enumerator calls
// into, spec.md §4.11 (synth.alloc_voice / synth.start_voice). Out of
// scope for this package: the synth decides whether polyphony is
// exhausted and owns actual DSP.
type VoiceAllocator interface {
	AllocVoice(req VoiceRequest) bool
}

// ErrVoiceAllocFailed is returned by NoteOn when the allocator refuses a
// voice (e.g. polyphony exhausted); spec.md §4.11's "voice is null: return
// Fail" path.
var ErrVoiceAllocFailed = fmt.Errorf("sf2: voice allocation failed")

// NoteOn enumerates the preset's zones against (key, vel) and hands one
// VoiceRequest per matching instrument zone to alloc, exactly the ordering
// in spec.md §4.11. Calling NoteOn twice with identical arguments produces
// structurally identical requests, since the preset graph never mutates
// after import.
func (p *Preset) NoteOn(ch int, key, vel uint8, alloc VoiceAllocator) error {
	for _, pz := range p.Zones {
		if !pz.KeyRange.contains(key) || !pz.VelRange.contains(vel) {
			continue
		}
		inst := pz.Inst
		if inst == nil {
			continue
		}

		for _, iz := range inst.Zones {
			if iz.Sample == nil || iz.Sample.Flags&SampleTypeROMFlag != 0 {
				continue
			}
			if !iz.KeyRange.contains(key) || !iz.VelRange.contains(vel) {
				continue
			}

			req := VoiceRequest{Channel: ch, Key: key, Velocity: vel, Sample: iz.Sample}
			composeInstGens(&req.Gens, iz, inst)
			req.Mods = mergeInstMods(inst, iz)
			composePresetGens(&req.Gens, pz, p)
			req.Mods = addPresetMods(req.Mods, p, pz)

			if !alloc.AllocVoice(req) {
				return ErrVoiceAllocFailed
			}
		}
	}
	return nil
}

// composeInstGens fills req with iz's own generator values, falling back
// to the instrument's global zone for anything iz leaves unset.
func composeInstGens(gens *GenSet, iz *InstZone, inst *Instrument) {
	for i := 0; i < GenLast; i++ {
		if iz.Gens[i].Set {
			gens[i] = iz.Gens[i]
		} else if inst.GlobalZone != nil && inst.GlobalZone.Gens[i].Set {
			gens[i] = inst.GlobalZone.Gens[i]
		}
	}
}

func mergeInstMods(inst *Instrument, iz *InstZone) []Modulator {
	var global []Modulator
	if inst.GlobalZone != nil {
		global = inst.GlobalZone.Mods
	}
	return mergeModulators(global, iz.Mods)
}

// composePresetGens adds (not overwrites) preset-level generator values on
// top of the instrument-level composition, skipping EXCLUDED_AT_PRESET
// ids via presetValidGens, spec.md §4.11 / §6.4.
func composePresetGens(gens *GenSet, pz *PresetZone, p *Preset) {
	for i := 0; i < GenLast; i++ {
		if !presetValidGens[i] {
			continue
		}
		if pz.Gens[i].Set {
			gens[i].Value += pz.Gens[i].Value
			gens[i].Set = true
		} else if p.GlobalZone != nil && p.GlobalZone.Gens[i].Set {
			gens[i].Value += p.GlobalZone.Gens[i].Value
			gens[i].Set = true
		}
	}
}

// addPresetMods merges global and local preset-level modulators, drops any
// whose amount is exactly 0 (spec.md §4.11's divergence from the
// instrument-level merge, which keeps zero-amount modulators), then folds
// each survivor into instMods in ADD mode: a preset-level modulator whose
// identity (src1, dest, src2, flags1, flags2, transform) matches one
// already contributed at instrument level has its amount summed into that
// entry, matching fluid_voice_add_mod's FLUID_VOICE_ADD search; only a
// modulator with no identity match in instMods is appended as a new entry.
func addPresetMods(instMods []Modulator, p *Preset, pz *PresetZone) []Modulator {
	var global []Modulator
	if p.GlobalZone != nil {
		global = p.GlobalZone.Mods
	}
	merged := mergeModulators(global, pz.Mods)

	out := instMods
	for _, m := range merged {
		if m.Amount == 0 {
			continue
		}
		if idx := findModIdentity(out, m.identity()); idx >= 0 {
			out[idx].Amount += m.Amount
		} else {
			out = append(out, m)
		}
	}
	return out
}

// findModIdentity returns the index of the first modulator in mods whose
// identity tuple equals id, or -1 if none matches.
func findModIdentity(mods []Modulator, id modIdentity) int {
	for i, m := range mods {
		if m.identity() == id {
			return i
		}
	}
	return -1
}
