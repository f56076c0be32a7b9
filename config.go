package sf2

import "fmt"

// Config holds the advisory construction-time options from spec.md §6.2.
// Both fields are hints to the caller's synth/runtime; the loader itself
// neither pins memory nor owns a channel count, it only sizes the internal
// preset-handle pool accordingly.
type Config struct {
	// LockMemory requests that sample buffers be pinned in RAM once
	// loaded. The loader does not do this itself (memory locking is an
	// external-collaborator concern, spec.md §1); it is surfaced here so
	// a caller's file-backed or mmap-backed FileCallbacks implementation
	// can honor it.
	LockMemory bool

	// MidiChannels sizes the reusable preset-handle pool to
	// MidiChannels+1, per spec.md §9 Design Notes. Zero means "use the
	// pool's own default".
	MidiChannels int
}

// DefaultConfig mirrors fluidsynth's own defaults: memory is not locked and
// sixteen MIDI channels (the standard single MIDI port) are assumed.
var DefaultConfig = Config{LockMemory: false, MidiChannels: 16}

// ParseConfig validates a string-keyed option map into a Config, in the
// style of the teacher's ReverbFromFlag: known keys get typed values,
// anything else is a hard error rather than a silently ignored typo.
func ParseConfig(opts map[string]string) (Config, error) {
	cfg := DefaultConfig

	for key, val := range opts {
		switch key {
		case "synth.lock-memory":
			switch val {
			case "1", "true", "yes":
				cfg.LockMemory = true
			case "0", "false", "no", "":
				cfg.LockMemory = false
			default:
				return Config{}, fmt.Errorf("sf2: unrecognized synth.lock-memory value %q", val)
			}
		case "synth.midi-channels":
			n, err := parsePositiveInt(val)
			if err != nil {
				return Config{}, fmt.Errorf("sf2: invalid synth.midi-channels value %q: %w", val, err)
			}
			cfg.MidiChannels = n
		default:
			return Config{}, fmt.Errorf("sf2: unrecognized config option %q", key)
		}
	}

	return cfg, nil
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a positive integer")
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 0, fmt.Errorf("must be >= 1")
	}
	return n, nil
}
