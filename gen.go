package sf2

// Generator indices, SoundFont 2.01 Table 8.1. The numeric values are part
// of the wire format and must not be renumbered.
const (
	GenStartAddrOfs           = 0
	GenEndAddrOfs             = 1
	GenStartLoopAddrOfs       = 2
	GenEndLoopAddrOfs         = 3
	GenStartAddrCoarseOfs     = 4
	GenModLFOToPitch          = 5
	GenVibLFOToPitch          = 6
	GenModEnvToPitch          = 7
	GenInitialFilterFc        = 8
	GenInitialFilterQ         = 9
	GenModLFOToFilterFc       = 10
	GenModEnvToFilterFc       = 11
	GenEndAddrCoarseOfs       = 12
	GenModLFOToVolume         = 13
	genUnused1                = 14
	GenChorusEffectsSend      = 15
	GenReverbEffectsSend      = 16
	GenPan                    = 17
	genUnused2                = 18
	genUnused3                = 19
	genUnused4                = 20
	GenDelayModLFO            = 21
	GenFreqModLFO             = 22
	GenDelayVibLFO            = 23
	GenFreqVibLFO             = 24
	GenDelayModEnv            = 25
	GenAttackModEnv           = 26
	GenHoldModEnv             = 27
	GenDecayModEnv            = 28
	GenSustainModEnv          = 29
	GenReleaseModEnv          = 30
	GenKeynumToModEnvHold     = 31
	GenKeynumToModEnvDecay    = 32
	GenDelayVolEnv            = 33
	GenAttackVolEnv           = 34
	GenHoldVolEnv             = 35
	GenDecayVolEnv            = 36
	GenSustainVolEnv          = 37
	GenReleaseVolEnv          = 38
	GenKeynumToVolEnvHold     = 39
	GenKeynumToVolEnvDecay    = 40
	GenInstrument             = 41
	genReserved1              = 42
	GenKeyRange               = 43
	GenVelRange               = 44
	GenStartLoopAddrCoarseOfs = 45
	GenKeynum                 = 46
	GenVelocity               = 47
	GenAttenuation            = 48
	genReserved2              = 49
	GenEndLoopAddrCoarseOfs   = 50
	GenCoarseTune             = 51
	GenFineTune               = 52
	GenSampleID               = 53
	GenSampleModes            = 54
	genReserved3              = 55
	GenScaleTuning            = 56
	GenExclusiveClass         = 57
	GenOverrideRootKey        = 58

	// GenLast is the count of generator slots, one past the highest
	// generator id consulted at note-on (OverrideRootKey=58).
	GenLast = 59
)

// attenuationScale corrects initialAttenuation for the centibel-vs-EMU8k
// hardware mismatch that the majority of existing SoundFonts were authored
// against. Applied once, at import time.
const attenuationScale = 0.4

var (
	instrumentValidGens [GenLast]bool
	presetValidGens     [GenLast]bool
)

func init() {
	excludedEverywhere := map[int]bool{
		genUnused1: true, genUnused2: true, genUnused3: true, genUnused4: true,
		genReserved1: true, genReserved2: true, genReserved3: true,
	}
	excludedAtPreset := map[int]bool{
		GenStartAddrOfs: true, GenEndAddrOfs: true, GenStartLoopAddrOfs: true,
		GenEndLoopAddrOfs: true, GenStartAddrCoarseOfs: true, GenEndAddrCoarseOfs: true,
		GenStartLoopAddrCoarseOfs: true, GenKeynum: true, GenVelocity: true,
		GenEndLoopAddrCoarseOfs: true, GenSampleModes: true, GenExclusiveClass: true,
		GenOverrideRootKey: true,
	}

	for id := 0; id < GenLast; id++ {
		if excludedEverywhere[id] {
			continue
		}
		instrumentValidGens[id] = true
		if !excludedAtPreset[id] {
			presetValidGens[id] = true
		}
	}
}

// Gen is a single parsed PGEN/IGEN record. Amount is a tagged union in the
// original C (SWord/UWord/Range), tagged implicitly by ID: KeyRange and
// VelRange use Lo/Hi, Instrument and SampleID use UWord, everything else
// uses SWord.
type Gen struct {
	ID    uint16
	SWord int16
	UWord uint16
	Lo    uint8
	Hi    uint8
}

// GenValue is one instrument- or preset-zone generator slot after import:
// either unset (defaulted) or carrying a float value ready for the
// synthesizer, per spec.md §4.10.
type GenValue struct {
	Value float64
	Set   bool
}

// GenSet is the fixed GenLast-slot (59) array of generator values attached to every
// runtime PresetZone and InstZone.
type GenSet [GenLast]GenValue
