package sf2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportGens_AttenuationScaled(t *testing.T) {
	gens := []Gen{{ID: GenAttenuation, SWord: 100}}
	set := importGens(gens)
	assert.True(t, set[GenAttenuation].Set)
	assert.InDelta(t, 40.0, set[GenAttenuation].Value, 0.0001)
}

func TestImportGens_OtherGeneratorsUnscaled(t *testing.T) {
	gens := []Gen{{ID: GenPan, SWord: -250}}
	set := importGens(gens)
	assert.Equal(t, float64(-250), set[GenPan].Value)
}

// TestCloneInstrumentForZone_RangeIntersection is spec.md §8 scenario 3:
// preset-zone key=[36,72], instrument-zone key=[48,96] intersect to
// [48,72].
func TestCloneInstrumentForZone_RangeIntersection(t *testing.T) {
	src := &Instrument{
		Name: "inst",
		Zones: []*InstZone{
			{KeyRange: zoneRange{48, 96}, VelRange: fullRange, Sample: &Sample{Name: "s"}},
		},
	}
	effective := cloneInstrumentForZone(src, zoneRange{36, 72}, fullRange)
	require.Len(t, effective.Zones, 1)
	assert.Equal(t, zoneRange{48, 72}, effective.Zones[0].KeyRange)
}

func TestCloneInstrumentForZone_EmptyIntersectionDropped(t *testing.T) {
	src := &Instrument{
		Zones: []*InstZone{
			{KeyRange: zoneRange{0, 10}, VelRange: fullRange, Sample: &Sample{Name: "s"}},
		},
	}
	effective := cloneInstrumentForZone(src, zoneRange{20, 30}, fullRange)
	assert.Empty(t, effective.Zones)
}

func TestSortPresets(t *testing.T) {
	presets := []*Preset{
		{Bank: 1, Program: 0},
		{Bank: 0, Program: 5},
		{Bank: 0, Program: 1},
	}
	sortPresets(presets)
	require.Len(t, presets, 3)
	assert.Equal(t, uint16(0), presets[0].Bank)
	assert.Equal(t, uint16(1), presets[0].Program)
	assert.Equal(t, uint16(0), presets[1].Bank)
	assert.Equal(t, uint16(5), presets[1].Program)
	assert.Equal(t, uint16(1), presets[2].Bank)
}

// TestImportInstrument_GlobalZoneSplitOut checks that an instrument zone
// with no sample reference becomes the instrument's global zone, keeping its
// generators, and is kept separate from the zone that resolves a sample.
func TestImportInstrument_GlobalZoneSplitOut(t *testing.T) {
	ih := &IHeader{
		Name: "inst",
		Zones: []*IZone{
			{Gens: []Gen{{ID: GenPan, SWord: 10}}}, // no sample ref -> global
			{Sample: &SHeader{Index: 0}, hasSampleRef: true},
		},
	}
	samples := []*Sample{{Name: "s0", Index: 0}}
	inst, err := importInstrument(ih, samples)
	require.NoError(t, err)
	require.NotNil(t, inst.GlobalZone)
	assert.True(t, inst.GlobalZone.Gens[GenPan].Set)
	require.Len(t, inst.Zones, 1)
	assert.Same(t, samples[0], inst.Zones[0].Sample)
}
