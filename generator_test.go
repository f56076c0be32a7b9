package sf2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseZoneGens_DuplicateReplacement is spec.md §8 end-to-end scenario
// 4: [KeyRange(36,72), Pan(-500), Pan(+500), Instrument(0)] yields
// gens[Pan].value == +500 with the instrument reference set.
func TestParseZoneGens_DuplicateReplacement(t *testing.T) {
	body := bodyOf(func(b *sfBuilder) {
		b.u16(GenKeyRange)
		b.byte1(36)
		b.byte1(72)
		b.u16(GenPan)
		b.i16(-500)
		b.u16(GenPan)
		b.i16(500)
		b.u16(GenInstrument)
		b.u16(0)
	})
	r := newMemFile(body)
	span := bagSpan{GenIdx: 0, GenCount: 4}

	keyRange, velRange, gens, err := parseZoneGens(r, 0, span, GenInstrument, &presetValidGens)
	require.NoError(t, err)

	assert.Equal(t, zoneRange{36, 72}, keyRange)
	assert.Equal(t, fullRange, velRange)

	require.Len(t, gens, 2) // Pan, Instrument
	assert.Equal(t, GenPan, int(gens[0].ID))
	assert.Equal(t, int16(500), gens[0].SWord)
	assert.Equal(t, GenInstrument, int(gens[1].ID))
	assert.Equal(t, uint16(0), gens[1].UWord)
}

func TestParseZoneGens_VelRangeAfterKeyRange(t *testing.T) {
	body := bodyOf(func(b *sfBuilder) {
		b.u16(GenKeyRange)
		b.byte1(0)
		b.byte1(127)
		b.u16(GenVelRange)
		b.byte1(1)
		b.byte1(100)
	})
	span := bagSpan{GenIdx: 0, GenCount: 2}
	keyRange, velRange, gens, err := parseZoneGens(newMemFile(body), 0, span, GenInstrument, &presetValidGens)
	require.NoError(t, err)
	assert.Equal(t, zoneRange{0, 127}, keyRange)
	assert.Equal(t, zoneRange{1, 100}, velRange)
	assert.Empty(t, gens)
}

func TestParseZoneGens_OutOfOrderKeyRangeIgnored(t *testing.T) {
	// KeyRange arriving after a parameter generator is out of order
	// (level already advanced past 0) and must be skipped, not applied.
	body := bodyOf(func(b *sfBuilder) {
		b.u16(GenPan)
		b.i16(100)
		b.u16(GenKeyRange)
		b.byte1(10)
		b.byte1(20)
	})
	span := bagSpan{GenIdx: 0, GenCount: 2}
	keyRange, _, gens, err := parseZoneGens(newMemFile(body), 0, span, GenInstrument, &presetValidGens)
	require.NoError(t, err)
	assert.Equal(t, fullRange, keyRange)
	require.Len(t, gens, 1)
	assert.Equal(t, GenPan, int(gens[0].ID))
}

func TestParseZoneGens_InvalidAtPresetIgnored(t *testing.T) {
	// StartAddrOfs is instrument-valid but not preset-valid.
	body := bodyOf(func(b *sfBuilder) {
		b.u16(GenStartAddrOfs)
		b.i16(5)
	})
	span := bagSpan{GenIdx: 0, GenCount: 1}
	_, _, gens, err := parseZoneGens(newMemFile(body), 0, span, GenInstrument, &presetValidGens)
	require.NoError(t, err)
	assert.Empty(t, gens)

	_, _, gens2, err := parseZoneGens(newMemFile(body), 0, span, GenSampleID, &instrumentValidGens)
	require.NoError(t, err)
	require.Len(t, gens2, 1)
}

func TestParseZoneGens_ZeroCount(t *testing.T) {
	keyRange, velRange, gens, err := parseZoneGens(newMemFile(nil), 0, bagSpan{}, GenInstrument, &presetValidGens)
	require.NoError(t, err)
	assert.Equal(t, fullRange, keyRange)
	assert.Equal(t, fullRange, velRange)
	assert.Nil(t, gens)
}

func TestAppendOrReplaceGen(t *testing.T) {
	gens := []Gen{{ID: GenPan, SWord: 1}}
	gens = appendOrReplaceGen(gens, Gen{ID: GenPan, SWord: 2})
	require.Len(t, gens, 1)
	assert.Equal(t, int16(2), gens[0].SWord)

	gens = appendOrReplaceGen(gens, Gen{ID: GenAttenuation, SWord: 3})
	require.Len(t, gens, 2)
}
