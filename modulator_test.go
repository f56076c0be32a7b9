package sf2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseZoneMods(t *testing.T) {
	body := bodyOf(func(b *sfBuilder) {
		b.u16(0x0081) // src: index 1, CC flag set
		b.u16(48)     // dest
		b.i16(1000)
		b.u16(0x0002) // amtSrc: index 2
		b.u16(0)      // linear transform
	})
	mods, err := parseZoneMods(newMemFile(body), 0, bagSpan{ModIdx: 0, ModCount: 1})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, uint16(0x0081), mods[0].SrcOper)
	assert.Equal(t, uint16(48), mods[0].DestOper)
	assert.Equal(t, int16(1000), mods[0].Amount)
}

func TestParseZoneMods_ZeroCount(t *testing.T) {
	mods, err := parseZoneMods(newMemFile(nil), 0, bagSpan{})
	require.NoError(t, err)
	assert.Nil(t, mods)
}

func TestDecodeModSrc(t *testing.T) {
	src, ok := decodeModSrc(0x0081) // index 1, CC bit set
	require.True(t, ok)
	assert.Equal(t, uint8(1), src.Index)
	assert.True(t, src.CC)
	assert.False(t, src.Negative)
	assert.False(t, src.Bipolar)
	assert.Equal(t, CurveLinear, src.Curve)

	_, ok = decodeModSrc(uint16(CurveSwitch+1) << 10)
	assert.False(t, ok)
}

func TestTranslateModulator_UnknownCurveDisables(t *testing.T) {
	m := Mod{SrcOper: uint16(CurveSwitch+1) << 10, DestOper: 1, Amount: 100}
	got := translateModulator(m)
	assert.Equal(t, int16(0), got.Amount)
}

func TestTranslateModulator_NonlinearTransformDisables(t *testing.T) {
	m := Mod{SrcOper: 0, DestOper: 1, Amount: 100, TransOper: 2}
	got := translateModulator(m)
	assert.Equal(t, int16(0), got.Amount)
}

// TestMergeModulators_IdentityReplacement is spec.md §8 scenario 5: a
// local modulator identical to a global one except amount replaces it.
func TestMergeModulators_IdentityReplacement(t *testing.T) {
	global := []Modulator{
		{Src1: ModSrc{Index: 1}, Dest: 48, Src2: ModSrc{Index: 2}, Amount: 100},
	}
	local := []Modulator{
		{Src1: ModSrc{Index: 1}, Dest: 48, Src2: ModSrc{Index: 2}, Amount: 50},
	}
	merged := mergeModulators(global, local)
	require.Len(t, merged, 1)
	assert.Equal(t, int16(50), merged[0].Amount)
}

func TestMergeModulators_DistinctSurviveBoth(t *testing.T) {
	global := []Modulator{{Dest: 1, Amount: 10}}
	local := []Modulator{{Dest: 2, Amount: 20}}
	merged := mergeModulators(global, local)
	assert.Len(t, merged, 2)
}
