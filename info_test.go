package sf2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func infoBody() []byte {
	return bodyOf(func(b *sfBuilder) {
		b.raw(chunk("ifil", bodyOf(func(b *sfBuilder) { b.u16(2); b.u16(4) })))
		b.raw(chunk("INAM", padEven("My Bank")))
	})
}

func TestReadInfo_DefaultsEngineWhenMissing(t *testing.T) {
	info, err := readInfo(newMemFile(infoBody()))
	require.NoError(t, err)
	assert.Equal(t, "EMU8000", info.Engine)
	assert.Equal(t, "My Bank", info.Name)
	assert.Equal(t, uint16(2), info.VersionMajor)
	assert.Equal(t, uint16(4), info.VersionMinor)
}

func TestReadInfo_MissingIfilFails(t *testing.T) {
	body := chunk("INAM", padEven("x"))
	_, err := readInfo(newMemFile(body))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadInfo_BadIfilSizeFails(t *testing.T) {
	body := chunk("ifil", []byte{1, 2})
	_, err := readInfo(newMemFile(body))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadInfo_UnknownSubchunkFails(t *testing.T) {
	body := bodyOf(func(b *sfBuilder) {
		b.raw(chunk("ifil", bodyOf(func(b *sfBuilder) { b.u16(2); b.u16(1) })))
		b.raw(chunk("bogus", []byte{0, 0}))
	})
	_, err := readInfo(newMemFile(body))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadInfoString_OddSizeFails(t *testing.T) {
	_, err := readInfoString(newMemFile([]byte("abc")), 3, maxInfoStringSize)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadInfoString_OverLimitFails(t *testing.T) {
	_, err := readInfoString(newMemFile(nil), maxInfoStringSize+2, maxInfoStringSize)
	assert.ErrorIs(t, err, ErrFormat)
}
