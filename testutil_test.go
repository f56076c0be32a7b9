package sf2

import (
	"bytes"
	"encoding/binary"
)

// memFile adapts an in-memory byte buffer to FileCallbacks, used by every
// test in this package to build synthetic SF2 files without touching disk.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newMemFile(b []byte) *memFile {
	return &memFile{Reader: bytes.NewReader(b)}
}

// sfBuilder assembles raw chunk bodies byte by byte.
type sfBuilder struct {
	buf bytes.Buffer
}

func (b *sfBuilder) u16(v uint16) { binary.Write(&b.buf, binary.LittleEndian, v) }
func (b *sfBuilder) u32(v uint32) { binary.Write(&b.buf, binary.LittleEndian, v) }
func (b *sfBuilder) i16(v int16)  { binary.Write(&b.buf, binary.LittleEndian, v) }
func (b *sfBuilder) byte1(v byte) { b.buf.WriteByte(v) }
func (b *sfBuilder) raw(p []byte) { b.buf.Write(p) }

func (b *sfBuilder) name20(s string) {
	var buf [20]byte
	copy(buf[:], s)
	b.buf.Write(buf[:])
}

func bodyOf(fn func(b *sfBuilder)) []byte {
	b := &sfBuilder{}
	fn(b)
	return b.buf.Bytes()
}

// chunk writes an 8-byte RIFF chunk header (id + little-endian size)
// followed by body.
func chunk(id string, body []byte) []byte {
	var out bytes.Buffer
	out.WriteString(id)
	binary.Write(&out, binary.LittleEndian, uint32(len(body)))
	out.Write(body)
	return out.Bytes()
}

// listChunk writes a LIST chunk whose data is formType followed by the
// concatenation of subChunks.
func listChunk(formType string, subChunks ...[]byte) []byte {
	var body bytes.Buffer
	body.WriteString(formType)
	for _, c := range subChunks {
		body.Write(c)
	}
	return chunk("LIST", body.Bytes())
}

func padEven(s string) []byte {
	b := []byte(s + "\x00")
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

// minimalSF2 builds end-to-end scenario 1 from spec.md §8: a single preset
// (bank 0, program 0, one zone referencing instrument 0), a single
// instrument (one zone referencing sample 0), and a single 16-bit sample
// of 1024 frames with a full-length loop.
func minimalSF2() []byte {
	info := listChunk("INFO",
		chunk("ifil", bodyOf(func(b *sfBuilder) { b.u16(2); b.u16(4) })),
		chunk("isng", padEven("EMU8000")),
		chunk("INAM", padEven("test bank")),
	)

	sampleFrames := 1024
	sdta := listChunk("sdta", chunk("smpl", make([]byte, sampleFrames*2)))

	phdr := bodyOf(func(b *sfBuilder) {
		b.name20("Test Preset")
		b.u16(0) // program
		b.u16(0) // bank
		b.u16(0) // bagIdx
		b.raw(make([]byte, 12))
		b.name20("EOP")
		b.u16(0)
		b.u16(0)
		b.u16(1) // terminal bagIdx: preset 0 has 1 zone
		b.raw(make([]byte, 12))
	})

	pbag := bodyOf(func(b *sfBuilder) {
		b.u16(0) // zone 0: genIdx=0
		b.u16(0) // modIdx=0
		b.u16(1) // terminal: genIdx=1
		b.u16(0) // modIdx=0
	})

	pgen := bodyOf(func(b *sfBuilder) {
		b.u16(GenInstrument)
		b.u16(0) // instrument 0
	})

	inst := bodyOf(func(b *sfBuilder) {
		b.name20("Test Instrument")
		b.u16(0) // bagIdx
		b.name20("EOI")
		b.u16(1) // terminal: 1 zone
	})

	ibag := bodyOf(func(b *sfBuilder) {
		b.u16(0)
		b.u16(0)
		b.u16(1)
		b.u16(0)
	})

	igen := bodyOf(func(b *sfBuilder) {
		b.u16(GenSampleID)
		b.u16(0) // sample 0
	})

	shdr := bodyOf(func(b *sfBuilder) {
		b.name20("Test Sample")
		b.u32(0)                    // start
		b.u32(uint32(sampleFrames)) // end
		b.u32(0)                    // loopStart
		b.u32(uint32(sampleFrames)) // loopEnd
		b.u32(44100)                // sampleRate
		b.byte1(60)                 // origPitch
		b.byte1(0)                  // pitchAdj
		b.u16(0)                    // sampleLink
		b.u16(SampleTypeMono)       // sampleType

		b.name20("EOS")
		b.u32(0)
		b.u32(0)
		b.u32(0)
		b.u32(0)
		b.u32(0)
		b.byte1(0)
		b.byte1(0)
		b.u16(0)
		b.u16(0)
	})

	pdta := listChunk("pdta",
		chunk("phdr", phdr),
		chunk("pbag", pbag),
		chunk("pmod", nil),
		chunk("pgen", pgen),
		chunk("inst", inst),
		chunk("ibag", ibag),
		chunk("imod", nil),
		chunk("igen", igen),
		chunk("shdr", shdr),
	)

	var sfbk bytes.Buffer
	sfbk.WriteString("sfbk")
	sfbk.Write(info)
	sfbk.Write(sdta)
	sfbk.Write(pdta)

	return chunk("RIFF", sfbk.Bytes())
}
