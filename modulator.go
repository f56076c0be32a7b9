package sf2

import (
	"fmt"
	"io"
)

// Mod is one raw PMOD/IMOD record, spec.md §3 / §6.1.
type Mod struct {
	SrcOper    uint16
	DestOper   uint16
	Amount     int16
	AmtSrcOper uint16
	TransOper  uint16
}

// parseZoneMods streams ModCount 10-byte modulator records for one zone,
// spec.md §4.7. No validation happens here; that's deferred to import time
// (translateModulator), matching the component split in spec.md §2.
func parseZoneMods(r FileCallbacks, modBasePos int64, span bagSpan) ([]Mod, error) {
	if span.ModCount == 0 {
		return nil, nil
	}

	pos := modBasePos + int64(span.ModIdx)*10
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek mod: %w", errIO(err))
	}

	mods := make([]Mod, span.ModCount)
	for i := range mods {
		srcOper, err := readU16LE(r)
		if err != nil {
			return nil, fmt.Errorf("read mod[%d] src: %w", i, err)
		}
		destOper, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		amount, err := readI16LE(r)
		if err != nil {
			return nil, err
		}
		amtSrcOper, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		transOper, err := readU16LE(r)
		if err != nil {
			return nil, err
		}
		mods[i] = Mod{srcOper, destOper, amount, amtSrcOper, transOper}
	}
	return mods, nil
}

// ModCurve is the modulator source transfer curve, SF2.01 §8.2.
type ModCurve uint8

const (
	CurveLinear ModCurve = iota
	CurveConcave
	CurveConvex
	CurveSwitch
)

// ModSrc is one decoded modulator source/amount-source field: a 7-bit
// controller index plus the CC/direction/polarity/curve bit flags packed
// into the high bits of the 16-bit wire field.
type ModSrc struct {
	Index    uint8
	CC       bool
	Negative bool
	Bipolar  bool
	Curve    ModCurve
}

// decodeModSrc unpacks one raw 16-bit modulator source field. ok is false
// when the curve bits name a curve this loader does not understand, per
// spec.md §4.10 ("unknown curve -> disable this modulator").
func decodeModSrc(raw uint16) (src ModSrc, ok bool) {
	src.Index = uint8(raw & 0x7F)
	src.CC = raw&0x80 != 0
	src.Negative = raw&0x100 != 0
	src.Bipolar = raw&0x200 != 0
	curve := ModCurve((raw >> 10) & 0x3F)
	if curve > CurveSwitch {
		return src, false
	}
	src.Curve = curve
	return src, true
}

// Modulator is the runtime, decoded form of a Mod, spec.md §3 / §4.10.
type Modulator struct {
	Src1      ModSrc
	Src2      ModSrc
	Dest      uint16
	Amount    int16
	Transform uint16
}

// identity is the (src1, dest, src2, flags1, flags2, transform) tuple that
// the SF2 §9.5.1 modulator-replacement rule compares on, ignoring amount.
type modIdentity struct {
	src1, src2 ModSrc
	dest       uint16
	transform  uint16
}

func (m Modulator) identity() modIdentity {
	return modIdentity{m.Src1, m.Src2, m.Dest, m.Transform}
}

// translateModulator converts one raw Mod into a runtime Modulator,
// disabling it (Amount: 0) when its source curve is unrecognized or it
// names a transform other than Linear, spec.md §4.10.
func translateModulator(m Mod) Modulator {
	src1, ok1 := decodeModSrc(m.SrcOper)
	src2, ok2 := decodeModSrc(m.AmtSrcOper)

	amount := m.Amount
	if !ok1 || !ok2 {
		warnf("modulator dest=%d has an unrecognized source curve, disabling", m.DestOper)
		amount = 0
	}
	if m.TransOper != 0 {
		warnf("modulator dest=%d uses unsupported transform %d, disabling", m.DestOper, m.TransOper)
		amount = 0
	}

	return Modulator{Src1: src1, Src2: src2, Dest: m.DestOper, Amount: amount, Transform: m.TransOper}
}

// mergeModulators implements the SF2 §9.5.1 identity-replacement rule: a
// modulator in local replaces any modulator in global with the same
// identity tuple; everything else from both lists survives, the surviving
// global modulators first, then all of local.
func mergeModulators(global, local []Modulator) []Modulator {
	merged := make([]Modulator, 0, len(global)+len(local))
	localIdentities := make(map[modIdentity]bool, len(local))
	for _, m := range local {
		localIdentities[m.identity()] = true
	}
	for _, m := range global {
		if localIdentities[m.identity()] {
			continue
		}
		merged = append(merged, m)
	}
	merged = append(merged, local...)
	return merged
}
