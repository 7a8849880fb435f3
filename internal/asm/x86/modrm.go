package x86

import "fmt"

// ModRM holds the fields of a ModR/M byte.
//
// The register fields are four bits wide: the low three bits are packed into
// the byte and bit 3 is carried by the REX prefix.
//
//	| 7  6 | 5  4  3 | 2  1  0 |
//	+------+---------+---------+
//	| mod  |   reg   |   r/m   |
type ModRM struct {
	rm, reg, mod byte
}

// Section 2.1.5, table 2.2, Mod column.
const (
	ModRMmodDereferenceRegister    byte = 0b00
	ModRMmodSmallDisplacedRegister byte = 0b01
	ModRMmodLargeDisplacedRegister byte = 0b10
	ModRMmodRegister               byte = 0b11

	// Section 2.1.5, table 2.2, Effective address column.
	ModRMrmSIB                = 0b100
	ModRMrmDisplacementOnly32 = 0b101
	ModRMrmDisplacementOnly16 = 0b110
)

// RM returns the 4-bit r/m field. Bit 3 goes to REX.B.
func (m *ModRM) RM() byte { return m.rm }

// Reg returns the 4-bit reg field. Bit 3 goes to REX.R.
func (m *ModRM) Reg() byte { return m.reg }

// Mod returns the 2-bit addressing mode.
func (m *ModRM) Mod() byte { return m.mod }

// SetRM sets the r/m field. Values above 0xf fail with ErrFieldRange.
func (m *ModRM) SetRM(v byte) error {
	if v > 0xf {
		return rangeError("ModR/M.rm", v, 4)
	}
	m.rm = v
	return nil
}

// SetReg sets the reg field. Values above 0xf fail with ErrFieldRange.
func (m *ModRM) SetReg(v byte) error {
	if v > 0xf {
		return rangeError("ModR/M.reg", v, 4)
	}
	m.reg = v
	return nil
}

// SetMod sets the mod field. Values above 3 fail with ErrFieldRange.
func (m *ModRM) SetMod(v byte) error {
	if v > 0b11 {
		return rangeError("ModR/M.mod", v, 2)
	}
	m.mod = v
	return nil
}

// Byte packs the fields into the ModR/M byte.
func (m *ModRM) Byte() byte {
	return m.mod<<6 | (m.reg&0b111)<<3 | m.rm&0b111
}

func (m *ModRM) String() string {
	return fmt.Sprintf("{Mod: %02b, Reg: %04b, R/M: %04b}", m.mod, m.reg, m.rm)
}

// SIB holds the fields of a Scale/Index/Base byte, with the same packing
// rules as ModRM.
//
//	| 7  6 | 5  4  3 | 2  1  0 |
//	+------+---------+---------+
//	| scale|  index  |  base   |
type SIB struct {
	base, index, scale byte
}

// Section 2.1.5, table 2.3.
const (
	SIBindexNone        byte = 0b100
	SIBbaseStackPointer byte = 0b100
	SIBbaseNone         byte = 0b101
)

// Base returns the 4-bit base field. Bit 3 goes to REX.B.
func (s *SIB) Base() byte { return s.base }

// Index returns the 4-bit index field. Bit 3 goes to REX.X.
func (s *SIB) Index() byte { return s.index }

// Scale returns the 2-bit scale field, the log2 of the scale factor.
func (s *SIB) Scale() byte { return s.scale }

// SetBase sets the base field. Values above 0xf fail with ErrFieldRange.
func (s *SIB) SetBase(v byte) error {
	if v > 0xf {
		return rangeError("SIB.base", v, 4)
	}
	s.base = v
	return nil
}

// SetIndex sets the index field. Values above 0xf fail with ErrFieldRange.
func (s *SIB) SetIndex(v byte) error {
	if v > 0xf {
		return rangeError("SIB.index", v, 4)
	}
	s.index = v
	return nil
}

// SetScale sets the encoded scale field; the multiplier is 1<<v.
func (s *SIB) SetScale(v byte) error {
	if v > 0b11 {
		return rangeError("SIB.scale", v, 2)
	}
	s.scale = v
	return nil
}

// SetScaleFactor sets the scale from a multiplier of 1, 2, 4 or 8.
func (s *SIB) SetScaleFactor(factor byte) error {
	switch factor {
	case 1:
		s.scale = 0b00
	case 2:
		s.scale = 0b01
	case 4:
		s.scale = 0b10
	case 8:
		s.scale = 0b11
	default:
		return fmt.Errorf("%w: scale in SIB must be one of 1, 2, 4, 8 but got %d", ErrInvalidOperand, factor)
	}
	return nil
}

// Byte packs the fields into the SIB byte.
func (s *SIB) Byte() byte {
	return s.scale<<6 | (s.index&0b111)<<3 | s.base&0b111
}

func (s *SIB) String() string {
	return fmt.Sprintf("{Scale: %02b, Index: %04b, Base: %04b}", s.scale, s.index, s.base)
}
