package x86

import (
	"fmt"
	"strings"

	"github.com/asmcore/x86enc/internal/asm"
)

// Memory is a memory operand addressed as
// Segment:[Base + Index*Scale + Displacement].
type Memory struct {
	Base  Register
	Index Register
	// Scale is the index multiplier, one of 1, 2, 4 or 8. Zero means 1.
	Scale        byte
	Displacement asm.Value
	// Segment is an optional segment override.
	Segment Register
	// Size is the size of the addressed data, or WidthNone to accept any.
	Size Width
}

// IsMatch implements Operand.IsMatch
func (m *Memory) IsMatch(d Descriptor) bool {
	switch d.Kind {
	case KindMemory:
		return d.Width == WidthNone || m.Size == WidthNone || m.Size == d.Width
	case KindRegisterOrMemory:
		w := d.Class.Width()
		return w != WidthNone && (m.Size == WidthNone || m.Size == w)
	}
	return false
}

// Adjust implements Operand.Adjust
func (m *Memory) Adjust(Descriptor) {}

// Construct implements Operand.Construct
func (m *Memory) Construct(ctx Context, inst *Instruction) error {
	aw, err := m.addressSize(ctx.Mode())
	if err != nil {
		return err
	}
	if err = inst.SetAddressSize(ctx.Mode(), aw); err != nil {
		return err
	}
	if err = applySegment(inst, m.Segment); err != nil {
		return err
	}
	if aw == Width16 {
		return m.construct16(inst)
	}
	return m.construct32(ctx.Mode(), aw, inst)
}

// addressSize returns the width of the address registers, or the address size
// of mode when there are none.
func (m *Memory) addressSize(mode Mode) (Width, error) {
	var class RegisterClass
	for _, r := range [...]Register{m.Base, m.Index} {
		if r == NoRegister {
			continue
		}
		c := r.Class()
		switch c {
		case Class16, Class32, Class64:
		default:
			return WidthNone, fmt.Errorf("%w: %s can't be used in an address", ErrInvalidOperand, r)
		}
		if r.LongModeOnly() && mode != Mode64 {
			return WidthNone, fmt.Errorf("%w: %s requires 64-bit mode", ErrInvalidOperand, r)
		}
		if class != ClassNone && class != c {
			return WidthNone, fmt.Errorf("%w: address registers %s and %s differ in size", ErrInvalidOperand, m.Base, m.Index)
		}
		class = c
	}
	if class == ClassNone {
		return mode.Width(), nil
	}
	return class.Width(), nil
}

// Section 2.1.5, table 2.1. The index is the rm value.
var modRM16Pairs = [...][2]Register{
	{BX, SI}, {BX, DI}, {BP, SI}, {BP, DI}, {SI, NoRegister}, {DI, NoRegister}, {BP, NoRegister}, {BX, NoRegister},
}

func (m *Memory) construct16(inst *Instruction) error {
	if m.Scale > 1 {
		return fmt.Errorf("%w: 16-bit addressing has no scaled index", ErrInvalidOperand)
	}
	mod := inst.SetModRM()

	if m.Base == NoRegister && m.Index == NoRegister {
		_ = mod.SetMod(ModRMmodDereferenceRegister)
		_ = mod.SetRM(ModRMrmDisplacementOnly16)
		return inst.SetDisplacement(m.Displacement, Width16, false)
	}

	rm := -1
	for i, pair := range modRM16Pairs {
		if (m.Base == pair[0] && m.Index == pair[1]) || (m.Base == pair[1] && m.Index == pair[0]) {
			rm = i
			break
		}
	}
	if rm < 0 {
		return fmt.Errorf("%w: %s is not a 16-bit address", ErrInvalidOperand, m)
	}
	_ = mod.SetRM(byte(rm))

	// [BP] shares its encoding with the displacement only form, so it always
	// takes a displacement.
	return m.setDisplacement(inst, mod, byte(rm) == ModRMrmDisplacementOnly16, Width16, false)
}

func (m *Memory) construct32(mode Mode, aw Width, inst *Instruction) error {
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	if m.Index != NoRegister && m.Index.Num() == 0b100 {
		return fmt.Errorf("%w: %s can't be an index register", ErrInvalidOperand, m.Index)
	}
	if m.Index == NoRegister && scale != 1 {
		return fmt.Errorf("%w: scale without an index register", ErrInvalidOperand)
	}
	if m.Base.NeedsREX() || m.Index.NeedsREX() {
		inst.RequireREX()
	}

	// Displacements are sign-extended to 64-bit addresses.
	signed := aw == Width64
	mod := inst.SetModRM()

	if m.Base == NoRegister {
		_ = mod.SetMod(ModRMmodDereferenceRegister)
		if m.Index == NoRegister && mode != Mode64 {
			_ = mod.SetRM(ModRMrmDisplacementOnly32)
			return inst.SetDisplacement(m.Displacement, Width32, signed)
		}
		// In 64-bit mode rm=101 is RIP relative, so absolute addresses go
		// through a SIB byte without base.
		_ = mod.SetRM(ModRMrmSIB)
		sib := inst.SetSIB()
		_ = sib.SetBase(SIBbaseNone)
		if err := m.setIndex(sib, scale); err != nil {
			return err
		}
		return inst.SetDisplacement(m.Displacement, Width32, signed)
	}

	base := m.Base.Num()
	if m.Index == NoRegister && base&0b111 != SIBbaseStackPointer {
		_ = mod.SetRM(base)
	} else {
		_ = mod.SetRM(ModRMrmSIB)
		sib := inst.SetSIB()
		_ = sib.SetBase(base)
		if err := m.setIndex(sib, scale); err != nil {
			return err
		}
	}
	// A base of BP or R13 with mod=00 means no base, so it needs a displacement.
	return m.setDisplacement(inst, mod, base&0b111 == SIBbaseNone, Width32, signed)
}

func (m *Memory) setIndex(sib *SIB, scale byte) error {
	if m.Index == NoRegister {
		return sib.SetIndex(SIBindexNone)
	}
	if err := sib.SetIndex(m.Index.Num()); err != nil {
		return err
	}
	return sib.SetScaleFactor(scale)
}

// setDisplacement picks the shortest displacement for the base register
// already encoded in mod.
func (m *Memory) setDisplacement(inst *Instruction, mod *ModRM, needsDisplacement bool, wide Width, signed bool) error {
	d := m.Displacement
	switch {
	case d.IsConstant() && d.Constant == 0 && !needsDisplacement:
		return mod.SetMod(ModRMmodDereferenceRegister)
	case d.IsConstant() && fitInSigned8bit(d.Constant):
		if err := mod.SetMod(ModRMmodSmallDisplacedRegister); err != nil {
			return err
		}
		return inst.SetDisplacement(d, Width8, true)
	default:
		if err := mod.SetMod(ModRMmodLargeDisplacedRegister); err != nil {
			return err
		}
		return inst.SetDisplacement(d, wide, signed)
	}
}

func (m *Memory) String() string {
	var b strings.Builder
	switch m.Size {
	case Width8:
		b.WriteString("byte ")
	case Width16:
		b.WriteString("word ")
	case Width32:
		b.WriteString("dword ")
	case Width48:
		b.WriteString("fword ")
	case Width64:
		b.WriteString("qword ")
	}
	if m.Segment != NoRegister {
		b.WriteString(m.Segment.String())
		b.WriteByte(':')
	}
	b.WriteByte('[')
	var terms []string
	if m.Base != NoRegister {
		terms = append(terms, m.Base.String())
	}
	if m.Index != NoRegister {
		if m.Scale > 1 {
			terms = append(terms, fmt.Sprintf("%s*%d", m.Index, m.Scale))
		} else {
			terms = append(terms, m.Index.String())
		}
	}
	if d := m.Displacement; !d.IsConstant() || d.Constant != 0 || len(terms) == 0 {
		terms = append(terms, d.String())
	}
	b.WriteString(strings.Join(terms, "+"))
	b.WriteByte(']')
	return b.String()
}
