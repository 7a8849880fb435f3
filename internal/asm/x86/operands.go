package x86

import (
	"fmt"

	"github.com/asmcore/x86enc/internal/asm"
)

// Operand is one operand of an instruction.
//
// IsMatch reports whether the operand is acceptable for a descriptor and has
// no side effects. Adjust records the role the matched descriptor gives the
// operand, and Construct then writes the operand into the instruction.
//
// Operands are passed in slices where a nil Operand marks an absent operand.
type Operand interface {
	IsMatch(d Descriptor) bool
	Adjust(d Descriptor)
	Construct(ctx Context, inst *Instruction) error
	fmt.Stringer
}

var (
	_ Operand = (*RegisterOperand)(nil)
	_ Operand = (*Immediate)(nil)
	_ Operand = (*Memory)(nil)
	_ Operand = (*MemoryOffset)(nil)
	_ Operand = (*FarPointer)(nil)
	_ Operand = (*RelativeOffset)(nil)
)

// RegisterOperand is a register operand.
type RegisterOperand struct {
	Register Register
	role     Role
}

// Reg returns a register operand.
func Reg(r Register) *RegisterOperand {
	return &RegisterOperand{Register: r}
}

// IsMatch implements Operand.IsMatch
func (o *RegisterOperand) IsMatch(d Descriptor) bool {
	switch d.Kind {
	case KindRegister, KindRegisterOrMemory:
		return o.Register.Valid() && o.Register.Class() == d.Class
	case KindFixedRegister:
		return o.Register == d.Register
	}
	return false
}

// Adjust implements Operand.Adjust
func (o *RegisterOperand) Adjust(d Descriptor) {
	o.role = d.Role
}

// Construct implements Operand.Construct
func (o *RegisterOperand) Construct(ctx Context, inst *Instruction) (err error) {
	r := o.Register
	if r.LongModeOnly() && ctx.Mode() != Mode64 {
		return fmt.Errorf("%w: %s requires 64-bit mode", ErrInvalidOperand, r)
	}

	switch o.role {
	case RoleImplicit:
		return nil
	case RoleReg:
		err = inst.SetModRM().SetReg(r.Num())
	case RoleRM:
		m := inst.SetModRM()
		if err = m.SetMod(ModRMmodRegister); err == nil {
			err = m.SetRM(r.Num())
		}
	case RoleOpcode:
		err = inst.SetOpcodeRegister(r.Num())
	default:
		panic(fmt.Sprintf("BUG: register operand %s in role %s", r, o.role))
	}
	if err != nil {
		return err
	}

	if r.NeedsREX() {
		inst.RequireREX()
	}
	if r.IsHighByte() {
		inst.ForbidREX()
	}
	return nil
}

func (o *RegisterOperand) String() string {
	return o.Register.String()
}

// Immediate is a constant or symbolic immediate operand.
type Immediate struct {
	Value asm.Value
	// Width is the size of the immediate field, or WidthNone to accept the
	// first field the value fits.
	Width Width

	role   Role
	field  Width
	signed bool
}

// Imm returns a constant immediate operand.
func Imm(v int64) *Immediate {
	return &Immediate{Value: asm.Const(v)}
}

// ImmValue returns an immediate operand holding v.
func ImmValue(v asm.Value) *Immediate {
	return &Immediate{Value: v}
}

// IsMatch implements Operand.IsMatch
//
// Constants match when they fit the width. Symbolic values can only be
// resolved into fields of at least 16 bits. A set Width only matches fields
// of that width.
func (o *Immediate) IsMatch(d Descriptor) bool {
	if d.Kind != KindImmediate {
		return false
	}
	if o.Width != WidthNone && o.Width != d.Width {
		return false
	}
	if !o.Value.IsConstant() {
		return d.Width >= Width16
	}
	return fits(o.Value.Constant, d.Width, d.SignExtended)
}

// Adjust implements Operand.Adjust
func (o *Immediate) Adjust(d Descriptor) {
	o.role = d.Role
	o.field = d.Width
	o.signed = d.SignExtended
}

// Construct implements Operand.Construct
func (o *Immediate) Construct(_ Context, inst *Instruction) error {
	switch {
	case o.role == RoleExtraImmediate:
		return inst.SetExtraImmediate(o.Value, o.field)
	case o.signed:
		return inst.SetSignedImmediate(o.Value, o.field)
	default:
		return inst.SetImmediate(o.Value, o.field)
	}
}

func (o *Immediate) String() string {
	return o.Value.String()
}

// MemoryOffset is an absolute address used by the MOV forms which encode the
// address in place of ModR/M.
type MemoryOffset struct {
	Address asm.Value
	// Segment is an optional segment override.
	Segment Register
	// Size is the size of the addressed data, or WidthNone to accept any.
	Size Width
	// AddressSize is the width of the encoded address. WidthNone selects the
	// address size of the mode.
	AddressSize Width
}

// IsMatch implements Operand.IsMatch
func (o *MemoryOffset) IsMatch(d Descriptor) bool {
	return d.Kind == KindMemoryOffset && (o.Size == WidthNone || o.Size == d.Width)
}

// Adjust implements Operand.Adjust
func (o *MemoryOffset) Adjust(Descriptor) {}

// Construct implements Operand.Construct
func (o *MemoryOffset) Construct(ctx Context, inst *Instruction) error {
	aw := o.AddressSize
	if aw == WidthNone {
		aw = ctx.Mode().Width()
	}
	if err := inst.SetAddressSize(ctx.Mode(), aw); err != nil {
		return err
	}
	if err := applySegment(inst, o.Segment); err != nil {
		return err
	}
	return inst.SetDisplacement(o.Address, aw, false)
}

func (o *MemoryOffset) String() string {
	s := "[" + o.Address.String() + "]"
	if o.Segment != NoRegister {
		s = o.Segment.String() + ":" + s
	}
	return s
}

// FarPointer is an immediate segment selector and offset pair.
type FarPointer struct {
	Selector uint16
	Offset   asm.Value

	width Width
}

// IsMatch implements Operand.IsMatch
func (o *FarPointer) IsMatch(d Descriptor) bool {
	if d.Kind != KindFarPointer {
		return false
	}
	if !o.Offset.IsConstant() {
		return d.Width >= Width16
	}
	return fits(o.Offset.Constant, d.Width, false)
}

// Adjust implements Operand.Adjust
func (o *FarPointer) Adjust(d Descriptor) {
	o.width = d.Width
}

// Construct implements Operand.Construct
func (o *FarPointer) Construct(_ Context, inst *Instruction) error {
	if err := inst.SetImmediate(o.Offset, o.width); err != nil {
		return err
	}
	return inst.SetExtraImmediate(asm.Const(int64(o.Selector)), Width16)
}

func (o *FarPointer) String() string {
	return fmt.Sprintf("%#x:%s", o.Selector, o.Offset)
}

// RelativeOffset is a branch target. It is encoded as the distance from the
// end of the instruction to Target.
type RelativeOffset struct {
	Target asm.Value
	// Width is Width8 for short branches. WidthNone selects a near branch
	// with a 16 or 32 bit offset.
	Width Width

	width Width
}

// RelTo returns a near branch to target.
func RelTo(target asm.Value) *RelativeOffset {
	return &RelativeOffset{Target: target}
}

// IsMatch implements Operand.IsMatch
func (o *RelativeOffset) IsMatch(d Descriptor) bool {
	if d.Kind != KindRelative {
		return false
	}
	if o.Width == WidthNone {
		return d.Width == Width16 || d.Width == Width32
	}
	return o.Width == d.Width
}

// Adjust implements Operand.Adjust
func (o *RelativeOffset) Adjust(d Descriptor) {
	o.width = d.Width
}

// Construct implements Operand.Construct
func (o *RelativeOffset) Construct(_ Context, inst *Instruction) error {
	return inst.SetRelativeImmediate(o.Target, o.width)
}

func (o *RelativeOffset) String() string {
	if o.Width == Width8 {
		return "short " + o.Target.String()
	}
	return o.Target.String()
}

func applySegment(inst *Instruction, seg Register) error {
	if seg == NoRegister {
		return nil
	}
	p, err := segmentPrefix(seg)
	if err != nil {
		return err
	}
	return inst.SetSegment(p)
}
