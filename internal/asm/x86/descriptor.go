package x86

import (
	"fmt"
	"strings"
)

// OperandKind is the shape of operand an opcode variant accepts in one slot.
type OperandKind uint8

const (
	// KindNone marks a slot which must be left empty.
	KindNone OperandKind = iota
	// KindRegister accepts any register of a class.
	KindRegister
	// KindFixedRegister accepts exactly one register, implied by the opcode.
	KindFixedRegister
	KindImmediate
	KindMemory
	KindRegisterOrMemory
	// KindMemoryOffset accepts an absolute address encoded without ModR/M.
	KindMemoryOffset
	// KindFarPointer accepts a segment selector and offset pair.
	KindFarPointer
	// KindRelative accepts a branch target encoded relative to the next instruction.
	KindRelative
)

func (k OperandKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRegister:
		return "register"
	case KindFixedRegister:
		return "fixed register"
	case KindImmediate:
		return "immediate"
	case KindMemory:
		return "memory"
	case KindRegisterOrMemory:
		return "register or memory"
	case KindMemoryOffset:
		return "memory offset"
	case KindFarPointer:
		return "far pointer"
	case KindRelative:
		return "relative offset"
	default:
		return fmt.Sprintf("OperandKind(%d)", uint8(k))
	}
}

// Role tells an operand which part of the instruction it is encoded in.
type Role uint8

const (
	// RoleImplicit operands are not encoded at all.
	RoleImplicit Role = iota
	// RoleReg operands go to ModR/M.reg.
	RoleReg
	// RoleRM operands go to ModR/M.rm, and SIB for memory.
	RoleRM
	// RoleOpcode operands are added to the last opcode byte.
	RoleOpcode
	RoleImmediate
	RoleExtraImmediate
)

func (r Role) String() string {
	switch r {
	case RoleImplicit:
		return "implicit"
	case RoleReg:
		return "reg"
	case RoleRM:
		return "rm"
	case RoleOpcode:
		return "opcode"
	case RoleImmediate:
		return "immediate"
	case RoleExtraImmediate:
		return "extra immediate"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Descriptor is the constraint one operand slot of a Variant puts on the
// operand given for it, together with the role the operand takes in the
// encoding.
type Descriptor struct {
	Kind OperandKind
	// Class is the accepted register class of KindRegister and
	// KindRegisterOrMemory.
	Class RegisterClass
	// Register is the register of KindFixedRegister.
	Register Register
	// Width is the size of immediates, memory operands, memory offsets and
	// relative offsets, and the offset size of far pointers. Memory with
	// WidthNone accepts any size.
	Width Width
	Role  Role
	// SignExtended immediates are sign-extended by the processor to the
	// operand size.
	SignExtended bool
}

// Size returns the operand size implied by the descriptor, or WidthNone if the
// descriptor doesn't imply one.
func (d Descriptor) Size() Width {
	switch d.Kind {
	case KindRegister, KindRegisterOrMemory:
		return d.Class.Width()
	case KindFixedRegister:
		return d.Register.Width()
	case KindImmediate:
		if d.SignExtended {
			return WidthNone
		}
		return d.Width
	case KindMemory, KindMemoryOffset, KindFarPointer:
		return d.Width
	}
	return WidthNone
}

// As returns d with its role replaced.
func (d Descriptor) As(role Role) Descriptor {
	d.Role = role
	return d
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindNone:
		return "none"
	case KindRegister:
		return d.Class.String()
	case KindFixedRegister:
		return d.Register.String()
	case KindImmediate:
		s := fmt.Sprintf("imm%d", d.Width)
		if d.SignExtended {
			s = "s" + s
		}
		return s
	case KindMemory:
		if d.Width == WidthNone {
			return "m"
		}
		return fmt.Sprintf("m%d", d.Width)
	case KindRegisterOrMemory:
		if w := d.Class.Width(); w != WidthNone {
			return fmt.Sprintf("r/m%d", w)
		}
		return "r/m"
	case KindMemoryOffset:
		return fmt.Sprintf("moffs%d", d.Width)
	case KindFarPointer:
		return fmt.Sprintf("ptr16:%d", d.Width)
	case KindRelative:
		return fmt.Sprintf("rel%d", d.Width)
	default:
		return d.Kind.String()
	}
}

// NoOperand is a slot which must be left empty.
var NoOperand = Descriptor{}

// R is a register of class c in ModR/M.reg.
func R(c RegisterClass) Descriptor {
	return Descriptor{Kind: KindRegister, Class: c, Role: RoleReg}
}

// RM is a register of class c or memory of the same width in ModR/M.rm.
func RM(c RegisterClass) Descriptor {
	return Descriptor{Kind: KindRegisterOrMemory, Class: c, Role: RoleRM}
}

// O is a register of class c added to the opcode.
func O(c RegisterClass) Descriptor {
	return Descriptor{Kind: KindRegister, Class: c, Role: RoleOpcode}
}

// Fixed is the implicit register r.
func Fixed(r Register) Descriptor {
	return Descriptor{Kind: KindFixedRegister, Register: r, Role: RoleImplicit}
}

// I is an immediate of width w.
func I(w Width) Descriptor {
	return Descriptor{Kind: KindImmediate, Width: w, Role: RoleImmediate}
}

// SImm is an immediate of width w sign-extended to the operand size.
func SImm(w Width) Descriptor {
	return Descriptor{Kind: KindImmediate, Width: w, Role: RoleImmediate, SignExtended: true}
}

// XI is the second immediate of an instruction.
func XI(w Width) Descriptor {
	return Descriptor{Kind: KindImmediate, Width: w, Role: RoleExtraImmediate}
}

// M is memory of width w in ModR/M.rm. M(WidthNone) accepts memory of any size.
func M(w Width) Descriptor {
	return Descriptor{Kind: KindMemory, Width: w, Role: RoleRM}
}

// MOffs is a memory offset addressing data of width w.
func MOffs(w Width) Descriptor {
	return Descriptor{Kind: KindMemoryOffset, Width: w, Role: RoleImplicit}
}

// Ptr is a far pointer with an offset of width w.
func Ptr(w Width) Descriptor {
	return Descriptor{Kind: KindFarPointer, Width: w, Role: RoleImmediate}
}

// Rel is a relative branch offset of width w.
func Rel(w Width) Descriptor {
	return Descriptor{Kind: KindRelative, Width: w, Role: RoleImmediate}
}

func formatDescriptors(ds []Descriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
