// Package x86enc encodes x86 and x86-64 machine instructions.
//
// An Encoder picks, for a mnemonic and its operands, the first encoding of the
// instruction tables which accepts them in the configured processor mode, and
// appends the machine code to a Section. References to symbols whose address
// isn't known yet are written as zeros and recorded as relocations of the
// section.
//
//	enc, _ := x86enc.NewEncoder(x86enc.NewEncoderConfig())
//	text := enc.NewSection(".text")
//	_, err := enc.Encode(text, x86enc.Request{
//		Mnemonic: "add",
//		Operands: []x86enc.Operand{x86enc.Reg(x86enc.RAX), x86enc.Imm(5)},
//	})
package x86enc

import (
	"errors"
	"fmt"

	"github.com/asmcore/x86enc/internal/asm"
	"github.com/asmcore/x86enc/internal/asm/x86"
)

type (
	// Mode is the processor mode: 16, 32 or 64-bit.
	Mode = x86.Mode
	// Features is a set of CPU features.
	Features = x86.Features
	// Width is an operand or address size in bits.
	Width = x86.Width
	// Register is an x86 register.
	Register = x86.Register

	// Operand is one operand of a Request. A nil Operand is absent.
	Operand = x86.Operand
	// Immediate is a constant or symbolic immediate, optionally of a fixed width.
	Immediate = x86.Immediate
	// Memory is a Segment:[Base + Index*Scale + Displacement] operand.
	Memory = x86.Memory
	// MemoryOffset is an absolute address encoded without ModR/M.
	MemoryOffset = x86.MemoryOffset
	// FarPointer is an immediate segment selector and offset.
	FarPointer = x86.FarPointer
	// RelativeOffset is a branch target.
	RelativeOffset = x86.RelativeOffset

	// Symbol is a location whose address is resolved through relocations.
	Symbol = asm.Symbol
	// Value is a constant or a symbol plus addend.
	Value = asm.Value
	// Relocation is a field of encoded code to patch with a symbol address.
	Relocation = asm.Relocation
	// Section is a named run of encoded code and its relocations.
	Section = asm.Section
)

const (
	Mode16 = x86.Mode16
	Mode32 = x86.Mode32
	Mode64 = x86.Mode64
)

const (
	WidthNone = x86.WidthNone
	Width8    = x86.Width8
	Width16   = x86.Width16
	Width32   = x86.Width32
	Width48   = x86.Width48
	Width64   = x86.Width64
)

const (
	FeatureCMOV   = x86.FeatureCMOV
	FeatureCX8    = x86.FeatureCX8
	FeatureCX16   = x86.FeatureCX16
	FeatureLZCNT  = x86.FeatureLZCNT
	FeaturePOPCNT = x86.FeaturePOPCNT
	FeatureBMI1   = x86.FeatureBMI1
	FeaturesAll   = x86.FeaturesAll
)

// The registers most commonly needed by callers. Every register is available
// through ParseRegister.
const (
	AL  = x86.AL
	CL  = x86.CL
	AX  = x86.AX
	EAX = x86.EAX
	ECX = x86.ECX
	EDX = x86.EDX
	EBX = x86.EBX
	ESP = x86.ESP
	EBP = x86.EBP
	ESI = x86.ESI
	EDI = x86.EDI
	RAX = x86.RAX
	RCX = x86.RCX
	RDX = x86.RDX
	RBX = x86.RBX
	RSP = x86.RSP
	RBP = x86.RBP
	RSI = x86.RSI
	RDI = x86.RDI
	R8  = x86.R8
	R9  = x86.R9
	R10 = x86.R10
	R11 = x86.R11
	R12 = x86.R12
	R13 = x86.R13
	R14 = x86.R14
	R15 = x86.R15
)

var (
	// ErrUnknownMnemonic is returned when no instruction table exists for a mnemonic.
	ErrUnknownMnemonic = errors.New("unknown mnemonic")

	ErrNoMatchingVariant = x86.ErrNoMatchingVariant
	ErrInvalidOperand    = x86.ErrInvalidOperand
	ErrEncodingOverflow  = x86.ErrEncodingOverflow
	ErrUnsupportedWidth  = x86.ErrUnsupportedWidth
)

// ParseRegister returns the register named name, such as "rax" or "r8d".
func ParseRegister(name string) (Register, error) {
	r, ok := x86.RegisterByName(name)
	if !ok {
		return x86.NoRegister, fmt.Errorf("%w: unknown register %q", ErrInvalidOperand, name)
	}
	return r, nil
}

// Reg returns a register operand.
func Reg(r Register) Operand {
	return x86.Reg(r)
}

// Imm returns a constant immediate operand.
func Imm(v int64) Operand {
	return x86.Imm(v)
}

// SymbolImm returns an immediate operand holding the address of sym plus addend.
func SymbolImm(sym *Symbol, addend int64) Operand {
	return x86.ImmValue(asm.SymbolRef(sym, addend))
}

// SizedImm returns an immediate operand encoded in a field of exactly w bits,
// such as the 64-bit immediate of "mov rax, imm64".
func SizedImm(v Value, w Width) Operand {
	return &x86.Immediate{Value: v, Width: w}
}

// Branch returns a near branch target at a constant address.
func Branch(target uint64) Operand {
	return x86.RelTo(asm.Const(int64(target)))
}

// ShortBranch returns a branch target which must be reachable with an 8-bit offset.
func ShortBranch(target uint64) Operand {
	return &x86.RelativeOffset{Target: asm.Const(int64(target)), Width: x86.Width8}
}

// SymbolBranch returns a near branch to sym plus addend.
func SymbolBranch(sym *Symbol, addend int64) Operand {
	return x86.RelTo(asm.SymbolRef(sym, addend))
}

// Mem returns the memory operand [base + disp] of the given size. Size may be
// WidthNone when another operand implies it.
func Mem(size Width, base Register, disp int64) *Memory {
	return &x86.Memory{Base: base, Displacement: asm.Const(disp), Size: size}
}

// Const returns a constant Value.
func Const(v int64) Value {
	return asm.Const(v)
}

// SymbolRef returns a Value referring to the address of sym plus addend.
func SymbolRef(sym *Symbol, addend int64) Value {
	return asm.SymbolRef(sym, addend)
}
