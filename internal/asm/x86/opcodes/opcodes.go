// Package opcodes holds the opcode variant tables of the supported mnemonics.
//
// Within a table, variants are listed shortest encoding first: the selector
// takes the first variant matching the operands, so an 8-bit sign-extended
// immediate form must precede the full-width immediate form of the same
// instruction. The tables are shared and must not be modified.
package opcodes

import (
	"sort"
	"strings"

	"github.com/asmcore/x86enc/internal/asm/x86"
)

var tables = map[string][]x86.Variant{}

func register(mnemonic string, variants ...[]x86.Variant) {
	if _, ok := tables[mnemonic]; ok {
		panic("BUG: duplicate opcode table for " + mnemonic)
	}
	var all []x86.Variant
	for _, vs := range variants {
		all = append(all, vs...)
	}
	tables[mnemonic] = all
}

// Lookup returns the variants of mnemonic, which is case-insensitive.
func Lookup(mnemonic string) ([]x86.Variant, bool) {
	vs, ok := tables[strings.ToLower(mnemonic)]
	return vs, ok
}

// Mnemonics returns the supported mnemonics in alphabetical order.
func Mnemonics() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func operands(ds ...x86.Descriptor) []x86.Descriptor {
	return ds
}

// sizeForm is one of the operand sizes selected by prefixes rather than by
// the opcode.
type sizeForm struct {
	class x86.RegisterClass
	width x86.Width
	modes x86.ModeSet
}

var (
	size16 = sizeForm{class: x86.Class16, width: x86.Width16}
	size32 = sizeForm{class: x86.Class32, width: x86.Width32}
	size64 = sizeForm{class: x86.Class64, width: x86.Width64, modes: x86.Modes64}

	sizeForms = [...]sizeForm{size16, size32, size64}
)

// imm returns the immediate of an operation of this size. 64-bit operations
// take a sign-extended 32-bit immediate.
func (s sizeForm) imm() x86.Descriptor {
	if s.width == x86.Width64 {
		return x86.SImm(x86.Width32)
	}
	return x86.I(s.width)
}

// accumulator returns AX, EAX or RAX.
func (s sizeForm) accumulator() x86.Register {
	switch s.width {
	case x86.Width16:
		return x86.AX
	case x86.Width32:
		return x86.EAX
	default:
		return x86.RAX
	}
}

// sized expands f into the 16, 32 and 64-bit forms of an instruction. The
// 64-bit form is only valid in 64-bit mode.
func sized(f func(s sizeForm) x86.Variant) []x86.Variant {
	vs := make([]x86.Variant, 0, len(sizeForms))
	for _, s := range sizeForms {
		v := f(s)
		v.OperandSize = s.width
		if v.Modes == 0 {
			v.Modes = s.modes
		}
		vs = append(vs, v)
	}
	return vs
}

// near returns the rel16 and rel32 forms of a near branch, with the default
// offset size of each mode listed first.
func near(opcode ...byte) []x86.Variant {
	return []x86.Variant{
		{Opcode: opcode, Operands: operands(x86.Rel(x86.Width16)), Modes: x86.Modes16},
		{Opcode: opcode, Operands: operands(x86.Rel(x86.Width32)), Modes: x86.Modes32 | x86.Modes64},
		{Opcode: opcode, Operands: operands(x86.Rel(x86.Width32)), OperandSize: x86.Width32, Modes: x86.Modes16},
		{Opcode: opcode, Operands: operands(x86.Rel(x86.Width16)), OperandSize: x86.Width16, Modes: x86.Modes32},
	}
}

// simple returns the variant of an instruction without operands.
func simple(opcode ...byte) []x86.Variant {
	return []x86.Variant{{Opcode: opcode}}
}
