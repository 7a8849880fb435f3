package opcodes

import "github.com/asmcore/x86enc/internal/asm/x86"

func init() {
	for _, op := range []struct {
		mnemonic string
		base     byte
		ext      byte
	}{
		{"add", 0x00, 0},
		{"or", 0x08, 1},
		{"adc", 0x10, 2},
		{"sbb", 0x18, 3},
		{"and", 0x20, 4},
		{"sub", 0x28, 5},
		{"xor", 0x30, 6},
		{"cmp", 0x38, 7},
	} {
		register(op.mnemonic, alu(op.base, op.ext))
	}

	register("test",
		[]x86.Variant{{Opcode: []byte{0xa8}, Operands: operands(x86.Fixed(x86.AL), x86.I(x86.Width8))}},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0xa9}, Operands: operands(x86.Fixed(s.accumulator()), s.imm())}
		}),
		[]x86.Variant{{Opcode: []byte{0xf6}, Reg: 0, Operands: operands(x86.RM(x86.Class8), x86.I(x86.Width8))}},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0xf7}, Reg: 0, Operands: operands(x86.RM(s.class), s.imm())}
		}),
		[]x86.Variant{{Opcode: []byte{0x84}, Operands: operands(x86.RM(x86.Class8), x86.R(x86.Class8))}},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x85}, Operands: operands(x86.RM(s.class), x86.R(s.class))}
		}),
	)

	register("inc", incDec(0x40, 0))
	register("dec", incDec(0x48, 1))

	for _, op := range []struct {
		mnemonic string
		ext      byte
	}{
		{"not", 2},
		{"neg", 3},
		{"mul", 4},
		{"div", 6},
		{"idiv", 7},
	} {
		register(op.mnemonic, unary(op.ext))
	}

	register("imul",
		unary(5),
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x0f, 0xaf}, Operands: operands(x86.R(s.class), x86.RM(s.class))}
		}),
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x6b}, Operands: operands(x86.R(s.class), x86.RM(s.class), x86.SImm(x86.Width8))}
		}),
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x69}, Operands: operands(x86.R(s.class), x86.RM(s.class), s.imm())}
		}),
	)

	for _, op := range []struct {
		mnemonic string
		ext      byte
	}{
		{"rol", 0},
		{"ror", 1},
		{"rcl", 2},
		{"rcr", 3},
		{"shl", 4},
		{"sal", 4},
		{"shr", 5},
		{"sar", 7},
	} {
		register(op.mnemonic, shift(op.ext))
	}
}

// alu returns the variants of the eight classic two-operand arithmetic and
// logic instructions, which share one opcode layout starting at base.
func alu(base, ext byte) []x86.Variant {
	var vs []x86.Variant
	vs = append(vs,
		x86.Variant{Opcode: []byte{base + 4}, Operands: operands(x86.Fixed(x86.AL), x86.I(x86.Width8))},
		x86.Variant{Opcode: []byte{0x80}, Reg: ext, Operands: operands(x86.RM(x86.Class8), x86.I(x86.Width8))},
	)
	vs = append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0x83}, Reg: ext, Operands: operands(x86.RM(s.class), x86.SImm(x86.Width8))}
	})...)
	vs = append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{base + 5}, Operands: operands(x86.Fixed(s.accumulator()), s.imm())}
	})...)
	vs = append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0x81}, Reg: ext, Operands: operands(x86.RM(s.class), s.imm())}
	})...)
	vs = append(vs, x86.Variant{Opcode: []byte{base}, Operands: operands(x86.RM(x86.Class8), x86.R(x86.Class8))})
	vs = append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{base + 1}, Operands: operands(x86.RM(s.class), x86.R(s.class))}
	})...)
	vs = append(vs, x86.Variant{Opcode: []byte{base + 2}, Operands: operands(x86.R(x86.Class8), x86.RM(x86.Class8))})
	vs = append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{base + 3}, Operands: operands(x86.R(s.class), x86.RM(s.class))}
	})...)
	return vs
}

// incDec returns INC or DEC. The one-byte register forms were reassigned to
// REX in 64-bit mode.
func incDec(short, ext byte) []x86.Variant {
	return append([]x86.Variant{
		{Opcode: []byte{short}, Operands: operands(x86.O(x86.Class16)), OperandSize: x86.Width16, Modes: x86.ModesLegacy},
		{Opcode: []byte{short}, Operands: operands(x86.O(x86.Class32)), OperandSize: x86.Width32, Modes: x86.ModesLegacy},
	}, unaryFE(ext)...)
}

func unaryFE(ext byte) []x86.Variant {
	return append(
		[]x86.Variant{{Opcode: []byte{0xfe}, Reg: ext, Operands: operands(x86.RM(x86.Class8))}},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.RM(s.class))}
		})...,
	)
}

func unary(ext byte) []x86.Variant {
	return append(
		[]x86.Variant{{Opcode: []byte{0xf6}, Reg: ext, Operands: operands(x86.RM(x86.Class8))}},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0xf7}, Reg: ext, Operands: operands(x86.RM(s.class))}
		})...,
	)
}

func shift(ext byte) []x86.Variant {
	vs := []x86.Variant{{Opcode: []byte{0xd2}, Reg: ext, Operands: operands(x86.RM(x86.Class8), x86.Fixed(x86.CL))}}
	vs = append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0xd3}, Reg: ext, Operands: operands(x86.RM(s.class), x86.Fixed(x86.CL))}
	})...)
	vs = append(vs, x86.Variant{Opcode: []byte{0xc0}, Reg: ext, Operands: operands(x86.RM(x86.Class8), x86.I(x86.Width8))})
	vs = append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0xc1}, Reg: ext, Operands: operands(x86.RM(s.class), x86.I(x86.Width8))}
	})...)
	return vs
}
