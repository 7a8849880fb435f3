package opcodes

import "github.com/asmcore/x86enc/internal/asm/x86"

func init() {
	var mov []x86.Variant
	mov = append(mov, x86.Variant{Opcode: []byte{0x88}, Operands: operands(x86.RM(x86.Class8), x86.R(x86.Class8))})
	mov = append(mov, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0x89}, Operands: operands(x86.RM(s.class), x86.R(s.class))}
	})...)
	mov = append(mov, x86.Variant{Opcode: []byte{0x8a}, Operands: operands(x86.R(x86.Class8), x86.RM(x86.Class8))})
	mov = append(mov, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0x8b}, Operands: operands(x86.R(s.class), x86.RM(s.class))}
	})...)
	mov = append(mov,
		x86.Variant{Opcode: []byte{0x8c}, Operands: operands(x86.RM(x86.Class16), x86.R(x86.ClassSegment))},
		x86.Variant{Opcode: []byte{0x8e}, Operands: operands(x86.R(x86.ClassSegment), x86.RM(x86.Class16))},
		x86.Variant{Opcode: []byte{0xa0}, Operands: operands(x86.Fixed(x86.AL), x86.MOffs(x86.Width8))},
	)
	mov = append(mov, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0xa1}, Operands: operands(x86.Fixed(s.accumulator()), x86.MOffs(s.width))}
	})...)
	mov = append(mov, x86.Variant{Opcode: []byte{0xa2}, Operands: operands(x86.MOffs(x86.Width8), x86.Fixed(x86.AL))})
	mov = append(mov, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0xa3}, Operands: operands(x86.MOffs(s.width), x86.Fixed(s.accumulator()))}
	})...)
	mov = append(mov,
		x86.Variant{Opcode: []byte{0xb0}, Operands: operands(x86.O(x86.Class8), x86.I(x86.Width8))},
		x86.Variant{Opcode: []byte{0xb8}, Operands: operands(x86.O(x86.Class16), x86.I(x86.Width16)), OperandSize: x86.Width16},
		x86.Variant{Opcode: []byte{0xb8}, Operands: operands(x86.O(x86.Class32), x86.I(x86.Width32)), OperandSize: x86.Width32},
		// The sign-extended imm32 form is shorter than the imm64 one.
		x86.Variant{Opcode: []byte{0xc7}, Operands: operands(x86.RM(x86.Class64), x86.SImm(x86.Width32)), OperandSize: x86.Width64, Modes: x86.Modes64},
		x86.Variant{Opcode: []byte{0xb8}, Operands: operands(x86.O(x86.Class64), x86.I(x86.Width64)), OperandSize: x86.Width64, Modes: x86.Modes64},
		x86.Variant{Opcode: []byte{0xc6}, Operands: operands(x86.RM(x86.Class8), x86.I(x86.Width8))},
		x86.Variant{Opcode: []byte{0xc7}, Operands: operands(x86.RM(x86.Class16), x86.I(x86.Width16)), OperandSize: x86.Width16},
		x86.Variant{Opcode: []byte{0xc7}, Operands: operands(x86.RM(x86.Class32), x86.I(x86.Width32)), OperandSize: x86.Width32},

		// Control registers. The general purpose register is in ModR/M.rm
		// and the operand size is fixed by the mode.
		x86.Variant{Opcode: []byte{0x0f, 0x20}, Operands: operands(x86.R(x86.Class32).As(x86.RoleRM), x86.R(x86.ClassControl)), Modes: x86.ModesLegacy},
		x86.Variant{Opcode: []byte{0x0f, 0x20}, Operands: operands(x86.R(x86.Class64).As(x86.RoleRM), x86.R(x86.ClassControl)), Modes: x86.Modes64},
		x86.Variant{Opcode: []byte{0x0f, 0x22}, Operands: operands(x86.R(x86.ClassControl), x86.R(x86.Class32).As(x86.RoleRM)), Modes: x86.ModesLegacy},
		x86.Variant{Opcode: []byte{0x0f, 0x22}, Operands: operands(x86.R(x86.ClassControl), x86.R(x86.Class64).As(x86.RoleRM)), Modes: x86.Modes64},
	)
	register("mov", mov)

	register("movzx", extend(0xb6))
	register("movsx", extend(0xbe))
	register("movsxd", []x86.Variant{{
		Opcode:      []byte{0x63},
		Operands:    operands(x86.R(x86.Class64), x86.RM(x86.Class32)),
		OperandSize: x86.Width64,
		Modes:       x86.Modes64,
	}})

	register("lea", sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0x8d}, Operands: operands(x86.R(s.class), x86.M(x86.WidthNone))}
	}))

	register("xchg",
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x90}, Operands: operands(x86.Fixed(s.accumulator()), x86.O(s.class))}
		}),
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x90}, Operands: operands(x86.O(s.class), x86.Fixed(s.accumulator()))}
		}),
		[]x86.Variant{
			{Opcode: []byte{0x86}, Operands: operands(x86.RM(x86.Class8), x86.R(x86.Class8))},
			{Opcode: []byte{0x86}, Operands: operands(x86.R(x86.Class8), x86.RM(x86.Class8))},
		},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x87}, Operands: operands(x86.RM(s.class), x86.R(s.class))}
		}),
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x87}, Operands: operands(x86.R(s.class), x86.RM(s.class))}
		}),
	)

	register("cmpxchg",
		[]x86.Variant{{Opcode: []byte{0x0f, 0xb0}, Operands: operands(x86.RM(x86.Class8), x86.R(x86.Class8))}},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x0f, 0xb1}, Operands: operands(x86.RM(s.class), x86.R(s.class))}
		}),
	)
	register("xadd",
		[]x86.Variant{{Opcode: []byte{0x0f, 0xc0}, Operands: operands(x86.RM(x86.Class8), x86.R(x86.Class8))}},
		sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x0f, 0xc1}, Operands: operands(x86.RM(s.class), x86.R(s.class))}
		}),
	)
	register("cmpxchg8b", []x86.Variant{{
		Opcode: []byte{0x0f, 0xc7}, Reg: 1, Operands: operands(x86.M(x86.Width64)), Features: x86.FeatureCX8,
	}})
	register("cmpxchg16b", []x86.Variant{{
		Opcode: []byte{0x0f, 0xc7}, Reg: 1, Operands: operands(x86.M(x86.WidthNone)),
		OperandSize: x86.Width64, Modes: x86.Modes64, Features: x86.FeatureCX16,
	}})
	register("bswap", []x86.Variant{
		{Opcode: []byte{0x0f, 0xc8}, Operands: operands(x86.O(x86.Class32)), OperandSize: x86.Width32},
		{Opcode: []byte{0x0f, 0xc8}, Operands: operands(x86.O(x86.Class64)), OperandSize: x86.Width64, Modes: x86.Modes64},
	})

	for _, op := range []struct {
		mnemonic string
		opcode   byte
		feature  x86.Features
	}{
		{"popcnt", 0xb8, x86.FeaturePOPCNT},
		{"tzcnt", 0xbc, x86.FeatureBMI1},
		{"lzcnt", 0xbd, x86.FeatureLZCNT},
	} {
		op := op
		register(op.mnemonic, sized(func(s sizeForm) x86.Variant {
			return x86.Variant{
				Prefix:   []byte{0xf3},
				Opcode:   []byte{0x0f, op.opcode},
				Operands: operands(x86.R(s.class), x86.RM(s.class)),
				Features: op.feature,
			}
		}))
	}
}

// extend returns MOVZX or MOVSX, whose byte source form is at opcode and
// word source form at opcode+1.
func extend(opcode byte) []x86.Variant {
	vs := sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0x0f, opcode}, Operands: operands(x86.R(s.class), x86.RM(x86.Class8))}
	})
	return append(vs, sized(func(s sizeForm) x86.Variant {
		return x86.Variant{Opcode: []byte{0x0f, opcode + 1}, Operands: operands(x86.R(s.class), x86.RM(x86.Class16))}
	})[1:]...)
}
