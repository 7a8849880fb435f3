package opcodes

import "github.com/asmcore/x86enc/internal/asm/x86"

// conditions lists the condition codes with their mnemonic suffixes. The
// first suffix is the canonical one.
var conditions = [...][]string{
	0x0: {"o"},
	0x1: {"no"},
	0x2: {"b", "c", "nae"},
	0x3: {"ae", "nb", "nc"},
	0x4: {"e", "z"},
	0x5: {"ne", "nz"},
	0x6: {"be", "na"},
	0x7: {"a", "nbe"},
	0x8: {"s"},
	0x9: {"ns"},
	0xa: {"p", "pe"},
	0xb: {"np", "po"},
	0xc: {"l", "nge"},
	0xd: {"ge", "nl"},
	0xe: {"le", "ng"},
	0xf: {"g", "nle"},
}

func init() {
	register("jmp",
		[]x86.Variant{{Opcode: []byte{0xeb}, Operands: operands(x86.Rel(x86.Width8))}},
		near(0xe9),
		indirect(4),
		far(0xea, 5),
	)
	register("call",
		near(0xe8),
		indirect(2),
		far(0x9a, 3),
	)

	for cc, suffixes := range conditions {
		cc := byte(cc)
		jcc := append([]x86.Variant{{Opcode: []byte{0x70 + cc}, Operands: operands(x86.Rel(x86.Width8))}}, near(0x0f, 0x80+cc)...)
		setcc := []x86.Variant{{Opcode: []byte{0x0f, 0x90 + cc}, Operands: operands(x86.RM(x86.Class8))}}
		cmovcc := sized(func(s sizeForm) x86.Variant {
			return x86.Variant{Opcode: []byte{0x0f, 0x40 + cc}, Operands: operands(x86.R(s.class), x86.RM(s.class)), Features: x86.FeatureCMOV}
		})
		for _, suffix := range suffixes {
			register("j"+suffix, jcc)
			register("set"+suffix, setcc)
			register("cmov"+suffix, cmovcc)
		}
	}
	register("loop", []x86.Variant{{Opcode: []byte{0xe2}, Operands: operands(x86.Rel(x86.Width8))}})

	register("ret", simple(0xc3), []x86.Variant{{Opcode: []byte{0xc2}, Operands: operands(x86.I(x86.Width16))}})
	register("retf", simple(0xcb), []x86.Variant{{Opcode: []byte{0xca}, Operands: operands(x86.I(x86.Width16))}})

	register("push",
		[]x86.Variant{
			{Opcode: []byte{0x50}, Operands: operands(x86.O(x86.Class16)), OperandSize: x86.Width16},
			{Opcode: []byte{0x50}, Operands: operands(x86.O(x86.Class32)), OperandSize: x86.Width32, Modes: x86.ModesLegacy},
			// 64-bit is the default operand size of the stack in 64-bit mode.
			{Opcode: []byte{0x50}, Operands: operands(x86.O(x86.Class64)), Modes: x86.Modes64},
			{Opcode: []byte{0x6a}, Operands: operands(x86.SImm(x86.Width8))},
			{Opcode: []byte{0x68}, Operands: operands(x86.I(x86.Width16)), Modes: x86.Modes16},
			{Opcode: []byte{0x68}, Operands: operands(x86.I(x86.Width32)), Modes: x86.Modes32},
			{Opcode: []byte{0x68}, Operands: operands(x86.SImm(x86.Width32)), Modes: x86.Modes64},
			{Opcode: []byte{0x68}, Operands: operands(x86.I(x86.Width32)), OperandSize: x86.Width32, Modes: x86.Modes16},
			{Opcode: []byte{0x68}, Operands: operands(x86.I(x86.Width16)), OperandSize: x86.Width16, Modes: x86.Modes32 | x86.Modes64},
		},
		stackRM(0xff, 6),
		[]x86.Variant{
			{Opcode: []byte{0x06}, Operands: operands(x86.Fixed(x86.ES)), Modes: x86.ModesLegacy},
			{Opcode: []byte{0x0e}, Operands: operands(x86.Fixed(x86.CS)), Modes: x86.ModesLegacy},
			{Opcode: []byte{0x16}, Operands: operands(x86.Fixed(x86.SS)), Modes: x86.ModesLegacy},
			{Opcode: []byte{0x1e}, Operands: operands(x86.Fixed(x86.DS)), Modes: x86.ModesLegacy},
			{Opcode: []byte{0x0f, 0xa0}, Operands: operands(x86.Fixed(x86.FS))},
			{Opcode: []byte{0x0f, 0xa8}, Operands: operands(x86.Fixed(x86.GS))},
		},
	)
	register("pop",
		[]x86.Variant{
			{Opcode: []byte{0x58}, Operands: operands(x86.O(x86.Class16)), OperandSize: x86.Width16},
			{Opcode: []byte{0x58}, Operands: operands(x86.O(x86.Class32)), OperandSize: x86.Width32, Modes: x86.ModesLegacy},
			{Opcode: []byte{0x58}, Operands: operands(x86.O(x86.Class64)), Modes: x86.Modes64},
		},
		stackRM(0x8f, 0),
		[]x86.Variant{
			{Opcode: []byte{0x07}, Operands: operands(x86.Fixed(x86.ES)), Modes: x86.ModesLegacy},
			{Opcode: []byte{0x17}, Operands: operands(x86.Fixed(x86.SS)), Modes: x86.ModesLegacy},
			{Opcode: []byte{0x1f}, Operands: operands(x86.Fixed(x86.DS)), Modes: x86.ModesLegacy},
			{Opcode: []byte{0x0f, 0xa1}, Operands: operands(x86.Fixed(x86.FS))},
			{Opcode: []byte{0x0f, 0xa9}, Operands: operands(x86.Fixed(x86.GS))},
		},
	)

	register("enter", []x86.Variant{{Opcode: []byte{0xc8}, Operands: operands(x86.I(x86.Width16), x86.XI(x86.Width8))}})
	register("leave", simple(0xc9))
	register("int", []x86.Variant{{Opcode: []byte{0xcd}, Operands: operands(x86.I(x86.Width8))}})
	register("int3", simple(0xcc))
	register("into", []x86.Variant{{Opcode: []byte{0xce}, Modes: x86.ModesLegacy}})
	register("syscall", []x86.Variant{{Opcode: []byte{0x0f, 0x05}, Modes: x86.Modes64}})

	register("nop",
		simple(0x90),
		[]x86.Variant{
			{Opcode: []byte{0x0f, 0x1f}, Operands: operands(x86.RM(x86.Class16)), OperandSize: x86.Width16},
			{Opcode: []byte{0x0f, 0x1f}, Operands: operands(x86.RM(x86.Class32)), OperandSize: x86.Width32},
		},
	)
	register("pause", []x86.Variant{{Prefix: []byte{0xf3}, Opcode: []byte{0x90}}})
	register("hlt", simple(0xf4))
	register("ud2", simple(0x0f, 0x0b))
	register("cpuid", simple(0x0f, 0xa2))
	register("clc", simple(0xf8))
	register("stc", simple(0xf9))
	register("cli", simple(0xfa))
	register("sti", simple(0xfb))
	register("cld", simple(0xfc))
	register("std", simple(0xfd))
}

// stackRM returns the ModR/M forms of PUSH and POP, which default to 64-bit
// operands in 64-bit mode. The default size of each mode is listed first.
func stackRM(opcode, ext byte) []x86.Variant {
	return []x86.Variant{
		{Opcode: []byte{opcode}, Reg: ext, Operands: operands(x86.RM(x86.Class16)), OperandSize: x86.Width16, Modes: x86.Modes16, DefaultSize: true},
		{Opcode: []byte{opcode}, Reg: ext, Operands: operands(x86.RM(x86.Class32)), OperandSize: x86.Width32, Modes: x86.Modes32, DefaultSize: true},
		{Opcode: []byte{opcode}, Reg: ext, Operands: operands(x86.RM(x86.Class64)), Modes: x86.Modes64, DefaultSize: true},
		{Opcode: []byte{opcode}, Reg: ext, Operands: operands(x86.RM(x86.Class32)), OperandSize: x86.Width32, Modes: x86.Modes16},
		{Opcode: []byte{opcode}, Reg: ext, Operands: operands(x86.RM(x86.Class16)), OperandSize: x86.Width16, Modes: x86.Modes32 | x86.Modes64},
	}
}

// indirect returns the near indirect forms of JMP and CALL, with the default
// size of each mode listed first.
func indirect(ext byte) []x86.Variant {
	return []x86.Variant{
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.RM(x86.Class16)), OperandSize: x86.Width16, Modes: x86.Modes16, DefaultSize: true},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.RM(x86.Class32)), OperandSize: x86.Width32, Modes: x86.Modes32, DefaultSize: true},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.RM(x86.Class64)), Modes: x86.Modes64, DefaultSize: true},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.RM(x86.Class32)), OperandSize: x86.Width32, Modes: x86.Modes16},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.RM(x86.Class16)), OperandSize: x86.Width16, Modes: x86.Modes32},
	}
}

// far returns the direct and memory indirect far forms of JMP and CALL. The
// indirect form takes a m16:16 or m16:32 pointer.
func far(direct, ext byte) []x86.Variant {
	return []x86.Variant{
		{Opcode: []byte{direct}, Operands: operands(x86.Ptr(x86.Width16)), Modes: x86.Modes16},
		{Opcode: []byte{direct}, Operands: operands(x86.Ptr(x86.Width32)), Modes: x86.Modes32},
		{Opcode: []byte{direct}, Operands: operands(x86.Ptr(x86.Width32)), OperandSize: x86.Width32, Modes: x86.Modes16},
		{Opcode: []byte{direct}, Operands: operands(x86.Ptr(x86.Width16)), OperandSize: x86.Width16, Modes: x86.Modes32},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.M(x86.Width32)), OperandSize: x86.Width16, Modes: x86.Modes16, DefaultSize: true},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.M(x86.Width48)), OperandSize: x86.Width32, Modes: x86.Modes32 | x86.Modes64, DefaultSize: true},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.M(x86.Width48)), OperandSize: x86.Width32, Modes: x86.Modes16},
		{Opcode: []byte{0xff}, Reg: ext, Operands: operands(x86.M(x86.Width32)), OperandSize: x86.Width16, Modes: x86.Modes32},
	}
}
