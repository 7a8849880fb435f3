package opcodes

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twitchyliquid64/golang-asm/obj"
	goasmx86 "github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/asmcore/x86enc/internal/asm"
	"github.com/asmcore/x86enc/internal/asm/golang_asm"
	"github.com/asmcore/x86enc/internal/asm/x86"
)

// TestEncode_golangAsm compares 64-bit encodings with the ones of the Go
// assembler, for instructions where both pick the same form.
func TestEncode_golangAsm(t *testing.T) {
	mem := &x86.Memory{Base: x86.R12, Index: x86.RCX, Scale: 8, Displacement: asm.Const(16)}
	for _, tc := range []struct {
		mnemonic string
		operands []x86.Operand
		// as, from and to are the Go assembler form, source first.
		as       obj.As
		from, to obj.Addr
	}{
		{
			mnemonic: "add", operands: []x86.Operand{reg(x86.RAX), imm(5)},
			as: goasmx86.AADDQ, from: golang_asm.Const(5), to: golang_asm.Reg(x86.RAX),
		},
		{
			mnemonic: "add", operands: []x86.Operand{reg(x86.R10), reg(x86.R9)},
			as: goasmx86.AADDQ, from: golang_asm.Reg(x86.R9), to: golang_asm.Reg(x86.R10),
		},
		{
			mnemonic: "sub", operands: []x86.Operand{reg(x86.ECX), imm(0x1000)},
			as: goasmx86.ASUBL, from: golang_asm.Const(0x1000), to: golang_asm.Reg(x86.ECX),
		},
		{
			mnemonic: "mov", operands: []x86.Operand{mem, reg(x86.RAX)},
			as: goasmx86.AMOVQ, from: golang_asm.Reg(x86.RAX), to: golang_asm.Mem(mem),
		},
		{
			mnemonic: "mov", operands: []x86.Operand{reg(x86.R11D), &x86.Memory{Base: x86.RSP, Displacement: asm.Const(8)}},
			as: goasmx86.AMOVL, from: golang_asm.Mem(&x86.Memory{Base: x86.RSP, Displacement: asm.Const(8)}), to: golang_asm.Reg(x86.R11D),
		},
		{
			mnemonic: "lea", operands: []x86.Operand{reg(x86.RDI), &x86.Memory{Base: x86.R13, Displacement: asm.Const(0)}},
			as: goasmx86.ALEAQ, from: golang_asm.Mem(&x86.Memory{Base: x86.R13}), to: golang_asm.Reg(x86.RDI),
		},
		{
			mnemonic: "push", operands: []x86.Operand{reg(x86.R8)},
			as: goasmx86.APUSHQ, from: golang_asm.Reg(x86.R8),
		},
		{
			mnemonic: "xor", operands: []x86.Operand{reg(x86.EAX), reg(x86.EAX)},
			as: goasmx86.AXORL, from: golang_asm.Reg(x86.EAX), to: golang_asm.Reg(x86.EAX),
		},
		{
			mnemonic: "mov", operands: []x86.Operand{reg(x86.RAX), imm(0x1122334455667788)},
			as: goasmx86.AMOVQ, from: golang_asm.Const(0x1122334455667788), to: golang_asm.Reg(x86.RAX),
		},
		{
			mnemonic: "movzx", operands: []x86.Operand{reg(x86.EAX), reg(x86.SIL)},
			as: goasmx86.AMOVBLZX, from: golang_asm.Reg(x86.SIL), to: golang_asm.Reg(x86.EAX),
		},
	} {
		tc := tc
		t.Run(tc.mnemonic+" "+formatOperands(tc.operands), func(t *testing.T) {
			a, err := golang_asm.NewAssembler()
			require.NoError(t, err)
			a.Add(tc.as, tc.from, tc.to)
			expected := a.Assemble()

			actual, err := encode(encodeCase{mode: x86.Mode64, mnemonic: tc.mnemonic, operands: tc.operands})
			require.NoError(t, err)
			require.Equal(t, expected, actual, "% x", actual)
		})
	}
}
