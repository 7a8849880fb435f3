package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmcore/x86enc/internal/asm"
	"github.com/asmcore/x86enc/internal/asm/x86"
)

func TestParseOperand(t *testing.T) {
	sym := cliSymbols.get("table")
	tests := []struct {
		tok    string
		branch bool
		exp    x86.Operand
	}{
		{tok: "RAX", exp: x86.Reg(x86.RAX)},
		{tok: "-1", exp: x86.Imm(-1)},
		{tok: "0xffffffffffffffff", exp: x86.Imm(-1)},
		{tok: "$table+0x10", exp: x86.ImmValue(asm.SymbolRef(sym, 0x10))},
		{tok: "0x100", branch: true, exp: x86.RelTo(asm.Const(0x100))},
		{tok: "short:8", exp: &x86.RelativeOffset{Target: asm.Const(8), Width: x86.Width8}},
		{tok: "far:0x10:0x2000", exp: &x86.FarPointer{Selector: 0x10, Offset: asm.Const(0x2000)}},
		{tok: "moffs:$table", exp: &x86.MemoryOffset{Address: asm.SymbolRef(sym, 0)}},
		{tok: "[rax]", exp: &x86.Memory{Base: x86.RAX}},
		{tok: "[rbp-8]", exp: &x86.Memory{Base: x86.RBP, Displacement: asm.Const(-8)}},
		{tok: "[ rbx + rsi ]", exp: &x86.Memory{Base: x86.RBX, Index: x86.RSI}},
		{tok: "[rcx*8+$table]", exp: &x86.Memory{Index: x86.RCX, Scale: 8, Displacement: asm.SymbolRef(sym, 0)}},
		{tok: "[0x1000]", exp: &x86.Memory{Displacement: asm.Const(0x1000)}},
		{tok: "dword ptr gs:[rax+4-1]", exp: &x86.Memory{Base: x86.RAX, Displacement: asm.Const(3), Segment: x86.GS, Size: x86.Width32}},
		{tok: "fword [eax]", exp: &x86.Memory{Base: x86.EAX, Size: x86.Width48}},
		{tok: "imm64:$table", exp: &x86.Immediate{Value: asm.SymbolRef(sym, 0), Width: x86.Width64}},
		{tok: "imm8:-1", exp: &x86.Immediate{Value: asm.Const(-1), Width: x86.Width8}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.tok, func(t *testing.T) {
			actual, err := parseOperand(tc.tok, tc.branch)
			require.NoError(t, err)
			require.Equal(t, tc.exp, actual)
		})
	}
}

func TestParseOperand_errors(t *testing.T) {
	for _, tc := range []struct {
		tok    string
		expErr string
	}{
		{tok: "", expErr: "empty operand"},
		{tok: "zmm0", expErr: `invalid number "zmm0"`},
		{tok: "far:0x10", expErr: `far pointer "0x10" must be selector:offset`},
		{tok: "far:0x10000:0", expErr: `invalid segment selector "0x10000"`},
		{tok: "[rax+rbx+rcx]", expErr: "more than two address registers"},
		{tok: "[rax*2+rbx*4]", expErr: "more than one index register"},
		{tok: "[rax-rbx]", expErr: "register rbx can't be subtracted"},
		{tok: "[rax*x]", expErr: `invalid scale "x"`},
		{tok: "huge [rax]", expErr: `unexpected "huge" in memory operand "huge [rax]"`},
		{tok: "[$a+$b]", expErr: `memory operand "[$a+$b]" can refer to one symbol`},
		{tok: "$", expErr: `missing symbol name in "$"`},
		{tok: "imm12:1", expErr: `invalid immediate width in "imm12:1"`},
		{tok: "immx:1", expErr: `invalid immediate width in "immx:1"`},
	} {
		tc := tc
		t.Run(tc.tok, func(t *testing.T) {
			_, err := parseOperand(tc.tok, false)
			require.EqualError(t, err, tc.expErr)
		})
	}
}

func TestSplitTerms(t *testing.T) {
	require.Equal(t, []string{"rax", "+rcx*8", "-0x10"}, splitTerms("rax+rcx*8-0x10"))
	require.Equal(t, []string{"-8"}, splitTerms("-8"))
}
