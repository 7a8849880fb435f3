package golang_asm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twitchyliquid64/golang-asm/obj"
	goasmx86 "github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/asmcore/x86enc/internal/asm"
	"github.com/asmcore/x86enc/internal/asm/x86"
)

func TestRegister(t *testing.T) {
	for _, tc := range []struct {
		r   x86.Register
		exp int16
	}{
		{r: x86.AL, exp: goasmx86.REG_AL},
		{r: x86.SIL, exp: goasmx86.REG_SIB},
		{r: x86.R15B, exp: goasmx86.REG_R15B},
		{r: x86.AH, exp: goasmx86.REG_AH},
		{r: x86.BH, exp: goasmx86.REG_BH},
		{r: x86.AX, exp: goasmx86.REG_AX},
		{r: x86.R9D, exp: goasmx86.REG_R9},
		{r: x86.RSP, exp: goasmx86.REG_SP},
		{r: x86.R15, exp: goasmx86.REG_R15},
		{r: x86.FS, exp: goasmx86.REG_FS},
	} {
		actual, ok := Register(tc.r)
		require.True(t, ok, tc.r)
		require.Equal(t, tc.exp, actual, tc.r)
	}

	_, ok := Register(x86.CR0)
	require.False(t, ok)
}

func TestMem(t *testing.T) {
	m := &x86.Memory{Base: x86.RBX, Index: x86.RCX, Scale: 4, Displacement: asm.Const(-8)}
	require.Equal(t, obj.Addr{
		Type:   obj.TYPE_MEM,
		Reg:    goasmx86.REG_BX,
		Index:  goasmx86.REG_CX,
		Scale:  4,
		Offset: -8,
	}, Mem(m))

	require.Panics(t, func() {
		Mem(&x86.Memory{Base: x86.RAX, Segment: x86.FS})
	})
}

func TestAssembler(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)
	a.Add(goasmx86.AADDQ, Const(5), Reg(x86.RAX))
	a.Add(goasmx86.AMOVL, Mem(&x86.Memory{Base: x86.RBX}), Reg(x86.ECX))
	require.Equal(t, []byte{0x48, 0x83, 0xc0, 0x05, 0x8b, 0x0b}, a.Assemble())
}
