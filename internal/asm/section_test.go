package asm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmcore/x86enc/internal/asm"
)

func TestSection(t *testing.T) {
	s := asm.NewSection(".text", 0x400000)
	require.Equal(t, ".text", s.Name())
	require.Equal(t, uint64(0x400000), s.Base())
	require.Equal(t, uint64(0x400000), s.Address())

	buf := s.Next()
	_, _ = buf.Write([]byte{0xe8, 0, 0, 0, 0})
	require.Equal(t, uint64(0x400005), s.Address())
	require.Equal(t, []byte{0xe8, 0, 0, 0, 0}, s.Bytes())

	sym := &asm.Symbol{Name: "f"}
	s.AddRelocations(asm.Relocation{Symbol: sym, Section: ".text", Address: 0x400000, Addend: -4, Kind: asm.RelocRelative, Size: 4, Offset: 1})
	require.Equal(t, 1, s.Relocations().Len())

	s.Relocations().Reset()
	require.Zero(t, s.Relocations().Len())
}

func TestRelocation(t *testing.T) {
	r := asm.Relocation{
		Symbol:  &asm.Symbol{Name: "printf"},
		Section: ".text",
		Address: 0x1000,
		Addend:  -4,
		Kind:    asm.RelocRelative,
		Size:    4,
		Offset:  1,
	}
	require.Equal(t, uint64(0x1001), r.FieldAddress())
	require.Equal(t, "relative printf-4 @ .text:0x1000+1 (4 bytes)", r.String())

	r.Kind, r.Addend = asm.RelocAbsolute, 8
	require.Equal(t, "absolute printf+8 @ .text:0x1000+1 (4 bytes)", r.String())
	require.Equal(t, "RelocationKind(7)", asm.RelocationKind(7).String())
}

func TestRelocationTable(t *testing.T) {
	var table asm.RelocationTable
	require.Zero(t, table.Len())
	require.Empty(t, table.Relocations())

	a := asm.Relocation{Symbol: &asm.Symbol{Name: "a"}, Size: 4}
	b := asm.Relocation{Symbol: &asm.Symbol{Name: "b"}, Size: 8}
	table.Append(a)
	table.Append(b)
	require.Equal(t, []asm.Relocation{a, b}, table.Relocations())
}

func TestValue(t *testing.T) {
	sym := &asm.Symbol{Name: "data"}
	for _, tc := range []struct {
		v        asm.Value
		constant bool
		exp      string
	}{
		{v: asm.Value{}, constant: true, exp: "0x0"},
		{v: asm.Const(-16), constant: true, exp: "-0x10"},
		{v: asm.SymbolRef(sym, 0), exp: "data"},
		{v: asm.SymbolRef(sym, 8), exp: "data+0x8"},
		{v: asm.SymbolRef(sym, -8), exp: "data-0x8"},
	} {
		require.Equal(t, tc.constant, tc.v.IsConstant(), tc.exp)
		require.Equal(t, tc.exp, tc.v.String())
	}

	var nilSym *asm.Symbol
	require.Equal(t, "<nil>", nilSym.String())
}
