package x86

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	for _, tc := range []struct {
		r            Register
		name         string
		class        RegisterClass
		num          byte
		rex, high    bool
		longModeOnly bool
	}{
		{r: AL, name: "al", class: Class8, num: 0},
		{r: BH, name: "bh", class: Class8, num: 7, high: true},
		{r: SPL, name: "spl", class: Class8, num: 4, rex: true, longModeOnly: true},
		{r: R15B, name: "r15b", class: Class8, num: 15, rex: true, longModeOnly: true},
		{r: SP, name: "sp", class: Class16, num: 4},
		{r: R8W, name: "r8w", class: Class16, num: 8, rex: true, longModeOnly: true},
		{r: EDI, name: "edi", class: Class32, num: 7},
		{r: R12D, name: "r12d", class: Class32, num: 12, rex: true, longModeOnly: true},
		{r: RAX, name: "rax", class: Class64, num: 0, longModeOnly: true},
		{r: R13, name: "r13", class: Class64, num: 13, rex: true, longModeOnly: true},
		{r: GS, name: "gs", class: ClassSegment, num: 5},
		{r: CR3, name: "cr3", class: ClassControl, num: 3},
		{r: CR8, name: "cr8", class: ClassControl, num: 8, rex: true, longModeOnly: true},
	} {
		require.Equal(t, tc.name, tc.r.String())
		require.Equal(t, tc.class, tc.r.Class(), tc.name)
		require.Equal(t, tc.num, tc.r.Num(), tc.name)
		require.Equal(t, tc.rex, tc.r.NeedsREX(), tc.name)
		require.Equal(t, tc.high, tc.r.IsHighByte(), tc.name)
		require.Equal(t, tc.longModeOnly, tc.r.LongModeOnly(), tc.name)

		r, ok := RegisterByName(tc.name)
		require.True(t, ok)
		require.Equal(t, tc.r, r)
	}

	r, ok := RegisterByName("R9D")
	require.True(t, ok)
	require.Equal(t, R9D, r)
	_, ok = RegisterByName("xmm0")
	require.False(t, ok)

	require.False(t, NoRegister.Valid())
	require.Equal(t, WidthNone, CR0.Width())
	require.Equal(t, Width16, DS.Width())
}

func TestFits(t *testing.T) {
	require.True(t, fits(-128, Width8, true))
	require.False(t, fits(-129, Width8, false))
	require.True(t, fits(255, Width8, false))
	require.False(t, fits(255, Width8, true))
	require.True(t, fits(-1<<31, Width32, true))
	require.True(t, fits(1<<32-1, Width32, false))
	require.False(t, fits(1<<32, Width32, false))
	require.True(t, fits(-1<<63, Width64, true))
	require.False(t, fits(0, WidthNone, false))
}

func TestModeSet(t *testing.T) {
	var all ModeSet
	for _, m := range Modes {
		require.True(t, all.Contains(m))
	}
	require.False(t, ModesLegacy.Contains(Mode64))
	require.True(t, Modes64.Contains(Mode64))
	require.Equal(t, "16|32", ModesLegacy.String())
	require.Equal(t, "16|32|64", all.String())

	m, err := ParseMode("32")
	require.NoError(t, err)
	require.Equal(t, Mode32, m)
	_, err = ParseMode("8")
	require.Error(t, err)
}

func TestFeatures(t *testing.T) {
	fs, err := ParseFeatures("cx8, POPCNT,")
	require.NoError(t, err)
	require.True(t, fs.Has(FeatureCX8|FeaturePOPCNT))
	require.False(t, fs.Has(FeatureLZCNT))
	require.True(t, fs.Has(0))
	require.Equal(t, "cx8,popcnt", fs.String())

	fs = fs.Set(FeatureCX8, false).Set(FeatureLZCNT, true)
	require.Equal(t, "lzcnt,popcnt", fs.String())

	_, err = ParseFeatures("avx512")
	require.Error(t, err)
}
