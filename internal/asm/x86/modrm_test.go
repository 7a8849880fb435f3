package x86

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModRM_Byte(t *testing.T) {
	for _, tc := range []struct {
		rm, reg, mod byte
		exp          byte
	}{
		{rm: 0xf, reg: 0, mod: 0, exp: 0x07},
		{rm: 0, reg: 0xf, mod: 0, exp: 0x38},
		{rm: 0, reg: 0, mod: 0b11, exp: 0xc0},
		{rm: 5, reg: 5, mod: 0b10, exp: 0xad},
		{rm: 0b100, reg: 0b010, mod: 0b01, exp: 0x54},
	} {
		var m ModRM
		require.NoError(t, m.SetRM(tc.rm))
		require.NoError(t, m.SetReg(tc.reg))
		require.NoError(t, m.SetMod(tc.mod))
		require.Equal(t, tc.exp, m.Byte(), m.String())
		require.Equal(t, tc.rm, m.RM())
		require.Equal(t, tc.reg, m.Reg())
		require.Equal(t, tc.mod, m.Mod())
	}
}

func TestModRM_range(t *testing.T) {
	var m ModRM
	require.ErrorIs(t, m.SetRM(0x10), ErrFieldRange)
	require.ErrorIs(t, m.SetReg(0xff), ErrFieldRange)
	require.ErrorIs(t, m.SetMod(4), ErrFieldRange)
	// Rejected values leave the field untouched.
	require.Equal(t, byte(0), m.Byte())

	for v := byte(0); v <= 0xf; v++ {
		require.NoError(t, m.SetRM(v))
		require.Equal(t, v, m.RM())
		require.NoError(t, m.SetReg(v))
		require.Equal(t, v, m.Reg())
	}
	for v := byte(0); v <= 3; v++ {
		require.NoError(t, m.SetMod(v))
		require.Equal(t, v, m.Mod())
	}
}

func TestSIB_Byte(t *testing.T) {
	var s SIB
	require.NoError(t, s.SetBase(5))
	require.NoError(t, s.SetIndex(5))
	require.NoError(t, s.SetScale(2))
	require.Equal(t, byte(0xad), s.Byte())

	require.NoError(t, s.SetBase(0xd))
	require.NoError(t, s.SetIndex(0xc))
	require.NoError(t, s.SetScaleFactor(1))
	require.Equal(t, byte(0b00_100_101), s.Byte())
}

func TestSIB_range(t *testing.T) {
	var s SIB
	require.ErrorIs(t, s.SetBase(0x10), ErrFieldRange)
	require.ErrorIs(t, s.SetIndex(0x10), ErrFieldRange)
	require.ErrorIs(t, s.SetScale(4), ErrFieldRange)
	require.ErrorIs(t, s.SetScaleFactor(3), ErrInvalidOperand)

	for factor, exp := range map[byte]byte{1: 0, 2: 1, 4: 2, 8: 3} {
		require.NoError(t, s.SetScaleFactor(factor))
		require.Equal(t, exp, s.Scale())
	}
}
