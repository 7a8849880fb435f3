package x86

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstruction_OperandSize(t *testing.T) {
	for _, tc := range []struct {
		mode      Mode
		requested Width
		expPrefix bool
		expREX    bool
	}{
		{mode: Mode16, requested: Width16},
		{mode: Mode16, requested: Width32, expPrefix: true},
		{mode: Mode32, requested: Width32},
		{mode: Mode32, requested: Width16, expPrefix: true},
		{mode: Mode64, requested: Width32},
		{mode: Mode64, requested: Width16, expPrefix: true},
		{mode: Mode64, requested: Width64, expREX: true},
	} {
		tc := tc
		t.Run(tc.mode.String()+"/"+tc.requested.String(), func(t *testing.T) {
			inst := NewInstruction()
			require.NoError(t, inst.SetOperandSize(tc.mode, tc.requested))
			require.Equal(t, tc.requested, inst.OperandSize(tc.mode))
			require.Equal(t, tc.expPrefix, inst.OperandSizeOverride())
			rex, ok := inst.REX()
			require.Equal(t, tc.expREX, ok)
			if tc.expREX {
				require.Equal(t, byte(0x48), rex)
			}

			// Setting the same size again changes nothing.
			require.NoError(t, inst.SetOperandSize(tc.mode, tc.requested))
			require.Equal(t, tc.requested, inst.OperandSize(tc.mode))
		})
	}
}

func TestInstruction_OperandSize_narrowing(t *testing.T) {
	inst := NewInstruction()
	require.NoError(t, inst.SetOperandSize(Mode64, Width64))
	require.NoError(t, inst.SetOperandSize(Mode64, Width16))
	require.Equal(t, Width16, inst.OperandSize(Mode64))

	// The REX prefix stays, without W.
	rex, ok := inst.REX()
	require.True(t, ok)
	require.Equal(t, byte(0x40), rex)

	require.NoError(t, inst.SetOperandSize(Mode64, Width32))
	require.Equal(t, Width32, inst.OperandSize(Mode64))
	require.False(t, inst.OperandSizeOverride())
}

func TestInstruction_OperandSize_invalid(t *testing.T) {
	for _, tc := range []struct {
		mode      Mode
		requested Width
	}{
		{mode: Mode16, requested: Width64},
		{mode: Mode32, requested: Width64},
		{mode: Mode16, requested: Width8},
		{mode: Mode64, requested: WidthNone},
	} {
		inst := NewInstruction()
		err := inst.SetOperandSize(tc.mode, tc.requested)
		require.ErrorIs(t, err, ErrUnsupportedWidth)
		require.False(t, inst.OperandSizeOverride())
		_, ok := inst.REX()
		require.False(t, ok)
	}
}

func TestInstruction_OperandSize_read(t *testing.T) {
	inst := NewInstruction()
	require.Equal(t, Width16, inst.OperandSize(Mode16))
	require.Equal(t, Width32, inst.OperandSize(Mode32))
	require.Equal(t, Width32, inst.OperandSize(Mode64))

	inst.SetOperandSizeOverride(true)
	require.Equal(t, Width32, inst.OperandSize(Mode16))
	require.Equal(t, Width16, inst.OperandSize(Mode32))
	require.Equal(t, Width16, inst.OperandSize(Mode64))

	// REX.W wins over the override.
	inst.SetUse64(true)
	require.Equal(t, Width64, inst.OperandSize(Mode64))
}

func TestInstruction_AddressSize(t *testing.T) {
	for _, tc := range []struct {
		mode      Mode
		requested Width
		expPrefix bool
		expErr    bool
	}{
		{mode: Mode16, requested: Width16},
		{mode: Mode16, requested: Width32, expPrefix: true},
		{mode: Mode32, requested: Width32},
		{mode: Mode32, requested: Width16, expPrefix: true},
		{mode: Mode64, requested: Width64},
		{mode: Mode64, requested: Width32, expPrefix: true},
		{mode: Mode64, requested: Width16, expErr: true},
		{mode: Mode32, requested: Width64, expErr: true},
	} {
		inst := NewInstruction()
		err := inst.SetAddressSize(tc.mode, tc.requested)
		if tc.expErr {
			require.ErrorIs(t, err, ErrUnsupportedWidth)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.expPrefix, inst.AddressSizeOverride())
		require.Equal(t, tc.requested, inst.AddressSize(tc.mode))
	}
}
