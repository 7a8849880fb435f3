package x86

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/asmcore/x86enc/internal/asm"
)

func emit(t *testing.T, inst *Instruction, ctx Context) []byte {
	var buf bytes.Buffer
	require.NoError(t, inst.Emit(&buf, ctx))
	require.Equal(t, inst.Len(), buf.Len(), "length must equal the emitted bytes")
	return buf.Bytes()
}

func TestInstruction_Emit_order(t *testing.T) {
	inst := NewInstruction()
	require.NoError(t, inst.SetLockRepeat(PrefixLock))
	require.NoError(t, inst.SetSegment(PrefixFS))
	inst.SetAddressSizeOverride(true)
	inst.SetOperandSizeOverride(true)
	inst.SetMandatoryPrefix(0xf3)
	inst.SetUse64(true)
	inst.SetOpcode(0x0f, 0xaf)
	m := inst.SetModRM()
	require.NoError(t, m.SetReg(9))
	require.NoError(t, m.SetRM(ModRMrmSIB))
	require.NoError(t, m.SetMod(ModRMmodSmallDisplacedRegister))
	s := inst.SetSIB()
	require.NoError(t, s.SetBase(13))
	require.NoError(t, s.SetIndex(10))
	require.NoError(t, s.SetScaleFactor(8))
	require.NoError(t, inst.SetDisplacement(asm.Const(-2), Width8, true))
	require.NoError(t, inst.SetImmediate(asm.Const(0x11223344), Width32))
	require.NoError(t, inst.SetExtraImmediate(asm.Const(7), Width8))

	ctx := NewBasicContext(Mode64, ".text", 0)
	require.Equal(t, []byte{
		0xf0, 0x64, 0x67, 0x66, // legacy prefixes in group order
		0xf3,       // mandatory prefix
		0x4f,       // REX.WRXB
		0x0f, 0xaf, // opcode
		0x4c,                   // ModR/M
		0xd5,                   // SIB
		0xfe,                   // disp8
		0x44, 0x33, 0x22, 0x11, // imm32
		0x07, // extra imm8
	}, emit(t, inst, ctx))
	require.Empty(t, ctx.Relocations())
	require.Contains(t, inst.String(), "REX: 01001111")
}

func TestInstruction_Len(t *testing.T) {
	inst := NewInstruction()
	require.Equal(t, 0, inst.Len())
	require.NotNil(t, inst.Opcode())

	inst.SetOpcode(0x90)
	require.Equal(t, 1, inst.Len())
	inst.RequireREX()
	require.Equal(t, 2, inst.Len())
	inst.SetModRM()
	inst.SetModRM()
	require.Equal(t, 3, inst.Len())
	require.NoError(t, inst.SetImmediate(asm.Const(1), Width64))
	require.Equal(t, 11, inst.Len())
}

func TestInstruction_REX(t *testing.T) {
	t.Run("absent without use64", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetOpcode(0x8b)
		require.NoError(t, inst.SetModRM().SetRM(9))
		_, ok := inst.REX()
		require.False(t, ok)
		require.Equal(t, []byte{0x8b, 0x01}, emit(t, inst, NewBasicContext(Mode64, "", 0)))
	})
	t.Run("SIB wins over ModR/M and opcode register", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetUse64(false)
		require.NoError(t, inst.SetOpcodeRegister(0xf))
		require.NoError(t, inst.SetModRM().SetRM(0xf))
		s := inst.SetSIB()
		require.NoError(t, s.SetBase(0))
		require.NoError(t, s.SetIndex(0))
		rex, ok := inst.REX()
		require.True(t, ok)
		require.Equal(t, byte(0x40), rex)

		require.NoError(t, s.SetBase(8))
		require.NoError(t, s.SetIndex(8))
		require.NoError(t, inst.ModRM().SetReg(8))
		rex, _ = inst.REX()
		require.Equal(t, byte(0x47), rex)
	})
	t.Run("ModR/M wins over opcode register", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetUse64(true)
		require.NoError(t, inst.SetOpcodeRegister(8))
		inst.SetModRM()
		rex, _ := inst.REX()
		require.Equal(t, byte(0x48), rex)

		require.NoError(t, inst.ModRM().SetRM(8))
		rex, _ = inst.REX()
		require.Equal(t, byte(0x49), rex)
	})
	t.Run("opcode register", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetOpcode(0xb8)
		require.NoError(t, inst.SetOpcodeRegister(9))
		inst.RequireREX()
		value, present := inst.Use64()
		require.False(t, value)
		require.True(t, present)
		require.Equal(t, []byte{0x41, 0xb9}, emit(t, inst, NewBasicContext(Mode64, "", 0)))
	})
	t.Run("high byte register conflict", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetOpcode(0x88)
		inst.SetModRM()
		inst.ForbidREX()
		inst.RequireREX()
		_, err := inst.Bytes(NewBasicContext(Mode64, "", 0))
		require.ErrorIs(t, err, ErrInvalidOperand)
	})
}

func TestInstruction_prefixes(t *testing.T) {
	inst := NewInstruction()
	require.ErrorIs(t, inst.SetLockRepeat(PrefixFS), ErrInvalidPrefix)
	require.ErrorIs(t, inst.SetSegment(PrefixLock), ErrInvalidPrefix)
	require.ErrorIs(t, inst.SetSegment(PrefixOperandSize), ErrInvalidPrefix)

	require.NoError(t, inst.SetLockRepeat(PrefixRepeat))
	inst.SetLock(false)
	require.Equal(t, PrefixRepeat, inst.LockRepeat())
	inst.SetLock(true)
	require.Equal(t, PrefixLock, inst.LockRepeat())
	inst.SetLock(false)
	require.Equal(t, PrefixNone, inst.LockRepeat())

	require.NoError(t, inst.SetSegment(PrefixTaken))
	require.Equal(t, PrefixDS, inst.Segment())
}

func TestInstruction_fields(t *testing.T) {
	inst := NewInstruction()
	require.ErrorIs(t, inst.SetOpcodeRegister(0x10), ErrFieldRange)
	require.ErrorIs(t, inst.SetFixedReg(8), ErrFieldRange)
	require.ErrorIs(t, inst.SetImmediate(asm.Const(0), Width48), ErrUnsupportedWidth)
	require.ErrorIs(t, inst.SetDisplacement(asm.Const(0), WidthNone, false), ErrUnsupportedWidth)

	require.NoError(t, inst.SetFixedReg(5))
	m := inst.SetModRM()
	require.Equal(t, byte(5), m.Reg())
	require.Same(t, m, inst.SetModRM())
	require.Same(t, inst.SetSIB(), inst.SetSIB())

	_, _, ok := inst.Displacement()
	require.False(t, ok)
	require.NoError(t, inst.SetDisplacement(asm.Const(3), Width8, true))
	v, w, ok := inst.Displacement()
	require.True(t, ok)
	require.Equal(t, asm.Const(3), v)
	require.Equal(t, Width8, w)
}

func TestInstruction_Emit_overflow(t *testing.T) {
	for _, tc := range []struct {
		name   string
		set    func(inst *Instruction) error
		exp    []byte
		expErr bool
	}{
		{
			name: "unsigned imm8",
			set:  func(inst *Instruction) error { return inst.SetImmediate(asm.Const(0xff), Width8) },
			exp:  []byte{0xff},
		},
		{
			name: "negative imm8",
			set:  func(inst *Instruction) error { return inst.SetImmediate(asm.Const(-1), Width8) },
			exp:  []byte{0xff},
		},
		{
			name:   "imm8 too large",
			set:    func(inst *Instruction) error { return inst.SetImmediate(asm.Const(0x100), Width8) },
			expErr: true,
		},
		{
			name:   "signed imm8 too large",
			set:    func(inst *Instruction) error { return inst.SetSignedImmediate(asm.Const(0x80), Width8) },
			expErr: true,
		},
		{
			name:   "disp8",
			set:    func(inst *Instruction) error { return inst.SetDisplacement(asm.Const(200), Width8, true) },
			expErr: true,
		},
		{
			name: "imm16",
			set:  func(inst *Instruction) error { return inst.SetImmediate(asm.Const(-0x8000), Width16) },
			exp:  []byte{0x00, 0x80},
		},
		{
			name: "imm64",
			set:  func(inst *Instruction) error { return inst.SetImmediate(asm.Const(-1), Width64) },
			exp:  []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			inst := NewInstruction()
			require.NoError(t, tc.set(inst))
			actual, err := inst.Bytes(NewBasicContext(Mode32, "", 0))
			if tc.expErr {
				require.ErrorIs(t, err, ErrEncodingOverflow)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.exp, actual)
		})
	}
}

func TestInstruction_Emit_relocations(t *testing.T) {
	sym := &asm.Symbol{Name: "target", Section: ".data"}

	t.Run("absolute immediate", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetOpcode(0xb8)
		require.NoError(t, inst.SetImmediate(asm.SymbolRef(sym, 8), Width32))
		ctx := NewBasicContext(Mode32, ".text", 0x1000)
		require.Equal(t, []byte{0xb8, 0, 0, 0, 0}, emit(t, inst, ctx))

		exp := []asm.Relocation{{
			Symbol: sym, Section: ".text", Address: 0x1000, Addend: 8,
			Kind: asm.RelocAbsolute, Size: 4, Offset: 1,
		}}
		if diff := cmp.Diff(exp, ctx.Relocations()); diff != "" {
			t.Errorf("relocations mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, uint64(0x1001), ctx.Relocations()[0].FieldAddress())
	})
	t.Run("relative immediate", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetOperandSizeOverride(true)
		inst.SetOpcode(0x0f, 0x84)
		require.NoError(t, inst.SetRelativeImmediate(asm.SymbolRef(sym, 0), Width32))
		ctx := NewBasicContext(Mode64, ".text", 0x40)
		require.Equal(t, []byte{0x66, 0x0f, 0x84, 0, 0, 0, 0}, emit(t, inst, ctx))

		exp := []asm.Relocation{{
			Symbol: sym, Section: ".text", Address: 0x40, Addend: -4,
			Kind: asm.RelocRelative, Size: 4, Offset: 3,
		}}
		if diff := cmp.Diff(exp, ctx.Relocations()); diff != "" {
			t.Errorf("relocations mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("displacement and immediate", func(t *testing.T) {
		inst := NewInstruction()
		inst.SetOpcode(0xc7)
		m := inst.SetModRM()
		require.NoError(t, m.SetRM(ModRMrmDisplacementOnly32))
		require.NoError(t, inst.SetDisplacement(asm.SymbolRef(sym, 0), Width32, false))
		require.NoError(t, inst.SetImmediate(asm.SymbolRef(sym, 4), Width32))
		ctx := NewBasicContext(Mode32, ".text", 0)
		emit(t, inst, ctx)

		relocs := ctx.Relocations()
		require.Len(t, relocs, 2)
		require.Equal(t, 2, relocs[0].Offset)
		require.Equal(t, 6, relocs[1].Offset)
		require.Equal(t, int64(4), relocs[1].Addend)
	})
}

func TestInstruction_Emit_relativeConstant(t *testing.T) {
	inst := NewInstruction()
	inst.SetOpcode(0xeb)
	require.NoError(t, inst.SetRelativeImmediate(asm.Const(0x1010), Width8))
	require.Equal(t, []byte{0xeb, 0x0e}, emit(t, inst, NewBasicContext(Mode32, "", 0x1000)))

	// Backwards to the start of the instruction.
	require.Equal(t, []byte{0xeb, 0xfe}, emit(t, inst, NewBasicContext(Mode32, "", 0x1010)))

	_, err := inst.Bytes(NewBasicContext(Mode32, "", 0x2000))
	require.ErrorIs(t, err, ErrEncodingOverflow)
}

var errWriterFull = errors.New("writer full")

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	for i := range p {
		if err := w.WriteByte(p[i]); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

func (w *failingWriter) WriteByte(byte) error {
	if w.n == 0 {
		return errWriterFull
	}
	w.n--
	return nil
}

func TestInstruction_Emit_writerError(t *testing.T) {
	inst := NewInstruction()
	inst.SetOpcode(0x0f, 0x05)
	err := inst.Emit(&failingWriter{n: 1}, NewBasicContext(Mode64, "", 0))
	require.ErrorIs(t, err, errWriterFull)
}
