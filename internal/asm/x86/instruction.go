package x86

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/asmcore/x86enc/internal/asm"
)

// Writer is the destination of emitted machine code.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// valueField is a displacement or immediate field.
type valueField struct {
	value asm.Value
	width Width
	// signed restricts constants to the two's complement range of the width.
	signed bool
	// relative fields hold target - address of the next instruction.
	relative bool
}

// optionalBool is a bool which may be absent.
type optionalBool struct {
	present, value bool
}

// Instruction holds every part of one encoded machine instruction. Operands
// and opcode variants fill the fields in any order, and Emit writes them out
// in the order mandated by the processor.
//
// An Instruction encodes exactly one machine instruction and must not be
// reused.
type Instruction struct {
	// Legacy prefix groups 1 to 4.
	lockRepeat          Prefix
	segment             Prefix
	addressSizeOverride bool
	operandSizeOverride bool

	mandatoryPrefix []byte
	opcode          []byte
	// opcodeReg is OR-ed into the last opcode byte; bit 3 goes to REX.B.
	opcodeReg byte
	// fixedReg seeds ModR/M.reg when the ModR/M byte is created.
	fixedReg byte

	modRM *ModRM
	sib   *SIB

	// use64 is the REX.W bit. When absent, no REX prefix is emitted at all.
	use64 optionalBool
	// forbidREX is set when a high-byte register is used.
	forbidREX bool

	disp, imm, extraImm *valueField
}

// NewInstruction returns an empty instruction.
func NewInstruction() *Instruction {
	return &Instruction{mandatoryPrefix: []byte{}, opcode: []byte{}}
}

// SetLock sets or clears the lock prefix.
func (i *Instruction) SetLock(lock bool) {
	if lock {
		i.lockRepeat = PrefixLock
	} else if i.lockRepeat == PrefixLock {
		i.lockRepeat = PrefixNone
	}
}

// SetLockRepeat sets the group 1 prefix to lock, rep or repne.
func (i *Instruction) SetLockRepeat(p Prefix) error {
	if p != PrefixNone && p.group() != 1 {
		return fmt.Errorf("%w: %s is not a lock or repeat prefix", ErrInvalidPrefix, p)
	}
	i.lockRepeat = p
	return nil
}

// LockRepeat returns the group 1 prefix.
func (i *Instruction) LockRepeat() Prefix {
	return i.lockRepeat
}

// SetSegment sets the group 2 prefix to a segment override or branch hint.
func (i *Instruction) SetSegment(p Prefix) error {
	if p != PrefixNone && p.group() != 2 {
		return fmt.Errorf("%w: %s is not a segment override or branch hint", ErrInvalidPrefix, p)
	}
	i.segment = p
	return nil
}

// Segment returns the group 2 prefix.
func (i *Instruction) Segment() Prefix {
	return i.segment
}

// SetAddressSizeOverride sets or clears the 0x67 prefix.
func (i *Instruction) SetAddressSizeOverride(b bool) { i.addressSizeOverride = b }

// AddressSizeOverride returns true if the 0x67 prefix is set.
func (i *Instruction) AddressSizeOverride() bool { return i.addressSizeOverride }

// SetOperandSizeOverride sets or clears the 0x66 prefix.
func (i *Instruction) SetOperandSizeOverride(b bool) { i.operandSizeOverride = b }

// OperandSizeOverride returns true if the 0x66 prefix is set.
func (i *Instruction) OperandSizeOverride() bool { return i.operandSizeOverride }

// SetMandatoryPrefix sets the prefix bytes which are part of the opcode, such
// as the F3 of POPCNT.
func (i *Instruction) SetMandatoryPrefix(b ...byte) {
	i.mandatoryPrefix = append(i.mandatoryPrefix[:0], b...)
}

// SetOpcode sets the opcode bytes.
func (i *Instruction) SetOpcode(b ...byte) {
	i.opcode = append(i.opcode[:0], b...)
}

// Opcode returns the opcode bytes, without the opcode register.
func (i *Instruction) Opcode() []byte {
	return i.opcode
}

// SetOpcodeRegister sets the register number added to the last opcode byte.
func (i *Instruction) SetOpcodeRegister(v byte) error {
	if v > 0xf {
		return rangeError("opcode register", v, 4)
	}
	i.opcodeReg = v
	return nil
}

// OpcodeRegister returns the register number added to the last opcode byte.
func (i *Instruction) OpcodeRegister() byte { return i.opcodeReg }

// SetFixedReg sets the opcode extension placed in ModR/M.reg, the /digit of
// the instruction reference.
func (i *Instruction) SetFixedReg(v byte) error {
	if v > 0b111 {
		return rangeError("ModR/M.reg extension", v, 3)
	}
	i.fixedReg = v
	return nil
}

// SetModRM returns the ModR/M byte, creating it on first use with its reg
// field seeded from the fixed reg value.
func (i *Instruction) SetModRM() *ModRM {
	if i.modRM == nil {
		i.modRM = &ModRM{reg: i.fixedReg}
	}
	return i.modRM
}

// ModRM returns the ModR/M byte, or nil if the instruction has none.
func (i *Instruction) ModRM() *ModRM {
	return i.modRM
}

// SetSIB returns the SIB byte, creating it on first use.
func (i *Instruction) SetSIB() *SIB {
	if i.sib == nil {
		i.sib = &SIB{}
	}
	return i.sib
}

// SIB returns the SIB byte, or nil if the instruction has none.
func (i *Instruction) SIB() *SIB {
	return i.sib
}

// SetUse64 sets REX.W, which makes the REX prefix present.
func (i *Instruction) SetUse64(b bool) {
	i.use64 = optionalBool{present: true, value: b}
}

// Use64 returns REX.W and whether a REX prefix is present.
func (i *Instruction) Use64() (value, present bool) {
	return i.use64.value, i.use64.present
}

// RequireREX makes the REX prefix present without changing REX.W.
func (i *Instruction) RequireREX() {
	i.use64.present = true
}

// ForbidREX records that the instruction uses a register which can't be
// addressed when a REX prefix is present.
func (i *Instruction) ForbidREX() {
	i.forbidREX = true
}

func checkFieldWidth(name string, w Width) error {
	switch w {
	case Width8, Width16, Width32, Width64:
		return nil
	}
	return fmt.Errorf("%w: %s can't be %s", ErrUnsupportedWidth, name, w)
}

// SetDisplacement sets the memory displacement. Signed displacements are
// sign-extended by the processor to the address size.
func (i *Instruction) SetDisplacement(v asm.Value, w Width, signed bool) error {
	if err := checkFieldWidth("displacement", w); err != nil {
		return err
	}
	i.disp = &valueField{value: v, width: w, signed: signed}
	return nil
}

// SetImmediate sets the immediate, which may be given as a signed or
// unsigned constant.
func (i *Instruction) SetImmediate(v asm.Value, w Width) error {
	if err := checkFieldWidth("immediate", w); err != nil {
		return err
	}
	i.imm = &valueField{value: v, width: w}
	return nil
}

// SetSignedImmediate sets an immediate which the processor sign-extends to
// the operand size.
func (i *Instruction) SetSignedImmediate(v asm.Value, w Width) error {
	if err := checkFieldWidth("immediate", w); err != nil {
		return err
	}
	i.imm = &valueField{value: v, width: w, signed: true}
	return nil
}

// SetRelativeImmediate sets an immediate holding the distance from the end of
// the instruction to the target v.
func (i *Instruction) SetRelativeImmediate(v asm.Value, w Width) error {
	if err := checkFieldWidth("relative offset", w); err != nil {
		return err
	}
	i.imm = &valueField{value: v, width: w, signed: true, relative: true}
	return nil
}

// SetExtraImmediate sets the second immediate of instructions such as ENTER.
func (i *Instruction) SetExtraImmediate(v asm.Value, w Width) error {
	if err := checkFieldWidth("extra immediate", w); err != nil {
		return err
	}
	i.extraImm = &valueField{value: v, width: w}
	return nil
}

// Displacement returns the displacement and its width, if present.
func (i *Instruction) Displacement() (asm.Value, Width, bool) {
	return i.disp.get()
}

// Immediate returns the immediate and its width, if present.
func (i *Instruction) Immediate() (asm.Value, Width, bool) {
	return i.imm.get()
}

// ExtraImmediate returns the extra immediate and its width, if present.
func (i *Instruction) ExtraImmediate() (asm.Value, Width, bool) {
	return i.extraImm.get()
}

func (f *valueField) get() (asm.Value, Width, bool) {
	if f == nil {
		return asm.Value{}, WidthNone, false
	}
	return f.value, f.width, true
}

func (f *valueField) len() int {
	if f == nil {
		return 0
	}
	return f.width.Bytes()
}

// prefixes returns the legacy prefixes in group order.
func (i *Instruction) prefixes() [4]Prefix {
	p := [4]Prefix{i.lockRepeat, i.segment}
	if i.addressSizeOverride {
		p[2] = PrefixAddressSize
	}
	if i.operandSizeOverride {
		p[3] = PrefixOperandSize
	}
	return p
}

// Len returns the length of the encoded instruction in bytes.
func (i *Instruction) Len() (n int) {
	for _, p := range i.prefixes() {
		if p != PrefixNone {
			n++
		}
	}
	n += len(i.mandatoryPrefix)
	if i.use64.present {
		n++
	}
	n += len(i.opcode)
	if i.modRM != nil {
		n++
	}
	if i.sib != nil {
		n++
	}
	n += i.disp.len() + i.imm.len() + i.extraImm.len()
	return
}

// rexPrefix represents REX prefix https://wiki.osdev.org/X86-64_Instruction_Encoding#REX_prefix
type rexPrefix = byte

// REX prefixes are independent of each other and can be combined with OR.
const (
	rexPrefixDefault rexPrefix = 0b0100_0000
	rexPrefixW       rexPrefix = 0b0000_1000 | rexPrefixDefault
	rexPrefixR       rexPrefix = 0b0000_0100 | rexPrefixDefault
	rexPrefixX       rexPrefix = 0b0000_0010 | rexPrefixDefault
	rexPrefixB       rexPrefix = 0b0000_0001 | rexPrefixDefault
)

// rexBit returns prefix if bit 3 of the register number v is set.
func rexBit(v byte, prefix rexPrefix) rexPrefix {
	if v&0b1000 != 0 {
		return prefix
	}
	return rexPrefixDefault
}

// REX returns the REX prefix and whether the instruction has one.
//
// With both ModR/M and SIB present, B and X extend SIB.base and SIB.index.
// With only ModR/M, B extends ModR/M.rm. Otherwise B extends the opcode
// register. R always extends ModR/M.reg.
func (i *Instruction) REX() (rex byte, ok bool) {
	if !i.use64.present {
		return 0, false
	}
	rex = rexPrefixDefault
	if i.use64.value {
		rex |= rexPrefixW
	}
	switch {
	case i.modRM != nil && i.sib != nil:
		rex |= rexBit(i.modRM.reg, rexPrefixR) | rexBit(i.sib.index, rexPrefixX) | rexBit(i.sib.base, rexPrefixB)
	case i.modRM != nil:
		rex |= rexBit(i.modRM.reg, rexPrefixR) | rexBit(i.modRM.rm, rexPrefixB)
	default:
		rex |= rexBit(i.opcodeReg, rexPrefixB)
	}
	return rex, true
}

// emitter counts the bytes of the instruction written so far.
type emitter struct {
	w Writer
	n int
}

func (e *emitter) writeByte(b byte) error {
	if err := e.w.WriteByte(b); err != nil {
		return err
	}
	e.n++
	return nil
}

func (e *emitter) write(b []byte) error {
	n, err := e.w.Write(b)
	e.n += n
	return err
}

func (e *emitter) writeLittleEndian(v uint64, size int) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return e.write(b[:size])
}

// Emit writes the instruction to w. Fields holding symbolic values are
// written as zero and a relocation is registered with ctx.
//
// Emission stops at the first error. Bytes already written are not retracted.
func (i *Instruction) Emit(w Writer, ctx Context) error {
	rex, hasREX := i.REX()
	if hasREX && i.forbidREX {
		return fmt.Errorf("%w: AH, BH, CH or DH can't be encoded with a REX prefix", ErrInvalidOperand)
	}

	e := &emitter{w: w}
	for _, p := range i.prefixes() {
		if p == PrefixNone {
			continue
		}
		if err := e.writeByte(byte(p)); err != nil {
			return err
		}
	}
	if err := e.write(i.mandatoryPrefix); err != nil {
		return err
	}
	if hasREX {
		if err := e.writeByte(rex); err != nil {
			return err
		}
	}
	if l := len(i.opcode); l > 0 {
		if err := e.write(i.opcode[:l-1]); err != nil {
			return err
		}
		last := i.opcode[l-1]
		if i.opcodeReg != 0 {
			last |= i.opcodeReg & 0b111
		}
		if err := e.writeByte(last); err != nil {
			return err
		}
	}
	if i.modRM != nil {
		if err := e.writeByte(i.modRM.Byte()); err != nil {
			return err
		}
	}
	if i.sib != nil {
		if err := e.writeByte(i.sib.Byte()); err != nil {
			return err
		}
	}

	length := i.Len()
	for _, f := range []struct {
		name  string
		field *valueField
	}{
		{"displacement", i.disp},
		{"immediate", i.imm},
		{"extra immediate", i.extraImm},
	} {
		if f.field == nil {
			continue
		}
		if err := f.field.emit(e, ctx, f.name, length); err != nil {
			return err
		}
	}
	return nil
}

func (f *valueField) emit(e *emitter, ctx Context, name string, length int) error {
	size := f.width.Bytes()
	if f.value.IsConstant() {
		v := f.value.Constant
		if f.relative {
			v -= int64(ctx.Address()) + int64(length)
		}
		if !fits(v, f.width, f.signed) {
			return fmt.Errorf("%w: %s %#x doesn't fit in %s", ErrEncodingOverflow, name, v, f.width)
		}
		return e.writeLittleEndian(uint64(v), size)
	}

	r := asm.Relocation{
		Symbol:  f.value.Symbol,
		Section: ctx.Section(),
		Address: ctx.Address(),
		Addend:  f.value.Constant,
		Kind:    asm.RelocAbsolute,
		Size:    size,
		Offset:  e.n,
	}
	if f.relative {
		// The processor adds the offset to the address of the next
		// instruction, not to the address of the field.
		r.Kind = asm.RelocRelative
		r.Addend -= int64(length - e.n)
	}
	ctx.AddRelocation(r)
	return e.writeLittleEndian(0, size)
}

// Bytes returns the encoded instruction.
func (i *Instruction) Bytes(ctx Context) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(i.Len())
	if err := i.Emit(&buf, ctx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns a textual description of the populated fields.
func (i *Instruction) String() string {
	var parts []string
	for _, p := range i.prefixes() {
		if p != PrefixNone {
			parts = append(parts, "Prefix: "+p.String())
		}
	}
	if len(i.mandatoryPrefix) > 0 {
		parts = append(parts, fmt.Sprintf("MandatoryPrefix: [% x]", i.mandatoryPrefix))
	}
	if rex, ok := i.REX(); ok {
		parts = append(parts, fmt.Sprintf("REX: %08b", rex))
	}
	if len(i.opcode) > 0 {
		parts = append(parts, fmt.Sprintf("Opcode: [% x]", i.opcode))
	}
	if i.opcodeReg != 0 {
		parts = append(parts, fmt.Sprintf("OpcodeRegister: %d", i.opcodeReg))
	}
	if i.modRM != nil {
		parts = append(parts, "ModR/M: "+i.modRM.String())
	}
	if i.sib != nil {
		parts = append(parts, "SIB: "+i.sib.String())
	}
	for _, f := range []struct {
		name  string
		field *valueField
	}{
		{"Displacement", i.disp},
		{"Immediate", i.imm},
		{"ExtraImmediate", i.extraImm},
	} {
		if f.field != nil {
			parts = append(parts, fmt.Sprintf("%s: %s (%s)", f.name, f.field.value, f.field.width))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
