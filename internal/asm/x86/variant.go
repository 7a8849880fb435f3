package x86

import (
	"fmt"
	"strings"
)

// Variant is one binary encoding of a mnemonic. Variants are declared in
// static tables and must not be modified.
type Variant struct {
	// Opcode holds the opcode bytes.
	Opcode []byte
	// Prefix holds mandatory prefix bytes emitted before REX.
	Prefix []byte
	// Reg is the opcode extension in ModR/M.reg, the /digit of the
	// instruction reference. Zero when unused.
	Reg byte
	// Operands describes the accepted operands in order.
	Operands []Descriptor
	// OperandSize is the operand size the encoding requires, or WidthNone
	// when the opcode doesn't depend on it.
	OperandSize Width
	// Modes is the set of modes the encoding is valid in. Empty means all.
	Modes ModeSet
	// Features lists the CPU features the encoding requires.
	Features Features
	// DefaultSize marks the encoding using the default operand size of its
	// modes. It is selected for memory operands without a size, which are
	// otherwise rejected when encodings of several sizes accept them.
	DefaultSize bool
}

// Supports returns true if v can be used in mode on a CPU with features.
func (v *Variant) Supports(mode Mode, features Features) bool {
	return v.Modes.Contains(mode) && features.Has(v.Features)
}

// pair walks the descriptors and operands with separate cursors and calls fn
// with each non-empty descriptor and the operand given for it.
//
// An empty descriptor consumes the next operand only if that operand is
// absent. Every other descriptor consumes a present operand. Operands left
// after the last descriptor must be absent. pair returns false as soon as the
// operands can't be paired or fn returns false.
func (v *Variant) pair(operands []Operand, fn func(d Descriptor, op Operand) bool) bool {
	next := 0
	for _, d := range v.Operands {
		if d.Kind == KindNone {
			if next < len(operands) && operands[next] == nil {
				next++
			}
			continue
		}
		if next >= len(operands) || operands[next] == nil {
			return false
		}
		if !fn(d, operands[next]) {
			return false
		}
		next++
	}
	for ; next < len(operands); next++ {
		if operands[next] != nil {
			return false
		}
	}
	return true
}

// Match returns true if operands are acceptable for v.
//
// The operand size implied by v is the size of the last sized descriptor, or
// v.OperandSize when set. A non-zero explicit size must equal it.
func (v *Variant) Match(explicit Width, operands []Operand) bool {
	_, ok := v.match(explicit, operands)
	return ok
}

// match is Match, also returning the size v gives to a memory operand which
// has none, or WidthNone if there is no such operand.
func (v *Variant) match(explicit Width, operands []Operand) (unsized Width, ok bool) {
	implied := WidthNone
	ok = v.pair(operands, func(d Descriptor, op Operand) bool {
		if !op.IsMatch(d) {
			return false
		}
		s := d.Size()
		if s == WidthNone {
			return true
		}
		implied = s
		if m, isMem := op.(*Memory); isMem && m.Size == WidthNone {
			unsized = s
		}
		return true
	})
	if !ok {
		return WidthNone, false
	}
	if v.OperandSize != WidthNone {
		implied = v.OperandSize
	}
	if explicit != WidthNone && explicit != implied {
		return WidthNone, false
	}
	return unsized, true
}

// Construct returns the instruction encoding operands with v. The operands
// must have been matched with v.
func (v *Variant) Construct(ctx Context, operands []Operand, lock bool) (*Instruction, error) {
	inst := NewInstruction()
	inst.SetLock(lock)
	inst.SetMandatoryPrefix(v.Prefix...)
	inst.SetOpcode(v.Opcode...)
	if err := inst.SetFixedReg(v.Reg); err != nil {
		return nil, err
	}

	var err error
	ok := v.pair(operands, func(d Descriptor, op Operand) bool {
		if !op.IsMatch(d) {
			return false
		}
		op.Adjust(d)
		if err = op.Construct(ctx, inst); err != nil {
			err = fmt.Errorf("operand %s: %w", op, err)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s doesn't accept %s", ErrNoMatchingVariant, v, formatOperands(operands))
	}

	if v.OperandSize != WidthNone {
		if err = inst.SetOperandSize(ctx.Mode(), v.OperandSize); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// String returns the opcode in instruction reference notation followed by the
// operands, such as "REX.W 81 /0 id (r/m64, imm32)".
func (v *Variant) String() string {
	var b strings.Builder
	if v.OperandSize == Width16 {
		b.WriteString("o16 ")
	} else if v.OperandSize == Width64 {
		b.WriteString("REX.W ")
	}
	for _, p := range v.Prefix {
		fmt.Fprintf(&b, "%02X ", p)
	}
	for i, o := range v.Opcode {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", o)
	}

	hasModRM, opcodeReg := false, false
	for _, d := range v.Operands {
		switch d.Role {
		case RoleReg, RoleRM:
			hasModRM = true
		case RoleOpcode:
			opcodeReg = true
		}
	}
	switch {
	case opcodeReg:
		b.WriteString("+r")
	case hasModRM && v.usesReg():
		b.WriteString(" /r")
	case hasModRM:
		fmt.Fprintf(&b, " /%d", v.Reg)
	}
	fmt.Fprintf(&b, " (%s)", formatDescriptors(v.Operands))
	return b.String()
}

func (v *Variant) usesReg() bool {
	for _, d := range v.Operands {
		if d.Role == RoleReg {
			return true
		}
	}
	return false
}

func formatOperands(operands []Operand) string {
	parts := make([]string, len(operands))
	for i, op := range operands {
		if op == nil {
			parts[i] = "_"
		} else {
			parts[i] = op.String()
		}
	}
	return strings.Join(parts, ", ")
}
