// Package golang_asm assembles amd64 instructions with golang-asm, a fork of
// the Go toolchain's assembler, so that encodings can be cross-checked against
// an independent implementation.
package golang_asm

import (
	"fmt"

	goasm "github.com/twitchyliquid64/golang-asm"
	"github.com/twitchyliquid64/golang-asm/obj"
	goasmx86 "github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/asmcore/x86enc/internal/asm/x86"
)

// Assembler accumulates instructions for a single Assemble call.
type Assembler struct {
	b *goasm.Builder
}

// NewAssembler returns an empty amd64 assembler.
func NewAssembler() (*Assembler, error) {
	b, err := goasm.NewBuilder("amd64", 64)
	if err != nil {
		return nil, fmt.Errorf("failed to create a new assembly builder: %w", err)
	}
	return &Assembler{b: b}, nil
}

// Add appends an instruction. Operands follow the Go assembler order, where
// from is the source and to the destination.
func (a *Assembler) Add(as obj.As, from, to obj.Addr) {
	p := a.b.NewProg()
	p.As, p.From, p.To = as, from, to
	a.b.AddInstruction(p)
}

// Assemble returns the machine code of the instructions added so far. An
// Assembler must not be used after Assemble.
func (a *Assembler) Assemble() []byte {
	return a.b.Assemble()
}

var segments = map[x86.Register]int16{
	x86.ES: goasmx86.REG_ES,
	x86.CS: goasmx86.REG_CS,
	x86.SS: goasmx86.REG_SS,
	x86.DS: goasmx86.REG_DS,
	x86.FS: goasmx86.REG_FS,
	x86.GS: goasmx86.REG_GS,
}

// Register returns the golang-asm register for r. The Go assembler names
// general purpose registers without their size, which comes from the
// instruction suffix instead, so EAX and RAX are both REG_AX.
func Register(r x86.Register) (int16, bool) {
	switch r.Class() {
	case x86.Class8:
		if r.IsHighByte() {
			return goasmx86.REG_AH + int16(r.Num()-4), true
		}
		return goasmx86.REG_AL + int16(r.Num()), true
	case x86.Class16, x86.Class32, x86.Class64:
		return goasmx86.REG_AX + int16(r.Num()), true
	case x86.ClassSegment:
		reg, ok := segments[r]
		return reg, ok
	}
	return 0, false
}

// Reg returns a register operand. It panics when r has no golang-asm
// counterpart.
func Reg(r x86.Register) obj.Addr {
	return obj.Addr{Type: obj.TYPE_REG, Reg: mustRegister(r)}
}

// Const returns a constant operand.
func Const(v int64) obj.Addr {
	return obj.Addr{Type: obj.TYPE_CONST, Offset: v}
}

// Mem returns the memory operand addressing the same location as m, which
// must have a constant displacement and no segment override.
func Mem(m *x86.Memory) obj.Addr {
	if !m.Displacement.IsConstant() || m.Segment != x86.NoRegister {
		panic(fmt.Sprintf("BUG: %s has no golang-asm counterpart", m))
	}
	a := obj.Addr{Type: obj.TYPE_MEM, Offset: m.Displacement.Constant}
	if m.Base != x86.NoRegister {
		a.Reg = mustRegister(m.Base)
	}
	if m.Index != x86.NoRegister {
		a.Index = mustRegister(m.Index)
		a.Scale = int16(m.Scale)
		if a.Scale == 0 {
			a.Scale = 1
		}
	}
	return a
}

func mustRegister(r x86.Register) int16 {
	reg, ok := Register(r)
	if !ok {
		panic(fmt.Sprintf("BUG: %s has no golang-asm counterpart", r))
	}
	return reg
}
