package asm

import "fmt"

// RelocationKind selects how a relocated field is computed from the symbol
// address.
type RelocationKind byte

const (
	// RelocAbsolute patches in S + A.
	RelocAbsolute RelocationKind = iota
	// RelocRelative patches in S + A - P, where P is the address of the field.
	RelocRelative
)

func (k RelocationKind) String() string {
	switch k {
	case RelocAbsolute:
		return "absolute"
	case RelocRelative:
		return "relative"
	default:
		return fmt.Sprintf("RelocationKind(%d)", k)
	}
}

// Relocation is a deferred patch of an instruction field with the resolved
// address of a symbol.
type Relocation struct {
	Symbol *Symbol
	// Section is the name of the section containing the instruction.
	Section string
	// Address is the address of the first byte of the instruction.
	Address uint64
	Addend  int64
	Kind    RelocationKind
	// Size is the width of the patched field in bytes.
	Size int
	// Offset is the position of the patched field within the instruction.
	Offset int
}

// FieldAddress returns the address of the patched field.
func (r Relocation) FieldAddress() uint64 {
	return r.Address + uint64(r.Offset)
}

// String implements fmt.Stringer.
func (r Relocation) String() string {
	return fmt.Sprintf("%s %s%+d @ %s:%#x+%d (%d bytes)", r.Kind, r.Symbol, r.Addend, r.Section, r.Address, r.Offset, r.Size)
}

// RelocationTable collects the relocations of a section in emission order.
//
// Appending is not synchronized: a table must have a single writer at a time.
type RelocationTable struct {
	entries []Relocation
}

// Append adds relocations to the table.
func (t *RelocationTable) Append(relocs ...Relocation) {
	t.entries = append(t.entries, relocs...)
}

// Len returns the number of relocations in the table.
func (t *RelocationTable) Len() int {
	return len(t.entries)
}

// Relocations returns the relocations in the table. The caller must treat the
// returned slice as read-only.
func (t *RelocationTable) Relocations() []Relocation {
	return t.entries
}

// Reset drops every relocation of the table.
func (t *RelocationTable) Reset() {
	t.entries = t.entries[:0]
}
