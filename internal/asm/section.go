package asm

// Section is a named run of code loaded at a base address, together with the
// relocations registered against it.
type Section struct {
	name   string
	base   uint64
	code   CodeSegment
	relocs RelocationTable
}

// NewSection returns an empty section loaded at base.
func NewSection(name string, base uint64) *Section {
	return &Section{name: name, base: base}
}

// Name returns the section name.
func (s *Section) Name() string {
	return s.name
}

// Base returns the load address of the first byte of the section.
func (s *Section) Base() uint64 {
	return s.base
}

// Address returns the address where the next byte will be written.
func (s *Section) Address() uint64 {
	return s.base + uint64(s.code.Size())
}

// Bytes returns the code written to the section.
func (s *Section) Bytes() []byte {
	return s.code.Bytes()
}

// Next returns a buffer positioned at the end of the section.
func (s *Section) Next() Buffer {
	return s.code.Next()
}

// AddRelocations appends relocations to the section's relocation table.
func (s *Section) AddRelocations(relocs ...Relocation) {
	s.relocs.Append(relocs...)
}

// Relocations returns the relocation table of the section.
func (s *Section) Relocations() *RelocationTable {
	return &s.relocs
}
