package x86

import "github.com/asmcore/x86enc/internal/asm"

// Context gives operands and the emitter access to the state of the enclosing
// section while one instruction is encoded.
type Context interface {
	// Mode returns the processor mode code is generated for.
	Mode() Mode
	// Section returns the name of the section receiving the instruction.
	Section() string
	// Address returns the address of the first byte of the instruction.
	Address() uint64
	// AddRelocation registers a relocation produced by the instruction.
	AddRelocation(r asm.Relocation)
}

// BasicContext is a Context which collects relocations in memory.
type BasicContext struct {
	mode    Mode
	section string
	address uint64
	relocs  asm.RelocationTable
}

// NewBasicContext returns a context for an instruction starting at address in
// the named section.
func NewBasicContext(mode Mode, section string, address uint64) *BasicContext {
	return &BasicContext{mode: mode, section: section, address: address}
}

// Mode implements Context.Mode
func (c *BasicContext) Mode() Mode { return c.mode }

// Section implements Context.Section
func (c *BasicContext) Section() string { return c.section }

// Address implements Context.Address
func (c *BasicContext) Address() uint64 { return c.address }

// AddRelocation implements Context.AddRelocation
func (c *BasicContext) AddRelocation(r asm.Relocation) { c.relocs.Append(r) }

// Relocations returns the relocations added so far.
func (c *BasicContext) Relocations() []asm.Relocation { return c.relocs.Relocations() }

// Advance moves the context to the next instruction, n bytes further, and
// drops the collected relocations.
func (c *BasicContext) Advance(n int) {
	c.address += uint64(n)
	c.relocs.Reset()
}
