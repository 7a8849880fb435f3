package x86

import (
	"fmt"
	"strings"
)

// Mode is the default operand and address width of the processor, in bits.
type Mode uint8

const (
	Mode16 Mode = 16
	Mode32 Mode = 32
	Mode64 Mode = 64
)

// Modes lists the supported processor modes.
var Modes = []Mode{Mode16, Mode32, Mode64}

// Width returns the default width of m.
func (m Mode) Width() Width {
	return Width(m)
}

// Valid returns true if m is one of Mode16, Mode32 or Mode64.
func (m Mode) Valid() bool {
	return m == Mode16 || m == Mode32 || m == Mode64
}

func (m Mode) String() string {
	return fmt.Sprintf("%d-bit mode", uint8(m))
}

// ParseMode parses "16", "32" or "64".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "16":
		return Mode16, nil
	case "32":
		return Mode32, nil
	case "64":
		return Mode64, nil
	}
	return 0, fmt.Errorf("invalid mode %q", s)
}

// ModeSet is a set of processor modes in which an opcode variant is valid.
// The empty set means every mode.
type ModeSet uint8

const (
	Modes16 ModeSet = 1 << iota
	Modes32
	Modes64

	ModesLegacy = Modes16 | Modes32
	ModesAll    = Modes16 | Modes32 | Modes64
)

// Contains returns true if mode is in s.
func (s ModeSet) Contains(mode Mode) bool {
	if s == 0 {
		return true
	}
	switch mode {
	case Mode16:
		return s&Modes16 != 0
	case Mode32:
		return s&Modes32 != 0
	case Mode64:
		return s&Modes64 != 0
	}
	return false
}

func (s ModeSet) String() string {
	if s == 0 {
		s = ModesAll
	}
	var parts []string
	for _, m := range Modes {
		if s.Contains(m) {
			parts = append(parts, fmt.Sprint(uint8(m)))
		}
	}
	return strings.Join(parts, "|")
}
