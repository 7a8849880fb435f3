package x86

import "fmt"

// Prefix represents a legacy x86 prefix byte. PrefixNone marks an empty
// prefix slot.
type Prefix byte

const (
	PrefixNone Prefix = 0

	// Group 1.
	PrefixLock      Prefix = 0xf0
	PrefixRepeatNot Prefix = 0xf2
	PrefixRepeat    Prefix = 0xf3

	// Group 2.
	PrefixCS Prefix = 0x2e
	PrefixSS Prefix = 0x36
	PrefixDS Prefix = 0x3e
	PrefixES Prefix = 0x26
	PrefixFS Prefix = 0x64
	PrefixGS Prefix = 0x65

	// Branch hints share their bytes with the CS and DS overrides.
	PrefixNotTaken = PrefixCS
	PrefixTaken    = PrefixDS

	// Group 3.
	PrefixAddressSize Prefix = 0x67

	// Group 4.
	PrefixOperandSize Prefix = 0x66
)

func (p Prefix) group() int {
	switch p {
	case PrefixLock, PrefixRepeatNot, PrefixRepeat:
		return 1
	case PrefixCS, PrefixSS, PrefixDS, PrefixES, PrefixFS, PrefixGS:
		return 2
	case PrefixAddressSize:
		return 3
	case PrefixOperandSize:
		return 4
	}
	return 0
}

func (p Prefix) String() string {
	switch p {
	case PrefixNone:
		return "none"
	case PrefixLock:
		return "lock"
	case PrefixRepeatNot:
		return "repnz/repne"
	case PrefixRepeat:
		return "rep/repe/repz"
	case PrefixCS:
		return "cs/unlikely"
	case PrefixSS:
		return "ss"
	case PrefixDS:
		return "ds/likely"
	case PrefixES:
		return "es"
	case PrefixFS:
		return "fs"
	case PrefixGS:
		return "gs"
	case PrefixOperandSize:
		return "data16/data32"
	case PrefixAddressSize:
		return "addr16/addr32"
	default:
		return fmt.Sprintf("Prefix(%#02x)", byte(p))
	}
}

// segmentPrefix returns the override prefix selecting the segment register r.
func segmentPrefix(r Register) (Prefix, error) {
	switch r {
	case ES:
		return PrefixES, nil
	case CS:
		return PrefixCS, nil
	case SS:
		return PrefixSS, nil
	case DS:
		return PrefixDS, nil
	case FS:
		return PrefixFS, nil
	case GS:
		return PrefixGS, nil
	}
	return PrefixNone, fmt.Errorf("%w: %s is not a segment register", ErrInvalidOperand, r)
}
