package x86

import (
	"fmt"
	"strings"
)

// RegisterClass groups registers which are interchangeable in an operand slot.
type RegisterClass byte

const (
	ClassNone RegisterClass = iota
	Class8
	Class16
	Class32
	Class64
	ClassSegment
	ClassControl
)

// Width returns the size of the registers in the class. Control registers are
// unsized as their width follows the processor mode.
func (c RegisterClass) Width() Width {
	switch c {
	case Class8:
		return Width8
	case Class16, ClassSegment:
		return Width16
	case Class32:
		return Width32
	case Class64:
		return Width64
	}
	return WidthNone
}

func (c RegisterClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case Class8:
		return "r8"
	case Class16:
		return "r16"
	case Class32:
		return "r32"
	case Class64:
		return "r64"
	case ClassSegment:
		return "Sreg"
	case ClassControl:
		return "CR"
	default:
		return fmt.Sprintf("RegisterClass(%d)", byte(c))
	}
}

// Register is an x86 register. The zero value is NoRegister.
type Register byte

const (
	NoRegister Register = iota

	AL
	CL
	DL
	BL
	AH
	CH
	DH
	BH
	SPL
	BPL
	SIL
	DIL
	R8B
	R9B
	R10B
	R11B
	R12B
	R13B
	R14B
	R15B

	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI
	R8W
	R9W
	R10W
	R11W
	R12W
	R13W
	R14W
	R15W

	EAX
	ECX
	EDX
	EBX
	ESP
	EBP
	ESI
	EDI
	R8D
	R9D
	R10D
	R11D
	R12D
	R13D
	R14D
	R15D

	RAX
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	ES
	CS
	SS
	DS
	FS
	GS

	CR0
	CR2
	CR3
	CR4
	CR8

	registerCount
)

type registerInfo struct {
	name  string
	class RegisterClass
	num   byte
	// rex is set for byte registers only addressable with a REX prefix.
	rex bool
	// high is set for AH, CH, DH and BH, which can't be used with a REX prefix.
	high bool
}

var registers [registerCount]registerInfo

var registersByName = map[string]Register{}

func init() {
	gp := func(first Register, class RegisterClass, names ...string) {
		for i, name := range names {
			registers[first+Register(i)] = registerInfo{name: name, class: class, num: byte(i)}
		}
	}
	gp(AL, Class8, "al", "cl", "dl", "bl", "ah", "ch", "dh", "bh",
		"spl", "bpl", "sil", "dil", "r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b")
	gp(AX, Class16, "ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w")
	gp(EAX, Class32, "eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d")
	gp(RAX, Class64, "rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15")
	gp(ES, ClassSegment, "es", "cs", "ss", "ds", "fs", "gs")

	// The byte registers interleave the legacy high-byte registers with the
	// REX-only low-byte ones, so numbers are fixed up here.
	for r := AH; r <= BH; r++ {
		registers[r].num = byte(r-AH) + 4
		registers[r].high = true
	}
	for r := SPL; r <= DIL; r++ {
		registers[r].num = byte(r-SPL) + 4
		registers[r].rex = true
	}
	for r := R8B; r <= R15B; r++ {
		registers[r].num = byte(r-R8B) + 8
	}

	for i, n := range []byte{0, 2, 3, 4, 8} {
		registers[CR0+Register(i)] = registerInfo{name: fmt.Sprintf("cr%d", n), class: ClassControl, num: n}
	}

	for r := AL; r < registerCount; r++ {
		registersByName[registers[r].name] = r
	}
}

// RegisterByName returns the register named name, ignoring case.
func RegisterByName(name string) (Register, bool) {
	r, ok := registersByName[strings.ToLower(name)]
	return r, ok
}

// Class returns the class of r.
func (r Register) Class() RegisterClass {
	if r >= registerCount {
		return ClassNone
	}
	return registers[r].class
}

// Width returns the size of r.
func (r Register) Width() Width {
	return r.Class().Width()
}

// Num returns the four-bit register number used in the encoding.
func (r Register) Num() byte {
	if r >= registerCount {
		return 0
	}
	return registers[r].num
}

// Valid returns true if r is a register.
func (r Register) Valid() bool {
	return r != NoRegister && r < registerCount
}

// NeedsREX returns true if encoding r requires a REX prefix.
func (r Register) NeedsREX() bool {
	if r >= registerCount {
		return false
	}
	info := registers[r]
	return info.rex || (info.num >= 8 && info.class != ClassSegment)
}

// IsHighByte returns true for AH, CH, DH and BH.
func (r Register) IsHighByte() bool {
	return r < registerCount && registers[r].high
}

// LongModeOnly returns true if r can only be used in 64-bit mode.
func (r Register) LongModeOnly() bool {
	return r.NeedsREX() || r.Class() == Class64
}

func (r Register) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Register(%d)", byte(r))
	}
	return registers[r].name
}
