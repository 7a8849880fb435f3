package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asmcore/x86enc"
	"github.com/asmcore/x86enc/internal/asm"
	"github.com/asmcore/x86enc/internal/asm/x86"
)

var sizeKeywords = map[string]x86.Width{
	"byte":  x86.Width8,
	"word":  x86.Width16,
	"dword": x86.Width32,
	"fword": x86.Width48,
	"qword": x86.Width64,
}

// symbols interns symbol names so that repeated references share a Symbol.
type symbols map[string]*asm.Symbol

var cliSymbols = symbols{}

func (s symbols) get(name string) *asm.Symbol {
	sym, ok := s[name]
	if !ok {
		sym = &asm.Symbol{Name: name}
		s[name] = sym
	}
	return sym
}

// parseOperand parses one operand token. When branch is set, numbers and
// symbols are branch targets instead of immediates.
func parseOperand(tok string, branch bool) (x86enc.Operand, error) {
	tok = strings.TrimSpace(tok)
	lower := strings.ToLower(tok)
	switch {
	case tok == "":
		return nil, fmt.Errorf("empty operand")
	case strings.HasPrefix(lower, "short:"):
		v, err := parseValue(tok[len("short:"):])
		if err != nil {
			return nil, err
		}
		return &x86.RelativeOffset{Target: v, Width: x86.Width8}, nil
	case strings.HasPrefix(lower, "far:"):
		return parseFarPointer(tok[len("far:"):])
	case strings.HasPrefix(lower, "imm"):
		if i := strings.IndexByte(tok, ':'); i > 0 {
			w, err := strconv.Atoi(tok[len("imm"):i])
			if err != nil {
				return nil, fmt.Errorf("invalid immediate width in %q", tok)
			}
			size, err := parseSize(w)
			if err != nil || size == x86.WidthNone {
				return nil, fmt.Errorf("invalid immediate width in %q", tok)
			}
			v, err := parseValue(tok[i+1:])
			if err != nil {
				return nil, err
			}
			return &x86.Immediate{Value: v, Width: size}, nil
		}
	case strings.HasPrefix(lower, "moffs:"):
		v, err := parseValue(tok[len("moffs:"):])
		if err != nil {
			return nil, err
		}
		return &x86.MemoryOffset{Address: v}, nil
	case strings.HasSuffix(tok, "]"):
		return parseMemory(tok)
	}

	if r, ok := x86.RegisterByName(tok); ok {
		return x86.Reg(r), nil
	}
	v, err := parseValue(tok)
	if err != nil {
		return nil, err
	}
	if branch {
		return x86.RelTo(v), nil
	}
	return x86.ImmValue(v), nil
}

// parseValue parses a number or a "$symbol+addend" reference.
func parseValue(s string) (asm.Value, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "$") {
		v, err := parseInt(s)
		if err != nil {
			return asm.Value{}, err
		}
		return asm.Const(v), nil
	}

	name, addend := s[1:], int64(0)
	if i := strings.IndexAny(name, "+-"); i > 0 {
		a, err := parseInt(name[i:])
		if err != nil {
			return asm.Value{}, err
		}
		name, addend = name[:i], a
	}
	if name == "" {
		return asm.Value{}, fmt.Errorf("missing symbol name in %q", s)
	}
	return asm.SymbolRef(cliSymbols.get(name), addend), nil
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err == nil {
		return v, nil
	}
	// Accept unsigned 64-bit constants such as 0xffffffffffffffff.
	u, uerr := strconv.ParseUint(s, 0, 64)
	if uerr != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return int64(u), nil
}

func parseFarPointer(s string) (x86enc.Operand, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return nil, fmt.Errorf("far pointer %q must be selector:offset", s)
	}
	sel, err := strconv.ParseUint(s[:i], 0, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid segment selector %q", s[:i])
	}
	off, err := parseValue(s[i+1:])
	if err != nil {
		return nil, err
	}
	return &x86.FarPointer{Selector: uint16(sel), Offset: off}, nil
}

// parseMemory parses "[size] [seg:][terms]" where terms are registers,
// register*scale and displacements joined by + or -.
func parseMemory(s string) (x86enc.Operand, error) {
	m := &x86.Memory{}
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return nil, fmt.Errorf("memory operand %q lacks [", s)
	}

	for _, word := range strings.Fields(strings.ToLower(s[:open])) {
		word = strings.TrimSuffix(word, ":")
		if w, ok := sizeKeywords[word]; ok {
			m.Size = w
			continue
		}
		if word == "ptr" {
			continue
		}
		if r, ok := x86.RegisterByName(word); ok && r.Class() == x86.ClassSegment {
			m.Segment = r
			continue
		}
		return nil, fmt.Errorf("unexpected %q in memory operand %q", word, s)
	}

	body := s[open+1 : len(s)-1]
	var disp int64
	var sym *asm.Symbol
	for _, term := range splitTerms(body) {
		term = strings.TrimSpace(term)
		neg := strings.HasPrefix(term, "-")
		term = strings.TrimSpace(strings.TrimLeft(term, "+-"))
		if term == "" {
			return nil, fmt.Errorf("empty term in memory operand %q", s)
		}

		reg, scale := term, ""
		if i := strings.IndexByte(term, '*'); i >= 0 {
			reg, scale = strings.TrimSpace(term[:i]), strings.TrimSpace(term[i+1:])
		}
		if r, ok := x86.RegisterByName(reg); ok {
			if neg {
				return nil, fmt.Errorf("register %s can't be subtracted", r)
			}
			if err := addRegister(m, r, scale); err != nil {
				return nil, err
			}
			continue
		}

		v, err := parseValue(term)
		if err != nil {
			return nil, err
		}
		if v.Symbol != nil {
			if sym != nil || neg {
				return nil, fmt.Errorf("memory operand %q can refer to one symbol", s)
			}
			sym = v.Symbol
		}
		if neg {
			disp -= v.Constant
		} else {
			disp += v.Constant
		}
	}
	m.Displacement = asm.Value{Symbol: sym, Constant: disp}
	return m, nil
}

func addRegister(m *x86.Memory, r x86.Register, scale string) error {
	if scale != "" {
		s, err := strconv.ParseUint(scale, 0, 8)
		if err != nil {
			return fmt.Errorf("invalid scale %q", scale)
		}
		if m.Index != x86.NoRegister {
			return fmt.Errorf("more than one index register")
		}
		m.Index, m.Scale = r, byte(s)
		return nil
	}
	switch {
	case m.Base == x86.NoRegister:
		m.Base = r
	case m.Index == x86.NoRegister:
		m.Index = r
	default:
		return fmt.Errorf("more than two address registers")
	}
	return nil
}

// splitTerms splits s before each + or - sign, keeping the sign with its term.
func splitTerms(s string) []string {
	var terms []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			terms = append(terms, s[start:i])
			start = i
		}
	}
	return append(terms, s[start:])
}
