package asm

import "fmt"

// Symbol is a named location whose address may not be known while code is
// being encoded. References to a symbol are resolved later through relocations.
type Symbol struct {
	// Name is the symbol name as it appears in the object file.
	Name string
	// Section is the name of the section defining the symbol, or empty when
	// the symbol is external.
	Section string
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}

// Value is a numeric operand value which is either a plain constant or a
// reference to a symbol plus an addend.
//
// The zero value is the constant zero.
type Value struct {
	// Symbol is nil for constants.
	Symbol *Symbol
	// Constant holds the value for constants, and the addend for symbolic values.
	Constant int64
}

// Const returns a constant Value.
func Const(v int64) Value {
	return Value{Constant: v}
}

// SymbolRef returns a Value referring to the address of sym plus addend.
func SymbolRef(sym *Symbol, addend int64) Value {
	return Value{Symbol: sym, Constant: addend}
}

// IsConstant returns true if v doesn't depend on a symbol.
func (v Value) IsConstant() bool {
	return v.Symbol == nil
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch {
	case v.Symbol == nil:
		return fmt.Sprintf("%#x", v.Constant)
	case v.Constant == 0:
		return v.Symbol.Name
	case v.Constant < 0:
		return fmt.Sprintf("%s-%#x", v.Symbol.Name, -v.Constant)
	default:
		return fmt.Sprintf("%s+%#x", v.Symbol.Name, v.Constant)
	}
}
