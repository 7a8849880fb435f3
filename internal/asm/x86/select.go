package x86

import "fmt"

// Select returns the first variant, in declaration order, which is supported
// in mode with features and matches operands and the explicit operand size.
// Tables list shorter encodings first, so the first match is the preferred
// one.
//
// Without an explicit size, a memory operand without a size takes the size of
// the first matching DefaultSize variant. When there is none, variants giving
// it different sizes make the operand size ambiguous, which is an error.
func Select(variants []Variant, mode Mode, features Features, explicit Width, operands []Operand) (*Variant, error) {
	var first *Variant
	var firstSize Width
	ambiguous := false
	for i := range variants {
		v := &variants[i]
		if !v.Supports(mode, features) {
			continue
		}
		unsized, ok := v.match(explicit, operands)
		if !ok {
			continue
		}
		if explicit != WidthNone || v.DefaultSize || (first == nil && unsized == WidthNone) {
			return v, nil
		}
		if first == nil {
			first, firstSize = v, unsized
		} else if unsized != firstSize {
			ambiguous = true
		}
	}
	if ambiguous {
		return nil, fmt.Errorf("%w: operand size of (%s) not specified in %s", ErrNoMatchingVariant, formatOperands(operands), mode)
	}
	if first != nil {
		return first, nil
	}
	if explicit != WidthNone {
		return nil, fmt.Errorf("%w for %s operands (%s) in %s", ErrNoMatchingVariant, explicit, formatOperands(operands), mode)
	}
	return nil, fmt.Errorf("%w for operands (%s) in %s", ErrNoMatchingVariant, formatOperands(operands), mode)
}

// Encode selects a variant for operands and constructs the instruction. The
// instruction is not emitted.
func Encode(ctx Context, variants []Variant, features Features, explicit Width, lock bool, operands ...Operand) (*Instruction, *Variant, error) {
	v, err := Select(variants, ctx.Mode(), features, explicit, operands)
	if err != nil {
		return nil, nil, err
	}
	inst, err := v.Construct(ctx, operands, lock)
	if err != nil {
		return nil, v, err
	}
	return inst, v, nil
}
