package x86

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldRange is returned when a bit field receives a value wider than the field.
	ErrFieldRange = errors.New("value out of range for bit field")
	// ErrEncodingOverflow is returned when a constant doesn't fit the width chosen for its field.
	ErrEncodingOverflow = errors.New("value overflows encoding width")
	// ErrNoMatchingVariant is returned when no opcode variant accepts the operands.
	ErrNoMatchingVariant = errors.New("no matching opcode variant")
	// ErrUnsupportedWidth is returned when an operand or address size can't be represented in a mode.
	ErrUnsupportedWidth = errors.New("unsupported width")
	// ErrInvalidPrefix is returned when a legacy prefix is stored in the wrong prefix group.
	ErrInvalidPrefix = errors.New("invalid prefix")
	// ErrInvalidOperand is returned when an operand can't be encoded as requested.
	ErrInvalidOperand = errors.New("invalid operand")
)

func rangeError(field string, value byte, bits uint) error {
	return fmt.Errorf("%w: %s = %#x exceeds %d bits", ErrFieldRange, field, value, bits)
}
