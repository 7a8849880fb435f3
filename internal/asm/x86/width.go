package x86

import (
	"fmt"
	"math"
)

// Width is the size of an operand, address or encoded field in bits.
// Zero means the size is unspecified.
type Width uint8

const (
	WidthNone Width = 0
	Width8    Width = 8
	Width16   Width = 16
	Width32   Width = 32
	Width48   Width = 48
	Width64   Width = 64
)

// Bytes returns the number of bytes of w.
func (w Width) Bytes() int {
	return int(w) / 8
}

func (w Width) String() string {
	if w == WidthNone {
		return "unsized"
	}
	return fmt.Sprintf("%d-bit", uint8(w))
}

// fits returns true if v can be stored in a field of width w. A signed field
// only accepts the two's complement range, otherwise the value may also be
// interpreted as unsigned.
func fits(v int64, w Width, signed bool) bool {
	if w >= Width64 {
		return true
	}
	if w == WidthNone {
		return false
	}
	bits := uint(w)
	min := -int64(1) << (bits - 1)
	if signed {
		max := int64(1)<<(bits-1) - 1
		return min <= v && v <= max
	}
	max := int64(1)<<bits - 1
	return min <= v && v <= max
}

func fitInSigned8bit(v int64) bool {
	return math.MinInt8 <= v && v <= math.MaxInt8
}
