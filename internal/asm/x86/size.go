package x86

import "fmt"

// AddressSize returns the effective address size of i in mode.
func (i *Instruction) AddressSize(mode Mode) Width {
	if !i.addressSizeOverride {
		return mode.Width()
	}
	switch mode {
	case Mode16:
		return Width32
	case Mode32:
		return Width16
	default:
		// There is no 16-bit addressing in 64-bit mode.
		return Width32
	}
}

// SetAddressSize sets or clears the address-size override so that the
// effective address size of i in mode is requested.
func (i *Instruction) SetAddressSize(mode Mode, requested Width) error {
	switch {
	case requested == mode.Width():
		i.addressSizeOverride = false
	case mode == Mode16 && requested == Width32,
		mode == Mode32 && requested == Width16,
		mode == Mode64 && requested == Width32:
		i.addressSizeOverride = true
	default:
		return fmt.Errorf("%w: %s addressing in %s", ErrUnsupportedWidth, requested, mode)
	}
	return nil
}

// OperandSize returns the effective operand size of i in mode.
func (i *Instruction) OperandSize(mode Mode) Width {
	switch mode {
	case Mode16:
		if i.operandSizeOverride {
			return Width32
		}
		return Width16
	case Mode32:
		if i.operandSizeOverride {
			return Width16
		}
		return Width32
	default:
		if i.use64.present && i.use64.value {
			return Width64
		}
		if i.operandSizeOverride {
			return Width16
		}
		return Width32
	}
}

// SetOperandSize sets the operand-size override and REX.W so that the
// effective operand size of i in mode is requested. Requesting 64-bit
// operands in 64-bit mode makes the REX prefix present.
func (i *Instruction) SetOperandSize(mode Mode, requested Width) error {
	switch {
	case mode == Mode16 && requested == Width16,
		mode == Mode32 && requested == Width32:
		i.operandSizeOverride = false
	case mode == Mode16 && requested == Width32,
		mode == Mode32 && requested == Width16:
		i.operandSizeOverride = true
	case mode == Mode64 && requested == Width64:
		i.operandSizeOverride = false
		i.SetUse64(true)
	case mode == Mode64 && (requested == Width32 || requested == Width16):
		i.operandSizeOverride = requested == Width16
		i.use64.value = false
	default:
		return fmt.Errorf("%w: %s operands in %s", ErrUnsupportedWidth, requested, mode)
	}
	return nil
}
