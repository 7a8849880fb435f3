package x86enc

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/asmcore/x86enc/internal/asm"
	"github.com/asmcore/x86enc/internal/asm/x86"
	"github.com/asmcore/x86enc/internal/asm/x86/opcodes"
)

// Request describes one instruction to encode.
type Request struct {
	// Mnemonic is the instruction name, such as "mov" or "jnz". Case is ignored.
	Mnemonic string
	// Size is the explicit operand size, used when no operand implies it,
	// as in "add dword [rax], 1". WidthNone lets the operands decide.
	Size Width
	// Lock adds the LOCK prefix.
	Lock bool
	// Operands in Intel order, destination first.
	Operands []Operand
}

func (r Request) String() string {
	parts := make([]string, 0, len(r.Operands))
	for _, op := range r.Operands {
		if op == nil {
			continue
		}
		parts = append(parts, op.String())
	}
	s := r.Mnemonic
	if r.Lock {
		s = "lock " + s
	}
	for i, p := range parts {
		if i == 0 {
			s += " " + p
		} else {
			s += ", " + p
		}
	}
	return s
}

// Encoder encodes instructions for one processor mode and feature set.
//
// An Encoder holds no mutable state and may be shared by goroutines, as long
// as each section is written by a single goroutine at a time.
type Encoder struct {
	mode        Mode
	features    Features
	logger      logrus.FieldLogger
	baseAddress uint64
}

// NewEncoder returns an encoder using config, or NewEncoderConfig if nil.
func NewEncoder(config *EncoderConfig) (*Encoder, error) {
	if config == nil {
		config = NewEncoderConfig()
	}
	if !config.mode.Valid() {
		return nil, fmt.Errorf("invalid mode: %d", uint8(config.mode))
	}
	logger := config.logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Encoder{
		mode:        config.mode,
		features:    config.features,
		logger:      logger,
		baseAddress: config.baseAddress,
	}, nil
}

// Mode returns the processor mode the encoder generates code for.
func (e *Encoder) Mode() Mode {
	return e.mode
}

// NewSection returns an empty section loaded at the configured base address.
func (e *Encoder) NewSection(name string) *Section {
	return asm.NewSection(name, e.baseAddress)
}

// Encode appends the encoding of req to section and returns its length.
//
// Encoding is atomic: on error, section is left as it was before the call,
// without partial bytes or relocations.
func (e *Encoder) Encode(section *Section, req Request) (int, error) {
	variants, ok := opcodes.Lookup(req.Mnemonic)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMnemonic, req.Mnemonic)
	}

	ctx := x86.NewBasicContext(e.mode, section.Name(), section.Address())
	inst, variant, err := x86.Encode(ctx, variants, e.features, req.Size, req.Lock, req.Operands...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", req, err)
	}

	buf := section.Next()
	if err = inst.Emit(buf, ctx); err != nil {
		buf.Reset()
		return 0, fmt.Errorf("%s: %w", req, err)
	}
	section.AddRelocations(ctx.Relocations()...)

	e.logger.WithFields(logrus.Fields{
		"mnemonic": req.Mnemonic,
		"variant":  variant.String(),
		"length":   buf.Len(),
		"address":  fmt.Sprintf("%#x", ctx.Address()),
	}).Debugf("encoded % x", buf.Bytes())
	return buf.Len(), nil
}

// EncodeAll encodes reqs in order into section. It stops at the first error,
// keeping the instructions encoded before it.
func (e *Encoder) EncodeAll(section *Section, reqs ...Request) (n int, err error) {
	for i, req := range reqs {
		l, err := e.Encode(section, req)
		if err != nil {
			return n, fmt.Errorf("instruction %d: %w", i, err)
		}
		n += l
	}
	return n, nil
}

// Mnemonics returns the mnemonics the encoder knows, in alphabetical order.
func Mnemonics() []string {
	return opcodes.Mnemonics()
}
