package x86enc

import (
	"github.com/sirupsen/logrus"

	"github.com/asmcore/x86enc/internal/asm/x86"
)

// EncoderConfig controls encoder behavior, with the default implementation as NewEncoderConfig
type EncoderConfig struct {
	mode        Mode
	features    Features
	logger      logrus.FieldLogger
	baseAddress uint64
}

// loggerLessConfig helps avoid copy/pasting the wrong defaults.
var loggerLessConfig = &EncoderConfig{
	mode:     x86.Mode64,
	features: x86.FeaturesAll,
}

// clone ensures all fields are copied even if nil.
func (c *EncoderConfig) clone() *EncoderConfig {
	return &EncoderConfig{
		mode:        c.mode,
		features:    c.features,
		logger:      c.logger,
		baseAddress: c.baseAddress,
	}
}

// NewEncoderConfig returns a configuration generating 64-bit code for a CPU with
// every supported feature, logging to the logrus standard logger.
func NewEncoderConfig() *EncoderConfig {
	ret := loggerLessConfig.clone()
	ret.logger = logrus.StandardLogger()
	return ret
}

// WithMode sets the processor mode code is generated for. Defaults to Mode64.
//
// Note: NewEncoder fails if the mode isn't one of Mode16, Mode32 or Mode64.
func (c *EncoderConfig) WithMode(mode Mode) *EncoderConfig {
	ret := c.clone()
	ret.mode = mode
	return ret
}

// WithFeatures replaces the set of CPU features instructions may use. Defaults
// to FeaturesAll.
//
// Instructions whose every encoding needs a disabled feature fail with
// ErrNoMatchingVariant.
func (c *EncoderConfig) WithFeatures(features Features) *EncoderConfig {
	ret := c.clone()
	ret.features = features
	return ret
}

// WithFeature enables or disables a single CPU feature.
func (c *EncoderConfig) WithFeature(feature Features, enabled bool) *EncoderConfig {
	ret := c.clone()
	ret.features = ret.features.Set(feature, enabled)
	return ret
}

// WithLogger sets the logger receiving a debug entry for each encoded
// instruction. Defaults to logrus.StandardLogger if nil.
func (c *EncoderConfig) WithLogger(logger logrus.FieldLogger) *EncoderConfig {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ret := c.clone()
	ret.logger = logger
	return ret
}

// WithBaseAddress sets the load address of sections created by
// Encoder.NewSection. Defaults to zero.
//
// The base address matters for instructions holding constant branch targets,
// which are encoded relative to the address of the next instruction.
func (c *EncoderConfig) WithBaseAddress(address uint64) *EncoderConfig {
	ret := c.clone()
	ret.baseAddress = address
	return ret
}

// Mode returns the configured processor mode.
func (c *EncoderConfig) Mode() Mode {
	return c.mode
}

// Features returns the enabled CPU features.
func (c *EncoderConfig) Features() Features {
	return c.features
}
