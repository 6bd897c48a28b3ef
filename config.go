package cpregex

import (
	"github.com/coregx/coregex/meta"
)

// Config controls compilation and the limits applied while matching.
//
// Example:
//
//	config := cpregex.DefaultConfig()
//	config.Engine.MaxDFAStates = 50000
//	re, err := cpregex.CompileWithConfig(`(a|b|c)*`, config)
type Config struct {
	// Engine is passed unchanged to the coregex meta-engine.
	Engine meta.Config

	// MaxSubjectBytes rejects subjects longer than this with ErrOutOfMemory.
	// Zero means no limit.
	MaxSubjectBytes int

	// ConcurrentCompileThreshold is the set size from which CompileSet
	// compiles members on all CPUs. Zero disables concurrent compilation.
	ConcurrentCompileThreshold int
}

// DefaultConfig returns the configuration used by Compile and CompileSet.
func DefaultConfig() Config {
	return Config{
		Engine:                     meta.DefaultConfig(),
		MaxSubjectBytes:            0,
		ConcurrentCompileThreshold: 64,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return &ArgumentError{Arg: "config", Msg: err.Error()}
	}
	if c.MaxSubjectBytes < 0 {
		return &ArgumentError{Arg: "config", Msg: "MaxSubjectBytes must not be negative"}
	}
	if c.ConcurrentCompileThreshold < 0 {
		return &ArgumentError{Arg: "config", Msg: "ConcurrentCompileThreshold must not be negative"}
	}
	return nil
}
