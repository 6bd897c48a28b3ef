package cpregex

import (
	"errors"
	"fmt"
	"regexp/syntax"

	"github.com/coregx/coregex/meta"
)

var (
	// ErrClosed is returned by operations on a Pattern or Set after Close.
	ErrClosed = errors.New("cpregex: use of closed pattern")

	// ErrOutOfMemory is returned when building a result would need more
	// storage than Config.MaxSubjectBytes allows.
	ErrOutOfMemory = errors.New("cpregex: out of memory")
)

// SyntaxError reports a pattern that could not be compiled.
type SyntaxError struct {
	// Pattern is the offending source text.
	Pattern string

	// Index is the position of the pattern in a set, or -1 for a single
	// pattern.
	Index int

	// Code is the backend diagnostic code, e.g. "missing closing ]".
	Code string

	// Msg is the backend's human-readable message.
	Msg string

	// Err is the underlying backend error.
	Err error
}

func (e *SyntaxError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("cpregex: pattern %d: %s", e.Index, e.Msg)
	}
	return "cpregex: " + e.Msg
}

// Unwrap returns the underlying error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func newSyntaxError(pattern string, index int, err error) *SyntaxError {
	se := &SyntaxError{
		Pattern: pattern,
		Index:   index,
		Code:    "compilation failed",
		Msg:     err.Error(),
		Err:     err,
	}

	var parseErr *syntax.Error
	if errors.As(err, &parseErr) {
		se.Code = string(parseErr.Code)
	}
	var compileErr *meta.CompileError
	if errors.As(err, &compileErr) && se.Code == "compilation failed" {
		se.Msg = fmt.Sprintf("compiling %q: %v", pattern, compileErr.Err)
	}
	return se
}

// ExecutionError reports a failure inside the engine while matching. It is
// never used for an ordinary mismatch.
type ExecutionError struct {
	Pattern string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("cpregex: executing %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IndexError reports a group index or name that does not exist in a Match.
type IndexError struct {
	Group     int
	Name      string
	NumGroups int
}

func (e *IndexError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("cpregex: no such group %q", e.Name)
	}
	return fmt.Sprintf("cpregex: no such group %d (match has %d)", e.Group, e.NumGroups)
}

// ArgumentError reports malformed input at the API boundary.
type ArgumentError struct {
	Arg string
	Msg string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("cpregex: invalid %s: %s", e.Arg, e.Msg)
}
