package cpregex

import "github.com/coregx/cpregex/internal/backend"

// Flags is a bitmask passed to match and search calls. The bits only change
// how anchors behave for that one call.
type Flags = backend.Flags

const (
	// None leaves every anchor in its normal meaning.
	None Flags = 0

	// NotBeginString stops \A (and ^ outside multi-line mode) from matching
	// at the beginning of the subject.
	NotBeginString = backend.NotBeginString

	// NotBeginPosition stops a leading \G from matching at the start offset.
	NotBeginPosition = backend.NotBeginPosition

	// NotEndString stops \z (and $ outside multi-line mode) from matching at
	// the end of the subject.
	NotEndString = backend.NotEndString
)
