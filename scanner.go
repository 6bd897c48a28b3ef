package cpregex

import (
	"github.com/coregx/cpregex/internal/backend"
	"github.com/coregx/cpregex/internal/conv"
)

// Scanner walks a subject from left to right and reports every
// non-overlapping leading match of a Set, in the manner of a tokenizer.
// Each step searches from the end of the previous match; after an empty
// match it moves forward by one codepoint so the walk always makes progress.
//
// A Scanner is not safe for concurrent use. It keeps its own reference to
// the set's search context, so closing the Set while scanning makes the next
// call to Next fail with an error reported by Err.
//
// Example:
//
//	set := ... // [`\d+`, `\s+`, `\w+`]
//	sc := set.Scanner("abc 123", cpregex.None)
//	for sc.Next() {
//	    fmt.Println(sc.Index(), sc.Match())
//	}
//	if err := sc.Err(); err != nil {
//	    log.Fatal(err)
//	}
type Scanner struct {
	set     *Set
	subject string
	flags   Flags
	cursor  *backend.Cursor

	pos   int // byte offset of the next search; > len(subject) when done
	index int
	match *Match
	err   error
}

// Scanner returns a Scanner over subject using flags for every step.
func (s *Set) Scanner(subject string, flags Flags) *Scanner {
	sc := &Scanner{set: s, subject: subject, flags: flags, index: NoMatch}

	multi := s.multi.Load()
	if multi == nil {
		sc.err = ErrClosed
		return sc
	}
	if _, _, err := prepare(subject, 0, flags, s.config); err != nil {
		sc.err = err
		return sc
	}
	sc.cursor = multi.NewCursor()
	return sc
}

// Next advances to the next match. It returns false when the subject is
// exhausted or an error occurred.
func (sc *Scanner) Next() bool {
	sc.index, sc.match = NoMatch, nil
	if sc.err != nil || sc.pos > len(sc.subject) {
		return false
	}
	if sc.set.multi.Load() == nil {
		sc.err = ErrClosed
		return false
	}

	idx, region, err := sc.cursor.Search(conv.Bytes(sc.subject), sc.pos, sc.flags)
	if err != nil {
		sc.err = sc.set.execError(idx, err)
		return false
	}
	if idx == NoMatch {
		sc.pos = len(sc.subject) + 1
		return false
	}

	switch end := region[1]; {
	case end > sc.pos:
		sc.pos = end
	case end < len(sc.subject):
		sc.pos = conv.NextRune(sc.subject, end)
	default:
		sc.pos = len(sc.subject) + 1
	}
	sc.index = idx
	sc.match = newMatch(sc.subject, region, sc.set.names[idx])
	return true
}

// Index returns the set index of the current match, or NoMatch.
func (sc *Scanner) Index() int {
	return sc.index
}

// Match returns the current match, or nil.
func (sc *Scanner) Match() *Match {
	return sc.match
}

// Err returns the first error met during the scan.
func (sc *Scanner) Err() error {
	return sc.err
}
