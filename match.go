package cpregex

import (
	"fmt"

	"github.com/coregx/cpregex/internal/conv"
)

// Unset is the offset reported by Start and End for a group that exists in
// the pattern but did not take part in the match.
const Unset = -1

// Match is the result of one successful match or search. It is immutable
// and keeps its own reference to the subject, so it stays valid for as long
// as it is reachable.
//
// Offsets are stored as bytes and converted to codepoints on every call to
// Start, End or Span.
type Match struct {
	subject string
	region  []int // region[2*n], region[2*n+1] bound group n; -1 when unset
	names   []string
}

func newMatch(subject string, region []int, names []string) *Match {
	return &Match{
		subject: subject,
		region:  region,
		names:   names,
	}
}

// NumGroups returns the number of groups including group 0.
func (m *Match) NumGroups() int {
	return len(m.region) / 2
}

func (m *Match) check(n int) error {
	if n < 0 || n >= m.NumGroups() {
		return &IndexError{Group: n, NumGroups: m.NumGroups()}
	}
	return nil
}

// IsSet reports whether group n took part in the match. It is false for
// indices outside the match.
func (m *Match) IsSet(n int) bool {
	return m.check(n) == nil && m.region[2*n] >= 0
}

// Group returns the text matched by group n; group 0 is the whole match.
// A group that did not participate yields "".
func (m *Match) Group(n int) (string, error) {
	if err := m.check(n); err != nil {
		return "", err
	}
	beg, end := m.region[2*n], m.region[2*n+1]
	if beg < 0 {
		return "", nil
	}
	return m.subject[beg:end], nil
}

// Groups returns the text of groups 1 and up, with "" for unset groups.
func (m *Match) Groups() []string {
	out := make([]string, 0, m.NumGroups()-1)
	for n := 1; n < m.NumGroups(); n++ {
		s, _ := m.Group(n)
		out = append(out, s)
	}
	return out
}

// GroupByName returns the text matched by the first group with the given
// name.
func (m *Match) GroupByName(name string) (string, error) {
	n := subexpIndex(m.names, name)
	if n < 0 {
		return "", &IndexError{Group: -1, Name: name, NumGroups: m.NumGroups()}
	}
	return m.Group(n)
}

// Start returns the codepoint offset at which group n begins, or Unset.
func (m *Match) Start(n int) (int, error) {
	if err := m.check(n); err != nil {
		return 0, err
	}
	return m.toRune(m.region[2*n]), nil
}

// End returns the codepoint offset at which group n ends, or Unset.
func (m *Match) End(n int) (int, error) {
	if err := m.check(n); err != nil {
		return 0, err
	}
	return m.toRune(m.region[2*n+1]), nil
}

// Span returns Start(n) and End(n).
func (m *Match) Span(n int) (start, end int, err error) {
	if err := m.check(n); err != nil {
		return 0, 0, err
	}
	return m.toRune(m.region[2*n]), m.toRune(m.region[2*n+1]), nil
}

// SpanByName returns the span of the first group with the given name.
func (m *Match) SpanByName(name string) (start, end int, err error) {
	n := subexpIndex(m.names, name)
	if n < 0 {
		return 0, 0, &IndexError{Group: -1, Name: name, NumGroups: m.NumGroups()}
	}
	return m.Span(n)
}

// ByteSpan returns the UTF-8 byte offsets of group n, as the engine
// reported them. Unset groups yield (-1, -1).
func (m *Match) ByteSpan(n int) (start, end int, err error) {
	if err := m.check(n); err != nil {
		return 0, 0, err
	}
	return m.region[2*n], m.region[2*n+1], nil
}

func (m *Match) toRune(b int) int {
	if b < 0 {
		return Unset
	}
	return conv.ByteToRune(m.subject, b)
}

// Subject returns the whole text the match was found in.
func (m *Match) Subject() string {
	return m.subject
}

// String formats the match as <cpregex.Match span=(start, end) match="text">.
func (m *Match) String() string {
	start, end, _ := m.Span(0)
	text, _ := m.Group(0)
	return fmt.Sprintf("<cpregex.Match span=(%d, %d) match=%q>", start, end, text)
}
