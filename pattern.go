// Package cpregex provides regular expression matching over Unicode text with
// every position measured in codepoints.
//
// Matching runs on the coregex meta-engine, which works on UTF-8 bytes. This
// package converts caller offsets from codepoints to bytes before a search and
// converts capture spans back to codepoints on demand, so a Match is cheap to
// produce and only pays for the offsets that are actually read.
//
// Basic usage:
//
//	re, err := cpregex.Compile(`café`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := re.Search("un café noir")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if m != nil {
//	    start, end, _ := m.Span(0)
//	    fmt.Println(start, end) // 3 7
//	}
//
// Several patterns can be searched at once with a Set. The set reports the
// match that starts leftmost; when patterns tie on the start position the one
// declared first wins:
//
//	set, _ := cpregex.CompileSet([]string{`foo`, `foobar`})
//	idx, m, _ := set.Search("xfoobarx")
//	fmt.Println(idx, m) // 0 <cpregex.Match span=(1, 4) match="foo">
//
// "No match" is never an error: Match and Search return a nil *Match and
// Set.Search returns NoMatch.
//
// Patterns use the RE2/Perl syntax of regexp/syntax. A leading \G anchors the
// pattern at the start offset of each call.
//
// Limitations:
//   - No cancellation or timeout; the engine runs in O(m*n) time, so inputs
//     cannot trigger catastrophic backtracking, but a call always runs to
//     completion.
//   - \G is only recognised as the first token of a pattern.
package cpregex

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/coregx/cpregex/internal/backend"
	"github.com/coregx/cpregex/internal/conv"
)

// Pattern is a compiled regular expression.
//
// A Pattern is safe for concurrent use by multiple goroutines.
type Pattern struct {
	pattern string
	config  Config
	prog    atomic.Pointer[backend.Program]
}

// Compile parses a regular expression and returns a Pattern that can be
// matched against text.
//
// Example:
//
//	re, err := cpregex.Compile(`(\d+)-(\d+)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Pattern, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
// It simplifies safe initialization of global variables holding compiled
// regular expressions.
func MustCompile(pattern string) *Pattern {
	re, err := Compile(pattern)
	if err != nil {
		panic("cpregex: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
func CompileWithConfig(pattern string, config Config) (*Pattern, error) {
	Init(nil)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	prog, err := compileProgram(pattern, -1, config)
	if err != nil {
		return nil, err
	}

	p := &Pattern{
		pattern: pattern,
		config:  config,
	}
	p.prog.Store(prog)
	return p, nil
}

func compileProgram(pattern string, index int, config Config) (*backend.Program, error) {
	if !utf8.ValidString(pattern) {
		arg := "pattern"
		if index >= 0 {
			arg = fmt.Sprintf("pattern %d", index)
		}
		return nil, &ArgumentError{Arg: arg, Msg: "not valid UTF-8"}
	}
	prog, err := backend.Compile(pattern, config.Engine)
	if err != nil {
		return nil, newSyntaxError(pattern, index, err)
	}
	return prog, nil
}

// Match attempts to match the pattern at the beginning of subject.
// It is shorthand for MatchAt(subject, 0, None).
func (p *Pattern) Match(subject string) (*Match, error) {
	return p.MatchAt(subject, 0, None)
}

// MatchAt attempts to match the pattern anchored at codepoint offset start.
// The match must begin exactly at start. It returns a nil Match when the
// pattern does not match there or when start lies beyond the end of subject.
//
// The engine has no anchored entry point, so MatchAt searches forward from
// start and rejects a match that begins later. A failed MatchAt can therefore
// cost a scan of the rest of subject, and so can a pattern with a leading \G.
// Loops that try position after position should use SearchAt or a Set
// Scanner, whose forward scans find each match once.
//
// Example:
//
//	re := cpregex.MustCompile(`(\d+)-(\d+)`)
//	m, _ := re.MatchAt("12-34", 0, cpregex.None)
//	first, _ := m.Group(1) // "12"
func (p *Pattern) MatchAt(subject string, start int, flags Flags) (*Match, error) {
	return p.exec(subject, start, flags, true)
}

// Search scans subject for the first match of the pattern.
// It is shorthand for SearchAt(subject, 0, None).
func (p *Pattern) Search(subject string) (*Match, error) {
	return p.SearchAt(subject, 0, None)
}

// SearchAt scans forward from codepoint offset start for the leftmost match.
// The text before start still counts as context for anchors and word
// boundaries, and offsets in the returned Match are relative to the whole
// subject.
func (p *Pattern) SearchAt(subject string, start int, flags Flags) (*Match, error) {
	return p.exec(subject, start, flags, false)
}

func (p *Pattern) exec(subject string, start int, flags Flags, anchored bool) (*Match, error) {
	prog := p.prog.Load()
	if prog == nil {
		return nil, ErrClosed
	}

	at, ok, err := prepare(subject, start, flags, p.config)
	if err != nil || !ok {
		return nil, err
	}

	region, err := prog.Exec(conv.Bytes(subject), at, anchored, flags)
	if err != nil {
		return nil, &ExecutionError{Pattern: p.pattern, Err: err}
	}
	if region == nil {
		return nil, nil
	}
	return newMatch(subject, region, prog.SubexpNames()), nil
}

// prepare validates the call arguments and converts start to a byte offset.
// ok is false when start lies beyond the end of subject.
func prepare(subject string, start int, flags Flags, config Config) (at int, ok bool, err error) {
	if flags&^backend.AllFlags != 0 {
		return 0, false, &ArgumentError{Arg: "flags", Msg: fmt.Sprintf("unknown bits %#x", uint32(flags&^backend.AllFlags))}
	}
	if start < 0 {
		return 0, false, &ArgumentError{Arg: "start", Msg: fmt.Sprintf("negative offset %d", start)}
	}
	if config.MaxSubjectBytes > 0 && len(subject) > config.MaxSubjectBytes {
		return 0, false, fmt.Errorf("%w: subject of %d bytes exceeds the %d byte limit",
			ErrOutOfMemory, len(subject), config.MaxSubjectBytes)
	}
	if !utf8.ValidString(subject) {
		return 0, false, &ArgumentError{Arg: "subject", Msg: "not valid UTF-8"}
	}

	at, err = conv.RuneToByte(subject, start)
	if err != nil {
		return 0, false, nil
	}
	return at, true, nil
}

// NumberOfCaptures returns the number of explicit capture groups. The
// implicit whole-match group is not counted.
func (p *Pattern) NumberOfCaptures() int {
	prog := p.prog.Load()
	if prog == nil {
		return 0
	}
	return prog.NumGroups() - 1
}

// SubexpNames returns the names of the capture groups. names[0] is always
// the empty string, as is the name of every unnamed group. The slice is
// shared and must not be modified.
func (p *Pattern) SubexpNames() []string {
	prog := p.prog.Load()
	if prog == nil {
		return nil
	}
	return prog.SubexpNames()
}

// SubexpIndex returns the index of the first group with the given name, or
// -1 if there is no such group.
func (p *Pattern) SubexpIndex(name string) int {
	return subexpIndex(p.SubexpNames(), name)
}

func subexpIndex(names []string, name string) int {
	if name == "" {
		return -1
	}
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// String returns the source text used to compile the pattern.
func (p *Pattern) String() string {
	return p.pattern
}

// Close releases the compiled program. Later calls on p return ErrClosed.
// Close is idempotent.
func (p *Pattern) Close() error {
	if prog := p.prog.Swap(nil); prog != nil {
		prog.Release()
	}
	return nil
}

// metaChars are the bytes QuoteMeta escapes.
const metaChars = `\.+*?()|[]{}^$`

// QuoteMeta returns s with every metacharacter backslash-escaped, giving a
// pattern that matches s literally.
//
// Example:
//
//	escaped := cpregex.QuoteMeta("1+1=2?")
//	// escaped = `1\+1=2\?`
func QuoteMeta(s string) string {
	i := strings.IndexAny(s, metaChars)
	if i < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/4 + 1)
	b.WriteString(s[:i])
	for ; i < len(s); i++ {
		if strings.IndexByte(metaChars, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
