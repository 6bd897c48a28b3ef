// Package backend is the narrow boundary between cpregex and the coregex
// meta-engine.
//
// Everything here speaks byte offsets. A Program owns one compiled engine per
// anchor-flag variant; a Multi owns an ordered list of Programs plus the
// optional literal automaton used for leading-match search. Capture regions
// are flat []int slices laid out like regexp.FindSubmatchIndex: region[2*i]
// and region[2*i+1] bound group i, and -1 marks a group that did not
// participate.
package backend

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"strings"
	"sync/atomic"

	"github.com/coregx/coregex/meta"
)

// Flags modify anchor assertions for a single execution.
type Flags uint32

const (
	// NotBeginString makes \A (and ^ outside multi-line mode) fail at offset 0.
	NotBeginString Flags = 1 << iota
	// NotBeginPosition makes a leading \G fail at the search start.
	NotBeginPosition
	// NotEndString makes \z (and $ outside multi-line mode) fail at the end.
	NotEndString

	// AllFlags is the mask of recognised flag bits.
	AllFlags = NotBeginString | NotBeginPosition | NotEndString
)

// ErrExecution reports a failure inside the engine during a search.
var ErrExecution = errors.New("regex execution failed")

// positionAnchor is the only place \G may appear: as the first token.
const positionAnchor = `\G`

// ErrPositionAlternation is the syntax error code for a leading \G followed
// by an alternation at the top level. The anchor would bind to the first
// branch only, and a Program anchors whole searches.
const ErrPositionAlternation syntax.ErrorCode = "\\G before top-level alternation"

// Program is one compiled pattern.
type Program struct {
	source string

	// engines[i] serves executions whose anchor flags map to i via
	// variantIndex. Variants that would be identical share one engine.
	// Release stores nil.
	engines atomic.Pointer[[4]*meta.Engine]

	leadG   bool
	literal []byte
	groups  int
	names   []string
}

// Compile parses and compiles pattern. Syntax problems are returned as
// *syntax.Error so callers can read the diagnostic code.
func Compile(pattern string, config meta.Config) (*Program, error) {
	src := pattern
	leadG := strings.HasPrefix(src, positionAnchor)
	if leadG {
		src = src[len(positionAnchor):]
	}

	re, err := syntax.Parse(src, syntax.Perl)
	if err != nil {
		return nil, err
	}
	if leadG && hasTopLevelBar(src) {
		return nil, &syntax.Error{Code: ErrPositionAlternation, Expr: pattern}
	}

	p := &Program{
		source: pattern,
		leadG:  leadG,
		groups: re.MaxCap() + 1,
		names:  re.CapNames(),
	}
	if !leadG && re.Op == syntax.OpLiteral && re.Flags&syntax.FoldCase == 0 {
		p.literal = []byte(string(re.Rune))
	}

	var variants [4]*meta.Engine
	hasBegin, hasEnd := textAnchors(re)
	for vi := range variants {
		// Drop flag bits the pattern cannot observe; identical variants share
		// the engine compiled for the smaller index.
		key := 0
		if vi&1 != 0 && hasBegin {
			key |= 1
		}
		if vi&2 != 0 && hasEnd {
			key |= 2
		}
		if key != vi {
			variants[vi] = variants[key]
			continue
		}

		tree := re
		if vi != 0 {
			tree = withoutTextAnchors(re, vi&1 != 0, vi&2 != 0)
		}
		engine, err := meta.CompileRegexp(tree, config)
		if err != nil {
			return nil, err
		}
		variants[vi] = engine
	}
	p.engines.Store(&variants)

	return p, nil
}

// Source returns the pattern text as given to Compile.
func (p *Program) Source() string {
	return p.source
}

// NumGroups returns the number of capture groups including group 0.
func (p *Program) NumGroups() int {
	return p.groups
}

// SubexpNames returns the group names; index 0 is always "".
func (p *Program) SubexpNames() []string {
	return p.names
}

// Literal returns the literal text matched by the pattern, or nil if the
// pattern is not a plain case-sensitive literal.
func (p *Program) Literal() []byte {
	return p.literal
}

// PositionAnchored reports whether the pattern starts with \G.
func (p *Program) PositionAnchored() bool {
	return p.leadG
}

// Exec runs the program against subject starting at byte offset start.
// With anchored set, only a match beginning exactly at start is accepted;
// the engine still searches forward, so a failed anchored call costs as much
// as an unanchored one. A nil region with a nil error means no match.
func (p *Program) Exec(subject []byte, start int, anchored bool, flags Flags) (region []int, err error) {
	if p.leadG {
		if flags&NotBeginPosition != 0 {
			return nil, nil
		}
		anchored = true
	}

	engines := p.engines.Load()
	if engines == nil {
		return nil, fmt.Errorf("%w: program released", ErrExecution)
	}
	engine := engines[variantIndex(flags)]

	defer func() {
		if r := recover(); r != nil {
			region = nil
			err = fmt.Errorf("%w: %v", ErrExecution, r)
		}
	}()

	m := engine.FindSubmatchAt(subject, start)
	if m == nil {
		return nil, nil
	}

	region = make([]int, p.groups*2)
	n := m.NumCaptures()
	for i := 0; i < p.groups; i++ {
		region[i*2], region[i*2+1] = -1, -1
		if i >= n {
			continue
		}
		if idx := m.GroupIndex(i); len(idx) >= 2 {
			region[i*2], region[i*2+1] = idx[0], idx[1]
		}
	}

	if region[0] < start || (anchored && region[0] != start) {
		return nil, nil
	}
	return region, nil
}

// Release drops the compiled engines. Exec on a released program fails with
// ErrExecution.
func (p *Program) Release() {
	p.engines.Store(nil)
}

func variantIndex(flags Flags) int {
	vi := 0
	if flags&NotBeginString != 0 {
		vi |= 1
	}
	if flags&NotEndString != 0 {
		vi |= 2
	}
	return vi
}
