package backend

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/cpregex/internal/sparse"
)

// NoMatch is the index reported when no member matches.
const NoMatch = -1

// Multi is a leading-match search context over an ordered list of programs.
// It owns the programs: Release tears down the context and then the programs.
type Multi struct {
	progs []*Program

	// lit is set when every member is a plain literal. The automaton finds
	// some occurrence; the leftmost one, lowest index first, is then settled
	// by checking each literal up to that point.
	lit atomic.Pointer[literalSet]
}

type literalSet struct {
	automaton *ahocorasick.Automaton
	literals  [][]byte
}

// BuildMulti builds a search context over progs, taking ownership of them.
// An empty list is legal and never matches.
func BuildMulti(progs []*Program) (*Multi, error) {
	m := &Multi{progs: progs}
	if len(progs) == 0 {
		return m, nil
	}

	literals := make([][]byte, len(progs))
	for i, p := range progs {
		if p.literal == nil {
			return m, nil
		}
		literals[i] = p.literal
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building literal automaton: %w", err)
	}
	m.lit.Store(&literalSet{automaton: auto, literals: literals})
	return m, nil
}

// Len returns the number of member programs.
func (m *Multi) Len() int {
	return len(m.progs)
}

// LiteralOnly reports whether searches run on the literal automaton.
func (m *Multi) LiteralOnly() bool {
	return m.lit.Load() != nil
}

// Search finds the member whose match starts leftmost at or after start,
// preferring the lowest index on ties. It returns NoMatch and a nil region
// when nothing matches.
func (m *Multi) Search(subject []byte, start int, flags Flags) (int, []int, error) {
	if len(m.progs) == 0 {
		return NoMatch, nil, nil
	}
	if ls := m.lit.Load(); ls != nil {
		return ls.search(subject, start)
	}

	best := NoMatch
	var bestRegion []int
	for i, p := range m.progs {
		region, err := p.Exec(subject, start, false, flags)
		if err != nil {
			return NoMatch, nil, err
		}
		if region == nil {
			continue
		}
		if best == NoMatch || region[0] < bestRegion[0] {
			best, bestRegion = i, region
			if region[0] == start {
				break
			}
		}
	}
	return best, bestRegion, nil
}

// search returns the leftmost literal occurrence at or after start, ties
// going to the lowest index. The automaton's hit bounds the answer: a
// literal that starts earlier must occur within the window ending at that
// hit plus its own length, so each literal is checked there.
func (ls *literalSet) search(subject []byte, start int) (int, []int, error) {
	if start >= len(subject) {
		return NoMatch, nil, nil
	}
	am := ls.automaton.Find(subject, start)
	if am == nil {
		return NoMatch, nil, nil
	}

	best, bestAt := NoMatch, am.Start+1
	for i, lit := range ls.literals {
		end := min(am.Start+len(lit), len(subject))
		off := bytes.Index(subject[start:end], lit)
		if off < 0 {
			continue
		}
		if at := start + off; at < bestAt {
			best, bestAt = i, at
		}
	}
	if best == NoMatch {
		return NoMatch, nil, fmt.Errorf("%w: automaton reported offset %d with no literal", ErrExecution, am.Start)
	}
	return best, []int{bestAt, bestAt + len(ls.literals[best])}, nil
}

// Release drops the search context first and the member programs second.
// Calling it more than once is harmless.
func (m *Multi) Release() {
	m.lit.Store(nil)
	for _, p := range m.progs {
		p.Release()
	}
}

// Cursor runs repeated leading-match searches over one subject with
// non-decreasing start offsets and fixed flags. It remembers each member's
// last match and reuses it while it still begins at or after the new start,
// and stops searching members that found nothing. A Cursor is not safe for
// concurrent use.
type Cursor struct {
	m         *Multi
	last      [][]int
	exhausted *sparse.Set
}

// NewCursor returns a cursor over m.
func (m *Multi) NewCursor() *Cursor {
	return &Cursor{
		m:         m,
		last:      make([][]int, len(m.progs)),
		exhausted: sparse.New(len(m.progs)),
	}
}

// Reset forgets all remembered results so the cursor can serve a new subject.
func (c *Cursor) Reset() {
	clear(c.last)
	c.exhausted.Clear()
}

// Search behaves like Multi.Search. Successive calls must use the same
// subject and flags and must not move start backwards.
func (c *Cursor) Search(subject []byte, start int, flags Flags) (int, []int, error) {
	if c.m.lit.Load() != nil || len(c.m.progs) == 0 {
		return c.m.Search(subject, start, flags)
	}
	if c.exhausted.Full() {
		return NoMatch, nil, nil
	}

	best := NoMatch
	var bestRegion []int
	for i, p := range c.m.progs {
		if c.exhausted.Contains(i) {
			continue
		}
		region := c.last[i]
		if region == nil || region[0] < start || p.leadG {
			var err error
			region, err = p.Exec(subject, start, false, flags)
			if err != nil {
				return NoMatch, nil, err
			}
			c.last[i] = region
			if region == nil {
				// A \G pattern may still match at a later start.
				if !p.leadG {
					c.exhausted.Insert(i)
				}
				continue
			}
		}
		if best == NoMatch || region[0] < bestRegion[0] {
			best, bestRegion = i, region
			if region[0] == start {
				break
			}
		}
	}
	return best, bestRegion, nil
}
