package cpregex

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log/level"

	"github.com/coregx/cpregex/internal/backend"
	"github.com/coregx/cpregex/internal/conv"
)

// NoMatch is the index Set.Search returns when no pattern matches.
const NoMatch = backend.NoMatch

// Set is an ordered collection of patterns searched together.
//
// The order given to CompileSet is both the result index and the priority:
// among patterns whose matches start at the same leftmost position, the one
// with the lowest index wins. The set owns its compiled programs; they cannot
// be reached from outside and are released by Close.
//
// A Set is safe for concurrent use by multiple goroutines.
type Set struct {
	patterns []string
	names    [][]string
	config   Config
	multi    atomic.Pointer[backend.Multi]
}

// CompileSet compiles every pattern and builds a set over them. If any
// pattern fails, every program compiled so far is released and the error
// for the lowest failing index is returned. An empty list is legal and yields
// a set that never matches.
//
// Example:
//
//	set, err := cpregex.CompileSet([]string{`\d+`, `[a-z]+`, `[A-Z]+`})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	idx, m, _ := set.Search("abc 123 XYZ") // idx == 1, m spans (0, 3)
func CompileSet(patterns []string) (*Set, error) {
	return CompileSetWithConfig(patterns, DefaultConfig())
}

// CompileSetWithConfig is like CompileSet with custom configuration.
func CompileSetWithConfig(patterns []string, config Config) (*Set, error) {
	Init(nil)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	progs, err := compilePrograms(patterns, config)
	if err != nil {
		return nil, err
	}

	multi, err := backend.BuildMulti(progs)
	if err != nil {
		for _, p := range progs {
			p.Release()
		}
		return nil, fmt.Errorf("cpregex: building pattern set: %w", err)
	}

	s := &Set{
		patterns: append([]string(nil), patterns...),
		names:    make([][]string, len(progs)),
		config:   config,
	}
	for i, p := range progs {
		s.names[i] = p.SubexpNames()
	}
	s.multi.Store(multi)

	level.Debug(logger()).Log(
		"msg", "compiled pattern set",
		"patterns", len(patterns),
		"literal_only", multi.LiteralOnly(),
	)
	return s, nil
}

// compilePrograms compiles patterns in order. Large sets are split into
// contiguous index ranges compiled in parallel; each goroutine writes only
// its own range, so no locking is needed.
func compilePrograms(patterns []string, config Config) ([]*backend.Program, error) {
	progs := make([]*backend.Program, len(patterns))
	errs := make([]error, len(patterns))

	compileRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			progs[i], errs[i] = compileProgram(patterns[i], i, config)
			if errs[i] != nil {
				return
			}
		}
	}

	threshold := config.ConcurrentCompileThreshold
	if threshold > 0 && len(patterns) >= threshold {
		var wg sync.WaitGroup
		for _, r := range splitRanges(len(patterns), runtime.NumCPU()) {
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				compileRange(lo, hi)
			}(r[0], r[1])
		}
		wg.Wait()
	} else {
		compileRange(0, len(patterns))
	}

	for _, err := range errs {
		if err != nil {
			for _, p := range progs {
				if p != nil {
					p.Release()
				}
			}
			return nil, err
		}
	}
	return progs, nil
}

// splitRanges divides [0, n) into at most parts contiguous half-open ranges.
func splitRanges(n, parts int) [][2]int {
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	ranges := make([][2]int, 0, parts)
	lo := 0
	for i := 0; i < parts; i++ {
		hi := lo + (n-lo)/(parts-i)
		ranges = append(ranges, [2]int{lo, hi})
		lo = hi
	}
	return ranges
}

// Search is shorthand for SearchAt(subject, 0, None).
func (s *Set) Search(subject string) (int, *Match, error) {
	return s.SearchAt(subject, 0, None)
}

// SearchAt searches subject from codepoint offset start with every pattern
// and returns the index of the winning pattern and its match: the match
// starting leftmost, ties going to the lowest index. When nothing matches,
// or start lies beyond the end of subject, it returns (NoMatch, nil, nil).
func (s *Set) SearchAt(subject string, start int, flags Flags) (int, *Match, error) {
	multi := s.multi.Load()
	if multi == nil {
		return NoMatch, nil, ErrClosed
	}

	at, ok, err := prepare(subject, start, flags, s.config)
	if err != nil || !ok || multi.Len() == 0 {
		return NoMatch, nil, err
	}

	idx, region, err := multi.Search(conv.Bytes(subject), at, flags)
	if err != nil {
		return NoMatch, nil, s.execError(idx, err)
	}
	if idx == NoMatch {
		return NoMatch, nil, nil
	}
	return idx, newMatch(subject, region, s.names[idx]), nil
}

func (s *Set) execError(idx int, err error) error {
	pattern := s.String()
	if idx >= 0 && idx < len(s.patterns) {
		pattern = s.patterns[idx]
	}
	return &ExecutionError{Pattern: pattern, Err: err}
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int {
	return len(s.patterns)
}

// SubexpNames returns the capture group names of pattern i, laid out like
// Pattern.SubexpNames, or nil if i is out of range. The slice is shared and
// must not be modified.
func (s *Set) SubexpNames(i int) []string {
	if i < 0 || i >= len(s.names) {
		return nil
	}
	return s.names[i]
}

// Patterns returns a copy of the pattern sources in set order.
func (s *Set) Patterns() []string {
	return append([]string(nil), s.patterns...)
}

// String formats the set as cpregex.CompileSet("p0", "p1", ...).
func (s *Set) String() string {
	quoted := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return "cpregex.CompileSet(" + strings.Join(quoted, ", ") + ")"
}

// Close releases the search context and then the member programs. Later
// calls on s return ErrClosed. Close is idempotent.
func (s *Set) Close() error {
	if multi := s.multi.Swap(nil); multi != nil {
		multi.Release()
	}
	return nil
}
