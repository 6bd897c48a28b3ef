// Package tokenize splits lines of text into scoped tokens with a grammar of
// regular expressions. Columns are codepoint offsets, so a token can be
// placed on a terminal line without knowing how the text is encoded.
package tokenize

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/coregx/cpregex"
	"github.com/coregx/cpregex/internal/conv"
)

// Token is a run of text and the scope assigned to it. Start and End are
// codepoint columns within the line.
type Token struct {
	Scope string
	Start int
	End   int
	Text  string
}

// Tokenizer applies a Grammar to lines. It is safe for concurrent use.
type Tokenizer struct {
	grammar *Grammar
	set     *cpregex.Set
}

// New compiles the rules of g into a pattern set.
func New(g *Grammar) (*Tokenizer, error) {
	return NewWithConfig(g, cpregex.DefaultConfig())
}

// NewWithConfig is like New with a custom regex configuration.
func NewWithConfig(g *Grammar, config cpregex.Config) (*Tokenizer, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	set, err := cpregex.CompileSetWithConfig(g.Patterns(), config)
	if err != nil {
		var se *cpregex.SyntaxError
		if errors.As(err, &se) && se.Index >= 0 {
			return nil, errors.Wrapf(err, "grammar %s: rule %d (%s)", g.Name, se.Index, g.Rules[se.Index].Scope)
		}
		return nil, errors.Wrapf(err, "grammar %s", g.Name)
	}
	if err := checkCaptures(g, set); err != nil {
		_ = set.Close()
		return nil, errors.Wrapf(err, "grammar %s", g.Name)
	}
	return &Tokenizer{grammar: g, set: set}, nil
}

// checkCaptures rejects capture scopes for groups a rule's pattern does not
// have.
func checkCaptures(g *Grammar, set *cpregex.Set) error {
	for i, r := range g.Rules {
		groups := len(set.SubexpNames(i)) - 1
		for _, n := range r.captureGroups() {
			if n > groups {
				return errors.Errorf("rule %d (%s): capture %d: pattern has %d groups", i, r.Scope, n, groups)
			}
		}
	}
	return nil
}

// Grammar returns the grammar the tokenizer was built from.
func (t *Tokenizer) Grammar() *Grammar {
	return t.grammar
}

// TokenizeLine splits line into tokens covering it from the first codepoint
// to the last. Text no rule matches is given the grammar's default scope.
// Empty matches produce no token.
func (t *Tokenizer) TokenizeLine(line string) ([]Token, error) {
	var (
		tokens []Token
		pos    cursor
	)
	fallback := t.grammar.defaultScope()

	sc := t.set.Scanner(line, cpregex.None)
	for sc.Next() {
		m := sc.Match()
		start, end, err := m.Span(0)
		if err != nil {
			return nil, err
		}
		if start == end {
			continue
		}
		from, to, _ := m.ByteSpan(0)
		if start > pos.col {
			tokens = append(tokens, pos.token(line, fallback, start, from))
		}
		tokens = t.appendMatch(tokens, sc.Index(), m)
		pos = cursor{col: end, off: to}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "grammar %s", t.grammar.Name)
	}

	if pos.off < len(line) {
		end := pos.col + conv.RuneCount(line[pos.off:])
		tokens = append(tokens, pos.token(line, fallback, end, len(line)))
	}
	return tokens, nil
}

// cursor is a position in a line as both a codepoint column and a byte
// offset, so token text is sliced without rescanning the line.
type cursor struct {
	col, off int
}

// token returns the text from c up to column end, byte offset to.
func (c cursor) token(line, scope string, end, to int) Token {
	return Token{Scope: scope, Start: c.col, End: end, Text: line[c.off:to]}
}

// appendMatch emits the match of rule idx. With captures configured the
// captured spans take their own scopes and the text around them keeps the
// rule scope. Groups are applied in order of their start; a group that
// overlaps one already applied is skipped.
func (t *Tokenizer) appendMatch(tokens []Token, idx int, m *cpregex.Match) []Token {
	rule := t.grammar.Rules[idx]
	start, end, _ := m.Span(0)
	from, to, _ := m.ByteSpan(0)
	if len(rule.Captures) == 0 {
		return append(tokens, Token{Scope: rule.Scope, Start: start, End: end, Text: m.Subject()[from:to]})
	}

	type span struct {
		scope      string
		start, end cursor
	}
	spans := make([]span, 0, len(rule.Captures))
	for n, scope := range rule.Captures {
		if !m.IsSet(n) {
			continue
		}
		s, e, _ := m.Span(n)
		bs, be, _ := m.ByteSpan(n)
		if s < e {
			spans = append(spans, span{scope, cursor{s, bs}, cursor{e, be}})
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start.col != spans[j].start.col {
			return spans[i].start.col < spans[j].start.col
		}
		return spans[i].end.col > spans[j].end.col
	})

	line := m.Subject()
	pos := cursor{start, from}
	for _, sp := range spans {
		if sp.start.col < pos.col {
			continue
		}
		if sp.start.col > pos.col {
			tokens = append(tokens, pos.token(line, rule.Scope, sp.start.col, sp.start.off))
		}
		tokens = append(tokens, sp.start.token(line, sp.scope, sp.end.col, sp.end.off))
		pos = sp.end
	}
	if pos.col < end {
		tokens = append(tokens, pos.token(line, rule.Scope, end, to))
	}
	return tokens
}

// Close releases the compiled rules.
func (t *Tokenizer) Close() error {
	return t.set.Close()
}
