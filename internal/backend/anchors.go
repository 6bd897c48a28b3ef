package backend

import (
	"regexp/syntax"
	"strings"
)

// textAnchors reports whether re contains begin-of-text or end-of-text
// assertions, the only assertions the per-call flags can switch off.
func textAnchors(re *syntax.Regexp) (begin, end bool) {
	switch re.Op {
	case syntax.OpBeginText:
		begin = true
	case syntax.OpEndText:
		end = true
	}
	for _, sub := range re.Sub {
		b, e := textAnchors(sub)
		begin = begin || b
		end = end || e
	}
	return begin, end
}

// withoutTextAnchors returns a copy of re in which the selected text anchors
// can never match. The input tree is left untouched; unchanged leaves are
// shared with it.
func withoutTextAnchors(re *syntax.Regexp, begin, end bool) *syntax.Regexp {
	if (begin && re.Op == syntax.OpBeginText) || (end && re.Op == syntax.OpEndText) {
		return neverMatch(re.Flags)
	}
	if len(re.Sub) == 0 {
		return re
	}

	cp := *re
	cp.Sub = make([]*syntax.Regexp, len(re.Sub))
	for i, sub := range re.Sub {
		cp.Sub[i] = withoutTextAnchors(sub, begin, end)
	}
	return &cp
}

// Surrogate codepoints. The engine encodes them byte for byte, and those
// byte sequences are not valid UTF-8, so they never occur in a subject.
// The class is wider than the engine's literal-expansion limit, so no
// prefilter literal is derived from it.
const (
	surrogateLo = 0xD800
	surrogateHi = 0xD80F
)

// neverMatch returns a node the engine compiles but no valid UTF-8 subject
// satisfies. The engine rejects OpNoMatch and compiles an empty class as an
// empty match, so neither can stand in here.
func neverMatch(flags syntax.Flags) *syntax.Regexp {
	return &syntax.Regexp{
		Op:    syntax.OpCharClass,
		Flags: flags &^ syntax.FoldCase,
		Rune:  []rune{surrogateLo, surrogateHi},
	}
}

// hasTopLevelBar reports whether src has a | outside every group, class and
// escape. The parse tree cannot answer this because the parser folds
// single-character branches into classes.
func hasTopLevelBar(src string) bool {
	depth := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if i+1 < len(src) && src[i+1] == 'Q' {
				end := strings.Index(src[i+2:], `\E`)
				if end < 0 {
					return false
				}
				i += 2 + end + 1
				continue
			}
			i++
		case '[':
			i = classEnd(src, i)
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// classEnd returns the index of the ] closing the class opened at src[open].
func classEnd(src string, open int) int {
	i := open + 1
	if i < len(src) && src[i] == '^' {
		i++
	}
	if i < len(src) && src[i] == ']' {
		i++
	}
	for ; i < len(src); i++ {
		switch {
		case src[i] == '\\':
			i++
		case src[i] == ']':
			return i
		case strings.HasPrefix(src[i:], "[:"):
			if end := strings.Index(src[i+2:], ":]"); end >= 0 {
				i += 2 + end + 1
			}
		}
	}
	return len(src)
}
