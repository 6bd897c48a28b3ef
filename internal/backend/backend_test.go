package backend

import (
	"errors"
	"regexp/syntax"
	"testing"

	"github.com/coregx/coregex/meta"
)

func mustCompile(t *testing.T, pattern string) *Program {
	t.Helper()
	p, err := Compile(pattern, meta.DefaultConfig())
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", pattern, err)
	}
	return p
}

func TestCompileMetadata(t *testing.T) {
	tests := []struct {
		pattern string
		groups  int
		literal string
		leadG   bool
		names   []string
	}{
		{`abc`, 1, "abc", false, []string{""}},
		{`(?i)abc`, 1, "", false, []string{""}},
		{`日本`, 1, "日本", false, []string{""}},
		{`a(b)(?P<c>c)`, 3, "", false, []string{"", "", "c"}},
		{`\Gabc`, 1, "", true, []string{""}},
		{`a|b`, 1, "", false, []string{""}},
	}

	for _, tt := range tests {
		p := mustCompile(t, tt.pattern)
		if p.Source() != tt.pattern {
			t.Errorf("%q: Source() = %q", tt.pattern, p.Source())
		}
		if p.NumGroups() != tt.groups {
			t.Errorf("%q: NumGroups() = %d, want %d", tt.pattern, p.NumGroups(), tt.groups)
		}
		if string(p.Literal()) != tt.literal {
			t.Errorf("%q: Literal() = %q, want %q", tt.pattern, p.Literal(), tt.literal)
		}
		if p.PositionAnchored() != tt.leadG {
			t.Errorf("%q: PositionAnchored() = %v", tt.pattern, p.PositionAnchored())
		}
		names := p.SubexpNames()
		if len(names) != len(tt.names) {
			t.Errorf("%q: SubexpNames() = %q, want %q", tt.pattern, names, tt.names)
			continue
		}
		for i := range names {
			if names[i] != tt.names[i] {
				t.Errorf("%q: SubexpNames()[%d] = %q", tt.pattern, i, names[i])
			}
		}
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile(`a(`, meta.DefaultConfig())
	var se *syntax.Error
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *syntax.Error", err)
	}
	if se.Code != syntax.ErrMissingParen {
		t.Errorf("Code = %q", se.Code)
	}
}

func TestExecRegion(t *testing.T) {
	tests := []struct {
		pattern  string
		subject  string
		start    int
		anchored bool
		flags    Flags
		want     []int
	}{
		{`a+b`, "xxaaabxx", 0, false, 0, []int{2, 6}},
		{`a+b`, "xxaaabxx", 0, true, 0, nil},
		{`a+b`, "xxaaabxx", 2, true, 0, []int{2, 6}},
		{`a+b`, "xxaaabxx", 4, false, 0, []int{4, 6}},
		{`(a)|(b)`, "b", 0, false, 0, []int{0, 1, -1, -1, 0, 1}},
		{`é`, "café", 0, false, 0, []int{3, 5}},
		{`^a`, "a", 0, false, NotBeginString, nil},
		{`a$`, "a", 0, false, NotEndString, nil},
		{`a$`, "a", 0, false, NotBeginString, []int{0, 1}},
		{`\Ga`, "ba", 0, false, 0, nil},
		{`\Ga`, "ba", 1, false, 0, []int{1, 2}},
		{`\Ga`, "ba", 1, false, NotBeginPosition, nil},
		{``, "ab", 2, false, 0, []int{2, 2}},
		{`$`, "ab", 0, false, 0, []int{2, 2}},
		{`$`, "ab", 0, false, NotEndString, nil},
		{`^`, "ab", 0, false, NotBeginString, nil},
		{`^|b`, "ab", 0, false, NotBeginString, []int{1, 2}},
		{`\Aabc`, "abc", 0, false, 0, []int{0, 3}},
		{`\Aabc`, "abc", 0, false, NotBeginString, nil},
		{`c\z`, "abc", 0, false, 0, []int{2, 3}},
		{`c\z`, "abc", 0, false, NotEndString, nil},
		{`(?i)^A`, "a", 0, false, NotBeginString | NotEndString, nil},
	}

	for _, tt := range tests {
		p := mustCompile(t, tt.pattern)
		got, err := p.Exec([]byte(tt.subject), tt.start, tt.anchored, tt.flags)
		if err != nil {
			t.Fatalf("%q.Exec(%q, %d) error: %v", tt.pattern, tt.subject, tt.start, err)
		}
		if !equalRegion(got, tt.want) {
			t.Errorf("%q.Exec(%q, %d, anchored=%v, %#x) = %v, want %v",
				tt.pattern, tt.subject, tt.start, tt.anchored, tt.flags, got, tt.want)
		}
	}
}

func TestCompileAnchors(t *testing.T) {
	for _, pattern := range []string{`^`, `$`, `^a`, `a$`, `\Aabc`, `c\z`, `(?i)^abc$`, `x|\Ay|z\z`} {
		p := mustCompile(t, pattern)
		for _, flags := range []Flags{0, NotBeginString, NotEndString, NotBeginString | NotEndString} {
			if _, err := p.Exec([]byte("abc"), 0, false, flags); err != nil {
				t.Errorf("%q.Exec(%#x) error: %v", pattern, flags, err)
			}
		}
	}
}

func TestNeverMatch(t *testing.T) {
	for _, flags := range []syntax.Flags{0, syntax.Perl, syntax.Perl | syntax.FoldCase} {
		engine, err := meta.CompileRegexp(neverMatch(flags), meta.DefaultConfig())
		if err != nil {
			t.Fatalf("compile with flags %#x: %v", flags, err)
		}
		for _, subject := range []string{"", "abc", "\uFFFD", "日本語😀", "\U0010FFFF\uD7FF\uE000"} {
			if m := engine.Find([]byte(subject)); m != nil {
				t.Errorf("flags %#x: matched %q in %q", flags, m.Bytes(), subject)
			}
		}
	}
}

func TestPositionAlternation(t *testing.T) {
	_, err := Compile(`\Ga|b`, meta.DefaultConfig())
	var se *syntax.Error
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *syntax.Error", err)
	}
	if se.Code != ErrPositionAlternation || se.Expr != `\Ga|b` {
		t.Errorf("error = %+v", se)
	}

	for _, pattern := range []string{`\G(?:a|b)`, `\Ga\|b`, `\G[|]`, `\G\Qa|b\E`, `\G[]|]`, `\G[[:alpha:]|]x`} {
		if _, err := Compile(pattern, meta.DefaultConfig()); err != nil {
			t.Errorf("Compile(%q) error: %v", pattern, err)
		}
	}
}

func TestHasTopLevelBar(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`a|b`, true},
		{`|`, true},
		{`(a)|b`, true},
		{`(a|b)`, false},
		{`a\|b`, false},
		{`[|]`, false},
		{`[^|]`, false},
		{`[]|]`, false},
		{`[^]|]`, false},
		{`[[:alpha:]|]`, false},
		{`[\]|]`, false},
		{`\Qa|b\E`, false},
		{`\Qa|b\E|c`, true},
		{`\Qa|b`, false},
		{`(?:a(b|c))|d`, true},
		{`(?i)a|b`, true},
	}
	for _, tt := range tests {
		if got := hasTopLevelBar(tt.src); got != tt.want {
			t.Errorf("hasTopLevelBar(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestVariantsShareEngines(t *testing.T) {
	p := mustCompile(t, `abc`)
	engines := p.engines.Load()
	for i := 1; i < len(engines); i++ {
		if engines[i] != engines[0] {
			t.Errorf("variant %d compiled separately for an anchor-free pattern", i)
		}
	}

	p = mustCompile(t, `^abc`)
	engines = p.engines.Load()
	if engines[1] == engines[0] {
		t.Error("NotBeginString variant shares the plain engine")
	}
	if engines[2] != engines[0] || engines[3] != engines[1] {
		t.Error("NotEndString variants should be shared when the pattern has no end anchor")
	}
}

func TestReleasedProgram(t *testing.T) {
	p := mustCompile(t, `a`)
	p.Release()
	p.Release()
	if _, err := p.Exec([]byte("a"), 0, false, 0); !errors.Is(err, ErrExecution) {
		t.Errorf("Exec after Release: err = %v, want ErrExecution", err)
	}
}

func TestTextAnchors(t *testing.T) {
	tests := []struct {
		pattern    string
		begin, end bool
	}{
		{`abc`, false, false},
		{`^abc`, true, false},
		{`abc\z`, false, true},
		{`(?m)^abc$`, false, false},
		{`x|(\Ay)+|z$`, true, true},
	}
	for _, tt := range tests {
		re, err := syntax.Parse(tt.pattern, syntax.Perl)
		if err != nil {
			t.Fatal(err)
		}
		begin, end := textAnchors(re)
		if begin != tt.begin || end != tt.end {
			t.Errorf("textAnchors(%q) = (%v, %v), want (%v, %v)", tt.pattern, begin, end, tt.begin, tt.end)
		}

		stripped := withoutTextAnchors(re, true, true)
		if b, e := textAnchors(stripped); b || e {
			t.Errorf("withoutTextAnchors(%q) still has anchors: %v", tt.pattern, stripped)
		}
		if b, e := textAnchors(re); b != tt.begin || e != tt.end {
			t.Errorf("withoutTextAnchors(%q) modified its input", tt.pattern)
		}
	}
}

func equalRegion(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
