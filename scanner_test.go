package cpregex

import (
	"errors"
	"testing"
)

type scanned struct {
	idx        int
	text       string
	start, end int
}

func scanAll(t *testing.T, s *Set, subject string, flags Flags) []scanned {
	t.Helper()
	var out []scanned
	sc := s.Scanner(subject, flags)
	for sc.Next() {
		m := sc.Match()
		text, _ := m.Group(0)
		start, end, _ := m.Span(0)
		out = append(out, scanned{sc.Index(), text, start, end})
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return out
}

func TestScanner(t *testing.T) {
	s := mustCompileSet(t, `\d+`, `\s+`, `\w+`, `[^\w\s]`)

	got := scanAll(t, s, "déjà 42!", None)
	want := []scanned{
		{2, "d", 0, 1},
		{3, "é", 1, 2},
		{2, "j", 2, 3},
		{3, "à", 3, 4},
		{1, " ", 4, 5},
		{0, "42", 5, 7},
		{3, "!", 7, 8},
	}
	if len(got) != len(want) {
		t.Fatalf("scanned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScannerEmptyMatches(t *testing.T) {
	s := mustCompileSet(t, `x*`)

	got := scanAll(t, s, "aé", None)
	want := []scanned{
		{0, "", 0, 0},
		{0, "", 1, 1},
		{0, "", 2, 2},
	}
	if len(got) != len(want) {
		t.Fatalf("scanned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScannerLiteralSet(t *testing.T) {
	s := mustCompileSet(t, "ab", "a", "b")
	got := scanAll(t, s, "abxba", None)
	want := []scanned{
		{0, "ab", 0, 2},
		{2, "b", 3, 4},
		{1, "a", 4, 5},
	}
	if len(got) != len(want) {
		t.Fatalf("scanned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScannerPositionAnchored(t *testing.T) {
	s := mustCompileSet(t, `\G\d`, `[a-z]+`)

	got := scanAll(t, s, "12ab3", None)
	want := []scanned{
		{0, "1", 0, 1},
		{0, "2", 1, 2},
		{1, "ab", 2, 4},
		{0, "3", 4, 5},
	}
	if len(got) != len(want) {
		t.Fatalf("scanned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScannerClosed(t *testing.T) {
	s, err := CompileSet([]string{`a`})
	if err != nil {
		t.Fatal(err)
	}
	sc := s.Scanner("aaa", None)
	if !sc.Next() {
		t.Fatal("first Next failed")
	}
	s.Close()
	if sc.Next() {
		t.Error("Next succeeded after Close")
	}
	if !errors.Is(sc.Err(), ErrClosed) {
		t.Errorf("Err() = %v, want ErrClosed", sc.Err())
	}

	if sc := s.Scanner("a", None); sc.Next() || !errors.Is(sc.Err(), ErrClosed) {
		t.Error("Scanner on closed set should fail with ErrClosed")
	}
}

func TestScannerInvalidSubject(t *testing.T) {
	s := mustCompileSet(t, `a`)
	sc := s.Scanner("a\xff", None)
	if sc.Next() {
		t.Error("Next succeeded on invalid UTF-8")
	}
	var argErr *ArgumentError
	if !errors.As(sc.Err(), &argErr) {
		t.Errorf("Err() = %v, want *ArgumentError", sc.Err())
	}
}
