package conv

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func TestByteToRune(t *testing.T) {
	tests := []struct {
		buf  string
		b    int
		want int
	}{
		{"", 0, 0},
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"abc", 3, 3},
		{"café", 3, 3},
		{"café", 4, 4}, // inside é: its lead byte is already counted
		{"café", 5, 4},
		{"café", 6, 4},  // clamped
		{"こんにちは", 3, 1}, // 3-byte codepoints
		{"こんにちは", 6, 2},
		{"こんにちは", 15, 5},
		{"a\U0001F600b", 5, 2}, // 4-byte emoji
		{"abc", -1, 0},
	}

	for _, tt := range tests {
		got := ByteToRune(tt.buf, tt.b)
		if got != tt.want {
			t.Errorf("ByteToRune(%q, %d) = %d, want %d", tt.buf, tt.b, got, tt.want)
		}
	}
}

func TestRuneToByte(t *testing.T) {
	tests := []struct {
		buf     string
		c       int
		want    int
		wantErr bool
	}{
		{"", 0, 0, false},
		{"", 1, 0, true},
		{"abc", 0, 0, false},
		{"abc", 3, 3, false},
		{"abc", 4, 0, true},
		{"abc", -1, 0, true},
		{"café bar", 4, 5, false},
		{"café bar", 3, 3, false},
		{"こんにちは world", 6, 16, false},
		{"a\U0001F600b", 2, 5, false},
	}

	for _, tt := range tests {
		got, err := RuneToByte(tt.buf, tt.c)
		if tt.wantErr {
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("RuneToByte(%q, %d) error = %v, want ErrOutOfRange", tt.buf, tt.c, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("RuneToByte(%q, %d) unexpected error: %v", tt.buf, tt.c, err)
		}
		if got != tt.want {
			t.Errorf("RuneToByte(%q, %d) = %d, want %d", tt.buf, tt.c, got, tt.want)
		}
	}
}

// TestRoundTrip checks ByteToRune(RuneToByte(c)) == c for every reachable
// codepoint index, including the end position.
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"café",
		"こんにちは world",
		"\U0001F600\U0001F601x",
		"mixed ä ö ü ß ẞ",
	}

	for _, s := range inputs {
		n := utf8.RuneCountInString(s)
		if got := RuneCount(s); got != n {
			t.Errorf("RuneCount(%q) = %d, want %d", s, got, n)
		}
		for c := 0; c <= n; c++ {
			b, err := RuneToByte(s, c)
			if err != nil {
				t.Fatalf("RuneToByte(%q, %d): %v", s, c, err)
			}
			if back := ByteToRune(s, b); back != c {
				t.Errorf("round trip %q: c=%d -> b=%d -> %d", s, c, b, back)
			}
		}
	}
}

func TestMalformedTrailingBytes(t *testing.T) {
	// A truncated 3-byte sequence: lead byte plus one continuation.
	buf := []byte{'a', 0xE3, 0x81}
	if got := RuneCount(buf); got != 2 {
		t.Errorf("RuneCount = %d, want 2", got)
	}
	// A stray continuation byte is not a boundary.
	buf = []byte{0x81, 'a'}
	if got := RuneCount(buf); got != 1 {
		t.Errorf("RuneCount = %d, want 1", got)
	}
}

func TestNextRune(t *testing.T) {
	s := "aé\U0001F600"
	if got := NextRune(s, 0); got != 1 {
		t.Errorf("NextRune(0) = %d, want 1", got)
	}
	if got := NextRune(s, 1); got != 3 {
		t.Errorf("NextRune(1) = %d, want 3", got)
	}
	if got := NextRune(s, 3); got != 7 {
		t.Errorf("NextRune(3) = %d, want 7", got)
	}
	if got := NextRune(s, 7); got != 7 {
		t.Errorf("NextRune(7) = %d, want 7", got)
	}
}

func TestBytes(t *testing.T) {
	s := "héllo"
	b := Bytes(s)
	if string(b) != s {
		t.Errorf("Bytes(%q) = %q", s, b)
	}
	if len(Bytes("")) != 0 {
		t.Error("Bytes(\"\") should be empty")
	}
}
