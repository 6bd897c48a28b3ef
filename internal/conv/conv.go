// Package conv converts between UTF-8 byte offsets and codepoint offsets.
//
// The backend reports positions in bytes; callers index text in codepoints.
// Both directions are linear scans from the start of the buffer. Subjects are
// typically single lines or tokens, so no index is built.
//
// A byte starts a codepoint unless its top two bits are 10 (a continuation
// byte). Malformed input therefore never stalls a scan: a stray continuation
// byte is skipped and an invalid lead byte counts as a codepoint of its own.
package conv

import (
	"errors"
	"unsafe"
)

// ErrOutOfRange is returned by RuneToByte when the codepoint offset lies
// outside the buffer.
var ErrOutOfRange = errors.New("codepoint offset out of range")

// Text is the set of buffer types the translator accepts.
type Text interface {
	~string | ~[]byte
}

// IsRuneStart reports whether b begins a codepoint.
//
//go:inline
func IsRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// ByteToRune returns the number of codepoints that start at byte positions
// strictly less than b. Offsets outside [0, len(buf)] are clamped.
func ByteToRune[T Text](buf T, b int) int {
	if b <= 0 {
		return 0
	}
	if b > len(buf) {
		b = len(buf)
	}
	n := 0
	for i := 0; i < b; i++ {
		if IsRuneStart(buf[i]) {
			n++
		}
	}
	return n
}

// RuneToByte returns the byte offset at which the c-th codepoint (zero-based)
// starts. c equal to the number of codepoints yields len(buf), the end
// position. A negative c or one past the end returns ErrOutOfRange.
func RuneToByte[T Text](buf T, c int) (int, error) {
	if c < 0 {
		return 0, ErrOutOfRange
	}
	n := 0
	for i := 0; i < len(buf); i++ {
		if !IsRuneStart(buf[i]) {
			continue
		}
		if n == c {
			return i, nil
		}
		n++
	}
	if n == c {
		return len(buf), nil
	}
	return 0, ErrOutOfRange
}

// RuneCount returns the number of codepoint-start bytes in buf.
func RuneCount[T Text](buf T) int {
	return ByteToRune(buf, len(buf))
}

// NextRune returns the byte offset of the codepoint following the one that
// starts at b, or len(buf) if there is none.
func NextRune[T Text](buf T, b int) int {
	if b >= len(buf) {
		return len(buf)
	}
	for b++; b < len(buf); b++ {
		if IsRuneStart(buf[b]) {
			break
		}
	}
	return b
}

// Bytes returns a read-only byte view of s without copying. The result must
// never be written to; the engine only reads its haystack.
func Bytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
