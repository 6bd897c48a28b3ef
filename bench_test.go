package cpregex

import (
	"bytes"
	"testing"

	"github.com/grafana/regexp"
)

// generateBenchLine builds a mixed-script line of at least size bytes.
func generateBenchLine(size int) string {
	var buf bytes.Buffer
	words := []string{
		"hello world ", "test123 ", "foo456bar ", "café ", "日本語 ",
		"quick brown fox ", "Привет ", "word42 ", "sample99text ",
	}
	for buf.Len() < size {
		for _, w := range words {
			buf.WriteString(w)
		}
	}
	return buf.String()
}

var benchLine = generateBenchLine(64 * 1024)

func BenchmarkSearchTail_Stdlib(b *testing.B) {
	re := regexp.MustCompile(`\w+[0-9]+$`)
	b.SetBytes(int64(len(benchLine)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		re.FindStringSubmatchIndex(benchLine)
	}
}

func BenchmarkSearchTail_Codepoint(b *testing.B) {
	re := MustCompile(`\w+[0-9]+$`)
	b.SetBytes(int64(len(benchLine)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := re.Search(benchLine); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatchSpan(b *testing.B) {
	re := MustCompile(`sample(\d+)text`)
	m, err := re.SearchAt(benchLine, 30000, None)
	if err != nil || m == nil {
		b.Fatal("no match")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = m.Span(1)
	}
}

func BenchmarkSetScanner(b *testing.B) {
	s, err := CompileSet([]string{`\d+`, `\p{L}+`, `\s+`})
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	line := generateBenchLine(4096)

	b.SetBytes(int64(len(line)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sc := s.Scanner(line, None)
		for sc.Next() {
		}
		if err := sc.Err(); err != nil {
			b.Fatal(err)
		}
	}
}
