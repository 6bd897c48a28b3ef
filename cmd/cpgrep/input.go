package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const maxLineBytes = 16 << 20

// stats counts what a command read and found.
type stats struct {
	files   int
	lines   int
	bytes   uint64
	matches int64
}

type lineFunc func(name string, lineno int, line string) error

// eachLine calls fn for every line of every file, or of stdin when files is
// empty. Lines that are not valid UTF-8 have bad bytes replaced by U+FFFD.
func (g *globals) eachLine(files []string, st *stats, fn lineFunc) error {
	return g.eachInput(files, st, func(string, *bufio.Reader) (lineFunc, error) {
		return fn, nil
	})
}

// eachInput is like eachLine but asks begin for the line callback of each
// input. begin may Peek at the reader; peeked bytes are still scanned.
func (g *globals) eachInput(files []string, st *stats, begin func(name string, r *bufio.Reader) (lineFunc, error)) error {
	if len(files) == 0 {
		return scanInput("(standard input)", g.stdin, st, begin)
	}
	for _, name := range files {
		if err := scanFile(name, st, begin); err != nil {
			return err
		}
	}
	return nil
}

func scanFile(name string, st *stats, begin func(string, *bufio.Reader) (lineFunc, error)) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()
	return scanInput(name, f, st, begin)
}

func scanInput(name string, r io.Reader, st *stats, begin func(string, *bufio.Reader) (lineFunc, error)) error {
	st.files++
	br := bufio.NewReaderSize(r, 64*1024)
	fn, err := begin(name, br)
	if err != nil {
		return errors.Wrap(err, name)
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineno := 0
	for sc.Scan() {
		lineno++
		st.lines++
		st.bytes += uint64(len(sc.Bytes())) + 1

		line := strings.ToValidUTF8(sc.Text(), "�")
		if err := fn(name, lineno, line); err != nil {
			return errors.Wrapf(err, "%s:%d", name, lineno)
		}
	}
	return errors.Wrap(sc.Err(), name)
}
