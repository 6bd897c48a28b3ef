package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/coregx/cpregex"
)

var (
	fileColor  = color.New(color.FgMagenta)
	lineColor  = color.New(color.FgGreen)
	matchColor = color.New(color.FgRed, color.Bold)
	indexColor = color.New(color.FgCyan)
)

// searchCommand prints every match of one pattern.
type searchCommand struct {
	g          *globals
	pattern    *string
	ignoreCase *bool
	fixed      *bool
	files      *[]string
}

func addSearchCommand(app *kingpin.Application, g *globals) {
	cmd := &searchCommand{g: g}
	search := app.Command("search", "Print every match of PATTERN as file:line:start-end:text.").Action(cmd.run)
	cmd.ignoreCase = search.Flag("ignore-case", "Match case-insensitively.").Short('i').Bool()
	cmd.fixed = search.Flag("fixed-strings", "Treat PATTERN as literal text.").Short('F').Bool()
	cmd.pattern = search.Arg("pattern", "Regular expression.").Required().String()
	cmd.files = search.Arg("file", "Files to search; standard input when none.").ExistingFiles()
}

func (cmd *searchCommand) run(_ *kingpin.ParseContext) error {
	pattern := *cmd.pattern
	if *cmd.fixed {
		pattern = cpregex.QuoteMeta(pattern)
	}
	if *cmd.ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := cpregex.CompileWithConfig(pattern, cmd.g.config)
	if err != nil {
		return err
	}
	defer re.Close()

	var st stats
	err = cmd.g.eachLine(*cmd.files, &st, func(name string, lineno int, line string) error {
		return findAll(re, line, func(m *cpregex.Match) {
			st.matches++
			start, end, _ := m.Span(0)
			text, _ := m.Group(0)
			fmt.Fprintf(cmd.g.out, "%s:%s:%d-%d:%s\n",
				fileColor.Sprint(name), lineColor.Sprint(lineno), start, end, matchColor.Sprint(text))
		})
	})
	if err != nil {
		return err
	}
	return cmd.g.finish("search", &st)
}

// findAll reports successive non-overlapping matches of re in line. After an
// empty match the next search starts one codepoint later; SearchAt returns
// nil once that passes the end of the line.
func findAll(re *cpregex.Pattern, line string, fn func(*cpregex.Match)) error {
	for pos := 0; ; {
		m, err := re.SearchAt(line, pos, cpregex.None)
		if err != nil {
			return err
		}
		if m == nil {
			return nil
		}
		fn(m)

		start, end, _ := m.Span(0)
		pos = end
		if end == start {
			pos++
		}
	}
}

// finish logs the run summary and turns an empty result into errNoMatch.
func (g *globals) finish(command string, st *stats) error {
	level.Info(g.logger).Log(
		"msg", "scan complete",
		"command", command,
		"files", st.files,
		"lines", humanize.Comma(int64(st.lines)),
		"scanned", humanize.Bytes(st.bytes),
		"matches", humanize.Comma(st.matches),
	)
	if st.matches == 0 {
		return errNoMatch
	}
	return nil
}

// describe formats a set index for output.
func describe(idx int) string {
	return indexColor.Sprint(idx)
}

// wrapPattern names the failing pattern of a set in the error.
func wrapPattern(err error, patterns []string) error {
	var se *cpregex.SyntaxError
	if errors.As(err, &se) && se.Index >= 0 && se.Index < len(patterns) {
		return errors.Wrapf(err, "-e %q", patterns[se.Index])
	}
	return err
}
