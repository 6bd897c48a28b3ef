package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/coregx/cpregex"
)

// setCommand tokenizes lines with several patterns and prints which one won
// at each position.
type setCommand struct {
	g        *globals
	patterns *[]string
	fixed    *bool
	files    *[]string
}

func addSetCommand(app *kingpin.Application, g *globals) {
	cmd := &setCommand{g: g}
	set := app.Command("set", "Scan lines with several patterns, printing file:line:start-end:index:text for each leading match.").Action(cmd.run)
	cmd.patterns = set.Flag("regexp", "Pattern; repeat for more. Earlier patterns win ties.").Short('e').Required().Strings()
	cmd.fixed = set.Flag("fixed-strings", "Treat every pattern as literal text.").Short('F').Bool()
	cmd.files = set.Arg("file", "Files to scan; standard input when none.").ExistingFiles()
}

func (cmd *setCommand) run(_ *kingpin.ParseContext) error {
	patterns := *cmd.patterns
	if *cmd.fixed {
		patterns = make([]string, len(*cmd.patterns))
		for i, p := range *cmd.patterns {
			patterns[i] = cpregex.QuoteMeta(p)
		}
	}
	s, err := cpregex.CompileSetWithConfig(patterns, cmd.g.config)
	if err != nil {
		return wrapPattern(err, *cmd.patterns)
	}
	defer s.Close()

	var st stats
	err = cmd.g.eachLine(*cmd.files, &st, func(name string, lineno int, line string) error {
		sc := s.Scanner(line, cpregex.None)
		for sc.Next() {
			m := sc.Match()
			start, end, _ := m.Span(0)
			if start == end {
				continue
			}
			st.matches++
			text, _ := m.Group(0)
			fmt.Fprintf(cmd.g.out, "%s:%s:%d-%d:%s:%s\n",
				fileColor.Sprint(name), lineColor.Sprint(lineno), start, end,
				describe(sc.Index()), matchColor.Sprint(text))
		}
		return sc.Err()
	})
	if err != nil {
		return err
	}
	return cmd.g.finish("set", &st)
}
