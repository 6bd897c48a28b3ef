package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/coregx/cpregex/tokenize"
)

var scopeColor = color.New(color.FgYellow)

// tokenizeCommand prints the tokens a grammar produces for each line.
type tokenizeCommand struct {
	g       *globals
	grammar *string
	all     *bool
	files   *[]string

	// Tokenizers by grammar file, built on first use.
	loaded map[string]*tokenize.Tokenizer
}

func addTokenizeCommand(app *kingpin.Application, g *globals) {
	cmd := &tokenizeCommand{g: g, loaded: map[string]*tokenize.Tokenizer{}}
	tok := app.Command("tokenize", "Split lines into scoped tokens with a YAML grammar.").Action(cmd.run)
	cmd.all = tok.Flag("all", "Also print text no rule matched.").Bool()
	cmd.grammar = tok.Arg("grammar", "YAML grammar file, or a directory of KIND.yaml grammars chosen per input by its content.").Required().ExistingFileOrDir()
	cmd.files = tok.Arg("file", "Files to tokenize; standard input when none.").ExistingFiles()
}

func (cmd *tokenizeCommand) run(_ *kingpin.ParseContext) error {
	defer cmd.closeAll()

	info, err := os.Stat(*cmd.grammar)
	if err != nil {
		return errors.Wrap(err, "grammar")
	}

	var st stats
	err = cmd.g.eachInput(*cmd.files, &st, func(name string, r *bufio.Reader) (lineFunc, error) {
		file := *cmd.grammar
		if info.IsDir() {
			picked, err := cmd.pick(name, r)
			if err != nil {
				return nil, err
			}
			file = picked
		}
		tokenizer, err := cmd.tokenizer(file)
		if err != nil {
			return nil, err
		}
		return cmd.printer(tokenizer, &st), nil
	})
	if err != nil {
		return err
	}
	return cmd.g.finish("tokenize", &st)
}

// pick detects the kind of the input from its first bytes and returns the
// grammar for it, falling back to the text grammar.
func (cmd *tokenizeCommand) pick(name string, r *bufio.Reader) (string, error) {
	head, err := r.Peek(tokenize.HeadBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}
	kind, err := tokenize.Detect(head)
	if err != nil {
		return "", err
	}
	level.Debug(cmd.g.logger).Log("msg", "detected input kind", "input", name, "kind", kind)

	for _, k := range []string{kind, tokenize.KindText} {
		if k == "" {
			continue
		}
		file := filepath.Join(*cmd.grammar, k+".yaml")
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}
	return "", errors.Errorf("no grammar in %s for %q input", *cmd.grammar, kind)
}

func (cmd *tokenizeCommand) tokenizer(file string) (*tokenize.Tokenizer, error) {
	if t, ok := cmd.loaded[file]; ok {
		return t, nil
	}
	grammar, err := tokenize.Load(file)
	if err != nil {
		return nil, err
	}
	t, err := tokenize.NewWithConfig(grammar, cmd.g.config)
	if err != nil {
		return nil, err
	}
	cmd.loaded[file] = t
	return t, nil
}

func (cmd *tokenizeCommand) printer(tokenizer *tokenize.Tokenizer, st *stats) lineFunc {
	fallback := tokenizer.Grammar().DefaultScope
	if fallback == "" {
		fallback = tokenize.DefaultScope
	}
	return func(name string, lineno int, line string) error {
		tokens, err := tokenizer.TokenizeLine(line)
		if err != nil {
			return err
		}
		for _, t := range tokens {
			if t.Scope == fallback && !*cmd.all {
				continue
			}
			st.matches++
			fmt.Fprintf(cmd.g.out, "%s:%s:%d-%d:%s:%q\n",
				fileColor.Sprint(name), lineColor.Sprint(lineno), t.Start, t.End,
				scopeColor.Sprint(t.Scope), t.Text)
		}
		return nil
	}
}

func (cmd *tokenizeCommand) closeAll() {
	for file, t := range cmd.loaded {
		_ = t.Close()
		delete(cmd.loaded, file)
	}
}
