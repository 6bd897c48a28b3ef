// Command cpgrep searches text files with cpregex patterns and reports every
// position as a codepoint column.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/coregx/cpregex"
)

// errNoMatch makes the process exit with status 1 when nothing matched,
// as grep does.
var errNoMatch = errors.New("no match")

// globals holds the flags shared by every command and the state built from
// them before a command runs.
type globals struct {
	logLevel   *string
	configFile *string
	noColor    *bool

	stdin  io.Reader
	out    io.Writer
	errOut io.Writer

	logger log.Logger
	config cpregex.Config
}

func newApp(stdin io.Reader, out, errOut io.Writer) (*kingpin.Application, *globals) {
	app := kingpin.New("cpgrep", "Search text with regular expressions, reporting codepoint columns.")
	app.HelpFlag.Short('h')
	app.ErrorWriter(errOut)
	app.UsageWriter(errOut)

	g := &globals{
		stdin:  stdin,
		out:    out,
		errOut: errOut,
		logger: log.NewNopLogger(),
		config: cpregex.DefaultConfig(),
	}
	g.logLevel = app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("warn").Enum("debug", "info", "warn", "error")
	g.configFile = app.Flag("config.file", "YAML file with regex engine settings.").String()
	g.noColor = app.Flag("no-color", "Disable colored output.").Bool()
	app.PreAction(g.setup)

	addSearchCommand(app, g)
	addSetCommand(app, g)
	addTokenizeCommand(app, g)
	return app, g
}

func (g *globals) setup(_ *kingpin.ParseContext) error {
	g.logger = newLogger(g.errOut, *g.logLevel)
	cpregex.Init(g.logger)

	if *g.noColor {
		color.NoColor = true
	}
	if *g.configFile != "" {
		config, err := loadConfig(*g.configFile)
		if err != nil {
			return err
		}
		g.config = config
		level.Debug(g.logger).Log("msg", "loaded config", "file", *g.configFile)
	}
	return nil
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(lvl, level.WarnValue())))
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}

func main() {
	app, _ := newApp(os.Stdin, os.Stdout, os.Stderr)
	if _, err := app.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, errNoMatch) {
			os.Exit(1)
		}
		exitWithErr(err)
	}
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, "cpgrep:", err)
	os.Exit(2)
}
