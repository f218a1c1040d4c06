package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"agenda/internal/config"

	"github.com/peterbourgon/ff/v3"
)

const (
	ImportUsage = "usage: import-agenda [flags] <agenda.xls>"
	LookupUsage = "usage: lookup-agenda [flags] <column> <value...>"
)

// UsageError reports a command line of the wrong shape.
type UsageError struct {
	Usage  string
	Reason string
}

func (e *UsageError) Error() string {
	if e.Reason == "" {
		return e.Usage
	}
	return fmt.Sprintf("%s\n%s", e.Reason, e.Usage)
}

type ImportArgs struct {
	Source string
	Reset  bool
}

type LookupArgs struct {
	Column string
	Value  string
}

// ParseImport applies import flags onto cfg and returns the positional source path.
func ParseImport(cfg *config.Config, args []string, output io.Writer) (*ImportArgs, error) {
	fs := newFlagSet("import-agenda", cfg, output)

	var parsed ImportArgs
	fs.IntVar(&cfg.Import.HeaderRows, "header-rows", cfg.Import.HeaderRows, "leading sheet rows to skip")
	fs.BoolVar(&parsed.Reset, "reset", false, "drop and recreate the agenda relations before importing")

	if err := parse(fs, args, ImportUsage); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{Usage: ImportUsage, Reason: "missing agenda source path"}
	}
	if cfg.Import.HeaderRows < 0 {
		return nil, &UsageError{Usage: ImportUsage, Reason: "-header-rows must not be negative"}
	}

	parsed.Source = fs.Arg(0)
	return &parsed, nil
}

// ParseLookup applies lookup flags onto cfg. Value tokens are joined by single spaces.
func ParseLookup(cfg *config.Config, args []string, output io.Writer) (*LookupArgs, error) {
	fs := newFlagSet("lookup-agenda", cfg, output)

	if err := parse(fs, args, LookupUsage); err != nil {
		return nil, err
	}
	if fs.NArg() < 2 {
		return nil, &UsageError{Usage: LookupUsage, Reason: "expected a column and a value"}
	}

	rest := fs.Args()
	return &LookupArgs{
		Column: rest[0],
		Value:  strings.Join(rest[1:], " "),
	}, nil
}

func newFlagSet(name string, cfg *config.Config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&cfg.Database.Driver, "driver", cfg.Database.Driver, "store driver (sqlite or postgres)")
	fs.StringVar(&cfg.Database.DSN, "db", cfg.Database.DSN, "store data source name")
	fs.StringVar(&cfg.Log.Dir, "log-dir", cfg.Log.Dir, "directory for JSON log files, empty to disable")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "minimum log level")
	fs.String("config", "", "config file path")
	return fs
}

func parse(fs *flag.FlagSet, args []string, usage string) error {
	err := ff.Parse(fs, args,
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, flag.ErrHelp) {
		return &UsageError{Usage: usage}
	}
	return &UsageError{Usage: usage, Reason: err.Error()}
}
