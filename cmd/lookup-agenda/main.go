// Command lookup-agenda prints agenda events matching a column value.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"agenda/internal/agenda/lookup"
	"agenda/internal/cli"
	"agenda/internal/config"
	"agenda/internal/logger"
	"agenda/internal/render"
	"agenda/internal/store"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	_ = godotenv.Load()
	cfg := config.Load()

	parsed, err := cli.ParseLookup(cfg, args, os.Stderr)
	if err != nil {
		return usage(err)
	}

	log := logger.NewLogger(logger.Options{Name: "lookup-agenda", Dir: cfg.Log.Dir, Level: cfg.Log.Level})
	defer log.Close()

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("DATABASE", err.Error())
		return 1
	}
	defer db.Close()

	rels, err := db.Verify(ctx)
	if err != nil {
		log.Error("DATABASE", fmt.Sprintf("%v (run import-agenda first)", err))
		return 1
	}

	result, err := lookup.NewEngine(rels, log).Lookup(ctx, parsed.Column, parsed.Value)
	if errors.Is(err, lookup.ErrUnknownColumn) {
		return usage(&cli.UsageError{Usage: cli.LookupUsage, Reason: err.Error()})
	}
	if err != nil {
		log.Error("LOOKUP", err.Error())
		return 1
	}

	if !result.Found() {
		color.New(color.FgYellow).Fprintln(stdout, result.Message)
		return 0
	}
	render.Table(stdout, result.Columns, result.Rows, result.Widths)
	return 0
}

func usage(err error) int {
	fmt.Fprintln(os.Stderr, err.Error())
	var usageErr *cli.UsageError
	if errors.As(err, &usageErr) {
		return 2
	}
	return 1
}
