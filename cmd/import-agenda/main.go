// Command import-agenda loads an agenda spreadsheet into the agenda store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agenda/internal/agenda/importer"
	"agenda/internal/cache"
	"agenda/internal/cli"
	"agenda/internal/config"
	"agenda/internal/kafka"
	"agenda/internal/logger"
	"agenda/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	_ = godotenv.Load()
	cfg := config.Load()

	parsed, err := cli.ParseImport(cfg, args, os.Stderr)
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(os.Stderr, usageErr.Error())
			return 2
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logger.NewLogger(logger.Options{Name: "import-agenda", Dir: cfg.Log.Dir, Level: cfg.Log.Level})
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("DATABASE", err.Error())
		return 1
	}
	defer db.Close()

	if parsed.Reset {
		log.Info("MIGRATION", "Resetting agenda relations")
	}
	rels, err := db.Migrate(ctx, parsed.Reset)
	if err != nil {
		log.Error("MIGRATION", err.Error())
		return 1
	}

	im := importer.NewImporter(rels, log)
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, []string{cfg.Kafka.TopicImported}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicImported, log)
		defer producer.Close()
		im.Notifier = producer
	}

	report, err := im.ImportFile(ctx, parsed.Source, cfg.Import.HeaderRows)
	if err != nil {
		var conflict *store.ConstraintViolation
		if errors.As(err, &conflict) && !parsed.Reset {
			log.Error("IMPORT", fmt.Sprintf("%v (the store already holds an agenda, rerun with -reset to replace it)", err))
		} else {
			log.Error("IMPORT", err.Error())
		}
		return 1
	}

	if cfg.Redis.Enabled {
		purgeLookupCache(ctx, cfg.Redis, log)
	}

	log.Info("IMPORT", fmt.Sprintf("Imported %d events from %s", report.Events, parsed.Source))
	return 0
}

// purgeLookupCache drops cached lookups so the service serves the new agenda.
func purgeLookupCache(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) {
	client, err := cache.Connect(ctx, cfg.Addr)
	if err != nil {
		log.Warn("REDIS", fmt.Sprintf("Skipping lookup cache purge: %v", err))
		return
	}
	defer client.Close()

	if _, err := cache.NewRedis(client, cfg.CacheTTL, log).Purge(ctx); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Lookup cache purge failed: %v", err))
	}
}
