package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agenda/internal/config"
	"agenda/internal/logger"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type DB struct {
	Bun    *bun.DB
	Logger *logger.Logger
}

// Open connects to the agenda store described by cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Discard()
	}

	switch cfg.Driver {
	case config.DriverSQLite, "":
		return openSQLite(ctx, cfg, log)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %s: %w", cfg.DSN, err)
	}
	// A single connection keeps :memory: databases alive and the
	// foreign_keys pragma in effect for every statement.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := bunDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		bunDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	log.Debug("DATABASE", fmt.Sprintf("SQLite store opened at %s", cfg.DSN))
	return &DB{Bun: bunDB, Logger: log}, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var sqldb *sql.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.PingContext(ctx)
			if err == nil {
				break
			}
			sqldb.Close()
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", maxRetries, err)
	}

	log.Info("DATABASE", "PostgreSQL connection successful")
	return &DB{Bun: bun.NewDB(sqldb, pgdialect.New()), Logger: log}, nil
}

func (d *DB) Close() error {
	return d.Bun.Close()
}
