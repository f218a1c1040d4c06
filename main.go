package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agenda/internal/agenda/lookup"
	"agenda/internal/agenda/lookup_api"
	"agenda/internal/cache"
	"agenda/internal/config"
	"agenda/internal/logger"
	"agenda/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	logger := logger.NewLogger(logger.Options{Name: "agenda-service", Dir: cfg.Log.Dir, Level: cfg.Log.Level})
	defer logger.Close()

	logger.Info("APP", "Starting Agenda Service initialization")
	if envErr != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	ctx := context.Background()

	db, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to open store: %v", err))
	}
	defer db.Close()

	rels, err := db.Verify(ctx)
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Agenda store is not ready, run import-agenda first: %v", err))
	}

	engine := lookup.NewEngine(rels, logger)

	if cfg.Redis.Enabled {
		redisClient, err := cache.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Warn("REDIS", fmt.Sprintf("Lookup cache disabled: %v", err))
		} else {
			defer redisClient.Close()
			engine.Cache = cache.NewRedis(redisClient, cfg.Redis.CacheTTL, logger)
			logger.Info("REDIS", fmt.Sprintf("Lookup cache enabled on %s (ttl %s)", cfg.Redis.Addr, cfg.Redis.CacheTTL))
		}
	}

	handler := lookup_api.NewHandler(engine, logger)
	handler.Ping = db.Bun.PingContext

	logger.Info("HTTP", "Setting up router")
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	logger.Info("ROUTER", "Agenda routes registered under /api/agenda")

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("Agenda Service running on %s", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "Agenda Service shutdown complete")
	}
}
