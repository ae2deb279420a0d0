package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/log"
	"github.com/tuanvumaihuynh/bipagem/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Storage  config.Storage
		Postgres config.Postgres
		SQLite   config.SQLite
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	if cfg.Storage.Backend == config.StorageBackendMemory {
		logger.InfoContext(ctx, "memory storage has no schema, nothing to migrate")
		return nil
	}

	logger.InfoContext(ctx, "starting database migration", slog.String("backend", cfg.Storage.Backend.String()))

	backend, err := storage.Open(ctx, storage.OpenParams{
		Storage:  cfg.Storage,
		Postgres: cfg.Postgres,
		SQLite:   cfg.SQLite,
		Migrate:  true,
	})
	if err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	defer backend.Close()

	logger.InfoContext(ctx, "database migration completed successfully")

	return nil
}
