package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/log"
	"github.com/tuanvumaihuynh/bipagem/internal/relay"
	"github.com/tuanvumaihuynh/bipagem/internal/storage"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/mq"
	"github.com/tuanvumaihuynh/bipagem/internal/telemetry"
	"github.com/tuanvumaihuynh/bipagem/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running relay application: %v\n", err)
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
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// the outbox must be shared with the process writing it
	if cfg.Storage.Backend == config.StorageBackendMemory {
		return fmt.Errorf("relay needs a persistent storage backend, got %s", cfg.Storage.Backend)
	}
	if !cfg.Kafka.Enabled() {
		return fmt.Errorf("relay needs KAFKA_ADDRESSES")
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	backend, err := storage.Open(ctx, storage.OpenParams{
		Storage:  cfg.Storage,
		Postgres: cfg.Postgres,
		SQLite:   cfg.SQLite,
	})
	if err != nil {
		return fmt.Errorf("error opening storage: %w", err)
	}
	defer backend.Close()

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	interruptChan := cmdutil.InterruptChan()

	svc := relay.NewService(cfg.Relay, logger, backend.Store, kafkaProducer)
	cleanup := svc.Run(ctx)
	logger.InfoContext(ctx, "relay service started")

	<-interruptChan

	logger.InfoContext(ctx, "relay service is shutting down")
	cleanup()

	logger.InfoContext(ctx, "relay service is stopped")

	return nil
}
