package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/event"
	apihttp "github.com/tuanvumaihuynh/bipagem/internal/http"
	"github.com/tuanvumaihuynh/bipagem/internal/log"
	"github.com/tuanvumaihuynh/bipagem/internal/relay"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
	"github.com/tuanvumaihuynh/bipagem/internal/sheetfeed"
	"github.com/tuanvumaihuynh/bipagem/internal/storage"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/mq"
	"github.com/tuanvumaihuynh/bipagem/internal/telemetry"
	"github.com/tuanvumaihuynh/bipagem/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log       config.Log
		Storage   config.Storage
		Postgres  config.Postgres
		SQLite    config.SQLite
		HTTP      config.HTTP
		Catalog   config.Catalog
		Export    config.Export
		SheetFeed config.SheetFeed
		Relay     config.Relay
		Kafka     config.Kafka
		Otel      config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
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
		// memory and sqlite have no separate migrate step to run
		Migrate: cfg.Storage.Backend != config.StorageBackendPostgres,
	})
	if err != nil {
		return fmt.Errorf("error opening storage: %w", err)
	}
	defer backend.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalogService := service.NewCatalogService(backend.Store, cfg.Catalog)

	var (
		feedService *sheetfeed.Service
		feed        apihttp.FeedSyncer
	)
	if cfg.SheetFeed.Enabled() {
		fetcher := sheetfeed.NewFetcher(cfg.SheetFeed, &http.Client{Timeout: cfg.SheetFeed.Timeout})
		feedService = sheetfeed.NewService(cfg.SheetFeed, logger, fetcher, catalogService)
		feed = feedService
	}

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	if cfg.Kafka.Enabled() {
		kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}
		defer kafkaConsumer.Close()

		eventMetrics := event.NewMetrics(registry)

		wg.Go(func() {
			svc := event.New(logger, kafkaConsumer, eventMetrics)
			cleanup, err := svc.Run(ctx)
			if err != nil {
				panic(fmt.Errorf("error running event service: %w", err))
			}
			logger.InfoContext(ctx, "event service started")

			<-interruptChan

			logger.InfoContext(ctx, "event service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "event service is stopped")
		})

		wg.Go(func() {
			svc := relay.NewService(cfg.Relay, logger, backend.Store, kafkaProducer)
			cleanup := svc.Run(ctx)
			logger.InfoContext(ctx, "relay service started")

			<-interruptChan

			logger.InfoContext(ctx, "relay service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "relay service is stopped")
		})
	} else if cfg.Catalog.PublishEvents {
		logger.WarnContext(ctx, "catalog events are written to the outbox but no kafka is configured to relay them")
	}

	if feedService != nil {
		wg.Go(func() {
			cleanup := feedService.Run(ctx)
			logger.InfoContext(ctx, "sheet feed service started",
				slog.Duration("interval", cfg.SheetFeed.Interval))

			<-interruptChan

			logger.InfoContext(ctx, "sheet feed service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "sheet feed service is stopped")
		})
	}

	wg.Go(func() {
		svc, err := apihttp.New(apihttp.Params{
			Config:        cfg.HTTP,
			ExportConfig:  cfg.Export,
			Logger:        logger,
			Registry:      registry,
			CatalogSvc:    catalogService,
			Feed:          feed,
			HealthChecker: backend.HealthChecker,
		})
		if err != nil {
			panic(fmt.Errorf("error creating http service: %w", err))
		}

		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Wait()

	return nil
}
