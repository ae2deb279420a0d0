package sheetfeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
)

type Service struct {
	cfg        config.SheetFeed
	logger     *slog.Logger
	fetcher    *Fetcher
	catalogSvc service.CatalogService

	stopChan chan struct{}
}

func NewService(
	cfg config.SheetFeed,
	logger *slog.Logger,
	fetcher *Fetcher,
	catalogSvc service.CatalogService,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "sheetfeed")),
		fetcher:    fetcher,
		catalogSvc: catalogSvc,
		stopChan:   make(chan struct{}),
	}
}

// Sync fetches the feed and loads it into the catalog.
func (s *Service) Sync(ctx context.Context) (service.LoadCatalogResult, error) {
	table, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return service.LoadCatalogResult{}, fmt.Errorf("fetch sheet feed: %w", err)
	}

	res, err := s.catalogSvc.LoadCatalog(ctx, service.LoadCatalogParams{
		Table: table,
		Store: s.cfg.Store,
		Mode:  s.cfg.Mode,
	})
	if err != nil {
		return service.LoadCatalogResult{}, fmt.Errorf("catalog service load catalog: %w", err)
	}

	s.logger.InfoContext(ctx, "sheet feed synced",
		slog.Int("received", res.Received),
		slog.Int("inserted", res.Inserted),
		slog.Int("total", res.Total),
	)

	return res, nil
}

type CleanupFunc func()

// Run syncs every cfg.Interval until the cleanup func is called. With a zero
// interval it does nothing.
func (s *Service) Run(ctx context.Context) CleanupFunc {
	if s.cfg.Interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
		}
		cancel()
	}
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error syncing sheet feed", slog.Any("error", err))
			}
		}
	}
}
