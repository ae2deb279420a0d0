package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleCatalogLoadedEvent(ctx context.Context, ev CatalogLoadedEvent) error {
	s.logger.InfoContext(ctx, "catalog loaded",
		slog.String("store", ev.Store),
		slog.String("mode", ev.Mode),
		slog.Int("inserted", ev.Inserted),
		slog.Int("total", ev.Total),
	)
	s.metrics.CatalogLoads.WithLabelValues(ev.Store, ev.Mode).Inc()
	return nil
}

func (s *Service) handleProductScannedEvent(ctx context.Context, ev ProductScannedEvent) error {
	s.logger.InfoContext(ctx, "product scanned",
		slog.String("product_id", ev.ProductID.String()),
		slog.String("store", ev.Store),
		slog.String("location", ev.Location),
		slog.String("source", string(ev.Source)),
	)
	s.metrics.ProductsScanned.WithLabelValues(ev.Store, string(ev.Source)).Inc()
	return nil
}
