// Package storage opens the configured catalog backend.
package storage

import (
	"context"
	"fmt"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/internal/repository/memstore"
	"github.com/tuanvumaihuynh/bipagem/internal/repository/sqlitestore"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/db"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/sqlite"
)

type OpenParams struct {
	Storage  config.Storage
	Postgres config.Postgres
	SQLite   config.SQLite
	// Migrate applies pending schema migrations once the backend is open.
	Migrate bool
}

type Backend struct {
	Store         repository.Store
	HealthChecker db.HealthChecker
	Close         func()
}

// Open connects to the backend selected by params.Storage.
func Open(ctx context.Context, params OpenParams) (*Backend, error) {
	switch params.Storage.Backend {
	case config.StorageBackendPostgres:
		pool, err := db.NewPgxPool(ctx, params.Postgres)
		if err != nil {
			return nil, fmt.Errorf("create pgx pool: %w", err)
		}
		if params.Migrate {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		client := db.NewClient(pool)
		return &Backend{
			Store:         repository.NewPostgresStore(client),
			HealthChecker: client,
			Close:         pool.Close,
		}, nil

	case config.StorageBackendSQLite:
		client, err := sqlite.Open(ctx, params.SQLite)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if params.Migrate {
			if err := sqlite.Migrate(ctx, client); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("migrate sqlite: %w", err)
			}
		}
		return &Backend{
			Store:         sqlitestore.New(client),
			HealthChecker: client,
			Close:         func() { _ = client.Close() },
		}, nil

	case config.StorageBackendMemory:
		return &Backend{
			Store:         memstore.New(),
			HealthChecker: alwaysHealthy{},
			Close:         func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", params.Storage.Backend)
	}
}

type alwaysHealthy struct{}

func (alwaysHealthy) IsHealthy(context.Context) (bool, error) {
	return true, nil
}
