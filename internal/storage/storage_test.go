package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/internal/storage"
)

func TestOpen_Memory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend, err := storage.Open(ctx, storage.OpenParams{
		Storage: config.Storage{Backend: config.StorageBackendMemory},
	})
	require.NoError(t, err)
	defer backend.Close()

	ok, err := backend.HealthChecker.IsHealthy(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := backend.Store.Products().CountProducts(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	params := storage.OpenParams{
		Storage: config.Storage{Backend: config.StorageBackendSQLite},
		SQLite:  config.SQLite{Path: path, BusyTimeout: time.Second, MaxConns: 2},
		Migrate: true,
	}

	backend, err := storage.Open(ctx, params)
	require.NoError(t, err)

	ok, err := backend.HealthChecker.IsHealthy(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	backend.Close()

	// Reopening an already migrated file is a no-op.
	backend, err = storage.Open(ctx, params)
	require.NoError(t, err)
	defer backend.Close()

	n, err := backend.Store.Products().CountProducts(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
