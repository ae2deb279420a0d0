package memstore_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/internal/repository/memstore"
	"github.com/tuanvumaihuynh/bipagem/internal/repository/repositorytest"
)

func TestStore(t *testing.T) {
	t.Parallel()
	repositorytest.Run(t, func(*testing.T) repository.Store {
		return memstore.New()
	})
}

func TestStore_ConcurrentScans(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.New()

	products := make([]model.Product, 0, 50)
	for i := range 50 {
		products = append(products, repositorytest.Product(t, "Produto", strconv.Itoa(1000+i), "", "Loja 1"))
	}
	_, err := s.Products().InsertProducts(ctx, products)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, p := range products {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(tx repository.Store) error {
				found, err := tx.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{Code: p.InternalCode})
				if err != nil {
					return err
				}
				return tx.Products().MarkProductsScanned(ctx, repository.MarkProductsScannedParams{
					IDs:       []uuid.UUID{found[0].ID},
					ScannedAt: time.Now(),
				})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	scanned := true
	n, err := s.Products().CountProducts(ctx, repository.ProductFilter{Scanned: &scanned})
	require.NoError(t, err)
	assert.Equal(t, len(products), n)
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := memstore.New()
	_, err := s.Products().InsertProducts(ctx, []model.Product{repositorytest.Product(t, "Arroz", "100", "", "Loja 1")})
	require.ErrorIs(t, err, context.Canceled)

	err = s.WithTx(ctx, func(repository.Store) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
