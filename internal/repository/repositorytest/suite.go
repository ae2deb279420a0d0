// Package repositorytest holds behaviour checks every repository.Store
// backend must pass.
package repositorytest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/pkg/ptr"
)

// NewStoreFunc returns an empty store owned by the test.
type NewStoreFunc func(t *testing.T) repository.Store

// Product builds an unscanned product with a fresh id.
func Product(t *testing.T, name, internalCode, ean, store string) model.Product {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return model.Product{
		ID:           id,
		Name:         name,
		InternalCode: internalCode,
		EAN:          ean,
		Supplier:     "Fornecedor " + name,
		Quantity:     1,
		Store:        store,
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Run exercises the product and outbox repositories of a backend.
func Run(t *testing.T, newStore NewStoreFunc) {
	t.Run("insert skips known identities", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		n, err := s.Products().InsertProducts(ctx, []model.Product{
			Product(t, "Arroz", "100", "789100", "Loja 1"),
			Product(t, "Feijao", "200", "789200", "Loja 1"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.Products().InsertProducts(ctx, []model.Product{
			Product(t, "Arroz de novo", "100", "789100", "Loja 2"),
			Product(t, "Acucar", "300", "", "Loja 2"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		total, err := s.Products().CountProducts(ctx, repository.ProductFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)

		list, err := s.Products().ListProducts(ctx, repository.ListProductsParams{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Arroz", list[0].Name)
		assert.Equal(t, "Feijao", list[1].Name)
		assert.Equal(t, "Acucar", list[2].Name)
	})

	t.Run("insert resets scan state", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		p := Product(t, "Arroz", "100", "789100", "Loja 1")
		p.Scanned = true
		p.ScannedAt = ptr.New(time.Now())
		p.Location = "A1"
		_, err := s.Products().InsertProducts(ctx, []model.Product{p})
		require.NoError(t, err)

		list, err := s.Products().ListProducts(ctx, repository.ListProductsParams{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.False(t, list[0].Scanned)
		assert.Nil(t, list[0].ScannedAt)
		assert.Empty(t, list[0].Location)
		assert.Equal(t, p.ID, list[0].ID)
		assert.Equal(t, p.Supplier, list[0].Supplier)
		assert.Equal(t, p.Quantity, list[0].Quantity)
		assert.True(t, p.CreatedAt.Equal(list[0].CreatedAt))
	})

	t.Run("delete all", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Products().InsertProducts(ctx, []model.Product{Product(t, "Arroz", "100", "789100", "Loja 1")})
		require.NoError(t, err)
		require.NoError(t, s.Products().DeleteAllProducts(ctx))

		total, err := s.Products().CountProducts(ctx, repository.ProductFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)

		n, err := s.Products().InsertProducts(ctx, []model.Product{Product(t, "Arroz", "100", "789100", "Loja 1")})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("find by code matches ean or internal code", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Products().InsertProducts(ctx, []model.Product{
			Product(t, "Arroz", "100", "789100", "Loja 1"),
			Product(t, "Arroz", "100", "789101", "Loja 2"),
			Product(t, "Feijao", "789100", "", "Loja 3"),
		})
		require.NoError(t, err)

		found, err := s.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{Code: "789100"})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Loja 1", found[0].Store)
		assert.Equal(t, "Loja 3", found[1].Store)

		found, err = s.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{Code: "100"})
		require.NoError(t, err)
		assert.Len(t, found, 2)

		found, err = s.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{Code: "100", Store: "Loja 2"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "789101", found[0].EAN)

		found, err = s.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{Code: "999"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("mark scanned and filter", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		a := Product(t, "Arroz", "100", "789100", "Loja 1")
		b := Product(t, "Feijao", "200", "789200", "Loja 1")
		c := Product(t, "Acucar", "300", "789300", "Loja 1")
		_, err := s.Products().InsertProducts(ctx, []model.Product{a, b, c})
		require.NoError(t, err)

		at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
		require.NoError(t, s.Products().MarkProductsScanned(ctx, repository.MarkProductsScannedParams{
			IDs:       []uuid.UUID{a.ID, c.ID},
			ScannedAt: at,
			Location:  "Corredor 3",
		}))

		scanned, err := s.Products().ListProducts(ctx, repository.ListProductsParams{
			Filter: repository.ProductFilter{Scanned: ptr.New(true)},
		})
		require.NoError(t, err)
		require.Len(t, scanned, 2)
		assert.Equal(t, a.ID, scanned[0].ID)
		assert.Equal(t, c.ID, scanned[1].ID)
		for _, p := range scanned {
			assert.True(t, p.Scanned)
			require.NotNil(t, p.ScannedAt)
			assert.True(t, at.Equal(*p.ScannedAt))
			assert.Equal(t, "Corredor 3", p.Location)
		}

		unscanned, err := s.Products().CountProducts(ctx, repository.ProductFilter{Scanned: ptr.New(false)})
		require.NoError(t, err)
		assert.Equal(t, 1, unscanned)

		// Re-marking moves the timestamp and location forward.
		later := at.Add(time.Hour)
		require.NoError(t, s.Products().MarkProductsScanned(ctx, repository.MarkProductsScannedParams{
			IDs:       []uuid.UUID{a.ID},
			ScannedAt: later,
			Location:  "Deposito",
		}))
		found, err := s.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{Code: "100"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.True(t, later.Equal(*found[0].ScannedAt))
		assert.Equal(t, "Deposito", found[0].Location)
	})

	t.Run("search and paging", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Products().InsertProducts(ctx, []model.Product{
			Product(t, "Arroz Branco", "100", "789100", "Loja 1"),
			Product(t, "Feijao", "200", "789200", "Loja 1"),
			Product(t, "Arroz Integral", "300", "789300", "Loja 1"),
			Product(t, "Macarrao", "400", "789400", "Loja 1"),
		})
		require.NoError(t, err)

		n, err := s.Products().CountProducts(ctx, repository.ProductFilter{Search: "ARROZ"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.Products().CountProducts(ctx, repository.ProductFilter{Search: "7892"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = s.Products().CountProducts(ctx, repository.ProductFilter{Search: "fornecedor feijao"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		page, err := s.Products().ListProducts(ctx, repository.ListProductsParams{Offset: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "Feijao", page[0].Name)
		assert.Equal(t, "Arroz Integral", page[1].Name)

		page, err = s.Products().ListProducts(ctx, repository.ListProductsParams{Offset: 10, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("each product streams in order", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Products().InsertProducts(ctx, []model.Product{
			Product(t, "Arroz", "100", "789100", "Loja 1"),
			Product(t, "Feijao", "200", "789200", "Loja 1"),
		})
		require.NoError(t, err)

		var names []string
		require.NoError(t, s.Products().EachProduct(ctx, repository.ProductFilter{}, func(p model.Product) error {
			names = append(names, p.Name)
			return nil
		}))
		assert.Equal(t, []string{"Arroz", "Feijao"}, names)

		errStop := errors.New("stop")
		var visited int
		err = s.Products().EachProduct(ctx, repository.ProductFilter{}, func(model.Product) error {
			visited++
			return errStop
		})
		require.ErrorIs(t, err, errStop)
		assert.Equal(t, 1, visited)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Products().InsertProducts(ctx, []model.Product{Product(t, "Arroz", "100", "789100", "Loja 1")})
		require.NoError(t, err)

		errAbort := errors.New("abort")
		err = s.WithTx(ctx, func(tx repository.Store) error {
			if err := tx.Products().DeleteAllProducts(ctx); err != nil {
				return err
			}
			if _, err := tx.Products().InsertProducts(ctx, []model.Product{Product(t, "Feijao", "200", "789200", "Loja 1")}); err != nil {
				return err
			}
			return errAbort
		})
		require.ErrorIs(t, err, errAbort)

		list, err := s.Products().ListProducts(ctx, repository.ListProductsParams{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Arroz", list[0].Name)
	})

	t.Run("transaction commits and nests", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		err := s.WithTx(ctx, func(tx repository.Store) error {
			if _, err := tx.Products().InsertProducts(ctx, []model.Product{Product(t, "Arroz", "100", "789100", "Loja 1")}); err != nil {
				return err
			}
			return tx.WithTx(ctx, func(inner repository.Store) error {
				n, err := inner.Products().CountProducts(ctx, repository.ProductFilter{})
				if err != nil {
					return err
				}
				if n != 1 {
					return errors.New("nested transaction does not see outer writes")
				}
				return inner.OutboxMsgs().CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
					Topic:   "catalog.loaded",
					Payload: json.RawMessage(`{}`),
				})
			})
		})
		require.NoError(t, err)

		n, err := s.Products().CountProducts(ctx, repository.ProductFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		msgs, err := s.OutboxMsgs().ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
		require.NoError(t, err)
		assert.Len(t, msgs, 1)
	})

	t.Run("outbox lifecycle", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		for _, topic := range []string{"catalog.loaded", "product.scanned", "product.scanned"} {
			require.NoError(t, s.OutboxMsgs().CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        topic,
				Headers:      map[string]string{"traceparent": "00-abc"},
				Payload:      json.RawMessage(`{"store":"Loja 1"}`),
				PartitionKey: ptr.New("Loja 1"),
			}))
		}

		msgs, err := s.OutboxMsgs().ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 2})
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "catalog.loaded", msgs[0].Topic)
		assert.Equal(t, map[string]string{"traceparent": "00-abc"}, msgs[0].Headers)
		assert.JSONEq(t, `{"store":"Loja 1"}`, string(msgs[0].Payload))
		require.NotNil(t, msgs[0].PartitionKey)
		assert.Equal(t, "Loja 1", *msgs[0].PartitionKey)

		require.NoError(t, s.OutboxMsgs().BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
			Items: []repository.BulkUpdateOutboxMsgsItem{
				{ID: msgs[0].ID},
				{ID: msgs[1].ID, Error: ptr.New("broker down")},
			},
		}))

		rest, err := s.OutboxMsgs().ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, "product.scanned", rest[0].Topic)
	})
}
