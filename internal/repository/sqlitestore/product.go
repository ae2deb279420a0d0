package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/sqlite"
)

const productColumns = `id, name, internal_code, ean, supplier, quantity, store, scanned, scanned_at, location, created_at`

// productFilterClause expects the @search and @scanned named args.
const productFilterClause = `
	(
		@search = ''
		OR instr(casefold(name), casefold(@search)) > 0
		OR instr(casefold(internal_code), casefold(@search)) > 0
		OR instr(casefold(ean), casefold(@search)) > 0
		OR instr(casefold(supplier), casefold(@search)) > 0
	)
	AND (@scanned IS NULL OR scanned = @scanned)`

// markChunkSize keeps IN lists below SQLite's bound parameter limit.
const markChunkSize = 500

type productRepository struct {
	db sqlite.DB
}

func (r productRepository) InsertProducts(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	var inserted int
	err := r.db.WithTx(ctx, func(tx sqlite.DB) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (id, name, internal_code, ean, supplier, quantity, store, scanned, scanned_at, location, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, FALSE, NULL, '', ?)
			ON CONFLICT (internal_code, ean) DO NOTHING;
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range products {
			res, err := stmt.ExecContext(ctx,
				p.ID, p.Name, p.InternalCode, p.EAN, p.Supplier, p.Quantity, p.Store, p.CreatedAt.UTC())
			if err != nil {
				return fmt.Errorf("insert product %s/%s: %w", p.InternalCode, p.EAN, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			inserted += int(n)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

func (r productRepository) DeleteAllProducts(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products;`); err != nil {
		return fmt.Errorf("delete all products: %w", err)
	}
	return nil
}

func (r productRepository) FindProductsByCode(ctx context.Context, params repository.FindProductsByCodeParams) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE (ean = @code OR internal_code = @code)
			AND (@store = '' OR store = @store)
		ORDER BY seq;
	`, sql.Named("code", params.Code), sql.Named("store", params.Store))
	if err != nil {
		return nil, fmt.Errorf("find products by code: %w", err)
	}

	return collectProducts(rows)
}

func (r productRepository) MarkProductsScanned(ctx context.Context, params repository.MarkProductsScannedParams) error {
	if len(params.IDs) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx sqlite.DB) error {
		for ids := range chunk(params.IDs, markChunkSize) {
			args := make([]any, 0, len(ids)+2)
			args = append(args, params.ScannedAt.UTC(), params.Location)
			for _, id := range ids {
				args = append(args, id)
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE products
				SET
					scanned    = TRUE,
					scanned_at = ?,
					location   = ?
				WHERE id IN (`+placeholders(len(ids))+`);
			`, args...); err != nil {
				return fmt.Errorf("mark products scanned: %w", err)
			}
		}
		return nil
	})
}

func (r productRepository) CountProducts(ctx context.Context, filter repository.ProductFilter) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products WHERE `+productFilterClause+`;
	`, filterArgs(filter)...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

func (r productRepository) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	limit := -1
	if params.Limit > 0 {
		limit = params.Limit
	}
	args := append(filterArgs(params.Filter),
		sql.Named("limit", limit),
		sql.Named("offset", max(params.Offset, 0)),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+productFilterClause+`
		ORDER BY seq
		LIMIT @limit OFFSET @offset;
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return collectProducts(rows)
}

func (r productRepository) EachProduct(ctx context.Context, filter repository.ProductFilter, fn func(model.Product) error) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+productFilterClause+`
		ORDER BY seq;
	`, filterArgs(filter)...)
	if err != nil {
		return fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return fmt.Errorf("scan product: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate products: %w", err)
	}

	return nil
}

func filterArgs(filter repository.ProductFilter) []any {
	return []any{
		sql.Named("search", filter.Search),
		sql.Named("scanned", filter.Scanned),
	}
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func scanProduct(rows *sql.Rows) (model.Product, error) {
	var p model.Product
	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.InternalCode,
		&p.EAN,
		&p.Supplier,
		&p.Quantity,
		&p.Store,
		&p.Scanned,
		&p.ScannedAt,
		&p.Location,
		&p.CreatedAt,
	)
	return p, err
}

func chunk(ids []uuid.UUID, size int) func(yield func([]uuid.UUID) bool) {
	return func(yield func([]uuid.UUID) bool) {
		for start := 0; start < len(ids); start += size {
			if !yield(ids[start:min(start+size, len(ids))]) {
				return
			}
		}
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
