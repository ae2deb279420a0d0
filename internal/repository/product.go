package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/db"
)

const productColumns = `id, name, internal_code, ean, supplier, quantity, store, scanned, scanned_at, location, created_at`

// productFilterClause expects the @search and @scanned named args.
const productFilterClause = `
	(
		@search::text = ''
		OR strpos(lower(name), lower(@search::text)) > 0
		OR strpos(lower(internal_code), lower(@search::text)) > 0
		OR strpos(lower(ean), lower(@search::text)) > 0
		OR strpos(lower(supplier), lower(@search::text)) > 0
	)
	AND (@scanned::boolean IS NULL OR scanned = @scanned::boolean)`

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) InsertProducts(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	var (
		ids           = make([]uuid.UUID, 0, len(products))
		names         = make([]string, 0, len(products))
		internalCodes = make([]string, 0, len(products))
		eans          = make([]string, 0, len(products))
		suppliers     = make([]string, 0, len(products))
		quantities    = make([]int32, 0, len(products))
		stores        = make([]string, 0, len(products))
		createdAts    = make([]time.Time, 0, len(products))
	)
	for _, p := range products {
		if p.Quantity > math.MaxInt32 || p.Quantity < math.MinInt32 {
			return 0, fmt.Errorf("quantity of %s/%s out of range: %d", p.InternalCode, p.EAN, p.Quantity)
		}

		ids = append(ids, p.ID)
		names = append(names, p.Name)
		internalCodes = append(internalCodes, p.InternalCode)
		eans = append(eans, p.EAN)
		suppliers = append(suppliers, p.Supplier)
		quantities = append(quantities, int32(p.Quantity))
		stores = append(stores, p.Store)
		createdAts = append(createdAts, p.CreatedAt)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, internal_code, ean, supplier, quantity, store, scanned, scanned_at, location, created_at)
		SELECT t.id, t.name, t.internal_code, t.ean, t.supplier, t.quantity, t.store, FALSE, NULL, '', t.created_at
		FROM UNNEST(
			@ids::uuid[],
			@names::text[],
			@internal_codes::text[],
			@eans::text[],
			@suppliers::text[],
			@quantities::int4[],
			@stores::text[],
			@created_ats::timestamptz[]
		) WITH ORDINALITY AS t(id, name, internal_code, ean, supplier, quantity, store, created_at, ord)
		ORDER BY t.ord
		ON CONFLICT (internal_code, ean) DO NOTHING;
	`, pgx.NamedArgs{
		"ids":            ids,
		"names":          names,
		"internal_codes": internalCodes,
		"eans":           eans,
		"suppliers":      suppliers,
		"quantities":     quantities,
		"stores":         stores,
		"created_ats":    createdAts,
	})
	if err != nil {
		return 0, fmt.Errorf("insert products: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r productRepository) DeleteAllProducts(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products;`); err != nil {
		return fmt.Errorf("delete all products: %w", err)
	}
	return nil
}

func (r productRepository) FindProductsByCode(ctx context.Context, params FindProductsByCodeParams) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE (ean = @code OR internal_code = @code)
			AND (@store::text = '' OR store = @store::text)
		ORDER BY seq
		FOR UPDATE;
	`, pgx.NamedArgs{
		"code":  params.Code,
		"store": params.Store,
	})
	if err != nil {
		return nil, fmt.Errorf("find products by code: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func (r productRepository) MarkProductsScanned(ctx context.Context, params MarkProductsScannedParams) error {
	if len(params.IDs) == 0 {
		return nil
	}

	if _, err := r.db.Exec(ctx, `
		UPDATE products
		SET
			scanned    = TRUE,
			scanned_at = @scanned_at,
			location   = @location
		WHERE id = ANY(@ids::uuid[]);
	`, pgx.NamedArgs{
		"ids":        params.IDs,
		"scanned_at": params.ScannedAt,
		"location":   params.Location,
	}); err != nil {
		return fmt.Errorf("mark products scanned: %w", err)
	}

	return nil
}

func (r productRepository) CountProducts(ctx context.Context, filter ProductFilter) (int, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM products WHERE `+productFilterClause+`;
	`, filterArgs(filter)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return int(count), nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	args := filterArgs(params.Filter)
	args["offset"] = int64(max(params.Offset, 0))
	args["limit"] = nil
	if params.Limit > 0 {
		args["limit"] = int64(params.Limit)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+productFilterClause+`
		ORDER BY seq
		OFFSET @offset
		LIMIT @limit;
	`, args)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func (r productRepository) EachProduct(ctx context.Context, filter ProductFilter, fn func(model.Product) error) error {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+productFilterClause+`
		ORDER BY seq;
	`, filterArgs(filter))
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

func filterArgs(filter ProductFilter) pgx.NamedArgs {
	return pgx.NamedArgs{
		"search":  filter.Search,
		"scanned": filter.Scanned,
	}
}

func scanProduct(row pgx.CollectableRow) (model.Product, error) {
	var (
		p        model.Product
		quantity int32
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.InternalCode,
		&p.EAN,
		&p.Supplier,
		&quantity,
		&p.Store,
		&p.Scanned,
		&p.ScannedAt,
		&p.Location,
		&p.CreatedAt,
	); err != nil {
		return model.Product{}, err
	}
	p.Quantity = int(quantity)

	return p, nil
}
