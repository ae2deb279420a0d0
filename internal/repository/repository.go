package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
)

// Store is the catalog unit of work. Repositories obtained from the Store
// handed to WithTx's fn share one transaction: everything fn writes commits
// when it returns nil and rolls back otherwise.
type Store interface {
	Products() ProductRepository
	OutboxMsgs() OutboxMsgRepository

	// WithTx executes a function in a new transaction. Called on a Store that
	// is already transactional it reuses the running transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type ProductFilter struct {
	// Search is matched case-insensitively as a substring of name,
	// internal code, EAN and supplier.
	Search string
	// Scanned restricts to scanned or unscanned rows when non-nil.
	Scanned *bool
}

type ListProductsParams struct {
	Filter ProductFilter
	Offset int
	// Limit of zero means no limit.
	Limit int
}

type FindProductsByCodeParams struct {
	Code string
	// Store restricts matches to one store when non-empty.
	Store string
}

type MarkProductsScannedParams struct {
	IDs       []uuid.UUID
	ScannedAt time.Time
	Location  string
}

// ProductRepository is the catalog table. Every listing is in insertion order.
type ProductRepository interface {
	// InsertProducts inserts the products whose (internal_code, ean) identity
	// is not stored yet and returns how many were inserted. Scan state is
	// always reset on insert.
	InsertProducts(ctx context.Context, products []model.Product) (int, error)
	DeleteAllProducts(ctx context.Context) error
	// FindProductsByCode returns rows whose EAN or internal code equals the code.
	FindProductsByCode(ctx context.Context, params FindProductsByCodeParams) ([]model.Product, error)
	MarkProductsScanned(ctx context.Context, params MarkProductsScannedParams) error
	CountProducts(ctx context.Context, filter ProductFilter) (int, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	// EachProduct streams matching rows to fn, stopping at fn's first error.
	EachProduct(ctx context.Context, filter ProductFilter, fn func(model.Product) error) error
}

type CreateOutboxMsgParams struct {
	Topic        string
	Headers      map[string]string
	Payload      json.RawMessage
	PartitionKey *string
}

type ListUnprocessedOutboxMsgsParams struct {
	BatchSize int32
}

type ListUnprocessedOutboxMsgsResult struct {
	ID           uuid.UUID
	Topic        string
	Headers      map[string]string
	Payload      json.RawMessage
	PartitionKey *string
}

type BulkUpdateOutboxMsgsItem struct {
	ID    uuid.UUID
	Error *string
}

type BulkUpdateOutboxMsgsParams struct {
	Items []BulkUpdateOutboxMsgsItem
}

type OutboxMsgRepository interface {
	CreateOutboxMsg(ctx context.Context, params CreateOutboxMsgParams) error
	ListUnprocessedOutboxMsgs(ctx context.Context, params ListUnprocessedOutboxMsgsParams) ([]ListUnprocessedOutboxMsgsResult, error)
	BulkUpdateOutboxMsgs(ctx context.Context, params BulkUpdateOutboxMsgsParams) error
}
