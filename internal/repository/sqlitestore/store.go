// Package sqlitestore is the file-backed repository.Store used when the
// catalog should survive restarts without a Postgres server.
package sqlitestore

import (
	"context"

	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/sqlite"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	db sqlite.DB
}

func New(db sqlite.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Products() repository.ProductRepository {
	return productRepository{db: s.db}
}

func (s *Store) OutboxMsgs() repository.OutboxMsgRepository {
	return outboxMsgRepository{db: s.db}
}

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.db.WithTx(ctx, func(tx sqlite.DB) error {
		return fn(&Store{db: tx})
	})
}
