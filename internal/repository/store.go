package repository

import (
	"context"

	"github.com/tuanvumaihuynh/bipagem/internal/storage/db"
)

var _ Store = (*postgresStore)(nil)

type postgresStore struct {
	db db.DB
}

// NewPostgresStore returns a Store backed by the given pgx client.
func NewPostgresStore(db db.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Products() ProductRepository {
	return NewProductRepository(s.db)
}

func (s *postgresStore) OutboxMsgs() OutboxMsgRepository {
	return NewOutboxMsgRepository(s.db)
}

func (s *postgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithTx(ctx, func(tx db.DB) error {
		return fn(&postgresStore{db: tx})
	})
}
