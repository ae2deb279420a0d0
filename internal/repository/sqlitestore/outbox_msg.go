package sqlitestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/sqlite"
)

type outboxMsgRepository struct {
	db sqlite.DB
}

func (r outboxMsgRepository) CreateOutboxMsg(ctx context.Context, params repository.CreateOutboxMsgParams) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	headersBytes, err := json.Marshal(params.Headers)
	if err != nil {
		return fmt.Errorf("marshal headers: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO outbox_messages (id, topic, headers, payload, partition_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?);
	`, id, params.Topic, string(headersBytes), string(params.Payload), params.PartitionKey, time.Now().UTC()); err != nil {
		return fmt.Errorf("outbox msg create: %w", err)
	}

	return nil
}

func (r outboxMsgRepository) ListUnprocessedOutboxMsgs(ctx context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, topic, headers, payload, partition_key
		FROM outbox_messages
		WHERE processed_at IS NULL
		ORDER BY created_at, id
		LIMIT ?;
	`, params.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("outbox msg list unprocessed: %w", err)
	}
	defer rows.Close()

	var results []repository.ListUnprocessedOutboxMsgsResult
	for rows.Next() {
		var (
			res     repository.ListUnprocessedOutboxMsgsResult
			headers string
			payload string
		)
		if err := rows.Scan(&res.ID, &res.Topic, &headers, &payload, &res.PartitionKey); err != nil {
			return nil, fmt.Errorf("scan outbox msg: %w", err)
		}

		res.Headers = map[string]string{}
		if err := json.Unmarshal([]byte(headers), &res.Headers); err != nil {
			return nil, fmt.Errorf("unmarshal headers: %w", err)
		}
		res.Payload = json.RawMessage(payload)

		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect outbox msgs: %w", err)
	}

	return results, nil
}

func (r outboxMsgRepository) BulkUpdateOutboxMsgs(ctx context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	if len(params.Items) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx sqlite.DB) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE outbox_messages
			SET
				processed_at = ?,
				error        = ?
			WHERE id = ?;
		`)
		if err != nil {
			return fmt.Errorf("prepare outbox update: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, item := range params.Items {
			if _, err := stmt.ExecContext(ctx, now, item.Error, item.ID); err != nil {
				return fmt.Errorf("outbox msg bulk update: %w", err)
			}
		}
		return nil
	})
}
