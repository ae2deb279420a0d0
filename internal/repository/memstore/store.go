// Package memstore is a process-local repository.Store. It serves tests and
// single-operator deployments that do not need the catalog to outlive the
// process.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/bipagem/internal/catalog"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type outboxMsg struct {
	id           uuid.UUID
	topic        string
	headers      map[string]string
	payload      json.RawMessage
	partitionKey *string
	createdAt    time.Time
	processedAt  *time.Time
	err          *string
}

type state struct {
	products []model.Product
	index    map[model.Identity]int
	outbox   []outboxMsg
}

func newState() *state {
	return &state{index: map[model.Identity]int{}}
}

func (s *state) clone() *state {
	return &state{
		products: slices.Clone(s.products),
		index:    maps.Clone(s.index),
		outbox:   slices.Clone(s.outbox),
	}
}

// Store keeps the catalog and the outbox in memory.
//
// Every call on the root Store runs under the store lock. WithTx holds the
// write lock for the whole of fn and works on a copy that replaces the live
// state only when fn succeeds.
type Store struct {
	mu   *sync.RWMutex
	root **state
	tx   *state
	inTx bool
}

// New returns an empty Store.
func New() *Store {
	st := newState()
	return &Store{
		mu:   &sync.RWMutex{},
		root: &st,
	}
}

func (s *Store) Products() repository.ProductRepository {
	return productRepository{s: s}
}

func (s *Store) OutboxMsgs() repository.OutboxMsgRepository {
	return outboxMsgRepository{s: s}
}

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txStore := &Store{
		mu:   s.mu,
		root: s.root,
		tx:   (*s.root).clone(),
		inTx: true,
	}
	if err := fn(txStore); err != nil {
		return err
	}
	*s.root = txStore.tx

	return nil
}

func (s *Store) read(fn func(*state) error) error {
	if s.inTx {
		return fn(s.tx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(*s.root)
}

func (s *Store) write(fn func(*state) error) error {
	if s.inTx {
		return fn(s.tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := (*s.root).clone()
	if err := fn(next); err != nil {
		return err
	}
	*s.root = next

	return nil
}

type productRepository struct {
	s *Store
}

func (r productRepository) InsertProducts(ctx context.Context, products []model.Product) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var inserted int
	err := r.s.write(func(st *state) error {
		for _, p := range products {
			if _, ok := st.index[p.Identity()]; ok {
				continue
			}
			p.Scanned = false
			p.ScannedAt = nil
			p.Location = ""
			st.index[p.Identity()] = len(st.products)
			st.products = append(st.products, p)
			inserted++
		}
		return nil
	})

	return inserted, err
}

func (r productRepository) DeleteAllProducts(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.write(func(st *state) error {
		st.products = nil
		st.index = map[model.Identity]int{}
		return nil
	})
}

func (r productRepository) FindProductsByCode(ctx context.Context, params repository.FindProductsByCodeParams) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []model.Product
	err := r.s.read(func(st *state) error {
		for _, p := range st.products {
			if !p.MatchesCode(params.Code) {
				continue
			}
			if params.Store != "" && p.Store != params.Store {
				continue
			}
			found = append(found, p)
		}
		return nil
	})

	return found, err
}

func (r productRepository) MarkProductsScanned(ctx context.Context, params repository.MarkProductsScannedParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(params.IDs) == 0 {
		return nil
	}

	ids := make(map[uuid.UUID]struct{}, len(params.IDs))
	for _, id := range params.IDs {
		ids[id] = struct{}{}
	}

	return r.s.write(func(st *state) error {
		for i := range st.products {
			if _, ok := ids[st.products[i].ID]; !ok {
				continue
			}
			scannedAt := params.ScannedAt
			st.products[i].Scanned = true
			st.products[i].ScannedAt = &scannedAt
			st.products[i].Location = params.Location
		}
		return nil
	})
}

func (r productRepository) CountProducts(ctx context.Context, filter repository.ProductFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := r.s.read(func(st *state) error {
		for _, p := range st.products {
			if matches(p, filter) {
				count++
			}
		}
		return nil
	})

	return count, err
}

func (r productRepository) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products := []model.Product{}
	err := r.s.read(func(st *state) error {
		skip := max(params.Offset, 0)
		for _, p := range st.products {
			if !matches(p, params.Filter) {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			products = append(products, p)
			if params.Limit > 0 && len(products) == params.Limit {
				break
			}
		}
		return nil
	})

	return products, err
}

// EachProduct iterates over a snapshot taken under the read lock, so fn may
// block on slow writers without stalling the store.
func (r productRepository) EachProduct(ctx context.Context, filter repository.ProductFilter, fn func(model.Product) error) error {
	var snapshot []model.Product
	if err := r.s.read(func(st *state) error {
		snapshot = slices.Clone(st.products)
		return nil
	}); err != nil {
		return err
	}

	for _, p := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !matches(p, filter) {
			continue
		}
		if err := fn(p); err != nil {
			return err
		}
	}

	return nil
}

func matches(p model.Product, filter repository.ProductFilter) bool {
	if filter.Scanned != nil && p.Scanned != *filter.Scanned {
		return false
	}
	return catalog.MatchesSearch(p, filter.Search)
}

type outboxMsgRepository struct {
	s *Store
}

func (r outboxMsgRepository) CreateOutboxMsg(ctx context.Context, params repository.CreateOutboxMsgParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	return r.s.write(func(st *state) error {
		st.outbox = append(st.outbox, outboxMsg{
			id:           id,
			topic:        params.Topic,
			headers:      maps.Clone(params.Headers),
			payload:      slices.Clone(params.Payload),
			partitionKey: params.PartitionKey,
			createdAt:    time.Now(),
		})
		return nil
	})
}

func (r outboxMsgRepository) ListUnprocessedOutboxMsgs(ctx context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []repository.ListUnprocessedOutboxMsgsResult
	err := r.s.read(func(st *state) error {
		for _, msg := range st.outbox {
			if msg.processedAt != nil {
				continue
			}
			if params.BatchSize > 0 && len(results) == int(params.BatchSize) {
				break
			}
			headers := maps.Clone(msg.headers)
			if headers == nil {
				headers = map[string]string{}
			}
			results = append(results, repository.ListUnprocessedOutboxMsgsResult{
				ID:           msg.id,
				Topic:        msg.topic,
				Headers:      headers,
				Payload:      slices.Clone(msg.payload),
				PartitionKey: msg.partitionKey,
			})
		}
		return nil
	})

	return results, err
}

func (r outboxMsgRepository) BulkUpdateOutboxMsgs(ctx context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(params.Items) == 0 {
		return nil
	}

	items := make(map[uuid.UUID]*string, len(params.Items))
	for _, item := range params.Items {
		items[item.ID] = item.Error
	}

	return r.s.write(func(st *state) error {
		now := time.Now()
		for i := range st.outbox {
			errMsg, ok := items[st.outbox[i].id]
			if !ok {
				continue
			}
			st.outbox[i].processedAt = &now
			st.outbox[i].err = errMsg
		}
		return nil
	})
}
