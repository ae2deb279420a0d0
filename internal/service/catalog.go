package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/catalog"
	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/event"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/repository"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
	"github.com/tuanvumaihuynh/bipagem/pkg/outbox"
)

type LoadCatalogParams struct {
	Table sheet.Table
	Store string
	Mode  model.LoadMode
}

type LoadCatalogResult struct {
	// Received is the number of data rows in the upload.
	Received int `json:"received"`
	Inserted int `json:"inserted"`
	// Duplicates counts rows dropped because their identity was already
	// present, in the upload itself or in the stored catalog.
	Duplicates int `json:"duplicates"`
	// Skipped counts rows without any code.
	Skipped int `json:"skipped"`
	// Total is the catalog size after the load.
	Total int `json:"total"`
}

type ImportScansParams struct {
	Table    sheet.Table
	Store    string
	Location string
}

type ImportScansResult struct {
	Rows      int `json:"rows"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	// Ambiguous counts codes matching several stores while no store was given.
	Ambiguous int `json:"ambiguous"`
	// Skipped counts rows without any code.
	Skipped         int `json:"skipped"`
	ProductsScanned int `json:"products_scanned"`
}

type ScanProductParams struct {
	Code     string
	Store    string
	Location string
}

type ScanProductResult struct {
	Products []model.Product
}

type PageProductsParams struct {
	Search string
	Offset int
	// Limit below zero returns every row from Offset on.
	Limit int
}

type ProductPage struct {
	Total    int
	Filtered int
	Products []model.Product
}

type CatalogService interface {
	// LoadCatalog merges an uploaded catalog into the store.
	LoadCatalog(ctx context.Context, params LoadCatalogParams) (LoadCatalogResult, error)
	// ImportScans marks every product named by a scan-result upload.
	ImportScans(ctx context.Context, params ImportScansParams) (ImportScansResult, error)
	// ScanProduct marks the products matching a single manually entered code.
	ScanProduct(ctx context.Context, params ScanProductParams) (ScanProductResult, error)
	PageProducts(ctx context.Context, params PageProductsParams) (ProductPage, error)
	// ExportProducts streams the products of subset to fn in catalog order.
	ExportProducts(ctx context.Context, subset model.ExportSubset, fn func(model.Product) error) error
}

type catalogService struct {
	store repository.Store
	cfg   config.Catalog
	now   func() time.Time
}

func NewCatalogService(store repository.Store, cfg config.Catalog) CatalogService {
	return &catalogService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *catalogService) LoadCatalog(ctx context.Context, params LoadCatalogParams) (LoadCatalogResult, error) {
	if err := params.Mode.Validate(); err != nil {
		return LoadCatalogResult{}, apperr.ValidationErr.WithMsg(err.Error())
	}

	candidates, err := catalog.ProductsFromTable(params.Table, params.Store)
	if err != nil {
		return LoadCatalogResult{}, err
	}

	now := s.now()
	for i := range candidates.Products {
		id, err := uuid.NewV7()
		if err != nil {
			return LoadCatalogResult{}, fmt.Errorf("generate uuid v7: %w", err)
		}
		candidates.Products[i].ID = id
		candidates.Products[i].CreatedAt = now
	}

	res := LoadCatalogResult{
		Received: params.Table.Len(),
		Skipped:  candidates.Skipped,
	}

	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if params.Mode == model.LoadModeReplace {
			if err := tx.Products().DeleteAllProducts(ctx); err != nil {
				return fmt.Errorf("product repository delete all products: %w", err)
			}
		}

		inserted, err := tx.Products().InsertProducts(ctx, candidates.Products)
		if err != nil {
			return fmt.Errorf("product repository insert products: %w", err)
		}
		res.Inserted = inserted
		res.Duplicates = candidates.Duplicates + len(candidates.Products) - inserted

		total, err := tx.Products().CountProducts(ctx, repository.ProductFilter{})
		if err != nil {
			return fmt.Errorf("product repository count products: %w", err)
		}
		res.Total = total

		if !s.cfg.PublishEvents {
			return nil
		}

		return s.publish(ctx, tx, event.TopicCatalogLoaded, strings.TrimSpace(params.Store), event.CatalogLoadedEvent{
			Store:    strings.TrimSpace(params.Store),
			Mode:     params.Mode.String(),
			Inserted: inserted,
			Total:    total,
			LoadedAt: now,
		})
	}); err != nil {
		return LoadCatalogResult{}, fmt.Errorf("store with tx: %w", err)
	}

	return res, nil
}

func (s *catalogService) ImportScans(ctx context.Context, params ImportScansParams) (ImportScansResult, error) {
	codes, err := catalog.CodesFromTable(params.Table)
	if err != nil {
		return ImportScansResult{}, err
	}

	var (
		storeFilter = strings.TrimSpace(params.Store)
		location    = strings.TrimSpace(params.Location)
		scannedAt   = s.now()
		res         = ImportScansResult{Rows: params.Table.Len(), Skipped: codes.Skipped}
	)

	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		total, err := tx.Products().CountProducts(ctx, repository.ProductFilter{})
		if err != nil {
			return fmt.Errorf("product repository count products: %w", err)
		}
		if total == 0 {
			return apperr.CatalogEmptyErr
		}

		var (
			seen    = map[uuid.UUID]struct{}{}
			scanned []model.Product
		)
		for _, code := range codes.Codes {
			matches, err := tx.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{
				Code:  code,
				Store: storeFilter,
			})
			if err != nil {
				return fmt.Errorf("product repository find products by code: %w", err)
			}

			switch {
			case len(matches) == 0:
				res.Unmatched++
				continue
			case catalog.IsAmbiguous(matches, storeFilter):
				res.Ambiguous++
				continue
			}

			if err := tx.Products().MarkProductsScanned(ctx, repository.MarkProductsScannedParams{
				IDs:       catalog.IDs(matches),
				ScannedAt: scannedAt,
				Location:  location,
			}); err != nil {
				return fmt.Errorf("product repository mark products scanned: %w", err)
			}
			res.Matched++

			for _, p := range matches {
				if _, ok := seen[p.ID]; ok {
					continue
				}
				seen[p.ID] = struct{}{}
				scanned = append(scanned, p)
			}
		}
		res.ProductsScanned = len(scanned)

		return s.publishScans(ctx, tx, scanned, scannedAt, location, event.ScanSourceImport)
	}); err != nil {
		return ImportScansResult{}, fmt.Errorf("store with tx: %w", err)
	}

	return res, nil
}

func (s *catalogService) ScanProduct(ctx context.Context, params ScanProductParams) (ScanProductResult, error) {
	code := catalog.NormalizeCode(params.Code)
	if code == "" {
		return ScanProductResult{}, apperr.ValidationErr.WithMsg("code is required")
	}

	var (
		storeFilter = strings.TrimSpace(params.Store)
		location    = strings.TrimSpace(params.Location)
		scannedAt   = s.now()
		matches     []model.Product
	)

	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		matches, err = tx.Products().FindProductsByCode(ctx, repository.FindProductsByCodeParams{
			Code:  code,
			Store: storeFilter,
		})
		if err != nil {
			return fmt.Errorf("product repository find products by code: %w", err)
		}

		if len(matches) == 0 {
			return apperr.ProductNotFoundErr.WithMsg(fmt.Sprintf("no product with code %s", code))
		}
		if catalog.IsAmbiguous(matches, storeFilter) {
			return apperr.AmbiguousCodeErr
		}

		if err := tx.Products().MarkProductsScanned(ctx, repository.MarkProductsScannedParams{
			IDs:       catalog.IDs(matches),
			ScannedAt: scannedAt,
			Location:  location,
		}); err != nil {
			return fmt.Errorf("product repository mark products scanned: %w", err)
		}

		return s.publishScans(ctx, tx, matches, scannedAt, location, event.ScanSourceManual)
	}); err != nil {
		return ScanProductResult{}, fmt.Errorf("store with tx: %w", err)
	}

	for i := range matches {
		ts := scannedAt
		matches[i].Scanned = true
		matches[i].ScannedAt = &ts
		matches[i].Location = location
	}

	return ScanProductResult{Products: matches}, nil
}

func (s *catalogService) PageProducts(ctx context.Context, params PageProductsParams) (ProductPage, error) {
	search := strings.TrimSpace(params.Search)

	total, err := s.store.Products().CountProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return ProductPage{}, fmt.Errorf("product repository count products: %w", err)
	}

	filtered := total
	if search != "" {
		filtered, err = s.store.Products().CountProducts(ctx, repository.ProductFilter{Search: search})
		if err != nil {
			return ProductPage{}, fmt.Errorf("product repository count filtered products: %w", err)
		}
	}

	page := ProductPage{
		Total:    total,
		Filtered: filtered,
		Products: []model.Product{},
	}
	if params.Limit == 0 {
		return page, nil
	}

	products, err := s.store.Products().ListProducts(ctx, repository.ListProductsParams{
		Filter: repository.ProductFilter{Search: search},
		Offset: max(params.Offset, 0),
		Limit:  max(params.Limit, 0),
	})
	if err != nil {
		return ProductPage{}, fmt.Errorf("product repository list products: %w", err)
	}
	page.Products = products

	return page, nil
}

func (s *catalogService) ExportProducts(ctx context.Context, subset model.ExportSubset, fn func(model.Product) error) error {
	if err := subset.Validate(); err != nil {
		return apperr.ValidationErr.WithMsg(err.Error())
	}

	return s.store.Products().EachProduct(ctx, repository.ProductFilter{Scanned: subset.ScannedFilter()}, fn)
}

func (s *catalogService) publishScans(
	ctx context.Context,
	tx repository.Store,
	products []model.Product,
	scannedAt time.Time,
	location string,
	source event.ScanSource,
) error {
	if !s.cfg.PublishEvents {
		return nil
	}

	for _, p := range products {
		if err := s.publish(ctx, tx, event.TopicProductScanned, p.Store, event.ProductScannedEvent{
			ProductID:    p.ID,
			InternalCode: p.InternalCode,
			EAN:          p.EAN,
			Store:        p.Store,
			Location:     location,
			ScannedAt:    scannedAt,
			Source:       source,
		}); err != nil {
			return err
		}
	}

	return nil
}

// publish writes ev to the outbox of tx, keyed by store so events of one
// store stay ordered on a single partition.
func (s *catalogService) publish(ctx context.Context, tx repository.Store, topic, store string, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := tx.OutboxMsgs().CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: &store,
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
