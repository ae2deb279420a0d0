package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
	"github.com/tuanvumaihuynh/bipagem/pkg/validator"
)

type catalogHandler struct {
	catalogSvc     service.CatalogService
	feed           FeedSyncer
	validator      validator.Validator
	maxUploadBytes int64
}

func newCatalogHandler(catalogSvc service.CatalogService, feed FeedSyncer, v validator.Validator, maxUploadBytes int64) *catalogHandler {
	return &catalogHandler{
		catalogSvc:     catalogSvc,
		feed:           feed,
		validator:      v,
		maxUploadBytes: maxUploadBytes,
	}
}

type loadCatalogRequest struct {
	Store string         `validate:"max=128"`
	Mode  model.LoadMode `validate:"enum"`
}

// LoadCatalog handles POST /api/v1/catalog with the multipart fields file,
// store and mode.
func (h *catalogHandler) LoadCatalog(w http.ResponseWriter, r *http.Request) error {
	table, err := parseUpload(w, r, h.maxUploadBytes)
	if err != nil {
		return err
	}

	req := loadCatalogRequest{Store: strings.TrimSpace(r.FormValue("store"))}
	if err := req.Mode.UnmarshalText([]byte(r.FormValue("mode"))); err != nil {
		return apperr.ValidationErr.WithMsg("mode must be append or replace").WrapParent(err)
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	res, err := h.catalogSvc.LoadCatalog(r.Context(), service.LoadCatalogParams{
		Table: table,
		Store: req.Store,
		Mode:  req.Mode,
	})
	if err != nil {
		return fmt.Errorf("catalog service load catalog: %w", err)
	}

	return writeJSON(w, http.StatusOK, res)
}

// SyncCatalog handles POST /api/v1/catalog/sync.
func (h *catalogHandler) SyncCatalog(w http.ResponseWriter, r *http.Request) error {
	if h.feed == nil {
		return apperr.SheetFeedDisabledErr
	}

	res, err := h.feed.Sync(r.Context())
	if err != nil {
		return fmt.Errorf("sync sheet feed: %w", err)
	}

	return writeJSON(w, http.StatusOK, res)
}
