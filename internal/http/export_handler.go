package http

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/export"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
)

type exportHandler struct {
	catalogSvc service.CatalogService
	cfg        config.Export
	logger     *slog.Logger
}

func newExportHandler(catalogSvc service.CatalogService, cfg config.Export, logger *slog.Logger) *exportHandler {
	return &exportHandler{
		catalogSvc: catalogSvc,
		cfg:        cfg,
		logger:     logger,
	}
}

// ExportProducts handles GET /api/v1/exports/{subset}?format=csv|xlsx and
// streams the rows as an attachment.
func (h *exportHandler) ExportProducts(w http.ResponseWriter, r *http.Request) error {
	var subset model.ExportSubset
	if err := subset.UnmarshalText([]byte(chi.URLParam(r, "subset"))); err != nil {
		return apperr.ValidationErr.WithMsg("subset must be all, scanned or unscanned").WrapParent(err)
	}

	format, err := exportFormat(r.URL.Query().Get("format"))
	if err != nil {
		return err
	}

	// headers and body are only committed once the first row arrives so an
	// early failure still gets a proper error response
	var ew export.Writer
	start := func() error {
		if ew != nil {
			return nil
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": export.Filename(subset, format),
		}))
		w.WriteHeader(http.StatusOK)

		var err error
		ew, err = export.NewWriter(w, format, h.cfg)
		return err
	}

	err = h.catalogSvc.ExportProducts(r.Context(), subset, func(p model.Product) error {
		if err := start(); err != nil {
			return err
		}
		return ew.Write(p)
	})
	if err != nil && ew == nil {
		return fmt.Errorf("catalog service export products: %w", err)
	}
	if err != nil {
		// the status line is already out, the client sees a truncated file
		h.logger.ErrorContext(r.Context(), "export aborted", slog.Any("error", err))
		return nil
	}

	if err := start(); err != nil {
		return fmt.Errorf("start export: %w", err)
	}
	if err := ew.Close(); err != nil {
		h.logger.ErrorContext(r.Context(), "close export", slog.Any("error", err))
	}
	return nil
}

func exportFormat(value string) (sheet.Format, error) {
	switch value {
	case "", "csv":
		return sheet.FormatCSV, nil
	case "xlsx":
		return sheet.FormatXLSX, nil
	default:
		return 0, apperr.ValidationErr.WithMsg("format must be csv or xlsx")
	}
}
