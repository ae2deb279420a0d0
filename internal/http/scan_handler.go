package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
	"github.com/tuanvumaihuynh/bipagem/pkg/validator"
)

// maxScanBodyBytes bounds the body of a single manual scan.
const maxScanBodyBytes = 16 << 10

type scanHandler struct {
	catalogSvc     service.CatalogService
	validator      validator.Validator
	maxUploadBytes int64
}

func newScanHandler(catalogSvc service.CatalogService, v validator.Validator, maxUploadBytes int64) *scanHandler {
	return &scanHandler{
		catalogSvc:     catalogSvc,
		validator:      v,
		maxUploadBytes: maxUploadBytes,
	}
}

type scanRequest struct {
	Code     string `json:"code" validate:"required,max=128,scancode"`
	Store    string `json:"store" validate:"max=128"`
	Location string `json:"location" validate:"max=256"`
}

type scanResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Products []model.Product `json:"products"`
}

// ScanProduct handles POST /api/v1/scans. The body is either JSON or a
// urlencoded form with the fields code, store and location.
func (h *scanHandler) ScanProduct(w http.ResponseWriter, r *http.Request) error {
	req, err := h.decodeScanRequest(w, r)
	if err != nil {
		return err
	}

	if err := h.validator.Validate(req); err != nil {
		return err
	}

	res, err := h.catalogSvc.ScanProduct(r.Context(), service.ScanProductParams{
		Code:     req.Code,
		Store:    req.Store,
		Location: req.Location,
	})
	if err != nil {
		return fmt.Errorf("catalog service scan product: %w", err)
	}

	return writeJSON(w, http.StatusOK, scanResponse{
		Status:   "scanned",
		Message:  "product scanned",
		Products: res.Products,
	})
}

func (h *scanHandler) decodeScanRequest(w http.ResponseWriter, r *http.Request) (scanRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxScanBodyBytes)

	var req scanRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, apperr.ValidationErr.WithMsg("invalid JSON body").WrapParent(err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, apperr.ValidationErr.WithMsg("invalid form body").WrapParent(err)
		}
		req = scanRequest{
			Code:     r.PostFormValue("code"),
			Store:    r.PostFormValue("store"),
			Location: r.PostFormValue("location"),
		}
	}

	req.Code = strings.TrimSpace(req.Code)
	req.Store = strings.TrimSpace(req.Store)
	req.Location = strings.TrimSpace(req.Location)
	return req, nil
}

// ImportScans handles POST /api/v1/scans/import with the multipart fields
// file, store and location.
func (h *scanHandler) ImportScans(w http.ResponseWriter, r *http.Request) error {
	table, err := parseUpload(w, r, h.maxUploadBytes)
	if err != nil {
		return err
	}

	res, err := h.catalogSvc.ImportScans(r.Context(), service.ImportScansParams{
		Table:    table,
		Store:    strings.TrimSpace(r.FormValue("store")),
		Location: strings.TrimSpace(r.FormValue("location")),
	})
	if err != nil {
		return fmt.Errorf("catalog service import scans: %w", err)
	}

	return writeJSON(w, http.StatusOK, res)
}
