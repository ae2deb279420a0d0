package http

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
)

const defaultPageLength = 10

type productHandler struct {
	catalogSvc  service.CatalogService
	maxPageSize int
}

func newProductHandler(catalogSvc service.CatalogService, maxPageSize int) *productHandler {
	return &productHandler{
		catalogSvc:  catalogSvc,
		maxPageSize: maxPageSize,
	}
}

type listProductsParams struct {
	Draw   int
	Start  int
	Length int
	Search string
}

// productPageResponse uses the field names of the DataTables server-side
// protocol.
type productPageResponse struct {
	Draw            int             `json:"draw"`
	RecordsTotal    int             `json:"recordsTotal"`
	RecordsFiltered int             `json:"recordsFiltered"`
	Data            []model.Product `json:"data"`
}

// ListProducts handles GET /api/v1/products. A length of -1 asks for every
// filtered row.
func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	params, err := h.bindListProductsParams(r)
	if err != nil {
		return err
	}

	page, err := h.catalogSvc.PageProducts(r.Context(), service.PageProductsParams{
		Search: params.Search,
		Offset: params.Start,
		Limit:  params.Length,
	})
	if err != nil {
		return fmt.Errorf("catalog service page products: %w", err)
	}

	data := page.Products
	if data == nil {
		data = []model.Product{}
	}

	return writeJSON(w, http.StatusOK, productPageResponse{
		Draw:            params.Draw,
		RecordsTotal:    page.Total,
		RecordsFiltered: page.Filtered,
		Data:            data,
	})
}

func (h *productHandler) bindListProductsParams(r *http.Request) (listProductsParams, error) {
	query := r.URL.Query()
	params := listProductsParams{Length: defaultPageLength}

	for _, p := range []struct {
		name string
		dest any
	}{
		{"draw", &params.Draw},
		{"start", &params.Start},
		{"length", &params.Length},
		{"search", &params.Search},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, query, p.dest); err != nil {
			return params, apperr.ValidationErr.WithMsg(fmt.Sprintf("invalid query parameter %s", p.name)).WrapParent(err)
		}
	}

	// DataTables sends the search box as search[value].
	if params.Search == "" {
		if err := runtime.BindQueryParameter("form", true, false, "search[value]", query, &params.Search); err != nil {
			return params, apperr.ValidationErr.WithMsg("invalid query parameter search[value]").WrapParent(err)
		}
	}

	if params.Start < 0 {
		return params, apperr.ValidationErr.WithMsg("start must not be negative")
	}
	if params.Length < -1 {
		return params, apperr.ValidationErr.WithMsg("length must be -1 or greater")
	}
	if h.maxPageSize > 0 && params.Length > h.maxPageSize {
		params.Length = h.maxPageSize
	}

	return params, nil
}
