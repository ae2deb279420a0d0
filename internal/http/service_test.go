package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	apihttp "github.com/tuanvumaihuynh/bipagem/internal/http"
	"github.com/tuanvumaihuynh/bipagem/internal/http/apierr"
	"github.com/tuanvumaihuynh/bipagem/internal/repository/memstore"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
	"github.com/tuanvumaihuynh/bipagem/pkg/correlationid"
)

const catalogCSV = "Nome;Código Interno;EAN;Fornecedor;Quantidades\n" +
	"Arroz;A1;111;Camil;10\n" +
	"Feijao;A2;222;Kicaldo;5\n" +
	"Acucar;A3;333;Uniao;7\n"

type fakeFeed struct {
	res service.LoadCatalogResult
	err error
}

func (f fakeFeed) Sync(context.Context) (service.LoadCatalogResult, error) {
	return f.res, f.err
}

type fakeHealth struct {
	ok  bool
	err error
}

func (f fakeHealth) IsHealthy(context.Context) (bool, error) {
	return f.ok, f.err
}

type serverOpts struct {
	cfg    config.HTTP
	feed   apihttp.FeedSyncer
	health fakeHealth
}

func newHandler(t *testing.T, opts serverOpts) http.Handler {
	t.Helper()

	if opts.cfg.MaxUploadBytes == 0 {
		opts.cfg.MaxUploadBytes = 1 << 20
	}
	if opts.cfg.MaxPageSize == 0 {
		opts.cfg.MaxPageSize = 500
	}
	opts.cfg.Swagger = true

	svc, err := apihttp.New(apihttp.Params{
		Config:        opts.cfg,
		ExportConfig:  config.Export{CSVDelimiter: ",", TimeFormat: "02/01/2006 15:04"},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		CatalogSvc:    service.NewCatalogService(memstore.New(), config.Catalog{}),
		Feed:          opts.feed,
		HealthChecker: opts.health,
	})
	require.NoError(t, err)
	return svc.Handler()
}

func multipartRequest(t *testing.T, target, filename, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var res apierr.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

func loadCatalog(t *testing.T, h http.Handler) {
	t.Helper()
	rec := serve(h, multipartRequest(t, "/api/v1/catalog", "catalogo.csv", catalogCSV,
		map[string]string{"store": "Loja 1", "mode": "substituir"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{})

	rec := serve(h, multipartRequest(t, "/api/v1/catalog", "catalogo.csv", catalogCSV,
		map[string]string{"store": "Loja 1", "mode": "append"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res service.LoadCatalogResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 3, res.Received)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 3, res.Total)

	t.Run("Should ignore an identical append", func(t *testing.T) {
		rec := serve(h, multipartRequest(t, "/api/v1/catalog", "catalogo.csv", catalogCSV,
			map[string]string{"store": "Loja 1"}))
		require.Equal(t, http.StatusOK, rec.Code)

		var res service.LoadCatalogResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, 0, res.Inserted)
		assert.Equal(t, 3, res.Total)
	})
}

func TestLoadCatalog_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        config.HTTP
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/catalog", "", "", map[string]string{"store": "Loja 1"})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FILE",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/catalog", strings.NewReader("{}"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FILE",
		},
		{
			name: "unsupported extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/catalog", "catalogo.txt", catalogCSV, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNSUPPORTED_FILE_TYPE",
		},
		{
			name: "missing columns",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/catalog", "catalogo.csv", "Nome,EAN\nArroz,111\n", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_COLUMNS",
		},
		{
			name: "unknown mode",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/catalog", "catalogo.csv", catalogCSV,
					map[string]string{"mode": "merge"})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name: "store too long",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/catalog", "catalogo.csv", catalogCSV,
					map[string]string{"store": strings.Repeat("L", 129)})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name: "upload too large",
			cfg:  config.HTTP{MaxUploadBytes: 64},
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/catalog", "catalogo.csv", strings.Repeat(catalogCSV, 10), nil)
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   apierr.FileTooLargeErrorCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHandler(t, serverOpts{cfg: tt.cfg})

			rec := serve(h, tt.req(t))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestScanProduct(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{})
	loadCatalog(t, h)

	t.Run("Should scan by EAN from JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans",
			strings.NewReader(`{"code":"111","location":"Corredor 1"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res struct {
			Status   string `json:"status"`
			Products []struct {
				InternalCode string `json:"internal_code"`
				Scanned      bool   `json:"scanned"`
				Location     string `json:"location"`
			} `json:"products"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, "scanned", res.Status)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "A1", res.Products[0].InternalCode)
		assert.True(t, res.Products[0].Scanned)
		assert.Equal(t, "Corredor 1", res.Products[0].Location)
	})

	t.Run("Should scan by internal code from a form", func(t *testing.T) {
		form := url.Values{"code": {"A2"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := serve(h, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("Should return 404 for an unknown code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"code":"999"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := serve(h, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, rec).Code)
	})

	t.Run("Should reject an empty code with field details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"code":"  "}`))
		req.Header.Set("Content-Type", "application/json")

		rec := serve(h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		res := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
		require.NotNil(t, res.Details)
		assert.Equal(t, "Code", (*res.Details)[0].Field)
	})

	t.Run("Should reject malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"code":`))
		req.Header.Set("Content-Type", "application/json")

		rec := serve(h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestScanProduct_SymbolCodes(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{})

	catalog := "Nome;Código Interno;EAN;Fornecedor;Quantidades\n" +
		"Parafuso;SKU#12;444;Gerdau;3\n" +
		"Kit;A+B;555;Tramontina;1\n"
	rec := serve(h, multipartRequest(t, "/api/v1/catalog", "catalogo.csv", catalog,
		map[string]string{"mode": "replace"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, code := range []string{"SKU#12", "A+B"} {
		t.Run(code, func(t *testing.T) {
			body, err := json.Marshal(map[string]string{"code": code})
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			rec := serve(h, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var res struct {
				Products []struct {
					InternalCode string `json:"internal_code"`
				} `json:"products"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			require.Len(t, res.Products, 1)
			assert.Equal(t, code, res.Products[0].InternalCode)
		})
	}
}

func TestImportScans(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{})

	rec := serve(h, multipartRequest(t, "/api/v1/scans/import", "bipagem.csv", "EAN\n111\n", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CATALOG_EMPTY", decodeError(t, rec).Code)

	loadCatalog(t, h)

	rec = serve(h, multipartRequest(t, "/api/v1/scans/import", "bipagem.csv", "EAN\n111\n333\n999\n",
		map[string]string{"location": "Deposito"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res service.ImportScansResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 1, res.Unmatched)
	assert.Equal(t, 2, res.ProductsScanned)
}

func TestListProducts(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{cfg: config.HTTP{MaxPageSize: 2}})
	loadCatalog(t, h)

	type page struct {
		Draw            int `json:"draw"`
		RecordsTotal    int `json:"recordsTotal"`
		RecordsFiltered int `json:"recordsFiltered"`
		Data            []struct {
			Name string `json:"name"`
		} `json:"data"`
	}

	get := func(t *testing.T, query string) (int, page) {
		t.Helper()
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/products?"+query, nil))
		var p page
		if rec.Code == http.StatusOK {
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
		}
		return rec.Code, p
	}

	t.Run("Should page and echo draw", func(t *testing.T) {
		code, p := get(t, "draw=7&start=1&length=1")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 7, p.Draw)
		assert.Equal(t, 3, p.RecordsTotal)
		assert.Equal(t, 3, p.RecordsFiltered)
		require.Len(t, p.Data, 1)
		assert.Equal(t, "Feijao", p.Data[0].Name)
	})

	t.Run("Should filter with the DataTables search field", func(t *testing.T) {
		code, p := get(t, url.Values{"search[value]": {"feij"}, "length": {"10"}}.Encode())
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 3, p.RecordsTotal)
		assert.Equal(t, 1, p.RecordsFiltered)
		require.Len(t, p.Data, 1)
	})

	t.Run("Should clamp the page length", func(t *testing.T) {
		code, p := get(t, "length=100")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, p.Data, 2)
	})

	t.Run("Should return every row for length -1", func(t *testing.T) {
		code, p := get(t, "length=-1")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, p.Data, 3)
	})

	t.Run("Should return an empty page past the end", func(t *testing.T) {
		code, p := get(t, "start=50")
		require.Equal(t, http.StatusOK, code)
		assert.NotNil(t, p.Data)
		assert.Empty(t, p.Data)
	})

	t.Run("Should reject invalid parameters", func(t *testing.T) {
		for _, q := range []string{"start=-1", "length=-2", "draw=abc"} {
			code, _ := get(t, q)
			assert.Equal(t, http.StatusBadRequest, code, q)
		}
	})
}

func TestExportProducts(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{})
	loadCatalog(t, h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"code":"222"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusOK, serve(h, req).Code)

	t.Run("Should export scanned rows as CSV", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/exports/scanned?format=csv", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Equal(t, "attachment; filename=produtos_bipados.csv", rec.Header().Get("Content-Disposition"))

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[1], "Feijao,A2,222,"))
	})

	t.Run("Should export only the header when nothing matches", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/exports/unscanned", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, strings.Split(strings.TrimSpace(rec.Body.String()), "\n"), 3)
	})

	t.Run("Should export xlsx", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/exports/all?format=xlsx", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "attachment; filename=produtos.xlsx", rec.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})

	t.Run("Should reject unknown subsets and formats", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest,
			serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/exports/missing", nil)).Code)
		assert.Equal(t, http.StatusBadRequest,
			serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/exports/all?format=pdf", nil)).Code)
	})
}

func TestExportProducts_EmptyCatalog(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/exports/all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nome,codigo interno,ean,fornecedor,quantidades,loja,bipado,data bipagem,local\n", rec.Body.String())
}

func TestSyncCatalog(t *testing.T) {
	t.Parallel()

	t.Run("Should return 501 without a feed", func(t *testing.T) {
		h := newHandler(t, serverOpts{})
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/sync", nil))
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
		assert.Equal(t, "SHEET_FEED_DISABLED", decodeError(t, rec).Code)
	})

	t.Run("Should return the load result", func(t *testing.T) {
		h := newHandler(t, serverOpts{feed: fakeFeed{res: service.LoadCatalogResult{Received: 4, Inserted: 4, Total: 4}}})
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/sync", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var res service.LoadCatalogResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, 4, res.Inserted)
	})

	t.Run("Should hide unexpected failures", func(t *testing.T) {
		h := newHandler(t, serverOpts{feed: fakeFeed{err: errors.New("boom")}})
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/sync", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, apierr.InternalServerErrorCode, decodeError(t, rec).Code)
	})
}

func TestNewRejectsInvalidExportDelimiter(t *testing.T) {
	t.Parallel()

	_, err := apihttp.New(apihttp.Params{
		ExportConfig: config.Export{CSVDelimiter: `"`},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		CatalogSvc:   service.NewCatalogService(memstore.New(), config.Catalog{}),
	})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newHandler(t, serverOpts{health: fakeHealth{ok: true}})
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	h = newHandler(t, serverOpts{health: fakeHealth{err: errors.New("connection refused")}})
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMiddlewares(t *testing.T) {
	t.Parallel()
	h := newHandler(t, serverOpts{health: fakeHealth{ok: true}})

	t.Run("Should echo the correlation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set(correlationid.Header, "req-42")

		rec := serve(h, req)
		assert.Equal(t, "req-42", rec.Header().Get(correlationid.Header))
	})

	t.Run("Should generate a correlation id", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		assert.NotEmpty(t, rec.Header().Get(correlationid.Header))
	})

	t.Run("Should expose request metrics by route", func(t *testing.T) {
		serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/exports/all", nil))

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `bipagem_http_requests_total{code="200",method="GET",route="/api/v1/exports/{subset}"}`)
	})

	t.Run("Should answer CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/scans", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := serve(h, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Should serve the API docs", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/docs/openapi.yml", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/v1/products")
	})
}
