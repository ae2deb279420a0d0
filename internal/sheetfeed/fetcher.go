// Package sheetfeed keeps the catalog in sync with a published spreadsheet,
// such as a Google Sheet exported as CSV.
package sheetfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/time/rate"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
)

// maxFeedBytes caps how much of a feed response is read.
const maxFeedBytes = 64 << 20

type Fetcher struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher returns a Fetcher for cfg.URL that waits at least cfg.MinGap
// between two requests.
func NewFetcher(cfg config.SheetFeed, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.MinGap > 0 {
		limit = rate.Every(cfg.MinGap)
	}

	return &Fetcher{
		url:     cfg.URL,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Fetch downloads and parses the feed.
func (f *Fetcher) Fetch(ctx context.Context) (sheet.Table, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return sheet.Table{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", sheet.ContentTypeCSV+", "+sheet.ContentTypeXLSX)

	resp, err := f.client.Do(req)
	if err != nil {
		return sheet.Table{}, apperr.SheetFeedUnavailableErr.WrapParent(fmt.Errorf("get feed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return sheet.Table{}, apperr.SheetFeedUnavailableErr.WrapParent(fmt.Errorf("feed responded %s", resp.Status))
	}

	table, err := sheet.Read(io.LimitReader(resp.Body, maxFeedBytes), detectFormat(resp.Header.Get("Content-Type"), f.url))
	if err != nil {
		return sheet.Table{}, fmt.Errorf("read feed: %w", err)
	}

	return table, nil
}

// detectFormat trusts the content type first, then the URL extension, then
// the output/format query parameter Google Sheets uses. CSV otherwise.
func detectFormat(contentType, rawURL string) sheet.Format {
	if format, ok := sheet.FormatFromContentType(contentType); ok {
		return format
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return sheet.FormatCSV
	}
	if format, err := sheet.FormatFromFilename(path.Base(u.Path)); err == nil {
		return format
	}
	for _, key := range []string{"output", "format"} {
		if strings.EqualFold(u.Query().Get(key), "xlsx") {
			return sheet.FormatXLSX
		}
	}

	return sheet.FormatCSV
}
