package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
)

// multipartMemory is how much of an upload is kept in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

const uploadField = "file"

// parseUpload parses a multipart form of at most maxBytes and reads its
// spreadsheet file into a table.
func parseUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (sheet.Table, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return sheet.Table{}, err
		}
		return sheet.Table{}, apperr.MissingFileErr.WrapParent(fmt.Errorf("parse multipart form: %w", err))
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return sheet.Table{}, apperr.MissingFileErr.WrapParent(err)
	}
	defer file.Close()

	if header.Filename == "" {
		return sheet.Table{}, apperr.MissingFileErr
	}

	table, err := sheet.ReadFile(file, header.Filename)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("read upload %q: %w", header.Filename, err)
	}
	return table, nil
}
