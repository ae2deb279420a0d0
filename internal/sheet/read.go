package sheet

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
)

// Format is a supported spreadsheet encoding.
type Format uint8

const (
	FormatXLSX Format = iota
	FormatCSV
)

func (f Format) String() string {
	return []string{"xlsx", "csv"}[f]
}

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return ContentTypeCSV + "; charset=utf-8"
	}
	return ContentTypeXLSX
}

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(filename string) (Format, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return 0, apperr.UnsupportedFileErr.WrapParent(fmt.Errorf("file %q", filename))
	}
}

// FormatFromContentType picks the format from a MIME type, ignoring parameters.
func FormatFromContentType(contentType string) (Format, bool) {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case ContentTypeXLSX:
		return FormatXLSX, true
	case ContentTypeCSV, "application/csv", "text/comma-separated-values":
		return FormatCSV, true
	default:
		return 0, false
	}
}

// Read parses r in the given format.
func Read(r io.Reader, format Format) (Table, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(r)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return Table{}, apperr.UnsupportedFileErr
	}
}

// ReadFile parses r choosing the format from filename.
func ReadFile(r io.Reader, filename string) (Table, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return Table{}, err
	}
	return Read(r, format)
}
