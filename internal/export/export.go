// Package export serializes catalog rows one at a time as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tuanvumaihuynh/bipagem/internal/catalog"
	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
)

// Columns is the header of every export, in order.
var Columns = []string{
	catalog.ColumnName,
	catalog.ColumnInternalCode,
	catalog.ColumnEAN,
	catalog.ColumnSupplier,
	catalog.ColumnQuantity,
	catalog.ColumnStore,
	catalog.ColumnScanned,
	catalog.ColumnScannedAt,
	catalog.ColumnLocation,
}

// Writer streams products into an export file. The header is written on
// construction; Close flushes whatever the format buffers and must be called
// once all rows are written.
type Writer interface {
	Write(p model.Product) error
	Close() error
}

// NewWriter returns a Writer for format writing to w.
func NewWriter(w io.Writer, format sheet.Format, cfg config.Export) (Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch format {
	case sheet.FormatCSV:
		cw, err := newCSVWriter(w, cfg)
		if err != nil {
			return nil, err
		}
		return cw, nil
	case sheet.FormatXLSX:
		xw, err := newXLSXWriter(w, cfg)
		if err != nil {
			return nil, err
		}
		return xw, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// Filename returns the attachment name of an export.
func Filename(subset model.ExportSubset, format sheet.Format) string {
	var base string
	switch subset {
	case model.ExportScanned:
		base = "produtos_bipados"
	case model.ExportUnscanned:
		base = "produtos_nao_bipados"
	default:
		base = "produtos"
	}
	return base + "." + format.String()
}

// Record renders p as text cells in Columns order.
func Record(p model.Product, timeFormat string) []string {
	var scannedAt string
	if p.ScannedAt != nil {
		scannedAt = p.ScannedAt.Format(timeFormat)
	}
	return []string{
		p.Name,
		p.InternalCode,
		p.EAN,
		p.Supplier,
		strconv.Itoa(p.Quantity),
		p.Store,
		strconv.FormatBool(p.Scanned),
		scannedAt,
		p.Location,
	}
}
