package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
)

const sheetName = "Produtos"

// xlsxWriter streams rows through excelize's StreamWriter, which spills rows
// to a temp file instead of holding the sheet in memory.
type xlsxWriter struct {
	f          *excelize.File
	sw         *excelize.StreamWriter
	out        io.Writer
	timeFormat string
	row        int
}

func newXLSXWriter(w io.Writer, cfg config.Export) (*xlsxWriter, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create stream writer: %w", err)
	}

	headerStyleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, 0, len(Columns))
	for _, col := range Columns {
		header = append(header, excelize.Cell{StyleID: headerStyleID, Value: col})
	}
	if err := sw.SetRow("A1", header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write xlsx header: %w", err)
	}

	return &xlsxWriter{
		f:          f,
		sw:         sw,
		out:        w,
		timeFormat: cfg.TimeFormat,
		row:        1,
	}, nil
}

func (x *xlsxWriter) Write(p model.Product) error {
	x.row++

	var scannedAt string
	if p.ScannedAt != nil {
		scannedAt = p.ScannedAt.Format(x.timeFormat)
	}

	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}

	// Codes stay text so leading zeros and long EANs survive.
	if err := x.sw.SetRow(cell, []any{
		p.Name,
		p.InternalCode,
		p.EAN,
		p.Supplier,
		p.Quantity,
		p.Store,
		p.Scanned,
		scannedAt,
		p.Location,
	}); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", x.row, err)
	}

	return nil
}

func (x *xlsxWriter) Close() error {
	defer func() { _ = x.f.Close() }()

	if err := x.sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx stream: %w", err)
	}
	if err := x.f.Write(x.out); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	return nil
}
