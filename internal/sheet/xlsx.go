package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
)

// ReadXLSX reads the first worksheet of a workbook. The first row is the
// header. Raw cell values are used so long numeric EANs are not rendered in
// scientific notation.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, apperr.UnreadableSheetErr.WrapParent(fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return Table{}, apperr.UnreadableSheetErr.WrapParent(errors.New("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, apperr.UnreadableSheetErr.WrapParent(fmt.Errorf("read rows of %q: %w", sheetName, err))
	}
	if len(rows) == 0 {
		return NewTable(nil, nil), nil
	}

	return NewTable(rows[0], dropBlankRows(rows[1:])), nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if cell != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
