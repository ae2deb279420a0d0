package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
)

// ScanCodes is a scan-result upload reduced to the codes to mark.
type ScanCodes struct {
	Codes   []string
	Skipped int
}

// CodesFromTable yields, per row, the EAN when present and the internal code
// otherwise. Order and repeats are preserved so the import reports per row.
func CodesFromTable(table sheet.Table) (ScanCodes, error) {
	if !table.HasColumn(ColumnEAN) && !table.HasColumn(ColumnInternalCode) {
		return ScanCodes{}, apperr.MissingColumnsErr.
			WithMsg(fmt.Sprintf("the spreadsheet needs a %q or %q column", ColumnEAN, ColumnInternalCode))
	}

	sc := ScanCodes{Codes: make([]string, 0, table.Len())}
	for i := range table.Len() {
		code := NormalizeCode(table.Value(i, ColumnEAN))
		if code == "" {
			code = NormalizeCode(table.Value(i, ColumnInternalCode))
		}
		if code == "" {
			sc.Skipped++
			continue
		}
		sc.Codes = append(sc.Codes, code)
	}

	return sc, nil
}

// IsAmbiguous reports whether a code lookup made without a store filter hit
// rows of more than one store. Such a match cannot be attributed to a single
// site and must not be applied.
func IsAmbiguous(matches []model.Product, storeFilter string) bool {
	if storeFilter != "" || len(matches) < 2 {
		return false
	}
	first := matches[0].Store
	for _, p := range matches[1:] {
		if p.Store != first {
			return true
		}
	}
	return false
}

// IDs returns the ids of products in order.
func IDs(products []model.Product) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
