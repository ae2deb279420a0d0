package catalog

import (
	"fmt"
	"strings"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
)

// Candidates is a catalog upload reduced to insertable products.
type Candidates struct {
	Products []model.Product
	// Skipped counts rows carrying neither an internal code nor an EAN.
	Skipped int
	// Duplicates counts rows whose identity already appeared earlier in the upload.
	Duplicates int
}

// ProductsFromTable builds one unscanned product per distinct identity of the
// table, stamped with store. The first row of an identity wins. IDs and
// creation times are left for the store layer.
func ProductsFromTable(table sheet.Table, store string) (Candidates, error) {
	var missing []string
	for _, col := range RequiredCatalogColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Candidates{}, apperr.MissingColumnsErr.
			WithMsg(fmt.Sprintf("the spreadsheet is missing required columns: %s", strings.Join(missing, ", ")))
	}

	store = strings.TrimSpace(store)
	c := Candidates{Products: make([]model.Product, 0, table.Len())}
	seen := make(map[model.Identity]struct{}, table.Len())

	for i := range table.Len() {
		p := model.Product{
			Name:         strings.TrimSpace(table.Value(i, ColumnName)),
			InternalCode: NormalizeCode(table.Value(i, ColumnInternalCode)),
			EAN:          NormalizeCode(table.Value(i, ColumnEAN)),
			Supplier:     strings.TrimSpace(table.Value(i, ColumnSupplier)),
			Quantity:     ParseQuantity(table.Value(i, ColumnQuantity)),
			Store:        store,
		}

		if p.InternalCode == "" && p.EAN == "" {
			c.Skipped++
			continue
		}

		if _, dup := seen[p.Identity()]; dup {
			c.Duplicates++
			continue
		}
		seen[p.Identity()] = struct{}{}

		c.Products = append(c.Products, p)
	}

	return c, nil
}
