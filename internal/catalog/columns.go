// Package catalog turns normalized spreadsheets into catalog candidates and
// scan codes. Everything here is pure; persistence happens in the service.
package catalog

// Normalized column keys of catalog and scan spreadsheets.
const (
	ColumnName         = "nome"
	ColumnInternalCode = "codigo interno"
	ColumnEAN          = "ean"
	ColumnSupplier     = "fornecedor"
	ColumnQuantity     = "quantidades"
	ColumnStore        = "loja"
	ColumnScanned      = "bipado"
	ColumnScannedAt    = "data bipagem"
	ColumnLocation     = "local"
)

// RequiredCatalogColumns must all be present in a catalog upload.
var RequiredCatalogColumns = []string{ColumnName, ColumnInternalCode, ColumnEAN}
