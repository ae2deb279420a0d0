package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/catalog"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
	"github.com/tuanvumaihuynh/bipagem/pkg/zerror"
)

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		" 111 ":               "111",
		"111.0":               "111",
		"7891234567890.00":    "7891234567890",
		"7.891234567890E+12":  "7891234567890",
		"7.8912345678900E+12": "7891234567890",
		"1.2300e4":            "12300",
		"7.89123456789E+12":   "7.89123456789E+12",
		"7.89E+12":            "7.89E+12",
		"1.2345E+2":           "1.2345E+2",
		"A-12.5":              "A-12.5",
		"12.50":               "12.50",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, catalog.NormalizeCode(in), in)
	}
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 3, catalog.ParseQuantity("3"))
	assert.Equal(t, 3, catalog.ParseQuantity(" 3.0 "))
	assert.Equal(t, 2, catalog.ParseQuantity("2,5"))
	assert.Equal(t, -1, catalog.ParseQuantity("-1"))
	assert.Equal(t, 0, catalog.ParseQuantity(""))
	assert.Equal(t, 0, catalog.ParseQuantity("muitos"))
	assert.Equal(t, 0, catalog.ParseQuantity("1e20"))
	assert.Equal(t, 0, catalog.ParseQuantity("99999999999"))
	assert.Equal(t, 0, catalog.ParseQuantity("-99999999999"))
	assert.Equal(t, 2147483647, catalog.ParseQuantity("2147483647"))
}

func TestProductsFromTable(t *testing.T) {
	table := sheet.NewTable(
		[]string{"Nome", "Código Interno", "EAN", "Fornecedor", "Quantidades", "Cor"},
		[][]string{
			{"Caneta", "A1", "111", "Bic", "10", "azul"},
			{"Lápis", "A2", "222.0", "", "x"},
			{"Caneta repetida", "A1", "111", "Outro", "5"},
			{"Sem código", "", ""},
			{"Só EAN", "", "333"},
		},
	)

	c, err := catalog.ProductsFromTable(table, " Loja 1 ")
	require.NoError(t, err)

	require.Len(t, c.Products, 3)
	assert.Equal(t, 1, c.Duplicates)
	assert.Equal(t, 1, c.Skipped)

	first := c.Products[0]
	assert.Equal(t, "Caneta", first.Name, "first seen row wins")
	assert.Equal(t, "Bic", first.Supplier)
	assert.Equal(t, 10, first.Quantity)
	assert.Equal(t, "Loja 1", first.Store)
	assert.False(t, first.Scanned)
	assert.Nil(t, first.ScannedAt)
	assert.Empty(t, first.Location)

	assert.Equal(t, model.Identity{InternalCode: "A2", EAN: "222"}, c.Products[1].Identity())
	assert.Equal(t, 0, c.Products[1].Quantity)
	assert.Equal(t, "333", c.Products[2].EAN)
}

func TestProductsFromTableOptionalColumns(t *testing.T) {
	table := sheet.NewTable([]string{"nome", "codigo interno", "ean"}, [][]string{{"Caneta", "A1", "111"}})

	c, err := catalog.ProductsFromTable(table, "")
	require.NoError(t, err)
	require.Len(t, c.Products, 1)
	assert.Equal(t, "", c.Products[0].Supplier)
	assert.Equal(t, 0, c.Products[0].Quantity)
}

func TestProductsFromTableMissingColumns(t *testing.T) {
	table := sheet.NewTable([]string{"Nome", "Preço"}, nil)

	_, err := catalog.ProductsFromTable(table, "")
	require.Error(t, err)

	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, apperr.MissingColumnsErrorCode, zErr.Code())
	assert.Contains(t, zErr.Msg(), "codigo interno, ean")
}

func TestCodesFromTable(t *testing.T) {
	table := sheet.NewTable(
		[]string{"EAN", "Código Interno"},
		[][]string{
			{"111", "A1"},
			{"", "A2"},
			{"", ""},
			{"111.0", ""},
		},
	)

	sc, err := catalog.CodesFromTable(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "A2", "111"}, sc.Codes)
	assert.Equal(t, 1, sc.Skipped)
}

func TestCodesFromTableNeedsACodeColumn(t *testing.T) {
	_, err := catalog.CodesFromTable(sheet.NewTable([]string{"nome"}, nil))
	assert.True(t, zerror.HasCode(err, apperr.MissingColumnsErrorCode))

	sc, err := catalog.CodesFromTable(sheet.NewTable([]string{"Codigo Interno"}, [][]string{{"A1"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, sc.Codes)
}

func TestIsAmbiguous(t *testing.T) {
	a := model.Product{InternalCode: "A1", Store: "Loja 1"}
	b := model.Product{InternalCode: "A1", EAN: "9", Store: "Loja 2"}
	c := model.Product{InternalCode: "B1", EAN: "A1", Store: "Loja 1"}

	assert.False(t, catalog.IsAmbiguous(nil, ""))
	assert.False(t, catalog.IsAmbiguous([]model.Product{a}, ""))
	assert.False(t, catalog.IsAmbiguous([]model.Product{a, c}, ""), "same store is not ambiguous")
	assert.True(t, catalog.IsAmbiguous([]model.Product{a, b}, ""))
	assert.False(t, catalog.IsAmbiguous([]model.Product{a, b}, "Loja 1"), "a store filter settles it")
}

func TestMatchesSearch(t *testing.T) {
	p := model.Product{Name: "Caneta Azul", InternalCode: "A1", EAN: "7891", Supplier: "Papelaria São João"}

	assert.True(t, catalog.MatchesSearch(p, ""))
	assert.True(t, catalog.MatchesSearch(p, "caneta"))
	assert.True(t, catalog.MatchesSearch(p, "a1"))
	assert.True(t, catalog.MatchesSearch(p, "789"))
	assert.True(t, catalog.MatchesSearch(p, "SÃO"))
	assert.False(t, catalog.MatchesSearch(p, "lápis"))
	assert.False(t, catalog.MatchesSearch(p, "Loja"), "store is not searchable")
}
