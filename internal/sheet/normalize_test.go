package sheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Código Interno", "codigo interno"},
		{"  EAN ", "ean"},
		{"Fornecedor", "fornecedor"},
		{"QUANTIDADES", "quantidades"},
		{"Descrição", "descricao"},
		{"Data Bipagem", "data bipagem"},
		{"ÀÉÎÕÜ ç", "aeiou c"},
		{"🙂", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sheet.NormalizeHeader(tt.in))
		})
	}
}

func TestNewTable(t *testing.T) {
	table := sheet.NewTable(
		[]string{"Nome", "Código Interno", "codigo interno", "EAN"},
		[][]string{
			{"Caneta", "A1", "ignored", "111"},
			{"Lápis", "A2"},
		},
	)

	assert.Equal(t, []string{"nome", "codigo interno", "codigo interno", "ean"}, table.Header())
	assert.Equal(t, 2, table.Len())
	assert.True(t, table.HasColumn("ean"))
	assert.False(t, table.HasColumn("fornecedor"))

	assert.Equal(t, "A1", table.Value(0, "codigo interno"), "leftmost duplicate column wins")
	assert.Equal(t, "111", table.Value(0, "ean"))
	assert.Equal(t, "", table.Value(1, "ean"), "short rows read as empty")
	assert.Equal(t, "", table.Value(0, "fornecedor"))
	assert.Equal(t, "", table.Value(5, "nome"))
}
