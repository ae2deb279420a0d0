package sheet_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
	"github.com/tuanvumaihuynh/bipagem/internal/sheet"
	"github.com/tuanvumaihuynh/bipagem/pkg/zerror"
)

func TestReadCSV(t *testing.T) {
	t.Run("Should sniff semicolon delimiter", func(t *testing.T) {
		in := "Nome;Código Interno;EAN\n\"Caneta; azul\";A1;111\n;;\nLápis;A2;222\n"

		table, err := sheet.ReadCSV(strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, 2, table.Len(), "blank rows are dropped")
		assert.Equal(t, "Caneta; azul", table.Value(0, "nome"))
		assert.Equal(t, "222", table.Value(1, "ean"))
	})

	t.Run("Should read comma delimited with BOM", func(t *testing.T) {
		in := "\xEF\xBB\xBFnome,codigo interno,ean\nCaneta,A1,111\n"

		table, err := sheet.ReadCSV(strings.NewReader(in))
		require.NoError(t, err)

		assert.True(t, table.HasColumn("nome"))
		assert.Equal(t, "A1", table.Value(0, "codigo interno"))
	})

	t.Run("Should decode Windows-1252", func(t *testing.T) {
		utf8Text := "Nome;Código Interno;EAN\nSabão;A1;111\n"
		encoded, err := charmap.Windows1252.NewEncoder().String(utf8Text)
		require.NoError(t, err)

		table, err := sheet.ReadCSV(strings.NewReader(encoded))
		require.NoError(t, err)

		assert.True(t, table.HasColumn("codigo interno"))
		assert.Equal(t, "Sabão", table.Value(0, "nome"))
	})

	t.Run("Should accept empty input", func(t *testing.T) {
		table, err := sheet.ReadCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("Should report read failures as unreadable", func(t *testing.T) {
		_, err := sheet.ReadCSV(iotest.ErrReader(errors.New("connection reset")))
		assert.True(t, zerror.HasCode(err, apperr.UnreadableSheetErrorCode))
	})
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &[]any{"Nome", "Código Interno", "EAN", "Quantidades"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]any{"Caneta", "A1", 7891234567890, 3}))
	require.NoError(t, f.SetSheetRow(sheetName, "A4", &[]any{"Lápis", "A2", "222"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := sheet.ReadFile(&buf, "catalogo.XLSX")
	require.NoError(t, err)

	assert.Equal(t, []string{"nome", "codigo interno", "ean", "quantidades"}, table.Header())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "7891234567890", table.Value(0, "ean"))
	assert.Equal(t, "3", table.Value(0, "quantidades"))
	assert.Equal(t, "A2", table.Value(1, "codigo interno"))
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := sheet.ReadXLSX(strings.NewReader("not a workbook"))
	assert.True(t, zerror.HasCode(err, apperr.UnreadableSheetErrorCode))
}

func TestFormatFromFilename(t *testing.T) {
	f, err := sheet.FormatFromFilename("scans.csv")
	require.NoError(t, err)
	assert.Equal(t, sheet.FormatCSV, f)

	_, err = sheet.FormatFromFilename("scans.xls")
	assert.True(t, zerror.HasCode(err, apperr.UnsupportedFileErrorCode))

	_, err = sheet.FormatFromFilename("")
	assert.True(t, zerror.HasCode(err, apperr.UnsupportedFileErrorCode))
}

func TestFormatFromContentType(t *testing.T) {
	f, ok := sheet.FormatFromContentType("text/csv; charset=utf-8")
	assert.True(t, ok)
	assert.Equal(t, sheet.FormatCSV, f)

	f, ok = sheet.FormatFromContentType(sheet.ContentTypeXLSX)
	assert.True(t, ok)
	assert.Equal(t, sheet.FormatXLSX, f)

	_, ok = sheet.FormatFromContentType("text/html")
	assert.False(t, ok)
}
