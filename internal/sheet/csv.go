package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/tuanvumaihuynh/bipagem/internal/apperr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads delimited text. The delimiter is sniffed from the header line
// (semicolon, comma or tab). Input that is not valid UTF-8 is decoded as
// Windows-1252, the encoding spreadsheet programs use for Portuguese exports.
func ReadCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, apperr.UnreadableSheetErr.WrapParent(fmt.Errorf("read csv: %w", err))
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	br := bufio.NewReader(src)
	headerLine, err := br.Peek(peekSize(br))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Table{}, apperr.UnreadableSheetErr.WrapParent(fmt.Errorf("peek header: %w", err))
	}

	csvReader := csv.NewReader(br)
	csvReader.Comma = sniffDelimiter(headerLine)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return Table{}, apperr.UnreadableSheetErr.WrapParent(fmt.Errorf("csv read: %w", err))
	}
	if len(rows) == 0 {
		return NewTable(nil, nil), nil
	}

	return NewTable(rows[0], dropBlankRows(rows[1:])), nil
}

func peekSize(br *bufio.Reader) int {
	return min(br.Size(), 4096)
}

// sniffDelimiter counts candidate delimiters on the first line, outside quotes.
func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexAny(head, "\r\n"); i >= 0 {
		head = head[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, b := range head {
		switch b {
		case '"':
			inQuotes = !inQuotes
		case ';', ',', '\t':
			if !inQuotes {
				counts[rune(b)]++
			}
		}
	}

	best, bestCount := ',', 0
	for _, d := range []rune{';', ',', '\t'} {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}
