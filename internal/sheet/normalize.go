package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented letters and drops whatever is left outside
// ASCII, so "Código" becomes "Codigo".
func asciiFold() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
}

// NormalizeHeader maps a column header to its canonical key:
// "  Código Interno " -> "codigo interno". It never fails; a header that
// folds to nothing simply becomes an unused column.
func NormalizeHeader(header string) string {
	folded, _, err := transform.String(asciiFold(), header)
	if err != nil {
		folded = header
	}
	return strings.TrimSpace(strings.ToLower(folded))
}
