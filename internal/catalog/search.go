package catalog

import (
	"strings"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
)

// MatchesSearch reports whether term is a case-insensitive substring of the
// product's name, internal code, EAN or supplier. An empty term matches all.
func MatchesSearch(p model.Product, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range []string{p.Name, p.InternalCode, p.EAN, p.Supplier} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
