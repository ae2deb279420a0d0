package config

import (
	"fmt"
	"unicode/utf8"
)

type Catalog struct {
	// PublishEvents writes catalog.loaded and product.scanned outbox messages
	// in the same transaction as the change they describe.
	PublishEvents bool `env:"CATALOG_PUBLISH_EVENTS" envDefault:"false"`
}

type Export struct {
	CSVDelimiter string `env:"EXPORT_CSV_DELIMITER" envDefault:","`
	TimeFormat   string `env:"EXPORT_TIME_FORMAT" envDefault:"02/01/2006 15:04"`
}

// Delimiter returns the first rune of CSVDelimiter, falling back to a comma.
func (e Export) Delimiter() rune {
	for _, r := range e.CSVDelimiter {
		return r
	}
	return ','
}

// Validate reports whether CSVDelimiter is a single rune encoding/csv accepts
// as a field separator.
func (e Export) Validate() error {
	if e.CSVDelimiter == "" {
		return nil
	}
	if utf8.RuneCountInString(e.CSVDelimiter) != 1 {
		return fmt.Errorf("export csv delimiter %q must be a single character", e.CSVDelimiter)
	}
	switch r := e.Delimiter(); r {
	case 0, '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("export csv delimiter %q is not allowed", e.CSVDelimiter)
	}
	return nil
}
