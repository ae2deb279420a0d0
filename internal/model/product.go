package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is one catalog row. (InternalCode, EAN) identifies it.
type Product struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	InternalCode string     `json:"internal_code"`
	EAN          string     `json:"ean"`
	Supplier     string     `json:"supplier"`
	Quantity     int        `json:"quantity"`
	Store        string     `json:"store"`
	Scanned      bool       `json:"scanned"`
	ScannedAt    *time.Time `json:"scanned_at"`
	Location     string     `json:"location"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Identity is the deduplication key of a catalog row.
type Identity struct {
	InternalCode string
	EAN          string
}

func (p Product) Identity() Identity {
	return Identity{InternalCode: p.InternalCode, EAN: p.EAN}
}

// MatchesCode reports whether code equals the product's EAN or internal code.
func (p Product) MatchesCode(code string) bool {
	return p.EAN == code || p.InternalCode == code
}
