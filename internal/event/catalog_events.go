package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicCatalogLoaded  = "catalog.loaded"
	TopicProductScanned = "product.scanned"
)

// ScanSource tells how a product came to be scanned.
type ScanSource string

const (
	ScanSourceManual ScanSource = "manual"
	ScanSourceImport ScanSource = "import"
)

type CatalogLoadedEvent struct {
	Store    string    `json:"store"`
	Mode     string    `json:"mode"`
	Inserted int       `json:"inserted"`
	Total    int       `json:"total"`
	LoadedAt time.Time `json:"loaded_at"`
}

type ProductScannedEvent struct {
	ProductID    uuid.UUID  `json:"product_id"`
	InternalCode string     `json:"internal_code"`
	EAN          string     `json:"ean"`
	Store        string     `json:"store"`
	Location     string     `json:"location"`
	ScannedAt    time.Time  `json:"scanned_at"`
	Source       ScanSource `json:"source"`
}
