package catalog

import "github.com/shopspring/decimal"

// Source tags prefixed onto remote ids so they stay globally unique across
// catalogs.
const (
	SourceFakeStore = "fake"
	SourceDummyJSON = "dummy"
)

// Product is the single internal shape every catalog record is normalized
// into. Immutable once normalized; identity is ID.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Rating      float64         `json:"rating"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
}
