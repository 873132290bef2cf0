package catalog

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MalformedRecordError marks a single unusable catalog record. Batch
// normalization skips these and continues.
type MalformedRecordError struct {
	Source string
	Field  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: bad %s", e.Source, e.Field)
}

// rawRecord is the least-common decode target for both catalog shapes.
// Source A carries image + rating.rate; source B carries thumbnail, a flat
// rating, and a real stock count.
type rawRecord struct {
	ID          *int64          `json:"id"`
	Title       string          `json:"title"`
	Price       *float64        `json:"price"`
	Image       string          `json:"image"`
	Thumbnail   string          `json:"thumbnail"`
	Category    string          `json:"category"`
	Rating      json.RawMessage `json:"rating"`
	Description string          `json:"description"`
	Stock       *int            `json:"stock"`
}

// normalize maps a raw catalog record into the internal Product shape,
// prefixing the id with the source tag.
func normalize(sourceTag string, rec rawRecord) (Product, error) {
	if rec.ID == nil {
		return Product{}, &MalformedRecordError{Source: sourceTag, Field: "id"}
	}
	if strings.TrimSpace(rec.Title) == "" {
		return Product{}, &MalformedRecordError{Source: sourceTag, Field: "name"}
	}
	if rec.Price == nil || *rec.Price < 0 {
		return Product{}, &MalformedRecordError{Source: sourceTag, Field: "price"}
	}

	image := rec.Image
	if image == "" {
		image = rec.Thumbnail
	}

	stock := synthesizeStock()
	if rec.Stock != nil && *rec.Stock >= 0 {
		stock = *rec.Stock
	}

	return Product{
		ID:          sourceTag + "-" + strconv.FormatInt(*rec.ID, 10),
		Name:        rec.Title,
		Price:       decimal.NewFromFloat(*rec.Price),
		ImageURL:    image,
		Category:    capitalize(rec.Category),
		Rating:      parseRating(rec.Rating),
		Description: rec.Description,
		Stock:       stock,
	}, nil
}

func parseRating(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var flat float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return clampRating(flat)
	}
	var nested struct {
		Rate float64 `json:"rate"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return clampRating(nested.Rate)
	}
	return 0
}

func clampRating(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 5 {
		return 5
	}
	return value
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	r, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(r)) + value[size:]
}

// synthesizeStock stands in for sources that carry no inventory feed.
func synthesizeStock() int {
	return rand.Intn(50) + 1
}
