package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64    { return &v }
func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int          { return &v }

func TestNormalizeFakeStoreRecord(t *testing.T) {
	record := rawRecord{
		ID:          int64Ptr(7),
		Title:       "Mens Cotton Jacket",
		Price:       floatPtr(55.99),
		Image:       "https://example.test/jacket.jpg",
		Category:    "men's clothing",
		Rating:      json.RawMessage(`{"rate":4.7,"count":500}`),
		Description: "great outerwear",
	}

	product, err := normalize(SourceFakeStore, record)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if product.ID != "fake-7" {
		t.Fatalf("expected source-prefixed id, got %q", product.ID)
	}
	if !product.Price.Equal(decimal.NewFromFloat(55.99)) {
		t.Fatalf("unexpected price %s", product.Price)
	}
	if product.Category != "Men's clothing" {
		t.Fatalf("expected capitalized category, got %q", product.Category)
	}
	if product.Rating != 4.7 {
		t.Fatalf("expected nested rating extracted, got %f", product.Rating)
	}
	if product.ImageURL != "https://example.test/jacket.jpg" {
		t.Fatalf("unexpected image url %q", product.ImageURL)
	}
	if product.Stock < 1 || product.Stock > 50 {
		t.Fatalf("synthesized stock out of range: %d", product.Stock)
	}
}

func TestNormalizeDummyJSONRecord(t *testing.T) {
	record := rawRecord{
		ID:        int64Ptr(3),
		Title:     "Powder Canister",
		Price:     floatPtr(14.99),
		Thumbnail: "https://example.test/canister.jpg",
		Category:  "beauty",
		Rating:    json.RawMessage(`2.56`),
		Stock:     intPtr(24),
	}

	product, err := normalize(SourceDummyJSON, record)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if product.ID != "dummy-3" {
		t.Fatalf("expected source-prefixed id, got %q", product.ID)
	}
	if product.ImageURL != "https://example.test/canister.jpg" {
		t.Fatalf("expected thumbnail used as image, got %q", product.ImageURL)
	}
	if product.Rating != 2.56 {
		t.Fatalf("expected flat rating, got %f", product.Rating)
	}
	if product.Stock != 24 {
		t.Fatalf("expected source stock preserved, got %d", product.Stock)
	}
	if product.Category != "Beauty" {
		t.Fatalf("expected capitalized category, got %q", product.Category)
	}
}

func TestNormalizeRejectsMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		record rawRecord
		field  string
	}{
		{
			name:   "missing id",
			record: rawRecord{Title: "thing", Price: floatPtr(1)},
			field:  "id",
		},
		{
			name:   "blank name",
			record: rawRecord{ID: int64Ptr(1), Title: "   ", Price: floatPtr(1)},
			field:  "name",
		},
		{
			name:   "missing price",
			record: rawRecord{ID: int64Ptr(1), Title: "thing"},
			field:  "price",
		},
		{
			name:   "negative price",
			record: rawRecord{ID: int64Ptr(1), Title: "thing", Price: floatPtr(-2)},
			field:  "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalize(SourceFakeStore, tt.record)
			var malformed *MalformedRecordError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedRecordError, got %v", err)
			}
			if malformed.Field != tt.field {
				t.Fatalf("expected field %q flagged, got %q", tt.field, malformed.Field)
			}
		})
	}
}

func TestNormalizeClampsRating(t *testing.T) {
	record := rawRecord{
		ID:     int64Ptr(9),
		Title:  "thing",
		Price:  floatPtr(1),
		Rating: json.RawMessage(`9.9`),
	}
	product, err := normalize(SourceDummyJSON, record)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if product.Rating != 5 {
		t.Fatalf("expected rating clamped to 5, got %f", product.Rating)
	}
}

func TestSplitProductID(t *testing.T) {
	tag, nativeID, err := splitProductID("dummy-42")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if tag != SourceDummyJSON || nativeID != 42 {
		t.Fatalf("unexpected split %q %d", tag, nativeID)
	}

	if _, _, err := splitProductID("42"); err == nil {
		t.Fatalf("expected error for untagged id")
	}
	if _, _, err := splitProductID("mock-42"); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
	if _, _, err := splitProductID("fake-abc"); err == nil {
		t.Fatalf("expected error for non-numeric native id")
	}
}
