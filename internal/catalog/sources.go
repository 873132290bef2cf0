package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// statusError marks a non-success response from a catalog source.
type statusError struct {
	Source string
	Status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s catalog returned status %d", e.Source, e.Status)
}

// fakeStoreClient talks to catalog source A: flat product arrays, image +
// nested rating.rate fields.
type fakeStoreClient struct {
	baseURL string
	http    *http.Client
}

func (c *fakeStoreClient) ListProducts(ctx context.Context) ([]rawRecord, error) {
	var records []rawRecord
	if err := c.getJSON(ctx, c.baseURL+"/products", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *fakeStoreClient) GetProduct(ctx context.Context, nativeID int64) (rawRecord, error) {
	var record rawRecord
	if err := c.getJSON(ctx, c.baseURL+"/products/"+strconv.FormatInt(nativeID, 10), &record); err != nil {
		return rawRecord{}, err
	}
	return record, nil
}

func (c *fakeStoreClient) getJSON(ctx context.Context, url string, dest any) error {
	return getJSON(ctx, c.http, SourceFakeStore, url, dest)
}

// dummyJSONClient talks to catalog source B: products wrapped in an
// envelope, thumbnail images, flat ratings, real stock counts.
type dummyJSONClient struct {
	baseURL string
	limit   int
	http    *http.Client
}

type dummyJSONEnvelope struct {
	Products []rawRecord `json:"products"`
}

func (c *dummyJSONClient) ListProducts(ctx context.Context) ([]rawRecord, error) {
	limit := c.limit
	if limit <= 0 {
		limit = 100
	}
	var envelope dummyJSONEnvelope
	url := fmt.Sprintf("%s/products?limit=%d", c.baseURL, limit)
	if err := c.getJSON(ctx, url, &envelope); err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

func (c *dummyJSONClient) GetProduct(ctx context.Context, nativeID int64) (rawRecord, error) {
	var record rawRecord
	if err := c.getJSON(ctx, c.baseURL+"/products/"+strconv.FormatInt(nativeID, 10), &record); err != nil {
		return rawRecord{}, err
	}
	return record, nil
}

func (c *dummyJSONClient) getJSON(ctx context.Context, url string, dest any) error {
	return getJSON(ctx, c.http, SourceDummyJSON, url, dest)
}

func getJSON(ctx context.Context, client *http.Client, source, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s catalog: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Source: source, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding %s response: %w", source, err)
	}
	return nil
}

// splitProductID separates a prefixed product id into its source tag and
// native id.
func splitProductID(id string) (string, int64, error) {
	tag, rest, found := strings.Cut(id, "-")
	if !found {
		return "", 0, fmt.Errorf("missing source tag")
	}
	if tag != SourceFakeStore && tag != SourceDummyJSON {
		return "", 0, fmt.Errorf("unknown source tag %q", tag)
	}
	nativeID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid native id %q", rest)
	}
	return tag, nativeID, nil
}
