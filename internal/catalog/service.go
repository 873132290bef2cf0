package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jvales/shopstate/pkg/config"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/logger"
	"github.com/jvales/shopstate/pkg/metrics"
	redispkg "github.com/jvales/shopstate/pkg/redis"
	"github.com/jvales/shopstate/pkg/retry"
)

// Cache is the optional response cache in front of the remote catalogs.
// Satisfied by pkg/redis.Client; nil disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(parts ...string) string
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Config     config.CatalogConfig
	Logger     *logger.Logger
	Cache      Cache
	Metrics    *metrics.FetchMetrics
	HTTPClient *http.Client
	Sleep      retry.Sleeper
}

// Service exposes the combined, normalized product catalog.
type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
}

type service struct {
	fake    *fakeStoreClient
	dummy   *dummyJSONClient
	cfg     config.CatalogConfig
	logg    *logger.Logger
	cache   Cache
	metrics *metrics.FetchMetrics
	sleep   retry.Sleeper
}

// NewService builds a catalog service over both remote sources.
func NewService(params ServiceParams) (Service, error) {
	if params.Config.FakeStoreBaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fakestore base url is required")
	}
	if params.Config.DummyJSONBaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dummyjson base url is required")
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Config.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &service{
		fake:    &fakeStoreClient{baseURL: params.Config.FakeStoreBaseURL, http: httpClient},
		dummy:   &dummyJSONClient{baseURL: params.Config.DummyJSONBaseURL, limit: params.Config.DummyJSONLimit, http: httpClient},
		cfg:     params.Config,
		logg:    params.Logger,
		cache:   params.Cache,
		metrics: params.Metrics,
		sleep:   params.Sleep,
	}, nil
}

// ListProducts returns the normalized union of both catalogs, source A
// first. Malformed records are skipped, never fatal.
func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	if cached, ok := s.cacheGet(ctx, "products"); ok {
		return cached, nil
	}

	fakeRecords, err := fetchSource(ctx, s, SourceFakeStore, s.fake.ListProducts)
	if err != nil {
		return nil, err
	}
	dummyRecords, err := fetchSource(ctx, s, SourceDummyJSON, s.dummy.ListProducts)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(fakeRecords)+len(dummyRecords))
	products = append(products, s.normalizeBatch(ctx, SourceFakeStore, fakeRecords)...)
	products = append(products, s.normalizeBatch(ctx, SourceDummyJSON, dummyRecords)...)

	s.cacheSet(ctx, "products", products)
	return products, nil
}

// GetProduct resolves a single prefixed product id against its source.
func (s *service) GetProduct(ctx context.Context, id string) (Product, error) {
	tag, nativeID, err := splitProductID(id)
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id format")
	}

	if cached, ok := s.cacheGet(ctx, "product", id); ok && len(cached) == 1 {
		return cached[0], nil
	}

	var record rawRecord
	switch tag {
	case SourceFakeStore:
		record, err = fetchSource(ctx, s, tag, func(ctx context.Context) (rawRecord, error) {
			return s.fake.GetProduct(ctx, nativeID)
		})
	default:
		record, err = fetchSource(ctx, s, tag, func(ctx context.Context) (rawRecord, error) {
			return s.dummy.GetProduct(ctx, nativeID)
		})
	}
	if err != nil {
		return Product{}, err
	}

	product, err := normalize(tag, record)
	if err != nil {
		s.metrics.IncMalformed(tag)
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog returned an unusable record")
	}

	s.cacheSet(ctx, "product", []Product{product}, id)
	return product, nil
}

// fetchSource runs one remote call behind the bounded-backoff retry loop
// and converts exhaustion into a user-facing error.
func fetchSource[T any](ctx context.Context, s *service, source string, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	result, err := retry.Do(ctx, func(ctx context.Context) (T, error) {
		attempt++
		if attempt > 1 {
			s.metrics.IncRetry(source)
		}
		s.metrics.IncAttempt(source)
		return op(ctx)
	}, retry.Options{
		MaxRetries:   s.cfg.MaxRetries,
		InitialDelay: s.cfg.InitialDelay,
		Sleep:        s.sleep,
	})
	if err == nil {
		return result, nil
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		s.metrics.IncExhausted(source)
		var status *statusError
		if errors.As(exhausted.Last, &status) && status.Status == http.StatusNotFound {
			return result, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog is unreachable, please try again").
			WithDetails(map[string]any{"source": source, "attempts": exhausted.Attempts})
	}
	return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog fetch aborted")
}

func (s *service) normalizeBatch(ctx context.Context, source string, records []rawRecord) []Product {
	products := make([]Product, 0, len(records))
	for _, record := range records {
		product, err := normalize(source, record)
		if err != nil {
			s.metrics.IncMalformed(source)
			if s.logg != nil {
				s.logg.Warn(s.logg.WithSource(ctx, source), "skipping malformed catalog record")
			}
			continue
		}
		products = append(products, product)
	}
	return products
}

func (s *service) cacheGet(ctx context.Context, parts ...string) ([]Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, s.cache.CatalogKey(parts...))
	if err != nil {
		if !errors.Is(err, redispkg.Nil) && s.logg != nil {
			s.logg.Warn(ctx, "catalog cache read failed")
		}
		return nil, false
	}
	var products []Product
	if err := json.Unmarshal([]byte(payload), &products); err != nil {
		return nil, false
	}
	return products, true
}

func (s *service) cacheSet(ctx context.Context, kind string, products []Product, extra ...string) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return
	}
	parts := append([]string{kind}, extra...)
	if err := s.cache.Set(ctx, s.cache.CatalogKey(parts...), string(payload), s.cfg.CacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog cache write failed")
	}
}
