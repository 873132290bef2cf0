package activity

import (
	"context"
	"fmt"
	"sync"

	"github.com/jvales/shopstate/internal/catalog"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
)

const (
	maxRecentlyViewed = 3
	maxCompare        = 4
)

type stateStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// ServiceParams groups dependencies for the browsing-activity manager.
type ServiceParams struct {
	Store  stateStore
	Logger *logger.Logger
}

// Service tracks recently viewed products, the comparison selection and
// the post-login redirect path.
type Service interface {
	RecentlyViewed(ctx context.Context) []catalog.Product
	RecordView(ctx context.Context, product catalog.Product) error
	CompareSelection(ctx context.Context) []catalog.Product
	ToggleCompare(ctx context.Context, product catalog.Product) ([]catalog.Product, error)
	SetRedirectPath(ctx context.Context, path string) error
	TakeRedirectPath(ctx context.Context) (string, error)
}

type service struct {
	mu      sync.Mutex
	viewed  []catalog.Product
	compare []catalog.Product
	store   stateStore
	logg    *logger.Logger
}

// NewService restores both lists from the store and returns the manager.
func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}

	s := &service{store: params.Store, logg: params.Logger}
	if _, err := params.Store.Get(ctx, kv.KeyRecentlyViewed, &s.viewed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore recently viewed")
	}
	if _, err := params.Store.Get(ctx, kv.KeyCompareProducts, &s.compare); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore comparison selection")
	}
	return s, nil
}

// RecentlyViewed returns the view history, most recent first.
func (s *service) RecentlyViewed(ctx context.Context) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.viewed...)
}

// RecordView moves the product to the front of the history and trims it
// to the three most recent entries.
func (s *service) RecordView(ctx context.Context, product catalog.Product) error {
	if product.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]catalog.Product, 0, len(s.viewed)+1)
	filtered = append(filtered, product)
	for _, p := range s.viewed {
		if p.ID != product.ID {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) > maxRecentlyViewed {
		filtered = filtered[:maxRecentlyViewed]
	}
	s.viewed = filtered

	if err := s.store.Put(ctx, kv.KeyRecentlyViewed, s.viewed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist recently viewed")
	}
	return nil
}

// CompareSelection returns the current comparison set in toggle order.
func (s *service) CompareSelection(ctx context.Context) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.compare...)
}

// ToggleCompare removes the product if selected, otherwise adds it. A
// fifth addition is ignored and the selection returned unchanged.
func (s *service) ToggleCompare(ctx context.Context, product catalog.Product) ([]catalog.Product, error) {
	if product.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i, p := range s.compare {
		if p.ID == product.ID {
			index = i
			break
		}
	}

	switch {
	case index >= 0:
		s.compare = append(s.compare[:index], s.compare[index+1:]...)
	case len(s.compare) < maxCompare:
		s.compare = append(s.compare, product)
	default:
		return append([]catalog.Product(nil), s.compare...), nil
	}

	if err := s.store.Put(ctx, kv.KeyCompareProducts, s.compare); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist comparison selection")
	}
	return append([]catalog.Product(nil), s.compare...), nil
}

// SetRedirectPath remembers where to send the user after login.
func (s *service) SetRedirectPath(ctx context.Context, path string) error {
	if path == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "path is required")
	}
	if err := s.store.Put(ctx, kv.KeyRedirectPath, path); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist redirect path")
	}
	return nil
}

// TakeRedirectPath returns the stored path and clears it in the same
// call. With nothing stored it falls back to the root path.
func (s *service) TakeRedirectPath(ctx context.Context) (string, error) {
	var path string
	found, err := s.store.Get(ctx, kv.KeyRedirectPath, &path)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load redirect path")
	}
	if !found || path == "" {
		return "/", nil
	}
	if err := s.store.Delete(ctx, kv.KeyRedirectPath); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear redirect path")
	}
	return path, nil
}
