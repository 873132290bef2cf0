package wishlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/jvales/shopstate/internal/catalog"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/events"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
)

type stateStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, value any) error
}

// ServiceParams groups dependencies for the wishlist manager.
type ServiceParams struct {
	Store  stateStore
	Hub    *events.Hub
	Logger *logger.Logger
}

// Service owns the in-memory wishlist. Membership is by product id and
// carries no quantity.
type Service interface {
	Items(ctx context.Context) []catalog.Product
	Contains(ctx context.Context, productID string) bool
	Add(ctx context.Context, product catalog.Product) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

type service struct {
	mu    sync.Mutex
	items []catalog.Product
	store stateStore
	hub   *events.Hub
	logg  *logger.Logger
}

// NewService restores the wishlist from the store and returns the manager.
func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}

	s := &service{
		store: params.Store,
		hub:   params.Hub,
		logg:  params.Logger,
	}
	if _, err := params.Store.Get(ctx, kv.KeyWishlist, &s.items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore wishlist")
	}
	return s, nil
}

// Items returns a snapshot of the wishlist in insertion order.
func (s *service) Items(ctx context.Context) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.items...)
}

func (s *service) Contains(ctx context.Context, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

// Add is idempotent: re-adding a present product keeps the list unchanged
// and reports the duplicate through the hub instead of an error.
func (s *service) Add(ctx context.Context, product catalog.Product) error {
	if product.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(product.ID) >= 0 {
		s.hub.Publish(events.Event{
			Kind:      events.KindWishlistExists,
			ProductID: product.ID,
			Message:   "Item already in wishlist!",
		})
		return nil
	}

	s.items = append(s.items, product)
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:      events.KindWishlistAdded,
		ProductID: product.ID,
		Message:   product.Name + " added to wishlist!",
	})
	return nil
}

// Remove drops the product with the given id if present.
func (s *service) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(productID)
	if index >= 0 {
		s.items = append(s.items[:index], s.items[index+1:]...)
	}

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:      events.KindWishlistRemoved,
		ProductID: productID,
		Message:   "Item removed from wishlist!",
	})
	return nil
}

// Clear empties the wishlist.
func (s *service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:    events.KindWishlistCleared,
		Message: "Wishlist cleared!",
	})
	return nil
}

func (s *service) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []catalog.Product{}
	}
	if err := s.store.Put(ctx, kv.KeyWishlist, items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist wishlist")
	}
	return nil
}

func (s *service) indexOf(productID string) int {
	for i, item := range s.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}
