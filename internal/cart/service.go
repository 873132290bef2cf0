package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/jvales/shopstate/internal/catalog"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/events"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
	"github.com/shopspring/decimal"
)

// Line couples a normalized product with the quantity held in the cart.
// At most one line exists per product id; quantity never drops below 1.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type stateStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, value any) error
}

// ServiceParams groups dependencies for the cart manager.
type ServiceParams struct {
	Store  stateStore
	Hub    *events.Hub
	Logger *logger.Logger
}

// Service owns the in-memory cart and mirrors every mutation to the store.
type Service interface {
	Lines(ctx context.Context) []Line
	TotalPrice(ctx context.Context) decimal.Decimal
	Add(ctx context.Context, product catalog.Product, quantity int) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

type service struct {
	mu    sync.Mutex
	lines []Line
	store stateStore
	hub   *events.Hub
	logg  *logger.Logger
}

// NewService restores the cart from the store and returns the manager.
func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}

	s := &service{
		store: params.Store,
		hub:   params.Hub,
		logg:  params.Logger,
	}
	if _, err := params.Store.Get(ctx, kv.KeyCart, &s.lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore cart")
	}
	return s, nil
}

// Lines returns a snapshot of the cart in insertion order.
func (s *service) Lines(ctx context.Context) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// TotalPrice recomputes the cart total on every read; it is never cached.
func (s *service) TotalPrice(ctx context.Context) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Add merges into an existing line by product id or appends a new one.
// A zero quantity defaults to 1; requests beyond known stock are rejected
// with the cart unchanged.
func (s *service) Add(ctx context.Context, product catalog.Product, quantity int) error {
	if product.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := quantity
	index := s.indexOf(product.ID)
	if index >= 0 {
		next = s.lines[index].Quantity + quantity
	}
	if next > product.Stock {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product").
			WithDetails(map[string]any{"productId": product.ID, "stock": product.Stock})
	}

	if index >= 0 {
		s.lines[index].Quantity = next
	} else {
		s.lines = append(s.lines, Line{Product: product, Quantity: next})
	}

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:      events.KindCartAdded,
		ProductID: product.ID,
		Message:   product.Name + " added to cart!",
	})
	return nil
}

// UpdateQuantity sets a line's quantity exactly. Quantities below 1 are
// rejected with the stored quantity untouched; a missing id is a no-op.
func (s *service) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(productID)
	if index < 0 {
		return nil
	}
	s.lines[index].Quantity = quantity

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:      events.KindCartUpdated,
		ProductID: productID,
		Message:   "Cart updated!",
	})
	return nil
}

// Remove drops the line with the given id if present.
func (s *service) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(productID)
	if index >= 0 {
		s.lines = append(s.lines[:index], s.lines[index+1:]...)
	}

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:      events.KindCartRemoved,
		ProductID: productID,
		Message:   "Item removed from cart!",
	})
	return nil
}

// Clear empties the cart.
func (s *service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:    events.KindCartCleared,
		Message: "Cart cleared!",
	})
	return nil
}

// persist writes the full cart through to the store. Callers hold the lock.
func (s *service) persist(ctx context.Context) error {
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	if err := s.store.Put(ctx, kv.KeyCart, lines); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

func (s *service) indexOf(productID string) int {
	for i, line := range s.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}
