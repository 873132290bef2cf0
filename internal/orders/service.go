package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jvales/shopstate/internal/cart"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/events"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
	"github.com/shopspring/decimal"
)

// Order is an immutable record of a checkout. Items is a snapshot of the
// cart lines at placement time and never changes afterwards.
type Order struct {
	ID         int64           `json:"id"`
	Date       string          `json:"date"`
	Items      []cart.Line     `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type stateStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, value any) error
}

// ServiceParams groups dependencies for the order manager.
type ServiceParams struct {
	Store  stateStore
	Hub    *events.Hub
	Logger *logger.Logger
	Now    func() time.Time
}

// Service owns the order history, newest first.
type Service interface {
	Orders(ctx context.Context) []Order
	Place(ctx context.Context, items []cart.Line, totalPrice decimal.Decimal) (Order, error)
	Clear(ctx context.Context) error
}

type service struct {
	mu     sync.Mutex
	orders []Order
	lastID int64
	store  stateStore
	hub    *events.Hub
	logg   *logger.Logger
	now    func() time.Time
}

// NewService restores the order history from the store and returns the
// manager.
func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	s := &service{
		store: params.Store,
		hub:   params.Hub,
		logg:  params.Logger,
		now:   now,
	}
	if _, err := params.Store.Get(ctx, kv.KeyOrders, &s.orders); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore orders")
	}
	for _, order := range s.orders {
		if order.ID > s.lastID {
			s.lastID = order.ID
		}
	}
	return s, nil
}

// Orders returns a snapshot of the history, newest first.
func (s *service) Orders(ctx context.Context) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Order(nil), s.orders...)
}

// Place records a new order from the given cart lines. Line structs are
// copied, so later cart mutations never reach back into the history.
func (s *service) Place(ctx context.Context, items []cart.Line, totalPrice decimal.Decimal) (Order, error) {
	if len(items) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot place an order with an empty cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placedAt := s.now()
	id := placedAt.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}

	order := Order{
		ID:         id,
		Date:       placedAt.Format("1/2/2006, 3:04:05 PM"),
		Items:      append([]cart.Line(nil), items...),
		TotalPrice: totalPrice,
	}

	s.orders = append([]Order{order}, s.orders...)

	if err := s.persist(ctx); err != nil {
		s.orders = s.orders[1:]
		return Order{}, err
	}
	s.lastID = id
	s.hub.Publish(events.Event{
		Kind:    events.KindOrderPlaced,
		Message: "Order placed successfully!",
	})
	return order, nil
}

// Clear wipes the order history.
func (s *service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = nil

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.hub.Publish(events.Event{
		Kind:    events.KindOrdersCleared,
		Message: "Order history cleared!",
	})
	return nil
}

func (s *service) persist(ctx context.Context) error {
	orders := s.orders
	if orders == nil {
		orders = []Order{}
	}
	if err := s.store.Put(ctx, kv.KeyOrders, orders); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist orders")
	}
	return nil
}
