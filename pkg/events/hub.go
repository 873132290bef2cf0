package events

import "sync"

// Kind labels what a state manager just did.
type Kind string

const (
	KindCartAdded       Kind = "cart.added"
	KindCartUpdated     Kind = "cart.updated"
	KindCartRemoved     Kind = "cart.removed"
	KindCartCleared     Kind = "cart.cleared"
	KindWishlistAdded   Kind = "wishlist.added"
	KindWishlistExists  Kind = "wishlist.already_present"
	KindWishlistRemoved Kind = "wishlist.removed"
	KindWishlistCleared Kind = "wishlist.cleared"
	KindOrderPlaced     Kind = "order.placed"
	KindOrdersCleared   Kind = "orders.cleared"
)

// Event is the user-visible notification a manager publishes after a
// mutation. Message is display-ready ("X added to cart!").
type Event struct {
	Kind      Kind
	ProductID string
	Message   string
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Hub is the in-process subscribe/notify surface shared by the managers.
// The zero value is unusable; construct with NewHub.
type Hub struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a handler for every subsequent event.
func (h *Hub) Subscribe(fn Handler) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, fn)
}

// Publish fans the event out to every subscriber. A nil hub drops events,
// so managers can run without observers wired.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	handlers := make([]Handler, len(h.handlers))
	copy(handlers, h.handlers)
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}
