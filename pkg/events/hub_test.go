package events

import "testing"

func TestHubFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub()

	var first, second []Event
	hub.Subscribe(func(e Event) { first = append(first, e) })
	hub.Subscribe(func(e Event) { second = append(second, e) })

	hub.Publish(Event{Kind: KindCartAdded, ProductID: "fake-1", Message: "Widget added to cart!"})

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected both subscribers notified, got %d and %d", len(first), len(second))
	}
	if first[0].Kind != KindCartAdded || first[0].ProductID != "fake-1" {
		t.Fatalf("unexpected event %+v", first[0])
	}
}

func TestNilHubDropsEvents(t *testing.T) {
	var hub *Hub
	hub.Publish(Event{Kind: KindCartCleared})
}

func TestNilHandlerIgnored(t *testing.T) {
	hub := NewHub()
	hub.Subscribe(nil)
	hub.Publish(Event{Kind: KindWishlistCleared})
}
