package cart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jvales/shopstate/internal/catalog"
	"github.com/jvales/shopstate/pkg/config"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/events"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *kv.Store {
	t.Helper()
	cfg := config.StoreConfig{Path: filepath.Join(t.TempDir(), "state.db")}
	store, err := kv.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestCart(t *testing.T, store *kv.Store) Service {
	t.Helper()
	svc, err := NewService(context.Background(), ServiceParams{
		Store: store,
		Hub:   events.NewHub(),
	})
	require.NoError(t, err)
	return svc
}

func product(id, name string, price float64, stock int) catalog.Product {
	return catalog.Product{
		ID:    id,
		Name:  name,
		Price: decimal.NewFromFloat(price),
		Stock: stock,
	}
}

func TestAddMergesQuantitiesByProductID(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 2))
	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 3))

	lines := svc.Lines(ctx)
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)
}

func TestAddDefaultsZeroQuantityToOne(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 0))

	lines := svc.Lines(ctx)
	require.Len(t, lines, 1)
	require.Equal(t, 1, lines[0].Quantity)
}

func TestAddRejectsNegativeQuantity(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	err := svc.Add(ctx, product("fake-1", "Backpack", 10, 20), -1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Empty(t, svc.Lines(ctx))
}

func TestAddRejectsQuantityBeyondStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	require.NoError(t, svc.Add(ctx, product("dummy-4", "Mascara", 9.99, 3), 2))

	err := svc.Add(ctx, product("dummy-4", "Mascara", 9.99, 3), 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())

	lines := svc.Lines(ctx)
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Quantity)
}

func TestAddRejectsProductWithZeroStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	err := svc.Add(ctx, product("dummy-9", "Sold Out", 10, 0), 5)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	require.Empty(t, svc.Lines(ctx))

	err = svc.Add(ctx, product("dummy-9", "Sold Out", 10, 0), 0)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	require.Empty(t, svc.Lines(ctx))
}

func TestUpdateQuantityBelowOneLeavesCartUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 4))

	err := svc.UpdateQuantity(ctx, "fake-1", 0)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	lines := svc.Lines(ctx)
	require.Equal(t, 4, lines[0].Quantity)
}

func TestUpdateQuantityMissingIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	require.NoError(t, svc.UpdateQuantity(ctx, "fake-404", 3))
	require.Empty(t, svc.Lines(ctx))
}

func TestRemoveThenAddStartsFresh(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 5))
	require.NoError(t, svc.Remove(ctx, "fake-1"))
	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 1))

	lines := svc.Lines(ctx)
	require.Len(t, lines, 1)
	require.Equal(t, 1, lines[0].Quantity)
}

func TestTotalPriceSumsLineSubtotals(t *testing.T) {
	ctx := context.Background()
	svc := newTestCart(t, openTestStore(t))

	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 2))
	require.NoError(t, svc.Add(ctx, product("dummy-2", "Mascara", 5, 20), 3))

	require.True(t, svc.TotalPrice(ctx).Equal(decimal.NewFromInt(35)),
		"expected total 35, got %s", svc.TotalPrice(ctx))
}

func TestCartSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := newTestCart(t, store)
	require.NoError(t, first.Add(ctx, product("fake-1", "Backpack", 10, 20), 2))

	second := newTestCart(t, store)
	lines := second.Lines(ctx)
	require.Len(t, lines, 1)
	require.Equal(t, "fake-1", lines[0].Product.ID)
	require.Equal(t, 2, lines[0].Quantity)
}

func TestClearEmptiesCartAndStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	svc := newTestCart(t, store)
	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 2))
	require.NoError(t, svc.Clear(ctx))
	require.Empty(t, svc.Lines(ctx))

	restored := newTestCart(t, store)
	require.Empty(t, restored.Lines(ctx))
}

func TestAddPublishesCartEvent(t *testing.T) {
	ctx := context.Background()
	hub := events.NewHub()

	var seen []events.Event
	hub.Subscribe(func(e events.Event) { seen = append(seen, e) })

	svc, err := NewService(ctx, ServiceParams{Store: openTestStore(t), Hub: hub})
	require.NoError(t, err)

	require.NoError(t, svc.Add(ctx, product("fake-1", "Backpack", 10, 20), 1))
	require.Len(t, seen, 1)
	require.Equal(t, events.KindCartAdded, seen[0].Kind)
	require.Equal(t, "Backpack added to cart!", seen[0].Message)
}
