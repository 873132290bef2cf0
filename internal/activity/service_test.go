package activity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jvales/shopstate/internal/catalog"
	"github.com/jvales/shopstate/pkg/config"
	"github.com/jvales/shopstate/pkg/kv"
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

func newTestActivity(t *testing.T, store *kv.Store) Service {
	t.Helper()
	svc, err := NewService(context.Background(), ServiceParams{Store: store})
	require.NoError(t, err)
	return svc
}

func product(id string) catalog.Product {
	return catalog.Product{ID: id, Name: "Product " + id}
}

func ids(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestRecordViewKeepsThreeMostRecent(t *testing.T) {
	ctx := context.Background()
	svc := newTestActivity(t, openTestStore(t))

	for _, id := range []string{"fake-1", "fake-2", "fake-3", "fake-4"} {
		require.NoError(t, svc.RecordView(ctx, product(id)))
	}

	require.Equal(t, []string{"fake-4", "fake-3", "fake-2"}, ids(svc.RecentlyViewed(ctx)))
}

func TestRecordViewMovesRepeatToFront(t *testing.T) {
	ctx := context.Background()
	svc := newTestActivity(t, openTestStore(t))

	for _, id := range []string{"fake-1", "fake-2", "fake-1"} {
		require.NoError(t, svc.RecordView(ctx, product(id)))
	}

	require.Equal(t, []string{"fake-1", "fake-2"}, ids(svc.RecentlyViewed(ctx)))
}

func TestToggleCompareAddsAndRemoves(t *testing.T) {
	ctx := context.Background()
	svc := newTestActivity(t, openTestStore(t))

	selection, err := svc.ToggleCompare(ctx, product("fake-1"))
	require.NoError(t, err)
	require.Equal(t, []string{"fake-1"}, ids(selection))

	selection, err = svc.ToggleCompare(ctx, product("fake-1"))
	require.NoError(t, err)
	require.Empty(t, selection)
}

func TestToggleCompareIgnoresFifthAddition(t *testing.T) {
	ctx := context.Background()
	svc := newTestActivity(t, openTestStore(t))

	for _, id := range []string{"fake-1", "fake-2", "fake-3", "fake-4"} {
		_, err := svc.ToggleCompare(ctx, product(id))
		require.NoError(t, err)
	}

	selection, err := svc.ToggleCompare(ctx, product("fake-5"))
	require.NoError(t, err)
	require.Equal(t, []string{"fake-1", "fake-2", "fake-3", "fake-4"}, ids(selection))

	// Removal still works at the cap.
	selection, err = svc.ToggleCompare(ctx, product("fake-2"))
	require.NoError(t, err)
	require.Equal(t, []string{"fake-1", "fake-3", "fake-4"}, ids(selection))
}

func TestRedirectPathIsTakenOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestActivity(t, openTestStore(t))

	require.NoError(t, svc.SetRedirectPath(ctx, "/checkout"))

	path, err := svc.TakeRedirectPath(ctx)
	require.NoError(t, err)
	require.Equal(t, "/checkout", path)

	path, err = svc.TakeRedirectPath(ctx)
	require.NoError(t, err)
	require.Equal(t, "/", path)
}

func TestActivitySurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := newTestActivity(t, store)
	require.NoError(t, first.RecordView(ctx, product("fake-1")))
	_, err := first.ToggleCompare(ctx, product("dummy-2"))
	require.NoError(t, err)

	second := newTestActivity(t, store)
	require.Equal(t, []string{"fake-1"}, ids(second.RecentlyViewed(ctx)))
	require.Equal(t, []string{"dummy-2"}, ids(second.CompareSelection(ctx)))
}
