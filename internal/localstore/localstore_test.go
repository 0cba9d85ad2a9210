package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/loganlanou/storefront/internal/events"
	"github.com/loganlanou/storefront/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, bus *events.Bus) *Store {
	t.Helper()
	_, queries, cleanup, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return New(queries, bus)
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t, nil)

	var v []string
	ok, err := s.Get(context.Background(), "s1", KeyCart, &v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestGetWrongShapeIsCorrupt(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "s1", KeyRecentlyViewed, "not a list"))

	var v []string
	_, err := s.Get(ctx, "s1", KeyRecentlyViewed, &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSetBroadcastsStorageEvent(t *testing.T) {
	bus := events.NewBus()
	s := newTestStore(t, bus)

	var got []events.Event
	defer bus.Subscribe(events.TopicStorage, func(_ context.Context, ev events.Event) error {
		got = append(got, ev)
		return nil
	})()

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "s1", KeyRecentlyViewed, []string{"a", "b"}))

	var v []string
	ok, err := s.Get(ctx, "s1", KeyRecentlyViewed, &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, KeyRecentlyViewed, got[0].Key)
	assert.JSONEq(t, `["a","b"]`, got[0].Value)
}

func TestRemoveAndPrune(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, "old", KeyCart, []int{}))
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, s.Set(ctx, "new", KeyCart, []int{}))
	require.NoError(t, s.Set(ctx, "new", KeyRecentlyOrdered, []int{}))

	require.NoError(t, s.Remove(ctx, "new", KeyRecentlyOrdered))
	keys, err := s.Keys(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, []string{KeyCart}, keys)

	n, err := s.PruneBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sessions)
}
