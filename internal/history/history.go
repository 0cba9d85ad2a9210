// Package history keeps the per-session "recently viewed" and "recently
// ordered" product stubs used as recommendation signals.
package history

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/loganlanou/storefront/internal/localstore"
	"github.com/loganlanou/storefront/internal/types"
)

// DefaultLimit caps each list.
const DefaultLimit = 20

type Recorder struct {
	store *localstore.Store
	limit int
	now   func() time.Time
}

func NewRecorder(store *localstore.Store, limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{
		store: store,
		limit: limit,
		now:   time.Now,
	}
}

// Viewed returns the session's recently viewed stubs, newest first. A missing
// or unreadable list is treated as empty.
func (r *Recorder) Viewed(ctx context.Context, sessionID string) ([]types.ViewedStub, error) {
	var viewed []types.ViewedStub
	if err := load(ctx, r.store, sessionID, localstore.KeyRecentlyViewed, &viewed); err != nil {
		return nil, err
	}
	return viewed, nil
}

// Ordered returns the session's recently ordered stubs, newest first, with
// the same handling of unreadable lists as Viewed.
func (r *Recorder) Ordered(ctx context.Context, sessionID string) ([]types.OrderedStub, error) {
	var ordered []types.OrderedStub
	if err := load(ctx, r.store, sessionID, localstore.KeyRecentlyOrdered, &ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

// load reads a stub list. Corrupt data yields an empty list so the next
// write replaces it; storage failures are returned.
func load[T any](ctx context.Context, store *localstore.Store, sessionID, key string, out *[]T) error {
	_, err := store.Get(ctx, sessionID, key, out)
	if errors.Is(err, localstore.ErrCorrupt) {
		slog.Warn("discarding unreadable history", "key", key, "session_id", sessionID, "error", err)
		*out = nil
		return nil
	}
	return err
}

// RecordView puts p at the head of the recently viewed list.
func (r *Recorder) RecordView(ctx context.Context, sessionID string, p types.Product) error {
	viewed, err := r.Viewed(ctx, sessionID)
	if err != nil {
		return err
	}

	next := make([]types.ViewedStub, 0, len(viewed)+1)
	next = append(next, types.ViewedStub{
		ID:          p.ID,
		Category:    p.Category,
		SubCategory: p.SubCategory,
		AddedAt:     r.now().UnixMilli(),
	})
	for _, v := range viewed {
		if v.ID != p.ID {
			next = append(next, v)
		}
	}

	return r.store.Set(ctx, sessionID, localstore.KeyRecentlyViewed, capped(next, r.limit))
}

// RecordOrder merges ordered items into the recently ordered list. Each item
// replaces any earlier entry for the same product and moves to the head, so
// the last item of the order ends up first.
func (r *Recorder) RecordOrder(ctx context.Context, sessionID string, items []types.OrderedStub) error {
	ordered, err := r.Ordered(ctx, sessionID)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	for _, item := range items {
		kept := ordered[:0:0]
		for _, o := range ordered {
			if o.ProductID != item.ProductID {
				kept = append(kept, o)
			}
		}
		if item.Date.IsZero() {
			item.Date = now
		}
		ordered = append([]types.OrderedStub{item}, kept...)
	}

	return r.store.Set(ctx, sessionID, localstore.KeyRecentlyOrdered, capped(ordered, r.limit))
}

func capped[T any](s []T, limit int) []T {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
