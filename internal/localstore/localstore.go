// Package localstore is the server-side stand-in for a browser's
// localStorage: JSON values keyed by session id and key name.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/loganlanou/storefront/internal/events"
	"github.com/loganlanou/storefront/storage/db"
)

const (
	KeyCart            = "cart"
	KeyRecentlyViewed  = "recentlyViewed"
	KeyRecentlyOrdered = "recentlyOrdered"
)

type Store struct {
	queries *db.Queries
	bus     *events.Bus
	now     func() time.Time
}

// New returns a Store. bus may be nil, in which case writes are not broadcast.
func New(queries *db.Queries, bus *events.Bus) *Store {
	return &Store{
		queries: queries,
		bus:     bus,
		now:     time.Now,
	}
}

// ErrCorrupt marks a stored value that is not valid JSON for its target.
var ErrCorrupt = errors.New("corrupt value")

// Get decodes the value stored under key into v. It reports false when no
// value exists.
func (s *Store) Get(ctx context.Context, sessionID, key string, v any) (bool, error) {
	row, err := s.queries.GetLocalValue(ctx, db.GetLocalValueParams{
		SessionID: sessionID,
		Key:       key,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(row.Value), v); err != nil {
		return false, fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

// Set encodes v as JSON, stores it under key and notifies the session's
// other tabs through a storage event.
func (s *Store) Set(ctx context.Context, sessionID, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	now := s.now().UnixMilli()
	if err := s.queries.SetLocalValue(ctx, db.SetLocalValueParams{
		SessionID: sessionID,
		Key:       key,
		Value:     string(raw),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.Event{
			Topic:     events.TopicStorage,
			SessionID: sessionID,
			Key:       key,
			Value:     string(raw),
		})
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, sessionID, key string) error {
	if err := s.queries.DeleteLocalValue(ctx, db.DeleteLocalValueParams{
		SessionID: sessionID,
		Key:       key,
	}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys held for a session.
func (s *Store) Keys(ctx context.Context, sessionID string) ([]string, error) {
	return s.queries.ListSessionKeys(ctx, sessionID)
}

// PruneBefore deletes every session whose newest write is older than cutoff.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.queries.DeleteStaleSessions(ctx, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

func (s *Store) Sessions(ctx context.Context) (int64, error) {
	return s.queries.CountSessions(ctx)
}
