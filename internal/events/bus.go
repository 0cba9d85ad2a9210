// Package events fans cart and storage changes out to the open tabs of a
// browser session.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// TopicStorage fires whenever a session's local storage entry is written.
	TopicStorage = "storage"
	// TopicCartUpdated fires when a guest cart is explicitly cleared.
	TopicCartUpdated = "cartUpdated"
)

type Event struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	SessionID string    `json:"sessionId"`
	Key       string    `json:"key,omitempty"`
	Value     string    `json:"value,omitempty"`
	At        time.Time `json:"at"`
}

type Handler func(context.Context, Event) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[uint64]Handler
	nextID   uint64
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[uint64]Handler)}
}

// Publish delivers ev to every handler subscribed to its topic. Handler
// errors are logged, never returned to the publisher.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[ev.Topic]))
	for _, h := range b.handlers[ev.Topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			slog.Warn("event handler failed", "topic", ev.Topic, "session_id", ev.SessionID, "error", err)
		}
	}
}

// Subscribe registers h for topic and returns a func that removes it.
func (b *Bus) Subscribe(topic string, h Handler) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[uint64]Handler)
	}
	b.handlers[topic][id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[topic], id)
			if len(b.handlers[topic]) == 0 {
				delete(b.handlers, topic)
			}
		})
	}
}

// Stream subscribes to the given topics for a single session and returns a
// buffered channel of matching events. Events are dropped when the buffer is
// full. The channel is closed after ctx is done.
func (b *Bus) Stream(ctx context.Context, sessionID string, buffer int, topics ...string) <-chan Event {
	ch := make(chan Event, buffer)
	var mu sync.Mutex
	closed := false

	deliver := func(_ context.Context, ev Event) error {
		if ev.SessionID != sessionID {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return nil
		}
		select {
		case ch <- ev:
		default:
			slog.Debug("dropping event for slow subscriber", "topic", ev.Topic, "session_id", sessionID)
		}
		return nil
	}

	cancels := make([]func(), 0, len(topics))
	for _, topic := range topics {
		cancels = append(cancels, b.Subscribe(topic, deliver))
	}

	go func() {
		<-ctx.Done()
		for _, cancel := range cancels {
			cancel()
		}
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
