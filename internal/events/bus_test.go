package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishFansOutToTopic(t *testing.T) {
	bus := NewBus()

	var got []Event
	cancel := bus.Subscribe(TopicStorage, func(_ context.Context, ev Event) error {
		got = append(got, ev)
		return nil
	})
	defer cancel()

	bus.Publish(context.Background(), Event{Topic: TopicStorage, SessionID: "s1", Key: "cart"})
	bus.Publish(context.Background(), Event{Topic: TopicCartUpdated, SessionID: "s1"})

	require.Len(t, got, 1)
	assert.Equal(t, "cart", got[0].Key)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].At.IsZero())
}

func TestHandlerErrorDoesNotStopFanOut(t *testing.T) {
	bus := NewBus()

	calls := 0
	defer bus.Subscribe(TopicStorage, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})()
	defer bus.Subscribe(TopicStorage, func(context.Context, Event) error {
		calls++
		return nil
	})()

	bus.Publish(context.Background(), Event{Topic: TopicStorage})
	assert.Equal(t, 2, calls)
}

func TestCancelRemovesOnlyThatHandler(t *testing.T) {
	bus := NewBus()

	first := bus.Subscribe(TopicCartUpdated, func(context.Context, Event) error { return nil })
	second := bus.Subscribe(TopicCartUpdated, func(context.Context, Event) error { return nil })
	assert.Equal(t, 2, bus.Subscribers(TopicCartUpdated))

	first()
	first()
	assert.Equal(t, 1, bus.Subscribers(TopicCartUpdated))

	second()
	assert.Equal(t, 0, bus.Subscribers(TopicCartUpdated))
}

func TestStreamFiltersBySession(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch := bus.Stream(ctx, "mine", 4, TopicStorage, TopicCartUpdated)

	bus.Publish(ctx, Event{Topic: TopicStorage, SessionID: "other", Key: "cart"})
	bus.Publish(ctx, Event{Topic: TopicStorage, SessionID: "mine", Key: "cart"})
	bus.Publish(ctx, Event{Topic: TopicCartUpdated, SessionID: "mine"})

	select {
	case ev := <-ch:
		assert.Equal(t, TopicStorage, ev.Topic)
		assert.Equal(t, "mine", ev.SessionID)
	case <-time.After(time.Second):
		t.Fatal("expected storage event")
	}
	select {
	case ev := <-ch:
		assert.Equal(t, TopicCartUpdated, ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("expected cartUpdated event")
	}

	cancel()
	for range ch {
	}
	assert.Eventually(t, func() bool {
		return bus.Subscribers(TopicStorage) == 0 && bus.Subscribers(TopicCartUpdated) == 0
	}, time.Second, 10*time.Millisecond)
}
