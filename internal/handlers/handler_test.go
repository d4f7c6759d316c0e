package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/themarr/internal/events"
)

var _ Handler = (*NotifyHandler)(nil)

func TestBaseHandler_Fields(t *testing.T) {
	bus := events.NewBus(nil, nil)
	defer func() { _ = bus.Close() }()

	base := NewBaseHandler(bus, "test", nil)
	assert.Same(t, bus, base.Bus())
	assert.NotNil(t, base.Logger())
}

func TestBaseHandler_Consume(t *testing.T) {
	bus := events.NewBus(nil, nil)
	defer func() { _ = bus.Close() }()

	base := NewBaseHandler(bus, "test", nil)
	got := make(chan events.Event, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- base.Consume(ctx, events.EventRunStarted, 10, func(_ context.Context, e events.Event) {
			got <- e
		})
	}()

	// Publish until the subscription is live.
	require.Eventually(t, func() bool {
		_ = bus.Publish(context.Background(), &events.RunStarted{
			BaseEvent: events.NewBaseEvent(events.EventRunStarted, events.EntityRun, 0),
			RunID:     "run-1",
		})
		return len(got) > 0
	}, time.Second, 5*time.Millisecond)

	// Other types are not delivered.
	_ = bus.Publish(context.Background(), &events.RunFinished{
		BaseEvent: events.NewBaseEvent(events.EventRunFinished, events.EntityRun, 0),
	})

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	for len(got) > 0 {
		e := <-got
		assert.Equal(t, events.EventRunStarted, e.EventType())
	}
}

func TestBaseHandler_Consume_BusClosed(t *testing.T) {
	bus := events.NewBus(nil, nil)
	base := NewBaseHandler(bus, "test", nil)

	done := make(chan error, 1)
	go func() {
		done <- base.Consume(context.Background(), events.EventRunStarted, 1, func(context.Context, events.Event) {})
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, bus.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Consume did not return after bus close")
	}
}
