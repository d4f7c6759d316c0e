package server

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/themarr/internal/events"
	"github.com/vmunix/themarr/internal/migrations"
)

type mockComponent struct {
	name    string
	err     error
	started atomic.Bool
	stopped atomic.Bool
}

func (c *mockComponent) Name() string { return c.name }

func (c *mockComponent) Start(ctx context.Context) error {
	c.started.Store(true)
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	c.stopped.Store(true)
	return ctx.Err()
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(db))
	return db
}

func TestRunner_StartsAndStops(t *testing.T) {
	a := &mockComponent{name: "a"}
	b := &mockComponent{name: "b"}
	runner := NewRunner(nil, a, b)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	require.Eventually(t, func() bool { return a.started.Load() && b.started.Load() }, time.Second, 5*time.Millisecond)

	// Cancel and wait for clean shutdown
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean stop")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for runner to stop")
	}
	assert.True(t, a.stopped.Load())
	assert.True(t, b.stopped.Load())
}

func TestRunner_ComponentFailureStopsOthers(t *testing.T) {
	boom := errors.New("boom")
	healthy := &mockComponent{name: "healthy"}
	broken := &mockComponent{name: "broken", err: boom}

	err := NewRunner(nil, healthy, broken).Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, healthy.stopped.Load())
}

func TestNewRunner_DefaultLogger(t *testing.T) {
	runner := NewRunner(nil)
	require.NotNil(t, runner)
	require.NotNil(t, runner.logger)
	require.NoError(t, runner.Run(context.Background()), "no components returns at once")
}

func TestHTTPServer_ServesUntilCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := NewHTTPServer("127.0.0.1:0", handler, nil)
	assert.Equal(t, "http", srv.Name())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	addr, err := srv.Addr(waitCtx)
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("http server did not stop")
	}
}

func TestHTTPServer_ListenError(t *testing.T) {
	err := NewHTTPServer("256.0.0.1:bad", http.NotFoundHandler(), nil).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestPruner_RemovesOldEvents(t *testing.T) {
	db := setupTestDB(t)
	log := events.NewEventLog(db)
	ctx := context.Background()

	old := &events.RunStarted{BaseEvent: events.NewBaseEvent(events.EventRunStarted, events.EntityRun, 0), RunID: "old"}
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	_, err := log.Append(ctx, old)
	require.NoError(t, err)
	_, err = log.Append(ctx, &events.RunStarted{BaseEvent: events.NewBaseEvent(events.EventRunStarted, events.EntityRun, 0), RunID: "new"})
	require.NoError(t, err)

	p := NewPruner(log, 24*time.Hour, time.Hour, nil)
	assert.Equal(t, "pruner", p.Name())

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- p.Start(runCtx) }()

	require.Eventually(t, func() bool {
		evs, err := log.List(ctx, events.Query{})
		return err == nil && len(evs) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

type countingCache struct {
	calls atomic.Int32
}

func (c *countingCache) Prune(_ context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, nil
}

func TestPruner_PrunesCache(t *testing.T) {
	cache := &countingCache{}
	p := NewPruner(events.NewEventLog(setupTestDB(t)), time.Hour, 10*time.Millisecond, nil, WithCache(cache))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	require.Eventually(t, func() bool { return cache.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
