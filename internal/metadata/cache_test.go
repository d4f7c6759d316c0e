package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/themarr/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(db))
	return db
}

// testCache returns a cache whose clock the test controls.
func testCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache(setupTestDB(t))
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_GetSet_RoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	value := []byte(`{"id": 73739, "name": "Lost"}`)
	require.NoError(t, cache.Set(ctx, "k", value, time.Hour))

	got, ok := cache.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, value, got)
}

func TestCache_Get_NotFound(t *testing.T) {
	cache, _ := testCache(t)

	got, ok := cache.Get(context.Background(), "missing")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_Get_Expired(t *testing.T) {
	cache, now := testCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))

	*now = now.Add(59 * time.Second)
	_, ok := cache.Get(ctx, "k")
	assert.True(t, ok, "still fresh")

	*now = now.Add(time.Second)
	_, ok = cache.Get(ctx, "k")
	assert.False(t, ok, "expired at exactly the ttl")
}

func TestCache_Set_OverwriteExtendsTTL(t *testing.T) {
	cache, now := testCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("first"), time.Minute))
	*now = now.Add(30 * time.Second)
	require.NoError(t, cache.Set(ctx, "k", []byte("second"), time.Hour))
	*now = now.Add(5 * time.Minute)

	got, ok := cache.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, cache.Delete(ctx, "k"), "deleting a missing key")
}

func TestCache_Prune(t *testing.T) {
	cache, now := testCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, cache.Set(ctx, "long", []byte("v"), time.Hour))

	*now = now.Add(10 * time.Minute)
	n, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok := cache.Get(ctx, "long")
	assert.True(t, ok)
}

func TestCache_JSONHelpers(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, setJSON(ctx, cache, "ids", []int64{1, 2, 3}, time.Hour))
	got, ok := getJSON[[]int64](ctx, cache, "ids")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, got)

	require.NoError(t, cache.Set(ctx, "bad", []byte("not json"), time.Hour))
	_, ok = getJSON[[]int64](ctx, cache, "bad")
	assert.False(t, ok, "undecodable entries are misses")
}
