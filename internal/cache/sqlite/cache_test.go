package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-concierge/internal/cache"
)

func newTestCache(t *testing.T) (*sqliteCache, *time.Time) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	c, err := NewCache(dsn, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sc := c.(*sqliteCache)
	sc.now = func() time.Time { return now }
	return sc, &now
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Put(ctx, "github_/repos/o/r_auth", []byte(`{"id":1}`), 0))

	value, ok := c.Get(ctx, "github_/repos/o/r_auth")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":1}`, string(value))

	_, ok = c.Get(ctx, "github_/repos/o/r_noauth")
	assert.False(t, ok)
}

func TestSQLiteCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, now := newTestCache(t)

	require.NoError(t, c.Put(ctx, "k", []byte(`1`), time.Minute))

	*now = now.Add(59 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	*now = now.Add(time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestSQLiteCache_OverwriteDelClear(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Put(ctx, "a", []byte(`"one"`), 0))
	require.NoError(t, c.Put(ctx, "a", []byte(`"two"`), 0))
	require.NoError(t, c.Put(ctx, "b", []byte(`null`), 0))

	value, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, `"two"`, string(value))

	var decoded *int
	assert.True(t, cache.GetJSON(ctx, c, "b", &decoded), "stored null is a present value")

	require.NoError(t, c.Del(ctx, "a"))
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Clear(ctx))
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestSQLiteCache_Sweep(t *testing.T) {
	ctx := context.Background()
	c, now := newTestCache(t)

	require.NoError(t, c.Put(ctx, "short", []byte(`1`), time.Minute))
	require.NoError(t, c.Put(ctx, "long", []byte(`2`), 2*time.Hour))
	*now = now.Add(time.Hour)

	removed, err := c.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSQLiteCache_Janitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, now := newTestCache(t)

	require.NoError(t, c.Put(ctx, "short", []byte(`1`), time.Minute))
	require.NoError(t, c.Put(ctx, "long", []byte(`2`), 2*time.Hour))
	*now = now.Add(time.Hour)

	c.StartJanitor(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		var rows int
		if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&rows); err != nil {
			return false
		}
		return rows == 1
	}, time.Second, 10*time.Millisecond)

	_, ok := c.Get(ctx, "long")
	assert.True(t, ok)
}
