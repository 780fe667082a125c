package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"leadfinder/cmd/internal/domain/sqlite"
	"leadfinder/cmd/internal/domain/sqlite/repository"
	"leadfinder/cmd/internal/logging"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()

	db, err := sqlite.Init(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })
	return NewSQLStore(repository.NewCacheRepository(db))
}

func newSQLCache(t *testing.T, clk *clock, ttl time.Duration) *Cache {
	t.Helper()
	return New(newSQLStore(t), Options{Enabled: true, TTL: ttl, Now: clk.Now}, logging.Discard())
}

type lead struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newSQLCache(t, newClock(), time.Hour)

	t.Run("plain string", func(t *testing.T) {
		require.True(t, c.Set(ctx, "s", "hello there"))
		v, ok := c.Get(ctx, "s")
		require.True(t, ok)
		assert.Equal(t, "hello there", v)
	})

	t.Run("string that looks like json stays a string", func(t *testing.T) {
		require.True(t, c.Set(ctx, "n", "123"))
		v, ok := c.Get(ctx, "n")
		require.True(t, ok)
		assert.Equal(t, "123", v)
	})

	t.Run("structured value", func(t *testing.T) {
		require.True(t, c.Set(ctx, "m", map[string]any{"a": 1, "b": []string{"x"}}))
		v, ok := c.Get(ctx, "m")
		require.True(t, ok)
		assert.Equal(t, map[string]any{"a": float64(1), "b": []any{"x"}}, v)
	})

	t.Run("typed decode", func(t *testing.T) {
		in := []lead{{Name: "Acme", Score: 90}, {Name: "Globex", Score: 55}}
		require.True(t, c.Set(ctx, "leads", in))

		var out []lead
		require.True(t, c.GetInto(ctx, "leads", &out))
		assert.Equal(t, in, out)
	})

	t.Run("plain text into string", func(t *testing.T) {
		require.True(t, c.Set(ctx, "email", "Dear Sir,\nhello"))
		var out string
		require.True(t, c.GetInto(ctx, "email", &out))
		assert.Equal(t, "Dear Sir,\nhello", out)
	})

	t.Run("mismatched type", func(t *testing.T) {
		var out []lead
		assert.False(t, c.GetInto(ctx, "email", &out))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.True(t, c.Set(ctx, "s", "second"))
		v, _ := c.Get(ctx, "s")
		assert.Equal(t, "second", v)
	})

	t.Run("missing", func(t *testing.T) {
		v, ok := c.Get(ctx, "missing")
		assert.False(t, ok)
		assert.Nil(t, v)
	})
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := newSQLCache(t, clk, time.Hour)

	require.True(t, c.Set(ctx, "k", "v"))

	clk.Advance(59 * time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok, "entry should still be fresh")

	clk.Advance(time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "entry is stale once created_at + ttl is reached")

	require.True(t, c.Set(ctx, "fresh", "v"))
	n, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, ok = c.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := newSQLCache(t, newClock(), time.Hour)

	require.True(t, c.Set(ctx, "a", "1"))
	require.True(t, c.Set(ctx, "b", "2"))

	assert.True(t, c.Clear(ctx, "a"))
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.True(t, ok)

	require.True(t, c.Set(ctx, "c", "3"))
	assert.True(t, c.Clear(ctx, ""))
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.False(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)
	c := New(store, Options{Enabled: false}, logging.Discard())

	assert.False(t, c.Enabled())
	assert.False(t, c.Set(ctx, "k", "v"))
	assert.False(t, c.Clear(ctx, "k"))
	assert.False(t, c.Clear(ctx, ""))

	require.NoError(t, store.Put(ctx, "k", "v", time.Now()))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok, "disabled cache must not read existing entries")

	var s string
	assert.False(t, c.GetInto(ctx, "k", &s))
}

type failingStore struct{}

var errStore = errors.New("store down")

func (failingStore) Put(context.Context, string, string, time.Time) error { return errStore }

func (failingStore) Fetch(context.Context, string, time.Time) (string, bool, error) {
	return "", false, errStore
}

func (failingStore) Delete(context.Context, string) (bool, error) { return false, errStore }

func (failingStore) DeleteAll(context.Context) (int64, error) { return 0, errStore }

func TestCache_StoreErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{}, Options{Enabled: true}, logging.Discard())

	assert.False(t, c.Set(ctx, "k", "v"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, c.Clear(ctx, "k"))
	assert.False(t, c.Clear(ctx, ""))

	n, err := c.Prune(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_UnencodableValue(t *testing.T) {
	c := newSQLCache(t, newClock(), time.Hour)
	assert.False(t, c.Set(context.Background(), "ch", make(chan int)))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ai_analysis_4_Acme_Dayton", Key(PrefixAIAnalysis, 4, "Acme", "Dayton"))
	assert.Equal(t, "ai_leads_Dayton_OH_all", Key(PrefixAILeads, "Dayton", "OH", "all"))
	assert.Equal(t, "market_analysis", Key(PrefixMarketAnalysis))
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	c := New(NewRedisStore(client, time.Hour), Options{Enabled: true, TTL: time.Hour}, logging.Discard())

	require.True(t, c.Set(ctx, "k", map[string]any{"score": 80}))
	assert.True(t, mr.Exists(redisKeyPrefix+"k"))

	var out map[string]int
	require.True(t, c.GetInto(ctx, "k", &out))
	assert.Equal(t, 80, out["score"])

	mr.FastForward(time.Hour + time.Second)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	t.Run("clear all leaves foreign keys alone", func(t *testing.T) {
		require.NoError(t, mr.Set("other:key", "keep"))
		for _, k := range []string{"a", "b", "c"} {
			require.True(t, c.Set(ctx, k, k))
		}

		assert.True(t, c.Clear(ctx, ""))
		assert.False(t, mr.Exists(redisKeyPrefix+"a"))
		assert.True(t, mr.Exists("other:key"))
	})

	t.Run("clear one", func(t *testing.T) {
		require.True(t, c.Set(ctx, "x", "1"))
		assert.True(t, c.Clear(ctx, "x"))
		assert.False(t, mr.Exists(redisKeyPrefix+"x"))
	})

	n, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "redis expires keys natively")
}
