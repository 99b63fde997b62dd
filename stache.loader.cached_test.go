package stache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCachedLoader(inner TemplateLoader, config CacheConfig) (*CachedLoader, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cached := NewCachedLoader(inner, config)
	cached.now = clock.Now
	return cached, clock
}

func TestCachedLoader_Hits(t *testing.T) {
	inner := &countingLoader{templates: map[string]string{"a": "A"}}
	cached, _ := newTestCachedLoader(inner, DefaultCacheConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		source, found, err := cached.Load(ctx, "a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "A", source)
	}

	assert.Equal(t, 1, inner.calls)
	stats := cached.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestCachedLoader_TTL(t *testing.T) {
	inner := &countingLoader{templates: map[string]string{"a": "A"}}
	cached, clock := newTestCachedLoader(inner, CacheConfig{TTL: time.Minute})
	ctx := context.Background()

	_, _, _ = cached.Load(ctx, "a")
	clock.Advance(59 * time.Second)
	_, _, _ = cached.Load(ctx, "a")
	assert.Equal(t, 1, inner.calls)

	clock.Advance(2 * time.Second)
	_, _, _ = cached.Load(ctx, "a")
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLoader_NegativeCache(t *testing.T) {
	tests := []struct {
		name      string
		negative  time.Duration
		wantCalls int
		wantNeg   int
	}{
		{name: "enabled", negative: time.Minute, wantCalls: 1, wantNeg: 1},
		{name: "disabled", negative: -1, wantCalls: 2, wantNeg: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &countingLoader{templates: map[string]string{}}
			cached, _ := newTestCachedLoader(inner, CacheConfig{NegativeCacheTTL: tt.negative})

			for i := 0; i < 2; i++ {
				_, found, err := cached.Load(context.Background(), "missing")
				require.NoError(t, err)
				assert.False(t, found)
			}
			assert.Equal(t, tt.wantCalls, inner.calls)
			assert.Equal(t, tt.wantNeg, cached.Stats().NegativeEntries)
		})
	}
}

func TestCachedLoader_ErrorsNotCached(t *testing.T) {
	cause := errors.New("offline")
	inner := &countingLoader{err: cause}
	cached, _ := newTestCachedLoader(inner, DefaultCacheConfig())

	for i := 0; i < 2; i++ {
		_, _, err := cached.Load(context.Background(), "a")
		assert.ErrorIs(t, err, cause)
	}
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.Stats().Entries)
}

func TestCachedLoader_Eviction(t *testing.T) {
	inner := &countingLoader{templates: map[string]string{"a": "A", "b": "B", "c": "C"}}
	cached, clock := newTestCachedLoader(inner, CacheConfig{MaxEntries: 2})
	ctx := context.Background()

	_, _, _ = cached.Load(ctx, "a")
	clock.Advance(time.Second)
	_, _, _ = cached.Load(ctx, "b")
	clock.Advance(time.Second)
	_, _, _ = cached.Load(ctx, "a")
	clock.Advance(time.Second)
	_, _, _ = cached.Load(ctx, "c")

	stats := cached.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(1), stats.Evictions)

	calls := inner.calls
	_, _, _ = cached.Load(ctx, "a")
	assert.Equal(t, calls, inner.calls, "recently used entry survives")
	_, _, _ = cached.Load(ctx, "b")
	assert.Equal(t, calls+1, inner.calls, "least recently used entry was evicted")
}

func TestCachedLoader_Invalidate(t *testing.T) {
	inner := &countingLoader{templates: map[string]string{"a": "A", "b": "B"}}
	cached, _ := newTestCachedLoader(inner, DefaultCacheConfig())
	ctx := context.Background()

	_, _, _ = cached.Load(ctx, "a")
	_, _, _ = cached.Load(ctx, "b")
	cached.Invalidate("a")
	assert.Equal(t, 1, cached.Stats().Entries)

	cached.InvalidateAll()
	assert.Equal(t, 0, cached.Stats().Entries)
}

type closingLoader struct {
	countingLoader
	closed bool
}

func (l *closingLoader) Close() error {
	l.closed = true
	return nil
}

func TestCachedLoader_Close(t *testing.T) {
	inner := &closingLoader{countingLoader: countingLoader{templates: map[string]string{"a": "A"}}}
	cached, _ := newTestCachedLoader(inner, DefaultCacheConfig())
	_, _, _ = cached.Load(context.Background(), "a")

	require.NoError(t, cached.Close())
	assert.True(t, inner.closed)
	assert.Equal(t, 0, cached.Stats().Entries)

	plain := NewCachedLoader(NewStringLoader(), CacheConfig{})
	assert.NoError(t, plain.Close())
}

func TestCachedLoader_Canceled(t *testing.T) {
	inner := &countingLoader{templates: map[string]string{"a": "A"}}
	cached, _ := newTestCachedLoader(inner, DefaultCacheConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := cached.Load(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, inner.calls)
}
