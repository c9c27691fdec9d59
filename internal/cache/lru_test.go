package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestLRUCacheCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, time.Minute, WithEvictCallback(func(key string, _ int) {
		evicted = append(evicted, key)
	}))

	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCacheSlidingExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewLRUCache[string](10, time.Minute, WithClock[string](clock.Now))

	c.Set("s", "v")
	clock.Advance(50 * time.Second)
	v, ok := c.Get("s")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	clock.Advance(50 * time.Second)
	_, ok = c.Get("s")
	assert.True(t, ok, "get should extend the lifetime")

	clock.Advance(61 * time.Second)
	_, ok = c.Get("s")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestLRUCacheCleanExpiredNotifies(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var evicted []string
	c := NewLRUCache[int](10, time.Minute,
		WithClock[int](clock.Now),
		WithEvictCallback(func(key string, _ int) { evicted = append(evicted, key) }),
	)
	c.Set("old", 1)
	clock.Advance(45 * time.Second)
	c.Set("new", 2)
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheDelete(t *testing.T) {
	calls := 0
	c := NewLRUCache[int](10, time.Minute, WithEvictCallback(func(string, int) { calls++ }))
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 1, calls)
	assert.Zero(t, c.Size())
}

func TestManagerSweepAndStop(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewLRUCache[int](10, time.Second, WithClock[int](clock.Now))
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(time.Hour)
	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, m.Sweep())
	m.Stop()
	m.Stop()
}
