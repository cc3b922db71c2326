package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maplebudget/internal/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute)
	c.now = clock.now

	c.Set("a", "x")
	c.Set("b", "y")
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", "z")

	clock.t = clock.t.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired(), "b expired, a already dropped by Get")
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, "z", v)
}

func TestLRUWithoutTTLKeepsEntries(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](4, 0)
	c.now = clock.now
	c.Set("a", 1)
	clock.t = clock.t.Add(24 * time.Hour)
	_, ok := c.Get("a")
	assert.True(t, ok)
	assert.Zero(t, c.CleanExpired())
}

func TestRistrettoCache(t *testing.T) {
	c, err := NewRistrettoCache[string](100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("s1", "snapshot")
	v, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "snapshot", v)
	assert.Equal(t, 1, c.Size())

	c.Delete("s1")
	_, ok = c.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestRistrettoCacheHoldsConfiguredEntries(t *testing.T) {
	const size = 64
	c, err := NewRistrettoCache[int](size, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < size/2; i++ {
		c.Set(fmt.Sprintf("session-%d", i), i)
	}
	for i := 0; i < size/2; i++ {
		v, ok := c.Get(fmt.Sprintf("session-%d", i))
		require.True(t, ok, "session-%d evicted", i)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, size/2, c.Size())
}

func TestNewSelectsBackend(t *testing.T) {
	for _, backend := range []string{"", BackendLRU, BackendRistretto} {
		c, closeFn, err := New[int](Config{Backend: backend, Size: 10, TTL: time.Minute})
		require.NoError(t, err, backend)
		c.Set("k", 7)
		v, ok := c.Get("k")
		assert.True(t, ok, backend)
		assert.Equal(t, 7, v)
		closeFn()
	}

	_, _, err := New[int](Config{Backend: "redis"})
	assert.Error(t, err)
}

func TestGetOrLoad(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	calls := 0
	load := func() (int, error) { calls++; return 42, nil }

	v, err := GetOrLoad[int](c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	_, _ = GetOrLoad[int](c, "k", load)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = GetOrLoad[int](c, "other", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("other")
	assert.False(t, ok, "errors are not cached")

	_, err = GetOrLoad[int](Noop[int]{}, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](4, time.Second)
	c.now = clock.now
	c.Set("a", 1)

	m := NewManager(log.Discard())
	m.Register(c)
	m.Register(Noop[int]{})
	clock.t = clock.t.Add(2 * time.Second)
	assert.Equal(t, 1, m.CleanAll())

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
