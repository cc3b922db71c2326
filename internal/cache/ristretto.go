package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoCache is a Cache backed by ristretto. Admission is probabilistic,
// so a Set may be dropped under pressure; callers treat that as a miss.
type RistrettoCache[T any] struct {
	c   *ristretto.Cache[string, T]
	ttl time.Duration

	// ristretto cannot enumerate its keys; Size is derived from this set.
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewRistrettoCache holds about maxItems entries, each costing 1 regardless
// of its size in memory.
func NewRistrettoCache[T any](maxItems int, ttl time.Duration) (*RistrettoCache[T], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters:        int64(maxItems) * 10,
		MaxCost:            int64(maxItems),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoCache[T]{c: c, ttl: ttl, keys: make(map[string]struct{})}, nil
}

func (r *RistrettoCache[T]) Get(key string) (T, bool) {
	return r.c.Get(key)
}

// Set stores data and waits for the write buffer to drain so the value is
// visible to the next Get.
func (r *RistrettoCache[T]) Set(key string, data T) {
	var ok bool
	if r.ttl > 0 {
		ok = r.c.SetWithTTL(key, data, 1, r.ttl)
	} else {
		ok = r.c.Set(key, data, 1)
	}
	r.c.Wait()
	if ok {
		r.mu.Lock()
		r.keys[key] = struct{}{}
		r.mu.Unlock()
	}
}

func (r *RistrettoCache[T]) Delete(key string) {
	r.c.Del(key)
	r.mu.Lock()
	delete(r.keys, key)
	r.mu.Unlock()
}

// Size counts tracked keys that are still present.
func (r *RistrettoCache[T]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.keys {
		if _, ok := r.c.Get(k); !ok {
			delete(r.keys, k)
		}
	}
	return len(r.keys)
}

// CleanExpired forgets tracked keys that ristretto has already expired or
// evicted. Expiry itself is handled by ristretto.
func (r *RistrettoCache[T]) CleanExpired() int {
	r.mu.Lock()
	before := len(r.keys)
	r.mu.Unlock()
	return before - r.Size()
}

func (r *RistrettoCache[T]) Close() {
	r.c.Close()
}
