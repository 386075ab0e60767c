package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/IvanBrykalov/cappedcache/internal/util"
)

var (
	// ErrInvalidOptions is returned by New when Capacity/Retain break 0 <= Retain < Capacity.
	ErrInvalidOptions = errors.New("cache: invalid options")

	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")
)

// Cache is a bounded, usage-counting in-memory cache.
// All methods are safe for concurrent use by multiple goroutines.
//
// A single mutex guards every operation for its whole duration, including
// the producer call on a miss. A slow producer therefore blocks all other
// callers, which is what guarantees the producer runs at most once per miss.
type Cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu      sync.Mutex
	m       map[K]*entry[K, V]
	nextSeq uint64

	capacity int
	retain   int
	opt      Options[K, V]
	log      *slog.Logger

	// ---- counters, readable without mu ----
	_         util.CacheLinePad
	hits      util.PaddedAtomicUint64
	misses    util.PaddedAtomicUint64
	sweeps    util.PaddedAtomicUint64
	evictions util.PaddedAtomicUint64
}

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Sweeps    uint64
	Evictions uint64
}

// New constructs a cache with the provided Options.
// It returns an error wrapping ErrInvalidOptions unless 0 <= Retain < Capacity.
// Defaults:
//   - Capacity == 0 && Retain == 0 -> DefaultCapacity, DefaultRetain
//   - nil Metrics -> NoopMetrics
//   - nil Logger  -> discard
func New[K comparable, V any](opt Options[K, V]) (*Cache[K, V], error) {
	opt = opt.withDefaults()
	if err := opt.validate(); err != nil {
		return nil, err
	}
	return &Cache[K, V]{
		m:        make(map[K]*entry[K, V], opt.Capacity),
		capacity: opt.Capacity,
		retain:   opt.Retain,
		opt:      opt,
		log:      opt.Logger.With(slog.String("component", "cappedcache")),
	}, nil
}

// MustNew is like New but panics on invalid options.
func MustNew[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	c, err := New[K, V](opt)
	if err != nil {
		panic(err)
	}
	return c
}

// Fetch returns the cached value for k, calling produce to create it when k
// is absent. produce runs at most once per call and never for a present key.
// Every call increments the usage count of k.
//
// If produce panics the panic propagates, the lock is released and k stays absent.
func (c *Cache[K, V]) Fetch(k K, produce func() V) V {
	v, _ := c.TryFetch(k, func() (V, error) { return produce(), nil })
	return v
}

// TryFetch is Fetch for producers that can fail. A producer error is
// returned unchanged and nothing is inserted; a later call may retry.
func (c *Cache[K, V]) TryFetch(k K, produce func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[k]
	if ok {
		c.hits.Add(1)
		c.opt.Metrics.Hit()
	} else {
		c.misses.Add(1)
		c.opt.Metrics.Miss()

		if len(c.m) >= c.capacity {
			c.sweepLocked()
		}
		v, err := produce()
		if err != nil {
			var zero V
			return zero, err
		}
		e = &entry[K, V]{key: k, val: v, seq: c.nextSeq}
		c.nextSeq++
		c.m[k] = e
		c.opt.Metrics.Size(len(c.m))
	}

	e.count++
	return e.val, nil
}

// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
// It returns ctx.Err() without touching the cache if ctx is already done,
// and ErrNoLoader if no Loader was configured.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}
	if err := ctx.Err(); err != nil {
		var zero V
		return zero, err
	}
	return c.TryFetch(k, func() (V, error) {
		return c.opt.Loader(ctx, k)
	})
}

// RequestCount returns the usage count of k, or 0 if k is absent.
func (c *Cache[K, V]) RequestCount(k K) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.m[k]; ok {
		return e.count
	}
	return 0
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Capacity returns the entry count that triggers a sweep.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Retain returns the number of entries a sweep keeps.
func (c *Cache[K, V]) Retain() int { return c.retain }

// Stats returns a snapshot of the hit/miss/sweep/eviction counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sweeps:    c.sweeps.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Describe renders the size and every key:count pair, highest count first.
// Equal counts are listed in insertion order.
func (c *Cache[K, V]) Describe() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	es := c.entriesLocked()
	slices.SortFunc(es, byCountDesc[K, V])

	var b strings.Builder
	fmt.Fprintf(&b, "capped cache size %d.", len(es))
	for _, e := range es {
		fmt.Fprintf(&b, " %v:%d", e.key, e.count)
	}
	return b.String()
}

// String implements fmt.Stringer; see Describe.
func (c *Cache[K, V]) String() string { return c.Describe() }

// entriesLocked returns the resident entries in unspecified order.
func (c *Cache[K, V]) entriesLocked() []*entry[K, V] {
	es := make([]*entry[K, V], 0, len(c.m))
	for _, e := range c.m {
		es = append(es, e)
	}
	return es
}
