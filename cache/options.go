package cache

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// DefaultCapacity is the entry count that triggers a sweep when both
	// Capacity and Retain are left at zero.
	DefaultCapacity = 1000
	// DefaultRetain is the number of entries kept by a sweep when both
	// Capacity and Retain are left at zero.
	DefaultRetain = 100
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// All hooks are invoked while the cache lock is held; keep them cheap.
type Metrics interface {
	Hit()
	Miss()
	// Evict is reported once per entry dropped by a sweep.
	Evict()
	// Sweep is reported once per sweep, after counts are reset.
	Sweep(evicted, retained int)
	Size(entries int)
}

// Options configures the cache. Zero values are safe;
// defaults are applied in New():
//   - Capacity == 0 && Retain == 0 => DefaultCapacity / DefaultRetain
//   - nil Metrics  => NoopMetrics
//   - nil Logger   => logs are discarded
type Options[K comparable, V any] struct {
	// Capacity is the entry count at which inserting a new key triggers a sweep.
	Capacity int

	// Retain is the number of highest-count entries a sweep keeps.
	// Must be strictly less than Capacity. Zero is valid once Capacity is set.
	Retain int

	// Loader produces a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for every entry dropped by a sweep, under the cache lock.
	OnEvict func(k K, v V)

	Metrics Metrics
	Logger  *slog.Logger
}

// withDefaults returns a copy of o with zero-value defaults filled in.
func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.Capacity == 0 && o.Retain == 0 {
		o.Capacity = DefaultCapacity
		o.Retain = DefaultRetain
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// validate enforces 0 <= Retain < Capacity.
func (o Options[K, V]) validate() error {
	switch {
	case o.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidOptions, o.Capacity)
	case o.Retain < 0:
		return fmt.Errorf("%w: retain must be >= 0, got %d", ErrInvalidOptions, o.Retain)
	case o.Retain >= o.Capacity:
		return fmt.Errorf("%w: retain (%d) must be less than capacity (%d)", ErrInvalidOptions, o.Retain, o.Capacity)
	}
	return nil
}
