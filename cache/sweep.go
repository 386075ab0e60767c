package cache

import (
	"log/slog"
	"slices"
)

// sweepLocked shrinks the table to c.retain entries and resets the usage
// count of every survivor to zero. Entries are dropped lowest count first;
// among equal counts the oldest insertion goes first.
//
// Called with mu held, only when a new key is about to be inserted into a
// full table.
func (c *Cache[K, V]) sweepLocked() {
	es := c.entriesLocked()
	slices.SortFunc(es, byCountAsc[K, V])

	drop := len(es) - c.retain
	if drop < 0 {
		drop = 0
	}
	for _, e := range es[:drop] {
		delete(c.m, e.key)
		c.evictions.Add(1)
		c.opt.Metrics.Evict()
		if cb := c.opt.OnEvict; cb != nil {
			cb(e.key, e.val)
		}
	}
	// Survivors restart from zero.
	for _, e := range es[drop:] {
		e.count = 0
	}

	c.sweeps.Add(1)
	c.opt.Metrics.Sweep(drop, len(c.m))
	c.opt.Metrics.Size(len(c.m))
	c.log.Debug("sweep",
		slog.Int("evicted", drop),
		slog.Int("retained", len(c.m)),
		slog.Int("capacity", c.capacity),
	)
}
