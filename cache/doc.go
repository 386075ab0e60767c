// Package cache provides a generic, bounded in-memory cache that counts how
// often each key is fetched and, when full, keeps only the most-used entries.
//
// Design
//
//   - Fetch-or-populate: Fetch(k, produce) returns the cached value for k.
//     On a miss produce is called exactly once and its result stored with a
//     usage count of zero; every Fetch then increments the count of k.
//
//   - Capacity sweep: when a new key arrives while the table already holds
//     Capacity entries, a sweep runs first. It drops the entries with the
//     lowest counts until Retain remain, then resets the count of every
//     survivor to zero. Popularity therefore decays on every sweep.
//     Equal counts are broken by insertion order (older entries go first).
//
//   - Concurrency: one sync.Mutex covers each operation end to end, including
//     the producer call. Two goroutines can never both see a key as absent and
//     both run the producer; the price is that a slow producer stalls every
//     other caller.
//
//   - Errors: TryFetch accepts a producer returning (V, error). The error is
//     returned unchanged and the key stays absent. A panicking producer
//     unwinds through Fetch with the lock released and nothing inserted.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Sweep/Size signals.
//     By default NoopMetrics is used; see package metrics/prom for Prometheus.
//
//   - Callbacks: Options.OnEvict(k, v) is called for every entry a sweep drops.
//
// Basic usage
//
//	c, err := cache.New[string, *Report](cache.Options[string, *Report]{
//	    Capacity: 1000,
//	    Retain:   100,
//	})
//	if err != nil {
//	    return err
//	}
//	r := c.Fetch("q3", func() *Report { return buildReport("q3") })
//	n := c.RequestCount("q3") // 1
//
// With a fallible producer
//
//	v, err := c.TryFetch("q3", func() (*Report, error) { return loadReport(ctx, "q3") })
//
// With GetOrLoad
//
//	c := cache.MustNew[string, string](cache.Options[string, string]{
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
//
// Exporting metrics
//
//	m := prom.New(nil, "cappedcache", "demo", nil) // implements Metrics
//	c := cache.MustNew[string, []byte](cache.Options[string, []byte]{Metrics: m})
//
// Zero Options give Capacity 1000 and Retain 100. New rejects any
// configuration that does not satisfy 0 <= Retain < Capacity.
package cache
