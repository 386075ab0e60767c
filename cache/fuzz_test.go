//go:build go1.18

package cache

import (
	"strings"
	"testing"
)

// Fuzz Fetch/RequestCount semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
// NOTE: We cap key/value lengths to avoid pathological memory usage
// during fuzzing (this does not weaken the invariants we check).
func FuzzCache_FetchCount(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "", uint8(1))
	f.Add("a", "1", uint8(2))
	f.Add("b", "2", uint8(5))
	f.Add("αβγ", "δ", uint8(3))
	f.Add("emoji🙂", "🙂🙂", uint8(7))
	f.Add("long", strings.Repeat("x", 1024), uint8(16))

	f.Fuzz(func(t *testing.T, k, v string, n uint8) {
		// Cap lengths to keep memory bounded during fuzzing.
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := MustNew[string, string](Options[string, string]{Capacity: 4, Retain: 1})

		// Fetch -> first call stores v.
		if got := c.Fetch(k, func() string { return v }); got != v {
			t.Fatalf("first Fetch: want %q, got %q", v, got)
		}
		// Further fetches return the stored value and never call the producer.
		for i := 1; i < int(n); i++ {
			got := c.Fetch(k, func() string {
				t.Fatalf("producer called for present key %q", k)
				return ""
			})
			if got != v {
				t.Fatalf("Fetch #%d: want %q, got %q", i, v, got)
			}
		}
		want := uint64(n)
		if want == 0 {
			want = 1
		}
		if got := c.RequestCount(k); got != want {
			t.Fatalf("RequestCount: want %d, got %d", want, got)
		}

		// Four new keys fill the table and force one sweep; k is either
		// dropped or reset, so its count reads 0 either way.
		for i := 0; i < 4; i++ {
			c.Fetch(k+"#"+strings.Repeat("z", i+1), func() string { return "" })
		}
		if c.Len() > c.Capacity() {
			t.Fatalf("Len %d exceeds capacity %d", c.Len(), c.Capacity())
		}
		if got := c.Stats().Sweeps; got != 1 {
			t.Fatalf("sweeps: want 1, got %d", got)
		}
		if got := c.RequestCount(k); got != 0 {
			t.Fatalf("count for %q not reset by sweep: %d", k, got)
		}
	})
}
