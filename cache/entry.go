package cache

// entry is a resident cache record. It is owned by the cache and never
// handed out; callers only ever see copies of val.
type entry[K comparable, V any] struct {
	key K
	val V

	// Number of fetches since insertion or since the last sweep.
	count uint64

	// Insertion sequence. Breaks count ties during a sweep
	// (older entries are dropped first) and in Describe output.
	seq uint64
}

// byCountAsc orders entries for a sweep: lowest count first,
// then oldest insertion first.
func byCountAsc[K comparable, V any](a, b *entry[K, V]) int {
	switch {
	case a.count < b.count:
		return -1
	case a.count > b.count:
		return 1
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

// byCountDesc is the Describe ordering: highest count first,
// then oldest insertion first.
func byCountDesc[K comparable, V any](a, b *entry[K, V]) int {
	switch {
	case a.count > b.count:
		return -1
	case a.count < b.count:
		return 1
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}
