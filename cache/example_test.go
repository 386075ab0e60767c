package cache_test

import (
	"fmt"

	"github.com/IvanBrykalov/cappedcache/cache"
)

func ExampleCache_Fetch() {
	c := cache.MustNew[string, string](cache.Options[string, string]{Capacity: 4, Retain: 2})

	fmt.Println(c.Fetch("a", func() string { return "computed" }))
	fmt.Println(c.Fetch("a", func() string { return "not called" }))
	fmt.Println(c.RequestCount("a"))
	// Output:
	// computed
	// computed
	// 2
}

func ExampleCache_Describe() {
	c := cache.MustNew[string, int](cache.Options[string, int]{Capacity: 3, Retain: 1})
	for _, k := range []string{"one", "two", "two", "three", "three", "three"} {
		c.Fetch(k, func() int { return len(k) })
	}
	fmt.Println(c)

	// A fourth key sweeps down to the single most-used entry, count reset.
	c.Fetch("four", func() int { return 4 })
	fmt.Println(c)
	// Output:
	// capped cache size 3. three:3 two:2 one:1
	// capped cache size 2. four:1 three:0
}
