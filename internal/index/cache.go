package index

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheSize bounds the number of cached query results.
const cacheSize = 512

// queryCache is an LRU over canonical query keys. Any write to the
// engine purges it wholesale; a cached result is therefore never stale.
type queryCache struct {
	lru *lru.Cache[string, Result]
}

func newQueryCache() *queryCache {
	cache, err := lru.New[string, Result](cacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &queryCache{lru: cache}
}

func (c *queryCache) get(key string) (Result, bool) {
	return c.lru.Get(key)
}

func (c *queryCache) put(key string, result Result) {
	c.lru.Add(key, result)
}

func (c *queryCache) purge() {
	c.lru.Purge()
}
