package hotstore

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// canonicalKey identifies one (entity, slot) pair across kinds; the
// kind byte is folded in so the same cache serves accounts,
// transactions and block info without collision.
type canonicalKey struct {
	kind byte
	slot uint64
	id   string
}

// canonicalCache fronts the "greatest write-version for (entity,
// slot)" lookup that CommitAccountUpdate needs on every duplicate
// check, avoiding a Badger read when the writer has already seen a
// higher version for that pair in this process's lifetime.
type canonicalCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newCanonicalCache(capacity int) *canonicalCache {
	c, err := lru.New(capacity)
	if err != nil {
		panic(err)
	}
	return &canonicalCache{cache: c}
}

// observe records writeVersion as seen for key and reports whether it
// is now (or already was) the greatest version observed, i.e. whether
// the caller's write is the canonical one.
func (c *canonicalCache) observe(key canonicalKey, writeVersion uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(key)
	if !ok || writeVersion > v.(uint64) {
		c.cache.Add(key, writeVersion)
		return true
	}
	return false
}
