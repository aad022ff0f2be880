package overlay

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/libp2p/go-libp2p/core/peer"
)

// DefaultBanTTL is how long a peer stays banned after repeatedly
// publishing malformed or schema-too-new messages, per spec §4.5's
// failure semantics.
const DefaultBanTTL = 15 * time.Minute

// DefaultOffenseThreshold is how many bad-schema/malformed offenses a
// peer accrues before it is banned outright.
const DefaultOffenseThreshold = 5

type banEntry struct {
	until time.Time
}

// banList tracks offense counts and active bans keyed by peer ID. The
// LRU cap bounds memory from peers that are seen once and never
// again; an evicted offense counter simply forgives that peer.
type banList struct {
	mu       sync.Mutex
	offenses *lru.Cache
	bans     *lru.Cache
	ttl      time.Duration
	threshold int
}

func newBanList(capacity int, ttl time.Duration, threshold int) *banList {
	offenses, err := lru.New(capacity)
	if err != nil {
		panic(err)
	}
	bans, err := lru.New(capacity)
	if err != nil {
		panic(err)
	}
	return &banList{
		offenses:  offenses,
		bans:      bans,
		ttl:       ttl,
		threshold: threshold,
	}
}

// recordOffense increments id's offense counter and bans it once the
// threshold is reached, returning true if this call triggered the
// ban.
func (b *banList) recordOffense(id peer.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 1
	if v, ok := b.offenses.Get(id); ok {
		count = v.(int) + 1
	}
	b.offenses.Add(id, count)

	if count >= b.threshold {
		b.bans.Add(id, banEntry{until: time.Now().Add(b.ttl)})
		b.offenses.Remove(id)
		return true
	}
	return false
}

// isBanned reports whether id is currently under an active ban,
// lazily evicting expired entries.
func (b *banList) isBanned(id peer.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.bans.Get(id)
	if !ok {
		return false
	}
	entry := v.(banEntry)
	if time.Now().After(entry.until) {
		b.bans.Remove(id)
		return false
	}
	return true
}
