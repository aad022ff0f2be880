package overlay

import (
	"context"
	"time"

	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/util/bloomfilter"
)

// DefaultDedupWindow is the recommended 3-minute sliding window from
// spec §4.5.
const DefaultDedupWindow = 3 * time.Minute

// dedupSet wraps one bloomfilter.Filter per topic so a flood on one
// topic's message-id space can't evict another topic's recent
// history.
type dedupSet struct {
	ctx    context.Context
	ttl    time.Duration
	topics map[event.Kind]*bloomfilter.Filter[event.Hash]
}

func newDedupSet(ctx context.Context, ttl time.Duration) *dedupSet {
	d := &dedupSet{
		ctx:    ctx,
		ttl:    ttl,
		topics: make(map[event.Kind]*bloomfilter.Filter[event.Hash]),
	}
	for _, k := range event.AllKinds() {
		d.topics[k] = bloomfilter.New[event.Hash](ctx, ttl)
	}
	return d
}

// seen reports whether messageID was already observed on kind's topic
// within the window, and marks it seen either way.
func (d *dedupSet) seen(kind event.Kind, messageID event.Hash) bool {
	return d.topics[kind].CheckAndUpdate(messageID)
}
