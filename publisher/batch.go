package publisher

import (
	"time"

	"github.com/solindex/geyser-indexer/event"
)

// batch accumulates encoded records for one (kind, slot) pair until a
// bound from BatchLimits is reached or a higher slot's record arrives.
// Per spec §4.4 there is at most one in-flight batch per slot per kind.
type batch struct {
	kind  event.Kind
	slot  uint64
	minWV uint64
	maxWV uint64
	count uint32

	records   [][]byte
	totalSize int
	opened    time.Time
}

func newBatch(kind event.Kind, slot uint64) *batch {
	return &batch{
		kind:   kind,
		slot:   slot,
		minWV:  ^uint64(0),
		opened: time.Now(),
	}
}

func (b *batch) empty() bool {
	return b == nil || b.count == 0
}

func (b *batch) add(rec []byte, writeVersion uint64) {
	b.records = append(b.records, rec)
	b.totalSize += len(rec)
	b.count++
	if writeVersion < b.minWV {
		b.minWV = writeVersion
	}
	if writeVersion > b.maxWV {
		b.maxWV = writeVersion
	}
}

func (b *batch) age() time.Duration {
	return time.Since(b.opened)
}

// payload concatenates records in the order they were added, which is
// arrival order and therefore nondecreasing within the slot since PUB
// drains a single-consumer sub-ring FIFO.
func (b *batch) payload() []byte {
	out := make([]byte, 0, b.totalSize)
	for _, r := range b.records {
		out = append(out, r...)
	}
	return out
}
