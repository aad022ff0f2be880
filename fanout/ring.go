// Package fanout implements the bounded multi-producer/single-consumer
// handoff between the plugin adapter's callback thread and the
// publisher's async runtime. Each event kind gets its own sub-ring so a
// flood of account updates cannot starve slot-status delivery.
package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/solindex/geyser-indexer/event"
)

// SubRing is a bounded ring buffer for one event kind. Push is
// wait-free for a single producer; Pop is single-consumer. Priority
// rings block the caller up to a bounded wait instead of dropping.
type SubRing struct {
	kind     event.Kind
	priority bool
	capacity int

	mu   sync.Mutex
	cond *sync.Cond
	buf  *deque.Deque[[]byte]
	closed bool

	depth     int64
	dropped   int64
	pushed    int64
	popped    int64
}

func newSubRing(kind event.Kind, capacity int) *SubRing {
	r := &SubRing{
		kind:     kind,
		priority: kind.Priority(),
		capacity: capacity,
		buf:      deque.New[[]byte](),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Push enqueues an EM-encoded record. For non-priority kinds, if the
// ring is at capacity the oldest queued record is dropped to make
// room (drop-oldest-nonfinal per spec §4.3); it is returned as evicted
// so the caller can spill it rather than silently discard it, and the
// drop counter increments. For priority kinds, Push blocks the caller
// up to waitBudget; if still full, it returns ok=false so the caller
// can report a recoverable-error status to the host instead of
// dropping or spilling a priority record.
func (r *SubRing) Push(rec []byte, waitBudget time.Duration) (evicted []byte, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false
	}

	if r.buf.Len() >= r.capacity {
		if !r.priority {
			evicted = r.buf.PopFront()
			r.dropped++
		} else {
			deadline := time.Now().Add(waitBudget)
			for r.buf.Len() >= r.capacity && !r.closed {
				remaining := time.Until(deadline)
				if remaining <= 0 {
					return nil, false
				}
				waitWithTimeout(r.cond, remaining)
			}
			if r.closed {
				return nil, false
			}
		}
	}

	r.buf.PushBack(rec)
	r.pushed++
	r.depth = int64(r.buf.Len())
	r.cond.Signal()
	return evicted, true
}

// Pop removes and returns the oldest record, blocking until one is
// available or ctx is done.
func (r *SubRing) Pop(ctx context.Context) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.buf.Len() == 0 && !r.closed {
		if ctx.Err() != nil {
			return nil, false
		}
		waitWithTimeout(r.cond, 100*time.Millisecond)
	}
	if r.buf.Len() == 0 {
		return nil, false
	}
	rec := r.buf.PopFront()
	r.popped++
	r.depth = int64(r.buf.Len())
	return rec, true
}

func (r *SubRing) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cond.Broadcast()
}

// Depth, DroppedCount and PushedCount feed the fanout Prometheus
// collectors.
func (r *SubRing) Depth() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth
}

func (r *SubRing) DroppedCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *SubRing) PushedCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushed
}

// waitWithTimeout wakes r's waiter after d even if no Signal/Broadcast
// arrives, since sync.Cond has no native timed wait.
func waitWithTimeout(cond *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}
