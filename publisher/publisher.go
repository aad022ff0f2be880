// Package publisher drains the fan-out ring, assembles per-(kind,
// slot) batches and publishes them onto the overlay's gossip topics.
package publisher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/fanout"
	"github.com/solindex/geyser-indexer/global"
)

type Environment interface {
	global.NodeGlobal
}

// Publisher owns one drain loop per event kind, each with its own
// in-flight batch, mirroring the teacher's work_process long-lived
// task idiom adapted to fanout.Ring's pull-based Pop API.
type Publisher struct {
	env    Environment
	ring   *fanout.Ring
	sink   Sink
	limits Limits

	originPeerID string
	sequence     atomic.Uint64

	metricBatches prometheus.Counter
	metricBytes   prometheus.Counter
	metricFlushes *prometheus.CounterVec
}

func New(env Environment, ring *fanout.Ring, sink Sink, limits Limits, originPeerID string) *Publisher {
	p := &Publisher{
		env:          env,
		ring:         ring,
		sink:         sink,
		limits:       limits,
		originPeerID: originPeerID,
		metricBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "indexer",
			Subsystem: "publisher",
			Name:      "batches_published_total",
			Help:      "batches handed to the overlay sink",
		}),
		metricBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "indexer",
			Subsystem: "publisher",
			Name:      "bytes_published_total",
			Help:      "compressed bytes handed to the overlay sink",
		}),
		metricFlushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexer",
			Subsystem: "publisher",
			Name:      "flush_reason_total",
			Help:      "batch flushes by trigger reason",
		}, []string{"reason"}),
	}
	env.MetricsRegistry().MustRegister(p.metricBatches, p.metricBytes, p.metricFlushes)
	return p
}

// Start launches one drain loop per kind. Each loop runs until the
// environment context is cancelled, flushing any in-flight batch
// before returning.
func (p *Publisher) Start() {
	for _, kind := range event.AllKinds() {
		k := kind
		p.env.MarkStartedComponent()
		go func() {
			defer p.env.MarkStoppedComponent()
			p.drainLoop(k)
		}()
	}
}

const pollInterval = 50 * time.Millisecond

func (p *Publisher) drainLoop(kind event.Kind) {
	var cur *batch
	for {
		if p.env.Ctx().Err() != nil {
			p.flush(context.Background(), kind, cur, "shutdown")
			return
		}

		ctx, cancel := context.WithTimeout(p.env.Ctx(), pollInterval)
		rec, ok := p.ring.Pop(ctx, kind)
		cancel()

		if !ok {
			if p.env.Ctx().Err() != nil {
				p.flush(context.Background(), kind, cur, "shutdown")
				return
			}
			if p.limits.MaxAge > 0 && cur != nil && cur.age() >= p.limits.MaxAge {
				p.flush(p.env.Ctx(), kind, cur, "max_age")
				cur = nil
			}
			continue
		}

		v, err := event.Decode(rec)
		if err != nil {
			p.env.Log().Warnf("[publisher] dropping malformed record for kind %s: %v", kind, err)
			continue
		}
		slot, wv := slotAndVersion(v)

		if cur != nil && slot != cur.slot {
			p.flush(p.env.Ctx(), kind, cur, "new_slot")
			cur = nil
		}
		if cur == nil {
			cur = newBatch(kind, slot)
		}
		cur.add(rec, wv)

		if p.limits.exceeded(cur) {
			reason := "max_records"
			if p.limits.MaxBytes > 0 && cur.totalSize >= p.limits.MaxBytes {
				reason = "max_bytes"
			}
			p.flush(p.env.Ctx(), kind, cur, reason)
			cur = nil
		}
	}
}

func slotAndVersion(v event.Value) (slot, writeVersion uint64) {
	switch x := v.(type) {
	case *event.AccountUpdate:
		return x.Slot, x.WriteVersion
	case *event.Transaction:
		return x.Slot, uint64(x.IndexInSlot)
	case *event.SlotStatusUpdate:
		return x.Slot, 0
	case *event.BlockInfo:
		return x.Slot, 0
	default:
		return 0, 0
	}
}

func (p *Publisher) flush(ctx context.Context, kind event.Kind, b *batch, reason string) {
	if b.empty() {
		return
	}

	raw := b.payload()
	compressed := snappy.Encode(nil, raw)
	contentHash := event.ContentHash(compressed)
	messageID := event.ComputeMessageID(kind, b.slot, b.minWV, b.maxWV, b.count, contentHash)

	env := &event.Envelope{
		Kind:           kind,
		Slot:           b.slot,
		MinWriteVer:    b.minWV,
		MaxWriteVer:    b.maxWV,
		Count:          b.count,
		Compression:    event.CompressionSnappy,
		Payload:        compressed,
		OriginPeerID:   p.originPeerID,
		Sequence:       p.sequence.Add(1),
		ProducedAtUnix: time.Now().Unix(),
		MessageID:      messageID,
	}

	if err := p.sink.Publish(ctx, env); err != nil {
		p.env.Log().Warnf("[publisher] publish failed for kind %s slot %d: %v", kind, b.slot, err)
		if !errkind.Is(err, errkind.TransientIO) {
			p.env.Log().Errorf("[publisher] non-transient publish error, dropping batch: %v", fmt.Errorf("%w", err))
		}
		return
	}

	p.metricBatches.Inc()
	p.metricBytes.Add(float64(len(compressed)))
	p.metricFlushes.WithLabelValues(reason).Inc()
}
