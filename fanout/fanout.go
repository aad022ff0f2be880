package fanout

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
)

type Environment interface {
	global.NodeGlobal
}

// Ring is the fan-out ring: one bounded SubRing per event kind.
type Ring struct {
	env   Environment
	rings map[event.Kind]*SubRing

	metricDepth   *prometheus.GaugeVec
	metricDropped *prometheus.CounterVec
	metricPushed  *prometheus.CounterVec
}

// DefaultCapacity is the per-kind sub-ring capacity absent an explicit
// override; account-update floods are the intended stress case, so
// non-priority kinds default larger than priority ones.
const (
	DefaultCapacityAccount     = 65536
	DefaultCapacityTransaction = 32768
	DefaultCapacityPriority    = 4096
)

func defaultCapacity(k event.Kind) int {
	switch k {
	case event.KindAccount:
		return DefaultCapacityAccount
	case event.KindTransaction:
		return DefaultCapacityTransaction
	default:
		return DefaultCapacityPriority
	}
}

// New builds a Ring with one SubRing per event.AllKinds(), optionally
// overriding capacity per kind via capacities.
func New(env Environment, capacities map[event.Kind]int) *Ring {
	r := &Ring{
		env:   env,
		rings: make(map[event.Kind]*SubRing, len(event.AllKinds())),
		metricDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "indexer",
			Subsystem: "fanout",
			Name:      "ring_depth",
			Help:      "current number of queued records per kind",
		}, []string{"kind"}),
		metricDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexer",
			Subsystem: "fanout",
			Name:      "ring_dropped_total",
			Help:      "records dropped by overflow policy, per kind",
		}, []string{"kind"}),
		metricPushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexer",
			Subsystem: "fanout",
			Name:      "ring_pushed_total",
			Help:      "records accepted into the ring, per kind",
		}, []string{"kind"}),
	}
	for _, k := range event.AllKinds() {
		cap := defaultCapacity(k)
		if capacities != nil {
			if c, ok := capacities[k]; ok {
				cap = c
			}
		}
		r.rings[k] = newSubRing(k, cap)
	}
	env.MetricsRegistry().MustRegister(r.metricDepth, r.metricDropped, r.metricPushed)
	return r
}

// Push hands rec (an event.Encode()'d record) to the sub-ring for
// kind. waitBudget bounds the block for priority kinds; it is ignored
// for non-priority kinds, which never block. If a non-priority push
// evicted an older queued record to make room, it is returned as
// evicted so the caller can spill it instead of losing it silently.
func (r *Ring) Push(kind event.Kind, rec []byte, waitBudget time.Duration) (evicted []byte, ok bool) {
	sr := r.rings[kind]
	evicted, ok = sr.Push(rec, waitBudget)
	r.metricDepth.WithLabelValues(kind.String()).Set(float64(sr.Depth()))
	if ok {
		r.metricPushed.WithLabelValues(kind.String()).Inc()
	} else {
		r.metricDropped.WithLabelValues(kind.String()).Inc()
	}
	if evicted != nil {
		r.metricDropped.WithLabelValues(kind.String()).Inc()
	}
	return evicted, ok
}

// Pop blocks until a record is available on kind's sub-ring or ctx is
// done.
func (r *Ring) Pop(ctx context.Context, kind event.Kind) ([]byte, bool) {
	rec, ok := r.rings[kind].Pop(ctx)
	r.metricDepth.WithLabelValues(kind.String()).Set(float64(r.rings[kind].Depth()))
	return rec, ok
}

// Drain pops records from kind's sub-ring until it is empty, without
// blocking; used by on_unload's grace-period drain.
func (r *Ring) Drain(kind event.Kind) [][]byte {
	sr := r.rings[kind]
	var out [][]byte
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for {
		sr.mu.Lock()
		empty := sr.buf.Len() == 0
		sr.mu.Unlock()
		if empty {
			break
		}
		rec, ok := sr.Pop(ctx)
		if !ok {
			break
		}
		out = append(out, rec)
	}
	return out
}

func (r *Ring) Close() {
	for _, sr := range r.rings {
		sr.Close()
	}
}

func (r *Ring) Depth(kind event.Kind) int64 {
	return r.rings[kind].Depth()
}

func (r *Ring) DroppedCount(kind event.Kind) int64 {
	return r.rings[kind].DroppedCount()
}
