// Package migrator periodically advances the migration cursor,
// snapshotting eligible slot ranges from the hot store, writing cold
// store segments, and pruning the hot store once a segment is
// durable. Grounded on the teacher's work_process/pruner periodic-task
// idiom (RepeatInBackground over a ledger-scale period) generalized
// from memDAG vertex pruning to slot-range migration.
package migrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/solindex/geyser-indexer/coldstore"
	"github.com/solindex/geyser-indexer/core/events"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
	"github.com/solindex/geyser-indexer/util/eventtype"
)

type Environment interface {
	global.NodeGlobal
}

// rangeMigrated carries the slot bounds of a range this pass just
// sealed into cold storage and pruned from the hot store.
type rangeMigrated struct {
	fromSlot, toSlot uint64
}

// eventRangeMigrated decouples the gauge/log side effect of a
// completed migration from runPass's critical path, via the same
// typed event-bus idiom the teacher's workflow package dispatches its
// own pipeline-stage notifications through.
var eventRangeMigrated = eventtype.RegisterNew[rangeMigrated]("migrator_range_migrated")

// HotStore is the subset of hotstore.Store the migrator needs: a
// slot-range snapshot to migrate and the prune call once a segment is
// durable, plus the metadata-CF cursor/lease primitives.
type HotStore interface {
	GreatestRootedSlot(ctx context.Context) (uint64, error)
	MigrationCursor() (uint64, error)
	SetMigrationCursor(cursor uint64) error
	ScanBySlot(ctx context.Context, kind event.Kind, slot uint64) ([]event.Value, error)
	AcquireMigrationLease(fromSlot, toSlot uint64) (bool, error)
	ReleaseMigrationLease(fromSlot, toSlot uint64) error
	PruneSlotRange(ctx context.Context, kind event.Kind, fromSlot, toSlot uint64) error
}

const (
	Name     = "migrator"
	TraceTag = Name

	// DefaultRangeSize is how many rooted slots each migration pass
	// snapshots and seals into one cold store segment.
	DefaultRangeSize = 256

	// DefaultPeriod is how often the migrator wakes up to check for
	// newly eligible ranges.
	DefaultPeriod = 30 * time.Second
)

// Config mirrors spec §4.9's throttle knobs and migration depth.
type Config struct {
	ColdStoreRoot  string
	MigrationDepth uint64
	// HotWindowSlots is retention.hot_window_slots: the span of
	// recently-rooted slots kept in the hot store regardless of
	// migration depth, per spec §6 and §8 scenario 5's
	// eligibleUpTo = rooted - K - hot_window.
	HotWindowSlots uint64
	RangeSize      uint64
	Period         time.Duration
	MaxBytesPerSec uint64
	MaxRecsPerSec  uint64
}

func DefaultConfig(coldStoreRoot string) Config {
	return Config{
		ColdStoreRoot:  coldStoreRoot,
		MigrationDepth: 32,
		HotWindowSlots: 0,
		RangeSize:      DefaultRangeSize,
		Period:         DefaultPeriod,
	}
}

type Migrator struct {
	env   Environment
	hs    HotStore
	index *coldstore.Index
	cfg   Config

	bus      *events.Queue
	throttle *throttle

	migrationsGauge  prometheus.Gauge
	bytesWritten     prometheus.Counter
	recordsMigrated  prometheus.Counter
	migrationErrors  prometheus.Counter
}

func New(env Environment, hs HotStore, index *coldstore.Index, cfg Config) *Migrator {
	m := &Migrator{
		env:      env,
		hs:       hs,
		index:    index,
		cfg:      cfg,
		bus:      events.Start(env.Ctx()),
		throttle: newThrottle(cfg.MaxBytesPerSec, cfg.MaxRecsPerSec),
	}
	m.bus.OnEvent(eventRangeMigrated, m.onRangeMigrated)
	m.registerMetrics()
	return m
}

func (m *Migrator) onRangeMigrated(r rangeMigrated) {
	m.migrationsGauge.Set(float64(r.toSlot))
	m.env.Log().Infof("[migrator] advanced cursor to slot %d", r.toSlot)
}

func (m *Migrator) registerMetrics() {
	m.migrationsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geyser_indexer_migrator_cursor_slot",
		Help: "greatest slot the migrator has sealed into cold storage",
	})
	m.bytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geyser_indexer_migrator_bytes_written_total",
		Help: "bytes written to cold store segments",
	})
	m.recordsMigrated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geyser_indexer_migrator_records_total",
		Help: "records migrated from hot store to cold store",
	})
	m.migrationErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geyser_indexer_migrator_errors_total",
		Help: "migration passes that failed and will retry",
	})
	m.env.MetricsRegistry().MustRegister(m.migrationsGauge, m.bytesWritten, m.recordsMigrated, m.migrationErrors)
}

// Start registers the periodic migration pass on the shared
// background scheduler, running once immediately.
func (m *Migrator) Start() {
	m.env.RepeatInBackground(Name, m.cfg.Period, func() bool {
		m.runPass()
		return true
	}, true)
}

func (m *Migrator) runPass() {
	ctx := m.env.Ctx()

	rooted, err := m.hs.GreatestRootedSlot(ctx)
	if err != nil {
		m.env.Log().Warnf("[migrator] cannot read greatest rooted slot: %v", err)
		m.migrationErrors.Inc()
		return
	}
	lag := m.cfg.MigrationDepth + m.cfg.HotWindowSlots
	if rooted < lag {
		return
	}
	eligibleUpTo := rooted - lag

	cursor, err := m.hs.MigrationCursor()
	if err != nil {
		m.env.Log().Warnf("[migrator] cannot read migration cursor: %v", err)
		m.migrationErrors.Inc()
		return
	}
	if cursor >= eligibleUpTo {
		return
	}

	fromSlot := cursor
	toSlot := fromSlot + m.cfg.RangeSize
	if toSlot > eligibleUpTo {
		toSlot = eligibleUpTo
	}

	for _, kind := range event.AllKinds() {
		if err := m.migrateRange(ctx, kind, fromSlot, toSlot); err != nil {
			m.env.Log().Warnf("[migrator] range [%d,%d] kind %s failed: %v", fromSlot, toSlot, kind, err)
			m.migrationErrors.Inc()
			return
		}
	}

	if err := m.hs.SetMigrationCursor(toSlot); err != nil {
		m.env.Log().Warnf("[migrator] cursor advance to %d failed: %v", toSlot, err)
		m.migrationErrors.Inc()
		return
	}
	m.bus.PostEvent(eventRangeMigrated, rangeMigrated{fromSlot: fromSlot, toSlot: toSlot})
}

// migrateRange snapshots [fromSlot, toSlot] for kind under the
// per-range lease, writes one cold segment, fsyncs/checksums it via
// WriteSegment, indexes it, then prunes the hot store. The cursor
// only advances in runPass after every kind in the range succeeds, so
// a crash here just means the next pass retries the same range.
func (m *Migrator) migrateRange(ctx context.Context, kind event.Kind, fromSlot, toSlot uint64) error {
	acquired, err := m.hs.AcquireMigrationLease(fromSlot, toSlot)
	if err != nil {
		return fmt.Errorf("%w: lease acquire: %v", errkind.TransientIO, err)
	}
	if !acquired {
		return fmt.Errorf("%w: range [%d,%d] already leased by another migrator", errkind.Degraded, fromSlot, toSlot)
	}
	defer m.hs.ReleaseMigrationLease(fromSlot, toSlot)

	var values []event.Value
	for slot := fromSlot; slot <= toSlot; slot++ {
		rows, err := m.hs.ScanBySlot(ctx, kind, slot)
		if err != nil {
			return fmt.Errorf("%w: scan slot %d: %v", errkind.TransientIO, slot, err)
		}
		values = append(values, rows...)
	}
	if len(values) == 0 {
		return nil
	}

	if err := m.throttle.wait(ctx, len(values)); err != nil {
		return err
	}

	path, err := coldstore.WriteSegment(m.cfg.ColdStoreRoot, kind, fromSlot, toSlot, values)
	if err != nil {
		return err
	}
	m.index.Add(kind, fromSlot, toSlot, path)
	m.recordsMigrated.Add(float64(len(values)))
	if fi, err := os.Stat(path); err == nil {
		m.bytesWritten.Add(float64(fi.Size()))
	}

	if err := m.hs.PruneSlotRange(ctx, kind, fromSlot, toSlot); err != nil {
		return fmt.Errorf("%w: prune after migration: %v", errkind.TransientIO, err)
	}
	return nil
}
