package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
)

type Environment interface {
	global.NodeGlobal
}

// Committer is the hot store's write path, taking one decoded event
// value per call. Account and transaction commits are immediate
// per spec §4.6; ISM never buffers beyond the in-flight batch it
// received the value in.
type Committer interface {
	CommitAccountUpdate(ctx context.Context, v *event.AccountUpdate) error
	CommitTransaction(ctx context.Context, v *event.Transaction) error
	CommitBlockInfo(ctx context.Context, v *event.BlockInfo) error
	GreatestRootedSlot(ctx context.Context) (uint64, error)
	SetGreatestRootedSlot(ctx context.Context, slot uint64) error
	// MarkSlotOrphaned persists the orphan transition a competing
	// root forces onto slot, so the hot store's canonical point-get
	// excludes it even after ISM's in-memory state is gone.
	MarkSlotOrphaned(ctx context.Context, slot uint64) error
}

// BackfillResult is the outcome of a pull request against the
// overlay's backfill protocol.
type BackfillResult struct {
	NotFound  bool
	Envelopes []*event.Envelope
}

// BackfillRequester is the overlay's pull-for-backfill surface,
// satisfied by a small adapter over *overlay.Overlay at wiring time.
type BackfillRequester interface {
	RequestBackfill(ctx context.Context, kind event.Kind, fromSlot, toSlot uint64) (*BackfillResult, error)
}

// ChainRPC is the external canonical-chain fallback used when OV
// backfill doesn't satisfy a gap within the timeout.
type ChainRPC interface {
	GetSlotData(ctx context.Context, slot uint64, kind event.Kind) ([]event.Value, error)
}

const (
	// DefaultMigrationDepth is K from spec §4.6: rooted-slots lag
	// before a slot becomes migration-eligible.
	DefaultMigrationDepth  = 32
	defaultBackfillTimeout = 30 * time.Second
)

// Machine is the per-node ingestion state machine: it owns slot
// state, the ancestor graph, gap tracking and the HS commit path.
type Machine struct {
	env      Environment
	commit   Committer
	overlay  BackfillRequester
	chainRPC ChainRPC

	mu      sync.Mutex
	slots   map[uint64]*slotRecord
	graph   *ancestorGraph
	greatestContiguousRooted uint64

	degraded bool

	backfillTimeout time.Duration
	migrationDepth  uint64
}

func New(env Environment, commit Committer, overlay BackfillRequester, chainRPC ChainRPC) *Machine {
	return &Machine{
		env:             env,
		commit:          commit,
		overlay:         overlay,
		chainRPC:        chainRPC,
		slots:           make(map[uint64]*slotRecord),
		graph:           newAncestorGraph(),
		backfillTimeout: defaultBackfillTimeout,
		migrationDepth:  DefaultMigrationDepth,
	}
}

func (m *Machine) recordFor(slot uint64) *slotRecord {
	rec, ok := m.slots[slot]
	if !ok {
		rec = &slotRecord{slot: slot, state: Unknown}
		m.slots[slot] = rec
	}
	return rec
}

// Deliver routes one decoded event into the state machine: slot
// status updates drive the state transitions and gap detection;
// account/tx/block values commit immediately per spec §4.6.
func (m *Machine) Deliver(ctx context.Context, v event.Value) error {
	switch x := v.(type) {
	case *event.SlotStatusUpdate:
		return m.handleSlotStatus(ctx, x)
	case *event.AccountUpdate:
		return m.commitWithDegradeGuard(ctx, func() error { return m.commit.CommitAccountUpdate(ctx, x) })
	case *event.Transaction:
		return m.commitWithDegradeGuard(ctx, func() error { return m.commit.CommitTransaction(ctx, x) })
	case *event.BlockInfo:
		return m.commitWithDegradeGuard(ctx, func() error { return m.commit.CommitBlockInfo(ctx, x) })
	default:
		return fmt.Errorf("%w: unhandled value type %T", errkind.Malformed, v)
	}
}

func (m *Machine) commitWithDegradeGuard(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		if errkind.Is(err, errkind.TransientIO) {
			m.mu.Lock()
			m.degraded = true
			m.mu.Unlock()
			m.env.Log().Warnf("[ingest] HS write failed, entering degraded mode: %v", err)
		}
		return err
	}
	return nil
}

func (m *Machine) IsDegraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

func (m *Machine) handleSlotStatus(ctx context.Context, s *event.SlotStatusUpdate) error {
	m.mu.Lock()

	rec := m.recordFor(s.Slot)
	if !rec.hasParent {
		rec.parent = s.Parent
		rec.hasParent = true
		m.graph.addEdge(s.Slot, s.Parent)
	}

	observed := Pending
	switch s.Status {
	case event.Confirmed:
		observed = Confirmed
	case event.Rooted:
		observed = Rooted
	}

	changed := rec.transition(observed)
	if !changed {
		m.mu.Unlock()
		return fmt.Errorf("%w: slot %d status %s did not advance state %s", errkind.Duplicate, s.Slot, observed, rec.state)
	}

	if observed == Rooted {
		orphaned := m.orphanCompetitorsAtLocked(s.Slot, s.Parent)
		gap := m.detectGapLocked(s.Slot)
		m.mu.Unlock()

		for _, slot := range orphaned {
			if err := m.commit.MarkSlotOrphaned(ctx, slot); err != nil {
				m.env.Log().Warnf("[ingest] failed to persist orphan flag for slot %d: %v", slot, err)
			}
		}

		if err := m.commit.SetGreatestRootedSlot(ctx, m.greatestRootedSnapshot()); err != nil {
			return err
		}
		if gap != nil {
			m.dispatchBackfill(ctx, *gap)
		}
		return nil
	}

	m.mu.Unlock()
	return nil
}

// orphanCompetitorsAtLocked flips the canonical flag off for any
// other slot record at the same height that is not an ancestor of the
// newly rooted slot, per spec §4.6's orphan rule, and returns the
// slots that actually transitioned so the caller can persist the flag
// into the hot store once m.mu is released. Called with m.mu held.
func (m *Machine) orphanCompetitorsAtLocked(rooted, parent uint64) []uint64 {
	var orphaned []uint64
	for slot, rec := range m.slots {
		if slot == rooted || rec.state == Orphaned {
			continue
		}
		if rec.parent == parent && slot != rooted {
			if !m.graph.isAncestor(rooted, slot) && rec.orphan() {
				orphaned = append(orphaned, slot)
			}
		}
	}
	return orphaned
}

type gapRange struct {
	fromSlot, toSlot uint64
}

// detectGapLocked advances the greatest-contiguous-rooted slot
// pointer and returns a gap to backfill if rootedSlot jumps ahead of
// it by more than one. Called with m.mu held.
func (m *Machine) detectGapLocked(rootedSlot uint64) *gapRange {
	g := m.greatestContiguousRooted
	if rootedSlot <= g {
		return nil
	}
	if rootedSlot == g+1 {
		m.greatestContiguousRooted = rootedSlot
		// advancing may have closed a previously-detected gap if
		// intermediate slots were filled out of order
		for next, ok := m.slots[m.greatestContiguousRooted+1]; ok && next.state == Rooted; next, ok = m.slots[m.greatestContiguousRooted+1] {
			m.greatestContiguousRooted++
		}
		return nil
	}
	return &gapRange{fromSlot: g, toSlot: rootedSlot}
}

func (m *Machine) greatestRootedSnapshot() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.greatestContiguousRooted
}

// dispatchBackfill tries OV pull first, falling back to the chain RPC
// per spec §4.6, committing whatever it recovers through the normal
// Deliver path.
func (m *Machine) dispatchBackfill(ctx context.Context, gap gapRange) {
	m.env.MarkStartedComponent()
	go func() {
		defer m.env.MarkStoppedComponent()

		bctx, cancel := context.WithTimeout(ctx, m.backfillTimeout)
		defer cancel()

		for _, kind := range event.AllKinds() {
			if m.backfillFromOverlay(bctx, kind, gap) {
				continue
			}
			m.backfillFromChainRPC(ctx, kind, gap)
		}
	}()
}

func (m *Machine) backfillFromOverlay(ctx context.Context, kind event.Kind, gap gapRange) bool {
	if m.overlay == nil {
		return false
	}
	result, err := m.overlay.RequestBackfill(ctx, kind, gap.fromSlot, gap.toSlot)
	if err != nil || result.NotFound {
		return false
	}
	for _, env := range result.Envelopes {
		m.commitBatchPayload(ctx, env)
	}
	return true
}

func (m *Machine) backfillFromChainRPC(ctx context.Context, kind event.Kind, gap gapRange) {
	if m.chainRPC == nil {
		m.env.Log().Warnf("[ingest] gap [%d,%d] for kind %s unresolved: no chain RPC configured", gap.fromSlot, gap.toSlot, kind)
		return
	}
	for slot := gap.fromSlot + 1; slot < gap.toSlot; slot++ {
		values, err := m.chainRPC.GetSlotData(ctx, slot, kind)
		if err != nil {
			m.env.Log().Warnf("[ingest] chain rpc backfill failed for slot %d kind %s: %v", slot, kind, err)
			continue
		}
		for _, v := range values {
			if err := m.Deliver(ctx, v); err != nil && !errkind.Is(err, errkind.Duplicate) {
				m.env.Log().Warnf("[ingest] failed to commit backfilled slot %d: %v", slot, err)
			}
		}
	}
}

// DeliverEnvelope is the live-gossip entrypoint: the overlay's
// onDeliver callback hands every envelope it accepts through its
// dedup window here.
func (m *Machine) DeliverEnvelope(ctx context.Context, env *event.Envelope) {
	m.commitBatchPayload(ctx, env)
}

// commitBatchPayload decodes an overlay envelope's concatenated
// records and delivers each one; used for both live gossip and
// backfill replies.
func (m *Machine) commitBatchPayload(ctx context.Context, env *event.Envelope) {
	raw, err := decompress(env)
	if err != nil {
		m.env.Log().Warnf("[ingest] failed to decompress envelope for slot %d: %v", env.Slot, err)
		return
	}
	for len(raw) > 0 {
		v, n, err := event.DecodeOne(raw)
		if err != nil {
			m.env.Log().Warnf("[ingest] malformed record in envelope for slot %d: %v", env.Slot, err)
			return
		}
		if err := m.Deliver(ctx, v); err != nil && !errkind.Is(err, errkind.Duplicate) {
			m.env.Log().Warnf("[ingest] failed to commit record from slot %d: %v", env.Slot, err)
		}
		raw = raw[n:]
	}
}
