package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
	"github.com/stretchr/testify/require"
)

type fakeCommitter struct {
	mu       sync.Mutex
	accounts []*event.AccountUpdate
	txs      []*event.Transaction
	blocks   []*event.BlockInfo
	rooted   uint64
	failNext bool
	orphaned []uint64
}

func (f *fakeCommitter) CommitAccountUpdate(_ context.Context, v *event.AccountUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errkind.TransientIO
	}
	f.accounts = append(f.accounts, v)
	return nil
}

func (f *fakeCommitter) CommitTransaction(_ context.Context, v *event.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, v)
	return nil
}

func (f *fakeCommitter) CommitBlockInfo(_ context.Context, v *event.BlockInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = append(f.blocks, v)
	return nil
}

func (f *fakeCommitter) GreatestRootedSlot(_ context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooted, nil
}

func (f *fakeCommitter) SetGreatestRootedSlot(_ context.Context, slot uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooted = slot
	return nil
}

func (f *fakeCommitter) MarkSlotOrphaned(_ context.Context, slot uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orphaned = append(f.orphaned, slot)
	return nil
}

func samplePubkey(b byte) event.Pubkey {
	var p event.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func TestSlotStatusTransitions(t *testing.T) {
	env := global.New()
	c := &fakeCommitter{}
	m := New(env, c, nil, nil)

	ctx := context.Background()
	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 1, Parent: 0, Status: event.Confirmed}))
	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 1, Parent: 0, Status: event.Rooted}))

	rec := m.slots[1]
	require.Equal(t, Rooted, rec.state)
	require.Equal(t, uint64(1), c.rooted)
}

func TestDuplicateStatusIsRejected(t *testing.T) {
	env := global.New()
	c := &fakeCommitter{}
	m := New(env, c, nil, nil)
	ctx := context.Background()

	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 1, Parent: 0, Status: event.Confirmed}))
	err := m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 1, Parent: 0, Status: event.Confirmed})
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.Duplicate))
}

func TestGapDetection(t *testing.T) {
	env := global.New()
	c := &fakeCommitter{}
	m := New(env, c, nil, nil)
	ctx := context.Background()

	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 1, Parent: 0, Status: event.Rooted}))
	require.Equal(t, uint64(1), m.greatestRootedSnapshot())

	// slot 5 arrives rooted without 2,3,4 ever seen -> gap [1,5]
	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 5, Parent: 4, Status: event.Rooted}))
	require.Equal(t, uint64(1), m.greatestRootedSnapshot())
}

func TestOrphanCompetingSlot(t *testing.T) {
	env := global.New()
	c := &fakeCommitter{}
	m := New(env, c, nil, nil)
	ctx := context.Background()

	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 10, Parent: 9, Status: event.Confirmed}))
	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 11, Parent: 9, Status: event.Confirmed}))

	// slot 11 roots first; slot 10 is a sibling at the same parent, not its ancestor -> orphaned
	require.NoError(t, m.Deliver(ctx, &event.SlotStatusUpdate{Slot: 11, Parent: 9, Status: event.Rooted}))

	require.Equal(t, Orphaned, m.slots[10].state)
	require.Equal(t, Rooted, m.slots[11].state)
	require.Equal(t, []uint64{10}, c.orphaned, "orphan transition must be persisted into the hot store")
}

func TestDeliverAccountUpdateCommitsImmediately(t *testing.T) {
	env := global.New()
	c := &fakeCommitter{}
	m := New(env, c, nil, nil)
	ctx := context.Background()

	a := &event.AccountUpdate{Pubkey: samplePubkey(1), Slot: 1, WriteVersion: 1}
	require.NoError(t, m.Deliver(ctx, a))
	require.Len(t, c.accounts, 1)
}

func TestDegradedModeOnTransientFailure(t *testing.T) {
	env := global.New()
	c := &fakeCommitter{failNext: true}
	m := New(env, c, nil, nil)
	ctx := context.Background()

	a := &event.AccountUpdate{Pubkey: samplePubkey(1), Slot: 1, WriteVersion: 1}
	err := m.Deliver(ctx, a)
	require.Error(t, err)
	require.True(t, m.IsDegraded())
}

func TestAncestorGraphWalk(t *testing.T) {
	g := newAncestorGraph()
	g.addEdge(3, 2)
	g.addEdge(2, 1)
	g.addEdge(1, 0)

	require.True(t, g.isAncestor(3, 1))
	require.True(t, g.isAncestor(3, 3))
	require.False(t, g.isAncestor(1, 3))
}
