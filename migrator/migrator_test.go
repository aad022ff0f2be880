package migrator

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/solindex/geyser-indexer/coldstore"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
	"github.com/stretchr/testify/require"
)

type fakeHotStore struct {
	mu      sync.Mutex
	rooted  uint64
	cursor  uint64
	leased  map[string]bool
	rows    map[uint64][]event.Value // by slot, KindAccount only
	pruned  []uint64
}

func newFakeHotStore() *fakeHotStore {
	return &fakeHotStore{leased: make(map[string]bool), rows: make(map[uint64][]event.Value)}
}

func (f *fakeHotStore) GreatestRootedSlot(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooted, nil
}

func (f *fakeHotStore) MigrationCursor() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, nil
}

func (f *fakeHotStore) SetMigrationCursor(cursor uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = cursor
	return nil
}

func (f *fakeHotStore) ScanBySlot(_ context.Context, kind event.Kind, slot uint64) ([]event.Value, error) {
	if kind != event.KindAccount {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[slot], nil
}

func leaseKey(fromSlot, toSlot uint64) string {
	return fmt.Sprintf("%d_%d", fromSlot, toSlot)
}

func (f *fakeHotStore) AcquireMigrationLease(fromSlot, toSlot uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := leaseKey(fromSlot, toSlot)
	if f.leased[k] {
		return false, nil
	}
	f.leased[k] = true
	return true, nil
}

func (f *fakeHotStore) ReleaseMigrationLease(fromSlot, toSlot uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.leased, leaseKey(fromSlot, toSlot))
	return nil
}

func (f *fakeHotStore) PruneSlotRange(_ context.Context, kind event.Kind, fromSlot, toSlot uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for slot := fromSlot; slot <= toSlot; slot++ {
		if _, ok := f.rows[slot]; ok {
			f.pruned = append(f.pruned, slot)
			delete(f.rows, slot)
		}
	}
	return nil
}

func samplePubkey(b byte) event.Pubkey {
	var p event.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func TestMigratorSealsAndPrunesEligibleRange(t *testing.T) {
	hs := newFakeHotStore()
	hs.rooted = 1000
	pk := samplePubkey(1)
	hs.rows[5] = []event.Value{&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 5, WriteVersion: 1}}

	root := t.TempDir()
	idx := coldstore.NewIndex(root)
	cfg := DefaultConfig(root)
	cfg.MigrationDepth = 32
	cfg.RangeSize = 10
	cfg.Period = 0

	m := New(global.New(), hs, idx, cfg)
	m.runPass()

	require.Equal(t, uint64(10), hs.cursor)
	require.Empty(t, hs.rows[5], "migrated slot should be pruned from the hot store")

	found, err := idx.Lookup(event.KindAccount, 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

// TestMigratorHotWindowNarrowsEligibleRange matches spec §8 scenario
// 5: rooted=1000, K=32, hot_window=256 must cap eligibleUpTo at
// 1000-32-256=712, not just 1000-32=968.
func TestMigratorHotWindowNarrowsEligibleRange(t *testing.T) {
	hs := newFakeHotStore()
	hs.rooted = 1000
	pk := samplePubkey(1)
	hs.rows[700] = []event.Value{&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 700, WriteVersion: 1}}
	hs.rows[720] = []event.Value{&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 720, WriteVersion: 1}}

	root := t.TempDir()
	idx := coldstore.NewIndex(root)
	cfg := DefaultConfig(root)
	cfg.MigrationDepth = 32
	cfg.HotWindowSlots = 256
	cfg.RangeSize = 1000
	cfg.Period = 0
	hs.cursor = 690

	m := New(global.New(), hs, idx, cfg)
	m.runPass()

	require.Equal(t, uint64(712), hs.cursor, "eligibleUpTo must be rooted - K - hot_window")
	require.Empty(t, hs.rows[700], "slot 700 is within [690,712], should be migrated")
	require.NotEmpty(t, hs.rows[720], "slot 720 is past hot_window boundary, must stay hot")
}

func TestMigratorSkipsWhenBelowDepth(t *testing.T) {
	hs := newFakeHotStore()
	hs.rooted = 10

	root := t.TempDir()
	idx := coldstore.NewIndex(root)
	cfg := DefaultConfig(root)
	cfg.MigrationDepth = 32

	m := New(global.New(), hs, idx, cfg)
	m.runPass()

	require.Equal(t, uint64(0), hs.cursor)
}
