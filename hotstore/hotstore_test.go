package hotstore

import (
	"context"
	"testing"

	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
	"github.com/stretchr/testify/require"
)

func samplePubkey(b byte) event.Pubkey {
	var p event.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	s, err := Open(global.New(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCommitAccountUpdateCanonicalOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pk := samplePubkey(1)
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 10, WriteVersion: 1, Lamports: 100}))
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 10, WriteVersion: 3, Lamports: 300}))
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 10, WriteVersion: 2, Lamports: 200}))

	v, err := s.Get(ctx, event.KindAccount, pk[:])
	require.NoError(t, err)
	acc, ok := v.(*event.AccountUpdate)
	require.True(t, ok)
	require.Equal(t, uint64(3), acc.WriteVersion)
	require.Equal(t, uint64(300), acc.Lamports)
}

func TestScanBySlotReturnsCanonicalRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := samplePubkey(1)
	b := samplePubkey(2)
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: a, Owner: a, Slot: 5, WriteVersion: 1}))
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: b, Owner: b, Slot: 5, WriteVersion: 1}))

	values, err := s.ScanBySlot(ctx, event.KindAccount, 5)
	require.NoError(t, err)
	require.Len(t, values, 2)
}

// TestGetExcludesOrphanedSlotByDefault matches spec §8 scenario 4:
// slot 300 is orphaned in favor of slot 301, so its row must stay
// reachable via ScanBySlot but drop out of the canonical point-get.
func TestGetExcludesOrphanedSlotByDefault(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pk := samplePubkey(1)
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 290, WriteVersion: 1, Lamports: 10}))
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 300, WriteVersion: 1, Lamports: 20}))

	v, err := s.Get(ctx, event.KindAccount, pk[:])
	require.NoError(t, err)
	require.Equal(t, uint64(20), v.(*event.AccountUpdate).Lamports)

	require.NoError(t, s.MarkSlotOrphaned(ctx, 300))

	v, err = s.Get(ctx, event.KindAccount, pk[:])
	require.NoError(t, err)
	require.Equal(t, uint64(10), v.(*event.AccountUpdate).Lamports, "canonical point-get must fall back past the orphaned slot")

	values, err := s.ScanBySlot(ctx, event.KindAccount, 300)
	require.NoError(t, err)
	require.Len(t, values, 1, "orphaned slot's row must remain queryable by slot")
}

func TestGreatestRootedSlotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.GreatestRootedSlot(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), got)

	require.NoError(t, s.SetGreatestRootedSlot(ctx, 42))
	got, err = s.GreatestRootedSlot(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got)
}

func TestReadRangeReencodesCommittedRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pk := samplePubkey(1)
	require.NoError(t, s.CommitAccountUpdate(ctx, &event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 7, WriteVersion: 1}))

	envs, err := s.ReadRange(ctx, event.KindAccount, 6, 8)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	require.Equal(t, uint64(7), envs[0].Slot)
	require.Equal(t, uint32(1), envs[0].Count)
}

func TestOpenSecondInstanceFailsOnLock(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(global.New(), DefaultConfig(dir))
	require.NoError(t, err)
	defer s1.Close()

	_, err = Open(global.New(), DefaultConfig(dir))
	require.Error(t, err)
}
