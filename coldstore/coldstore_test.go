package coldstore

import (
	"os"
	"testing"

	"github.com/solindex/geyser-indexer/event"
	"github.com/stretchr/testify/require"
)

func corruptSegmentFooter(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func samplePubkey(b byte) event.Pubkey {
	var p event.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func TestWriteReadSegmentRoundTrip(t *testing.T) {
	root := t.TempDir()
	pk := samplePubkey(7)
	values := []event.Value{
		&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 10, WriteVersion: 1, Lamports: 500, Data: []byte("hello")},
		&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 11, WriteVersion: 1, Lamports: 600, Data: []byte("world")},
	}

	path, err := WriteSegment(root, event.KindAccount, 10, 11, values)
	require.NoError(t, err)

	minSlot, maxSlot, decoded, err := ReadSegment(path, event.KindAccount)
	require.NoError(t, err)
	require.Equal(t, uint64(10), minSlot)
	require.Equal(t, uint64(11), maxSlot)
	require.Len(t, decoded, 2)

	a0 := decoded[0].(*event.AccountUpdate)
	require.Equal(t, pk, a0.Pubkey)
	require.Equal(t, uint64(500), a0.Lamports)
	require.Equal(t, []byte("hello"), a0.Data)
}

func TestWriteReadTransactionSegment(t *testing.T) {
	root := t.TempDir()
	var sig event.Signature
	sig[0] = 9
	k1, k2 := samplePubkey(1), samplePubkey(2)
	values := []event.Value{
		&event.Transaction{
			Signature:   sig,
			Slot:        5,
			IndexInSlot: 2,
			Success:     true,
			Fee:         1000,
			AccountKeys: []event.Pubkey{k1, k2},
			Message:     []byte("msg"),
			Meta:        []byte("meta"),
			LogMessages: []string{"log1", "log2"},
		},
	}

	path, err := WriteSegment(root, event.KindTransaction, 5, 5, values)
	require.NoError(t, err)

	_, _, decoded, err := ReadSegment(path, event.KindTransaction)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	tx := decoded[0].(*event.Transaction)
	require.Equal(t, sig, tx.Signature)
	require.Equal(t, []event.Pubkey{k1, k2}, tx.AccountKeys)
	require.Equal(t, []string{"log1", "log2"}, tx.LogMessages)
}

func TestIndexLookup(t *testing.T) {
	root := t.TempDir()
	pk := samplePubkey(3)
	values := []event.Value{
		&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 100, WriteVersion: 1},
	}
	path, err := WriteSegment(root, event.KindAccount, 100, 100, values)
	require.NoError(t, err)

	idx := NewIndex(root)
	idx.Add(event.KindAccount, 100, 100, path)

	found, err := idx.Lookup(event.KindAccount, 100)
	require.NoError(t, err)
	require.Len(t, found, 1)

	missing, err := idx.Lookup(event.KindAccount, 200)
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestIndexRebuildFromDisk(t *testing.T) {
	root := t.TempDir()
	pk := samplePubkey(4)
	_, err := WriteSegment(root, event.KindAccount, 1, 1, []event.Value{&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 1, WriteVersion: 1}})
	require.NoError(t, err)

	idx := NewIndex(root)
	require.NoError(t, idx.Rebuild())

	found, err := idx.Lookup(event.KindAccount, 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestCorruptFooterTreatedAsAbsent(t *testing.T) {
	root := t.TempDir()
	pk := samplePubkey(5)
	path, err := WriteSegment(root, event.KindAccount, 1, 1, []event.Value{&event.AccountUpdate{Pubkey: pk, Owner: pk, Slot: 1, WriteVersion: 1}})
	require.NoError(t, err)

	corruptSegmentFooter(t, path)

	_, _, _, err = ReadSegment(path, event.KindAccount)
	require.Error(t, err)
}
