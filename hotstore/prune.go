package hotstore

import (
	"context"
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// PruneSlotRange deletes every primary-CF row for kind whose slot
// falls in [fromSlot, toSlot] — including superseded audit versions,
// not just the canonical one the by-slot index points at — plus the
// matching by-slot index entries. Called by the migrator only after
// the corresponding cold store segment is fsynced, checksummed and
// indexed. Value-log space is reclaimed lazily by the background GC
// loop, not synchronously here.
func (s *Store) PruneSlotRange(_ context.Context, kind event.Kind, fromSlot, toSlot uint64) error {
	primaryPrefix := []byte{prefixPrimary, byte(kind)}
	bySlotLo, bySlotHi := bySlotRangeBounds(fromSlot, toSlot)

	err := s.db.Update(func(txn *badger.Txn) error {
		var toDelete [][]byte

		opts := badger.DefaultIteratorOptions
		opts.Prefix = primaryPrefix
		it := txn.NewIterator(opts)
		for it.Seek(primaryPrefix); it.ValidForPrefix(primaryPrefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if len(key) < 16 {
				continue
			}
			slot := binary.BigEndian.Uint64(key[len(key)-16 : len(key)-8])
			if slot < fromSlot || slot > toSlot {
				continue
			}
			toDelete = append(toDelete, key)
		}
		it.Close()

		it2 := txn.NewIterator(badger.DefaultIteratorOptions)
		for it2.Seek(bySlotLo); it2.Valid(); it2.Next() {
			key := it2.Item().Key()
			if string(key) >= string(bySlotHi) {
				break
			}
			if len(key) < 10 || key[9] != byte(kind) {
				continue
			}
			toDelete = append(toDelete, it2.Item().KeyCopy(nil))
		}
		it2.Close()

		for _, k := range toDelete {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}
