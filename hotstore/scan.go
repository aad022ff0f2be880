package hotstore

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// Get point-gets the canonical row for (kind, entityID) by walking
// the primary CF's per-entity range backwards from the highest key,
// i.e. the highest (slot, write_version) pair on file for that
// entity. Rows at a slot MarkSlotOrphaned flagged are skipped: per
// spec §4.6/§8 scenario 4, an orphaned slot's data stays queryable
// through ScanBySlot but is excluded from the canonical point-get by
// default, so Get keeps walking backwards for the next-most-recent
// canonical row instead of surfacing a losing fork's value. Used by
// the out-of-scope read-API boundary named in SPEC_FULL.md.
func (s *Store) Get(_ context.Context, kind event.Kind, entityID []byte) (event.Value, error) {
	prefix := primaryKeyPrefix(kind, entityID)
	var raw []byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			orphaned, err := isSlotOrphaned(txn, slotFromPrimaryKey(prefix, key))
			if err != nil {
				return err
			}
			if orphaned {
				continue
			}
			return it.Item().Value(func(val []byte) error {
				raw = append(raw, val...)
				return nil
			})
		}
		return badger.ErrKeyNotFound
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: no row for entity", errkind.Malformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return event.Decode(raw)
}

// ScanBySlot returns every canonical-or-audit value recorded at slot
// for kind, in entity order, via the by-slot secondary index. Unlike
// Get, it does not consult the orphan flag: spec §8 scenario 4
// requires an orphaned slot's rows to remain queryable by slot, only
// the default canonical point-get excludes them.
func (s *Store) ScanBySlot(_ context.Context, kind event.Kind, slot uint64) ([]event.Value, error) {
	lo, hi := bySlotRangeBounds(slot, slot)
	var values []event.Value

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(lo); it.Valid(); it.Next() {
			key := it.Item().Key()
			if string(key) >= string(hi) {
				break
			}
			if len(key) < 10 || key[9] != byte(kind) {
				continue
			}
			var pk []byte
			if err := it.Item().Value(func(val []byte) error {
				pk = append(pk, val...)
				return nil
			}); err != nil {
				return err
			}
			item, err := txn.Get(pk)
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				v, err := event.Decode(val)
				if err != nil {
					return err
				}
				values = append(values, v)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return values, nil
}
