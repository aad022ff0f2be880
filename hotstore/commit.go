package hotstore

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// CommitAccountUpdate implements ingest.Committer. Every version is
// written to the primary CF for audit per the canonical-value
// invariant; the by-slot secondary index is only repointed at this
// version when the canonical cache reports it as the greatest
// write_version seen for (pubkey, slot), so a scan by slot always
// surfaces the canonical row without a tie-break at read time.
func (s *Store) CommitAccountUpdate(_ context.Context, v *event.AccountUpdate) error {
	raw, err := event.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.Malformed, err)
	}

	pk := primaryKey(event.KindAccount, v.EntityID(), v.Slot, v.WriteVersion)
	isCanonical := s.cache.observe(canonicalKey{kind: byte(event.KindAccount), slot: v.Slot, id: string(v.EntityID())}, v.WriteVersion)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(pk, raw); err != nil {
			return err
		}
		if isCanonical {
			return txn.Set(bySlotKey(v.Slot, event.KindAccount, v.EntityID()), pk)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}

// CommitTransaction implements ingest.Committer. Transactions carry
// no write-version; index-in-slot orders the primary key but every
// delivery for (signature, slot) is canonical by definition.
func (s *Store) CommitTransaction(_ context.Context, v *event.Transaction) error {
	raw, err := event.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.Malformed, err)
	}

	pk := primaryKey(event.KindTransaction, v.EntityID(), v.Slot, uint64(v.IndexInSlot))

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(pk, raw); err != nil {
			return err
		}
		return txn.Set(bySlotKey(v.Slot, event.KindTransaction, v.EntityID()), pk)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}

// CommitBlockInfo implements ingest.Committer. BlockInfo exists at
// most once per slot once that slot is Confirmed or later.
func (s *Store) CommitBlockInfo(_ context.Context, v *event.BlockInfo) error {
	raw, err := event.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.Malformed, err)
	}

	pk := primaryKey(event.KindBlockInfo, v.EntityID(), v.Slot, 0)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(pk, raw); err != nil {
			return err
		}
		return txn.Set(bySlotKey(v.Slot, event.KindBlockInfo, v.EntityID()), pk)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}

// MarkSlotOrphaned implements ingest.Committer: it persists the
// orphan transition ISM computed in memory so the canonical point-get
// path (Store.Get) keeps honoring it across restarts, not just for
// the lifetime of the in-process ancestor graph.
func (s *Store) MarkSlotOrphaned(_ context.Context, slot uint64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKeyOrphanSlot(slot), []byte{1})
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}

// isSlotOrphaned reads the orphan flag set by MarkSlotOrphaned inside
// an already-open transaction.
func isSlotOrphaned(txn *badger.Txn, slot uint64) (bool, error) {
	_, err := txn.Get(metaKeyOrphanSlot(slot))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GreatestRootedSlot(_ context.Context) (uint64, error) {
	return s.GreatestRootedSlotSync()
}

func (s *Store) SetGreatestRootedSlot(_ context.Context, slot uint64) error {
	return s.SetGreatestRootedSlotSync(slot)
}
