package hotstore

import (
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/solindex/geyser-indexer/errkind"
)

// leaseTTL bounds how long a migration lease survives an owner that
// crashed mid-migration without releasing it; the next migrator to
// try the same range past this age treats the lease as abandoned.
const leaseTTL = 10 * time.Minute

// AcquireMigrationLease CAS-acquires the per-range row in the
// metadata CF that serializes concurrent migrators over the same
// slot range, generalizing the teacher's OS-advisory-lock-at-startup
// discipline to a logical, per-range lease that multiple migrator
// processes against the same data_dir would otherwise race on.
func (s *Store) AcquireMigrationLease(fromSlot, toSlot uint64) (bool, error) {
	key := metaKeyMigrationLease(fromSlot, toSlot)
	now := time.Now()

	acquired := false
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			var held time.Time
			if verr := item.Value(func(val []byte) error {
				return held.UnmarshalBinary(val)
			}); verr == nil && now.Sub(held) < leaseTTL {
				return nil
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		buf, err := now.MarshalBinary()
		if err != nil {
			return err
		}
		if err := txn.Set(key, buf); err != nil {
			return err
		}
		acquired = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return acquired, nil
}

func (s *Store) ReleaseMigrationLease(fromSlot, toSlot uint64) error {
	key := metaKeyMigrationLease(fromSlot, toSlot)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}
