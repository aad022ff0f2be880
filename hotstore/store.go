package hotstore

import (
	"encoding/binary"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/global"
)

// Environment is the subset of the process-wide environment the hot
// store needs: logging and the GC background loop.
type Environment interface {
	global.NodeGlobal
}

// Config mirrors spec §6's network.data_dir and the sync-policy knob
// spec §4.7 calls out explicitly.
type Config struct {
	Dir                 string
	SyncWrites          bool
	CanonicalCacheSize  int
	GCInterval          time.Duration
}

func DefaultConfig(dir string) Config {
	return Config{
		Dir:                dir,
		SyncWrites:         false,
		CanonicalCacheSize: 1 << 20,
		GCInterval:         5 * time.Minute,
	}
}

// Store is the hot tier: a Badger v4 database plus the canonical-
// pointer cache that shortcuts duplicate AccountUpdate writes.
type Store struct {
	env   Environment
	db    *badger.DB
	cache *canonicalCache
	cfg   Config
}

// Open opens (or creates) the Badger database at cfg.Dir. Badger
// itself takes the directory's advisory lock (a LOCK file it flocks
// on open), so a second process pointed at the same data_dir fails
// here with a distinct, non-retryable error rather than silently
// corrupting state — the same exclusivity guarantee the teacher's
// node package gets from opening its own badger_adaptor database.
func Open(env Environment, cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot acquire hot store directory lock at %q: %v", errkind.Fatal, cfg.Dir, err)
	}

	s := &Store{
		env:   env,
		db:    db,
		cache: newCanonicalCache(cfg.CanonicalCacheSize),
		cfg:   cfg,
	}

	env.RepeatInBackground("hotstore_badger_gc", cfg.GCInterval, func() bool {
		s.runValueLogGC()
		return true
	})

	return s, nil
}

func (s *Store) runValueLogGC() {
	start := time.Now()
	err := s.db.RunValueLogGC(0.5)
	s.env.Log().Infof("[hotstore] value log GC (%v): %v", time.Since(start), err)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GreatestRootedSlotSync() (uint64, error) {
	var slot uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKeyGreatestRootedSlot)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			slot = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return slot, nil
}

func (s *Store) SetGreatestRootedSlotSync(slot uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], slot)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKeyGreatestRootedSlot, buf[:])
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}

func (s *Store) MigrationCursor() (uint64, error) {
	var cursor uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKeyMigrationCursor)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cursor = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return cursor, nil
}

func (s *Store) SetMigrationCursor(cursor uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], cursor)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKeyMigrationCursor, buf[:])
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return nil
}
