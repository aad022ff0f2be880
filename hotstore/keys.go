// Package hotstore is the durable, write-optimized tier for recent
// slots: a Badger v4 instance keyed so that point-gets, by-slot scans
// and migration snapshots all stay sequential writes/reads against
// the LSM tree. There is no trie layer here (see DESIGN.md for why
// the teacher's unitrie abstraction over Badger doesn't carry over):
// the indexer has no need for Merkle proofs over this data, only
// ordered scans, so a direct badger.DB is the right fit.
package hotstore

import (
	"encoding/binary"

	"github.com/solindex/geyser-indexer/event"
)

// Key namespaces. A one-byte prefix keeps the three column families
// (primary, by-slot secondary index, metadata) in distinct lexical
// ranges of the same Badger keyspace, since Badger itself has no
// notion of column families.
const (
	prefixPrimary  byte = 'P'
	prefixBySlot   byte = 'S'
	prefixMetadata byte = 'M'
)

func putU64(b []byte, v uint64) {
	binary.BigEndian.PutUint64(b, v)
}

// primaryKey builds the primary CF key: kind-tag, entity-id, then
// big-endian slot and write-version-or-index so that all versions of
// one entity at one slot sort adjacent and in version order.
func primaryKey(kind event.Kind, entityID []byte, slot, writeVersion uint64) []byte {
	key := make([]byte, 0, 1+1+len(entityID)+8+8)
	key = append(key, prefixPrimary, byte(kind))
	key = append(key, entityID...)
	var tail [16]byte
	putU64(tail[0:8], slot)
	putU64(tail[8:16], writeVersion)
	key = append(key, tail[:]...)
	return key
}

// primaryKeyPrefix returns the prefix common to every version of one
// entity, used to scan for the canonical (highest write-version) row.
func primaryKeyPrefix(kind event.Kind, entityID []byte) []byte {
	key := make([]byte, 0, 1+1+len(entityID))
	key = append(key, prefixPrimary, byte(kind))
	key = append(key, entityID...)
	return key
}

// slotFromPrimaryKey extracts the slot component of a primary key
// built from prefix, i.e. the first 8 bytes following the entity
// prefix (see primaryKey).
func slotFromPrimaryKey(prefix, key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(prefix) : len(prefix)+8])
}

// bySlotKey builds the secondary index key: big-endian slot,
// kind-tag, entity-id -> primary key, so a slot range scan can drive
// migration and backfill without touching the primary CF's entity
// ordering.
func bySlotKey(slot uint64, kind event.Kind, entityID []byte) []byte {
	key := make([]byte, 0, 1+8+1+len(entityID))
	key = append(key, prefixBySlot)
	var s [8]byte
	putU64(s[:], slot)
	key = append(key, s[:]...)
	key = append(key, byte(kind))
	key = append(key, entityID...)
	return key
}

// bySlotRangeBounds returns the [lo, hi) key bounds covering every
// by-slot entry for slots in [fromSlot, toSlot].
func bySlotRangeBounds(fromSlot, toSlot uint64) (lo, hi []byte) {
	lo = make([]byte, 9)
	lo[0] = prefixBySlot
	putU64(lo[1:], fromSlot)
	hi = make([]byte, 9)
	hi[0] = prefixBySlot
	putU64(hi[1:], toSlot+1)
	return lo, hi
}

var (
	metaKeyGreatestRootedSlot = []byte{prefixMetadata, 'g'}
	metaKeySchemaVersion      = []byte{prefixMetadata, 's'}
	metaKeyMigrationCursor    = []byte{prefixMetadata, 'c'}
)

// metaKeyMigrationLease is the per-range CAS lease that serializes
// concurrent migrators over the same slot range, generalizing the
// teacher's OS-advisory-lock-at-startup discipline to a logical lease
// inside the metadata CF.
func metaKeyMigrationLease(fromSlot, toSlot uint64) []byte {
	key := make([]byte, 0, 2+16)
	key = append(key, prefixMetadata, 'l')
	var tail [16]byte
	putU64(tail[0:8], fromSlot)
	putU64(tail[8:16], toSlot)
	return append(key, tail[:]...)
}

// metaKeyOrphanSlot marks a slot as orphaned: the key's presence
// means a competing slot at the same height got rooted instead (spec
// §4.6's orphan rule), its absence means canonical. Checked by Get's
// point-get path so a slot that lost the fork does not shadow the
// still-canonical row at read time.
func metaKeyOrphanSlot(slot uint64) []byte {
	key := make([]byte, 0, 2+8)
	key = append(key, prefixMetadata, 'o')
	var tail [8]byte
	putU64(tail[:], slot)
	return append(key, tail[:]...)
}
