package event

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Envelope is the wire-level wrapping of a published batch, carrying a
// stable MessageID for overlay-level deduplication. Payload is one
// EM-encoded batch: a sequence of Encode() records for a single
// (Kind, Slot) produced by the publisher.
type Envelope struct {
	Kind           Kind
	Slot           uint64
	MinWriteVer    uint64
	MaxWriteVer    uint64
	Count          uint32
	Compression    byte
	Payload        []byte
	OriginPeerID   string
	Sequence       uint64
	ProducedAtUnix int64
	MessageID      Hash
}

// CompressionNone/Snappy/Reserved are the OV frame compression codes
// from spec §6's wire format. Codec 2 is reserved for a future zstd
// variant and is never emitted by this build.
const (
	CompressionNone   byte = 0
	CompressionSnappy byte = 1
	compressionZstdRV byte = 2
)

// ComputeMessageID hashes (kind, slot, min write-version, max
// write-version, count, content-hash) per spec §3's Envelope
// invariant, making delivery idempotent across retries and peers.
func ComputeMessageID(kind Kind, slot, minWV, maxWV uint64, count uint32, contentHash Hash) Hash {
	var buf [8*3 + 4 + 1 + 32]byte
	off := 0
	buf[off] = byte(kind)
	off++
	binary.LittleEndian.PutUint64(buf[off:], slot)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], minWV)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], maxWV)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], count)
	off += 4
	copy(buf[off:], contentHash[:])

	sum := blake2b.Sum256(buf[:])
	return Hash(sum)
}

// ContentHash hashes the raw compressed payload bytes, used as one of
// the ComputeMessageID inputs.
func ContentHash(payload []byte) Hash {
	return Hash(blake2b.Sum256(payload))
}

// Less implements the canonical total order from spec §4.1: slot
// ascending, then kind, then entity-id, then write-version-or-index.
// It is used to order records within a batch and across backfill
// merges, not to order Envelopes (those are ordered by Slot alone
// within a kind, per spec §4.4).
func Less(a, b Value) bool {
	sa, sb := slotOf(a), slotOf(b)
	if sa != sb {
		return sa < sb
	}
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	ea, eb := a.EntityID(), b.EntityID()
	for i := 0; i < len(ea) && i < len(eb); i++ {
		if ea[i] != eb[i] {
			return ea[i] < eb[i]
		}
	}
	if len(ea) != len(eb) {
		return len(ea) < len(eb)
	}
	return versionOf(a) < versionOf(b)
}

func slotOf(v Value) uint64 {
	switch x := v.(type) {
	case *AccountUpdate:
		return x.Slot
	case *Transaction:
		return x.Slot
	case *SlotStatusUpdate:
		return x.Slot
	case *BlockInfo:
		return x.Slot
	default:
		return 0
	}
}

func versionOf(v Value) uint64 {
	switch x := v.(type) {
	case *AccountUpdate:
		return x.WriteVersion
	case *Transaction:
		return uint64(x.IndexInSlot)
	default:
		return 0
	}
}
