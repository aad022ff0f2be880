package event

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// SlotStatus is the chain-reported confirmation level of a slot.
// Transitions are monotonic: Processed -> Confirmed -> Rooted.
type SlotStatusValue byte

const (
	Processed SlotStatusValue = iota
	Confirmed
	Rooted
)

func (s SlotStatusValue) String() string {
	switch s {
	case Processed:
		return "processed"
	case Confirmed:
		return "confirmed"
	case Rooted:
		return "rooted"
	default:
		return "unknown"
	}
}

// Less reports whether s is a strictly earlier confirmation level than
// other, used by the ingestion state machine to reject regressions.
func (s SlotStatusValue) Less(other SlotStatusValue) bool {
	return s < other
}

// Pubkey is a 32-byte validator account/owner identity.
type Pubkey [32]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// Signature is a 64-byte transaction signature.
type Signature [64]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

// Hash is a 32-byte content hash (blockhash, message-id).
type Hash [32]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

// AccountUpdate mirrors spec §3's AccountUpdate entity. Its identity
// is (Pubkey, Slot, WriteVersion); the canonical row for (Pubkey, Slot)
// is the one with the greatest WriteVersion.
type AccountUpdate struct {
	Pubkey       Pubkey
	Owner        Pubkey
	Slot         uint64
	WriteVersion uint64
	Lamports     uint64
	RentEpoch    uint64
	Executable   bool
	IsStartup    bool
	Data         []byte
}

func (a *AccountUpdate) Kind() Kind { return KindAccount }

func (a *AccountUpdate) EntityID() []byte { return a.Pubkey[:] }

// Transaction mirrors spec §3's Transaction entity, identity
// (Signature, Slot).
type Transaction struct {
	Signature   Signature
	Slot        uint64
	IndexInSlot uint32
	IsVote      bool
	Success     bool
	Fee         uint64
	AccountKeys []Pubkey
	Message     []byte
	Meta        []byte
	LogMessages []string
}

func (t *Transaction) Kind() Kind { return KindTransaction }

func (t *Transaction) EntityID() []byte { return t.Signature[:] }

// SlotStatusUpdate mirrors spec §3's SlotStatus entity, identity Slot.
type SlotStatusUpdate struct {
	Slot   uint64
	Parent uint64
	Status SlotStatusValue
}

func (s *SlotStatusUpdate) Kind() Kind { return KindSlotStatus }

func (s *SlotStatusUpdate) EntityID() []byte {
	return encodeU64(s.Slot)
}

// Reward is one entry of BlockInfo.Rewards.
type Reward struct {
	Pubkey   Pubkey
	Lamports int64
	PostBal  uint64
}

// BlockInfo mirrors spec §3's BlockInfo entity, identity Slot. It only
// exists for a slot once that slot is Confirmed or later.
type BlockInfo struct {
	Slot              uint64
	Blockhash         Hash
	ParentBlockhash   Hash
	BlockTime         int64
	BlockHeight       uint64
	ExecutedTxCount   uint64
	Rewards           []Reward
}

func (b *BlockInfo) Kind() Kind { return KindBlockInfo }

func (b *BlockInfo) EntityID() []byte {
	return encodeU64(b.Slot)
}

// Value is implemented by every EM payload type.
type Value interface {
	Kind() Kind
	EntityID() []byte
}

func encodeU64(v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	return b[:]
}

// Validate checks the invariants EM decode() must enforce (pubkey/
// signature/hash lengths are fixed by the Go type system already, so
// this mainly guards variable-length fields and cross-field rules).
func Validate(v Value) error {
	switch x := v.(type) {
	case *AccountUpdate:
		if x.Slot == 0 && x.WriteVersion == 0 && x.Pubkey.IsZero() {
			return fmt.Errorf("account update: zero-value pubkey")
		}
	case *Transaction:
		if len(x.AccountKeys) == 0 {
			return fmt.Errorf("transaction: no account keys")
		}
	case *SlotStatusUpdate:
		if x.Status > Rooted {
			return fmt.Errorf("slot status: unknown status byte %d", x.Status)
		}
	case *BlockInfo:
		// no extra invariant beyond what the codec enforces
	default:
		return fmt.Errorf("event: unknown value type %T", v)
	}
	return nil
}
