package event

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/solindex/geyser-indexer/errkind"
)

// CurrentSchemaVersion is the highest schema-version byte this build
// knows how to decode, per kind. All kinds share one version number
// for simplicity; a kind that needs to evolve independently can split
// this map later without breaking the wire format of the others.
const CurrentSchemaVersion byte = 1

// Encode serializes v as a length-prefixed, little-endian, versioned
// record: u32 length | u8 kind | u8 schema-version | payload. The
// length prefix covers everything after itself.
func Encode(v Value) ([]byte, error) {
	if err := Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	var body bytes.Buffer
	switch x := v.(type) {
	case *AccountUpdate:
		encodeAccountUpdate(&body, x)
	case *Transaction:
		encodeTransaction(&body, x)
	case *SlotStatusUpdate:
		encodeSlotStatus(&body, x)
	case *BlockInfo:
		encodeBlockInfo(&body, x)
	default:
		return nil, fmt.Errorf("%w: unknown value type %T", errkind.Malformed, v)
	}

	out := make([]byte, 0, 4+2+body.Len())
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(2+body.Len()))
	out = append(out, lenBuf...)
	out = append(out, byte(v.Kind()), CurrentSchemaVersion)
	out = append(out, body.Bytes()...)
	return out, nil
}

// Decode parses a record produced by Encode. It returns errkind.
// SchemaTooNew if the schema-version byte exceeds what this build
// understands, and errkind.Malformed on truncation or an invariant
// violation.
func Decode(data []byte) (Value, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: truncated length prefix", errkind.Malformed)
	}
	n := binary.LittleEndian.Uint32(data[:4])
	rest := data[4:]
	if uint32(len(rest)) < n {
		return nil, fmt.Errorf("%w: truncated record, want %d have %d", errkind.Malformed, n, len(rest))
	}
	rest = rest[:n]
	if len(rest) < 2 {
		return nil, fmt.Errorf("%w: truncated header", errkind.Malformed)
	}
	kind := Kind(rest[0])
	schema := rest[1]
	if schema > CurrentSchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d > %d", errkind.SchemaTooNew, schema, CurrentSchemaVersion)
	}
	body := bytes.NewReader(rest[2:])

	var v Value
	var err error
	switch kind {
	case KindAccount:
		v, err = decodeAccountUpdate(body)
	case KindTransaction:
		v, err = decodeTransaction(body)
	case KindSlotStatus:
		v, err = decodeSlotStatus(body)
	case KindBlockInfo:
		v, err = decodeBlockInfo(body)
	default:
		return nil, fmt.Errorf("%w: unknown kind byte %d", errkind.Malformed, kind)
	}
	if err != nil {
		return nil, err
	}
	if verr := Validate(v); verr != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, verr)
	}
	return v, nil
}

// DecodeOne decodes a single record from the head of data, returning
// the value and the number of bytes it consumed so callers can scan a
// concatenation of records (a publisher batch payload) one at a time.
func DecodeOne(data []byte) (Value, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: truncated length prefix", errkind.Malformed)
	}
	n := binary.LittleEndian.Uint32(data[:4])
	total := int(4 + n)
	if total > len(data) {
		return nil, 0, fmt.Errorf("%w: truncated record, want %d have %d", errkind.Malformed, total, len(data))
	}
	v, err := Decode(data[:total])
	if err != nil {
		return nil, 0, err
	}
	return v, total, nil
}

func writeU64(w *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func writeI64(w *bytes.Buffer, v int64) {
	writeU64(w, uint64(v))
}

func writeU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeBool(w *bytes.Buffer, v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func writeBytes(w *bytes.Buffer, b []byte) {
	writeU32(w, uint32(len(b)))
	w.Write(b)
}

func writeString(w *bytes.Buffer, s string) {
	writeBytes(w, []byte(s))
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readI64(r io.Reader) (int64, error) {
	v, err := readU64(r)
	return int64(v), err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return b[0] != 0, nil
}

const maxVariableFieldLen = 64 << 20

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n > maxVariableFieldLen {
		return nil, fmt.Errorf("%w: field length %d exceeds limit", errkind.Malformed, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return buf, nil
}

func readString(r io.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readFixed32(r io.Reader) ([32]byte, error) {
	var b [32]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return b, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return b, nil
}

func readFixed64(r io.Reader) ([64]byte, error) {
	var b [64]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return b, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return b, nil
}

func encodeAccountUpdate(w *bytes.Buffer, a *AccountUpdate) {
	w.Write(a.Pubkey[:])
	w.Write(a.Owner[:])
	writeU64(w, a.Slot)
	writeU64(w, a.WriteVersion)
	writeU64(w, a.Lamports)
	writeU64(w, a.RentEpoch)
	writeBool(w, a.Executable)
	writeBool(w, a.IsStartup)
	writeBytes(w, a.Data)
}

func decodeAccountUpdate(r io.Reader) (*AccountUpdate, error) {
	a := &AccountUpdate{}
	var err error
	if a.Pubkey, err = readFixed32(r); err != nil {
		return nil, err
	}
	if a.Owner, err = readFixed32(r); err != nil {
		return nil, err
	}
	if a.Slot, err = readU64(r); err != nil {
		return nil, err
	}
	if a.WriteVersion, err = readU64(r); err != nil {
		return nil, err
	}
	if a.Lamports, err = readU64(r); err != nil {
		return nil, err
	}
	if a.RentEpoch, err = readU64(r); err != nil {
		return nil, err
	}
	if a.Executable, err = readBool(r); err != nil {
		return nil, err
	}
	if a.IsStartup, err = readBool(r); err != nil {
		return nil, err
	}
	if a.Data, err = readBytes(r); err != nil {
		return nil, err
	}
	return a, nil
}

func encodeTransaction(w *bytes.Buffer, t *Transaction) {
	w.Write(t.Signature[:])
	writeU64(w, t.Slot)
	writeU32(w, t.IndexInSlot)
	writeBool(w, t.IsVote)
	writeBool(w, t.Success)
	writeU64(w, t.Fee)
	writeU32(w, uint32(len(t.AccountKeys)))
	for _, k := range t.AccountKeys {
		w.Write(k[:])
	}
	writeBytes(w, t.Message)
	writeBytes(w, t.Meta)
	writeU32(w, uint32(len(t.LogMessages)))
	for _, l := range t.LogMessages {
		writeString(w, l)
	}
}

func decodeTransaction(r io.Reader) (*Transaction, error) {
	t := &Transaction{}
	var err error
	if t.Signature, err = readFixed64(r); err != nil {
		return nil, err
	}
	if t.Slot, err = readU64(r); err != nil {
		return nil, err
	}
	if t.IndexInSlot, err = readU32(r); err != nil {
		return nil, err
	}
	if t.IsVote, err = readBool(r); err != nil {
		return nil, err
	}
	if t.Success, err = readBool(r); err != nil {
		return nil, err
	}
	if t.Fee, err = readU64(r); err != nil {
		return nil, err
	}
	nKeys, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if nKeys > 4096 {
		return nil, fmt.Errorf("%w: account key count %d exceeds limit", errkind.Malformed, nKeys)
	}
	t.AccountKeys = make([]Pubkey, nKeys)
	for i := range t.AccountKeys {
		if t.AccountKeys[i], err = readFixed32(r); err != nil {
			return nil, err
		}
	}
	if t.Message, err = readBytes(r); err != nil {
		return nil, err
	}
	if t.Meta, err = readBytes(r); err != nil {
		return nil, err
	}
	nLogs, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if nLogs > 1<<20 {
		return nil, fmt.Errorf("%w: log message count %d exceeds limit", errkind.Malformed, nLogs)
	}
	t.LogMessages = make([]string, nLogs)
	for i := range t.LogMessages {
		if t.LogMessages[i], err = readString(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func encodeSlotStatus(w *bytes.Buffer, s *SlotStatusUpdate) {
	writeU64(w, s.Slot)
	writeU64(w, s.Parent)
	w.WriteByte(byte(s.Status))
}

func decodeSlotStatus(r io.Reader) (*SlotStatusUpdate, error) {
	s := &SlotStatusUpdate{}
	var err error
	if s.Slot, err = readU64(r); err != nil {
		return nil, err
	}
	if s.Parent, err = readU64(r); err != nil {
		return nil, err
	}
	var b [1]byte
	if _, err = io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	s.Status = SlotStatusValue(b[0])
	return s, nil
}

func encodeBlockInfo(w *bytes.Buffer, b *BlockInfo) {
	writeU64(w, b.Slot)
	w.Write(b.Blockhash[:])
	w.Write(b.ParentBlockhash[:])
	writeI64(w, b.BlockTime)
	writeU64(w, b.BlockHeight)
	writeU64(w, b.ExecutedTxCount)
	writeU32(w, uint32(len(b.Rewards)))
	for _, rw := range b.Rewards {
		w.Write(rw.Pubkey[:])
		writeI64(w, rw.Lamports)
		writeU64(w, rw.PostBal)
	}
}

func decodeBlockInfo(r io.Reader) (*BlockInfo, error) {
	b := &BlockInfo{}
	var err error
	if b.Slot, err = readU64(r); err != nil {
		return nil, err
	}
	if b.Blockhash, err = readFixed32(r); err != nil {
		return nil, err
	}
	if b.ParentBlockhash, err = readFixed32(r); err != nil {
		return nil, err
	}
	if b.BlockTime, err = readI64(r); err != nil {
		return nil, err
	}
	if b.BlockHeight, err = readU64(r); err != nil {
		return nil, err
	}
	if b.ExecutedTxCount, err = readU64(r); err != nil {
		return nil, err
	}
	nRewards, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if nRewards > 1<<16 {
		return nil, fmt.Errorf("%w: reward count %d exceeds limit", errkind.Malformed, nRewards)
	}
	b.Rewards = make([]Reward, nRewards)
	for i := range b.Rewards {
		if b.Rewards[i].Pubkey, err = readFixed32(r); err != nil {
			return nil, err
		}
		if b.Rewards[i].Lamports, err = readI64(r); err != nil {
			return nil, err
		}
		if b.Rewards[i].PostBal, err = readU64(r); err != nil {
			return nil, err
		}
	}
	return b, nil
}
