package overlay

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// frameKind tags the first byte of every stream frame, letting one
// protocol handler dispatch gossip pushes, backfill requests and
// backfill responses without separate libp2p protocol IDs per kind.
const (
	frameKindGossip          byte = 1
	frameKindBackfillRequest byte = 2
	frameKindBackfillReply   byte = 3
)

func encodeGossipFrame(env *event.Envelope) []byte {
	var buf bytes.Buffer
	buf.WriteByte(frameKindGossip)
	buf.WriteByte(byte(env.Kind))
	writeU64(&buf, env.Slot)
	writeU64(&buf, env.MinWriteVer)
	writeU64(&buf, env.MaxWriteVer)
	writeU32(&buf, env.Count)
	buf.WriteByte(env.Compression)
	writeU64(&buf, env.Sequence)
	writeI64(&buf, env.ProducedAtUnix)
	buf.Write(env.MessageID[:])
	writeString(&buf, env.OriginPeerID)
	writeU32(&buf, uint32(len(env.Payload)))
	buf.Write(env.Payload)
	return buf.Bytes()
}

func decodeGossipFrame(data []byte) (*event.Envelope, error) {
	if len(data) < 1 || data[0] != frameKindGossip {
		return nil, fmt.Errorf("%w: not a gossip frame", errkind.Malformed)
	}
	r := bytes.NewReader(data[1:])
	env := &event.Envelope{}

	kindByte, err := readByte(r)
	if err != nil {
		return nil, err
	}
	env.Kind = event.Kind(kindByte)

	if env.Slot, err = readU64(r); err != nil {
		return nil, err
	}
	if env.MinWriteVer, err = readU64(r); err != nil {
		return nil, err
	}
	if env.MaxWriteVer, err = readU64(r); err != nil {
		return nil, err
	}
	if env.Count, err = readU32(r); err != nil {
		return nil, err
	}
	if env.Compression, err = readByte(r); err != nil {
		return nil, err
	}
	if env.Sequence, err = readU64(r); err != nil {
		return nil, err
	}
	if env.ProducedAtUnix, err = readI64(r); err != nil {
		return nil, err
	}
	if _, err = io.ReadFull(r, env.MessageID[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	if env.OriginPeerID, err = readString(r); err != nil {
		return nil, err
	}
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload length %d exceeds limit", errkind.Malformed, n)
	}
	env.Payload = make([]byte, n)
	if _, err = io.ReadFull(r, env.Payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return env, nil
}

// BackfillRequest asks a neighbor for sealed batches of topic between
// [FromSlot, ToSlot], per spec §4.5's (topic, slot-range) pull.
type BackfillRequest struct {
	Kind     event.Kind
	FromSlot uint64
	ToSlot   uint64
}

func encodeBackfillRequest(req *BackfillRequest) []byte {
	var buf bytes.Buffer
	buf.WriteByte(frameKindBackfillRequest)
	buf.WriteByte(byte(req.Kind))
	writeU64(&buf, req.FromSlot)
	writeU64(&buf, req.ToSlot)
	return buf.Bytes()
}

func decodeBackfillRequest(data []byte) (*BackfillRequest, error) {
	if len(data) < 1 || data[0] != frameKindBackfillRequest {
		return nil, fmt.Errorf("%w: not a backfill request frame", errkind.Malformed)
	}
	r := bytes.NewReader(data[1:])
	req := &BackfillRequest{}
	kindByte, err := readByte(r)
	if err != nil {
		return nil, err
	}
	req.Kind = event.Kind(kindByte)
	if req.FromSlot, err = readU64(r); err != nil {
		return nil, err
	}
	if req.ToSlot, err = readU64(r); err != nil {
		return nil, err
	}
	return req, nil
}

// BackfillReply streams back zero or more gossip-encoded envelopes in
// slot order, or NotFound if the neighbor has nothing in range.
type BackfillReply struct {
	NotFound  bool
	Envelopes []*event.Envelope
}

func encodeBackfillReply(reply *BackfillReply) []byte {
	var buf bytes.Buffer
	buf.WriteByte(frameKindBackfillReply)
	writeBool(&buf, reply.NotFound)
	writeU32(&buf, uint32(len(reply.Envelopes)))
	for _, e := range reply.Envelopes {
		gf := encodeGossipFrame(e)
		writeU32(&buf, uint32(len(gf)))
		buf.Write(gf)
	}
	return buf.Bytes()
}

func decodeBackfillReply(data []byte) (*BackfillReply, error) {
	if len(data) < 1 || data[0] != frameKindBackfillReply {
		return nil, fmt.Errorf("%w: not a backfill reply frame", errkind.Malformed)
	}
	r := bytes.NewReader(data[1:])
	reply := &BackfillReply{}
	var err error
	if reply.NotFound, err = readBool(r); err != nil {
		return nil, err
	}
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n > 1<<20 {
		return nil, fmt.Errorf("%w: backfill envelope count %d exceeds limit", errkind.Malformed, n)
	}
	reply.Envelopes = make([]*event.Envelope, n)
	for i := range reply.Envelopes {
		sz, err := readU32(r)
		if err != nil {
			return nil, err
		}
		if sz > MaxPayloadSize {
			return nil, fmt.Errorf("%w: framed envelope size %d exceeds limit", errkind.Malformed, sz)
		}
		buf := make([]byte, sz)
		if _, err = io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
		}
		env, err := decodeGossipFrame(buf)
		if err != nil {
			return nil, err
		}
		reply.Envelopes[i] = env
	}
	return reply, nil
}

func writeU64(w *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func writeI64(w *bytes.Buffer, v int64) {
	writeU64(w, uint64(v))
}

func writeU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeBool(w *bytes.Buffer, v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func writeString(w *bytes.Buffer, s string) {
	writeU32(w, uint32(len(s)))
	w.WriteString(s)
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return b[0], nil
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
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
	return binary.BigEndian.Uint32(b[:]), nil
}

func readBool(r io.Reader) (bool, error) {
	b, err := readByte(r)
	return b != 0, err
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if n > MaxPayloadSize {
		return "", fmt.Errorf("%w: string length %d exceeds limit", errkind.Malformed, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	return string(buf), nil
}
