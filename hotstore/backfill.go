package hotstore

import (
	"context"
	"time"

	"github.com/solindex/geyser-indexer/event"
)

// ReadRange implements overlay.BackfillStore: it answers a neighbor's
// pull request for a (kind, slot-range) by re-encoding whatever this
// node already committed, one envelope per slot that has data, so the
// requester can feed them back through the normal ingest path.
func (s *Store) ReadRange(ctx context.Context, kind event.Kind, fromSlot, toSlot uint64) ([]*event.Envelope, error) {
	var envelopes []*event.Envelope

	for slot := fromSlot; slot <= toSlot; slot++ {
		values, err := s.ScanBySlot(ctx, kind, slot)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}

		var payload []byte
		minWV, maxWV := ^uint64(0), uint64(0)
		for _, v := range values {
			raw, err := event.Encode(v)
			if err != nil {
				return nil, err
			}
			payload = append(payload, raw...)
			wv := writeVersionOf(v)
			if wv < minWV {
				minWV = wv
			}
			if wv > maxWV {
				maxWV = wv
			}
		}

		contentHash := event.ContentHash(payload)
		messageID := event.ComputeMessageID(kind, slot, minWV, maxWV, uint32(len(values)), contentHash)
		envelopes = append(envelopes, &event.Envelope{
			Kind:           kind,
			Slot:           slot,
			MinWriteVer:    minWV,
			MaxWriteVer:    maxWV,
			Count:          uint32(len(values)),
			Compression:    event.CompressionNone,
			Payload:        payload,
			Sequence:       0,
			ProducedAtUnix: time.Now().Unix(),
			MessageID:      messageID,
		})
	}

	return envelopes, nil
}

func writeVersionOf(v event.Value) uint64 {
	switch x := v.(type) {
	case *event.AccountUpdate:
		return x.WriteVersion
	case *event.Transaction:
		return uint64(x.IndexInSlot)
	default:
		return 0
	}
}
