package ingest

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// decompress returns env's payload as a concatenation of EM-encoded
// records, undoing the compression declared in its header byte per
// spec §4.4.
func decompress(env *event.Envelope) ([]byte, error) {
	switch env.Compression {
	case event.CompressionNone:
		return env.Payload, nil
	case event.CompressionSnappy:
		out, err := snappy.Decode(nil, env.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression codec %d", errkind.SchemaTooNew, env.Compression)
	}
}
