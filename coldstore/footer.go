package coldstore

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/solindex/geyser-indexer/errkind"
)

// footerSize is 28 bytes: {min_slot u64, max_slot u64, count u64,
// crc32c u32}, appended after the Arrow IPC (zstd-compressed) bytes
// so a reader can validate a segment without decoding Arrow at all.
const footerSize = 8 + 8 + 8 + 4

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

type footer struct {
	minSlot uint64
	maxSlot uint64
	count   uint64
	crc     uint32
}

func newFooter(minSlot, maxSlot, count uint64, body []byte) footer {
	return footer{
		minSlot: minSlot,
		maxSlot: maxSlot,
		count:   count,
		crc:     crc32.Checksum(body, crc32cTable),
	}
}

func (f footer) encode() []byte {
	b := make([]byte, footerSize)
	binary.BigEndian.PutUint64(b[0:8], f.minSlot)
	binary.BigEndian.PutUint64(b[8:16], f.maxSlot)
	binary.BigEndian.PutUint64(b[16:24], f.count)
	binary.BigEndian.PutUint32(b[24:28], f.crc)
	return b
}

// decodeFooter parses the trailing footerSize bytes of a segment file
// and verifies crc against body (everything before the footer). A
// mismatch or truncated footer means the segment is treated as absent
// and flagged for re-migration, per spec §4.8.
func decodeFooter(full []byte) (footer, []byte, error) {
	if len(full) < footerSize {
		return footer{}, nil, fmt.Errorf("%w: segment shorter than footer (%d bytes)", errkind.Malformed, len(full))
	}
	split := len(full) - footerSize
	body := full[:split]
	tail := full[split:]

	f := footer{
		minSlot: binary.BigEndian.Uint64(tail[0:8]),
		maxSlot: binary.BigEndian.Uint64(tail[8:16]),
		count:   binary.BigEndian.Uint64(tail[16:24]),
		crc:     binary.BigEndian.Uint32(tail[24:28]),
	}
	if got := crc32.Checksum(body, crc32cTable); got != f.crc {
		return footer{}, nil, fmt.Errorf("%w: segment footer crc mismatch, want %x have %x", errkind.Fatal, f.crc, got)
	}
	return f, body, nil
}
