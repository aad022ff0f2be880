package coldstore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"

	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// WriteSegment serializes values (all of kind, already sorted by
// slot) as a single Arrow IPC record batch, zstd-compresses it and
// writes it to root/<kind>/<firstSlot>_<lastSlot>.col with the
// trailing integrity footer. The file is written to a temp path
// first and renamed into place so a migrator crash never leaves a
// partially-written name at the final path.
func WriteSegment(root string, kind event.Kind, firstSlot, lastSlot uint64, values []event.Value) (string, error) {
	mem := memory.NewGoAllocator()
	rec, err := buildRecord(mem, kind, values)
	if err != nil {
		return "", err
	}
	defer rec.Release()

	var ipcBuf bytes.Buffer
	writer := ipc.NewWriter(&ipcBuf, ipc.WithSchema(rec.Schema()))
	if err := writer.Write(rec); err != nil {
		return "", fmt.Errorf("%w: arrow ipc write: %v", errkind.TransientIO, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: arrow ipc close: %v", errkind.TransientIO, err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("%w: zstd encoder init: %v", errkind.Fatal, err)
	}
	defer encoder.Close()
	compressed := encoder.EncodeAll(ipcBuf.Bytes(), nil)

	f := newFooter(firstSlot, lastSlot, uint64(len(values)), compressed)
	full := append(compressed, f.encode()...)

	dir := segmentDir(root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}

	finalPath := segmentPath(root, kind, firstSlot, lastSlot)
	tmpPath := finalPath + ".tmp"

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	if _, err := tmp.Write(full); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: fsync: %v", errkind.TransientIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}

	return finalPath, nil
}

// ReadSegment validates a segment's footer, decompresses its Arrow
// IPC payload and decodes it back into values. A footer or crc
// mismatch returns errkind.Fatal so the migrator treats the segment
// as absent and re-migrates the range from the hot store.
func ReadSegment(path string, kind event.Kind) (minSlot, maxSlot uint64, values []event.Value, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}

	f, compressed, err := decodeFooter(raw)
	if err != nil {
		return 0, 0, nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: zstd decoder init: %v", errkind.Fatal, err)
	}
	defer decoder.Close()

	ipcBytes, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: zstd decode: %v", errkind.Fatal, err)
	}

	reader, err := ipc.NewReader(bytes.NewReader(ipcBytes))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: arrow ipc open: %v", errkind.Fatal, err)
	}
	defer reader.Release()

	var out []event.Value
	for reader.Next() {
		rec := reader.Record()
		decoded, err := decodeRecord(kind, rec)
		if err != nil {
			return 0, 0, nil, err
		}
		out = append(out, decoded...)
	}
	if err := reader.Err(); err != nil {
		return 0, 0, nil, fmt.Errorf("%w: arrow ipc read: %v", errkind.Fatal, err)
	}
	if uint64(len(out)) != f.count {
		return 0, 0, nil, fmt.Errorf("%w: segment record count mismatch, footer says %d decoded %d", errkind.Fatal, f.count, len(out))
	}

	return f.minSlot, f.maxSlot, out, nil
}

// removeIfPartial deletes a .tmp file left behind by a crash mid
// write, called by the migrator at startup before it trusts the
// segment directory's contents.
func removeIfPartial(root string, kind event.Kind) error {
	dir := segmentDir(root, kind)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}
