package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/solindex/geyser-indexer/util/bytepool"
)

// spillWriter appends records the fan-out ring refused (because its
// sub-ring was full and the kind is not priority) to a
// date-partitioned file under spillDir, per spec §4.2's overflow
// policy. One file per UTC day, append-only, reopened lazily on
// rotation so a long-running plugin doesn't keep stale fds around.
type spillWriter struct {
	mu       sync.Mutex
	dir      string
	curDate  string
	curFile  *os.File
}

func newSpillWriter(dir string) *spillWriter {
	return &spillWriter{dir: dir}
}

func (w *spillWriter) path(date string) string {
	return filepath.Join(w.dir, date+".spill")
}

// Write appends one length-prefixed record (the same event.Encode
// framing the fan-out ring carries) to today's spill segment.
func (w *spillWriter) Write(rec []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	date := time.Now().UTC().Format("2006-01-02")
	if w.curFile == nil || date != w.curDate {
		if w.curFile != nil {
			w.curFile.Close()
		}
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			return fmt.Errorf("plugin: mkdir spill dir: %w", err)
		}
		f, err := os.OpenFile(w.path(date), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("plugin: open spill segment %s: %w", date, err)
		}
		w.curFile = f
		w.curDate = date
	}

	header := bytepool.GetArray(4)
	defer bytepool.DisposeArray(header)
	n := len(rec)
	header[0] = byte(n >> 24)
	header[1] = byte(n >> 16)
	header[2] = byte(n >> 8)
	header[3] = byte(n)

	if _, err := w.curFile.Write(header); err != nil {
		return fmt.Errorf("plugin: write spill header: %w", err)
	}
	if _, err := w.curFile.Write(rec); err != nil {
		return fmt.Errorf("plugin: write spill record: %w", err)
	}
	return nil
}

func (w *spillWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.curFile == nil {
		return nil
	}
	return w.curFile.Close()
}
