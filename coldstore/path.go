package coldstore

import (
	"fmt"
	"path/filepath"

	"github.com/solindex/geyser-indexer/event"
)

// segmentPath builds cold/<kind>/<first_slot>_<last_slot>.col under
// root, per spec §4.8's layout.
func segmentPath(root string, kind event.Kind, firstSlot, lastSlot uint64) string {
	return filepath.Join(root, kind.String(), fmt.Sprintf("%d_%d.col", firstSlot, lastSlot))
}

func segmentDir(root string, kind event.Kind) string {
	return filepath.Join(root, kind.String())
}
