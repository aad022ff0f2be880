package global

import (
	"encoding/json"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/solindex/geyser-indexer/util"
	"github.com/solindex/geyser-indexer/util/lines"
)

// NodeInfo is the JSON-serializable snapshot of a running indexer's
// health, reported by the ops CLI and written into structured log
// lines on a periodic heartbeat.
type NodeInfo struct {
	Name               string  `json:"name"`
	ID                 peer.ID `json:"id"`
	Version            string  `json:"version"`
	NumStaticAlive     uint16  `json:"num_static_peers"`
	NumDynamicAlive    uint16  `json:"num_dynamic_alive"`
	GreatestRootedSlot uint64  `json:"greatest_rooted_slot"`
	GapCount           int     `json:"gap_count"`
	MigrationCursor    uint64  `json:"migration_cursor"`
}

func (ni *NodeInfo) Bytes() []byte {
	ret, err := json.Marshal(ni)
	util.AssertNoError(err)
	return ret
}

func NodeInfoFromBytes(data []byte) (*NodeInfo, error) {
	var ret NodeInfo
	err := json.Unmarshal(data, &ret)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (ni *NodeInfo) Lines(prefix ...string) *lines.Lines {
	ret := lines.New(prefix...)
	ret.Add("Node info:").
		Add("   name: '%s'", ni.Name).
		Add("   lpp host ID: %s", ni.ID.String()).
		Add("   static peers alive: %d", ni.NumStaticAlive).
		Add("   dynamic peers alive: %d", ni.NumDynamicAlive).
		Add("   greatest rooted slot: %d", ni.GreatestRootedSlot).
		Add("   open gaps: %d", ni.GapCount).
		Add("   migration cursor: %d", ni.MigrationCursor)
	return ret
}
