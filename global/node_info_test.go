package global

import (
	"encoding/json"
	"testing"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/solindex/geyser-indexer/util"
	"github.com/solindex/geyser-indexer/util/testutil"
	"github.com/stretchr/testify/require"
)

func randomPeerID() peer.ID {
	privateKey := testutil.GetTestingPrivateKey(101)

	pklpp, err := crypto.UnmarshalEd25519PrivateKey(privateKey)
	util.AssertNoError(err)

	ret, err := peer.IDFromPrivateKey(pklpp)
	util.AssertNoError(err)
	return ret
}

func TestNodeInfo(t *testing.T) {
	t.Run("basic roundtrip", func(t *testing.T) {
		ni := &NodeInfo{
			ID:              randomPeerID(),
			NumStaticAlive:  5,
			NumDynamicAlive: 3,
		}
		jsonData, err := json.MarshalIndent(ni, "", "  ")
		require.NoError(t, err)
		t.Logf("json string:\n%s", string(jsonData))

		var back NodeInfo
		err = json.Unmarshal(jsonData, &back)
		require.NoError(t, err)
		require.EqualValues(t, ni.ID, back.ID)
		require.EqualValues(t, ni.NumStaticAlive, back.NumStaticAlive)
		require.EqualValues(t, ni.NumDynamicAlive, back.NumDynamicAlive)
		require.EqualValues(t, ni.GreatestRootedSlot, back.GreatestRootedSlot)
	})

	t.Run("with progress fields", func(t *testing.T) {
		ni := &NodeInfo{
			ID:                 randomPeerID(),
			NumStaticAlive:     5,
			NumDynamicAlive:    3,
			GreatestRootedSlot: 123_456,
			GapCount:           2,
			MigrationCursor:    123_000,
		}
		jsonData, err := json.Marshal(ni)
		require.NoError(t, err)

		var back NodeInfo
		require.NoError(t, json.Unmarshal(jsonData, &back))
		require.EqualValues(t, ni.GreatestRootedSlot, back.GreatestRootedSlot)
		require.EqualValues(t, ni.GapCount, back.GapCount)
		require.EqualValues(t, ni.MigrationCursor, back.MigrationCursor)
	})
}
