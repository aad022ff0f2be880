package global

import (
	"math"

	"github.com/solindex/geyser-indexer/util"
)

const (
	HotStoreDBName = "indexerdb.hot"

	ConfigKeyNetworkBootstrapPeers    = "network.bootstrap_peers"
	ConfigKeyNetworkListenAddrs      = "network.listen_addrs"
	ConfigKeyNetworkMeshSize         = "network.mesh_size"
	ConfigKeyAccountsSelector        = "accounts_selector"
	ConfigKeyTransactionSelector     = "transaction_selector"
	ConfigKeyRetentionOrphanTTLSlots = "retention.orphan_ttl_slots"
	ConfigKeyThreadCount             = "thread_count"
	ConfigKeyBatchSize               = "batch_size"
	ConfigKeyUseMmap                 = "use_mmap"
	ConfigKeyPanicOnError            = "panic_on_error"

	// MaxBackfillPortionSlots bounds how many slots a single backfill
	// pull request may span, mirroring the teacher's sync-portion cap.
	MaxBackfillPortionSlots = 100
)

func init() {
	util.Assertf(MaxBackfillPortionSlots <= math.MaxUint16, "MaxBackfillPortionSlots <= math.MaxUint16")
}
