// Command plugin is the cgo boundary a validator host dlopens
// (-buildmode=c-shared) to drive this indexer's Plugin Adapter. It
// holds no logic of its own beyond ABI marshalling: every //export'd
// function here converts the host's C struct into a Go event.Value
// and calls straight into the plugin package, mirroring spec §6's
// vtable order (on_load, update_account, notify_end_of_startup,
// update_slot_status, notify_transaction, notify_block_metadata,
// account_data_notifications_enabled, transaction_notifications_enabled,
// on_unload).
package main

/*
#include <stddef.h>
#include <stdint.h>

typedef struct {
	const unsigned char *pubkey;        // 32 bytes
	const unsigned char *owner;         // 32 bytes
	uint64_t             lamports;
	uint64_t             rent_epoch;
	const unsigned char *data;
	size_t                data_len;
	unsigned char         executable;
	uint64_t             write_version;
} account_info_t;

typedef struct {
	const unsigned char *signature;          // 64 bytes
	unsigned char         is_vote;
	unsigned char         success;
	uint64_t             fee;
	const unsigned char *account_keys;       // account_keys_count * 32 bytes, concatenated
	size_t                account_keys_count;
	const unsigned char *message;
	size_t                message_len;
	const unsigned char *meta;
	size_t                meta_len;
	uint32_t             index_in_slot;
} transaction_info_t;

typedef struct {
	uint64_t             slot;
	const unsigned char *blockhash;          // 32 bytes
	const unsigned char *parent_blockhash;   // 32 bytes
	int64_t              block_time;
	uint64_t             block_height;
	uint64_t             executed_transaction_count;
	const unsigned char *reward_pubkeys;     // rewards_count * 32 bytes
	const int64_t       *reward_lamports;    // rewards_count
	const uint64_t      *reward_post_balances; // rewards_count
	size_t                rewards_count;
} block_info_t;
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
	"github.com/solindex/geyser-indexer/overlay"
	"github.com/solindex/geyser-indexer/plugin"
	"github.com/solindex/geyser-indexer/publisher"
)

var (
	mu   sync.Mutex
	env  *global.Global
	inst *plugin.Plugin
	ov   *overlay.Overlay
)

// noopBackfillStore answers every backfill pull with nothing: a
// plugin-side overlay host only originates records, it never holds
// hot/cold store data a peer could pull back from it.
type noopBackfillStore struct{}

func (noopBackfillStore) ReadRange(context.Context, event.Kind, uint64, uint64) ([]*event.Envelope, error) {
	return nil, nil
}

//export geyser_indexer_on_load
func geyser_indexer_on_load(configPath *C.char) C.int {
	mu.Lock()
	defer mu.Unlock()

	env = global.New()
	path := C.GoString(configPath)

	cfg, err := plugin.LoadConfig(path)
	if err != nil {
		env.Log().Errorf("[plugin] on_load: %v", err)
		return C.int(plugin.StatusFatal)
	}

	// The plugin side only ever originates records; it has no hot
	// store to answer backfill pulls from and discards anything a
	// peer gossips back at it.
	priv, err := overlay.GenerateIdentity()
	if err != nil {
		env.Log().Errorf("[plugin] on_load: identity: %v", err)
		return C.int(plugin.StatusFatal)
	}
	o, err := overlay.New(env, priv, overlay.DefaultConfig(), noopBackfillStore{}, func(*event.Envelope) {})
	if err != nil {
		env.Log().Errorf("[plugin] on_load: overlay: %v", err)
		return C.int(plugin.StatusFatal)
	}
	o.Start()
	ov = o

	inst = plugin.New(env, cfg, ov, o.SelfID().String())
	return C.int(plugin.StatusOK)
}

//export geyser_indexer_on_unload
func geyser_indexer_on_unload() C.int {
	mu.Lock()
	defer mu.Unlock()
	if inst == nil {
		return C.int(plugin.StatusOK)
	}
	status := inst.Unload()
	if ov != nil {
		ov.Close()
	}
	if env != nil {
		env.Stop()
		env.Wait()
	}
	inst, ov, env = nil, nil, nil
	return C.int(status)
}

func bytesFromC(p *C.uchar, n int) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

func pubkeyFromC(p *C.uchar) event.Pubkey {
	var pk event.Pubkey
	if p == nil {
		return pk
	}
	copy(pk[:], bytesFromC(p, len(pk)))
	return pk
}

func sigFromC(p *C.uchar) event.Signature {
	var sig event.Signature
	if p == nil {
		return sig
	}
	copy(sig[:], bytesFromC(p, len(sig)))
	return sig
}

func hashFromC(p *C.uchar) event.Hash {
	var h event.Hash
	if p == nil {
		return h
	}
	copy(h[:], bytesFromC(p, len(h)))
	return h
}

//export geyser_indexer_update_account
func geyser_indexer_update_account(info *C.account_info_t, slot C.uint64_t, isStartup C.uchar) C.int {
	mu.Lock()
	p := inst
	mu.Unlock()
	if p == nil {
		return C.int(plugin.StatusFatal)
	}

	a := &event.AccountUpdate{
		Pubkey:       pubkeyFromC(info.pubkey),
		Owner:        pubkeyFromC(info.owner),
		Slot:         uint64(slot),
		WriteVersion: uint64(info.write_version),
		Lamports:     uint64(info.lamports),
		RentEpoch:    uint64(info.rent_epoch),
		Executable:   info.executable != 0,
		Data:         bytesFromC(info.data, int(info.data_len)),
	}
	return C.int(p.UpdateAccount(a, isStartup != 0))
}

//export geyser_indexer_notify_end_of_startup
func geyser_indexer_notify_end_of_startup() C.int {
	mu.Lock()
	p := inst
	mu.Unlock()
	if p == nil {
		return C.int(plugin.StatusFatal)
	}
	return C.int(p.NotifyEndOfStartup())
}

//export geyser_indexer_update_slot_status
func geyser_indexer_update_slot_status(slot, parent C.uint64_t, status C.uchar) C.int {
	mu.Lock()
	p := inst
	mu.Unlock()
	if p == nil {
		return C.int(plugin.StatusFatal)
	}
	return C.int(p.UpdateSlotStatus(uint64(slot), uint64(parent), event.SlotStatusValue(status)))
}

//export geyser_indexer_notify_transaction
func geyser_indexer_notify_transaction(info *C.transaction_info_t, slot C.uint64_t) C.int {
	mu.Lock()
	p := inst
	mu.Unlock()
	if p == nil {
		return C.int(plugin.StatusFatal)
	}

	keyCount := int(info.account_keys_count)
	keys := make([]event.Pubkey, keyCount)
	raw := bytesFromC(info.account_keys, keyCount*32)
	for i := 0; i < keyCount; i++ {
		copy(keys[i][:], raw[i*32:(i+1)*32])
	}

	t := &event.Transaction{
		Signature:   sigFromC(info.signature),
		Slot:        uint64(slot),
		IndexInSlot: uint32(info.index_in_slot),
		IsVote:      info.is_vote != 0,
		Success:     info.success != 0,
		Fee:         uint64(info.fee),
		AccountKeys: keys,
		Message:     bytesFromC(info.message, int(info.message_len)),
		Meta:        bytesFromC(info.meta, int(info.meta_len)),
	}
	return C.int(p.NotifyTransaction(t))
}

//export geyser_indexer_notify_block_metadata
func geyser_indexer_notify_block_metadata(info *C.block_info_t) C.int {
	mu.Lock()
	p := inst
	mu.Unlock()
	if p == nil {
		return C.int(plugin.StatusFatal)
	}

	n := int(info.rewards_count)
	rewards := make([]event.Reward, n)
	if n > 0 {
		pkBytes := bytesFromC(info.reward_pubkeys, n*32)
		lamports := unsafe.Slice(info.reward_lamports, n)
		postBal := unsafe.Slice(info.reward_post_balances, n)
		for i := 0; i < n; i++ {
			var pk event.Pubkey
			copy(pk[:], pkBytes[i*32:(i+1)*32])
			rewards[i] = event.Reward{
				Pubkey:   pk,
				Lamports: int64(lamports[i]),
				PostBal:  uint64(postBal[i]),
			}
		}
	}

	b := &event.BlockInfo{
		Slot:            uint64(info.slot),
		Blockhash:       hashFromC(info.blockhash),
		ParentBlockhash: hashFromC(info.parent_blockhash),
		BlockTime:       int64(info.block_time),
		BlockHeight:     uint64(info.block_height),
		ExecutedTxCount: uint64(info.executed_transaction_count),
		Rewards:         rewards,
	}
	return C.int(p.NotifyBlockMetadata(b))
}

//export geyser_indexer_account_data_notifications_enabled
func geyser_indexer_account_data_notifications_enabled() C.uchar {
	mu.Lock()
	p := inst
	mu.Unlock()
	if p == nil || !p.AccountDataNotificationsEnabled() {
		return 0
	}
	return 1
}

//export geyser_indexer_transaction_notifications_enabled
func geyser_indexer_transaction_notifications_enabled() C.uchar {
	mu.Lock()
	p := inst
	mu.Unlock()
	if p == nil || !p.TransactionNotificationsEnabled() {
		return 0
	}
	return 1
}

func main() {
	panic(fmt.Sprintf("%s: built as c-shared, main() is never invoked", "geyser-indexer-plugin"))
}
