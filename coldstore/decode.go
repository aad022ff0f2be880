package coldstore

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// decodeRecord is the inverse of buildRecord: it reconstructs the
// []event.Value a segment's record batch was built from.
func decodeRecord(kind event.Kind, rec arrow.Record) ([]event.Value, error) {
	switch kind {
	case event.KindAccount:
		return decodeAccountRecord(rec)
	case event.KindTransaction:
		return decodeTransactionRecord(rec)
	case event.KindSlotStatus:
		return decodeSlotStatusRecord(rec)
	case event.KindBlockInfo:
		return decodeBlockInfoRecord(rec)
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", errkind.Malformed, kind)
	}
}

func decodeAccountRecord(rec arrow.Record) ([]event.Value, error) {
	pubkeyCol := rec.Column(0).(*array.FixedSizeBinary)
	ownerCol := rec.Column(1).(*array.FixedSizeBinary)
	slotCol := rec.Column(2).(*array.Uint64)
	wvCol := rec.Column(3).(*array.Uint64)
	lamportsCol := rec.Column(4).(*array.Uint64)
	rentCol := rec.Column(5).(*array.Uint64)
	execCol := rec.Column(6).(*array.Boolean)
	startupCol := rec.Column(7).(*array.Boolean)
	dataCol := rec.Column(8).(*array.Binary)

	n := int(rec.NumRows())
	out := make([]event.Value, n)
	for i := 0; i < n; i++ {
		var pk, owner event.Pubkey
		copy(pk[:], pubkeyCol.Value(i))
		copy(owner[:], ownerCol.Value(i))
		out[i] = &event.AccountUpdate{
			Pubkey:       pk,
			Owner:        owner,
			Slot:         slotCol.Value(i),
			WriteVersion: wvCol.Value(i),
			Lamports:     lamportsCol.Value(i),
			RentEpoch:    rentCol.Value(i),
			Executable:   execCol.Value(i),
			IsStartup:    startupCol.Value(i),
			Data:         append([]byte{}, dataCol.Value(i)...),
		}
	}
	return out, nil
}

func decodeTransactionRecord(rec arrow.Record) ([]event.Value, error) {
	sigCol := rec.Column(0).(*array.FixedSizeBinary)
	slotCol := rec.Column(1).(*array.Uint64)
	idxCol := rec.Column(2).(*array.Uint32)
	voteCol := rec.Column(3).(*array.Boolean)
	successCol := rec.Column(4).(*array.Boolean)
	feeCol := rec.Column(5).(*array.Uint64)
	keysCol := rec.Column(6).(*array.List)
	keysVals := keysCol.ListValues().(*array.FixedSizeBinary)
	msgCol := rec.Column(7).(*array.Binary)
	metaCol := rec.Column(8).(*array.Binary)
	logsCol := rec.Column(9).(*array.List)
	logsVals := logsCol.ListValues().(*array.String)

	n := int(rec.NumRows())
	out := make([]event.Value, n)
	for i := 0; i < n; i++ {
		var sig event.Signature
		copy(sig[:], sigCol.Value(i))

		keyStart, keyEnd := keysCol.ValueOffsets(i)
		keys := make([]event.Pubkey, 0, keyEnd-keyStart)
		for j := keyStart; j < keyEnd; j++ {
			var k event.Pubkey
			copy(k[:], keysVals.Value(int(j)))
			keys = append(keys, k)
		}

		logStart, logEnd := logsCol.ValueOffsets(i)
		logs := make([]string, 0, logEnd-logStart)
		for j := logStart; j < logEnd; j++ {
			logs = append(logs, logsVals.Value(int(j)))
		}

		out[i] = &event.Transaction{
			Signature:   sig,
			Slot:        slotCol.Value(i),
			IndexInSlot: idxCol.Value(i),
			IsVote:      voteCol.Value(i),
			Success:     successCol.Value(i),
			Fee:         feeCol.Value(i),
			AccountKeys: keys,
			Message:     append([]byte{}, msgCol.Value(i)...),
			Meta:        append([]byte{}, metaCol.Value(i)...),
			LogMessages: logs,
		}
	}
	return out, nil
}

func decodeSlotStatusRecord(rec arrow.Record) ([]event.Value, error) {
	slotCol := rec.Column(0).(*array.Uint64)
	parentCol := rec.Column(1).(*array.Uint64)
	statusCol := rec.Column(2).(*array.Uint8)

	n := int(rec.NumRows())
	out := make([]event.Value, n)
	for i := 0; i < n; i++ {
		out[i] = &event.SlotStatusUpdate{
			Slot:   slotCol.Value(i),
			Parent: parentCol.Value(i),
			Status: event.SlotStatusValue(statusCol.Value(i)),
		}
	}
	return out, nil
}

func decodeBlockInfoRecord(rec arrow.Record) ([]event.Value, error) {
	slotCol := rec.Column(0).(*array.Uint64)
	blockhashCol := rec.Column(1).(*array.FixedSizeBinary)
	parentHashCol := rec.Column(2).(*array.FixedSizeBinary)
	timeCol := rec.Column(3).(*array.Int64)
	heightCol := rec.Column(4).(*array.Uint64)
	execCountCol := rec.Column(5).(*array.Uint64)
	rewardPubkeysCol := rec.Column(6).(*array.List)
	rewardPubkeysVals := rewardPubkeysCol.ListValues().(*array.FixedSizeBinary)
	rewardLamportsCol := rec.Column(7).(*array.List)
	rewardLamportsVals := rewardLamportsCol.ListValues().(*array.Int64)
	rewardBalCol := rec.Column(8).(*array.List)
	rewardBalVals := rewardBalCol.ListValues().(*array.Uint64)

	n := int(rec.NumRows())
	out := make([]event.Value, n)
	for i := 0; i < n; i++ {
		var blockhash, parentHash event.Hash
		copy(blockhash[:], blockhashCol.Value(i))
		copy(parentHash[:], parentHashCol.Value(i))

		start, end := rewardPubkeysCol.ValueOffsets(i)
		rewards := make([]event.Reward, 0, end-start)
		for j := start; j < end; j++ {
			var pk event.Pubkey
			copy(pk[:], rewardPubkeysVals.Value(int(j)))
			rewards = append(rewards, event.Reward{
				Pubkey:   pk,
				Lamports: rewardLamportsVals.Value(int(j)),
				PostBal:  rewardBalVals.Value(int(j)),
			})
		}

		out[i] = &event.BlockInfo{
			Slot:            slotCol.Value(i),
			Blockhash:       blockhash,
			ParentBlockhash: parentHash,
			BlockTime:       timeCol.Value(i),
			BlockHeight:     heightCol.Value(i),
			ExecutedTxCount: execCountCol.Value(i),
			Rewards:         rewards,
		}
	}
	return out, nil
}
