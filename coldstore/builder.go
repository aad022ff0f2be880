package coldstore

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

// buildRecord assembles one Arrow record batch from values, all of
// which must be the same kind. One column builder per field, matching
// the column-per-field layout in schema.go.
func buildRecord(mem memory.Allocator, kind event.Kind, values []event.Value) (arrow.Record, error) {
	switch kind {
	case event.KindAccount:
		return buildAccountRecord(mem, values)
	case event.KindTransaction:
		return buildTransactionRecord(mem, values)
	case event.KindSlotStatus:
		return buildSlotStatusRecord(mem, values)
	case event.KindBlockInfo:
		return buildBlockInfoRecord(mem, values)
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", errkind.Malformed, kind)
	}
}

func buildAccountRecord(mem memory.Allocator, values []event.Value) (arrow.Record, error) {
	schema := AccountSchema()
	pubkeyB := array.NewFixedSizeBinaryBuilder(mem, fixedBinary(32))
	ownerB := array.NewFixedSizeBinaryBuilder(mem, fixedBinary(32))
	slotB := array.NewUint64Builder(mem)
	wvB := array.NewUint64Builder(mem)
	lamportsB := array.NewUint64Builder(mem)
	rentB := array.NewUint64Builder(mem)
	execB := array.NewBooleanBuilder(mem)
	startupB := array.NewBooleanBuilder(mem)
	dataB := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer func() {
		for _, b := range []array.Builder{pubkeyB, ownerB, slotB, wvB, lamportsB, rentB, execB, startupB, dataB} {
			b.Release()
		}
	}()

	for _, v := range values {
		a, ok := v.(*event.AccountUpdate)
		if !ok {
			return nil, fmt.Errorf("%w: expected AccountUpdate, got %T", errkind.Malformed, v)
		}
		pubkeyB.Append(a.Pubkey[:])
		ownerB.Append(a.Owner[:])
		slotB.Append(a.Slot)
		wvB.Append(a.WriteVersion)
		lamportsB.Append(a.Lamports)
		rentB.Append(a.RentEpoch)
		execB.Append(a.Executable)
		startupB.Append(a.IsStartup)
		dataB.Append(a.Data)
	}

	cols := []arrow.Array{pubkeyB.NewArray(), ownerB.NewArray(), slotB.NewArray(), wvB.NewArray(), lamportsB.NewArray(), rentB.NewArray(), execB.NewArray(), startupB.NewArray(), dataB.NewArray()}
	defer releaseAll(cols)
	return array.NewRecord(schema, cols, int64(len(values))), nil
}

func buildTransactionRecord(mem memory.Allocator, values []event.Value) (arrow.Record, error) {
	schema := TransactionSchema()
	sigB := array.NewFixedSizeBinaryBuilder(mem, fixedBinary(64))
	slotB := array.NewUint64Builder(mem)
	idxB := array.NewUint32Builder(mem)
	voteB := array.NewBooleanBuilder(mem)
	successB := array.NewBooleanBuilder(mem)
	feeB := array.NewUint64Builder(mem)
	keysB := array.NewListBuilder(mem, fixedBinary(32))
	keysVB := keysB.ValueBuilder().(*array.FixedSizeBinaryBuilder)
	msgB := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	metaB := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	logsB := array.NewListBuilder(mem, arrow.BinaryTypes.String)
	logsVB := logsB.ValueBuilder().(*array.StringBuilder)
	defer func() {
		for _, b := range []array.Builder{sigB, slotB, idxB, voteB, successB, feeB, keysB, msgB, metaB, logsB} {
			b.Release()
		}
	}()

	for _, v := range values {
		t, ok := v.(*event.Transaction)
		if !ok {
			return nil, fmt.Errorf("%w: expected Transaction, got %T", errkind.Malformed, v)
		}
		sigB.Append(t.Signature[:])
		slotB.Append(t.Slot)
		idxB.Append(t.IndexInSlot)
		voteB.Append(t.IsVote)
		successB.Append(t.Success)
		feeB.Append(t.Fee)

		keysB.Append(true)
		for _, k := range t.AccountKeys {
			keysVB.Append(k[:])
		}

		msgB.Append(t.Message)
		metaB.Append(t.Meta)

		logsB.Append(true)
		for _, l := range t.LogMessages {
			logsVB.Append(l)
		}
	}

	cols := []arrow.Array{sigB.NewArray(), slotB.NewArray(), idxB.NewArray(), voteB.NewArray(), successB.NewArray(), feeB.NewArray(), keysB.NewArray(), msgB.NewArray(), metaB.NewArray(), logsB.NewArray()}
	defer releaseAll(cols)
	return array.NewRecord(schema, cols, int64(len(values))), nil
}

func buildSlotStatusRecord(mem memory.Allocator, values []event.Value) (arrow.Record, error) {
	schema := SlotStatusSchema()
	slotB := array.NewUint64Builder(mem)
	parentB := array.NewUint64Builder(mem)
	statusB := array.NewUint8Builder(mem)
	defer func() {
		for _, b := range []array.Builder{slotB, parentB, statusB} {
			b.Release()
		}
	}()

	for _, v := range values {
		s, ok := v.(*event.SlotStatusUpdate)
		if !ok {
			return nil, fmt.Errorf("%w: expected SlotStatusUpdate, got %T", errkind.Malformed, v)
		}
		slotB.Append(s.Slot)
		parentB.Append(s.Parent)
		statusB.Append(uint8(s.Status))
	}

	cols := []arrow.Array{slotB.NewArray(), parentB.NewArray(), statusB.NewArray()}
	defer releaseAll(cols)
	return array.NewRecord(schema, cols, int64(len(values))), nil
}

func buildBlockInfoRecord(mem memory.Allocator, values []event.Value) (arrow.Record, error) {
	schema := BlockInfoSchema()
	slotB := array.NewUint64Builder(mem)
	blockhashB := array.NewFixedSizeBinaryBuilder(mem, fixedBinary(32))
	parentHashB := array.NewFixedSizeBinaryBuilder(mem, fixedBinary(32))
	timeB := array.NewInt64Builder(mem)
	heightB := array.NewUint64Builder(mem)
	execCountB := array.NewUint64Builder(mem)
	rewardPubkeysB := array.NewListBuilder(mem, fixedBinary(32))
	rewardPubkeysVB := rewardPubkeysB.ValueBuilder().(*array.FixedSizeBinaryBuilder)
	rewardLamportsB := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int64)
	rewardLamportsVB := rewardLamportsB.ValueBuilder().(*array.Int64Builder)
	rewardBalB := array.NewListBuilder(mem, arrow.PrimitiveTypes.Uint64)
	rewardBalVB := rewardBalB.ValueBuilder().(*array.Uint64Builder)
	defer func() {
		for _, b := range []array.Builder{slotB, blockhashB, parentHashB, timeB, heightB, execCountB, rewardPubkeysB, rewardLamportsB, rewardBalB} {
			b.Release()
		}
	}()

	for _, v := range values {
		bi, ok := v.(*event.BlockInfo)
		if !ok {
			return nil, fmt.Errorf("%w: expected BlockInfo, got %T", errkind.Malformed, v)
		}
		slotB.Append(bi.Slot)
		blockhashB.Append(bi.Blockhash[:])
		parentHashB.Append(bi.ParentBlockhash[:])
		timeB.Append(bi.BlockTime)
		heightB.Append(bi.BlockHeight)
		execCountB.Append(bi.ExecutedTxCount)

		rewardPubkeysB.Append(true)
		rewardLamportsB.Append(true)
		rewardBalB.Append(true)
		for _, r := range bi.Rewards {
			rewardPubkeysVB.Append(r.Pubkey[:])
			rewardLamportsVB.Append(r.Lamports)
			rewardBalVB.Append(r.PostBal)
		}
	}

	cols := []arrow.Array{slotB.NewArray(), blockhashB.NewArray(), parentHashB.NewArray(), timeB.NewArray(), heightB.NewArray(), execCountB.NewArray(), rewardPubkeysB.NewArray(), rewardLamportsB.NewArray(), rewardBalB.NewArray()}
	defer releaseAll(cols)
	return array.NewRecord(schema, cols, int64(len(values))), nil
}

func releaseAll(arrs []arrow.Array) {
	for _, a := range arrs {
		a.Release()
	}
}
