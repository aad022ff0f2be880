// Package coldstore is the append-only columnar archive for sealed
// slot ranges: one Arrow IPC file per (kind, slot-range), zstd-
// compressed, with a trailing fixed-size footer so integrity can be
// checked without decoding the Arrow payload. Grounded on the
// ttp-processor-demo pack's Arrow schema and zstd-over-IPC pattern
// (see DESIGN.md), generalized from Stellar ledger columns to this
// system's four event kinds.
package coldstore

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/solindex/geyser-indexer/event"
)

func fixedBinary(width int) *arrow.FixedSizeBinaryType {
	return &arrow.FixedSizeBinaryType{ByteWidth: width}
}

// AccountSchema is the column-per-field layout for KindAccount,
// mirroring event.AccountUpdate field-for-field.
func AccountSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "pubkey", Type: fixedBinary(32), Nullable: false},
		{Name: "owner", Type: fixedBinary(32), Nullable: false},
		{Name: "slot", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "write_version", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "lamports", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "rent_epoch", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "executable", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
		{Name: "is_startup", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
		{Name: "data", Type: arrow.BinaryTypes.Binary, Nullable: false},
	}, nil)
}

// TransactionSchema is the column-per-field layout for
// KindTransaction, mirroring event.Transaction.
func TransactionSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "signature", Type: fixedBinary(64), Nullable: false},
		{Name: "slot", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "index_in_slot", Type: arrow.PrimitiveTypes.Uint32, Nullable: false},
		{Name: "is_vote", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
		{Name: "success", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
		{Name: "fee", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "account_keys", Type: arrow.ListOf(fixedBinary(32)), Nullable: false},
		{Name: "message", Type: arrow.BinaryTypes.Binary, Nullable: false},
		{Name: "meta", Type: arrow.BinaryTypes.Binary, Nullable: false},
		{Name: "log_messages", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: false},
	}, nil)
}

// SlotStatusSchema is the column-per-field layout for KindSlotStatus.
func SlotStatusSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "slot", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "parent", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "status", Type: arrow.PrimitiveTypes.Uint8, Nullable: false},
	}, nil)
}

// BlockInfoSchema is the column-per-field layout for KindBlockInfo.
// Rewards are flattened into three parallel list columns rather than
// a nested struct list, keeping every column a primitive or list of
// primitive so readers don't need struct-array support.
func BlockInfoSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "slot", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "blockhash", Type: fixedBinary(32), Nullable: false},
		{Name: "parent_blockhash", Type: fixedBinary(32), Nullable: false},
		{Name: "block_time", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "block_height", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "executed_tx_count", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "reward_pubkeys", Type: arrow.ListOf(fixedBinary(32)), Nullable: false},
		{Name: "reward_lamports", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64), Nullable: false},
		{Name: "reward_post_balances", Type: arrow.ListOf(arrow.PrimitiveTypes.Uint64), Nullable: false},
	}, nil)
}

// SchemaFor returns the column-per-field schema for kind.
func SchemaFor(kind event.Kind) *arrow.Schema {
	switch kind {
	case event.KindAccount:
		return AccountSchema()
	case event.KindTransaction:
		return TransactionSchema()
	case event.KindSlotStatus:
		return SlotStatusSchema()
	case event.KindBlockInfo:
		return BlockInfoSchema()
	default:
		return nil
	}
}
