package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func samplePubkey(b byte) Pubkey {
	var p Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func TestRoundTripAccountUpdate(t *testing.T) {
	a := &AccountUpdate{
		Pubkey:       samplePubkey(1),
		Owner:        samplePubkey(2),
		Slot:         100,
		WriteVersion: 2,
		Lamports:     7,
		RentEpoch:    3,
		Executable:   true,
		IsStartup:    false,
		Data:         []byte{1, 2, 3, 4},
	}
	encoded, err := Encode(a)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	back, ok := decoded.(*AccountUpdate)
	require.True(t, ok)
	require.Equal(t, a, back)
}

func TestRoundTripTransaction(t *testing.T) {
	var sig Signature
	sig[0] = 9
	tx := &Transaction{
		Signature:   sig,
		Slot:        200,
		IndexInSlot: 3,
		IsVote:      false,
		Success:     true,
		Fee:         5000,
		AccountKeys: []Pubkey{samplePubkey(1), samplePubkey(2)},
		Message:     []byte("msg"),
		Meta:        []byte("meta"),
		LogMessages: []string{"log1", "log2"},
	}
	encoded, err := Encode(tx)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, tx, decoded)
}

func TestRoundTripSlotStatus(t *testing.T) {
	s := &SlotStatusUpdate{Slot: 55, Parent: 54, Status: Rooted}
	encoded, err := Encode(s)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestRoundTripBlockInfo(t *testing.T) {
	b := &BlockInfo{
		Slot:            77,
		BlockTime:       1700000000,
		BlockHeight:     1000,
		ExecutedTxCount: 42,
		Rewards: []Reward{
			{Pubkey: samplePubkey(3), Lamports: 100, PostBal: 9000},
		},
	}
	encoded, err := Encode(b)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, b, decoded)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeSchemaTooNew(t *testing.T) {
	s := &SlotStatusUpdate{Slot: 1, Parent: 0, Status: Processed}
	encoded, err := Encode(s)
	require.NoError(t, err)
	// bump the schema-version byte past what this build understands
	encoded[5] = CurrentSchemaVersion + 1

	_, err = Decode(encoded)
	require.Error(t, err)
}

func TestCanonicalOrdering(t *testing.T) {
	a1 := &AccountUpdate{Pubkey: samplePubkey(1), Slot: 10, WriteVersion: 1}
	a2 := &AccountUpdate{Pubkey: samplePubkey(1), Slot: 10, WriteVersion: 2}
	require.True(t, Less(a1, a2))
	require.False(t, Less(a2, a1))

	a3 := &AccountUpdate{Pubkey: samplePubkey(1), Slot: 11, WriteVersion: 0}
	require.True(t, Less(a2, a3))
}

func TestMessageIDStable(t *testing.T) {
	ch := ContentHash([]byte("payload"))
	id1 := ComputeMessageID(KindAccount, 5, 1, 3, 10, ch)
	id2 := ComputeMessageID(KindAccount, 5, 1, 3, 10, ch)
	require.Equal(t, id1, id2)

	id3 := ComputeMessageID(KindAccount, 6, 1, 3, 10, ch)
	require.NotEqual(t, id1, id3)
}
