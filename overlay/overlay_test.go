package overlay

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/test"
	"github.com/solindex/geyser-indexer/event"
	"github.com/stretchr/testify/require"
)

func TestDedupSetSeenOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := newDedupSet(ctx, time.Minute)
	id := event.ContentHash([]byte("payload"))

	require.False(t, d.seen(event.KindAccount, id))
	require.True(t, d.seen(event.KindAccount, id))

	// distinct topic, same id: not yet seen there
	require.False(t, d.seen(event.KindTransaction, id))
}

func TestBanListThreshold(t *testing.T) {
	b := newBanList(16, 50*time.Millisecond, 3)
	id := test.RandPeerIDFatal(t)

	require.False(t, b.isBanned(id))
	require.False(t, b.recordOffense(id))
	require.False(t, b.recordOffense(id))
	require.True(t, b.recordOffense(id))
	require.True(t, b.isBanned(id))
}

func TestBanListExpires(t *testing.T) {
	b := newBanList(16, 20*time.Millisecond, 1)
	id := test.RandPeerIDFatal(t)

	require.True(t, b.recordOffense(id))
	require.True(t, b.isBanned(id))

	time.Sleep(40 * time.Millisecond)
	require.False(t, b.isBanned(id))
}

func TestMeshGraftPruneBounded(t *testing.T) {
	m := newTopicMesh(MeshSize{Low: 1, High: 2, Max: 2})
	a, b, c := test.RandPeerIDFatal(t), test.RandPeerIDFatal(t), test.RandPeerIDFatal(t)

	require.True(t, m.graft(a))
	require.True(t, m.graft(b))
	require.False(t, m.graft(c))
	require.Len(t, m.memberList(), 2)

	m.prune(a)
	require.True(t, m.graft(c))
	require.Len(t, m.memberList(), 2)
}

func TestMeshNeedsMore(t *testing.T) {
	m := newTopicMesh(MeshSize{Low: 2, High: 4, Max: 6})
	require.True(t, m.needsMore())
	m.graft(test.RandPeerIDFatal(t))
	require.True(t, m.needsMore())
	m.graft(test.RandPeerIDFatal(t))
	require.False(t, m.needsMore())
}

func TestGossipFrameRoundTrip(t *testing.T) {
	env := &event.Envelope{
		Kind:           event.KindAccount,
		Slot:           42,
		MinWriteVer:    1,
		MaxWriteVer:    5,
		Count:          3,
		Compression:    event.CompressionSnappy,
		Payload:        []byte("compressed-bytes"),
		OriginPeerID:   "peer-123",
		Sequence:       7,
		ProducedAtUnix: 1700000000,
		MessageID:      event.ContentHash([]byte("x")),
	}
	frame := encodeGossipFrame(env)
	decoded, err := decodeGossipFrame(frame)
	require.NoError(t, err)
	require.Equal(t, env, decoded)
}

func TestBackfillRequestReplyRoundTrip(t *testing.T) {
	req := &BackfillRequest{Kind: event.KindSlotStatus, FromSlot: 10, ToSlot: 20}
	frame := encodeBackfillRequest(req)
	decoded, err := decodeBackfillRequest(frame)
	require.NoError(t, err)
	require.Equal(t, req, decoded)

	reply := &BackfillReply{Envelopes: []*event.Envelope{
		{Kind: event.KindSlotStatus, Slot: 11, MessageID: event.ContentHash([]byte("y"))},
	}}
	replyFrame := encodeBackfillReply(reply)
	decodedReply, err := decodeBackfillReply(replyFrame)
	require.NoError(t, err)
	require.Equal(t, reply, decodedReply)

	notFound := &BackfillReply{NotFound: true}
	require.NoError(t, err)
	decodedNF, err := decodeBackfillReply(encodeBackfillReply(notFound))
	require.NoError(t, err)
	require.True(t, decodedNF.NotFound)
}
