package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/fanout"
	"github.com/solindex/geyser-indexer/global"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu   sync.Mutex
	envs []*event.Envelope
}

func (f *fakeSink) Publish(_ context.Context, env *event.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envs = append(f.envs, env)
	return nil
}

func (f *fakeSink) snapshot() []*event.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*event.Envelope, len(f.envs))
	copy(out, f.envs)
	return out
}

func samplePubkey(b byte) event.Pubkey {
	var p event.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func TestPublisherFlushesOnMaxRecords(t *testing.T) {
	env := global.New()
	ring := fanout.New(env, nil)
	defer ring.Close()
	sink := &fakeSink{}

	p := New(env, ring, sink, Limits{MaxRecords: 2, MaxAge: time.Hour}, "peer-1")
	p.Start()
	defer env.Stop()

	for i := 0; i < 2; i++ {
		rec, err := event.Encode(&event.AccountUpdate{
			Pubkey: samplePubkey(byte(i + 1)), Slot: 10, WriteVersion: uint64(i),
		})
		require.NoError(t, err)
		_, ok := ring.Push(event.KindAccount, rec, 0)
		require.True(t, ok)
	}

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	envs := sink.snapshot()
	require.Equal(t, uint32(2), envs[0].Count)
	require.Equal(t, uint64(10), envs[0].Slot)
	require.Equal(t, event.CompressionSnappy, envs[0].Compression)

	raw, err := snappy.Decode(nil, envs[0].Payload)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
}

func TestPublisherFlushesOnNewSlot(t *testing.T) {
	env := global.New()
	ring := fanout.New(env, nil)
	defer ring.Close()
	sink := &fakeSink{}

	p := New(env, ring, sink, Limits{MaxRecords: 100, MaxAge: time.Hour}, "peer-1")
	p.Start()
	defer env.Stop()

	rec1, err := event.Encode(&event.AccountUpdate{Pubkey: samplePubkey(1), Slot: 10, WriteVersion: 0})
	require.NoError(t, err)
	_, ok1 := ring.Push(event.KindAccount, rec1, 0)
	require.True(t, ok1)

	rec2, err := event.Encode(&event.AccountUpdate{Pubkey: samplePubkey(2), Slot: 11, WriteVersion: 0})
	require.NoError(t, err)
	_, ok2 := ring.Push(event.KindAccount, rec2, 0)
	require.True(t, ok2)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	envs := sink.snapshot()
	require.Equal(t, uint64(10), envs[0].Slot)
	require.Equal(t, uint32(1), envs[0].Count)
}

func TestPublisherFlushesOnMaxAge(t *testing.T) {
	env := global.New()
	ring := fanout.New(env, nil)
	defer ring.Close()
	sink := &fakeSink{}

	p := New(env, ring, sink, Limits{MaxRecords: 1000, MaxAge: 60 * time.Millisecond}, "peer-1")
	p.Start()
	defer env.Stop()

	rec, err := event.Encode(&event.SlotStatusUpdate{Slot: 5, Parent: 4, Status: event.Rooted})
	require.NoError(t, err)
	_, ok := ring.Push(event.KindSlotStatus, rec, 0)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
