package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	global.NodeGlobal
	reg *prometheus.Registry
}

func (e *testEnv) MetricsRegistry() *prometheus.Registry { return e.reg }

func newTestEnv() *testEnv {
	g := global.New()
	return &testEnv{NodeGlobal: g, reg: prometheus.NewRegistry()}
}

// push discards the evicted-record return value for tests that only
// care whether the push itself succeeded.
func push(r *Ring, kind event.Kind, rec []byte, wait time.Duration) bool {
	_, ok := r.Push(kind, rec, wait)
	return ok
}

func TestRingPushPopRoundTrip(t *testing.T) {
	env := newTestEnv()
	r := New(env, nil)
	defer r.Close()

	ok := push(r, event.KindAccount, []byte("rec1"), 0)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rec, ok := r.Pop(ctx, event.KindAccount)
	require.True(t, ok)
	require.Equal(t, []byte("rec1"), rec)
}

func TestRingDropOldestNonPriority(t *testing.T) {
	env := newTestEnv()
	r := New(env, map[event.Kind]int{event.KindAccount: 2})
	defer r.Close()

	require.True(t, push(r, event.KindAccount, []byte("a"), 0))
	require.True(t, push(r, event.KindAccount, []byte("b"), 0))
	evicted, ok := r.Push(event.KindAccount, []byte("c"), 0)
	require.True(t, ok)
	require.Equal(t, []byte("a"), evicted)
	require.EqualValues(t, 1, r.DroppedCount(event.KindAccount))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rec, ok := r.Pop(ctx, event.KindAccount)
	require.True(t, ok)
	require.Equal(t, []byte("b"), rec)
}

func TestRingPriorityBoundedWaitThenFail(t *testing.T) {
	env := newTestEnv()
	r := New(env, map[event.Kind]int{event.KindSlotStatus: 1})
	defer r.Close()

	require.True(t, push(r, event.KindSlotStatus, []byte("a"), 0))

	start := time.Now()
	ok := push(r, event.KindSlotStatus, []byte("b"), 50*time.Millisecond)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRingPriorityUnblocksOnConsume(t *testing.T) {
	env := newTestEnv()
	r := New(env, map[event.Kind]int{event.KindBlockInfo: 1})
	defer r.Close()

	require.True(t, push(r, event.KindBlockInfo, []byte("a"), 0))

	done := make(chan bool, 1)
	go func() {
		done <- push(r, event.KindBlockInfo, []byte("b"), time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rec, ok := r.Pop(ctx, event.KindBlockInfo)
	require.True(t, ok)
	require.Equal(t, []byte("a"), rec)

	require.True(t, <-done)
}

func TestRingCloseUnblocksPop(t *testing.T) {
	env := newTestEnv()
	r := New(env, nil)

	done := make(chan bool, 1)
	go func() {
		_, ok := r.Pop(context.Background(), event.KindTransaction)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	r.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Close")
	}
}

func TestRingDrain(t *testing.T) {
	env := newTestEnv()
	r := New(env, nil)
	defer r.Close()

	require.True(t, push(r, event.KindTransaction, []byte("x"), 0))
	require.True(t, push(r, event.KindTransaction, []byte("y"), 0))

	drained := r.Drain(event.KindTransaction)
	require.Len(t, drained, 2)
	require.Equal(t, []byte("x"), drained[0])
	require.Equal(t, []byte("y"), drained[1])
}
