package queue

import (
	"sync"

	"github.com/solindex/geyser-indexer/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Consumer wraps a VarBuffered with named logging and lifecycle hooks,
// the shape core/events and the overlay's per-topic dispatch loops
// build their message pumps on.
type Consumer[T any] struct {
	name      string
	que       *VarBuffered[T]
	onConsume []func(T)
	onClosed  []func()
	log       *zap.SugaredLogger
	stopOnce  sync.Once
}

func NewConsumer[T any](name string, logLevel zapcore.Level, outputs []string) *Consumer[T] {
	return NewConsumerWithBufferSize[T](name, defaultBufferSize, logLevel, outputs)
}

func NewConsumerWithBufferSize[T any](name string, bufSize int, logLevel zapcore.Level, outputs []string) *Consumer[T] {
	log := global.NewLogger("["+name+"]", logLevel, outputs, "")
	return &Consumer[T]{
		name:      name,
		que:       New[T](bufSize),
		log:       log,
		onConsume: make([]func(T), 0),
		onClosed:  make([]func(), 0),
	}
}

func (c *Consumer[T]) Info() (int, int) {
	return c.que.Info()
}

func (c *Consumer[T]) Name() string {
	return c.name
}

func (c *Consumer[T]) Log() *zap.SugaredLogger {
	return c.log
}

func (c *Consumer[T]) AddOnConsume(funs ...func(T)) *Consumer[T] {
	c.onConsume = append(c.onConsume, funs...)
	return c
}

// AddOnClosed specifies functions invoked after the queue is closed and emptied
func (c *Consumer[T]) AddOnClosed(funs ...func()) *Consumer[T] {
	c.onClosed = append(c.onClosed, funs...)
	return c
}

func (c *Consumer[T]) Push(inp T, prio ...bool) {
	c.que.Push(inp, prio...)
}

func (c *Consumer[T]) PushAny(inp any) {
	c.que.PushAny(inp)
}

// Run drains the queue until Stop closes it, then fires the onClosed
// hooks. Callers run this in its own goroutine.
func (c *Consumer[T]) Run() {
	c.log.Debugf("STARTING [%s]..", c.name)
	_ = c.log.Sync()
	c.que.Consume(c.onConsume...)
	for _, fun := range c.onClosed {
		fun()
	}
	_ = c.log.Sync()
}

func (c *Consumer[T]) Stop() {
	c.stopOnce.Do(func() {
		c.Log().Debugf("STOPPING...")
		c.que.Close()
	})
}
