package global

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/solindex/geyser-indexer/util"
	"github.com/solindex/geyser-indexer/util/set"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global is the process-wide environment shared by every long-lived
// component: the fan-out ring consumer, the publisher, the overlay
// event loop, the ingestion state machine and the migrator. It bundles
// structured logging, a shutdown context/waitgroup pair and a
// Prometheus registry so components don't have to thread these through
// constructor parameters by hand.
type Global struct {
	*zap.SugaredLogger
	*sync.WaitGroup
	ctx             context.Context
	stopFun         context.CancelFunc
	once            *sync.Once
	enabledTrace    atomic.Bool
	traceTagsMutex  sync.RWMutex
	traceTags       set.Set[string]
	metricsRegistry *prometheus.Registry
	started         time.Time
}

// NodeGlobal is the minimal environment surface components depend on.
// Per-component Environment interfaces (fanout, publisher, overlay,
// ingest, migrator) embed this instead of importing *Global directly.
type NodeGlobal interface {
	Log() *zap.SugaredLogger
	Ctx() context.Context
	MetricsRegistry() *prometheus.Registry
	MarkStartedComponent()
	MarkStoppedComponent()
	Tracef(tag string, format string, args ...any)
	RepeatInBackground(name string, period time.Duration, fun func() bool, runFirstImmediately ...bool)
}

func New() *Global {
	return NewFromConfig(NewLogger("", zapcore.InfoLevel, nil, ""))
}

// NewFromConfig builds a Global around an already-configured logger.
// Callers read logger.level/logger.output from their own viper
// instance and construct the logger via NewLogger before calling
// this, keeping this package free of a direct viper dependency.
func NewFromConfig(log *zap.SugaredLogger) *Global {
	ctx, cancelFun := context.WithCancel(context.Background())
	return &Global{
		ctx:             ctx,
		stopFun:         cancelFun,
		SugaredLogger:   log,
		traceTags:       set.New[string](),
		WaitGroup:       &sync.WaitGroup{},
		once:            &sync.Once{},
		metricsRegistry: prometheus.NewRegistry(),
		started:         time.Now(),
	}
}

func (l *Global) MarkStartedComponent() {
	l.WaitGroup.Add(1)
}

func (l *Global) MarkStoppedComponent() {
	l.WaitGroup.Done()
}

func (l *Global) Stop() {
	l.once.Do(func() {
		SetShutDown()
		l.stopFun()
	})
}

func (l *Global) Ctx() context.Context {
	return l.ctx
}

func (l *Global) Wait() {
	l.WaitGroup.Wait()
}

func (l *Global) Log() *zap.SugaredLogger {
	return l.SugaredLogger
}

func (l *Global) MetricsRegistry() *prometheus.Registry {
	return l.metricsRegistry
}

func (l *Global) UpTime() time.Duration {
	return time.Since(l.started)
}

// RepeatInBackground runs fun every period until Ctx() is cancelled.
// fun returns false to stop the loop early. This is the background-
// maintenance idiom used for Badger's value-log GC, the overlay's
// autopeering tick and the migrator's periodic cursor advance.
func (l *Global) RepeatInBackground(name string, period time.Duration, fun func() bool, runFirstImmediately ...bool) {
	l.MarkStartedComponent()
	go func() {
		defer l.MarkStoppedComponent()

		if len(runFirstImmediately) > 0 && runFirstImmediately[0] {
			if !fun() {
				return
			}
		}
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-l.ctx.Done():
				l.Log().Debugf("[%s] stopped", name)
				return
			case <-ticker.C:
				if !fun() {
					return
				}
			}
		}
	}()
}

func (l *Global) EnableTrace(enable bool) {
	l.enabledTrace.Store(enable)
}

// StartTracingTags is an alias of EnableTraceTags kept for readability
// at call sites that enable tracing from startup config.
func (l *Global) StartTracingTags(tags ...string) {
	l.EnableTraceTags(tags...)
}

func (l *Global) EnableTraceTags(tags ...string) {
	l.traceTagsMutex.Lock()
	for _, t := range tags {
		st := strings.Split(t, ",")
		for _, t1 := range st {
			t1 = strings.TrimSpace(t1)
			if t1 == "" {
				continue
			}
			l.traceTags.Insert(t1)
		}
		l.enabledTrace.Store(true)
	}
	l.traceTagsMutex.Unlock()
	for _, tag := range tags {
		l.Tracef(tag, "trace tag enabled")
	}
}

func (l *Global) DisableTraceTag(tag string) {
	l.traceTagsMutex.Lock()
	defer l.traceTagsMutex.Unlock()

	l.traceTags.Remove(tag)
}

func (l *Global) TraceLog(log *zap.SugaredLogger, tag string, format string, args ...any) {
	if !l.enabledTrace.Load() {
		return
	}

	l.traceTagsMutex.RLock()
	defer l.traceTagsMutex.RUnlock()

	for _, t := range strings.Split(tag, ",") {
		if l.traceTags.Contains(t) {
			log.Infof("TRACE(%s) %s", t, fmt.Sprintf(format, util.EvalLazyArgs(args...)...))
			return
		}
	}
}

func (l *Global) Tracef(tag string, format string, args ...any) {
	l.TraceLog(l.Log(), tag, format, args...)
}

type SubLogger struct {
	Logging
}

func MakeSubLogger(l Logging, name string) Logging {
	return SubLogger{&Global{
		SugaredLogger:   l.Log().Named(name),
		traceTags:       set.New[string](),
		metricsRegistry: prometheus.NewRegistry(),
		once:            &sync.Once{},
	}}
}
