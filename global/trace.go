package global

import (
	"github.com/solindex/geyser-indexer/util"
	"go.uber.org/zap"
)

// Hardcoded tracing, independent of the tag-based Global.Tracef gate
// above, for the two hot paths worth an always-on verbose switch.

const (
	TraceBackfillEnabled = true
	TraceIngestEnabled   = true
)

func TraceBackfill(log *zap.SugaredLogger, format string, lazyArgs ...any) {
	if TraceBackfillEnabled {
		log.Infof(">>>>>>>>>>>>>>>> TRACE BACKFILL "+format, util.EvalLazyArgs(lazyArgs...)...)
	}
}
