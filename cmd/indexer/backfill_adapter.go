package main

import (
	"context"

	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/ingest"
	"github.com/solindex/geyser-indexer/overlay"
)

// overlayBackfillRequester adapts *overlay.Overlay's BackfillReply
// shape to ingest.BackfillRequester's BackfillResult shape; the two
// packages don't import each other so ingest can be built and tested
// without pulling in libp2p.
type overlayBackfillRequester struct {
	ov *overlay.Overlay
}

func (a overlayBackfillRequester) RequestBackfill(ctx context.Context, kind event.Kind, fromSlot, toSlot uint64) (*ingest.BackfillResult, error) {
	reply, err := a.ov.RequestBackfill(ctx, kind, fromSlot, toSlot)
	if err != nil {
		return nil, err
	}
	return &ingest.BackfillResult{NotFound: reply.NotFound, Envelopes: reply.Envelopes}, nil
}
