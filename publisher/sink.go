package publisher

import (
	"context"

	"github.com/solindex/geyser-indexer/event"
)

// Sink is the publish side of the overlay's topic mesh. The overlay
// package implements this against its own gossip topics; publisher
// only depends on this narrow interface to avoid importing overlay.
type Sink interface {
	Publish(ctx context.Context, env *event.Envelope) error
}
