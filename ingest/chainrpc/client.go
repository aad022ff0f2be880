// Package chainrpc is a thin net/http + encoding/json client for the
// canonical chain RPC, the external-collaborator backfill fallback
// named in spec §6. It is intentionally stdlib: this is a boundary to
// an external validator RPC service, not an in-process concern the
// rest of the pack's libraries address (see DESIGN.md).
package chainrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type getSlotDataRequest struct {
	Slot uint64 `json:"slot"`
	Kind byte   `json:"kind"`
}

type getSlotDataResponse struct {
	Records [][]byte `json:"records"`
	NotFound bool    `json:"not_found"`
}

// GetSlotData calls the canonical chain RPC's get_slot_data(slot,
// kind), returning EM-encoded values for that slot.
func (c *Client) GetSlotData(ctx context.Context, slot uint64, kind event.Kind) ([]event.Value, error) {
	reqBody, err := json.Marshal(getSlotDataRequest{Slot: slot, Kind: byte(kind)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get_slot_data", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: chain rpc returned status %d", errkind.TransientIO, resp.StatusCode)
	}

	var out getSlotDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.Malformed, err)
	}
	if out.NotFound {
		return nil, nil
	}

	values := make([]event.Value, 0, len(out.Records))
	for _, rec := range out.Records {
		v, err := event.Decode(rec)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
