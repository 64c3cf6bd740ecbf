// Package replication ships committed-candidate records from the leader to
// the follower over HTTP and exposes the wire envelope both sides use.
package replication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Rakss1104/yak/internal/partitionlog"
)

// Envelope is the JSON body POSTed to /internal/replicate.
type Envelope struct {
	Record partitionlog.Record `json:"record"`
}

// Client ships records to a single peer follower.
type Client struct {
	peerURL string
	http    *http.Client
}

// NewClient creates a replication client targeting peerURL with the given
// hard timeout applied to every call.
func NewClient(peerURL string, timeout time.Duration) *Client {
	return &Client{
		peerURL: peerURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a peer is configured at all; a broker running
// single-node has no peer and skips replication entirely.
func (c *Client) Enabled() bool {
	return c != nil && c.peerURL != ""
}

// Replicate POSTs rec to the follower's /internal/replicate endpoint and
// returns an error on any non-2xx response, network error, or timeout.
func (c *Client) Replicate(ctx context.Context, rec partitionlog.Record) error {
	body, err := json.Marshal(Envelope{Record: rec})
	if err != nil {
		return fmt.Errorf("replication: marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.peerURL+"/internal/replicate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("replication: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("replication: request to %s: %w", c.peerURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("replication: follower %s responded %d", c.peerURL, resp.StatusCode)
	}
	return nil
}
