// Package adapters contains infrastructure implementations of the
// myregistry interfaces.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"myregistry/domain"
	"myregistry/interfaces"
)

// batchRequest is the JSON body of POST /v1/replication/batch.
type batchRequest struct {
	Tasks []domain.ReplicationTask `json:"tasks"`
}

// peerHTTP implements interfaces.PeerClient over the peer's replication
// endpoint. One instance per configured peer; called only from the
// replication worker goroutine for that peer.
type peerHTTP struct {
	baseURL string
	client  *http.Client
}

// PeerHTTP creates a PeerClient that POSTs batches to
// {baseURL}/v1/replication/batch. Panics on empty baseURL or nil client.
//
// Called from cmd/main for each peer listed in the config.
func PeerHTTP(baseURL string, client *http.Client) interfaces.PeerClient {
	if baseURL == "" {
		panic("adapters.peer.go: baseURL is required")
	}
	if client == nil {
		panic("adapters.peer.go: http client is required")
	}
	return &peerHTTP{
		baseURL: baseURL,
		client:  client,
	}
}

// Submit posts the batch. Any non-2xx status is an error so the caller's
// retry/backoff policy applies uniformly to network and server failures.
func (p *peerHTTP) Submit(ctx context.Context, batch []domain.ReplicationTask) error {
	body, err := json.Marshal(batchRequest{Tasks: batch})
	if err != nil {
		return fmt.Errorf("peer submit failed to marshal batch, err: %w", err)
	}

	reqURL := p.baseURL + "/v1/replication/batch"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("peer replication returned %d", resp.StatusCode)
	}
	return nil
}

// Target returns the peer base URL for logs.
func (p *peerHTTP) Target() string {
	return p.baseURL
}
