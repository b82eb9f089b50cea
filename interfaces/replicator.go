package interfaces

import (
	"context"

	"myregistry/domain"
)

// Replicator queues locally originated mutations for asynchronous delivery
// to peer registry nodes. Enqueue never blocks the mutation path: when a
// peer queue is full the task is dropped and logged, and the peer converges
// later via its own clients re-registering.
//
// Implemented by service.replicationBatcher. Called from
// service.instanceRegistry on every local mutation.
//
//go:generate moq -stub -out mock/replicator.go -pkg mock . Replicator PeerClient
type Replicator interface {
	// Enqueue hands one mutation to the replication workers. Never returns
	// an error and never blocks; delivery is best-effort.
	Enqueue(task domain.ReplicationTask)
}

// PeerClient delivers one batch of replication tasks to a single peer
// registry node.
//
// Implemented by adapters.PeerHTTP. Called from the per-peer replication
// worker in service.replicationBatcher.
type PeerClient interface {
	// Submit posts the batch to the peer (e.g. POST /v1/replication/batch).
	// Returns:
	// 1) nil when the peer accepted the batch (2xx);
	// 2) error on network failure, timeout or non-2xx status — the caller
	//    retries with backoff and eventually drops the batch.
	Submit(ctx context.Context, batch []domain.ReplicationTask) error

	// Target returns a printable identifier of the peer (base URL) for logs.
	Target() string
}
