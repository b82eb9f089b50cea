package interfaces

import (
	"time"

	"myregistry/domain"
)

// Registry is the in-memory lease store for registered service instances.
// Mutations to the same (app_name, instance_id) are linearized; different
// keys proceed independently. Every applied mutation is recorded for delta
// reads and, when it originated locally, queued for peer replication.
//
// Implemented by service.instanceRegistry. Called from handlers.HTTPServer
// (client and peer traffic) and service.evictionScheduler (EvictExpired).
//
//go:generate moq -stub -out mock/registry.go -pkg mock . Registry
type Registry interface {
	// Register creates or replaces the lease for instance. Idempotent;
	// a pre-existing overridden status for the same key is preserved.
	// Returns:
	// 1) nil on success;
	// 2) bad_parameter when the instance is missing required identity fields;
	// 3) nil (no-op) for a replicated register older than the local copy.
	Register(instance domain.InstanceInfo, leaseDuration time.Duration, origin domain.Origin) error

	// Renew refreshes the lease for the given key.
	// Returns:
	// 1) nil on success;
	// 2) entity_not_found when the key is unknown — the caller is expected
	//    to re-register from scratch (self-healing after node restart).
	Renew(appName, instanceID string, origin domain.Origin) error

	// Cancel removes the lease immediately (graceful shutdown path).
	// Returns nil on success or entity_not_found for an unknown key.
	Cancel(appName, instanceID string, origin domain.Origin) error

	// StatusUpdate sets the operator status override without touching lease
	// timing. Returns nil on success or entity_not_found for an unknown key.
	StatusUpdate(appName, instanceID string, status domain.Status, originTimestamp int64, origin domain.Origin) error

	// EvictExpired sweeps expired leases, subject to the self-preservation
	// gate, and returns the keys it actually removed (stalest first).
	// Called only by the eviction scheduler.
	EvictExpired(now time.Time) []domain.InstanceKey

	// Snapshot returns a deep copy of every live instance. Used only by the
	// response cache to rebuild read payloads.
	Snapshot() []domain.InstanceInfo

	// Stats returns the node observability counters.
	Stats() domain.RegistryStats
}
