package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle status an instance reports for itself.
type Status string

const (
	StatusStarting     Status = "STARTING"
	StatusUp           Status = "UP"
	StatusDown         Status = "DOWN"
	StatusOutOfService Status = "OUT_OF_SERVICE"
	StatusUnknown      Status = "UNKNOWN"
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusStarting, StatusUp, StatusDown, StatusOutOfService, StatusUnknown:
		return true
	}
	return false
}

// NormalizeAppName returns the canonical (upper-case) form of an application
// name. (AppName, InstanceID) is the registry key; the app half is
// case-insensitive on the wire.
func NormalizeAppName(appName string) string {
	return strings.ToUpper(appName)
}

// InstanceInfo is the identity and status of one registered service instance.
// LastDirtyTimestamp (unix millis) strictly increases on every update to the
// same instance and is the tie-breaker for replicated conflicting writes.
type InstanceInfo struct {
	AppName            string            `json:"app_name"`
	InstanceID         string            `json:"instance_id"`
	HostName           string            `json:"host_name"`
	IPAddr             string            `json:"ip_addr"`
	Port               int               `json:"port"`
	Status             Status            `json:"status"`
	OverriddenStatus   Status            `json:"overridden_status,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	LastDirtyTimestamp int64             `json:"last_dirty_timestamp"`
}

// EffectiveStatus returns the operator override when one is set, otherwise
// the self-reported status.
func (i InstanceInfo) EffectiveStatus() Status {
	if i.OverriddenStatus != "" {
		return i.OverriddenStatus
	}
	return i.Status
}

// Copy returns a deep copy of the instance (metadata map included) so cache
// snapshots never alias the live registry.
func (i InstanceInfo) Copy() InstanceInfo {
	out := i
	if i.Metadata != nil {
		out.Metadata = make(map[string]string, len(i.Metadata))
		for k, v := range i.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// DefaultLeaseDuration is used when a registration does not carry one.
const DefaultLeaseDuration = 90 * time.Second

// Lease wraps an InstanceInfo with renewal bookkeeping. A lease is expired
// when no renewal arrived within Duration; a cancelled lease (non-zero
// EvictionTimestamp) is never considered expired again, it is simply gone.
type Lease struct {
	Instance              InstanceInfo
	RegistrationTimestamp time.Time
	LastUpdateTimestamp   time.Time
	Duration              time.Duration
	EvictionTimestamp     time.Time
}

// NewLease creates a lease registered and last-updated at now.
func NewLease(instance InstanceInfo, duration time.Duration, now time.Time) *Lease {
	if duration <= 0 {
		duration = DefaultLeaseDuration
	}
	return &Lease{
		Instance:              instance,
		RegistrationTimestamp: now,
		LastUpdateTimestamp:   now,
		Duration:              duration,
	}
}

// Renew refreshes the lease so it is considered alive for another Duration.
func (l *Lease) Renew(now time.Time) {
	l.LastUpdateTimestamp = now
}

// Cancel marks the lease as explicitly cancelled. Set once.
func (l *Lease) Cancel(now time.Time) {
	if l.EvictionTimestamp.IsZero() {
		l.EvictionTimestamp = now
	}
}

// Expired reports whether the lease missed its renewal deadline. Cancelled
// leases are never expired.
func (l *Lease) Expired(now time.Time) bool {
	if !l.EvictionTimestamp.IsZero() {
		return false
	}
	return now.Sub(l.LastUpdateTimestamp) > l.Duration
}

// Action is the kind of a registry mutation.
type Action string

const (
	ActionRegister     Action = "register"
	ActionRenew        Action = "renew"
	ActionCancel       Action = "cancel"
	ActionStatusUpdate Action = "status_update"
)

// Origin tells whether a mutation arrived from a client or from a peer
// registry node. Replicated mutations are applied locally but never
// re-enqueued for replication (hop count of one).
type Origin int

const (
	OriginLocal Origin = iota
	OriginReplicated
)

// ReplicationTask is one queued mutation to relay to peer registry nodes.
// Instance is set for register tasks, Status for status updates.
// OriginTimestamp carries the LastDirtyTimestamp of the mutated instance and
// drives last-writer-wins conflict resolution on the receiving peer.
type ReplicationTask struct {
	Action          Action        `json:"action"`
	AppName         string        `json:"app_name"`
	InstanceID      string        `json:"instance_id"`
	Instance        *InstanceInfo `json:"instance,omitempty"`
	Status          Status        `json:"status,omitempty"`
	LeaseDurationMs int64         `json:"lease_duration_ms,omitempty"`
	OriginTimestamp int64         `json:"origin_timestamp"`
}

// InstanceKey identifies one lease in the registry.
type InstanceKey struct {
	AppName    string `json:"app_name"`
	InstanceID string `json:"instance_id"`
}

// RegistryStats is the observability snapshot of one registry node: lease
// count, the renewal-rate threshold the self-preservation gate compares
// against, and whether the gate is currently suppressing eviction.
type RegistryStats struct {
	Leases                 int     `json:"leases"`
	ExpectedRenewsPerMin   float64 `json:"expected_renews_per_min"`
	ActualRenewsPerMin     int64   `json:"actual_renews_per_min"`
	SelfPreservationActive bool    `json:"self_preservation_active"`
}

// Mutation is one applied registry change as recorded for delta reads.
// Version is assigned by the response cache in local apply order.
type Mutation struct {
	Version  int64        `json:"version"`
	Action   Action       `json:"action"`
	Instance InstanceInfo `json:"instance"`
}
