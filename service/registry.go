package service

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"myregistry/domain"
	"myregistry/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// RegistryConfig carries the lease/eviction knobs of the registry core.
type RegistryConfig struct {
	// DefaultLeaseDuration applies to registrations that do not carry one.
	DefaultLeaseDuration time.Duration
	// RenewalInterval is how often clients are expected to heartbeat.
	RenewalInterval time.Duration
	// RenewalThresholdFactor discounts the expected renewal rate so
	// occasional missed heartbeats do not trip the gate (default 0.85).
	RenewalThresholdFactor float64
	// SelfPreservationEnabled turns the gate off entirely when false.
	SelfPreservationEnabled bool
	// EvictionLimitFraction caps how large a share of the registry one sweep
	// may evict even with the gate inactive (default 0.15).
	EvictionLimitFraction float64
}

// DefaultRegistryConfig returns the production defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		DefaultLeaseDuration:    domain.DefaultLeaseDuration,
		RenewalInterval:         30 * time.Second,
		RenewalThresholdFactor:  0.85,
		SelfPreservationEnabled: true,
		EvictionLimitFraction:   0.15,
	}
}

// appShard holds the leases of one application behind its own lock so
// unrelated applications never serialize on each other.
//
// tombstones remember the last dirty timestamp of cancelled instances so a
// stale replicated register cannot resurrect an instance that was cancelled
// with a newer timestamp. A tombstone is cleared by a successful re-register.
// overrides remember operator status overrides across re-registration.
type appShard struct {
	mu         sync.Mutex
	leases     map[string]*domain.Lease
	tombstones map[string]int64
	overrides  map[string]domain.Status
}

func newAppShard() *appShard {
	return &appShard{
		leases:     make(map[string]*domain.Lease),
		tombstones: make(map[string]int64),
		overrides:  make(map[string]domain.Status),
	}
}

// instanceRegistry implements interfaces.Registry. It owns the lease map
// exclusively; reads go through the response cache (Snapshot) and every
// mutation flows through the methods below.
type instanceRegistry struct {
	cfg          RegistryConfig
	timeProvider interfaces.TimeProvider
	replicator   interfaces.Replicator
	sink         interfaces.MutationSink
	monitor      *renewalMonitor
	logger       log.Logger

	mu   sync.RWMutex
	apps map[string]*appShard
}

// NewInstanceRegistry creates the registry core. Panics on nil dependencies.
func NewInstanceRegistry(
	cfg RegistryConfig,
	timeProvider interfaces.TimeProvider,
	replicator interfaces.Replicator,
	sink interfaces.MutationSink,
	logger log.Logger,
) interfaces.Registry {
	if timeProvider == nil {
		panic("service.registry.go: time provider is required")
	}
	if replicator == nil {
		panic("service.registry.go: replicator is required")
	}
	if sink == nil {
		panic("service.registry.go: mutation sink is required")
	}
	if logger == nil {
		panic("service.registry.go: logger is required")
	}
	if cfg.DefaultLeaseDuration <= 0 {
		cfg.DefaultLeaseDuration = domain.DefaultLeaseDuration
	}
	if cfg.RenewalInterval <= 0 {
		cfg.RenewalInterval = DefaultRegistryConfig().RenewalInterval
	}
	if cfg.EvictionLimitFraction <= 0 || cfg.EvictionLimitFraction > 1 {
		cfg.EvictionLimitFraction = DefaultRegistryConfig().EvictionLimitFraction
	}
	return &instanceRegistry{
		cfg:          cfg,
		timeProvider: timeProvider,
		replicator:   replicator,
		sink:         sink,
		monitor:      newRenewalMonitor(cfg.RenewalInterval, cfg.RenewalThresholdFactor, timeProvider.Now()),
		logger:       log.WithPrefix(logger, "component", "registry"),
		apps:         make(map[string]*appShard),
	}
}

// shard returns the appShard for appName, creating it when needed.
func (r *instanceRegistry) shard(appName string) *appShard {
	r.mu.RLock()
	s, ok := r.apps[appName]
	r.mu.RUnlock()
	if ok {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.apps[appName]; ok {
		return s
	}
	s = newAppShard()
	r.apps[appName] = s
	return s
}

// lookup returns the shard for appName without creating one.
func (r *instanceRegistry) lookup(appName string) (*appShard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.apps[appName]
	return s, ok
}

// nextDirtyTimestamp produces a stamp strictly greater than prev even when
// the clock has not advanced a whole millisecond.
func nextDirtyTimestamp(prev int64, now time.Time) int64 {
	stamp := now.UnixMilli()
	if stamp <= prev {
		stamp = prev + 1
	}
	return stamp
}

// Register creates or replaces the lease for instance. Re-registering the
// same key replaces the lease and advances the dirty stamp; an operator
// override recorded for the key survives re-registration. Replicated
// registers older than what this node already knows (live lease or cancel
// tombstone) are dropped so replication loops and stale replays cannot roll
// state back.
func (r *instanceRegistry) Register(instance domain.InstanceInfo, leaseDuration time.Duration, origin domain.Origin) error {
	if instance.AppName == "" {
		return NewBadParameterError("app_name is required", nil)
	}
	if instance.InstanceID == "" {
		return NewBadParameterError("instance_id is required", nil)
	}
	if !domain.ValidStatus(instance.Status) {
		return NewBadParameterError(fmt.Sprintf("unknown status %q", instance.Status), nil)
	}
	instance.AppName = domain.NormalizeAppName(instance.AppName)
	if leaseDuration <= 0 {
		leaseDuration = r.cfg.DefaultLeaseDuration
	}

	now := r.timeProvider.Now()
	s := r.shard(instance.AppName)

	s.mu.Lock()
	existing := s.leases[instance.InstanceID]
	if origin == domain.OriginReplicated {
		if existing != nil && existing.Instance.LastDirtyTimestamp >= instance.LastDirtyTimestamp {
			s.mu.Unlock()
			return nil
		}
		if ts, ok := s.tombstones[instance.InstanceID]; ok && ts >= instance.LastDirtyTimestamp {
			s.mu.Unlock()
			return nil
		}
	} else {
		var prev int64
		if existing != nil {
			prev = existing.Instance.LastDirtyTimestamp
		}
		if ts, ok := s.tombstones[instance.InstanceID]; ok && ts > prev {
			prev = ts
		}
		instance.LastDirtyTimestamp = nextDirtyTimestamp(prev, now)
	}
	if ov, ok := s.overrides[instance.InstanceID]; ok {
		instance.OverriddenStatus = ov
	}
	delete(s.tombstones, instance.InstanceID)
	s.leases[instance.InstanceID] = domain.NewLease(instance, leaseDuration, now)
	// Recorded and enqueued under the shard lock: the delta ring and the peer
	// stream must see mutations to one key in the order they were applied.
	// Record and Enqueue never block, so the lock stays short.
	version := r.sink.Record(domain.ActionRegister, instance.Copy())
	if origin == domain.OriginLocal {
		replicated := instance.Copy()
		r.replicator.Enqueue(domain.ReplicationTask{
			Action:          domain.ActionRegister,
			AppName:         instance.AppName,
			InstanceID:      instance.InstanceID,
			Instance:        &replicated,
			LeaseDurationMs: leaseDuration.Milliseconds(),
			OriginTimestamp: instance.LastDirtyTimestamp,
		})
	}
	s.mu.Unlock()

	level.Debug(r.logger).Log(
		"msg", "registered instance",
		"app_name", instance.AppName,
		"instance_id", instance.InstanceID,
		"version", version,
	)
	return nil
}

// Renew refreshes the lease. An unknown key yields entity_not_found so the
// client re-registers from scratch; that path rebuilds the registry after a
// node restart and is not an error condition.
func (r *instanceRegistry) Renew(appName, instanceID string, origin domain.Origin) error {
	appName = domain.NormalizeAppName(appName)
	now := r.timeProvider.Now()

	s, ok := r.lookup(appName)
	if !ok {
		return NewEntityNotFoundError("lease not found", nil)
	}
	s.mu.Lock()
	lease, ok := s.leases[instanceID]
	if !ok {
		s.mu.Unlock()
		return NewEntityNotFoundError("lease not found", nil)
	}
	lease.Renew(now)
	if origin == domain.OriginLocal {
		r.replicator.Enqueue(domain.ReplicationTask{
			Action:          domain.ActionRenew,
			AppName:         appName,
			InstanceID:      instanceID,
			OriginTimestamp: now.UnixMilli(),
		})
	}
	s.mu.Unlock()

	r.monitor.Increment(now)
	return nil
}

// Cancel removes the lease immediately (graceful shutdown path, no TTL wait)
// and leaves a tombstone carrying the cancellation's dirty stamp.
func (r *instanceRegistry) Cancel(appName, instanceID string, origin domain.Origin) error {
	appName = domain.NormalizeAppName(appName)
	now := r.timeProvider.Now()

	s, ok := r.lookup(appName)
	if !ok {
		return NewEntityNotFoundError("lease not found", nil)
	}
	s.mu.Lock()
	lease, ok := s.leases[instanceID]
	if !ok {
		s.mu.Unlock()
		return NewEntityNotFoundError("lease not found", nil)
	}
	lease.Cancel(now)
	stamp := lease.Instance.LastDirtyTimestamp
	if origin == domain.OriginLocal {
		stamp = nextDirtyTimestamp(stamp, now)
	}
	lease.Instance.LastDirtyTimestamp = stamp
	s.tombstones[instanceID] = stamp
	delete(s.leases, instanceID)
	version := r.sink.Record(domain.ActionCancel, lease.Instance.Copy())
	if origin == domain.OriginLocal {
		r.replicator.Enqueue(domain.ReplicationTask{
			Action:          domain.ActionCancel,
			AppName:         appName,
			InstanceID:      instanceID,
			OriginTimestamp: stamp,
		})
	}
	s.mu.Unlock()

	level.Debug(r.logger).Log(
		"msg", "cancelled lease",
		"app_name", appName,
		"instance_id", instanceID,
		"version", version,
	)
	return nil
}

// StatusUpdate records an operator override for the instance. Lease timing
// is untouched. Replicated updates older than the local copy are dropped.
func (r *instanceRegistry) StatusUpdate(appName, instanceID string, status domain.Status, originTimestamp int64, origin domain.Origin) error {
	if !domain.ValidStatus(status) {
		return NewBadParameterError(fmt.Sprintf("unknown status %q", status), nil)
	}
	appName = domain.NormalizeAppName(appName)
	now := r.timeProvider.Now()

	s, ok := r.lookup(appName)
	if !ok {
		return NewEntityNotFoundError("lease not found", nil)
	}
	s.mu.Lock()
	lease, ok := s.leases[instanceID]
	if !ok {
		s.mu.Unlock()
		return NewEntityNotFoundError("lease not found", nil)
	}
	if origin == domain.OriginReplicated && originTimestamp <= lease.Instance.LastDirtyTimestamp {
		s.mu.Unlock()
		return nil
	}
	stamp := originTimestamp
	if origin == domain.OriginLocal {
		stamp = nextDirtyTimestamp(lease.Instance.LastDirtyTimestamp, now)
	}
	lease.Instance.OverriddenStatus = status
	lease.Instance.LastDirtyTimestamp = stamp
	s.overrides[instanceID] = status
	r.sink.Record(domain.ActionStatusUpdate, lease.Instance.Copy())
	if origin == domain.OriginLocal {
		r.replicator.Enqueue(domain.ReplicationTask{
			Action:          domain.ActionStatusUpdate,
			AppName:         appName,
			InstanceID:      instanceID,
			Status:          status,
			OriginTimestamp: stamp,
		})
	}
	s.mu.Unlock()

	return nil
}

// evictionCandidate is one expired lease considered by a sweep.
type evictionCandidate struct {
	key        domain.InstanceKey
	lastUpdate time.Time
}

// EvictExpired sweeps expired leases. With the self-preservation gate active
// it evicts nothing; otherwise it evicts stalest-first, never more than
// EvictionLimitFraction of the registry in one sweep. Each eviction is
// replicated as a cancel.
func (r *instanceRegistry) EvictExpired(now time.Time) []domain.InstanceKey {
	var candidates []evictionCandidate
	leases := 0

	r.mu.RLock()
	shards := make(map[string]*appShard, len(r.apps))
	for name, s := range r.apps {
		shards[name] = s
	}
	r.mu.RUnlock()

	for appName, s := range shards {
		s.mu.Lock()
		leases += len(s.leases)
		for id, lease := range s.leases {
			if lease.Expired(now) {
				candidates = append(candidates, evictionCandidate{
					key:        domain.InstanceKey{AppName: appName, InstanceID: id},
					lastUpdate: lease.LastUpdateTimestamp,
				})
			}
		}
		s.mu.Unlock()
	}
	if len(candidates) == 0 {
		return nil
	}

	if r.cfg.SelfPreservationEnabled && r.monitor.GateActive(leases, now) {
		level.Warn(r.logger).Log(
			"msg", "renewal threshold breached, self-preservation active, skipping eviction",
			"expired", len(candidates),
			"actual_renews_per_min", r.monitor.ActualPerMin(now),
			"expected_renews_per_min", r.monitor.ExpectedPerMin(leases),
		)
		return nil
	}

	// Stalest first, and never more than the configured share of the
	// registry in a single sweep.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastUpdate.Before(candidates[j].lastUpdate)
	})
	limit := int(math.Ceil(float64(leases) * r.cfg.EvictionLimitFraction))
	if limit < 1 {
		limit = 1
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	evicted := make([]domain.InstanceKey, 0, len(candidates))
	for _, c := range candidates {
		s, ok := r.lookup(c.key.AppName)
		if !ok {
			continue
		}
		s.mu.Lock()
		lease, ok := s.leases[c.key.InstanceID]
		// Re-check under the shard lock: a renew may have raced the sweep.
		if !ok || !lease.Expired(now) {
			s.mu.Unlock()
			continue
		}
		lease.Cancel(now)
		stamp := nextDirtyTimestamp(lease.Instance.LastDirtyTimestamp, now)
		lease.Instance.LastDirtyTimestamp = stamp
		s.tombstones[c.key.InstanceID] = stamp
		delete(s.leases, c.key.InstanceID)
		r.sink.Record(domain.ActionCancel, lease.Instance.Copy())
		r.replicator.Enqueue(domain.ReplicationTask{
			Action:          domain.ActionCancel,
			AppName:         c.key.AppName,
			InstanceID:      c.key.InstanceID,
			OriginTimestamp: stamp,
		})
		s.mu.Unlock()

		evicted = append(evicted, c.key)
		level.Info(r.logger).Log(
			"msg", "evicted expired lease",
			"app_name", c.key.AppName,
			"instance_id", c.key.InstanceID,
		)
	}
	return evicted
}

// Snapshot returns a deep copy of every live instance, for cache rebuilds.
func (r *instanceRegistry) Snapshot() []domain.InstanceInfo {
	r.mu.RLock()
	shards := make([]*appShard, 0, len(r.apps))
	for _, s := range r.apps {
		shards = append(shards, s)
	}
	r.mu.RUnlock()

	var out []domain.InstanceInfo
	for _, s := range shards {
		s.mu.Lock()
		for _, lease := range s.leases {
			out = append(out, lease.Instance.Copy())
		}
		s.mu.Unlock()
	}
	return out
}

// Stats returns the node observability counters.
func (r *instanceRegistry) Stats() domain.RegistryStats {
	now := r.timeProvider.Now()

	r.mu.RLock()
	shards := make([]*appShard, 0, len(r.apps))
	for _, s := range r.apps {
		shards = append(shards, s)
	}
	r.mu.RUnlock()

	leases := 0
	for _, s := range shards {
		s.mu.Lock()
		leases += len(s.leases)
		s.mu.Unlock()
	}
	return domain.RegistryStats{
		Leases:                 leases,
		ExpectedRenewsPerMin:   r.monitor.ExpectedPerMin(leases),
		ActualRenewsPerMin:     r.monitor.ActualPerMin(now),
		SelfPreservationActive: r.cfg.SelfPreservationEnabled && r.monitor.GateActive(leases, now),
	}
}
