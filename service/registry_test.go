package service

import (
	"fmt"
	"testing"
	"time"

	"myregistry/domain"
	"myregistry/interfaces"
	"myregistry/interfaces/mock"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock for deterministic lease timing.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) provider() *mock.TimeProviderMock {
	return &mock.TimeProviderMock{NowFunc: func() time.Time { return c.now }}
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type registryEnv struct {
	registry   interfaces.Registry
	clock      *testClock
	replicator *mock.ReplicatorMock
	sink       *mock.MutationSinkMock
}

func newRegistryEnv(cfg RegistryConfig) *registryEnv {
	clock := newTestClock()
	replicator := &mock.ReplicatorMock{}
	sink := &mock.MutationSinkMock{}
	return &registryEnv{
		registry:   NewInstanceRegistry(cfg, clock.provider(), replicator, sink, log.NewNopLogger()),
		clock:      clock,
		replicator: replicator,
		sink:       sink,
	}
}

func testInstance(appName, instanceID string) domain.InstanceInfo {
	return domain.InstanceInfo{
		AppName:    appName,
		InstanceID: instanceID,
		HostName:   instanceID + ".local",
		IPAddr:     "10.0.0.1",
		Port:       8080,
		Status:     domain.StatusUp,
	}
}

func TestRegistry_Register_Ok(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	err := env.registry.Register(testInstance("orders", "inst-1"), 90*time.Second, domain.OriginLocal)
	require.NoError(t, err)

	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "ORDERS", snapshot[0].AppName)
	assert.Equal(t, "inst-1", snapshot[0].InstanceID)
	assert.Equal(t, env.clock.now.UnixMilli(), snapshot[0].LastDirtyTimestamp)

	records := env.sink.RecordCalls()
	require.Len(t, records, 1)
	assert.Equal(t, domain.ActionRegister, records[0].Action)

	tasks := env.replicator.EnqueueCalls()
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.ActionRegister, tasks[0].Task.Action)
	assert.Equal(t, "ORDERS", tasks[0].Task.AppName)
	require.NotNil(t, tasks[0].Task.Instance)
	assert.Equal(t, snapshot[0].LastDirtyTimestamp, tasks[0].Task.OriginTimestamp)
	assert.Equal(t, int64(90000), tasks[0].Task.LeaseDurationMs)
}

func TestRegistry_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		instance domain.InstanceInfo
	}{
		{name: "missing app name", instance: testInstance("", "inst-1")},
		{name: "missing instance id", instance: testInstance("orders", "")},
		{
			name: "unknown status",
			instance: domain.InstanceInfo{
				AppName:    "orders",
				InstanceID: "inst-1",
				Status:     domain.Status("SLEEPING"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newRegistryEnv(DefaultRegistryConfig())
			err := env.registry.Register(tt.instance, 0, domain.OriginLocal)
			require.Error(t, err)
			assert.True(t, IsBadParameterError(err))
			assert.Empty(t, env.registry.Snapshot())
			assert.Empty(t, env.replicator.EnqueueCalls())
		})
	}
}

func TestRegistry_Register_ReplaceAdvancesDirtyTimestamp(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	first := env.registry.Snapshot()[0].LastDirtyTimestamp

	// Same wall-clock millisecond: the stamp must still strictly increase.
	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	second := env.registry.Snapshot()[0].LastDirtyTimestamp
	assert.Greater(t, second, first)

	require.Len(t, env.registry.Snapshot(), 1)
}

func TestRegistry_Register_PreservesStatusOverride(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	require.NoError(t, env.registry.StatusUpdate("orders", "inst-1", domain.StatusOutOfService, 0, domain.OriginLocal))

	// Re-registration reports UP but the operator override must survive.
	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))

	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, domain.StatusUp, snapshot[0].Status)
	assert.Equal(t, domain.StatusOutOfService, snapshot[0].OverriddenStatus)
	assert.Equal(t, domain.StatusOutOfService, snapshot[0].EffectiveStatus())
}

func TestRegistry_Register_Replicated_DropsStaleWrite(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	fresh := testInstance("orders", "inst-1")
	fresh.LastDirtyTimestamp = 2000
	fresh.AppName = "ORDERS"
	require.NoError(t, env.registry.Register(fresh, 0, domain.OriginReplicated))

	stale := testInstance("orders", "inst-1")
	stale.Status = domain.StatusDown
	stale.LastDirtyTimestamp = 1000
	require.NoError(t, env.registry.Register(stale, 0, domain.OriginReplicated))

	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, domain.StatusUp, snapshot[0].Status)
	assert.Equal(t, int64(2000), snapshot[0].LastDirtyTimestamp)

	// The stale write was dropped silently: one record, nothing re-enqueued.
	assert.Len(t, env.sink.RecordCalls(), 1)
	assert.Empty(t, env.replicator.EnqueueCalls())
}

func TestRegistry_Register_Replicated_NewerWriteWins(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	local := env.registry.Snapshot()[0].LastDirtyTimestamp

	newer := testInstance("orders", "inst-1")
	newer.AppName = "ORDERS"
	newer.Status = domain.StatusDown
	newer.LastDirtyTimestamp = local + 5
	require.NoError(t, env.registry.Register(newer, 0, domain.OriginReplicated))

	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, domain.StatusDown, snapshot[0].Status)
	assert.Equal(t, local+5, snapshot[0].LastDirtyTimestamp)
}

func TestRegistry_Cancel_RemovesLease(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	require.NoError(t, env.registry.Cancel("orders", "inst-1", domain.OriginLocal))

	assert.Empty(t, env.registry.Snapshot())

	records := env.sink.RecordCalls()
	require.Len(t, records, 2)
	assert.Equal(t, domain.ActionCancel, records[1].Action)

	tasks := env.replicator.EnqueueCalls()
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.ActionCancel, tasks[1].Task.Action)
	assert.Greater(t, tasks[1].Task.OriginTimestamp, tasks[0].Task.OriginTimestamp)
}

func TestRegistry_Cancel_Unknown(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())
	err := env.registry.Cancel("orders", "inst-1", domain.OriginLocal)
	require.Error(t, err)
	assert.True(t, IsEntityNotFoundError(err))
}

func TestRegistry_Cancel_TombstoneBlocksStaleResurrection(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	registeredStamp := env.registry.Snapshot()[0].LastDirtyTimestamp
	require.NoError(t, env.registry.Cancel("orders", "inst-1", domain.OriginLocal))

	// A peer relays the original register after the cancel already landed.
	// Its stamp predates the cancel so the instance must stay gone.
	replayed := testInstance("orders", "inst-1")
	replayed.AppName = "ORDERS"
	replayed.LastDirtyTimestamp = registeredStamp
	require.NoError(t, env.registry.Register(replayed, 0, domain.OriginReplicated))
	assert.Empty(t, env.registry.Snapshot())

	// A genuinely newer replicated register takes effect again.
	revived := testInstance("orders", "inst-1")
	revived.AppName = "ORDERS"
	revived.LastDirtyTimestamp = registeredStamp + 10
	require.NoError(t, env.registry.Register(revived, 0, domain.OriginReplicated))
	assert.Len(t, env.registry.Snapshot(), 1)
}

func TestRegistry_Register_AfterCancelAdvancesPastTombstone(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	require.NoError(t, env.registry.Cancel("orders", "inst-1", domain.OriginLocal))
	cancelStamp := env.replicator.EnqueueCalls()[1].Task.OriginTimestamp

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Greater(t, snapshot[0].LastDirtyTimestamp, cancelStamp)
}

func TestRegistry_Renew_Ok(t *testing.T) {
	cfg := DefaultRegistryConfig()
	cfg.SelfPreservationEnabled = false
	env := newRegistryEnv(cfg)

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 90*time.Second, domain.OriginLocal))

	env.clock.advance(80 * time.Second)
	require.NoError(t, env.registry.Renew("orders", "inst-1", domain.OriginLocal))

	// Without the renew the lease would have expired at +90s.
	env.clock.advance(15 * time.Second)
	assert.Empty(t, env.registry.EvictExpired(env.clock.now))
	assert.Len(t, env.registry.Snapshot(), 1)

	tasks := env.replicator.EnqueueCalls()
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.ActionRenew, tasks[1].Task.Action)
}

func TestRegistry_Renew_UnknownYieldsNotFound(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	tests := []struct {
		name       string
		appName    string
		instanceID string
	}{
		{name: "unknown app", appName: "orders", instanceID: "inst-1"},
		{name: "unknown instance", appName: "payments", instanceID: "missing"},
	}
	require.NoError(t, env.registry.Register(testInstance("payments", "inst-1"), 0, domain.OriginLocal))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.registry.Renew(tt.appName, tt.instanceID, domain.OriginLocal)
			require.Error(t, err)
			assert.True(t, IsEntityNotFoundError(err))
		})
	}
}

func TestRegistry_Renew_Replicated_NotReEnqueued(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	enqueued := len(env.replicator.EnqueueCalls())

	require.NoError(t, env.registry.Renew("orders", "inst-1", domain.OriginReplicated))
	assert.Len(t, env.replicator.EnqueueCalls(), enqueued)
}

func TestRegistry_StatusUpdate_Ok(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	before := env.registry.Snapshot()[0].LastDirtyTimestamp

	require.NoError(t, env.registry.StatusUpdate("orders", "inst-1", domain.StatusOutOfService, 0, domain.OriginLocal))

	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, domain.StatusOutOfService, snapshot[0].OverriddenStatus)
	assert.Greater(t, snapshot[0].LastDirtyTimestamp, before)

	tasks := env.replicator.EnqueueCalls()
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.ActionStatusUpdate, tasks[1].Task.Action)
	assert.Equal(t, domain.StatusOutOfService, tasks[1].Task.Status)
}

func TestRegistry_StatusUpdate_Validation(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())
	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))

	err := env.registry.StatusUpdate("orders", "inst-1", domain.Status("SLEEPING"), 0, domain.OriginLocal)
	require.Error(t, err)
	assert.True(t, IsBadParameterError(err))

	err = env.registry.StatusUpdate("orders", "missing", domain.StatusDown, 0, domain.OriginLocal)
	require.Error(t, err)
	assert.True(t, IsEntityNotFoundError(err))
}

func TestRegistry_StatusUpdate_Replicated_DropsStaleWrite(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	local := env.registry.Snapshot()[0].LastDirtyTimestamp

	require.NoError(t, env.registry.StatusUpdate("orders", "inst-1", domain.StatusDown, local-1, domain.OriginReplicated))
	assert.Equal(t, domain.Status(""), env.registry.Snapshot()[0].OverriddenStatus)

	require.NoError(t, env.registry.StatusUpdate("orders", "inst-1", domain.StatusDown, local+1, domain.OriginReplicated))
	snapshot := env.registry.Snapshot()
	assert.Equal(t, domain.StatusDown, snapshot[0].OverriddenStatus)
	assert.Equal(t, local+1, snapshot[0].LastDirtyTimestamp)
}

func TestRegistry_EvictExpired_RemovesExpiredLease(t *testing.T) {
	cfg := DefaultRegistryConfig()
	cfg.SelfPreservationEnabled = false
	env := newRegistryEnv(cfg)

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 90*time.Second, domain.OriginLocal))

	env.clock.advance(95 * time.Second)
	evicted := env.registry.EvictExpired(env.clock.now)

	require.Len(t, evicted, 1)
	assert.Equal(t, domain.InstanceKey{AppName: "ORDERS", InstanceID: "inst-1"}, evicted[0])
	assert.Empty(t, env.registry.Snapshot())

	// Evictions replicate as cancels.
	tasks := env.replicator.EnqueueCalls()
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.ActionCancel, tasks[1].Task.Action)
}

func TestRegistry_EvictExpired_SparesLiveLeases(t *testing.T) {
	cfg := DefaultRegistryConfig()
	cfg.SelfPreservationEnabled = false
	env := newRegistryEnv(cfg)

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 90*time.Second, domain.OriginLocal))
	require.NoError(t, env.registry.Register(testInstance("orders", "inst-2"), 90*time.Second, domain.OriginLocal))

	env.clock.advance(60 * time.Second)
	require.NoError(t, env.registry.Renew("orders", "inst-2", domain.OriginLocal))

	env.clock.advance(35 * time.Second)
	evicted := env.registry.EvictExpired(env.clock.now)

	require.Len(t, evicted, 1)
	assert.Equal(t, "inst-1", evicted[0].InstanceID)

	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "inst-2", snapshot[0].InstanceID)
}

func TestRegistry_EvictExpired_LimitsSweepSizeStalestFirst(t *testing.T) {
	cfg := DefaultRegistryConfig()
	cfg.SelfPreservationEnabled = false
	cfg.EvictionLimitFraction = 0.15
	env := newRegistryEnv(cfg)

	// Ten instances, all about to expire, with staggered last renewals so the
	// sweep order is observable.
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("inst-%d", i)
		require.NoError(t, env.registry.Register(testInstance("orders", id), 90*time.Second, domain.OriginLocal))
		env.clock.advance(time.Second)
		require.NoError(t, env.registry.Renew("orders", id, domain.OriginLocal))
	}

	env.clock.advance(120 * time.Second)
	evicted := env.registry.EvictExpired(env.clock.now)

	// ceil(10 * 0.15) = 2 per sweep, stalest first.
	require.Len(t, evicted, 2)
	assert.Equal(t, "inst-0", evicted[0].InstanceID)
	assert.Equal(t, "inst-1", evicted[1].InstanceID)
	assert.Len(t, env.registry.Snapshot(), 8)

	// Repeated sweeps drain the rest two at a time.
	evicted = env.registry.EvictExpired(env.clock.now)
	require.Len(t, evicted, 2)
	assert.Equal(t, "inst-2", evicted[0].InstanceID)
	assert.Equal(t, "inst-3", evicted[1].InstanceID)
}

func TestRegistry_EvictExpired_SelfPreservationBlocksEviction(t *testing.T) {
	cfg := DefaultRegistryConfig()
	cfg.RenewalInterval = 30 * time.Second
	cfg.RenewalThresholdFactor = 0.85
	env := newRegistryEnv(cfg)

	// 100 instances; expected renewal rate is 100 * 2 * 0.85 = 170 per minute.
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("inst-%d", i)
		require.NoError(t, env.registry.Register(testInstance("orders", id), 90*time.Second, domain.OriginLocal))
	}

	// Only 40 instances keep heartbeating: a partition cut off the rest.
	env.clock.advance(30 * time.Second)
	for i := 0; i < 40; i++ {
		require.NoError(t, env.registry.Renew("orders", fmt.Sprintf("inst-%d", i), domain.OriginLocal))
	}

	// 95s in: 60 leases are expired, but 40 renews/min << 170 expected, so
	// the sweep must treat this as a partition and evict nothing.
	env.clock.advance(65 * time.Second)
	assert.Empty(t, env.registry.EvictExpired(env.clock.now))
	assert.Len(t, env.registry.Snapshot(), 100)

	stats := env.registry.Stats()
	assert.True(t, stats.SelfPreservationActive)
	assert.Equal(t, int64(40), stats.ActualRenewsPerMin)
	assert.InDelta(t, 170, stats.ExpectedRenewsPerMin, 1e-9)
}

func TestRegistry_EvictExpired_GateDisabledStillCapsSweep(t *testing.T) {
	cfg := DefaultRegistryConfig()
	cfg.SelfPreservationEnabled = false
	env := newRegistryEnv(cfg)

	for i := 0; i < 100; i++ {
		require.NoError(t, env.registry.Register(testInstance("orders", fmt.Sprintf("inst-%d", i)), 90*time.Second, domain.OriginLocal))
	}

	env.clock.advance(95 * time.Second)
	evicted := env.registry.EvictExpired(env.clock.now)

	// ceil(100 * 0.15) = 15 even though all 100 are expired.
	assert.Len(t, evicted, 15)
	assert.Len(t, env.registry.Snapshot(), 85)
}

func TestRegistry_Stats(t *testing.T) {
	cfg := DefaultRegistryConfig()
	cfg.RenewalInterval = 30 * time.Second
	cfg.RenewalThresholdFactor = 0.85
	env := newRegistryEnv(cfg)

	require.NoError(t, env.registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal))
	require.NoError(t, env.registry.Register(testInstance("payments", "inst-2"), 0, domain.OriginLocal))

	stats := env.registry.Stats()
	assert.Equal(t, 2, stats.Leases)
	assert.InDelta(t, 2*2*0.85, stats.ExpectedRenewsPerMin, 1e-9)
}

func TestRegistry_RecordsMutationsInApplyOrder(t *testing.T) {
	registerRecording := make(chan struct{})
	releaseRegister := make(chan struct{})
	clock := newTestClock()
	replicator := &mock.ReplicatorMock{}
	sink := &mock.MutationSinkMock{
		RecordFunc: func(action domain.Action, instance domain.InstanceInfo) int64 {
			if action == domain.ActionRegister {
				close(registerRecording)
				<-releaseRegister
			}
			return 0
		},
	}
	registry := NewInstanceRegistry(DefaultRegistryConfig(), clock.provider(), replicator, sink, log.NewNopLogger())

	// The register applies its lease and then stalls inside the sink while a
	// cancel of the same key races it.
	registerDone := make(chan error, 1)
	go func() {
		registerDone <- registry.Register(testInstance("orders", "inst-1"), 0, domain.OriginLocal)
	}()
	<-registerRecording

	cancelDone := make(chan error, 1)
	go func() {
		cancelDone <- registry.Cancel("orders", "inst-1", domain.OriginLocal)
	}()

	// The cancel must not get its delta slot before the register has one.
	select {
	case <-cancelDone:
		t.Fatal("cancel was recorded while the register was still being recorded")
	case <-time.After(50 * time.Millisecond):
	}

	close(releaseRegister)
	require.NoError(t, <-registerDone)
	require.NoError(t, <-cancelDone)

	records := sink.RecordCalls()
	require.Len(t, records, 2)
	assert.Equal(t, domain.ActionRegister, records[0].Action)
	assert.Equal(t, domain.ActionCancel, records[1].Action)

	// Peer tasks keep the same per-key order.
	tasks := replicator.EnqueueCalls()
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.ActionRegister, tasks[0].Task.Action)
	assert.Equal(t, domain.ActionCancel, tasks[1].Task.Action)
	assert.Empty(t, registry.Snapshot())
}

func TestRegistry_Snapshot_IsDeepCopy(t *testing.T) {
	env := newRegistryEnv(DefaultRegistryConfig())

	inst := testInstance("orders", "inst-1")
	inst.Metadata = map[string]string{"zone": "a"}
	require.NoError(t, env.registry.Register(inst, 0, domain.OriginLocal))

	snapshot := env.registry.Snapshot()
	require.Len(t, snapshot, 1)
	snapshot[0].Metadata["zone"] = "b"

	assert.Equal(t, "a", env.registry.Snapshot()[0].Metadata["zone"])
}
