package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"myregistry/domain"
	"myregistry/interfaces"
	"myregistry/interfaces/mock"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchRecorder collects delivered batches behind a lock so tests can poll
// them from the worker goroutines.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]domain.ReplicationTask
}

func (r *batchRecorder) add(batch []domain.ReplicationTask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]domain.ReplicationTask, len(batch))
	copy(cp, batch)
	r.batches = append(r.batches, cp)
}

func (r *batchRecorder) snapshot() [][]domain.ReplicationTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]domain.ReplicationTask, len(r.batches))
	copy(out, r.batches)
	return out
}

func (r *batchRecorder) tasks() int {
	total := 0
	for _, b := range r.snapshot() {
		total += len(b)
	}
	return total
}

func recordingPeer(target string, rec *batchRecorder) *mock.PeerClientMock {
	return &mock.PeerClientMock{
		TargetFunc: func() string { return target },
		SubmitFunc: func(ctx context.Context, batch []domain.ReplicationTask) error {
			rec.add(batch)
			return nil
		},
	}
}

func renewTask(instanceID string) domain.ReplicationTask {
	return domain.ReplicationTask{
		Action:     domain.ActionRenew,
		AppName:    "ORDERS",
		InstanceID: instanceID,
	}
}

func TestReplicationBatcher_FlushesOnBatchSize(t *testing.T) {
	rec := &batchRecorder{}
	cfg := DefaultReplicationConfig()
	cfg.BatchSize = 2
	cfg.BatchWindow = time.Hour

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{recordingPeer("peer-a", rec)}, log.NewNopLogger())
	defer b.Shutdown(context.Background())

	b.Enqueue(renewTask("inst-1"))
	b.Enqueue(renewTask("inst-2"))

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, time.Millisecond)

	batch := rec.snapshot()[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "inst-1", batch[0].InstanceID)
	assert.Equal(t, "inst-2", batch[1].InstanceID)
}

func TestReplicationBatcher_FlushesOnWindow(t *testing.T) {
	rec := &batchRecorder{}
	cfg := DefaultReplicationConfig()
	cfg.BatchSize = 1000
	cfg.BatchWindow = 10 * time.Millisecond

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{recordingPeer("peer-a", rec)}, log.NewNopLogger())
	defer b.Shutdown(context.Background())

	b.Enqueue(renewTask("inst-1"))

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, time.Millisecond)
	assert.Len(t, rec.snapshot()[0], 1)
}

func TestReplicationBatcher_FansOutToAllPeers(t *testing.T) {
	recA := &batchRecorder{}
	recB := &batchRecorder{}
	cfg := DefaultReplicationConfig()
	cfg.BatchWindow = 10 * time.Millisecond

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{
		recordingPeer("peer-a", recA),
		recordingPeer("peer-b", recB),
	}, log.NewNopLogger())
	defer b.Shutdown(context.Background())

	b.Enqueue(renewTask("inst-1"))

	require.Eventually(t, func() bool {
		return recA.tasks() == 1 && recB.tasks() == 1
	}, time.Second, time.Millisecond)
}

func TestReplicationBatcher_RetriesFailedDelivery(t *testing.T) {
	rec := &batchRecorder{}
	var attempts int
	var mu sync.Mutex
	peer := &mock.PeerClientMock{
		TargetFunc: func() string { return "peer-a" },
		SubmitFunc: func(ctx context.Context, batch []domain.ReplicationTask) error {
			mu.Lock()
			attempts++
			n := attempts
			mu.Unlock()
			if n < 3 {
				return errors.New("connection refused")
			}
			rec.add(batch)
			return nil
		},
	}

	cfg := DefaultReplicationConfig()
	cfg.BatchWindow = 10 * time.Millisecond
	cfg.RetryAttempts = 3
	cfg.RetryInitialBackoff = time.Millisecond
	cfg.RetryMaxBackoff = 5 * time.Millisecond

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{peer}, log.NewNopLogger())
	defer b.Shutdown(context.Background())

	b.Enqueue(renewTask("inst-1"))

	require.Eventually(t, func() bool {
		return rec.tasks() == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestReplicationBatcher_DropsBatchAfterRetryExhaustion(t *testing.T) {
	var attempts int
	var mu sync.Mutex
	rec := &batchRecorder{}
	peer := &mock.PeerClientMock{
		TargetFunc: func() string { return "peer-a" },
		SubmitFunc: func(ctx context.Context, batch []domain.ReplicationTask) error {
			mu.Lock()
			attempts++
			n := attempts
			mu.Unlock()
			if n <= 2 {
				return errors.New("connection refused")
			}
			rec.add(batch)
			return nil
		},
	}

	cfg := DefaultReplicationConfig()
	cfg.BatchWindow = 10 * time.Millisecond
	cfg.RetryAttempts = 2
	cfg.RetryInitialBackoff = time.Millisecond
	cfg.RetryMaxBackoff = 5 * time.Millisecond

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{peer}, log.NewNopLogger())
	defer b.Shutdown(context.Background())

	// First task burns both attempts and is dropped; the batcher must keep
	// delivering later tasks.
	b.Enqueue(renewTask("dropped"))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, time.Second, time.Millisecond)

	b.Enqueue(renewTask("delivered"))
	require.Eventually(t, func() bool {
		return rec.tasks() == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, "delivered", rec.snapshot()[0][0].InstanceID)
}

func TestReplicationBatcher_DropsWhenQueueFull(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	rec := &batchRecorder{}
	var once sync.Once
	peer := &mock.PeerClientMock{
		TargetFunc: func() string { return "peer-a" },
		SubmitFunc: func(ctx context.Context, batch []domain.ReplicationTask) error {
			once.Do(func() { close(entered) })
			<-release
			rec.add(batch)
			return nil
		},
	}

	cfg := DefaultReplicationConfig()
	cfg.BatchSize = 1
	cfg.QueueDepth = 1
	cfg.RetryAttempts = 1

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{peer}, log.NewNopLogger())

	// First task is picked up and blocks in delivery.
	b.Enqueue(renewTask("inst-1"))
	<-entered

	// Second fills the queue, third has nowhere to go and is dropped.
	b.Enqueue(renewTask("inst-2"))
	b.Enqueue(renewTask("inst-3"))

	close(release)
	require.NoError(t, b.Shutdown(context.Background()))

	assert.Equal(t, 2, rec.tasks())
}

func TestReplicationBatcher_ShutdownFlushesPending(t *testing.T) {
	rec := &batchRecorder{}
	cfg := DefaultReplicationConfig()
	cfg.BatchSize = 1000
	cfg.BatchWindow = time.Hour

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{recordingPeer("peer-a", rec)}, log.NewNopLogger())

	b.Enqueue(renewTask("inst-1"))
	b.Enqueue(renewTask("inst-2"))
	b.Enqueue(renewTask("inst-3"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Shutdown(ctx))

	assert.Equal(t, 3, rec.tasks())
}

func TestReplicationBatcher_ShutdownHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	peer := &mock.PeerClientMock{
		TargetFunc: func() string { return "peer-a" },
		SubmitFunc: func(ctx context.Context, batch []domain.ReplicationTask) error {
			<-release
			return nil
		},
	}

	cfg := DefaultReplicationConfig()
	cfg.BatchSize = 1
	cfg.RetryAttempts = 1

	b := NewReplicationBatcher(cfg, []interfaces.PeerClient{peer}, log.NewNopLogger())
	b.Enqueue(renewTask("inst-1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Shutdown(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestReplicationBatcher_EnqueueAfterShutdownIsNoop(t *testing.T) {
	b := NewReplicationBatcher(DefaultReplicationConfig(), nil, log.NewNopLogger())
	require.NoError(t, b.Shutdown(context.Background()))
	b.Enqueue(renewTask("inst-1"))
	require.NoError(t, b.Shutdown(context.Background()))
}
