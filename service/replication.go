package service

import (
	"context"
	"sync"
	"time"

	"myregistry/domain"
	"myregistry/interfaces"

	"github.com/flowchartsman/retry"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/time/rate"
)

// ReplicationConfig carries the peer-propagation knobs.
type ReplicationConfig struct {
	// BatchSize flushes a peer queue once this many tasks are pending.
	BatchSize int
	// BatchWindow flushes whatever is pending once this much time passed
	// since the first task of the batch arrived.
	BatchWindow time.Duration
	// QueueDepth bounds the per-peer backlog; beyond it new tasks are
	// dropped (the peer self-heals via client re-registration).
	QueueDepth int
	// RetryAttempts, RetryInitialBackoff and RetryMaxBackoff drive the
	// bounded exponential backoff per batch delivery.
	RetryAttempts       int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	// AttemptTimeout bounds one delivery attempt to one peer.
	AttemptTimeout time.Duration
	// RateLimit and RateBurst cap outbound batch calls per peer.
	RateLimit float64
	RateBurst int
}

// DefaultReplicationConfig returns the production defaults.
func DefaultReplicationConfig() ReplicationConfig {
	return ReplicationConfig{
		BatchSize:           250,
		BatchWindow:         500 * time.Millisecond,
		QueueDepth:          10000,
		RetryAttempts:       3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Second,
		AttemptTimeout:      5 * time.Second,
		RateLimit:           50,
		RateBurst:           10,
	}
}

// peerWorker is the queue and pacing state for one peer.
type peerWorker struct {
	client  interfaces.PeerClient
	queue   chan domain.ReplicationTask
	limiter *rate.Limiter
}

// ReplicationBatcher implements interfaces.Replicator. One goroutine per
// peer drains that peer's queue, batching tasks by size or window and
// delivering with bounded retry. Delivery failures are logged and dropped —
// they never reach the caller that performed the local mutation, and local
// state is never rolled back.
type ReplicationBatcher struct {
	cfg    ReplicationConfig
	logger log.Logger

	mu     sync.RWMutex
	closed bool
	peers  []*peerWorker
	wg     sync.WaitGroup
}

// NewReplicationBatcher creates the batcher and starts one delivery worker
// per peer. An empty peer list is valid (single-node deployment): Enqueue
// becomes a no-op. Panics on nil logger.
func NewReplicationBatcher(cfg ReplicationConfig, peers []interfaces.PeerClient, logger log.Logger) *ReplicationBatcher {
	if logger == nil {
		panic("service.replication.go: logger is required")
	}
	def := DefaultReplicationConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.BatchWindow <= 0 {
		cfg.BatchWindow = def.BatchWindow
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = def.QueueDepth
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = def.RetryAttempts
	}
	if cfg.RetryInitialBackoff <= 0 {
		cfg.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if cfg.RetryMaxBackoff <= 0 {
		cfg.RetryMaxBackoff = def.RetryMaxBackoff
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = def.RateBurst
	}

	b := &ReplicationBatcher{
		cfg:    cfg,
		logger: log.WithPrefix(logger, "component", "replication_batcher"),
	}
	for _, client := range peers {
		w := &peerWorker{
			client:  client,
			queue:   make(chan domain.ReplicationTask, cfg.QueueDepth),
			limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		}
		b.peers = append(b.peers, w)
		b.wg.Add(1)
		go b.runWorker(w)
	}
	return b
}

// Enqueue hands one task to every peer queue. Never blocks: a full queue
// drops the task with a log line and the peer converges later.
func (b *ReplicationBatcher) Enqueue(task domain.ReplicationTask) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, w := range b.peers {
		select {
		case w.queue <- task:
		default:
			level.Warn(b.logger).Log(
				"msg", "peer queue full, dropping replication task",
				"peer", w.client.Target(),
				"action", task.Action,
				"app_name", task.AppName,
				"instance_id", task.InstanceID,
			)
		}
	}
}

// Shutdown stops accepting tasks, lets workers flush what is already queued
// and waits for them up to the ctx deadline.
func (b *ReplicationBatcher) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, w := range b.peers {
		close(w.queue)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runWorker drains one peer queue, flushing by size or window.
func (b *ReplicationBatcher) runWorker(w *peerWorker) {
	defer b.wg.Done()

	timer := time.NewTimer(b.cfg.BatchWindow)
	if !timer.Stop() {
		<-timer.C
	}
	batch := make([]domain.ReplicationTask, 0, b.cfg.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.deliver(w, batch)
		batch = batch[:0]
	}

	for {
		select {
		case task, ok := <-w.queue:
			if !ok {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				flush()
				return
			}
			if len(batch) == 0 {
				timer.Reset(b.cfg.BatchWindow)
			}
			batch = append(batch, task)
			if len(batch) >= b.cfg.BatchSize {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				flush()
			}
		case <-timer.C:
			flush()
		}
	}
}

// deliver posts one batch with rate limiting and bounded exponential
// backoff. After the attempt cap the batch is dropped: the peer is presumed
// to self-heal via its own registry clients re-registering.
func (b *ReplicationBatcher) deliver(w *peerWorker, batch []domain.ReplicationTask) {
	if err := w.limiter.Wait(context.Background()); err != nil {
		return
	}

	tasks := make([]domain.ReplicationTask, len(batch))
	copy(tasks, batch)

	retrier := retry.NewRetrier(b.cfg.RetryAttempts, b.cfg.RetryInitialBackoff, b.cfg.RetryMaxBackoff)
	err := retrier.Run(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.AttemptTimeout)
		defer cancel()
		return w.client.Submit(ctx, tasks)
	})
	if err != nil {
		level.Warn(b.logger).Log(
			"msg", "replication delivery failed, dropping batch",
			"peer", w.client.Target(),
			"tasks", len(tasks),
			"err", err,
		)
		return
	}
	level.Debug(b.logger).Log(
		"msg", "replicated batch",
		"peer", w.client.Target(),
		"tasks", len(tasks),
	)
}
