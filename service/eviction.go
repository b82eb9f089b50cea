package service

import (
	"sync"
	"sync/atomic"
	"time"

	"myregistry/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// EvictionScheduler drives the periodic lease-expiry sweep. One ticker,
// independent of individual lease durations; a slow sweep never queues a
// catch-up tick — if the previous sweep is still running the tick is skipped
// (evictions are advisory cleanup, not a deadline).
type EvictionScheduler struct {
	registry     interfaces.Registry
	timeProvider interfaces.TimeProvider
	interval     time.Duration
	logger       log.Logger

	inFlight atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewEvictionScheduler creates the scheduler without starting it. Panics on
// nil dependencies or non-positive interval.
func NewEvictionScheduler(registry interfaces.Registry, timeProvider interfaces.TimeProvider, interval time.Duration, logger log.Logger) *EvictionScheduler {
	if registry == nil {
		panic("service.eviction.go: registry is required")
	}
	if timeProvider == nil {
		panic("service.eviction.go: time provider is required")
	}
	if interval <= 0 {
		panic("service.eviction.go: interval must be positive")
	}
	if logger == nil {
		panic("service.eviction.go: logger is required")
	}
	return &EvictionScheduler{
		registry:     registry,
		timeProvider: timeProvider,
		interval:     interval,
		logger:       log.WithPrefix(logger, "component", "eviction_scheduler"),
		stopCh:       make(chan struct{}),
	}
}

// Start launches the sweep loop in a goroutine.
func (s *EvictionScheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop signals the loop to exit and waits for the in-flight sweep to finish.
func (s *EvictionScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *EvictionScheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			// Sweeps run off the tick loop so a slow sweep delays nothing;
			// the inFlight guard keeps at most one running.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.sweep()
			}()
		}
	}
}

// sweep runs one eviction pass unless the previous one is still in flight.
func (s *EvictionScheduler) sweep() {
	if !s.inFlight.CompareAndSwap(false, true) {
		level.Warn(s.logger).Log("msg", "previous eviction sweep still running, skipping tick")
		return
	}
	defer s.inFlight.Store(false)

	evicted := s.registry.EvictExpired(s.timeProvider.Now())
	if len(evicted) > 0 {
		level.Info(s.logger).Log("msg", "eviction sweep finished", "evicted", len(evicted))
	}
}
