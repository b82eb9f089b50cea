package service

import (
	"sync"
	"time"
)

// renewalMonitor tracks how many lease renewals arrived in the last whole
// minute. The eviction sweep compares that rate against the expected rate; a
// mass heartbeat loss (likely a network partition, not a mass outage) drops
// the observed rate below the threshold and suspends eviction entirely
// rather than emptying the registry.
//
// Buckets roll lazily on access from the caller-supplied clock, so tests can
// drive time deterministically without a background goroutine.
type renewalMonitor struct {
	renewalInterval time.Duration
	thresholdFactor float64

	mu          sync.Mutex
	windowStart time.Time
	current     int64
	previous    int64
}

func newRenewalMonitor(renewalInterval time.Duration, thresholdFactor float64, now time.Time) *renewalMonitor {
	return &renewalMonitor{
		renewalInterval: renewalInterval,
		thresholdFactor: thresholdFactor,
		windowStart:     now,
	}
}

// Increment counts one observed renewal.
func (m *renewalMonitor) Increment(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roll(now)
	m.current++
}

// ActualPerMin returns the renewals counted in the previous full minute.
func (m *renewalMonitor) ActualPerMin(now time.Time) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roll(now)
	return m.previous
}

// ExpectedPerMin returns the renewal rate the gate demands for the given
// number of live leases: leases * (60 / renewalInterval) * thresholdFactor.
func (m *renewalMonitor) ExpectedPerMin(leases int) float64 {
	perLease := float64(time.Minute) / float64(m.renewalInterval)
	return float64(leases) * perLease * m.thresholdFactor
}

// GateActive reports whether self-preservation is suppressing eviction:
// the observed renewal rate fell below the expected one.
func (m *renewalMonitor) GateActive(leases int, now time.Time) bool {
	return float64(m.ActualPerMin(now)) < m.ExpectedPerMin(leases)
}

// roll advances the minute buckets for the time elapsed since windowStart.
// Callers hold m.mu.
func (m *renewalMonitor) roll(now time.Time) {
	elapsed := now.Sub(m.windowStart)
	if elapsed < time.Minute {
		return
	}
	if elapsed < 2*time.Minute {
		m.previous = m.current
	} else {
		// More than one idle minute: the previous full minute saw nothing.
		m.previous = 0
	}
	m.current = 0
	m.windowStart = m.windowStart.Add(elapsed.Truncate(time.Minute))
}
