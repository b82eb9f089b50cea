package service

import (
	"time"

	"myregistry/interfaces"
)

// timeProvider implements interfaces.TimeProvider via the injected now func.
// Built in cmd/main with time.Now().UTC; tests inject a fixed or stepped clock.
type timeProvider struct {
	now func() time.Time
}

// NewTimeProvider creates a TimeProvider that returns time via the given now
// func. Panics on nil now.
func NewTimeProvider(now func() time.Time) interfaces.TimeProvider {
	if now == nil {
		panic("service.time_provider.go: now is required")
	}
	return &timeProvider{now: now}
}

// Now returns the current time from the injected function.
func (t *timeProvider) Now() time.Time {
	return t.now()
}
