package interfaces

import "time"

// TimeProvider supplies the current time for lease bookkeeping, eviction
// sweeps and renewal-rate buckets. Injected so tests can drive a fixed or
// stepped clock instead of time.Now().
//
// Constructed in cmd/main as service.NewTimeProvider(time.Now().UTC).
//
//go:generate moq -stub -out mock/time_provider.go -pkg mock . TimeProvider
type TimeProvider interface {
	// Now returns the current time (UTC in prod; fixed in tests).
	Now() time.Time
}
