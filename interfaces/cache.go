package interfaces

import "myregistry/domain"

// ResponseCache serves read-optimized registry snapshots to discovery
// clients so read traffic never contends with the mutation path.
//
// Implemented by service.ResponseCache. Called from handlers.HTTPServer.
//
//go:generate moq -stub -out mock/cache.go -pkg mock . ResponseCache MutationSink
type ResponseCache interface {
	// Full returns the serialized snapshot of the whole registry (appName
	// empty) or of one application, plus the cache version it was built at.
	// Returns:
	// 1) (payload, version, nil) on success;
	// 2) (nil, 0, entity_not_found) when appName is set and unknown;
	// 3) (nil, 0, internal_server_error) when building the payload fails.
	Full(appName string) ([]byte, int64, error)

	// Delta returns the mutations applied after sinceVersion, in local apply
	// order, plus the current version.
	// Returns:
	// 1) (mutations, version, nil) when sinceVersion is within the retained
	//    window (mutations may be empty when the client is up to date);
	// 2) (nil, version, full_resync_required) when sinceVersion predates the
	//    oldest retained delta — the client must fall back to Full.
	Delta(sinceVersion int64) ([]domain.Mutation, int64, error)

	// Version returns the current cache version without building anything.
	Version() int64
}

// MutationSink receives every mutation the registry applies, in apply order.
// The response cache implements it to maintain the delta window and mark the
// full payloads dirty.
type MutationSink interface {
	// Record appends one applied mutation and returns the version assigned
	// to it.
	Record(action domain.Action, instance domain.InstanceInfo) int64
}
