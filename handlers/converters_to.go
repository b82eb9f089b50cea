package handlers

import (
	"net/http"

	"myregistry/domain"
	"myregistry/service"
)

// toDeltaResponse converts cache mutations to the API delta envelope.
func toDeltaResponse(mutations []domain.Mutation, version int64) DeltaResponse {
	if mutations == nil {
		mutations = []domain.Mutation{}
	}
	return DeltaResponse{
		Version:   version,
		Mutations: mutations,
	}
}

// toNodeStatusResponse converts registry stats plus the cache version to the
// API status body.
func toNodeStatusResponse(stats domain.RegistryStats, cacheVersion int64) NodeStatusResponse {
	return NodeStatusResponse{
		Leases:                 stats.Leases,
		ExpectedRenewsPerMin:   stats.ExpectedRenewsPerMin,
		ActualRenewsPerMin:     stats.ActualRenewsPerMin,
		SelfPreservationActive: stats.SelfPreservationActive,
		CacheVersion:           cacheVersion,
	}
}

// toTaskResult maps the outcome of applying one replicated task to a
// per-task status code. entity_not_found maps to 404 (the sending peer
// treats it as converged — the instance is gone on both sides or will
// re-register); bad_parameter to 400; anything else unexpected to 500.
func toTaskResult(task domain.ReplicationTask, err error) ReplicationTaskResult {
	code := http.StatusOK
	switch {
	case err == nil:
	case service.IsEntityNotFoundError(err):
		code = http.StatusNotFound
	case service.IsBadParameterError(err):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}
	return ReplicationTaskResult{
		Action:     string(task.Action),
		AppName:    task.AppName,
		InstanceId: task.InstanceID,
		StatusCode: code,
	}
}
