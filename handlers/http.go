// Package handlers contains the http handlers for myregistry: client-facing
// registration/heartbeat/discovery calls and the peer replication endpoint.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"myregistry/domain"
	"myregistry/interfaces"
	"myregistry/service"

	"github.com/go-kit/log"
	"github.com/labstack/echo/v4"
)

// HTTPServer exposes the registry core over HTTP.
type HTTPServer struct {
	registry interfaces.Registry
	cache    interfaces.ResponseCache
	logger   log.Logger
}

// NewHTTPServer creates a new HTTPServer.
func NewHTTPServer(registry interfaces.Registry, cache interfaces.ResponseCache, logger log.Logger) *HTTPServer {
	logger = log.WithPrefix(logger, "component", "HTTPServer")
	return &HTTPServer{
		registry: registry,
		cache:    cache,
		logger:   logger,
	}
}

// RegisterHandlers wires the registry routes onto the echo server.
func RegisterHandlers(e *echo.Echo, h *HTTPServer) {
	e.POST("/v1/apps/:app_name", h.RegisterInstance)
	e.PUT("/v1/apps/:app_name/:instance_id", h.RenewLease)
	e.DELETE("/v1/apps/:app_name/:instance_id", h.CancelLease)
	e.PUT("/v1/apps/:app_name/:instance_id/status", h.UpdateStatus)
	e.GET("/v1/apps", h.GetApps)
	e.GET("/v1/apps/delta", h.GetDelta)
	e.GET("/v1/apps/:app_name", h.GetApp)
	e.POST("/v1/replication/batch", h.ApplyReplicationBatch)
	e.GET("/v1/status", h.GetNodeStatus)
}

// RegisterInstance (POST /v1/apps/{app_name}) creates or replaces the lease
// for the instance in the body. Returns 204 on success, 400 on parse or
// validation error.
func (h *HTTPServer) RegisterInstance(ectx echo.Context) error {
	var req RegisterRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}

	instance, leaseDuration, err := fromRegisterRequest(ectx.Param("app_name"), req)
	if err != nil {
		return fmt.Errorf("registerInstance failed to convert request to instance, err: %w", err)
	}

	if err := h.registry.Register(instance, leaseDuration, domain.OriginLocal); err != nil {
		return fmt.Errorf("registerInstance failed to register instance, err: %w", err)
	}

	return ectx.NoContent(http.StatusNoContent)
}

// RenewLease (PUT /v1/apps/{app_name}/{instance_id}) refreshes the lease.
// Returns 200 on success, 404 when the lease is unknown — the client must
// re-register from scratch.
func (h *HTTPServer) RenewLease(ectx echo.Context) error {
	err := h.registry.Renew(ectx.Param("app_name"), ectx.Param("instance_id"), domain.OriginLocal)
	if err != nil {
		return fmt.Errorf("renewLease failed to renew lease, err: %w", err)
	}

	return ectx.NoContent(http.StatusOK)
}

// CancelLease (DELETE /v1/apps/{app_name}/{instance_id}) removes the lease
// immediately. Returns 200 on success, 404 when unknown.
func (h *HTTPServer) CancelLease(ectx echo.Context) error {
	err := h.registry.Cancel(ectx.Param("app_name"), ectx.Param("instance_id"), domain.OriginLocal)
	if err != nil {
		return fmt.Errorf("cancelLease failed to cancel lease, err: %w", err)
	}

	return ectx.NoContent(http.StatusOK)
}

// UpdateStatus (PUT /v1/apps/{app_name}/{instance_id}/status) sets the
// operator status override. Returns 200 on success, 404 when unknown.
func (h *HTTPServer) UpdateStatus(ectx echo.Context) error {
	var req StatusUpdateRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}

	status, err := fromStatusUpdateRequest(req)
	if err != nil {
		return fmt.Errorf("updateStatus failed to convert request, err: %w", err)
	}

	if err := h.registry.StatusUpdate(ectx.Param("app_name"), ectx.Param("instance_id"), status, 0, domain.OriginLocal); err != nil {
		return fmt.Errorf("updateStatus failed to update status, err: %w", err)
	}

	return ectx.NoContent(http.StatusOK)
}

// GetApps (GET /v1/apps) serves the full snapshot from the response cache.
func (h *HTTPServer) GetApps(ectx echo.Context) error {
	payload, _, err := h.cache.Full("")
	if err != nil {
		return fmt.Errorf("getApps failed to read snapshot from cache, err: %w", err)
	}

	return ectx.JSONBlob(http.StatusOK, payload)
}

// GetApp (GET /v1/apps/{app_name}) serves one application's snapshot from
// the response cache. Returns 404 for an unknown application.
func (h *HTTPServer) GetApp(ectx echo.Context) error {
	payload, _, err := h.cache.Full(ectx.Param("app_name"))
	if err != nil {
		return fmt.Errorf("getApp failed to read snapshot from cache, err: %w", err)
	}

	return ectx.JSONBlob(http.StatusOK, payload)
}

// GetDelta (GET /v1/apps/delta?since_version=V) serves the mutations applied
// after the client's version. Returns 410 full_resync_required when V fell
// out of the retained window; the client then falls back to GetApps.
func (h *HTTPServer) GetDelta(ectx echo.Context) error {
	raw := ectx.QueryParam("since_version")
	since, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || since < 0 {
		return service.NewBadParameterError("since_version must be a non-negative integer", err)
	}

	mutations, version, err := h.cache.Delta(since)
	if err != nil {
		return fmt.Errorf("getDelta failed to read delta from cache, err: %w", err)
	}

	return ectx.JSON(http.StatusOK, toDeltaResponse(mutations, version))
}

// ApplyReplicationBatch (POST /v1/replication/batch) applies mutations
// relayed by a peer registry node. Tasks are applied with OriginReplicated
// so they are never re-enqueued for further replication. The response
// carries a per-task status; the batch itself is always 200 once parsed.
func (h *HTTPServer) ApplyReplicationBatch(ectx echo.Context) error {
	var req ReplicationBatchRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}

	results := make([]ReplicationTaskResult, 0, len(req.Tasks))
	for _, task := range req.Tasks {
		results = append(results, toTaskResult(task, h.applyTask(task)))
	}

	return ectx.JSON(http.StatusOK, ReplicationBatchResponse{Results: results})
}

// applyTask applies one replicated mutation to the local registry.
func (h *HTTPServer) applyTask(task domain.ReplicationTask) error {
	switch task.Action {
	case domain.ActionRegister:
		if task.Instance == nil {
			return service.NewBadParameterError("register task requires an instance", nil)
		}
		return h.registry.Register(*task.Instance, time.Duration(task.LeaseDurationMs)*time.Millisecond, domain.OriginReplicated)
	case domain.ActionRenew:
		return h.registry.Renew(task.AppName, task.InstanceID, domain.OriginReplicated)
	case domain.ActionCancel:
		return h.registry.Cancel(task.AppName, task.InstanceID, domain.OriginReplicated)
	case domain.ActionStatusUpdate:
		return h.registry.StatusUpdate(task.AppName, task.InstanceID, task.Status, task.OriginTimestamp, domain.OriginReplicated)
	default:
		return service.NewBadParameterError(fmt.Sprintf("unknown action %q", task.Action), nil)
	}
}

// GetNodeStatus (GET /v1/status) reports lease count, renewal rates, the
// self-preservation flag and the current cache version.
func (h *HTTPServer) GetNodeStatus(ectx echo.Context) error {
	return ectx.JSON(http.StatusOK, toNodeStatusResponse(h.registry.Stats(), h.cache.Version()))
}
