package handlers

import "myregistry/domain"

// RegisterRequest is the body of POST /v1/apps/{app_name}.
type RegisterRequest struct {
	InstanceId     string            `json:"instance_id"`
	HostName       string            `json:"host_name"`
	IpAddr         string            `json:"ip_addr"`
	Port           int               `json:"port"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	LeaseDurationS int               `json:"lease_duration_s,omitempty"`
}

// StatusUpdateRequest is the body of PUT /v1/apps/{app_name}/{instance_id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// ReplicationBatchRequest is the body of POST /v1/replication/batch, sent by
// peer registry nodes. The task shape matches what adapters.PeerHTTP emits.
type ReplicationBatchRequest struct {
	Tasks []domain.ReplicationTask `json:"tasks"`
}

// ReplicationTaskResult reports the outcome of one task in a batch.
type ReplicationTaskResult struct {
	Action     string `json:"action"`
	AppName    string `json:"app_name"`
	InstanceId string `json:"instance_id"`
	StatusCode int    `json:"status_code"`
}

// ReplicationBatchResponse is the per-task outcome envelope.
type ReplicationBatchResponse struct {
	Results []ReplicationTaskResult `json:"results"`
}

// DeltaResponse carries the mutations applied after the client's version.
type DeltaResponse struct {
	Version   int64             `json:"version"`
	Mutations []domain.Mutation `json:"mutations"`
}

// NodeStatusResponse is the body of GET /v1/status.
type NodeStatusResponse struct {
	Leases                 int     `json:"leases"`
	ExpectedRenewsPerMin   float64 `json:"expected_renews_per_min"`
	ActualRenewsPerMin     int64   `json:"actual_renews_per_min"`
	SelfPreservationActive bool    `json:"self_preservation_active"`
	CacheVersion           int64   `json:"cache_version"`
}
