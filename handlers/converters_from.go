package handlers

import (
	"time"

	"myregistry/domain"
	"myregistry/service"
)

// fromRegisterRequest converts RegisterRequest to domain.InstanceInfo plus
// the requested lease duration. Returns service.BadParameterError on
// validation failure. An omitted status defaults to UP (the common case of a
// client registering once it is ready); an omitted lease duration falls back
// to the registry default.
func fromRegisterRequest(appName string, req RegisterRequest) (domain.InstanceInfo, time.Duration, error) {
	if appName == "" {
		return domain.InstanceInfo{}, 0, service.NewBadParameterError("app_name is required", nil)
	}
	if req.InstanceId == "" {
		return domain.InstanceInfo{}, 0, service.NewBadParameterError("instance_id is required", nil)
	}
	if req.IpAddr == "" {
		return domain.InstanceInfo{}, 0, service.NewBadParameterError("ip_addr is required", nil)
	}
	if req.Port <= 0 || req.Port > 65535 {
		return domain.InstanceInfo{}, 0, service.NewBadParameterError("port must be between 1 and 65535", nil)
	}
	status := domain.Status(req.Status)
	if req.Status == "" {
		status = domain.StatusUp
	}
	if !domain.ValidStatus(status) {
		return domain.InstanceInfo{}, 0, service.NewBadParameterError("unknown status", nil)
	}
	if req.LeaseDurationS < 0 {
		return domain.InstanceInfo{}, 0, service.NewBadParameterError("lease_duration_s must not be negative", nil)
	}

	return domain.InstanceInfo{
		AppName:    appName,
		InstanceID: req.InstanceId,
		HostName:   req.HostName,
		IPAddr:     req.IpAddr,
		Port:       req.Port,
		Status:     status,
		Metadata:   req.Metadata,
	}, time.Duration(req.LeaseDurationS) * time.Second, nil
}

// fromStatusUpdateRequest validates the requested override status.
func fromStatusUpdateRequest(req StatusUpdateRequest) (domain.Status, error) {
	status := domain.Status(req.Status)
	if !domain.ValidStatus(status) {
		return "", service.NewBadParameterError("unknown status", nil)
	}
	return status, nil
}
