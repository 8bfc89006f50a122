package service

import (
	"context"
	"fmt"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/rs/zerolog"
)

// DeviceService performs trust-changing and OS-level device operations.
//
// Whitelist changes only touch the trust record; Enable and Disable only
// touch the OS. The two are never coupled.
type DeviceService struct {
	exec      executor.Executor
	whitelist *WhitelistService
	audit     *AuditLog
	logger    zerolog.Logger
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(exec executor.Executor, whitelist *WhitelistService, audit *AuditLog, logger zerolog.Logger) *DeviceService {
	return &DeviceService{exec: exec, whitelist: whitelist, audit: audit, logger: logger}
}

// AuthorizeDevice trusts a device. It does not touch the OS.
func (s *DeviceService) AuthorizeDevice(ctx context.Context, req domain.AuthorizeDeviceRequest) (domain.Outcome, error) {
	return s.whitelist.Authorize(ctx, domain.Device{
		InstanceID:   req.InstanceID,
		FriendlyName: req.FriendlyName,
		DeviceClass:  req.DeviceClass,
		Status:       req.Status,
	})
}

// RevokeDevice removes a device from the whitelist. It does not disable it.
func (s *DeviceService) RevokeDevice(ctx context.Context, instanceID string) (domain.Outcome, error) {
	return s.whitelist.Revoke(ctx, instanceID)
}

// EnableDevice enables a device at the driver level.
func (s *DeviceService) EnableDevice(ctx context.Context, instanceID string) (domain.Outcome, error) {
	_, err := s.exec.Execute(ctx, executor.EnableDevice(instanceID))
	observe("enable_device", true, err)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("enabling device %s: %w", instanceID, err)
	}

	s.logger.Info().Str("instance_id", instanceID).Msg("device enabled")
	out := domain.Outcome{Changed: true}
	s.audit.record(ctx, &out, domain.LevelInfo, "Device enabled: "+instanceID, instanceID)
	return out, nil
}

// DisableDevice disables a device at the driver level, whatever its
// whitelist state.
func (s *DeviceService) DisableDevice(ctx context.Context, instanceID string) (domain.Outcome, error) {
	_, err := s.exec.Execute(ctx, executor.DisableDevice(instanceID))
	observe("disable_device", true, err)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("disabling device %s: %w", instanceID, err)
	}

	s.logger.Warn().Str("instance_id", instanceID).Msg("device blocked")
	out := domain.Outcome{Changed: true}
	s.audit.record(ctx, &out, domain.LevelBlock, "Device blocked: "+instanceID, instanceID)
	return out, nil
}
