package service

import (
	"context"
	"fmt"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/bcnelson/sentinelguard/internal/normalize"
	"github.com/rs/zerolog"
)

// InventoryService resolves connected devices against the whitelist.
type InventoryService struct {
	exec      executor.Executor
	whitelist *WhitelistService
	logger    zerolog.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(exec executor.Executor, whitelist *WhitelistService, logger zerolog.Logger) *InventoryService {
	return &InventoryService{exec: exec, whitelist: whitelist, logger: logger}
}

// ListDevices enumerates connected USB devices in OS order.
// Records without a string instance_id are dropped; cosmetic fields fall
// back to defaults. If the whitelist cannot be read every device is
// reported untrusted.
func (s *InventoryService) ListDevices(ctx context.Context) ([]domain.Device, error) {
	raw, err := s.exec.Execute(ctx, executor.ListUSBDevices())
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	records, err := normalize.Records(raw)
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	trusted, err := s.whitelist.Snapshot(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("whitelist unavailable, reporting all devices as untrusted")
		trusted = nil
	}

	devices := make([]domain.Device, 0, len(records))
	for _, rec := range records {
		id, ok := rec.Text("instance_id")
		if !ok || id == "" {
			continue
		}

		_, isTrusted := trusted[id]
		devices = append(devices, domain.Device{
			InstanceID:   id,
			FriendlyName: rec.StringOr("friendly_name", domain.DefaultFriendlyName),
			DeviceClass:  rec.StringOr("device_class", domain.DefaultDeviceClass),
			Status:       rec.StringOr("status", domain.DefaultDeviceStatus),
			IsTrusted:    isTrusted,
		})
	}

	return devices, nil
}
