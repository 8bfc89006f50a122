package service

import (
	"context"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// DashboardService derives the security posture from inventory and audit log.
type DashboardService struct {
	inventory *InventoryService
	audit     *AuditLog
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(inventory *InventoryService, audit *AuditLog) *DashboardService {
	return &DashboardService{inventory: inventory, audit: audit}
}

// GetStats fetches the inventory and the audit log concurrently. A failure
// of either is returned; no partial stats are produced.
func (s *DashboardService) GetStats(ctx context.Context) (domain.DashboardStats, error) {
	var (
		devices []domain.Device
		logs    domain.LogStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		devices, err = s.inventory.ListDevices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = s.audit.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{
		TotalDevices:  len(devices),
		TotalEvents:   logs.Total,
		BlockedEvents: logs.Block,
	}
	for _, d := range devices {
		if d.IsTrusted {
			stats.TrustedDevices++
		}
	}
	stats.UntrustedDevices = stats.TotalDevices - stats.TrustedDevices
	stats.IsSecure = stats.UntrustedDevices == 0

	metrics.Devices.WithLabelValues("trusted").Set(float64(stats.TrustedDevices))
	metrics.Devices.WithLabelValues("untrusted").Set(float64(stats.UntrustedDevices))

	return stats, nil
}
