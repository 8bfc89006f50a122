package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/bcnelson/sentinelguard/internal/service"
	"github.com/bcnelson/sentinelguard/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fixture wires every service over in-memory stores and a mock executor.
type fixture struct {
	store      *memory.Store
	auditStore *memory.Store
	exec       *executor.MockExecutor
	audit      *service.AuditLog
	whitelist  *service.WhitelistService
	inventory  *service.InventoryService
	devices    *service.DeviceService
	dashboard  *service.DashboardService
	exportDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		store:      memory.New(),
		auditStore: memory.New(),
		exec:       executor.NewMockExecutor(ctrl),
		exportDir:  t.TempDir(),
	}

	logger := zerolog.Nop()
	f.audit = service.NewAuditLog(f.auditStore, service.AuditOptions{ExportDir: f.exportDir, Logger: logger})
	f.whitelist = service.NewWhitelistService(f.store, f.audit, logger)
	f.inventory = service.NewInventoryService(f.exec, f.whitelist, logger)
	f.devices = service.NewDeviceService(f.exec, f.whitelist, f.audit, logger)
	f.dashboard = service.NewDashboardService(f.inventory, f.audit)
	return f
}

// expectUSB makes the next device enumeration return raw.
func (f *fixture) expectUSB(raw string) {
	f.exec.EXPECT().Execute(gomock.Any(), executor.ListUSBDevices()).Return(raw, nil)
}

func (f *fixture) events(t *testing.T) []domain.AuditEvent {
	t.Helper()
	events, err := f.audit.List(context.Background())
	require.NoError(t, err)
	return events
}

func fixedClock(ts string) func() time.Time {
	return func() time.Time {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			panic(err)
		}
		return t
	}
}
