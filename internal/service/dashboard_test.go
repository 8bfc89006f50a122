package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDashboard_Counts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.whitelist.Authorize(ctx, domain.Device{InstanceID: `USB\A`})
	require.NoError(t, err)
	_, err = f.audit.Append(ctx, domain.LevelBlock, "Device blocked: USB\\C", `USB\C`)
	require.NoError(t, err)

	f.expectUSB(`[{"instance_id":"USB\\A"},{"instance_id":"USB\\B"},{"instance_id":"USB\\C"}]`)
	stats, err := f.dashboard.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.DashboardStats{
		TotalDevices:     3,
		TrustedDevices:   1,
		UntrustedDevices: 2,
		TotalEvents:      2,
		BlockedEvents:    1,
		IsSecure:         false,
	}, stats)
}

func TestDashboard_NoDevicesIsSecure(t *testing.T) {
	f := newFixture(t)
	f.expectUSB("")

	stats, err := f.dashboard.GetStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.IsSecure)
	assert.Zero(t, stats.TotalDevices)
}

func TestDashboard_FailuresPropagate(t *testing.T) {
	t.Run("inventory", func(t *testing.T) {
		f := newFixture(t)
		f.exec.EXPECT().Execute(gomock.Any(), executor.ListUSBDevices()).
			Return("", executor.NewExecutionFailed(executor.CmdListUSBDevices, "not found"))

		_, err := f.dashboard.GetStats(context.Background())
		assert.ErrorIs(t, err, domain.ErrExecutionFailed)
	})

	t.Run("audit log", func(t *testing.T) {
		f := newFixture(t)
		f.auditStore.FailLoad = errors.New("corrupt volume")
		f.exec.EXPECT().Execute(gomock.Any(), executor.ListUSBDevices()).Return("", nil).AnyTimes()

		_, err := f.dashboard.GetStats(context.Background())
		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}
