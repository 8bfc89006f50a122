package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bcnelson/sentinelguard/internal/config"
	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()

	fixtures := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(fixtures, []byte(`{
		"commands": {
			"list-usb-devices": {"output": [{"instance_id": "USB\\VID_0781&PID_5581\\A1"}]}
		}
	}`), 0o600))

	cfg := &config.Config{}
	cfg.Storage.Backend = backend
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Storage.Driver = "sqlite3"
	cfg.Executor.FileShim = fixtures
	cfg.Audit.MaxEvents = 10
	return cfg
}

func TestNew_FileBackend(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.DirExists(t, cfg.Storage.DataDir)
	assert.IsType(t, &executor.FileShim{}, a.Executor)

	ctx := context.Background()
	devices, err := a.Inventory.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.False(t, devices[0].IsTrusted)

	_, err = a.Devices.AuthorizeDevice(ctx, domain.AuthorizeDeviceRequest{InstanceID: devices[0].InstanceID, FriendlyName: "SanDisk"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.Storage.DataDir, "whitelist.json"))
	assert.FileExists(t, filepath.Join(cfg.Storage.DataDir, "logs.json"))

	path, err := a.Audit.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.DataDir, filepath.Dir(path))
}

func TestNew_SQLBackend(t *testing.T) {
	cfg := testConfig(t, config.BackendSQL)

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.FileExists(t, filepath.Join(cfg.Storage.DataDir, "sentinelguard.db"))

	stats, err := a.Dashboard.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UntrustedDevices)
	assert.False(t, stats.IsSecure)

	assert.NotNil(t, a.Services().APIKeys)
}

func TestNew_WithoutFixturesOffWindowsFailsPrivilegedCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PowerShell is used on Windows")
	}

	cfg := testConfig(t, config.BackendFile)
	cfg.Executor.FileShim = ""

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.IsType(t, &executor.Unavailable{}, a.Executor)

	ctx := context.Background()
	out, err := a.Devices.DisableDevice(ctx, `USB\DOES_NOT_EXIST`)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExecutionFailed)
	assert.Contains(t, err.Error(), UnsupportedOSReason)
	assert.False(t, out.Changed)

	_, err = a.Devices.EnableDevice(ctx, `USB\DOES_NOT_EXIST`)
	assert.ErrorIs(t, err, domain.ErrExecutionFailed)

	_, err = a.Inventory.ListDevices(ctx)
	assert.ErrorIs(t, err, domain.ErrExecutionFailed)

	events, err := a.Audit.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}
