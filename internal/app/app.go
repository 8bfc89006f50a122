// Package app wires configuration into storage, the executor and the
// services shared by the HTTP server and the operator CLI.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bcnelson/sentinelguard/internal/api"
	"github.com/bcnelson/sentinelguard/internal/config"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/bcnelson/sentinelguard/internal/logging"
	"github.com/bcnelson/sentinelguard/internal/service"
	"github.com/bcnelson/sentinelguard/internal/storage"
	"github.com/bcnelson/sentinelguard/internal/storage/file"
	"github.com/bcnelson/sentinelguard/internal/storage/sql"
	"github.com/rs/zerolog"
)

// App holds the wired services.
type App struct {
	DataDir  string
	Store    storage.Store
	Executor executor.Executor

	Audit     *service.AuditLog
	Whitelist *service.WhitelistService
	Inventory *service.InventoryService
	Devices   *service.DeviceService
	Dashboard *service.DashboardService
	Host      *service.HostService
	APIKeys   *service.APIKeyService
}

// New opens storage and builds every service from cfg.
func New(cfg *config.Config) (*App, error) {
	logger := logging.WithComponent("app")

	dataDir, err := resolveDataDir(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg, dataDir)
	if err != nil {
		return nil, err
	}

	exec, err := newExecutor(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := Assemble(cfg, dataDir, store, exec)

	logger.Info().
		Str("data_dir", dataDir).
		Str("backend", cfg.Storage.Backend).
		Msg("application initialized")

	return a, nil
}

// Assemble builds the services over an already opened store and executor.
func Assemble(cfg *config.Config, dataDir string, store storage.Store, exec executor.Executor) *App {
	a := &App{DataDir: dataDir, Store: store, Executor: exec}

	a.Audit = service.NewAuditLog(store, service.AuditOptions{
		MaxEvents: cfg.Audit.MaxEvents,
		ExportDir: dataDir,
		Logger:    logging.WithComponent("audit"),
	})
	a.Whitelist = service.NewWhitelistService(store, a.Audit, logging.WithComponent("whitelist"))
	a.Inventory = service.NewInventoryService(exec, a.Whitelist, logging.WithComponent("inventory"))
	a.Devices = service.NewDeviceService(exec, a.Whitelist, a.Audit, logging.WithComponent("devices"))
	a.Dashboard = service.NewDashboardService(a.Inventory, a.Audit)
	a.Host = service.NewHostService(exec, a.Audit, service.DefaultSystemProbe(), logging.WithComponent("host"))
	a.APIKeys = service.NewAPIKeyService(store, a.Audit, cfg.Auth.BootstrapAPIKey, logging.WithComponent("apikeys"))

	return a
}

// Services returns the services in the form the API router expects.
func (a *App) Services() api.Services {
	return api.Services{
		Inventory: a.Inventory,
		Devices:   a.Devices,
		Whitelist: a.Whitelist,
		Audit:     a.Audit,
		Dashboard: a.Dashboard,
		Host:      a.Host,
		APIKeys:   a.APIKeys,
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		resolved, err := file.DefaultDir()
		if err != nil {
			return "", err
		}
		dir = resolved
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return abs, nil
}

func openStore(cfg *config.Config, dataDir string) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQL:
		store, err := sql.New(cfg.Storage.Driver, cfg.Storage.ResolveDSN(dataDir))
		if err != nil {
			return nil, fmt.Errorf("initializing sql storage: %w", err)
		}
		return store, nil
	default:
		store, err := file.New(dataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing file storage: %w", err)
		}
		return store, nil
	}
}

// UnsupportedOSReason is reported by every privileged command off Windows.
const UnsupportedOSReason = "privileged commands require Windows"

// newExecutor returns the fixture shim when one is configured. Off Windows,
// where the PnP and firewall cmdlets do not exist, every command fails.
func newExecutor(cfg *config.Config, logger zerolog.Logger) (executor.Executor, error) {
	execLogger := logging.WithComponent("executor")

	if cfg.UseFileShim() {
		logger.Info().Str("fixtures", cfg.Executor.FileShim).Msg("using file shim for privileged commands")
		return executor.NewFileShim(cfg.Executor.FileShim, execLogger)
	}

	if runtime.GOOS != "windows" {
		logger.Warn().Str("os", runtime.GOOS).Msg("privileged commands unavailable on this platform")
		return executor.NewUnavailable(UnsupportedOSReason), nil
	}

	return executor.NewPowerShell(cfg.Executor.Shell, cfg.Executor.Timeout, execLogger), nil
}
