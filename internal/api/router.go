package api

import (
	"net/http"

	"github.com/bcnelson/sentinelguard/internal/api/handler"
	"github.com/bcnelson/sentinelguard/internal/api/middleware"
	"github.com/bcnelson/sentinelguard/internal/auth"
	"github.com/bcnelson/sentinelguard/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services are the application services behind the API.
type Services struct {
	Inventory *service.InventoryService
	Devices   *service.DeviceService
	Whitelist *service.WhitelistService
	Audit     *service.AuditLog
	Dashboard *service.DashboardService
	Host      *service.HostService
	APIKeys   *service.APIKeyService
}

// OIDCComponents holds the OIDC login pieces. A nil *OIDCComponents disables
// OIDC login and session cookie auth.
type OIDCComponents struct {
	Provider handler.OIDCProvider
	Sessions *auth.SessionManager
	States   *auth.StateStore
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(svc Services, oidc *OIDCComponents, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	var sessions *auth.SessionManager
	if oidc != nil {
		sessions = oidc.Sessions
		authHandler := handler.NewAuthHandler(oidc.Provider, oidc.Sessions, oidc.States, logger)
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.ContentType)
			r.Get("/login", authHandler.Login)
			r.Get("/callback", authHandler.Callback)
			r.Post("/logout", authHandler.Logout)
		})
	}

	// API routes (auth required, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(svc.APIKeys, sessions, logger))

		// API Keys
		keyHandler := handler.NewAPIKeyHandler(svc.APIKeys)
		r.Post("/keys", keyHandler.Create)
		r.Get("/keys", keyHandler.List)
		r.Delete("/keys/{id}", keyHandler.Delete)

		// Devices and trust
		deviceHandler := handler.NewDeviceHandler(svc.Inventory, svc.Devices, svc.Whitelist)
		r.Get("/devices", deviceHandler.List)
		r.Post("/devices/authorize", deviceHandler.Authorize)
		r.Post("/devices/enable", deviceHandler.Enable)
		r.Post("/devices/disable", deviceHandler.Disable)
		r.Get("/whitelist", deviceHandler.ListWhitelist)
		r.Delete("/whitelist", deviceHandler.ClearWhitelist)
		r.Delete("/whitelist/{id}", deviceHandler.Revoke)

		// Audit log
		logHandler := handler.NewLogHandler(svc.Audit)
		r.Get("/logs", logHandler.List)
		r.Post("/logs", logHandler.Append)
		r.Delete("/logs", logHandler.Clear)
		r.Post("/logs/export", logHandler.Export)
		r.Get("/logs/stats", logHandler.Stats)

		dashboardHandler := handler.NewDashboardHandler(svc.Dashboard)
		r.Get("/dashboard", dashboardHandler.Get)

		// Host security
		hostHandler := handler.NewHostHandler(svc.Host)
		r.Route("/host", func(r chi.Router) {
			r.Get("/firewall", hostHandler.FirewallStatus)
			r.Get("/firewall/rules", hostHandler.FirewallRules)
			r.Post("/firewall/block", hostHandler.BlockPort)
			r.Post("/firewall/remove", hostHandler.RemoveFirewallRule)
			r.Post("/firewall/logging", hostHandler.EnableFirewallLogging)
			r.Get("/processes", hostHandler.Processes)
			r.Post("/processes/kill", hostHandler.KillProcess)
			r.Get("/services", hostHandler.Services)
			r.Post("/services/restart", hostHandler.RestartService)
			r.Post("/services/start", hostHandler.StartService)
			r.Get("/startup", hostHandler.StartupPrograms)
			r.Get("/network", hostHandler.NetworkAdapters)
			r.Get("/wifi", hostHandler.WifiProfiles)
			r.Get("/temp", hostHandler.TempFolders)
			r.Post("/temp/clean", hostHandler.CleanTempFiles)
			r.Get("/system", hostHandler.SystemInfo)
		})
	})

	return r
}
