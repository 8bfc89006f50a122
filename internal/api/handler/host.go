package handler

import (
	"context"
	"net/http"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/service"
)

// HostHandler handles firewall, process, service, cleanup and system endpoints.
type HostHandler struct {
	host *service.HostService
}

// NewHostHandler creates a new HostHandler.
func NewHostHandler(host *service.HostService) *HostHandler {
	return &HostHandler{host: host}
}

// list adapts a host query to a GET handler.
func list[T any](query func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := query(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// respondOutcome writes the outcome of a host mutation.
func respondOutcome(w http.ResponseWriter, out domain.Outcome, err error) {
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// FirewallStatus reports the enabled state of each firewall profile.
func (h *HostHandler) FirewallStatus(w http.ResponseWriter, r *http.Request) {
	list(h.host.FirewallStatus)(w, r)
}

// FirewallRules lists firewall rules.
func (h *HostHandler) FirewallRules(w http.ResponseWriter, r *http.Request) {
	list(h.host.ListFirewallRules)(w, r)
}

// BlockPort creates an inbound block rule.
func (h *HostHandler) BlockPort(w http.ResponseWriter, r *http.Request) {
	var req domain.BlockPortRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.host.BlockPort(r.Context(), req)
	respondOutcome(w, out, err)
}

// RemoveFirewallRule removes a firewall rule by display name.
func (h *HostHandler) RemoveFirewallRule(w http.ResponseWriter, r *http.Request) {
	var req domain.RemoveRuleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.host.RemoveFirewallRule(r.Context(), req.RuleName)
	respondOutcome(w, out, err)
}

// EnableFirewallLogging enables firewall logging on every profile.
func (h *HostHandler) EnableFirewallLogging(w http.ResponseWriter, r *http.Request) {
	out, err := h.host.EnableFirewallLogging(r.Context())
	respondOutcome(w, out, err)
}

// Processes lists high-memory processes.
func (h *HostHandler) Processes(w http.ResponseWriter, r *http.Request) {
	list(h.host.ListHighMemoryProcesses)(w, r)
}

// KillProcess force-stops a process.
func (h *HostHandler) KillProcess(w http.ResponseWriter, r *http.Request) {
	var req domain.KillProcessRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.host.KillProcess(r.Context(), req.PID)
	respondOutcome(w, out, err)
}

// Services lists the critical services.
func (h *HostHandler) Services(w http.ResponseWriter, r *http.Request) {
	list(h.host.ListCriticalServices)(w, r)
}

// RestartService restarts a service.
func (h *HostHandler) RestartService(w http.ResponseWriter, r *http.Request) {
	var req domain.ServiceActionRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.host.RestartService(r.Context(), req.Name)
	respondOutcome(w, out, err)
}

// StartService starts a service.
func (h *HostHandler) StartService(w http.ResponseWriter, r *http.Request) {
	var req domain.ServiceActionRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.host.StartService(r.Context(), req.Name)
	respondOutcome(w, out, err)
}

// StartupPrograms lists programs launched at logon.
func (h *HostHandler) StartupPrograms(w http.ResponseWriter, r *http.Request) {
	list(h.host.ListStartupPrograms)(w, r)
}

// NetworkAdapters lists active physical adapters.
func (h *HostHandler) NetworkAdapters(w http.ResponseWriter, r *http.Request) {
	list(h.host.ListNetworkAdapters)(w, r)
}

// TempFolders reports temp and cache folder sizes.
func (h *HostHandler) TempFolders(w http.ResponseWriter, r *http.Request) {
	list(h.host.ListTempFolders)(w, r)
}

// CleanTempFiles deletes temp files.
func (h *HostHandler) CleanTempFiles(w http.ResponseWriter, r *http.Request) {
	result, err := h.host.CleanTempFiles(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// WifiProfiles lists saved wireless profiles.
func (h *HostHandler) WifiProfiles(w http.ResponseWriter, r *http.Request) {
	list(h.host.ListWifiProfiles)(w, r)
}

// SystemInfo describes the local host.
func (h *HostHandler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	list(h.host.SystemInfo)(w, r)
}
