package handler

import (
	"net/http"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/service"
)

// LogHandler handles audit log endpoints.
type LogHandler struct {
	audit *service.AuditLog
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(audit *service.AuditLog) *LogHandler {
	return &LogHandler{audit: audit}
}

// List returns audit events, newest first.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.audit.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// Append records an operator-supplied event.
func (h *LogHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req domain.AppendEventRequest
	if !decodeValid(w, r, &req) {
		return
	}

	event, err := h.audit.Append(r.Context(), req.Level, req.Message, req.DeviceID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// Clear empties the audit log.
func (h *LogHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.audit.Clear(r.Context()); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export writes a snapshot of the log to the export directory.
func (h *LogHandler) Export(w http.ResponseWriter, r *http.Request) {
	path, err := h.audit.Export(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.ExportResponse{Path: path})
}

// Stats returns event counts by level.
func (h *LogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.audit.Stats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// DashboardHandler handles the dashboard endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get returns the current security posture.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.GetStats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
