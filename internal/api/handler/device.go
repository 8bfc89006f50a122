package handler

import (
	"net/http"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/service"
	"github.com/bcnelson/sentinelguard/internal/validation"
)

// DeviceHandler handles device inventory, trust and enforcement endpoints.
type DeviceHandler struct {
	inventory *service.InventoryService
	devices   *service.DeviceService
	whitelist *service.WhitelistService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(inventory *service.InventoryService, devices *service.DeviceService, whitelist *service.WhitelistService) *DeviceHandler {
	return &DeviceHandler{inventory: inventory, devices: devices, whitelist: whitelist}
}

// List lists connected devices with their trust status.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.inventory.ListDevices(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, devices)
}

// Authorize adds a device to the whitelist.
func (h *DeviceHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req domain.AuthorizeDeviceRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.devices.AuthorizeDevice(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, out)
}

// Enable enables a device at the OS level.
func (h *DeviceHandler) Enable(w http.ResponseWriter, r *http.Request) {
	var req domain.DeviceActionRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.devices.EnableDevice(r.Context(), req.InstanceID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, out)
}

// Disable disables a device at the OS level.
func (h *DeviceHandler) Disable(w http.ResponseWriter, r *http.Request) {
	var req domain.DeviceActionRequest
	if !decodeValid(w, r, &req) {
		return
	}

	out, err := h.devices.DisableDevice(r.Context(), req.InstanceID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, out)
}

// ListWhitelist lists trusted devices.
func (h *DeviceHandler) ListWhitelist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.whitelist.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Revoke removes one device from the whitelist. The id is URL-escaped.
func (h *DeviceHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "instance id is required")
		return
	}
	if err := validation.ValidateInstanceID(id); err != nil {
		respondValidationErrors(w, validation.FieldInvalid("instance_id", id, err))
		return
	}

	out, err := h.devices.RevokeDevice(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, out)
}

// ClearWhitelist removes every trusted device.
func (h *DeviceHandler) ClearWhitelist(w http.ResponseWriter, r *http.Request) {
	out, err := h.whitelist.Clear(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, out)
}
