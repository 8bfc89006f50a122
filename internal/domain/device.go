package domain

// Default values applied when the OS enumeration omits a cosmetic field.
const (
	DefaultFriendlyName = "Unknown Device"
	DefaultDeviceClass  = "USB"
	DefaultDeviceStatus = "OK"
)

// Device is a connected device as reported by the OS.
// IsTrusted is recomputed from the whitelist on every listing and is never persisted.
type Device struct {
	InstanceID   string `json:"instance_id"`
	FriendlyName string `json:"friendly_name"`
	DeviceClass  string `json:"device_class"`
	Status       string `json:"status"` // free-form OS status, e.g. "OK", "Error", "Unknown"
	IsTrusted    bool   `json:"is_trusted"`
}

// WhitelistEntry is a device identity the operator has authorized.
// FriendlyName is a snapshot taken at authorization time.
type WhitelistEntry struct {
	InstanceID   string `json:"instance_id"`
	FriendlyName string `json:"friendly_name"`
	AddedAt      string `json:"added_at"`
}

// WhitelistDocument is the persisted form of the whitelist.
type WhitelistDocument struct {
	Entries []WhitelistEntry `json:"entries"`
}

// AuthorizeDeviceRequest is the request body for trusting a device.
type AuthorizeDeviceRequest struct {
	InstanceID   string `json:"instance_id" validate:"required,instanceid"`
	FriendlyName string `json:"friendly_name" validate:"max=256"`
	DeviceClass  string `json:"device_class,omitempty"`
	Status       string `json:"status,omitempty"`
}

// DeviceActionRequest identifies a device for an OS-level enable/disable.
type DeviceActionRequest struct {
	InstanceID string `json:"instance_id" validate:"required,instanceid"`
}

// Outcome is the result of a trust or enforcement operation.
// Warnings carry failures of best-effort secondary effects (audit writes) that
// did not undo the primary operation.
type Outcome struct {
	Changed  bool        `json:"changed"`
	Event    *AuditEvent `json:"event,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}
