package domain

import "strings"

// Level is the severity of an audit event. The system emits only the four
// values below, but documents written by other tools may carry others.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelBlock Level = "BLOCK"
	LevelError Level = "ERROR"
)

// Canonical returns the level trimmed and upper-cased, so "info" and "INFO"
// are counted together.
func (l Level) Canonical() Level {
	return Level(strings.ToUpper(strings.TrimSpace(string(l))))
}

// DefaultMaxAuditEvents is the audit log capacity.
const DefaultMaxAuditEvents = 1000

// AuditEvent is a single security-relevant event.
type AuditEvent struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	DeviceID  string `json:"device_id,omitempty"`
}

// LogsDocument is the persisted form of the audit log.
// Events are kept in insertion (chronological) order.
type LogsDocument struct {
	Events []AuditEvent `json:"events"`
}

// LogStats summarizes the audit log by level.
type LogStats struct {
	Total int `json:"total"`
	Info  int `json:"info"`
	Warn  int `json:"warn"`
	Block int `json:"block"`
	Error int `json:"error"`
}

// AppendEventRequest is the request body for appending an audit event.
type AppendEventRequest struct {
	Level    Level  `json:"level" validate:"required,auditlevel"`
	Message  string `json:"message" validate:"required,max=1024"`
	DeviceID string `json:"device_id,omitempty" validate:"omitempty,instanceid"`
}

// ExportResponse is returned after exporting the audit log.
type ExportResponse struct {
	Path string `json:"path"`
}
