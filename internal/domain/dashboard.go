package domain

// DashboardStats is the derived security posture shown on the dashboard.
type DashboardStats struct {
	TotalDevices     int  `json:"total_devices"`
	TrustedDevices   int  `json:"trusted_devices"`
	UntrustedDevices int  `json:"untrusted_devices"`
	TotalEvents      int  `json:"total_events"`
	BlockedEvents    int  `json:"blocked_events"`
	IsSecure         bool `json:"is_secure"` // no untrusted device connected
}
