package domain

// FirewallStatus reports whether each Windows Firewall profile is enabled.
type FirewallStatus struct {
	DomainEnabled  bool `json:"domain_enabled"`
	PrivateEnabled bool `json:"private_enabled"`
	PublicEnabled  bool `json:"public_enabled"`
}

// FirewallRule is a firewall rule with its port filter flattened in.
type FirewallRule struct {
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	Direction string `json:"direction"`
	Action    string `json:"action"`
	Protocol  string `json:"protocol"`
	LocalPort string `json:"local_port"`
}

// BlockPortRequest is the request body for creating an inbound block rule.
type BlockPortRequest struct {
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Protocol string `json:"protocol" validate:"required,oneof=TCP UDP"`
	RuleName string `json:"rule_name" validate:"required,psname"`
}

// RemoveRuleRequest is the request body for removing a firewall rule.
type RemoveRuleRequest struct {
	RuleName string `json:"rule_name" validate:"required,psname"`
}

// KillProcessRequest is the request body for stopping a process.
type KillProcessRequest struct {
	PID int `json:"pid" validate:"required,min=1"`
}

// ServiceActionRequest is the request body for restarting or starting a service.
type ServiceActionRequest struct {
	Name string `json:"name" validate:"required,servicename"`
}

// ProcessInfo is a running process.
type ProcessInfo struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
	Path       string  `json:"path"`
}

// ServiceInfo is a Windows service.
type ServiceInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	StartType   string `json:"start_type"`
}

// StartupProgram is a program launched at logon.
type StartupProgram struct {
	Name     string `json:"name"`
	Command  string `json:"command"`
	Location string `json:"location"`
	User     string `json:"user"`
}

// NetworkAdapter is a physical network adapter that is up.
type NetworkAdapter struct {
	AdapterName string `json:"adapter_name"`
	IPAddress   string `json:"ip_address"`
	SubnetMask  string `json:"subnet_mask"`
	Gateway     string `json:"gateway"`
	DNSServers  string `json:"dns_servers"`
	MACAddress  string `json:"mac_address"`
	Status      string `json:"status"`
}

// SystemInfo describes the local host.
type SystemInfo struct {
	OSName         string  `json:"os_name"`
	OSVersion      string  `json:"os_version"`
	Platform       string  `json:"platform"`
	ComputerName   string  `json:"computer_name"`
	Username       string  `json:"username"`
	TotalRAMGB     float64 `json:"total_ram_gb"`
	AvailableRAMGB float64 `json:"available_ram_gb"`
	CPUName        string  `json:"cpu_name"`
	CPUCores       int     `json:"cpu_cores"`
	CPUThreads     int     `json:"cpu_threads"`
	UptimeHours    float64 `json:"uptime_hours"`
	DiskTotalGB    float64 `json:"disk_total_gb"`
	DiskFreeGB     float64 `json:"disk_free_gb"`
	LastBoot       string  `json:"last_boot"`
}

// TempFolder is a temp or cache folder and how much it holds.
type TempFolder struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	SizeMB    float64 `json:"size_mb"`
	FileCount int     `json:"file_count"`
}

// CleanupResult is the outcome of a temp file cleanup.
type CleanupResult struct {
	Outcome
	DeletedCount int      `json:"deleted_count"`
	FreedMB      float64  `json:"freed_mb"`
	Errors       []string `json:"errors,omitempty"`
}

// WifiProfile is a saved wireless network. Stored keys are not exposed.
type WifiProfile struct {
	SSID           string `json:"ssid"`
	Authentication string `json:"authentication"`
	Encryption     string `json:"encryption"`
}
