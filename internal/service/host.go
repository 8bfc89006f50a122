package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/bcnelson/sentinelguard/internal/normalize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemProbe gathers host facts. Fields default to gopsutil.
type SystemProbe struct {
	Host   func(ctx context.Context) (*host.InfoStat, error)
	CPU    func(ctx context.Context) ([]cpu.InfoStat, error)
	Counts func(ctx context.Context, logical bool) (int, error)
	Memory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Disk   func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// DefaultSystemProbe reads the local host through gopsutil.
func DefaultSystemProbe() SystemProbe {
	return SystemProbe{
		Host:   host.InfoWithContext,
		CPU:    cpu.InfoWithContext,
		Counts: cpu.CountsWithContext,
		Memory: mem.VirtualMemoryWithContext,
		Disk:   disk.UsageWithContext,
	}
}

// HostService runs the read-only host queries and the audited host mutations
// (firewall, processes, services, temp cleanup).
type HostService struct {
	exec   executor.Executor
	audit  *AuditLog
	probe  SystemProbe
	logger zerolog.Logger
}

// NewHostService creates a new HostService.
func NewHostService(exec executor.Executor, audit *AuditLog, probe SystemProbe, logger zerolog.Logger) *HostService {
	return &HostService{exec: exec, audit: audit, probe: probe, logger: logger}
}

// query runs cmd and normalizes its output.
func (s *HostService) query(ctx context.Context, cmd executor.Command) ([]normalize.Record, error) {
	raw, err := s.exec.Execute(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	records, err := normalize.Records(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return records, nil
}

// mutate runs cmd and records an audit event once it succeeds.
func (s *HostService) mutate(ctx context.Context, action string, cmd executor.Command, level domain.Level, message string) (domain.Outcome, error) {
	_, err := s.exec.Execute(ctx, cmd)
	observe(action, true, err)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("%s: %w", cmd.Name, err)
	}

	s.logger.Info().Str("action", action).Msg(message)
	out := domain.Outcome{Changed: true}
	s.audit.record(ctx, &out, level, message, "")
	return out, nil
}

// FirewallStatus reports which firewall profiles are enabled.
func (s *HostService) FirewallStatus(ctx context.Context) (domain.FirewallStatus, error) {
	records, err := s.query(ctx, executor.FirewallStatus())
	if err != nil {
		return domain.FirewallStatus{}, err
	}
	if len(records) != 1 {
		return domain.FirewallStatus{}, fmt.Errorf("%w: firewall status: expected one object, got %d", domain.ErrParse, len(records))
	}
	rec := records[0]
	return domain.FirewallStatus{
		DomainEnabled:  rec.Bool("domain_enabled"),
		PrivateEnabled: rec.Bool("private_enabled"),
		PublicEnabled:  rec.Bool("public_enabled"),
	}, nil
}

// ListFirewallRules lists managed rules and a sample of the others.
func (s *HostService) ListFirewallRules(ctx context.Context) ([]domain.FirewallRule, error) {
	records, err := s.query(ctx, executor.FirewallRules())
	if err != nil {
		return nil, err
	}

	rules := make([]domain.FirewallRule, 0, len(records))
	for _, rec := range records {
		name, ok := rec.String("name")
		if !ok || name == "" {
			continue
		}
		rules = append(rules, domain.FirewallRule{
			Name:      name,
			Enabled:   rec.Bool("enabled"),
			Direction: rec.StringOr("direction", "Unknown"),
			Action:    rec.StringOr("action", "Unknown"),
			Protocol:  rec.StringOr("protocol", "Any"),
			LocalPort: rec.StringOr("local_port", "Any"),
		})
	}
	return rules, nil
}

// BlockPort creates an inbound block rule for port.
func (s *HostService) BlockPort(ctx context.Context, req domain.BlockPortRequest) (domain.Outcome, error) {
	protocol := strings.ToUpper(req.Protocol)
	return s.mutate(ctx, "block_port",
		executor.BlockPort(req.Port, protocol, req.RuleName),
		domain.LevelInfo, fmt.Sprintf("Firewall: Blocked port %d (%s)", req.Port, protocol))
}

// RemoveFirewallRule deletes rules with the given display name.
func (s *HostService) RemoveFirewallRule(ctx context.Context, ruleName string) (domain.Outcome, error) {
	return s.mutate(ctx, "remove_firewall_rule",
		executor.RemoveFirewallRule(ruleName),
		domain.LevelInfo, fmt.Sprintf("Firewall: Removed rule '%s'", ruleName))
}

// EnableFirewallLogging turns on allowed/blocked logging for every profile.
func (s *HostService) EnableFirewallLogging(ctx context.Context) (domain.Outcome, error) {
	return s.mutate(ctx, "enable_firewall_logging",
		executor.EnableFirewallLogging(),
		domain.LevelInfo, "Firewall logging enabled for all profiles")
}

// ListHighMemoryProcesses lists processes above 100 MB, largest first.
func (s *HostService) ListHighMemoryProcesses(ctx context.Context) ([]domain.ProcessInfo, error) {
	records, err := s.query(ctx, executor.HighMemoryProcesses())
	if err != nil {
		return nil, err
	}

	procs := make([]domain.ProcessInfo, 0, len(records))
	for _, rec := range records {
		id, ok := rec.Int("id")
		if !ok {
			continue
		}
		cpuPct, _ := rec.Float("cpu_percent")
		memMB, _ := rec.Float("memory_mb")
		procs = append(procs, domain.ProcessInfo{
			ID:         id,
			Name:       rec.StringOr("name", "Unknown"),
			CPUPercent: cpuPct,
			MemoryMB:   memMB,
			Path:       rec.StringOr("path", ""),
		})
	}
	return procs, nil
}

// KillProcess force-stops pid.
func (s *HostService) KillProcess(ctx context.Context, pid int) (domain.Outcome, error) {
	return s.mutate(ctx, "kill_process",
		executor.KillProcess(pid),
		domain.LevelWarn, fmt.Sprintf("Process killed: ID %d", pid))
}

// ListCriticalServices reports the state of the monitored services.
func (s *HostService) ListCriticalServices(ctx context.Context) ([]domain.ServiceInfo, error) {
	records, err := s.query(ctx, executor.CriticalServicesStatus())
	if err != nil {
		return nil, err
	}

	services := make([]domain.ServiceInfo, 0, len(records))
	for _, rec := range records {
		name, ok := rec.String("name")
		if !ok || name == "" {
			continue
		}
		services = append(services, domain.ServiceInfo{
			Name:        name,
			DisplayName: rec.StringOr("display_name", name),
			Status:      rec.StringOr("status", "Unknown"),
			StartType:   rec.StringOr("start_type", "Unknown"),
		})
	}
	return services, nil
}

// RestartService restarts a service.
func (s *HostService) RestartService(ctx context.Context, name string) (domain.Outcome, error) {
	return s.mutate(ctx, "restart_service",
		executor.RestartService(name),
		domain.LevelInfo, "Service restarted: "+name)
}

// StartService starts a stopped service.
func (s *HostService) StartService(ctx context.Context, name string) (domain.Outcome, error) {
	return s.mutate(ctx, "start_service",
		executor.StartService(name),
		domain.LevelInfo, "Service started: "+name)
}

// ListStartupPrograms lists programs launched at logon.
func (s *HostService) ListStartupPrograms(ctx context.Context) ([]domain.StartupProgram, error) {
	records, err := s.query(ctx, executor.StartupPrograms())
	if err != nil {
		return nil, err
	}

	programs := make([]domain.StartupProgram, 0, len(records))
	for _, rec := range records {
		programs = append(programs, domain.StartupProgram{
			Name:     rec.StringOr("name", "Unknown"),
			Command:  rec.StringOr("command", ""),
			Location: rec.StringOr("location", ""),
			User:     rec.StringOr("user", "System"),
		})
	}
	return programs, nil
}

// ListNetworkAdapters lists physical adapters that are up.
func (s *HostService) ListNetworkAdapters(ctx context.Context) ([]domain.NetworkAdapter, error) {
	records, err := s.query(ctx, executor.NetworkAdapters())
	if err != nil {
		return nil, err
	}

	adapters := make([]domain.NetworkAdapter, 0, len(records))
	for _, rec := range records {
		name, ok := rec.String("adapter_name")
		if !ok || name == "" {
			continue
		}
		adapters = append(adapters, domain.NetworkAdapter{
			AdapterName: name,
			IPAddress:   rec.StringOr("ip_address", "N/A"),
			SubnetMask:  rec.StringOr("subnet_mask", "N/A"),
			Gateway:     rec.StringOr("gateway", "N/A"),
			DNSServers:  rec.StringOr("dns_servers", "N/A"),
			MACAddress:  rec.StringOr("mac_address", "N/A"),
			Status:      rec.StringOr("status", "Unknown"),
		})
	}
	return adapters, nil
}

// ListTempFolders reports the size of the temp and cache folders that exist.
func (s *HostService) ListTempFolders(ctx context.Context) ([]domain.TempFolder, error) {
	records, err := s.query(ctx, executor.TempInfo())
	if err != nil {
		return nil, err
	}

	folders := make([]domain.TempFolder, 0, len(records))
	for _, rec := range records {
		path, ok := rec.String("path")
		if !ok || path == "" {
			continue
		}
		size, _ := rec.Float("size_mb")
		count, _ := rec.Int("file_count")
		folders = append(folders, domain.TempFolder{
			Name:      rec.StringOr("name", path),
			Path:      path,
			SizeMB:    size,
			FileCount: count,
		})
	}
	return folders, nil
}

// CleanTempFiles deletes temp files and records how much was freed.
func (s *HostService) CleanTempFiles(ctx context.Context) (domain.CleanupResult, error) {
	records, err := s.query(ctx, executor.CleanTempFiles())
	observe("clean_temp_files", true, err)
	if err != nil {
		return domain.CleanupResult{}, err
	}
	if len(records) != 1 {
		return domain.CleanupResult{}, fmt.Errorf("%w: %s: expected one object, got %d", domain.ErrParse, executor.CmdCleanTempFiles, len(records))
	}

	rec := records[0]
	deleted, _ := rec.Int("deleted_count")
	freed, _ := rec.Float("freed_mb")
	result := domain.CleanupResult{
		Outcome:      domain.Outcome{Changed: deleted > 0},
		DeletedCount: deleted,
		FreedMB:      freed,
		Errors:       rec.Strings("errors"),
	}

	message := fmt.Sprintf("Disk cleanup: %d files deleted, %.2f MB freed", deleted, freed)
	s.logger.Info().Int("deleted", deleted).Float64("freed_mb", freed).Msg("temp files cleaned")
	s.audit.record(ctx, &result.Outcome, domain.LevelInfo, message, "")
	return result, nil
}

// ListWifiProfiles lists saved wireless profiles without their keys.
func (s *HostService) ListWifiProfiles(ctx context.Context) ([]domain.WifiProfile, error) {
	records, err := s.query(ctx, executor.WifiProfiles())
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.WifiProfile, 0, len(records))
	for _, rec := range records {
		ssid, ok := rec.String("ssid")
		if !ok || ssid == "" {
			continue
		}
		profiles = append(profiles, domain.WifiProfile{
			SSID:           ssid,
			Authentication: rec.StringOr("authentication", "Unknown"),
			Encryption:     rec.StringOr("encryption", "Unknown"),
		})
	}
	return profiles, nil
}

// SystemInfo describes the local host. Only a failure to read the host
// identity is an error; other probes leave their fields zero.
func (s *HostService) SystemInfo(ctx context.Context) (domain.SystemInfo, error) {
	hi, err := s.probe.Host(ctx)
	if err != nil {
		return domain.SystemInfo{}, fmt.Errorf("reading host info: %w", err)
	}

	info := domain.SystemInfo{
		OSName:       strings.TrimSpace(hi.Platform + " " + hi.PlatformFamily),
		OSVersion:    hi.PlatformVersion,
		Platform:     hi.OS,
		ComputerName: hi.Hostname,
		Username:     currentUser(),
		UptimeHours:  round2(float64(hi.Uptime) / 3600),
		LastBoot:     time.Unix(int64(hi.BootTime), 0).Local().Format(time.RFC3339),
	}

	if cpus, err := s.probe.CPU(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("cpu info unavailable")
	} else if len(cpus) > 0 {
		info.CPUName = strings.TrimSpace(cpus[0].ModelName)
	}
	if n, err := s.probe.Counts(ctx, false); err == nil {
		info.CPUCores = n
	}
	if n, err := s.probe.Counts(ctx, true); err == nil {
		info.CPUThreads = n
	}

	if vm, err := s.probe.Memory(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("memory info unavailable")
	} else {
		info.TotalRAMGB = bytesToGB(vm.Total)
		info.AvailableRAMGB = bytesToGB(vm.Available)
	}

	if du, err := s.probe.Disk(ctx, systemDrive()); err != nil {
		s.logger.Warn().Err(err).Msg("disk usage unavailable")
	} else {
		info.DiskTotalGB = bytesToGB(du.Total)
		info.DiskFreeGB = bytesToGB(du.Free)
	}

	return info, nil
}

func systemDrive() string {
	if runtime.GOOS != "windows" {
		return "/"
	}
	if d := os.Getenv("SystemDrive"); d != "" {
		return d + `\`
	}
	return `C:\`
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "Unknown"
}

func bytesToGB(b uint64) float64 {
	return round2(float64(b) / (1 << 30))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
