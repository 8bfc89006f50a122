package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/executor"
	"github.com/bcnelson/sentinelguard/internal/service"
	"github.com/bcnelson/sentinelguard/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHostService(t *testing.T) (*service.HostService, *executor.FileShim, *service.AuditLog) {
	t.Helper()
	shim, err := executor.NewFileShim("", zerolog.Nop())
	require.NoError(t, err)
	audit := service.NewAuditLog(memory.New(), service.AuditOptions{Logger: zerolog.Nop()})
	return service.NewHostService(shim, audit, fakeProbe(), zerolog.Nop()), shim, audit
}

func fakeProbe() service.SystemProbe {
	return service.SystemProbe{
		Host: func(context.Context) (*host.InfoStat, error) {
			return &host.InfoStat{
				Hostname:        "WORKSTATION-01",
				OS:              "windows",
				Platform:        "Microsoft Windows 11 Pro",
				PlatformVersion: "10.0.22631",
				Uptime:          7200,
				BootTime:        uint64(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC).Unix()),
			}, nil
		},
		CPU: func(context.Context) ([]cpu.InfoStat, error) {
			return []cpu.InfoStat{{ModelName: " Intel(R) Core(TM) i7 "}}, nil
		},
		Counts: func(_ context.Context, logical bool) (int, error) {
			if logical {
				return 16, nil
			}
			return 8, nil
		},
		Memory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 16 << 30, Available: 6 << 30}, nil
		},
		Disk: func(context.Context, string) (*disk.UsageStat, error) {
			return nil, errors.New("no such volume")
		},
	}
}

func TestHost_FirewallStatus(t *testing.T) {
	svc, shim, _ := newHostService(t)
	shim.SetOutput(executor.CmdFirewallStatus, `{"domain_enabled":true,"private_enabled":false,"public_enabled":true}`)

	status, err := svc.FirewallStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FirewallStatus{DomainEnabled: true, PublicEnabled: true}, status)

	shim.SetOutput(executor.CmdFirewallStatus, "")
	_, err = svc.FirewallStatus(context.Background())
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestHost_ListFirewallRules(t *testing.T) {
	svc, shim, _ := newHostService(t)
	shim.SetOutput(executor.CmdFirewallRules, `[
		{"name":"Block SMB","enabled":true,"direction":"Inbound","action":"Block","protocol":"TCP","local_port":"445"},
		{"name":"Core Networking","enabled":false,"direction":"Outbound","action":"Allow"},
		{"enabled":true}
	]`)

	rules, err := svc.ListFirewallRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, domain.FirewallRule{Name: "Block SMB", Enabled: true, Direction: "Inbound", Action: "Block", Protocol: "TCP", LocalPort: "445"}, rules[0])
	assert.Equal(t, "Any", rules[1].Protocol)
	assert.Equal(t, "Any", rules[1].LocalPort)
}

func TestHost_BlockPortAudited(t *testing.T) {
	ctx := context.Background()
	svc, shim, audit := newHostService(t)

	out, err := svc.BlockPort(ctx, domain.BlockPortRequest{Port: 445, Protocol: "tcp", RuleName: "Block SMB"})
	require.NoError(t, err)
	require.NotNil(t, out.Event)
	assert.Equal(t, "Firewall: Blocked port 445 (TCP)", out.Event.Message)

	calls := shim.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, executor.BlockPort(445, "TCP", "Block SMB"), calls[0])

	_, err = svc.RemoveFirewallRule(ctx, "Block SMB")
	require.NoError(t, err)
	_, err = svc.EnableFirewallLogging(ctx)
	require.NoError(t, err)

	events, err := audit.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Firewall logging enabled for all profiles", events[0].Message)
	assert.Equal(t, "Firewall: Removed rule 'Block SMB'", events[1].Message)
}

func TestHost_MutationFailureNotAudited(t *testing.T) {
	ctx := context.Background()
	svc, shim, audit := newHostService(t)
	shim.Set(executor.CmdKillProcess, executor.Fixture{Error: "script", Detail: "Cannot find a process with the process identifier 4242."})

	_, err := svc.KillProcess(ctx, 4242)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScriptError)
	assert.Contains(t, err.Error(), "4242")

	events, err := audit.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHost_ProcessesAndServices(t *testing.T) {
	ctx := context.Background()
	svc, shim, audit := newHostService(t)
	shim.SetOutput(executor.CmdHighMemoryProcesses, `{"id":4242,"name":"chrome","cpu_percent":12.5,"memory_mb":812.33,"path":null}`)
	shim.SetOutput(executor.CmdCriticalServices, `[{"name":"Spooler","display_name":"Print Spooler","status":"Running","start_type":"Automatic"},{"name":"bits","status":"Stopped"}]`)

	procs, err := svc.ListHighMemoryProcesses(ctx)
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Equal(t, domain.ProcessInfo{ID: 4242, Name: "chrome", CPUPercent: 12.5, MemoryMB: 812.33}, procs[0])

	services, err := svc.ListCriticalServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "bits", services[1].DisplayName)
	assert.Equal(t, "Unknown", services[1].StartType)

	out, err := svc.RestartService(ctx, "Spooler")
	require.NoError(t, err)
	assert.Equal(t, "Service restarted: Spooler", out.Event.Message)

	out, err = svc.StartService(ctx, "bits")
	require.NoError(t, err)
	assert.Equal(t, "Service started: bits", out.Event.Message)

	out, err = svc.KillProcess(ctx, 4242)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelWarn, out.Event.Level)
	assert.Equal(t, "Process killed: ID 4242", out.Event.Message)

	stats, err := audit.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LogStats{Total: 3, Info: 2, Warn: 1}, stats)
}

func TestHost_StartupAndNetwork(t *testing.T) {
	ctx := context.Background()
	svc, shim, _ := newHostService(t)
	shim.SetOutput(executor.CmdStartupPrograms, `[{"name":"OneDrive","command":"OneDrive.exe /background","location":"HKU\\Run","user":null},{}]`)
	shim.SetOutput(executor.CmdNetworkAdapters, `{"adapter_name":"Ethernet","ip_address":"192.168.1.20","subnet_mask":"/24","mac_address":"00-11-22-33-44-55","status":"Up"}`)

	programs, err := svc.ListStartupPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, "System", programs[0].User)
	assert.Equal(t, domain.StartupProgram{Name: "Unknown", User: "System"}, programs[1])

	adapters, err := svc.ListNetworkAdapters(ctx)
	require.NoError(t, err)
	require.Len(t, adapters, 1)
	assert.Equal(t, "N/A", adapters[0].Gateway)
	assert.Equal(t, "N/A", adapters[0].DNSServers)
	assert.Equal(t, "192.168.1.20", adapters[0].IPAddress)
}

func TestHost_SystemInfo(t *testing.T) {
	svc, _, _ := newHostService(t)

	info, err := svc.SystemInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "WORKSTATION-01", info.ComputerName)
	assert.Equal(t, "windows", info.Platform)
	assert.Equal(t, "10.0.22631", info.OSVersion)
	assert.Equal(t, "Intel(R) Core(TM) i7", info.CPUName)
	assert.Equal(t, 8, info.CPUCores)
	assert.Equal(t, 16, info.CPUThreads)
	assert.InDelta(t, 16.0, info.TotalRAMGB, 0.01)
	assert.InDelta(t, 6.0, info.AvailableRAMGB, 0.01)
	assert.InDelta(t, 2.0, info.UptimeHours, 0.01)
	assert.Zero(t, info.DiskTotalGB, "disk probe failure leaves fields zero")
	assert.NotEmpty(t, info.LastBoot)
}

func TestHost_SystemInfoHostFailure(t *testing.T) {
	probe := fakeProbe()
	probe.Host = func(context.Context) (*host.InfoStat, error) { return nil, errors.New("wmi unavailable") }
	svc := service.NewHostService(nil, nil, probe, zerolog.Nop())

	_, err := svc.SystemInfo(context.Background())
	assert.Error(t, err)
}

func TestHost_TempFoldersAndCleanup(t *testing.T) {
	ctx := context.Background()
	svc, shim, audit := newHostService(t)
	shim.SetOutput(executor.CmdTempInfo, `[
		{"name":"User Temp","path":"C:\\Users\\op\\AppData\\Local\\Temp","size_mb":512.25,"file_count":1830},
		{"name":"Windows Temp","path":"C:\\Windows\\Temp","size_mb":"64.5","file_count":12},
		{"name":"IE Cache"}
	]`)
	shim.SetOutput(executor.CmdCleanTempFiles, `{"deleted_count":1790,"freed_mb":498.1,"errors":"C:\\Windows\\Temp\\x is in use"}`)

	folders, err := svc.ListTempFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, domain.TempFolder{Name: "User Temp", Path: `C:\Users\op\AppData\Local\Temp`, SizeMB: 512.25, FileCount: 1830}, folders[0])
	assert.InDelta(t, 64.5, folders[1].SizeMB, 0.001)

	result, err := svc.CleanTempFiles(ctx)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 1790, result.DeletedCount)
	assert.Equal(t, []string{`C:\Windows\Temp\x is in use`}, result.Errors)
	require.NotNil(t, result.Event)
	assert.Equal(t, domain.LevelInfo, result.Event.Level)
	assert.Equal(t, "Disk cleanup: 1790 files deleted, 498.10 MB freed", result.Event.Message)

	events, err := audit.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestHost_CleanupFailures(t *testing.T) {
	ctx := context.Background()
	svc, shim, audit := newHostService(t)

	_, err := svc.CleanTempFiles(ctx)
	assert.ErrorIs(t, err, domain.ErrParse, "empty output is not a cleanup result")

	shim.Set(executor.CmdCleanTempFiles, executor.Fixture{Error: "execution", Detail: "powershell not found"})
	_, err = svc.CleanTempFiles(ctx)
	assert.ErrorIs(t, err, domain.ErrExecutionFailed)

	events, err := audit.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHost_ListWifiProfiles(t *testing.T) {
	svc, shim, _ := newHostService(t)
	shim.SetOutput(executor.CmdWifiProfiles, `[{"ssid":"HomeNet","authentication":"WPA2-Personal","encryption":"CCMP"},{"ssid":"Cafe"},{"ssid":""}]`)

	profiles, err := svc.ListWifiProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, domain.WifiProfile{SSID: "HomeNet", Authentication: "WPA2-Personal", Encryption: "CCMP"}, profiles[0])
	assert.Equal(t, domain.WifiProfile{SSID: "Cafe", Authentication: "Unknown", Encryption: "Unknown"}, profiles[1])

	shim.SetOutput(executor.CmdWifiProfiles, "null")
	profiles, err = svc.ListWifiProfiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
