package executor

import (
	"fmt"
	"strings"
)

// Command names. The file shim keys its fixtures on these.
const (
	CmdListUSBDevices      = "list-usb-devices"
	CmdEnableDevice        = "enable-device"
	CmdDisableDevice       = "disable-device"
	CmdFirewallStatus      = "firewall-status"
	CmdFirewallRules       = "firewall-rules"
	CmdBlockPort           = "block-port"
	CmdRemoveFirewallRule  = "remove-firewall-rule"
	CmdEnableFirewallLog   = "enable-firewall-logging"
	CmdHighMemoryProcesses = "high-memory-processes"
	CmdKillProcess         = "kill-process"
	CmdCriticalServices    = "critical-services"
	CmdRestartService      = "restart-service"
	CmdStartService        = "start-service"
	CmdStartupPrograms     = "startup-programs"
	CmdNetworkAdapters     = "network-adapters"
	CmdTempInfo            = "temp-info"
	CmdCleanTempFiles      = "clean-temp-files"
	CmdWifiProfiles        = "wifi-profiles"
)

// ManagedRuleDescription marks firewall rules created by this tool.
const ManagedRuleDescription = "SentinelGuard Managed Rule"

// CriticalServices are the services reported by ListCriticalServices.
var CriticalServices = []string{"wuauserv", "bits", "WinDefend", "MpsSvc", "EventLog", "Spooler", "W32Time"}

// Quote returns s as a single-quoted PowerShell literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ListUSBDevices enumerates connected USB devices.
func ListUSBDevices() Command {
	return Command{Name: CmdListUSBDevices, Script: `
		Get-PnpDevice -Class 'USB' -Status 'OK' -ErrorAction SilentlyContinue |
		Select-Object @{N='instance_id';E={$_.InstanceId}},
		              @{N='friendly_name';E={$_.FriendlyName}},
		              @{N='device_class';E={$_.Class}},
		              @{N='status';E={$_.Status}} |
		ConvertTo-Json -Compress
	`}
}

// EnableDevice enables a PnP device (requires admin rights).
func EnableDevice(instanceID string) Command {
	return Command{Name: CmdEnableDevice, Script: fmt.Sprintf(
		`Enable-PnpDevice -InstanceId %s -Confirm:$false -ErrorAction Stop`, Quote(instanceID))}
}

// DisableDevice disables a PnP device at the driver level (requires admin rights).
func DisableDevice(instanceID string) Command {
	return Command{Name: CmdDisableDevice, Script: fmt.Sprintf(
		`Disable-PnpDevice -InstanceId %s -Confirm:$false -ErrorAction Stop`, Quote(instanceID))}
}

// FirewallStatus reports the enabled state of each firewall profile.
func FirewallStatus() Command {
	return Command{Name: CmdFirewallStatus, Script: `
		$profiles = Get-NetFirewallProfile -ErrorAction SilentlyContinue
		@{
			domain_enabled = [bool](($profiles | Where-Object { $_.Name -eq 'Domain' }).Enabled)
			private_enabled = [bool](($profiles | Where-Object { $_.Name -eq 'Private' }).Enabled)
			public_enabled = [bool](($profiles | Where-Object { $_.Name -eq 'Public' }).Enabled)
		} | ConvertTo-Json -Compress
	`}
}

// FirewallRules lists managed rules first, then the first 50 others.
func FirewallRules() Command {
	return Command{Name: CmdFirewallRules, Script: fmt.Sprintf(`
		$sgRules = Get-NetFirewallRule -Description %s -ErrorAction SilentlyContinue
		$otherRules = Get-NetFirewallRule -ErrorAction SilentlyContinue | Select-Object -First 50
		$allRules = @($sgRules) + @($otherRules) | Sort-Object -Property Name -Unique
		$allRules | ForEach-Object {
			$portFilter = Get-NetFirewallPortFilter -AssociatedNetFirewallRule $_ -ErrorAction SilentlyContinue
			@{
				name = $_.DisplayName
				enabled = $_.Enabled -eq 'True'
				direction = $_.Direction.ToString()
				action = $_.Action.ToString()
				protocol = if ($portFilter.Protocol) { "$($portFilter.Protocol)" } else { "Any" }
				local_port = if ($portFilter.LocalPort) { $portFilter.LocalPort -join ',' } else { "Any" }
			}
		} | ConvertTo-Json -Compress
	`, Quote(ManagedRuleDescription))}
}

// BlockPort creates an inbound block rule.
func BlockPort(port int, protocol, ruleName string) Command {
	return Command{Name: CmdBlockPort, Script: fmt.Sprintf(
		`New-NetFirewallRule -DisplayName %s -Description %s -Direction Inbound -LocalPort %d -Protocol %s -Action Block -ErrorAction Stop | Out-Null`,
		Quote(ruleName), Quote(ManagedRuleDescription), port, Quote(protocol))}
}

// RemoveFirewallRule removes rules by display name.
func RemoveFirewallRule(ruleName string) Command {
	return Command{Name: CmdRemoveFirewallRule, Script: fmt.Sprintf(
		`Remove-NetFirewallRule -DisplayName %s -ErrorAction Stop`, Quote(ruleName))}
}

// EnableFirewallLogging logs allowed and blocked connections on all profiles.
func EnableFirewallLogging() Command {
	return Command{Name: CmdEnableFirewallLog, Script: `Set-NetFirewallProfile -Profile Domain,Public,Private -LogAllowed True -LogBlocked True -ErrorAction Stop`}
}

// HighMemoryProcesses lists the top 20 processes above 100 MB working set.
func HighMemoryProcesses() Command {
	return Command{Name: CmdHighMemoryProcesses, Script: `
		Get-Process -ErrorAction SilentlyContinue |
			Where-Object { $_.WorkingSet64 -gt 100MB } |
			Sort-Object WorkingSet64 -Descending |
			Select-Object -First 20 |
			ForEach-Object {
				@{
					id = $_.Id
					name = $_.ProcessName
					cpu_percent = [math]::Round($_.CPU, 2)
					memory_mb = [math]::Round($_.WorkingSet64 / 1MB, 2)
					path = if ($_.Path) { $_.Path } else { "" }
				}
			} | ConvertTo-Json -Compress
	`}
}

// KillProcess force-stops a process.
func KillProcess(pid int) Command {
	return Command{Name: CmdKillProcess, Script: fmt.Sprintf(`Stop-Process -Id %d -Force -ErrorAction Stop`, pid)}
}

// CriticalServicesStatus reports the state of CriticalServices.
func CriticalServicesStatus() Command {
	names := make([]string, len(CriticalServices))
	for i, n := range CriticalServices {
		names[i] = Quote(n)
	}
	return Command{Name: CmdCriticalServices, Script: fmt.Sprintf(`
		Get-Service -Name @(%s) -ErrorAction SilentlyContinue |
			ForEach-Object {
				@{
					name = $_.Name
					display_name = $_.DisplayName
					status = $_.Status.ToString()
					start_type = $_.StartType.ToString()
				}
			} | ConvertTo-Json -Compress
	`, strings.Join(names, ", "))}
}

// RestartService restarts a service.
func RestartService(name string) Command {
	return Command{Name: CmdRestartService, Script: fmt.Sprintf(
		`Restart-Service -Name %s -Force -ErrorAction Stop`, Quote(name))}
}

// StartService starts a stopped service.
func StartService(name string) Command {
	return Command{Name: CmdStartService, Script: fmt.Sprintf(
		`Start-Service -Name %s -ErrorAction Stop`, Quote(name))}
}

// StartupPrograms lists Win32_StartupCommand entries.
func StartupPrograms() Command {
	return Command{Name: CmdStartupPrograms, Script: `
		Get-CimInstance Win32_StartupCommand -ErrorAction SilentlyContinue |
			ForEach-Object {
				@{
					name = if ($_.Name) { $_.Name } else { "Unknown" }
					command = if ($_.Command) { $_.Command } else { "" }
					location = if ($_.Location) { $_.Location } else { "" }
					user = if ($_.User) { $_.User } else { "System" }
				}
			} | ConvertTo-Json -Compress
	`}
}

// NetworkAdapters lists physical adapters that are up.
func NetworkAdapters() Command {
	return Command{Name: CmdNetworkAdapters, Script: `
		Get-NetAdapter -Physical -ErrorAction SilentlyContinue | Where-Object { $_.Status -eq 'Up' } |
			ForEach-Object {
				$ipConfig = Get-NetIPConfiguration -InterfaceIndex $_.ifIndex -ErrorAction SilentlyContinue
				$ip = Get-NetIPAddress -InterfaceIndex $_.ifIndex -AddressFamily IPv4 -ErrorAction SilentlyContinue | Select-Object -First 1
				$gateway = ($ipConfig.IPv4DefaultGateway.NextHop | Select-Object -First 1)
				$dns = ($ipConfig.DNSServer.ServerAddresses -join ', ')
				@{
					adapter_name = $_.Name
					ip_address = if ($ip.IPAddress) { $ip.IPAddress } else { "N/A" }
					subnet_mask = if ($ip.PrefixLength) { "/$($ip.PrefixLength)" } else { "N/A" }
					gateway = if ($gateway) { $gateway } else { "N/A" }
					dns_servers = if ($dns) { $dns } else { "N/A" }
					mac_address = if ($_.MacAddress) { $_.MacAddress } else { "N/A" }
					status = "$($_.Status)"
				}
			} | ConvertTo-Json -Compress
	`}
}

// TempInfo reports size and file count of the temp and browser cache folders.
func TempInfo() Command {
	return Command{Name: CmdTempInfo, Script: `
		$folders = @(
			@{ path = $env:TEMP; name = 'User Temp' },
			@{ path = "$env:SystemRoot\Temp"; name = 'Windows Temp' },
			@{ path = "$env:LOCALAPPDATA\Microsoft\Windows\INetCache"; name = 'IE Cache' }
		)
		$folders | Where-Object { $_.path -and (Test-Path $_.path) } |
			ForEach-Object {
				$files = Get-ChildItem -Path $_.path -Recurse -File -Force -ErrorAction SilentlyContinue
				$size = ($files | Measure-Object -Property Length -Sum).Sum
				@{
					name = $_.name
					path = $_.path
					size_mb = [math]::Round($size / 1MB, 2)
					file_count = @($files).Count
				}
			} | ConvertTo-Json -Compress
	`}
}

// CleanTempFiles deletes unlocked files from the user and Windows temp
// folders, then removes directories left empty. Locked files are skipped.
func CleanTempFiles() Command {
	return Command{Name: CmdCleanTempFiles, Script: `
		$deleted = 0
		$freed = 0
		$errors = @()
		foreach ($folder in @($env:TEMP, "$env:SystemRoot\Temp")) {
			if (-not $folder -or -not (Test-Path $folder)) { continue }
			Get-ChildItem -Path $folder -Recurse -File -Force -ErrorAction SilentlyContinue |
				ForEach-Object {
					$size = $_.Length
					try {
						Remove-Item -LiteralPath $_.FullName -Force -ErrorAction Stop
						$deleted++
						$freed += $size
					} catch {}
				}
			Get-ChildItem -Path $folder -Recurse -Directory -Force -ErrorAction SilentlyContinue |
				Sort-Object { $_.FullName.Length } -Descending |
				Where-Object { -not (Get-ChildItem -LiteralPath $_.FullName -Force -ErrorAction SilentlyContinue) } |
				ForEach-Object {
					try { Remove-Item -LiteralPath $_.FullName -Force -ErrorAction Stop } catch { $errors += $_.Exception.Message }
				}
		}
		@{
			deleted_count = $deleted
			freed_mb = [math]::Round($freed / 1MB, 2)
			errors = $errors
		} | ConvertTo-Json -Compress
	`}
}

// WifiProfiles lists saved wireless profiles with their security settings.
// Keys are never requested.
func WifiProfiles() Command {
	return Command{Name: CmdWifiProfiles, Script: `
		netsh wlan show profiles 2>$null |
			Select-String 'All User Profile\s*:\s*(.+)$' |
			ForEach-Object {
				$ssid = $_.Matches.Groups[1].Value.Trim()
				$detail = netsh wlan show profile name="$ssid" 2>$null
				$auth = ($detail | Select-String 'Authentication\s*:\s*(.+)$' | Select-Object -First 1)
				$cipher = ($detail | Select-String 'Cipher\s*:\s*(.+)$' | Select-Object -First 1)
				@{
					ssid = $ssid
					authentication = if ($auth) { $auth.Matches.Groups[1].Value.Trim() } else { 'Unknown' }
					encryption = if ($cipher) { $cipher.Matches.Groups[1].Value.Trim() } else { 'Unknown' }
				}
			} | ConvertTo-Json -Compress
	`}
}
