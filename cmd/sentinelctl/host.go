package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/spf13/cobra"
)

func (c *cli) hostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Inspect and harden the local host",
	}

	cmd.AddCommand(
		c.firewallCmd(),
		c.processesCmd(),
		c.servicesCmd(),
		c.tempCmd(),
		&cobra.Command{
			Use:   "wifi",
			Short: "List saved Wi-Fi profiles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				profiles, err := c.app.Host.ListWifiProfiles(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(profiles, "SSID	AUTHENTICATION	ENCRYPTION", func(w *tabwriter.Writer) {
					for _, p := range profiles {
						fmt.Fprintf(w, "%s\t%s\t%s\n", p.SSID, p.Authentication, p.Encryption)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "startup",
			Short: "List programs launched at logon",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				programs, err := c.app.Host.ListStartupPrograms(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(programs, "NAME\tUSER\tLOCATION\tCOMMAND", func(w *tabwriter.Writer) {
					for _, p := range programs {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.User, p.Location, p.Command)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "network",
			Short: "List active physical network adapters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				adapters, err := c.app.Host.ListNetworkAdapters(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(adapters, "ADAPTER\tIP\tMASK\tGATEWAY\tDNS\tMAC", func(w *tabwriter.Writer) {
					for _, a := range adapters {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.AdapterName, a.IPAddress, a.SubnetMask, a.Gateway, a.DNSServers, a.MACAddress)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "system",
			Short: "Show operating system and hardware information",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				info, err := c.app.Host.SystemInfo(cmd.Context())
				if err != nil {
					return err
				}
				if c.jsonMode {
					return c.printJSON(info)
				}
				fmt.Fprintf(c.out, "Computer:  %s (%s)\n", info.ComputerName, info.Username)
				fmt.Fprintf(c.out, "OS:        %s %s\n", info.OSName, info.OSVersion)
				fmt.Fprintf(c.out, "CPU:       %s (%d cores, %d threads)\n", info.CPUName, info.CPUCores, info.CPUThreads)
				fmt.Fprintf(c.out, "Memory:    %.2f GB free of %.2f GB\n", info.AvailableRAMGB, info.TotalRAMGB)
				fmt.Fprintf(c.out, "Disk:      %.2f GB free of %.2f GB\n", info.DiskFreeGB, info.DiskTotalGB)
				fmt.Fprintf(c.out, "Uptime:    %.1f h (since %s)\n", info.UptimeHours, info.LastBoot)
				return nil
			},
		},
	)

	return cmd
}

func (c *cli) tempCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "temp",
		Short: "Temp folder usage and cleanup",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the size of temp and cache folders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				folders, err := c.app.Host.ListTempFolders(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(folders, "NAME\tSIZE MB\tFILES\tPATH", func(w *tabwriter.Writer) {
					for _, f := range folders {
						fmt.Fprintf(w, "%s\t%.2f\t%d\t%s\n", f.Name, f.SizeMB, f.FileCount, f.Path)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Delete unlocked files from the temp folders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				result, err := c.app.Host.CleanTempFiles(cmd.Context())
				if err != nil {
					return err
				}
				for _, e := range result.Errors {
					fmt.Fprintf(c.errOut, "Skipped: %s\n", e)
				}
				if c.jsonMode {
					for _, warning := range result.Warnings {
						fmt.Fprintf(c.errOut, "Warning: %s\n", warning)
					}
					return c.printJSON(result)
				}
				return c.outcome(result.Outcome, fmt.Sprintf("Deleted %d files, %.2f MB freed.", result.DeletedCount, result.FreedMB))
			},
		},
	)

	return cmd
}

func (c *cli) firewallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firewall",
		Short: "Windows Firewall status and rules",
	}

	var protocol, ruleName string
	blockCmd := &cobra.Command{
		Use:   "block PORT",
		Short: "Create an inbound block rule for a port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: port must be a number", domain.ErrInvalidInput)
			}
			req := domain.BlockPortRequest{Port: port, Protocol: strings.ToUpper(protocol), RuleName: ruleName}
			if req.RuleName == "" {
				req.RuleName = fmt.Sprintf("SentinelGuard Block %s %d", req.Protocol, port)
			}
			if err := validate.Struct(req); err != nil {
				return err
			}
			out, err := c.app.Host.BlockPort(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.outcome(out, "Port blocked.")
		},
	}
	blockCmd.Flags().StringVar(&protocol, "protocol", "TCP", "TCP or UDP")
	blockCmd.Flags().StringVar(&ruleName, "name", "", "rule display name")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether each firewall profile is enabled",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				status, err := c.app.Host.FirewallStatus(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(status, "DOMAIN\tPRIVATE\tPUBLIC", func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "%s\t%s\t%s\n", yesNo(status.DomainEnabled), yesNo(status.PrivateEnabled), yesNo(status.PublicEnabled))
				})
			},
		},
		&cobra.Command{
			Use:   "rules",
			Short: "List firewall rules",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rules, err := c.app.Host.ListFirewallRules(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(rules, "NAME\tENABLED\tDIRECTION\tACTION\tPROTOCOL\tPORT", func(w *tabwriter.Writer) {
					for _, r := range rules {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Name, yesNo(r.Enabled), r.Direction, r.Action, r.Protocol, r.LocalPort)
					}
				})
			},
		},
		blockCmd,
		&cobra.Command{
			Use:   "remove NAME",
			Short: "Remove a firewall rule by display name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := validate.Struct(domain.RemoveRuleRequest{RuleName: args[0]}); err != nil {
					return err
				}
				out, err := c.app.Host.RemoveFirewallRule(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.outcome(out, "Rule removed.")
			},
		},
		&cobra.Command{
			Use:   "logging",
			Short: "Log allowed and blocked connections on every profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := c.app.Host.EnableFirewallLogging(cmd.Context())
				if err != nil {
					return err
				}
				return c.outcome(out, "Firewall logging enabled.")
			},
		},
	)

	return cmd
}

func (c *cli) processesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "processes",
		Short: "High-memory processes",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List processes using more than 100 MB",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				procs, err := c.app.Host.ListHighMemoryProcesses(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(procs, "PID\tNAME\tCPU\tMEMORY MB\tPATH", func(w *tabwriter.Writer) {
					for _, p := range procs {
						fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\t%s\n", p.ID, p.Name, p.CPUPercent, p.MemoryMB, p.Path)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "kill PID",
			Short: "Force-stop a process",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pid, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("%w: PID must be a number", domain.ErrInvalidInput)
				}
				if err := validate.Struct(domain.KillProcessRequest{PID: pid}); err != nil {
					return err
				}
				out, err := c.app.Host.KillProcess(cmd.Context(), pid)
				if err != nil {
					return err
				}
				return c.outcome(out, "Process killed.")
			},
		},
	)

	return cmd
}

func (c *cli) servicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Critical Windows services",
	}

	serviceAction := func(use, short, done string, action func(*cobra.Command, string) (domain.Outcome, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " NAME",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := validate.Struct(domain.ServiceActionRequest{Name: args[0]}); err != nil {
					return err
				}
				out, err := action(cmd, args[0])
				if err != nil {
					return err
				}
				return c.outcome(out, done)
			},
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the state of the critical services",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				services, err := c.app.Host.ListCriticalServices(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(services, "NAME\tDISPLAY NAME\tSTATUS\tSTART TYPE", func(w *tabwriter.Writer) {
					for _, s := range services {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.DisplayName, s.Status, s.StartType)
					}
				})
			},
		},
		serviceAction("restart", "Restart a service", "Service restarted.", func(cmd *cobra.Command, name string) (domain.Outcome, error) {
			return c.app.Host.RestartService(cmd.Context(), name)
		}),
		serviceAction("start", "Start a stopped service", "Service started.", func(cmd *cobra.Command, name string) (domain.Outcome, error) {
			return c.app.Host.StartService(cmd.Context(), name)
		}),
	)

	return cmd
}
