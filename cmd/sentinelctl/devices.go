package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/validation"
	"github.com/spf13/cobra"
)

var validate = validation.New()

func (c *cli) devicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List connected USB devices and change their trust",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List connected devices with their trust status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				devices, err := c.app.Inventory.ListDevices(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(devices, "INSTANCE ID\tNAME\tCLASS\tSTATUS\tTRUSTED", func(w *tabwriter.Writer) {
					for _, d := range devices {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.InstanceID, d.FriendlyName, d.DeviceClass, d.Status, yesNo(d.IsTrusted))
					}
				})
			},
		},
		&cobra.Command{
			Use:   "authorize INSTANCE_ID [NAME]",
			Short: "Add a device to the whitelist",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				req := domain.AuthorizeDeviceRequest{InstanceID: args[0]}
				if len(args) == 2 {
					req.FriendlyName = args[1]
				}
				if err := validate.Struct(req); err != nil {
					return err
				}
				out, err := c.app.Devices.AuthorizeDevice(cmd.Context(), req)
				if err != nil {
					return err
				}
				return c.outcome(out, "Device trusted.")
			},
		},
		&cobra.Command{
			Use:   "revoke INSTANCE_ID",
			Short: "Remove a device from the whitelist (does not disable it)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := validation.ValidateInstanceID(args[0]); err != nil {
					return err
				}
				out, err := c.app.Devices.RevokeDevice(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.outcome(out, "Device removed from whitelist.")
			},
		},
		c.deviceActionCmd("enable", "Enable a device at the driver level", "Device enabled.", func(cmd *cobra.Command, id string) (domain.Outcome, error) {
			return c.app.Devices.EnableDevice(cmd.Context(), id)
		}),
		c.deviceActionCmd("disable", "Disable a device at the driver level", "Device blocked.", func(cmd *cobra.Command, id string) (domain.Outcome, error) {
			return c.app.Devices.DisableDevice(cmd.Context(), id)
		}),
	)

	return cmd
}

func (c *cli) deviceActionCmd(use, short, done string, action func(*cobra.Command, string) (domain.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " INSTANCE_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(domain.DeviceActionRequest{InstanceID: args[0]}); err != nil {
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

func (c *cli) whitelistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Inspect or reset the trusted device list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List trusted devices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				entries, err := c.app.Whitelist.List(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(entries, "INSTANCE ID\tNAME\tADDED", func(w *tabwriter.Writer) {
					for _, e := range entries {
						fmt.Fprintf(w, "%s\t%s\t%s\n", e.InstanceID, e.FriendlyName, e.AddedAt)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every device from the whitelist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := c.app.Whitelist.Clear(cmd.Context())
				if err != nil {
					return err
				}
				return c.outcome(out, "Whitelist cleared.")
			},
		},
	)

	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the current security posture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := c.app.Dashboard.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonMode {
				return c.printJSON(stats)
			}

			status := "SECURE"
			if !stats.IsSecure {
				status = "AT RISK"
			}
			fmt.Fprintf(c.out, "Status:            %s\n", status)
			fmt.Fprintf(c.out, "Devices:           %d (%d trusted, %d untrusted)\n", stats.TotalDevices, stats.TrustedDevices, stats.UntrustedDevices)
			fmt.Fprintf(c.out, "Audit events:      %d (%d blocked)\n", stats.TotalEvents, stats.BlockedEvents)
			return nil
		},
	}
}
