package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/spf13/cobra"
)

func (c *cli) logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Read, append to, clear and export the audit log",
	}

	var deviceID string
	appendCmd := &cobra.Command{
		Use:   "append LEVEL MESSAGE",
		Short: "Append an event (LEVEL is INFO, WARN, BLOCK or ERROR)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.AppendEventRequest{
				Level:    domain.Level(strings.ToUpper(args[0])),
				Message:  strings.Join(args[1:], " "),
				DeviceID: deviceID,
			}
			if err := validate.Struct(req); err != nil {
				return err
			}
			event, err := c.app.Audit.Append(cmd.Context(), req.Level, req.Message, req.DeviceID)
			if err != nil {
				return err
			}
			if c.jsonMode {
				return c.printJSON(event)
			}
			fmt.Fprintf(c.out, "Recorded %s\n", event.ID)
			return nil
		},
	}
	appendCmd.Flags().StringVar(&deviceID, "device", "", "instance ID the event refers to")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List events, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				events, err := c.app.Audit.List(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(events, "TIME\tLEVEL\tMESSAGE\tDEVICE", func(w *tabwriter.Writer) {
					for _, e := range events {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp, e.Level, e.Message, e.DeviceID)
					}
				})
			},
		},
		appendCmd,
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every event",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.app.Audit.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Audit log cleared.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "export",
			Short: "Write the log to a timestamped JSON file in the data directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := c.app.Audit.Export(cmd.Context())
				if err != nil {
					return err
				}
				if c.jsonMode {
					return c.printJSON(domain.ExportResponse{Path: path})
				}
				fmt.Fprintln(c.out, path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Count events by level",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				stats, err := c.app.Audit.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(stats, "TOTAL\tINFO\tWARN\tBLOCK\tERROR", func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n", stats.Total, stats.Info, stats.Warn, stats.Block, stats.Error)
				})
			},
		},
	)

	return cmd
}
