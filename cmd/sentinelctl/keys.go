package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/spf13/cobra"
)

func (c *cli) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage console API keys",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create an API key (shown only once)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := validate.Struct(domain.CreateAPIKeyRequest{Name: args[0]}); err != nil {
					return err
				}
				resp, out, err := c.app.APIKeys.Create(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, warning := range out.Warnings {
					fmt.Fprintf(c.errOut, "Warning: %s\n", warning)
				}
				if c.jsonMode {
					return c.printJSON(resp)
				}
				fmt.Fprintf(c.out, "ID:  %s\nKey: %s\n", resp.ID, resp.Key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List API keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				keys, err := c.app.APIKeys.List(cmd.Context())
				if err != nil {
					return err
				}
				return c.table(keys, "ID\tNAME\tPREFIX\tCREATED\tLAST USED", func(w *tabwriter.Writer) {
					for _, k := range keys {
						lastUsed := "never"
						if k.LastUsedAt != nil {
							lastUsed = k.LastUsedAt.Format(time.RFC3339)
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", k.ID, k.Name, k.KeyPrefix, k.CreatedAt.Format(time.RFC3339), lastUsed)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete an API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := c.app.APIKeys.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.outcome(out, "API key deleted.")
			},
		},
	)

	return cmd
}
