package main

import (
	"io"

	"github.com/bcnelson/sentinelguard/internal/app"
	"github.com/bcnelson/sentinelguard/internal/config"
	"github.com/bcnelson/sentinelguard/internal/logging"
	"github.com/spf13/cobra"
)

// appFactory opens the application; tests substitute an in-memory one.
type appFactory func() (*app.App, error)

// cli carries the state shared by every command.
type cli struct {
	open     appFactory
	app      *app.App
	jsonMode bool
	out      io.Writer
	errOut   io.Writer
}

// openApp loads configuration from the environment like the server does.
func openApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Diagnostics go to stderr so command output stays parseable.
	cfg.Log.Output = "stderr"
	if cfg.Log.Level == "" || cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	if err := logging.Init(cfg.Log); err != nil {
		return nil, err
	}

	return app.New(cfg)
}

func newRootCmd(open appFactory) *cobra.Command {
	c := &cli{open: open}

	rootCmd := &cobra.Command{
		Use:           "sentinelctl",
		Short:         "Operate the SentinelGuard device trust console from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.out = cmd.OutOrStdout()
			c.errOut = cmd.ErrOrStderr()
			a, err := c.open()
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&c.jsonMode, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		c.devicesCmd(),
		c.whitelistCmd(),
		c.logsCmd(),
		c.dashboardCmd(),
		c.hostCmd(),
		c.keysCmd(),
	)

	return rootCmd
}
