package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nathanbeddoewebdev/revdash/cmd/commands/apps"
	"nathanbeddoewebdev/revdash/cmd/commands/auth"
	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"
	cfgcmd "nathanbeddoewebdev/revdash/cmd/commands/config"
	"nathanbeddoewebdev/revdash/cmd/commands/dash"
	"nathanbeddoewebdev/revdash/cmd/commands/widget"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "revdash",
		Short: "A terminal dashboard for subscription revenue across your apps",
		Long: `revdash shows subscription analytics for several apps at once. Metrics
from the selected apps are fetched concurrently and summed into a single
dashboard, which you can browse interactively, export, or reduce to a one-line
widget.

Quick start:
  revdash auth login               # Sign in and fetch your apps
  revdash apps select              # Choose up to 10 apps
  revdash dash                     # Interactive dashboard
  revdash widget --metric mrr      # One line, refreshed every 10 minutes`,
	}

	cmd.PersistentFlags().String(cmdutil.LogLevelFlag, "", "Log level: debug, info, warn or error (default from config)")

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(apps.NewCommand())
	cmd.AddCommand(dash.NewCommand())
	cmd.AddCommand(widget.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root = rootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
