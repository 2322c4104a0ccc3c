package config

import (
	"nathanbeddoewebdev/revdash/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage revdash configuration",
		Long: "View and modify persistent revdash settings.\n\n" +
			"Configuration is stored at ~/.config/revdash/config.json. Each key can\n" +
			"be overridden for one run with a REVDASH_<KEY> environment variable\n" +
			"(for example REVDASH_DEFAULT_PERIOD).\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())
	cmd.AddCommand(ListCommand())
	cmd.AddCommand(UnsetCommand())

	return cmd
}
