package config

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/revdash/internal/config"
	"nathanbeddoewebdev/revdash/internal/util"

	"github.com/spf13/cobra"
)

// UnsetCommand returns the "config unset" command.
func UnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "unset <key>",
		Short:        "Reset a configuration value to its default",
		Args:         cobra.ExactArgs(1),
		RunE:         runUnset,
		SilenceUsage: true,
	}
}

func runUnset(cmd *cobra.Command, args []string) error {
	spec := config.Lookup(util.NormalizeKey(args[0]))
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q (valid: %s)", args[0], strings.Join(config.KeyNames(), ", "))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	spec.Reset(cfg)
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s reset to default (%s)\n", spec.Name, spec.Default)
	warnOverride(cmd, spec)
	return nil
}
