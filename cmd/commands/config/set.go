package config

import (
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/revdash/internal/config"
	"nathanbeddoewebdev/revdash/internal/util"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  revdash config set default-period last-7-days\n" +
			"  revdash config set widget-interval 5m",
		Args: cobra.ExactArgs(2),
		Run:  runSet,
	}

	return cmd
}

func runSet(cmd *cobra.Command, args []string) {
	spec := config.Lookup(util.NormalizeKey(args[0]))
	if spec == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown configuration key %q\n", args[0])
		fmt.Fprintf(cmd.ErrOrStderr(), "Valid keys: %s\n", strings.Join(config.KeyNames(), ", "))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	if err := spec.Apply(cfg, args[1]); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: invalid value for %s: %v\n", spec.Name, err)
		return
	}
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", spec.Name, spec.Get(cfg))
	warnOverride(cmd, spec)
}

// warnOverride notes when the environment shadows the stored value.
func warnOverride(cmd *cobra.Command, spec *config.KeySpec) {
	if v, ok := os.LookupEnv(spec.EnvVar()); ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s=%s overrides this value in the current shell\n", spec.EnvVar(), v)
	}
}
