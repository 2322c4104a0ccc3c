package config

import (
	"fmt"
	"os"
	"text/tabwriter"

	"nathanbeddoewebdev/revdash/internal/config"

	"github.com/spf13/cobra"
)

// ListCommand returns the "config list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List all configuration values",
		Long:         "List every configuration key with its stored value and any environment override.",
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tDEFAULT\tENV OVERRIDE")
	fmt.Fprintln(w, "---\t-----\t-------\t------------")
	for _, spec := range config.Keys {
		value := spec.Get(cfg)
		if value == "" {
			value = "(not set)"
		}
		override := ""
		if v, ok := os.LookupEnv(spec.EnvVar()); ok {
			override = spec.EnvVar() + "=" + v
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spec.Name, value, spec.Default, override)
	}
	return w.Flush()
}
