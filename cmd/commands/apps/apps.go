package apps

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the "apps" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List and select the apps to aggregate",
		Long: `List the apps in your analytics account and choose which of them the
dashboard and widget aggregate (up to 10).`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(SelectCommand())

	return cmd
}
