package auth

import (
	"fmt"

	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Long: `Sign out of the analytics API and remove the stored tokens, app list,
selection and cached data.

Example:
  revdash auth logout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cmdutil.Deps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Account.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
