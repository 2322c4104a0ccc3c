package auth

import (
	"fmt"
	"os"

	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"
	"nathanbeddoewebdev/revdash/internal/tui"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in account",
		Long: `Show whether a session is stored and which account it belongs to.

Example:
  revdash auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cmdutil.Deps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			st, err := d.Account.Status()
			if err != nil {
				return fmt.Errorf("auth status failed: %w", err)
			}

			// Use TUI in interactive terminal.
			if term.IsTerminal(int(os.Stdout.Fd())) {
				if err := tui.RunAuthStatus(st, d.Config.BaseURL); err != nil {
					return fmt.Errorf("auth status failed: %w", err)
				}
				return nil
			}

			// Non-interactive fallback.
			out := cmd.OutOrStdout()
			if !st.LoggedIn {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			if st.User != nil {
				fmt.Fprintf(out, "Logged in as %s\n", displayUser(*st.User))
			} else {
				fmt.Fprintln(out, "Logged in")
			}
			if !st.HasRefreshToken {
				fmt.Fprintln(out, "No refresh token stored; sign in again when the session expires")
			}
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
