package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/tui"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your analytics account",
		Long: `Sign in with your email and password. The session tokens are stored in
the system keychain and your app list is fetched.

In a terminal a form asks for the credentials. Otherwise pass --email and
pipe the password on stdin.

Examples:
  revdash auth login
  echo "$PASSWORD" | revdash auth login --email me@example.com`,
		Args:         cobra.NoArgs,
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("email", "", "Account email (optional, pre-fills the prompt)")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	email = strings.TrimSpace(email)

	var (
		password string
		err      error
	)
	interactive := cmdutil.Interactive()
	if interactive {
		creds, ferr := tui.LoginForm(email)
		if ferr != nil {
			return ferr
		}
		email, password = creds.Email, creds.Password
	} else {
		if email == "" {
			return fmt.Errorf("--email is required when not running in a terminal")
		}
		password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	d, err := cmdutil.Deps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	var (
		user domain.User
		apps []domain.Application
	)
	login := func(ctx context.Context) error {
		var lerr error
		if user, lerr = d.Account.Login(ctx, email, password); lerr != nil {
			return lerr
		}
		apps, _, lerr = d.Account.Apps(ctx, true)
		return lerr
	}

	if interactive {
		err = tui.WithSpinner(cmd.Context(), "Signing in...", login)
	} else {
		err = login(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	store := d.Session()
	if err := store.Load(cmd.Context()); err != nil {
		return err
	}
	if err := store.SetApps(cmd.Context(), apps); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayUser(user))
	fmt.Fprintf(cmd.OutOrStdout(), "Found %d apps, %d selected\n", len(apps), len(store.Snapshot().Selected))
	return nil
}

// readPassword reads the password from the terminal without echo, or the
// first line of r when stdin is not a terminal.
func readPassword(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return line, nil
}

func displayUser(u domain.User) string {
	if u.Name != "" && u.Email != "" {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
