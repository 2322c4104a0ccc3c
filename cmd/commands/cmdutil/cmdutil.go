// Package cmdutil holds helpers shared by the revdash subcommands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"os"

	"nathanbeddoewebdev/revdash/internal/app"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/session"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// LogLevelFlag is the persistent flag that overrides the configured log level.
const LogLevelFlag = "log-level"

// Deps builds the dependencies for cmd, honouring global flags.
func Deps(cmd *cobra.Command) (*app.Deps, error) {
	var opts app.Options
	if f := cmd.Flag(LogLevelFlag); f != nil {
		opts.LogLevel = f.Value.String()
	}
	return app.Build(cmd.Context(), opts)
}

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Explain adds a next step to errors the user can act on.
func Explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotLoggedIn):
		return fmt.Errorf("%w (run `revdash auth login`)", err)
	case errors.Is(err, domain.ErrUnauthorized):
		return fmt.Errorf("%w: session expired (run `revdash auth login`)", err)
	case errors.Is(err, session.ErrNoSelection):
		return fmt.Errorf("%w (run `revdash apps select`)", err)
	}
	return err
}

// LoadSession restores the saved selection. When no apps are known yet the
// app list is fetched first.
func LoadSession(ctx context.Context, d *app.Deps, opts ...session.Option) (*session.Store, error) {
	store := d.Session(opts...)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	if len(store.Snapshot().Apps) > 0 {
		return store, nil
	}

	apps, _, err := d.Account.Apps(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := d.Repo.SaveAppList(apps); err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
