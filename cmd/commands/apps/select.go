package apps

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"
	"nathanbeddoewebdev/revdash/internal/tui"
	"nathanbeddoewebdev/revdash/internal/util"

	"github.com/spf13/cobra"
)

func SelectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select [app-id...]",
		Short: "Choose the apps to aggregate",
		Long: `Choose which apps the dashboard and widget aggregate. Pass app ids
(space or comma separated), or run without arguments in a terminal to pick
from a list. At most 10 apps can be selected.

Examples:
  revdash apps select
  revdash apps select app_1 app_2`,
		RunE:         runSelect,
		SilenceUsage: true,
	}

	return cmd
}

func runSelect(cmd *cobra.Command, args []string) error {
	var ids []string
	for _, arg := range args {
		ids = append(ids, util.SplitList(arg)...)
	}
	if len(ids) == 0 && !cmdutil.Interactive() {
		return fmt.Errorf("app ids are required when not running in a terminal")
	}

	d, err := cmdutil.Deps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	store, err := cmdutil.LoadSession(cmd.Context(), d)
	if err != nil {
		return cmdutil.Explain(fmt.Errorf("failed to load apps: %w", err))
	}
	st := store.Snapshot()

	if len(ids) == 0 {
		ids, err = tui.SelectAppsForm(st.Apps, st.SelectedIDs())
		if err != nil {
			return err
		}
	}

	if err := store.Choose(ids); err != nil {
		return err
	}

	selected := store.Snapshot().Selected
	names := make([]string, len(selected))
	for i, a := range selected {
		names[i] = a.Name
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Selected %d apps: %s\n", len(selected), strings.Join(names, ", "))
	return nil
}
