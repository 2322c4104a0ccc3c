package dash

import (
	"fmt"
	"slices"
	"strings"

	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"
	"nathanbeddoewebdev/revdash/internal/period"
	"nathanbeddoewebdev/revdash/internal/session"
	"nathanbeddoewebdev/revdash/internal/tui"
	"nathanbeddoewebdev/revdash/internal/util"

	"github.com/spf13/cobra"
)

var formats = []string{"tui", "table", "json", "yaml", "csv"}

// NewCommand returns the "dash" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Show the combined dashboard of the selected apps",
		Long: `Show the dashboard of the selected apps, with every metric summed across
apps. In a terminal an interactive view opens; otherwise a table is printed.

Periods: ` + strings.Join(period.Names(), ", ") + `

Examples:
  revdash dash
  revdash dash --period last-7-days -o table
  revdash dash --from 2024-01-01 --to 2024-01-31 -o json
  revdash dash --app app_1 --app app_2 -o csv`,
		Args:         cobra.NoArgs,
		RunE:         runDash,
		SilenceUsage: true,
	}

	cmd.Flags().String("period", "", "Named period (default from config)")
	cmd.Flags().String("from", "", "Custom range start (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().String("to", "", "Custom range end (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringSlice("app", nil, "App ids for this run instead of the saved selection")
	cmd.Flags().StringP("output", "o", "", "Output format: "+strings.Join(formats, ", ")+" (default tui in a terminal, table otherwise)")

	return cmd
}

func runDash(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
		if cmdutil.Interactive() {
			output = "tui"
		}
	}
	if !slices.Contains(formats, output) {
		return fmt.Errorf("unknown output format %q (valid: %s)", output, strings.Join(formats, ", "))
	}

	opts, err := rangeOptions(cmd)
	if err != nil {
		return err
	}

	var appIDs []string
	flagApps, _ := cmd.Flags().GetStringSlice("app")
	for _, v := range flagApps {
		appIDs = append(appIDs, util.SplitList(v)...)
	}

	d, err := cmdutil.Deps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	store, err := cmdutil.LoadSession(ctx, d, opts...)
	if err != nil {
		return cmdutil.Explain(fmt.Errorf("failed to load apps: %w", err))
	}

	if len(appIDs) > 0 {
		scratch := d.Scratch(opts...)
		if err := scratch.SetApps(ctx, store.Snapshot().Apps); err != nil {
			return err
		}
		if err := scratch.Choose(appIDs); err != nil {
			return err
		}
		store = scratch
	}

	if output == "tui" {
		return tui.RunDashboard(ctx, store)
	}

	if cmdutil.Interactive() {
		err = tui.WithSpinner(ctx, "Fetching dashboard...", store.Refresh)
	} else {
		err = store.Refresh(ctx)
	}
	if err != nil {
		return cmdutil.Explain(fmt.Errorf("failed to fetch dashboard: %w", err))
	}

	return writeReport(cmd.OutOrStdout(), output, newReport(store.Snapshot()))
}

// rangeOptions turns --period or --from/--to into store options.
func rangeOptions(cmd *cobra.Command) ([]session.Option, error) {
	name, _ := cmd.Flags().GetString("period")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	switch {
	case name != "" && (from != "" || to != ""):
		return nil, fmt.Errorf("use either --period or --from/--to, not both")
	case from != "" || to != "":
		if from == "" || to == "" {
			return nil, fmt.Errorf("--from and --to must be used together")
		}
		r, err := period.ParseRange(from, to)
		if err != nil {
			return nil, err
		}
		return []session.Option{session.WithRange(r)}, nil
	case name != "":
		p, err := period.Parse(name)
		if err != nil {
			return nil, err
		}
		return []session.Option{session.WithPeriod(p)}, nil
	}
	return nil, nil
}

