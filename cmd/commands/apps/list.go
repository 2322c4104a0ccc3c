package apps

import (
	"encoding/json"
	"fmt"
	"slices"
	"text/tabwriter"

	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/swrcache"

	"github.com/spf13/cobra"
)

// appRow is the JSON shape of one listed app.
type appRow struct {
	domain.Application
	Platform string `json:"platform,omitempty"`
	Selected bool   `json:"selected"`
}

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the apps in your account",
		Long: `List the apps in your account. The list is cached; a cached list is
shown immediately and refreshed in the background. Use --refresh to fetch it
now.

Examples:
  revdash apps list
  revdash apps list -o json --refresh`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	cmd.Flags().Bool("refresh", false, "Fetch the app list instead of using the cache")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unknown output format %q (valid: table, json)", output)
	}
	refresh, _ := cmd.Flags().GetBool("refresh")

	d, err := cmdutil.Deps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	apps, src, err := d.Account.Apps(cmd.Context(), refresh)
	if err != nil {
		return cmdutil.Explain(fmt.Errorf("failed to list apps: %w", err))
	}

	store := d.Session()
	if err := store.Load(cmd.Context()); err != nil {
		return err
	}
	if err := store.SetApps(cmd.Context(), apps); err != nil {
		return err
	}
	selected := store.Snapshot().SelectedIDs()

	rows := make([]appRow, len(apps))
	for i, a := range apps {
		rows[i] = appRow{Application: a, Platform: a.Platform(), Selected: slices.Contains(selected, a.ID)}
	}

	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No apps found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPLATFORM\tSELECTED")
	fmt.Fprintln(w, "--\t----\t--------\t--------")
	for _, r := range rows {
		mark := ""
		if r.Selected {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Platform, mark)
	}
	w.Flush()

	if src != swrcache.SourceNetwork {
		fmt.Fprintf(cmd.ErrOrStderr(), "(from %s)\n", src)
	}
	return nil
}
