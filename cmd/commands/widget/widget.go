package widget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"nathanbeddoewebdev/revdash/cmd/commands/cmdutil"
	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/period"
	"nathanbeddoewebdev/revdash/internal/session"
	"nathanbeddoewebdev/revdash/internal/util"
	"nathanbeddoewebdev/revdash/internal/widget"

	"github.com/spf13/cobra"
)

// NewCommand returns the "widget" command.
func NewCommand() *cobra.Command {
	metrics := make([]string, 0, len(widget.Metrics()))
	for _, m := range widget.Metrics() {
		metrics = append(metrics, string(m))
	}

	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Print one metric on a schedule",
		Long: `Print a single metric of the selected apps as one line, then again every
interval. Suited to status bars and tmux.

Metrics: ` + strings.Join(metrics, ", ") + `

arpu and arppu cannot be combined across apps; with more than one app
selected the line reads "only available for a single app".

Examples:
  revdash widget
  revdash widget --metric mrr --once
  revdash widget --metric proceeds --period this-month --interval 5m`,
		Args:         cobra.NoArgs,
		RunE:         runWidget,
		SilenceUsage: true,
	}

	cmd.Flags().String("metric", "", "Metric to show (default from config)")
	cmd.Flags().String("period", "", "Named period (default from config)")
	cmd.Flags().StringSlice("app", nil, "App ids for this run instead of the saved selection")
	cmd.Flags().Duration("interval", 0, "Refresh interval (default from config)")
	cmd.Flags().Bool("once", false, "Print a single line and exit")

	return cmd
}

func runWidget(cmd *cobra.Command, args []string) error {
	d, err := cmdutil.Deps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	metricName, _ := cmd.Flags().GetString("metric")
	if metricName == "" {
		metricName = d.Config.Metric()
	}
	metric, err := widget.ParseMetric(metricName)
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval == 0 {
		interval = d.Config.Interval()
	}
	if interval < time.Minute {
		return fmt.Errorf("interval must be at least 1m: %w", domain.ErrValidation)
	}

	var opts []session.Option
	if name, _ := cmd.Flags().GetString("period"); name != "" {
		p, err := period.Parse(name)
		if err != nil {
			return err
		}
		opts = append(opts, session.WithPeriod(p))
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	store, err := cmdutil.LoadSession(ctx, d, opts...)
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn), errors.Is(err, domain.ErrUnauthorized):
		fmt.Fprintln(out, widget.MsgLoginFirst)
		return nil
	case err != nil:
		d.Logger.Warn("failed to load apps", "error", err)
		store = d.Scratch(opts...)
	}

	var appIDs []string
	flagApps, _ := cmd.Flags().GetStringSlice("app")
	for _, v := range flagApps {
		appIDs = append(appIDs, util.SplitList(v)...)
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

	w := widget.New(store, metric, interval, widget.WithLogger(d.Logger))
	if once, _ := cmd.Flags().GetBool("once"); once {
		fmt.Fprintln(out, w.Line(ctx))
		return nil
	}
	return w.Run(ctx, out)
}
