// Package widget prints a single dashboard metric on a schedule, one line per
// refresh, for use in status bars and terminal multiplexers.
package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/session"
)

// Messages shown instead of a value.
const (
	MsgLoginFirst   = "Please, open app and login first"
	MsgFetchFailed  = "Couldn't fetch dashboard"
	MsgUnknownValue = "Unknown Value"
	MsgSingleApp    = "only available for a single app"
)

// Metric is a metric the widget can display.
type Metric string

const (
	Sales        Metric = "sales"
	Proceeds     Metric = "proceeds"
	GrossRevenue Metric = "gross-revenue"
	MRR          Metric = "mrr"
	Refunds      Metric = "refunds"
	Trials       Metric = "trials"
	Regulars     Metric = "regulars"
	ARPU         Metric = "arpu"
	ARPPU        Metric = "arppu"
)

// apiNames maps widget metrics to the metric names the API reports.
var apiNames = map[Metric]string{
	Sales:        "Sales",
	Proceeds:     "Proceeds",
	GrossRevenue: "Gross Revenue",
	MRR:          "Monthly Recurring Revenue",
	Refunds:      "Refunds",
	Trials:       "New Trials",
	Regulars:     "New Regular Subscriptions",
	ARPU:         "ARPU",
	ARPPU:        "ARPPU",
}

// Metrics returns the known widget metrics.
func Metrics() []Metric {
	return []Metric{Sales, Proceeds, GrossRevenue, MRR, Refunds, Trials, Regulars, ARPU, ARPPU}
}

// ParseMetric resolves a metric key. Names that are not known keys are
// treated as API metric names and matched as-is.
func ParseMetric(s string) (Metric, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("metric is required: %w", domain.ErrValidation)
	}
	key := Metric(strings.ReplaceAll(strings.ToLower(s), "_", "-"))
	if _, ok := apiNames[key]; ok {
		return key, nil
	}
	return Metric(s), nil
}

// APIName is the metric name as the API reports it.
func (m Metric) APIName() string {
	if name, ok := apiNames[m]; ok {
		return name
	}
	return string(m)
}

// PerApp reports whether the metric is a ratio that cannot be combined
// across apps, so it only has a value when one app is selected.
func (m Metric) PerApp() bool {
	return m == ARPU || m == ARPPU
}

// Source is the session the widget reads from.
type Source interface {
	Refresh(ctx context.Context) error
	Snapshot() session.State
}

// Widget renders one metric from a Source.
type Widget struct {
	src      Source
	metric   Metric
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Widget.
type Option func(*Widget)

// WithClock sets the clock used for the "checked" time.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

// WithLogger sets the logger used to report refresh failures.
func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Widget that refreshes every interval.
func New(src Source, metric Metric, interval time.Duration, opts ...Option) *Widget {
	w := &Widget{
		src:      src,
		metric:   metric,
		interval: interval,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Line refreshes the source and renders the widget line. Per-app metrics
// with more than one app selected are reported without fetching.
func (w *Widget) Line(ctx context.Context) string {
	label := w.metric.APIName()
	if w.metric.PerApp() && len(w.src.Snapshot().Selected) > 1 {
		return label + ": " + MsgSingleApp
	}

	err := w.src.Refresh(ctx)
	if errors.Is(err, domain.ErrNotLoggedIn) || errors.Is(err, domain.ErrUnauthorized) {
		return MsgLoginFirst
	}

	st := w.src.Snapshot()
	if err != nil || !st.HasDashboard() {
		if err != nil {
			w.logger.Warn("widget refresh failed", "error", err)
		}
		return label + ": " + MsgFetchFailed
	}

	value := MsgUnknownValue
	if m, ok := st.Dashboard.MetricValue(label); ok {
		value = m.FormattedValue()
	}

	return fmt.Sprintf("%s: %s  (%s, %s, checked %s)",
		label, value, appList(st.Selected), periodLabel(st), w.now().Local().Format("15:04"))
}

// Run prints a line immediately and then once per interval until ctx is
// cancelled.
func (w *Widget) Run(ctx context.Context, out io.Writer) error {
	if w.interval <= 0 {
		return fmt.Errorf("interval must be positive: %w", domain.ErrValidation)
	}
	if _, err := fmt.Fprintln(out, w.Line(ctx)); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprintln(out, w.Line(ctx)); err != nil {
				return err
			}
		}
	}
}

func appList(apps []domain.Application) string {
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func periodLabel(st session.State) string {
	if st.Custom {
		return st.Range.String()
	}
	return st.Period.Title()
}
