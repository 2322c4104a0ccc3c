// Package dashboard models the metric snapshots returned by the analytics
// API and the algorithms that stitch them together.
//
// A Dashboard is an ordered list of MetricGroups, each an ordered list of
// Metrics, each carrying one or more named Values. Dashboards are treated as
// immutable values: MergeGroups, CombineAcrossApps and Fold always build new
// dashboards and never modify their inputs.
package dashboard

import (
	"strings"
)

// Kind is the metric type reported by the API.
type Kind string

const (
	KindMoney         Kind = "money"
	KindSimple        Kind = "simple"
	KindSubscriptions Kind = "subscriptions"
	KindPercent       Kind = "percent"
)

// Well-known value names.
const (
	ValuePrimary  = "Value"
	ValueActive   = "Active"
	ValueInactive = "Inactive"
)

// Value is a single named number inside a Metric.
type Value struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Metric is one named business quantity. Value names are unique within a
// metric.
type Metric struct {
	Name        string  `json:"name" yaml:"name"`
	Kind        Kind    `json:"type" yaml:"type"`
	ChartID     string  `json:"chart_id,omitempty" yaml:"chart_id,omitempty"`
	Description string  `json:"description" yaml:"description"`
	Values      []Value `json:"values" yaml:"values"`
}

// Group is a display grouping of metrics. Item order is display order.
type Group struct {
	Name  string   `json:"name" yaml:"name"`
	Items []Metric `json:"items" yaml:"items"`
}

// Dashboard is the full set of groups for one app or portfolio and period.
type Dashboard struct {
	Groups []Group `json:"groups" yaml:"groups"`
}

// ValueNamed returns the value with the given name.
func (m Metric) ValueNamed(name string) (float64, bool) {
	for _, v := range m.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// Value returns the primary value, or 0 when the metric has none.
func (m Metric) Value() float64 {
	v, _ := m.ValueNamed(ValuePrimary)
	return v
}

// Active returns the active-subscription count for subscription metrics.
func (m Metric) Active() (int, bool) {
	v, ok := m.ValueNamed(ValueActive)
	return int(v), ok
}

// Inactive returns the inactive-subscription count for subscription metrics.
func (m Metric) Inactive() (int, bool) {
	v, ok := m.ValueNamed(ValueInactive)
	return int(v), ok
}

// IsMoney reports whether the metric is a currency amount.
func (m Metric) IsMoney() bool {
	return m.Kind == KindMoney
}

// FormattedValue renders the primary value for display.
func (m Metric) FormattedValue() string {
	return FormatValue(m.Kind, m.Value())
}

// recurringRevenueAliases are metric names the API uses for recurring revenue.
var recurringRevenueAliases = map[string]struct{}{
	"mrr":                       {},
	"monthly recurring revenue": {},
	"arr":                       {},
	"annual recurring revenue":  {},
}

// FormattedName is the display title of the group. The API files recurring
// revenue under a generic "Money" group; those are shown as
// "Recurring Revenue".
func (g Group) FormattedName() string {
	if g.Name == "Money" && len(g.Items) > 0 {
		if _, ok := recurringRevenueAliases[strings.ToLower(g.Items[0].Name)]; ok {
			return "Recurring Revenue"
		}
	}
	return g.Name
}

// UniqueName identifies single-metric groups by their metric name.
func (g Group) UniqueName() string {
	if len(g.Items) == 1 {
		return g.Items[0].Name
	}
	return g.Name
}

// IsEmpty reports whether the dashboard has no metrics at all.
func (d Dashboard) IsEmpty() bool {
	for _, g := range d.Groups {
		if len(g.Items) > 0 {
			return false
		}
	}
	return true
}

// MetricCount returns the total number of metrics across groups.
func (d Dashboard) MetricCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Items)
	}
	return n
}

// MetricValue finds a metric by display name, ignoring case. It is the
// lookup used for single-metric views such as the widget.
func (d Dashboard) MetricValue(name string) (Metric, bool) {
	for _, g := range d.Groups {
		for _, m := range g.Items {
			if strings.EqualFold(m.Name, name) {
				return m, true
			}
		}
	}
	return Metric{}, false
}

// Clone returns a deep copy of d.
func (d Dashboard) Clone() Dashboard {
	if d.Groups == nil {
		return Dashboard{}
	}
	groups := make([]Group, len(d.Groups))
	for i, g := range d.Groups {
		groups[i] = g.clone()
	}
	return Dashboard{Groups: groups}
}

func (g Group) clone() Group {
	out := Group{Name: g.Name}
	if g.Items != nil {
		out.Items = make([]Metric, len(g.Items))
		for i, m := range g.Items {
			out.Items[i] = m.clone()
		}
	}
	return out
}

func (m Metric) clone() Metric {
	out := m
	if m.Values != nil {
		out.Values = append([]Value(nil), m.Values...)
	}
	return out
}
