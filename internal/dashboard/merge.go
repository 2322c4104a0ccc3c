package dashboard

// nonAdditiveCharts are ratio and cohort metrics that cannot be summed across
// apps. They are dropped when dashboards from different apps are combined.
var nonAdditiveCharts = map[string]struct{}{
	"refund_rate": {},
	"arpu":        {},
	"arppu":       {},
}

// IsAdditive reports whether a metric can be summed across apps.
func IsAdditive(m Metric) bool {
	_, excluded := nonAdditiveCharts[m.ChartID]
	return !excluded
}

// MergeGroups concatenates the groups of a and b, a first. It stitches
// together snapshots of the same app and period that cover disjoint groups,
// so no deduplication is done.
func MergeGroups(a, b Dashboard) Dashboard {
	groups := make([]Group, 0, len(a.Groups)+len(b.Groups))
	for _, g := range a.Groups {
		groups = append(groups, g.clone())
	}
	for _, g := range b.Groups {
		groups = append(groups, g.clone())
	}
	return Dashboard{Groups: groups}
}

// FindMetric returns the first metric named exactly name, scanning groups in
// order and items in order.
func FindMetric(d Dashboard, name string) (Metric, bool) {
	for _, g := range d.Groups {
		for _, m := range g.Items {
			if m.Name == name {
				return m, true
			}
		}
	}
	return Metric{}, false
}

// CombineAcrossApps sums second into first. The result has first's group and
// item structure; each value is first's value plus the same-named value of
// second's same-named metric, or plus zero when either is missing. Metrics
// present only in second are dropped, and non-additive metrics are removed.
//
// Combine is not symmetric: when folding many apps, the accumulator must
// always be passed as first.
func CombineAcrossApps(first, second Dashboard) Dashboard {
	groups := make([]Group, 0, len(first.Groups))
	for _, g := range first.Groups {
		items := make([]Metric, 0, len(g.Items))
		for _, m := range g.Items {
			if !IsAdditive(m) {
				continue
			}
			other, found := FindMetric(second, m.Name)

			values := make([]Value, len(m.Values))
			for i, v := range m.Values {
				sum := v.Value
				if found {
					if ov, ok := other.ValueNamed(v.Name); ok {
						sum += ov
					}
				}
				values[i] = Value{Name: v.Name, Value: sum}
			}

			combined := m
			combined.Values = values
			items = append(items, combined)
		}
		groups = append(groups, Group{Name: g.Name, Items: items})
	}
	return Dashboard{Groups: groups}
}

// Fold combines per-app dashboards left to right: the first seeds the
// accumulator and each following dashboard is combined into it in order.
// Folding zero dashboards yields an empty dashboard; folding one returns a
// copy of it unchanged.
func Fold(dashboards ...Dashboard) Dashboard {
	if len(dashboards) == 0 {
		return Dashboard{}
	}
	acc := dashboards[0].Clone()
	for _, d := range dashboards[1:] {
		acc = CombineAcrossApps(acc, d)
	}
	return acc
}
