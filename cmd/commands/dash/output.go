package dash

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"nathanbeddoewebdev/revdash/internal/dashboard"
	"nathanbeddoewebdev/revdash/internal/session"

	"gopkg.in/yaml.v3"
)

// report is the machine-readable form of a fetched dashboard.
type report struct {
	Apps   []reportApp   `json:"apps" yaml:"apps"`
	Period string        `json:"period,omitempty" yaml:"period,omitempty"`
	From   string        `json:"from" yaml:"from"`
	To     string        `json:"to" yaml:"to"`
	Groups []reportGroup `json:"groups" yaml:"groups"`
}

type reportApp struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type reportGroup struct {
	Name    string         `json:"name" yaml:"name"`
	Metrics []reportMetric `json:"metrics" yaml:"metrics"`
}

type reportMetric struct {
	Name      string         `json:"name" yaml:"name"`
	Type      dashboard.Kind `json:"type" yaml:"type"`
	Value     float64        `json:"value" yaml:"value"`
	Formatted string         `json:"formatted" yaml:"formatted"`
	Active    *int           `json:"active,omitempty" yaml:"active,omitempty"`
	Inactive  *int           `json:"inactive,omitempty" yaml:"inactive,omitempty"`
}

func newReport(st session.State) report {
	r := report{
		From:   st.Range.StartISO(),
		To:     st.Range.EndISO(),
		Groups: []reportGroup{},
	}
	if !st.Custom {
		r.Period = st.Period.String()
	}
	for _, a := range st.Selected {
		r.Apps = append(r.Apps, reportApp{ID: a.ID, Name: a.Name})
	}
	if st.Dashboard == nil {
		return r
	}

	for _, g := range st.Dashboard.Groups {
		if len(g.Items) == 0 {
			continue
		}
		rg := reportGroup{Name: g.FormattedName()}
		for _, m := range g.Items {
			rm := reportMetric{
				Name:      m.Name,
				Type:      m.Kind,
				Value:     m.Value(),
				Formatted: m.FormattedValue(),
			}
			if v, ok := m.Active(); ok {
				rm.Active = &v
			}
			if v, ok := m.Inactive(); ok {
				rm.Inactive = &v
			}
			rg.Metrics = append(rg.Metrics, rm)
		}
		r.Groups = append(r.Groups, rg)
	}
	return r
}

func writeReport(w io.Writer, format string, r report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "csv":
		return writeCSV(w, r)
	default:
		return writeTable(w, r)
	}
}

// writeTable prints a summary header followed by one row per metric.
func writeTable(w io.Writer, r report) error {
	names := make([]string, len(r.Apps))
	for i, a := range r.Apps {
		names[i] = a.Name
	}
	fmt.Fprintf(w, "Apps:   %s\n", strings.Join(names, ", "))
	fmt.Fprintf(w, "Range:  %s to %s\n\n", r.From, r.To)

	if len(r.Groups) == 0 {
		fmt.Fprintln(w, "No metrics for this period.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tMETRIC\tVALUE\tACTIVE\tINACTIVE")
	fmt.Fprintln(tw, "-----\t------\t-----\t------\t--------")
	for _, g := range r.Groups {
		for _, m := range g.Metrics {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", g.Name, m.Name, m.Formatted, optInt(m.Active), optInt(m.Inactive))
		}
	}
	return tw.Flush()
}

func writeCSV(w io.Writer, r report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group", "metric", "type", "value", "active", "inactive"}); err != nil {
		return err
	}
	for _, g := range r.Groups {
		for _, m := range g.Metrics {
			row := []string{
				g.Name,
				m.Name,
				string(m.Type),
				strconv.FormatFloat(m.Value, 'f', -1, 64),
				optInt(m.Active),
				optInt(m.Inactive),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
