package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMetricValue_DefaultsToZero(t *testing.T) {
	m := Metric{Name: "Sales", Values: []Value{{Name: "Active", Value: 4}}}
	if got := m.Value(); got != 0 {
		t.Errorf("Value() = %v, want 0", got)
	}
}

func TestMetric_ActiveInactive(t *testing.T) {
	subs := Metric{Kind: KindSubscriptions, Values: []Value{
		{Name: "Value", Value: 10}, {Name: "Active", Value: 7}, {Name: "Inactive", Value: 3},
	}}
	if n, ok := subs.Active(); !ok || n != 7 {
		t.Errorf("Active() = %d, %v; want 7, true", n, ok)
	}
	if n, ok := subs.Inactive(); !ok || n != 3 {
		t.Errorf("Inactive() = %d, %v; want 3, true", n, ok)
	}

	plain := Metric{Kind: KindMoney, Values: []Value{{Name: "Value", Value: 1}}}
	if _, ok := plain.Active(); ok {
		t.Error("expected no Active value on a money metric")
	}
}

func TestGroup_FormattedName(t *testing.T) {
	tests := []struct {
		name  string
		group Group
		want  string
	}{
		{
			name:  "money with MRR first",
			group: Group{Name: "Money", Items: []Metric{{Name: "Monthly Recurring Revenue"}}},
			want:  "Recurring Revenue",
		},
		{
			name:  "money with short alias",
			group: Group{Name: "Money", Items: []Metric{{Name: "MRR"}, {Name: "Sales"}}},
			want:  "Recurring Revenue",
		},
		{
			name:  "money with sales first",
			group: Group{Name: "Money", Items: []Metric{{Name: "Sales"}, {Name: "MRR"}}},
			want:  "Money",
		},
		{
			name:  "other group",
			group: Group{Name: "Subscriptions", Items: []Metric{{Name: "MRR"}}},
			want:  "Subscriptions",
		},
		{
			name:  "empty money group",
			group: Group{Name: "Money"},
			want:  "Money",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.group.FormattedName(); got != tt.want {
				t.Errorf("FormattedName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroup_UniqueName(t *testing.T) {
	single := Group{Name: "MRR", Items: []Metric{{Name: "Monthly Recurring Revenue"}}}
	if got := single.UniqueName(); got != "Monthly Recurring Revenue" {
		t.Errorf("UniqueName() = %q", got)
	}
	multi := Group{Name: "Money", Items: []Metric{{Name: "A"}, {Name: "B"}}}
	if got := multi.UniqueName(); got != "Money" {
		t.Errorf("UniqueName() = %q", got)
	}
}

func TestDashboard_MetricValueIgnoresCase(t *testing.T) {
	d := Dashboard{Groups: []Group{{Name: "Money", Items: []Metric{{Name: "Gross Revenue", Values: []Value{{Name: "Value", Value: 3}}}}}}}

	m, ok := d.MetricValue("gross revenue")
	if !ok || m.Value() != 3 {
		t.Errorf("MetricValue = %v, %v; want 3, true", m.Value(), ok)
	}
}

func TestDashboard_DecodesSnakeCaseWire(t *testing.T) {
	payload := []byte(`{
		"groups": [{
			"name": "Money",
			"items": [{
				"name": "Refund Rate",
				"type": "percent",
				"chart_id": "refund_rate",
				"description": "Share of refunded purchases",
				"values": [{"name": "Value", "value": 1.5}]
			}]
		}]
	}`)

	var got Dashboard
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Dashboard{Groups: []Group{{Name: "Money", Items: []Metric{{
		Name:        "Refund Rate",
		Kind:        KindPercent,
		ChartID:     "refund_rate",
		Description: "Share of refunded purchases",
		Values:      []Value{{Name: "Value", Value: 1.5}},
	}}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded dashboard mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		kind Kind
		in   float64
		want string
	}{
		{KindMoney, 1234.5, "$1,234.50"},
		{KindMoney, -12, "-$12.00"},
		{KindSimple, 1234.4, "1,234"},
		{KindSubscriptions, 0, "0"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.kind, tt.in); got != tt.want {
			t.Errorf("FormatValue(%s, %v) = %q, want %q", tt.kind, tt.in, got, tt.want)
		}
	}
}
