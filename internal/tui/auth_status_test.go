package tui

import (
	"testing"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/services/account"

	"github.com/google/go-cmp/cmp"
)

func TestStatusRows(t *testing.T) {
	tests := []struct {
		name   string
		status account.Status
		want   [][2]string
	}{
		{
			name:   "signed out",
			status: account.Status{},
			want:   [][2]string{{"Session", "not logged in"}},
		},
		{
			name: "signed in",
			status: account.Status{
				LoggedIn:        true,
				HasRefreshToken: true,
				User:            &domain.User{Name: "Dev", Email: "dev@example.com"},
			},
			want: [][2]string{
				{"Session", "logged in"},
				{"Name", "Dev"},
				{"Email", "dev@example.com"},
				{"Refresh token", "stored"},
			},
		},
		{
			name:   "signed in without stored user",
			status: account.Status{LoggedIn: true},
			want: [][2]string{
				{"Session", "logged in"},
				{"Refresh token", "missing"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, statusRows(tt.status)); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
