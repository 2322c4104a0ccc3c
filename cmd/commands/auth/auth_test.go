package auth

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"nathanbeddoewebdev/revdash/internal/domain"
	"nathanbeddoewebdev/revdash/internal/services/auth"
	"nathanbeddoewebdev/revdash/internal/testutil/testapp"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
)

var testUser = domain.User{ID: "u1", Email: "me@example.com", Name: "Me"}

// execAuth creates the auth command, wires up output buffers and stdin,
// runs it with the given args, and returns stdout and stderr.
func execAuth(t *testing.T, stdin string, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestLogin_StoresTokensAndApps(t *testing.T) {
	env := testapp.Install(t)
	apps := []domain.Application{{ID: "a1", Name: "Alpha"}, {ID: "a2", Name: "Beta"}}
	env.Client.On("Login", mock.Anything, "me@example.com", "hunter2").
		Return(testUser, domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil)
	env.Client.On("FetchApps", mock.Anything).Return(apps, nil)

	stdout, stderr := execAuth(t, "hunter2\n", "login", "--email", "me@example.com")

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	for _, want := range []string{"Signed in as Me <me@example.com>", "Found 2 apps, 1 selected"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}

	pair, err := auth.LoadTokens(env.Tokens)
	if err != nil {
		t.Fatalf("LoadTokens: %v", err)
	}
	if pair.AccessToken != "acc" || pair.RefreshToken != "ref" {
		t.Errorf("stored tokens = %+v", pair)
	}

	stored, err := env.Repo.LoadAppList()
	if err != nil {
		t.Fatalf("LoadAppList: %v", err)
	}
	if diff := cmp.Diff(apps, stored); diff != "" {
		t.Errorf("stored apps mismatch (-want +got):\n%s", diff)
	}
	ids, _ := env.Repo.LoadSelectedIDs()
	if diff := cmp.Diff([]string{"a1"}, ids); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	env.Client.AssertExpectations(t)
}

func TestLogin_RequiresEmailWithoutTerminal(t *testing.T) {
	testapp.Install(t)

	_, stderr := execAuth(t, "hunter2\n", "login")

	if !strings.Contains(stderr, "--email is required") {
		t.Errorf("expected email error, got: %s", stderr)
	}
}

func TestLogin_EmptyPassword(t *testing.T) {
	testapp.Install(t)

	_, stderr := execAuth(t, "", "login", "--email", "me@example.com")

	if !strings.Contains(stderr, "password cannot be empty") {
		t.Errorf("expected password error, got: %s", stderr)
	}
}

func TestLogin_RejectedCredentials(t *testing.T) {
	env := testapp.Install(t)
	env.Client.On("Login", mock.Anything, "me@example.com", "wrong").
		Return(domain.User{}, domain.TokenPair{}, domain.ErrUnauthorized)

	_, stderr := execAuth(t, "wrong\n", "login", "--email", "me@example.com")

	if !strings.Contains(stderr, "login failed") {
		t.Errorf("expected login failure, got: %s", stderr)
	}
	if _, err := auth.LoadTokens(env.Tokens); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Errorf("expected no stored tokens, got %v", err)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	env := testapp.Install(t)
	env.SignIn(t, testUser)
	env.SeedApps(t, []domain.Application{{ID: "a1", Name: "Alpha"}}, "a1")
	env.Client.On("Logout", mock.Anything).Return(errors.New("server down"))

	stdout, stderr := execAuth(t, "", "logout")

	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Signed out") {
		t.Errorf("expected confirmation, got: %s", stdout)
	}
	if _, err := auth.LoadTokens(env.Tokens); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Errorf("expected tokens cleared, got %v", err)
	}
	if apps, _ := env.Repo.LoadAppList(); len(apps) != 0 {
		t.Errorf("expected app list cleared, got %v", apps)
	}
}

func TestStatus_NotLoggedIn(t *testing.T) {
	testapp.Install(t)

	stdout, _ := execAuth(t, "", "status")

	if strings.TrimSpace(stdout) != "Not logged in" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestStatus_LoggedIn(t *testing.T) {
	env := testapp.Install(t)
	env.SignIn(t, testUser)

	stdout, _ := execAuth(t, "", "status")

	if !strings.Contains(stdout, "Logged in as Me <me@example.com>") {
		t.Errorf("unexpected output: %q", stdout)
	}
	if strings.Contains(stdout, "No refresh token") {
		t.Errorf("refresh token should be reported as stored: %q", stdout)
	}
}
