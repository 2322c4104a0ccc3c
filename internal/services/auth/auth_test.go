package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"nathanbeddoewebdev/revdash/internal/domain"
)

func TestTokens_RoundTripThroughMockStore(t *testing.T) {
	s := NewMockStore()
	pair := domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	if err := SaveTokens(s, pair); err != nil {
		t.Fatalf("SaveTokens failed: %v", err)
	}
	got, err := LoadTokens(s)
	if err != nil {
		t.Fatalf("LoadTokens failed: %v", err)
	}
	if got != pair {
		t.Errorf("LoadTokens = %+v, want %+v", got, pair)
	}
}

func TestLoadTokens_NotLoggedIn(t *testing.T) {
	if _, err := LoadTokens(NewMockStore()); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestLoadTokens_MissingRefreshTokenIsTolerated(t *testing.T) {
	s := NewMockStore()
	_ = s.Set(KeyAccessToken, "access")

	got, err := LoadTokens(s)
	if err != nil {
		t.Fatalf("LoadTokens failed: %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "" {
		t.Errorf("LoadTokens = %+v", got)
	}
}

func TestClearTokens_IgnoresMissing(t *testing.T) {
	s := NewMockStore()
	_ = s.Set(KeyAccessToken, "access")

	if err := ClearTokens(s); err != nil {
		t.Fatalf("ClearTokens failed: %v", err)
	}
	if _, err := s.Get(KeyAccessToken); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected access token to be gone, got %v", err)
	}
}

func TestMockStore_NormalizesKeys(t *testing.T) {
	s := NewMockStore()
	_ = s.Set(" Access-Token ", "v")

	got, err := s.Get("access-token")
	if err != nil || got != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestKeyringStore_UsesServiceName(t *testing.T) {
	keyring.MockInit()

	s := NewKeyringStore("")
	if err := s.Set(KeyRefreshToken, "r"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := keyring.Get(ServiceName, KeyRefreshToken)
	if err != nil || got != "r" {
		t.Fatalf("keyring.Get = %q, %v", got, err)
	}
	if err := s.Delete(KeyRefreshToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(KeyRefreshToken); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestKeyringStore_WrapsBackendErrors(t *testing.T) {
	backend := errors.New("dbus unavailable")
	keyring.MockInitWithError(backend)
	t.Cleanup(keyring.MockInit)

	_, err := NewKeyringStore("").Get(KeyAccessToken)
	if !errors.Is(err, backend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if errors.Is(err, ErrTokenNotFound) {
		t.Error("backend failure must not read as a missing token")
	}
}

func TestKeyringStore_TimesOut(t *testing.T) {
	s := &KeyringStore{service: ServiceName, timeout: 10 * time.Millisecond}
	release := make(chan struct{})
	defer close(release)

	_, err := s.do(func() (string, error) {
		<-release
		return "", nil
	})
	if !errors.Is(err, ErrKeyringTimeout) {
		t.Errorf("expected ErrKeyringTimeout, got %v", err)
	}
}
