package appstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nathanbeddoewebdev/revdash/internal/domain"
)

func tempRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revdash.db")
	r, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestLoadAppList_Empty(t *testing.T) {
	r := tempRepo(t)

	apps, err := r.LoadAppList()
	if err != nil {
		t.Fatalf("LoadAppList failed: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("expected no apps, got %+v", apps)
	}
}

func TestSaveAppList_KeepsOrderAndReplaces(t *testing.T) {
	r := tempRepo(t)

	first := []domain.Application{
		{ID: "b", Name: "Beta", BundleID: "com.x.beta"},
		{ID: "a", Name: "Alpha", PackageName: "com.x.alpha", IconURL: "https://i/a.png"},
	}
	if err := r.SaveAppList(first); err != nil {
		t.Fatalf("SaveAppList failed: %v", err)
	}
	got, err := r.LoadAppList()
	if err != nil {
		t.Fatalf("LoadAppList failed: %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("apps mismatch (-want +got):\n%s", diff)
	}

	second := []domain.Application{{ID: "c", Name: "Gamma"}}
	if err := r.SaveAppList(second); err != nil {
		t.Fatalf("SaveAppList failed: %v", err)
	}
	got, err = r.LoadAppList()
	if err != nil {
		t.Fatalf("LoadAppList failed: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("apps not replaced (-want +got):\n%s", diff)
	}
}

func TestSaveSelectedIDs_RoundTrip(t *testing.T) {
	r := tempRepo(t)

	if err := r.SaveSelectedIDs([]string{"z", "a", "m"}); err != nil {
		t.Fatalf("SaveSelectedIDs failed: %v", err)
	}
	got, err := r.LoadSelectedIDs()
	if err != nil {
		t.Fatalf("LoadSelectedIDs failed: %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	if err := r.SaveSelectedIDs(nil); err != nil {
		t.Fatalf("SaveSelectedIDs(nil) failed: %v", err)
	}
	got, _ = r.LoadSelectedIDs()
	if len(got) != 0 {
		t.Errorf("expected selection to be cleared, got %v", got)
	}
}

func TestSaveSelectedIDs_RejectsTooMany(t *testing.T) {
	r := tempRepo(t)

	ids := make([]string, domain.MaxSelectedApps+1)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	if err := r.SaveSelectedIDs(ids); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUser_UpsertAndLoad(t *testing.T) {
	r := tempRepo(t)

	got, err := r.LoadUser()
	if err != nil {
		t.Fatalf("LoadUser failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no user, got %+v", got)
	}

	if err := r.SaveUser(domain.User{ID: "u1", Email: "old@example.com", Name: "Dev"}); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	want := domain.User{ID: "u1", Email: "new@example.com", Name: "Dev", AvatarURL: "https://a/b.png"}
	if err := r.SaveUser(want); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	got, err = r.LoadUser()
	if err != nil {
		t.Fatalf("LoadUser failed: %v", err)
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	r := tempRepo(t)

	_ = r.SaveAppList([]domain.Application{{ID: "a", Name: "Alpha"}})
	_ = r.SaveSelectedIDs([]string{"a"})
	_ = r.SaveUser(domain.User{ID: "u1", Email: "dev@example.com"})

	if err := r.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	apps, _ := r.LoadAppList()
	ids, _ := r.LoadSelectedIDs()
	user, _ := r.LoadUser()
	if len(apps) != 0 || len(ids) != 0 || user != nil {
		t.Errorf("expected empty store, got apps=%v ids=%v user=%v", apps, ids, user)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revdash.db")
	r, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	if err := r.SaveSelectedIDs([]string{"a"}); err != nil {
		t.Fatalf("SaveSelectedIDs failed: %v", err)
	}
	r.Close()

	r2, err := OpenAt(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer r2.Close()

	ids, err := r2.LoadSelectedIDs()
	if err != nil {
		t.Fatalf("LoadSelectedIDs failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}
