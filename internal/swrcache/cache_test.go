package swrcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(t.TempDir(), WithTTLs(5*time.Minute, time.Hour))
}

func TestGetOrFetch_FreshCache(t *testing.T) {
	cache := newTestCache(t)

	key := "apps_account-1"
	if err := writeEntry(cache, key, Entry[string]{Key: key, Data: "cached", FetchedAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	called := 0
	fetch := func(ctx context.Context) (string, error) {
		called++
		return "fresh", nil
	}

	got, src, err := GetOrFetch(context.Background(), cache, key, fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != "cached" || src != SourceFresh {
		t.Fatalf("got %q from %s, want %q from cache", got, src, "cached")
	}
	if called != 0 {
		t.Fatalf("fetch called %d times, want 0", called)
	}
}

func TestGetOrFetch_StaleCacheRevalidates(t *testing.T) {
	cache := newTestCache(t)

	key := "apps"
	if err := writeEntry(cache, key, Entry[string]{Key: key, Data: "cached", FetchedAt: time.Now().Add(-10 * time.Minute)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	fetch := func(ctx context.Context) (string, error) {
		return "fresh", nil
	}

	got, src, err := GetOrFetch(context.Background(), cache, key, fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != "cached" || src != SourceStale {
		t.Fatalf("got %q from %s, want stale %q", got, src, "cached")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cache.Wait(ctx)

	entry, ok, _ := readEntry[string](cache, key)
	if !ok || entry.Data != "fresh" {
		t.Fatalf("expected cache to be refreshed, got ok=%v data=%q", ok, entry.Data)
	}
}

func TestGetOrFetch_ExpiredCacheFetchesSync(t *testing.T) {
	cache := newTestCache(t)

	key := "apps"
	if err := writeEntry(cache, key, Entry[string]{Key: key, Data: "cached", FetchedAt: time.Now().Add(-2 * time.Hour)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	called := 0
	fetch := func(ctx context.Context) (string, error) {
		called++
		return "fresh", nil
	}

	got, src, err := GetOrFetch(context.Background(), cache, key, fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != "fresh" || src != SourceNetwork {
		t.Fatalf("got %q from %s, want %q from network", got, src, "fresh")
	}
	if called != 1 {
		t.Fatalf("fetch called %d times, want 1", called)
	}
}

func TestGetOrFetch_MissFetchesSyncAndStores(t *testing.T) {
	cache := newTestCache(t)

	type app struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	want := []app{{ID: "a", Name: "Alpha"}}

	got, _, err := GetOrFetch(context.Background(), cache, "apps", func(context.Context) ([]app, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	entry, ok, err := readEntry[[]app](cache, "apps")
	if err != nil || !ok {
		t.Fatalf("expected stored entry, ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, entry.Data); diff != "" {
		t.Errorf("stored mismatch (-want +got):\n%s", diff)
	}
}

func TestGetOrFetch_FetchErrorIsReturned(t *testing.T) {
	cache := newTestCache(t)
	boom := errors.New("boom")

	_, _, err := GetOrFetch(context.Background(), cache, "apps", func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, ok, _ := readEntry[string](cache, "apps"); ok {
		t.Fatal("failed fetch must not be cached")
	}
}

func TestGetOrFetch_NilCacheAlwaysFetches(t *testing.T) {
	got, src, err := GetOrFetch(context.Background(), nil, "apps", func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 || src != SourceNetwork {
		t.Fatalf("got %d from %s, err %v", got, src, err)
	}
}

func TestPutAndInvalidate(t *testing.T) {
	cache := newTestCache(t)

	if err := Put(cache, "apps", "a"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if _, ok, _ := readEntry[string](cache, "apps"); !ok {
		t.Fatal("expected entry after Put")
	}
	if err := cache.Invalidate("apps"); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if _, ok, _ := readEntry[string](cache, "apps"); ok {
		t.Fatal("expected entry to be removed")
	}
	if err := cache.Invalidate("apps"); err != nil {
		t.Fatalf("Invalidate of a missing key should succeed, got %v", err)
	}
}

func TestClear(t *testing.T) {
	cache := newTestCache(t)
	_ = Put(cache, "apps", "a")
	_ = Put(cache, "user", "b")

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, ok, _ := readEntry[string](cache, "user"); ok {
		t.Fatal("expected cache to be empty")
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := map[string]string{
		"":              "cache",
		"apps":          "apps",
		"apps/acct 1":   "apps_acct_1",
		" dev@x.com ":   "dev_x_com",
	}
	for in, want := range tests {
		if got := sanitizeKey(in); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadEntry_KeysSharingAFileDoNotCollide(t *testing.T) {
	cache := newTestCache(t)

	if err := Put(cache, "apps:1", "first"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := readEntry[string](cache, "apps_1"); ok {
		t.Fatal("apps_1 must not read the entry stored for apps:1")
	}
	entry, ok, _ := readEntry[string](cache, "apps:1")
	if !ok || entry.Data != "first" {
		t.Errorf("apps:1 entry = %+v, ok=%v", entry, ok)
	}
}
