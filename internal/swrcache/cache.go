// Package swrcache is a file-backed JSON cache with stale-while-revalidate
// semantics. Fresh entries are served directly; stale entries are served
// while a background fetch replaces them; expired entries are refetched
// before returning.
package swrcache

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultFreshTTL = 5 * time.Minute
	defaultMaxStale = 24 * time.Hour
	refreshTimeout  = 30 * time.Second
)

// Entry is the on-disk form of a cached value. Key guards against two keys
// that sanitize to the same file name.
type Entry[T any] struct {
	Key       string    `json:"key"`
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Source reports where a GetOrFetch result came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceFresh
	SourceStale
)

func (s Source) String() string {
	switch s {
	case SourceFresh:
		return "cache"
	case SourceStale:
		return "stale cache"
	default:
		return "network"
	}
}

// Cache provides stale-while-revalidate caching with file-backed JSON storage.
type Cache struct {
	dir      string
	freshTTL time.Duration
	maxStale time.Duration
	logger   *slog.Logger
	now      func() time.Time

	pending sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTLs sets how long entries are fresh and how long past that they may
// still be served stale. A maxStale of zero serves stale entries forever.
func WithTTLs(freshTTL, maxStale time.Duration) Option {
	return func(c *Cache) {
		c.freshTTL = freshTTL
		c.maxStale = maxStale
	}
}

// WithLogger sets the logger used to report background refresh failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a cache rooted at dir.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir:      dir,
		freshTTL: defaultFreshTTL,
		maxStale: defaultMaxStale,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefault returns a cache rooted at the OS user cache dir.
func NewDefault(opts ...Option) *Cache {
	return New(DefaultDir(), opts...)
}

// DefaultDir is <UserCacheDir>/revdash.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "revdash")
}

// GetOrFetch returns cached data using stale-while-revalidate semantics.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, Source, error) {
	if c == nil || c.dir == "" {
		v, err := fetch(ctx)
		return v, SourceNetwork, err
	}

	entry, ok, err := readEntry[T](c, key)
	if err != nil || !ok || entry.FetchedAt.IsZero() {
		return fetchAndStore(ctx, c, key, fetch)
	}

	age := c.now().Sub(entry.FetchedAt)
	switch {
	case age < 0:
		return fetchAndStore(ctx, c, key, fetch)
	case age <= c.freshTTL:
		return entry.Data, SourceFresh, nil
	case c.maxStale <= 0 || age <= c.freshTTL+c.maxStale:
		revalidate(c, key, fetch)
		return entry.Data, SourceStale, nil
	default:
		return fetchAndStore(ctx, c, key, fetch)
	}
}

// Refresh fetches and stores key unconditionally.
func Refresh[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, _, err := fetchAndStore(ctx, c, key, fetch)
	return v, err
}

// Put stores data under key as freshly fetched.
func Put[T any](c *Cache, key string, data T) error {
	if c == nil || c.dir == "" {
		return nil
	}
	return writeEntry(c, key, Entry[T]{Key: key, Data: data, FetchedAt: c.now()})
}

// Wait blocks until background revalidations finish or ctx is done.
func (c *Cache) Wait(ctx context.Context) {
	if c == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Invalidate removes a single cached entry.
func (c *Cache) Invalidate(key string) error {
	if c == nil || c.dir == "" {
		return nil
	}

	err := os.Remove(c.pathForKey(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes all cached entries in the cache directory.
func (c *Cache) Clear() error {
	if c == nil || c.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func fetchAndStore[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, Source, error) {
	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, SourceNetwork, err
	}
	if c != nil && c.dir != "" {
		if err := writeEntry(c, key, Entry[T]{Key: key, Data: data, FetchedAt: c.now()}); err != nil {
			c.logger.Debug("cache write failed", "key", key, "error", err)
		}
	}
	return data, SourceNetwork, nil
}

func revalidate[T any](c *Cache, key string, fetch func(context.Context) (T, error)) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		data, err := fetch(ctx)
		if err != nil {
			c.logger.Debug("background refresh failed", "key", key, "error", err)
			return
		}
		_ = writeEntry(c, key, Entry[T]{Key: key, Data: data, FetchedAt: c.now()})
	}()
}

func readEntry[T any](c *Cache, key string) (Entry[T], bool, error) {
	var zero Entry[T]
	data, err := os.ReadFile(c.pathForKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, false, nil
		}
		return zero, false, err
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil || entry.Key != key {
		return zero, false, nil
	}
	return entry, true, nil
}

func writeEntry[T any](c *Cache, key string, entry Entry[T]) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, sanitizeKey(key)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, c.pathForKey(key))
}

func (c *Cache) pathForKey(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
