// Package logging builds the slog logger shared by the CLI commands.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileEnv names the variable that redirects logs to a file.
const FileEnv = "REVDASH_LOG_FILE"

const (
	maxFileMB  = 4
	maxBackups = 2
)

// ParseLevel maps a level name onto a slog.Level. Unknown names map to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open returns a logger writing to stderr, or to the file named by
// REVDASH_LOG_FILE when getenv reports one. The returned close function
// must be called before exit. If the file cannot be opened the logger falls
// back to stderr and the error is returned alongside it.
func Open(stderr io.Writer, level string, getenv func(string) string) (*slog.Logger, func() error, error) {
	nop := func() error { return nil }
	path := getenv(FileEnv)
	if path == "" {
		return New(stderr, level), nop, nil
	}
	w, err := OpenFile(path, maxFileMB)
	if err != nil {
		return New(stderr, level), nop, err
	}
	return New(w, level), w.Close, nil
}

// OpenFile opens (or creates) a log file at path that rotates once it
// reaches maxMB megabytes, keeping a couple of backups beside it.
func OpenFile(path string, maxMB int) (*lumberjack.Logger, error) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxMB,
		MaxBackups: maxBackups,
	}
	// A zero-length write opens the file now so failures surface here.
	if _, err := w.Write(nil); err != nil {
		return nil, err
	}
	return w, nil
}
