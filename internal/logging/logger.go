package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const filePrefix = "termfolio-"

// Option configures RuntimeLogger creation.
type Option func(*newOptions)

type newOptions struct {
	dir       string
	level     log.Level
	maxFiles  int
	sessionID string
	now       func() time.Time
}

// WithDir writes logs to dir instead of ~/.termfolio/logs.
func WithDir(dir string) Option {
	return func(opts *newOptions) {
		opts.dir = strings.TrimSpace(dir)
	}
}

// WithLevel sets the minimum level written to the log file.
func WithLevel(level log.Level) Option {
	return func(opts *newOptions) {
		opts.level = level
	}
}

// WithMaxFiles keeps at most n log files, removing the oldest on startup.
func WithMaxFiles(n int) Option {
	return func(opts *newOptions) {
		opts.maxFiles = n
	}
}

// WithSessionID configures the session_id field used in emitted log records.
func WithSessionID(sessionID string) Option {
	return func(opts *newOptions) {
		opts.sessionID = strings.TrimSpace(sessionID)
	}
}

func withClock(now func() time.Time) Option {
	return func(opts *newOptions) {
		opts.now = now
	}
}

// RuntimeLogger writes structured JSON logs to disk.
type RuntimeLogger struct {
	Logger     *log.Logger
	file       *os.File
	path       string
	dir        string
	baseLogger *log.Logger
	sessionID  string
}

// DefaultDir returns ~/.termfolio/logs.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".termfolio", "logs"), nil
}

// New initializes file logging without writing to stdout, which belongs to
// the terminal UI.
func New(ctx context.Context, options ...Option) (*RuntimeLogger, error) {
	resolved := resolveOptions(options)

	logDir := resolved.dir
	if logDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		logDir = dir
	}
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	timestamp := resolved.now().UTC().Format("20060102-150405.000")
	filePath := filepath.Join(logDir, fmt.Sprintf("%s%s.log", filePrefix, timestamp))
	// #nosec G304 -- filePath is constructed from trusted local paths.
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(file, log.Options{
		Level:           resolved.level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	logger.SetFormatter(log.JSONFormatter)

	runtimeLogger := &RuntimeLogger{
		file:       file,
		path:       filePath,
		dir:        logDir,
		baseLogger: logger,
		sessionID:  resolved.sessionID,
	}
	runtimeLogger.rebuildLogger()
	runtimeLogger.Logger.With("log_file", filePath).Info("logger initialized")

	if resolved.maxFiles > 0 {
		removed, err := prune(logDir, filePath, resolved.maxFiles)
		if err != nil {
			runtimeLogger.Logger.Warn("prune old log files", "err", err)
		} else if removed > 0 {
			runtimeLogger.Logger.Debug("pruned old log files", "removed", removed)
		}
	}

	_ = ctx
	return runtimeLogger, nil
}

// WithSessionID updates the session_id field for subsequent log records.
func (r *RuntimeLogger) WithSessionID(sessionID string) *RuntimeLogger {
	if r == nil {
		return nil
	}
	r.sessionID = strings.TrimSpace(sessionID)
	r.rebuildLogger()
	return r
}

// Close flushes and closes the log file.
func (r *RuntimeLogger) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// Path returns the current log file path.
func (r *RuntimeLogger) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Dir returns the directory holding the log files.
func (r *RuntimeLogger) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

func (r *RuntimeLogger) rebuildLogger() {
	if r == nil || r.baseLogger == nil {
		return
	}
	if r.sessionID == "" {
		r.Logger = r.baseLogger
		return
	}
	r.Logger = r.baseLogger.With("session_id", r.sessionID)
}

// prune removes the oldest termfolio log files so that at most keep remain.
// The current file is never removed. File names sort chronologically.
func prune(dir, current string, keep int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read log directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	removed := 0
	for len(names)-removed > keep {
		path := filepath.Join(dir, names[removed])
		if path == current {
			break
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove log file %q: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

func resolveOptions(options []Option) newOptions {
	resolved := newOptions{
		level: log.InfoLevel,
		now:   time.Now,
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(&resolved)
	}
	return resolved
}
