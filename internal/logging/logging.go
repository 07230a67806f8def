package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/1broseidon/fullframe/internal/config"
)

// ParseLevel maps a config level name onto a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}

// Daemon is the daemon's logger: JSON records to a rotating file and text
// records to stderr.
type Daemon struct {
	*slog.Logger
	File string

	rotator *lumberjack.Logger
}

// NewDaemon builds the daemon logger from cfg. When the log file cannot be
// created the logger falls back to stderr only.
func NewDaemon(cfg config.LoggingConfig, stderr io.Writer) *Daemon {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using info\n", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	console := slog.NewTextHandler(stderr, opts)

	d := &Daemon{}
	if cfg.File == "" {
		d.Logger = slog.New(console)
		return d
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
		d.Logger = slog.New(console)
		d.Logger.Warn("failed to create log directory, logging to stderr only", "path", cfg.File, "error", err)
		return d
	}

	d.rotator = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
	}
	d.File = cfg.File
	d.Logger = slog.New(fanout{slog.NewJSONHandler(d.rotator, opts), console})
	d.Logger.Info("logging started",
		"file", cfg.File,
		"level", lvl.String(),
		"goos", runtime.GOOS,
		"goarch", runtime.GOARCH)
	return d
}

// Close flushes and closes the log file.
func (d *Daemon) Close() error {
	if d == nil || d.rotator == nil {
		return nil
	}
	return d.rotator.Close()
}

// fanout writes each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
