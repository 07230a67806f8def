package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/platform"
	"github.com/shirou/gopsutil/v3/process"
)

// Manager is the part of the fullscreen manager the reconciler drives.
type Manager interface {
	Prune() int
	Tracked() []fullscreen.Tracked
	ExitFullscreen(id platform.WindowID) bool
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	// CheckOwners exits fullscreen for windows whose owning process is gone.
	// Windows of remote X clients report foreign PIDs, so leave it off there.
	CheckOwners bool
	Logger      *slog.Logger
}

// Reconciler periodically drops state for windows that went away while
// the daemon was not looking.
type Reconciler struct {
	interval    time.Duration
	checkOwners bool
	manager     Manager
	logger      *slog.Logger
	pidExists   func(pid int32) (bool, error)
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, m Manager) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		checkOwners: cfg.CheckOwners,
		manager:     m,
		logger:      logger,
		pidExists:   process.PidExists,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// Pass is the outcome of one reconciliation pass.
type Pass struct {
	Pruned       int
	OwnersExited int
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() (pass Pass) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if r.checkOwners {
		for _, t := range r.manager.Tracked() {
			if !t.State.IsFullscreen {
				continue
			}
			pid := t.Window.PID()
			if pid <= 0 {
				continue
			}
			alive, err := r.pidExists(int32(pid))
			if err != nil {
				r.logger.Debug("reconciler: pid check failed", "pid", pid, "error", err)
				continue
			}
			if alive {
				continue
			}
			r.logger.Info("reconciler: owner process gone",
				"window_id", t.State.WindowID,
				"class", t.State.WindowType,
				"pid", pid)
			if r.manager.ExitFullscreen(t.State.WindowID) {
				pass.OwnersExited++
			}
		}
	}

	pass.Pruned = r.manager.Prune()
	if pass.Pruned > 0 {
		r.logger.Info("reconciler: pruned closed windows", "count", pass.Pruned)
	}
	return pass
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() Pass {
	return r.reconcile()
}

// ProcessName returns the executable name of pid, or "" when it cannot be
// resolved.
func ProcessName(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}
