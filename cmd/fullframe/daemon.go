package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/fullframe/internal/config"
	"github.com/1broseidon/fullframe/internal/daemon"
	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/hotkeys"
	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/launcher"
	"github.com/1broseidon/fullframe/internal/logging"
	"github.com/1broseidon/fullframe/internal/platform"
	"github.com/1broseidon/fullframe/internal/session"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/fullframe/config.yaml)")
	checkOwners := fs.Bool("check-owners", true, "Restore fullscreen windows whose owner process has exited")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fullframe daemon [--path PATH] [--check-owners=false]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the fullframe daemon in the foreground. The saved session is")
		fmt.Fprintln(os.Stderr, "restored on start and written on every change.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if rc := parseNoArgs(fs, args); rc >= 0 {
		return rc
	}

	res, err := loadConfigResult(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config

	logs := logging.NewDaemon(cfg.GetLoggingConfig(), os.Stderr)
	defer logs.Close()
	logger := logs.Logger
	logger.Info("configuration loaded", "path", res.Path, "classes", len(cfg.Classes), "main_window_class", cfg.MainWindowClass)

	host, err := platform.NewLinuxHostFromDisplay(launcher.New(cfg.LaunchTemplates(), cfg.LaunchTimeout))
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer host.Disconnect()

	var (
		cfgMu   sync.Mutex
		current = cfg
	)
	mainClass := func() string {
		cfgMu.Lock()
		defer cfgMu.Unlock()
		return current.MainWindowClass
	}

	enum := display.NewEnumerator(host, display.EnumeratorConfig{
		CacheTTL:   cfg.DisplayCacheTTL,
		MainWindow: mainWindowLocator(host, mainClass),
		Logger:     logger.With("component", "displays"),
	})
	if err := host.OnScreenChange(enum.Invalidate); err != nil {
		logger.Warn("display change notifications unavailable", "error", err)
	}
	logger.Info("displays enumerated", "count", len(enum.Displays()))

	store, err := session.DefaultStore(logger.With("component", "session"))
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	if err := store.Lock(); err != nil {
		if errors.Is(err, session.ErrLocked) {
			fmt.Fprintln(os.Stderr, "fullframe daemon is already running")
			return 1
		}
		log.Fatalf("Failed to lock session: %v", err)
	}
	defer store.Unlock()

	manager := fullscreen.NewManager(fullscreen.Config{
		Host:     host,
		Displays: enum,
		Store:    store,
		Options:  cfg.ManagerOptions(),
		Logger:   logger.With("component", "fullscreen"),
	})
	manager.Subscribe(func(ev fullscreen.Event) {
		logger.Debug("fullscreen event",
			"window_id", fmt.Sprintf("0x%x", uint32(ev.WindowID)),
			"class", ev.WindowType,
			"entered", ev.Entered,
			"at", ev.AtPosition)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hotkeyHandler := hotkeys.NewHandler(host, manager, logger.With("component", "hotkeys"))
	if err := hotkeyHandler.Register(ctx, cfg); err != nil {
		logger.Warn("failed to register hotkeys", "error", err)
	}

	applyConfig := func(next *config.Config) {
		cfgMu.Lock()
		current = next
		cfgMu.Unlock()

		manager.SetOptions(next.ManagerOptions())
		host.SetLauncher(launcher.New(next.LaunchTemplates(), next.LaunchTimeout))
		enum.Invalidate()
		if err := hotkeyHandler.Reload(ctx, next); err != nil {
			logger.Warn("failed to re-register hotkeys", "error", err)
		}
		logger.Info("configuration reloaded", "classes", len(next.Classes))
	}
	reload := func() error {
		next, err := config.LoadFromPath(res.Path)
		if err != nil {
			return err
		}
		applyConfig(next.Config)
		return nil
	}

	ipcServer, err := ipc.NewServer(ipc.ServerConfig{
		Controller:  manager,
		Reload:      reload,
		ProcessName: daemon.ProcessName,
		SessionPath: store.Path(),
		LogFile:     logs.File,
		Logger:      logger.With("component", "ipc"),
	})
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	if res.Path != "" {
		go func() {
			if err := config.Watch(ctx, res.Path, logger.With("component", "config"), applyConfig); err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				if err := reload(); err != nil {
					logger.Error("config reload failed", "error", err)
				}
				continue
			}
			logger.Info("shutting down", "signal", sig.String())
			cancel()
			shutdown(manager, hotkeyHandler, logger)
			host.Quit()
			return
		}
	}()

	// The IPC server and the event loop are already up while the session is
	// restored, so toggles arriving in that window are queued by the manager
	// and replayed by FinishLoad.
	go func() {
		saved := store.Load()
		report := session.Reconcile(ctx, manager, host, enum.Displays(), saved, session.ReconcileOptions{
			MainWindowClass: cfg.MainWindowClass,
			ToolbarHeight:   cfg.ToolbarHeight,
			CloseOrphans:    cfg.CloseOrphans,
			Classes:         cfg.ClassNames(),
			Logger:          logger.With("component", "session"),
		})
		if ctx.Err() != nil {
			return
		}
		manager.FinishLoad(ctx)
		logger.Info("session restored",
			"saved", len(saved),
			"reattached", report.Reattached,
			"relaunched", report.Relaunched,
			"dropped", report.Dropped,
			"orphans_closed", report.OrphansClosed)

		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval:    10 * time.Second,
			CheckOwners: *checkOwners,
			Logger:      logger.With("component", "reconciler"),
		}, manager)
		reconciler.ReconcileNow()
		reconciler.Run(ctx)
	}()

	logger.Info("fullframe daemon started", "pid", os.Getpid(), "session", store.Path())
	host.EventLoop()
	return 0
}

// shutdown persists the session and waits for in-flight hotkey actions.
// Fullscreen windows are left as they are so the next daemon can adopt them.
func shutdown(m *fullscreen.Manager, h *hotkeys.Handler, logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		h.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logger.Warn("hotkey actions still running at shutdown")
	}
	if !m.Loaded() {
		// A half-restored session would overwrite the saved one.
		logger.Warn("shutting down before the session finished restoring, not saving")
		return
	}
	m.Save()
}

// mainWindowLocator finds the main window's container bounds so the
// display holding it can be flagged.
func mainWindowLocator(host *platform.LinuxHost, class func() string) display.MainWindowLocator {
	return func() (geometry.Rect, bool) {
		name := class()
		if name == "" {
			return geometry.Rect{}, false
		}
		windows, err := host.Windows()
		if err != nil {
			return geometry.Rect{}, false
		}
		w, ok := platform.FindByClass(windows, name)
		if !ok {
			return geometry.Rect{}, false
		}
		r, err := w.ContainerBounds()
		if err != nil {
			return geometry.Rect{}, false
		}
		return r, true
	}
}
