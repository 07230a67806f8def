package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/remeh/sizedwaitgroup"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

// ReconcileOptions tune Reconcile.
type ReconcileOptions struct {
	MainWindowClass string
	ToolbarHeight   int
	// CloseOrphans closes borderless windows pinned to a display that no
	// saved entry claims. Only classes in Classes or in the saved session
	// are considered.
	CloseOrphans bool
	Classes      []string
	Logger       *slog.Logger
}

// Report summarises one reconciliation.
type Report struct {
	Reattached    int `json:"reattached"`
	Relaunched    int `json:"relaunched"`
	Dropped       int `json:"dropped"`
	OrphansClosed int `json:"orphans_closed"`
}

// maxParallelLaunches bounds how many classes are relaunched at once.
const maxParallelLaunches = 3

// Reconcile matches saved fullscreen entries to live windows and hands
// them to m. Window IDs do not survive a restart of the window, so an
// entry is matched by its saved ID when that window still has the same
// class, else by class and frame geometry. The main window is matched by
// class alone. Entries with no match are relaunched and re-entered at
// their recorded position. Different classes launch in parallel; launches
// of one class run one after another so each waits for its own window.
func Reconcile(ctx context.Context, m *fullscreen.Manager, host platform.Host, displays []display.Display, saved []fullscreen.WindowState, opts ReconcileOptions) Report {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var report Report
	windows, err := host.Windows()
	if err != nil {
		logger.Warn("failed to list windows for session restore", "error", err)
	}

	claimed := make(map[platform.WindowID]bool)
	entries := make([]restoreEntry, 0, len(saved))
	pending := make(map[string][]int)
	var classOrder []string

	for _, s := range saved {
		if !s.IsFullscreen {
			continue
		}

		isMain := s.MainWindow || (opts.MainWindowClass != "" && platform.SameClass(s.WindowType, opts.MainWindowClass))
		e := restoreEntry{state: s}
		if isMain {
			e.state.MainWindow = true
			if found, ok := platform.FindByClass(windows, s.WindowType); ok && !claimed[found.ID()] {
				e.window = found
			} else {
				logger.Info("main window not running, keeping its fullscreen entry", "class", s.WindowType)
				e.keep = true
			}
		} else {
			e.window = matchWindow(host, windows, claimed, s)
		}

		if e.window != nil {
			claimed[e.window.ID()] = true
			report.Reattached++
			logger.Info("reattached fullscreen window", "class", s.WindowType, "window_id", e.window.ID())
		} else if !e.keep {
			key := strings.ToLower(s.WindowType)
			if _, ok := pending[key]; !ok {
				classOrder = append(classOrder, key)
			}
			pending[key] = append(pending[key], len(entries))
		}
		entries = append(entries, e)
	}

	relaunch(ctx, host, entries, pending, classOrder, logger)

	var focus platform.WindowHandle
	for _, e := range entries {
		switch {
		case e.keep:
			m.Restore(e.state, nil)
			continue
		case e.err != nil:
			report.Dropped++
			logger.Warn("failed to recreate fullscreen window", "class", e.state.WindowType, "error", e.err)
			continue
		case e.launched:
			e.state.CloseOnExitFullscreen = true
			claimed[e.window.ID()] = true
			report.Relaunched++
			logger.Info("recreated fullscreen window", "class", e.state.WindowType, "window_id", e.window.ID())
		}
		m.Restore(e.state, e.window)
		if e.state.HasFocus {
			focus = e.window
		}
	}

	if opts.CloseOrphans {
		report.OrphansClosed = closeOrphans(windows, claimed, displays, saved, opts, logger)
	}

	if focus != nil {
		if err := focus.Focus(); err != nil {
			logger.Debug("failed to refocus window", "window_id", focus.ID(), "error", err)
		}
	}
	return report
}

type restoreEntry struct {
	state  fullscreen.WindowState
	window platform.WindowHandle
	// keep marks a main-window entry restored without a live window.
	keep     bool
	launched bool
	err      error
}

// relaunch launches a window for every pending entry, filling in window
// or err. pending maps a lower-cased class to entry indices.
func relaunch(ctx context.Context, host platform.Host, entries []restoreEntry, pending map[string][]int, classOrder []string, logger *slog.Logger) {
	if len(classOrder) == 0 {
		return
	}
	swg := sizedwaitgroup.New(maxParallelLaunches)
	for _, class := range classOrder {
		if err := swg.AddWithContext(ctx); err != nil {
			for _, i := range pending[class] {
				entries[i].err = err
			}
			continue
		}
		go func(indices []int) {
			defer swg.Done()
			for _, i := range indices {
				w, err := host.Launch(ctx, entries[i].state.WindowType)
				if err != nil {
					entries[i].err = err
					continue
				}
				entries[i].window = w
				entries[i].launched = true
			}
		}(pending[class])
	}
	swg.Wait()
	logger.Debug("relaunch finished", "classes", len(classOrder))
}

func matchWindow(host platform.Host, windows []platform.WindowHandle, claimed map[platform.WindowID]bool, s fullscreen.WindowState) platform.WindowHandle {
	if s.WindowID != 0 && !claimed[s.WindowID] {
		if w, ok := host.Window(s.WindowID); ok && platform.SameClass(w.Class(), s.WindowType) {
			return w
		}
	}
	for _, w := range windows {
		if claimed[w.ID()] || !platform.SameClass(w.Class(), s.WindowType) {
			continue
		}
		if r, err := w.ContainerBounds(); err == nil && r == s.ContainerPosition {
			return w
		}
	}
	return nil
}

// closeOrphans closes windows that look like leftovers of an unclean
// shutdown: borderless, covering a whole display, and not claimed.
func closeOrphans(windows []platform.WindowHandle, claimed map[platform.WindowID]bool, displays []display.Display, saved []fullscreen.WindowState, opts ReconcileOptions, logger *slog.Logger) int {
	classes := append([]string(nil), opts.Classes...)
	for _, s := range saved {
		classes = append(classes, s.WindowType)
	}

	closed := 0
	for _, w := range windows {
		if claimed[w.ID()] || !w.Borderless() {
			continue
		}
		if opts.MainWindowClass != "" && platform.SameClass(w.Class(), opts.MainWindowClass) {
			continue
		}
		if !classListed(classes, w.Class()) {
			continue
		}
		r, err := w.Position()
		if err != nil || !pinnedToDisplay(r, displays, opts.ToolbarHeight) {
			continue
		}
		if err := w.Close(); err != nil {
			logger.Warn("failed to close orphaned fullscreen window", "window_id", w.ID(), "class", w.Class(), "error", err)
			continue
		}
		logger.Info("closed orphaned fullscreen window", "window_id", w.ID(), "class", w.Class())
		closed++
	}
	return closed
}

func classListed(classes []string, class string) bool {
	for _, c := range classes {
		if platform.SameClass(c, class) {
			return true
		}
	}
	return false
}

func pinnedToDisplay(r geometry.Rect, displays []display.Display, toolbarHeight int) bool {
	for _, d := range displays {
		if r == d.Bounds {
			return true
		}
		hidden := d.Bounds
		hidden.Y -= toolbarHeight
		hidden.Height += toolbarHeight
		if toolbarHeight > 0 && r == hidden {
			return true
		}
	}
	return false
}
