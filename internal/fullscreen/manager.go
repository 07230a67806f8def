package fullscreen

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

// Store persists the tracked states.
type Store interface {
	Save(states []WindowState) error
}

// DisplaySource lists the attached displays.
type DisplaySource interface {
	Displays() []display.Display
}

// Config wires a Manager to its collaborators.
type Config struct {
	Host     platform.Host
	Displays DisplaySource
	Store    Store
	Options  Options
	Logger   *slog.Logger
	// Now is swapped out in tests.
	Now func() time.Time
}

// Manager owns the fullscreen session of one daemon. All mutations are
// serialised; host calls that fail inside a transition are logged and the
// transition carries on.
type Manager struct {
	mu sync.Mutex

	host     platform.Host
	displays DisplaySource
	store    Store
	opts     Options
	logger   *slog.Logger
	now      func() time.Time

	states      *Collection
	lastToolbar *WindowState

	loaded     bool
	queue      []Request
	onLoad     []func()
	presenting bool

	subs      []subscriber
	nextSubID int
	pending   []Event
}

// NewManager creates a Manager with an empty session. Toggles are queued
// until FinishLoad is called.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		host:     cfg.Host,
		displays: cfg.Displays,
		store:    cfg.Store,
		opts:     cfg.Options,
		logger:   cfg.Logger,
		now:      cfg.Now,
		states:   NewCollection(nil),
	}
}

// SetOptions replaces the options after a config reload.
func (m *Manager) SetOptions(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
}

// Options returns the current options.
func (m *Manager) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// Loaded reports whether FinishLoad has run.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Restore re-adds a persisted state bound to w and, when the state was
// fullscreen, re-applies fullscreen at its recorded position. The recorded
// pre-fullscreen snapshot is kept. A nil w is only accepted for the main
// window sentinel.
func (m *Manager) Restore(s WindowState, w platform.WindowHandle) {
	m.withLock(func() {
		st := s
		if st.MainWindow {
			main := m.states.MainState(st.WindowType)
			*main = st
			if w != nil {
				m.states.Attach(main, w)
			}
			if w != nil && main.IsFullscreen {
				m.enterLocked(main, w, main.FullscreenAtPosition, main.ShowTopToolbar, geometry.Rect{})
			}
			return
		}
		if w == nil {
			m.logger.Warn("dropping session entry without a window", "class", st.WindowType)
			return
		}
		if existing := m.states.FindByHandle(w.ID()); existing != nil {
			m.states.Remove(existing)
		}
		m.states.Add(&st, w)
		if st.IsFullscreen {
			m.enterLocked(&st, w, st.FullscreenAtPosition, st.ShowTopToolbar, geometry.Rect{})
		}
	})
}

// FinishLoad marks the session as loaded, replays queued toggles in the
// order they arrived and then runs the RunOnLoad callbacks.
func (m *Manager) FinishLoad(ctx context.Context) {
	var callbacks []func()
	m.withLock(func() {
		if m.loaded {
			return
		}
		m.loaded = true

		queue := m.queue
		m.queue = nil
		if len(queue) > 0 {
			m.logger.Info("replaying queued fullscreen toggles", "count", len(queue))
		}
		for _, req := range queue {
			if _, err := m.toggleLocked(ctx, req); err != nil {
				m.logger.Warn("queued toggle failed", "target", req.Target, "class", req.Class, "error", err)
			}
		}

		callbacks = m.onLoad
		m.onLoad = nil
	})
	for _, fn := range callbacks {
		fn()
	}
}

// RunOnLoad runs fn after FinishLoad, or right away if it already ran.
func (m *Manager) RunOnLoad(fn func()) {
	m.mu.Lock()
	if !m.loaded {
		m.onLoad = append(m.onLoad, fn)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	fn()
}

// EnterFullscreen puts w into fullscreen on the display closest to at.
func (m *Manager) EnterFullscreen(w platform.WindowHandle, at geometry.Point, showToolbar bool) WindowState {
	var out WindowState
	m.withLock(func() {
		s := m.stateFor(w)
		m.enterLocked(s, w, at, showToolbar, geometry.Rect{})
		out = *s
	})
	return out
}

// ExitFullscreen restores (or closes) the window with id. It reports
// whether the window was fullscreen.
func (m *Manager) ExitFullscreen(id platform.WindowID) bool {
	exited := false
	m.withLock(func() {
		s := m.states.FindByHandle(id)
		if s == nil || !s.IsFullscreen {
			return
		}
		m.exitLocked(s)
		exited = true
	})
	return exited
}

// Save prunes dead entries and persists the session.
func (m *Manager) Save() {
	m.withLock(m.saveLocked)
}

// Prune drops entries whose window has gone away and saves when anything
// changed. It returns the number of entries removed.
func (m *Manager) Prune() int {
	removed := 0
	m.withLock(func() {
		removed = m.states.Prune()
		if removed > 0 {
			m.saveLocked()
		}
	})
	return removed
}

func (m *Manager) stateFor(w platform.WindowHandle) *WindowState {
	if m.isMainClass(w.Class()) {
		s := m.states.MainState(m.opts.MainWindowClass)
		if _, ok := m.states.Handle(s); !ok {
			m.states.Attach(s, w)
		}
		return s
	}
	return m.states.FindOrAdd(w)
}

func (m *Manager) isMainClass(class string) bool {
	return m.opts.MainWindowClass != "" && platform.SameClass(class, m.opts.MainWindowClass)
}

// handleFor returns the live handle for s. The main window sentinel is
// looked up by class when it has no handle yet.
func (m *Manager) handleFor(s *WindowState) (platform.WindowHandle, bool) {
	if w, ok := m.states.Handle(s); ok {
		return w, true
	}
	if !s.MainWindow || m.host == nil {
		return nil, false
	}
	windows, err := m.host.Windows()
	if err != nil {
		m.logger.Warn("failed to list windows", "error", err)
		return nil, false
	}
	w, ok := platform.FindByClass(windows, s.WindowType)
	if !ok {
		return nil, false
	}
	m.states.Attach(s, w)
	return w, true
}

func (m *Manager) enterLocked(s *WindowState, w platform.WindowHandle, at geometry.Point, showToolbar bool, explicit geometry.Rect) {
	log := m.logger.With("window_id", w.ID(), "class", s.WindowType)
	wasFullscreen := s.IsFullscreen

	if !wasFullscreen {
		m.capture(s, w, log)
	}

	displays := m.currentDisplays()
	target, _ := display.ClosestToPoint(displays, at)
	rect := m.targetRect(displays, target, showToolbar, explicit)

	for _, other := range m.states.FullscreenOn(target) {
		if other != s {
			log.Info("evicting fullscreen window from display", "evicted", other.WindowID, "display", target.Bounds.String())
			m.exitLocked(other)
		}
	}

	if maximized, err := w.Maximized(); err == nil && maximized {
		if err := w.SetMaximized(false); err != nil {
			log.Warn("failed to unmaximize window", "error", err)
		}
	}
	if err := w.SetBorderless(true); err != nil {
		log.Warn("failed to remove decorations", "error", err)
	}
	if err := w.SetMinMaxSize(rect.Size(), rect.Size()); err != nil {
		log.Warn("failed to pin window size", "error", err)
	}
	m.applyPosition(w, rect, log)
	if err := w.Focus(); err != nil {
		log.Debug("failed to focus window", "error", err)
	}

	m.states.Attach(s, w)
	s.IsFullscreen = true
	s.ShowTopToolbar = showToolbar
	s.FullscreenAtPosition = at
	s.ScreenBounds = target.Bounds
	s.ContainerPosition = rect
	if !wasFullscreen || s.EnteredAt.IsZero() {
		s.EnteredAt = m.now()
	}

	log.Info("entered fullscreen", "display", target.Bounds.String(), "rect", rect.String(), "toolbar", showToolbar)
	m.saveLocked()
	m.emit(Event{WindowID: w.ID(), WindowType: s.WindowType, AtPosition: at, Entered: true})
}

func (m *Manager) exitLocked(s *WindowState) {
	log := m.logger.With("window_id", s.WindowID, "class", s.WindowType)

	if w, ok := m.handleFor(s); ok {
		if s.CloseOnExitFullscreen {
			if err := w.Close(); err != nil {
				log.Warn("failed to close window", "error", err)
			}
			m.states.Detach(s)
		} else {
			m.restoreGeometry(s, w, log)
		}
	}

	at := s.FullscreenAtPosition
	s.IsFullscreen = false
	s.CreatedAtPresentStart = false
	s.EnteredAt = time.Time{}

	log.Info("exited fullscreen", "closed", s.CloseOnExitFullscreen)
	m.saveLocked()
	m.emit(Event{WindowID: s.WindowID, WindowType: s.WindowType, AtPosition: at, Entered: false})
}

// capture records the geometry restored on exit.
func (m *Manager) capture(s *WindowState, w platform.WindowHandle, log *slog.Logger) {
	if r, err := w.Position(); err != nil {
		log.Warn("failed to read window position", "error", err)
	} else {
		s.PreFullscreenPosition = r
	}
	if minSize, maxSize, err := w.MinMaxSize(); err != nil {
		log.Warn("failed to read size limits", "error", err)
	} else {
		s.PreFullscreenMinSize, s.PreFullscreenMaxSize = minSize, maxSize
	}
	if maximized, err := w.Maximized(); err != nil {
		log.Warn("failed to read maximized state", "error", err)
	} else {
		s.PreFullscreenMaximized = maximized
	}
	s.PreFullscreenBorderless = w.Borderless()
}

func (m *Manager) restoreGeometry(s *WindowState, w platform.WindowHandle, log *slog.Logger) {
	if err := w.SetMinMaxSize(s.PreFullscreenMinSize, s.PreFullscreenMaxSize); err != nil {
		log.Warn("failed to restore size limits", "error", err)
	}
	if err := w.SetBorderless(s.PreFullscreenBorderless); err != nil {
		log.Warn("failed to restore decorations", "error", err)
	}
	m.applyPosition(w, s.PreFullscreenPosition, log)
	if s.PreFullscreenMaximized {
		if err := w.SetMaximized(true); err != nil {
			log.Warn("failed to restore maximized state", "error", err)
		}
	}
}

// applyPosition moves w to r. Some window managers answer the first
// request with a stale geometry; DoubleApplyPosition repeats it for them.
func (m *Manager) applyPosition(w platform.WindowHandle, r geometry.Rect, log *slog.Logger) {
	if err := w.SetPosition(r); err != nil {
		log.Warn("failed to set window position", "rect", r.String(), "error", err)
		return
	}
	if m.opts.DoubleApplyPosition {
		if err := w.SetPosition(r); err != nil {
			log.Warn("failed to re-apply window position", "rect", r.String(), "error", err)
		}
	}
}

// targetRect returns the rect a window takes when fullscreen on target.
func (m *Manager) targetRect(displays []display.Display, target display.Display, showToolbar bool, explicit geometry.Rect) geometry.Rect {
	if !explicit.Empty() {
		return explicit
	}

	rect := target.Bounds
	if !showToolbar && m.opts.ToolbarHeight > 0 {
		rect.Y -= m.opts.ToolbarHeight
		rect.Height += m.opts.ToolbarHeight
	}
	if main, ok := display.WithMainWindow(displays); ok {
		if rel := relativeScale(target, main); math.Abs(rel-1) > 1e-9 {
			rect = rect.Scale(rel)
		}
	}
	return rect
}

func relativeScale(target, main display.Display) float64 {
	ms := main.Scale()
	if ms == 0 {
		return 1
	}
	return target.Scale() / ms
}

func (m *Manager) currentDisplays() []display.Display {
	if m.displays == nil {
		return nil
	}
	return m.displays.Displays()
}

// saveLocked prunes dead entries, refreshes container geometry and focus
// from the live windows and persists the session.
func (m *Manager) saveLocked() {
	m.states.Prune()
	if m.lastToolbar != nil && !m.states.Contains(m.lastToolbar) {
		m.lastToolbar = nil
	}

	var activeID platform.WindowID
	if m.host != nil {
		if aw, err := m.host.ActiveWindow(); err == nil && aw != nil {
			activeID = aw.ID()
		}
	}
	for _, s := range m.states.All() {
		w, ok := m.states.Handle(s)
		if !ok {
			continue
		}
		if r, err := w.ContainerBounds(); err == nil {
			s.ContainerPosition = r
		}
		s.HasFocus = activeID != 0 && w.ID() == activeID
	}

	if m.store == nil {
		return
	}
	if err := m.store.Save(m.states.Snapshot()); err != nil {
		m.logger.Error("failed to save fullscreen session", "error", err)
	}
}
