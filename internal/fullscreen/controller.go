package fullscreen

import (
	"context"
	"fmt"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

// Target selects which window a toggle applies to.
type Target string

const (
	TargetFocused Target = "focused"
	TargetPointer Target = "pointer"
	TargetMain    Target = "main"
	TargetClass   Target = "class"
	TargetWindow  Target = "window"
)

// Request describes one fullscreen toggle.
type Request struct {
	Target   Target            `json:"target"`
	WindowID platform.WindowID `json:"window_id,omitempty"`
	Class    string            `json:"class,omitempty"`
	// At overrides the class open policy.
	At          *geometry.Point `json:"at,omitempty"`
	ShowToolbar *bool           `json:"show_toolbar,omitempty"`

	present bool
}

// Result is the outcome of a toggle.
type Result struct {
	Fullscreen   bool              `json:"fullscreen"`
	Queued       bool              `json:"queued,omitempty"`
	WindowID     platform.WindowID `json:"window_id,omitempty"`
	WindowType   string            `json:"window_type,omitempty"`
	ScreenBounds geometry.Rect     `json:"screen_bounds"`
}

func resultFor(s *WindowState) Result {
	return Result{
		Fullscreen:   s.IsFullscreen,
		WindowID:     s.WindowID,
		WindowType:   s.WindowType,
		ScreenBounds: s.ScreenBounds,
	}
}

// Status is a point-in-time view of the manager.
type Status struct {
	Loaded          bool              `json:"loaded"`
	Queued          int               `json:"queued"`
	Presenting      bool              `json:"presenting"`
	MainWindowClass string            `json:"main_window_class,omitempty"`
	Displays        []display.Display `json:"displays"`
	States          []WindowState     `json:"states"`
}

// Toggle flips the fullscreen state of the window selected by req. Before
// FinishLoad the request is queued and the result reports Queued.
func (m *Manager) Toggle(ctx context.Context, req Request) (Result, error) {
	var (
		res Result
		err error
	)
	m.withLock(func() {
		res, err = m.submitLocked(ctx, req)
	})
	return res, err
}

// ToggleType toggles a window of class using the class's open policy.
func (m *Manager) ToggleType(ctx context.Context, class string) (Result, error) {
	return m.Toggle(ctx, Request{Target: TargetClass, Class: class})
}

// ToggleFocused toggles the focused window.
func (m *Manager) ToggleFocused(ctx context.Context) (Result, error) {
	return m.Toggle(ctx, Request{Target: TargetFocused})
}

// ToggleUnderPointer toggles the topmost window under the pointer on the
// display the pointer is on.
func (m *Manager) ToggleUnderPointer(ctx context.Context) (Result, error) {
	return m.Toggle(ctx, Request{Target: TargetPointer})
}

// ToggleMain toggles the main window.
func (m *Manager) ToggleMain(ctx context.Context) (Result, error) {
	return m.Toggle(ctx, Request{Target: TargetMain})
}

func (m *Manager) submitLocked(ctx context.Context, req Request) (Result, error) {
	if !m.loaded {
		req = m.pinRequest(req)
		m.queue = append(m.queue, req)
		m.logger.Info("fullscreen session not loaded yet, toggle queued", "target", req.Target, "class", req.Class, "queued", len(m.queue))
		return Result{Queued: true, WindowID: req.WindowID, WindowType: req.Class}, nil
	}
	return m.toggleLocked(ctx, req)
}

// pinRequest resolves the parts of a request that depend on the moment it
// was made, so a queued request replays against the same window.
func (m *Manager) pinRequest(req Request) Request {
	if m.host == nil {
		return req
	}
	switch req.Target {
	case TargetFocused:
		if w, err := m.host.ActiveWindow(); err == nil && w != nil {
			req.Target, req.WindowID = TargetWindow, w.ID()
		}
	case TargetPointer:
		if req.At == nil {
			if p, err := m.host.Pointer(); err == nil {
				req.At = &p
			}
		}
	}
	return req
}

func (m *Manager) toggleLocked(ctx context.Context, req Request) (Result, error) {
	switch req.Target {
	case TargetWindow:
		w, ok := m.host.Window(req.WindowID)
		if !ok {
			return Result{}, fmt.Errorf("window %d not found", req.WindowID)
		}
		return m.toggleWindowLocked(w, req, nil)

	case TargetFocused:
		w, err := m.host.ActiveWindow()
		if err != nil {
			return Result{}, fmt.Errorf("failed to get focused window: %w", err)
		}
		return m.toggleWindowLocked(w, req, nil)

	case TargetPointer:
		p, err := m.requestPoint(req)
		if err != nil {
			return Result{}, err
		}
		w, err := m.host.WindowAt(p)
		if err != nil {
			return Result{}, fmt.Errorf("no window under pointer: %w", err)
		}
		return m.toggleWindowLocked(w, req, &p)

	case TargetMain:
		return m.toggleMainLocked(req)

	case TargetClass, "":
		if req.Class == "" {
			return Result{}, fmt.Errorf("class is required")
		}
		return m.toggleTypeLocked(ctx, req)
	}
	return Result{}, fmt.Errorf("unknown toggle target %q", req.Target)
}

func (m *Manager) requestPoint(req Request) (geometry.Point, error) {
	if req.At != nil {
		return *req.At, nil
	}
	p, err := m.host.Pointer()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return p, nil
}

// toggleWindowLocked toggles a specific window. Without an explicit point
// the window goes fullscreen on the display it is on.
func (m *Manager) toggleWindowLocked(w platform.WindowHandle, req Request, at *geometry.Point) (Result, error) {
	if m.isMainClass(w.Class()) {
		// There is one main window. While it is windowed it follows the
		// window that was picked; once fullscreen any pick exits it.
		if s := m.states.MainState(m.opts.MainWindowClass); !s.IsFullscreen {
			m.states.Attach(s, w)
		}
		if at != nil && req.At == nil {
			req.At = at
		}
		return m.toggleMainLocked(req)
	}

	s := m.states.FindOrAdd(w)
	if s.IsFullscreen {
		m.exitLocked(s)
		return resultFor(s), nil
	}

	point := m.pointOnWindow(w)
	if req.At != nil {
		point = *req.At
	} else if at != nil {
		point = *at
	}
	opts := m.opts.ClassOptions(w.Class())
	m.enterLocked(s, w, point, boolOr(req.ShowToolbar, opts.ShowToolbar), geometry.Rect{})
	return resultFor(s), nil
}

func (m *Manager) toggleMainLocked(req Request) (Result, error) {
	class := m.opts.MainWindowClass
	if class == "" {
		return Result{}, fmt.Errorf("main_window_class is not configured")
	}
	s := m.states.MainState(class)
	w, ok := m.handleFor(s)
	if !ok {
		return Result{}, fmt.Errorf("main window %q is not running", class)
	}

	if s.IsFullscreen {
		m.exitLocked(s)
		return resultFor(s), nil
	}

	opts := m.opts.ClassOptions(class)
	at, explicit := m.openAt(class, opts, w, req)
	if req.present {
		s.CreatedAtPresentStart = true
	}
	m.enterLocked(s, w, at, boolOr(req.ShowToolbar, opts.ShowToolbar), explicit)
	return resultFor(s), nil
}

// toggleTypeLocked exits the class's fullscreen window on the target
// display if there is one; otherwise it makes a window of the class
// fullscreen there, launching one when none is available.
func (m *Manager) toggleTypeLocked(ctx context.Context, req Request) (Result, error) {
	class := req.Class
	if m.isMainClass(class) {
		return m.toggleMainLocked(req)
	}
	opts := m.opts.ClassOptions(class)

	candidate := m.windowedOfClass(class)
	at, explicit := m.openAt(class, opts, candidate, req)
	target, _ := display.ClosestToPoint(m.currentDisplays(), at)

	if s := m.states.FindByType(class, &target); s != nil {
		m.exitLocked(s)
		return resultFor(s), nil
	}

	created := false
	if candidate == nil || opts.LaunchNew {
		w, err := m.host.Launch(ctx, class)
		if err != nil {
			return Result{}, fmt.Errorf("failed to create %q window: %w", class, err)
		}
		candidate, created = w, true
	}

	s := m.states.FindOrAdd(candidate)
	if created {
		s.CloseOnExitFullscreen = true
	}
	if req.present && !s.IsFullscreen {
		s.CreatedAtPresentStart = true
	}
	m.enterLocked(s, candidate, at, boolOr(req.ShowToolbar, opts.ShowToolbar), explicit)
	return resultFor(s), nil
}

// windowedOfClass returns the first live window of class that is not
// already fullscreen.
func (m *Manager) windowedOfClass(class string) platform.WindowHandle {
	windows, err := m.host.Windows()
	if err != nil {
		m.logger.Warn("failed to list windows", "error", err)
		return nil
	}
	for _, w := range windows {
		if !platform.SameClass(w.Class(), class) {
			continue
		}
		if s := m.states.FindByHandle(w.ID()); s != nil && s.IsFullscreen {
			continue
		}
		return w
	}
	return nil
}

// openAt resolves where class opens fullscreen. The rect is non-empty only
// for OpenPositionAndSize.
func (m *Manager) openAt(class string, opts ClassOptions, w platform.WindowHandle, req Request) (geometry.Point, geometry.Rect) {
	if req.At != nil {
		return *req.At, geometry.Rect{}
	}

	switch opts.OpenAt {
	case OpenPointer:
		p, err := m.host.Pointer()
		if err == nil {
			return p, geometry.Rect{}
		}
		m.logger.Warn("failed to query pointer, using window position", "class", class, "error", err)
	case OpenPosition:
		return geometry.Point{X: opts.Position.X, Y: opts.Position.Y}, geometry.Rect{}
	case OpenPositionAndSize:
		return geometry.Point{X: opts.Position.X, Y: opts.Position.Y}, opts.Position
	}

	if w != nil {
		return m.pointOnWindow(w), geometry.Rect{}
	}
	if opts.OpenAt == OpenCurrent {
		if s := m.states.FindByType(class, nil); s != nil {
			if sw, ok := m.handleFor(s); ok {
				return m.pointOnWindow(sw), geometry.Rect{}
			}
		}
	}
	return m.fallbackPoint(), geometry.Rect{}
}

// pointOnWindow returns the centre of w's frame.
func (m *Manager) pointOnWindow(w platform.WindowHandle) geometry.Point {
	if r, err := w.ContainerBounds(); err == nil && !r.Empty() {
		return r.Center()
	}
	if r, err := w.Position(); err == nil {
		return r.Center()
	}
	return m.fallbackPoint()
}

// fallbackPoint is the centre of the main window, else of the primary
// display.
func (m *Manager) fallbackPoint() geometry.Point {
	if m.opts.MainWindowClass != "" {
		if w, ok := m.handleFor(m.states.MainState(m.opts.MainWindowClass)); ok {
			if r, err := w.ContainerBounds(); err == nil && !r.Empty() {
				return r.Center()
			}
		}
	}
	if d, ok := display.Primary(m.currentDisplays()); ok {
		return d.Bounds.Center()
	}
	return geometry.Point{}
}

// ToggleToolbar flips the toolbar of the focused fullscreen window, else of
// the fullscreen main window, else of the window it was last flipped on.
// It returns the new toolbar visibility.
func (m *Manager) ToggleToolbar() (bool, error) {
	var (
		show bool
		err  error
	)
	m.withLock(func() {
		s := m.focusedState()
		if s == nil || !s.IsFullscreen {
			if m.opts.MainWindowClass != "" {
				s = m.states.MainState(m.opts.MainWindowClass)
			}
		}
		if (s == nil || !s.IsFullscreen) && m.lastToolbar != nil {
			s = m.lastToolbar
		}
		if s == nil || !s.IsFullscreen {
			m.lastToolbar = nil
			err = fmt.Errorf("no fullscreen window to toggle the toolbar on")
			return
		}

		m.lastToolbar = s
		show = !s.ShowTopToolbar
		w, ok := m.handleFor(s)
		if !ok {
			s.ShowTopToolbar = show
			m.saveLocked()
			return
		}
		m.enterLocked(s, w, s.FullscreenAtPosition, show, geometry.Rect{})
	})
	return show, err
}

func (m *Manager) focusedState() *WindowState {
	if m.host == nil {
		return nil
	}
	w, err := m.host.ActiveWindow()
	if err != nil || w == nil {
		return nil
	}
	if m.isMainClass(w.Class()) && m.opts.MainWindowClass != "" {
		return m.states.MainState(m.opts.MainWindowClass)
	}
	return m.states.FindByHandle(w.ID())
}

// CloseAll exits every fullscreen window. It reports whether any was
// fullscreen.
func (m *Manager) CloseAll() bool {
	closed := false
	m.withLock(func() {
		for _, s := range m.states.Fullscreen() {
			m.exitLocked(s)
			closed = true
		}
	})
	return closed
}

// PresentStart makes every class flagged fullscreen_on_present fullscreen
// at its open position, unless it already is. Windows entered this way are
// flagged CreatedAtPresentStart.
func (m *Manager) PresentStart(ctx context.Context) []Result {
	var results []Result
	m.withLock(func() {
		m.presenting = true
		for _, class := range m.opts.PresentClasses() {
			opts := m.opts.ClassOptions(class)
			req := Request{Target: TargetClass, Class: class, present: true}
			if m.loaded {
				at, _ := m.openAt(class, opts, m.windowedOfClass(class), req)
				if m.isTypeFullscreenAtLocked(class, at) {
					continue
				}
			}
			res, err := m.submitLocked(ctx, req)
			if err != nil {
				m.logger.Warn("failed to enter fullscreen on present start", "class", class, "error", err)
				continue
			}
			results = append(results, res)
		}
	})
	return results
}

// PresentStop exits fullscreen windows according to CloseOnPresentStop and
// returns how many were exited.
func (m *Manager) PresentStop() int {
	exited := 0
	m.withLock(func() {
		m.presenting = false
		for _, s := range m.states.Fullscreen() {
			switch m.opts.CloseOnPresentStop {
			case PresentCloseAll:
			case PresentCloseCreatedAtStart, "":
				if !s.CreatedAtPresentStart {
					continue
				}
			default:
				continue
			}
			m.exitLocked(s)
			exited++
		}
		for _, s := range m.states.All() {
			s.CreatedAtPresentStart = false
		}
		m.saveLocked()
	})
	return exited
}

// Presenting reports whether presentation mode is on.
func (m *Manager) Presenting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presenting
}

// IsTypeFullscreenAt reports whether a window of class is fullscreen on
// the display containing p.
func (m *Manager) IsTypeFullscreenAt(class string, p geometry.Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isTypeFullscreenAtLocked(class, p)
}

func (m *Manager) isTypeFullscreenAtLocked(class string, p geometry.Point) bool {
	for _, s := range m.states.Fullscreen() {
		if !platform.SameClass(s.WindowType, class) {
			continue
		}
		if _, ok := m.states.Handle(s); !ok && !s.MainWindow {
			continue
		}
		if s.ScreenBounds.Contains(p) {
			return true
		}
	}
	return false
}

// Fullscreen returns a copy of every fullscreen state.
func (m *Manager) Fullscreen() []WindowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []WindowState
	for _, s := range m.states.Snapshot() {
		if s.IsFullscreen {
			out = append(out, s)
		}
	}
	return out
}

// Tracked pairs a state with its live window.
type Tracked struct {
	State  WindowState
	Window platform.WindowHandle
}

// Tracked returns the states that currently have a live window.
func (m *Manager) Tracked() []Tracked {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Tracked
	for _, s := range m.states.All() {
		if w, ok := m.states.Handle(s); ok {
			out = append(out, Tracked{State: *s, Window: w})
		}
	}
	return out
}

// Status returns the current session and display layout.
func (m *Manager) Status() Status {
	m.mu.Lock()
	st := Status{
		Loaded:          m.loaded,
		Queued:          len(m.queue),
		Presenting:      m.presenting,
		MainWindowClass: m.opts.MainWindowClass,
		States:          m.states.Snapshot(),
	}
	m.mu.Unlock()
	st.Displays = m.currentDisplays()
	return st
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}
