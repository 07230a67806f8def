package fullscreen

import (
	"time"

	"github.com/brunoga/deep"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

// WindowState tracks one window, or the main window singleton, across
// fullscreen transitions. Every field is persisted; the live handle is held
// by the owning Collection.
type WindowState struct {
	WindowType  string            `json:"window_type"`
	ActualType  string            `json:"actual_type"`
	WindowName  string            `json:"window_name"`
	WindowTitle string            `json:"window_title"`
	WindowID    platform.WindowID `json:"window_id"`
	MainWindow  bool              `json:"main_window,omitempty"`

	IsFullscreen          bool `json:"is_fullscreen"`
	ShowTopToolbar        bool `json:"show_top_toolbar"`
	CloseOnExitFullscreen bool `json:"close_on_exit_fullscreen"`
	CreatedAtPresentStart bool `json:"created_at_present_start"`
	HasFocus              bool `json:"has_focus"`

	PreFullscreenPosition   geometry.Rect `json:"pre_fullscreen_position"`
	PreFullscreenMinSize    geometry.Size `json:"pre_fullscreen_min_size"`
	PreFullscreenMaxSize    geometry.Size `json:"pre_fullscreen_max_size"`
	PreFullscreenMaximized  bool          `json:"pre_fullscreen_maximized"`
	PreFullscreenBorderless bool          `json:"pre_fullscreen_borderless"`

	FullscreenAtPosition geometry.Point `json:"fullscreen_at_position"`
	ScreenBounds         geometry.Rect  `json:"screen_bounds"`
	ContainerPosition    geometry.Rect  `json:"container_position"`
	EnteredAt            time.Time      `json:"entered_at,omitempty"`
}

// OnDisplay reports whether the state is fullscreen on d.
func (s *WindowState) OnDisplay(d display.Display) bool {
	return s.IsFullscreen && display.SameDisplay(display.Display{Bounds: s.ScreenBounds}, d)
}

// Collection is the ordered set of tracked window states. Live handles are
// kept beside the states so that states stay plain data.
type Collection struct {
	states  []*WindowState
	handles map[*WindowState]platform.WindowHandle
}

// NewCollection builds a collection from persisted states. None of them has
// a handle until one is attached.
func NewCollection(states []WindowState) *Collection {
	c := &Collection{handles: make(map[*WindowState]platform.WindowHandle)}
	for i := range states {
		s := states[i]
		c.states = append(c.states, &s)
	}
	return c
}

// Len returns the number of tracked states.
func (c *Collection) Len() int { return len(c.states) }

// All returns the tracked states in insertion order.
func (c *Collection) All() []*WindowState {
	return append([]*WindowState(nil), c.states...)
}

// Add appends s, optionally bound to w.
func (c *Collection) Add(s *WindowState, w platform.WindowHandle) {
	c.states = append(c.states, s)
	if w != nil {
		c.Attach(s, w)
	}
}

// Attach binds a live handle to s and refreshes its identity fields.
func (c *Collection) Attach(s *WindowState, w platform.WindowHandle) {
	if c.handles == nil {
		c.handles = make(map[*WindowState]platform.WindowHandle)
	}
	c.handles[s] = w
	s.WindowID = w.ID()
	if s.ActualType == "" {
		s.ActualType = w.Instance()
	}
	s.WindowName = w.Instance()
	s.WindowTitle = w.Title()
}

// Detach drops the handle bound to s.
func (c *Collection) Detach(s *WindowState) {
	delete(c.handles, s)
}

// Handle returns the live handle bound to s, if any.
func (c *Collection) Handle(s *WindowState) (platform.WindowHandle, bool) {
	w, ok := c.handles[s]
	if !ok || w == nil || !w.Alive() {
		return nil, false
	}
	return w, true
}

// Contains reports whether s is still tracked.
func (c *Collection) Contains(s *WindowState) bool {
	for _, st := range c.states {
		if st == s {
			return true
		}
	}
	return false
}

// FindByHandle returns the state bound to the window with id.
func (c *Collection) FindByHandle(id platform.WindowID) *WindowState {
	for _, s := range c.states {
		if w, ok := c.handles[s]; ok && w != nil && w.ID() == id {
			return s
		}
	}
	return nil
}

// FindByType returns the first live (or main window) state of windowType.
// A non-nil d restricts the search to states fullscreen on that display.
func (c *Collection) FindByType(windowType string, d *display.Display) *WindowState {
	for _, s := range c.states {
		if !platform.SameClass(s.WindowType, windowType) {
			continue
		}
		if _, ok := c.Handle(s); !ok && !s.MainWindow {
			continue
		}
		if d != nil && !s.OnDisplay(*d) {
			continue
		}
		return s
	}
	return nil
}

// FindOrAdd returns the state bound to w, creating it on first use.
func (c *Collection) FindOrAdd(w platform.WindowHandle) *WindowState {
	if s := c.FindByHandle(w.ID()); s != nil {
		return s
	}
	s := &WindowState{WindowType: w.Class(), ActualType: w.Instance()}
	c.Add(s, w)
	return s
}

// MainState returns the main window sentinel for class, creating it on
// first use.
func (c *Collection) MainState(class string) *WindowState {
	for _, s := range c.states {
		if s.MainWindow {
			return s
		}
	}
	s := &WindowState{WindowType: class, ActualType: class, WindowName: class, MainWindow: true}
	c.Add(s, nil)
	return s
}

// Fullscreen returns every state currently fullscreen.
func (c *Collection) Fullscreen() []*WindowState {
	var out []*WindowState
	for _, s := range c.states {
		if s.IsFullscreen {
			out = append(out, s)
		}
	}
	return out
}

// FullscreenOn returns the states fullscreen on d.
func (c *Collection) FullscreenOn(d display.Display) []*WindowState {
	var out []*WindowState
	for _, s := range c.states {
		if s.OnDisplay(d) {
			out = append(out, s)
		}
	}
	return out
}

// Remove stops tracking s.
func (c *Collection) Remove(s *WindowState) {
	for i, st := range c.states {
		if st == s {
			c.states = append(c.states[:i], c.states[i+1:]...)
			break
		}
	}
	delete(c.handles, s)
}

// Prune removes states whose window is gone, except the main window
// sentinel. It returns the number of states removed.
func (c *Collection) Prune() int {
	kept := c.states[:0]
	removed := 0
	for _, s := range c.states {
		if _, ok := c.Handle(s); ok || s.MainWindow {
			kept = append(kept, s)
			continue
		}
		delete(c.handles, s)
		removed++
	}
	for i := len(kept); i < len(c.states); i++ {
		c.states[i] = nil
	}
	c.states = kept
	return removed
}

// Snapshot returns a deep copy of the states, safe to hand to readers that
// do not hold the manager lock.
func (c *Collection) Snapshot() []WindowState {
	out := make([]WindowState, 0, len(c.states))
	for _, s := range c.states {
		out = append(out, *s)
	}
	return deep.MustCopy(out)
}
