package platform

import (
	"context"
	"strings"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/geometry"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// WindowHandle is the capability set the fullscreen core needs from a live
// top-level window. Every call may fail once the window is gone.
type WindowHandle interface {
	ID() WindowID
	// Class is the window type (WM_CLASS class on X11).
	Class() string
	// Instance is the concrete variant of the type (WM_CLASS instance).
	Instance() string
	Title() string
	PID() int
	Alive() bool

	Position() (geometry.Rect, error)
	SetPosition(r geometry.Rect) error
	MinMaxSize() (min, max geometry.Size, err error)
	SetMinMaxSize(min, max geometry.Size) error
	Maximized() (bool, error)
	SetMaximized(maximized bool) error
	Borderless() bool
	SetBorderless(borderless bool) error

	// ContainerBounds returns the outer bounds including decorations.
	ContainerBounds() (geometry.Rect, error)
	Close() error
	Focus() error
}

// Host abstracts the window system the daemon runs against.
type Host interface {
	display.Prober

	Windows() ([]WindowHandle, error)
	Window(id WindowID) (WindowHandle, bool)
	ActiveWindow() (WindowHandle, error)
	// WindowAt returns the topmost window containing p.
	WindowAt(p geometry.Point) (WindowHandle, error)
	Pointer() (geometry.Point, error)
	// Launch creates a new window of class and returns it once mapped.
	Launch(ctx context.Context, class string) (WindowHandle, error)
}

// WindowInfo is a serialisable snapshot of a window.
type WindowInfo struct {
	ID       WindowID      `json:"id"`
	Class    string        `json:"class"`
	Instance string        `json:"instance"`
	Title    string        `json:"title"`
	PID      int           `json:"pid"`
	Bounds   geometry.Rect `json:"bounds"`
}

// Describe captures a WindowInfo from a live handle.
func Describe(w WindowHandle) WindowInfo {
	info := WindowInfo{
		ID:       w.ID(),
		Class:    w.Class(),
		Instance: w.Instance(),
		Title:    w.Title(),
		PID:      w.PID(),
	}
	if r, err := w.Position(); err == nil {
		info.Bounds = r
	}
	return info
}

// SameClass compares window classes case-insensitively.
func SameClass(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// FindByClass returns the first window whose class matches, case-insensitively.
func FindByClass(windows []WindowHandle, class string) (WindowHandle, bool) {
	for _, w := range windows {
		if SameClass(w.Class(), class) {
			return w, true
		}
	}
	return nil, false
}
