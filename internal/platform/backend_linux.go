//go:build linux

package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/launcher"
	"github.com/1broseidon/fullframe/internal/x11"
)

// LinuxHost wraps an X11 connection behind the Host interface.
type LinuxHost struct {
	conn     *x11.Connection
	launcher *launcher.Launcher

	// Discovery probes DisplayAt many times in a row; monitors are
	// memoised briefly so each probe does not hit RandR again.
	mu         sync.Mutex
	monitors   []display.Display
	monitorsAt time.Time
}

const monitorMemoTTL = 250 * time.Millisecond

var _ Host = (*LinuxHost)(nil)

// NewLinuxHost creates a host from an existing X11 connection.
func NewLinuxHost(conn *x11.Connection, l *launcher.Launcher) *LinuxHost {
	return &LinuxHost{conn: conn, launcher: l}
}

// NewLinuxHostFromDisplay opens a fresh X11 connection.
func NewLinuxHostFromDisplay(l *launcher.Launcher) (*LinuxHost, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxHost{conn: conn, launcher: l}, nil
}

// SetLauncher replaces the launcher after a config reload.
func (h *LinuxHost) SetLauncher(l *launcher.Launcher) {
	h.launcher = l
}

// Disconnect closes the underlying X11 connection.
func (h *LinuxHost) Disconnect() {
	if h != nil && h.conn != nil {
		h.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (h *LinuxHost) EventLoop() {
	if h != nil && h.conn != nil {
		h.conn.EventLoop()
	}
}

// Quit stops EventLoop.
func (h *LinuxHost) Quit() {
	if h != nil && h.conn != nil {
		h.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (h *LinuxHost) XUtil() *xgbutil.XUtil {
	if h == nil || h.conn == nil {
		return nil
	}
	return h.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (h *LinuxHost) RootWindow() xproto.Window {
	if h == nil || h.conn == nil {
		return 0
	}
	return h.conn.Root
}

// OnScreenChange registers fn for RandR layout changes.
func (h *LinuxHost) OnScreenChange(fn func()) error {
	conn, err := h.connection()
	if err != nil {
		return err
	}
	return conn.OnScreenChange(fn)
}

// DesktopBounds returns the root window area.
func (h *LinuxHost) DesktopBounds() (geometry.Rect, error) {
	conn, err := h.connection()
	if err != nil {
		return geometry.Rect{}, err
	}
	w, hgt, err := conn.RootSize()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{Width: w, Height: hgt}, nil
}

// DisplayAt returns the monitor containing p, or the nearest one.
func (h *LinuxHost) DisplayAt(p geometry.Point) (display.Display, error) {
	displays, err := h.currentMonitors()
	if err != nil {
		return display.Display{}, err
	}
	d, ok := display.ClosestToPoint(displays, p)
	if !ok {
		return display.Display{}, fmt.Errorf("no monitors")
	}
	return d, nil
}

func (h *LinuxHost) currentMonitors() ([]display.Display, error) {
	conn, err := h.connection()
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.monitors != nil && time.Since(h.monitorsAt) < monitorMemoTTL {
		return h.monitors, nil
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	displays := make([]display.Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, h.displayFromMonitor(m))
	}
	h.monitors, h.monitorsAt = displays, time.Now()
	return displays, nil
}

// Windows lists managed normal windows in stacking order, bottom first.
func (h *LinuxHost) Windows() ([]WindowHandle, error) {
	conn, err := h.connection()
	if err != nil {
		return nil, err
	}
	ids, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]WindowHandle, 0, len(ids))
	for _, id := range ids {
		if !conn.IsNormalWindow(id) {
			continue
		}
		windows = append(windows, h.handle(id))
	}
	return windows, nil
}

// Window returns a handle for id if it is still managed.
func (h *LinuxHost) Window(id WindowID) (WindowHandle, bool) {
	conn, err := h.connection()
	if err != nil || id == 0 {
		return nil, false
	}
	if !conn.WindowExists(xproto.Window(id)) {
		return nil, false
	}
	return h.handle(xproto.Window(id)), true
}

// ActiveWindow returns the focused window.
func (h *LinuxHost) ActiveWindow() (WindowHandle, error) {
	conn, err := h.connection()
	if err != nil {
		return nil, err
	}
	id, err := conn.GetActiveWindow()
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("no active window")
	}
	return h.handle(id), nil
}

// WindowAt returns the topmost visible window whose frame contains p.
func (h *LinuxHost) WindowAt(p geometry.Point) (WindowHandle, error) {
	conn, err := h.connection()
	if err != nil {
		return nil, err
	}
	ids, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		if !conn.IsNormalWindow(id) || conn.IsHidden(id) {
			continue
		}
		frame, err := conn.FrameRect(id)
		if err != nil {
			continue
		}
		if areaRect(frame).Contains(p) {
			return h.handle(id), nil
		}
	}
	return nil, fmt.Errorf("no window at %v", p)
}

// Pointer returns the pointer position.
func (h *LinuxHost) Pointer() (geometry.Point, error) {
	conn, err := h.connection()
	if err != nil {
		return geometry.Point{}, err
	}
	x, y, err := conn.QueryPointer()
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: x, Y: y}, nil
}

// Launch starts a new window of class through the configured launcher.
func (h *LinuxHost) Launch(ctx context.Context, class string) (WindowHandle, error) {
	if h.launcher == nil {
		return nil, fmt.Errorf("no launcher configured")
	}
	id, err := h.launcher.Launch(ctx, class, h.candidates)
	if err != nil {
		return nil, err
	}
	w, ok := h.Window(WindowID(id))
	if !ok {
		return nil, fmt.Errorf("launched window %d vanished", id)
	}
	return w, nil
}

func (h *LinuxHost) candidates() ([]launcher.Candidate, error) {
	windows, err := h.Windows()
	if err != nil {
		return nil, err
	}
	out := make([]launcher.Candidate, 0, len(windows))
	for _, w := range windows {
		out = append(out, launcher.Candidate{ID: uint32(w.ID()), Class: w.Class()})
	}
	return out, nil
}

func (h *LinuxHost) handle(id xproto.Window) *linuxWindow {
	class, instance := h.conn.WindowClass(id)
	return &linuxWindow{conn: h.conn, id: id, class: class, instance: instance}
}

func (h *LinuxHost) connection() (*x11.Connection, error) {
	if h == nil || h.conn == nil {
		return nil, fmt.Errorf("x11 host connection is nil")
	}
	return h.conn, nil
}

func (h *LinuxHost) displayFromMonitor(m x11.Monitor) display.Display {
	bounds := geometry.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	// X11 positions windows in device pixels, so logical and physical
	// bounds coincide.
	return display.Display{
		ID:             m.ID,
		Name:           m.Name,
		Bounds:         bounds,
		PhysicalBounds: bounds,
		WorkArea:       areaRect(h.conn.WorkArea(m)),
		Primary:        m.Primary,
	}
}

func areaRect(a x11.Area) geometry.Rect {
	return geometry.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

// linuxWindow is a WindowHandle over one X11 client window.
type linuxWindow struct {
	conn     *x11.Connection
	id       xproto.Window
	class    string
	instance string
}

var _ WindowHandle = (*linuxWindow)(nil)

func (w *linuxWindow) ID() WindowID     { return WindowID(w.id) }
func (w *linuxWindow) Class() string    { return w.class }
func (w *linuxWindow) Instance() string { return w.instance }
func (w *linuxWindow) Title() string    { return w.conn.WindowTitle(w.id) }
func (w *linuxWindow) PID() int         { return w.conn.WindowPID(w.id) }
func (w *linuxWindow) Alive() bool      { return w.conn.WindowExists(w.id) }

// Position returns the outer top-left corner and the client size, the same
// reference _NET_MOVERESIZE_WINDOW uses with NorthWest gravity.
func (w *linuxWindow) Position() (geometry.Rect, error) {
	r, err := w.conn.WindowRect(w.id)
	if err != nil {
		return geometry.Rect{}, err
	}
	left, _, top, _ := w.conn.GetFrameExtents(w.id)
	return geometry.Rect{X: r.X - left, Y: r.Y - top, Width: r.Width, Height: r.Height}, nil
}

func (w *linuxWindow) SetPosition(r geometry.Rect) error {
	return w.conn.MoveResizeWindow(w.id, r.X, r.Y, r.Width, r.Height)
}

func (w *linuxWindow) MinMaxSize() (geometry.Size, geometry.Size, error) {
	minW, minH, maxW, maxH, err := w.conn.SizeLimits(w.id)
	if err != nil {
		return geometry.Size{}, geometry.Size{}, err
	}
	return geometry.Size{Width: minW, Height: minH}, geometry.Size{Width: maxW, Height: maxH}, nil
}

func (w *linuxWindow) SetMinMaxSize(min, max geometry.Size) error {
	return w.conn.SetSizeLimits(w.id, min.Width, min.Height, max.Width, max.Height)
}

func (w *linuxWindow) Maximized() (bool, error) {
	return w.conn.IsMaximized(w.id)
}

func (w *linuxWindow) SetMaximized(maximized bool) error {
	return w.conn.SetMaximized(w.id, maximized)
}

func (w *linuxWindow) Borderless() bool {
	return !w.conn.Decorated(w.id)
}

func (w *linuxWindow) SetBorderless(borderless bool) error {
	return w.conn.SetDecorated(w.id, !borderless)
}

func (w *linuxWindow) ContainerBounds() (geometry.Rect, error) {
	r, err := w.conn.FrameRect(w.id)
	if err != nil {
		return geometry.Rect{}, err
	}
	return areaRect(r), nil
}

func (w *linuxWindow) Close() error {
	return w.conn.CloseWindow(w.id)
}

func (w *linuxWindow) Focus() error {
	if err := w.conn.FocusWindow(w.id); err != nil {
		return w.conn.RaiseWindow(w.id)
	}
	return nil
}
