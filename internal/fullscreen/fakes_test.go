package fullscreen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

type fakeWindow struct {
	id       platform.WindowID
	class    string
	instance string

	pos        geometry.Rect
	minSize    geometry.Size
	maxSize    geometry.Size
	maximized  bool
	borderless bool

	alive        bool
	setPositions int
	focused      int

	failBorderless bool
}

func newWindow(id platform.WindowID, class string, pos geometry.Rect) *fakeWindow {
	return &fakeWindow{id: id, class: class, instance: class, pos: pos, alive: true}
}

func (w *fakeWindow) ID() platform.WindowID { return w.id }
func (w *fakeWindow) Class() string         { return w.class }
func (w *fakeWindow) Instance() string      { return w.instance }
func (w *fakeWindow) Title() string         { return fmt.Sprintf("%s-%d", w.class, w.id) }
func (w *fakeWindow) PID() int              { return 1000 + int(w.id) }
func (w *fakeWindow) Alive() bool           { return w.alive }

func (w *fakeWindow) Position() (geometry.Rect, error) { return w.pos, nil }

func (w *fakeWindow) SetPosition(r geometry.Rect) error {
	w.setPositions++
	w.pos = r
	return nil
}

func (w *fakeWindow) MinMaxSize() (geometry.Size, geometry.Size, error) {
	return w.minSize, w.maxSize, nil
}

func (w *fakeWindow) SetMinMaxSize(minSize, maxSize geometry.Size) error {
	w.minSize, w.maxSize = minSize, maxSize
	return nil
}

func (w *fakeWindow) Maximized() (bool, error) { return w.maximized, nil }

func (w *fakeWindow) SetMaximized(maximized bool) error {
	w.maximized = maximized
	return nil
}

func (w *fakeWindow) Borderless() bool { return w.borderless }

func (w *fakeWindow) SetBorderless(borderless bool) error {
	if w.failBorderless {
		return errors.New("motif hints unsupported")
	}
	w.borderless = borderless
	return nil
}

func (w *fakeWindow) ContainerBounds() (geometry.Rect, error) { return w.pos, nil }

func (w *fakeWindow) Close() error {
	w.alive = false
	return nil
}

func (w *fakeWindow) Focus() error {
	w.focused++
	return nil
}

type fakeHost struct {
	displays []display.Display
	windows  []*fakeWindow
	active   platform.WindowID
	pointer  geometry.Point

	nextID    platform.WindowID
	launched  []string
	launchErr error
}

func (h *fakeHost) DesktopBounds() (geometry.Rect, error) {
	return geometry.Rect{Width: 3840, Height: 1080}, nil
}

func (h *fakeHost) DisplayAt(p geometry.Point) (display.Display, error) {
	d, ok := display.ClosestToPoint(h.displays, p)
	if !ok {
		return display.Display{}, errors.New("no displays")
	}
	return d, nil
}

func (h *fakeHost) Displays() []display.Display {
	return append([]display.Display(nil), h.displays...)
}

func (h *fakeHost) Windows() ([]platform.WindowHandle, error) {
	var out []platform.WindowHandle
	for _, w := range h.windows {
		if w.alive {
			out = append(out, w)
		}
	}
	return out, nil
}

func (h *fakeHost) Window(id platform.WindowID) (platform.WindowHandle, bool) {
	for _, w := range h.windows {
		if w.id == id && w.alive {
			return w, true
		}
	}
	return nil, false
}

func (h *fakeHost) ActiveWindow() (platform.WindowHandle, error) {
	if w, ok := h.Window(h.active); ok {
		return w, nil
	}
	return nil, errors.New("no active window")
}

func (h *fakeHost) WindowAt(p geometry.Point) (platform.WindowHandle, error) {
	for i := len(h.windows) - 1; i >= 0; i-- {
		w := h.windows[i]
		if w.alive && w.pos.Contains(p) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("no window at %v", p)
}

func (h *fakeHost) Pointer() (geometry.Point, error) { return h.pointer, nil }

func (h *fakeHost) Launch(_ context.Context, class string) (platform.WindowHandle, error) {
	if h.launchErr != nil {
		return nil, h.launchErr
	}
	h.launched = append(h.launched, class)
	h.nextID++
	w := newWindow(100+h.nextID, class, geometry.Rect{X: 200, Y: 200, Width: 640, Height: 480})
	h.windows = append(h.windows, w)
	return w, nil
}

func (h *fakeHost) add(w *fakeWindow) *fakeWindow {
	h.windows = append(h.windows, w)
	return w
}

type memStore struct {
	saves [][]WindowState
}

func (s *memStore) Save(states []WindowState) error {
	s.saves = append(s.saves, states)
	return nil
}

func (s *memStore) last() []WindowState {
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

func rect(x, y, w, h int) geometry.Rect {
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}
}

func twoDisplays() []display.Display {
	return []display.Display{
		{ID: 0, Name: "DP-1", Bounds: rect(0, 0, 1920, 1080), PhysicalBounds: rect(0, 0, 1920, 1080), Primary: true},
		{ID: 1, Name: "DP-2", Bounds: rect(1920, 0, 1920, 1080), PhysicalBounds: rect(1920, 0, 1920, 1080)},
	}
}

type fixture struct {
	host  *fakeHost
	store *memStore
	m     *Manager
}

func newFixture(opts Options) *fixture {
	host := &fakeHost{displays: twoDisplays()}
	store := &memStore{}
	m := NewManager(Config{
		Host:     host,
		Displays: host,
		Store:    store,
		Options:  opts,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	return &fixture{host: host, store: store, m: m}
}

func newLoadedFixture(opts Options) *fixture {
	f := newFixture(opts)
	f.m.FinishLoad(context.Background())
	return f
}

func at(x, y int) *geometry.Point {
	return &geometry.Point{X: x, Y: y}
}

func boolPtr(v bool) *bool { return &v }
