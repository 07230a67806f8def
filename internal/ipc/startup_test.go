package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

type liveWindow struct {
	id         platform.WindowID
	class      string
	pos        geometry.Rect
	maximized  bool
	borderless bool
}

func (w *liveWindow) ID() platform.WindowID                   { return w.id }
func (w *liveWindow) Class() string                           { return w.class }
func (w *liveWindow) Instance() string                        { return w.class }
func (w *liveWindow) Title() string                           { return w.class }
func (w *liveWindow) PID() int                                { return 0 }
func (w *liveWindow) Alive() bool                             { return true }
func (w *liveWindow) Position() (geometry.Rect, error)        { return w.pos, nil }
func (w *liveWindow) SetPosition(r geometry.Rect) error       { w.pos = r; return nil }
func (w *liveWindow) Maximized() (bool, error)                { return w.maximized, nil }
func (w *liveWindow) SetMaximized(m bool) error               { w.maximized = m; return nil }
func (w *liveWindow) Borderless() bool                        { return w.borderless }
func (w *liveWindow) SetBorderless(b bool) error              { w.borderless = b; return nil }
func (w *liveWindow) ContainerBounds() (geometry.Rect, error) { return w.pos, nil }
func (w *liveWindow) Close() error                            { return nil }
func (w *liveWindow) Focus() error                            { return nil }

func (w *liveWindow) MinMaxSize() (geometry.Size, geometry.Size, error) {
	return geometry.Size{}, geometry.Size{}, nil
}

func (w *liveWindow) SetMinMaxSize(geometry.Size, geometry.Size) error { return nil }

type liveHost struct {
	displays []display.Display
	windows  []*liveWindow
	active   platform.WindowID
}

func (h *liveHost) DesktopBounds() (geometry.Rect, error) {
	return geometry.Rect{Width: 3840, Height: 1080}, nil
}

func (h *liveHost) DisplayAt(p geometry.Point) (display.Display, error) {
	d, _ := display.ClosestToPoint(h.displays, p)
	return d, nil
}

func (h *liveHost) Displays() []display.Display { return h.displays }

func (h *liveHost) Windows() ([]platform.WindowHandle, error) {
	var out []platform.WindowHandle
	for _, w := range h.windows {
		out = append(out, w)
	}
	return out, nil
}

func (h *liveHost) Window(id platform.WindowID) (platform.WindowHandle, bool) {
	for _, w := range h.windows {
		if w.id == id {
			return w, true
		}
	}
	return nil, false
}

func (h *liveHost) ActiveWindow() (platform.WindowHandle, error) {
	if w, ok := h.Window(h.active); ok {
		return w, nil
	}
	return nil, errors.New("no active window")
}

func (h *liveHost) WindowAt(geometry.Point) (platform.WindowHandle, error) {
	return nil, errors.New("no window")
}

func (h *liveHost) Pointer() (geometry.Point, error) { return geometry.Point{}, nil }

func (h *liveHost) Launch(context.Context, string) (platform.WindowHandle, error) {
	return nil, errors.New("launch unsupported")
}

func TestTogglesBeforeLoadAreQueuedAndReplayed(t *testing.T) {
	host := &liveHost{
		displays: []display.Display{
			{ID: 0, Bounds: geometry.Rect{Width: 1920, Height: 1080}, PhysicalBounds: geometry.Rect{Width: 1920, Height: 1080}, Primary: true},
			{ID: 1, Bounds: geometry.Rect{X: 1920, Width: 1920, Height: 1080}, PhysicalBounds: geometry.Rect{X: 1920, Width: 1920, Height: 1080}},
		},
		windows: []*liveWindow{
			{id: 7, class: "mpv", pos: geometry.Rect{X: 100, Y: 100, Width: 640, Height: 480}},
			{id: 8, class: "firefox", pos: geometry.Rect{X: 2100, Y: 100, Width: 800, Height: 600}},
		},
		active: 8,
	}
	manager := fullscreen.NewManager(fullscreen.Config{
		Host:     host,
		Displays: host,
		Options:  fullscreen.DefaultOptions(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	client := startServer(t, manager, nil)

	res, err := client.Toggle(fullscreen.Request{WindowID: 7})
	if err != nil {
		t.Fatalf("toggle window: %v", err)
	}
	if !res.Queued || res.Fullscreen {
		t.Fatalf("result before load = %+v, want queued", res)
	}
	res, err = client.Toggle(fullscreen.Request{})
	if err != nil {
		t.Fatalf("toggle focused: %v", err)
	}
	if !res.Queued || res.WindowID != 8 {
		t.Fatalf("focused toggle = %+v, want queued against window 8", res)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Loaded || status.Queued != 2 || status.FullscreenCount != 0 {
		t.Fatalf("status before load = %+v", status)
	}

	manager.FinishLoad(context.Background())

	status, err = client.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Loaded || status.Queued != 0 || status.FullscreenCount != 2 {
		t.Fatalf("status after load = %+v", status)
	}
	list, err := client.ListFullscreen()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := map[platform.WindowID]geometry.Rect{}
	for _, w := range list.Windows {
		got[w.WindowID] = w.ScreenBounds
	}
	if got[7].X != 0 || got[8].X != 1920 {
		t.Fatalf("screen bounds = %+v, want mpv on display 0 and firefox on display 1", got)
	}
}
