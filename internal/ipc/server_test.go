package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

type pidWindow struct {
	platform.WindowHandle
	pid int
}

func (w pidWindow) PID() int { return w.pid }

type stubController struct {
	mu       sync.Mutex
	toggles  []fullscreen.Request
	states   []fullscreen.WindowState
	exited   []platform.WindowID
	present  []bool
	toolbar  bool
	closeAll bool
}

func (c *stubController) Toggle(_ context.Context, req fullscreen.Request) (fullscreen.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if req.Target == fullscreen.TargetClass && req.Class == "" {
		return fullscreen.Result{}, errors.New("class is required")
	}
	c.toggles = append(c.toggles, req)
	return fullscreen.Result{Fullscreen: true, WindowID: 7, WindowType: req.Class}, nil
}

func (c *stubController) ExitFullscreen(id platform.WindowID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exited = append(c.exited, id)
	return id == 7
}

func (c *stubController) CloseAll() bool {
	c.closeAll = true
	return true
}

func (c *stubController) ToggleToolbar() (bool, error) {
	c.toolbar = !c.toolbar
	return c.toolbar, nil
}

func (c *stubController) PresentStart(context.Context) []fullscreen.Result {
	c.present = append(c.present, true)
	return []fullscreen.Result{{Fullscreen: true, WindowType: "mpv"}}
}

func (c *stubController) PresentStop() int {
	c.present = append(c.present, false)
	return 2
}

func (c *stubController) Status() fullscreen.Status {
	return fullscreen.Status{
		Loaded:          true,
		MainWindowClass: "code",
		Displays: []display.Display{
			{ID: 0, Bounds: geometry.Rect{Width: 1920, Height: 1080}, Primary: true},
			{ID: 1, Bounds: geometry.Rect{X: 1920, Width: 1920, Height: 1080}},
		},
		States: c.states,
	}
}

func (c *stubController) Tracked() []fullscreen.Tracked {
	var out []fullscreen.Tracked
	for _, s := range c.states {
		out = append(out, fullscreen.Tracked{State: s, Window: pidWindow{pid: 4242}})
	}
	return out
}

func (c *stubController) Fullscreen() []fullscreen.WindowState {
	var out []fullscreen.WindowState
	for _, s := range c.states {
		if s.IsFullscreen {
			out = append(out, s)
		}
	}
	return out
}

func startServer(t *testing.T, ctrl Controller, reload func() error) *Client {
	t.Helper()
	// Keep the socket path short; unix socket paths are length limited.
	dir, err := os.MkdirTemp("", "ff")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")

	srv, err := NewServer(ServerConfig{
		SocketPath:  socket,
		Controller:  ctrl,
		Reload:      reload,
		ProcessName: func(pid int) string { return "mpv" },
		SessionPath: "/state/session.json",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Stop)

	info, err := os.Stat(socket)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("socket mode = %v, want 0600", info.Mode().Perm())
	}
	return NewClientWithSocket(socket)
}

func TestStatusDisplaysAndList(t *testing.T) {
	ctrl := &stubController{states: []fullscreen.WindowState{
		{WindowType: "mpv", WindowID: 7, IsFullscreen: true, EnteredAt: time.Now().Add(-time.Minute)},
		{WindowType: "firefox", WindowID: 8},
	}}
	client := startServer(t, ctrl, nil)

	if err := client.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.DaemonRunning || status.DisplayCount != 2 || status.TrackedCount != 2 || status.FullscreenCount != 1 {
		t.Fatalf("status = %+v", status)
	}
	if status.SessionPath != "/state/session.json" || status.PID != os.Getpid() {
		t.Fatalf("status = %+v", status)
	}

	displays, err := client.GetDisplays()
	if err != nil {
		t.Fatalf("displays: %v", err)
	}
	if len(displays.Displays) != 2 || !displays.Displays[0].Primary {
		t.Fatalf("displays = %+v", displays)
	}

	list, err := client.ListFullscreen()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Windows) != 1 {
		t.Fatalf("list = %+v", list)
	}
	w := list.Windows[0]
	if w.WindowID != 7 || w.PID != 4242 || w.Process != "mpv" {
		t.Fatalf("entry = %+v", w)
	}
	if since := w.Since(time.Now()); since < 59*time.Second {
		t.Fatalf("since = %v", since)
	}
}

func TestToggleDefaultsTarget(t *testing.T) {
	ctrl := &stubController{}
	client := startServer(t, ctrl, nil)

	tests := []struct {
		name string
		req  fullscreen.Request
		want fullscreen.Target
	}{
		{"empty is focused", fullscreen.Request{}, fullscreen.TargetFocused},
		{"class", fullscreen.Request{Class: "mpv"}, fullscreen.TargetClass},
		{"window", fullscreen.Request{WindowID: 9}, fullscreen.TargetWindow},
		{"explicit pointer", fullscreen.Request{Target: fullscreen.TargetPointer, At: &geometry.Point{X: 5, Y: 5}}, fullscreen.TargetPointer},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.Toggle(tt.req); err != nil {
				t.Fatalf("toggle: %v", err)
			}
			ctrl.mu.Lock()
			got := ctrl.toggles[i]
			ctrl.mu.Unlock()
			if got.Target != tt.want {
				t.Fatalf("target = %q, want %q", got.Target, tt.want)
			}
		})
	}

	_, err := client.Toggle(fullscreen.Request{Target: fullscreen.TargetClass})
	if err == nil || !strings.Contains(err.Error(), "class is required") {
		t.Fatalf("expected daemon error, got %v", err)
	}
}

func TestExitCloseAllToolbarPresent(t *testing.T) {
	ctrl := &stubController{}
	client := startServer(t, ctrl, nil)

	if exited, err := client.Exit(7); err != nil || !exited {
		t.Fatalf("exit = %v, %v", exited, err)
	}
	if _, err := client.Exit(0); err == nil {
		t.Fatalf("expected window_id error")
	}
	if closed, err := client.CloseAll(); err != nil || !closed {
		t.Fatalf("close all = %v, %v", closed, err)
	}
	if show, err := client.ToggleToolbar(); err != nil || !show {
		t.Fatalf("toolbar = %v, %v", show, err)
	}

	started, err := client.Present(true)
	if err != nil || len(started.Entered) != 1 {
		t.Fatalf("present start = %+v, %v", started, err)
	}
	stopped, err := client.Present(false)
	if err != nil || stopped.Exited != 2 {
		t.Fatalf("present stop = %+v, %v", stopped, err)
	}
}

func TestReloadError(t *testing.T) {
	calls := 0
	client := startServer(t, &stubController{}, func() error {
		calls++
		if calls == 2 {
			return errors.New("toolbar_height: must be >= 0")
		}
		return nil
	})

	if err := client.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	err := client.Reload()
	if err == nil || !strings.Contains(err.Error(), "toolbar_height") {
		t.Fatalf("expected reload error, got %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	client := startServer(t, &stubController{}, nil)
	if err := client.call("BOGUS", nil, nil); err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	client := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"))
	err := client.Ping()
	if err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("expected connect error, got %v", err)
	}
}
