package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.CloseOrphans {
		t.Fatalf("close_orphans must default to false")
	}
	if cfg.ToolbarHeight != 39 || !cfg.DefaultShowToolbar {
		t.Fatalf("unexpected toolbar defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.MainWindowClass != "code" {
		t.Fatalf("expected default main_window_class, got %q", res.Config.MainWindowClass)
	}
	if res.Found {
		t.Fatalf("missing file reported as found")
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LaunchTimeout != 10*time.Second {
		t.Fatalf("expected default launch_timeout, got %v", res.Config.LaunchTimeout)
	}
}

func TestLoadFromPath_ClassesAndDurations(t *testing.T) {
	data := `
main_window_class: Emacs
toolbar_height: 24
default_show_toolbar: false
display_cache_ttl: 500ms
hotkeys:
  toggle_focused: Mod4-f
classes:
  firefox:
    hotkey: F11
    open_at: position_and_size
    show_toolbar: true
    position: {x: 1920, y: 0, width: 1280, height: 720}
    launch: "firefox --new-window"
    launch_new: true
    fullscreen_on_present: true
  mpv:
    open_at: current
`
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.TrimSpace(data)+"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.DisplayCacheTTL != 500*time.Millisecond {
		t.Fatalf("display_cache_ttl = %v", cfg.DisplayCacheTTL)
	}
	if cfg.Hotkeys.ToggleFocused != "Mod4-f" || cfg.Hotkeys.ToggleMain != "F8" {
		t.Fatalf("hotkeys not merged over defaults: %+v", cfg.Hotkeys)
	}

	opts := cfg.ManagerOptions()
	if opts.MainWindowClass != "Emacs" || opts.ToolbarHeight != 24 {
		t.Fatalf("manager options = %+v", opts)
	}
	ff := opts.ClassOptions("Firefox")
	want := fullscreen.ClassOptions{
		OpenAt:              fullscreen.OpenPositionAndSize,
		ShowToolbar:         true,
		Position:            geometry.Rect{X: 1920, Width: 1280, Height: 720},
		FullscreenOnPresent: true,
		LaunchNew:           true,
	}
	if ff != want {
		t.Fatalf("firefox options = %+v, want %+v", ff, want)
	}
	if mpv := opts.ClassOptions("mpv"); mpv.ShowToolbar || mpv.OpenAt != fullscreen.OpenCurrent {
		t.Fatalf("mpv should inherit default_show_toolbar=false: %+v", mpv)
	}

	if got := cfg.LaunchTemplates(); len(got) != 1 || got["firefox"] != "firefox --new-window" {
		t.Fatalf("launch templates = %v", got)
	}
	if got := opts.PresentClasses(); len(got) != 1 || got[0] != "firefox" {
		t.Fatalf("present classes = %v", got)
	}
}

func TestLoadFromPath_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"negative toolbar", "toolbar_height: -1\n", "toolbar_height"},
		{"bad present policy", "close_on_present_stop: sometimes\n", "close_on_present_stop"},
		{"bad open_at", "classes:\n  mpv:\n    open_at: corner\n", "classes.mpv.open_at"},
		{"position_and_size without size", "classes:\n  mpv:\n    open_at: position_and_size\n", "classes.mpv.position"},
		{"launch_new without launch", "classes:\n  mpv:\n    launch_new: true\n", "classes.mpv.launch_new"},
		{"bad log level", "logging:\n  level: verbose\n", "logging.level"},
		{"empty main class", "main_window_class: \"\"\n", "main_window_class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tt.data)
			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
			if !strings.Contains(err.Error(), path+":") {
				t.Fatalf("expected file:line:col prefix, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_RecordsKeyPositions(t *testing.T) {
	body := strings.Join([]string{
		"toolbar_height: 7",
		"classes:",
		"  mpv:",
		"    launch: mpv --idle",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", body)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Found || res.Path != path {
		t.Fatalf("result = %+v", res)
	}
	tests := []struct {
		key  string
		line int
	}{
		{"toolbar_height", 1},
		{"classes", 3},
		{"classes.mpv", 4},
		{"classes.mpv.launch", 4},
	}
	for _, tt := range tests {
		src, ok := res.Sources[tt.key]
		if !ok || src.Kind != SourceFile || src.File != path || src.Line != tt.line {
			t.Fatalf("source for %s = %+v (found %v), want line %d", tt.key, src, ok, tt.line)
		}
	}
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"include is not supported", "include: other.yaml\n"},
		{"typo at top level", "toolbar_hieght: 4\n"},
		{"typo in class", "classes:\n  mpv:\n    opne_at: pointer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tt.body)
			_, err := LoadFromPath(path)
			if err == nil || !strings.Contains(err.Error(), "not found in type") {
				t.Fatalf("expected unknown field error, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), path+":") {
				t.Fatalf("expected error prefixed with %s, got %v", path, err)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "classes:\n  mpv:\n    open_at: position\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "classes.mpv.open_at")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "position" || src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("explain = %#v from %#v", val, src)
	}

	val, src, err = Explain(res, "toolbar_height")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 39 || src.Kind != SourceDefault {
		t.Fatalf("explain = %#v from %#v", val, src)
	}

	if _, _, err := Explain(res, "classes.vlc.open_at"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	show := false
	cfg.Classes["mpv"] = ClassConfig{OpenAt: "current", ShowToolbar: &show, Launch: "mpv --idle"}
	cfg.DisplayCacheTTL = 3 * time.Second

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := res.Config.Classes["mpv"]
	if got.OpenAt != "current" || got.ShowToolbar == nil || *got.ShowToolbar || got.Launch != "mpv --idle" {
		t.Fatalf("class after reload = %+v", got)
	}
	if res.Config.DisplayCacheTTL != 3*time.Second {
		t.Fatalf("display_cache_ttl after reload = %v", res.Config.DisplayCacheTTL)
	}
}

func TestDefaultConfigPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(dir, "fullframe", "config.yaml") {
		t.Fatalf("path = %q", path)
	}
}

func TestWatch_ReloadsValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "toolbar_height: 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logger, func(cfg *Config) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, dir, "config.yaml", "toolbar_height: -5\n")
	time.Sleep(watchDebounce + 200*time.Millisecond)
	writeConfig(t, dir, "config.yaml", "toolbar_height: 20\n")

	select {
	case cfg := <-changes:
		if cfg.ToolbarHeight != 20 {
			t.Fatalf("reloaded toolbar_height = %d, want 20", cfg.ToolbarHeight)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}
