package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/fullframe/internal/config"
	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
)

func TestBuildToggleRequest(t *testing.T) {
	tests := []struct {
		name    string
		window  string
		class   string
		pointer bool
		main    bool
		at      string
		toolbar string
		want    fullscreen.Request
		wantAt  *geometry.Point
		wantErr string
	}{
		{name: "default focused", want: fullscreen.Request{Target: fullscreen.TargetFocused}},
		{name: "hex window", window: "0x2a00003", want: fullscreen.Request{Target: fullscreen.TargetWindow, WindowID: 0x2a00003}},
		{name: "decimal window", window: "44040195", want: fullscreen.Request{Target: fullscreen.TargetWindow, WindowID: 44040195}},
		{name: "window wins over class", window: "12", class: "mpv", want: fullscreen.Request{Target: fullscreen.TargetWindow, WindowID: 12}},
		{name: "class", class: "mpv", want: fullscreen.Request{Target: fullscreen.TargetClass, Class: "mpv"}},
		{name: "main wins over pointer", main: true, pointer: true, want: fullscreen.Request{Target: fullscreen.TargetMain}},
		{name: "pointer", pointer: true, want: fullscreen.Request{Target: fullscreen.TargetPointer}},
		{name: "at", class: "mpv", at: "2000, 500", want: fullscreen.Request{Target: fullscreen.TargetClass, Class: "mpv"}, wantAt: &geometry.Point{X: 2000, Y: 500}},
		{name: "bad window", window: "zz", wantErr: "invalid window id"},
		{name: "zero window", window: "0", wantErr: "invalid window id"},
		{name: "bad at", at: "10", wantErr: "invalid point"},
		{name: "bad toolbar", toolbar: "maybe", wantErr: "invalid --toolbar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildToggleRequest(tt.window, tt.class, tt.pointer, tt.main, tt.at, tt.toolbar)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Target != tt.want.Target || got.WindowID != tt.want.WindowID || got.Class != tt.want.Class {
				t.Fatalf("request = %+v, want %+v", got, tt.want)
			}
			if (got.At == nil) != (tt.wantAt == nil) || (got.At != nil && *got.At != *tt.wantAt) {
				t.Fatalf("at = %v, want %v", got.At, tt.wantAt)
			}
		})
	}
}

func TestBuildToggleRequestToolbar(t *testing.T) {
	show, err := buildToggleRequest("", "", false, false, "", "show")
	if err != nil || show.ShowToolbar == nil || !*show.ShowToolbar {
		t.Fatalf("show = %+v, %v", show.ShowToolbar, err)
	}
	hide, err := buildToggleRequest("", "", false, false, "", "hide")
	if err != nil || hide.ShowToolbar == nil || *hide.ShowToolbar {
		t.Fatalf("hide = %+v, %v", hide.ShowToolbar, err)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceDefault, Name: "toolbar_height"}, "default:toolbar_height"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 17}, "file:/c.yaml:3:17"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("toolbar_height: 40\n"), 0600); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("no_such_key: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"explain", "--path", good, "toolbar_height"}); rc != 0 {
		t.Fatalf("explain rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"bogus"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}

func TestCommandsWithoutDaemon(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	tests := []struct {
		name string
		run  func([]string) int
		args []string
		want int
	}{
		{"status", runStatus, nil, 1},
		{"list", runList, nil, 1},
		{"close-all", runCloseAll, nil, 1},
		{"exit needs id", runExit, nil, 2},
		{"exit bad id", runExit, []string{"nope"}, 2},
		{"exit no daemon", runExit, []string{"0x10"}, 1},
		{"present bad arg", runPresent, []string{"later"}, 2},
		{"status extra arg", runStatus, []string{"extra"}, 2},
		{"toggle bad toolbar", runToggle, []string{"--toolbar", "maybe"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rc := tt.run(tt.args); rc != tt.want {
				t.Fatalf("rc=%d, want %d", rc, tt.want)
			}
		})
	}
}
