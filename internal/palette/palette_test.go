package palette

import (
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/platform"
)

type fakeDaemon struct {
	toggled []fullscreen.Request
	exited  []platform.WindowID
	present []bool
}

func (d *fakeDaemon) Toggle(req fullscreen.Request) (*fullscreen.Result, error) {
	d.toggled = append(d.toggled, req)
	return &fullscreen.Result{Fullscreen: true, WindowType: req.Class}, nil
}

func (d *fakeDaemon) Exit(id platform.WindowID) (bool, error) {
	d.exited = append(d.exited, id)
	return true, nil
}

func (d *fakeDaemon) CloseAll() (bool, error)      { return false, nil }
func (d *fakeDaemon) ToggleToolbar() (bool, error) { return true, nil }

func (d *fakeDaemon) Present(start bool) (*ipc.PresentData, error) {
	d.present = append(d.present, start)
	return &ipc.PresentData{Exited: 2}, nil
}

func testWindows() []ipc.FullscreenEntry {
	return []ipc.FullscreenEntry{{WindowState: fullscreen.WindowState{
		WindowType:   "mpv",
		WindowID:     0x2a00003,
		WindowTitle:  "movie.mkv",
		IsFullscreen: true,
	}}}
}

func TestItems(t *testing.T) {
	status := &ipc.StatusData{MainWindowClass: "code", Presenting: true}
	items := Items(status, testWindows(), []string{"firefox", "mpv"})

	byAction := make(map[string]Item)
	for _, it := range items {
		if !it.IsHeader {
			byAction[it.Action] = it
		}
	}
	if got := byAction["class:mpv"]; !got.IsActive {
		t.Fatalf("mpv should be marked active: %+v", got)
	}
	if got := byAction["class:firefox"]; got.IsActive {
		t.Fatalf("firefox should not be active")
	}
	if got, ok := byAction["exit:44040195"]; !ok || !strings.Contains(got.Label, "mpv (0x2a00003) movie.mkv") {
		t.Fatalf("exit row = %+v", got)
	}
	if _, ok := byAction[actionMain]; !ok {
		t.Fatalf("main row missing")
	}
	if _, ok := byAction[actionPresentOf]; !ok {
		t.Fatalf("presenting should offer stop")
	}

	bare := Items(nil, nil, nil)
	for _, it := range bare {
		if it.Action == actionMain || it.Action == actionCloseAll {
			t.Fatalf("unexpected row %q without status or windows", it.Action)
		}
	}
}

func TestExecute(t *testing.T) {
	d := &fakeDaemon{}
	tests := []struct {
		action  string
		want    string
		wantErr bool
	}{
		{action: "class:mpv", want: "mpv fullscreen"},
		{action: actionPointer, want: "fullscreen"},
		{action: "exit:44040195", want: "restored 0x2a00003"},
		{action: actionCloseAll, want: "nothing was fullscreen"},
		{action: actionToolbar, want: "toolbar shown"},
		{action: actionPresentOf, want: "2 restored"},
		{action: "exit:nope", wantErr: true},
		{action: "class:", wantErr: true},
		{action: "launch-rockets", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got, err := Execute(d, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil || !strings.Contains(got, tt.want) {
				t.Fatalf("Execute(%q) = %q, %v; want %q", tt.action, got, err, tt.want)
			}
		})
	}
	if len(d.toggled) != 2 || d.toggled[0].Target != fullscreen.TargetClass || d.toggled[1].Target != fullscreen.TargetPointer {
		t.Fatalf("toggled = %+v", d.toggled)
	}
	if len(d.exited) != 1 || d.exited[0] != 0x2a00003 {
		t.Fatalf("exited = %v", d.exited)
	}
}

func TestRofiShowByIndex(t *testing.T) {
	var gotArgs []string
	var gotInput string
	b := &menuBackend{command: "rofi", rofi: true, run: func(_ string, args []string, stdin string) (string, error) {
		gotArgs, gotInput = args, stdin
		return "2", nil
	}}
	items := []Item{
		{Label: "Toggle", IsHeader: true},
		{Label: "a <b>", Action: "one", Icon: "mpv"},
		{Label: "same", Action: "two", IsActive: true},
	}
	got, err := b.Show("fullframe", items, "")
	if err != nil || got.Action != "two" {
		t.Fatalf("Show = %+v, %v", got, err)
	}

	lines := strings.Split(gotInput, "\n")
	if lines[0] != "<b>Toggle</b>\x00nonselectable\x1ftrue" {
		t.Fatalf("header row = %q", lines[0])
	}
	if lines[1] != "a &lt;b&gt;\x00icon\x1fmpv" {
		t.Fatalf("item row = %q", lines[1])
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-format i") || !strings.Contains(joined, "-a 2") || !strings.Contains(joined, "-selected-row 1") {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestDmenuDisambiguatesLabels(t *testing.T) {
	var gotInput string
	b := &menuBackend{command: "dmenu", run: func(_ string, _ []string, stdin string) (string, error) {
		gotInput = stdin
		return "mpv (2)", nil
	}}
	got, err := b.Show("", []Item{{Label: "mpv", Action: "a"}, {Label: "mpv", Action: "b"}}, "")
	if err != nil || got.Action != "b" {
		t.Fatalf("Show = %+v, %v", got, err)
	}
	if gotInput != "mpv\nmpv (2)" {
		t.Fatalf("input = %q", gotInput)
	}
}

func TestShowCancelled(t *testing.T) {
	b := &menuBackend{command: "dmenu", run: func(string, []string, string) (string, error) { return "", nil }}
	if _, err := b.Show("", []Item{{Label: "x"}}, ""); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if _, err := b.Show("", nil, ""); err == nil {
		t.Fatalf("expected error for empty items")
	}
}

func TestNewBackend(t *testing.T) {
	t.Cleanup(func() { lookPath = exec.LookPath })
	lookPath = func(name string) (string, error) {
		if name == "dmenu" {
			return "/usr/bin/dmenu", nil
		}
		return "", exec.ErrNotFound
	}

	b, err := NewBackend("auto")
	if err != nil {
		t.Fatalf("auto: %v", err)
	}
	if mb := b.(*menuBackend); mb.command != "dmenu" {
		t.Fatalf("auto picked %q", mb.command)
	}
	if _, err := NewBackend("rofi"); err == nil {
		t.Fatalf("rofi should be missing")
	}
	if _, err := NewBackend("wofi"); err == nil || !strings.Contains(err.Error(), "unknown palette backend") {
		t.Fatalf("wofi err = %v", err)
	}

	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	if _, err := NewBackend(""); err == nil {
		t.Fatalf("expected no backend error")
	}
}
