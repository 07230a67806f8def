package fullscreen

import (
	"testing"

	"github.com/1broseidon/fullframe/internal/display"
)

func TestFindOrAddKeepsOneStatePerWindow(t *testing.T) {
	c := NewCollection(nil)
	w := newWindow(1, "code", rect(0, 0, 10, 10))

	first := c.FindOrAdd(w)
	second := c.FindOrAdd(w)
	if first != second || c.Len() != 1 {
		t.Fatalf("FindOrAdd created duplicate states (len %d)", c.Len())
	}
	if first.WindowID != 1 || first.WindowType != "code" || first.WindowTitle != "code-1" {
		t.Fatalf("identity not captured: %+v", first)
	}
}

func TestPruneKeepsMainSentinel(t *testing.T) {
	c := NewCollection(nil)
	live := newWindow(1, "code", rect(0, 0, 10, 10))
	dead := newWindow(2, "firefox", rect(0, 0, 10, 10))
	c.FindOrAdd(live)
	c.FindOrAdd(dead)
	c.MainState("code")
	dead.alive = false

	if removed := c.Prune(); removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.FindByHandle(2) != nil {
		t.Fatalf("dead window state still tracked")
	}

	// Persisted entries without a handle are dropped too.
	restored := NewCollection([]WindowState{{WindowType: "gimp"}, {WindowType: "code", MainWindow: true}})
	restored.Prune()
	if restored.Len() != 1 || !restored.All()[0].MainWindow {
		t.Fatalf("restored after prune = %+v", restored.All())
	}
}

func TestFindByTypeOnDisplay(t *testing.T) {
	c := NewCollection(nil)
	left := c.FindOrAdd(newWindow(1, "mpv", rect(0, 0, 10, 10)))
	right := c.FindOrAdd(newWindow(2, "mpv", rect(0, 0, 10, 10)))
	ds := twoDisplays()
	left.IsFullscreen, left.ScreenBounds = true, ds[0].Bounds
	right.IsFullscreen, right.ScreenBounds = true, ds[1].Bounds

	if got := c.FindByType("MPV", &ds[1]); got != right {
		t.Fatalf("FindByType on second display = %+v", got)
	}
	if got := c.FindByType("mpv", nil); got != left {
		t.Fatalf("FindByType without display = %+v", got)
	}
	if got := c.FindByType("mpv", &display.Display{Bounds: rect(0, 1080, 1920, 1080)}); got != nil {
		t.Fatalf("FindByType on unknown display = %+v", got)
	}
	if n := len(c.FullscreenOn(ds[0])); n != 1 {
		t.Fatalf("FullscreenOn = %d, want 1", n)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	c := NewCollection(nil)
	s := c.FindOrAdd(newWindow(1, "code", rect(0, 0, 10, 10)))
	s.PreFullscreenPosition = rect(1, 2, 3, 4)

	snap := c.Snapshot()
	snap[0].PreFullscreenPosition = rect(9, 9, 9, 9)
	snap[0].IsFullscreen = true

	if s.PreFullscreenPosition != rect(1, 2, 3, 4) || s.IsFullscreen {
		t.Fatalf("snapshot shares state with the collection")
	}
}
