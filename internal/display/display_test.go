package display

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/fullframe/internal/geometry"
)

type fakeProber struct {
	desktop  geometry.Rect
	displays []Display
	err      error
	calls    int
}

func (f *fakeProber) DesktopBounds() (geometry.Rect, error) {
	return f.desktop, nil
}

func (f *fakeProber) DisplayAt(p geometry.Point) (Display, error) {
	f.calls++
	if f.err != nil {
		return Display{}, f.err
	}
	d, ok := ClosestToPoint(f.displays, p)
	if !ok {
		return Display{}, errors.New("no monitors")
	}
	return d, nil
}

func rect(x, y, w, h int) geometry.Rect {
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}
}

func TestDiscoverSideBySide(t *testing.T) {
	p := &fakeProber{
		desktop: rect(0, 0, 3840, 1080),
		displays: []Display{
			{ID: 1, Name: "HDMI-1", Bounds: rect(1920, 0, 1920, 1080)},
			{ID: 0, Name: "DP-1", Bounds: rect(0, 0, 1920, 1080), Primary: true},
		},
	}

	got, err := Discover(p, DefaultDiscoverOptions())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("found %d displays, want 2", len(got))
	}
	if got[0].Name != "DP-1" || got[1].Name != "HDMI-1" {
		t.Fatalf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
	if !got[0].Primary || got[1].Primary {
		t.Fatalf("primary flag not preserved: %+v", got)
	}
}

func TestDiscoverFindsDisplaysAcrossGapsAndAbove(t *testing.T) {
	p := &fakeProber{
		desktop: rect(0, -1080, 4500, 2160),
		displays: []Display{
			{ID: 0, Name: "center", Bounds: rect(0, 0, 1920, 1080)},
			{ID: 1, Name: "right", Bounds: rect(1920, 0, 1920, 1080)},
			{ID: 2, Name: "far", Bounds: rect(4200, 0, 1280, 1024)},
			{ID: 3, Name: "above", Bounds: rect(0, -1080, 1920, 1080)},
		},
	}

	got, err := Discover(p, DefaultDiscoverOptions())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"above", "center", "right", "far"}
	if len(got) != len(want) {
		t.Fatalf("found %d displays (%+v), want %d", len(got), got, len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("display %d = %s, want %s", i, got[i].Name, name)
		}
	}

	primaries := 0
	for _, d := range got {
		if d.Primary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary, got %d", primaries)
	}
}

func TestSortCollapsesEqualOriginsStably(t *testing.T) {
	ds := []Display{
		{Name: "b", Bounds: rect(1920, 0, 10, 10)},
		{Name: "a", Bounds: rect(0, 0, 10, 10)},
		{Name: "c", Bounds: rect(0, -10, 10, 10)},
		{Name: "a2", Bounds: rect(0, 0, 20, 20)},
	}
	Sort(ds)
	want := []string{"c", "a", "a2", "b"}
	for i, name := range want {
		if ds[i].Name != name {
			t.Fatalf("position %d = %s, want %s", i, ds[i].Name, name)
		}
	}
}

func TestClosestToPoint(t *testing.T) {
	ds := []Display{
		{ID: 0, Bounds: rect(0, 0, 1920, 1080)},
		{ID: 1, Bounds: rect(1920, 0, 1920, 1080)},
	}

	tests := []struct {
		name string
		p    geometry.Point
		want int
	}{
		{"inside second", geometry.Point{X: 2000, Y: 500}, 1},
		{"inside first", geometry.Point{X: 10, Y: 10}, 0},
		{"left of all", geometry.Point{X: -500, Y: 500}, 0},
		{"right of all", geometry.Point{X: 5000, Y: 500}, 1},
		{"below seam goes to first", geometry.Point{X: 1919, Y: 2000}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ClosestToPoint(ds, tt.p)
			if !ok {
				t.Fatalf("no display returned")
			}
			if d.ID != tt.want {
				t.Fatalf("ClosestToPoint(%v) = %d, want %d", tt.p, d.ID, tt.want)
			}
		})
	}
}

func TestClosestToPointReturnsContainingDisplay(t *testing.T) {
	ds := []Display{
		{ID: 0, Bounds: rect(0, 0, 1000, 1000)},
		{ID: 1, Bounds: rect(1200, 0, 1000, 1000)},
	}
	for x := -100; x < 2400; x += 50 {
		p := geometry.Point{X: x, Y: 500}
		closest, _ := ClosestToPoint(ds, p)
		if containing, ok := ContainingPoint(ds, p); ok && containing.ID != closest.ID {
			t.Fatalf("point %v: closest %d but contained by %d", p, closest.ID, containing.ID)
		}
	}
}

func TestEnumeratorFallsBackToSyntheticDisplay(t *testing.T) {
	p := &fakeProber{desktop: rect(0, 0, 2560, 1440), err: errors.New("randr unavailable")}
	e := NewEnumerator(p, EnumeratorConfig{})

	got := e.Displays()
	if len(got) != 1 {
		t.Fatalf("got %d displays, want 1 synthetic", len(got))
	}
	if got[0].Bounds != rect(0, 0, 2560, 1440) || !got[0].Primary {
		t.Fatalf("unexpected synthetic display: %+v", got[0])
	}
}

func TestEnumeratorMarksMainWindowDisplay(t *testing.T) {
	p := &fakeProber{
		desktop: rect(0, 0, 3840, 1080),
		displays: []Display{
			{ID: 0, Bounds: rect(0, 0, 1920, 1080)},
			{ID: 1, Bounds: rect(1920, 0, 1920, 1080)},
		},
	}
	e := NewEnumerator(p, EnumeratorConfig{
		MainWindow: func() (geometry.Rect, bool) { return rect(2000, 100, 800, 600), true },
	})

	d, ok := WithMainWindow(e.Displays())
	if !ok || d.ID != 1 {
		t.Fatalf("main window display = %+v, want ID 1", d)
	}
}

func TestEnumeratorCachesUntilInvalidated(t *testing.T) {
	p := &fakeProber{
		desktop:  rect(0, 0, 1920, 1080),
		displays: []Display{{ID: 0, Bounds: rect(0, 0, 1920, 1080)}},
	}
	e := NewEnumerator(p, EnumeratorConfig{CacheTTL: time.Minute})

	e.Displays()
	first := p.calls
	if first == 0 {
		t.Fatalf("expected probing on first call")
	}
	e.Displays()
	if p.calls != first {
		t.Fatalf("expected cached result, prober called %d more times", p.calls-first)
	}

	e.Invalidate()
	e.Displays()
	if p.calls == first {
		t.Fatalf("expected re-probe after Invalidate")
	}
}

func TestScale(t *testing.T) {
	d := Display{Bounds: rect(0, 0, 1280, 720), PhysicalBounds: rect(0, 0, 2560, 1440)}
	if d.Scale() != 2 {
		t.Fatalf("Scale() = %v, want 2", d.Scale())
	}
	if (Display{}).Scale() != 1 {
		t.Fatalf("unknown scale should be 1")
	}
}
