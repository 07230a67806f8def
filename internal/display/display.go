package display

import (
	"sort"

	"github.com/1broseidon/fullframe/internal/geometry"
)

// Display is one physical monitor attached to the desktop.
type Display struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	// Bounds is the logical (scale-independent) area windows are positioned in.
	Bounds geometry.Rect `json:"bounds"`
	// PhysicalBounds is the area in device pixels.
	PhysicalBounds geometry.Rect `json:"physical_bounds"`
	// WorkArea excludes docks and panels.
	WorkArea geometry.Rect `json:"work_area"`

	Primary       bool `json:"primary"`
	HasMainWindow bool `json:"has_main_window"`
}

// Scale returns device pixels per logical pixel, or 1 when unknown.
func (d Display) Scale() float64 {
	if d.Bounds.Width <= 0 || d.PhysicalBounds.Width <= 0 {
		return 1
	}
	return float64(d.PhysicalBounds.Width) / float64(d.Bounds.Width)
}

// Sort orders displays top-left to bottom-right: y ascending, then x.
// Displays with equal origins keep their relative order.
func Sort(displays []Display) {
	sort.SliceStable(displays, func(i, j int) bool {
		a, b := displays[i].Bounds, displays[j].Bounds
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// ContainingPoint returns the first display whose bounds contain p.
func ContainingPoint(displays []Display, p geometry.Point) (Display, bool) {
	for _, d := range displays {
		if d.Bounds.Contains(p) {
			return d, true
		}
	}
	return Display{}, false
}

// ClosestToPoint returns the display containing p, or the display with the
// smallest border distance to p. Ties go to the earlier display.
func ClosestToPoint(displays []Display, p geometry.Point) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}

	var closest Display
	closestDist := 0.0
	found := false
	for _, d := range displays {
		if d.Bounds.Contains(p) {
			return d, true
		}
		dist := d.Bounds.DistanceToPoint(p)
		if !found || dist < closestDist {
			closest, closestDist, found = d, dist, true
		}
	}
	return closest, true
}

// WithMainWindow returns the display hosting the main window, falling back
// to the primary display and then the first display.
func WithMainWindow(displays []Display) (Display, bool) {
	for _, d := range displays {
		if d.HasMainWindow {
			return d, true
		}
	}
	return Primary(displays)
}

// Primary returns the primary display, or the first one if none is flagged.
func Primary(displays []Display) (Display, bool) {
	for _, d := range displays {
		if d.Primary {
			return d, true
		}
	}
	if len(displays) > 0 {
		return displays[0], true
	}
	return Display{}, false
}

// SameDisplay reports whether two displays describe the same monitor area.
func SameDisplay(a, b Display) bool {
	return a.Bounds == b.Bounds
}
