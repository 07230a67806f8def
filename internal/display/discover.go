package display

import (
	"errors"
	"fmt"

	"github.com/1broseidon/fullframe/internal/geometry"
)

// Prober answers point queries against the desktop, the way a
// "monitor from point, default to nearest" call does.
type Prober interface {
	// DesktopBounds returns the full root window resolution.
	DesktopBounds() (geometry.Rect, error)
	// DisplayAt returns the display containing p, or the nearest one.
	DisplayAt(p geometry.Point) (Display, error)
}

// DiscoverOptions tune the flood-fill search.
type DiscoverOptions struct {
	// Step is the grid spacing between probe points.
	Step int
	// VerticalSearch is how far above a display the side scans start.
	VerticalSearch int
	// HorizontalSearch is how far left of a display the top/bottom scans start.
	HorizontalSearch int
	// MaxDisplays bounds the recursion.
	MaxDisplays int
}

// DefaultDiscoverOptions returns a margin generous enough for monitors
// scaled up to 2x whose logical bounds do not touch.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		Step:             300,
		VerticalSearch:   2700,
		HorizontalSearch: 5400,
		MaxDisplays:      16,
	}
}

// ErrNoDisplays is returned when probing finds nothing at the seed point.
var ErrNoDisplays = errors.New("no displays found")

// Discover finds every display reachable from the desktop centre by
// probing a grid of points around each display it finds. The result is
// sorted top-left to bottom-right.
func Discover(p Prober, opts DiscoverOptions) ([]Display, error) {
	if opts.Step <= 0 {
		opts = DefaultDiscoverOptions()
	}
	if opts.MaxDisplays <= 0 {
		opts.MaxDisplays = DefaultDiscoverOptions().MaxDisplays
	}

	desktop, err := p.DesktopBounds()
	if err != nil {
		return nil, fmt.Errorf("failed to read desktop bounds: %w", err)
	}

	d := &discoverer{prober: p, opts: opts}
	seed, err := d.addAt(desktop.Center(), true)
	if err != nil {
		return nil, err
	}
	if seed == nil {
		return nil, ErrNoDisplays
	}
	if err := d.addContiguous(*seed); err != nil {
		return nil, err
	}

	hasPrimary := false
	for _, disp := range d.found {
		if disp.Primary {
			hasPrimary = true
			break
		}
	}
	if !hasPrimary {
		d.found[0].Primary = true
	}

	Sort(d.found)
	return d.found, nil
}

type discoverer struct {
	prober Prober
	opts   DiscoverOptions
	found  []Display
}

func (d *discoverer) addContiguous(disp Display) error {
	step := d.opts.Step
	half := step / 2
	b := disp.Bounds

	for y := b.Y - d.opts.VerticalSearch - half; y < b.Y+b.Height*2+step; y += step {
		for _, x := range []int{b.X - half, b.Right() + half} {
			if err := d.probe(geometry.Point{X: x, Y: y}); err != nil {
				return err
			}
		}
	}

	for x := b.X - d.opts.HorizontalSearch - half; x < b.X+b.Width*2+step; x += step {
		for _, y := range []int{b.Y - half, b.Bottom() + half} {
			if err := d.probe(geometry.Point{X: x, Y: y}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *discoverer) probe(p geometry.Point) error {
	if len(d.found) >= d.opts.MaxDisplays {
		return nil
	}
	added, err := d.addAt(p, false)
	if err != nil || added == nil {
		return err
	}
	return d.addContiguous(*added)
}

// addAt probes p and records the display there unless it is already known.
func (d *discoverer) addAt(p geometry.Point, seed bool) (*Display, error) {
	if _, ok := ContainingPoint(d.found, p); ok {
		return nil, nil
	}

	disp, err := d.prober.DisplayAt(p)
	if err != nil {
		if seed {
			return nil, fmt.Errorf("failed to probe display at %v: %w", p, err)
		}
		// A failed side probe only means no monitor answered there.
		return nil, nil
	}
	if disp.Bounds.Empty() {
		return nil, nil
	}
	for _, known := range d.found {
		if SameDisplay(known, disp) {
			return nil, nil
		}
	}

	d.found = append(d.found, disp)
	return &d.found[len(d.found)-1], nil
}
