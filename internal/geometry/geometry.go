package geometry

import (
	"fmt"
	"math"
)

// Point is a position in root-window (desktop) coordinates.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a width/height pair. Zero means "unconstrained" for min/max hints.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle in desktop coordinates.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Center returns the midpoint of the rectangle, rounded toward the origin.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive so adjacent monitors never both contain the same point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Grow returns r with its size increased by (dw, dh), origin unchanged.
func (r Rect) Grow(dw, dh int) Rect {
	r.Width += dw
	r.Height += dh
	return r
}

// Scale multiplies origin and size by f, rounding to the nearest pixel.
func (r Rect) Scale(f float64) Rect {
	return Rect{
		X:      int(math.Round(float64(r.X) * f)),
		Y:      int(math.Round(float64(r.Y) * f)),
		Width:  int(math.Round(float64(r.Width) * f)),
		Height: int(math.Round(float64(r.Height) * f)),
	}
}

// DistanceToPoint returns 0 when p is inside r, otherwise the Euclidean
// distance from p to the closest point on r's border.
func (r Rect) DistanceToPoint(p Point) float64 {
	if r.Contains(p) {
		return 0
	}
	_, d := r.closestBorderPoint(p)
	return d
}

// closestBorderPoint checks edges top, right, bottom, left; the first
// minimum wins. Edges run through the outermost pixels (Right()-1,
// Bottom()-1) so a point is at distance zero exactly when Contains is true.
func (r Rect) closestBorderPoint(p Point) (vec, float64) {
	x0, y0 := float64(r.X), float64(r.Y)
	x1, y1 := float64(r.Right()-1), float64(r.Bottom()-1)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	edges := [4][2]vec{
		{{x0, y0}, {x1, y0}},
		{{x1, y0}, {x1, y1}},
		{{x0, y1}, {x1, y1}},
		{{x0, y0}, {x0, y1}},
	}

	target := vec{float64(p.X), float64(p.Y)}
	best := vec{}
	bestDist := math.Inf(1)
	for _, e := range edges {
		c := closestPointOnSegment(e[0], e[1], target)
		d := c.dist(target)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

type vec struct{ x, y float64 }

func (a vec) dist(b vec) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}

func closestPointOnSegment(a, b, p vec) vec {
	dx, dy := b.x-a.x, b.y-a.y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}
	t := ((p.x-a.x)*dx + (p.y-a.y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return vec{a.x + t*dx, a.y + t*dy}
}
