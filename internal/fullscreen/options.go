package fullscreen

import (
	"sort"

	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

// OpenPolicy decides where a window type opens fullscreen.
type OpenPolicy string

const (
	OpenNone            OpenPolicy = "none"
	OpenCurrent         OpenPolicy = "current"
	OpenPointer         OpenPolicy = "pointer"
	OpenPosition        OpenPolicy = "position"
	OpenPositionAndSize OpenPolicy = "position_and_size"
)

// Valid reports whether p is a known policy.
func (p OpenPolicy) Valid() bool {
	switch p {
	case OpenNone, OpenCurrent, OpenPointer, OpenPosition, OpenPositionAndSize:
		return true
	}
	return false
}

// PresentClosePolicy decides which fullscreen windows close when
// presentation mode stops.
type PresentClosePolicy string

const (
	PresentCloseNone           PresentClosePolicy = "none"
	PresentCloseCreatedAtStart PresentClosePolicy = "created_at_start"
	PresentCloseAll            PresentClosePolicy = "all"
)

// Valid reports whether p is a known policy.
func (p PresentClosePolicy) Valid() bool {
	switch p {
	case PresentCloseNone, PresentCloseCreatedAtStart, PresentCloseAll:
		return true
	}
	return false
}

// ClassOptions are the fullscreen options for one window class.
type ClassOptions struct {
	OpenAt      OpenPolicy
	ShowToolbar bool
	// Position is the point (and, for OpenPositionAndSize, the rect) used
	// by the position policies.
	Position            geometry.Rect
	FullscreenOnPresent bool
	// LaunchNew always opens a fresh window instead of reusing one.
	LaunchNew bool
}

// Options configure a Manager.
type Options struct {
	MainWindowClass     string
	ToolbarHeight       int
	DoubleApplyPosition bool
	CloseOnPresentStop  PresentClosePolicy
	// DefaultShowToolbar applies to the focused and under-pointer toggles
	// and to classes without their own entry.
	DefaultShowToolbar bool
	Classes            map[string]ClassOptions
}

// DefaultOptions returns the built-in manager options.
func DefaultOptions() Options {
	return Options{
		ToolbarHeight:      39,
		CloseOnPresentStop: PresentCloseCreatedAtStart,
		DefaultShowToolbar: true,
	}
}

// ClassOptions returns the options for class, matched case-insensitively.
func (o Options) ClassOptions(class string) ClassOptions {
	if opts, ok := o.Classes[class]; ok {
		return opts
	}
	for name, opts := range o.Classes {
		if platform.SameClass(name, class) {
			return opts
		}
	}
	return ClassOptions{OpenAt: OpenPointer, ShowToolbar: o.DefaultShowToolbar}
}

// PresentClasses returns, sorted, the classes that go fullscreen when
// presentation mode starts.
func (o Options) PresentClasses() []string {
	var out []string
	for name, opts := range o.Classes {
		if opts.FullscreenOnPresent && opts.OpenAt != OpenNone {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
