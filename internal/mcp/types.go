package mcp

import (
	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/geometry"
)

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []display.Display `json:"displays"`
}

// ListFullscreenInput is the input for the list_fullscreen tool.
type ListFullscreenInput struct {
	Class string `json:"class,omitempty" jsonschema:"Only list windows of this WM_CLASS (case-insensitive)"`
}

// FullscreenWindow describes one fullscreen window.
type FullscreenWindow struct {
	WindowID     uint32        `json:"window_id"`
	Class        string        `json:"class"`
	Title        string        `json:"title,omitempty"`
	ScreenBounds geometry.Rect `json:"screen_bounds"`
	ShowToolbar  bool          `json:"show_toolbar"`
	MainWindow   bool          `json:"main_window,omitempty"`
	PID          int           `json:"pid,omitempty"`
	Process      string        `json:"process,omitempty"`
	Since        string        `json:"since,omitempty"`
}

// ListFullscreenOutput is the output for the list_fullscreen tool.
type ListFullscreenOutput struct {
	Windows []FullscreenWindow `json:"windows"`
}

// ToggleFullscreenInput is the input for the toggle_fullscreen tool.
type ToggleFullscreenInput struct {
	Target      string `json:"target,omitempty" jsonschema:"One of focused, pointer, main, class, window. Inferred from window_id or class when omitted; defaults to focused"`
	WindowID    uint32 `json:"window_id,omitempty" jsonschema:"X11 window id (decimal)"`
	Class       string `json:"class,omitempty" jsonschema:"WM_CLASS of the window type to toggle"`
	X           *int   `json:"x,omitempty" jsonschema:"Desktop x coordinate selecting the target display (requires y)"`
	Y           *int   `json:"y,omitempty" jsonschema:"Desktop y coordinate selecting the target display (requires x)"`
	ShowToolbar *bool  `json:"show_toolbar,omitempty" jsonschema:"Keep the toolbar strip visible; defaults to the class setting"`
}

// ToggleFullscreenOutput is the output for the toggle_fullscreen tool.
type ToggleFullscreenOutput struct {
	Fullscreen   bool          `json:"fullscreen"`
	Queued       bool          `json:"queued,omitempty"`
	WindowID     uint32        `json:"window_id,omitempty"`
	Class        string        `json:"class,omitempty"`
	ScreenBounds geometry.Rect `json:"screen_bounds"`
}

// ExitFullscreenInput is the input for the exit_fullscreen tool.
type ExitFullscreenInput struct {
	WindowID uint32 `json:"window_id" jsonschema:"X11 window id of the fullscreen window"`
}

// ExitFullscreenOutput is the output for the exit_fullscreen tool.
type ExitFullscreenOutput struct {
	Exited bool `json:"exited"`
}

// CloseAllInput is the input for the close_all_fullscreen tool.
type CloseAllInput struct{}

// CloseAllOutput is the output for the close_all_fullscreen tool.
type CloseAllOutput struct {
	Closed bool `json:"closed"`
}

// PresentationInput is the input for the presentation_mode tool.
type PresentationInput struct {
	Start bool `json:"start" jsonschema:"true to start presentation mode, false to stop it"`
}

// PresentationOutput is the output for the presentation_mode tool.
type PresentationOutput struct {
	Entered []ToggleFullscreenOutput `json:"entered,omitempty"`
	Exited  int                      `json:"exited"`
}
