package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/geometry"
	"github.com/1broseidon/fullframe/internal/platform"
)

var now = time.Now

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.daemon.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}
	return nil, ListDisplaysOutput{Displays: data.Displays}, nil
}

func (s *Server) handleListFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args ListFullscreenInput) (*mcpsdk.CallToolResult, ListFullscreenOutput, error) {
	data, err := s.daemon.ListFullscreen()
	if err != nil {
		return nil, ListFullscreenOutput{}, err
	}

	out := ListFullscreenOutput{Windows: []FullscreenWindow{}}
	for _, w := range data.Windows {
		if args.Class != "" && !strings.EqualFold(w.WindowType, args.Class) {
			continue
		}
		entry := FullscreenWindow{
			WindowID:     uint32(w.WindowID),
			Class:        w.WindowType,
			Title:        w.WindowTitle,
			ScreenBounds: w.ScreenBounds,
			ShowToolbar:  w.ShowTopToolbar,
			MainWindow:   w.MainWindow,
			PID:          w.PID,
			Process:      w.Process,
		}
		if !w.EnteredAt.IsZero() {
			entry.Since = humanize.RelTime(w.EnteredAt, now(), "ago", "from now")
		}
		out.Windows = append(out.Windows, entry)
	}
	return nil, out, nil
}

func (s *Server) handleToggleFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleFullscreenInput) (*mcpsdk.CallToolResult, ToggleFullscreenOutput, error) {
	req, err := toggleRequest(args)
	if err != nil {
		return nil, ToggleFullscreenOutput{}, err
	}
	res, err := s.daemon.Toggle(req)
	if err != nil {
		return nil, ToggleFullscreenOutput{}, err
	}
	return nil, toggleOutput(*res), nil
}

func toggleRequest(args ToggleFullscreenInput) (fullscreen.Request, error) {
	req := fullscreen.Request{
		Target:      fullscreen.Target(strings.ToLower(strings.TrimSpace(args.Target))),
		WindowID:    platform.WindowID(args.WindowID),
		Class:       strings.TrimSpace(args.Class),
		ShowToolbar: args.ShowToolbar,
	}
	switch req.Target {
	case "", fullscreen.TargetFocused, fullscreen.TargetPointer, fullscreen.TargetMain:
	case fullscreen.TargetClass:
		if req.Class == "" {
			return req, fmt.Errorf("target class requires class")
		}
	case fullscreen.TargetWindow:
		if req.WindowID == 0 {
			return req, fmt.Errorf("target window requires window_id")
		}
	default:
		return req, fmt.Errorf("unknown target %q (want focused, pointer, main, class or window)", args.Target)
	}

	if (args.X == nil) != (args.Y == nil) {
		return req, fmt.Errorf("x and y must be given together")
	}
	if args.X != nil {
		req.At = &geometry.Point{X: *args.X, Y: *args.Y}
	}
	return req, nil
}

func toggleOutput(res fullscreen.Result) ToggleFullscreenOutput {
	return ToggleFullscreenOutput{
		Fullscreen:   res.Fullscreen,
		Queued:       res.Queued,
		WindowID:     uint32(res.WindowID),
		Class:        res.WindowType,
		ScreenBounds: res.ScreenBounds,
	}
}

func (s *Server) handleExitFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args ExitFullscreenInput) (*mcpsdk.CallToolResult, ExitFullscreenOutput, error) {
	if args.WindowID == 0 {
		return nil, ExitFullscreenOutput{}, fmt.Errorf("window_id is required")
	}
	exited, err := s.daemon.Exit(platform.WindowID(args.WindowID))
	if err != nil {
		return nil, ExitFullscreenOutput{}, err
	}
	return nil, ExitFullscreenOutput{Exited: exited}, nil
}

func (s *Server) handleCloseAll(_ context.Context, _ *mcpsdk.CallToolRequest, _ CloseAllInput) (*mcpsdk.CallToolResult, CloseAllOutput, error) {
	closed, err := s.daemon.CloseAll()
	if err != nil {
		return nil, CloseAllOutput{}, err
	}
	if !closed {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: "No window was fullscreen."},
			},
		}, CloseAllOutput{}, nil
	}
	return nil, CloseAllOutput{Closed: true}, nil
}

func (s *Server) handlePresentation(_ context.Context, _ *mcpsdk.CallToolRequest, args PresentationInput) (*mcpsdk.CallToolResult, PresentationOutput, error) {
	data, err := s.daemon.Present(args.Start)
	if err != nil {
		return nil, PresentationOutput{}, err
	}
	out := PresentationOutput{Exited: data.Exited}
	for _, res := range data.Entered {
		out.Entered = append(out.Entered, toggleOutput(res))
	}
	return nil, out, nil
}
