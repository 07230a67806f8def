package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/ipc"
	"github.com/1broseidon/fullframe/internal/platform"
)

const (
	ServerName    = "fullframe"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools call. *ipc.Client satisfies it.
type Daemon interface {
	GetDisplays() (*ipc.DisplaysData, error)
	ListFullscreen() (*ipc.FullscreenData, error)
	Toggle(req fullscreen.Request) (*fullscreen.Result, error)
	Exit(id platform.WindowID) (bool, error)
	CloseAll() (bool, error)
	Present(start bool) (*ipc.PresentData, error)
}

// Server is the MCP server exposing fullscreen control to agents.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that proxies to the daemon.
func NewServer(d Daemon) *Server {
	s := &Server{daemon: d}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the attached displays in layout order (top to bottom, left to right) with logical bounds, physical bounds, work area and which one is primary or holds the main window.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_fullscreen",
		Description: "List windows currently in fullscreen, with the display rect they cover, toolbar visibility, owning process and how long ago they entered fullscreen.",
	}, s.handleListFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_fullscreen",
		Description: "Toggle fullscreen for a window. Select it by window_id, by class (WM_CLASS, launching one when configured and none exists), or by target focused|pointer|main. Pass x and y to choose the display that contains that point. At most one window is fullscreen per display; the previous one is restored.",
	}, s.handleToggleFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "exit_fullscreen",
		Description: "Restore one fullscreen window to its previous position, size and decorations.",
	}, s.handleExitFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_all_fullscreen",
		Description: "Restore every fullscreen window. Windows opened only for fullscreen are closed.",
	}, s.handleCloseAll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "presentation_mode",
		Description: "Start or stop presentation mode. Starting fullscreens every class configured with fullscreen_on_present; stopping restores them according to close_on_present_stop.",
	}, s.handlePresentation)
}
