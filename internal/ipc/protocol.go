package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/1broseidon/fullframe/internal/display"
	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing           CommandType = "PING"
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetDisplays    CommandType = "GET_DISPLAYS"
	CommandListFullscreen CommandType = "LIST_FULLSCREEN"
	CommandToggle         CommandType = "TOGGLE"
	CommandExit           CommandType = "EXIT"
	CommandCloseAll       CommandType = "CLOSE_ALL"
	CommandToggleToolbar  CommandType = "TOGGLE_TOOLBAR"
	CommandPresent        CommandType = "PRESENT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID             int    `json:"pid"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	DaemonRunning   bool   `json:"daemon_running"`
	Loaded          bool   `json:"loaded"`
	Queued          int    `json:"queued"`
	Presenting      bool   `json:"presenting"`
	MainWindowClass string `json:"main_window_class"`
	DisplayCount    int    `json:"display_count"`
	TrackedCount    int    `json:"tracked_count"`
	FullscreenCount int    `json:"fullscreen_count"`
	SessionPath     string `json:"session_path,omitempty"`
	LogFile         string `json:"log_file,omitempty"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []display.Display `json:"displays"`
}

// FullscreenEntry is one fullscreen window in LIST_FULLSCREEN.
type FullscreenEntry struct {
	fullscreen.WindowState
	PID     int    `json:"pid,omitempty"`
	Process string `json:"process,omitempty"`
}

// Since returns how long the entry has been fullscreen.
func (e FullscreenEntry) Since(now time.Time) time.Duration {
	if e.EnteredAt.IsZero() {
		return 0
	}
	return now.Sub(e.EnteredAt)
}

// FullscreenData represents the data returned by LIST_FULLSCREEN
type FullscreenData struct {
	Windows []FullscreenEntry `json:"windows"`
}

// TogglePayload is the payload of TOGGLE. It mirrors fullscreen.Request.
type TogglePayload = fullscreen.Request

// ExitPayload is the payload of EXIT.
type ExitPayload struct {
	WindowID platform.WindowID `json:"window_id"`
}

// ExitData reports whether EXIT changed anything.
type ExitData struct {
	Exited bool `json:"exited"`
}

// CloseAllData reports whether CLOSE_ALL changed anything.
type CloseAllData struct {
	Closed bool `json:"closed"`
}

// ToolbarData is the toolbar visibility after TOGGLE_TOOLBAR.
type ToolbarData struct {
	ShowToolbar bool `json:"show_toolbar"`
}

// PresentPayload is the payload of PRESENT.
type PresentPayload struct {
	Start bool `json:"start"`
}

// PresentData summarises a PRESENT command.
type PresentData struct {
	Entered []fullscreen.Result `json:"entered,omitempty"`
	Exited  int                 `json:"exited"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
