package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/platform"
	"github.com/1broseidon/fullframe/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SetTimeout overrides the per-request timeout. Toggles that launch a
// window can take as long as the daemon's launch_timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the response
// data into out when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetDisplays retrieves the display layout.
func (c *Client) GetDisplays() (*DisplaysData, error) {
	var data DisplaysData
	if err := c.call(CommandGetDisplays, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListFullscreen retrieves the fullscreen windows.
func (c *Client) ListFullscreen() (*FullscreenData, error) {
	var data FullscreenData
	if err := c.call(CommandListFullscreen, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Toggle flips fullscreen for the window selected by req.
func (c *Client) Toggle(req fullscreen.Request) (*fullscreen.Result, error) {
	var res fullscreen.Result
	if err := c.call(CommandToggle, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Exit restores the fullscreen window with id.
func (c *Client) Exit(id platform.WindowID) (bool, error) {
	var data ExitData
	if err := c.call(CommandExit, ExitPayload{WindowID: id}, &data); err != nil {
		return false, err
	}
	return data.Exited, nil
}

// CloseAll exits every fullscreen window.
func (c *Client) CloseAll() (bool, error) {
	var data CloseAllData
	if err := c.call(CommandCloseAll, nil, &data); err != nil {
		return false, err
	}
	return data.Closed, nil
}

// ToggleToolbar flips the toolbar of the current fullscreen window.
func (c *Client) ToggleToolbar() (bool, error) {
	var data ToolbarData
	if err := c.call(CommandToggleToolbar, nil, &data); err != nil {
		return false, err
	}
	return data.ShowToolbar, nil
}

// Present starts or stops presentation mode.
func (c *Client) Present(start bool) (*PresentData, error) {
	var data PresentData
	if err := c.call(CommandPresent, PresentPayload{Start: start}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
