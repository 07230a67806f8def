package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/fullframe/internal/fullscreen"
	"github.com/1broseidon/fullframe/internal/platform"
	"github.com/1broseidon/fullframe/internal/runtimepath"
)

// Controller is the part of the fullscreen manager served over IPC.
type Controller interface {
	Toggle(ctx context.Context, req fullscreen.Request) (fullscreen.Result, error)
	ExitFullscreen(id platform.WindowID) bool
	CloseAll() bool
	ToggleToolbar() (bool, error)
	PresentStart(ctx context.Context) []fullscreen.Result
	PresentStop() int
	Status() fullscreen.Status
	Tracked() []fullscreen.Tracked
	Fullscreen() []fullscreen.WindowState
}

// ServerConfig wires a Server.
type ServerConfig struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	Controller Controller
	// Reload re-reads the config; its error is returned to the client.
	Reload func() error
	// ProcessName resolves a window's owner PID to a process name.
	ProcessName func(pid int) string
	SessionPath string
	LogFile     string
	Logger      *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	cfg          ServerConfig
	socketPath   string
	listener     net.Listener
	logger       *slog.Logger
	startTime    time.Time
	ctx          context.Context
	cancel       context.CancelFunc
	conns        sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Controller == nil {
		return nil, fmt.Errorf("ipc server needs a controller")
	}
	socketPath := cfg.SocketPath
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		socketPath: socketPath,
		logger:     logger,
		startTime:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "command", req.Command, "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "command", req.Command, "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandPing:
		return ok(nil)
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetDisplays:
		return ok(DisplaysData{Displays: s.cfg.Controller.Status().Displays})
	case CommandListFullscreen:
		return ok(s.fullscreenData())
	case CommandToggle:
		return s.handleToggle(req.Payload)
	case CommandExit:
		return s.handleExit(req.Payload)
	case CommandCloseAll:
		return ok(CloseAllData{Closed: s.cfg.Controller.CloseAll()})
	case CommandToggleToolbar:
		show, err := s.cfg.Controller.ToggleToolbar()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to toggle toolbar: %v", err))
		}
		return ok(ToolbarData{ShowToolbar: show})
	case CommandPresent:
		return s.handlePresent(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD command")
	if s.cfg.Reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.cfg.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return ok(nil)
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	st := s.cfg.Controller.Status()
	fullscreenCount := 0
	for _, state := range st.States {
		if state.IsFullscreen {
			fullscreenCount++
		}
	}

	return ok(StatusData{
		PID:             os.Getpid(),
		UptimeSeconds:   int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:   true,
		Loaded:          st.Loaded,
		Queued:          st.Queued,
		Presenting:      st.Presenting,
		MainWindowClass: st.MainWindowClass,
		DisplayCount:    len(st.Displays),
		TrackedCount:    len(st.States),
		FullscreenCount: fullscreenCount,
		SessionPath:     s.cfg.SessionPath,
		LogFile:         s.cfg.LogFile,
	})
}

func (s *Server) fullscreenData() FullscreenData {
	pids := make(map[platform.WindowID]int)
	for _, t := range s.cfg.Controller.Tracked() {
		pids[t.State.WindowID] = t.Window.PID()
	}

	data := FullscreenData{Windows: []FullscreenEntry{}}
	for _, state := range s.cfg.Controller.Fullscreen() {
		entry := FullscreenEntry{WindowState: state, PID: pids[state.WindowID]}
		if entry.PID > 0 && s.cfg.ProcessName != nil {
			entry.Process = s.cfg.ProcessName(entry.PID)
		}
		data.Windows = append(data.Windows, entry)
	}
	return data
}

func (s *Server) handleToggle(payload json.RawMessage) *Response {
	var req TogglePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid toggle payload: %v", err))
		}
	}
	if req.Target == "" {
		switch {
		case req.WindowID != 0:
			req.Target = fullscreen.TargetWindow
		case req.Class != "":
			req.Target = fullscreen.TargetClass
		default:
			req.Target = fullscreen.TargetFocused
		}
	}

	res, err := s.cfg.Controller.Toggle(s.ctx, req)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to toggle fullscreen: %v", err))
	}
	return ok(res)
}

func (s *Server) handleExit(payload json.RawMessage) *Response {
	var req ExitPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid exit payload: %v", err))
	}
	if req.WindowID == 0 {
		return NewErrorResponse("window_id is required")
	}
	return ok(ExitData{Exited: s.cfg.Controller.ExitFullscreen(req.WindowID)})
}

func (s *Server) handlePresent(payload json.RawMessage) *Response {
	var req PresentPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid present payload: %v", err))
	}
	if req.Start {
		return ok(PresentData{Entered: s.cfg.Controller.PresentStart(s.ctx)})
	}
	return ok(PresentData{Exited: s.cfg.Controller.PresentStop()})
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
