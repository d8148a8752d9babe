package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/wm"
)

// DefaultTimeout bounds how long a request waits for the event loop.
const DefaultTimeout = 5 * time.Second

var errLoopTimeout = errors.New("window manager did not answer in time")

// Target is the window manager state the server exposes. Its methods are
// only ever called on the event loop.
type Target interface {
	Status() wm.Status
	RunAction(name string) error
	ActionNames() []string
}

// ServerConfig configures a Server.
type ServerConfig struct {
	SocketPath string
	Target     Target
	// Poster delivers calls into the event loop.
	Poster platform.Poster
	// Reload re-reads the configuration. It runs on the connection
	// goroutine and is responsible for reaching the loop itself.
	Reload  func() error
	Logger  *slog.Logger
	Timeout time.Duration
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	target       Target
	poster       platform.Poster
	reload       func() error
	logger       *slog.Logger
	timeout      time.Duration
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if cfg.Target == nil || cfg.Poster == nil {
		return nil, fmt.Errorf("target and poster are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Server{
		socketPath: cfg.SocketPath,
		target:     cfg.Target,
		poster:     cfg.Poster,
		reload:     cfg.Reload,
		logger:     cfg.Logger,
		timeout:    cfg.Timeout,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed run.
	os.Remove(s.socketPath)

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

	s.logger.Info("ipc server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("ipc accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("ipc read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleCommand(req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal ipc response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send ipc response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("ipc request", "command", req.Command)
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListActions:
		return s.handleListActions()
	case CommandRunAction:
		return s.handleRunAction(req.Payload)
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// onLoop runs fn on the event loop and waits for it to finish.
func (s *Server) onLoop(fn func()) error {
	done := make(chan struct{})
	s.poster.Post(platform.Call{Fn: func() {
		defer close(done)
		fn()
	}})
	select {
	case <-done:
		return nil
	case <-time.After(s.timeout):
		return errLoopTimeout
	}
}

func (s *Server) handleGetStatus() *Response {
	var status wm.Status
	if err := s.onLoop(func() { status = s.target.Status() }); err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(StatusData{
		Status:        status,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleListActions() *Response {
	var names []string
	if err := s.onLoop(func() { names = s.target.ActionNames() }); err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(ActionsData{Actions: names})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleRunAction(payload json.RawMessage) *Response {
	var req RunActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid action payload: %v", err))
	}
	if req.Action == "" {
		return NewErrorResponse("action is required")
	}

	var actionErr error
	if err := s.onLoop(func() { actionErr = s.target.RunAction(req.Action) }); err != nil {
		return NewErrorResponse(err.Error())
	}
	if actionErr != nil {
		return NewErrorResponse(fmt.Sprintf("%s: %v", req.Action, actionErr))
	}
	s.logger.Info("ipc action", "action", req.Action)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleReload() *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
