package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stackwm/internal/ipc"
)

const (
	ServerName    = "stackwm"
	ServerVersion = "0.1.0"
)

// Backend is the running window manager as seen over IPC. *ipc.Client
// satisfies it.
type Backend interface {
	Status() (*ipc.StatusData, error)
	ListActions() ([]string, error)
	RunAction(action string) error
	Reload() error
}

// Server exposes the window manager to MCP clients over stdio.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   Backend
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards tool calls to backend.
func NewServer(backend Backend, logger *slog.Logger) (*Server, error) {
	if backend == nil {
		return nil, fmt.Errorf("mcp: backend is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{backend: backend, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}
