package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stackwm/internal/wm"
)

// StatusInput is the input for the wm_status tool.
type StatusInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"Only report the workspace with this name"`
}

// StatusOutput is the output for the wm_status tool.
type StatusOutput struct {
	Status        wm.Status `json:"status"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// ListActionsInput is the input for the wm_list_actions tool.
type ListActionsInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"Only list actions starting with this prefix (e.g. workspace-)"`
}

// ListActionsOutput is the output for the wm_list_actions tool.
type ListActionsOutput struct {
	Actions []string `json:"actions"`
}

// RunActionInput is the input for the wm_run_action tool.
type RunActionInput struct {
	Action string `json:"action" jsonschema:"required,Action name as listed by wm_list_actions (e.g. focus-next, workspace-2, spawn xterm)"`
}

// RunActionOutput is the output for the wm_run_action tool.
type RunActionOutput struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
}

// ReloadInput is the input for the wm_reload tool.
type ReloadInput struct{}

// ReloadOutput is the output for the wm_reload tool.
type ReloadOutput struct {
	OK bool `json:"ok"`
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wm_status",
		Description: "Report screens, workspaces, their layouts and clients, and the focused window.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wm_list_actions",
		Description: "List the action names accepted by wm_run_action.",
	}, s.handleListActions)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wm_run_action",
		Description: "Run a window manager action such as focus-next, swap-master, workspace-3 or spawn <command>.",
	}, s.handleRunAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wm_reload",
		Description: "Reload the window manager configuration file.",
	}, s.handleReload)
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	data, err := s.backend.Status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	out := StatusOutput{Status: data.Status, UptimeSeconds: data.UptimeSeconds}
	if args.Workspace != "" {
		idx := slices.IndexFunc(out.Status.Workspaces, func(w wm.WorkspaceStatus) bool {
			return w.Name == args.Workspace
		})
		if idx < 0 {
			return nil, StatusOutput{}, fmt.Errorf("workspace %q not found", args.Workspace)
		}
		out.Status.Workspaces = out.Status.Workspaces[idx : idx+1]
	}
	return nil, out, nil
}

func (s *Server) handleListActions(_ context.Context, _ *mcpsdk.CallToolRequest, args ListActionsInput) (*mcpsdk.CallToolResult, ListActionsOutput, error) {
	names, err := s.backend.ListActions()
	if err != nil {
		return nil, ListActionsOutput{}, err
	}
	out := ListActionsOutput{Actions: make([]string, 0, len(names))}
	for _, name := range names {
		if strings.HasPrefix(name, args.Prefix) {
			out.Actions = append(out.Actions, name)
		}
	}
	return nil, out, nil
}

func (s *Server) handleRunAction(_ context.Context, _ *mcpsdk.CallToolRequest, args RunActionInput) (*mcpsdk.CallToolResult, RunActionOutput, error) {
	action := strings.TrimSpace(args.Action)
	if action == "" {
		return nil, RunActionOutput{}, fmt.Errorf("action is required")
	}
	if err := s.backend.RunAction(action); err != nil {
		s.logger.Warn("mcp action failed", "action", action, "error", err)
		return nil, RunActionOutput{}, err
	}
	s.logger.Info("mcp action", "action", action)
	return nil, RunActionOutput{Action: action, OK: true}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.backend.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	return nil, ReloadOutput{OK: true}, nil
}
