package mcp

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/1broseidon/stackwm/internal/ipc"
	"github.com/1broseidon/stackwm/internal/wm"
)

type fakeBackend struct {
	ran       []string
	reloads   int
	statusErr error
}

func (f *fakeBackend) Status() (*ipc.StatusData, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &ipc.StatusData{
		Status: wm.Status{
			FocusedWindow: 7,
			Workspaces: []wm.WorkspaceStatus{
				{ID: 0, Name: "web", Layout: "[side]", Visible: true},
				{ID: 1, Name: "code", Layout: "[mono]"},
			},
		},
		UptimeSeconds: 12,
	}, nil
}

func (f *fakeBackend) ListActions() ([]string, error) {
	return []string{"focus-next", "quit", "workspace-1", "workspace-2"}, nil
}

func (f *fakeBackend) RunAction(action string) error {
	if action == "explode" {
		return errors.New("unknown action")
	}
	f.ran = append(f.ran, action)
	return nil
}

func (f *fakeBackend) Reload() error {
	f.reloads++
	return nil
}

func newTestServer(t *testing.T, b *fakeBackend) *Server {
	t.Helper()
	s, err := NewServer(b, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestNewServer_RequiresBackend(t *testing.T) {
	if _, err := NewServer(nil, nil); err == nil {
		t.Fatalf("expected error without backend")
	}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	ctx := context.Background()

	_, out, err := s.handleStatus(ctx, nil, StatusInput{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if out.Status.FocusedWindow != 7 || len(out.Status.Workspaces) != 2 || out.UptimeSeconds != 12 {
		t.Fatalf("unexpected status: %+v", out)
	}

	_, out, err = s.handleStatus(ctx, nil, StatusInput{Workspace: "code"})
	if err != nil {
		t.Fatalf("status code: %v", err)
	}
	if len(out.Status.Workspaces) != 1 || out.Status.Workspaces[0].Layout != "[mono]" {
		t.Fatalf("filtered workspaces = %+v", out.Status.Workspaces)
	}

	if _, _, err := s.handleStatus(ctx, nil, StatusInput{Workspace: "chat"}); err == nil {
		t.Fatalf("expected error for unknown workspace")
	}
}

func TestHandleStatus_BackendError(t *testing.T) {
	s := newTestServer(t, &fakeBackend{statusErr: errors.New("is stackwm running?")})
	_, _, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err == nil || !strings.Contains(err.Error(), "running") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestHandleListActions(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"focus-next", "quit", "workspace-1", "workspace-2"}},
		{"workspace-", []string{"workspace-1", "workspace-2"}},
		{"swap", []string{}},
	}
	for _, tt := range tests {
		_, out, err := s.handleListActions(context.Background(), nil, ListActionsInput{Prefix: tt.prefix})
		if err != nil {
			t.Fatalf("list %q: %v", tt.prefix, err)
		}
		if !slices.Equal(out.Actions, tt.want) {
			t.Errorf("prefix %q: got %v, want %v", tt.prefix, out.Actions, tt.want)
		}
	}
}

func TestHandleRunAction(t *testing.T) {
	b := &fakeBackend{}
	s := newTestServer(t, b)
	ctx := context.Background()

	_, out, err := s.handleRunAction(ctx, nil, RunActionInput{Action: " focus-next "})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.OK || out.Action != "focus-next" || !slices.Equal(b.ran, []string{"focus-next"}) {
		t.Fatalf("out=%+v ran=%v", out, b.ran)
	}

	if _, _, err := s.handleRunAction(ctx, nil, RunActionInput{}); err == nil {
		t.Fatalf("expected error for empty action")
	}
	if _, _, err := s.handleRunAction(ctx, nil, RunActionInput{Action: "explode"}); err == nil {
		t.Fatalf("expected backend error")
	}
}

func TestHandleReload(t *testing.T) {
	b := &fakeBackend{}
	s := newTestServer(t, b)
	_, out, err := s.handleReload(context.Background(), nil, ReloadInput{})
	if err != nil || !out.OK || b.reloads != 1 {
		t.Fatalf("reload out=%+v err=%v reloads=%d", out, err, b.reloads)
	}
}
