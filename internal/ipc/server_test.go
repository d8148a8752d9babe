package ipc

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/wm"
)

// loop runs posted calls on a single goroutine, like the controller.
type loop struct {
	events chan platform.Event
	done   chan struct{}
}

func newLoop(t *testing.T) *loop {
	l := &loop{events: make(chan platform.Event, 8), done: make(chan struct{})}
	go func() {
		for {
			select {
			case ev := <-l.events:
				if call, ok := ev.(platform.Call); ok {
					call.Fn()
				}
			case <-l.done:
				return
			}
		}
	}()
	t.Cleanup(func() { close(l.done) })
	return l
}

func (l *loop) Post(ev platform.Event) { l.events <- ev }

// stalled never runs anything posted to it.
type stalled struct{}

func (stalled) Post(platform.Event) {}

type fakeTarget struct {
	mu  sync.Mutex
	ran []string
}

func (f *fakeTarget) Status() wm.Status {
	return wm.Status{
		FocusedWindow: 42,
		Screens:       []wm.ScreenStatus{{Index: 0, Rect: platform.Rect{Width: 800, Height: 600}, Workspace: "1"}},
	}
}

func (f *fakeTarget) RunAction(name string) error {
	if name == "explode" {
		return errors.New("unknown action")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, name)
	return nil
}

func (f *fakeTarget) ActionNames() []string { return []string{"focus-next", "quit"} }

func startServer(t *testing.T, cfg ServerConfig) *Client {
	t.Helper()
	cfg.SocketPath = filepath.Join(t.TempDir(), "wm.sock")
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientWithPath(cfg.SocketPath)
}

func TestServer_StatusAndActions(t *testing.T) {
	target := &fakeTarget{}
	client := startServer(t, ServerConfig{Target: target, Poster: newLoop(t)})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.FocusedWindow != 42 || len(status.Screens) != 1 || status.Screens[0].Rect.Width != 800 {
		t.Fatalf("status = %+v", status)
	}

	names, err := client.ListActions()
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if !slices.Equal(names, []string{"focus-next", "quit"}) {
		t.Fatalf("actions = %v", names)
	}

	if err := client.RunAction("focus-next"); err != nil {
		t.Fatalf("RunAction: %v", err)
	}
	target.mu.Lock()
	ran := slices.Clone(target.ran)
	target.mu.Unlock()
	if !slices.Equal(ran, []string{"focus-next"}) {
		t.Fatalf("ran = %v", ran)
	}
}

func TestServer_ActionErrorsAreReported(t *testing.T) {
	client := startServer(t, ServerConfig{Target: &fakeTarget{}, Poster: newLoop(t)})

	err := client.RunAction("explode")
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("expected action error, got %v", err)
	}
	if err := client.RunAction(""); err == nil {
		t.Fatalf("expected error for empty action")
	}
}

func TestServer_Reload(t *testing.T) {
	var calls atomic.Int32
	client := startServer(t, ServerConfig{
		Target: &fakeTarget{},
		Poster: newLoop(t),
		Reload: func() error {
			if calls.Add(1) > 1 {
				return errors.New("bad yaml")
			}
			return nil
		},
	})

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := client.Reload(); err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("expected reload failure, got %v", err)
	}
}

func TestServer_TimesOutWhenLoopIsStuck(t *testing.T) {
	client := startServer(t, ServerConfig{
		Target:  &fakeTarget{},
		Poster:  stalled{},
		Timeout: 50 * time.Millisecond,
	})

	if _, err := client.Status(); err == nil || !strings.Contains(err.Error(), "did not answer") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestClient_NoServer(t *testing.T) {
	client := NewClientWithPath(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestNewServer_RequiresTarget(t *testing.T) {
	if _, err := NewServer(ServerConfig{SocketPath: "/tmp/x.sock"}); err == nil {
		t.Fatalf("expected error without target")
	}
}
