// Package windowset holds the authoritative model of a window manager
// session: which clients exist, which workspace holds them, which workspace
// each screen shows and where the focus is.
//
// Every exported mutator re-checks the model invariants before returning and
// panics if one is broken. Lookup failures are returned as errors wrapping
// ErrClientNotFound, ErrWorkspaceNotFound or ErrScreenIndexOutOfBounds.
package windowset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/stackwm/internal/layout"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/stack"
)

var (
	ErrClientNotFound         = errors.New("client not found")
	ErrWorkspaceNotFound      = errors.New("workspace not found")
	ErrScreenIndexOutOfBounds = errors.New("screen index out of bounds")
)

// Client is one managed window.
type Client struct {
	ID          platform.WindowID
	Class       string
	Geometry    platform.Rect
	BorderWidth int
	Floating    bool
	Fullscreen  bool
	// Workspace is maintained by the WindowSet; the value passed to
	// InsertClient is ignored.
	Workspace int
}

// Screen is a display region and the workspace shown on it.
type Screen struct {
	ID        int
	Rect      platform.Rect
	Workspace int
}

// Workspace is a named stack of clients plus its layout cycle.
type Workspace struct {
	id     int
	name   string
	stack  stack.Stack[platform.WindowID]
	layout *layout.Cycle
}

func (w *Workspace) ID() int      { return w.id }
func (w *Workspace) Name() string { return w.name }
func (w *Workspace) Len() int     { return w.stack.Len() }

// Clients returns the stack order, head first.
func (w *Workspace) Clients() []platform.WindowID { return w.stack.Order() }

// Focused returns the focused client of the workspace.
func (w *Workspace) Focused() (platform.WindowID, bool) { return w.stack.Focused() }

// LayoutName returns the name of the active layout variant.
func (w *Workspace) LayoutName() string { return w.layout.Name() }

// LayoutConf returns the live parameters of the active layout variant.
func (w *Workspace) LayoutConf() layout.Conf { return w.layout.Conf() }

// Passive reports whether the active layout leaves windows where their
// clients put them.
func (w *Workspace) Passive() bool { return layout.IsPassive(w.layout.Engine()) }

// WindowSet is the full session model.
type WindowSet struct {
	screens    []Screen
	workspaces []*Workspace
	clients    map[platform.WindowID]*Client
	focused    int
}

// New creates a WindowSet with one workspace per name, each starting with
// its own copy of cycle. Workspace i is shown on screen i. Screens beyond
// the number of workspaces are not managed.
func New(names []string, screens []platform.Rect, cycle *layout.Cycle) (*WindowSet, error) {
	if len(names) == 0 {
		return nil, errors.New("at least one workspace is required")
	}
	if len(screens) == 0 {
		return nil, errors.New("at least one screen is required")
	}
	if cycle == nil {
		return nil, errors.New("layout cycle is required")
	}

	ws := &WindowSet{clients: make(map[platform.WindowID]*Client)}
	for i, name := range names {
		ws.workspaces = append(ws.workspaces, &Workspace{id: i, name: name, layout: cycle.Clone()})
	}
	for i, r := range screens[:min(len(screens), len(names))] {
		ws.screens = append(ws.screens, Screen{ID: i, Rect: r, Workspace: i})
	}
	ws.checkInvariants()
	return ws, nil
}

// Screens returns a copy of the managed screens.
func (ws *WindowSet) Screens() []Screen {
	return slices.Clone(ws.screens)
}

// Workspaces returns every workspace, visible or hidden, in id order.
func (ws *WindowSet) Workspaces() []*Workspace {
	return slices.Clone(ws.workspaces)
}

// Workspace returns the workspace with the given id.
func (ws *WindowSet) Workspace(id int) (*Workspace, error) {
	if id < 0 || id >= len(ws.workspaces) {
		return nil, fmt.Errorf("%w: %d", ErrWorkspaceNotFound, id)
	}
	return ws.workspaces[id], nil
}

// WorkspaceByName looks a workspace up by its display name.
func (ws *WindowSet) WorkspaceByName(name string) (*Workspace, error) {
	for _, w := range ws.workspaces {
		if w.name == name {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrWorkspaceNotFound, name)
}

// FocusedScreenIndex returns the index of the focused screen.
func (ws *WindowSet) FocusedScreenIndex() int { return ws.focused }

// FocusedScreen returns the focused screen.
func (ws *WindowSet) FocusedScreen() Screen { return ws.screens[ws.focused] }

// FocusedWorkspace returns the workspace shown on the focused screen.
func (ws *WindowSet) FocusedWorkspace() *Workspace {
	return ws.workspaces[ws.screens[ws.focused].Workspace]
}

// FocusedClient returns the focused client of the focused workspace.
func (ws *WindowSet) FocusedClient() (Client, bool) {
	id, ok := ws.FocusedWorkspace().Focused()
	if !ok {
		return Client{}, false
	}
	return *ws.clients[id], true
}

// Client returns a copy of a managed client.
func (ws *WindowSet) Client(id platform.WindowID) (Client, bool) {
	c, ok := ws.clients[id]
	if !ok {
		return Client{}, false
	}
	return *c, true
}

// Managed reports whether id is a managed client.
func (ws *WindowSet) Managed(id platform.WindowID) bool {
	_, ok := ws.clients[id]
	return ok
}

// ClientCount returns the number of managed clients.
func (ws *WindowSet) ClientCount() int { return len(ws.clients) }

// AllClients returns every managed client, grouped by workspace in stack
// order.
func (ws *WindowSet) AllClients() []Client {
	out := make([]Client, 0, len(ws.clients))
	for _, w := range ws.workspaces {
		for _, id := range w.stack.Order() {
			out = append(out, *ws.clients[id])
		}
	}
	return out
}

// WorkspaceOf returns the id of the workspace holding a client.
func (ws *WindowSet) WorkspaceOf(id platform.WindowID) (int, error) {
	c, ok := ws.clients[id]
	if !ok {
		return 0, fmt.Errorf("%w: 0x%x", ErrClientNotFound, uint32(id))
	}
	return c.Workspace, nil
}

// ScreenOf returns the index of the screen showing a workspace.
func (ws *WindowSet) ScreenOf(workspace int) (int, bool) {
	for i, s := range ws.screens {
		if s.Workspace == workspace {
			return i, true
		}
	}
	return 0, false
}

// HiddenWorkspaces returns the ids of workspaces not shown on any screen,
// lowest first.
func (ws *WindowSet) HiddenWorkspaces() []int {
	var out []int
	for _, w := range ws.workspaces {
		if _, shown := ws.ScreenOf(w.id); !shown {
			out = append(out, w.id)
		}
	}
	return out
}

// VisibleClients returns the clients of every shown workspace.
func (ws *WindowSet) VisibleClients() []platform.WindowID {
	var out []platform.WindowID
	for _, s := range ws.screens {
		out = append(out, ws.workspaces[s.Workspace].stack.Order()...)
	}
	return out
}

// Snapshot returns the layout view of a workspace. Fullscreen clients are
// handed to the layout as floating since they are positioned separately.
func (ws *WindowSet) Snapshot(workspace int) (layout.Snapshot, error) {
	w, err := ws.Workspace(workspace)
	if err != nil {
		return layout.Snapshot{}, err
	}
	var snap layout.Snapshot
	for _, id := range w.stack.Order() {
		c := ws.clients[id]
		snap.Clients = append(snap.Clients, layout.Entry{ID: id, Floating: c.Floating || c.Fullscreen})
	}
	snap.Focused, snap.HasFocus = w.stack.Focused()
	return snap, nil
}

// Arrange runs the active layout of the workspace shown on screen inside
// region.
func (ws *WindowSet) Arrange(screen int, region platform.Rect) (layout.Arrangement, error) {
	if err := ws.checkScreen(screen); err != nil {
		return layout.Arrangement{}, err
	}
	w := ws.workspaces[ws.screens[screen].Workspace]
	snap, err := ws.Snapshot(w.id)
	if err != nil {
		return layout.Arrangement{}, err
	}
	return w.layout.Apply(snap, region), nil
}

func (ws *WindowSet) checkScreen(i int) error {
	if i < 0 || i >= len(ws.screens) {
		return fmt.Errorf("%w: %d (have %d)", ErrScreenIndexOutOfBounds, i, len(ws.screens))
	}
	return nil
}

func (ws *WindowSet) client(id platform.WindowID) (*Client, error) {
	c, ok := ws.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrClientNotFound, uint32(id))
	}
	return c, nil
}
