package windowset

import (
	"errors"
	"fmt"

	"github.com/1broseidon/stackwm/internal/layout"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/stack"
)

// InsertClient adds c to a workspace and focuses it there. A client that is
// already managed is moved to the workspace instead.
func (ws *WindowSet) InsertClient(workspace int, c Client) error {
	w, err := ws.Workspace(workspace)
	if err != nil {
		return err
	}
	if old, ok := ws.clients[c.ID]; ok {
		ws.workspaces[old.Workspace].stack.Remove(c.ID)
	}
	c.Workspace = workspace
	ws.clients[c.ID] = &c
	w.stack.Insert(c.ID)
	ws.checkInvariants()
	return nil
}

// RemoveClient unmanages a client and returns its last state.
func (ws *WindowSet) RemoveClient(id platform.WindowID) (Client, error) {
	for _, w := range ws.workspaces {
		if w.stack.Remove(id) {
			c := *ws.clients[id]
			delete(ws.clients, id)
			ws.checkInvariants()
			return c, nil
		}
	}
	return Client{}, fmt.Errorf("%w: 0x%x", ErrClientNotFound, uint32(id))
}

// FocusScreen makes screen i the focused screen.
func (ws *WindowSet) FocusScreen(i int) error {
	if err := ws.checkScreen(i); err != nil {
		return err
	}
	ws.focused = i
	ws.checkInvariants()
	return nil
}

// FocusClient focuses a client. When its workspace is hidden it is brought
// onto the focused screen; when it is shown elsewhere that screen gains
// focus.
func (ws *WindowSet) FocusClient(id platform.WindowID) error {
	c, err := ws.client(id)
	if err != nil {
		return err
	}
	if i, shown := ws.ScreenOf(c.Workspace); shown {
		ws.focused = i
	} else {
		ws.screens[ws.focused].Workspace = c.Workspace
	}
	ws.workspaces[c.Workspace].stack.Focus(id)
	ws.checkInvariants()
	return nil
}

// MoveClientToWorkspace moves a client to the target workspace, where it
// becomes focused. Moving it back later restores membership but not its
// previous position or the source workspace's focus.
func (ws *WindowSet) MoveClientToWorkspace(id platform.WindowID, target int) error {
	c, err := ws.client(id)
	if err != nil {
		return err
	}
	dst, err := ws.Workspace(target)
	if err != nil {
		return err
	}
	if c.Workspace == target {
		return nil
	}
	ws.workspaces[c.Workspace].stack.Remove(id)
	dst.stack.Insert(id)
	c.Workspace = target
	ws.checkInvariants()
	return nil
}

// SwapWorkspaceOntoScreen shows workspace on screen. The workspace that was
// there becomes hidden, unless the requested workspace was visible on
// another screen, in which case the two screens trade workspaces.
func (ws *WindowSet) SwapWorkspaceOntoScreen(workspace, screen int) error {
	if _, err := ws.Workspace(workspace); err != nil {
		return err
	}
	if err := ws.checkScreen(screen); err != nil {
		return err
	}
	current := ws.screens[screen].Workspace
	if current == workspace {
		return nil
	}
	if other, shown := ws.ScreenOf(workspace); shown {
		ws.screens[other].Workspace = current
	}
	ws.screens[screen].Workspace = workspace
	ws.checkInvariants()
	return nil
}

// FocusWorkspace shows workspace on the focused screen.
func (ws *WindowSet) FocusWorkspace(workspace int) error {
	return ws.SwapWorkspaceOntoScreen(workspace, ws.focused)
}

// Reconfigure replaces the screen list after the display layout changed.
// The first screens keep their workspaces, additional screens take hidden
// workspaces lowest id first, and workspaces of removed screens become
// hidden. Screens beyond the number of workspaces are dropped. No client
// changes workspace.
func (ws *WindowSet) Reconfigure(rects []platform.Rect) error {
	if len(rects) == 0 {
		return errors.New("reconfigure: no screens")
	}
	n := min(len(rects), len(ws.workspaces))

	used := make(map[int]bool, n)
	screens := make([]Screen, n)
	for i := range n {
		screens[i] = Screen{ID: i, Rect: rects[i], Workspace: -1}
		if i < len(ws.screens) {
			screens[i].Workspace = ws.screens[i].Workspace
			used[ws.screens[i].Workspace] = true
		}
	}
	next := 0
	for i := range screens {
		if screens[i].Workspace >= 0 {
			continue
		}
		for used[next] {
			next++
		}
		screens[i].Workspace = next
		used[next] = true
	}

	ws.screens = screens
	ws.focused = min(ws.focused, n-1)
	ws.checkInvariants()
	return nil
}

// FocusNext moves the focus down the focused workspace's stack. It wraps
// unless the active layout sets NoWrap.
func (ws *WindowSet) FocusNext() {
	wrap := ws.wraps()
	ws.mutateFocused(func(s *stack.Stack[platform.WindowID]) { s.FocusStep(stack.Forward, wrap) })
}

// FocusPrevious moves the focus up the focused workspace's stack.
func (ws *WindowSet) FocusPrevious() {
	wrap := ws.wraps()
	ws.mutateFocused(func(s *stack.Stack[platform.WindowID]) { s.FocusStep(stack.Backward, wrap) })
}

// SwapFocused swaps the focused client with its neighbour.
func (ws *WindowSet) SwapFocused(dir stack.Direction) {
	wrap := ws.wraps()
	ws.mutateFocused(func(s *stack.Stack[platform.WindowID]) { s.SwapStep(dir, wrap) })
}

func (ws *WindowSet) wraps() bool {
	return !ws.FocusedWorkspace().layout.Conf().NoWrap
}

// SwapHead swaps the focused client with the head of the stack.
func (ws *WindowSet) SwapHead() {
	ws.mutateFocused(func(s *stack.Stack[platform.WindowID]) { s.SwapHead() })
}

// Rotate rotates the focused workspace's stack.
func (ws *WindowSet) Rotate(dir stack.Direction) {
	ws.mutateFocused(func(s *stack.Stack[platform.WindowID]) { s.Rotate(dir) })
}

func (ws *WindowSet) mutateFocused(fn func(*stack.Stack[platform.WindowID])) {
	fn(&ws.FocusedWorkspace().stack)
	ws.checkInvariants()
}

// SetFloating marks a client floating or tiled.
func (ws *WindowSet) SetFloating(id platform.WindowID, floating bool) error {
	return ws.updateClient(id, func(c *Client) { c.Floating = floating })
}

// SetFullscreen marks a client fullscreen.
func (ws *WindowSet) SetFullscreen(id platform.WindowID, on bool) error {
	return ws.updateClient(id, func(c *Client) { c.Fullscreen = on })
}

// SetGeometry records the last explicit geometry of a client.
func (ws *WindowSet) SetGeometry(id platform.WindowID, r platform.Rect, border int) error {
	return ws.updateClient(id, func(c *Client) {
		c.Geometry = r
		c.BorderWidth = border
	})
}

func (ws *WindowSet) updateClient(id platform.WindowID, fn func(*Client)) error {
	c, err := ws.client(id)
	if err != nil {
		return err
	}
	fn(c)
	ws.checkInvariants()
	return nil
}

// SendLayoutMessage applies msg to the focused workspace's layout. Reports
// whether the layout changed.
func (ws *WindowSet) SendLayoutMessage(msg layout.Message) bool {
	return ws.FocusedWorkspace().layout.Handle(msg)
}

// SendLayoutMessageTo applies msg to the layout of a specific workspace.
func (ws *WindowSet) SendLayoutMessageTo(workspace int, msg layout.Message) (bool, error) {
	w, err := ws.Workspace(workspace)
	if err != nil {
		return false, err
	}
	return w.layout.Handle(msg), nil
}

// SelectLayout activates a named layout variant on the focused workspace.
func (ws *WindowSet) SelectLayout(name string) error {
	return ws.FocusedWorkspace().layout.Select(name)
}

// SetSpacing updates gap and border sizes on every workspace layout.
func (ws *WindowSet) SetSpacing(gap, border int) {
	for _, w := range ws.workspaces {
		w.layout.SetSpacing(gap, border)
	}
}

// checkInvariants panics when the model is inconsistent. A failure here is a
// bug in this package, never a caller error.
func (ws *WindowSet) checkInvariants() {
	if len(ws.screens) == 0 {
		panic("windowset: no screens")
	}
	if ws.focused < 0 || ws.focused >= len(ws.screens) {
		panic(fmt.Sprintf("windowset: focused screen %d out of range [0,%d)", ws.focused, len(ws.screens)))
	}

	shownOn := make(map[int]int, len(ws.screens))
	for i, s := range ws.screens {
		if s.Workspace < 0 || s.Workspace >= len(ws.workspaces) {
			panic(fmt.Sprintf("windowset: screen %d shows invalid workspace %d", i, s.Workspace))
		}
		if prev, dup := shownOn[s.Workspace]; dup {
			panic(fmt.Sprintf("windowset: workspace %d shown on screens %d and %d", s.Workspace, prev, i))
		}
		shownOn[s.Workspace] = i
	}

	seen := make(map[platform.WindowID]int, len(ws.clients))
	for _, w := range ws.workspaces {
		for _, id := range w.stack.Order() {
			if prev, dup := seen[id]; dup {
				panic(fmt.Sprintf("windowset: client 0x%x in workspaces %d and %d", uint32(id), prev, w.id))
			}
			seen[id] = w.id
			c, ok := ws.clients[id]
			if !ok {
				panic(fmt.Sprintf("windowset: workspace %d holds unknown client 0x%x", w.id, uint32(id)))
			}
			if c.Workspace != w.id {
				panic(fmt.Sprintf("windowset: client 0x%x records workspace %d but sits in %d", uint32(id), c.Workspace, w.id))
			}
		}
		if focus, ok := w.stack.Focused(); ok && !w.stack.Contains(focus) {
			panic(fmt.Sprintf("windowset: workspace %d focuses non-member 0x%x", w.id, uint32(focus)))
		}
	}
	if len(seen) != len(ws.clients) {
		panic(fmt.Sprintf("windowset: %d clients known but %d placed in workspaces", len(ws.clients), len(seen)))
	}
}
