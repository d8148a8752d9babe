package wm

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/windowset"
)

// EWMH _NET_WM_STATE actions.
const (
	stateRemove = 0
	stateAdd    = 1
	stateToggle = 2
)

func (c *Controller) dispatch(ev platform.Event) {
	switch e := ev.(type) {
	case platform.MapRequest:
		c.onMapRequest(e)
	case platform.DestroyNotify:
		c.unmanage(e.Window, "destroyed")
	case platform.UnmapNotify:
		c.unmanage(e.Window, "withdrawn")
	case platform.ConfigureRequest:
		c.onConfigureRequest(e)
	case platform.EnterNotify:
		c.onEnter(e)
	case platform.KeyPress:
		c.onKeyPress(e)
	case platform.ButtonPress:
		c.onButtonPress(e)
	case platform.PointerMotion:
		c.onPointerMotion(e)
	case platform.ButtonRelease:
		c.onButtonRelease(e)
	case platform.ClientMessage:
		c.onClientMessage(e)
	case platform.ScreenChange:
		c.onScreenChange()
	case platform.ChildExited:
		c.reapChildren()
	case platform.Shutdown:
		c.logger.Info("shutdown requested")
		c.Stop()
	case platform.Call:
		if e.Fn != nil {
			e.Fn()
		}
	case platform.Unknown:
		c.logger.Debug("ignoring event", "event", e.Name)
	default:
		c.logger.Debug("ignoring event", "event", fmt.Sprintf("%T", ev))
	}
}

func (c *Controller) onMapRequest(e platform.MapRequest) {
	if c.ws.Managed(e.Window) {
		// Already tracked; visibility follows the model.
		return
	}
	if !c.manage(e.Window) {
		c.check("map", c.conn.Map(e.Window))
		if c.docks[e.Window] {
			// A new dock may reserve an edge.
			c.onScreenChange()
		}
	}
}

// manage classifies a window and inserts it into the focused workspace.
// Reports whether the window entered the model.
func (c *Controller) manage(id platform.WindowID) bool {
	info, err := c.conn.WindowInfo(id)
	if !c.check("window info", err) {
		return false
	}
	if info.Unmanaged {
		if info.Dock {
			c.docks[id] = true
		}
		c.logger.Debug("window not managed", "window", id, "class", info.Class, "dock", info.Dock)
		return false
	}

	client := windowset.Client{
		ID:          id,
		Class:       info.Class,
		Geometry:    info.Geometry,
		BorderWidth: c.cfg.BorderWidth,
		Floating:    c.cfg.IsFloating(info),
	}
	workspace := c.ws.FocusedWorkspace().ID()
	if err := c.ws.InsertClient(workspace, client); err != nil {
		c.logger.Warn("failed to manage window", "window", id, "error", err)
		return false
	}
	c.check("manage", c.conn.Manage(id))
	c.check("border color", c.conn.SetBorderColor(id, c.cfg.UnfocusedBorder))

	c.logger.Debug("managing window",
		"window", id,
		"class", info.Class,
		"floating", client.Floating,
		"workspace", workspace)
	return true
}

func (c *Controller) unmanage(id platform.WindowID, reason string) {
	if c.docks[id] {
		delete(c.docks, id)
		c.logger.Debug("dock gone", "window", id, "reason", reason)
		c.onScreenChange()
		return
	}
	if _, err := c.ws.RemoveClient(id); err != nil {
		if errors.Is(err, windowset.ErrClientNotFound) {
			c.logger.Debug("event for unmanaged window", "window", id, "reason", reason)
			return
		}
		c.logger.Warn("failed to remove window", "window", id, "error", err)
		return
	}
	delete(c.mapped, id)
	delete(c.placed, id)
	if c.focused == id {
		c.focused = 0
	}
	c.logger.Debug("window removed", "window", id, "reason", reason)
}

func (c *Controller) onConfigureRequest(e platform.ConfigureRequest) {
	cl, managed := c.ws.Client(e.Window)
	if !managed {
		c.check("configure", c.conn.ConfigurePassThrough(e))
		return
	}

	if !c.ownsGeometry(cl) {
		// Tiled and fullscreen windows stay where the layout put them,
		// including ones the layout currently hides.
		r, border := c.managedGeometry(cl)
		c.check("configure notify", c.conn.NotifyGeometry(e.Window, r, border))
		return
	}

	c.check("configure", c.conn.ConfigurePassThrough(e))
	r := cl.Geometry
	if e.ValueMask&platform.ConfigX != 0 {
		r.X = e.X
	}
	if e.ValueMask&platform.ConfigY != 0 {
		r.Y = e.Y
	}
	if e.ValueMask&platform.ConfigWidth != 0 {
		r.Width = e.Width
	}
	if e.ValueMask&platform.ConfigHeight != 0 {
		r.Height = e.Height
	}
	border := cl.BorderWidth
	if e.ValueMask&platform.ConfigBorderWidth != 0 {
		border = e.BorderWidth
	}
	if err := c.ws.SetGeometry(e.Window, r, border); err != nil {
		c.logger.Debug("failed to record geometry", "window", e.Window, "error", err)
	}
}

// ownsGeometry reports whether a client decides its own position: floating
// clients and every client of a workspace with a passive layout.
func (c *Controller) ownsGeometry(cl windowset.Client) bool {
	if cl.Fullscreen {
		return false
	}
	if cl.Floating {
		return true
	}
	w, err := c.ws.Workspace(cl.Workspace)
	return err == nil && w.Passive()
}

// managedGeometry is the geometry reported to a client the window manager
// positions: its last tiled placement, the screen while fullscreen, or the
// geometry last recorded in the model.
func (c *Controller) managedGeometry(cl windowset.Client) (platform.Rect, int) {
	if p, ok := c.placed[cl.ID]; ok {
		return p.Rect, p.Border
	}
	if cl.Fullscreen {
		if i, ok := c.ws.ScreenOf(cl.Workspace); ok {
			return c.ws.Screens()[i].Rect, 0
		}
	}
	return cl.Geometry, cl.BorderWidth
}

func (c *Controller) onEnter(e platform.EnterNotify) {
	if !c.cfg.FocusFollowsPointer || !c.ws.Managed(e.Window) {
		return
	}
	if err := c.ws.FocusClient(e.Window); err != nil {
		c.logger.Debug("focus on enter failed", "window", e.Window, "error", err)
	}
}

func (c *Controller) onKeyPress(e platform.KeyPress) {
	action, ok := c.keys.Lookup(e.Chord)
	if !ok {
		c.logger.Debug("unbound chord", "chord", e.Chord.String())
		return
	}
	if err := action(c); err != nil {
		c.logger.Warn("key binding failed",
			"chord", e.Chord.String(),
			"action", c.keys.Name(e.Chord),
			"error", err)
	}
}

func (c *Controller) onClientMessage(e platform.ClientMessage) {
	switch e.Type {
	case "_NET_CLOSE_WINDOW":
		c.check("close", c.conn.Close(e.Window))

	case "_NET_WM_STATE":
		if !slices.Contains(e.Atoms, "_NET_WM_STATE_FULLSCREEN") {
			return
		}
		cl, ok := c.ws.Client(e.Window)
		if !ok {
			return
		}
		on := cl.Fullscreen
		switch e.Data[0] {
		case stateRemove:
			on = false
		case stateAdd:
			on = true
		case stateToggle:
			on = !on
		}
		if err := c.SetFullscreen(e.Window, on); err != nil {
			c.logger.Debug("fullscreen request failed", "window", e.Window, "error", err)
		}

	case "_NET_ACTIVE_WINDOW":
		if err := c.ws.FocusClient(e.Window); err != nil {
			c.logger.Debug("activate request failed", "window", e.Window, "error", err)
		}

	case "_NET_CURRENT_DESKTOP":
		if err := c.ws.FocusWorkspace(int(e.Data[0])); err != nil {
			c.logger.Debug("desktop switch failed", "desktop", e.Data[0], "error", err)
		}

	case "_NET_WM_DESKTOP":
		if err := c.ws.MoveClientToWorkspace(e.Window, int(e.Data[0])); err != nil {
			c.logger.Debug("desktop move failed", "window", e.Window, "desktop", e.Data[0], "error", err)
		}

	default:
		c.logger.Debug("ignoring client message", "type", e.Type, "window", e.Window)
	}
}

func (c *Controller) onScreenChange() {
	displays, err := c.conn.Screens()
	if !c.check("query screens", err) {
		return
	}
	if err := c.ws.Reconfigure(displayRects(displays)); err != nil {
		c.logger.Warn("screen reconfiguration ignored", "error", err)
		return
	}
	c.reserved = displayInsets(displays)
	if len(displays) > len(c.cfg.Workspaces) {
		c.logger.Warn("more screens than workspaces, surplus screens are not managed",
			"screens", len(displays),
			"workspaces", len(c.cfg.Workspaces))
	}
	c.frames = nil
	c.logger.Info("screens reconfigured", "screens", len(c.ws.Screens()))
}

// SetFullscreen changes the fullscreen state of a client and tells the
// client about it.
func (c *Controller) SetFullscreen(id platform.WindowID, on bool) error {
	if err := c.ws.SetFullscreen(id, on); err != nil {
		return err
	}
	c.check("fullscreen state", c.conn.SetFullscreen(id, on))
	return nil
}
