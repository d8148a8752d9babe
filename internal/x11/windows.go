package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/stackwm/internal/platform"
)

const fullscreenState = "_NET_WM_STATE_FULLSCREEN"

// clientEventMask is selected on every managed window.
const clientEventMask = xproto.EventMaskEnterWindow |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskFocusChange

// ExistingWindows lists top-level windows that were mapped before we took
// over, skipping override-redirect windows.
func (c *Connection) ExistingWindows() ([]platform.WindowID, error) {
	tree, err := xproto.QueryTree(c.conn, c.root).Reply()
	if err != nil {
		return nil, c.wrap("query tree", err)
	}

	var out []platform.WindowID
	for _, win := range tree.Children {
		if c.check != nil && win == c.check.Id {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.conn, win).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState == xproto.MapStateUnmapped {
			continue
		}
		out = append(out, platform.WindowID(win))
	}
	return out, nil
}

// WindowInfo gathers the properties used to classify a window.
func (c *Connection) WindowInfo(id platform.WindowID) (platform.WindowInfo, error) {
	win := xproto.Window(id)
	info := platform.WindowInfo{ID: id}

	attrs, err := xproto.GetWindowAttributes(c.conn, win).Reply()
	if err != nil {
		return info, c.wrap("get window attributes", err)
	}
	geom, err := xproto.GetGeometry(c.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return info, c.wrap("get geometry", err)
	}
	info.Geometry = platform.Rect{
		X:      int(geom.X),
		Y:      int(geom.Y),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}

	if class, err := icccm.WmClassGet(c.xu, win); err == nil {
		info.Class = class.Class
		info.Instance = class.Instance
	}
	if name, err := ewmh.WmNameGet(c.xu, win); err == nil && name != "" {
		info.Title = name
	} else if name, err := icccm.WmNameGet(c.xu, win); err == nil {
		info.Title = name
	}
	if types, err := ewmh.WmWindowTypeGet(c.xu, win); err == nil {
		info.Types = types
	}
	if parent, err := icccm.WmTransientForGet(c.xu, win); err == nil && parent != 0 {
		info.Transient = true
	}

	info.Dock = slices.Contains(info.Types, "_NET_WM_WINDOW_TYPE_DOCK")
	info.Unmanaged = attrs.OverrideRedirect || !isManageable(info.Types)
	return info, nil
}

// isManageable rejects desktop and dock windows. They are shown but never
// tiled or focused.
func isManageable(types []string) bool {
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" || t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return false
		}
	}
	return true
}

// Manage selects client events on the window and marks it as normal.
func (c *Connection) Manage(id platform.WindowID) error {
	win := xproto.Window(id)
	err := xproto.ChangeWindowAttributesChecked(c.conn, win, xproto.CwEventMask,
		[]uint32{clientEventMask}).Check()
	if err != nil {
		return c.wrap("manage", err)
	}
	return c.wrap("set WM_STATE", icccm.WmStateSet(c.xu, win, &icccm.WmState{State: icccm.StateNormal}))
}

func (c *Connection) Map(id platform.WindowID) error {
	return c.wrap("map window", xproto.MapWindowChecked(c.conn, xproto.Window(id)).Check())
}

// Unmap hides a window. The UnmapNotify it produces is swallowed so the
// controller does not mistake it for the client withdrawing.
func (c *Connection) Unmap(id platform.WindowID) error {
	win := xproto.Window(id)
	if err := xproto.UnmapWindowChecked(c.conn, win).Check(); err != nil {
		return c.wrap("unmap window", err)
	}
	c.ignoreUnmap[win]++
	return nil
}

func (c *Connection) Configure(id platform.WindowID, r platform.Rect, border int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth)
	values := []uint32{
		uint32(int32(r.X)),
		uint32(int32(r.Y)),
		uint32(max(1, r.Width)),
		uint32(max(1, r.Height)),
		uint32(max(0, border)),
	}
	return c.wrap("configure window", xproto.ConfigureWindowChecked(c.conn, xproto.Window(id), mask, values).Check())
}

// ConfigurePassThrough applies a client's own configure request unchanged.
func (c *Connection) ConfigurePassThrough(req platform.ConfigureRequest) error {
	mask, values := configureValues(req)
	if mask == 0 {
		return nil
	}
	return c.wrap("configure passthrough", xproto.ConfigureWindowChecked(c.conn, xproto.Window(req.Window), mask, values).Check())
}

// configureValues builds the ConfigureWindow value list in protocol bit
// order for the fields present in req.ValueMask.
func configureValues(req platform.ConfigureRequest) (uint16, []uint32) {
	var mask uint16
	var values []uint32
	if req.ValueMask&platform.ConfigX != 0 {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(int32(req.X)))
	}
	if req.ValueMask&platform.ConfigY != 0 {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(int32(req.Y)))
	}
	if req.ValueMask&platform.ConfigWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(max(1, req.Width)))
	}
	if req.ValueMask&platform.ConfigHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(max(1, req.Height)))
	}
	if req.ValueMask&platform.ConfigBorderWidth != 0 {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(max(0, req.BorderWidth)))
	}
	if req.ValueMask&platform.ConfigSibling != 0 {
		mask |= xproto.ConfigWindowSibling
		values = append(values, uint32(req.Sibling))
	}
	if req.ValueMask&platform.ConfigStackMode != 0 {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, uint32(req.StackMode))
	}
	return mask, values
}

// NotifyGeometry tells a tiled client where it actually is, in place of
// honouring its configure request.
func (c *Connection) NotifyGeometry(id platform.WindowID, r platform.Rect, border int) error {
	win := xproto.Window(id)
	ev := xproto.ConfigureNotifyEvent{
		Event:       win,
		Window:      win,
		X:           int16(r.X),
		Y:           int16(r.Y),
		Width:       uint16(max(1, r.Width)),
		Height:      uint16(max(1, r.Height)),
		BorderWidth: uint16(max(0, border)),
	}
	err := xproto.SendEventChecked(c.conn, false, win, xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
	return c.wrap("send configure notify", err)
}

func (c *Connection) Raise(id platform.WindowID) error {
	err := xproto.ConfigureWindowChecked(c.conn, xproto.Window(id), xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove}).Check()
	return c.wrap("raise window", err)
}

// Focus gives a window input focus. Zero returns focus to the pointer root.
// Clients that take part in WM_TAKE_FOCUS are also sent the message.
func (c *Connection) Focus(id platform.WindowID) error {
	if id == 0 {
		err := xproto.SetInputFocusChecked(c.conn, xproto.InputFocusPointerRoot,
			xproto.InputFocusPointerRoot, xproto.TimeCurrentTime).Check()
		return c.wrap("focus root", err)
	}

	win := xproto.Window(id)
	err := xproto.SetInputFocusChecked(c.conn, xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime).Check()
	if err != nil {
		return c.wrap("set input focus", err)
	}
	if c.supportsProtocol(win, "WM_TAKE_FOCUS") {
		return c.sendProtocol(win, "WM_TAKE_FOCUS")
	}
	return nil
}

func (c *Connection) SetBorderColor(id platform.WindowID, color uint32) error {
	err := xproto.ChangeWindowAttributesChecked(c.conn, xproto.Window(id), xproto.CwBorderPixel,
		[]uint32{color}).Check()
	return c.wrap("set border color", err)
}

// SetFullscreen updates _NET_WM_STATE so the client knows its state.
func (c *Connection) SetFullscreen(id platform.WindowID, on bool) error {
	win := xproto.Window(id)
	states, _ := ewmh.WmStateGet(c.xu, win)
	has := slices.Contains(states, fullscreenState)
	switch {
	case on && !has:
		states = append(states, fullscreenState)
	case !on && has:
		states = slices.DeleteFunc(states, func(s string) bool { return s == fullscreenState })
	default:
		return nil
	}
	return c.wrap("set _NET_WM_STATE", ewmh.WmStateSet(c.xu, win, states))
}

// Close asks the client to close via WM_DELETE_WINDOW, or kills its
// connection when it does not support the protocol.
func (c *Connection) Close(id platform.WindowID) error {
	win := xproto.Window(id)
	if c.supportsProtocol(win, "WM_DELETE_WINDOW") {
		return c.sendProtocol(win, "WM_DELETE_WINDOW")
	}
	return c.wrap("kill client", xproto.KillClientChecked(c.conn, uint32(win)).Check())
}

func (c *Connection) supportsProtocol(win xproto.Window, name string) bool {
	protocols, err := icccm.WmProtocolsGet(c.xu, win)
	if err != nil {
		return false
	}
	return slices.Contains(protocols, name)
}

// sendProtocol delivers a WM_PROTOCOLS client message.
func (c *Connection) sendProtocol(win xproto.Window, name string) error {
	protocols, err := xprop.Atm(c.xu, "WM_PROTOCOLS")
	if err != nil {
		return c.wrap("intern WM_PROTOCOLS", err)
	}
	atom, err := xprop.Atm(c.xu, name)
	if err != nil {
		return c.wrap(fmt.Sprintf("intern %s", name), err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(atom), uint32(xproto.TimeCurrentTime), 0, 0, 0}),
	}
	err = xproto.SendEventChecked(c.conn, false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
	return c.wrap("send "+name, err)
}
