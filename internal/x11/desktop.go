package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/stackwm/internal/platform"
)

// supportedHints is advertised in _NET_SUPPORTED.
var supportedHints = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_WM_DESKTOP",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
}

// setupEWMH creates the supporting check window and advertises the hints we
// understand.
func (c *Connection) setupEWMH() error {
	win, err := xwindow.Generate(c.xu)
	if err != nil {
		return fmt.Errorf("generate check window: %w", err)
	}
	if err := win.CreateChecked(c.root, -1, -1, 1, 1, xproto.CwOverrideRedirect, 1); err != nil {
		return fmt.Errorf("create check window: %w", err)
	}
	c.check = win

	return errors.Join(
		ewmh.SupportingWmCheckSet(c.xu, c.root, win.Id),
		ewmh.SupportingWmCheckSet(c.xu, win.Id, win.Id),
		ewmh.WmNameSet(c.xu, win.Id, c.name),
		ewmh.SupportedSet(c.xu, supportedHints),
	)
}

// Publish writes the desktop state to the root and client properties so
// pagers and bars can follow it.
func (c *Connection) Publish(state platform.DesktopState) error {
	clients := make([]xproto.Window, 0, len(state.Clients))
	for _, id := range state.Clients {
		clients = append(clients, xproto.Window(id))
	}

	errs := []error{
		ewmh.NumberOfDesktopsSet(c.xu, uint(len(state.Names))),
		ewmh.DesktopNamesSet(c.xu, state.Names),
		ewmh.CurrentDesktopSet(c.xu, uint(max(0, state.Current))),
		ewmh.ClientListSet(c.xu, clients),
		ewmh.ActiveWindowSet(c.xu, xproto.Window(state.Active)),
	}
	for id, desktop := range state.ClientDesktops {
		errs = append(errs, ewmh.WmDesktopSet(c.xu, xproto.Window(id), uint(desktop)))
	}
	return c.wrap("publish desktop state", errors.Join(errs...))
}
