package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/stackwm/internal/platform"
)

// Screens reports the active outputs, ordered left to right then top to
// bottom, with space reserved by dock struts removed. RandR is preferred,
// then Xinerama, then the root window geometry.
func (c *Connection) Screens() ([]platform.Display, error) {
	rootGeom, err := xproto.GetGeometry(c.conn, xproto.Drawable(c.root)).Reply()
	if err != nil {
		return nil, c.wrap("get root geometry", err)
	}
	root := platform.Rect{Width: int(rootGeom.Width), Height: int(rootGeom.Height)}

	var displays []platform.Display
	if c.hasRandr {
		if displays, err = c.randrDisplays(); err != nil {
			c.logger.Debug("randr query failed", "error", err)
		}
	}
	if len(displays) == 0 && c.hasXinerama {
		if displays, err = c.xineramaDisplays(); err != nil {
			c.logger.Debug("xinerama query failed", "error", err)
		}
	}
	if len(displays) == 0 {
		displays = []platform.Display{{Name: "root", Bounds: root}}
	}

	displays = dedupeDisplays(displays)
	struts := c.dockStruts(root)
	for i := range displays {
		displays[i].ID = i
		displays[i].Reserved = strutInsets(displays[i].Bounds, root, struts)
		displays[i].Bounds = applyStruts(displays[i].Bounds, root, struts)
	}
	return displays, nil
}

func (c *Connection) randrDisplays() ([]platform.Display, error) {
	resources, err := randr.GetScreenResources(c.conn, c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var displays []platform.Display
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.conn, crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			name = string(outputInfo.Name)
		}

		displays = append(displays, platform.Display{
			Name: name,
			Bounds: platform.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		})
	}
	return displays, nil
}

func (c *Connection) xineramaDisplays() ([]platform.Display, error) {
	reply, err := xinerama.QueryScreens(c.conn).Reply()
	if err != nil {
		return nil, err
	}
	displays := make([]platform.Display, 0, len(reply.ScreenInfo))
	for i, s := range reply.ScreenInfo {
		displays = append(displays, platform.Display{
			Name: fmt.Sprintf("xinerama-%d", i),
			Bounds: platform.Rect{
				X:      int(s.XOrg),
				Y:      int(s.YOrg),
				Width:  int(s.Width),
				Height: int(s.Height),
			},
		})
	}
	return displays, nil
}

// dedupeDisplays drops cloned outputs and sorts by position.
func dedupeDisplays(displays []platform.Display) []platform.Display {
	slices.SortStableFunc(displays, func(a, b platform.Display) int {
		if a.Bounds.X != b.Bounds.X {
			return a.Bounds.X - b.Bounds.X
		}
		return a.Bounds.Y - b.Bounds.Y
	})
	return slices.CompactFunc(displays, func(a, b platform.Display) bool {
		return a.Bounds == b.Bounds
	})
}

// dockStruts collects the struts of every mapped dock window. Docks are
// never managed, so they are found through the window tree rather than the
// client list.
func (c *Connection) dockStruts(root platform.Rect) []ewmh.WmStrutPartial {
	tree, err := xproto.QueryTree(c.conn, c.root).Reply()
	if err != nil {
		return nil
	}

	var struts []ewmh.WmStrutPartial
	for _, win := range tree.Children {
		types, err := ewmh.WmWindowTypeGet(c.xu, win)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.conn, win).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.xu, win); err == nil {
			struts = append(struts, *sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.xu, win); err == nil {
			struts = append(struts, ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(root.Height - 1),
				RightEndY:  uint(root.Height - 1),
				TopEndX:    uint(root.Width - 1),
				BottomEndX: uint(root.Width - 1),
			})
		}
	}
	return struts
}

// applyStruts shrinks a monitor by the largest strut overlapping each of its
// edges.
func applyStruts(mon, root platform.Rect, struts []ewmh.WmStrutPartial) platform.Rect {
	in := strutInsets(mon, root, struts)
	mon.X += in.Left
	mon.Y += in.Top
	mon.Width = max(1, mon.Width-in.Left-in.Right)
	mon.Height = max(1, mon.Height-in.Top-in.Bottom)
	return mon
}

// strutInsets measures how far struts reach into each edge of a monitor.
// Struts are measured from the edges of the root window.
func strutInsets(mon, root platform.Rect, struts []ewmh.WmStrutPartial) platform.Insets {
	var in platform.Insets
	for _, sp := range struts {
		if sp.Top > 0 {
			r := platform.Rect{
				X: int(sp.TopStartX), Width: int(sp.TopEndX) - int(sp.TopStartX) + 1,
				Y: 0, Height: int(sp.Top),
			}
			in.Top = max(in.Top, mon.Intersect(r).Height)
		}
		if sp.Bottom > 0 {
			r := platform.Rect{
				X: int(sp.BottomStartX), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1,
				Y: root.Height - int(sp.Bottom), Height: int(sp.Bottom),
			}
			in.Bottom = max(in.Bottom, mon.Intersect(r).Height)
		}
		if sp.Left > 0 {
			r := platform.Rect{
				X: 0, Width: int(sp.Left),
				Y: int(sp.LeftStartY), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1,
			}
			in.Left = max(in.Left, mon.Intersect(r).Width)
		}
		if sp.Right > 0 {
			r := platform.Rect{
				X: root.Width - int(sp.Right), Width: int(sp.Right),
				Y: int(sp.RightStartY), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1,
			}
			in.Right = max(in.Right, mon.Intersect(r).Width)
		}
	}
	return in
}
