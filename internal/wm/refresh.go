package wm

import (
	"maps"
	"slices"

	"github.com/1broseidon/stackwm/internal/layout"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/windowset"
)

// screenFrame is everything a screen's layout depends on. A screen is laid
// out again only when its frame changes.
type screenFrame struct {
	rect      platform.Rect
	region    platform.Rect
	workspace int
	layout    string
	conf      layout.Conf
	clients   []windowset.Client
	// focus is only recorded for layouts that follow focus.
	focus platform.WindowID
}

func (f screenFrame) equal(o screenFrame) bool {
	return f.rect == o.rect &&
		f.region == o.region &&
		f.workspace == o.workspace &&
		f.layout == o.layout &&
		f.conf == o.conf &&
		f.focus == o.focus &&
		slices.Equal(f.clients, o.clients)
}

// screenPlan is the display state computed for one screen.
type screenPlan struct {
	// placements[:tiled] come from the layout engine.
	tiled      int
	placements []layout.Placement
	visible    []platform.WindowID
	raise      []platform.WindowID
}

func (c *Controller) frame(i int, s windowset.Screen) screenFrame {
	w, _ := c.ws.Workspace(s.Workspace)
	f := screenFrame{
		rect:      s.Rect,
		region:    c.layoutRegion(i, s.Rect),
		workspace: s.Workspace,
		layout:    w.LayoutName(),
		conf:      w.LayoutConf(),
	}
	for _, id := range w.Clients() {
		cl, _ := c.ws.Client(id)
		f.clients = append(f.clients, cl)
	}
	if f.conf.FollowFocus {
		f.focus, _ = w.Focused()
	}
	return f
}

// layoutRegion is the part of screen i available to tiled windows. The bar
// strip is only taken from an edge no dock strut has reserved already.
func (c *Controller) layoutRegion(i int, r platform.Rect) platform.Rect {
	bar := c.cfg.Bar
	if !bar.Show || bar.Height <= 0 || bar.Height >= r.Height {
		return r
	}
	var reserved platform.Insets
	if i < len(c.reserved) {
		reserved = c.reserved[i]
	}
	if (bar.Top && reserved.Top > 0) || (!bar.Top && reserved.Bottom > 0) {
		return r
	}
	r.Height -= bar.Height
	if bar.Top {
		r.Y += bar.Height
	}
	return r
}

func (c *Controller) plan(i int, s windowset.Screen) screenPlan {
	region := c.layoutRegion(i, s.Rect)
	arr, err := c.ws.Arrange(i, region)
	if err != nil {
		c.logger.Warn("layout failed", "screen", i, "error", err)
		return screenPlan{}
	}

	var p screenPlan
	tiled := make(map[platform.WindowID]bool, len(arr.Placements))
	for _, pl := range arr.Placements {
		tiled[pl.ID] = true
		p.placements = append(p.placements, pl)
		p.visible = append(p.visible, pl.ID)
	}
	p.tiled = len(p.placements)

	w, _ := c.ws.Workspace(s.Workspace)
	var fullscreen []platform.WindowID
	for _, id := range w.Clients() {
		if tiled[id] || slices.Contains(arr.Hidden, id) {
			continue
		}
		cl, _ := c.ws.Client(id)
		switch {
		case cl.Fullscreen:
			p.placements = append(p.placements, layout.Placement{ID: id, Rect: s.Rect})
			fullscreen = append(fullscreen, id)
		default:
			// Floating clients, and every client of a passive layout, keep
			// their own geometry pulled inside the screen.
			p.placements = append(p.placements, floatPlacement(cl, region, c.cfg.BorderWidth))
			if cl.Floating {
				p.raise = append(p.raise, id)
			}
		}
		p.visible = append(p.visible, id)
	}
	p.raise = append(p.raise, fullscreen...)
	return p
}

// floatPlacement clamps a free-standing client into region. Clients without
// a known size are centred at half the region size.
func floatPlacement(cl windowset.Client, region platform.Rect, border int) layout.Placement {
	g := cl.Geometry
	if g.Empty() {
		g = platform.Rect{
			X:      region.X + region.Width/4,
			Y:      region.Y + region.Height/4,
			Width:  region.Width / 2,
			Height: region.Height / 2,
		}
	}
	g.Width = max(1, min(g.Width, region.Width-2*border))
	g.Height = max(1, min(g.Height, region.Height-2*border))
	g.X = max(region.X, min(g.X, region.X+region.Width-g.Width-2*border))
	g.Y = max(region.Y, min(g.Y, region.Y+region.Height-g.Height-2*border))
	return layout.Placement{ID: cl.ID, Rect: g, Border: border}
}

// refresh pushes the model to the display. Hidden windows are unmapped
// before anything is resized or mapped.
func (c *Controller) refresh() {
	screens := c.ws.Screens()
	frames := make([]screenFrame, len(screens))
	plans := make([]screenPlan, len(screens))
	var changed []int
	for i, s := range screens {
		frames[i] = c.frame(i, s)
		if i < len(c.frames) && frames[i].equal(c.frames[i]) {
			plans[i] = c.plans[i]
			continue
		}
		plans[i] = c.plan(i, s)
		changed = append(changed, i)
	}

	want := make(map[platform.WindowID]bool)
	var order []platform.WindowID
	for _, p := range plans {
		for _, id := range p.visible {
			want[id] = true
			order = append(order, id)
		}
	}

	hide := slices.Sorted(maps.Keys(c.mapped))
	for _, id := range hide {
		if want[id] {
			continue
		}
		c.check("unmap", c.conn.Unmap(id))
		delete(c.mapped, id)
	}

	for _, i := range changed {
		for _, cl := range frames[i].clients {
			delete(c.placed, cl.ID)
		}
		for j, p := range plans[i].placements {
			c.check("configure", c.conn.Configure(p.ID, p.Rect, p.Border))
			if j < plans[i].tiled {
				c.placed[p.ID] = p
			}
		}
	}

	for _, id := range order {
		if c.mapped[id] {
			continue
		}
		c.check("map", c.conn.Map(id))
		c.mapped[id] = true
	}

	for _, i := range changed {
		for _, id := range plans[i].raise {
			c.check("raise", c.conn.Raise(id))
		}
	}

	c.frames, c.plans = frames, plans
	c.syncFocus()
	c.publish()
}

func (c *Controller) syncFocus() {
	var target platform.WindowID
	if cl, ok := c.ws.FocusedClient(); ok {
		target = cl.ID
	}
	if target == c.focused {
		return
	}
	if c.focused != 0 && c.ws.Managed(c.focused) {
		c.check("border color", c.conn.SetBorderColor(c.focused, c.cfg.UnfocusedBorder))
	}
	if target != 0 {
		c.check("border color", c.conn.SetBorderColor(target, c.cfg.FocusedBorder))
	}
	c.check("focus", c.conn.Focus(target))
	c.focused = target
}

func (c *Controller) publish() {
	state := platform.DesktopState{
		Current:        c.ws.FocusedWorkspace().ID(),
		Active:         c.focused,
		ClientDesktops: make(map[platform.WindowID]int),
	}
	for _, w := range c.ws.Workspaces() {
		state.Names = append(state.Names, w.Name())
	}
	for _, cl := range c.ws.AllClients() {
		state.Clients = append(state.Clients, cl.ID)
		state.ClientDesktops[cl.ID] = cl.Workspace
	}

	if desktopEqual(state, c.desktop) {
		return
	}
	if c.check("publish", c.conn.Publish(state)) {
		c.desktop = state
	}
}

func desktopEqual(a, b platform.DesktopState) bool {
	return a.Current == b.Current &&
		a.Active == b.Active &&
		slices.Equal(a.Names, b.Names) &&
		slices.Equal(a.Clients, b.Clients) &&
		maps.Equal(a.ClientDesktops, b.ClientDesktops)
}
