package wm

import (
	"fmt"
	"sort"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/windowset"
)

// MouseEventKind tells a MouseAction which stage of a drag it sees.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseMotion
	MouseRelease
)

// MouseEvent is one step of a pointer drag. Window is the window the drag
// started on; coordinates are relative to the root window.
type MouseEvent struct {
	Kind         MouseEventKind
	Window       platform.WindowID
	Chord        keys.MouseChord
	RootX, RootY int
}

// MouseAction handles the press, every motion and the release of a bound
// pointer chord.
type MouseAction func(c *Controller, ev MouseEvent) error

// MouseBindings maps pointer chords to actions.
type MouseBindings struct {
	actions map[keys.MouseChord]MouseAction
	names   map[keys.MouseChord]string
}

// NewMouseBindings returns an empty pointer binding table.
func NewMouseBindings() *MouseBindings {
	return &MouseBindings{
		actions: make(map[keys.MouseChord]MouseAction),
		names:   make(map[keys.MouseChord]string),
	}
}

// Bind registers an action for a chord, replacing any earlier one.
func (m *MouseBindings) Bind(chord keys.MouseChord, name string, action MouseAction) {
	chord = chord.Normalize()
	m.actions[chord] = action
	m.names[chord] = name
}

// Lookup returns the action bound to chord.
func (m *MouseBindings) Lookup(chord keys.MouseChord) (MouseAction, bool) {
	a, ok := m.actions[chord.Normalize()]
	return a, ok
}

// Name returns the action name of a binding.
func (m *MouseBindings) Name(chord keys.MouseChord) string {
	return m.names[chord.Normalize()]
}

// Chords returns every bound chord in a stable order.
func (m *MouseBindings) Chords() []keys.MouseChord {
	out := make([]keys.MouseChord, 0, len(m.actions))
	for c := range m.actions {
		out = append(out, c)
	}
	keys.SortMouse(out)
	return out
}

// Len returns the number of bindings.
func (m *MouseBindings) Len() int { return len(m.actions) }

// drag is the pointer binding that owns the current button grab.
type drag struct {
	chord  keys.MouseChord
	window platform.WindowID
	action MouseAction
}

func (c *Controller) onButtonPress(e platform.ButtonPress) {
	action, ok := c.mouse.Lookup(e.Chord)
	if !ok {
		c.logger.Debug("unbound pointer chord", "chord", e.Chord.String())
		return
	}
	c.drag = &drag{chord: e.Chord, window: e.Window, action: action}
	c.runDrag(MousePress, e.RootX, e.RootY)
}

func (c *Controller) onPointerMotion(e platform.PointerMotion) {
	if c.drag != nil {
		c.runDrag(MouseMotion, e.RootX, e.RootY)
	}
}

func (c *Controller) onButtonRelease(e platform.ButtonRelease) {
	if c.drag != nil {
		c.runDrag(MouseRelease, e.RootX, e.RootY)
		c.drag = nil
	}
}

func (c *Controller) runDrag(kind MouseEventKind, x, y int) {
	d := c.drag
	err := d.action(c, MouseEvent{Kind: kind, Window: d.window, Chord: d.chord, RootX: x, RootY: y})
	if err != nil {
		c.logger.Warn("pointer binding failed",
			"chord", d.chord.String(),
			"action", c.mouse.Name(d.chord),
			"error", err)
		c.drag = nil
	}
}

// MoveFloating drags the window under the pointer, floating it first when
// it was tiled.
func MoveFloating() MouseAction {
	return dragFloating(func(r platform.Rect, dx, dy int) platform.Rect {
		r.X += dx
		r.Y += dy
		return r
	})
}

// ResizeFloating drags the bottom right corner of the window under the
// pointer, floating it first when it was tiled.
func ResizeFloating() MouseAction {
	return dragFloating(func(r platform.Rect, dx, dy int) platform.Rect {
		r.Width = max(1, r.Width+dx)
		r.Height = max(1, r.Height+dy)
		return r
	})
}

func dragFloating(apply func(r platform.Rect, dx, dy int) platform.Rect) MouseAction {
	var (
		target         platform.WindowID
		start          platform.Rect
		startX, startY int
	)
	return func(c *Controller, ev MouseEvent) error {
		if ev.Kind == MousePress {
			target = 0
			cl, ok := c.ws.Client(ev.Window)
			if !ok || cl.Fullscreen {
				// Root window, docks and fullscreen clients are not dragged.
				return nil
			}
			if err := c.ws.FocusClient(cl.ID); err != nil {
				return err
			}
			if err := c.float(cl); err != nil {
				return err
			}
			cl, _ = c.ws.Client(cl.ID)
			target, start, startX, startY = cl.ID, cl.Geometry, ev.RootX, ev.RootY
			return nil
		}

		if target == 0 {
			return nil
		}
		cl, ok := c.ws.Client(target)
		if !ok {
			target = 0
			return nil
		}
		r := apply(start, ev.RootX-startX, ev.RootY-startY)
		if ev.Kind == MouseRelease {
			target = 0
		}
		return c.ws.SetGeometry(cl.ID, r, cl.BorderWidth)
	}
}

// float makes a tiled client floating at the geometry it is shown with.
func (c *Controller) float(cl windowset.Client) error {
	if cl.Floating {
		return nil
	}
	r, border := c.shownGeometry(cl)
	if err := c.ws.SetGeometry(cl.ID, r, border); err != nil {
		return err
	}
	return c.ws.SetFloating(cl.ID, true)
}

// shownGeometry is where a client currently is on screen: its tiled
// placement, or the position a floating window of its size would get.
func (c *Controller) shownGeometry(cl windowset.Client) (platform.Rect, int) {
	if p, ok := c.placed[cl.ID]; ok {
		return p.Rect, p.Border
	}
	if i, ok := c.ws.ScreenOf(cl.Workspace); ok && cl.Geometry.Empty() {
		region := c.layoutRegion(i, c.ws.Screens()[i].Rect)
		p := floatPlacement(cl, region, c.cfg.BorderWidth)
		return p.Rect, p.Border
	}
	return cl.Geometry, cl.BorderWidth
}

var mouseActions = map[string]func() MouseAction{
	"move-floating":   MoveFloating,
	"resize-floating": ResizeFloating,
}

// ParseMouseAction resolves a pointer action name.
func ParseMouseAction(name string) (MouseAction, error) {
	if mk, ok := mouseActions[name]; ok {
		return mk(), nil
	}
	return nil, fmt.Errorf("unknown pointer action: %q", name)
}

// MouseActionNames lists the pointer actions.
func MouseActionNames() []string {
	names := make([]string, 0, len(mouseActions))
	for name := range mouseActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
