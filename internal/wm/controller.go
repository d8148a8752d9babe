// Package wm runs the window manager event loop.
//
// A Controller owns the WindowSet and the display connection. It reads one
// event at a time, applies the matching model transition, and then brings
// the display in line with the model: windows that became hidden are
// unmapped first, screens whose inputs changed are laid out again, new
// windows are mapped and focus and borders follow the focused client.
package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/stackwm/internal/layout"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/windowset"
)

// FloatingPredicate decides whether a newly mapped window starts floating.
type FloatingPredicate func(info platform.WindowInfo) bool

// Bar is a strip of each screen reserved for an external status bar.
type Bar struct {
	Show   bool
	Top    bool
	Height int
}

// Config holds the settings of a Controller.
type Config struct {
	Logger *slog.Logger

	Workspaces []string
	Layouts    *layout.Cycle

	BorderWidth     int
	Gap             int
	FocusedBorder   uint32
	UnfocusedBorder uint32
	Bar             Bar

	FocusFollowsPointer bool
	IsFloating          FloatingPredicate
	// Terminal is the command run by the spawn-terminal action.
	Terminal string
	// MouseBindings are the pointer chords grabbed on the root window.
	MouseBindings *MouseBindings
}

// Controller is the event loop and the only writer of its WindowSet.
type Controller struct {
	conn   platform.Conn
	cfg    Config
	logger *slog.Logger
	ws     *windowset.WindowSet
	keys   *KeyBindings
	mouse  *MouseBindings
	hooks  *Hooks

	running bool
	cleaned bool
	drag    *drag
	// lost is set once a request fails because the connection is gone.
	lost error

	// display state as last pushed to the connection
	frames  []screenFrame
	plans   []screenPlan
	mapped  map[platform.WindowID]bool
	placed  map[platform.WindowID]layout.Placement
	focused platform.WindowID
	desktop platform.DesktopState

	// reserved holds the strut insets of each screen, docks the mapped
	// dock windows whose struts they came from.
	reserved []platform.Insets
	docks    map[platform.WindowID]bool
}

// New builds a controller for conn. The screens reported by conn at this
// point become the initial screens of the model.
func New(conn platform.Conn, cfg Config, keys *KeyBindings, hooks *Hooks) (*Controller, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Layouts == nil {
		return nil, errors.New("no layouts configured")
	}
	if cfg.IsFloating == nil {
		cfg.IsFloating = DefaultFloating(nil)
	}
	if keys == nil {
		keys = NewKeyBindings()
	}
	if hooks == nil {
		hooks = &Hooks{}
	}
	mouse := cfg.MouseBindings
	if mouse == nil {
		mouse = NewMouseBindings()
	}

	displays, err := conn.Screens()
	if err != nil {
		return nil, fmt.Errorf("query screens: %w", err)
	}

	cycle := cfg.Layouts.Clone()
	cycle.SetSpacing(cfg.Gap, cfg.BorderWidth)
	ws, err := windowset.New(cfg.Workspaces, displayRects(displays), cycle)
	if err != nil {
		return nil, err
	}
	if len(displays) > len(cfg.Workspaces) {
		cfg.Logger.Warn("more screens than workspaces, surplus screens are not managed",
			"screens", len(displays),
			"workspaces", len(cfg.Workspaces))
	}

	return &Controller{
		conn:   conn,
		cfg:    cfg,
		logger: cfg.Logger,
		ws:     ws,
		keys:   keys,
		mouse:  mouse,
		hooks:  hooks,
		mapped:   make(map[platform.WindowID]bool),
		placed:   make(map[platform.WindowID]layout.Placement),
		reserved: displayInsets(displays),
		docks:    make(map[platform.WindowID]bool),
	}, nil
}

// WindowSet returns the model. Callers running on the loop (hooks, actions)
// may mutate it; the display is synchronised after the current event.
func (c *Controller) WindowSet() *windowset.WindowSet { return c.ws }

// Logger returns the controller's logger.
func (c *Controller) Logger() *slog.Logger { return c.logger }

// KeyBindings returns the active binding table.
func (c *Controller) KeyBindings() *KeyBindings { return c.keys }

// Config returns the controller settings.
func (c *Controller) Config() Config { return c.cfg }

// Stop makes Run return after the current event.
func (c *Controller) Stop() { c.running = false }

// Run starts the controller and processes events until Stop is called, a
// Shutdown event arrives, ctx is cancelled or the connection is lost.
// NextEvent blocks, so cancelling ctx only takes effect once the next event
// arrives; callers post a Shutdown event to wake the loop.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.hooks.runStartup(c); err != nil {
		c.cleanup()
		return err
	}

	c.check("grab keys", c.conn.GrabKeys(c.keys.Chords()))
	c.check("grab buttons", c.conn.GrabButtons(c.mouse.Chords()))
	c.adopt()
	c.refresh()

	c.running = c.lost == nil
	c.logger.Info("window manager started",
		"screens", len(c.ws.Screens()),
		"workspaces", len(c.cfg.Workspaces),
		"bindings", c.keys.Len(),
		"pointer_bindings", c.mouse.Len())

	for c.running {
		if ctx.Err() != nil {
			break
		}
		ev, err := c.conn.NextEvent()
		if err != nil {
			if platform.IsConnectionLost(err) {
				c.lost = err
				break
			}
			c.logger.Error("failed to read event", "error", err)
			continue
		}
		c.Handle(ev)
	}

	c.cleanup()
	if c.lost != nil {
		c.logger.Error("display connection lost", "error", c.lost)
		return c.lost
	}
	c.logger.Info("window manager stopped")
	return nil
}

// Handle processes a single event: before hooks, the transition, after
// hooks, then display synchronisation.
func (c *Controller) Handle(ev platform.Event) {
	c.runEventHooks("before", c.hooks.before, ev)
	c.dispatch(ev)
	c.runEventHooks("after", c.hooks.after, ev)
	if c.lost != nil {
		c.running = false
		return
	}
	c.refresh()
	if c.lost != nil {
		c.running = false
	}
}

// check logs a failed connection request. A lost connection stops the loop.
// Reports whether the request succeeded.
func (c *Controller) check(op string, err error) bool {
	if err == nil {
		return true
	}
	if platform.IsConnectionLost(err) {
		if c.lost == nil {
			c.lost = err
		}
		c.running = false
		return false
	}
	c.logger.Warn("display request failed", "op", op, "error", err)
	return false
}

// cleanup gives every managed window back to the display, releases the key
// grabs and restores root state. It runs at most once.
func (c *Controller) cleanup() {
	if c.cleaned {
		return
	}
	c.cleaned = true

	for _, cl := range c.ws.AllClients() {
		if err := c.conn.Map(cl.ID); err != nil {
			c.logger.Debug("cleanup: map failed", "window", cl.ID, "error", err)
		}
	}
	if err := c.conn.UngrabKeys(); err != nil {
		c.logger.Debug("cleanup: ungrab keys failed", "error", err)
	}
	if err := c.conn.UngrabButtons(); err != nil {
		c.logger.Debug("cleanup: ungrab buttons failed", "error", err)
	}
	if err := c.conn.Restore(); err != nil {
		c.logger.Debug("cleanup: restore failed", "error", err)
	}
}

// adopt manages windows that were already mapped when the controller
// started.
func (c *Controller) adopt() {
	ids, err := c.conn.ExistingWindows()
	if !c.check("list windows", err) {
		return
	}
	for _, id := range ids {
		if c.manage(id) {
			c.mapped[id] = true
		}
	}
	if len(ids) > 0 {
		c.logger.Info("adopted existing windows", "count", c.ws.ClientCount())
	}
}

// Reload applies new appearance settings and key bindings. Workspaces are
// fixed for the session and are not touched.
func (c *Controller) Reload(cfg Config, keys *KeyBindings) {
	c.cfg.BorderWidth = cfg.BorderWidth
	c.cfg.Gap = cfg.Gap
	c.cfg.FocusedBorder = cfg.FocusedBorder
	c.cfg.UnfocusedBorder = cfg.UnfocusedBorder
	c.cfg.Bar = cfg.Bar
	c.cfg.FocusFollowsPointer = cfg.FocusFollowsPointer
	c.cfg.Terminal = cfg.Terminal
	if cfg.IsFloating != nil {
		c.cfg.IsFloating = cfg.IsFloating
	}
	c.ws.SetSpacing(cfg.Gap, cfg.BorderWidth)

	if keys != nil {
		c.check("ungrab keys", c.conn.UngrabKeys())
		c.keys = keys
		c.check("grab keys", c.conn.GrabKeys(c.keys.Chords()))
	}
	if cfg.MouseBindings != nil {
		c.drag = nil
		c.mouse = cfg.MouseBindings
		c.cfg.MouseBindings = cfg.MouseBindings
		c.check("grab buttons", c.conn.GrabButtons(c.mouse.Chords()))
	}

	for _, cl := range c.ws.AllClients() {
		c.check("border color", c.conn.SetBorderColor(cl.ID, c.borderColor(cl.ID)))
	}
	c.frames = nil
	c.logger.Info("configuration reloaded", "bindings", c.keys.Len())
}

func (c *Controller) borderColor(id platform.WindowID) uint32 {
	if focused, ok := c.ws.FocusedClient(); ok && focused.ID == id {
		return c.cfg.FocusedBorder
	}
	return c.cfg.UnfocusedBorder
}

func displayInsets(displays []platform.Display) []platform.Insets {
	out := make([]platform.Insets, 0, len(displays))
	for _, d := range displays {
		out = append(out, d.Reserved)
	}
	return out
}

func displayRects(displays []platform.Display) []platform.Rect {
	out := make([]platform.Rect, 0, len(displays))
	for _, d := range displays {
		out = append(out, d.Bounds)
	}
	return out
}

// DefaultFloating returns the classification used when none is configured:
// transient windows, dialog-like window types and the given WM_CLASS names
// float, everything else is tiled.
func DefaultFloating(classes []string) FloatingPredicate {
	floatingTypes := []string{
		"_NET_WM_WINDOW_TYPE_DIALOG",
		"_NET_WM_WINDOW_TYPE_SPLASH",
		"_NET_WM_WINDOW_TYPE_UTILITY",
		"_NET_WM_WINDOW_TYPE_TOOLBAR",
		"_NET_WM_WINDOW_TYPE_MENU",
		"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU",
		"_NET_WM_WINDOW_TYPE_POPUP_MENU",
		"_NET_WM_WINDOW_TYPE_NOTIFICATION",
	}
	return func(info platform.WindowInfo) bool {
		if info.Transient {
			return true
		}
		for _, t := range info.Types {
			if slices.Contains(floatingTypes, t) {
				return true
			}
		}
		return slices.Contains(classes, info.Class) || slices.Contains(classes, info.Instance)
	}
}
