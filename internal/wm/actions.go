package wm

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/stackwm/internal/layout"
	"github.com/1broseidon/stackwm/internal/stack"
)

// ErrNoFocusedClient is returned by actions that need a focused client.
var ErrNoFocusedClient = errors.New("no focused client")

// Built-in actions. Each returns an Action so they can be bound directly.

func FocusNext() Action {
	return func(c *Controller) error { c.ws.FocusNext(); return nil }
}

func FocusPrevious() Action {
	return func(c *Controller) error { c.ws.FocusPrevious(); return nil }
}

func SwapNext() Action {
	return func(c *Controller) error { c.ws.SwapFocused(stack.Forward); return nil }
}

func SwapPrevious() Action {
	return func(c *Controller) error { c.ws.SwapFocused(stack.Backward); return nil }
}

func SwapMaster() Action {
	return func(c *Controller) error { c.ws.SwapHead(); return nil }
}

func Rotate(dir stack.Direction) Action {
	return func(c *Controller) error { c.ws.Rotate(dir); return nil }
}

// FocusWorkspace shows workspace i (zero based) on the focused screen.
func FocusWorkspace(i int) Action {
	return func(c *Controller) error { return c.ws.FocusWorkspace(i) }
}

// MoveToWorkspace sends the focused client to workspace i (zero based).
func MoveToWorkspace(i int) Action {
	return func(c *Controller) error {
		cl, ok := c.ws.FocusedClient()
		if !ok {
			return ErrNoFocusedClient
		}
		return c.ws.MoveClientToWorkspace(cl.ID, i)
	}
}

// CycleScreen moves focus to the next or previous screen, wrapping.
func CycleScreen(dir stack.Direction) Action {
	return func(c *Controller) error {
		n := len(c.ws.Screens())
		step := 1
		if dir == stack.Backward {
			step = -1
		}
		return c.ws.FocusScreen((c.ws.FocusedScreenIndex() + step + n) % n)
	}
}

// DragToScreen moves the focused client to the workspace shown on the next
// or previous screen.
func DragToScreen(dir stack.Direction) Action {
	return func(c *Controller) error {
		cl, ok := c.ws.FocusedClient()
		if !ok {
			return ErrNoFocusedClient
		}
		screens := c.ws.Screens()
		step := 1
		if dir == stack.Backward {
			step = -1
		}
		target := screens[(c.ws.FocusedScreenIndex()+step+len(screens))%len(screens)]
		return c.ws.MoveClientToWorkspace(cl.ID, target.Workspace)
	}
}

// SendLayout applies a layout message to the focused workspace.
func SendLayout(msg layout.Message) Action {
	return func(c *Controller) error { c.ws.SendLayoutMessage(msg); return nil }
}

// SelectLayout activates a named layout on the focused workspace.
func SelectLayout(name string) Action {
	return func(c *Controller) error { return c.ws.SelectLayout(name) }
}

// KillFocused asks the focused client to close.
func KillFocused() Action {
	return func(c *Controller) error {
		cl, ok := c.ws.FocusedClient()
		if !ok {
			return ErrNoFocusedClient
		}
		return c.conn.Close(cl.ID)
	}
}

// ToggleFloating flips the focused client between floating and tiled.
func ToggleFloating() Action {
	return func(c *Controller) error {
		cl, ok := c.ws.FocusedClient()
		if !ok {
			return ErrNoFocusedClient
		}
		if !cl.Floating {
			// Float where the window is shown now.
			return c.float(cl)
		}
		return c.ws.SetFloating(cl.ID, false)
	}
}

// ToggleFullscreen flips the fullscreen state of the focused client.
func ToggleFullscreen() Action {
	return func(c *Controller) error {
		cl, ok := c.ws.FocusedClient()
		if !ok {
			return ErrNoFocusedClient
		}
		return c.SetFullscreen(cl.ID, !cl.Fullscreen)
	}
}

// Spawn starts command through the shell.
func Spawn(command string) Action {
	return func(c *Controller) error { return c.Spawn(command) }
}

// SpawnTerminal starts the configured terminal.
func SpawnTerminal() Action {
	return func(c *Controller) error {
		if c.cfg.Terminal == "" {
			return errors.New("no terminal configured")
		}
		return c.Spawn(c.cfg.Terminal)
	}
}

// Quit stops the event loop.
func Quit() Action {
	return func(c *Controller) error { c.Stop(); return nil }
}

var fixedActions = map[string]func() Action{
	"focus-next":        FocusNext,
	"focus-previous":    FocusPrevious,
	"swap-next":         SwapNext,
	"swap-previous":     SwapPrevious,
	"swap-master":       SwapMaster,
	"rotate-down":       func() Action { return Rotate(stack.Forward) },
	"rotate-up":         func() Action { return Rotate(stack.Backward) },
	"screen-next":       func() Action { return CycleScreen(stack.Forward) },
	"screen-previous":   func() Action { return CycleScreen(stack.Backward) },
	"drag-screen-next":  func() Action { return DragToScreen(stack.Forward) },
	"drag-screen-prev":  func() Action { return DragToScreen(stack.Backward) },
	"kill":              KillFocused,
	"toggle-float":      ToggleFloating,
	"toggle-fullscreen": ToggleFullscreen,
	"spawn-terminal":    SpawnTerminal,
	"quit":              Quit,
}

func init() {
	for _, msg := range []layout.Message{
		layout.IncreaseMaster, layout.DecreaseMaster,
		layout.ExpandMain, layout.ShrinkMain,
		layout.NextVariant, layout.PreviousVariant,
		layout.Reset,
	} {
		fixedActions[msg.String()] = func() Action { return SendLayout(msg) }
	}
}

const (
	workspacePrefix = "workspace-"
	movePrefix      = "move-to-workspace-"
	spawnPrefix     = "spawn "
	layoutPrefix    = "layout "
)

// ParseAction resolves an action name as used in configuration and on the
// control socket. Workspace numbers are one based.
//
//	focus-next, kill, next-layout, ...   fixed actions
//	workspace-3, move-to-workspace-3     workspace actions
//	spawn firefox --private-window       shell command
//	layout [mono]                        select a layout by name
func ParseAction(name string) (Action, error) {
	name = strings.TrimSpace(name)
	if mk, ok := fixedActions[name]; ok {
		return mk(), nil
	}

	switch {
	case strings.HasPrefix(name, spawnPrefix):
		cmd := strings.TrimSpace(strings.TrimPrefix(name, spawnPrefix))
		if cmd == "" {
			return nil, fmt.Errorf("spawn needs a command")
		}
		return Spawn(cmd), nil
	case strings.HasPrefix(name, layoutPrefix):
		return SelectLayout(strings.TrimSpace(strings.TrimPrefix(name, layoutPrefix))), nil
	case strings.HasPrefix(name, movePrefix):
		n, err := workspaceNumber(strings.TrimPrefix(name, movePrefix))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return MoveToWorkspace(n), nil
	case strings.HasPrefix(name, workspacePrefix):
		n, err := workspaceNumber(strings.TrimPrefix(name, workspacePrefix))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return FocusWorkspace(n), nil
	}
	return nil, fmt.Errorf("unknown action: %q", name)
}

func workspaceNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid workspace number %q", s)
	}
	return n - 1, nil
}

// ActionNames lists the addressable actions for a session with the given
// number of workspaces.
func ActionNames(workspaces int) []string {
	names := make([]string, 0, len(fixedActions)+2*workspaces)
	for name := range fixedActions {
		names = append(names, name)
	}
	sort.Strings(names)
	for i := 1; i <= workspaces; i++ {
		names = append(names, workspacePrefix+strconv.Itoa(i))
	}
	for i := 1; i <= workspaces; i++ {
		names = append(names, movePrefix+strconv.Itoa(i))
	}
	return names
}

// RunAction resolves and runs a named action on the loop.
func (c *Controller) RunAction(name string) error {
	action, err := ParseAction(name)
	if err != nil {
		return err
	}
	return action(c)
}

// ActionNames lists the actions addressable in this session.
func (c *Controller) ActionNames() []string {
	return ActionNames(len(c.ws.Workspaces()))
}
