package wm

import (
	"fmt"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/platform"
)

// Action is the body of a key binding or a named command.
type Action func(c *Controller) error

// KeyBindings maps input chords to actions.
type KeyBindings struct {
	actions map[keys.Chord]Action
	names   map[keys.Chord]string
}

// NewKeyBindings returns an empty binding table.
func NewKeyBindings() *KeyBindings {
	return &KeyBindings{
		actions: make(map[keys.Chord]Action),
		names:   make(map[keys.Chord]string),
	}
}

// Bind registers an action for a chord. Binding a chord twice replaces the
// earlier action.
func (k *KeyBindings) Bind(chord keys.Chord, action Action) {
	k.BindNamed(chord, "", action)
}

// BindNamed is Bind with a descriptive name kept for status output.
func (k *KeyBindings) BindNamed(chord keys.Chord, name string, action Action) {
	chord = chord.Normalize()
	k.actions[chord] = action
	k.names[chord] = name
}

// BindString parses chord and binds it.
func (k *KeyBindings) BindString(chord string, action Action) error {
	parsed, err := keys.Parse(chord)
	if err != nil {
		return fmt.Errorf("bind %q: %w", chord, err)
	}
	k.Bind(parsed, action)
	return nil
}

// Lookup returns the action bound to chord.
func (k *KeyBindings) Lookup(chord keys.Chord) (Action, bool) {
	a, ok := k.actions[chord.Normalize()]
	return a, ok
}

// Name returns the descriptive name of a binding, if any.
func (k *KeyBindings) Name(chord keys.Chord) string {
	return k.names[chord.Normalize()]
}

// Chords returns every bound chord in a stable order.
func (k *KeyBindings) Chords() []keys.Chord {
	out := make([]keys.Chord, 0, len(k.actions))
	for c := range k.actions {
		out = append(out, c)
	}
	keys.Sort(out)
	return out
}

// Len returns the number of bindings.
func (k *KeyBindings) Len() int { return len(k.actions) }

// StartupHook runs once before the event loop starts. An error aborts
// startup.
type StartupHook func(c *Controller) error

// EventHook runs before or after the controller handles an event. An error
// skips the remaining hooks of the same point for that event only.
type EventHook func(c *Controller, ev platform.Event) error

// Hooks holds the ordered extension points of a controller.
type Hooks struct {
	startup []StartupHook
	before  []EventHook
	after   []EventHook
}

// OnStartup appends a startup hook.
func (h *Hooks) OnStartup(fn StartupHook) { h.startup = append(h.startup, fn) }

// BeforeEvent appends a hook run before each event is handled.
func (h *Hooks) BeforeEvent(fn EventHook) { h.before = append(h.before, fn) }

// AfterEvent appends a hook run after each event is handled.
func (h *Hooks) AfterEvent(fn EventHook) { h.after = append(h.after, fn) }

func (h *Hooks) runStartup(c *Controller) error {
	for i, fn := range h.startup {
		if err := fn(c); err != nil {
			return fmt.Errorf("startup hook %d: %w", i, err)
		}
	}
	return nil
}

func (c *Controller) runEventHooks(point string, hooks []EventHook, ev platform.Event) {
	for i, fn := range hooks {
		if err := fn(c, ev); err != nil {
			c.logger.Warn("event hook failed",
				"point", point,
				"hook", i,
				"event", fmt.Sprintf("%T", ev),
				"error", err)
			return
		}
	}
}
