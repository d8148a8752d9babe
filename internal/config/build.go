package config

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/layout"
	"github.com/1broseidon/stackwm/internal/wm"
)

// LayoutCycle builds the layout cycle every workspace starts from.
func (c *Config) LayoutCycle() (*layout.Cycle, error) {
	variants := make([]layout.Variant, 0, len(c.Layouts))
	for _, entry := range c.Layouts {
		engine, err := layout.Lookup(layout.Algorithm(entry.Algorithm))
		if err != nil {
			return nil, fmt.Errorf("layout %q: %w", entry.Name, err)
		}
		conf := layout.Conf{
			MasterCount: layout.DefaultMasterCount,
			SplitRatio:  layout.DefaultSplitRatio,
			Gap:         c.GapPx,
			BorderWidth: c.BorderPx,
			Gapless:     entry.Gapless,
			FollowFocus: layout.Algorithm(entry.Algorithm) == layout.AlgorithmMonocle,
		}
		if entry.MasterCount != nil {
			conf.MasterCount = *entry.MasterCount
		}
		if entry.SplitRatio != 0 {
			conf.SplitRatio = entry.SplitRatio
		}
		if entry.FollowFocus != nil {
			conf.FollowFocus = *entry.FollowFocus
		}
		if entry.AllowWrapping != nil {
			conf.NoWrap = !*entry.AllowWrapping
		}
		variants = append(variants, layout.Variant{Name: entry.Name, Engine: engine, Conf: conf})
	}
	return layout.NewCycle(c.MainRatioStep, variants...)
}

// WMConfig converts the file settings into controller settings.
func (c *Config) WMConfig(logger *slog.Logger) (wm.Config, error) {
	cycle, err := c.LayoutCycle()
	if err != nil {
		return wm.Config{}, err
	}
	focused, err := ParseColor(c.FocusedBorder)
	if err != nil {
		return wm.Config{}, err
	}
	unfocused, err := ParseColor(c.UnfocusedBorder)
	if err != nil {
		return wm.Config{}, err
	}
	mouse, err := c.PointerBindings()
	if err != nil {
		return wm.Config{}, err
	}

	return wm.Config{
		Logger:          logger,
		Workspaces:      slices.Clone(c.Workspaces),
		Layouts:         cycle,
		BorderWidth:     c.BorderPx,
		Gap:             c.GapPx,
		FocusedBorder:   focused,
		UnfocusedBorder: unfocused,
		Bar: wm.Bar{
			Show:   c.Bar.Show,
			Top:    c.Bar.Top,
			Height: c.Bar.Height,
		},
		FocusFollowsPointer: c.FocusFollowsPointer,
		IsFloating:          wm.DefaultFloating(c.FloatingClasses),
		Terminal:            c.Terminal,
		MouseBindings:       mouse,
	}, nil
}

// PointerBindings resolves the pointer binding table.
func (c *Config) PointerBindings() (*wm.MouseBindings, error) {
	mb := wm.NewMouseBindings()
	for _, s := range slices.Sorted(maps.Keys(c.MouseBindings)) {
		name := c.MouseBindings[s]
		if name == Unbind {
			continue
		}
		chord, err := keys.ParseMouse(s)
		if err != nil {
			return nil, &ValidationError{Path: "mouse_bindings." + s, Err: err}
		}
		action, err := wm.ParseMouseAction(name)
		if err != nil {
			return nil, &ValidationError{Path: "mouse_bindings." + s, Err: err}
		}
		mb.Bind(chord, name, action)
	}
	return mb, nil
}

// Bindings resolves the key binding table. M-N and M-S-N switch to and
// move to workspace N for the first nine workspaces unless overridden.
func (c *Config) Bindings() (*wm.KeyBindings, error) {
	table := make(map[keys.Chord]string)
	for i := 1; i <= min(9, len(c.Workspaces)); i++ {
		n := strconv.Itoa(i)
		table[keys.MustParse("M-"+n)] = "workspace-" + n
		table[keys.MustParse("M-S-"+n)] = "move-to-workspace-" + n
	}

	for _, s := range slices.Sorted(maps.Keys(c.KeyBindings)) {
		chord, err := keys.Parse(s)
		if err != nil {
			return nil, &ValidationError{Path: "keybindings." + s, Err: err}
		}
		if name := c.KeyBindings[s]; name == Unbind {
			delete(table, chord)
		} else {
			table[chord] = name
		}
	}

	kb := wm.NewKeyBindings()
	for chord, name := range table {
		action, err := wm.ParseAction(name)
		if err != nil {
			return nil, &ValidationError{Path: "keybindings." + chord.String(), Err: err}
		}
		kb.BindNamed(chord, name, action)
	}
	return kb, nil
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
