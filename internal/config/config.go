package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/layout"
	"github.com/1broseidon/stackwm/internal/wm"
)

// Unbind as a key binding action removes a default binding.
const Unbind = "none"

// LayoutSpec is one entry of the per-workspace layout cycle.
type LayoutSpec struct {
	Name      string `yaml:"name"`
	Algorithm string `yaml:"algorithm"`
	// MasterCount defaults to 1 when unset; zero is a valid value.
	MasterCount *int    `yaml:"master_count,omitempty"`
	SplitRatio  float64 `yaml:"split_ratio,omitempty"` // 0 = layout default
	Gapless     bool    `yaml:"gapless,omitempty"`
	// FollowFocus defaults to true for monocle.
	FollowFocus *bool `yaml:"follow_focus,omitempty"`
	// AllowWrapping defaults to true.
	AllowWrapping *bool `yaml:"allow_wrapping,omitempty"`
}

// BarConfig reserves a strip of every screen for an external status bar.
type BarConfig struct {
	Show   bool `yaml:"show"`
	Top    bool `yaml:"top"`
	Height int  `yaml:"height"`
}

// Config is the user configuration.
type Config struct {
	Workspaces      []string     `yaml:"workspaces"`
	FloatingClasses []string     `yaml:"floating_classes"`
	Layouts         []LayoutSpec `yaml:"layouts"`

	BorderPx      int     `yaml:"border_px"`
	GapPx         int     `yaml:"gap_px"`
	MainRatioStep float64 `yaml:"main_ratio_step"`

	FocusedBorder   string    `yaml:"focused_border"`
	UnfocusedBorder string    `yaml:"unfocused_border"`
	Bar             BarConfig `yaml:"bar"`

	FocusFollowsPointer bool   `yaml:"focus_follows_pointer"`
	Terminal            string `yaml:"terminal"`

	// KeyBindings maps chords ("M-S-Return") to action names. Entries merge
	// over the defaults; the action "none" removes a binding.
	KeyBindings map[string]string `yaml:"keybindings"`
	// MouseBindings maps pointer chords ("M-Button1") to pointer actions,
	// merged like KeyBindings.
	MouseBindings map[string]string `yaml:"mouse_bindings"`

	LogLevel    string `yaml:"log_level"`
	WatchConfig bool   `yaml:"watch_config"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Workspaces:      []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		FloatingClasses: []string{"dmenu", "dunst"},
		Layouts: []LayoutSpec{
			{Name: "[side]", Algorithm: string(layout.AlgorithmMasterStack), MasterCount: intPtr(1), SplitRatio: layout.DefaultSplitRatio},
			{Name: "[mono]", Algorithm: string(layout.AlgorithmMonocle)},
			{Name: "[grid]", Algorithm: string(layout.AlgorithmGrid)},
			{Name: "[----]", Algorithm: string(layout.AlgorithmFloating)},
		},
		BorderPx:            2,
		GapPx:               5,
		MainRatioStep:       layout.DefaultRatioStep,
		FocusedBorder:       "#cc241d",
		UnfocusedBorder:     "#3c3836",
		Bar:                 BarConfig{Show: true, Top: true, Height: 18},
		FocusFollowsPointer: true,
		Terminal:            "xterm",
		KeyBindings:         defaultKeyBindings(),
		MouseBindings:       map[string]string{"M-Button1": "move-floating", "M-Button3": "resize-floating"},
		LogLevel:            "info",
		WatchConfig:         true,
	}
}

func defaultKeyBindings() map[string]string {
	return map[string]string{
		"M-Return":   "spawn-terminal",
		"M-S-Return": "swap-master",
		"M-j":        "focus-next",
		"M-k":        "focus-previous",
		"M-S-j":      "swap-next",
		"M-S-k":      "swap-previous",
		"M-h":        "shrink-main",
		"M-l":        "expand-main",
		"M-comma":    "increase-master",
		"M-period":   "decrease-master",
		"M-space":    "next-layout",
		"M-S-space":  "previous-layout",
		"M-n":        "reset-layout",
		"M-t":        "toggle-float",
		"M-f":        "toggle-fullscreen",
		"M-w":        "screen-previous",
		"M-e":        "screen-next",
		"M-S-w":      "drag-screen-prev",
		"M-S-e":      "drag-screen-next",
		"M-S-c":      "kill",
		"M-S-q":      "quit",
		"M-d":        "spawn dmenu_run",
		"M-p":        "spawn stackwm palette",
		"M-S-Tab":    "rotate-up",
		"M-Tab":      "rotate-down",
	}
}

func intPtr(v int) *int { return &v }

// ValidationError points at the offending config path.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the configuration and returns the first problem found as
// a *ValidationError.
func (c *Config) Validate() error {
	if len(c.Workspaces) == 0 {
		return &ValidationError{Path: "workspaces", Err: errors.New("at least one workspace is required")}
	}
	seen := make(map[string]bool, len(c.Workspaces))
	for i, name := range c.Workspaces {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "workspaces", Err: fmt.Errorf("workspace %d has an empty name", i+1)}
		}
		if seen[name] {
			return &ValidationError{Path: "workspaces", Err: fmt.Errorf("duplicate workspace name %q", name)}
		}
		seen[name] = true
	}

	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: errors.New("layouts must not be empty")}
	}
	names := make(map[string]bool, len(c.Layouts))
	for i, entry := range c.Layouts {
		if err := validateLayout(entry); err != nil {
			return &ValidationError{Path: "layouts", Err: fmt.Errorf("layout %d: %w", i+1, err)}
		}
		if names[entry.Name] {
			return &ValidationError{Path: "layouts", Err: fmt.Errorf("duplicate layout name %q", entry.Name)}
		}
		names[entry.Name] = true
	}

	if c.BorderPx < 0 {
		return &ValidationError{Path: "border_px", Err: errors.New("border_px must be >= 0")}
	}
	if c.GapPx < 0 {
		return &ValidationError{Path: "gap_px", Err: errors.New("gap_px must be >= 0")}
	}
	if c.MainRatioStep <= 0 || c.MainRatioStep > 1 {
		return &ValidationError{Path: "main_ratio_step", Err: errors.New("main_ratio_step must be in (0, 1]")}
	}
	if _, err := ParseColor(c.FocusedBorder); err != nil {
		return &ValidationError{Path: "focused_border", Err: err}
	}
	if _, err := ParseColor(c.UnfocusedBorder); err != nil {
		return &ValidationError{Path: "unfocused_border", Err: err}
	}
	if c.Bar.Height < 0 {
		return &ValidationError{Path: "bar.height", Err: errors.New("height must be >= 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: errors.New("log_level must be one of: debug, info, warn, error")}
	}

	for _, chord := range slices.Sorted(maps.Keys(c.KeyBindings)) {
		action := c.KeyBindings[chord]
		path := "keybindings." + chord
		if _, err := keys.Parse(chord); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if action == Unbind {
			continue
		}
		if _, err := wm.ParseAction(action); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if n, ok := workspaceTarget(action); ok && n > len(c.Workspaces) {
			return &ValidationError{Path: path, Err: fmt.Errorf("workspace %d does not exist (have %d)", n, len(c.Workspaces))}
		}
		if action == "spawn-terminal" && strings.TrimSpace(c.Terminal) == "" {
			return &ValidationError{Path: "terminal", Err: errors.New("terminal is required when spawn-terminal is bound")}
		}
	}

	for _, chord := range slices.Sorted(maps.Keys(c.MouseBindings)) {
		action := c.MouseBindings[chord]
		path := "mouse_bindings." + chord
		if _, err := keys.ParseMouse(chord); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if action == Unbind {
			continue
		}
		if _, err := wm.ParseMouseAction(action); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
	}
	return nil
}

func validateLayout(entry LayoutSpec) error {
	if strings.TrimSpace(entry.Name) == "" {
		return errors.New("name is required")
	}
	if _, err := layout.Lookup(layout.Algorithm(entry.Algorithm)); err != nil {
		return err
	}
	if entry.MasterCount != nil && *entry.MasterCount < 0 {
		return fmt.Errorf("%s: master_count must be >= 0", entry.Name)
	}
	if entry.SplitRatio != 0 && (entry.SplitRatio < layout.MinSplitRatio || entry.SplitRatio > layout.MaxSplitRatio) {
		return fmt.Errorf("%s: split_ratio must be between %.2f and %.2f", entry.Name, layout.MinSplitRatio, layout.MaxSplitRatio)
	}
	return nil
}

// workspaceTarget extracts N from workspace-N and move-to-workspace-N.
func workspaceTarget(action string) (int, bool) {
	for _, prefix := range []string{"workspace-", "move-to-workspace-"} {
		if rest, ok := strings.CutPrefix(action, prefix); ok {
			n, err := strconv.Atoi(rest)
			return n, err == nil
		}
	}
	return 0, false
}

// ParseColor reads a "#rrggbb" color into a pixel value.
func ParseColor(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok || len(hex) != 6 {
		return 0, fmt.Errorf("color %q must be in #rrggbb form", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}
