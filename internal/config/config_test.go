package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/layout"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	res, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Exists {
		t.Fatalf("expected Exists=false")
	}
	if len(res.Config.Workspaces) != 9 || res.Config.Terminal != "xterm" {
		t.Fatalf("unexpected defaults: %+v", res.Config)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	res, err := Load(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Exists || res.Config.BorderPx != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"workspaces: [web, code, chat]",
		"gap_px: 0",
		"bar:",
		"  height: 24",
		"keybindings:",
		"  M-x: kill",
		"  M-S-c: none",
		"",
	}, "\n"))

	res, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if len(cfg.Workspaces) != 3 || cfg.Workspaces[0] != "web" {
		t.Fatalf("workspaces = %v", cfg.Workspaces)
	}
	if cfg.GapPx != 0 || cfg.BorderPx != 2 {
		t.Fatalf("gap/border = %d/%d", cfg.GapPx, cfg.BorderPx)
	}
	if !cfg.Bar.Show || !cfg.Bar.Top || cfg.Bar.Height != 24 {
		t.Fatalf("bar = %+v", cfg.Bar)
	}
	if cfg.KeyBindings["M-x"] != "kill" || cfg.KeyBindings["M-Return"] != "spawn-terminal" {
		t.Fatalf("keybindings did not merge: %v", cfg.KeyBindings)
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "gap_size: 4\n"))
	if err == nil || !strings.Contains(err.Error(), "gap_size") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoad_ValidationErrorCarriesSource(t *testing.T) {
	path := writeConfig(t, "border_px: 1\ngap_px: -3\n")
	_, err := Load(path)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T %v", err, err)
	}
	if verr.Path != "gap_px" || verr.Source.Line != 2 || verr.Source.File != path {
		t.Fatalf("unexpected error context: %+v", verr)
	}
	if !strings.HasPrefix(err.Error(), path+":2:") {
		t.Fatalf("error should start with file position: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"no workspaces", func(c *Config) { c.Workspaces = nil }, "workspaces"},
		{"duplicate workspace", func(c *Config) { c.Workspaces = []string{"a", "a"} }, "workspaces"},
		{"blank workspace", func(c *Config) { c.Workspaces = []string{" "} }, "workspaces"},
		{"no layouts", func(c *Config) { c.Layouts = nil }, "layouts"},
		{"unknown algorithm", func(c *Config) { c.Layouts[0].Algorithm = "spiral" }, "layouts"},
		{"duplicate layout", func(c *Config) { c.Layouts[1].Name = c.Layouts[0].Name }, "layouts"},
		{"bad ratio", func(c *Config) { c.Layouts[0].SplitRatio = 0.99 }, "layouts"},
		{"negative master", func(c *Config) { c.Layouts[0].MasterCount = intPtr(-1) }, "layouts"},
		{"negative border", func(c *Config) { c.BorderPx = -1 }, "border_px"},
		{"ratio step", func(c *Config) { c.MainRatioStep = 0 }, "main_ratio_step"},
		{"bad color", func(c *Config) { c.FocusedBorder = "red" }, "focused_border"},
		{"bad bar", func(c *Config) { c.Bar.Height = -1 }, "bar.height"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"bad chord", func(c *Config) { c.KeyBindings["Hyper-x"] = "kill" }, "keybindings.Hyper-x"},
		{"bad action", func(c *Config) { c.KeyBindings["M-x"] = "explode" }, "keybindings.M-x"},
		{"workspace out of range", func(c *Config) {
			c.Workspaces = []string{"a", "b"}
			c.KeyBindings["M-x"] = "workspace-3"
		}, "keybindings.M-x"},
		{"no terminal", func(c *Config) { c.Terminal = "" }, "terminal"},
		{"bad pointer chord", func(c *Config) { c.MouseBindings["M-Button9"] = "move-floating" }, "mouse_bindings.M-Button9"},
		{"bad pointer action", func(c *Config) { c.MouseBindings["M-Button2"] = "kill" }, "mouse_bindings.M-Button2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q (%v)", verr.Path, tt.path, err)
			}
		})
	}
}

func TestLayoutCycle(t *testing.T) {
	cfg := DefaultConfig()
	zero := 0
	off := false
	cfg.Layouts = []LayoutSpec{
		{Name: "tall", Algorithm: "master-stack", MasterCount: &zero, SplitRatio: 0.7},
		{Name: "full", Algorithm: "monocle"},
		{Name: "full-static", Algorithm: "monocle", FollowFocus: &off, Gapless: true, AllowWrapping: &off},
	}
	cfg.GapPx = 7

	cycle, err := cfg.LayoutCycle()
	if err != nil {
		t.Fatalf("LayoutCycle: %v", err)
	}
	conf := cycle.Conf()
	if cycle.Name() != "tall" || conf.MasterCount != 0 || conf.SplitRatio != 0.7 || conf.Gap != 7 {
		t.Fatalf("tall conf = %+v", conf)
	}
	if conf.FollowFocus || conf.NoWrap {
		t.Fatalf("master-stack should not follow focus and should wrap: %+v", conf)
	}

	cycle.Handle(layout.NextVariant)
	if !cycle.Conf().FollowFocus || cycle.Conf().MasterCount != layout.DefaultMasterCount {
		t.Fatalf("monocle conf = %+v", cycle.Conf())
	}
	cycle.Handle(layout.NextVariant)
	if c := cycle.Conf(); c.FollowFocus || !c.Gapless || !c.NoWrap {
		t.Fatalf("full-static conf = %+v", c)
	}
}

func TestBindings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspaces = []string{"a", "b", "c"}
	cfg.KeyBindings["M-3"] = "spawn xclock"
	cfg.KeyBindings["M-S-q"] = Unbind

	kb, err := cfg.Bindings()
	if err != nil {
		t.Fatalf("Bindings: %v", err)
	}
	tests := []struct {
		chord string
		want  string
	}{
		{"M-1", "workspace-1"},
		{"M-S-2", "move-to-workspace-2"},
		{"M-3", "spawn xclock"},
		{"M-4", ""},
		{"M-S-q", ""},
		{"M-Return", "spawn-terminal"},
	}
	for _, tt := range tests {
		if got := kb.Name(keys.MustParse(tt.chord)); got != tt.want {
			t.Errorf("%s bound to %q, want %q", tt.chord, got, tt.want)
		}
	}
}

func TestPointerBindings(t *testing.T) {
	path := writeConfig(t, "mouse_bindings:\n  M-Button3: none\n  M-S-Button1: resize-floating\n")
	res, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	mb, err := res.Config.PointerBindings()
	if err != nil {
		t.Fatalf("PointerBindings: %v", err)
	}
	tests := []struct {
		chord string
		want  string
	}{
		{"M-Button1", "move-floating"},
		{"M-S-Button1", "resize-floating"},
		{"M-Button3", ""},
	}
	for _, tt := range tests {
		chord, err := keys.ParseMouse(tt.chord)
		if err != nil {
			t.Fatalf("ParseMouse(%q): %v", tt.chord, err)
		}
		if got := mb.Name(chord); got != tt.want {
			t.Errorf("%s bound to %q, want %q", tt.chord, got, tt.want)
		}
	}
	if mb.Len() != 2 {
		t.Fatalf("bindings = %d, want 2", mb.Len())
	}
}

func TestWMConfig(t *testing.T) {
	cfg := DefaultConfig()
	wcfg, err := cfg.WMConfig(nil)
	if err != nil {
		t.Fatalf("WMConfig: %v", err)
	}
	if wcfg.FocusedBorder != 0xcc241d || wcfg.UnfocusedBorder != 0x3c3836 {
		t.Fatalf("colors = %#x / %#x", wcfg.FocusedBorder, wcfg.UnfocusedBorder)
	}
	if wcfg.MouseBindings == nil || wcfg.MouseBindings.Len() != 2 {
		t.Fatalf("pointer bindings not built: %+v", wcfg.MouseBindings)
	}
	if wcfg.Bar.Height != 18 || wcfg.Layouts == nil || wcfg.IsFloating == nil {
		t.Fatalf("unexpected wm config: %+v", wcfg)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#000000", 0, false},
		{"#FFfFff", 0xffffff, false},
		{" #cc241d ", 0xcc241d, false},
		{"cc241d", 0, true},
		{"#fff", 0, true},
		{"#gggggg", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseColor(%q) = %#x, %v", tt.in, got, err)
		}
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, "bar:\n  height: 30\nkeybindings:\n  M-x: kill\n")
	res, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "bar.height")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 30 || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("bar.height = %v from %+v", val, src)
	}

	val, src, err = Explain(res, "layouts.0.name")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "[side]" || src.Kind != SourceDefault {
		t.Fatalf("layouts.0.name = %v from %+v", val, src)
	}

	if val, _, err := Explain(res, "keybindings.M-x"); err != nil || val != "kill" {
		t.Fatalf("keybindings.M-x = %v, %v", val, err)
	}
	if _, _, err := Explain(res, "bar.colour"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestMarshal(t *testing.T) {
	out, err := DefaultConfig().Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{"workspaces:", "focused_border: '#cc241d'", "M-Return: spawn-terminal"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
