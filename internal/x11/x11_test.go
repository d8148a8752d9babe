package x11

import (
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/platform"
)

func TestLockCombinations(t *testing.T) {
	const caps, num, scroll = 2, 16, 128

	tests := []struct {
		name        string
		num, scroll uint16
		want        []uint16
	}{
		{"caps only", 0, 0, []uint16{0, caps}},
		{"caps and numlock", num, 0, []uint16{0, caps, num, caps | num}},
		{"numlock aliased to caps", caps, 0, []uint16{0, caps}},
		{"all three", num, scroll, []uint16{0, caps, num, caps | num, scroll, caps | scroll, num | scroll, caps | num | scroll}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lockCombinations(caps, tt.num, tt.scroll)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrabMasks(t *testing.T) {
	got := grabMasks(64, []uint16{0, 2, 16})
	if !slices.Equal(got, []uint16{64, 66, 80}) {
		t.Fatalf("got %v", got)
	}
	if got := grabMasks(64, nil); !slices.Equal(got, []uint16{64}) {
		t.Fatalf("no ignore mods: got %v", got)
	}
}

func TestConfigureValues_ProtocolOrder(t *testing.T) {
	req := platform.ConfigureRequest{
		Window:    1,
		X:         -5,
		Width:     0,
		Height:    300,
		StackMode: int(xproto.StackModeAbove),
		ValueMask: platform.ConfigX | platform.ConfigWidth | platform.ConfigHeight | platform.ConfigStackMode,
	}
	mask, values := configureValues(req)

	wantMask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight | xproto.ConfigWindowStackMode)
	if mask != wantMask {
		t.Fatalf("mask = %#x, want %#x", mask, wantMask)
	}
	want := []uint32{uint32(0xfffffffb), 1, 300, uint32(xproto.StackModeAbove)}
	if !slices.Equal(values, want) {
		t.Fatalf("values = %v, want %v", values, want)
	}
}

func TestConfigureValues_EmptyMask(t *testing.T) {
	mask, values := configureValues(platform.ConfigureRequest{Window: 1, X: 10})
	if mask != 0 || len(values) != 0 {
		t.Fatalf("got mask %#x values %v", mask, values)
	}
}

func TestMaskBitsMatchProtocol(t *testing.T) {
	pairs := []struct {
		ours, x uint16
	}{
		{platform.ConfigX, xproto.ConfigWindowX},
		{platform.ConfigY, xproto.ConfigWindowY},
		{platform.ConfigWidth, xproto.ConfigWindowWidth},
		{platform.ConfigHeight, xproto.ConfigWindowHeight},
		{platform.ConfigBorderWidth, xproto.ConfigWindowBorderWidth},
		{platform.ConfigSibling, xproto.ConfigWindowSibling},
		{platform.ConfigStackMode, xproto.ConfigWindowStackMode},
	}
	for _, p := range pairs {
		if p.ours != p.x {
			t.Fatalf("mask bit %#x does not match X value %#x", p.ours, p.x)
		}
	}
}

func TestApplyStruts(t *testing.T) {
	root := platform.Rect{Width: 3840, Height: 1080}
	left := platform.Rect{Width: 1920, Height: 1080}
	right := platform.Rect{X: 1920, Width: 1920, Height: 1080}

	// A 30px top panel spanning only the left monitor.
	panel := ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	got := applyStruts(left, root, []ewmh.WmStrutPartial{panel})
	if got != (platform.Rect{Y: 30, Width: 1920, Height: 1050}) {
		t.Fatalf("left monitor = %+v", got)
	}
	if got := applyStruts(right, root, []ewmh.WmStrutPartial{panel}); got != right {
		t.Fatalf("right monitor should be untouched, got %+v", got)
	}
	if in := strutInsets(left, root, []ewmh.WmStrutPartial{panel}); in != (platform.Insets{Top: 30}) {
		t.Fatalf("left insets = %+v", in)
	}
	if in := strutInsets(right, root, []ewmh.WmStrutPartial{panel}); in != (platform.Insets{}) {
		t.Fatalf("right insets = %+v", in)
	}

	// A right dock is measured from the root's right edge.
	dock := ewmh.WmStrutPartial{Right: 64, RightStartY: 0, RightEndY: 1079}
	if got := applyStruts(right, root, []ewmh.WmStrutPartial{dock}); got.Width != 1920-64 || got.X != 1920 {
		t.Fatalf("right dock: %+v", got)
	}
}

func TestDedupeDisplays(t *testing.T) {
	a := platform.Rect{Width: 1920, Height: 1080}
	b := platform.Rect{X: 1920, Width: 1280, Height: 1024}
	got := dedupeDisplays([]platform.Display{
		{Name: "DP-1", Bounds: b},
		{Name: "HDMI-1", Bounds: a},
		{Name: "HDMI-2", Bounds: a},
	})
	if len(got) != 2 || got[0].Name != "HDMI-1" || got[1].Name != "DP-1" {
		t.Fatalf("got %+v", got)
	}
}

func TestIsManageable(t *testing.T) {
	tests := []struct {
		types []string
		want  bool
	}{
		{nil, true},
		{[]string{"_NET_WM_WINDOW_TYPE_NORMAL"}, true},
		{[]string{"_NET_WM_WINDOW_TYPE_DIALOG"}, true},
		{[]string{"_NET_WM_WINDOW_TYPE_DOCK"}, false},
		{[]string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, false},
	}
	for _, tt := range tests {
		if got := isManageable(tt.types); got != tt.want {
			t.Errorf("isManageable(%v) = %v, want %v", tt.types, got, tt.want)
		}
	}
}

func TestConfigureRequestTranslation(t *testing.T) {
	got := configureRequest(xproto.ConfigureRequestEvent{
		Window:    7,
		X:         -10,
		Y:         20,
		Width:     640,
		Height:    480,
		ValueMask: xproto.ConfigWindowX | xproto.ConfigWindowY,
	})
	want := platform.ConfigureRequest{
		Window:    7,
		X:         -10,
		Y:         20,
		Width:     640,
		Height:    480,
		ValueMask: platform.ConfigX | platform.ConfigY,
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPost_DroppedAfterStop(t *testing.T) {
	c := &Connection{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		posted:  make(chan platform.Event, 1),
		stopped: make(chan struct{}),
	}
	c.Post(platform.Shutdown{})
	c.stop()
	c.stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 3 {
			c.Post(platform.Call{})
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Post blocked after stop")
	}
	if len(c.posted) != 1 {
		t.Fatalf("queue holds %d events, want 1", len(c.posted))
	}
}

func TestPointerDragTranslation(t *testing.T) {
	move := keys.MouseChord{Mods: keys.ModSuper, Button: keys.ButtonLeft}
	c := &Connection{buttons: map[platform.MouseChord]bool{move: true}}

	const capsLock = uint16(xproto.ModMaskLock)
	if _, ok := c.buttonPress(xproto.ButtonPressEvent{Detail: 3, State: uint16(keys.ModSuper), Child: 0x42}); ok {
		t.Fatalf("ungrabbed chord translated")
	}
	if _, ok := c.pointerMotion(xproto.MotionNotifyEvent{RootX: 1, RootY: 1}); ok {
		t.Fatalf("motion without a drag translated")
	}

	ev, ok := c.buttonPress(xproto.ButtonPressEvent{
		Detail: 1, State: uint16(keys.ModSuper) | capsLock, Child: 0x42, RootX: 10, RootY: 20,
	})
	want := platform.ButtonPress{Window: 0x42, Chord: move, RootX: 10, RootY: 20}
	if !ok || ev != want {
		t.Fatalf("press = %+v, %v", ev, ok)
	}

	ev, ok = c.pointerMotion(xproto.MotionNotifyEvent{Child: 0x99, RootX: 15, RootY: 25})
	if !ok || ev != (platform.PointerMotion{Window: 0x42, RootX: 15, RootY: 25}) {
		t.Fatalf("motion = %+v, %v", ev, ok)
	}
	if _, ok := c.buttonRelease(xproto.ButtonReleaseEvent{Detail: 3}); ok {
		t.Fatalf("release of another button ended the drag")
	}
	ev, ok = c.buttonRelease(xproto.ButtonReleaseEvent{Detail: 1, RootX: 30, RootY: 40})
	if !ok || ev != (platform.ButtonRelease{Window: 0x42, Chord: move, RootX: 30, RootY: 40}) {
		t.Fatalf("release = %+v, %v", ev, ok)
	}
	if _, ok := c.pointerMotion(xproto.MotionNotifyEvent{}); ok {
		t.Fatalf("motion after release translated")
	}
}
