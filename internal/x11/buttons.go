package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/platform"
)

const buttonGrabMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskButtonMotion

// GrabButtons replaces the pointer grabs on the root window. Pressing a
// grabbed chord activates a pointer grab until the button is released, so
// motion is reported for the whole drag.
func (c *Connection) GrabButtons(chords []platform.MouseChord) error {
	if err := c.UngrabButtons(); err != nil {
		return err
	}

	var errs []error
	for _, chord := range chords {
		chord = chord.Normalize()
		c.buttons[chord] = true
		for _, mods := range grabMasks(uint16(chord.Mods), c.ignoreMods) {
			err := xproto.GrabButtonChecked(c.conn, false, c.root, uint16(buttonGrabMask),
				xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
				byte(chord.Button), mods).Check()
			if err != nil {
				errs = append(errs, fmt.Errorf("grab %s: %w", chord.String(), err))
				break
			}
		}
	}
	return c.wrap("grab buttons", errors.Join(errs...))
}

// UngrabButtons releases every pointer grab on the root window.
func (c *Connection) UngrabButtons() error {
	clear(c.buttons)
	c.dragging = false
	err := xproto.UngrabButtonChecked(c.conn, xproto.ButtonIndexAny, c.root, xproto.ModMaskAny).Check()
	return c.wrap("ungrab buttons", err)
}

// buttonPress translates a press on a grabbed chord. Presses are delivered
// to the root window; Child is the top-level window under the pointer.
func (c *Connection) buttonPress(e xproto.ButtonPressEvent) (platform.Event, bool) {
	chord := keys.MouseChord{
		Mods:   keys.Modifier(e.State) & keys.Relevant,
		Button: keys.Button(e.Detail),
	}
	if !c.buttons[chord] {
		return nil, false
	}
	c.dragging = true
	c.dragChord = chord
	c.dragWindow = e.Child
	return platform.ButtonPress{
		Window: platform.WindowID(e.Child),
		Chord:  chord,
		RootX:  int(e.RootX),
		RootY:  int(e.RootY),
	}, true
}

func (c *Connection) pointerMotion(e xproto.MotionNotifyEvent) (platform.Event, bool) {
	if !c.dragging {
		return nil, false
	}
	return platform.PointerMotion{
		Window: platform.WindowID(c.dragWindow),
		RootX:  int(e.RootX),
		RootY:  int(e.RootY),
	}, true
}

func (c *Connection) buttonRelease(e xproto.ButtonReleaseEvent) (platform.Event, bool) {
	if !c.dragging || keys.Button(e.Detail) != c.dragChord.Button {
		return nil, false
	}
	c.dragging = false
	return platform.ButtonRelease{
		Window: platform.WindowID(c.dragWindow),
		Chord:  c.dragChord,
		RootX:  int(e.RootX),
		RootY:  int(e.RootY),
	}, true
}
