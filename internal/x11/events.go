package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/stackwm/internal/platform"
)

var errConnClosed = errors.New("X server closed the connection")

// pump reads X events on its own goroutine so NextEvent can also wait on
// posted events.
func (c *Connection) pump() {
	for {
		ev, err := c.conn.WaitForEvent()
		if ev == nil && err == nil {
			c.lost.Store(true)
			c.xevents <- xEventOrError{lost: true}
			return
		}
		c.xevents <- xEventOrError{event: ev, err: err}
	}
}

// NextEvent blocks until a posted event or a translated X event is ready.
// X events with no platform equivalent are skipped.
func (c *Connection) NextEvent() (platform.Event, error) {
	for {
		if c.lost.Load() {
			select {
			case ev := <-c.posted:
				return ev, nil
			default:
				return nil, &platform.ConnectionError{Op: "wait for event", Err: errConnClosed, Lost: true}
			}
		}

		select {
		case ev := <-c.posted:
			return ev, nil
		case ee := <-c.xevents:
			if ee.lost {
				return nil, &platform.ConnectionError{Op: "wait for event", Err: errConnClosed, Lost: true}
			}
			if ee.err != nil {
				return nil, &platform.ConnectionError{Op: "x protocol", Err: ee.err}
			}
			if ev, ok := c.translate(ee.event); ok {
				return ev, nil
			}
		}
	}
}

func (c *Connection) translate(ev xgb.Event) (platform.Event, bool) {
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		return platform.MapRequest{Window: platform.WindowID(e.Window)}, true

	case xproto.DestroyNotifyEvent:
		delete(c.ignoreUnmap, e.Window)
		return platform.DestroyNotify{Window: platform.WindowID(e.Window)}, true

	case xproto.UnmapNotifyEvent:
		if n := c.ignoreUnmap[e.Window]; n > 0 {
			if n == 1 {
				delete(c.ignoreUnmap, e.Window)
			} else {
				c.ignoreUnmap[e.Window] = n - 1
			}
			return nil, false
		}
		return platform.UnmapNotify{Window: platform.WindowID(e.Window)}, true

	case xproto.ConfigureRequestEvent:
		return configureRequest(e), true

	case xproto.EnterNotifyEvent:
		if e.Mode != xproto.NotifyModeNormal || e.Detail == xproto.NotifyDetailInferior {
			return nil, false
		}
		return platform.EnterNotify{Window: platform.WindowID(e.Event)}, true

	case xproto.KeyPressEvent:
		chord, ok := c.chordFor(e)
		if !ok {
			return nil, false
		}
		return platform.KeyPress{Chord: chord}, true

	case xproto.ButtonPressEvent:
		return c.buttonPress(e)

	case xproto.MotionNotifyEvent:
		return c.pointerMotion(e)

	case xproto.ButtonReleaseEvent:
		return c.buttonRelease(e)

	case xproto.ClientMessageEvent:
		return c.clientMessage(e)

	case randr.ScreenChangeNotifyEvent:
		return platform.ScreenChange{}, true

	case nil:
		return nil, false
	}
	return platform.Unknown{Name: fmt.Sprintf("%T", ev)}, true
}

func configureRequest(e xproto.ConfigureRequestEvent) platform.ConfigureRequest {
	return platform.ConfigureRequest{
		Window:      platform.WindowID(e.Window),
		X:           int(e.X),
		Y:           int(e.Y),
		Width:       int(e.Width),
		Height:      int(e.Height),
		BorderWidth: int(e.BorderWidth),
		Sibling:     platform.WindowID(e.Sibling),
		StackMode:   int(e.StackMode),
		ValueMask:   e.ValueMask,
	}
}

// clientMessage resolves the message type and, for _NET_WM_STATE, the
// property atoms carried in data[1] and data[2].
func (c *Connection) clientMessage(e xproto.ClientMessageEvent) (platform.Event, bool) {
	if e.Format != 32 {
		return nil, false
	}
	name, err := xprop.AtomName(c.xu, e.Type)
	if err != nil {
		c.logger.Debug("unknown client message atom", "atom", e.Type, "error", err)
		return nil, false
	}

	msg := platform.ClientMessage{Window: platform.WindowID(e.Window), Type: name}
	copy(msg.Data[:], e.Data.Data32)
	if name == "_NET_WM_STATE" {
		for _, v := range msg.Data[1:3] {
			if v == 0 {
				continue
			}
			if atom, err := xprop.AtomName(c.xu, xproto.Atom(v)); err == nil {
				msg.Atoms = append(msg.Atoms, atom)
			}
		}
	}
	return msg, true
}
