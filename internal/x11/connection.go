// Package x11 implements platform.Conn on top of BurntSushi/xgb and xgbutil.
package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/stackwm/internal/platform"
)

// ErrOtherWM is returned when another window manager already owns the
// root window.
var ErrOtherWM = errors.New("another window manager is already running")

// Options configures a Connection.
type Options struct {
	Logger *slog.Logger
	// Name is published as _NET_WM_NAME of the supporting check window.
	Name string
}

// Connection manages the X11 connection and core X resources
type Connection struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	root   xproto.Window
	logger *slog.Logger
	name   string

	hasRandr    bool
	hasXinerama bool

	// check is the _NET_SUPPORTING_WM_CHECK window.
	check *xwindow.Window

	xevents chan xEventOrError
	posted  chan platform.Event
	lost    atomic.Bool
	// stopped is closed once the window manager role is released; later
	// posts are dropped.
	stopped  chan struct{}
	stopOnce sync.Once

	// Unmaps we issued ourselves, swallowed when the notify comes back.
	ignoreUnmap map[xproto.Window]int
	grabbed     map[grabKey]platform.Chord
	buttons     map[platform.MouseChord]bool
	// the pointer drag in progress, if any
	dragging   bool
	dragChord  platform.MouseChord
	dragWindow xproto.Window
	// Lock modifier combinations grabbed alongside every chord.
	ignoreMods []uint16
}

var (
	_ platform.Conn   = (*Connection)(nil)
	_ platform.Poster = (*Connection)(nil)
)

type xEventOrError struct {
	event xgb.Event
	err   xgb.Error
	lost  bool
}

// NewConnection connects to the X server named by $DISPLAY and takes over
// the window manager role on its root window.
func NewConnection(opts Options) (*Connection, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Name == "" {
		opts.Name = "stackwm"
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	// Initialize keybind module (required for key grabs)
	keybind.Initialize(xu)

	c := &Connection{
		xu:          xu,
		conn:        xu.Conn(),
		root:        xu.RootWin(),
		logger:      opts.Logger,
		name:        opts.Name,
		xevents:     make(chan xEventOrError, 16),
		posted:      make(chan platform.Event, 64),
		stopped:     make(chan struct{}),
		ignoreUnmap: make(map[xproto.Window]int),
		grabbed:     make(map[grabKey]platform.Chord),
		buttons:     make(map[platform.MouseChord]bool),
	}

	if err := c.becomeWM(); err != nil {
		c.conn.Close()
		return nil, err
	}

	if err := randr.Init(c.conn); err != nil {
		c.logger.Warn("randr unavailable", "error", err)
	} else {
		c.hasRandr = true
		if err := randr.SelectInputChecked(c.conn, c.root, randr.NotifyMaskScreenChange).Check(); err != nil {
			c.logger.Warn("failed to select randr screen change events", "error", err)
		}
	}
	if err := xinerama.Init(c.conn); err == nil {
		c.hasXinerama = true
	}

	c.ignoreMods = configureIgnoreMods(xu)
	if err := c.setupEWMH(); err != nil {
		c.logger.Warn("failed to publish EWMH support", "error", err)
	}

	go c.pump()
	return c, nil
}

// becomeWM selects SubstructureRedirect on the root window. Only one client
// may hold it, so an access error means another window manager is running.
func (c *Connection) becomeWM() error {
	err := xproto.ChangeWindowAttributesChecked(c.conn, c.root, xproto.CwEventMask, []uint32{
		xproto.EventMaskSubstructureRedirect |
			xproto.EventMaskSubstructureNotify |
			xproto.EventMaskStructureNotify |
			xproto.EventMaskPropertyChange,
	}).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrOtherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}
	return nil
}

// Post queues an event from another goroutine. It is returned by a later
// NextEvent call ahead of pending X events. After Restore or Disconnect
// nothing reads the queue any more and events are dropped.
func (c *Connection) Post(ev platform.Event) {
	select {
	case <-c.stopped:
		c.logger.Debug("dropping event posted after shutdown", "event", fmt.Sprintf("%T", ev))
	case c.posted <- ev:
	}
}

func (c *Connection) stop() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

// Disconnect closes the connection to the X server.
func (c *Connection) Disconnect() {
	c.stop()
	c.conn.Close()
}

// Restore releases the window manager role: the root event mask is
// cleared, input focus returns to the pointer root and the supporting check
// window is destroyed.
func (c *Connection) Restore() error {
	c.stop()
	var errs []error
	if c.check != nil {
		c.check.Destroy()
		c.check = nil
	}
	if err := xproto.ChangeWindowAttributesChecked(c.conn, c.root, xproto.CwEventMask, []uint32{0}).Check(); err != nil {
		errs = append(errs, err)
	}
	if err := xproto.SetInputFocusChecked(c.conn, xproto.InputFocusPointerRoot,
		xproto.InputFocusPointerRoot, xproto.TimeCurrentTime).Check(); err != nil {
		errs = append(errs, err)
	}
	return c.wrap("restore", errors.Join(errs...))
}

// wrap turns an xgb error into a platform.ConnectionError, flagging it as
// fatal once the event pump has seen the connection close.
func (c *Connection) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &platform.ConnectionError{Op: op, Err: err, Lost: c.lost.Load()}
}
