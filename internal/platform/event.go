package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/stackwm/internal/keys"
)

// Chord is a key binding chord as delivered in KeyPress events.
type Chord = keys.Chord

// MouseChord is a pointer binding chord as delivered in ButtonPress events.
type MouseChord = keys.MouseChord

// Event is the closed set of inputs the controller reacts to.
type Event interface {
	event()
}

// MapRequest asks for a new top-level window to be shown.
type MapRequest struct {
	Window WindowID
}

// DestroyNotify reports that a window no longer exists.
type DestroyNotify struct {
	Window WindowID
}

// UnmapNotify reports that a client withdrew its window. Unmaps issued by
// the window manager itself are filtered out by the connection.
type UnmapNotify struct {
	Window WindowID
}

// Configure request value mask bits.
const (
	ConfigX uint16 = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorderWidth
	ConfigSibling
	ConfigStackMode
)

// ConfigureRequest is a geometry change requested by a client.
type ConfigureRequest struct {
	Window      WindowID
	X, Y        int
	Width       int
	Height      int
	BorderWidth int
	Sibling     WindowID
	StackMode   int
	ValueMask   uint16
}

// EnterNotify reports the pointer entering a window.
type EnterNotify struct {
	Window WindowID
}

// KeyPress reports a grabbed chord being pressed.
type KeyPress struct {
	Chord Chord
}

// ButtonPress reports a grabbed pointer chord pressed over Window. While the
// button is held the connection delivers PointerMotion and finally
// ButtonRelease. Coordinates are relative to the root window.
type ButtonPress struct {
	Window       WindowID
	Chord        MouseChord
	RootX, RootY int
}

// PointerMotion reports pointer movement while a grabbed button is held.
type PointerMotion struct {
	Window       WindowID
	RootX, RootY int
}

// ButtonRelease ends a pointer grab started by ButtonPress.
type ButtonRelease struct {
	Window       WindowID
	Chord        MouseChord
	RootX, RootY int
}

// ClientMessage is a protocol-level request from an application or pager.
// Type is the message atom name, Atoms holds the names of any atoms carried
// in Data (used by _NET_WM_STATE).
type ClientMessage struct {
	Window WindowID
	Type   string
	Data   [5]uint32
	Atoms  []string
}

// ScreenChange reports that outputs were added, removed or resized.
type ScreenChange struct{}

// ChildExited reports SIGCHLD; the controller reaps without blocking.
type ChildExited struct{}

// Shutdown asks the loop to exit after the current event.
type Shutdown struct{}

// Call runs Fn on the event loop goroutine. It is how out-of-loop callers
// (control socket, config watcher) reach the model without sharing it.
type Call struct {
	Fn func()
}

// Unknown is any event the connection does not translate.
type Unknown struct {
	Name string
}

func (MapRequest) event()       {}
func (DestroyNotify) event()    {}
func (UnmapNotify) event()      {}
func (ConfigureRequest) event() {}
func (EnterNotify) event()      {}
func (KeyPress) event()         {}
func (ButtonPress) event()      {}
func (PointerMotion) event()    {}
func (ButtonRelease) event()    {}
func (ClientMessage) event()    {}
func (ScreenChange) event()     {}
func (ChildExited) event()      {}
func (Shutdown) event()         {}
func (Call) event()             {}
func (Unknown) event()          {}

// ConnectionError wraps a failure talking to the display server. Lost is set
// when the connection itself is gone and no further requests can succeed.
type ConnectionError struct {
	Op   string
	Err  error
	Lost bool
}

func (e *ConnectionError) Error() string {
	if e.Lost {
		return fmt.Sprintf("%s: connection lost: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionLost reports whether err signals a dead display connection.
func IsConnectionLost(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce) && ce.Lost
}
