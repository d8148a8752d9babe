package wm

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/stackwm/internal/platform"
)

// fakeConn is an in-memory display. It replays a scripted event queue and
// records every request made against it.
type fakeConn struct {
	displays []platform.Display
	existing []platform.WindowID
	infos    map[platform.WindowID]platform.WindowInfo

	events []platform.Event
	// failAfter makes NextEvent report a lost connection once the queue is
	// drained. Without it an empty queue yields Shutdown.
	failAfter bool
	// lostOn makes the named request kind fail with a lost connection.
	lostOn string
	// failOn makes the named request kind fail while the connection stays
	// usable.
	failOn string
	// badReads is the number of NextEvent calls that fail with a
	// recoverable error before the queue is served.
	badReads int

	calls      []string
	mapped     map[platform.WindowID]bool
	geometry   map[platform.WindowID]platform.Rect
	borders    map[platform.WindowID]uint32
	focused    platform.WindowID
	grabbed    int
	published  []platform.DesktopState
	closed     []platform.WindowID
	passedThru []platform.ConfigureRequest
	notified   []platform.WindowID
	restores   int
	ungrabs    int
	buttons    []platform.MouseChord
	// buttonUngrabs counts UngrabButtons calls.
	buttonUngrabs int
	// screenQueries counts Screens calls.
	screenQueries int
}

func newFakeConn(screens ...platform.Rect) *fakeConn {
	f := &fakeConn{
		infos:    make(map[platform.WindowID]platform.WindowInfo),
		mapped:   make(map[platform.WindowID]bool),
		geometry: make(map[platform.WindowID]platform.Rect),
		borders:  make(map[platform.WindowID]uint32),
	}
	for i, r := range screens {
		f.displays = append(f.displays, platform.Display{ID: i, Name: fmt.Sprintf("OUT-%d", i), Bounds: r})
	}
	return f
}

var (
	errLost   = &platform.ConnectionError{Op: "fake", Err: errors.New("broken pipe"), Lost: true}
	errFailed = &platform.ConnectionError{Op: "fake", Err: errors.New("bad window")}
)

func (f *fakeConn) record(kind string, id platform.WindowID) error {
	f.calls = append(f.calls, fmt.Sprintf("%s %d", kind, id))
	switch kind {
	case f.lostOn:
		return errLost
	case f.failOn:
		return errFailed
	}
	return nil
}

func (f *fakeConn) Screens() ([]platform.Display, error) {
	f.screenQueries++
	return slices.Clone(f.displays), nil
}

func (f *fakeConn) ExistingWindows() ([]platform.WindowID, error) { return f.existing, nil }

func (f *fakeConn) WindowInfo(id platform.WindowID) (platform.WindowInfo, error) {
	if info, ok := f.infos[id]; ok {
		return info, nil
	}
	return platform.WindowInfo{ID: id, Class: "XTerm"}, nil
}

func (f *fakeConn) Manage(id platform.WindowID) error { return f.record("manage", id) }

func (f *fakeConn) Map(id platform.WindowID) error {
	f.mapped[id] = true
	return f.record("map", id)
}

func (f *fakeConn) Unmap(id platform.WindowID) error {
	delete(f.mapped, id)
	return f.record("unmap", id)
}

func (f *fakeConn) Configure(id platform.WindowID, r platform.Rect, border int) error {
	f.geometry[id] = r
	return f.record("configure", id)
}

func (f *fakeConn) ConfigurePassThrough(req platform.ConfigureRequest) error {
	f.passedThru = append(f.passedThru, req)
	return f.record("passthrough", req.Window)
}

func (f *fakeConn) NotifyGeometry(id platform.WindowID, r platform.Rect, border int) error {
	f.notified = append(f.notified, id)
	return f.record("notify", id)
}

func (f *fakeConn) Raise(id platform.WindowID) error { return f.record("raise", id) }

func (f *fakeConn) Focus(id platform.WindowID) error {
	f.focused = id
	return f.record("focus", id)
}

func (f *fakeConn) SetBorderColor(id platform.WindowID, color uint32) error {
	f.borders[id] = color
	return f.record("border", id)
}

func (f *fakeConn) SetFullscreen(id platform.WindowID, on bool) error {
	return f.record("fullscreen", id)
}

func (f *fakeConn) Close(id platform.WindowID) error {
	f.closed = append(f.closed, id)
	return f.record("close", id)
}

func (f *fakeConn) GrabKeys(chords []platform.Chord) error {
	f.grabbed = len(chords)
	return f.record("grab", 0)
}

func (f *fakeConn) UngrabKeys() error {
	f.ungrabs++
	return f.record("ungrab", 0)
}

func (f *fakeConn) GrabButtons(chords []platform.MouseChord) error {
	f.buttons = slices.Clone(chords)
	return f.record("grab-buttons", 0)
}

func (f *fakeConn) UngrabButtons() error {
	f.buttonUngrabs++
	f.buttons = nil
	return f.record("ungrab-buttons", 0)
}

func (f *fakeConn) Publish(state platform.DesktopState) error {
	f.published = append(f.published, state)
	return nil
}

func (f *fakeConn) NextEvent() (platform.Event, error) {
	if f.badReads > 0 {
		f.badReads--
		return nil, errFailed
	}
	if len(f.events) == 0 {
		if f.failAfter {
			return nil, errLost
		}
		return platform.Shutdown{}, nil
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeConn) Restore() error {
	f.restores++
	return f.record("restore", 0)
}

func (f *fakeConn) lastDesktop() platform.DesktopState {
	if len(f.published) == 0 {
		return platform.DesktopState{}
	}
	return f.published[len(f.published)-1]
}
