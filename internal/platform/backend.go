package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns Width*Height, or zero for empty rectangles.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect returns the overlapping region of r and o (empty if disjoint).
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Within reports whether r lies entirely inside o.
func (r Rect) Within(o Rect) bool {
	return r.X >= o.X && r.Y >= o.Y &&
		r.X+r.Width <= o.X+o.Width && r.Y+r.Height <= o.Y+o.Height
}

// Insets is the space reserved along each edge of a display.
type Insets struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Display describes a physical output as reported by the display server.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	// Reserved is what dock struts took off the output to get Bounds.
	Reserved Insets
}

// WindowInfo is what the connection can tell about a window before it is
// managed. It feeds the floating classification predicate.
type WindowInfo struct {
	ID        WindowID
	Class     string
	Instance  string
	Title     string
	Types     []string // _NET_WM_WINDOW_TYPE atom names
	Transient bool
	Geometry  Rect
	// Unmanaged windows (override-redirect, docks, desktops) are mapped on
	// request but never enter the model.
	Unmanaged bool
	// Dock windows may reserve screen edges with struts.
	Dock bool
}

// DesktopState is published back to the display server after each
// transition so pagers and bars can follow along.
type DesktopState struct {
	Names          []string
	Current        int
	Clients        []WindowID
	ClientDesktops map[WindowID]int
	Active         WindowID
}

// Conn abstracts the display-server operations the window manager needs.
type Conn interface {
	Screens() ([]Display, error)
	ExistingWindows() ([]WindowID, error)
	WindowInfo(id WindowID) (WindowInfo, error)

	Manage(id WindowID) error
	Map(id WindowID) error
	Unmap(id WindowID) error
	Configure(id WindowID, r Rect, border int) error
	ConfigurePassThrough(req ConfigureRequest) error
	NotifyGeometry(id WindowID, r Rect, border int) error
	Raise(id WindowID) error
	Focus(id WindowID) error
	SetBorderColor(id WindowID, color uint32) error
	SetFullscreen(id WindowID, on bool) error
	Close(id WindowID) error

	GrabKeys(chords []Chord) error
	UngrabKeys() error
	GrabButtons(chords []MouseChord) error
	UngrabButtons() error
	Publish(state DesktopState) error

	// NextEvent blocks until the next event is available.
	NextEvent() (Event, error)
	// Restore undoes global changes made to the display (root event mask,
	// input focus, supporting check window).
	Restore() error
}

// Poster accepts events from outside the display connection (signals, the
// control socket, the config watcher) and queues them for NextEvent.
type Poster interface {
	Post(ev Event)
}
