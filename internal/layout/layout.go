// Package layout turns the tiled windows of a workspace into screen
// placements.
//
// An Engine only decides how to split a rectangle between windows. Apply
// wraps every engine with the shared policy: floating windows are never
// placed, placements are clipped to the screen and then shrunk by the gap
// and border sizes so that the outer edges of neighbouring windows never
// touch.
package layout

import (
	"math"

	"github.com/1broseidon/stackwm/internal/platform"
)

// Conf holds the mutable parameters that steer an engine.
type Conf struct {
	MasterCount int
	SplitRatio  float64
	Gap         int
	BorderWidth int
	// Gapless drops the gap for this layout regardless of Gap.
	Gapless bool
	// FollowFocus re-runs the layout when only the focus changed.
	FollowFocus bool
	// NoWrap stops focus and swap cycling at either end of the stack.
	NoWrap bool
}

const (
	MinSplitRatio = 0.05
	MaxSplitRatio = 0.95

	DefaultMasterCount = 1
	DefaultSplitRatio  = 0.6
	DefaultRatioStep   = 0.05
)

// Clamp forces every parameter back into its valid range.
func (c Conf) Clamp() Conf {
	if c.MasterCount < 0 {
		c.MasterCount = 0
	}
	if c.SplitRatio < MinSplitRatio || math.IsNaN(c.SplitRatio) {
		c.SplitRatio = MinSplitRatio
	}
	if c.SplitRatio > MaxSplitRatio {
		c.SplitRatio = MaxSplitRatio
	}
	if c.Gap < 0 {
		c.Gap = 0
	}
	if c.BorderWidth < 0 {
		c.BorderWidth = 0
	}
	return c
}

// Entry is one client of a stack snapshot.
type Entry struct {
	ID       platform.WindowID
	Floating bool
}

// Snapshot is the read-only view of a workspace stack handed to a layout.
type Snapshot struct {
	Clients  []Entry // stack order
	Focused  platform.WindowID
	HasFocus bool
}

// Placement positions one window. Rect is the geometry handed to the
// display server: X/Y is the outer corner of the border, Width/Height is the
// inner size.
type Placement struct {
	ID     platform.WindowID
	Rect   platform.Rect
	Border int
}

// Outer returns the area the window occupies including its border.
func (p Placement) Outer() platform.Rect {
	return platform.Rect{
		X:      p.Rect.X,
		Y:      p.Rect.Y,
		Width:  p.Rect.Width + 2*p.Border,
		Height: p.Rect.Height + 2*p.Border,
	}
}

// Arrangement is the outcome of a layout pass. Tiled clients that got no
// placement are listed in Hidden; floating clients appear in neither.
type Arrangement struct {
	Placements []Placement
	Hidden     []platform.WindowID
}

// Engine splits a rectangle between tiled windows. Implementations must not
// return overlapping regions or regions outside r; windows they leave out
// are hidden.
type Engine interface {
	Name() string
	Arrange(tiled []platform.WindowID, focused platform.WindowID, r platform.Rect, conf Conf) []Placement
}

// Passive engines leave every window where the client put it.
type Passive interface {
	Passive() bool
}

// IsPassive reports whether e leaves windows at their own geometry.
func IsPassive(e Engine) bool {
	p, ok := e.(Passive)
	return ok && p.Passive()
}

// Apply runs e over the non-floating clients of snap inside r.
func Apply(e Engine, snap Snapshot, r platform.Rect, conf Conf) Arrangement {
	if IsPassive(e) {
		return Arrangement{}
	}

	tiled := make([]platform.WindowID, 0, len(snap.Clients))
	for _, c := range snap.Clients {
		if !c.Floating {
			tiled = append(tiled, c.ID)
		}
	}
	if len(tiled) == 0 || r.Empty() {
		return Arrangement{}
	}

	focused := platform.WindowID(0)
	if snap.HasFocus {
		focused = snap.Focused
	}

	conf = conf.Clamp()
	gap := conf.Gap
	if conf.Gapless {
		gap = 0
	}

	placed := make(map[platform.WindowID]bool, len(tiled))
	var out Arrangement
	for _, p := range e.Arrange(tiled, focused, r, conf) {
		region := p.Rect.Intersect(r)
		if region.Empty() || placed[p.ID] {
			continue
		}
		placed[p.ID] = true
		out.Placements = append(out.Placements, pad(p.ID, region, gap, conf.BorderWidth))
	}
	for _, id := range tiled {
		if !placed[id] {
			out.Hidden = append(out.Hidden, id)
		}
	}
	return out
}

// pad shrinks region by gap and border on every side. Regions too small to
// carry the padding first lose the gap, then the border.
func pad(id platform.WindowID, region platform.Rect, gap, border int) Placement {
	for _, try := range []struct{ gap, border int }{{gap, border}, {0, border}} {
		padding := 2 * (try.gap + try.border)
		if region.Width > padding && region.Height > padding {
			return Placement{
				ID: id,
				Rect: platform.Rect{
					X:      region.X + try.gap,
					Y:      region.Y + try.gap,
					Width:  region.Width - padding,
					Height: region.Height - padding,
				},
				Border: try.border,
			}
		}
	}
	return Placement{ID: id, Rect: region}
}
