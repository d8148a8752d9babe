package layout

import (
	"fmt"
	"math"

	"github.com/1broseidon/stackwm/internal/platform"
)

// Algorithm names a built-in engine.
type Algorithm string

const (
	AlgorithmMasterStack Algorithm = "master-stack" // Master pane left, stack right.
	AlgorithmMonocle     Algorithm = "monocle"      // Focused window fills the screen.
	AlgorithmGrid        Algorithm = "grid"         // Dynamic grid based on count.
	AlgorithmFloating    Algorithm = "floating"     // Windows keep their own geometry.
)

// Lookup returns the built-in engine for an algorithm name.
func Lookup(a Algorithm) (Engine, error) {
	switch a {
	case AlgorithmMasterStack:
		return MasterStack{}, nil
	case AlgorithmMonocle:
		return Monocle{}, nil
	case AlgorithmGrid:
		return Grid{}, nil
	case AlgorithmFloating:
		return Floating{}, nil
	default:
		return nil, fmt.Errorf("unknown layout algorithm: %q", a)
	}
}

// MasterStack puts the first MasterCount windows in a left column sized by
// SplitRatio and stacks the rest in a right column. When either side is
// empty the other takes the whole width.
type MasterStack struct{}

func (MasterStack) Name() string { return string(AlgorithmMasterStack) }

func (MasterStack) Arrange(tiled []platform.WindowID, _ platform.WindowID, r platform.Rect, conf Conf) []Placement {
	n := len(tiled)
	if n == 0 {
		return nil
	}

	nMain := min(conf.MasterCount, n)
	nStack := n - nMain
	if nMain == 0 || nStack == 0 {
		return zip(tiled, Rows(r, n))
	}

	mainWidth := int(float64(r.Width) * conf.SplitRatio)
	mainWidth = max(1, min(mainWidth, r.Width-1))

	mainRegion := platform.Rect{X: r.X, Y: r.Y, Width: mainWidth, Height: r.Height}
	stackRegion := platform.Rect{X: r.X + mainWidth, Y: r.Y, Width: r.Width - mainWidth, Height: r.Height}

	out := zip(tiled[:nMain], Rows(mainRegion, nMain))
	return append(out, zip(tiled[nMain:], Rows(stackRegion, nStack))...)
}

// Monocle gives the whole rectangle to the focused window, or to the head of
// the stack when the focused window is not tiled. Everything else is hidden.
type Monocle struct{}

func (Monocle) Name() string { return string(AlgorithmMonocle) }

func (Monocle) Arrange(tiled []platform.WindowID, focused platform.WindowID, r platform.Rect, _ Conf) []Placement {
	if len(tiled) == 0 {
		return nil
	}
	target := tiled[0]
	for _, id := range tiled {
		if id == focused {
			target = id
			break
		}
	}
	return []Placement{{ID: target, Rect: r}}
}

// Grid arranges windows in a near-square grid, the last row stretching to
// fill the width.
type Grid struct{}

func (Grid) Name() string { return string(AlgorithmGrid) }

func (Grid) Arrange(tiled []platform.WindowID, _ platform.WindowID, r platform.Rect, _ Conf) []Placement {
	n := len(tiled)
	if n == 0 {
		return nil
	}

	rows, cols := CalculateGrid(n)
	out := make([]Placement, 0, n)
	for row, rowRect := range Rows(r, rows) {
		first := row * cols
		count := min(cols, n-first)
		out = append(out, zip(tiled[first:first+count], Columns(rowRect, count))...)
	}
	return out
}

// Floating leaves every window alone.
type Floating struct{}

func (Floating) Name() string { return string(AlgorithmFloating) }

func (Floating) Arrange([]platform.WindowID, platform.WindowID, platform.Rect, Conf) []Placement {
	return nil
}

func (Floating) Passive() bool { return true }

// CalculateGrid determines the grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows <= 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// Rows splits r into n horizontal bands of equal height. Rounding is spread
// so that the bands tile r exactly.
func Rows(r platform.Rect, n int) []platform.Rect {
	if n <= 0 {
		return nil
	}
	out := make([]platform.Rect, n)
	for i := range n {
		y0 := r.Height * i / n
		y1 := r.Height * (i + 1) / n
		out[i] = platform.Rect{X: r.X, Y: r.Y + y0, Width: r.Width, Height: y1 - y0}
	}
	return out
}

// Columns splits r into n vertical bands of equal width.
func Columns(r platform.Rect, n int) []platform.Rect {
	if n <= 0 {
		return nil
	}
	out := make([]platform.Rect, n)
	for i := range n {
		x0 := r.Width * i / n
		x1 := r.Width * (i + 1) / n
		out[i] = platform.Rect{X: r.X + x0, Y: r.Y, Width: x1 - x0, Height: r.Height}
	}
	return out
}

func zip(ids []platform.WindowID, regions []platform.Rect) []Placement {
	out := make([]Placement, 0, len(ids))
	for i, id := range ids {
		if i >= len(regions) {
			break
		}
		out = append(out, Placement{ID: id, Rect: regions[i]})
	}
	return out
}
