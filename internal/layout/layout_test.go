package layout

import (
	"testing"

	"github.com/1broseidon/stackwm/internal/platform"
)

func snapshot(ids ...platform.WindowID) Snapshot {
	s := Snapshot{}
	for _, id := range ids {
		s.Clients = append(s.Clients, Entry{ID: id})
	}
	if len(ids) > 0 {
		s.Focused, s.HasFocus = ids[0], true
	}
	return s
}

func assertNoOverlapWithin(t *testing.T, placements []Placement, bounds platform.Rect) {
	t.Helper()
	for i, a := range placements {
		if !a.Outer().Within(bounds) {
			t.Fatalf("placement %d (%+v) exceeds bounds %+v", a.ID, a.Outer(), bounds)
		}
		for _, b := range placements[i+1:] {
			if a.Outer().Overlaps(b.Outer()) {
				t.Fatalf("placements %d %+v and %d %+v overlap", a.ID, a.Outer(), b.ID, b.Outer())
			}
		}
	}
}

func TestMasterStack_OneMasterHalfSplitThreeClients(t *testing.T) {
	const w, h = 1000, 600
	screen := platform.Rect{X: 0, Y: 0, Width: w, Height: h}
	conf := Conf{MasterCount: 1, SplitRatio: 0.5}

	arr := Apply(MasterStack{}, snapshot(1, 2, 3), screen, conf)
	if len(arr.Placements) != 3 || len(arr.Hidden) != 0 {
		t.Fatalf("expected 3 placements and none hidden, got %+v", arr)
	}

	want := map[platform.WindowID]platform.Rect{
		1: {X: 0, Y: 0, Width: w / 2, Height: h},
		2: {X: w / 2, Y: 0, Width: w / 2, Height: h / 2},
		3: {X: w / 2, Y: h / 2, Width: w / 2, Height: h / 2},
	}
	area := 0
	for _, p := range arr.Placements {
		if p.Rect != want[p.ID] {
			t.Errorf("client %d: got %+v, want %+v", p.ID, p.Rect, want[p.ID])
		}
		area += p.Outer().Area()
	}
	if area != screen.Area() {
		t.Fatalf("placements cover %d px, want %d", area, screen.Area())
	}
	assertNoOverlapWithin(t, arr.Placements, screen)
}

func TestMasterStack_SingleSideTakesFullWidth(t *testing.T) {
	screen := platform.Rect{Width: 800, Height: 600}

	tests := []struct {
		name   string
		master int
		ids    []platform.WindowID
	}{
		{"only masters", 3, []platform.WindowID{1, 2}},
		{"no master pane", 0, []platform.WindowID{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := Apply(MasterStack{}, snapshot(tt.ids...), screen, Conf{MasterCount: tt.master, SplitRatio: 0.6})
			for _, p := range arr.Placements {
				if p.Rect.Width != screen.Width {
					t.Fatalf("client %d width %d, want %d", p.ID, p.Rect.Width, screen.Width)
				}
			}
			assertNoOverlapWithin(t, arr.Placements, screen)
		})
	}
}

func TestApply_ZeroTiledClientsIsEmpty(t *testing.T) {
	screen := platform.Rect{Width: 800, Height: 600}
	floatingOnly := Snapshot{Clients: []Entry{{ID: 1, Floating: true}, {ID: 2, Floating: true}}}

	for _, e := range []Engine{MasterStack{}, Monocle{}, Grid{}, Floating{}} {
		t.Run(e.Name(), func(t *testing.T) {
			if arr := Apply(e, Snapshot{}, screen, Conf{MasterCount: 1, SplitRatio: 0.5}); len(arr.Placements) != 0 || len(arr.Hidden) != 0 {
				t.Fatalf("empty snapshot produced %+v", arr)
			}
			if arr := Apply(e, floatingOnly, screen, Conf{MasterCount: 1, SplitRatio: 0.5}); len(arr.Placements) != 0 || len(arr.Hidden) != 0 {
				t.Fatalf("floating-only snapshot produced %+v", arr)
			}
		})
	}
}

func TestApply_FloatingClientsAreNeverPlaced(t *testing.T) {
	screen := platform.Rect{Width: 800, Height: 600}
	snap := Snapshot{Clients: []Entry{{ID: 1}, {ID: 2, Floating: true}, {ID: 3}}}

	arr := Apply(MasterStack{}, snap, screen, Conf{MasterCount: 1, SplitRatio: 0.5})
	if len(arr.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(arr.Placements))
	}
	for _, p := range arr.Placements {
		if p.ID == 2 {
			t.Fatalf("floating client was placed")
		}
	}
	for _, id := range arr.Hidden {
		if id == 2 {
			t.Fatalf("floating client was hidden")
		}
	}
}

func TestMonocle_OnlyFocusedPlaced(t *testing.T) {
	screen := platform.Rect{X: 100, Y: 50, Width: 800, Height: 600}
	snap := snapshot(1, 2, 3)
	snap.Focused = 2

	arr := Apply(Monocle{}, snap, screen, Conf{})
	if len(arr.Placements) != 1 || arr.Placements[0].ID != 2 || arr.Placements[0].Rect != screen {
		t.Fatalf("unexpected placements %+v", arr.Placements)
	}
	if len(arr.Hidden) != 2 {
		t.Fatalf("expected the two unfocused clients hidden, got %v", arr.Hidden)
	}
}

func TestGrid_CoversScreenWithoutOverlap(t *testing.T) {
	screen := platform.Rect{X: 0, Y: 0, Width: 1001, Height: 599}
	for n := 1; n <= 10; n++ {
		ids := make([]platform.WindowID, n)
		for i := range ids {
			ids[i] = platform.WindowID(i + 1)
		}
		arr := Apply(Grid{}, snapshot(ids...), screen, Conf{})
		if len(arr.Placements) != n {
			t.Fatalf("n=%d: got %d placements", n, len(arr.Placements))
		}
		area := 0
		for _, p := range arr.Placements {
			area += p.Outer().Area()
		}
		if area != screen.Area() {
			t.Fatalf("n=%d: covered %d px, want %d", n, area, screen.Area())
		}
		assertNoOverlapWithin(t, arr.Placements, screen)
	}
}

func TestCalculateGrid(t *testing.T) {
	tests := []struct{ n, rows, cols int }{
		{0, 0, 0}, {1, 1, 1}, {2, 1, 2}, {3, 2, 2}, {4, 2, 2}, {5, 2, 3}, {9, 3, 3}, {10, 3, 4},
	}
	for _, tt := range tests {
		rows, cols := CalculateGrid(tt.n)
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("CalculateGrid(%d) = %dx%d, want %dx%d", tt.n, rows, cols, tt.rows, tt.cols)
		}
	}
}

func TestApply_GapAndBorderPadding(t *testing.T) {
	screen := platform.Rect{X: 0, Y: 0, Width: 200, Height: 100}
	arr := Apply(MasterStack{}, snapshot(1), screen, Conf{MasterCount: 1, SplitRatio: 0.5, Gap: 10, BorderWidth: 3})
	want := platform.Rect{X: 10, Y: 10, Width: 174, Height: 74}
	if len(arr.Placements) != 1 || arr.Placements[0].Rect != want || arr.Placements[0].Border != 3 {
		t.Fatalf("got %+v, want %+v with border 3", arr.Placements, want)
	}

	gapless := Apply(MasterStack{}, snapshot(1), screen, Conf{MasterCount: 1, SplitRatio: 0.5, Gap: 10, BorderWidth: 3, Gapless: true})
	if gapless.Placements[0].Rect != (platform.Rect{X: 0, Y: 0, Width: 194, Height: 94}) {
		t.Fatalf("gapless placement %+v", gapless.Placements[0].Rect)
	}
}

func TestApply_TinyRegionsStayInsideBounds(t *testing.T) {
	screen := platform.Rect{X: 0, Y: 0, Width: 3, Height: 3}
	arr := Apply(MasterStack{}, snapshot(1), screen, Conf{MasterCount: 1, SplitRatio: 0.5, Gap: 10, BorderWidth: 3})
	if len(arr.Placements) != 1 {
		t.Fatalf("expected a placement")
	}
	if p := arr.Placements[0]; p.Rect != screen || p.Border != 0 {
		t.Fatalf("tiny region should be placed unpadded without border, got %+v", p)
	}
	assertNoOverlapWithin(t, arr.Placements, screen)
}

func TestMasterStack_PaddedPlacementsNeverOverlap(t *testing.T) {
	screen := platform.Rect{X: 1920, Y: 18, Width: 1280, Height: 1006}
	for master := 0; master <= 4; master++ {
		for n := 1; n <= 8; n++ {
			ids := make([]platform.WindowID, n)
			for i := range ids {
				ids[i] = platform.WindowID(100 + i)
			}
			conf := Conf{MasterCount: master, SplitRatio: 0.6, Gap: 5, BorderWidth: 2}
			arr := Apply(MasterStack{}, snapshot(ids...), screen, conf)
			if len(arr.Placements) != n {
				t.Fatalf("master=%d n=%d: %d placements", master, n, len(arr.Placements))
			}
			assertNoOverlapWithin(t, arr.Placements, screen)
		}
	}
}
