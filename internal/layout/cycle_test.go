package layout

import "testing"

func testCycle(t *testing.T) *Cycle {
	t.Helper()
	c, err := NewCycle(0.1,
		Variant{Name: "[side]", Engine: MasterStack{}, Conf: Conf{MasterCount: 1, SplitRatio: 0.6}},
		Variant{Name: "[mono]", Engine: Monocle{}, Conf: Conf{FollowFocus: true}},
	)
	if err != nil {
		t.Fatalf("NewCycle: %v", err)
	}
	return c
}

func TestNewCycle_Errors(t *testing.T) {
	if _, err := NewCycle(0.05); err == nil {
		t.Fatalf("expected error for empty cycle")
	}
	if _, err := NewCycle(0.05, Variant{Name: "broken"}); err == nil {
		t.Fatalf("expected error for variant without engine")
	}
}

func TestCycle_MasterCountClampsAtZero(t *testing.T) {
	c := testCycle(t)
	c.Handle(DecreaseMaster)
	if got := c.Conf().MasterCount; got != 0 {
		t.Fatalf("master count = %d, want 0", got)
	}
	if changed := c.Handle(DecreaseMaster); changed {
		t.Fatalf("decrease at zero should report no change")
	}
	if got := c.Conf().MasterCount; got != 0 {
		t.Fatalf("master count went negative: %d", got)
	}
	c.Handle(IncreaseMaster)
	c.Handle(IncreaseMaster)
	if got := c.Conf().MasterCount; got != 2 {
		t.Fatalf("master count = %d, want 2", got)
	}
}

func TestCycle_SplitRatioStaysInOpenInterval(t *testing.T) {
	c := testCycle(t)
	for range 50 {
		c.Handle(ExpandMain)
	}
	if r := c.Conf().SplitRatio; r >= 1 || r != MaxSplitRatio {
		t.Fatalf("ratio after expanding = %v, want %v", r, MaxSplitRatio)
	}
	for range 50 {
		c.Handle(ShrinkMain)
	}
	if r := c.Conf().SplitRatio; r <= 0 || r != MinSplitRatio {
		t.Fatalf("ratio after shrinking = %v, want %v", r, MinSplitRatio)
	}
}

func TestCycle_VariantsKeepTheirOwnParameters(t *testing.T) {
	c := testCycle(t)
	c.Handle(IncreaseMaster)
	c.Handle(NextVariant)
	if c.Name() != "[mono]" {
		t.Fatalf("expected [mono], got %s", c.Name())
	}
	if !c.Conf().FollowFocus {
		t.Fatalf("expected monocle variant to follow focus")
	}
	c.Handle(NextVariant)
	if c.Name() != "[side]" || c.Conf().MasterCount != 2 {
		t.Fatalf("expected [side] with master 2, got %s master %d", c.Name(), c.Conf().MasterCount)
	}
	c.Handle(PreviousVariant)
	if c.Name() != "[mono]" {
		t.Fatalf("previous should wrap to [mono], got %s", c.Name())
	}
}

func TestCycle_ResetRestoresDefaults(t *testing.T) {
	c := testCycle(t)
	c.Handle(IncreaseMaster)
	c.Handle(ExpandMain)
	c.Handle(Reset)
	if got := c.Conf(); got.MasterCount != 1 || got.SplitRatio != 0.6 {
		t.Fatalf("reset conf = %+v", got)
	}
}

func TestCycle_CloneIsIndependent(t *testing.T) {
	c := testCycle(t)
	clone := c.Clone()
	clone.Handle(IncreaseMaster)
	clone.Handle(NextVariant)
	if c.Conf().MasterCount != 1 || c.Name() != "[side]" {
		t.Fatalf("mutating the clone changed the original: %s %+v", c.Name(), c.Conf())
	}
}

func TestCycle_SetSpacingSurvivesReset(t *testing.T) {
	c := testCycle(t)
	c.SetSpacing(7, 3)
	c.Handle(Reset)
	if got := c.Conf(); got.Gap != 7 || got.BorderWidth != 3 {
		t.Fatalf("spacing lost after reset: %+v", got)
	}
}

func TestParseMessage(t *testing.T) {
	for m := range messageNames {
		got, ok := ParseMessage(m.String())
		if !ok || got != m {
			t.Errorf("ParseMessage(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseMessage("bogus"); ok {
		t.Errorf("expected bogus message to be rejected")
	}
}
