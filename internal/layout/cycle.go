package layout

import (
	"fmt"

	"github.com/1broseidon/stackwm/internal/platform"
)

// Message adjusts the parameters of the active layout.
type Message int

const (
	IncreaseMaster Message = iota
	DecreaseMaster
	ExpandMain
	ShrinkMain
	NextVariant
	PreviousVariant
	Reset
)

var messageNames = map[Message]string{
	IncreaseMaster:  "increase-master",
	DecreaseMaster:  "decrease-master",
	ExpandMain:      "expand-main",
	ShrinkMain:      "shrink-main",
	NextVariant:     "next-layout",
	PreviousVariant: "previous-layout",
	Reset:           "reset-layout",
}

func (m Message) String() string {
	if name, ok := messageNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Message(%d)", int(m))
}

// ParseMessage maps a message name (as used in key bindings) back to a
// Message.
func ParseMessage(name string) (Message, bool) {
	for m, n := range messageNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

// Variant is one entry of a workspace's layout cycle.
type Variant struct {
	Name   string
	Engine Engine
	// Conf holds the configured defaults; Reset returns to them.
	Conf Conf
}

type variantState struct {
	Variant
	current Conf
}

// Cycle is the ordered set of layouts a workspace can switch between, each
// keeping its own parameters.
type Cycle struct {
	variants []variantState
	pos      int
	step     float64
}

// NewCycle builds a cycle positioned on the first variant. ratioStep is the
// amount ExpandMain/ShrinkMain move the split ratio.
func NewCycle(ratioStep float64, variants ...Variant) (*Cycle, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("layout cycle needs at least one variant")
	}
	if ratioStep <= 0 || ratioStep > 1 {
		ratioStep = DefaultRatioStep
	}
	c := &Cycle{step: ratioStep}
	for _, v := range variants {
		if v.Engine == nil {
			return nil, fmt.Errorf("layout %q has no engine", v.Name)
		}
		v.Conf = v.Conf.Clamp()
		c.variants = append(c.variants, variantState{Variant: v, current: v.Conf})
	}
	return c, nil
}

// Clone returns an independent copy so each workspace owns its parameters.
func (c *Cycle) Clone() *Cycle {
	out := &Cycle{pos: c.pos, step: c.step}
	out.variants = append([]variantState(nil), c.variants...)
	return out
}

// Name returns the name of the active variant.
func (c *Cycle) Name() string {
	return c.variants[c.pos].Name
}

// Position returns the index of the active variant and the cycle length.
func (c *Cycle) Position() (int, int) {
	return c.pos, len(c.variants)
}

// Conf returns the live parameters of the active variant.
func (c *Cycle) Conf() Conf {
	return c.variants[c.pos].current
}

// Engine returns the engine of the active variant.
func (c *Cycle) Engine() Engine {
	return c.variants[c.pos].Engine
}

// Select activates the variant with the given name.
func (c *Cycle) Select(name string) error {
	for i, v := range c.variants {
		if v.Name == name {
			c.pos = i
			return nil
		}
	}
	return fmt.Errorf("unknown layout: %q", name)
}

// SetSpacing applies gap and border sizes to every variant.
func (c *Cycle) SetSpacing(gap, border int) {
	for i := range c.variants {
		v := &c.variants[i]
		v.Conf.Gap, v.Conf.BorderWidth = gap, border
		v.current.Gap, v.current.BorderWidth = gap, border
		v.Conf = v.Conf.Clamp()
		v.current = v.current.Clamp()
	}
}

// Handle applies a layout message. Parameters are clamped, never left
// outside their valid range. Reports whether anything changed.
func (c *Cycle) Handle(msg Message) bool {
	v := &c.variants[c.pos]
	before, beforePos := v.current, c.pos

	switch msg {
	case IncreaseMaster:
		v.current.MasterCount++
	case DecreaseMaster:
		v.current.MasterCount--
	case ExpandMain:
		v.current.SplitRatio += c.step
	case ShrinkMain:
		v.current.SplitRatio -= c.step
	case NextVariant:
		c.pos = (c.pos + 1) % len(c.variants)
	case PreviousVariant:
		c.pos = (c.pos - 1 + len(c.variants)) % len(c.variants)
	case Reset:
		v.current = v.Conf
	}
	v.current = v.current.Clamp()

	return c.pos != beforePos || v.current != before
}

// Apply arranges snap inside r using the active variant.
func (c *Cycle) Apply(snap Snapshot, r platform.Rect) Arrangement {
	v := c.variants[c.pos]
	return Apply(v.Engine, snap, r, v.current)
}
