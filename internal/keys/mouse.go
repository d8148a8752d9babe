package keys

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Button is a pointer button number as used by the X11 core protocol.
type Button uint8

const (
	ButtonLeft       Button = 1
	ButtonMiddle     Button = 2
	ButtonRight      Button = 3
	ButtonScrollUp   Button = 4
	ButtonScrollDown Button = 5
)

var buttonNames = map[string]Button{
	"Left":       ButtonLeft,
	"Middle":     ButtonMiddle,
	"Right":      ButtonRight,
	"ScrollUp":   ButtonScrollUp,
	"ScrollDown": ButtonScrollDown,
}

// MouseChord is a modifier set plus a pointer button, e.g. M-Button1.
type MouseChord struct {
	Mods   Modifier
	Button Button
}

// ParseMouse reads a pointer chord. The button is the last segment, either
// ButtonN (1-5) or one of Left, Middle, Right, ScrollUp, ScrollDown.
func ParseMouse(s string) (MouseChord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MouseChord{}, fmt.Errorf("empty pointer chord")
	}
	parts := strings.Split(s, "-")

	button, err := parseButton(parts[len(parts)-1])
	if err != nil {
		return MouseChord{}, fmt.Errorf("pointer chord %q: %w", s, err)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[p]
		if !ok {
			return MouseChord{}, fmt.Errorf("pointer chord %q: unknown modifier %q", s, p)
		}
		mods |= m
	}
	return MouseChord{Mods: mods, Button: button}, nil
}

func parseButton(s string) (Button, error) {
	if b, ok := buttonNames[s]; ok {
		return b, nil
	}
	if rest, ok := strings.CutPrefix(s, "Button"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 1 && n <= 5 {
			return Button(n), nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

// String renders the chord as M-S-Button1.
func (c MouseChord) String() string {
	key := Chord{Mods: c.Mods, Key: "Button" + strconv.Itoa(int(c.Button))}
	return key.String()
}

// Normalize strips modifiers that never take part in matching.
func (c MouseChord) Normalize() MouseChord {
	return MouseChord{Mods: c.Mods & Relevant, Button: c.Button}
}

// SortMouse orders pointer chords by their string form.
func SortMouse(chords []MouseChord) {
	sort.Slice(chords, func(i, j int) bool {
		return chords[i].String() < chords[j].String()
	})
}
