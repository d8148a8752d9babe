package keys

import (
	"fmt"
	"sort"
	"strings"
)

// Modifier is a bitmask of held modifier keys. The bit values match the X11
// core protocol modifier masks so the x11 backend can use them unchanged.
type Modifier uint16

const (
	ModShift   Modifier = 1 << 0
	ModControl Modifier = 1 << 2
	ModAlt     Modifier = 1 << 3 // Mod1
	ModSuper   Modifier = 1 << 6 // Mod4
)

// Relevant is the set of modifiers that take part in chord matching. Lock
// style modifiers (CapsLock, NumLock) are stripped before lookup.
const Relevant = ModShift | ModControl | ModAlt | ModSuper

var modifierNames = map[string]Modifier{
	"S":       ModShift,
	"Shift":   ModShift,
	"C":       ModControl,
	"Ctrl":    ModControl,
	"Control": ModControl,
	"A":       ModAlt,
	"Alt":     ModAlt,
	"Mod1":    ModAlt,
	"M":       ModSuper,
	"Super":   ModSuper,
	"Mod4":    ModSuper,
}

// Chord is a modifier set plus a key symbol name, e.g. M-S-Return.
type Chord struct {
	Mods Modifier
	Key  string
}

// Parse reads a chord in either the short form ("M-S-j") or the long
// xgbutil form ("Mod4-Shift-j"). The key symbol is always the last segment.
func Parse(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Chord{}, fmt.Errorf("empty key chord")
	}

	parts := strings.Split(s, "-")
	// "M--" binds the minus key.
	if strings.HasSuffix(s, "--") {
		parts = append(parts[:len(parts)-2], "minus")
	}

	key := parts[len(parts)-1]
	if key == "" {
		return Chord{}, fmt.Errorf("key chord %q has no key", s)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[p]
		if !ok {
			return Chord{}, fmt.Errorf("key chord %q: unknown modifier %q", s, p)
		}
		mods |= m
	}

	return Chord{Mods: mods, Key: normalizeKey(key)}, nil
}

// MustParse is Parse for chords known at compile time.
func MustParse(s string) Chord {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the chord in the short form accepted by Parse.
func (c Chord) String() string {
	var b strings.Builder
	for _, m := range []struct {
		mask Modifier
		name string
	}{
		{ModSuper, "M"},
		{ModAlt, "A"},
		{ModControl, "C"},
		{ModShift, "S"},
	} {
		if c.Mods&m.mask != 0 {
			b.WriteString(m.name)
			b.WriteByte('-')
		}
	}
	b.WriteString(c.Key)
	return b.String()
}

// Normalize strips modifiers that never take part in matching.
func (c Chord) Normalize() Chord {
	return Chord{Mods: c.Mods & Relevant, Key: normalizeKey(c.Key)}
}

// Sort orders chords by their string form so grabs are issued
// deterministically.
func Sort(chords []Chord) {
	sort.Slice(chords, func(i, j int) bool {
		return chords[i].String() < chords[j].String()
	})
}

// Single letters are matched case-insensitively; shift is expressed through
// the modifier set, not the case of the key symbol.
func normalizeKey(k string) string {
	if len(k) == 1 {
		return strings.ToLower(k)
	}
	return k
}
