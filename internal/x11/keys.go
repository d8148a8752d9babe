package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/platform"
)

type grabKey struct {
	code xproto.Keycode
	mods uint16
}

// GrabKeys replaces the current root window grabs with chords. Each chord is
// grabbed once per lock modifier combination so CapsLock and NumLock do not
// break bindings.
func (c *Connection) GrabKeys(chords []platform.Chord) error {
	if err := c.UngrabKeys(); err != nil {
		return err
	}

	var errs []error
	for _, chord := range chords {
		codes := keybind.StrToKeycodes(c.xu, chord.Key)
		if len(codes) == 0 {
			errs = append(errs, fmt.Errorf("no keycode for %q", chord.String()))
			continue
		}
		for _, code := range codes {
			c.grabbed[grabKey{code: code, mods: uint16(chord.Mods)}] = chord
			for _, mods := range grabMasks(uint16(chord.Mods), c.ignoreMods) {
				err := xproto.GrabKeyChecked(c.conn, true, c.root, mods, code,
					xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
				if err != nil {
					errs = append(errs, fmt.Errorf("grab %s: %w", chord.String(), err))
					break
				}
			}
		}
	}
	return c.wrap("grab keys", errors.Join(errs...))
}

// UngrabKeys releases every key grab on the root window.
func (c *Connection) UngrabKeys() error {
	clear(c.grabbed)
	err := xproto.UngrabKeyChecked(c.conn, xproto.GrabAny, c.root, xproto.ModMaskAny).Check()
	return c.wrap("ungrab keys", err)
}

// chordFor maps a key press back to the chord that was grabbed for it.
func (c *Connection) chordFor(ev xproto.KeyPressEvent) (platform.Chord, bool) {
	chord, ok := c.grabbed[grabKey{code: ev.Detail, mods: ev.State & uint16(keys.Relevant)}]
	return chord, ok
}

// grabMasks returns mods combined with every ignored lock combination.
func grabMasks(mods uint16, ignore []uint16) []uint16 {
	if len(ignore) == 0 {
		return []uint16{mods}
	}
	out := make([]uint16, 0, len(ignore))
	for _, ign := range ignore {
		out = append(out, mods|ign)
	}
	return out
}

func configureIgnoreMods(xu *xgbutil.XUtil) []uint16 {
	return lockCombinations(
		uint16(xproto.ModMaskLock),
		modMaskForKeysym(xu, "Num_Lock"),
		modMaskForKeysym(xu, "Scroll_Lock"),
	)
}

// lockCombinations returns every subset of the distinct non-zero lock masks,
// including the empty one.
func lockCombinations(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
