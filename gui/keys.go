package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8/keymap"
)

// raylib reports physical keys by their position on a US keyboard,
// so only ASCII digits and letters can be looked up.
func runeToKey(r rune) (int32, bool) {
	switch {
	case r >= '0' && r <= '9':
		return rl.KeyZero + int32(r-'0'), true
	case r >= 'a' && r <= 'z':
		return rl.KeyA + int32(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return rl.KeyA + int32(r-'A'), true
	}

	return 0, false
}

// keyboardLookupMap returns the logical key of every raylib key of the layout
func keyboardLookupMap(layout keymap.Layout) map[int32]byte {
	m := map[int32]byte{}
	for r, k := range keymap.LookupMap(layout) {
		if code, ok := runeToKey(r); ok {
			m[code] = k
		}
	}

	return m
}
