// Package keymap translates physical keys into CHIP-8 logical keys.
package keymap

// Layout is the physical keyboard block mapped onto the 4x4 keypad, row by row:
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
type Layout [4][4]rune

// keypad is the logical key at every position of the COSMAC VIP keypad
var keypad = [4][4]byte{
	{0x1, 0x2, 0x3, 0xC},
	{0x4, 0x5, 0x6, 0xD},
	{0x7, 0x8, 0x9, 0xE},
	{0xA, 0x0, 0xB, 0xF},
}

var DefaultLayout = Layout{
	{'1', '2', '3', '4'},
	{'q', 'w', 'e', 'r'},
	{'a', 's', 'd', 'f'},
	{'z', 'x', 'c', 'v'},
}

// AzertyLayout is the same block on an AZERTY keyboard
var AzertyLayout = Layout{
	{'&', 'é', '"', '\''},
	{'a', 'z', 'e', 'r'},
	{'q', 's', 'd', 'f'},
	{'w', 'x', 'c', 'v'},
}

// LookupMap returns the logical key of every rune of the layout
func LookupMap(layout Layout) map[rune]byte {
	m := make(map[rune]byte, 16)
	for row := range layout {
		for col, r := range layout[row] {
			m[r] = keypad[row][col]
		}
	}

	return m
}
