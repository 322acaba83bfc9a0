package keymap_test

import (
	"testing"

	"github.com/guslan/chip8/keymap"
)

func TestLookupMap(t *testing.T) {
	m := keymap.LookupMap(keymap.DefaultLayout)

	if len(m) != 16 {
		t.Fatalf(`len(LookupMap()) = %d, expected 16`, len(m))
	}

	expected := map[rune]byte{'1': 0x1, '4': 0xC, 'q': 0x4, 'x': 0x0, 'z': 0xA, 'v': 0xF}
	for r, k := range expected {
		if m[r] != k {
			t.Errorf(`LookupMap()[%q] = %X, expected %X`, r, m[r], k)
		}
	}

	seen := map[byte]bool{}
	for _, k := range m {
		seen[k] = true
	}
	if len(seen) != 16 {
		t.Fatalf(`layout does not cover every logical key`)
	}
}
