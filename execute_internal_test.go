package chip8

import (
	"io"
	"log/slog"
	"testing"
)

// TestExecuteHandlesEveryOp fails (by panicking) if an operation was added
// to the instruction set without an execution rule.
func TestExecuteHandlesEveryOp(t *testing.T) {
	for _, op := range Ops() {
		vm := New(func(config *Config) {
			config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		})

		// Only RET may fail on a fresh VM
		err := vm.execute(Instruction{Op: op})
		if err != nil && op != OpRet {
			t.Errorf(`executing %s returned %v`, op.Mnemonic(), err)
		}
	}
}

func TestDrawSpriteWraps(t *testing.T) {
	s := newScreen(SmallScreen)

	if s.drawSprite(62, 31, []byte{0xC0, 0x80}) {
		t.Fatalf(`drawing on an empty screen reported a collision`)
	}

	expected := [][2]int{{62, 31}, {63, 31}, {62, 0}}
	view := ScreenView{screen: s}
	for _, p := range expected {
		if !view.Pixel(p[0], p[1]) {
			t.Errorf(`pixel (%d, %d) is unset, expected it set`, p[0], p[1])
		}
	}

	set := 0
	for _, on := range s.cells {
		if on {
			set++
		}
	}
	if set != len(expected) {
		t.Fatalf(`%d pixels are set, expected %d`, set, len(expected))
	}

	if !s.drawSprite(62, 31, []byte{0x80}) {
		t.Fatalf(`erasing a set pixel did not report a collision`)
	}
	if view.Pixel(62, 31) {
		t.Fatalf(`pixel (62, 31) still set after XOR`)
	}
}
