package terminal

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/keymap"
)

type keyState map[byte]bool

func (k keyState) SetKey(code byte, down bool) error {
	if code > 15 {
		return chip8.ErrInvalidKeyCode
	}
	k[code] = down

	return nil
}

func TestKeyboardHoldsAndReleasesKeys(t *testing.T) {
	keys := keyState{}
	kb := NewKeyboard(keys, keymap.DefaultLayout)
	kb.HoldFor = 100 * time.Millisecond
	start := time.Now()

	if kb.handleInput([]byte("wx"), start) {
		t.Fatalf(`typing wx asked to quit`)
	}
	if !keys[0x5] || !keys[0x0] {
		t.Fatalf(`keys = %v, expected 5 and 0 down`, keys)
	}

	kb.handleInput([]byte("w"), start.Add(80*time.Millisecond))
	kb.handleInput(nil, start.Add(120*time.Millisecond))
	if !keys[0x5] {
		t.Fatalf(`key 5 released while still held`)
	}
	if keys[0x0] {
		t.Fatalf(`key 0 not released after HoldFor`)
	}

	kb.handleInput(nil, start.Add(200*time.Millisecond))
	if keys[0x5] {
		t.Fatalf(`key 5 not released after HoldFor`)
	}
}

func TestKeyboardQuit(t *testing.T) {
	kb := NewKeyboard(keyState{}, keymap.DefaultLayout)

	if !kb.handleInput([]byte{ctrlC}, time.Now()) {
		t.Fatalf(`Ctrl-C did not ask to quit`)
	}
	if !kb.handleInput([]byte("Q"), time.Now()) {
		t.Fatalf(`Q did not ask to quit`)
	}
}

func TestKeyboardSplitRunes(t *testing.T) {
	keys := keyState{}
	kb := NewKeyboard(keys, keymap.AzertyLayout)
	e := []byte("é")

	kb.handleInput(e[:1], time.Now())
	if len(keys) != 0 {
		t.Fatalf(`half a rune pressed a key`)
	}
	kb.handleInput(e[1:], time.Now())
	if !keys[0x2] {
		t.Fatalf(`é did not press key 2`)
	}
}

func TestDisplayRender(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	vm := chip8.New()
	// glyph for 1 at 0, 0
	if err := vm.LoadProgram([]byte{0x60, 0x01, 0xF0, 0x29, 0x61, 0x00, 0xD1, 0x15}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := vm.Step(); err != nil {
			t.Fatal(err)
		}
	}

	out := &bytes.Buffer{}
	disp := NewDisplayWithOutput(out)
	disp.OnChar, disp.OffChar = "#", "."

	if err := disp.Boot(); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := disp.Render(vm.Display()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimPrefix(out.String(), "\x1b[1H"), "\n")
	if len(lines) != 33 {
		t.Fatalf(`rendered %d lines, expected 32 and a trailing newline`, len(lines))
	}
	if !strings.HasPrefix(lines[0], "..#.....") || !strings.HasPrefix(lines[4], ".###....") {
		t.Fatalf("unexpected render:\n%s", out.String())
	}
	if !strings.HasSuffix(lines[0], "|") || len(lines[0]) != 65 {
		t.Fatalf(`line 0 = %q`, lines[0])
	}
}
