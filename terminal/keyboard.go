package terminal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/guslan/chip8/keymap"
	"github.com/pkg/term"
)

// ErrQuit is returned by Keyboard.Run when the user asks to leave
var ErrQuit = errors.New("quit requested from the keyboard")

const ctrlC = 0x03

// KeySetter receives the logical key states
type KeySetter interface {
	SetKey(code byte, down bool) error
}

// Keyboard reads the terminal in raw mode. Terminals only report key presses,
// so every key is held down for HoldFor after its last press and then released.
type Keyboard struct {
	Path    string
	HoldFor time.Duration

	keys    KeySetter
	lookup  map[rune]byte
	pending []byte
	// when each held key has to be released
	releaseAt map[byte]time.Time
}

func NewKeyboard(keys KeySetter, layout keymap.Layout) *Keyboard {
	return &Keyboard{
		Path:      "/dev/tty",
		HoldFor:   150 * time.Millisecond,
		keys:      keys,
		lookup:    keymap.LookupMap(layout),
		releaseAt: map[byte]time.Time{},
	}
}

// Run reads keys until ctx is done or the user presses Q (shift+q) or Ctrl-C
func (kb *Keyboard) Run(ctx context.Context) error {
	tty, err := term.Open(kb.Path, term.RawMode, term.ReadTimeout(20*time.Millisecond))
	if err != nil {
		return err
	}
	defer func() {
		if err := tty.Restore(); err != nil {
			slog.Error("Error restoring the terminal", slog.Any("error", err))
		}
		tty.Close()
	}()

	buf := make([]byte, 32)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := tty.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		if kb.handleInput(buf[:n], time.Now()) {
			return ErrQuit
		}
	}
}

// handleInput presses the keys typed and releases the ones held long enough.
// Returns whether the user asked to quit.
func (kb *Keyboard) handleInput(in []byte, now time.Time) bool {
	kb.pending = append(kb.pending, in...)

	for len(kb.pending) > 0 && utf8.FullRune(kb.pending) {
		r, size := utf8.DecodeRune(kb.pending)
		kb.pending = kb.pending[size:]

		if r == 'Q' || r == ctrlC {
			return true
		}

		if code, ok := kb.lookup[r]; ok {
			kb.press(code, now)
		}
	}

	kb.releaseExpired(now)

	return false
}

func (kb *Keyboard) press(code byte, now time.Time) {
	if err := kb.keys.SetKey(code, true); err != nil {
		slog.Error("Error pressing key", slog.Int("key", int(code)), slog.Any("error", err))
		return
	}
	kb.releaseAt[code] = now.Add(kb.HoldFor)
}

func (kb *Keyboard) releaseExpired(now time.Time) {
	for code, at := range kb.releaseAt {
		if now.Before(at) {
			continue
		}
		if err := kb.keys.SetKey(code, false); err != nil {
			slog.Error("Error releasing key", slog.Int("key", int(code)), slog.Any("error", err))
		}
		delete(kb.releaseAt, code)
	}
}
