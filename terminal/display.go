// Package terminal runs a CHIP-8 VM inside a text terminal.
package terminal

import (
	"io"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
	xterm "golang.org/x/term"
)

const ESC = 0x1B

// Display redraws the whole screen from the top-left corner of the terminal on every render
type Display struct {
	terminal        io.Writer
	OnChar, OffChar string
	// Settings are only used by Boot to check the terminal size
	Settings chip8.ScreenSettings
}

func NewDisplay() *Display {
	return NewDisplayWithOutput(os.Stdout)
}

func NewDisplayWithOutput(out io.Writer) *Display {
	return &Display{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
		Settings: chip8.SmallScreen,
	}
}

// Boot implements runner.Display.
func (disp *Display) Boot() error {
	if f, ok := disp.terminal.(*os.File); ok && xterm.IsTerminal(int(f.Fd())) {
		w, h, err := xterm.GetSize(int(f.Fd()))
		if err == nil {
			needW := disp.Settings.Width*len(disp.OnChar) + 1
			if w < needW || h < disp.Settings.Height {
				slog.Warn("Terminal is too small for the screen",
					slog.Int("width", w), slog.Int("height", h),
					slog.Int("neededWidth", needW), slog.Int("neededHeight", disp.Settings.Height))
			}
		}
	}

	_, err := disp.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', 'H',
		// clear the terminal
		ESC, '[', '0', 'J',
	})

	return err
}

// Render implements runner.Display.
func (disp *Display) Render(screen chip8.ScreenView) error {
	w, h := screen.Width(), screen.Height()

	buff := make([]byte, 0, w*h*len(disp.OnChar)+h*2+4)
	buff = append(buff, ESC, '[', '1', 'H')
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if screen.Pixel(x, y) {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}
		buff = append(buff, '|', '\n')
	}

	_, err := disp.terminal.Write(buff)
	return err
}
