package chip8

import (
	"image"
	"image/color"
	"strings"
)

// ScreenSettings for the console
// Common display sizes are 64x32 and 128x64.
// Other uncommon sizes are 64x48 and 64x64.
type ScreenSettings struct {
	Width, Height int
}

var SmallScreen = ScreenSettings{
	Width:  64,
	Height: 32,
}

// Screen is a row-major monochrome pixel grid
type Screen struct {
	settings ScreenSettings
	cells    []bool
}

func newScreen(settings ScreenSettings) *Screen {
	return &Screen{
		settings: settings,
		cells:    make([]bool, settings.Width*settings.Height),
	}
}

func (s *Screen) clear() {
	clear(s.cells)
}

// drawSprite XORs the sprite rows onto the screen at x, y. Coordinates wrap
// around both edges. Returns whether any set pixel was cleared.
func (s *Screen) drawSprite(x, y byte, rows []byte) bool {
	collision := false
	for row, bits := range rows {
		py := (int(y) + row) % s.settings.Height
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % s.settings.Width

			t := py*s.settings.Width + px
			if s.cells[t] {
				collision = true
			}
			s.cells[t] = !s.cells[t]
		}
	}

	return collision
}

// ScreenView lends read-only access to the screen of a VM.
// It reflects later changes made by the VM.
type ScreenView struct {
	screen *Screen
}

func (v ScreenView) Width() int {
	return v.screen.settings.Width
}

func (v ScreenView) Height() int {
	return v.screen.settings.Height
}

// Pixel reports whether the pixel at x, y is set. Out of range coordinates are unset.
func (v ScreenView) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= v.Width() || y >= v.Height() {
		return false
	}

	return v.screen.cells[y*v.Width()+x]
}

// Pack returns a copy of the screen with 8 pixels per byte, most significant bit first
func (v ScreenView) Pack() []byte {
	buf := make([]byte, (len(v.screen.cells)+7)/8)
	for i, on := range v.screen.cells {
		if on {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}

	return buf
}

// Image returns a copy of the screen as a two colour image
func (v ScreenView) Image(off, on color.Color) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, v.Width(), v.Height()), color.Palette{off, on})
	for i, set := range v.screen.cells {
		if set {
			img.Pix[i] = 1
		}
	}

	return img
}

// String draws the screen as text, one line per row
func (v ScreenView) String() string {
	sb := strings.Builder{}
	sb.Grow(len(v.screen.cells)*3 + v.Height())

	for y := 0; y < v.Height(); y++ {
		for x := 0; x < v.Width(); x++ {
			if v.screen.cells[y*v.Width()+x] {
				sb.WriteRune('◼')
			} else {
				sb.WriteRune('◻')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
