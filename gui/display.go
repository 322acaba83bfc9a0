package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow

// Boot implements runner.Display.
func (app *App) Boot() error {
	return nil
}

// Render implements runner.Display. The pixels are copied because the window
// is drawn from another goroutine.
func (app *App) Render(screen chip8.ScreenView) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	w, h := screen.Width(), screen.Height()
	if len(app.screen) != w*h {
		app.screen = make([]bool, w*h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			app.screen[y*w+x] = screen.Pixel(x, y)
		}
	}

	return nil
}

func (app *App) drawScreen() {
	app.mu.Lock()
	defer app.mu.Unlock()

	w, h := app.settings.Width, app.settings.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			color := ScreenBgColor
			if app.screen[y*w+x] {
				color = ScreenPixelColor
			}

			rl.DrawRectangle(
				ScreenPositionX+ScreenPixelSize*int32(x),
				ScreenPositionY+ScreenPixelSize*int32(y),
				ScreenPixelSize,
				ScreenPixelSize,
				color)
		}
	}
}
