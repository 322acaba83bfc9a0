// Package gui runs a CHIP-8 VM in a raylib window.
package gui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
	"github.com/guslan/chip8/audio"
	"github.com/guslan/chip8/keymap"
	"github.com/guslan/chip8/runner"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	ScreenPixelSize = 15
	ScreenPositionX = 0
	ScreenPositionY = ToolbarHeight + 1

	MessageBarGap   = 5
	MessageBarHeigh = 30
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

type AppConfig struct {
	// Speed in Hz
	Speed  uint
	Quirks chip8.Quirks
	Layout keymap.Layout
	// Mute uses a silent buzzer instead of the sound card
	Mute bool
}

type AppConfigCb func(config *AppConfig)

type App struct {
	runner   *runner.Runner
	settings chip8.ScreenSettings

	// guards screen and the message bar, written from the runner goroutines
	mu sync.Mutex
	// Unpacked screen representation
	screen []bool

	speed             float32
	keyboardLookupMap map[int32]byte
	keysDown          map[int32]bool

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, restBtn bool

	loadedProgramPath string

	lastMessage      string
	lastMessageColor rl.Color
}

func NewApp(configs ...AppConfigCb) *App {
	config := &AppConfig{
		Speed:  runner.DefaultSpeed,
		Quirks: 0,
		Layout: keymap.DefaultLayout,
		Mute:   false,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &App{
		settings:          chip8.SmallScreen,
		speed:             float32(config.Speed),
		keyboardLookupMap: keyboardLookupMap(config.Layout),
		keysDown:          map[int32]bool{},
	}
	app.screen = make([]bool, app.settings.Width*app.settings.Height)

	vm := chip8.New(func(c *chip8.Config) {
		c.Screen = app.settings
		c.Quirks = config.Quirks
	})
	vm.AddDiagnosticHook(func(d chip8.Diagnostic) {
		app.showMessage(fmt.Sprintf("%03X: %v", d.Pc, d.Err), MessageWarning)
	})

	var buzzer runner.Buzzer = audio.NewBeeper()
	if config.Mute {
		buzzer = &runner.NopBuzzer{}
	}

	app.runner = runner.New(vm, app, buzzer, func(c *runner.Config) {
		c.SpeedInHz = config.Speed
		c.StartPaused = true
	})
	app.runner.AddErrorHook(func(err error) {
		app.showMessage(err.Error(), MessageError)
	})

	app.updateWindowSize()

	return app
}

// Run opens the window and drives the VM until the window is closed
func (app *App) Run(autostart bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)

		slog.Info("Starting the VM loop on pause")
		if err := app.runner.Run(ctx); err != nil {
			app.showMessage(err.Error(), MessageError)
			slog.Error("Error running the VM", slog.Any("error", err))
		}
	}()

	if autostart && app.hasProgramLoaded() {
		app.runner.Start()
	}

	rl.InitWindow(int32(app.winW), int32(app.winH), "chip8")
	defer rl.CloseWindow()

	app.loadStyles()
	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateSpeed()

		// Sections get rendered from the bottom to the top
		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}

	cancel()
	<-done
}

func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	if err = app.runner.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	app.loadedProgramPath = path
	slog.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", path), MessageSuccess)
}

func (app *App) updateWindowSize() {
	app.winW = app.settings.Width * ScreenPixelSize
	app.winH = app.settings.Height*ScreenPixelSize + ToolbarHeight + MessageBarHeigh
	slog.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *App) loadStyles() {
	slog.Info("Loading styles")
	gui.LoadStyleDefault()
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		slog.Info("Files were dropped", "files", strings.Join(files, ","))

		if len(files) > 0 {
			app.runner.Stop()
			app.Load(files[0])
		}
	}
}

func (app *App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.runner.Start()
			slog.Info("Starting the VM")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.runner.Stop()
		slog.Info("Stopping the VM")
	}
	if app.restBtn {
		if err := app.runner.Reset(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		slog.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		if err := app.runner.StepOnce(); err == nil {
			app.runner.Inspect(func(vm *chip8.VM) {
				ins := chip8.Decode(uint16(vm.Peek(vm.PC()))<<8 | uint16(vm.Peek(vm.PC()+1)))
				app.showMessage(fmt.Sprintf("%03X: %s", vm.PC(), ins), MessageInfo)
			})
		}
	}
}

// handleKeyPress only forwards the keys that changed since the last frame
func (app *App) handleKeyPress() {
	for code, key := range app.keyboardLookupMap {
		down := rl.IsKeyDown(code)
		if down == app.keysDown[code] {
			continue
		}
		app.keysDown[code] = down

		if err := app.runner.SetKey(key, down); err != nil {
			slog.Error("Error setting key", slog.Int("key", int(key)), slog.Any("error", err))
		}
	}
}

func (app *App) updateSpeed() {
	app.runner.SetSpeedInHz(uint(app.speed))
}

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*0, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*1, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*2, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.restBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*3, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)

	status := "Stopped"
	if app.runner.IsRunning() {
		status = "Running"
	}
	gui.Label(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight/2),
		status,
	)
	gui.Label(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap+ToolbarBtnHeight/2, ToolbarBtnWidth, ToolbarBtnHeight/2),
		fmt.Sprintf("%d frames", app.runner.Frames()),
	)

	gui.Label(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, 26, 50, 20),
		fmt.Sprintf("%d Hz", uint(app.speed)),
	)

	if gui.Button(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150+50, 26, 50, 20),
		gui.IconText(gui.ICON_ROTATE, ""),
	) {
		app.speed = float32(runner.DefaultSpeed)
	}

	app.speed = gui.Slider(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", runner.MinSpeed), fmt.Sprintf("%d Hz", runner.MaxSpeed),
		app.speed,
		float32(runner.MinSpeed),
		float32(runner.MaxSpeed),
	)
}

func (app *App) showMessage(msg string, mType MessageType) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageSuccess:
		app.lastMessageColor = MessageBarSuccessColor

	case MessageWarning:
		app.lastMessageColor = MessageBarWarningColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *App) drawMessageBar() {
	app.mu.Lock()
	defer app.mu.Unlock()

	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeigh,
		int32(app.winW),
		MessageBarHeigh,
		MessageBarBgColor,
	)

	rl.DrawText(
		app.lastMessage,
		MessageBarGap,
		int32(app.winH)-MessageBarHeigh+MessageBarGap,
		16,
		app.lastMessageColor,
	)
}
