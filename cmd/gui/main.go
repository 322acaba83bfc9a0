package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/gui"
	"github.com/guslan/chip8/keymap"
	"github.com/guslan/chip8/runner"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	autostart := flag.Bool("start", false, "Starts the VM automatically if there is a program loaded (defaults = false).")
	initialSpeed := flag.Uint("speed", runner.DefaultSpeed, fmt.Sprintf("The starting speed of the VM in Hz. It has to be in the range [%d, %d] (defaults = %d).", runner.MinSpeed, runner.MaxSpeed, runner.DefaultSpeed))
	quirksFlag := flag.String("quirks", "", "Comma separated quirks: vfreset,shiftvy,jumpvx,memindex,indexoverflow")
	mute := flag.Bool("mute", false, "Turn off the sound (defaults = false).")

	flag.Parse()

	quirks, err := chip8.ParseQuirks(*quirksFlag)
	if err != nil {
		slog.Error("Invalid quirks", slog.Any("error", err))
		os.Exit(2)
	}

	app := gui.NewApp(func(config *gui.AppConfig) {
		config.Speed = max(*initialSpeed, runner.MinSpeed)
		config.Quirks = quirks
		config.Layout = keymap.DefaultLayout
		config.Mute = *mute
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
