/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/audio"
	"github.com/guslan/chip8/keymap"
	"github.com/guslan/chip8/runner"
	"github.com/guslan/chip8/terminal"
	"golang.org/x/sync/errgroup"
)

func init() {
	// stdout belongs to the screen
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})))
}

func main() {
	os.Exit(run())
}

func run() int {
	speed := flag.Uint("speed", runner.DefaultSpeed, fmt.Sprintf("Speed in instructions per second, in the range [%d, %d]", runner.MinSpeed, runner.MaxSpeed))
	quirksFlag := flag.String("quirks", "", "Comma separated quirks: vfreset,shiftvy,jumpvx,memindex,indexoverflow")
	noTerm := flag.Bool("noterm", false, "Turn off the terminal display and keyboard, the last frame is printed on exit")
	azerty := flag.Bool("azerty", false, "Use the AZERTY keyboard layout")
	mute := flag.Bool("mute", false, "Turn off the sound")
	flag.Parse()

	if flag.NArg() < 1 {
		slog.Error("must provide the path to a rom as an argument")
		return 2
	}

	quirks, err := chip8.ParseQuirks(*quirksFlag)
	if err != nil {
		slog.Error("Invalid quirks", slog.Any("error", err))
		return 2
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		slog.Error("Error reading the rom", slog.Any("error", err))
		return 1
	}

	var display runner.Display = runner.NopDisplay{}
	if !*noTerm {
		display = terminal.NewDisplay()
	}
	var buzzer runner.Buzzer = &runner.NopBuzzer{}
	if !*mute {
		beeper := audio.NewBeeper()
		defer beeper.Close()
		buzzer = beeper
	}

	vm := chip8.New(func(config *chip8.Config) {
		config.Quirks = quirks
	})
	slog.Info("VM ready", slog.String("quirks", vm.Quirks().String()), slog.Uint64("speed", uint64(*speed)))

	r := runner.New(vm, display, buzzer, func(config *runner.Config) {
		config.SpeedInHz = *speed
	})
	if err := r.LoadProgram(program); err != nil {
		slog.Error("Error loading the rom", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(ctx)
	})
	if !*noTerm {
		layout := keymap.DefaultLayout
		if *azerty {
			layout = keymap.AzertyLayout
		}
		kb := terminal.NewKeyboard(r, layout)
		g.Go(func() error {
			return kb.Run(ctx)
		})
	}

	err = g.Wait()

	if *noTerm {
		r.Inspect(func(vm *chip8.VM) {
			fmt.Print(vm.Display())
		})
	}

	if err != nil && !errors.Is(err, terminal.ErrQuit) {
		slog.Error("Emulator stopped", slog.Any("error", err))
		return 1
	}

	return 0
}
