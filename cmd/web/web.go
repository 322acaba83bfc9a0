/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/runner"
	"github.com/guslan/chip8/web"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	port := flag.Int("port", 9999, "The port of the server")
	speed := flag.Uint("speed", runner.DefaultSpeed, "Speed in instructions per second")
	quirksFlag := flag.String("quirks", "", "Comma separated quirks: vfreset,shiftvy,jumpvx,memindex,indexoverflow")
	static := flag.String("static", "", "Directory served on / (optional)")
	start := flag.Bool("start", false, "Start running as soon as the rom is loaded")
	flag.Parse()

	quirks, err := chip8.ParseQuirks(*quirksFlag)
	if err != nil {
		slog.Error("Invalid quirks", slog.Any("error", err))
		os.Exit(2)
	}

	server := web.NewServer(func(config *web.ServerConfig) {
		config.SpeedInHz = *speed
		config.Quirks = quirks
		config.StaticDir = *static
	})

	// the rom is optional, browsers can POST one to /load
	if flag.NArg() > 0 {
		program, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			slog.Error("Error reading the rom", slog.Any("error", err))
			os.Exit(1)
		}
		if err := server.LoadProgram(program); err != nil {
			slog.Error("Error loading the rom", slog.Any("error", err))
			os.Exit(1)
		}
		if *start {
			server.Runner().Start()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Listen(ctx, *port); err != nil {
		slog.Error("Server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
