// Package web serves a CHIP-8 VM over HTTP. Frames are pushed to browsers
// through a websocket and keys come back through another one.
package web

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
	"github.com/guslan/chip8/runner"
	"golang.org/x/image/bmp"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	*runner.NopBuzzer

	runner *runner.Runner

	upgrader  websocket.Upgrader
	socket    *websocket.Conn
	wsMutex   sync.Mutex
	staticDir string
}

type ServerConfig struct {
	ScreenSettings chip8.ScreenSettings
	Quirks         chip8.Quirks
	SpeedInHz      uint
	// StaticDir is served on / when not empty
	StaticDir string
}
type ServerConfigCb func(config *ServerConfig)

func NewServer(configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		ScreenSettings: chip8.SmallScreen,
		Quirks:         0,
		SpeedInHz:      runner.DefaultSpeed,
		StaticDir:      "",
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		NopBuzzer: &runner.NopBuzzer{},
		upgrader:  websocket.Upgrader{}, // use default options
		staticDir: config.StaticDir,
	}

	vm := chip8.New(func(c *chip8.Config) {
		c.Screen = config.ScreenSettings
		c.Quirks = config.Quirks
	})
	s.runner = runner.New(vm, s, s.NopBuzzer, func(c *runner.Config) {
		c.SpeedInHz = config.SpeedInHz
		c.StartPaused = true
	})

	return s
}

// Runner gives access to the scheduler driving the VM
func (server *Server) Runner() *runner.Runner {
	return server.runner
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (server *Server) LoadProgram(program []byte) error {
	return server.runner.LoadProgram(program)
}

// Handler returns the HTTP routes of the server
func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if server.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(server.staticDir)))
	}

	mux.HandleFunc("/start", server.control("Starting", func() error {
		server.runner.Start()
		return nil
	}))
	mux.HandleFunc("/stop", server.control("Stopping", func() error {
		server.runner.Stop()
		return nil
	}))
	mux.HandleFunc("/reset", server.control("Stopping and resetting", func() error {
		server.runner.Stop()
		return server.runner.Reset()
	}))
	mux.HandleFunc("/step", server.control("Single step", server.runner.StepOnce))
	mux.HandleFunc("POST /load", server.handleLoad)
	mux.HandleFunc("/screenshot.bmp", server.handleScreenshot)
	mux.HandleFunc("/memory", server.handleMemory)
	mux.HandleFunc("/display", server.handleDisplay)
	mux.HandleFunc("/keys", server.handleKeys)

	return mux
}

// Listen serves on the port and runs the VM until ctx is done
func (server *Server) Listen(ctx context.Context, port int) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.runner.Run(ctx)
	})
	g.Go(func() error {
		slog.Info("Listening on port", slog.Int("port", port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Cache-Control", "no-cache")
}

func (server *Server) control(msg string, action func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setNoCacheHeaders(w)

		slog.Info(msg)
		if err := action(); err != nil {
			slog.Error(msg, slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusConflict)
		}
	}
}

func (server *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	setNoCacheHeaders(w)

	program, err := io.ReadAll(http.MaxBytesReader(w, r.Body, chip8.MemorySize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	if err := server.runner.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	slog.Info("Program loaded", slog.Int("size", len(program)))
}

func (server *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	setNoCacheHeaders(w)

	var screen *image.Paletted
	server.runner.Inspect(func(vm *chip8.VM) {
		screen = vm.Display().Image(color.Black, color.White)
	})

	w.Header().Set("Content-Type", "image/bmp")
	if err := bmp.Encode(w, screen); err != nil {
		slog.Error("Error encoding screenshot", slog.Any("error", err))
	}
}

func (server *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	setNoCacheHeaders(w)

	var dump string
	server.runner.Inspect(func(vm *chip8.VM) {
		dump = vm.DumpMemory()
	})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, dump)
}

// KeyEvent is the message browsers send on /keys
type KeyEvent struct {
	Key  byte `json:"key"`
	Down bool `json:"down"`
}

func (server *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	conn, err := server.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to keys")
	for {
		var ev KeyEvent
		if err := conn.ReadJSON(&ev); err != nil {
			slog.Info("Disconnecting from keys")
			return
		}

		if err := server.runner.SetKey(ev.Key, ev.Down); err != nil {
			slog.Warn("Ignoring key", slog.Int("key", int(ev.Key)), slog.Any("error", err))
		}
	}
}
