// Package runner drives a chip8.VM the way a host is expected to: instructions at a configurable speed,
// timers at 60 Hz and the screen rendered whenever it changes.
package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/guslan/chip8"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 5

	DefaultFrameHz = 60
)

// Display abstraction for a display
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render draws the screen. The view must not be kept after returning.
	Render(chip8.ScreenView) error
}

type Buzzer interface {
	// Boot initializes the component
	Boot() error
	Play()
	Stop()
}

// ErrorHook runs every time an instruction fails and the runner pauses
type ErrorHook func(err error)

type Config struct {
	SpeedInHz uint
	TimerHz   int
	FrameHz   int
	// StartPaused keeps the VM stopped until Start is called
	StartPaused bool
	Logger      *slog.Logger
}

type ConfigCb func(config *Config)

// Runner owns the cadence of a VM. Every call into the VM is serialized by the runner.
type Runner struct {
	mu sync.Mutex

	vm      *chip8.VM
	display Display
	buzzer  Buzzer
	logger  *slog.Logger

	program []byte

	speedInHz uint
	timerHz   int
	frameHz   int

	isPaused     bool
	isBuzzing    bool
	cycles       uint
	frames       uint
	lastRendered uint64

	errorHooks []ErrorHook
}

func New(vm *chip8.VM, display Display, buzzer Buzzer, configs ...ConfigCb) *Runner {
	config := &Config{
		SpeedInHz:   DefaultSpeed,
		TimerHz:     chip8.TimerHz,
		FrameHz:     DefaultFrameHz,
		StartPaused: false,
		Logger:      slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	if display == nil {
		display = NopDisplay{}
	}
	if buzzer == nil {
		buzzer = &NopBuzzer{}
	}

	return &Runner{
		vm:      vm,
		display: display,
		buzzer:  buzzer,
		logger:  config.Logger,

		speedInHz: clampSpeed(config.SpeedInHz),
		timerHz:   max(config.TimerHz, 1),
		frameHz:   max(config.FrameHz, 1),

		isPaused:     config.StartPaused,
		lastRendered: ^uint64(0),

		errorHooks: make([]ErrorHook, 0),
	}
}

func clampSpeed(hz uint) uint {
	return min(max(hz, MinSpeed), MaxSpeed)
}

// AddErrorHook adds a hook that runs after an instruction fails
func (r *Runner) AddErrorHook(h ErrorHook) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errorHooks = append(r.errorHooks, h)

	return len(r.errorHooks)
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return !r.isPaused
}

func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.isPaused = false
}

func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.isPaused = true
	r.silence()
}

func (r *Runner) SpeedInHz() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.speedInHz
}

// SetSpeedInHz changes the instruction rate, clamped to [MinSpeed, MaxSpeed]
func (r *Runner) SetSpeedInHz(inHz uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.speedInHz = clampSpeed(inHz)
}

func (r *Runner) Cycles() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cycles
}

func (r *Runner) Frames() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.frames
}

// LoadProgram loads the program into the VM and remembers it for Reset
func (r *Runner) LoadProgram(program []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.vm.LoadProgram(program); err != nil {
		// the VM was wiped, Reset must not bring the previous program back
		r.program = r.program[:0]
		r.cycles = 0
		r.silence()
		return err
	}
	r.program = append(r.program[:0], program...)
	r.cycles = 0
	r.silence()

	return nil
}

// Reset reloads the last program loaded
func (r *Runner) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cycles = 0
	r.silence()

	return r.vm.LoadProgram(r.program)
}

func (r *Runner) SetKey(code byte, down bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.vm.SetKey(code, down)
}

// Inspect runs fn with exclusive access to the VM
func (r *Runner) Inspect(fn func(vm *chip8.VM)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(r.vm)
}

// StepOnce runs a single instruction bypassing the pause state
func (r *Runner) StepOnce() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.step()
}

// Run boots the display and the buzzer and drives the VM until ctx is done
// or the display fails. A buzzer that cannot boot is replaced by a silent one.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.display.Boot(); err != nil {
		return err
	}
	if err := r.buzzer.Boot(); err != nil {
		r.logger.Warn("Sound is disabled", slog.Any("error", err))
		r.mu.Lock()
		r.buzzer = &NopBuzzer{}
		r.mu.Unlock()
	}
	defer func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.silence()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.cpuLoop(ctx)
	})
	g.Go(func() error {
		return r.timerLoop(ctx)
	})
	g.Go(func() error {
		return r.renderLoop(ctx)
	})

	return g.Wait()
}

func (r *Runner) cpuLoop(ctx context.Context) error {
	speed := r.SpeedInHz()
	ticker := time.NewTicker(time.Second / time.Duration(speed))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		r.mu.Lock()
		if !r.isPaused {
			_ = r.step()
		}
		if r.speedInHz != speed {
			speed = r.speedInHz
			ticker.Reset(time.Second / time.Duration(speed))
		}
		r.mu.Unlock()
	}
}

func (r *Runner) timerLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.timerHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		r.mu.Lock()
		if !r.isPaused {
			if r.vm.AdvanceTimers() {
				r.buzz()
			} else {
				r.silence()
			}
		}
		r.mu.Unlock()
	}
}

func (r *Runner) renderLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.frameHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := r.renderIfDirty(); err != nil {
			r.logger.Error("Error rendering the screen", slog.Any("error", err))
			return err
		}
	}
}

func (r *Runner) renderIfDirty() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v := r.vm.DisplayVersion(); v != r.lastRendered {
		r.lastRendered = v
		r.frames++
		return r.display.Render(r.vm.Display())
	}

	return nil
}

// step must be called with the lock held
func (r *Runner) step() error {
	if err := r.vm.Step(); err != nil {
		r.isPaused = true
		r.silence()
		r.logger.Error("Execution paused", slog.Any("error", err))
		for _, h := range r.errorHooks {
			h(err)
		}
		return err
	}
	r.cycles++

	return nil
}

func (r *Runner) buzz() {
	if !r.isBuzzing {
		r.isBuzzing = true
		r.buzzer.Play()
	}
}

func (r *Runner) silence() {
	if r.isBuzzing {
		r.isBuzzing = false
		r.buzzer.Stop()
	}
}
