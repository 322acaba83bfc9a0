package runner_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/runner"
)

type recordingDisplay struct {
	mu      sync.Mutex
	renders int
	lit     int
}

func (d *recordingDisplay) Boot() error {
	return nil
}

func (d *recordingDisplay) Render(screen chip8.ScreenView) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.renders++
	d.lit = 0
	for y := 0; y < screen.Height(); y++ {
		for x := 0; x < screen.Width(); x++ {
			if screen.Pixel(x, y) {
				d.lit++
			}
		}
	}

	return nil
}

func (d *recordingDisplay) snapshot() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.renders, d.lit
}

type recordingBuzzer struct {
	mu    sync.Mutex
	plays int
}

func (b *recordingBuzzer) Boot() error {
	return nil
}

func (b *recordingBuzzer) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.plays++
}

func (b *recordingBuzzer) Stop() {
}

func (b *recordingBuzzer) Plays() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.plays
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRunner(display runner.Display, buzzer runner.Buzzer, configs ...runner.ConfigCb) *runner.Runner {
	vm := chip8.New(func(config *chip8.Config) {
		config.Logger = quiet()
	})

	return runner.New(vm, display, buzzer, append([]runner.ConfigCb{func(config *runner.Config) {
		config.Logger = quiet()
	}}, configs...)...)
}

func TestStepOnce(t *testing.T) {
	r := newRunner(nil, nil, func(config *runner.Config) {
		config.StartPaused = true
	})

	if err := r.LoadProgram([]byte{0x60, 0x2A, 0x61, 0x01}); err != nil {
		t.Fatal(err)
	}
	if r.IsRunning() {
		t.Fatalf(`runner should start paused`)
	}

	if err := r.StepOnce(); err != nil {
		t.Fatal(err)
	}
	r.Inspect(func(vm *chip8.VM) {
		if vm.V(0) != 0x2A || vm.PC() != 0x202 {
			t.Fatalf(`V0 = %X, PC = %03X after one step`, vm.V(0), vm.PC())
		}
	})
	if r.Cycles() != 1 {
		t.Fatalf(`Cycles() = %d, expected 1`, r.Cycles())
	}

	if err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	r.Inspect(func(vm *chip8.VM) {
		if vm.V(0) != 0 || vm.PC() != 0x200 || vm.Peek(0x200) != 0x60 {
			t.Fatalf(`Reset() did not reload the program`)
		}
	})
}

func TestFaultPausesTheRunner(t *testing.T) {
	r := newRunner(nil, nil)

	var hooked error
	r.AddErrorHook(func(err error) {
		hooked = err
	})

	if err := r.LoadProgram([]byte{0x00, 0xEE}); err != nil {
		t.Fatal(err)
	}

	err := r.StepOnce()
	if !errors.Is(err, chip8.ErrStackUnderflow) {
		t.Fatalf(`StepOnce() = %v, expected ErrStackUnderflow`, err)
	}
	if r.IsRunning() {
		t.Fatalf(`runner kept running after a fault`)
	}
	if !errors.Is(hooked, chip8.ErrStackUnderflow) {
		t.Fatalf(`error hook got %v`, hooked)
	}
}

func TestSpeedIsClamped(t *testing.T) {
	r := newRunner(nil, nil)

	r.SetSpeedInHz(10_000)
	if r.SpeedInHz() != runner.MaxSpeed {
		t.Fatalf(`SpeedInHz() = %d, expected %d`, r.SpeedInHz(), runner.MaxSpeed)
	}
	r.SetSpeedInHz(0)
	if r.SpeedInHz() != runner.MinSpeed {
		t.Fatalf(`SpeedInHz() = %d, expected %d`, r.SpeedInHz(), runner.MinSpeed)
	}
}

func TestSetKey(t *testing.T) {
	r := newRunner(nil, nil)

	if err := r.SetKey(16, true); !errors.Is(err, chip8.ErrInvalidKeyCode) {
		t.Fatalf(`SetKey(16) = %v`, err)
	}
	if err := r.SetKey(15, true); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	display := &recordingDisplay{}
	buzzer := &recordingBuzzer{}
	r := newRunner(display, buzzer, func(config *runner.Config) {
		config.SpeedInHz = runner.MaxSpeed
	})

	program := []byte{
		// ST = 60
		0x60, 0x3C,
		0xF0, 0x18,
		// draw the glyph for 0 at 0, 0
		0x61, 0x00,
		0xA0, 0x00,
		0xD1, 0x15,
		// loop forever
		0x12, 0x0A,
	}
	if err := r.LoadProgram(program); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := r.Run(ctx); err != nil {
		t.Fatalf(`Run() = %v`, err)
	}

	renders, lit := display.snapshot()
	if renders == 0 {
		t.Fatalf(`the screen was never rendered`)
	}
	if lit != 14 {
		t.Fatalf(`last render had %d pixels lit, expected 14`, lit)
	}
	if buzzer.Plays() == 0 {
		t.Fatalf(`the buzzer never played`)
	}
	if r.Cycles() < 6 {
		t.Fatalf(`Cycles() = %d, expected the program to run`, r.Cycles())
	}
	if r.Frames() != uint(renders) {
		t.Fatalf(`Frames() = %d, the display got %d renders`, r.Frames(), renders)
	}
}

func TestFailedLoadForgetsTheProgram(t *testing.T) {
	r := newRunner(nil, nil, func(config *runner.Config) {
		config.StartPaused = true
	})

	if err := r.LoadProgram([]byte{0x60, 0x2A}); err != nil {
		t.Fatal(err)
	}
	if err := r.StepOnce(); err != nil {
		t.Fatal(err)
	}

	err := r.LoadProgram(make([]byte, chip8.MemorySize))
	if !errors.Is(err, chip8.ErrProgramTooLarge) {
		t.Fatalf(`LoadProgram() = %v, expected ErrProgramTooLarge`, err)
	}
	if r.Cycles() != 0 {
		t.Fatalf(`Cycles() = %d after a failed load`, r.Cycles())
	}

	if err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	r.Inspect(func(vm *chip8.VM) {
		if vm.Peek(0x200) != 0 {
			t.Fatalf(`Reset() reloaded the program loaded before the failed load`)
		}
	})
}

type brokenBuzzer struct {
	recordingBuzzer
}

func (b *brokenBuzzer) Boot() error {
	return errors.New("no audio device")
}

func TestRunWithoutSound(t *testing.T) {
	display := &recordingDisplay{}
	buzzer := &brokenBuzzer{}
	r := newRunner(display, buzzer)

	// ST = 60, then loop forever
	if err := r.LoadProgram([]byte{0x60, 0x3C, 0xF0, 0x18, 0x12, 0x04}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := r.Run(ctx); err != nil {
		t.Fatalf(`Run() = %v, a broken buzzer should only disable the sound`, err)
	}
	if buzzer.Plays() != 0 {
		t.Fatalf(`the broken buzzer was played`)
	}
	if r.Cycles() == 0 {
		t.Fatalf(`the program did not run`)
	}
}
