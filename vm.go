package chip8

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// Config of a VM
type Config struct {
	Screen ScreenSettings
	Quirks Quirks
	// Random returns the byte used by RND before masking
	Random func() byte
	Logger *slog.Logger
}

type ConfigCb func(config *Config)

func defaultRandom() byte {
	return byte(rand.UintN(256))
}

// VM is a CHIP-8 virtual machine.
// It is not safe for concurrent use; hosts driving it from several goroutines must serialize the calls.
type VM struct {
	memory *Memory
	// V 8-bit registers
	v [16]byte
	// I 16-bit register (12-bit usable)
	i uint16
	// Program counter
	pc     uint16
	stack  Stack
	timers Timers
	screen *Screen
	keypad Keypad

	waitingForKey  bool
	keyDstRegister byte

	// incremented every time the screen changes
	screenVersion uint64

	quirks          Quirks
	random          func() byte
	logger          *slog.Logger
	diagnosticHooks []DiagnosticHook
}

// New creates a VM with the font loaded and everything else zeroed
func New(configs ...ConfigCb) *VM {
	config := &Config{
		Screen: SmallScreen,
		Quirks: 0,
		Random: defaultRandom,
		Logger: nil,
	}
	for _, cb := range configs {
		cb(config)
	}
	if config.Random == nil {
		config.Random = defaultRandom
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Screen.Width <= 0 || config.Screen.Height <= 0 {
		config.Screen = SmallScreen
	}

	vm := &VM{
		memory: NewMemory(),
		screen: newScreen(config.Screen),

		quirks:          config.Quirks,
		random:          config.Random,
		logger:          config.Logger,
		diagnosticHooks: make([]DiagnosticHook, 0),
	}
	vm.Reset()

	return vm
}

// Reset puts every component back to its construction-time state.
// Programs previously loaded are wiped.
func (vm *VM) Reset() {
	vm.memory.Reset()
	vm.v = [16]byte{}
	vm.i = 0
	vm.pc = ProgramStart
	vm.stack = Stack{}
	vm.timers = Timers{}
	vm.screen.clear()
	vm.screenVersion++
	vm.keypad = Keypad{}
	vm.waitingForKey = false
	vm.keyDstRegister = 0
}

// LoadProgram resets the VM and loads the program at the start-of-program address.
// On error the VM is left reset.
func (vm *VM) LoadProgram(program []byte) error {
	vm.Reset()
	if err := vm.memory.LoadProgram(program); err != nil {
		return fmt.Errorf("loading program of %d bytes: %w", len(program), err)
	}

	vm.logger.Debug("Program loaded", slog.Int("size", len(program)))

	return nil
}

// Step executes a single instruction.
//
// While waiting for a key it only polls the keypad: if a key is down its code
// is stored and the VM resumes on the next call.
//
// Stack faults are returned and the PC is left on the faulting instruction.
// Unknown opcodes are reported to the diagnostic hooks and skipped.
func (vm *VM) Step() error {
	if vm.waitingForKey {
		if k, pressed := vm.keypad.FirstPressed(); pressed {
			vm.v[vm.keyDstRegister] = k
			vm.waitingForKey = false
		}

		return nil
	}

	pc := vm.pc
	ins := Decode(vm.memory.ReadWord(pc))

	if err := vm.execute(ins); err != nil {
		vm.report(Diagnostic{Pc: pc, OpCode: ins.Raw, Err: err})

		return &ExecutionError{Instruction: ins, Pc: pc, Err: err}
	}

	if ins.Op == OpUnknown {
		vm.report(Diagnostic{Pc: pc, OpCode: ins.Raw, Err: ErrOpCodeUnknown{OpCode: ins.Raw, Pc: pc}})
	}

	return nil
}

// AdvanceTimers is meant to be called at 60 Hz.
// It returns whether the sound should be playing.
func (vm *VM) AdvanceTimers() bool {
	return vm.timers.Advance()
}

// SetKey records whether the logical key is down
func (vm *VM) SetKey(code byte, down bool) error {
	return vm.keypad.Set(code, down)
}

func (vm *VM) Width() int {
	return vm.screen.settings.Width
}

func (vm *VM) Height() int {
	return vm.screen.settings.Height
}

// Display returns a read-only view of the screen
func (vm *VM) Display() ScreenView {
	return ScreenView{screen: vm.screen}
}

// DisplayVersion changes every time the screen is cleared or drawn to
func (vm *VM) DisplayVersion() uint64 {
	return vm.screenVersion
}

func (vm *VM) V(x byte) byte {
	return vm.v[x&0x0F]
}

func (vm *VM) Registers() [16]byte {
	return vm.v
}

func (vm *VM) I() uint16 {
	return vm.i
}

func (vm *VM) PC() uint16 {
	return vm.pc
}

// Stack returns the return addresses, bottom first
func (vm *VM) Stack() []uint16 {
	return vm.stack.Entries()
}

func (vm *VM) DelayTimer() byte {
	return vm.timers.Delay
}

func (vm *VM) SoundTimer() byte {
	return vm.timers.Sound
}

// DumpMemory returns the whole memory as a hex dump
func (vm *VM) DumpMemory() string {
	return vm.memory.String()
}

// Peek reads memory without side effects
func (vm *VM) Peek(addr uint16) byte {
	return vm.memory.Read(addr)
}

// WaitingForKey returns the destination register while the VM waits for a key
func (vm *VM) WaitingForKey() (byte, bool) {
	return vm.keyDstRegister, vm.waitingForKey
}

func (vm *VM) Quirks() Quirks {
	return vm.quirks
}

func hex12(v uint16) string {
	return fmt.Sprintf("0x%03X", v)
}

func hex16(v uint16) string {
	return fmt.Sprintf("0x%04X", v)
}
