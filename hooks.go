package chip8

import "log/slog"

// Diagnostic describes an instruction that could not be executed as encoded
type Diagnostic struct {
	Pc     uint16
	OpCode uint16
	Err    error
}

type DiagnosticHook func(d Diagnostic)

// AddDiagnosticHook adds a hook that runs every time an instruction faults
func (vm *VM) AddDiagnosticHook(h DiagnosticHook) int {
	vm.diagnosticHooks = append(vm.diagnosticHooks, h)

	return len(vm.diagnosticHooks)
}

func (vm *VM) report(d Diagnostic) {
	vm.logger.Warn("Instruction fault",
		slog.String("pc", hex12(d.Pc)),
		slog.String("opcode", hex16(d.OpCode)),
		slog.Any("error", d.Err),
	)

	for _, h := range vm.diagnosticHooks {
		h(d)
	}
}
