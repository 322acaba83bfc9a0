package chip8

import (
	"errors"
	"fmt"
)

var ErrProgramTooLarge = errors.New("the program does not fit into memory")
var ErrInvalidKeyCode = errors.New("invalid key code: must be in the range [0, 15]")

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

type ErrOpCodeUnknown struct {
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnknown) Error() string {
	return fmt.Sprintf("unknown opcode=%04X at PC=%03X", err.OpCode, err.Pc)
}

// ExecutionError is returned by Step when an instruction could not be executed.
// The VM is left as it was before the instruction was fetched.
type ExecutionError struct {
	Instruction Instruction
	Pc          uint16
	Err         error
}

func (err *ExecutionError) Error() string {
	return fmt.Sprintf("%s at PC=%03X: %v", err.Instruction, err.Pc, err.Err)
}

func (err *ExecutionError) Unwrap() error {
	return err.Err
}
