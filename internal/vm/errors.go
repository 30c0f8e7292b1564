package vm

import (
	"errors"
	"fmt"
)

var (
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrOutOfBounds        = errors.New("out of bounds access")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrProgramTooLarge    = errors.New("program too large")
	ErrHalted             = errors.New("machine halted")

	// ErrQuit and ErrReboot are returned by a HAL to stop or restart Run.
	ErrQuit   = errors.New("quit")
	ErrReboot = errors.New("reboot")
)

// AccessError describes a memory, register, display or stack access that
// failed. It unwraps to one of ErrOutOfBounds, ErrStackOverflow or
// ErrStackUnderflow.
type AccessError struct {
	Op   string
	Addr int
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s 0x%04x: %v", e.Op, e.Addr, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// UnknownInstructionError is reported when the decoder could not classify
// an instruction word. It is not fatal.
type UnknownInstructionError struct {
	PC     uint16
	Opcode uint16
}

func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("unknown op code 0x%04X at 0x%04x", e.Opcode, e.PC)
}

func (e *UnknownInstructionError) Unwrap() error {
	return ErrUnknownInstruction
}

// haltError latches a fatal cycle error. It matches both ErrHalted and the
// original cause.
type haltError struct {
	cause error
}

func (e *haltError) Error() string {
	return fmt.Sprintf("%v: %v", ErrHalted, e.cause)
}

func (e *haltError) Unwrap() []error {
	return []error{ErrHalted, e.cause}
}

func outOfBounds(op string, addr int) error {
	return &AccessError{Op: op, Addr: addr, Err: ErrOutOfBounds}
}
