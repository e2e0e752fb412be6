package machine

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/disasm"
)

// Errors that can be returned by the machine. A failed Tick wraps one of
// them in an ExecutionError.
var (
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
	ErrReadOnlyMemory    = errors.New("write to read-only font memory")
	ErrInvalidKey        = errors.New("invalid key index")
	ErrProgramTooLarge   = errors.New("program too large")
)

// ExecutionError describes an instruction that could not be executed.
// Address is the location the instruction was fetched from.
type ExecutionError struct {
	Address uint16
	Opcode  uint16
	Err     error

	decoded bool // false if the failure happened while fetching
}

func (e *ExecutionError) Error() string {
	if !e.decoded {
		return fmt.Sprintf("fetching instruction at $%03X: %s", e.Address, e.Err)
	}
	return fmt.Sprintf("executing %s at $%03X: %s", disasm.Format(e.Opcode), e.Address, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
