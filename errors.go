package cma

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow matches any *StackOverflowError.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrUnknownInstruction matches any *UnknownInstructionError.
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrHalted is returned when stepping a machine that already halted.
	ErrHalted = errors.New("machine halted")
)

// StackOverflowError reports a frame extent that collided with the heap,
// either when ENTER reserved Frame slots or when RETURN restored the
// caller's extent.
type StackOverflowError struct {
	PC    int    // index of the faulting instruction
	Op    Opcode // OpEnter or OpReturn
	Frame int    // slots requested by ENTER
	EP    int    // frame extent that collided
	NP    int    // heap boundary at the time
}

func (err *StackOverflowError) Error() string {
	if err.Op == OpReturn {
		return fmt.Sprintf("stack overflow on return @%v: ep:%v >= np:%v",
			err.PC, err.EP, err.NP)
	}
	return fmt.Sprintf("stack overflow @%v entering frame of %v: ep:%v >= np:%v",
		err.PC, err.Frame, err.EP, err.NP)
}

func (err *StackOverflowError) Unwrap() error { return ErrStackOverflow }

// UnknownInstructionError reports an opcode outside the instruction set.
type UnknownInstructionError struct {
	PC int
	Op Opcode
}

func (err *UnknownInstructionError) Error() string {
	return fmt.Sprintf("unknown instruction %v @%v", err.Op, err.PC)
}

func (err *UnknownInstructionError) Unwrap() error { return ErrUnknownInstruction }

// PCError reports a program counter outside of the code, typically from
// running off its end without a HALT.
type PCError int

func (pc PCError) Error() string { return fmt.Sprintf("program counter out of code @%v", int(pc)) }

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
