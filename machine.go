package cma

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcorbin/cma/internal/panicerr"
)

// DefaultCapacity is the memory size, in words, used unless WithCapacity says
// otherwise.
const DefaultCapacity = 2 << 22

// Registers holds the machine's five index registers.
//
// Every live stack value sits at or below SP, the current frame's locals run
// from SP+1 through EP, and heap blocks occupy NP through the end of memory.
// A well formed program keeps SP <= EP < NP <= capacity.
type Registers struct {
	PC int `cbor:"pc"` // next instruction
	SP int `cbor:"sp"` // top of stack, -1 when empty
	FP int `cbor:"fp"` // current frame's return address slot, -1 at top level
	EP int `cbor:"ep"` // end of the current frame's reserved space
	NP int `cbor:"np"` // most recently allocated heap block
}

func (r Registers) String() string {
	return fmt.Sprintf("pc:%v sp:%v fp:%v ep:%v np:%v", r.PC, r.SP, r.FP, r.EP, r.NP)
}

// Machine executes a linear program against one memory array shared by an
// evaluation stack, growing up from address 0, and a heap, growing down from
// the end of memory.
//
// Procedure frames live in memory too: MARK and CALL leave a triple of saved
// EP, saved FP, and return address below each frame, with FP pointing at the
// return address. There is no other call stack.
type Machine struct {
	logging

	code []Instruction
	reg  Registers
	mem  []int

	capacity int
	tracer   Tracer

	steps  uint64
	halted bool
	err    error
}

func (m *Machine) guard(name string, f func() error) error {
	if m.err != nil {
		return m.err
	}
	err := panicerr.Recover(name, f)
	var halted haltError
	if errors.As(err, &halted) {
		err = halted.error
	}
	if err != nil {
		m.halted = true
		m.err = err
	}
	return err
}

func (m *Machine) run(ctx context.Context) error {
	if m.logfn != nil {
		defer m.withLogPrefix("	")()
	}
	for !m.halted {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.step()
	}
	return nil
}

func (m *Machine) halt(err error) {
	// ignore any panics while logging
	func() {
		defer func() { recover() }()
		m.logf("#", "halt error: %v", err)
	}()
	m.halted = true
	m.err = err
	panic(haltError{err})
}

// Registers returns the current register file.
func (m *Machine) Registers() Registers { return m.reg }

// Capacity returns the size of memory in words.
func (m *Machine) Capacity() int { return m.capacity }

// Load returns the word at addr, or 0 if addr is outside of memory.
func (m *Machine) Load(addr int) int {
	if addr < 0 || addr >= len(m.mem) {
		return 0
	}
	return m.mem[addr]
}

// Halted returns true once HALT has executed or an error stopped the machine.
func (m *Machine) Halted() bool { return m.halted }

// Err returns the error that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

// Steps returns how many instructions have completed.
func (m *Machine) Steps() uint64 { return m.steps }

// Result returns the program's exit value, the word at address 0.
func (m *Machine) Result() int { return m.mem[0] }
