package cma

import "context"

// New creates a machine ready to run code from its first instruction.
func New(code []Instruction, opts ...Option) *Machine {
	m := Machine{code: code}
	Options(opts...).apply(&m)
	if m.capacity <= 0 {
		m.capacity = DefaultCapacity
	}
	m.mem = make([]int, m.capacity)
	m.reg = Registers{PC: 0, SP: -1, FP: -1, EP: -1, NP: m.capacity}
	return &m
}

// Run executes instructions until HALT, returning the value at address 0.
// The context is only consulted between instructions.
func (m *Machine) Run(ctx context.Context) (int, error) {
	if err := m.guard("run", func() error {
		return m.run(ctx)
	}); err != nil {
		return 0, err
	}
	return m.Result(), nil
}

// Step executes exactly one instruction; repeated Step calls pass through
// the same states as Run.
func (m *Machine) Step() error {
	if m.halted {
		if m.err != nil {
			return m.err
		}
		return ErrHalted
	}
	return m.guard("step", func() error {
		m.step()
		return nil
	})
}

// Run executes code on a fresh machine; see Machine.Run.
func Run(ctx context.Context, code []Instruction, opts ...Option) (int, error) {
	return New(code, opts...).Run(ctx)
}
