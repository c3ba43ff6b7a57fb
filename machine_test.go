package cma

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/cma/internal/logio"
)

type machineTestCases []machineTestCase

func (mts machineTestCases) run(t *testing.T) {
	{
		var exclusive []machineTestCase
		for _, mt := range mts {
			if mt.exclusive {
				exclusive = append(exclusive, mt)
			}
		}
		if len(exclusive) > 0 {
			mts = exclusive
		}
	}
	for _, mt := range mts {
		t.Run(mt.name, mt.run)
	}
}

func machineTest(name string) (mt machineTestCase) {
	mt.name = name
	return mt
}

type machineTestCase struct {
	name    string
	code    []Instruction
	opts    []Option
	steps   int
	expect  []func(t *testing.T, m *Machine)
	timeout time.Duration
	wantErr error

	exclusive bool
}

func (mt machineTestCase) exclusiveTest() machineTestCase {
	mt.exclusive = true
	return mt
}

func (mt machineTestCase) withCode(code ...Instruction) machineTestCase {
	mt.code = append(mt.code, code...)
	return mt
}

func (mt machineTestCase) withOptions(opts ...Option) machineTestCase {
	mt.opts = append(mt.opts, opts...)
	return mt
}

func (mt machineTestCase) withCapacity(words int) machineTestCase {
	return mt.withOptions(WithCapacity(words))
}

// step only executes n instructions rather than running to HALT.
func (mt machineTestCase) step(n int) machineTestCase {
	mt.steps = n
	return mt
}

func (mt machineTestCase) withTimeout(timeout time.Duration) machineTestCase {
	mt.timeout = timeout
	return mt
}

func (mt machineTestCase) expectError(err error) machineTestCase {
	mt.wantErr = err
	return mt
}

func (mt machineTestCase) expectResult(value int) machineTestCase {
	mt.expect = append(mt.expect, func(t *testing.T, m *Machine) {
		assert.True(t, m.Halted(), "expected machine to have halted")
		assert.Equal(t, value, m.Result(), "expected result")
	})
	return mt
}

func (mt machineTestCase) expectRegs(regs Registers) machineTestCase {
	mt.expect = append(mt.expect, func(t *testing.T, m *Machine) {
		assert.Equal(t, regs, m.Registers(), "expected registers")
	})
	return mt
}

func (mt machineTestCase) expectPC(pc int) machineTestCase {
	mt.expect = append(mt.expect, func(t *testing.T, m *Machine) {
		assert.Equal(t, pc, m.Registers().PC, "expected program counter")
	})
	return mt
}

func (mt machineTestCase) expectNP(np int) machineTestCase {
	mt.expect = append(mt.expect, func(t *testing.T, m *Machine) {
		assert.Equal(t, np, m.Registers().NP, "expected heap pointer")
	})
	return mt
}

// expectStack checks SP and every value in 0..SP.
func (mt machineTestCase) expectStack(values ...int) machineTestCase {
	mt.expect = append(mt.expect, func(t *testing.T, m *Machine) {
		if values == nil {
			values = []int{}
		}
		sp := m.Registers().SP
		stack := []int{}
		for addr := 0; addr <= sp; addr++ {
			stack = append(stack, m.Load(addr))
		}
		assert.Equal(t, values, stack, "expected stack values")
	})
	return mt
}

func (mt machineTestCase) expectMemAt(addr int, values ...int) machineTestCase {
	mt.expect = append(mt.expect, func(t *testing.T, m *Machine) {
		buf := make([]int, len(values))
		for i := range buf {
			buf[i] = m.Load(addr + i)
		}
		assert.Equal(t, values, buf, "expected memory values @%v", addr)
	})
	return mt
}

func (mt machineTestCase) expectDump(dump string) machineTestCase {
	mt.expect = append(mt.expect, func(t *testing.T, m *Machine) {
		var out strings.Builder
		m.Dump(&out)
		assert.Equal(t, dump, out.String(), "expected dump")
	})
	return mt
}

func (mt machineTestCase) run(t *testing.T) {
	m := mt.build()

	defer func() {
		if t.Failed() {
			dumpToTest(t, m)
			mt.traceToTest(t)
		}
	}()

	err := mt.exec(m)
	if mt.wantErr != nil {
		assert.True(t, errors.Is(err, mt.wantErr), "expected error: %v\ngot: %+v", mt.wantErr, err)
	} else {
		require.NoError(t, err, "unexpected machine error")
	}

	for _, expect := range mt.expect {
		expect(t, m)
	}
}

func (mt machineTestCase) build(opts ...Option) *Machine {
	return New(mt.code, Options(mt.opts...), Options(opts...))
}

func (mt machineTestCase) exec(m *Machine) error {
	if mt.steps > 0 {
		for i := 0; i < mt.steps; i++ {
			if err := m.Step(); err != nil {
				return err
			}
		}
		return nil
	}

	const defaultTimeout = time.Second
	timeout := mt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := m.Run(ctx)
	return err
}

// traceToTest re-executes the case on a fresh machine with trace logging.
func (mt machineTestCase) traceToTest(t *testing.T) {
	t.Logf("trace:")
	mt.exec(mt.build(WithLogf(t.Logf)))
}

func dumpToTest(t *testing.T, m *Machine) {
	lw := logio.Writer{Logf: t.Logf, Prefix: "dump: "}
	defer lw.Close()
	m.Dump(&lw)
}

//// utilities

func insn(op Opcode, arg ...int) Instruction {
	switch len(arg) {
	case 0:
		return Instruction{Op: op}
	case 1:
		return Instruction{Op: op, Arg: arg[0]}
	default:
		panic("insn takes at most one argument")
	}
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
