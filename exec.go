package cma

// Tracer observes the machine after each executed instruction. Any error it
// returns stops the machine.
//
// Each call receives a full copy of memory, so tracing at DefaultCapacity
// copies 2<<22 words per instruction; traced machines should be built with a
// small WithCapacity.
type Tracer interface {
	Trace(step uint64, insn Instruction, snap Snapshot) error
}

func (m *Machine) step() {
	at := m.reg.PC
	if at < 0 || at >= len(m.code) {
		m.halt(PCError(at))
	}
	insn := m.code[at]
	m.reg.PC++
	m.exec(at, insn)
	m.steps++

	if m.logfn != nil {
		m.logf("exec", "@%v %v -- %v", at, insn, m.reg)
	}
	if m.tracer != nil {
		if err := m.tracer.Trace(m.steps, insn, m.Snapshot()); err != nil {
			m.halt(err)
		}
	}
}

func (m *Machine) exec(at int, insn Instruction) {
	r, s := &m.reg, m.mem
	switch insn.Op {

	// stack and addressing
	case OpLoadC:
		r.SP++
		s[r.SP] = insn.Arg
	case OpLoadA:
		r.SP++
		s[r.SP] = s[insn.Arg]
	case OpStoreA:
		s[insn.Arg] = s[r.SP]
	case OpLoad:
		n, p := insn.Arg, s[r.SP]
		for i := 0; i < n; i++ {
			s[r.SP+i] = s[p+i]
		}
		r.SP += n - 1
	case OpStore:
		n, p := insn.Arg, s[r.SP]
		for i := 0; i < n; i++ {
			s[p+i] = s[r.SP-n+i]
		}
		r.SP--
	case OpLoadRC:
		r.SP++
		s[r.SP] = r.FP + insn.Arg
	case OpLoadR:
		r.SP++
		s[r.SP] = s[r.FP+insn.Arg]
	case OpStoreR:
		// LOADRC o; STORE 1
		r.SP++
		s[r.SP] = r.FP + insn.Arg
		s[s[r.SP]] = s[r.SP-1]
		r.SP--
	case OpDup:
		r.SP++
		s[r.SP] = s[r.SP-1]
	case OpPop:
		r.SP--
	case OpAlloc:
		r.SP += insn.Arg

	// arithmetic and logic
	case OpAdd:
		m.binop(s[r.SP-1] + s[r.SP])
	case OpSub:
		m.binop(s[r.SP-1] - s[r.SP])
	case OpMul:
		m.binop(s[r.SP-1] * s[r.SP])
	case OpDiv:
		m.binop(s[r.SP-1] / s[r.SP])
	case OpMod:
		m.binop(s[r.SP-1] % s[r.SP])
	case OpAnd:
		m.binop(s[r.SP-1] & s[r.SP])
	case OpOr:
		m.binop(s[r.SP-1] | s[r.SP])
	case OpXor:
		m.binop(s[r.SP-1] ^ s[r.SP])
	case OpEq:
		m.binop(boolInt(s[r.SP-1] == s[r.SP]))
	case OpNeq:
		m.binop(boolInt(s[r.SP-1] != s[r.SP]))
	case OpLe:
		m.binop(boolInt(s[r.SP-1] < s[r.SP]))
	case OpLeq:
		m.binop(boolInt(s[r.SP-1] <= s[r.SP]))
	case OpGr:
		m.binop(boolInt(s[r.SP-1] > s[r.SP]))
	case OpGeq:
		m.binop(boolInt(s[r.SP-1] >= s[r.SP]))
	case OpNot:
		s[r.SP] = boolInt(s[r.SP] == 0)
	case OpNeg:
		s[r.SP] = -s[r.SP]

	// control flow
	case OpJump:
		r.PC = insn.Arg
	case OpJumpZ:
		if s[r.SP] == 0 {
			r.PC = insn.Arg
		}
		r.SP--
	case OpJumpI:
		r.PC = insn.Arg + s[r.SP]
		r.SP--

	// procedures
	case OpMark:
		s[r.SP+1] = r.EP
		s[r.SP+2] = r.FP
		r.SP += 2
	case OpCall:
		r.PC, s[r.SP] = s[r.SP], r.PC
		r.FP = r.SP
	case OpEnter:
		ep := r.SP + insn.Arg
		if ep >= r.NP {
			m.halt(&StackOverflowError{PC: at, Op: OpEnter, Frame: insn.Arg, EP: ep, NP: r.NP})
		}
		r.EP = ep
	case OpSlide:
		top := s[r.SP]
		r.SP -= insn.Arg
		s[r.SP] = top
	case OpReturn:
		r.PC = s[r.FP]
		r.EP = s[r.FP-2]
		if r.EP >= r.NP {
			m.halt(&StackOverflowError{PC: at, Op: OpReturn, EP: r.EP, NP: r.NP})
		}
		r.SP = r.FP - 3
		r.FP = s[r.SP+2]

	// heap
	case OpNew:
		if size := s[r.SP]; size <= 0 || r.NP-size <= r.EP {
			s[r.SP] = 0
		} else {
			r.NP -= size
			s[r.SP] = r.NP
		}

	case OpHalt:
		m.halted = true
		m.logf("#", "halt @%v result:%v", at, s[0])

	default:
		m.halt(&UnknownInstructionError{PC: at, Op: insn.Op})
	}
}

// binop replaces the top two stack values with val.
func (m *Machine) binop(val int) {
	m.reg.SP--
	m.mem[m.reg.SP] = val
}
