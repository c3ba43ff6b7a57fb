package cma

import (
	"fmt"
	"strconv"
)

// Opcode names one of the machine's fixed instructions.
type Opcode uint8

// Stack and addressing
const (
	OpLoadC  Opcode = iota // LOADC c     push constant c
	OpLoadA                // LOADA a     push S[a]
	OpStoreA               // STOREA a    S[a] = top, no pop
	OpLoad                 // LOAD n      replace address on top with n values read from it
	OpStore                // STORE n     write n values below the top to the address on top
	OpLoadRC               // LOADRC o    push FP+o
	OpLoadR                // LOADR o     push S[FP+o]
	OpStoreR               // STORER o    S[FP+o] = top, no pop
	OpDup                  // DUP         duplicate top
	OpPop                  // POP         discard top
	OpAlloc                // ALLOC n     reserve n uninitialized slots

	// arithmetic and logic
	OpAdd // ADD
	OpSub // SUB
	OpMul // MUL
	OpDiv // DIV
	OpMod // MOD
	OpAnd // AND
	OpOr  // OR
	OpXor // XOR
	OpEq  // EQ
	OpNeq // NEQ
	OpLe  // LE         <
	OpLeq // LEQ        <=
	OpGr  // GR         >
	OpGeq // GEQ        >=
	OpNot // NOT        logical negation
	OpNeg // NEG        arithmetic negation

	// control flow
	OpJump  // JUMP t      PC = t
	OpJumpZ // JUMPZ t     pop; PC = t if it was zero
	OpJumpI // JUMPI t     pop v; PC = t+v

	// procedures
	OpMark   // MARK        push EP, push FP
	OpCall   // CALL        swap entry on top for return address, FP = SP
	OpEnter  // ENTER n     EP = SP+n, overflow checked
	OpSlide  // SLIDE n     drop n slots below the top
	OpReturn // RETURN      unwind the frame at FP

	// heap
	OpNew // NEW         bump allocate, address or 0 replaces size on top

	OpHalt // HALT

	opMax
)

type opInfo struct {
	name   string
	hasArg bool
}

var opTable = [opMax]opInfo{
	OpLoadC:  {"LOADC", true},
	OpLoadA:  {"LOADA", true},
	OpStoreA: {"STOREA", true},
	OpLoad:   {"LOAD", true},
	OpStore:  {"STORE", true},
	OpLoadRC: {"LOADRC", true},
	OpLoadR:  {"LOADR", true},
	OpStoreR: {"STORER", true},
	OpDup:    {"DUP", false},
	OpPop:    {"POP", false},
	OpAlloc:  {"ALLOC", true},

	OpAdd: {"ADD", false},
	OpSub: {"SUB", false},
	OpMul: {"MUL", false},
	OpDiv: {"DIV", false},
	OpMod: {"MOD", false},
	OpAnd: {"AND", false},
	OpOr:  {"OR", false},
	OpXor: {"XOR", false},
	OpEq:  {"EQ", false},
	OpNeq: {"NEQ", false},
	OpLe:  {"LE", false},
	OpLeq: {"LEQ", false},
	OpGr:  {"GR", false},
	OpGeq: {"GEQ", false},
	OpNot: {"NOT", false},
	OpNeg: {"NEG", false},

	OpJump:  {"JUMP", true},
	OpJumpZ: {"JUMPZ", true},
	OpJumpI: {"JUMPI", true},

	OpMark:   {"MARK", false},
	OpCall:   {"CALL", false},
	OpEnter:  {"ENTER", true},
	OpSlide:  {"SLIDE", true},
	OpReturn: {"RETURN", false},

	OpNew: {"NEW", false},

	OpHalt: {"HALT", false},
}

// Valid returns true if op is one of the machine's instructions.
func (op Opcode) Valid() bool { return op < opMax }

// HasArg returns true if instructions with op use their argument.
func (op Opcode) HasArg() bool { return op.Valid() && opTable[op].hasArg }

func (op Opcode) String() string {
	if op.Valid() {
		return opTable[op].name
	}
	return "Opcode(" + strconv.Itoa(int(op)) + ")"
}

// Instruction is one step of a program. Arg is only meaningful for opcodes
// where HasArg is true; jump and call targets are absolute code indices.
type Instruction struct {
	Op  Opcode `cbor:"op"`
	Arg int    `cbor:"arg,omitempty"`
}

func (insn Instruction) String() string {
	if insn.Op.HasArg() {
		return fmt.Sprintf("%v %v", insn.Op, insn.Arg)
	}
	return insn.Op.String()
}
