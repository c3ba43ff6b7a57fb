package cma

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes a human readable rendering of the machine: its registers, the
// stack region annotated with frame linkage, and any heap blocks.
func (m *Machine) Dump(w io.Writer) {
	machineDumper{m: m, out: w}.dump()
}

type machineDumper struct {
	m   *Machine
	out io.Writer

	addrWidth int
	notes     map[int][]string
}

func (dump machineDumper) dump() {
	reg := dump.m.reg
	fmt.Fprintf(dump.out, "# Machine Dump\n")
	fmt.Fprintf(dump.out, "  regs: %v\n", reg)
	fmt.Fprintf(dump.out, "  steps: %v\n", dump.m.steps)
	if err := dump.m.err; err != nil {
		fmt.Fprintf(dump.out, "  error: %v\n", err)
	} else if dump.m.halted {
		fmt.Fprintf(dump.out, "  halted\n")
	}

	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(len(dump.m.mem) - 1))
	}
	dump.scanFrames()

	end := reg.SP
	if reg.EP > end {
		end = reg.EP
	}
	if end >= len(dump.m.mem) {
		end = len(dump.m.mem) - 1
	}
	if end >= 0 {
		fmt.Fprintf(dump.out, "# Stack\n")
		for addr := 0; addr <= end; addr++ {
			dump.dumpWord(addr)
		}
	}

	if start := reg.NP; start >= 0 && start < len(dump.m.mem) {
		fmt.Fprintf(dump.out, "# Heap @%v\n", start)
		for addr := start; addr < len(dump.m.mem); addr++ {
			dump.dumpWord(addr)
		}
	}
}

func (dump *machineDumper) note(addr int, note string) {
	if dump.notes == nil {
		dump.notes = make(map[int][]string)
	}
	dump.notes[addr] = append(dump.notes[addr], note)
}

// scanFrames walks the saved FP chain, annotating each linkage triple.
func (dump *machineDumper) scanFrames() {
	reg, mem := dump.m.reg, dump.m.mem
	for fp := reg.FP; fp >= 2 && fp < len(mem); {
		dump.note(fp-2, "ep")
		dump.note(fp-1, "fp")
		dump.note(fp, "ret")
		next := mem[fp-1]
		if next >= fp {
			break
		}
		fp = next
	}
	if reg.SP >= 0 {
		dump.note(reg.SP, "<sp")
	}
	if reg.EP >= 0 && reg.EP != reg.SP {
		dump.note(reg.EP, "<ep")
	}
}

func (dump machineDumper) dumpWord(addr int) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "  @%*v %v", dump.addrWidth, addr, dump.m.mem[addr])
	for _, note := range dump.notes[addr] {
		buf.WriteByte(' ')
		buf.WriteString(note)
	}
	buf.WriteByte('\n')
	io.WriteString(dump.out, buf.String())
}
