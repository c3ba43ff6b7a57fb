/*
Package cma implements an interpreter for a small stack machine, the target of
a teaching compiler for a C-like language.

The machine has one array of memory words. The evaluation stack starts at
address 0 and grows up; the heap starts at the end of memory and grows down.
Five registers index into it:

	PC  next instruction
	SP  top of the stack
	FP  the current frame
	EP  the highest address the current frame may use
	NP  the lowest heap address handed out so far

A procedure call is spelled out in the program itself.  The caller pushes
arguments, then MARK saves EP and FP on the stack, the callee's address is
pushed, and CALL swaps that address for the return address and points FP at
it.  So every frame sits just above a triple:

	FP-2  caller's EP
	FP-1  caller's FP
	FP    return address

The callee's first instruction, ENTER n, claims n words above SP for its
locals and temporaries by raising EP.  If that would reach the heap the run
stops with a StackOverflowError.  RETURN reads the triple back, dropping SP to
FP-3, which is where the callee leaves its return value.

The heap is a bump allocator: NEW moves NP down by the requested size, or
yields address 0 when the block would cross EP or its size is not positive.
Nothing is ever freed.

A program runs until HALT, and its result is whatever is left at address 0.

	res, err := cma.Run(ctx, []cma.Instruction{
		{Op: cma.OpLoadC, Arg: 3},
		{Op: cma.OpLoadC, Arg: 4},
		{Op: cma.OpMul},
		{Op: cma.OpHalt},
	})
	// res == 12
*/
package cma
