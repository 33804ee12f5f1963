package codegen

import "lc32/pkg/asmtext"

// frameReg is the dedicated frame-pointer register; argument addresses
// are expressed relative to it (spec.md §4.4).
const frameReg = "ebp"

// emitCallSequence emits the caller side of the calling convention once
// the procedure value is already in topReg and argc arguments have been
// pushed onto the machine stack in source (left-to-right) evaluation
// order (spec.md §4.4 step 1). It checks the value is a procedure, loads
// the code address from the procedure's second word, loads argc into the
// dedicated argument-count register, and performs the indirect call; the
// callee leaves its result in topReg.
func (c *Compiler) emitCallSequence(argc int) {
	e := c.body
	e.Instr("call", labelEnsureProcedure)
	e.Instr("movl", asmtext.Disp(4, topReg), asmtext.Reg(scratch1))
	e.Instr("mov", asmtext.Imm(int64(argc)), asmtext.Reg(argCount))
	e.Instr("call", asmtext.Absolute(scratch1))
}

// emitProcedureEntry emits the callee prologue (spec.md §4.4 steps 2-3):
// check the caller passed exactly arity arguments, compute and save the
// post-return stack pointer, save the caller's frame pointer, and set
// frameReg to address the procedure's first argument.
//
// Argument addressing and the push/fetch quirk (DESIGN.md Open Question
// 4). spec.md §9 flags that a naive pairing of "push arguments in source
// order" with "fetch the Nth argument at a positive displacement 4N from
// frameReg" addresses the wrong word for every parameter past the first,
// because later-pushed arguments land at lower addresses while frameReg
// is set to the first-pushed (source order, argument 1) slot. This
// implementation takes spec.md §9's "fix explicitly" option rather than
// its "reverse the push order" option: push order stays exactly as step 1
// describes it (source order), and argAddr below compensates with a
// negative displacement, so multi-argument procedures address the
// argument the caller actually meant.
func emitProcedureEntry(e *asmtext.Emitter, label string, arity int) {
	e.Label(label)
	e.Instr("cmpl", asmtext.Imm(int64(arity)), asmtext.Reg(argCount))
	e.Instr("jnz", labelArgCountWrong)
	e.Instr("lea", asmtext.Scaled(4, "esp", argCount, 4), asmtext.Reg(scratch1))
	e.Instr("push", asmtext.Reg(scratch1))
	e.Instr("push", asmtext.Reg(frameReg))
	e.Instr("lea", asmtext.Disp(-4, scratch1), asmtext.Reg(frameReg))
}

// emitProcedureReturn emits the callee epilogue (spec.md §4.4 step 5):
// restore the caller's frame pointer, recover the saved post-return
// stack pointer and return address, reset esp, and jump indirectly back.
// The result the body left in topReg is untouched.
func emitProcedureReturn(e *asmtext.Emitter) {
	e.Instr("pop", asmtext.Reg(frameReg))
	e.Instr("pop", asmtext.Reg(scratch1))
	e.Instr("pop", asmtext.Reg(scratch2))
	e.Instr("mov", asmtext.Reg(scratch1), asmtext.Reg("esp"))
	e.Instr("jmp", asmtext.Absolute(scratch2))
}

// argAddr returns the operand addressing the index-th argument (0-based,
// source order) of the procedure currently being compiled.
func argAddr(index int) string {
	return asmtext.Disp(-4*index, frameReg)
}
