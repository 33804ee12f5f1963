package codegen

import (
	"fmt"

	"lc32/pkg/asmtext"
	"lc32/pkg/value"
)

// Builtin library procedures (spec.md §2's "Bootstrap library", realized
// as ordinary boxed Lisp procedure values rather than emitted Lisp source
// — see DESIGN.md Open Question 1). eq? is raw-word equality, which also
// correctly implements numeric = since tagged integers are canonical bit
// patterns; display and newline are the minimal I/O surface a program
// needs to produce observable output under spec.md §5's syscall ABI.
const (
	labelEqProc      = "builtin_eq"
	labelDisplayProc = "builtin_display"
	labelNewlineProc = "builtin_newline"
	labelItoa        = "int_to_string"

	nameEq      = "eq?"
	nameEquals  = "="
	nameDisplay = "display"
	nameNewline = "newline"
)

// registerBuiltins schedules the header thunks that emit the builtin
// procedures' boxed-procedure rodata records and .text bodies. It does not
// touch the global table: the builtins' global cells are allocated and
// marked defined by EmitBuiltinInit, which must run as instructions in
// program order, so pkg/driver calls it at the top of the emitted entry
// point.
func (c *Compiler) registerBuiltins() {
	c.header.register("builtin_proc_code", emitBuiltinProcCode)
	c.header.register(labelItoa, emitItoa)
	c.header.register("builtin_proc_objects", emitBuiltinProcObjects)
	c.header.register("builtin_display_strings", emitBuiltinDisplayStrings)
}

// EmitBuiltinInit emits the instructions that populate the eq?/=/display/
// newline global cells with their boxed-procedure addresses and marks
// them defined, mirroring an ordinary (define name ...) at the top level.
// Called once by pkg/driver immediately after the entry label.
func (c *Compiler) EmitBuiltinInit(e *asmtext.Emitter) {
	c.emitBuiltinCellInit(e, nameEq, "eq_proc_obj")
	c.emitBuiltinCellInit(e, nameEquals, "eq_proc_obj") // = aliases eq?'s procedure object
	c.emitBuiltinCellInit(e, nameDisplay, "display_proc_obj")
	c.emitBuiltinCellInit(e, nameNewline, "newline_proc_obj")
}

func (c *Compiler) emitBuiltinCellInit(e *asmtext.Emitter, name, objLabel string) {
	label := c.globalLabel(name)
	e.Instr("mov", asmtext.ImmLabel(objLabel), asmtext.Reg(topReg))
	e.Instr("mov", asmtext.Reg(topReg), asmtext.Label(label))
	if err := c.globals.markDefined(name); err != nil {
		panic(err) // builtins are defined exactly once, at construction
	}
}

// emitBuiltinProcCode emits the three builtin procedure bodies. The thunk
// registered immediately before this one (header_data, helpers.go) leaves
// .rodata active, so this reasserts .text first rather than trusting the
// previous thunk's section to carry over.
func emitBuiltinProcCode(e *asmtext.Emitter) {
	e.Raw("\t.text")
	emitEqProc(e)
	emitDisplayProc(e)
	emitNewlineProc(e)
}

// eq?: 2-argument procedure, raw tagged-word equality.
func emitEqProc(e *asmtext.Emitter) {
	emitProcedureEntry(e, labelEqProc, 2)
	e.Instr("mov", argAddr(0), asmtext.Reg(topReg))
	e.Instr("mov", argAddr(1), asmtext.Reg(scratch1))
	e.Instr("cmp", asmtext.Reg(scratch1), asmtext.Reg(topReg))
	trueLabel := labelEqProc + "_true"
	doneLabel := labelEqProc + "_done"
	e.Instr("mov", asmtext.Imm(int64(value.False)), asmtext.Reg(topReg))
	e.Instr("je", trueLabel)
	e.Instr("jmp", doneLabel)
	e.Label(trueLabel)
	e.Instr("mov", asmtext.Imm(int64(value.True)), asmtext.Reg(topReg))
	e.Label(doneLabel)
	emitProcedureReturn(e)
}

// display: 1-argument procedure. Writes a textual representation of its
// argument to stdout and returns the argument unchanged (spec.md leaves
// display's return value unspecified; returning the argument costs
// nothing and lets display appear anywhere an expression is expected).
func emitDisplayProc(e *asmtext.Emitter) {
	emitProcedureEntry(e, labelDisplayProc, 1)
	e.Instr("mov", argAddr(0), asmtext.Reg(topReg))

	pointerCase := labelDisplayProc + "_pointer"
	integerCase := labelDisplayProc + "_integer"
	enumCase := labelDisplayProc + "_enum"
	doneCase := labelDisplayProc + "_done"

	e.Instr("mov", asmtext.Reg(topReg), asmtext.Reg(scratch1))
	e.Instr("and", asmtext.Imm(3), asmtext.Reg(scratch1))
	e.Instr("cmpl", asmtext.Imm(int64(value.TagPointer)), asmtext.Reg(scratch1))
	e.Instr("je", pointerCase)
	e.Instr("cmpl", asmtext.Imm(int64(value.TagInteger)), asmtext.Reg(scratch1))
	e.Instr("je", integerCase)
	e.Instr("jmp", enumCase)

	e.Label(pointerCase)
	e.Instr("cmpl", asmtext.Imm(int64(value.MagicString)), asmtext.Indirect(topReg))
	e.Instr("jnz", doneCase) // non-string pointer (a procedure): nothing sensible to print
	e.Instr("movl", asmtext.Disp(4, topReg), asmtext.Reg(argCount))
	e.Instr("leal", asmtext.Disp(8, topReg), asmtext.Reg(scratch2))
	e.Instr("jmp", "write_stdout")

	e.Label(integerCase)
	e.Instr("sar", asmtext.Imm(2), asmtext.Reg(topReg))
	e.Instr("call", labelItoa)
	e.Instr("mov", asmtext.Reg(topReg), asmtext.Reg(scratch2))
	e.Instr("jmp", "write_stdout")

	e.Label(enumCase)
	e.Instr("cmpl", asmtext.Imm(int64(value.True)), asmtext.Reg(topReg))
	e.Instr("je", "display_true")
	e.Instr("cmpl", asmtext.Imm(int64(value.False)), asmtext.Reg(topReg))
	e.Instr("je", "display_false")
	e.Instr("cmpl", asmtext.Imm(int64(value.Nil)), asmtext.Reg(topReg))
	e.Instr("je", "display_nil")
	e.Instr("jmp", doneCase) // chars and #eof are left unprinted for now

	e.Label("display_true")
	e.Instr("movl", asmtext.Imm(2), asmtext.Reg(argCount))
	e.Instr("leal", asmtext.ImmLabel("true_str"), asmtext.Reg(scratch2))
	e.Instr("jmp", "write_stdout")

	e.Label("display_false")
	e.Instr("movl", asmtext.Imm(2), asmtext.Reg(argCount))
	e.Instr("leal", asmtext.ImmLabel("false_str"), asmtext.Reg(scratch2))
	e.Instr("jmp", "write_stdout")

	e.Label("display_nil")
	e.Instr("movl", asmtext.Imm(2), asmtext.Reg(argCount))
	e.Instr("leal", asmtext.ImmLabel("nil_str"), asmtext.Reg(scratch2))
	e.Instr("jmp", "write_stdout")

	e.Label("write_stdout") // length already in argCount, buffer already in scratch2
	e.Instr("mov", asmtext.Imm(1), asmtext.Reg(scratch1)) // fd = stdout
	e.Instr("mov", asmtext.Imm(4), asmtext.Reg(topReg))   // __NR_write
	e.Instr("int", asmtext.Imm(0x80))

	e.Label(doneCase)
	e.Instr("mov", argAddr(0), asmtext.Reg(topReg))
	emitProcedureReturn(e)
}

// newline: 0-argument procedure, writes a single newline byte.
func emitNewlineProc(e *asmtext.Emitter) {
	emitProcedureEntry(e, labelNewlineProc, 0)
	e.Instr("movl", asmtext.Imm(1), asmtext.Reg(argCount))
	e.Instr("mov", asmtext.ImmLabel(labelNewlineString), asmtext.Reg(scratch2))
	e.Instr("addl", asmtext.Imm(8), asmtext.Reg(scratch2))
	e.Instr("mov", asmtext.Imm(1), asmtext.Reg(scratch1))
	e.Instr("mov", asmtext.Imm(4), asmtext.Reg(topReg))
	e.Instr("int", asmtext.Imm(0x80))
	e.Instr("mov", asmtext.Imm(int64(value.Nil)), asmtext.Reg(topReg))
	emitProcedureReturn(e)
}

// emitItoa converts the signed integer in topReg to its decimal ASCII
// form, written backward into itoa_buf. Returns a pointer to the first
// digit in topReg and the digit count in argCount. Reasserts .text up
// front: although the thunk registered immediately before this one
// (builtin_proc_code, above) leaves .text active, this thunk itself ends
// by switching to .data/.rodata for itoa_buf, so it cannot assume its own
// start finds .text active if registration order ever changes.
func emitItoa(e *asmtext.Emitter) {
	e.Raw("\t.text")
	e.Label(labelItoa)
	e.Instr("push", asmtext.Reg(frameReg))
	e.Instr("mov", asmtext.Reg(topReg), asmtext.Reg(frameReg)) // save original (sign test)
	negLabel := labelItoa + "_neg"
	loopLabel := labelItoa + "_loop"
	e.Instr("testl", asmtext.Reg(topReg), asmtext.Reg(topReg))
	e.Instr("jns", negLabel)
	e.Instr("neg", asmtext.Reg(topReg))
	e.Label(negLabel)
	e.Instr("mov", asmtext.ImmLabel("itoa_buf+16"), asmtext.Reg(scratch2))
	e.Label(loopLabel)
	e.Instr("xor", asmtext.Reg(argCount), asmtext.Reg(argCount))
	e.Instr("mov", asmtext.Imm(10), asmtext.Reg(scratch1))
	e.Instr("divl", asmtext.Reg(scratch1))
	e.Instr("addl", asmtext.Imm(48), asmtext.Reg(argCount))
	e.Instr("dec", asmtext.Reg(scratch2))
	e.Instr("movb", asmtext.Reg("dl"), asmtext.Indirect(scratch2))
	e.Instr("testl", asmtext.Reg(topReg), asmtext.Reg(topReg))
	e.Instr("jnz", loopLabel)
	e.Instr("testl", asmtext.Reg(frameReg), asmtext.Reg(frameReg))
	e.Instr("jns", labelItoa+"_done")
	e.Instr("dec", asmtext.Reg(scratch2))
	e.Instr("movb", asmtext.Imm(45), asmtext.Indirect(scratch2)) // '-'
	e.Label(labelItoa + "_done")
	e.Instr("mov", asmtext.Reg(scratch2), asmtext.Reg(topReg))
	e.Instr("mov", asmtext.ImmLabel("itoa_buf+16"), asmtext.Reg(argCount))
	e.Instr("sub", asmtext.Reg(topReg), asmtext.Reg(argCount))
	e.Instr("pop", asmtext.Reg(frameReg))
	e.Instr("ret")
	e.Raw("\t.data")
	e.Raw("\t.align 4")
	e.Raw("itoa_buf:")
	e.Directive(".space", "16")
	e.Raw("\t.section .rodata")
}

func emitBuiltinProcObjects(e *asmtext.Emitter) {
	e.Raw("\t.section .rodata")
	emitBoxedProcedure(e, "eq_proc_obj", labelEqProc)
	emitBoxedProcedure(e, "display_proc_obj", labelDisplayProc)
	emitBoxedProcedure(e, "newline_proc_obj", labelNewlineProc)
}

func emitBoxedProcedure(e *asmtext.Emitter, label, codeLabel string) {
	e.Raw("\t.align 4")
	e.Label(label)
	e.Directive(".int", fmt.Sprintf("0x%x", value.MagicProcedure))
	e.Directive(".int", codeLabel)
}

func emitBuiltinDisplayStrings(e *asmtext.Emitter) {
	e.Raw("\t.section .rodata")
	e.Raw("\t.align 1")
	e.Label("true_str")
	e.Raw("\t" + asmtext.AsciiDirective("#t"))
	e.Label("false_str")
	e.Raw("\t" + asmtext.AsciiDirective("#f"))
	e.Label("nil_str")
	e.Raw("\t" + asmtext.AsciiDirective("()"))
}
