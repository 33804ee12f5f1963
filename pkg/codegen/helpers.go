package codegen

import (
	"fmt"

	"lc32/pkg/asmtext"
	"lc32/pkg/value"
)

// Reserved fixed helper/message label names (spec.md §6). Everything
// else this file emits (e.g. individual message labels other than
// not_int_msg) is free-form, since spec.md only reserves these ten.
const (
	labelEnsureProcedure = "ensure_procedure"
	labelEnsureString    = "ensure_string"
	labelEnsureInteger   = "ensure_integer"
	labelNotProcedure    = "not_procedure"
	labelNotString       = "notstring"
	labelNotAnInteger    = "not_an_integer"
	labelArgCountWrong   = "argument_count_wrong"
	labelReportError     = "report_error"
	labelNewlineString   = "newline_string"
	labelNotIntMsg       = "not_int_msg"
)

const (
	msgNotProcedure = "type error: not a procedure\n"
	msgNotString    = "type error: not a string\n"
	// msgNotInteger deliberately has no trailing newline — spec.md §9
	// documents this as a known inconsistency to preserve, not a bug to fix.
	msgNotInteger  = "type error: not an integer"
	msgArgCount    = "error: wrong number of arguments\n"
	contentNewline = "\n"
)

// registerRuntimeHelpers registers the fixed manifest of runtime helpers
// (spec.md §4.3) on the header. Each is idempotent and self-contained;
// registration order here is the order they appear in the assembled
// output (spec.md §3's "deferred header" invariant).
func (c *Compiler) registerRuntimeHelpers() {
	c.header.register(labelEnsureProcedure, emitEnsureProcedure)
	c.header.register(labelEnsureString, emitEnsureString)
	c.header.register(labelEnsureInteger, emitEnsureInteger)
	c.header.register(labelReportError, emitReportError)
	c.header.register(labelNotProcedure, emitNotProcedure)
	c.header.register(labelNotString, emitNotString)
	c.header.register(labelNotAnInteger, emitNotAnInteger)
	c.header.register(labelArgCountWrong, emitArgCountWrong)
	// Registered last: the fixed-message rodata block, including
	// newline_string. Per spec.md §9 this thunk does not re-enter .text
	// after writing .rodata — whatever is emitted after it must reassert
	// .text before emitting instructions, as emitBuiltinProcCode and
	// Compiler.Assemble do.
	c.header.register("header_data", emitHeaderData)
}

// ensure_procedure: top-of-stack must be a pointer tagged value whose
// first word is the procedure magic.
func emitEnsureProcedure(e *asmtext.Emitter) {
	e.Label(labelEnsureProcedure)
	e.Instr("test", asmtext.Imm(3), asmtext.Reg(topReg))
	e.Instr("jnz", labelNotProcedure)
	e.Instr("cmpl", asmtext.Imm(int64(value.MagicProcedure)), asmtext.Indirect(topReg))
	e.Instr("jnz", labelNotProcedure)
	e.Instr("ret")
}

// ensure_string: analogous, string magic.
func emitEnsureString(e *asmtext.Emitter) {
	e.Label(labelEnsureString)
	e.Instr("test", asmtext.Imm(3), asmtext.Reg(topReg))
	e.Instr("jnz", labelNotString)
	e.Instr("cmpl", asmtext.Imm(int64(value.MagicString)), asmtext.Indirect(topReg))
	e.Instr("jnz", labelNotString)
	e.Instr("ret")
}

// ensure_integer: low tag bits must be exactly 01. scratch1 is saved and
// restored, since the arithmetic forms keep their other operand there.
func emitEnsureInteger(e *asmtext.Emitter) {
	e.Label(labelEnsureInteger)
	e.Instr("push", asmtext.Reg(scratch1))
	e.Instr("mov", asmtext.Reg(topReg), asmtext.Reg(scratch1))
	e.Instr("and", asmtext.Imm(3), asmtext.Reg(scratch1))
	e.Instr("cmpl", asmtext.Imm(int64(value.TagInteger)), asmtext.Reg(scratch1))
	e.Instr("pop", asmtext.Reg(scratch1))
	e.Instr("jnz", labelNotAnInteger)
	e.Instr("ret")
}

// report_error: top-of-stack is a string value; print it to stdout and
// exit with status 1. __NR_write=4, __NR_exit=1, fd 1 (spec.md §5).
func emitReportError(e *asmtext.Emitter) {
	e.Label(labelReportError)
	e.Instr("movl", asmtext.Disp(4, topReg), asmtext.Reg(argCount)) // length
	e.Instr("leal", asmtext.Disp(8, topReg), asmtext.Reg(scratch2)) // buffer address
	e.Instr("mov", asmtext.Imm(1), asmtext.Reg(scratch1))           // fd = stdout
	e.Instr("mov", asmtext.Imm(4), asmtext.Reg(topReg))             // __NR_write
	e.Instr("int", asmtext.Imm(0x80))
	e.Instr("mov", asmtext.Imm(1), asmtext.Reg(scratch1)) // exit status 1
	e.Instr("mov", asmtext.Imm(1), asmtext.Reg(topReg))   // __NR_exit
	e.Instr("int", asmtext.Imm(0x80))
}

func emitMessageStub(e *asmtext.Emitter, label, msgLabel string) {
	e.Label(label)
	e.Instr("mov", asmtext.ImmLabel(msgLabel), asmtext.Reg(topReg))
	e.Instr("jmp", labelReportError)
}

func emitNotProcedure(e *asmtext.Emitter) { emitMessageStub(e, labelNotProcedure, "not_proc_msg") }
func emitNotString(e *asmtext.Emitter)    { emitMessageStub(e, labelNotString, "not_string_msg") }
func emitNotAnInteger(e *asmtext.Emitter) { emitMessageStub(e, labelNotAnInteger, labelNotIntMsg) }
func emitArgCountWrong(e *asmtext.Emitter) {
	emitMessageStub(e, labelArgCountWrong, "argcount_msg")
}

// emitHeaderData emits the fixed message strings and newline_string as
// boxed string constants in .rodata. Left un-terminated by a .text
// directive on purpose (spec.md §9).
func emitHeaderData(e *asmtext.Emitter) {
	e.Raw("\t.section .rodata")
	emitBoxedString(e, "not_proc_msg", msgNotProcedure)
	emitBoxedString(e, "not_string_msg", msgNotString)
	emitBoxedString(e, labelNotIntMsg, msgNotInteger)
	emitBoxedString(e, "argcount_msg", msgArgCount)
	emitBoxedString(e, labelNewlineString, contentNewline)
}

// emitBoxedString writes a complete boxed string object (spec.md §3:
// magic, then length, then raw bytes) under label, 4-byte aligned so its
// address always carries the pointer tag 00.
func emitBoxedString(e *asmtext.Emitter, label, content string) {
	e.Raw("\t.align 4")
	e.Label(label)
	e.Directive(".int", fmt.Sprintf("0x%x", value.MagicString))
	e.Directive(".int", fmt.Sprintf("%d", len(content)))
	e.Raw("\t" + asmtext.AsciiDirective(content))
}
