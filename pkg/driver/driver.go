// Package driver is the top-level compilation driver (spec.md §3): it
// owns the per-form define-vs-expression dispatch loop, the program
// prologue (entry points and builtin initialization) and epilogue (the
// exit syscall), and the final undefined-global assertion. Grounded on
// the teacher's compile.go/main.go driving loop (pkg/compiler/compile.go,
// cmd/console/main.go), generalized from a one-shot "compile whole file"
// call to this dialect's per-form top-level loop.
package driver

import (
	"fmt"

	"lc32/pkg/asmtext"
	"lc32/pkg/codegen"
	"lc32/pkg/reader"
)

// entryLabel is the strong entry point a bare linked binary starts at;
// main is emitted as a weak alias so the object can also be linked
// against a C runtime that expects to call main itself (spec.md §5).
const entryLabel = "_start"

// Compile translates src, a stream of top-level forms in the dialect
// spec.md §2 describes, into complete x86 GNU-assembler text ready to
// hand to an external assembler and linker.
func Compile(src string) (string, error) {
	forms, err := reader.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	c := codegen.New()
	emitPrologue(c)

	for _, form := range forms {
		if err := c.CompileTopLevelForm(form); err != nil {
			return "", fmt.Errorf("compile error: %w", err)
		}
	}

	emitEpilogue(c)

	if err := c.CheckUndefinedGlobals(); err != nil {
		return "", err
	}
	return c.Assemble(), nil
}

// emitPrologue emits the process entry points and initializes the
// builtin global procedures (eq?, =, display, newline) before any
// user-level form runs.
func emitPrologue(c *codegen.Compiler) {
	e := c.Body()
	e.Directive(".globl", entryLabel)
	e.Directive(".weak", "main")
	e.Raw("main = " + entryLabel)
	e.Label(entryLabel)
	c.EmitBuiltinInit(e)
}

// emitEpilogue emits the exit(0) syscall every compiled program ends
// with once its top-level forms have all run (spec.md §5).
func emitEpilogue(c *codegen.Compiler) {
	e := c.Body()
	e.Instr("mov", asmtext.Imm(0), asmtext.Reg("ebx"))
	e.Instr("mov", asmtext.Imm(1), asmtext.Reg("eax")) // __NR_exit
	e.Instr("int", asmtext.Imm(0x80))
}
