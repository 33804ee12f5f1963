// Package codegen is the expression compiler and code-generation engine:
// the recursive translator from parsed source forms (pkg/reader) to a
// stack-machine instruction stream expressed as x86 assembly text
// (pkg/asmtext), together with the tagged-value representation
// (pkg/value), the procedure calling convention, and the runtime helper
// routines emitted into every output. This is the subject of spec.md §4.
package codegen

import (
	"fmt"

	"lc32/pkg/asmtext"
)

// Top-of-stack register: the abstract stack's top lives here; the
// remainder lives on the machine stack (spec.md §3).
const topReg = "eax"

// Scratch registers used transiently by special forms and the calling
// convention. Never live across a recompile of a sub-expression.
const (
	scratch1 = "ebx"
	scratch2 = "ecx"
	argCount = "edx" // dedicated argument-count register (spec.md §4.4)
)

// Compiler holds all process-wide mutable state for a single compilation
// pass: the label counter, the global variable table, the deferred
// header, and the lexical environment of the procedure currently being
// compiled (empty at top level). Grounded on the teacher's CodeGen
// (pkg/compiler/codegen.go) plus SymbolTable (symtable.go).
type Compiler struct {
	body        *asmtext.Emitter // user code, in source order
	globalsData *asmtext.Emitter // .data cells for global variables
	rodata      *asmtext.Emitter // .rodata boxed constants (strings, procedure records)

	labels  labelAllocator
	globals *globalTable
	header  *header
	env     environment

	stringPool map[string]string // string literal content -> existing label (dedup)
}

// New returns a Compiler with the runtime-helper manifest already
// registered (spec.md §9's "static manifest" resolution — see
// SPEC_FULL.md §4.3 / DESIGN.md Open Question 2: helpers are emitted
// unconditionally rather than tracked per-use).
func New() *Compiler {
	c := &Compiler{
		body:        asmtext.New(),
		globalsData: asmtext.New(),
		rodata:      asmtext.New(),
		globals:     newGlobalTable(),
		header:      newHeader(),
		stringPool:  make(map[string]string),
	}
	c.registerRuntimeHelpers()
	c.registerBuiltins()
	return c
}

// Body exposes the body emitter for the top-level driver (pkg/driver),
// which emits the program prologue, per-form define/expression dispatch,
// and the final exit syscall directly into it.
func (c *Compiler) Body() *asmtext.Emitter { return c.body }

// Globals exposes the global variable table for the top-level driver's
// define handling and final undefined-reference assertion.
func (c *Compiler) Globals() *globalTable { return c.globals }

// NewLabel allocates a fresh label (spec.md §3).
func (c *Compiler) NewLabel() string { return c.labels.fresh() }

// globalLabel returns the assembly label backing name's global cell,
// emitting its .data reservation the first time name is seen.
func (c *Compiler) globalLabel(name string) string {
	label, isNew := c.globals.labelFor(name)
	if isNew {
		c.globalsData.Raw("\t.align 4")
		c.globalsData.Label(label)
		c.globalsData.Directive(".int", "0")
	}
	return label
}

// Assemble composes the final program text: header first, then the
// accumulated global-variable data cells and rodata constants, then the
// user code body — satisfying spec.md §5's "header before body" ordering
// requirement regardless of which buffering strategy is chosen.
func (c *Compiler) Assemble() string {
	out := asmtext.New()
	out.Raw("\t.text")
	c.header.flush(out)
	if c.globalsData.String() != "" || c.rodata.String() != "" {
		out.Raw("\t.data")
		out.Raw(c.globalsData.String())
		out.Raw("\t.section .rodata")
		out.Raw(c.rodata.String())
	}
	// The header's own flush may leave the active section as .rodata
	// (spec.md §9: newline_string is emitted without re-entering .text in
	// every path) or this compiler's own rodata block may do the same;
	// either way user code always needs .text reasserted explicitly here.
	out.Raw("\t.text")
	out.Raw(c.body.String())
	return out.String()
}

// CheckUndefinedGlobals implements spec.md §3's end-of-compilation
// invariant: every referenced global must have been defined.
func (c *Compiler) CheckUndefinedGlobals() error {
	if undefined := c.globals.undefinedReferences(); len(undefined) > 0 {
		return fmt.Errorf("undefined global(s) referenced but never defined: %v", undefined)
	}
	return nil
}
