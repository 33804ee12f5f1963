package codegen

import (
	"fmt"

	"lc32/pkg/asmtext"
	"lc32/pkg/reader"
	"lc32/pkg/value"
)

// specialFormFn compiles the arguments of a special-form application
// (the form's head symbol already consumed). discard reports whether the
// result is known to be thrown away immediately, letting a form skip
// work that only matters when its value is observed.
type specialFormFn func(c *Compiler, args []reader.Form, discard bool) error

// specialForms is the fixed dispatch table of spec.md §4.5/§4.6: every
// other pair-shaped form is an ordinary application (spec.md §4.4).
//
// Populated in init() rather than via a var initializer: a direct
// composite-literal initializer here creates a Go initialization cycle,
// since these functions transitively call back into compileExpr, which
// reads specialForms.
var specialForms map[string]specialFormFn

func init() {
	specialForms = map[string]specialFormFn{
		"begin":  compileBegin,
		"if":     compileIf,
		"lambda": compileLambda,
		"+":      compilePlus,
		"-":      compileMinus,
	}
}

// emptyBeginSentinel is the literal word spec.md §9 documents an empty
// (begin) as producing: 31, an untagged bit pattern that happens to carry
// the unused tag (11) rather than any well-formed value. Preserved
// verbatim rather than changed to, say, nil — see DESIGN.md Open
// Question 6.
const emptyBeginSentinel = 31

// compileBegin compiles each body expression in sequence, discarding the
// value of every expression but the last.
func compileBegin(c *Compiler, args []reader.Form, discard bool) error {
	if len(args) == 0 {
		c.body.Instr("mov", asmtext.Imm(emptyBeginSentinel), asmtext.Reg(topReg))
		return nil
	}
	for _, form := range args[:len(args)-1] {
		if err := c.compileExpr(form, true); err != nil {
			return err
		}
	}
	return c.compileExpr(args[len(args)-1], discard)
}

// compileIf compiles (if cond then [else]). Only #f is false; every other
// value, including 0 and (), is true (spec.md §4.5).
func compileIf(c *Compiler, args []reader.Form, discard bool) error {
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("if: expected 2 or 3 arguments, got %d", len(args))
	}
	if err := c.compileExpr(args[0], false); err != nil {
		return err
	}
	elseLabel := c.NewLabel()
	endLabel := c.NewLabel()
	c.body.Instr("cmpl", asmtext.Imm(int64(value.False)), asmtext.Reg(topReg))
	c.body.Instr("je", elseLabel)
	if err := c.compileExpr(args[1], discard); err != nil {
		return err
	}
	c.body.Instr("jmp", endLabel)
	c.body.Label(elseLabel)
	if len(args) == 3 {
		if err := c.compileExpr(args[2], discard); err != nil {
			return err
		}
	} else {
		c.body.Instr("mov", asmtext.Imm(int64(value.Nil)), asmtext.Reg(topReg))
	}
	c.body.Label(endLabel)
	return nil
}

// compileLambda compiles (lambda (params...) body) into a standalone
// procedure emitted inline (jmp-over-it, then a skip: label — spec.md
// §4.5) and leaves a freshly materialized boxed procedure value in
// topReg. Nested closures over an outer procedure's locals are rejected
// at compile time (DESIGN.md Open Question 3): this dialect has no
// captured-upvalue binding variant, so a lambda's body may only reference
// its own parameters and globals.
func compileLambda(c *Compiler, args []reader.Form, discard bool) error {
	if len(args) != 2 {
		return fmt.Errorf("lambda: expected (lambda (params...) body), got %d forms", len(args))
	}
	paramList, ok := args[0].(*reader.List)
	if !ok {
		return fmt.Errorf("lambda: parameter list must be a list")
	}
	names := make([]string, len(paramList.Elems))
	bindings := make([]binding, len(paramList.Elems))
	for i, p := range paramList.Elems {
		sym, ok := p.(*reader.Symbol)
		if !ok {
			return fmt.Errorf("lambda: parameter %d is not a symbol", i)
		}
		names[i] = sym.Name
		bindings[i] = argBinding{Index: i}
	}

	procLabel := c.NewLabel()
	skipLabel := c.NewLabel()

	c.body.Instr("jmp", skipLabel)
	emitProcedureEntry(c.body, procLabel, len(names))
	c.env.pushFrame(names, bindings)
	if err := c.compileExpr(args[1], false); err != nil {
		c.env.popFrame()
		return err
	}
	c.env.popFrame()
	emitProcedureReturn(c.body)
	c.body.Label(skipLabel)

	objLabel := c.NewLabel()
	emitBoxedProcedure(c.rodata, objLabel, procLabel)
	if discard {
		return nil
	}
	c.body.Instr("mov", asmtext.ImmLabel(objLabel), asmtext.Reg(topReg))
	return nil
}

// compilePlus and compileMinus implement the two arithmetic special forms
// (spec.md §4.6). Both operands are type-checked via ensure_integer by
// swapping each into topReg in turn ("swap-to-check-in-place"), since
// ensure_integer only ever inspects topReg. The tagged-integer
// representation (4n+1) means a raw add produces 4(a+b)+2 and a raw
// subtract produces 4(a-b)+0; each is corrected back to a well-formed
// tagged integer by a single inc/dec afterward.
func compilePlus(c *Compiler, args []reader.Form, discard bool) error {
	return compileArith(c, args, "add", false)
}

func compileMinus(c *Compiler, args []reader.Form, discard bool) error {
	return compileArith(c, args, "sub", true)
}

func compileArith(c *Compiler, args []reader.Form, op string, subtract bool) error {
	if len(args) != 2 {
		return fmt.Errorf("arithmetic form expects exactly 2 operands, got %d", len(args))
	}
	if err := c.compileExpr(args[0], false); err != nil { // eax = a
		return err
	}
	c.body.Instr("push", asmtext.Reg(topReg))
	if err := c.compileExpr(args[1], false); err != nil { // eax = b
		return err
	}
	c.body.Instr("call", labelEnsureInteger) // checks b
	c.body.Instr("pop", asmtext.Reg(scratch1))
	c.body.Instr("xchg", asmtext.Reg(topReg), asmtext.Reg(scratch1)) // eax = a, ebx = b
	c.body.Instr("call", labelEnsureInteger)                         // checks a
	c.body.Instr("xchg", asmtext.Reg(topReg), asmtext.Reg(scratch1)) // eax = b, ebx = a

	if subtract {
		c.body.Instr("sub", asmtext.Reg(topReg), asmtext.Reg(scratch1)) // ebx = a - b (untagged by 4x)
		c.body.Instr("inc", asmtext.Reg(scratch1))
		c.body.Instr("mov", asmtext.Reg(scratch1), asmtext.Reg(topReg))
		return nil
	}
	c.body.Instr(op, asmtext.Reg(scratch1), asmtext.Reg(topReg)) // eax = a + b (untagged by 4x)
	c.body.Instr("dec", asmtext.Reg(topReg))
	return nil
}
