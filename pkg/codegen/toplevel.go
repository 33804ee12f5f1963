package codegen

import (
	"fmt"

	"lc32/pkg/asmtext"
	"lc32/pkg/reader"
)

// CompileTopLevelForm compiles one form read at the top level (spec.md
// §3): either a (define name expr), which evaluates expr and stores it
// into name's global cell, or an ordinary expression compiled for effect
// only (spec.md §4.6's "discarding" compile mode) — its value, if any, is
// never observed once control moves to the next form.
func (c *Compiler) CompileTopLevelForm(form reader.Form) error {
	if list, ok := form.(*reader.List); ok {
		if name, ok := list.HeadSymbol(); ok && name == "define" {
			return c.compileDefine(list.Elems[1:])
		}
	}
	return c.compileExpr(form, true)
}

func (c *Compiler) compileDefine(args []reader.Form) error {
	if len(args) != 2 {
		return fmt.Errorf("define: expected (define name expr), got %d forms", len(args))
	}
	sym, ok := args[0].(*reader.Symbol)
	if !ok {
		return fmt.Errorf("define: name must be a symbol")
	}
	if err := c.compileExpr(args[1], false); err != nil {
		return err
	}
	label := c.globalLabel(sym.Name)
	c.body.Instr("mov", asmtext.Reg(topReg), asmtext.Label(label))
	return c.globals.markDefined(sym.Name)
}
