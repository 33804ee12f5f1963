package codegen

import (
	"fmt"

	"lc32/pkg/asmtext"
	"lc32/pkg/reader"
	"lc32/pkg/value"
)

// compileExpr dispatches on the shape of form and emits code that leaves
// exactly one new value on top of the abstract stack (spec.md §3), i.e.
// in topReg. discard tells a form whether its caller will look at the
// result; forms use it to skip work a discarded value doesn't need. The
// callers that pass true are begin (for every expression but its last)
// and CompileTopLevelForm (for top-level expression statements).
func (c *Compiler) compileExpr(form reader.Form, discard bool) error {
	switch f := form.(type) {
	case *reader.List:
		return c.compileList(f, discard)
	case *reader.Symbol:
		return c.compileVariableRef(f, discard)
	case *reader.StringForm:
		return c.compileStringLiteral(f, discard)
	case *reader.Integer:
		return c.compileIntegerLiteral(f, discard)
	case *reader.Bool:
		return c.compileBoolLiteral(f, discard)
	default:
		return fmt.Errorf("cannot compile form of type %T as an expression", form)
	}
}

func (c *Compiler) compileList(list *reader.List, discard bool) error {
	if len(list.Elems) == 0 {
		if discard {
			return nil
		}
		c.body.Instr("mov", asmtext.Imm(int64(value.Nil)), asmtext.Reg(topReg))
		return nil
	}
	if name, ok := list.HeadSymbol(); ok {
		if name == "quote" {
			return fmt.Errorf("quoted data is not supported: symbols and lists are not first-class values in this dialect")
		}
		if fn, ok := specialForms[name]; ok {
			return fn(c, list.Elems[1:], discard)
		}
	}
	return c.compileApplication(list.Elems[0], list.Elems[1:], discard)
}

// compileApplication compiles a general procedure call: arguments pushed
// in source order, then the operator expression evaluated into topReg,
// then the calling-convention call sequence (spec.md §4.4).
func (c *Compiler) compileApplication(operator reader.Form, args []reader.Form, discard bool) error {
	for _, arg := range args {
		if err := c.compileExpr(arg, false); err != nil {
			return err
		}
		c.body.Instr("push", asmtext.Reg(topReg))
	}
	if err := c.compileExpr(operator, false); err != nil {
		return err
	}
	c.emitCallSequence(len(args))
	return nil
}

// compileVariableRef resolves name against the lexical environment first,
// falling through to the global table (spec.md §3). A reference to a
// binding that lives in an enclosing procedure's frame (rather than the
// current one, or the top level) is a nested-closure capture this dialect
// does not support, and is rejected at compile time.
func (c *Compiler) compileVariableRef(sym *reader.Symbol, discard bool) error {
	if c.env.capturesOuterLocal(sym.Name) {
		return fmt.Errorf("%q: closing over an outer procedure's local variable is not supported", sym.Name)
	}
	b, isLocal, ok := c.env.lookup(sym.Name)
	if ok && isLocal {
		switch bd := b.(type) {
		case argBinding:
			if discard {
				return nil
			}
			c.body.Instr("mov", argAddr(bd.Index), asmtext.Reg(topReg))
			return nil
		default:
			return fmt.Errorf("%q: unsupported binding kind %q", sym.Name, b.bindingKind())
		}
	}
	label := c.globalLabel(sym.Name)
	if discard {
		return nil
	}
	c.body.Instr("mov", asmtext.Label(label), asmtext.Reg(topReg))
	return nil
}

// compileStringLiteral materializes a boxed string constant in .rodata
// (deduplicated by content) and loads its address.
func (c *Compiler) compileStringLiteral(s *reader.StringForm, discard bool) error {
	label, ok := c.stringPool[s.Value]
	if !ok {
		label = c.NewLabel()
		emitBoxedString(c.rodata, label, s.Value)
		c.stringPool[s.Value] = label
	}
	if discard {
		return nil
	}
	c.body.Instr("mov", asmtext.ImmLabel(label), asmtext.Reg(topReg))
	return nil
}

// compileIntegerLiteral materializes a tagged integer immediate (4n+1).
func (c *Compiler) compileIntegerLiteral(n *reader.Integer, discard bool) error {
	if discard {
		return nil
	}
	c.body.Instr("mov", asmtext.Imm(int64(value.TaggedInt(int32(n.Value)))), asmtext.Reg(topReg))
	return nil
}

// compileBoolLiteral materializes the #t/#f enum singleton.
func (c *Compiler) compileBoolLiteral(b *reader.Bool, discard bool) error {
	if discard {
		return nil
	}
	word := value.False
	if b.Value {
		word = value.True
	}
	c.body.Instr("mov", asmtext.Imm(int64(word)), asmtext.Reg(topReg))
	return nil
}
