package codegen

import "fmt"

// globalVar records the label backing one mutable top-level name.
type globalVar struct {
	Label string
}

// globalTable is the global variable table of spec.md §3: a mapping from
// source-level name to an assembly label for a single mutable machine
// word, plus a parallel set of which names have actually been *defined*
// (as opposed to merely referenced). Grounded on the teacher's
// SymbolTable.globals (pkg/compiler/symtable.go), generalized from a
// typed/offset-aware table to the flatter single-word global this
// dialect needs.
type globalTable struct {
	vars    map[string]*globalVar
	defined map[string]bool
	// refOrder preserves first-reference order so the undefined-global
	// diagnostic at end-of-compilation is deterministic.
	refOrder []string
}

func newGlobalTable() *globalTable {
	return &globalTable{
		vars:    make(map[string]*globalVar),
		defined: make(map[string]bool),
	}
}

// labelFor returns the label for name, allocating one (and recording a
// reference) on first use. isNew reports whether this call allocated it,
// so the caller can emit the backing .data cell exactly once.
func (g *globalTable) labelFor(name string) (label string, isNew bool) {
	gv, ok := g.vars[name]
	if !ok {
		gv = &globalVar{Label: "g_" + mangle(name)}
		g.vars[name] = gv
		g.refOrder = append(g.refOrder, name)
		isNew = true
	}
	return gv.Label, isNew
}

// markDefined records that name has been initialized by a top-level
// define. Returns an error if name was already defined (spec.md §7:
// "define naming an already-defined global").
func (g *globalTable) markDefined(name string) error {
	if g.defined[name] {
		return fmt.Errorf("%q is already defined", name)
	}
	g.labelFor(name) // ensure a label exists even if never separately referenced (isNew ignored: caller emits data cells via Compiler.globalLabel)
	g.defined[name] = true
	return nil
}

// undefinedReferences returns every referenced-but-never-defined name, in
// first-reference order (spec.md §3 invariant / §7 end-of-compilation
// check).
func (g *globalTable) undefinedReferences() []string {
	var undefined []string
	for _, name := range g.refOrder {
		if !g.defined[name] {
			undefined = append(undefined, name)
		}
	}
	return undefined
}

// mangle turns an arbitrary source identifier (which may contain
// characters illegal in an assembler label, e.g. "+", "set!", "a-b") into
// a label-safe suffix.
func mangle(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
			out = append(out, []rune(fmt.Sprintf("%02x", r))...)
			out = append(out, '_')
		}
	}
	return string(out)
}
