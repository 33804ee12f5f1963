package codegen

// binding is the tagged variant spec.md §9 calls a "binding descriptor":
// an environment entry that, when materialized, emits code to push that
// variable's current value onto the abstract stack. Today the only
// variant is argBinding (an argument of the current procedure frame); the
// variant shape is deliberately left open for a future upvalBinding
// (captured outer slot), which nested closures would need and which this
// implementation does not support (see DESIGN.md Open Question 3).
type binding interface {
	bindingKind() string
}

// argBinding is a reference to the Index-th argument of the procedure
// currently being compiled.
type argBinding struct {
	Index int
}

func (argBinding) bindingKind() string { return "arg" }

// envFrame is one lexical scope: an ordered sequence of (name -> binding)
// pairs, innermost bindings shadowing outer ones of the same name.
// Grounded on the teacher's SymbolTable scope stack (symtable.go
// EnterScope/ExitScope), generalized from stack-offset integers to the
// binding-descriptor variant above.
type envFrame struct {
	names    []string
	bindings []binding
}

// environment is the ordered stack of lexical scopes active while
// compiling the body of the procedure currently being emitted. A lookup
// miss falls through to the global table (spec.md §3).
type environment struct {
	frames []*envFrame
}

// pushFrame opens a new innermost scope, pre-populated with one binding
// per name (used for a lambda's parameter list).
func (e *environment) pushFrame(names []string, bindings []binding) {
	e.frames = append(e.frames, &envFrame{names: names, bindings: bindings})
}

// popFrame closes the innermost scope.
func (e *environment) popFrame() {
	e.frames = e.frames[:len(e.frames)-1]
}

// lookup returns the innermost binding for name, searching frames from
// most to least recently pushed, together with whether that binding lives
// in the current innermost frame (isLocal) or some enclosing one (a
// reference that, if compiled, would address a frame pointer that is no
// longer current — see capturesOuterLocal). ok is false on a global (or
// undefined) reference.
func (e *environment) lookup(name string) (b binding, isLocal bool, ok bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		frame := e.frames[i]
		for j := len(frame.names) - 1; j >= 0; j-- {
			if frame.names[j] == name {
				return frame.bindings[j], i == len(e.frames)-1, true
			}
		}
	}
	return nil, false, false
}

// capturesOuterLocal reports whether name resolves to a binding in an
// enclosing procedure's frame rather than the current innermost one —
// a nested lambda closing over an outer local, which spec.md §4.5/§9
// documents as unsupported and this implementation rejects at compile
// time (see DESIGN.md Open Question 3).
func (e *environment) capturesOuterLocal(name string) bool {
	_, isLocal, ok := e.lookup(name)
	return ok && !isLocal
}
