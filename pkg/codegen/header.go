package codegen

import "lc32/pkg/asmtext"

// header is the deferred header accumulator of spec.md §3: a composition
// of parameterless emitter thunks, extended by append, invoked once
// before user code to materialize every runtime helper actually needed.
//
// This implementation takes the "static manifest" resolution spec.md §9
// offers (see DESIGN.md Open Question 2): every helper is registered
// unconditionally at Compiler construction, so register's idempotence
// guard exists chiefly to keep the abstraction honest (a helper that
// tried to register itself twice, e.g. from two call sites, still only
// emits once) rather than to gate on demand.
type header struct {
	order      []string
	thunks     map[string]func(*asmtext.Emitter)
	registered map[string]bool
}

func newHeader() *header {
	return &header{
		thunks:     make(map[string]func(*asmtext.Emitter)),
		registered: make(map[string]bool),
	}
}

// register adds a named thunk if (and only if) it has not already been
// registered, preserving first-registration order.
func (h *header) register(name string, thunk func(*asmtext.Emitter)) {
	if h.registered[name] {
		return
	}
	h.registered[name] = true
	h.order = append(h.order, name)
	h.thunks[name] = thunk
}

// flush invokes every registered thunk, in registration order, exactly
// once.
func (h *header) flush(e *asmtext.Emitter) {
	for _, name := range h.order {
		h.thunks[name](e)
	}
}
