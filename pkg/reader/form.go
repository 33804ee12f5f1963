// Package reader is the host reader: it turns source text into the
// sequence of fully-parsed top-level forms the compiler consumes. It is
// an external collaborator by spec (see SPEC_FULL.md) kept deliberately
// thin — only as much reader as is needed to exercise the compiler.
package reader

import (
	"strconv"
	"strings"
)

// Form is implemented by every node the reader can produce.
type Form interface {
	formNode()
	String() string
}

// Symbol is an interned-by-spelling identifier.
type Symbol struct {
	Name string
}

func (*Symbol) formNode()        {}
func (s *Symbol) String() string { return s.Name }

// StringForm is a string literal.
type StringForm struct {
	Value string
}

func (*StringForm) formNode()        {}
func (s *StringForm) String() string { return strconv.Quote(s.Value) }

// Integer is a decimal integer literal.
type Integer struct {
	Value int64
}

func (*Integer) formNode()        {}
func (i *Integer) String() string { return strconv.FormatInt(i.Value, 10) }

// Bool is #t or #f.
type Bool struct {
	Value bool
}

func (*Bool) formNode() {}
func (b *Bool) String() string {
	if b.Value {
		return "#t"
	}
	return "#f"
}

// List is a proper list: (a b c). Spec's input language has no dotted
// pairs and no vectors — every compound form is a List.
type List struct {
	Elems []Form
}

func (*List) formNode() {}
func (l *List) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Head returns the first element of a non-empty list, and false for an
// empty list.
func (l *List) Head() (Form, bool) {
	if len(l.Elems) == 0 {
		return nil, false
	}
	return l.Elems[0], true
}

// HeadSymbol returns the name of the list's head when it is a Symbol, and
// ok=false otherwise (including for an empty list).
func (l *List) HeadSymbol() (name string, ok bool) {
	h, present := l.Head()
	if !present {
		return "", false
	}
	sym, isSym := h.(*Symbol)
	if !isSym {
		return "", false
	}
	return sym.Name, true
}

// eofForm is the unique sentinel returned once the token stream is
// exhausted. IsEOF distinguishes it from a legitimate form.
type eofForm struct{}

func (*eofForm) formNode()      {}
func (*eofForm) String() string { return "#<eof>" }

var EOF Form = &eofForm{}

// IsEOF reports whether f is the distinguished end-of-stream sentinel.
func IsEOF(f Form) bool {
	_, ok := f.(*eofForm)
	return ok
}

// quoteSymbol is the symbol substituted for a reader '-prefix quote.
const quoteSymbol = "quote"
