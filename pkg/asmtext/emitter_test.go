package asmtext

import (
	"strings"
	"testing"
)

func assertContains(t *testing.T, text, expected string) {
	t.Helper()
	if !strings.Contains(text, expected) {
		t.Errorf("expected output to contain %q, but it didn't.\noutput:\n%s", expected, text)
	}
}

func TestInstrAndLabel(t *testing.T) {
	e := New()
	e.Label("foo")
	e.Instr("mov", Imm(5), Reg("eax"))
	e.Instr("ret")

	assertContains(t, e.String(), "foo:\n")
	assertContains(t, e.String(), "\tmov\t$5, %eax\n")
	assertContains(t, e.String(), "\tret\n")
}

func TestAddressingModes(t *testing.T) {
	if got, want := Indirect("eax"), "(%eax)"; got != want {
		t.Errorf("Indirect = %q, want %q", got, want)
	}
	if got, want := Disp(-4, "ebp"), "-4(%ebp)"; got != want {
		t.Errorf("Disp = %q, want %q", got, want)
	}
	if got, want := Absolute("ebx"), "*%ebx"; got != want {
		t.Errorf("Absolute = %q, want %q", got, want)
	}
	if got, want := Scaled(4, "esp", "edx", 4), "4(%esp,%edx,4)"; got != want {
		t.Errorf("Scaled = %q, want %q", got, want)
	}
	if got, want := ImmLabel("k_0"), "$k_0"; got != want {
		t.Errorf("ImmLabel = %q, want %q", got, want)
	}
}

// EscapeString only escapes backslash, newline, and double-quote — every
// other byte, including other control characters, passes through
// unchanged (spec.md §4.1/§9's deliberate three-escape rule).
func TestEscapeStringOnlyEscapesThreeBytes(t *testing.T) {
	in := "a\\b\nc\"d\te"
	got := EscapeString(in)
	want := `a\\b\nc\"d` + "\te"
	if got != want {
		t.Errorf("EscapeString(%q) = %q, want %q", in, got, want)
	}
}

func TestAsciiDirectiveHasNoTerminator(t *testing.T) {
	got := AsciiDirective("hi")
	want := `.ascii "hi"`
	if got != want {
		t.Errorf("AsciiDirective(%q) = %q, want %q", "hi", got, want)
	}
}
