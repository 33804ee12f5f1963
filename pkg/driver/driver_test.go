package driver

import (
	"strings"
	"testing"
)

func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("expected generated code to contain %q, but it didn't.\ncode:\n%s", expected, code)
	}
}

func TestEmptyProgramHasEntryPointAndExit(t *testing.T) {
	out, err := Compile("")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	assertContains(t, out, ".globl _start")
	assertContains(t, out, "_start:")
	assertContains(t, out, "main = _start")
	assertContains(t, out, "\tmov\t$0, %ebx\n\tmov\t$1, %eax\n\tint\t$128\n") // exit(0): __NR_exit=1
}

func TestDefineThenUseGlobal(t *testing.T) {
	out, err := Compile("(define x 10) (define y (+ x 1))")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	assertContains(t, out, "g_x:")
	assertContains(t, out, "g_y:")
}

func TestReferencingUndefinedGlobalFails(t *testing.T) {
	if _, err := Compile("(define y x)"); err == nil {
		t.Error("expected an error for referencing an undefined global, got nil")
	}
}

func TestRedefiningGlobalFails(t *testing.T) {
	if _, err := Compile("(define x 1) (define x 2)"); err == nil {
		t.Error("expected an error for redefining a global, got nil")
	}
}

func TestQuotedSymbolIsRejected(t *testing.T) {
	if _, err := Compile("'foo"); err == nil {
		t.Error("expected an error for quoted data, got nil")
	}
}

func TestLambdaDefinitionAndApplication(t *testing.T) {
	out, err := Compile("(define square (lambda (n) (+ n n))) (square 3)")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	assertContains(t, out, "call\tensure_procedure")
	assertContains(t, out, "argument_count_wrong")
}

func TestEqAndDisplayAreAvailableBuiltins(t *testing.T) {
	out, err := Compile(`(display (eq? 1 1)) (newline)`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	assertContains(t, out, "builtin_eq")
	assertContains(t, out, "builtin_display")
	assertContains(t, out, "builtin_newline")
}

func TestEqualsAliasesEqProcedureObject(t *testing.T) {
	out, err := Compile("(= 1 1)")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	assertContains(t, out, "g__3d_:") // mangled label for "="
	assertContains(t, out, "eq_proc_obj")
}

func TestStringLiteralProducesBoxedConstant(t *testing.T) {
	out, err := Compile(`(display "hello")`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	assertContains(t, out, `.ascii "hello"`)
	assertContains(t, out, "0xbabb1e")
}

func TestNestedClosureOverOuterLocalFails(t *testing.T) {
	if _, err := Compile("(define f (lambda (x) (lambda (y) x)))"); err == nil {
		t.Error("expected an error for a nested closure over an outer local, got nil")
	}
}
