package codegen

import (
	"strings"
	"testing"

	"lc32/pkg/reader"
)

func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("expected generated code to contain %q, but it didn't.\ncode:\n%s", expected, code)
	}
}

func compileForms(t *testing.T, src string) *Compiler {
	t.Helper()
	forms, err := reader.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll(%q) failed: %v", src, err)
	}
	c := New()
	for _, f := range forms {
		if err := c.CompileTopLevelForm(f); err != nil {
			t.Fatalf("CompileTopLevelForm failed: %v", err)
		}
	}
	return c
}

func TestIntegerLiteral(t *testing.T) {
	forms, err := reader.ReadAll("42")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	c := New()
	if err := c.compileExpr(forms[0], false); err != nil {
		t.Fatalf("compileExpr failed: %v", err)
	}
	// TaggedInt(42) = 4*42+1 = 169.
	assertContains(t, c.Body().String(), "$169, %eax")
}

func TestBoolLiterals(t *testing.T) {
	forms, err := reader.ReadAll("#t #f")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	c := New()
	for _, f := range forms {
		if err := c.compileExpr(f, false); err != nil {
			t.Fatalf("compileExpr failed: %v", err)
		}
	}
	body := c.Body().String()
	if strings.Count(body, "%eax") < 2 {
		t.Errorf("expected two moves into %%eax, got body:\n%s", body)
	}
}

func TestDefineStoresAndMarksDefined(t *testing.T) {
	c := compileForms(t, "(define x 10)")
	assertContains(t, c.Body().String(), "mov\t%eax, g_x")
	if err := c.CheckUndefinedGlobals(); err != nil {
		t.Errorf("CheckUndefinedGlobals() = %v, want nil", err)
	}
}

func TestUndefinedGlobalReferenceIsDetected(t *testing.T) {
	c := compileForms(t, "y")
	if err := c.CheckUndefinedGlobals(); err == nil {
		t.Error("expected an error for a referenced-but-undefined global, got nil")
	}
}

func TestRedefiningAGlobalIsAnError(t *testing.T) {
	c := New()
	forms, err := reader.ReadAll("(define x 1) (define x 2)")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if err := c.CompileTopLevelForm(forms[0]); err != nil {
		t.Fatalf("first define failed: %v", err)
	}
	if err := c.CompileTopLevelForm(forms[1]); err == nil {
		t.Error("expected an error redefining x, got nil")
	}
}

func TestIfCompilesComparisonAgainstFalse(t *testing.T) {
	c := compileForms(t, "(if #t 1 2)")
	assertContains(t, c.Body().String(), "cmpl\t$")
	assertContains(t, c.Body().String(), "je\tk_")
}

func TestQuoteIsRejected(t *testing.T) {
	c := New()
	forms, err := reader.ReadAll("'foo")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if err := c.CompileTopLevelForm(forms[0]); err == nil {
		t.Error("expected quoted data to be rejected at compile time, got nil")
	}
}

func TestPlusChecksBothOperandsAndCorrectsTag(t *testing.T) {
	c := compileForms(t, "(+ 1 2)")
	body := c.Body().String()
	assertContains(t, body, "call\tensure_integer")
	assertContains(t, body, "xchg\t%eax, %ebx")
	assertContains(t, body, "add\t%ebx, %eax")
	assertContains(t, body, "dec\t%eax")
}

func TestMinusCorrectsTagByIncrementing(t *testing.T) {
	c := compileForms(t, "(- 5 1)")
	assertContains(t, c.Body().String(), "inc\t%ebx")
}

func TestLambdaEmitsJumpOverProcedureBody(t *testing.T) {
	c := compileForms(t, "(lambda (x) x)")
	body := c.Body().String()
	assertContains(t, body, "jmp\tk_")
	assertContains(t, body, "cmpl\t$1, %edx") // arity check
}

func TestNestedLambdaCapturingOuterLocalIsRejected(t *testing.T) {
	c := New()
	forms, err := reader.ReadAll("(lambda (x) (lambda (y) x))")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if err := c.CompileTopLevelForm(forms[0]); err == nil {
		t.Error("expected an error closing over an outer local, got nil")
	}
}

func TestApplicationPushesArgsThenCallsThroughProcedure(t *testing.T) {
	c := compileForms(t, "(define f (lambda (x) x)) (f 1)")
	body := c.Body().String()
	assertContains(t, body, "call\tensure_procedure")
	assertContains(t, body, "call\t*%ebx")
}

func TestEmptyBeginProducesSentinel(t *testing.T) {
	c := compileForms(t, "(begin)")
	assertContains(t, c.Body().String(), "$31, %eax")
}

func TestStringLiteralsAreDeduplicated(t *testing.T) {
	c := compileForms(t, `"hi" "hi"`)
	if got := strings.Count(c.rodata.String(), `.ascii "hi"`); got != 1 {
		t.Errorf("expected \"hi\" to be deduplicated to one rodata record, got %d", got)
	}
}

func TestAssembleOrdersSectionsAndReentersText(t *testing.T) {
	c := compileForms(t, `"hi"`)
	out := c.Assemble()
	textIdx := strings.Index(out, "\t.text")
	dataIdx := strings.Index(out, "\t.data")
	if textIdx == -1 || dataIdx == -1 || textIdx > dataIdx {
		t.Fatalf("expected .text before .data in:\n%s", out)
	}
	if strings.Count(out, "\t.text") < 2 {
		t.Errorf("expected .text to be reasserted after .rodata, got:\n%s", out)
	}
}

// TestRuntimeHelperAndBuiltinCodeLandsInText guards against the hazard
// spec.md §9 calls out explicitly: a thunk that leaves .rodata active
// without the next thunk reasserting .text would place real instruction
// streams (labels, cmpl, mov, jmp, call) inside .rodata, which a standard
// linker layout makes non-executable — every call/jmp into it would crash
// at runtime. header_data (helpers.go) ends by switching to .rodata;
// builtin_proc_code and int_to_string (builtins.go) must each reassert
// .text before emitting their first instruction rather than assuming the
// previously registered thunk left .text active.
func TestRuntimeHelperAndBuiltinCodeLandsInText(t *testing.T) {
	c := compileForms(t, `(display (= 1 1))`)
	out := c.Assemble()

	for _, label := range []string{"builtin_eq:", "builtin_display:", "builtin_newline:", "int_to_string:"} {
		idx := strings.Index(out, label)
		if idx == -1 {
			t.Fatalf("expected output to contain label %q, but it didn't.\ncode:\n%s", label, out)
		}
		lastText := strings.LastIndex(out[:idx], "\t.text")
		lastData := strings.LastIndex(out[:idx], "\t.data")
		lastRodata := strings.LastIndex(out[:idx], "\t.section .rodata")
		if lastText == -1 || lastText < lastData || lastText < lastRodata {
			t.Errorf("label %q at offset %d is not preceded by the nearest section directive being .text (lastText=%d, lastData=%d, lastRodata=%d); code would be placed in a non-executable section:\n%s",
				label, idx, lastText, lastData, lastRodata, out)
		}
	}
}
