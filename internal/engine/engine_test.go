package engine

import (
	"strings"
	"testing"
)

func runEngine(t *testing.T, opts Options, src string) string {
	t.Helper()
	var out strings.Builder
	if err := NewEngine(opts).Run(strings.NewReader(src), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestEngineConditionalSuppression(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	src := ".if 0\nmov r0, r1\n.else\nmov r2, r3\n.endif\n"
	got := runEngine(t, opts, src)
	if strings.Contains(got, "mov r0, r1") {
		t.Errorf("suppressed branch leaked into output: %q", got)
	}
	if !strings.Contains(got, "mov r2, r3") {
		t.Errorf("taken .else branch missing from output: %q", got)
	}
}

func TestEngineSetAndExpressionEval(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	src := ".set WIDTH, 4\n.if WIDTH == 4\nmov r0, #1\n.endif\n"
	got := runEngine(t, opts, src)
	if !strings.Contains(got, "mov r0, #1") {
		t.Errorf("expected .if WIDTH==4 branch to be taken: %q", got)
	}
}

func TestEngineMacroExpansionWithVararg(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	src := ".macro push1 reg, extra:vararg\n\tpush {\\reg\\extra}\n.endm\npush1 r0, , r1, r2\n"
	got := runEngine(t, opts, src)
	if !strings.Contains(got, "push {r0") {
		t.Errorf("expected macro expansion in output: %q", got)
	}
}

func TestEngineReptExpandsBodyNTimes(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	src := ".rept 3\nnop\n.endr\n"
	got := runEngine(t, opts, src)
	if strings.Count(got, "nop") != 3 {
		t.Errorf("expected nop x3, got %q", got)
	}
}

func TestEngineIrpSubstitutesEachArgument(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	src := ".irp reg, r0, r1, r2\n\tpush \\reg\n.endr\n"
	got := runEngine(t, opts, src)
	for _, want := range []string{"push r0", "push r1", "push r2"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestEngineMacroCounterIsPerInvocation(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	src := ".macro lbl\nL\\@:\n.endm\nlbl\nlbl\n"
	got := runEngine(t, opts, src)
	if !strings.Contains(got, "L1:") || !strings.Contains(got, "L2:") {
		t.Errorf("expected distinct per-invocation counters, got %q", got)
	}
}

func TestEnginePurgemRemovesMacro(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	src := ".macro foo\nnop\n.endm\n.purgem foo\nfoo r0\n"
	got := runEngine(t, opts, src)
	if !strings.Contains(got, "foo r0") {
		t.Errorf("expected purged macro name to fall through as a plain line, got %q", got)
	}
}

func TestEngineUnterminatedConditionalIsError(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectGas}
	var out strings.Builder
	err := NewEngine(opts).Run(strings.NewReader(".if 1\nnop\n"), &out)
	if err == nil {
		t.Fatal("expected error for unterminated .if")
	}
}
