package tests

import (
	"strings"
	"testing"

	"github.com/mstorsjo/gas-preprocessor/internal/engine"
)

func run(t *testing.T, opts engine.Options, src string) string {
	t.Helper()
	var out strings.Builder
	if err := engine.NewEngine(opts).Run(strings.NewReader(src), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestScenarioS1Rept(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	got := run(t, opts, ".rept 3\n  nop\n.endr\n")
	if strings.Count(got, "nop") != 3 {
		t.Errorf("expected three nop lines, got %q", got)
	}
}

func TestScenarioS2Irp(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	got := run(t, opts, ".irp r, r0 r1 r2\n  mov \\r, #0\n.endr\n")
	for _, want := range []string{"mov r0, #0", "mov r1, #0", "mov r2, #0"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestScenarioS3LiteralPool(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	got := run(t, opts, "ldr r0, =0x12345678\n ldr r1, =0x12345678\n .ltorg\n")
	if strings.Count(got, "Literal_0") < 3 {
		t.Errorf("expected both ldr lines plus the definition to reference Literal_0, got %q", got)
	}
	if !strings.Contains(got, ".align 2") || !strings.Contains(got, "Literal_0:\n\t.word 0x12345678") {
		t.Errorf("expected flushed literal pool entry, got %q", got)
	}
}

func TestScenarioS4AppleAdrp(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchAArch64, Dialect: engine.DialectAppleClang}
	got := run(t, opts, "adrp x0, #:pg_hi21:foo\nadd x0, x0, #:lo12:foo\n")
	if !strings.Contains(got, "adrp x0, foo@PAGE") {
		t.Errorf("missing adrp rewrite, got %q", got)
	}
	if !strings.Contains(got, "add x0, x0, foo@PAGEOFF") {
		t.Errorf("missing add rewrite, got %q", got)
	}
}

func TestScenarioS5ArmasmBranch(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchAArch64, Dialect: engine.DialectArmasm}
	got := run(t, opts, "\tb.eq 1f\n1:\n")
	if !strings.Contains(got, "beq temp_label_0") {
		t.Errorf("expected fused branch to synthesized local label, got %q", got)
	}
	if !strings.Contains(got, "temp_label_0\n") {
		t.Errorf("expected the label definition rewritten to the same synthesized name, got %q", got)
	}
}

func TestScenarioS6MacroDefaultAndVararg(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	src := ".macro op name, args:vararg=r0\n  \\name \\args\n.endm\n  op mov\n  op mov, r1, r2\n"
	got := run(t, opts, src)
	if !strings.Contains(got, "mov r0") {
		t.Errorf("expected default vararg expansion, got %q", got)
	}
	if !strings.Contains(got, "mov r1, r2") {
		t.Errorf("expected supplied vararg expansion, got %q", got)
	}
}
