package tests

import (
	"strings"
	"testing"

	"github.com/mstorsjo/gas-preprocessor/internal/engine"
)

func TestPropertyTransparency(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	for _, line := range []string{"mov r0, r1", "add r2, r3, #4", "push {r4, r5}"} {
		got := run(t, opts, line+"\n")
		// The translated line comes first; the .text/.align 2 epilogue follows it.
		if first := strings.SplitN(got, "\n", 2)[0]; first != line {
			t.Errorf("expected %q untouched, got %q", line, got)
		}
	}
}

func TestPropertyConditionalCorrectness(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	got := run(t, opts, ".if 1\nmov r0, r1\n.else\nmov r2, r3\n.endif\n")
	if !strings.Contains(got, "mov r0, r1") || strings.Contains(got, "mov r2, r3") {
		t.Errorf(".if 1 should take true branch only, got %q", got)
	}

	got = run(t, opts, ".if 0\nmov r0, r1\n.else\nmov r2, r3\n.endif\n")
	if strings.Contains(got, "mov r0, r1") || !strings.Contains(got, "mov r2, r3") {
		t.Errorf(".if 0 should take false branch only, got %q", got)
	}

	got = run(t, opts, ".if 0\nmov r0, r1\n.elseif 1\nmov r2, r3\n.elseif 1\nmov r4, r5\n.endif\n")
	if strings.Contains(got, "mov r0, r1") || !strings.Contains(got, "mov r2, r3") || strings.Contains(got, "mov r4, r5") {
		t.Errorf(".elseif should select only the first true branch, got %q", got)
	}
}

func TestPropertyMacroHygiene(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	got := run(t, opts, ".macro lbl\nL\\@_a:\nL\\@_b:\n.endm\nlbl\nlbl\n")
	if !strings.Contains(got, "L1_a:") || !strings.Contains(got, "L1_b:") {
		t.Errorf("expected both labels in one invocation to share the counter, got %q", got)
	}
	if !strings.Contains(got, "L2_a:") || !strings.Contains(got, "L2_b:") {
		t.Errorf("expected the second invocation's counter to differ from the first, got %q", got)
	}

	got = run(t, opts, ".macro paste a, b\n\\a\\()\\b:\n.endm\npaste foo, bar\n")
	if !strings.Contains(got, "foobar:") {
		t.Errorf("expected \\() to vanish and paste the operands together, got %q", got)
	}
}

func TestPropertyLiteralPoolUniqueness(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	got := run(t, opts, "ldr r0, =0x1000\nldr r1, =0x1000\nldr r2, =0x2000\n.ltorg\n")
	if !strings.Contains(got, "ldr r0, Literal_0") || !strings.Contains(got, "ldr r1, Literal_0") {
		t.Errorf("identical literal expressions should resolve to the same label, got %q", got)
	}
	if !strings.Contains(got, "ldr r2, Literal_1") {
		t.Errorf("a distinct literal expression should get a distinct label, got %q", got)
	}

	got = run(t, opts, "ldr r0, =0x1000\n.ltorg\nldr r1, =0x1000\n.ltorg\n")
	if !strings.Contains(got, "ldr r1, Literal_1") {
		t.Errorf("expected the ldr issued in a fresh pool epoch to get a newly allocated label, got %q", got)
	}
	if strings.Contains(got, "Literal_1:") == false {
		t.Errorf("expected the second .ltorg to flush the newly allocated literal, got %q", got)
	}
}

func TestPropertyLocalLabelIsolation(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchAArch64, Dialect: engine.DialectArmasm}
	got := run(t, opts, "\tbeq 1f\n\tbne 1f\n1:\n\tbeq 1b\n")
	if strings.Count(got, "temp_label_0") != 4 {
		t.Errorf("both forward refs before the definition should resolve to the same synthesized name, got %q", got)
	}
}

func TestPropertySectionStack(t *testing.T) {
	opts := engine.Options{Arch: engine.ArchARM, Dialect: engine.DialectGas}
	out := run(t, opts, ".section A\n.section B\n.previous\n")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Three translated lines, then the .text/.align 2 epilogue.
	if len(lines) != 5 {
		t.Fatalf("expected 5 output lines, got %v", lines)
	}
	if lines[2] != ".section A" {
		t.Errorf(".previous should restore section A, got %q", lines[2])
	}
}
