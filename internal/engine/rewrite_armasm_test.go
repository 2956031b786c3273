package engine

import "testing"

func armasmOpts(arch Arch) Options {
	return Options{Arch: arch, Dialect: DialectArmasm}
}

func TestRewriteArmasmFuncEndfuncToProcEndp(t *testing.T) {
	st := NewState(armasmOpts(ArchAArch64))
	out, err := rewriteArmasm(st, armasmOpts(ArchAArch64), ".func myfunc")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "myfunc PROC\n" {
		t.Errorf("got %q", out[0])
	}
	out, err = rewriteArmasm(st, armasmOpts(ArchAArch64), ".endfunc")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "ENDP\n" {
		t.Errorf("got %q", out[0])
	}
}

func TestRewriteArmasmLabelSplitOntoOwnLine(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, "myLabel: mov x0, x1")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if len(out) != 2 || out[0] != "myLabel\n" {
		t.Errorf("got %v", out)
	}
}

func TestRewriteArmasmLocalNumericLabelSplit(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, "1:")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "temp_label_0\n" {
		t.Errorf("got %q", out[0])
	}
}

func TestRewriteArmasmBranchToLocalForwardRef(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, "\tbeq 1f")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "\tbeq temp_label_0\n" {
		t.Errorf("got %q", out[0])
	}
	out, err = rewriteArmasm(st, opts, "1:")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "temp_label_0\n" {
		t.Errorf("got %q, want the same synthesized name reused at the definition", out[0])
	}
}

func TestRewriteArmasmBranchToGlobalTracksCallTarget(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	if _, err := rewriteArmasm(st, opts, "\tbl somefunc"); err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if !st.CallTargets["somefunc"] {
		t.Error("expected somefunc to be tracked as a call target")
	}
}

func TestRewriteArmasmDottedConditionalBranchTracksCallTarget(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	if _, err := rewriteArmasm(st, opts, "\tb.eq somefunc"); err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if !st.CallTargets["somefunc"] {
		t.Error("expected somefunc to be tracked as a call target for a dotted AArch64 conditional branch")
	}
}

func TestRewriteArmasmMovwMovtFusion(t *testing.T) {
	opts := armasmOpts(ArchARM)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, "movw r0, #:lower16:sym")
	if err != nil {
		t.Fatalf("rewriteArmasm(movw): %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected movw suppressed pending its movt, got %v", out)
	}
	out, err = rewriteArmasm(st, opts, "movt r0, #:upper16:sym")
	if err != nil {
		t.Fatalf("rewriteArmasm(movt): %v", err)
	}
	if out[0] != "mov32 r0, sym\n" {
		t.Errorf("got %q", out[0])
	}
	if !st.ImportSymbols["sym"] {
		t.Error("expected sym to be recorded as an import symbol")
	}
}

func TestRewriteArmasmDataDirectiveRename(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, "\t.long 1")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "\tdcd 1\n" {
		t.Errorf("got %q", out[0])
	}
}

func TestRewriteArmasmSectionToArea(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, ".text")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "AREA |.text|, CODE, READONLY, ALIGN=4, CODEALIGN\n" {
		t.Errorf("got %q", out[0])
	}
}

func TestRewriteArmasmGlobalToExport(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, ".global foo")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "EXPORT foo\n" {
		t.Errorf("got %q", out[0])
	}
}

func TestRewriteArmasmItFamilyDropped(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, "itt")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out != nil {
		t.Errorf("expected it-family directive dropped, got %v", out)
	}
}

func TestRewriteArmasmLdurCandidate(t *testing.T) {
	opts := armasmOpts(ArchAArch64)
	st := NewState(opts)
	out, err := rewriteArmasm(st, opts, "\tldr x0, [x1, #-8]")
	if err != nil {
		t.Fatalf("rewriteArmasm: %v", err)
	}
	if out[0] != "\tldur x0, [x1, #-8]\n" {
		t.Errorf("got %q", out[0])
	}
}

func TestRewriteArmasmBCondToFusedMnemonic(t *testing.T) {
	line := "\tb.eq somewhere"
	got := rewriteArmasmAArch64(NewState(armasmOpts(ArchAArch64)), armasmOpts(ArchAArch64), line)
	if got != "\tbeq somewhere" {
		t.Errorf("got %q", got)
	}
}
