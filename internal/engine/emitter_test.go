package engine

import (
	"strings"
	"testing"
)

func TestEpilogueNonArmasmFlushesLiteralsAndTagsThumbFuncs(t *testing.T) {
	opts := Options{Arch: ArchARM, Dialect: DialectAppleGas}
	st := NewState(opts)
	st.Literals.LabelFor("foo")
	st.ThumbLabels["bar"] = true
	st.CallTargets["bar"] = true
	st.CallTargets["notThumb"] = true

	out := Epilogue(st, opts)
	joined := ""
	for _, l := range out {
		joined += l
	}
	if !strings.Contains(joined, ".text") || !strings.Contains(joined, ".align 2") {
		t.Errorf("missing .text/.align in epilogue: %q", joined)
	}
	if !strings.Contains(joined, "Literal_0:") {
		t.Errorf("missing flushed literal: %q", joined)
	}
	if !strings.Contains(joined, ".thumb_func bar") {
		t.Errorf("missing .thumb_func for called thumb label: %q", joined)
	}
	if strings.Contains(joined, ".thumb_func notThumb") {
		t.Errorf("tagged a call target that was never defined in thumb mode: %q", joined)
	}
}

func TestEpilogueArmasmImportsUndefinedCallTargets(t *testing.T) {
	opts := Options{Arch: ArchAArch64, Dialect: DialectArmasm}
	st := NewState(opts)
	st.CallTargets["external_fn"] = true
	st.LabelsSeen["local_fn"] = true
	st.CallTargets["local_fn"] = true

	out := Epilogue(st, opts)
	joined := ""
	for _, l := range out {
		joined += l
	}
	if !strings.Contains(joined, "IMPORT external_fn") {
		t.Errorf("missing IMPORT for undefined call target: %q", joined)
	}
	if strings.Contains(joined, "IMPORT local_fn") {
		t.Errorf("imported a locally-defined label: %q", joined)
	}
	if !strings.Contains(joined, "END") {
		t.Errorf("missing END: %q", joined)
	}
}
