package engine

import "testing"

func TestHandleNeonDirectiveDefinesAlias(t *testing.T) {
	st := NewState(Options{Arch: ArchARM})
	handled := handleNeonDirective(st, "vec .dn d0.s16")
	if !handled {
		t.Fatal("expected .dn directive to be handled")
	}
	alias, ok := st.NeonAliases.Lookup("vec")
	if !ok || alias.Register != "d0" || alias.Datatype != "s16" {
		t.Errorf("alias = %+v, ok=%v", alias, ok)
	}
}

func TestResolveNeonAliasesInsertsDatatypeSuffix(t *testing.T) {
	st := NewState(Options{Arch: ArchARM})
	handleNeonDirective(st, "vec .dn d0.s16")
	out := resolveNeonAliases(st, "vadd vec, vec, vec")
	want := "vadd.s16 d0, d0, d0"
	if out != want {
		t.Errorf("resolveNeonAliases = %q, want %q", out, want)
	}
}

func TestResolveNeonAliasesNonVectorInstructionUntouched(t *testing.T) {
	st := NewState(Options{Arch: ArchARM})
	handleNeonDirective(st, "vec .dn d0.s16")
	out := resolveNeonAliases(st, "mov vec, #0")
	if out != "mov vec, #0" {
		t.Errorf("resolveNeonAliases touched a non-v-mnemonic line: %q", out)
	}
}
