package engine

import "testing"

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
	}{
		{"gas", DialectGas},
		{"apple-gas", DialectAppleGas},
		{"Clang", DialectClang},
		{"apple-clang", DialectAppleClang},
		{"llvm_gcc", DialectLLVMGCC},
		{"armasm", DialectArmasm},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if err != nil {
				t.Fatalf("ParseDialect(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDialectUnknown(t *testing.T) {
	if _, err := ParseDialect("masm"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestDialectIsApple(t *testing.T) {
	if !DialectAppleGas.IsApple() || !DialectAppleClang.IsApple() {
		t.Error("expected apple-gas and apple-clang to report IsApple")
	}
	if DialectGas.IsApple() || DialectArmasm.IsApple() {
		t.Error("expected gas and armasm to not report IsApple")
	}
}

func TestDialectIsArmasm(t *testing.T) {
	if !DialectArmasm.IsArmasm() {
		t.Error("expected armasm to report IsArmasm")
	}
	if DialectGas.IsArmasm() {
		t.Error("expected gas to not report IsArmasm")
	}
}

func TestFeaturesForAppleGasCommentsOutDirectives(t *testing.T) {
	f := FeaturesFor(DialectAppleGas)
	if !f.CommentOutDirectives[".func"] {
		t.Error("expected apple-gas to comment out .func")
	}
	if !f.RenameGlobalToGlobl {
		t.Error("expected apple-gas to rename .global to .globl")
	}
}
