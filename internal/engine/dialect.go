// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package engine

import "strings"

// Dialect is the canonical output-dialect tag (spec §3: Data Model).
type Dialect int

const (
	DialectGas Dialect = iota
	DialectAppleGas
	DialectClang
	DialectAppleClang
	DialectLLVMGCC
	DialectArmasm
)

var dialectNames = map[string]Dialect{
	"gas":         DialectGas,
	"apple-gas":   DialectAppleGas,
	"clang":       DialectClang,
	"apple-clang": DialectAppleClang,
	"llvm_gcc":    DialectLLVMGCC,
	"armasm":      DialectArmasm,
}

// ParseDialect canonicalizes a -as-type spelling into a Dialect tag.
func ParseDialect(name string) (Dialect, error) {
	d, ok := dialectNames[strings.ToLower(name)]
	if !ok {
		return DialectGas, errConfig("unknown dialect: %s", name)
	}
	return d, nil
}

func (d Dialect) String() string {
	for name, v := range dialectNames {
		if v == d {
			return name
		}
	}
	return "gas"
}

// IsApple reports whether the dialect is one of Apple's legacy gas/clang
// integrated-assembler front ends (spec §4.5 "Apple-specific").
func (d Dialect) IsApple() bool {
	return d == DialectAppleGas || d == DialectAppleClang
}

// IsArmasm reports the Microsoft armasm/armasm64 output dialect.
func (d Dialect) IsArmasm() bool {
	return d == DialectArmasm
}

// Features is a per-dialect table of the textual quirks the rewriter needs.
// DESIGN NOTES §9 recommends exactly this: "encode dialect switches as a
// table of feature flags... so adding a dialect is a data-only change."
type Features struct {
	StripDotLabels    bool // .L prefix loses the leading dot
	RenameGlobalToGlobl bool
	RenameRodata        bool
	RenameIntToLong     bool
	RenameFloatToSingle bool
	CommentOutDirectives map[string]bool // directive name -> comment it out
}

var featureTable = map[Dialect]Features{
	DialectGas: {},
	DialectClang: {
		CommentOutDirectives: map[string]bool{},
	},
	DialectLLVMGCC: {},
	DialectAppleGas: {
		StripDotLabels:      true,
		RenameGlobalToGlobl: true,
		RenameRodata:        true,
		RenameIntToLong:     true,
		RenameFloatToSingle: true,
		CommentOutDirectives: map[string]bool{
			".type": true, ".func": true, ".endfunc": true, ".ltorg": true,
			".size": true, ".fpu": true, ".arch": true, ".object_arch": true,
			".note.gnu-stack": true,
		},
	},
	DialectAppleClang: {
		StripDotLabels:      true,
		RenameGlobalToGlobl: true,
		RenameRodata:        true,
		RenameIntToLong:     true,
		RenameFloatToSingle: true,
		CommentOutDirectives: map[string]bool{
			".type": true, ".func": true, ".endfunc": true, ".ltorg": true,
			".size": true, ".fpu": true, ".arch": true, ".object_arch": true,
			".note.gnu-stack": true,
		},
	},
	DialectArmasm: {
		StripDotLabels: true,
	},
}

// FeaturesFor returns the feature table entry for a dialect.
func FeaturesFor(d Dialect) Features {
	return featureTable[d]
}
