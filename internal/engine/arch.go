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

// Arch is the canonical architecture tag (spec §3: Data Model).
type Arch int

const (
	ArchUnknown Arch = iota
	ArchARM
	ArchAArch64
	ArchPowerPC
)

// archAliases canonicalizes the many spellings a caller (or a driver's
// -arch flag) might pass in.
var archAliases = map[string]Arch{
	"arm":     ArchARM,
	"armv7":   ArchARM,
	"armv7s":  ArchARM,
	"armv7k":  ArchARM,
	"thumb":   ArchARM,
	"arm64":   ArchAArch64,
	"aarch64": ArchAArch64,
	"arm64e":  ArchAArch64,
	"ppc":     ArchPowerPC,
	"ppc64":   ArchPowerPC,
	"powerpc": ArchPowerPC,
}

// ParseArch canonicalizes an architecture spelling into an Arch tag.
func ParseArch(name string) (Arch, error) {
	a, ok := archAliases[strings.ToLower(name)]
	if !ok {
		return ArchUnknown, errConfig("unknown architecture: %s", name)
	}
	return a, nil
}

func (a Arch) String() string {
	switch a {
	case ArchARM:
		return "arm"
	case ArchAArch64:
		return "aarch64"
	case ArchPowerPC:
		return "powerpc"
	default:
		return "unknown"
	}
}

// CommentChar returns the line-comment character for the architecture.
func (a Arch) CommentChar() byte {
	switch a {
	case ArchARM:
		return '@'
	case ArchAArch64:
		return '/' // "//" - handled specially by the reader
	case ArchPowerPC:
		return '#'
	default:
		return '#'
	}
}

// WordDirective returns the literal-pool word-size directive for the
// architecture (spec §3: Literal-pool map).
func (a Arch) WordDirective() string {
	if a == ArchAArch64 {
		return ".quad"
	}
	return ".word"
}

// conditionCodes is the ARM/AArch64 condition-code set used by the
// thumb-func-tagging and branch-rewrite rules (spec §4.5).
var conditionCodes = map[string]bool{
	"eq": true, "ne": true, "cs": true, "cc": true,
	"mi": true, "pl": true, "vs": true, "vc": true,
	"hi": true, "ls": true, "ge": true, "lt": true,
	"gt": true, "le": true, "al": true, "hs": true, "lo": true,
}

// sprNames maps PowerPC SPR mnemonics to their numeric encoding (spec §4.5).
var sprNames = map[string]int{
	"ctr":    9,
	"lr":     8,
	"xer":    1,
	"vrsave": 256,
}
