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

import "regexp"

// ARM NEON `.dn`/`.qn` register aliasing (spec §4.5 "ARM NEON aliases").

var (
	reNeonDef      = regexp.MustCompile(`^(\w+)\s+\.(dn|qn)\s+(\S+)\s*$`)
	reNeonInstr    = regexp.MustCompile(`^(\s*)(v\w*)\b`)
	reIdentForNeon = regexp.MustCompile(`\b[A-Za-z_][\w]*\b`)
)

// handleNeonDirective records a `.dn`/`.qn` alias definition. Returns true
// if the line was a definition (and should not be emitted).
func handleNeonDirective(st *State, line string) bool {
	m := reNeonDef.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	st.NeonAliases.Define(m[1], m[3])
	return true
}

// resolveNeonAliases implements: "A subsequent line whose first instruction
// begins with v has every alias occurrence (word-bounded) replaced by its
// canonical register; the first such replacement on the line also appends
// the alias's datatype suffix to the mnemonic" (spec §4.5).
func resolveNeonAliases(st *State, line string) string {
	if !reNeonInstr.MatchString(line) {
		return line
	}
	var datatype string
	replaced := false
	out := reIdentForNeon.ReplaceAllStringFunc(line, func(ident string) string {
		alias, ok := st.NeonAliases.Lookup(ident)
		if !ok {
			return ident
		}
		if !replaced {
			replaced = true
			datatype = alias.Datatype
		}
		return alias.Register
	})
	if datatype != "" {
		out = appendMnemonicDatatype(out, datatype)
	}
	return out
}

// appendMnemonicDatatype inserts ".datatype" right after the mnemonic, e.g.
// "vadd d0, d1, d2" -> "vadd.i16 d0, d1, d2".
func appendMnemonicDatatype(line, datatype string) string {
	loc := reNeonInstr.FindStringSubmatchIndex(line)
	if loc == nil {
		return line
	}
	mnemEnd := loc[5]
	return line[:mnemEnd] + "." + datatype + line[mnemEnd:]
}
