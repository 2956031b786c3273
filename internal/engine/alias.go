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

// AliasTable implements AArch64/armasm `.req` register aliasing: alias ->
// canonical register, resolved recursively on each use (spec §3, §4.5).
// Grounded on goat's named register-set tables (registers/fpRegisters/
// neonRegisters in parser_arm64.go) for the "register name table as a Go
// map" idiom.
type AliasTable struct {
	aliases map[string]string
}

// NewAliasTable returns an empty alias table.
func NewAliasTable() *AliasTable {
	return &AliasTable{aliases: make(map[string]string)}
}

// Req records `ALIAS .req REG`.
func (t *AliasTable) Req(alias, reg string) {
	t.aliases[alias] = reg
}

// Unreq removes an alias (`.unreq ALIAS`).
func (t *AliasTable) Unreq(alias string) {
	delete(t.aliases, alias)
}

// Resolve follows alias chains to their fixed point.
func (t *AliasTable) Resolve(name string) string {
	seen := map[string]bool{}
	cur := name
	for {
		next, ok := t.aliases[cur]
		if !ok || seen[cur] {
			return cur
		}
		seen[cur] = true
		cur = next
	}
}

// Has reports whether name has an alias binding.
func (t *AliasTable) Has(name string) bool {
	_, ok := t.aliases[name]
	return ok
}

// NeonAlias records a single ARM NEON `.dn`/`.qn` alias: a register token
// plus an optional datatype suffix (spec §3: Register-alias tables).
type NeonAlias struct {
	Register string
	Datatype string // e.g. "s16", "" if none
}

// NeonAliasTable holds NEON .dn/.qn aliases.
type NeonAliasTable struct {
	aliases map[string]NeonAlias
}

// NewNeonAliasTable returns an empty table.
func NewNeonAliasTable() *NeonAliasTable {
	return &NeonAliasTable{aliases: make(map[string]NeonAlias)}
}

// Define records `NAME .dn|.qn REG[.TYPE][INDEX]`.
func (t *NeonAliasTable) Define(name, regSpec string) {
	reg := regSpec
	datatype := ""
	if idx := strings.IndexByte(regSpec, '.'); idx >= 0 {
		reg = regSpec[:idx]
		datatype = regSpec[idx+1:]
	}
	t.aliases[name] = NeonAlias{Register: reg, Datatype: datatype}
}

// Lookup returns the alias for name, if any.
func (t *NeonAliasTable) Lookup(name string) (NeonAlias, bool) {
	a, ok := t.aliases[name]
	return a, ok
}
