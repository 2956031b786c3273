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

import (
	"sort"

	"github.com/samber/lo"
)

// Output Emitter / Epilogue (spec §4.6). Grounded on goat's
// writeHeader/generateGoStubs trailer-writing idiom (strings.Builder
// accumulation, single final write).

// Epilogue returns the trailer lines to append after the last translated
// line of the stream.
func Epilogue(st *State, opts Options) []string {
	if opts.Dialect.IsArmasm() {
		return armasmEpilogue(st)
	}
	return nonArmasmEpilogue(st, opts)
}

func nonArmasmEpilogue(st *State, opts Options) []string {
	var out []string
	out = append(out, ".text\n", ".align 2\n")
	if !st.Literals.Empty() {
		for _, e := range st.Literals.Flush() {
			out = append(out, e.Label+":\n")
			out = append(out, "\t"+opts.Arch.WordDirective()+" "+e.Expr+"\n")
		}
	}
	if opts.Dialect.IsApple() {
		calledThumbLabels := lo.Filter(sortedKeys(st.ThumbLabels), func(l string, _ int) bool {
			return st.CallTargets[l]
		})
		for _, l := range calledThumbLabels {
			out = append(out, ".thumb_func "+l+"\n")
		}
	}
	return out
}

func armasmEpilogue(st *State) []string {
	var out []string
	pending := lo.Uniq(append(sortedKeys(st.CallTargets), sortedKeys(st.ImportSymbols)...))
	sort.Strings(pending)
	for _, name := range pending {
		if st.LabelsSeen[name] {
			continue
		}
		out = append(out, "IMPORT "+name+"\n")
	}
	out = append(out, "END\n")
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
