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
	"regexp"
	"strings"
)

// Apple-specific dialect translation (spec §4.5 "Apple-specific" and
// "Thumb func tagging (apple)").

var (
	reFuncDirective   = regexp.MustCompile(`^(\s*)\.func\b`)
	reBranchInstr     = regexp.MustCompile(`^(\s*)(b|bl|bx)([a-z]{2})?(\.w)?\s+(\w+)\s*$`)
	reGlobalDirective = regexp.MustCompile(`^(\s*)\.global(l)?\s+(\w+)\s*$`)
	reVmrsApsr        = regexp.MustCompile(`^(\s*)vmrs\s+APSR_nzcv\s*,\s*\S+\s*$`)
)

// rewriteAppleDialect applies the rename table from the dialect's Features
// (spec: ".global->.globl; .rodata->.const_data; .int->.long;
// .float->.single") plus the apple-gas-only vmrs->fmrx shim.
func rewriteAppleDialect(st *State, line string) string {
	feat := FeaturesFor(st.Opts.Dialect)
	if feat.RenameGlobalToGlobl {
		line = renameDirective(line, ".global", ".globl")
	}
	if feat.RenameRodata {
		line = renameDirective(line, ".rodata", ".const_data")
	}
	if feat.RenameIntToLong {
		line = renameDirective(line, ".int", ".long")
	}
	if feat.RenameFloatToSingle {
		line = renameDirective(line, ".float", ".single")
	}
	if st.Opts.Dialect == DialectAppleGas {
		if reVmrsApsr.MatchString(line) {
			indent := reVmrsApsr.FindStringSubmatch(line)[1]
			return indent + "fmrx r15"
		}
	}
	return line
}

func renameDirective(line, from, to string) string {
	f := strings.Fields(line)
	if len(f) == 0 || strings.ToLower(f[0]) != from {
		return line
	}
	idx := strings.Index(line, from)
	if idx < 0 {
		return line
	}
	return line[:idx] + to + line[idx+len(from):]
}

// tagThumbFunc implements: track labels defined in thumb mode; rewrite
// .func to .thumb_func; for each call-site branch and .global referencing
// a known thumb label emit a .thumb_func declaration, otherwise record the
// target in CallTargets for the end-of-stream filter (spec §4.5, §4.6).
func tagThumbFunc(st *State, line string) []string {
	if st.Thumb {
		if m := reLabelLine.FindStringSubmatch(line); m != nil {
			st.ThumbLabels[m[1]] = true
		}
	}
	if reFuncDirective.MatchString(line) {
		return []string{reFuncDirective.ReplaceAllString(line, "${1}.thumb_func") + "\n"}
	}
	if m := reBranchInstr.FindStringSubmatch(line); m != nil {
		cond := m[3]
		if cond == "" || conditionCodes[cond] {
			return thumbFuncDeclOrTrack(st, m[5], line)
		}
	}
	if m := reGlobalDirective.FindStringSubmatch(line); m != nil {
		return thumbFuncDeclOrTrack(st, m[3], line)
	}
	return []string{line + "\n"}
}

func thumbFuncDeclOrTrack(st *State, target, line string) []string {
	if st.ThumbLabels[target] {
		return []string{".thumb_func " + target + "\n", line + "\n"}
	}
	st.CallTargets[target] = true
	return []string{line + "\n"}
}
