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
	"fmt"
	"regexp"
	"strings"
)

// AArch64-specific rewrite rules (spec §4.5).

var (
	reReqDef    = regexp.MustCompile(`^(\w+)\s+\.req\s+(\w+)\s*$`)
	reUnreq     = regexp.MustCompile(`^\.unreq\s+(\w+)\s*$`)
	reIdent     = regexp.MustCompile(`\b[A-Za-z_.$][\w.$]*\b`)
	reAdrpApple = regexp.MustCompile(`^(\s*)adrp\s+(\w+)\s*,\s*#:pg_hi21:(\S+)\s*$`)
	reAddLo12   = regexp.MustCompile(`^(\s*)add\s+(\w+)\s*,\s*(\w+)\s*,\s*#:lo12:(\S+)\s*$`)

	reMovVV   = regexp.MustCompile(`^(\s*)mov\s+(v\S+)\s*,\s*(v\S+)\s*$`)
	reMoviImm = regexp.MustCompile(`^(\s*)movi\s+(v\S+\.(2h|4h|8h|2s|4s))\s*,\s*(#\S+)\s*$`)
	reUxtlSxtl = regexp.MustCompile(`^(\s*)(u|s)xtl(2)?\s+(v\S+)\s*,\s*(v\S+)\s*$`)
	reAddSubImm4k = regexp.MustCompile(`^(\s*)(add|adds|sub|subs)\s+(\w+)\s*,\s*(\w+)\s*,\s*#(\d+)\s*$`)
)

// handleReqDirective records/removes `.req`/`.unreq` bindings. Returns
// (handled, output lines). `-fix-unreq` duplicates an `.unreq` into both
// cases, working around old gas storing both cases on `.req` (spec §4.5).
func handleReqDirective(st *State, opts Options, line string) (bool, []string) {
	if m := reReqDef.FindStringSubmatch(line); m != nil {
		st.ReqAliases.Req(m[1], m[2])
		return true, nil
	}
	if m := reUnreq.FindStringSubmatch(line); m != nil {
		name := m[1]
		st.ReqAliases.Unreq(name)
		if opts.FixUnreq {
			return true, []string{
				fmt.Sprintf(".unreq %s\n", strings.ToLower(name)),
				fmt.Sprintf(".unreq %s\n", strings.ToUpper(name)),
			}
		}
		return true, []string{line + "\n"}
	}
	return false, nil
}

// resolveReqAliases replaces every identifier on the line with its fixed-
// point `.req` resolution (spec §4.5: "resolved to their fixed point on
// every line while in aarch64 or armasm dialect").
func resolveReqAliases(st *State, line string) string {
	return reIdent.ReplaceAllStringFunc(line, func(ident string) string {
		if !st.ReqAliases.Has(ident) {
			return ident
		}
		return st.ReqAliases.Resolve(ident)
	})
}

// rewriteApplePCRelative implements the AArch64 PC-relative apple-dialect
// pair: `adrp Rd, #:pg_hi21:SYM` -> `adrp Rd, SYM@PAGE` and
// `add Rd, Rn, #:lo12:SYM` -> `add Rd, Rn, SYM@PAGEOFF` (spec §4.5).
func rewriteApplePCRelative(line string) string {
	if m := reAdrpApple.FindStringSubmatch(line); m != nil {
		return fmt.Sprintf("%sadrp %s, %s@PAGE", m[1], m[2], m[3])
	}
	if m := reAddLo12.FindStringSubmatch(line); m != nil {
		return fmt.Sprintf("%sadd %s, %s, %s@PAGEOFF", m[1], m[2], m[3], m[4])
	}
	return line
}

// rewriteAArch64Shims implements the remaining AArch64 instruction shims
// (spec §4.5 "AArch64 instruction shims").
func rewriteAArch64Shims(line string) string {
	if m := reMovVV.FindStringSubmatch(line); m != nil {
		indent, vd, vs := m[1], m[2], m[3]
		return fmt.Sprintf("%sorr %s, %s, %s", indent, vd, vs, vs)
	}
	if m := reMoviImm.FindStringSubmatch(line); m != nil {
		indent, reg, imm := m[1], m[2], m[4]
		return fmt.Sprintf("%smovi %s, %s, lsl #0", indent, reg, imm)
	}
	if m := reUxtlSxtl.FindStringSubmatch(line); m != nil {
		indent, kind, two, vd, vs := m[1], m[2], m[3], m[4], m[5]
		mnem := "ushll"
		if kind == "s" {
			mnem = "sshll"
		}
		return fmt.Sprintf("%s%s%s %s, %s, #0", indent, mnem, two, vd, vs)
	}
	return line
}

// rewriteAddSubImmSplit implements the clang/armasm-only shim: "add|adds|
// sub|subs Rd, Rn, #imm where imm is a multiple of 4096 and >4095 -> split
// as #(imm>>12), lsl #12" (spec §4.5).
func rewriteAddSubImmSplit(line string) string {
	m := reAddSubImm4k.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	indent, mnem, rd, rn, immStr := m[1], m[2], m[3], m[4], m[5]
	var imm int64
	if _, err := fmt.Sscanf(immStr, "%d", &imm); err != nil {
		return line
	}
	if imm <= 4095 || imm%4096 != 0 {
		return line
	}
	return fmt.Sprintf("%s%s %s, %s, #%d, lsl #12", indent, mnem, rd, rn, imm>>12)
}
