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
	"strconv"
	"strings"
)

// ARM-specific rewrite rules (spec §4.5): literal pool, thumb large
// immediates, and the force-thumb shim.

var (
	reLdrLiteral = regexp.MustCompile(`^(\s*)ldr(\.w)?\s+(\w+)\s*,\s*=(.+)$`)
	reLtorg      = regexp.MustCompile(`^\s*\.ltorg\b`)
	reAddImm     = regexp.MustCompile(`^(\s*)(add|sub)(s?)\s+(.+),\s*#(\d+)\s*$`)
)

// rewriteARMLiteralPool implements "ldr Rd, =EXPR (non-armasm) -> allocate
// or reuse Literal_<n> for EXPR and rewrite to ldr Rd, Literal_n" plus
// ".ltorg emits an alignment directive then, for each pending literal,
// <label>: followed by the architecture's word directive" (spec §4.5).
func rewriteARMLiteralPool(st *State, opts Options, line string) (string, error) {
	if opts.Dialect.IsArmasm() {
		return line, nil // armasm has its own ldr =SYM handling, see rewrite_armasm.go
	}
	if reLtorg.MatchString(line) {
		return flushLiteralPool(st, opts), nil
	}
	if m := reLdrLiteral.FindStringSubmatch(line); m != nil {
		indent, reg, expr := m[1], m[3], strings.TrimSpace(m[4])
		label := st.Literals.LabelFor(expr)
		return fmt.Sprintf("%sldr %s, %s", indent, reg, label), nil
	}
	return line, nil
}

func flushLiteralPool(st *State, opts Options) string {
	entries := st.Literals.Flush()
	if len(entries) == 0 {
		return ".align 2"
	}
	var b strings.Builder
	b.WriteString(".align 2\n")
	word := opts.Arch.WordDirective()
	for i, e := range entries {
		b.WriteString(e.Label)
		b.WriteString(":\n\t")
		b.WriteString(word)
		b.WriteString(" ")
		b.WriteString(e.Expr)
		if i != len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// rewriteThumbLargeImm implements "In thumb mode, add ..., #IMM with
// IMM>255 -> add.w ..." (spec §4.5).
func rewriteThumbLargeImm(line string) string {
	m := reAddImm.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	imm, err := strconv.ParseInt(m[5], 10, 64)
	if err != nil || imm <= 255 {
		return line
	}
	indent, mnem, s, operands := m[1], m[2], m[3], m[4]
	return fmt.Sprintf("%s%s%s.w %s, #%s", indent, mnem, s, operands, m[5])
}

var (
	rePostIndexed  = regexp.MustCompile(`^(\s*)(ldr|str)\s+(\w+)\s*,\s*\[(\w+)\]\s*,\s*(\w+)\s*$`)
	reMovPcLr      = regexp.MustCompile(`^(\s*)mov\s+pc\s*,\s*lr\s*$`)
	reArmDirective = regexp.MustCompile(`^\s*\.arm\b`)
	reMuls         = regexp.MustCompile(`^(\s*)muls\s+(\w+)\s*,\s*(\w+)\s*,\s*(\w+)\s*$`)
	reAndSp        = regexp.MustCompile(`^(\s*)and\s+(\w+)\s*,\s*sp\s*,\s*#(\w+)\s*$`)
	reStmdbSingle  = regexp.MustCompile(`^(\s*)stmdb\s+sp!\s*,\s*\{(\w+)\}\s*$`)
	reLdmiaSingle  = regexp.MustCompile(`^(\s*)ldmia\s+sp!\s*,\s*\{(\w+)\}\s*$`)
	reLdrSameRegShift = regexp.MustCompile(`^(\s*)ldr\s+(\w+)\s*,\s*\[(\w+)\s*,\s*(\w+)\s*,\s*lsl\s+#(\d+)\]\s*$`)
)

// RewriteForceThumb applies the force-thumb shim (spec §4.5, only active
// when -force-thumb is set): rewrites instruction shapes that the thumb
// encoder can't represent directly.
func RewriteForceThumb(line string) string {
	if m := rePostIndexed.FindStringSubmatch(line); m != nil {
		indent, op, rd, rn, rm := m[1], m[2], m[3], m[4], m[5]
		return fmt.Sprintf("%s%s %s, [%s]\n%sadd %s, %s, %s", indent, op, rd, rn, indent, rn, rn, rm)
	}
	if reMovPcLr.MatchString(line) {
		indent := reMovPcLr.FindStringSubmatch(line)[1]
		return indent + "bx lr"
	}
	if reArmDirective.MatchString(line) {
		return strings.Replace(line, ".arm", ".thumb", 1)
	}
	if m := reMuls.FindStringSubmatch(line); m != nil {
		indent, rd, rn, rm := m[1], m[2], m[3], m[4]
		return fmt.Sprintf("%smul %s, %s, %s\n%scmp %s, #0", indent, rd, rn, rm, indent, rd)
	}
	if m := reAndSp.FindStringSubmatch(line); m != nil {
		indent, rd, imm := m[1], m[2], m[3]
		return fmt.Sprintf("%smov %s, sp\n%sand %s, %s, #%s", indent, rd, indent, rd, rd, imm)
	}
	if m := reStmdbSingle.FindStringSubmatch(line); m != nil {
		indent, rd := m[1], m[2]
		return fmt.Sprintf("%sstr %s, [sp, #-4]!", indent, rd)
	}
	if m := reLdmiaSingle.FindStringSubmatch(line); m != nil {
		indent, rd := m[1], m[2]
		return fmt.Sprintf("%sldr %s, [sp], #4", indent, rd)
	}
	if m := reLdrSameRegShift.FindStringSubmatch(line); m != nil {
		indent, rd, rn, rm, shiftStr := m[1], m[2], m[3], m[4], m[5]
		if rd == rn {
			if shift, _ := strconv.Atoi(shiftStr); shift > 3 {
				return fmt.Sprintf("%sadd %s, %s, %s, lsl #%s\n%sldr %s, [%s]", indent, rd, rd, rm, shiftStr, indent, rd, rd)
			}
		}
	}
	return line
}
