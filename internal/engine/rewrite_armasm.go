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

// armasm-specific dialect translation (spec §4.5 "armasm-specific dialect
// translation"). This is the largest rule family in the reference
// implementation; the rules below cover the named transformations.

var (
	reItFamily = regexp.MustCompile(`^\s*i(t|te|tt|tte|ttt|ett|ttte|tett)\s*$`)

	reFuncArmasm    = regexp.MustCompile(`^(\s*)\.func\s+(\w+)\s*$`)
	reEndfuncArmasm = regexp.MustCompile(`^\s*\.endfunc\s*$`)

	reLabelWithInstr = regexp.MustCompile(`^(\w+)\s*:\s*(\S.*)$`)
	reLabelOnly      = regexp.MustCompile(`^(\w+)\s*:\s*$`)

	reBranchTarget = regexp.MustCompile(`^(\s*)((?:b|bl|bx)\.?(?:eq|ne|cs|cc|mi|pl|vs|vc|hi|ls|ge|lt|gt|le|al|hs|lo)?(?:\.w)?|cbz|cbnz|tbz|tbnz|adr)\s+(.+)$`)
	reLocalRef     = regexp.MustCompile(`\b(\d+)([fb])\b`)

	reTbzWReg = regexp.MustCompile(`\b(tbz|tbnz)\s+w(\d+)\b`)

	reAlignDirective = regexp.MustCompile(`^(\s*)\.(align|p2align)\s+(\d+)\s*$`)
	reGasAlignSpec   = regexp.MustCompile(`\[([^,\]]+),\s*:(\d+)\]`)

	reBangNum   = regexp.MustCompile(`!(\d+)`)
	reLitCompare = regexp.MustCompile(`\((\d+)\s*([<>])\s*(\d+)\)`)

	reMovw = regexp.MustCompile(`^(\s*)movw\s+(\w+)\s*,\s*#:lower16:(\S+)\s*$`)
	reMovt = regexp.MustCompile(`^(\s*)movt\s+(\w+)\s*,\s*#:upper16:(\S+)\s*$`)

	reBareVmov = regexp.MustCompile(`^(\s*)(vmov|vadd)\s+([sd]\d+)\s*,\s*(.+)$`)

	reExtInstr = regexp.MustCompile(`^(\s*)ext\s+`)

	reUxtSxtTrailing = regexp.MustCompile(`^(.*\b(?:uxt[whb]|sxt[whb])\s+\w+\s*,\s*\w+)\s*$`)

	reMovVnD = regexp.MustCompile(`^(\s*)mov\s+(\w+)\s*,\s*(v\d+)\.[dD]\[(\d+)\]\s*$`)

	reCondFuse = regexp.MustCompile(`^(\s*)(ccmp|ccmn|csel|cinc|cinv|cneg|cset|csetm|csinc|csinv|csneg)\s+(.*),\s*(eq|ne|cs|cc|mi|pl|vs|vc|hi|ls|ge|lt|gt|le|al)\s*$`)

	rePrfum = regexp.MustCompile(`^\s*prfum\b`)

	reLdurCandidate = regexp.MustCompile(`^(\s*)(ldr|str)([bh]?)\s+(\w+)\s*,\s*\[(\w+),\s*#(-\d+)\]\s*$`)

	reBCond = regexp.MustCompile(`^(\s*)b\.(\w{2})\b(.*)$`)

	reLdrSymArmasm  = regexp.MustCompile(`^(\s*)ldr\s+(\w+)\s*,\s*=(\w+)([+-]\d+)?\s*$`)
	reAdrpArmasm    = regexp.MustCompile(`^(\s*)adrp\s+(\w+)\s*,\s*(\w+)([+-]\d+)?\s*$`)
	reAddLo12Armasm = regexp.MustCompile(`^(\s*)add\s+(\w+)\s*,\s*(\w+)\s*,\s*:lo12:(\w+)([+-]\d+)?\s*$`)
	reFcvtScale     = regexp.MustCompile(`^(\s*)(fcvtzs|scvtf)\s+(.+),\s*#(\d+)\s*$`)

	reAmpHex = regexp.MustCompile(`&(0x[0-9a-fA-F]+)`)

	reRangeRegs = regexp.MustCompile(`\{(v\d+)\.(\w+)-v(\d+)\.(\w+)\}`)

	dataDirectiveRename = map[string]string{
		".int": "dcd", ".long": "dcd", ".word": "dcd",
		".short": "dcw", ".hword": "dcw",
		".byte": "dcb", ".ascii": "dcb", ".asciz": "dcb",
		".quad": "dcq", ".xword": "dcq", ".dword": "dcq",
		".float": "dcfs",
	}
)

// rewriteArmasm implements §4.5's armasm-specific translation pipeline.
func rewriteArmasm(st *State, opts Options, line string) ([]string, error) {
	if reItFamily.MatchString(line) {
		return nil, nil // armasm inserts it/ite/itt implicitly
	}

	line = substituteSymbols(st, line)

	if m := reFuncArmasm.FindStringSubmatch(line); m != nil {
		st.LabelsSeen[m[2]] = true
		return []string{fmt.Sprintf("%s%s PROC\n", m[1], m[2])}, nil
	}
	if reEndfuncArmasm.MatchString(line) {
		return []string{"ENDP\n"}, nil
	}

	if m, err := handleMovwMovt(st, line); m != nil || err != nil {
		return m, err
	}

	var out []string

	if m := reLocalNum.FindStringSubmatch(line); m != nil {
		name := st.Locals.Define(m[1])
		out = append(out, name+"\n")
		rest := strings.TrimSpace(m[2])
		if rest != "" {
			r, err := rewriteArmasmInstruction(st, opts, "\t"+rest)
			if err != nil {
				return nil, err
			}
			out = append(out, r...)
		}
		return out, nil
	}

	if m := reLabelWithInstr.FindStringSubmatch(line); m != nil && !isDirectiveLine(m[2]) {
		st.LabelsSeen[m[1]] = true
		out = append(out, m[1]+"\n")
		r, err := rewriteArmasmInstruction(st, opts, "\t"+m[2])
		if err != nil {
			return nil, err
		}
		return append(out, r...), nil
	}
	if m := reLabelOnly.FindStringSubmatch(line); m != nil {
		st.LabelsSeen[m[1]] = true
		return []string{m[1] + "\n"}, nil
	}

	return rewriteArmasmInstruction(st, opts, line)
}

func isDirectiveLine(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), ".")
}

// substituteSymbols textually substitutes every known symbol-table value
// into the line (spec: "Substitute all known symbol-table values textually
// into the line").
func substituteSymbols(st *State, line string) string {
	return reIdent.ReplaceAllStringFunc(line, func(ident string) string {
		if v, ok := st.Syms.Lookup(ident); ok {
			return strconv.FormatInt(v, 10)
		}
		return ident
	})
}

// handleMovwMovt fuses "movw Rd, #:lower16:SYM" followed by "movt Rd,
// #:upper16:SYM" into "mov32 Rd, SYM" (spec §4.5 "ARM"). Returns (nil, nil)
// if the line was not part of a movw/movt pair.
func handleMovwMovt(st *State, line string) ([]string, error) {
	if m := reMovw.FindStringSubmatch(line); m != nil {
		st.PendingMovwReg, st.PendingMovwSym, st.PendingMovwHas = m[2], m[3], true
		return []string{}, nil // suppressed, pending its movt
	}
	if m := reMovt.FindStringSubmatch(line); m != nil {
		if st.PendingMovwHas && st.PendingMovwReg == m[2] {
			sym := st.PendingMovwSym
			st.PendingMovwHas = false
			st.ImportSymbols[sym] = true
			return []string{fmt.Sprintf("%smov32 %s, %s\n", m[1], m[2], sym)}, nil
		}
		return []string{line + "\n"}, nil
	}
	return nil, nil
}

// rewriteArmasmInstruction applies the remaining per-instruction rules once
// label/func/local-label handling is done.
func rewriteArmasmInstruction(st *State, opts Options, line string) ([]string, error) {
	out := line

	if m := reBranchTarget.FindStringSubmatch(out); m != nil {
		out = rewriteBranchTarget(st, m, out)
	} else {
		out = reLocalRef.ReplaceAllStringFunc(out, func(tok string) string {
			return resolveLocalRef(st, tok)
		})
	}

	out = reTbzWReg.ReplaceAllString(out, "$1 x$2")

	if m := reAlignDirective.FindStringSubmatch(out); m != nil {
		n, _ := strconv.Atoi(m[3])
		out = fmt.Sprintf("%sALIGN %d", m[1], 1<<uint(n))
	}

	out = reGasAlignSpec.ReplaceAllString(out, "[$1@$2]")

	out = reBangNum.ReplaceAllStringFunc(out, func(tok string) string {
		sub := reBangNum.FindStringSubmatch(tok)
		n, _ := strconv.Atoi(sub[1])
		if n == 0 {
			return "1"
		}
		return "0"
	})
	out = reLitCompare.ReplaceAllStringFunc(out, func(tok string) string {
		sub := reLitCompare.FindStringSubmatch(tok)
		a, _ := strconv.Atoi(sub[1])
		b, _ := strconv.Atoi(sub[3])
		result := false
		if sub[2] == "<" {
			result = a < b
		} else {
			result = a > b
		}
		if result {
			return "1"
		}
		return "0"
	})

	if m := reBareVmov.FindStringSubmatch(out); m != nil {
		out = fmt.Sprintf("%s%s.f32 %s, %s", m[1], m[2], m[3], m[4])
	}

	if opts.Arch == ArchAArch64 {
		out = rewriteArmasmAArch64(st, opts, out)
	}

	if name, ok := dataDirectiveRename[directiveName(out)]; ok {
		out = renameDataDirective(out, name)
	}
	out = rewriteArmasmSections(st, out)
	out = rewriteArmasmMisc(out)

	if out == "" {
		return nil, nil
	}
	return []string{out + "\n"}, nil
}

func resolveLocalRef(st *State, tok string) string {
	m := reLocalRef.FindStringSubmatch(tok)
	n, dir := m[1], m[2]
	if dir == "f" {
		return st.Locals.Forward(n)
	}
	name, err := st.Locals.Backward(n)
	if err != nil {
		return tok
	}
	return name
}

func rewriteBranchTarget(st *State, m []string, full string) string {
	indent, mnem, rest := m[1], m[2], m[3]
	fields := strings.SplitN(rest, ",", 2)
	target := strings.TrimSpace(fields[len(fields)-1])
	resolved := target
	if reLocalRef.MatchString(target) {
		resolved = resolveLocalRef(st, target)
	} else if !isNumeric(target) {
		if !st.LabelsSeen[target] {
			st.CallTargets[target] = true
		}
	}
	if len(fields) > 1 {
		return fmt.Sprintf("%s%s %s, %s", indent, mnem, strings.TrimSpace(fields[0]), resolved)
	}
	return fmt.Sprintf("%s%s %s", indent, mnem, resolved)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// rewriteArmasmAArch64 implements the AArch64-specific armasm rules (spec
// §4.5 "AArch64:").
func rewriteArmasmAArch64(st *State, opts Options, line string) string {
	if reExtInstr.MatchString(line) {
		line = strings.Replace(line, "ext", "ext8", 1)
	}
	line = rewriteArmasmLdrSym(st, opts, line)
	line = rewriteArmasmAdrp(line)
	line = rewriteArmasmAddLo12(st, line)
	if m := reUxtSxtTrailing.FindStringSubmatch(line); m != nil {
		line = m[1] + ", #0"
	}
	if m := reMovVnD.FindStringSubmatch(line); m != nil {
		line = fmt.Sprintf("%sumov %s, %s.d[%s]", m[1], m[2], m[3], m[4])
	}
	if m := reCondFuse.FindStringSubmatch(line); m != nil {
		indent, mnem, operands, cc := m[1], m[2], m[3], m[4]
		line = fmt.Sprintf("%s%s%s %s", indent, mnem, strings.ToUpper(cc), operands)
	}
	if opts.ArmasmSkipPrfum && rePrfum.MatchString(line) {
		return ""
	}
	if m := reLdurCandidate.FindStringSubmatch(line); m != nil {
		indent, mnem, size, rt, rn, off := m[1], m[2], m[3], m[4], m[5], m[6]
		base := "ldur"
		if mnem == "str" {
			base = "stur"
		}
		line = fmt.Sprintf("%s%s%s %s, [%s, #%s]", indent, base, size, rt, rn, off)
	}
	if m := reBCond.FindStringSubmatch(line); m != nil {
		line = fmt.Sprintf("%sb%s%s", m[1], m[2], m[3])
	}
	line = rewriteArmasmFcvtScale(opts, line)
	line = reAmpHex.ReplaceAllString(line, "& $1")
	if m := reRangeRegs.FindStringSubmatch(line); m != nil {
		line = expandRegisterRange(m)
	}
	return line
}

// rewriteArmasmLdrSym implements "ldr Xd, =SYM[+off] records SYM; if an
// optional offset is present and GASPP_ARMASM64_SKIP_NEG_OFFSET is set with
// negative off, split into ldr + sub" (spec §4.5 "AArch64").
func rewriteArmasmLdrSym(st *State, opts Options, line string) string {
	m := reLdrSymArmasm.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	indent, reg, sym, offStr := m[1], m[2], m[3], m[4]
	st.ImportSymbols[sym] = true
	if offStr == "" {
		return fmt.Sprintf("%sldr %s, =%s", indent, reg, sym)
	}
	off, _ := strconv.Atoi(offStr)
	if opts.ArmasmSkipNegOffset && off < 0 {
		return fmt.Sprintf("%sldr %s, =%s\n%ssub %s, %s, #%d", indent, reg, sym, indent, reg, reg, -off)
	}
	return fmt.Sprintf("%sldr %s, =%s%s", indent, reg, sym, offStr)
}

// rewriteArmasmAdrp implements "adrp Rd, SYM+off -> strip offset" (spec
// §4.5 "AArch64"); the offset is recovered on the matching :lo12: add.
func rewriteArmasmAdrp(line string) string {
	m := reAdrpArmasm.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	indent, rd, sym := m[1], m[2], m[3]
	return fmt.Sprintf("%sadrp %s, %s", indent, rd, sym)
}

// rewriteArmasmAddLo12 implements "on the matching add Rd, Rn, :lo12:SYM+off
// strip the :lo12:, record SYM, and append add Rd, Rn, #off if off>0" (spec
// §4.5 "AArch64").
func rewriteArmasmAddLo12(st *State, line string) string {
	m := reAddLo12Armasm.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	indent, rd, rn, sym, offStr := m[1], m[2], m[3], m[4], m[5]
	st.ImportSymbols[sym] = true
	out := fmt.Sprintf("%sadd %s, %s, %s", indent, rd, rn, sym)
	if offStr != "" {
		if off, _ := strconv.Atoi(offStr); off > 0 {
			out += fmt.Sprintf("\n%sadd %s, %s, #%d", indent, rd, rd, off)
		}
	}
	return out
}

// rewriteArmasmFcvtScale implements "Invert fcvtzs/scvtf scale to
// 64-scale under GASPP_ARMASM64_INVERT_SCALE" (spec §4.5 "AArch64").
func rewriteArmasmFcvtScale(opts Options, line string) string {
	if !opts.ArmasmInvertScale {
		return line
	}
	m := reFcvtScale.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	indent, mnem, operands, scaleStr := m[1], m[2], m[3], m[4]
	scale, _ := strconv.Atoi(scaleStr)
	return fmt.Sprintf("%s%s %s, #%d", indent, mnem, operands, 64-scale)
}

func expandRegisterRange(m []string) string {
	startBase, dtype, endBase := m[1], m[2], m[3]
	startNum, _ := strconv.Atoi(strings.TrimPrefix(startBase, "v"))
	endNum, _ := strconv.Atoi(endBase)
	var regs []string
	for i := startNum; i <= endNum; i++ {
		regs = append(regs, fmt.Sprintf("v%d.%s", i, dtype))
	}
	return "{" + strings.Join(regs, ",") + "}"
}

func renameDataDirective(line, name string) string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return line
	}
	directive := f[0]
	idx := strings.Index(line, directive)
	rest := line[idx+len(directive):]
	if directive == ".asciz" {
		return renameAsciz(line)
	}
	return line[:idx] + name + rest
}

var reAsciz = regexp.MustCompile(`^(\s*)\.asciz\s+("(?:[^"\\]|\\.)*")\s*$`)

func renameAsciz(line string) string {
	m := reAsciz.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	return fmt.Sprintf("%sdcb %s,0", m[1], m[2])
}

var reSectionArmasm = regexp.MustCompile(`^\s*\.(text|data|rodata|const_data)\b`)

func rewriteArmasmSections(st *State, line string) string {
	m := reSectionArmasm.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	switch m[1] {
	case "text":
		return "AREA |.text|, CODE, READONLY, ALIGN=4, CODEALIGN"
	case "data":
		return "AREA |.data|, DATA, ALIGN=4"
	case "rodata", "const_data":
		return "AREA |.rodata|, DATA, READONLY, ALIGN=4"
	}
	return line
}

var (
	reGlobalArmasm = regexp.MustCompile(`^(\s*)\.global(l)?\s+(\w+)\s*$`)
	reExternArmasm = regexp.MustCompile(`^(\s*)\.extern\s+(\w+)\s*$`)
	reThumbDir     = regexp.MustCompile(`^\s*\.thumb\s*$`)
	reArmDir       = regexp.MustCompile(`^\s*\.arm\s*$`)
)

func rewriteArmasmMisc(line string) string {
	if m := reGlobalArmasm.FindStringSubmatch(line); m != nil {
		return fmt.Sprintf("%sEXPORT %s", m[1], m[3])
	}
	if m := reExternArmasm.FindStringSubmatch(line); m != nil {
		return fmt.Sprintf("%sIMPORT %s", m[1], m[2])
	}
	if reThumbDir.MatchString(line) {
		return "THUMB"
	}
	if reArmDir.MatchString(line) {
		return "ARM"
	}
	return line
}
