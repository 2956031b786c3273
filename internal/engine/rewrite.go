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

// Serialized-Line Rewriter (spec §4.5). Grounded on goat's per-architecture
// parser files (parser_arm64.go/parser_amd64.go/loong64_parser.go/
// riscv64_parser.go), each a table of regexp.MustCompile patterns
// dispatched in sequence against a line — exactly DESIGN NOTES §9's
// recommended shape: "a per-architecture/dialect rewriter table composed
// of small pure functions."

// State threads every piece of mutable engine state through the rewrite
// pipeline (DESIGN NOTES §9: "encapsulate them in a single engine state
// value threaded through all rewrite functions; do not reach for ambient
// globals").
type State struct {
	Opts Options

	Syms        *SymbolTable
	Literals    *LiteralPool
	Locals      *LocalLabelState
	ReqAliases  *AliasTable
	NeonAliases *NeonAliasTable
	Sections    *SectionStack

	Thumb bool // current `.code 16`/`.thumb` vs `.code 32`/`.arm` mode

	ThumbLabels   map[string]bool // labels defined while in thumb mode
	CallTargets   map[string]bool // branch/call targets not defined locally
	ImportSymbols map[string]bool // data symbols referenced by ldr =sym / adrp
	LabelsSeen    map[string]bool // labels already emitted (armasm must not redeclare)

	PendingMovwReg string // armasm: register from a movw awaiting its matching movt
	PendingMovwSym string // armasm: symbol from a movw awaiting its matching movt
	PendingMovwHas bool
}

// NewState returns a freshly initialized rewrite state for a translation
// unit.
func NewState(opts Options) *State {
	return &State{
		Opts:          opts,
		Syms:          NewSymbolTable(),
		Literals:      NewLiteralPool(),
		Locals:        NewLocalLabelState(),
		ReqAliases:    NewAliasTable(),
		NeonAliases:   NewNeonAliasTable(),
		Sections:      NewSectionStack(),
		ThumbLabels:   make(map[string]bool),
		CallTargets:   make(map[string]bool),
		ImportSymbols: make(map[string]bool),
		LabelsSeen:    make(map[string]bool),
	}
}

var (
	reCode16    = regexp.MustCompile(`^\s*\.code\s+16\b`)
	reCode32    = regexp.MustCompile(`^\s*\.code\s+32\b`)
	reThumbMode = regexp.MustCompile(`^\s*\.thumb\b`)
	reArmMode   = regexp.MustCompile(`^\s*\.arm\b`)

	reSectionDirective = regexp.MustCompile(`^\s*\.(text|section|const_data|data|rodata)\b(.*)$`)
	rePrevious          = regexp.MustCompile(`^\s*\.previous\b`)

	reLabelLine = regexp.MustCompile(`^([A-Za-z_.$][\w.$]*)\s*:\s*(.*)$`)
	reLocalNum  = regexp.MustCompile(`^([0-9]+)\s*:\s*(.*)$`)
)

// Rewrite runs the whole §4.5 pipeline for one fully-expanded, condition-
// true line and returns zero or more output lines (some rules split one
// input line into several output lines).
func Rewrite(st *State, opts Options, line string) ([]string, error) {
	trimmed := strings.TrimRight(line, "\n")

	if handleMode(st, trimmed) {
		return nil, nil
	}
	if out, handled, err := handleSection(st, opts, trimmed); handled {
		return out, err
	}

	if opts.Arch == ArchAArch64 || opts.Dialect.IsArmasm() {
		if handled, lines := handleReqDirective(st, opts, trimmed); handled {
			return lines, nil
		}
	}
	if opts.Arch == ArchARM && !opts.Dialect.IsArmasm() {
		if handleNeonDirective(st, trimmed) {
			return nil, nil
		}
	}

	out := trimmed
	var err error

	if opts.Arch == ArchPowerPC {
		out = rewritePowerPC(out)
	}
	if opts.Arch == ArchAArch64 {
		out = resolveReqAliases(st, out)
		if !opts.Dialect.IsArmasm() {
			out = rewriteAArch64Shims(out)
		}
		if opts.Dialect.IsApple() {
			out = rewriteApplePCRelative(out)
		}
		if opts.Dialect == DialectClang || opts.Dialect.IsArmasm() {
			out = rewriteAddSubImmSplit(out)
		}
	}
	if opts.Arch != ArchAArch64 && opts.Dialect.IsArmasm() {
		out = resolveReqAliases(st, out)
	}
	if opts.Arch == ArchARM && !opts.Dialect.IsArmasm() {
		out, err = rewriteARMLiteralPool(st, opts, out)
		if err != nil {
			return nil, err
		}
		if st.Thumb {
			out = rewriteThumbLargeImm(out)
		}
		out = resolveNeonAliases(st, out)
	}
	if opts.ForceThumb {
		out = RewriteForceThumb(out)
	}

	if opts.Dialect.IsApple() {
		out = stripLeadingDotLabel(out)
		out = rewriteAppleDialect(st, out)
		if FeaturesFor(opts.Dialect).CommentOutDirectives[directiveName(out)] {
			out = "// " + out
		}
		lines := tagThumbFunc(st, out)
		return lines, nil
	}

	if opts.Dialect.IsArmasm() {
		if FeaturesFor(opts.Dialect).StripDotLabels {
			out = stripLeadingDotLabel(out)
		}
		return rewriteArmasm(st, opts, out)
	}

	return []string{out + "\n"}, nil
}

func directiveName(line string) string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(f[0])
}

func handleMode(st *State, line string) bool {
	switch {
	case reCode16.MatchString(line), reThumbMode.MatchString(line):
		st.Thumb = true
	case reCode32.MatchString(line), reArmMode.MatchString(line):
		st.Thumb = false
	default:
		return false
	}
	return false // mode directives still pass through to dialect-specific emission
}

func handleSection(st *State, opts Options, line string) ([]string, bool, error) {
	if rePrevious.MatchString(line) {
		prev, err := st.Sections.Previous()
		if err != nil {
			return nil, true, err
		}
		return []string{prev + "\n"}, true, nil
	}
	if m := reSectionDirective.FindStringSubmatch(line); m != nil {
		st.Sections.Push(line)
	}
	return nil, false, nil
}

func stripLeadingDotLabel(line string) string {
	re := regexp.MustCompile(`\.L(\w+)`)
	return re.ReplaceAllString(line, "L$1")
}
