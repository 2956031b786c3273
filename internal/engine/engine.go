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
	"io"
	"regexp"
	"strings"
)

// Engine drives the whole pipeline (spec §4): Line Reader -> Conditional-
// Assembly Stack -> Macro/Repetition Engine -> Serialized-Line Rewriter ->
// Output Emitter. Grounded on goat's top-level parseAssembly loop (each
// per-arch parser in goat is one function reading lines and dispatching by
// directive keyword); we generalize that single dispatch loop into an
// explicit work queue so re-fed macro/.rept expansion lines re-enter the
// same conditional/macro dispatch instead of recursing (DESIGN NOTES §9).
type Engine struct {
	opts  Options
	state *State
	cond  *CondStack
	macs  *MacroTable

	altmacro bool
	invCount int

	capture *captureFrame // non-nil while inside .macro/.rept/.irp/.irpc
}

// captureFrame accumulates the verbatim body of a .macro/.rept/.irp/.irpc
// block until its matching closer (spec §3: "Macro definition"/"Repetition
// frame").
type captureFrame struct {
	kind  captureKind
	depth int // nested same-kind opens, so .endm/.endr matches the right closer

	macroName   string
	macroParams []MacroParam

	repeat *RepeatFrame

	body []string
}

type captureKind int

const (
	captureMacro captureKind = iota
	captureRepeat
)

var (
	reMacroOpen  = regexp.MustCompile(`^\s*\.macro\s+(.*)$`)
	reMacroClose = regexp.MustCompile(`^\s*\.endm\s*$`)
	rePurgem     = regexp.MustCompile(`^\s*\.purgem\s+(\w+)\s*$`)

	reReptOpen  = regexp.MustCompile(`^\s*\.rept\s+(.+)$`)
	reIrpOpen   = regexp.MustCompile(`^\s*\.irp\s+(\w+)\s*,\s*(.*)$`)
	reIrpcOpen  = regexp.MustCompile(`^\s*\.irpc\s+(\w+)\s*,\s*(.*)$`)
	reEndr      = regexp.MustCompile(`^\s*\.endr\s*(.*)$`)

	reAltmacro   = regexp.MustCompile(`^\s*\.altmacro\s*$`)
	reNoaltmacro = regexp.MustCompile(`^\s*\.noaltmacro\s*$`)

	reIf     = regexp.MustCompile(`^\s*\.if\s+(.+)$`)
	reIfeq   = regexp.MustCompile(`^\s*\.ifeq\s+(.+)$`)
	reIflt   = regexp.MustCompile(`^\s*\.iflt\s+(.+)$`)
	reIfdef  = regexp.MustCompile(`^\s*\.ifdef\s+(\w+)\s*$`)
	reIfndef = regexp.MustCompile(`^\s*\.ifndef\s+(\w+)\s*$`)
	reIfb    = regexp.MustCompile(`^\s*\.ifb\s+(.*)$`)
	reIfnb   = regexp.MustCompile(`^\s*\.ifnb\s+(.*)$`)
	reIfc    = regexp.MustCompile(`^\s*\.ifc\s+(.*)$`)
	reIfnc   = regexp.MustCompile(`^\s*\.ifnc\s+(.*)$`)
	reElseif = regexp.MustCompile(`^\s*\.elseif\s+(.+)$`)
	reElse   = regexp.MustCompile(`^\s*\.else\s*$`)
	reEndif  = regexp.MustCompile(`^\s*\.endif\s*$`)

	reSet = regexp.MustCompile(`^\s*\.(set|equ)\s+(\w+)\s*,\s*(.+)$`)

	reMacroCall = regexp.MustCompile(`^\s*(\w+)(\s+(.*))?$`)
)

// NewEngine returns a driving engine ready to translate one input stream.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:  opts,
		state: NewState(opts),
		cond:  NewCondStack(),
		macs:  NewMacroTable(),
	}
}

// Run reads r as gas-dialect assembly, translates it per opts, and writes
// the result to w.
func (e *Engine) Run(r io.Reader, w io.Writer) error {
	logical, err := ReadLogicalLines(r)
	if err != nil {
		return err
	}

	var queue []string
	for _, l := range logical {
		queue = append(queue, Tokenize(l, e.opts.Arch)...)
	}

	var out strings.Builder
	for len(queue) > 0 {
		line := queue[0]
		queue = queue[1:]

		expanded, fed, err := e.step(strings.TrimRight(line, "\n"))
		if err != nil {
			return err
		}
		if fed != nil {
			queue = append(fed, queue...)
			continue
		}
		out.WriteString(expanded)
	}

	if e.cond.Depth() != 0 {
		return errMalformed(".if", "unterminated conditional block at end of file")
	}
	if e.capture != nil {
		return errMalformed(".macro/.rept", "unterminated macro or repeat block at end of file")
	}

	for _, l := range Epilogue(e.state, e.opts) {
		out.WriteString(l)
	}

	_, err = io.WriteString(w, out.String())
	return err
}

// step processes one already-tokenized line. It returns either:
//   - rendered output text (possibly empty) with fed == nil, or
//   - fed != nil: lines to prepend to the work queue instead (a macro
//     call's expansion, or a .rept/.irp/.irpc body expanded when its
//     closing .endr is seen). Lines consumed while a block is still being
//     captured produce neither output nor fed lines.
func (e *Engine) step(line string) (rendered string, fed []string, err error) {
	if e.capture != nil {
		done, expansion, err := e.feedCapture(line)
		if err != nil {
			return "", nil, err
		}
		if !done {
			return "", nil, nil
		}
		return "", expansion, nil
	}

	if reMacroOpen.MatchString(line) || reReptOpen.MatchString(line) ||
		reIrpOpen.MatchString(line) || reIrpcOpen.MatchString(line) {
		if err := e.openCapture(line); err != nil {
			return "", nil, err
		}
		return "", nil, nil
	}

	if handled, active, err := e.handleConditional(line); handled {
		return "", nil, err
	} else if !active {
		return "", nil, nil
	}

	if reAltmacro.MatchString(line) {
		e.altmacro = true
		return "", nil, nil
	}
	if reNoaltmacro.MatchString(line) {
		e.altmacro = false
		return "", nil, nil
	}

	if m := rePurgem.FindStringSubmatch(line); m != nil {
		e.macs.Purge(m[1])
		return "", nil, nil
	}

	if m := reSet.FindStringSubmatch(line); m != nil {
		v, err := Eval(m[3], e.state.Syms)
		if err != nil {
			return "", nil, err
		}
		e.state.Syms.Set(m[2], v)
		return "", nil, nil
	}

	if expansion, matched, err := e.tryMacroCall(line); matched {
		if err != nil {
			return "", nil, err
		}
		return "", expansion, nil
	}

	lines, err := Rewrite(e.state, e.opts, line)
	if err != nil {
		return "", nil, err
	}
	return strings.Join(lines, ""), nil, nil
}

// handleConditional dispatches .if*/.elseif/.else/.endif. handled reports
// whether line was a conditional directive itself (consumed either way);
// active reports whether the *current* top-of-stack state allows ordinary
// lines through (only meaningful when handled is false).
func (e *Engine) handleConditional(line string) (handled bool, active bool, err error) {
	switch {
	case reIf.MatchString(line):
		m := reIf.FindStringSubmatch(line)
		v, evalErr := Eval(m[1], e.state.Syms)
		e.cond.If(evalErr == nil && v != 0)
		return true, false, nil
	case reIfeq.MatchString(line):
		m := reIfeq.FindStringSubmatch(line)
		v, evalErr := Eval(m[1], e.state.Syms)
		e.cond.If(evalErr == nil && v == 0)
		return true, false, nil
	case reIflt.MatchString(line):
		m := reIflt.FindStringSubmatch(line)
		v, evalErr := Eval(m[1], e.state.Syms)
		e.cond.If(evalErr == nil && v < 0)
		return true, false, nil
	case reIfdef.MatchString(line):
		m := reIfdef.FindStringSubmatch(line)
		_, ok := e.state.Syms.Lookup(m[1])
		e.cond.If(ok)
		return true, false, nil
	case reIfndef.MatchString(line):
		m := reIfndef.FindStringSubmatch(line)
		_, ok := e.state.Syms.Lookup(m[1])
		e.cond.If(!ok)
		return true, false, nil
	case reIfb.MatchString(line):
		m := reIfb.FindStringSubmatch(line)
		e.cond.IfBlank(strings.TrimSpace(m[1]) == "", false)
		return true, false, nil
	case reIfnb.MatchString(line):
		m := reIfnb.FindStringSubmatch(line)
		e.cond.IfBlank(strings.TrimSpace(m[1]) == "", true)
		return true, false, nil
	case reIfc.MatchString(line):
		m := reIfc.FindStringSubmatch(line)
		eq, cmpErr := tokensEqual(m[1])
		if cmpErr != nil {
			return true, false, cmpErr
		}
		e.cond.IfCompare(eq, false)
		return true, false, nil
	case reIfnc.MatchString(line):
		m := reIfnc.FindStringSubmatch(line)
		eq, cmpErr := tokensEqual(m[1])
		if cmpErr != nil {
			return true, false, cmpErr
		}
		e.cond.IfCompare(eq, true)
		return true, false, nil
	case reElseif.MatchString(line):
		m := reElseif.FindStringSubmatch(line)
		v, evalErr := Eval(m[1], e.state.Syms)
		if err := e.cond.Elseif(evalErr == nil && v != 0); err != nil {
			return true, false, err
		}
		return true, false, nil
	case reElse.MatchString(line):
		if err := e.cond.Else(); err != nil {
			return true, false, err
		}
		return true, false, nil
	case reEndif.MatchString(line):
		if err := e.cond.Endif(); err != nil {
			return true, false, err
		}
		return true, false, nil
	}
	return false, e.cond.Active(), nil
}

// openCapture begins accumulating the verbatim body of a macro/rept/irp/
// irpc block (spec §4.4). It opens a frame even inside a suppressed
// conditional branch, so the nested .endm/.endr still balances; the frame's
// body is simply discarded instead of defined/expanded on close (see
// feedCapture).
func (e *Engine) openCapture(line string) error {
	switch {
	case reMacroOpen.MatchString(line):
		m := reMacroOpen.FindStringSubmatch(line)
		name, params, err := parseMacroHeader(m[1])
		if err != nil {
			return err
		}
		e.capture = &captureFrame{kind: captureMacro, macroName: name, macroParams: params}
	case reReptOpen.MatchString(line):
		m := reReptOpen.FindStringSubmatch(line)
		n, err := Eval(m[1], e.state.Syms)
		if err != nil {
			return err
		}
		e.capture = &captureFrame{kind: captureRepeat, repeat: &RepeatFrame{Kind: RepeatRept, Count: int(n)}}
	case reIrpOpen.MatchString(line):
		m := reIrpOpen.FindStringSubmatch(line)
		e.capture = &captureFrame{kind: captureRepeat, repeat: &RepeatFrame{
			Kind: RepeatIrp, Param: m[1], Args: ParseIrpArgs(m[2]),
		}}
	case reIrpcOpen.MatchString(line):
		m := reIrpcOpen.FindStringSubmatch(line)
		e.capture = &captureFrame{kind: captureRepeat, repeat: &RepeatFrame{
			Kind: RepeatIrpc, Param: m[1], Args: ParseIrpcArgs(m[2]),
		}}
	}
	return nil
}

// feedCapture accumulates body lines for the open capture frame, tracking
// same-kind nesting so an inner .macro/.rept's own .endm/.endr does not
// close the outer frame. When the matching closer is seen it returns
// done==true and the fully-expanded replacement lines.
func (e *Engine) feedCapture(line string) (done bool, expansion []string, err error) {
	f := e.capture

	switch f.kind {
	case captureMacro:
		if reMacroOpen.MatchString(line) {
			f.depth++
		} else if reMacroClose.MatchString(line) {
			if f.depth > 0 {
				f.depth--
			} else {
				e.capture = nil
				if e.cond.Active() {
					def := &MacroDef{Name: f.macroName, Params: f.macroParams, Body: f.body}
					if err := e.macs.Define(def); err != nil {
						return true, nil, err
					}
				}
				return true, nil, nil
			}
		}
	case captureRepeat:
		if reReptOpen.MatchString(line) || reIrpOpen.MatchString(line) || reIrpcOpen.MatchString(line) {
			f.depth++
		}
		if m := reEndr.FindStringSubmatch(line); m != nil {
			if strings.TrimSpace(m[1]) != "" {
				return true, nil, errMalformed(line, ".endr takes no arguments")
			}
			if f.depth > 0 {
				f.depth--
			} else {
				e.capture = nil
				if !e.cond.Active() {
					return true, nil, nil
				}
				f.repeat.Body = f.body
				var exp []string
				for _, iter := range f.repeat.Expansions() {
					for _, l := range iter {
						exp = append(exp, l+"\n")
					}
				}
				return true, exp, nil
			}
		}
	}

	f.body = append(f.body, line)
	return false, nil, nil
}

// tryMacroCall detects `NAME [args]` where NAME is a defined macro and
// expands it (spec §4.4 "Invocation").
func (e *Engine) tryMacroCall(line string) (expansion []string, matched bool, err error) {
	m := reMacroCall.FindStringSubmatch(line)
	if m == nil {
		return nil, false, nil
	}
	def, ok := e.macs.Lookup(m[1])
	if !ok {
		return nil, false, nil
	}
	bound, err := def.Bind(m[3])
	if err != nil {
		return nil, true, err
	}
	e.invCount++
	body := def.Expand(bound, e.invCount, e.altmacro)
	exp := make([]string, len(body))
	for i, l := range body {
		exp[i] = l + "\n"
	}
	return exp, true, nil
}
