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
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Macro & Repetition Engine (spec §4.4). Grounded on goat's ordered
// parameter-list convert functions (convertFunctionParameters in main.go)
// for the "ordered parameter list with defaults" shape, and
// mewbak-aoyud/asm_struc.go for verbatim-body capture until a matching
// closer.

// MacroParam is one declared .macro parameter.
type MacroParam struct {
	Name       string
	Default    string
	HasDefault bool
	Vararg     bool
}

// MacroDef is a captured `.macro NAME ... .endm` definition.
type MacroDef struct {
	Name   string
	Params []MacroParam
	Body   []string
}

// MacroTable holds all currently-defined macros (spec §3: lifecycle "live
// for the remainder of the stream... until .purgem").
type MacroTable struct {
	macros map[string]*MacroDef
}

// NewMacroTable returns an empty macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*MacroDef)}
}

// Define registers a macro, validating OQ2's resolution: `:vararg` is
// forbidden on any parameter but the last.
func (t *MacroTable) Define(def *MacroDef) error {
	for i, p := range def.Params {
		if p.Vararg && i != len(def.Params)-1 {
			return errMalformed(def.Name, ":vararg parameter %q must be the last parameter", p.Name)
		}
	}
	t.macros[def.Name] = def
	return nil
}

// Purge removes a macro definition (`.purgem NAME`).
func (t *MacroTable) Purge(name string) {
	delete(t.macros, name)
}

// Lookup returns the macro definition for name, if any.
func (t *MacroTable) Lookup(name string) (*MacroDef, bool) {
	d, ok := t.macros[name]
	return d, ok
}

// parseMacroHeader parses the argument list of `.macro NAME [arg[=default] ...]`.
func parseMacroHeader(rest string) (string, []MacroParam, error) {
	fields := splitArgsTopLevel(rest, ',')
	// Whitespace is also an accepted separator within every field.
	var flat []string
	for _, f := range fields {
		for _, tok := range strings.Fields(f) {
			flat = append(flat, tok)
		}
	}
	if len(flat) == 0 {
		return "", nil, errMalformed(rest, ".macro requires a name")
	}
	name := flat[0]
	var params []MacroParam
	for _, raw := range flat[1:] {
		p := MacroParam{}
		spec := raw
		if idx := strings.Index(spec, ":vararg"); idx >= 0 {
			p.Vararg = true
			spec = spec[:idx] + spec[idx+len(":vararg"):]
		}
		if idx := strings.Index(spec, "="); idx >= 0 {
			p.Name = spec[:idx]
			p.Default = spec[idx+1:]
			p.HasDefault = true
		} else {
			p.Name = spec
		}
		params = append(params, p)
	}
	return name, params, nil
}

// Bind binds call-site arguments to the macro's declared parameters (spec
// §4.4 "Invocation"). It returns the substitution map and, per OQ1's
// resolution, applies named bindings before positional ones.
func (d *MacroDef) Bind(argsStr string) (map[string]string, error) {
	bound := make(map[string]string)
	boundSet := make(map[string]bool)

	slots, offsets := splitArgsTopLevelWithOffsets(argsStr, ',')

	// Pass 1: named bindings (key=value), anywhere in the call.
	var positional []lo.Tuple2[int, string] // index into slots, raw text
	declared := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		declared[p.Name] = true
	}
	for i, slot := range slots {
		trimmed := strings.TrimSpace(slot)
		if idx := strings.Index(trimmed, "="); idx > 0 {
			key := strings.TrimSpace(trimmed[:idx])
			if declared[key] {
				bound[key] = trimmed[idx+1:]
				boundSet[key] = true
				continue
			}
		}
		positional = append(positional, lo.Tuple2[int, string]{A: i, B: slot})
	}

	// Pass 2: positional fill of remaining unbound parameters, in
	// declaration order, skipping any already bound by name (OQ1).
	pi := 0
	for pidx, p := range d.Params {
		if boundSet[p.Name] {
			continue
		}
		if p.Vararg {
			if pi < len(positional) {
				start := offsets[positional[pi].A]
				bound[p.Name] = strings.TrimLeft(argsStr[start:], " \t")
				boundSet[p.Name] = true
				pi = len(positional)
			}
			_ = pidx
			continue
		}
		if pi >= len(positional) {
			break
		}
		bound[p.Name] = strings.TrimSpace(positional[pi].B)
		boundSet[p.Name] = true
		pi++
	}
	if pi < len(positional) {
		return nil, errMacroMisuse(argsStr, "too many positional arguments to macro %q", d.Name)
	}

	for _, p := range d.Params {
		if !boundSet[p.Name] {
			if p.HasDefault {
				bound[p.Name] = p.Default
			} else if p.Vararg {
				bound[p.Name] = ""
			} else {
				return nil, errMacroMisuse(argsStr, "missing required argument %q to macro %q", p.Name, d.Name)
			}
		}
	}
	return bound, nil
}

var pasteMarker = regexp.MustCompile(`\\\(\)`)

// Expand substitutes \PARAM (longest name first, to avoid prefix capture),
// \@ (per-invocation counter), and \() (empty concatenation marker) into
// each body line. Under altmacro, bare word-bounded PARAM occurrences are
// also substituted (spec §4.4 "Body expansion").
func (d *MacroDef) Expand(bound map[string]string, counter int, altmacro bool) []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	out := make([]string, len(d.Body))
	for li, line := range d.Body {
		l := strings.ReplaceAll(line, `\@`, strconv.Itoa(counter))
		for _, name := range names {
			l = strings.ReplaceAll(l, `\`+name, bound[name])
			if altmacro {
				l = regexp.MustCompile(`\b`+regexp.QuoteMeta(name)+`\b`).ReplaceAllString(l, bound[name])
			}
		}
		l = pasteMarker.ReplaceAllString(l, "")
		out[li] = l
	}
	return out
}

// splitArgsTopLevel splits s on sep, ignoring occurrences nested inside
// (), [] or {} (operand lists like `{v1.4h,v2.4h}` must not be split).
func splitArgsTopLevel(s string, sep byte) []string {
	parts, _ := splitArgsTopLevelWithOffsets(s, sep)
	return parts
}

func splitArgsTopLevelWithOffsets(s string, sep byte) ([]string, []int) {
	var parts []string
	var offsets []int
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[start:i])
				offsets = append(offsets, start)
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	offsets = append(offsets, start)
	if len(parts) == 1 && strings.TrimSpace(parts[0]) == "" {
		return nil, nil
	}
	return parts, offsets
}
