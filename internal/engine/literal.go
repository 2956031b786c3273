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

import "fmt"

// LiteralPool implements the expression-string -> synthesized label
// (spec §3: Literal-pool map). Grounded on goat's LoongArch constant-pool
// bookkeeping (loong64ConstPoolLabel/loong64PcadduConstPool/
// loong64LdConstPool in loong64_parser.go), which already tracks a
// constant-pool-label <-> value relationship for PC-relative loads; we
// generalize the same bookkeeping to gas's `ldr Rd, =expr`.
type LiteralPool struct {
	labels  map[string]string // expr -> label
	order   []string          // expr insertion order, for a stable flush
	counter int
}

// NewLiteralPool returns an empty pool.
func NewLiteralPool() *LiteralPool {
	return &LiteralPool{labels: make(map[string]string)}
}

// LabelFor returns the synthesized label for expr, allocating a fresh one
// on first use (spec §4.5: ldr Rd, =EXPR -> allocate or reuse Literal_<n>).
func (p *LiteralPool) LabelFor(expr string) string {
	if label, ok := p.labels[expr]; ok {
		return label
	}
	label := fmt.Sprintf("Literal_%d", p.counter)
	p.counter++
	p.labels[expr] = label
	p.order = append(p.order, expr)
	return label
}

// Entry pairs a pending literal's synthesized label with its expression.
type Entry struct {
	Label string
	Expr  string
}

// Flush returns the pending literals in insertion order and clears the
// pool (spec: ".ltorg and stream end reset").
func (p *LiteralPool) Flush() []Entry {
	entries := make([]Entry, 0, len(p.order))
	for _, expr := range p.order {
		entries = append(entries, Entry{Label: p.labels[expr], Expr: expr})
	}
	p.labels = make(map[string]string)
	p.order = nil
	return entries
}

// Empty reports whether the pool has no pending literals.
func (p *LiteralPool) Empty() bool {
	return len(p.order) == 0
}
