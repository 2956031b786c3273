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

// SymbolTable holds the integer values defined by .set/.equ (spec §3).
type SymbolTable struct {
	values map[string]int64
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{values: make(map[string]int64)}
}

// Set assigns a value to a symbol, overwriting any previous value.
func (s *SymbolTable) Set(name string, value int64) {
	s.values[name] = value
}

// Lookup returns the value bound to name, if any.
func (s *SymbolTable) Lookup(name string) (int64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Delete removes a symbol, if bound.
func (s *SymbolTable) Delete(name string) {
	delete(s.values, name)
}
