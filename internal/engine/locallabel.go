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

// LocalLabelState synthesizes unique names for numeric local labels (spec
// §3: "per numeric label N, a last seen backward target and a queue of next
// forward target names"). Grounded on goat's label-collection bookkeeping in
// parseAssembly (parser_arm64.go), which already tracks "the label(s)
// attached to the next instruction" — the same backward/forward
// relationship, generalized to gas's Nf/Nb numeric references.
type LocalLabelState struct {
	backward map[string]string   // numeric label -> last defined synthesized name
	forward  map[string][]string // numeric label -> FIFO of names allocated for pending Nf refs
	counter  int
}

// NewLocalLabelState returns empty tracking state.
func NewLocalLabelState() *LocalLabelState {
	return &LocalLabelState{
		backward: make(map[string]string),
		forward:  make(map[string][]string),
	}
}

func (s *LocalLabelState) fresh() string {
	name := fmt.Sprintf("temp_label_%d", s.counter)
	s.counter++
	return name
}

// Forward resolves an "Nf" reference: all Nf references between two
// consecutive definitions of N resolve to the same synthesized name.
func (s *LocalLabelState) Forward(n string) string {
	q := s.forward[n]
	if len(q) == 0 {
		name := s.fresh()
		s.forward[n] = append(q, name)
		return name
	}
	return q[len(q)-1]
}

// Define materializes a fresh synthesized name for a "N:" definition,
// consuming the oldest pending forward-reference name if one is queued,
// otherwise allocating a new name. Returns the synthesized name to emit in
// place of the numeric label.
func (s *LocalLabelState) Define(n string) string {
	q := s.forward[n]
	var name string
	if len(q) > 0 {
		name = q[0]
		s.forward[n] = q[1:]
	} else {
		name = s.fresh()
	}
	s.backward[n] = name
	return name
}

// Backward resolves an "Nb" reference to the most recent definition of N.
func (s *LocalLabelState) Backward(n string) (string, error) {
	name, ok := s.backward[n]
	if !ok {
		return "", errMalformed(n+"b", "no prior definition of local label %s", n)
	}
	return name, nil
}
