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
)

// PowerPC rewrite rules (spec §4.5 "PowerPC").

var (
	reAtLHa  = regexp.MustCompile(`(\S+)@(l|ha)\b`)
	reMtSpr  = regexp.MustCompile(`^(\s*)mt(\w+)\s+(\w+)\s*$`)
	reMfSpr  = regexp.MustCompile(`^(\s*)mf(\w+)\s+(\w+)\s*$`)
)

// rewritePowerPC implements: "@l/@ha suffixes on operands -> lo16(...)/
// ha16(...)" and "mt<spr>/mf<spr> with known SPR names -> mtspr NUM, Rs /
// mfspr Rd, NUM" (spec §4.5).
func rewritePowerPC(line string) string {
	line = reAtLHa.ReplaceAllStringFunc(line, func(m string) string {
		sub := reAtLHa.FindStringSubmatch(m)
		sym, suffix := sub[1], sub[2]
		if suffix == "l" {
			return fmt.Sprintf("lo16(%s)", sym)
		}
		return fmt.Sprintf("ha16(%s)", sym)
	})
	if m := reMtSpr.FindStringSubmatch(line); m != nil {
		if num, ok := sprNames[m[2]]; ok {
			return fmt.Sprintf("%smtspr %d, %s", m[1], num, m[3])
		}
	}
	if m := reMfSpr.FindStringSubmatch(line); m != nil {
		if num, ok := sprNames[m[2]]; ok {
			return fmt.Sprintf("%smfspr %s, %d", m[1], m[3], num)
		}
	}
	return line
}
