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
	"os"
	"runtime"
)

// Options bundles everything spec §6 says influences translation semantics.
// Populated once at startup from CLI flags and environment variables —
// goat's main.go reads its cobra flags into locals at the top of Run in
// exactly this shape.
type Options struct {
	Arch    Arch
	Dialect Dialect

	FixUnreq   bool
	ForceThumb bool
	Verbose    bool

	// Bug-compatibility env toggles (spec §6), boolean by presence.
	FixXcode5             bool
	ArmasmSkipNegOffset   bool
	ArmasmSkipPrfum       bool
	ArmasmInvertScale     bool
	Debug                 bool
}

// DefaultFixUnreq mirrors spec §6: "-fix-unreq ... Default on when host is
// Darwin."
func DefaultFixUnreq() bool {
	return runtime.GOOS == "darwin"
}

// NewOptionsFromEnv reads the GASPP_* environment toggles (spec §6). Flags
// (arch, dialect, fix-unreq, force-thumb, verbose) are filled in by the
// caller (cmd/gaspp) from cobra flag values.
func NewOptionsFromEnv() Options {
	_, debug := os.LookupEnv("GASPP_DEBUG")
	_, xcode5 := os.LookupEnv("GASPP_FIX_XCODE5")
	_, skipNeg := os.LookupEnv("GASPP_ARMASM64_SKIP_NEG_OFFSET")
	_, skipPrfum := os.LookupEnv("GASPP_ARMASM64_SKIP_PRFUM")
	_, invertScale := os.LookupEnv("GASPP_ARMASM64_INVERT_SCALE")
	return Options{
		FixUnreq:            DefaultFixUnreq(),
		Debug:               debug,
		FixXcode5:           xcode5,
		ArmasmSkipNegOffset: skipNeg,
		ArmasmSkipPrfum:     skipPrfum,
		ArmasmInvertScale:   invertScale,
	}
}
