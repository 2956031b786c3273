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
	"bufio"
	"io"
	"strings"
)

// Line Reader (spec §4.2). Grounded on goat's bufio.Scanner line-at-a-time
// idiom (every per-arch parseAssembly in goat reads line by line with
// bufio.NewScanner) plus mewbak-aoyud/lex_stream.go's escape-aware scanning
// for the backslash-before-comment-char and line-continuation handling a
// bare Scanner can't express.

// ReadLogicalLines consumes r, joins backslash-newline continuations, and
// returns the raw (unsplit, un-comment-stripped) logical lines. Splitting
// on ';' and comment stripping happen per architecture in Tokenize, since
// the comment character depends on arch.
func ReadLogicalLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var raw []string
	for scanner.Scan() {
		raw = append(raw, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	var joined []string
	var pending strings.Builder
	for _, line := range raw {
		pending.WriteString(line)
		if strings.HasSuffix(pending.String(), "\\") {
			s := pending.String()
			pending.Reset()
			pending.WriteString(strings.TrimSuffix(s, "\\"))
			continue
		}
		joined = append(joined, pending.String())
		pending.Reset()
	}
	if pending.Len() > 0 {
		joined = append(joined, pending.String())
	}
	return joined, nil
}

// Tokenize turns one logical line into zero or more pipeline-ready
// sub-lines: strips a leading-'#' linemarker line entirely, strips the
// trailing architecture comment (unless escaped with '\'), then splits on
// ';'. Each returned sub-line carries a single trailing newline, per spec.
func Tokenize(line string, arch Arch) []string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return nil
	}
	stripped := stripComment(line, arch)
	var out []string
	for _, sub := range splitUnescapedSemicolons(stripped) {
		out = append(out, sub+"\n")
	}
	return out
}

// stripComment removes a trailing architecture comment, honoring a
// backslash escape immediately before the comment character (spec §4.2
// step 2: "excluding occurrences prefixed by \").
func stripComment(line string, arch Arch) string {
	commentStr := commentString(arch)
	idx := findUnescaped(line, commentStr)
	if idx < 0 {
		return line
	}
	return line[:idx]
}

func commentString(arch Arch) string {
	if arch == ArchAArch64 {
		return "//"
	}
	return string(arch.CommentChar())
}

// findUnescaped returns the index of the first occurrence of sep not
// immediately preceded by a backslash, or -1.
func findUnescaped(s, sep string) int {
	from := 0
	for {
		idx := strings.Index(s[from:], sep)
		if idx < 0 {
			return -1
		}
		abs := from + idx
		if abs > 0 && s[abs-1] == '\\' {
			from = abs + len(sep)
			continue
		}
		return abs
	}
}

// splitUnescapedSemicolons splits s on ';' that is not preceded by '\'.
func splitUnescapedSemicolons(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' && (i == 0 || s[i-1] != '\\') {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
