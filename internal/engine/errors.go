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

// Kind classifies a fatal engine error per spec §7.
type Kind int

const (
	KindMalformedDirective Kind = iota
	KindExpressionFailure
	KindMacroMisuse
	KindConfiguration
)

// Error is the single error type the engine returns. All engine errors are
// fatal at the top level: the caller prints Error() to stderr and exits 1.
type Error struct {
	Kind    Kind
	Line    string
	Message string
}

func (e *Error) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Line)
	}
	return e.Message
}

func errMalformed(line, format string, args ...any) error {
	return &Error{Kind: KindMalformedDirective, Line: line, Message: fmt.Sprintf(format, args...)}
}

func errExpression(expr string, cause error) error {
	return &Error{Kind: KindExpressionFailure, Line: expr, Message: fmt.Sprintf("failed to evaluate expression: %v", cause)}
}

func errMacroMisuse(line, format string, args ...any) error {
	return &Error{Kind: KindMacroMisuse, Line: line, Message: fmt.Sprintf(format, args...)}
}

func errConfig(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}
