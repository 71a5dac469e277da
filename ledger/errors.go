// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was rejected
type Kind int

const (
	KindAuthorization Kind = iota + 1
	KindStatePrecondition
	KindResourceLimit
	KindInputValidation
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrStatePrecondition = errors.New("state precondition failed")
	ErrResourceLimit     = errors.New("resource limit exceeded")
	ErrInvalidInput      = errors.New("invalid input")
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindStatePrecondition:
		return "state_precondition"
	case KindResourceLimit:
		return "resource_limit"
	case KindInputValidation:
		return "input_validation"
	default:
		return "unknown"
	}
}

// Sentinel returns the error value matched by errors.Is for the kind
func (k Kind) Sentinel() error {
	switch k {
	case KindAuthorization:
		return ErrUnauthorized
	case KindStatePrecondition:
		return ErrStatePrecondition
	case KindResourceLimit:
		return ErrResourceLimit
	case KindInputValidation:
		return ErrInvalidInput
	default:
		return nil
	}
}

// Error is a revert. The whole operation that produced it is rolled back.
// Cause optionally links a more specific error, such as a not found value
type Error struct {
	Cause  error
	Reason string
	Kind   Kind
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind.Sentinel(), e.Cause}
	}
	return []error{e.Kind.Sentinel()}
}

func newError(kind Kind, format string, args ...any) error {
	return &Error{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Unauthorized reports a caller without the required role or weight
func Unauthorized(format string, args ...any) error {
	return newError(KindAuthorization, format, args...)
}

// Precondition reports an operation invoked in the wrong lifecycle state
func Precondition(format string, args ...any) error {
	return newError(KindStatePrecondition, format, args...)
}

// ResourceLimit reports an exhausted balance or budget
func ResourceLimit(format string, args ...any) error {
	return newError(KindResourceLimit, format, args...)
}

// InvalidInput reports malformed arguments
func InvalidInput(format string, args ...any) error {
	return newError(KindInputValidation, format, args...)
}

// NotFound reports a lookup of an unknown object. The result matches both
// ErrInvalidInput and cause
func NotFound(cause error, format string, args ...any) error {
	return &Error{
		Kind:   KindInputValidation,
		Reason: fmt.Sprintf(format, args...),
		Cause:  cause,
	}
}

// KindOf returns the kind of the first ledger Error in err's chain
func KindOf(err error) (Kind, bool) {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind, true
	}
	return 0, false
}
