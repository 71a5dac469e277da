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

package ledger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blinklabs-io/numbat/ledger"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	testDefs := []struct {
		err      error
		kind     ledger.Kind
		sentinel error
		name     string
	}{
		{ledger.Unauthorized("caller %s", "x"), ledger.KindAuthorization, ledger.ErrUnauthorized, "authorization"},
		{ledger.Precondition("bad state"), ledger.KindStatePrecondition, ledger.ErrStatePrecondition, "state_precondition"},
		{ledger.ResourceLimit("insufficient balance"), ledger.KindResourceLimit, ledger.ErrResourceLimit, "resource_limit"},
		{ledger.InvalidInput("empty"), ledger.KindInputValidation, ledger.ErrInvalidInput, "input_validation"},
	}
	for _, testDef := range testDefs {
		wrapped := fmt.Errorf("treasury.withdraw: %w", testDef.err)
		assert.ErrorIs(t, wrapped, testDef.sentinel)
		kind, ok := ledger.KindOf(wrapped)
		assert.True(t, ok)
		assert.Equal(t, testDef.kind, kind)
		assert.Equal(t, testDef.name, kind.String())
	}
	assert.Equal(t, "caller x", ledger.Unauthorized("caller %s", "x").Error())
	_, ok := ledger.KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, errors.Is(ledger.InvalidInput("x"), ledger.ErrUnauthorized))
}

func TestNotFound(t *testing.T) {
	errMissing := errors.New("proposal not found")
	err := fmt.Errorf("lookup: %w", ledger.NotFound(errMissing, "unknown proposal %d", 7))
	assert.ErrorIs(t, err, errMissing)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	assert.EqualError(t, err, "lookup: unknown proposal 7")
	kind, ok := ledger.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, ledger.KindInputValidation, kind)
}
