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

package api

import (
	"errors"
	"net/http"

	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/ledger"
)

var (
	errMissingPrincipal = errors.New("missing " + PrincipalHeader + " header")
	errInvalidPrincipal = errors.New("invalid " + PrincipalHeader + " header")
)

// notFoundErrors are lookups of unknown objects, reported as 404 even
// though the ledger classifies them as invalid input
var notFoundErrors = []error{
	models.ErrGovernanceProposalNotFound,
	models.ErrTreasuryAssetNotFound,
}

// statusForError maps a failed operation to an HTTP status and the ledger
// error kind, if any
func statusForError(err error) (int, string) {
	for _, nf := range notFoundErrors {
		if errors.Is(err, nf) {
			return http.StatusNotFound, ledger.KindInputValidation.String()
		}
	}
	if kind, ok := ledger.KindOf(err); ok {
		switch kind {
		case ledger.KindAuthorization:
			return http.StatusForbidden, kind.String()
		case ledger.KindStatePrecondition:
			return http.StatusConflict, kind.String()
		case ledger.KindResourceLimit:
			return http.StatusUnprocessableEntity, kind.String()
		case ledger.KindInputValidation:
			return http.StatusBadRequest, kind.String()
		}
	}
	if errors.Is(err, chain.ErrInvalidStep) {
		return http.StatusBadRequest, ""
	}
	return http.StatusInternalServerError, ""
}
