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

package types

import "slices"

const (
	ProposalBodyKeyPrefix     = "pb"
	ExecutionReceiptKeyPrefix = "rc"
)

// ProposalBodyKey returns the blob key for the body of the given proposal
func ProposalBodyKey(proposalId []byte) []byte {
	return slices.Concat([]byte(ProposalBodyKeyPrefix), proposalId)
}

// ExecutionReceiptKey returns the blob key for the execution receipt of the
// given timelock operation
func ExecutionReceiptKey(operationId []byte) []byte {
	return slices.Concat([]byte(ExecutionReceiptKeyPrefix), operationId)
}
