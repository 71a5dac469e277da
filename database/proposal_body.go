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

package database

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/numbat/database/types"
	"github.com/fxamacker/cbor/v2"
)

// ProposalBody holds the full content of a proposal. It is kept in the blob
// store since only the hashes are needed for lookups
type ProposalBody struct {
	_           struct{} `cbor:",toarray"`
	Description string
	Targets     [][]byte
	Values      []*big.Int
	Calldatas   [][]byte
}

// GetProposalBody returns the stored body of a proposal, or nil if there is
// none
func (d *Database) GetProposalBody(
	proposalId []byte,
	txn *Txn,
) (*ProposalBody, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	data, err := d.blob.Get(txn.Blob(), types.ProposalBodyKey(proposalId))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal body: %w", err)
	}
	var body ProposalBody
	if err := cbor.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("failed to decode proposal body: %w", err)
	}
	return &body, nil
}

// SetProposalBody stores the body of a proposal
func (d *Database) SetProposalBody(
	proposalId []byte,
	body *ProposalBody,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	data, err := cbor.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode proposal body: %w", err)
	}
	if err := d.blob.Set(txn.Blob(), types.ProposalBodyKey(proposalId), data); err != nil {
		return fmt.Errorf("failed to set proposal body: %w", err)
	}
	return nil
}
