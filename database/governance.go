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
	"fmt"

	"github.com/blinklabs-io/numbat/database/models"
)

// GetGovernanceProposal returns a proposal by id, or nil if it does not exist
func (d *Database) GetGovernanceProposal(
	proposalId []byte,
	txn *Txn,
) (*models.GovernanceProposal, error) {
	proposal, err := d.metadata.GetGovernanceProposal(
		proposalId,
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get governance proposal: %w", err)
	}
	return proposal, nil
}

// GetGovernanceProposalByOperation returns the proposal queued as the given
// timelock operation, or nil
func (d *Database) GetGovernanceProposalByOperation(
	operationId []byte,
	txn *Txn,
) (*models.GovernanceProposal, error) {
	proposal, err := d.metadata.GetGovernanceProposalByOperation(
		operationId,
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get governance proposal: %w", err)
	}
	return proposal, nil
}

// GetGovernanceProposals returns a page of proposals in creation order
func (d *Database) GetGovernanceProposals(
	offset int,
	limit int,
	txn *Txn,
) ([]models.GovernanceProposal, error) {
	proposals, err := d.metadata.GetGovernanceProposals(
		offset,
		limit,
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get governance proposals: %w", err)
	}
	return proposals, nil
}

// CountGovernanceProposals returns the number of proposals ever created
func (d *Database) CountGovernanceProposals(txn *Txn) (int, error) {
	count, err := d.metadata.CountGovernanceProposals(metadataTxn(txn))
	if err != nil {
		return 0, fmt.Errorf("failed to count governance proposals: %w", err)
	}
	return int(count), nil
}

// SetGovernanceProposal creates or updates a proposal
func (d *Database) SetGovernanceProposal(
	proposal *models.GovernanceProposal,
	txn *Txn,
) error {
	if err := d.metadata.SetGovernanceProposal(proposal, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set governance proposal: %w", err)
	}
	return nil
}

// GetGovernanceVote returns the vote cast by voter, or nil if it has not voted
func (d *Database) GetGovernanceVote(
	proposal *models.GovernanceProposal,
	voter []byte,
	txn *Txn,
) (*models.GovernanceVote, error) {
	vote, err := d.metadata.GetGovernanceVote(
		proposal.ID,
		voter,
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get governance vote: %w", err)
	}
	return vote, nil
}

// GetGovernanceVotes returns every vote cast on a proposal
func (d *Database) GetGovernanceVotes(
	proposal *models.GovernanceProposal,
	txn *Txn,
) ([]models.GovernanceVote, error) {
	votes, err := d.metadata.GetGovernanceVotes(proposal.ID, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get governance votes: %w", err)
	}
	return votes, nil
}

// AddGovernanceVote records a vote
func (d *Database) AddGovernanceVote(
	vote *models.GovernanceVote,
	txn *Txn,
) error {
	if err := d.metadata.AddGovernanceVote(vote, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to add governance vote: %w", err)
	}
	return nil
}

// GetGovernanceParams returns the governor parameters
func (d *Database) GetGovernanceParams(
	txn *Txn,
) (*models.GovernanceParams, error) {
	params, err := d.metadata.GetGovernanceParams(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get governance params: %w", err)
	}
	if params == nil {
		return nil, models.ErrGovernanceParamsNotFound
	}
	return params, nil
}

// SetGovernanceParams saves the governor parameters
func (d *Database) SetGovernanceParams(
	params *models.GovernanceParams,
	txn *Txn,
) error {
	if err := d.metadata.SetGovernanceParams(params, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set governance params: %w", err)
	}
	return nil
}
