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

package gormstore

import (
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/types"
)

// GetGovernanceProposal returns a proposal by its id, or nil if unknown
func (s *Store) GetGovernanceProposal(
	proposalId []byte,
	txn types.Txn,
) (*models.GovernanceProposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.GovernanceProposal](db, "proposal_id = ?", proposalId)
}

// GetGovernanceProposalByOperation returns the proposal queued as the given
// timelock operation, or nil if there is none
func (s *Store) GetGovernanceProposalByOperation(
	operationId []byte,
	txn types.Txn,
) (*models.GovernanceProposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.GovernanceProposal](db, "operation_id = ?", operationId)
}

// GetGovernanceProposals returns proposals in creation order
func (s *Store) GetGovernanceProposals(
	offset int,
	limit int,
	txn types.Txn,
) ([]models.GovernanceProposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.GovernanceProposal
	query := db.Order("id ASC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) CountGovernanceProposals(txn types.Txn) (int64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var ret int64
	if result := db.Model(&models.GovernanceProposal{}).Count(&ret); result.Error != nil {
		return 0, result.Error
	}
	return ret, nil
}

// SetGovernanceProposal creates or updates a proposal
func (s *Store) SetGovernanceProposal(
	proposal *models.GovernanceProposal,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(proposal).Error
}

// GetGovernanceVote returns the vote of a voter on a proposal, or nil
func (s *Store) GetGovernanceVote(
	proposalID uint,
	voter []byte,
	txn types.Txn,
) (*models.GovernanceVote, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.GovernanceVote](
		db,
		"proposal_id = ? AND voter = ?",
		proposalID,
		voter,
	)
}

// GetGovernanceVotes returns all votes cast on a proposal
func (s *Store) GetGovernanceVotes(
	proposalID uint,
	txn types.Txn,
) ([]models.GovernanceVote, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.GovernanceVote
	if result := db.Where("proposal_id = ?", proposalID).
		Order("id ASC").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// AddGovernanceVote records a new vote. A second vote by the same voter on
// the same proposal violates a unique index
func (s *Store) AddGovernanceVote(
	vote *models.GovernanceVote,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(vote).Error
}

// GetGovernanceParams returns the governor parameters, or nil before genesis
func (s *Store) GetGovernanceParams(
	txn types.Txn,
) (*models.GovernanceParams, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.GovernanceParams](db, "id = ?", models.SingletonRowId)
}

// SetGovernanceParams saves the governor parameters
func (s *Store) SetGovernanceParams(
	params *models.GovernanceParams,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	params.ID = models.SingletonRowId
	return db.Save(params).Error
}
