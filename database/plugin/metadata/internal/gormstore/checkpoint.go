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

// GetDelegation returns the delegation of an account, or nil if it never
// delegated
func (s *Store) GetDelegation(
	account []byte,
	txn types.Txn,
) (*models.Delegation, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.Delegation](db, "account = ?", account)
}

// SetDelegation creates or updates a delegation
func (s *Store) SetDelegation(
	delegation *models.Delegation,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(delegation).Error
}

// GetVoteCheckpoint returns the latest checkpoint of a delegatee whose
// FromBlock is strictly before the given block
func (s *Store) GetVoteCheckpoint(
	delegatee []byte,
	beforeBlock uint64,
	txn types.Txn,
) (*models.VoteCheckpoint, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.VoteCheckpoint](
		db.Order("from_block DESC"),
		"delegatee = ? AND from_block < ?",
		delegatee,
		beforeBlock,
	)
}

// GetLatestVoteCheckpoint returns the most recent checkpoint of a delegatee
func (s *Store) GetLatestVoteCheckpoint(
	delegatee []byte,
	txn types.Txn,
) (*models.VoteCheckpoint, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.VoteCheckpoint](
		db.Order("from_block DESC"),
		"delegatee = ?",
		delegatee,
	)
}

// SetVoteCheckpoint creates or updates a vote checkpoint
func (s *Store) SetVoteCheckpoint(
	checkpoint *models.VoteCheckpoint,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(checkpoint).Error
}

// GetSupplyCheckpoint returns the latest supply checkpoint whose FromBlock is
// strictly before the given block
func (s *Store) GetSupplyCheckpoint(
	beforeBlock uint64,
	txn types.Txn,
) (*models.SupplyCheckpoint, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.SupplyCheckpoint](
		db.Order("from_block DESC"),
		"from_block < ?",
		beforeBlock,
	)
}

// GetLatestSupplyCheckpoint returns the most recent supply checkpoint
func (s *Store) GetLatestSupplyCheckpoint(
	txn types.Txn,
) (*models.SupplyCheckpoint, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.SupplyCheckpoint
	result := db.Order("from_block DESC").Limit(1).Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &ret, nil
}

// SetSupplyCheckpoint creates or updates a supply checkpoint
func (s *Store) SetSupplyCheckpoint(
	checkpoint *models.SupplyCheckpoint,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(checkpoint).Error
}

// GetQuorumCheckpoint returns the quorum numerator checkpoint in effect at
// the given block, that is the latest one with FromBlock <= block
func (s *Store) GetQuorumCheckpoint(
	block uint64,
	txn types.Txn,
) (*models.QuorumCheckpoint, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.QuorumCheckpoint](
		db.Order("from_block DESC"),
		"from_block <= ?",
		block,
	)
}

// SetQuorumCheckpoint creates or updates a quorum checkpoint
func (s *Store) SetQuorumCheckpoint(
	checkpoint *models.QuorumCheckpoint,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(checkpoint).Error
}
