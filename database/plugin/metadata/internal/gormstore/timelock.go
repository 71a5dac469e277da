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

// GetTimelockOperation returns an operation by id, or nil if it was never
// scheduled or has been cancelled
func (s *Store) GetTimelockOperation(
	operationId []byte,
	txn types.Txn,
) (*models.TimelockOperation, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.TimelockOperation](db, "operation_id = ?", operationId)
}

// SetTimelockOperation creates or updates an operation
func (s *Store) SetTimelockOperation(
	op *models.TimelockOperation,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(op).Error
}

// DeleteTimelockOperation removes a pending operation
func (s *Store) DeleteTimelockOperation(
	operationId []byte,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("operation_id = ?", operationId).
		Delete(&models.TimelockOperation{}).Error
}

// GetTimelockConfig returns the timelock configuration, or nil before genesis
func (s *Store) GetTimelockConfig(
	txn types.Txn,
) (*models.TimelockConfig, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.TimelockConfig](db, "id = ?", models.SingletonRowId)
}

// SetTimelockConfig saves the timelock configuration
func (s *Store) SetTimelockConfig(
	cfg *models.TimelockConfig,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	cfg.ID = models.SingletonRowId
	return db.Save(cfg).Error
}
