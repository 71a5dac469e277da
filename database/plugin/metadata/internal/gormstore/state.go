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

// GetTip returns the stored tip, or nil if no block has been sealed
func (s *Store) GetTip(txn types.Txn) (*models.Tip, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.Tip](db, "id = ?", models.SingletonRowId)
}

// SetTip saves the tip
func (s *Store) SetTip(tip *models.Tip, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tip.ID = models.SingletonRowId
	return db.Save(tip).Error
}

// GetNetworkState returns the applied genesis record, or nil before genesis
func (s *Store) GetNetworkState(txn types.Txn) (*models.NetworkState, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.NetworkState](db, "id = ?", models.SingletonRowId)
}

// SetNetworkState saves the applied genesis record
func (s *Store) SetNetworkState(
	state *models.NetworkState,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	state.ID = models.SingletonRowId
	return db.Save(state).Error
}

// GetBalance returns the balance row for a token and account, or nil if the
// account has never held the token
func (s *Store) GetBalance(
	token []byte,
	account []byte,
	txn types.Txn,
) (*models.Balance, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.Balance](
		db,
		"token = ? AND account = ?",
		token,
		account,
	)
}

// SetBalance creates or updates a balance row
func (s *Store) SetBalance(balance *models.Balance, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(balance).Error
}
