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

// GetTreasuryLedger returns the withdrawal ledger, or nil before genesis
func (s *Store) GetTreasuryLedger(
	txn types.Txn,
) (*models.TreasuryLedger, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.TreasuryLedger](db, "id = ?", models.SingletonRowId)
}

// SetTreasuryLedger saves the withdrawal ledger
func (s *Store) SetTreasuryLedger(
	ledger *models.TreasuryLedger,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	ledger.ID = models.SingletonRowId
	return db.Save(ledger).Error
}

// GetTreasuryAsset returns the registry entry for a token, or nil
func (s *Store) GetTreasuryAsset(
	token []byte,
	txn types.Txn,
) (*models.TreasuryAsset, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.TreasuryAsset](db, "token = ?", token)
}

// GetTreasuryAssetByName returns the registry entry with a name, or nil
func (s *Store) GetTreasuryAssetByName(
	name string,
	txn types.Txn,
) (*models.TreasuryAsset, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.TreasuryAsset](db, "name = ?", name)
}

// GetTreasuryAssets returns all registered assets in registration order
func (s *Store) GetTreasuryAssets(
	txn types.Txn,
) ([]models.TreasuryAsset, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.TreasuryAsset
	if result := db.Order("id ASC").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetTreasuryAsset creates or updates a registry entry
func (s *Store) SetTreasuryAsset(
	asset *models.TreasuryAsset,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(asset).Error
}

// AddTreasuryWithdrawal records a completed withdrawal
func (s *Store) AddTreasuryWithdrawal(
	withdrawal *models.TreasuryWithdrawal,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(withdrawal).Error
}

// GetTreasuryWithdrawals returns the most recent withdrawals first
func (s *Store) GetTreasuryWithdrawals(
	limit int,
	txn types.Txn,
) ([]models.TreasuryWithdrawal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.TreasuryWithdrawal
	query := db.Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
