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
	"github.com/ethereum/go-ethereum/common"
)

// GetTreasuryLedger returns the withdrawal ledger
func (d *Database) GetTreasuryLedger(txn *Txn) (*models.TreasuryLedger, error) {
	ledger, err := d.metadata.GetTreasuryLedger(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury ledger: %w", err)
	}
	if ledger == nil {
		return nil, models.ErrTreasuryLedgerNotFound
	}
	return ledger, nil
}

// SetTreasuryLedger saves the withdrawal ledger
func (d *Database) SetTreasuryLedger(
	ledger *models.TreasuryLedger,
	txn *Txn,
) error {
	if err := d.metadata.SetTreasuryLedger(ledger, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set treasury ledger: %w", err)
	}
	return nil
}

// GetTreasuryAsset returns the registry entry for token, or nil
func (d *Database) GetTreasuryAsset(
	token common.Address,
	txn *Txn,
) (*models.TreasuryAsset, error) {
	asset, err := d.metadata.GetTreasuryAsset(token.Bytes(), metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury asset: %w", err)
	}
	return asset, nil
}

// GetTreasuryAssetByName returns the registry entry with the given name, or
// nil
func (d *Database) GetTreasuryAssetByName(
	name string,
	txn *Txn,
) (*models.TreasuryAsset, error) {
	asset, err := d.metadata.GetTreasuryAssetByName(name, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury asset: %w", err)
	}
	return asset, nil
}

// GetTreasuryAssets returns all registered assets in registration order
func (d *Database) GetTreasuryAssets(txn *Txn) ([]models.TreasuryAsset, error) {
	assets, err := d.metadata.GetTreasuryAssets(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury assets: %w", err)
	}
	return assets, nil
}

// SetTreasuryAsset creates or updates a registry entry
func (d *Database) SetTreasuryAsset(
	asset *models.TreasuryAsset,
	txn *Txn,
) error {
	if err := d.metadata.SetTreasuryAsset(asset, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set treasury asset: %w", err)
	}
	return nil
}

// AddTreasuryWithdrawal appends to the withdrawal history
func (d *Database) AddTreasuryWithdrawal(
	withdrawal *models.TreasuryWithdrawal,
	txn *Txn,
) error {
	if err := d.metadata.AddTreasuryWithdrawal(withdrawal, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to add treasury withdrawal: %w", err)
	}
	return nil
}

// GetTreasuryWithdrawals returns the most recent withdrawals, newest first.
// A limit of zero returns the whole history
func (d *Database) GetTreasuryWithdrawals(
	limit int,
	txn *Txn,
) ([]models.TreasuryWithdrawal, error) {
	ret, err := d.metadata.GetTreasuryWithdrawals(limit, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury withdrawals: %w", err)
	}
	return ret, nil
}
