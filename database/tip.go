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
	"github.com/blinklabs-io/numbat/database/types"
)

// metadataTxn returns the metadata handle of txn, or nil to run outside a
// transaction
func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}

// GetTip returns the last sealed block. A database without any sealed block
// returns a zero tip
func (d *Database) GetTip(txn *Txn) (models.Tip, error) {
	tip, err := d.metadata.GetTip(metadataTxn(txn))
	if err != nil {
		return models.Tip{}, fmt.Errorf("failed to get tip: %w", err)
	}
	if tip == nil {
		return models.Tip{}, nil
	}
	return *tip, nil
}

// SetTip saves the current tip
func (d *Database) SetTip(tip models.Tip, txn *Txn) error {
	if err := d.metadata.SetTip(&tip, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set tip: %w", err)
	}
	return nil
}

// GetNetworkState returns the applied genesis record, or nil if genesis has
// not been applied
func (d *Database) GetNetworkState(txn *Txn) (*models.NetworkState, error) {
	state, err := d.metadata.GetNetworkState(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get network state: %w", err)
	}
	return state, nil
}

// SetNetworkState records the applied genesis
func (d *Database) SetNetworkState(
	state *models.NetworkState,
	txn *Txn,
) error {
	if err := d.metadata.SetNetworkState(state, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set network state: %w", err)
	}
	return nil
}
