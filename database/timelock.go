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

// GetTimelockOperation returns a scheduled operation, or nil if the id is
// unknown
func (d *Database) GetTimelockOperation(
	operationId []byte,
	txn *Txn,
) (*models.TimelockOperation, error) {
	op, err := d.metadata.GetTimelockOperation(operationId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get timelock operation: %w", err)
	}
	return op, nil
}

// SetTimelockOperation creates or updates a scheduled operation
func (d *Database) SetTimelockOperation(
	op *models.TimelockOperation,
	txn *Txn,
) error {
	if err := d.metadata.SetTimelockOperation(op, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set timelock operation: %w", err)
	}
	return nil
}

// DeleteTimelockOperation removes a pending operation
func (d *Database) DeleteTimelockOperation(
	operationId []byte,
	txn *Txn,
) error {
	if err := d.metadata.DeleteTimelockOperation(operationId, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to delete timelock operation: %w", err)
	}
	return nil
}

// GetTimelockMinDelay returns the timelock minimum delay in seconds
func (d *Database) GetTimelockMinDelay(txn *Txn) (uint64, error) {
	cfg, err := d.metadata.GetTimelockConfig(metadataTxn(txn))
	if err != nil {
		return 0, fmt.Errorf("failed to get timelock config: %w", err)
	}
	if cfg == nil {
		return 0, nil
	}
	return cfg.MinDelay, nil
}

// SetTimelockMinDelay sets the timelock minimum delay in seconds
func (d *Database) SetTimelockMinDelay(minDelay uint64, txn *Txn) error {
	if err := d.metadata.SetTimelockConfig(
		&models.TimelockConfig{MinDelay: minDelay},
		metadataTxn(txn),
	); err != nil {
		return fmt.Errorf("failed to set timelock config: %w", err)
	}
	return nil
}
