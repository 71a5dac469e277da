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

// HasRoleMember reports whether member holds role
func (d *Database) HasRoleMember(
	role string,
	member common.Address,
	txn *Txn,
) (bool, error) {
	rm, err := d.metadata.GetRoleMember(role, member.Bytes(), metadataTxn(txn))
	if err != nil {
		return false, fmt.Errorf("failed to get role member: %w", err)
	}
	return rm != nil, nil
}

// GetRoleMembers returns the members of role in grant order
func (d *Database) GetRoleMembers(
	role string,
	txn *Txn,
) ([]models.RoleMember, error) {
	ret, err := d.metadata.GetRoleMembers(role, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get role members: %w", err)
	}
	return ret, nil
}

// AddRoleMember records a role grant
func (d *Database) AddRoleMember(rm *models.RoleMember, txn *Txn) error {
	if err := d.metadata.AddRoleMember(rm, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to add role member: %w", err)
	}
	return nil
}

// DeleteRoleMember removes a role grant
func (d *Database) DeleteRoleMember(
	role string,
	member common.Address,
	txn *Txn,
) error {
	if err := d.metadata.DeleteRoleMember(role, member.Bytes(), metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to delete role member: %w", err)
	}
	return nil
}

// GetAccessState returns the access control state. A store without access
// state returns a zero value
func (d *Database) GetAccessState(txn *Txn) (models.AccessState, error) {
	state, err := d.metadata.GetAccessState(metadataTxn(txn))
	if err != nil {
		return models.AccessState{}, fmt.Errorf("failed to get access state: %w", err)
	}
	if state == nil {
		return models.AccessState{}, nil
	}
	return *state, nil
}

// SetAccessState saves the access control state
func (d *Database) SetAccessState(state models.AccessState, txn *Txn) error {
	if err := d.metadata.SetAccessState(&state, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set access state: %w", err)
	}
	return nil
}
