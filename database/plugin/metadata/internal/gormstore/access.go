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

// GetRoleMember returns the grant of a role to a member, or nil
func (s *Store) GetRoleMember(
	role string,
	member []byte,
	txn types.Txn,
) (*models.RoleMember, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.RoleMember](
		db,
		"role = ? AND member = ?",
		role,
		member,
	)
}

// GetRoleMembers returns all grants of a role in grant order
func (s *Store) GetRoleMembers(
	role string,
	txn types.Txn,
) ([]models.RoleMember, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.RoleMember
	if result := db.Where("role = ?", role).
		Order("id ASC").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// AddRoleMember records a role grant
func (s *Store) AddRoleMember(
	member *models.RoleMember,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(member).Error
}

// DeleteRoleMember removes a role grant
func (s *Store) DeleteRoleMember(
	role string,
	member []byte,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("role = ? AND member = ?", role, member).
		Delete(&models.RoleMember{}).Error
}

// GetAccessState returns the access control state, or nil before genesis
func (s *Store) GetAccessState(txn types.Txn) (*models.AccessState, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.AccessState](db, "id = ?", models.SingletonRowId)
}

// SetAccessState saves the access control state
func (s *Store) SetAccessState(
	state *models.AccessState,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	state.ID = models.SingletonRowId
	return db.Save(state).Error
}
