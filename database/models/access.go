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

package models

// RoleMember grants a role to a member address
type RoleMember struct {
	ID        uint   `gorm:"primarykey"`
	Role      string `gorm:"uniqueIndex:idx_role_member,priority:1;size:64;not null"`
	Member    []byte `gorm:"uniqueIndex:idx_role_member,priority:2;size:20;not null"`
	GrantedBy []byte `gorm:"size:20;not null"`
	Block     uint64 `gorm:"not null"`
}

func (RoleMember) TableName() string {
	return "role_member"
}

// AccessState records the setup administrator and whether administration has
// been handed off
type AccessState struct {
	ID         uint   `gorm:"primarykey"`
	SetupAdmin []byte `gorm:"size:20;not null"`
	Sealed     bool   `gorm:"not null"`
}

func (AccessState) TableName() string {
	return "access_state"
}
