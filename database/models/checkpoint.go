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

import "github.com/blinklabs-io/numbat/database/types"

// Delegation maps a governance token holder to the account that receives its
// voting weight
type Delegation struct {
	ID        uint   `gorm:"primarykey"`
	Account   []byte `gorm:"uniqueIndex;size:20;not null"`
	Delegatee []byte `gorm:"index;size:20;not null"`
}

func (Delegation) TableName() string {
	return "delegation"
}

// VoteCheckpoint is the voting weight of a delegatee from FromBlock onward
type VoteCheckpoint struct {
	ID        uint         `gorm:"primarykey"`
	Delegatee []byte       `gorm:"uniqueIndex:idx_vote_checkpoint,priority:1;size:20;not null"`
	FromBlock uint64       `gorm:"uniqueIndex:idx_vote_checkpoint,priority:2;not null"`
	Votes     types.BigInt `gorm:"not null"`
}

func (VoteCheckpoint) TableName() string {
	return "vote_checkpoint"
}

// SupplyCheckpoint is the total governance token supply from FromBlock onward
type SupplyCheckpoint struct {
	ID        uint         `gorm:"primarykey"`
	FromBlock uint64       `gorm:"uniqueIndex;not null"`
	Supply    types.BigInt `gorm:"not null"`
}

func (SupplyCheckpoint) TableName() string {
	return "supply_checkpoint"
}

// QuorumCheckpoint is the quorum numerator in effect from FromBlock onward
type QuorumCheckpoint struct {
	ID        uint   `gorm:"primarykey"`
	FromBlock uint64 `gorm:"uniqueIndex;not null"`
	Numerator uint64 `gorm:"not null"`
}

func (QuorumCheckpoint) TableName() string {
	return "quorum_checkpoint"
}
