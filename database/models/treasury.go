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

// TreasuryLedger tracks the rolling daily withdrawal window
type TreasuryLedger struct {
	ID          uint         `gorm:"primarykey"`
	DailyLimit  types.BigInt `gorm:"not null"`
	TodayTotal  types.BigInt `gorm:"not null"`
	PeriodStart int64        `gorm:"not null"`
}

func (TreasuryLedger) TableName() string {
	return "treasury_ledger"
}

// TreasuryAsset is an entry in the treasury's asset registry
type TreasuryAsset struct {
	ID         uint   `gorm:"primarykey"`
	Token      []byte `gorm:"uniqueIndex;size:20;not null"`
	Name       string `gorm:"uniqueIndex;size:64;not null"`
	AssetType  string `gorm:"size:32;not null"`
	AddedBlock uint64 `gorm:"not null"`
	Active     bool   `gorm:"not null"`
}

func (TreasuryAsset) TableName() string {
	return "treasury_asset"
}

// TreasuryWithdrawal is the history record of a successful withdrawal
type TreasuryWithdrawal struct {
	ID        uint         `gorm:"primarykey"`
	Token     []byte       `gorm:"index;size:20;not null"`
	Recipient []byte       `gorm:"size:20;not null"`
	Caller    []byte       `gorm:"size:20;not null"`
	Amount    types.BigInt `gorm:"not null"`
	Block     uint64       `gorm:"index;not null"`
	Timestamp int64        `gorm:"not null"`
}

func (TreasuryWithdrawal) TableName() string {
	return "treasury_withdrawal"
}
