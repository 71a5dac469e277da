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

// Balance is the amount of a token held by an account. The zero token
// address denotes the native coin
type Balance struct {
	ID      uint         `gorm:"primarykey"`
	Token   []byte       `gorm:"uniqueIndex:idx_balance_token_account,priority:1;size:20;not null"`
	Account []byte       `gorm:"uniqueIndex:idx_balance_token_account,priority:2;size:20;not null"`
	Amount  types.BigInt `gorm:"not null"`
}

func (Balance) TableName() string {
	return "balance"
}
