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

// Tip stores the most recently sealed block
type Tip struct {
	ID        uint   `gorm:"primarykey"`
	Number    uint64 `gorm:"not null"`
	Timestamp int64  `gorm:"not null"`
}

func (Tip) TableName() string {
	return "tip"
}

// NetworkState records the genesis that initialized this database
type NetworkState struct {
	ID          uint   `gorm:"primarykey"`
	Network     string `gorm:"size:64;not null"`
	GenesisHash []byte `gorm:"size:32;not null"`
	AppliedAt   int64  `gorm:"not null"`
}

func (NetworkState) TableName() string {
	return "network_state"
}
