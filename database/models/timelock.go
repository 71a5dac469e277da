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

// TimelockOperation is a scheduled batch of calls. Cancelled operations are
// removed, executed operations are kept with Executed set
type TimelockOperation struct {
	ID             uint   `gorm:"primarykey"`
	OperationId    []byte `gorm:"uniqueIndex;size:32;not null"`
	Predecessor    []byte `gorm:"size:32;not null"`
	Salt           []byte `gorm:"size:32;not null"`
	ReadyAt        int64  `gorm:"not null"`
	Delay          uint64 `gorm:"not null"`
	ScheduledBlock uint64 `gorm:"not null"`
	ExecutedBlock  uint64
	Executed       bool `gorm:"not null"`
}

func (TimelockOperation) TableName() string {
	return "timelock_operation"
}

// TimelockConfig holds the minimum delay, in seconds
type TimelockConfig struct {
	ID       uint   `gorm:"primarykey"`
	MinDelay uint64 `gorm:"not null"`
}

func (TimelockConfig) TableName() string {
	return "timelock_config"
}
