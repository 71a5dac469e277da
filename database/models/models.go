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

import "errors"

var (
	ErrGovernanceParamsNotFound   = errors.New("governance params not found")
	ErrGovernanceProposalNotFound = errors.New("governance proposal not found")
	ErrTreasuryAssetNotFound      = errors.New("treasury asset not found")
	ErrTreasuryLedgerNotFound     = errors.New("treasury ledger not found")
)

// MigrateModels contains a list of model objects that should have DB migrations applied
var MigrateModels = []any{
	&AccessState{},
	&Balance{},
	&Delegation{},
	&GovernanceParams{},
	&GovernanceProposal{},
	&GovernanceVote{},
	&NetworkState{},
	&QuorumCheckpoint{},
	&RoleMember{},
	&SupplyCheckpoint{},
	&TimelockConfig{},
	&TimelockOperation{},
	&Tip{},
	&TreasuryAsset{},
	&TreasuryLedger{},
	&TreasuryWithdrawal{},
	&VoteCheckpoint{},
}

// SingletonRowId is the primary key used by tables that only ever hold one row
const SingletonRowId = 1
