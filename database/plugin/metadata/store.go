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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/plugin"
	"github.com/blinklabs-io/numbat/database/types"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Chain
	GetTip(types.Txn) (*models.Tip, error)
	SetTip(*models.Tip, types.Txn) error
	GetNetworkState(types.Txn) (*models.NetworkState, error)
	SetNetworkState(*models.NetworkState, types.Txn) error

	// Balances and voting weight
	GetBalance(
		[]byte, // token
		[]byte, // account
		types.Txn,
	) (*models.Balance, error)
	SetBalance(*models.Balance, types.Txn) error
	GetDelegation(
		[]byte, // account
		types.Txn,
	) (*models.Delegation, error)
	SetDelegation(*models.Delegation, types.Txn) error
	GetVoteCheckpoint(
		[]byte, // delegatee
		uint64, // beforeBlock
		types.Txn,
	) (*models.VoteCheckpoint, error)
	GetLatestVoteCheckpoint(
		[]byte, // delegatee
		types.Txn,
	) (*models.VoteCheckpoint, error)
	SetVoteCheckpoint(*models.VoteCheckpoint, types.Txn) error
	GetSupplyCheckpoint(
		uint64, // beforeBlock
		types.Txn,
	) (*models.SupplyCheckpoint, error)
	GetLatestSupplyCheckpoint(types.Txn) (*models.SupplyCheckpoint, error)
	SetSupplyCheckpoint(*models.SupplyCheckpoint, types.Txn) error

	// Governance
	GetGovernanceProposal(
		[]byte, // proposalId
		types.Txn,
	) (*models.GovernanceProposal, error)
	GetGovernanceProposalByOperation(
		[]byte, // operationId
		types.Txn,
	) (*models.GovernanceProposal, error)
	GetGovernanceProposals(
		int, // offset
		int, // limit
		types.Txn,
	) ([]models.GovernanceProposal, error)
	CountGovernanceProposals(types.Txn) (int64, error)
	SetGovernanceProposal(*models.GovernanceProposal, types.Txn) error
	GetGovernanceVote(
		uint, // proposalID
		[]byte, // voter
		types.Txn,
	) (*models.GovernanceVote, error)
	GetGovernanceVotes(
		uint, // proposalID
		types.Txn,
	) ([]models.GovernanceVote, error)
	AddGovernanceVote(*models.GovernanceVote, types.Txn) error
	GetGovernanceParams(types.Txn) (*models.GovernanceParams, error)
	SetGovernanceParams(*models.GovernanceParams, types.Txn) error
	GetQuorumCheckpoint(
		uint64, // block
		types.Txn,
	) (*models.QuorumCheckpoint, error)
	SetQuorumCheckpoint(*models.QuorumCheckpoint, types.Txn) error

	// Timelock
	GetTimelockOperation(
		[]byte, // operationId
		types.Txn,
	) (*models.TimelockOperation, error)
	SetTimelockOperation(*models.TimelockOperation, types.Txn) error
	DeleteTimelockOperation(
		[]byte, // operationId
		types.Txn,
	) error
	GetTimelockConfig(types.Txn) (*models.TimelockConfig, error)
	SetTimelockConfig(*models.TimelockConfig, types.Txn) error

	// Treasury
	GetTreasuryLedger(types.Txn) (*models.TreasuryLedger, error)
	SetTreasuryLedger(*models.TreasuryLedger, types.Txn) error
	GetTreasuryAsset(
		[]byte, // token
		types.Txn,
	) (*models.TreasuryAsset, error)
	GetTreasuryAssetByName(
		string, // name
		types.Txn,
	) (*models.TreasuryAsset, error)
	GetTreasuryAssets(types.Txn) ([]models.TreasuryAsset, error)
	SetTreasuryAsset(*models.TreasuryAsset, types.Txn) error
	AddTreasuryWithdrawal(*models.TreasuryWithdrawal, types.Txn) error
	GetTreasuryWithdrawals(
		int, // limit
		types.Txn,
	) ([]models.TreasuryWithdrawal, error)

	// Access control
	GetRoleMember(
		string, // role
		[]byte, // member
		types.Txn,
	) (*models.RoleMember, error)
	GetRoleMembers(
		string, // role
		types.Txn,
	) ([]models.RoleMember, error)
	AddRoleMember(*models.RoleMember, types.Txn) error
	DeleteRoleMember(
		string, // role
		[]byte, // member
		types.Txn,
	) error
	GetAccessState(types.Txn) (*models.AccessState, error)
	SetAccessState(*models.AccessState, types.Txn) error
}

// New returns the started metadata plugin selected by name
func New(
	pluginName string,
	pctx plugin.PluginContext,
) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName, pctx)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
