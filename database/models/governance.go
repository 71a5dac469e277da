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

// Vote support values
const (
	VoteAgainst = 0
	VoteFor     = 1
	VoteAbstain = 2
)

// GovernanceProposal tracks a proposal's schedule, running tally and
// lifecycle flags. The proposal state is derived from these fields and the
// current block, and is never stored
type GovernanceProposal struct {
	ID              uint         `gorm:"primarykey"`
	ProposalId      []byte       `gorm:"uniqueIndex;size:32;not null"`
	Proposer        []byte       `gorm:"index;size:20;not null"`
	DescriptionHash []byte       `gorm:"size:32;not null"`
	OperationId     []byte       `gorm:"size:32"`
	ForVotes        types.BigInt `gorm:"not null"`
	AgainstVotes    types.BigInt `gorm:"not null"`
	AbstainVotes    types.BigInt `gorm:"not null"`
	CreatedBlock    uint64       `gorm:"not null"`
	SnapshotBlock   uint64       `gorm:"index;not null"`
	DeadlineBlock   uint64       `gorm:"index;not null"`
	GracePeriod     uint64       `gorm:"not null;default:0"`
	Eta             int64
	ActionCount     int  `gorm:"not null"`
	Canceled        bool `gorm:"not null"`
	Queued          bool `gorm:"not null"`
	Executed        bool `gorm:"not null"`
}

func (GovernanceProposal) TableName() string {
	return "governance_proposal"
}

// GovernanceVote records a single voter's ballot on a proposal
type GovernanceVote struct {
	ID         uint         `gorm:"primarykey"`
	ProposalID uint         `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:1;not null"`
	Voter      []byte       `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:2;size:20;not null"`
	Weight     types.BigInt `gorm:"not null"`
	Reason     string       `gorm:"type:text"`
	Block      uint64       `gorm:"not null"`
	Support    uint8        `gorm:"not null"`
}

func (GovernanceVote) TableName() string {
	return "governance_vote"
}

// GovernanceParams holds the governor's tunable parameters. The quorum
// numerator is checkpointed separately so past quorums stay stable
type GovernanceParams struct {
	ID                uint         `gorm:"primarykey"`
	ProposalThreshold types.BigInt `gorm:"not null"`
	VotingDelay       uint64       `gorm:"not null"`
	VotingPeriod      uint64       `gorm:"not null"`
	GracePeriod       uint64       `gorm:"not null"`
}

func (GovernanceParams) TableName() string {
	return "governance_params"
}
