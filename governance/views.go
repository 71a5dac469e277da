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

package governance

import (
	"math/big"

	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/ethereum/go-ethereum/common"
)

// Proposal is a proposal with its derived state
type Proposal struct {
	Id              common.Hash
	Proposer        common.Address
	DescriptionHash common.Hash
	Description     string
	Calls           []timelock.Call
	State           ProposalState
	ForVotes        *big.Int
	AgainstVotes    *big.Int
	AbstainVotes    *big.Int
	OperationId     common.Hash
	CreatedBlock    uint64
	SnapshotBlock   uint64
	DeadlineBlock   uint64
	Eta             int64
}

// Ballot is a single recorded vote
type Ballot struct {
	Voter   common.Address
	Weight  *big.Int
	Reason  string
	Block   uint64
	Support uint8
}

// State returns the state of a proposal in the current block
func (g *Governor) State(lc *ledger.Context, id common.Hash) (ProposalState, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return 0, err
	}
	return g.state(lc, proposal)
}

func (g *Governor) state(
	lc *ledger.Context,
	proposal *models.GovernanceProposal,
) (ProposalState, error) {
	switch {
	case proposal.Executed:
		return StateExecuted, nil
	case proposal.Canceled:
		return StateCanceled, nil
	case proposal.Queued:
		// The operation may have been cancelled or executed directly in
		// the timelock
		op, err := g.timelock.GetOperation(lc, common.BytesToHash(proposal.OperationId))
		if err != nil {
			return 0, err
		}
		if op == nil {
			return StateCanceled, nil
		}
		if op.Executed {
			return StateExecuted, nil
		}
		return StateQueued, nil
	}
	block := lc.Block().Number
	if block < proposal.SnapshotBlock {
		return StatePending, nil
	}
	if block <= proposal.DeadlineBlock {
		return StateActive, nil
	}
	succeeded, err := g.succeeded(lc, proposal)
	if err != nil {
		return 0, err
	}
	if !succeeded {
		return StateDefeated, nil
	}
	if proposal.GracePeriod > 0 && block > proposal.DeadlineBlock+proposal.GracePeriod {
		return StateExpired, nil
	}
	return StateSucceeded, nil
}

// succeeded reports whether the quorum was reached and for outweighs
// against. A tie is a defeat
func (g *Governor) succeeded(
	lc *ledger.Context,
	proposal *models.GovernanceProposal,
) (bool, error) {
	forVotes := proposal.ForVotes.Big()
	if forVotes.Cmp(proposal.AgainstVotes.Big()) <= 0 {
		return false, nil
	}
	quorum, err := g.Quorum(lc, proposal.SnapshotBlock)
	if err != nil {
		return false, err
	}
	participation := new(big.Int).Add(forVotes, proposal.AgainstVotes.Big())
	participation.Add(participation, proposal.AbstainVotes.Big())
	return participation.Cmp(quorum) >= 0, nil
}

// Quorum returns the votes needed at block: the quorum numerator in effect
// at block as a percentage of the total supply at the start of block
func (g *Governor) Quorum(lc *ledger.Context, block uint64) (*big.Int, error) {
	supply, err := g.token.GetPastTotalSupply(lc, block)
	if err != nil {
		return nil, err
	}
	numerator, err := lc.DB().GetQuorumNumerator(block, lc.Txn())
	if err != nil {
		return nil, err
	}
	ret := new(big.Int).Mul(supply, new(big.Int).SetUint64(numerator))
	return ret.Quo(ret, big.NewInt(QuorumDenominator)), nil
}

// ProposalVotes returns the against, for and abstain totals
func (g *Governor) ProposalVotes(
	lc *ledger.Context,
	id common.Hash,
) (*big.Int, *big.Int, *big.Int, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return proposal.AgainstVotes.Big(),
		proposal.ForVotes.Big(),
		proposal.AbstainVotes.Big(),
		nil
}

func (g *Governor) ProposalSnapshot(lc *ledger.Context, id common.Hash) (uint64, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return 0, err
	}
	return proposal.SnapshotBlock, nil
}

func (g *Governor) ProposalDeadline(lc *ledger.Context, id common.Hash) (uint64, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return 0, err
	}
	return proposal.DeadlineBlock, nil
}

// ProposalEta returns the timestamp a queued proposal becomes executable,
// or 0 if it was never queued
func (g *Governor) ProposalEta(lc *ledger.Context, id common.Hash) (int64, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return 0, err
	}
	return proposal.Eta, nil
}

func (g *Governor) HasVoted(
	lc *ledger.Context,
	id common.Hash,
	account common.Address,
) (bool, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return false, err
	}
	vote, err := lc.DB().GetGovernanceVote(proposal, account.Bytes(), lc.Txn())
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}

// Ballots returns the votes cast on a proposal in the order they were cast
func (g *Governor) Ballots(lc *ledger.Context, id common.Hash) ([]Ballot, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return nil, err
	}
	votes, err := lc.DB().GetGovernanceVotes(proposal, lc.Txn())
	if err != nil {
		return nil, err
	}
	ret := make([]Ballot, 0, len(votes))
	for _, v := range votes {
		ret = append(ret, Ballot{
			Voter:   common.BytesToAddress(v.Voter),
			Weight:  v.Weight.Big(),
			Reason:  v.Reason,
			Block:   v.Block,
			Support: v.Support,
		})
	}
	return ret, nil
}

// Proposal returns a proposal with its body and current state
func (g *Governor) Proposal(lc *ledger.Context, id common.Hash) (*Proposal, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return nil, err
	}
	return g.proposalView(lc, proposal)
}

// ListProposals returns proposals in creation order
func (g *Governor) ListProposals(
	lc *ledger.Context,
	offset int,
	limit int,
) ([]Proposal, error) {
	proposals, err := lc.DB().GetGovernanceProposals(offset, limit, lc.Txn())
	if err != nil {
		return nil, err
	}
	ret := make([]Proposal, 0, len(proposals))
	for i := range proposals {
		p, err := g.proposalView(lc, &proposals[i])
		if err != nil {
			return nil, err
		}
		ret = append(ret, *p)
	}
	return ret, nil
}

// ProposalCount returns the number of proposals ever created
func (g *Governor) ProposalCount(lc *ledger.Context) (int, error) {
	return lc.DB().CountGovernanceProposals(lc.Txn())
}

func (g *Governor) proposalView(
	lc *ledger.Context,
	proposal *models.GovernanceProposal,
) (*Proposal, error) {
	id := common.BytesToHash(proposal.ProposalId)
	state, err := g.state(lc, proposal)
	if err != nil {
		return nil, err
	}
	ret := &Proposal{
		Id:              id,
		Proposer:        common.BytesToAddress(proposal.Proposer),
		DescriptionHash: common.BytesToHash(proposal.DescriptionHash),
		State:           state,
		ForVotes:        proposal.ForVotes.Big(),
		AgainstVotes:    proposal.AgainstVotes.Big(),
		AbstainVotes:    proposal.AbstainVotes.Big(),
		OperationId:     common.BytesToHash(proposal.OperationId),
		CreatedBlock:    proposal.CreatedBlock,
		SnapshotBlock:   proposal.SnapshotBlock,
		DeadlineBlock:   proposal.DeadlineBlock,
		Eta:             proposal.Eta,
	}
	body, err := lc.DB().GetProposalBody(id.Bytes(), lc.Txn())
	if err != nil {
		return nil, err
	}
	if body != nil {
		ret.Description = body.Description
		ret.Calls, err = bodyCalls(body)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}
