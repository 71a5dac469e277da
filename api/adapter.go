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

package api

import (
	"context"
	"math/big"
	"time"

	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/blinklabs-io/numbat/votes"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

type AdapterConfig struct {
	Executor *ledger.Executor
	Governor *governance.Governor
	Treasury *treasury.Treasury
	Votes    *votes.Votes
}

// NodeAdapter implements Backend on top of a ledger executor. Every write
// runs as one operation, every read as one view
type NodeAdapter struct {
	executor *ledger.Executor
	governor *governance.Governor
	treasury *treasury.Treasury
	votes    *votes.Votes
}

// NewNodeAdapter creates a NodeAdapter. Panics if any component is nil.
func NewNodeAdapter(cfg AdapterConfig) *NodeAdapter {
	if cfg.Executor == nil || cfg.Governor == nil ||
		cfg.Treasury == nil || cfg.Votes == nil {
		panic("NewNodeAdapter: all components must be set")
	}
	return &NodeAdapter{
		executor: cfg.Executor,
		governor: cfg.Governor,
		treasury: cfg.Treasury,
		votes:    cfg.Votes,
	}
}

func (a *NodeAdapter) ChainTip(ctx context.Context) (chain.Block, error) {
	var ret chain.Block
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		ret = lc.Block()
		return nil
	})
	return ret, err
}

func (a *NodeAdapter) Proposals(
	ctx context.Context,
	offset int,
	limit int,
) ([]governance.Proposal, error) {
	var ret []governance.Proposal
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.ListProposals(lc, offset, limit)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) ProposalCount(ctx context.Context) (int, error) {
	var ret int
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.ProposalCount(lc)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) Proposal(
	ctx context.Context,
	id common.Hash,
) (*governance.Proposal, error) {
	var ret *governance.Proposal
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.Proposal(lc, id)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) ProposalDeadline(
	ctx context.Context,
	id common.Hash,
) (uint64, uint64, error) {
	var snapshot, deadline uint64
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		if snapshot, err = a.governor.ProposalSnapshot(lc, id); err != nil {
			return err
		}
		deadline, err = a.governor.ProposalDeadline(lc, id)
		return err
	})
	return snapshot, deadline, err
}

func (a *NodeAdapter) Ballots(
	ctx context.Context,
	id common.Hash,
) ([]governance.Ballot, error) {
	var ret []governance.Ballot
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.Ballots(lc, id)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) ProposeActions(
	ctx context.Context,
	sender common.Address,
	actions []governance.Action,
	description string,
) (common.Hash, error) {
	var ret common.Hash
	err := a.executor.Execute(ctx, "propose", sender, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.ProposeActions(lc, actions, description)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) ProposeCalls(
	ctx context.Context,
	sender common.Address,
	calls []timelock.Call,
	description string,
) (common.Hash, error) {
	var ret common.Hash
	err := a.executor.Execute(ctx, "propose", sender, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.ProposeCalls(lc, calls, description)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) CastVote(
	ctx context.Context,
	sender common.Address,
	id common.Hash,
	support uint8,
	reason string,
) (*big.Int, error) {
	var ret *big.Int
	err := a.executor.Execute(ctx, "cast_vote", sender, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.CastVoteWithReason(lc, id, support, reason)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) Queue(
	ctx context.Context,
	sender common.Address,
	id common.Hash,
) (int64, error) {
	var ret int64
	err := a.executor.Execute(ctx, "queue", sender, func(lc *ledger.Context) error {
		var err error
		ret, err = a.governor.Queue(lc, id)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) Execute(
	ctx context.Context,
	sender common.Address,
	id common.Hash,
) error {
	return a.executor.Execute(ctx, "execute", sender, func(lc *ledger.Context) error {
		return a.governor.Execute(lc, id)
	})
}

func (a *NodeAdapter) Cancel(
	ctx context.Context,
	sender common.Address,
	id common.Hash,
) error {
	return a.executor.Execute(ctx, "cancel", sender, func(lc *ledger.Context) error {
		return a.governor.Cancel(lc, id)
	})
}

func (a *NodeAdapter) Treasury(ctx context.Context) (*treasury.Ledger, error) {
	var ret *treasury.Ledger
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		ret, err = a.treasury.Ledger(lc)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) TreasuryAssets(ctx context.Context) ([]treasury.Asset, error) {
	var ret []treasury.Asset
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		ret, err = a.treasury.Assets(lc)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) Withdrawals(ctx context.Context, limit int) ([]WithdrawalInfo, error) {
	var ret []WithdrawalInfo
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		records, err := a.treasury.Withdrawals(lc, limit)
		if err != nil {
			return err
		}
		ret = lo.Map(records, func(w models.TreasuryWithdrawal, _ int) WithdrawalInfo {
			return WithdrawalInfo{
				Id:        w.ID,
				Token:     common.BytesToAddress(w.Token),
				To:        common.BytesToAddress(w.Recipient),
				Caller:    common.BytesToAddress(w.Caller),
				Amount:    w.Amount.Big(),
				Block:     w.Block,
				Timestamp: w.Timestamp,
			}
		})
		return nil
	})
	return ret, err
}

func (a *NodeAdapter) Withdraw(
	ctx context.Context,
	sender common.Address,
	token common.Address,
	to common.Address,
	amount *big.Int,
) error {
	return a.executor.Execute(ctx, "withdraw", sender, func(lc *ledger.Context) error {
		return a.treasury.Withdraw(lc, token, to, amount)
	})
}

func (a *NodeAdapter) Deposit(
	ctx context.Context,
	sender common.Address,
	token common.Address,
	amount *big.Int,
) error {
	return a.executor.Execute(ctx, "deposit", sender, func(lc *ledger.Context) error {
		return a.treasury.Deposit(lc, token, amount)
	})
}

func (a *NodeAdapter) Account(
	ctx context.Context,
	account common.Address,
) (AccountInfo, error) {
	ret := AccountInfo{Address: account}
	err := a.executor.View(ctx, func(lc *ledger.Context) error {
		var err error
		if ret.Balance, err = a.votes.BalanceOf(lc, account); err != nil {
			return err
		}
		if ret.Votes, err = a.votes.GetVotes(lc, account); err != nil {
			return err
		}
		ret.Delegate, err = a.votes.Delegates(lc, account)
		return err
	})
	return ret, err
}

func (a *NodeAdapter) Delegate(
	ctx context.Context,
	sender common.Address,
	delegatee common.Address,
) error {
	return a.executor.Execute(ctx, "delegate", sender, func(lc *ledger.Context) error {
		return a.votes.Delegate(lc, delegatee)
	})
}

func (a *NodeAdapter) Advance(
	_ context.Context,
	blocks uint64,
	step time.Duration,
) (chain.Block, error) {
	return a.executor.Chain().Advance(blocks, step)
}
