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
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/ethereum/go-ethereum/common"
)

// Backend is the interface that the API server uses to query and operate
// on the ledger. This decouples the HTTP server from the concrete node and
// enables testing with mock implementations.
type Backend interface {
	// ChainTip returns the open block
	ChainTip(ctx context.Context) (chain.Block, error)

	Proposals(ctx context.Context, offset, limit int) ([]governance.Proposal, error)
	ProposalCount(ctx context.Context) (int, error)
	Proposal(ctx context.Context, id common.Hash) (*governance.Proposal, error)
	// ProposalDeadline returns the snapshot and deadline blocks
	ProposalDeadline(ctx context.Context, id common.Hash) (uint64, uint64, error)
	Ballots(ctx context.Context, id common.Hash) ([]governance.Ballot, error)

	// ProposeActions and ProposeCalls create a proposal as sender and
	// return its id
	ProposeActions(
		ctx context.Context,
		sender common.Address,
		actions []governance.Action,
		description string,
	) (common.Hash, error)
	ProposeCalls(
		ctx context.Context,
		sender common.Address,
		calls []timelock.Call,
		description string,
	) (common.Hash, error)
	// CastVote returns the weight the vote was counted with
	CastVote(
		ctx context.Context,
		sender common.Address,
		id common.Hash,
		support uint8,
		reason string,
	) (*big.Int, error)
	// Queue returns the timestamp the proposal becomes executable
	Queue(ctx context.Context, sender common.Address, id common.Hash) (int64, error)
	Execute(ctx context.Context, sender common.Address, id common.Hash) error
	Cancel(ctx context.Context, sender common.Address, id common.Hash) error

	Treasury(ctx context.Context) (*treasury.Ledger, error)
	TreasuryAssets(ctx context.Context) ([]treasury.Asset, error)
	Withdrawals(ctx context.Context, limit int) ([]WithdrawalInfo, error)
	Withdraw(
		ctx context.Context,
		sender common.Address,
		token common.Address,
		to common.Address,
		amount *big.Int,
	) error
	Deposit(
		ctx context.Context,
		sender common.Address,
		token common.Address,
		amount *big.Int,
	) error

	Account(ctx context.Context, account common.Address) (AccountInfo, error)
	Delegate(ctx context.Context, sender common.Address, delegatee common.Address) error

	// Advance seals blocks, each step apart
	Advance(ctx context.Context, blocks uint64, step time.Duration) (chain.Block, error)
}

// WithdrawalInfo holds a withdrawal history record
type WithdrawalInfo struct {
	Id        uint
	Token     common.Address
	To        common.Address
	Caller    common.Address
	Amount    *big.Int
	Block     uint64
	Timestamp int64
}

// AccountInfo holds the governance token standing of an account
type AccountInfo struct {
	Address  common.Address
	Balance  *big.Int
	Votes    *big.Int
	Delegate common.Address
}
