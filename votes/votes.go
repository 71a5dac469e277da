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

// Package votes tracks governance token balances and the voting weight they
// carry, with per block checkpoints for historical lookups
package votes

import (
	"io"
	"log/slog"
	"math/big"

	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// ContractName is the router name of the governance token
const ContractName = "token"

const contractABI = `[
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"delegate","inputs":[{"name":"delegatee","type":"address"}],"outputs":[]}
]`

const (
	TransferEventType             event.EventType = "votes.transfer"
	DelegateChangedEventType      event.EventType = "votes.delegate_changed"
	DelegateVotesChangedEventType event.EventType = "votes.delegate_votes_changed"
)

type TransferEvent struct {
	Token  common.Address
	From   common.Address
	To     common.Address
	Amount *big.Int
}

type DelegateChangedEvent struct {
	Delegator    common.Address
	FromDelegate common.Address
	ToDelegate   common.Address
}

type DelegateVotesChangedEvent struct {
	Delegate common.Address
	Previous *big.Int
	Current  *big.Int
}

type Config struct {
	Logger *slog.Logger
}

type Votes struct {
	logger   *slog.Logger
	contract *ledger.Contract
}

func New(cfg Config) (*Votes, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	v := &Votes{
		logger: cfg.Logger.With("component", "votes"),
	}
	c, err := ledger.NewContract(ContractName, contractABI)
	if err != nil {
		return nil, err
	}
	if err := c.Handle("transfer", func(lc *ledger.Context, _ *big.Int, args []any) error {
		return v.Transfer(lc, args[0].(common.Address), args[1].(*big.Int))
	}); err != nil {
		return nil, err
	}
	if err := c.Handle("delegate", func(lc *ledger.Context, _ *big.Int, args []any) error {
		return v.Delegate(lc, args[0].(common.Address))
	}); err != nil {
		return nil, err
	}
	v.contract = c
	return v, nil
}

// Contract returns the router entry of the governance token
func (v *Votes) Contract() *ledger.Contract {
	return v.contract
}

// Token returns the address of the governance token
func (v *Votes) Token() common.Address {
	return v.contract.Address
}

// BalanceOf returns the governance token balance of account
func (v *Votes) BalanceOf(
	lc *ledger.Context,
	account common.Address,
) (*big.Int, error) {
	return lc.DB().GetBalance(v.Token(), account, lc.Txn())
}

// TotalSupply returns the current governance token supply
func (v *Votes) TotalSupply(lc *ledger.Context) (*big.Int, error) {
	return lc.DB().GetTotalSupply(lc.Txn())
}

// Delegates returns the delegatee of account, or the zero address
func (v *Votes) Delegates(
	lc *ledger.Context,
	account common.Address,
) (common.Address, error) {
	return lc.DB().GetDelegatee(account, lc.Txn())
}

// GetVotes returns the current voting weight of account
func (v *Votes) GetVotes(
	lc *ledger.Context,
	account common.Address,
) (*big.Int, error) {
	return lc.DB().GetVotes(account, lc.Txn())
}

// GetPastVotes returns the voting weight of account at the start of block.
// Changes made during block itself are not included
func (v *Votes) GetPastVotes(
	lc *ledger.Context,
	account common.Address,
	block uint64,
) (*big.Int, error) {
	if block > lc.Block().Number {
		return nil, ledger.Precondition("future lookup: block %d", block)
	}
	return lc.DB().GetPastVotes(account, block, lc.Txn())
}

// GetPastTotalSupply returns the total supply at the start of block
func (v *Votes) GetPastTotalSupply(
	lc *ledger.Context,
	block uint64,
) (*big.Int, error) {
	if block > lc.Block().Number {
		return nil, ledger.Precondition("future lookup: block %d", block)
	}
	return lc.DB().GetPastTotalSupply(block, lc.Txn())
}

// Mint creates new tokens for to. It has no authorization of its own and is
// only reachable from genesis
func (v *Votes) Mint(
	lc *ledger.Context,
	to common.Address,
	amount *big.Int,
) error {
	if to == (common.Address{}) {
		return ledger.InvalidInput("mint to the zero address")
	}
	if amount.Sign() <= 0 {
		return ledger.InvalidInput("mint amount must be positive")
	}
	db := lc.DB()
	supply, err := db.GetTotalSupply(lc.Txn())
	if err != nil {
		return err
	}
	if err := db.SetTotalSupply(
		lc.Block().Number,
		supply.Add(supply, amount),
		lc.Txn(),
	); err != nil {
		return err
	}
	bal, err := db.GetBalance(v.Token(), to, lc.Txn())
	if err != nil {
		return err
	}
	if err := db.SetBalance(v.Token(), to, bal.Add(bal, amount), lc.Txn()); err != nil {
		return err
	}
	delegatee, err := v.Delegates(lc, to)
	if err != nil {
		return err
	}
	lc.Emit(
		TransferEventType,
		TransferEvent{Token: v.Token(), To: to, Amount: new(big.Int).Set(amount)},
	)
	return v.moveVotingPower(lc, common.Address{}, delegatee, amount)
}

// Transfer moves governance tokens from the sender to to
func (v *Votes) Transfer(
	lc *ledger.Context,
	to common.Address,
	amount *big.Int,
) error {
	return v.TransferToken(lc, v.Token(), lc.Sender(), to, amount)
}

// TransferToken moves amount of token between two accounts. Moving the
// governance token also moves the voting weight of the delegates
func (v *Votes) TransferToken(
	lc *ledger.Context,
	token common.Address,
	from common.Address,
	to common.Address,
	amount *big.Int,
) error {
	if to == (common.Address{}) {
		return ledger.InvalidInput("transfer to the zero address")
	}
	if amount == nil || amount.Sign() < 0 {
		return ledger.InvalidInput("invalid transfer amount")
	}
	db := lc.DB()
	fromBal, err := db.GetBalance(token, from, lc.Txn())
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ledger.ResourceLimit("insufficient balance")
	}
	if from != to {
		if err := db.SetBalance(token, from, fromBal.Sub(fromBal, amount), lc.Txn()); err != nil {
			return err
		}
		toBal, err := db.GetBalance(token, to, lc.Txn())
		if err != nil {
			return err
		}
		if err := db.SetBalance(token, to, toBal.Add(toBal, amount), lc.Txn()); err != nil {
			return err
		}
	}
	lc.Emit(
		TransferEventType,
		TransferEvent{
			Token:  token,
			From:   from,
			To:     to,
			Amount: new(big.Int).Set(amount),
		},
	)
	if token != v.Token() {
		return nil
	}
	fromDelegate, err := v.Delegates(lc, from)
	if err != nil {
		return err
	}
	toDelegate, err := v.Delegates(lc, to)
	if err != nil {
		return err
	}
	return v.moveVotingPower(lc, fromDelegate, toDelegate, amount)
}

// Delegate assigns the sender's voting weight to delegatee. Tokens carry
// no weight until their holder delegates, possibly to itself
func (v *Votes) Delegate(lc *ledger.Context, delegatee common.Address) error {
	delegator := lc.Sender()
	current, err := v.Delegates(lc, delegator)
	if err != nil {
		return err
	}
	if current == delegatee {
		return nil
	}
	if err := lc.DB().SetDelegatee(delegator, delegatee, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		DelegateChangedEventType,
		DelegateChangedEvent{
			Delegator:    delegator,
			FromDelegate: current,
			ToDelegate:   delegatee,
		},
	)
	bal, err := v.BalanceOf(lc, delegator)
	if err != nil {
		return err
	}
	return v.moveVotingPower(lc, current, delegatee, bal)
}

func (v *Votes) moveVotingPower(
	lc *ledger.Context,
	src common.Address,
	dst common.Address,
	amount *big.Int,
) error {
	if src == dst || amount.Sign() == 0 {
		return nil
	}
	if src != (common.Address{}) {
		if err := v.adjustVotes(lc, src, new(big.Int).Neg(amount)); err != nil {
			return err
		}
	}
	if dst != (common.Address{}) {
		if err := v.adjustVotes(lc, dst, amount); err != nil {
			return err
		}
	}
	return nil
}

func (v *Votes) adjustVotes(
	lc *ledger.Context,
	delegate common.Address,
	delta *big.Int,
) error {
	db := lc.DB()
	prev, err := db.GetVotes(delegate, lc.Txn())
	if err != nil {
		return err
	}
	cur := new(big.Int).Add(prev, delta)
	if cur.Sign() < 0 {
		return ledger.Precondition("voting weight of %s would be negative", delegate.Hex())
	}
	if err := db.SetVotes(delegate, lc.Block().Number, cur, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		DelegateVotesChangedEventType,
		DelegateVotesChangedEvent{Delegate: delegate, Previous: prev, Current: cur},
	)
	return nil
}
