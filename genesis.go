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

package numbat

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/config/genesis"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/ethereum/go-ethereum/common"
)

var ErrGenesisMismatch = errors.New(
	"database was initialized from a different genesis",
)

// loadGenesis applies the configured genesis to an empty database, or
// checks that an initialized database was created from it
func (n *Node) loadGenesis() error {
	g := n.config.genesis
	state, err := n.db.GetNetworkState(nil)
	if err != nil {
		return err
	}
	if state != nil {
		hash := g.Hash()
		if state.Network != g.Network ||
			!bytes.Equal(state.GenesisHash, hash.Bytes()) {
			return fmt.Errorf(
				"%w: database network %q, genesis network %q",
				ErrGenesisMismatch,
				state.Network,
				g.Network,
			)
		}
		return nil
	}
	setupAdmin, err := genesis.ResolveAccount(g.SetupAdmin)
	if err != nil {
		return err
	}
	err = n.executor.Execute(
		n.runCtx,
		"genesis",
		setupAdmin,
		func(lc *ledger.Context) error {
			if err := n.contracts.ApplyGenesis(lc, g); err != nil {
				return err
			}
			hash := g.Hash()
			return lc.DB().SetNetworkState(
				&models.NetworkState{
					Network:     g.Network,
					GenesisHash: hash.Bytes(),
					AppliedAt:   int64(lc.Block().Number),
				},
				lc.Txn(),
			)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to apply genesis: %w", err)
	}
	n.config.logger.Info(
		fmt.Sprintf("applied %s genesis", g.Network),
		"component", "node",
		"hash", g.Hash().Hex(),
	)
	return nil
}

// ApplyGenesis writes the initial state described by g. It runs as the
// setup admin, in the first block of a new chain
func (c *Contracts) ApplyGenesis(lc *ledger.Context, g *genesis.Genesis) error {
	setupAdmin, err := genesis.ResolveAccount(g.SetupAdmin)
	if err != nil {
		return err
	}
	lc = lc.WithSender(setupAdmin)
	if err := c.Access.Bootstrap(lc, setupAdmin); err != nil {
		return fmt.Errorf("access: %w", err)
	}
	for i, r := range g.Roles {
		role, err := access.ParseRole(r.Role)
		if err != nil {
			return err
		}
		account, err := genesis.ResolveAccount(r.Account)
		if err != nil {
			return err
		}
		if err := c.Access.Grant(lc, role, account); err != nil {
			return fmt.Errorf("roles[%d]: %w", i, err)
		}
	}
	if err := c.Timelock.Initialize(lc, g.Timelock.MinDelay); err != nil {
		return fmt.Errorf("timelock: %w", err)
	}
	if err := c.applyTreasury(lc, g); err != nil {
		return fmt.Errorf("treasury: %w", err)
	}
	threshold, err := genesis.ParseAmount(g.Governance.ProposalThreshold)
	if err != nil {
		return err
	}
	if err := c.Governor.Initialize(lc, governance.Params{
		ProposalThreshold: threshold,
		VotingDelay:       g.Governance.VotingDelay,
		VotingPeriod:      g.Governance.VotingPeriod,
		QuorumNumerator:   g.Governance.QuorumNumerator,
		GracePeriod:       g.Governance.GracePeriod,
	}); err != nil {
		return fmt.Errorf("governance: %w", err)
	}
	for i, a := range g.Allocations {
		if err := c.applyAllocation(lc, a); err != nil {
			return fmt.Errorf("allocations[%d]: %w", i, err)
		}
	}
	for i, b := range g.Balances {
		token, err := genesis.ResolveToken(b.Token)
		if err != nil {
			return err
		}
		account, err := genesis.ResolveAccount(b.Account)
		if err != nil {
			return err
		}
		if err := c.credit(lc, token, account, b.Amount); err != nil {
			return fmt.Errorf("balances[%d]: %w", i, err)
		}
	}
	if g.HandOff {
		if err := c.Access.HandOff(lc, c.Timelock.Address()); err != nil {
			return fmt.Errorf("hand-off: %w", err)
		}
	}
	return nil
}

func (c *Contracts) applyTreasury(lc *ledger.Context, g *genesis.Genesis) error {
	limit, err := genesis.ParseAmount(g.Treasury.DailyLimit)
	if err != nil {
		return err
	}
	if err := c.Treasury.Initialize(lc, limit); err != nil {
		return err
	}
	for _, a := range g.Treasury.Assets {
		token, err := genesis.ResolveToken(a.Token)
		if err != nil {
			return err
		}
		assetType := a.Type
		if assetType == "" {
			assetType = treasury.AssetTypeERC20
		}
		if err := c.Treasury.ImportAsset(lc, token, a.Name, assetType); err != nil {
			return err
		}
	}
	for _, b := range g.Treasury.Balances {
		token, err := genesis.ResolveToken(b.Token)
		if err != nil {
			return err
		}
		if err := c.credit(lc, token, c.Treasury.Address(), b.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (c *Contracts) applyAllocation(lc *ledger.Context, a genesis.Allocation) error {
	account, err := genesis.ResolveAccount(a.Account)
	if err != nil {
		return err
	}
	amount, err := genesis.ParseAmount(a.Amount)
	if err != nil {
		return err
	}
	if amount.Sign() > 0 {
		if err := c.Votes.Mint(lc, account, amount); err != nil {
			return err
		}
	}
	var delegatee common.Address
	switch a.Delegate {
	case "":
		return nil
	case genesis.DelegateSelf:
		delegatee = account
	default:
		delegatee, err = genesis.ResolveAccount(a.Delegate)
		if err != nil {
			return err
		}
	}
	return c.Votes.Delegate(lc.WithSender(account), delegatee)
}

// credit adds to an account's balance of a token other than the
// governance token, which only changes through minting
func (c *Contracts) credit(
	lc *ledger.Context,
	token common.Address,
	account common.Address,
	amount string,
) error {
	if token == c.Votes.Token() {
		return ledger.InvalidInput("governance token balances come from allocations")
	}
	v, err := genesis.ParseAmount(amount)
	if err != nil {
		return err
	}
	bal, err := lc.DB().GetBalance(token, account, lc.Txn())
	if err != nil {
		return err
	}
	return lc.DB().SetBalance(token, account, new(big.Int).Add(bal, v), lc.Txn())
}
