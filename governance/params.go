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
	"errors"
	"math"
	"math/big"

	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/types"
	"github.com/blinklabs-io/numbat/ledger"
)

// QuorumDenominator is the divisor of the quorum numerator
const QuorumDenominator = 100

// MaxBlockSpan bounds the voting delay, voting period and grace period.
// Three spans added to any realistic block number stay within int64
const MaxBlockSpan uint64 = math.MaxInt64 / 4

// Params are the governor's tunable parameters. Delays and periods are in
// blocks
type Params struct {
	ProposalThreshold *big.Int
	VotingDelay       uint64
	VotingPeriod      uint64
	QuorumNumerator   uint64
	GracePeriod       uint64
}

func (p *Params) validate() error {
	if p.VotingPeriod == 0 {
		return ledger.InvalidInput("voting period must be positive")
	}
	for _, span := range []struct {
		name  string
		value uint64
	}{
		{"voting delay", p.VotingDelay},
		{"voting period", p.VotingPeriod},
		{"grace period", p.GracePeriod},
	} {
		if span.value > MaxBlockSpan {
			return ledger.InvalidInput(
				"%s out of range: %d > %d",
				span.name,
				span.value,
				MaxBlockSpan,
			)
		}
	}
	if p.QuorumNumerator > QuorumDenominator {
		return ledger.InvalidInput(
			"quorum numerator over quorum denominator: %d > %d",
			p.QuorumNumerator,
			QuorumDenominator,
		)
	}
	if p.ProposalThreshold == nil || p.ProposalThreshold.Sign() < 0 {
		return ledger.InvalidInput("invalid proposal threshold")
	}
	return nil
}

// Initialize stores the initial parameters at genesis
func (g *Governor) Initialize(lc *ledger.Context, params Params) error {
	_, err := lc.DB().GetGovernanceParams(lc.Txn())
	if err == nil {
		return ledger.Precondition("governor already initialized")
	}
	if !errors.Is(err, models.ErrGovernanceParamsNotFound) {
		return err
	}
	if err := params.validate(); err != nil {
		return err
	}
	if err := lc.DB().SetGovernanceParams(
		&models.GovernanceParams{
			ProposalThreshold: types.NewBigInt(params.ProposalThreshold),
			VotingDelay:       params.VotingDelay,
			VotingPeriod:      params.VotingPeriod,
			GracePeriod:       params.GracePeriod,
		},
		lc.Txn(),
	); err != nil {
		return err
	}
	return lc.DB().SetQuorumNumerator(lc.Block().Number, params.QuorumNumerator, lc.Txn())
}

// Params returns the parameters in effect in the current block
func (g *Governor) Params(lc *ledger.Context) (*Params, error) {
	stored, err := lc.DB().GetGovernanceParams(lc.Txn())
	if err != nil {
		return nil, err
	}
	numerator, err := lc.DB().GetQuorumNumerator(lc.Block().Number, lc.Txn())
	if err != nil {
		return nil, err
	}
	return &Params{
		ProposalThreshold: stored.ProposalThreshold.Big(),
		VotingDelay:       stored.VotingDelay,
		VotingPeriod:      stored.VotingPeriod,
		QuorumNumerator:   numerator,
		GracePeriod:       stored.GracePeriod,
	}, nil
}

// The setters below run only as the timelock, so every change is the
// outcome of an executed proposal

func (g *Governor) onlyGovernance(lc *ledger.Context) error {
	if lc.Sender() != g.timelock.Address() {
		return ledger.Unauthorized("caller %s is not the governance executor", lc.Sender().Hex())
	}
	return nil
}

func (g *Governor) updateParams(
	lc *ledger.Context,
	name string,
	fn func(*Params),
) error {
	if err := g.onlyGovernance(lc); err != nil {
		return err
	}
	params, err := g.Params(lc)
	if err != nil {
		return err
	}
	old := *params
	fn(params)
	if err := params.validate(); err != nil {
		return err
	}
	if err := lc.DB().SetGovernanceParams(
		&models.GovernanceParams{
			ProposalThreshold: types.NewBigInt(params.ProposalThreshold),
			VotingDelay:       params.VotingDelay,
			VotingPeriod:      params.VotingPeriod,
			GracePeriod:       params.GracePeriod,
		},
		lc.Txn(),
	); err != nil {
		return err
	}
	if params.QuorumNumerator != old.QuorumNumerator {
		if err := lc.DB().SetQuorumNumerator(
			lc.Block().Number,
			params.QuorumNumerator,
			lc.Txn(),
		); err != nil {
			return err
		}
	}
	lc.Emit(
		ParamsChangedEventType,
		ParamsChangedEvent{Parameter: name, Old: old, New: *params},
	)
	g.logger.Info("governance parameter changed", "parameter", name)
	return nil
}

func (g *Governor) SetVotingDelay(lc *ledger.Context, blocks uint64) error {
	return g.updateParams(lc, "voting_delay", func(p *Params) {
		p.VotingDelay = blocks
	})
}

func (g *Governor) SetVotingPeriod(lc *ledger.Context, blocks uint64) error {
	return g.updateParams(lc, "voting_period", func(p *Params) {
		p.VotingPeriod = blocks
	})
}

func (g *Governor) SetProposalThreshold(lc *ledger.Context, threshold *big.Int) error {
	return g.updateParams(lc, "proposal_threshold", func(p *Params) {
		p.ProposalThreshold = new(big.Int).Set(threshold)
	})
}

// UpdateQuorumNumerator checkpoints a new numerator. Proposals whose
// snapshot is before the current block keep their quorum
func (g *Governor) UpdateQuorumNumerator(lc *ledger.Context, numerator uint64) error {
	return g.updateParams(lc, "quorum_numerator", func(p *Params) {
		p.QuorumNumerator = numerator
	})
}

func (g *Governor) SetGracePeriod(lc *ledger.Context, blocks uint64) error {
	return g.updateParams(lc, "grace_period", func(p *Params) {
		p.GracePeriod = blocks
	})
}

func (g *Governor) registerParamHandlers(c *ledger.Contract) error {
	uintSetters := map[string]func(*ledger.Context, uint64) error{
		"setVotingDelay":        g.SetVotingDelay,
		"setVotingPeriod":       g.SetVotingPeriod,
		"updateQuorumNumerator": g.UpdateQuorumNumerator,
		"setGracePeriod":        g.SetGracePeriod,
	}
	for method, setter := range uintSetters {
		if err := c.Handle(method, func(lc *ledger.Context, _ *big.Int, args []any) error {
			v := args[0].(*big.Int)
			if !v.IsUint64() {
				return ledger.InvalidInput("%s: value out of range", method)
			}
			return setter(lc, v.Uint64())
		}); err != nil {
			return err
		}
	}
	return c.Handle("setProposalThreshold", func(lc *ledger.Context, _ *big.Int, args []any) error {
		return g.SetProposalThreshold(lc, args[0].(*big.Int))
	})
}
