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

// Package governance implements the proposal engine: token weighted voting
// on batches of calls that run through the timelock once approved
package governance

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/types"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
)

var (
	ErrNoAccess   = errors.New("governor requires access control")
	ErrNoToken    = errors.New("governor requires a voting token")
	ErrNoTimelock = errors.New("governor requires a timelock")
)

// VotingToken provides checkpointed voting weight
type VotingToken interface {
	GetVotes(lc *ledger.Context, account common.Address) (*big.Int, error)
	GetPastVotes(lc *ledger.Context, account common.Address, block uint64) (*big.Int, error)
	GetPastTotalSupply(lc *ledger.Context, block uint64) (*big.Int, error)
}

type Config struct {
	Logger   *slog.Logger
	Access   *access.Access
	Token    VotingToken
	Timelock *timelock.Timelock
}

type Governor struct {
	logger   *slog.Logger
	access   *access.Access
	token    VotingToken
	timelock *timelock.Timelock
	contract *ledger.Contract
}

func New(cfg Config) (*Governor, error) {
	if cfg.Access == nil {
		return nil, ErrNoAccess
	}
	if cfg.Token == nil {
		return nil, ErrNoToken
	}
	if cfg.Timelock == nil {
		return nil, ErrNoTimelock
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	g := &Governor{
		logger:   cfg.Logger.With("component", "governance"),
		access:   cfg.Access,
		token:    cfg.Token,
		timelock: cfg.Timelock,
	}
	c, err := ledger.NewContract(ContractName, contractABI)
	if err != nil {
		return nil, err
	}
	if err := g.registerParamHandlers(c); err != nil {
		return nil, err
	}
	g.contract = c
	return g, nil
}

func (g *Governor) Contract() *ledger.Contract {
	return g.contract
}

// Address is the principal the governor schedules and executes as
func (g *Governor) Address() common.Address {
	return g.contract.Address
}

// Timelock returns the timelock proposals are queued in
func (g *Governor) Timelock() *timelock.Timelock {
	return g.timelock
}

var proposalArgs = func() abi.Arguments {
	addressArr, _ := abi.NewType("address[]", "", nil)
	uintArr, _ := abi.NewType("uint256[]", "", nil)
	bytesArr, _ := abi.NewType("bytes[]", "", nil)
	bytes32, _ := abi.NewType("bytes32", "", nil)
	return abi.Arguments{
		{Type: addressArr},
		{Type: uintArr},
		{Type: bytesArr},
		{Type: bytes32},
	}
}()

// HashDescription returns the keccak256 hash of a description
func HashDescription(description string) common.Hash {
	return crypto.Keccak256Hash([]byte(description))
}

// HashProposal returns the id of a proposal. Identical inputs give the same
// id
func HashProposal(calls []timelock.Call, descriptionHash common.Hash) (common.Hash, error) {
	targets, values, calldatas := splitCalls(calls)
	encoded, err := proposalArgs.Pack(targets, values, calldatas, descriptionHash)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode proposal: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

func splitCalls(calls []timelock.Call) ([]common.Address, []*big.Int, [][]byte) {
	targets := lo.Map(calls, func(c timelock.Call, _ int) common.Address { return c.Target })
	values := lo.Map(calls, func(c timelock.Call, _ int) *big.Int {
		if c.Value == nil {
			return new(big.Int)
		}
		return c.Value
	})
	calldatas := lo.Map(calls, func(c timelock.Call, _ int) []byte { return c.Data })
	return targets, values, calldatas
}

// JoinCalls zips parallel target, value and calldata lists. The lists must
// be non-empty and of equal length
func JoinCalls(
	targets []common.Address,
	values []*big.Int,
	calldatas [][]byte,
) ([]timelock.Call, error) {
	if len(targets) != len(values) || len(targets) != len(calldatas) {
		return nil, ledger.InvalidInput(
			"invalid proposal length: %d targets, %d values, %d calldatas",
			len(targets),
			len(values),
			len(calldatas),
		)
	}
	if len(targets) == 0 {
		return nil, ledger.InvalidInput("empty proposal")
	}
	ret := make([]timelock.Call, len(targets))
	for i := range targets {
		ret[i] = timelock.Call{Target: targets[i], Value: values[i], Data: calldatas[i]}
	}
	return ret, nil
}

// timelockSalt binds a timelock operation to this governor
func (g *Governor) timelockSalt(descriptionHash common.Hash) common.Hash {
	var salt common.Hash
	addr := g.Address()
	for i := range salt {
		salt[i] = descriptionHash[i]
		if i < common.AddressLength {
			salt[i] ^= addr[i]
		}
	}
	return salt
}

// Propose creates a proposal from parallel call lists
func (g *Governor) Propose(
	lc *ledger.Context,
	targets []common.Address,
	values []*big.Int,
	calldatas [][]byte,
	description string,
) (common.Hash, error) {
	calls, err := JoinCalls(targets, values, calldatas)
	if err != nil {
		return common.Hash{}, err
	}
	return g.ProposeCalls(lc, calls, description)
}

// ProposeActions encodes actions and creates a proposal from them
func (g *Governor) ProposeActions(
	lc *ledger.Context,
	actions []Action,
	description string,
) (common.Hash, error) {
	calls, err := EncodeActions(lc.Router(), actions)
	if err != nil {
		return common.Hash{}, err
	}
	return g.ProposeCalls(lc, calls, description)
}

// ProposeCalls creates a proposal. The sender must hold at least the
// proposal threshold of voting weight, and every call must be dispatchable
func (g *Governor) ProposeCalls(
	lc *ledger.Context,
	calls []timelock.Call,
	description string,
) (common.Hash, error) {
	if len(calls) == 0 {
		return common.Hash{}, ledger.InvalidInput("empty proposal")
	}
	proposer := lc.Sender()
	params, err := g.Params(lc)
	if err != nil {
		return common.Hash{}, err
	}
	weight, err := g.token.GetVotes(lc, proposer)
	if err != nil {
		return common.Hash{}, err
	}
	if weight.Cmp(params.ProposalThreshold) < 0 {
		return common.Hash{}, ledger.Unauthorized(
			"proposer %s votes below proposal threshold: %s < %s",
			proposer.Hex(),
			weight.String(),
			params.ProposalThreshold.String(),
		)
	}
	for i, call := range calls {
		if call.Value != nil && call.Value.Sign() < 0 {
			return common.Hash{}, ledger.InvalidInput("call %d: negative value", i)
		}
		if _, _, _, err := lc.Router().Resolve(call.Target, call.Data); err != nil {
			return common.Hash{}, fmt.Errorf("call %d: %w", i, err)
		}
	}
	descriptionHash := HashDescription(description)
	id, err := HashProposal(calls, descriptionHash)
	if err != nil {
		return common.Hash{}, ledger.InvalidInput("%v", err)
	}
	existing, err := lc.DB().GetGovernanceProposal(id.Bytes(), lc.Txn())
	if err != nil {
		return common.Hash{}, err
	}
	if existing != nil {
		return common.Hash{}, ledger.Precondition("proposal %s already exists", id.Hex())
	}
	if lc.Block().Number > MaxBlockSpan {
		return common.Hash{}, ledger.InvalidInput("block %d out of range", lc.Block().Number)
	}
	snapshot := lc.Block().Number + params.VotingDelay
	deadline := snapshot + params.VotingPeriod
	proposal := &models.GovernanceProposal{
		ProposalId:      id.Bytes(),
		Proposer:        proposer.Bytes(),
		DescriptionHash: descriptionHash.Bytes(),
		ForVotes:        types.NewBigInt(nil),
		AgainstVotes:    types.NewBigInt(nil),
		AbstainVotes:    types.NewBigInt(nil),
		CreatedBlock:    lc.Block().Number,
		SnapshotBlock:   snapshot,
		DeadlineBlock:   deadline,
		GracePeriod:     params.GracePeriod,
		ActionCount:     len(calls),
	}
	if err := lc.DB().SetGovernanceProposal(proposal, lc.Txn()); err != nil {
		return common.Hash{}, err
	}
	targets, values, calldatas := splitCalls(calls)
	if err := lc.DB().SetProposalBody(
		id.Bytes(),
		&database.ProposalBody{
			Description: description,
			Targets:     lo.Map(targets, func(a common.Address, _ int) []byte { return a.Bytes() }),
			Values:      values,
			Calldatas:   calldatas,
		},
		lc.Txn(),
	); err != nil {
		return common.Hash{}, err
	}
	lc.Emit(
		ProposalCreatedEventType,
		ProposalCreatedEvent{
			ProposalId:    id,
			Proposer:      proposer,
			Calls:         calls,
			Description:   description,
			SnapshotBlock: snapshot,
			DeadlineBlock: deadline,
		},
	)
	g.logger.Info(
		"proposal created",
		"proposal", id.Hex(),
		"proposer", proposer.Hex(),
		"snapshot", snapshot,
		"deadline", deadline,
	)
	return id, nil
}

// CastVote records the sender's vote with no reason
func (g *Governor) CastVote(
	lc *ledger.Context,
	id common.Hash,
	support uint8,
) (*big.Int, error) {
	return g.CastVoteWithReason(lc, id, support, "")
}

// CastVoteWithReason records the sender's vote. The vote carries the
// sender's weight at the snapshot block, and each account votes once
func (g *Governor) CastVoteWithReason(
	lc *ledger.Context,
	id common.Hash,
	support uint8,
	reason string,
) (*big.Int, error) {
	if support > models.VoteAbstain {
		return nil, ledger.InvalidInput("invalid vote type %d", support)
	}
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return nil, err
	}
	state, err := g.state(lc, proposal)
	if err != nil {
		return nil, err
	}
	if state != StateActive {
		return nil, ledger.Precondition("vote not currently active: proposal is %s", state)
	}
	voter := lc.Sender()
	existing, err := lc.DB().GetGovernanceVote(proposal, voter.Bytes(), lc.Txn())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ledger.Precondition("vote already cast by %s", voter.Hex())
	}
	weight, err := g.token.GetPastVotes(lc, voter, proposal.SnapshotBlock)
	if err != nil {
		return nil, err
	}
	switch support {
	case models.VoteAgainst:
		proposal.AgainstVotes = types.NewBigInt(new(big.Int).Add(proposal.AgainstVotes.Big(), weight))
	case models.VoteFor:
		proposal.ForVotes = types.NewBigInt(new(big.Int).Add(proposal.ForVotes.Big(), weight))
	default:
		proposal.AbstainVotes = types.NewBigInt(new(big.Int).Add(proposal.AbstainVotes.Big(), weight))
	}
	if err := lc.DB().AddGovernanceVote(
		&models.GovernanceVote{
			ProposalID: proposal.ID,
			Voter:      voter.Bytes(),
			Weight:     types.NewBigInt(weight),
			Reason:     reason,
			Block:      lc.Block().Number,
			Support:    support,
		},
		lc.Txn(),
	); err != nil {
		return nil, err
	}
	if err := lc.DB().SetGovernanceProposal(proposal, lc.Txn()); err != nil {
		return nil, err
	}
	lc.Emit(
		VoteCastEventType,
		VoteCastEvent{
			ProposalId: id,
			Voter:      voter,
			Support:    support,
			Weight:     weight,
			Reason:     reason,
		},
	)
	g.logger.Debug(
		"vote cast",
		"proposal", id.Hex(),
		"voter", voter.Hex(),
		"support", support,
		"weight", weight.String(),
	)
	return weight, nil
}

// Queue schedules a succeeded proposal in the timelock with the timelock's
// minimum delay
func (g *Governor) Queue(lc *ledger.Context, id common.Hash) (int64, error) {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return 0, err
	}
	state, err := g.state(lc, proposal)
	if err != nil {
		return 0, err
	}
	if state != StateSucceeded {
		return 0, ledger.Precondition("proposal not successful: proposal is %s", state)
	}
	calls, err := g.proposalCalls(lc, id)
	if err != nil {
		return 0, err
	}
	delay, err := g.timelock.MinDelay(lc)
	if err != nil {
		return 0, err
	}
	salt := g.timelockSalt(common.BytesToHash(proposal.DescriptionHash))
	opId, err := g.timelock.Schedule(
		lc.WithSender(g.Address()),
		calls,
		common.Hash{},
		salt,
		delay,
	)
	if err != nil {
		return 0, err
	}
	eta, err := g.timelock.GetTimestamp(lc, opId)
	if err != nil {
		return 0, err
	}
	proposal.OperationId = opId.Bytes()
	proposal.Eta = eta
	proposal.Queued = true
	if err := lc.DB().SetGovernanceProposal(proposal, lc.Txn()); err != nil {
		return 0, err
	}
	lc.Emit(
		ProposalQueuedEventType,
		ProposalQueuedEvent{ProposalId: id, OperationId: opId, Eta: eta},
	)
	g.logger.Info(
		"proposal queued",
		"proposal", id.Hex(),
		"operation", opId.Hex(),
		"eta", eta,
	)
	return eta, nil
}

// Execute runs a queued proposal through the timelock. If any call fails
// everything reverts and the proposal stays queued
func (g *Governor) Execute(lc *ledger.Context, id common.Hash) error {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return err
	}
	state, err := g.state(lc, proposal)
	if err != nil {
		return err
	}
	if state != StateQueued {
		return ledger.Precondition("proposal not queued: proposal is %s", state)
	}
	calls, err := g.proposalCalls(lc, id)
	if err != nil {
		return err
	}
	salt := g.timelockSalt(common.BytesToHash(proposal.DescriptionHash))
	if _, err := g.timelock.Execute(
		lc.WithSender(g.Address()),
		calls,
		common.Hash{},
		salt,
	); err != nil {
		return err
	}
	proposal.Executed = true
	if err := lc.DB().SetGovernanceProposal(proposal, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		ProposalExecutedEventType,
		ProposalExecutedEvent{ProposalId: id, Executor: lc.Sender()},
	)
	g.logger.Info(
		"proposal executed",
		"proposal", id.Hex(),
		"executor", lc.Sender().Hex(),
	)
	return nil
}

// Cancel stops a proposal before voting has ended. The proposer and
// guardians may cancel
func (g *Governor) Cancel(lc *ledger.Context, id common.Hash) error {
	proposal, err := g.getProposal(lc, id)
	if err != nil {
		return err
	}
	if common.BytesToAddress(proposal.Proposer) != lc.Sender() {
		guardian, err := g.access.HasRole(lc, access.RoleGovernanceGuardian, lc.Sender())
		if err != nil {
			return err
		}
		if !guardian {
			return ledger.Unauthorized(
				"%s is neither the proposer nor a guardian",
				lc.Sender().Hex(),
			)
		}
	}
	state, err := g.state(lc, proposal)
	if err != nil {
		return err
	}
	if state != StatePending && state != StateActive {
		return ledger.Precondition("proposal cannot be canceled: proposal is %s", state)
	}
	proposal.Canceled = true
	if err := lc.DB().SetGovernanceProposal(proposal, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		ProposalCanceledEventType,
		ProposalCanceledEvent{ProposalId: id, Canceler: lc.Sender()},
	)
	g.logger.Info(
		"proposal canceled",
		"proposal", id.Hex(),
		"canceler", lc.Sender().Hex(),
	)
	return nil
}

func (g *Governor) getProposal(
	lc *ledger.Context,
	id common.Hash,
) (*models.GovernanceProposal, error) {
	proposal, err := lc.DB().GetGovernanceProposal(id.Bytes(), lc.Txn())
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ledger.NotFound(
			models.ErrGovernanceProposalNotFound,
			"unknown proposal %s",
			id.Hex(),
		)
	}
	return proposal, nil
}

func (g *Governor) proposalCalls(
	lc *ledger.Context,
	id common.Hash,
) ([]timelock.Call, error) {
	body, err := lc.DB().GetProposalBody(id.Bytes(), lc.Txn())
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("missing body for proposal %s", id.Hex())
	}
	return bodyCalls(body)
}

func bodyCalls(body *database.ProposalBody) ([]timelock.Call, error) {
	return JoinCalls(
		lo.Map(body.Targets, func(b []byte, _ int) common.Address { return common.BytesToAddress(b) }),
		body.Values,
		body.Calldatas,
	)
}
