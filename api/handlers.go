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
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/numbat/config/genesis"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/internal/version"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"
)

const (
	maxBodyBytes         = 1 << 20
	maxAdvanceBlocks     = 100_000
	defaultWithdrawLimit = 100
)

// writeJSON writes a JSON response with the given status
// code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	kind string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
		Kind:       kind,
		RequestId:  requestId(r),
	})
}

// writeFailure reports a failed backend call. Rejected operations carry
// their revert reason; anything else is logged and hidden from the client
func (s *Server) writeFailure(
	w http.ResponseWriter,
	r *http.Request,
	err error,
	what string,
) {
	status, kind := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(
			"failed to "+what,
			"error", err,
			"request_id", requestId(r),
		)
		message = "failed to " + what
	}
	writeError(w, r, status, kind, message)
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusBadRequest, "", err.Error())
}

func writeAccepted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OperationResponse{
		RequestId: requestId(r),
		Status:    "committed",
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// principal returns the account an operation runs as
func principal(r *http.Request) (common.Address, error) {
	value := strings.TrimSpace(r.Header.Get(PrincipalHeader))
	if value == "" {
		return common.Address{}, errMissingPrincipal
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, errInvalidPrincipal
	}
	return common.HexToAddress(value), nil
}

// requirePrincipal writes the error response itself when there is no
// usable principal
func requirePrincipal(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	sender, err := principal(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errMissingPrincipal) {
			status = http.StatusUnauthorized
		}
		writeError(w, r, status, "", err.Error())
		return common.Address{}, false
	}
	return sender, true
}

func pathProposalId(r *http.Request) (common.Hash, error) {
	raw := r.PathValue("id")
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid proposal id %q", raw)
	}
	return common.BytesToHash(b), nil
}

// parseSupport accepts a vote type name or its number
func parseSupport(s string) (uint8, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "against", "0":
		return models.VoteAgainst, nil
	case "for", "1":
		return models.VoteFor, nil
	case "abstain", "2":
		return models.VoteAbstain, nil
	default:
		return 0, fmt.Errorf("invalid vote support %q", s)
	}
}

func supportName(support uint8) string {
	switch support {
	case models.VoteAgainst:
		return "against"
	case models.VoteFor:
		return "for"
	case models.VoteAbstain:
		return "abstain"
	default:
		return strconv.Itoa(int(support))
	}
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// optionalAmount parses an amount that defaults to zero
func optionalAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	return genesis.ParseAmount(s)
}

func toActions(reqs []ActionRequest) ([]governance.Action, error) {
	ret := make([]governance.Action, 0, len(reqs))
	for i, req := range reqs {
		action, err := toAction(req)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		ret = append(ret, action)
	}
	return ret, nil
}

func toAction(req ActionRequest) (governance.Action, error) {
	switch req.Type {
	case "transfer":
		token, err := genesis.ResolveToken(req.Token)
		if err != nil {
			return nil, err
		}
		to, err := genesis.ResolveAccount(req.To)
		if err != nil {
			return nil, err
		}
		amount, err := genesis.ParseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		return governance.TransferAction{Token: token, To: to, Amount: amount}, nil
	case "parameter_update":
		value, err := genesis.ParseAmount(req.Value)
		if err != nil {
			return nil, err
		}
		return governance.ParameterUpdateAction{
			Target:    req.Target,
			Parameter: req.Parameter,
			Value:     value,
		}, nil
	case "call":
		target, err := genesis.ResolveAccount(req.Target)
		if err != nil {
			return nil, err
		}
		value, err := optionalAmount(req.Value)
		if err != nil {
			return nil, err
		}
		return governance.CallAction{
			Target: target,
			Value:  value,
			Method: req.Method,
			Args:   req.Args,
		}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", req.Type)
	}
}

func toCalls(reqs []CallRequest) ([]timelock.Call, error) {
	ret := make([]timelock.Call, 0, len(reqs))
	for i, req := range reqs {
		value, err := optionalAmount(req.Value)
		if err != nil {
			return nil, fmt.Errorf("calls[%d]: %w", i, err)
		}
		ret = append(ret, timelock.Call{
			Target: req.Target,
			Value:  value,
			Data:   req.Data,
		})
	}
	return ret, nil
}

func proposalResponse(p governance.Proposal) ProposalResponse {
	ret := ProposalResponse{
		Id:              p.Id,
		Proposer:        p.Proposer,
		DescriptionHash: p.DescriptionHash,
		Description:     p.Description,
		Calls: lo.Map(p.Calls, func(c timelock.Call, _ int) CallResponse {
			return CallResponse{
				Target: c.Target,
				Value:  amountString(c.Value),
				Data:   c.Data,
			}
		}),
		State: p.State.String(),
		Votes: VotesResponse{
			Against: amountString(p.AgainstVotes),
			For:     amountString(p.ForVotes),
			Abstain: amountString(p.AbstainVotes),
		},
		CreatedBlock:  p.CreatedBlock,
		SnapshotBlock: p.SnapshotBlock,
		DeadlineBlock: p.DeadlineBlock,
		Eta:           p.Eta,
	}
	if p.OperationId != (common.Hash{}) {
		id := p.OperationId
		ret.OperationId = &id
	}
	return ret
}

// handleRoot handles GET / and returns API metadata.
func (s *Server) handleRoot(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "numbat",
		Version: version.GetVersionString(),
	})
}

// handleHealth handles GET /health and returns node health
// status.
func (s *Server) handleHealth(
	w http.ResponseWriter,
	r *http.Request,
) {
	if _, err := s.backend.ChainTip(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleChainTip(w http.ResponseWriter, r *http.Request) {
	tip, err := s.backend.ChainTip(r.Context())
	if err != nil {
		s.writeFailure(w, r, err, "retrieve chain tip")
		return
	}
	writeJSON(w, http.StatusOK, TipResponse{
		Number:    tip.Number,
		Timestamp: tip.Timestamp,
	})
}

// handleListProposals handles GET /api/v1/proposals. The optional state
// query parameter filters before paging
func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	var stateFilter *governance.ProposalState
	if raw := r.URL.Query().Get("state"); raw != "" {
		state, err := governance.ParseProposalState(raw)
		if err != nil {
			badRequest(w, r, err)
			return
		}
		stateFilter = &state
	}
	total, err := s.backend.ProposalCount(r.Context())
	if err != nil {
		s.writeFailure(w, r, err, "count proposals")
		return
	}
	var proposals []governance.Proposal
	if stateFilter != nil {
		// State is derived per block, so filtering needs every proposal
		// before the page is cut
		all, err := s.backend.Proposals(r.Context(), 0, total)
		if err != nil {
			s.writeFailure(w, r, err, "retrieve proposals")
			return
		}
		all = lo.Filter(all, func(p governance.Proposal, _ int) bool {
			return p.State == *stateFilter
		})
		total = len(all)
		offset, limit := params.Window(total)
		proposals = all[offset : offset+limit]
	} else {
		offset, limit := params.Window(total)
		if limit > 0 {
			proposals, err = s.backend.Proposals(r.Context(), offset, limit)
			if err != nil {
				s.writeFailure(w, r, err, "retrieve proposals")
				return
			}
		}
	}
	if params.Order == PaginationOrderDesc {
		proposals = lo.Reverse(proposals)
	}
	ret := lo.Map(proposals, func(p governance.Proposal, _ int) ProposalResponse {
		return proposalResponse(p)
	})
	SetPaginationHeaders(w, total, params)
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ProposeRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	if (len(req.Actions) == 0) == (len(req.Calls) == 0) {
		badRequest(w, r, errors.New("exactly one of actions and calls is required"))
		return
	}
	var id common.Hash
	var err error
	if len(req.Actions) > 0 {
		actions, convErr := toActions(req.Actions)
		if convErr != nil {
			badRequest(w, r, convErr)
			return
		}
		id, err = s.backend.ProposeActions(r.Context(), sender, actions, req.Description)
	} else {
		calls, convErr := toCalls(req.Calls)
		if convErr != nil {
			badRequest(w, r, convErr)
			return
		}
		id, err = s.backend.ProposeCalls(r.Context(), sender, calls, req.Description)
	}
	if err != nil {
		s.writeFailure(w, r, err, "create proposal")
		return
	}
	writeJSON(w, http.StatusCreated, ProposeResponse{Id: id})
}

// proposal loads the proposal named by the path, writing the error
// response itself on failure
func (s *Server) proposal(
	w http.ResponseWriter,
	r *http.Request,
) (*governance.Proposal, bool) {
	id, err := pathProposalId(r)
	if err != nil {
		badRequest(w, r, err)
		return nil, false
	}
	p, err := s.backend.Proposal(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err, "retrieve proposal")
		return nil, false
	}
	return p, true
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	p, ok := s.proposal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, proposalResponse(*p))
}

func (s *Server) handleProposalState(w http.ResponseWriter, r *http.Request) {
	p, ok := s.proposal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{Id: p.Id, State: p.State.String()})
}

func (s *Server) handleProposalDeadline(w http.ResponseWriter, r *http.Request) {
	id, err := pathProposalId(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	snapshot, deadline, err := s.backend.ProposalDeadline(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err, "retrieve proposal deadline")
		return
	}
	writeJSON(w, http.StatusOK, DeadlineResponse{
		Id:       id,
		Snapshot: snapshot,
		Deadline: deadline,
	})
}

func (s *Server) handleProposalVotes(w http.ResponseWriter, r *http.Request) {
	p, ok := s.proposal(w, r)
	if !ok {
		return
	}
	ballots, err := s.backend.Ballots(r.Context(), p.Id)
	if err != nil {
		s.writeFailure(w, r, err, "retrieve ballots")
		return
	}
	writeJSON(w, http.StatusOK, ProposalVotesResponse{
		Id: p.Id,
		Totals: VotesResponse{
			Against: amountString(p.AgainstVotes),
			For:     amountString(p.ForVotes),
			Abstain: amountString(p.AbstainVotes),
		},
		Ballots: lo.Map(ballots, func(b governance.Ballot, _ int) BallotResponse {
			return BallotResponse{
				Voter:   b.Voter,
				Support: supportName(b.Support),
				Weight:  amountString(b.Weight),
				Reason:  b.Reason,
				Block:   b.Block,
			}
		}),
	})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := pathProposalId(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	var req VoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	support, err := parseSupport(req.Support)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	weight, err := s.backend.CastVote(r.Context(), sender, id, support, req.Reason)
	if err != nil {
		s.writeFailure(w, r, err, "cast vote")
		return
	}
	writeJSON(w, http.StatusOK, VoteResponse{Weight: amountString(weight)})
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := pathProposalId(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	eta, err := s.backend.Queue(r.Context(), sender, id)
	if err != nil {
		s.writeFailure(w, r, err, "queue proposal")
		return
	}
	writeJSON(w, http.StatusOK, QueueResponse{Eta: eta})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := pathProposalId(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.backend.Execute(r.Context(), sender, id); err != nil {
		s.writeFailure(w, r, err, "execute proposal")
		return
	}
	writeAccepted(w, r)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := pathProposalId(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.backend.Cancel(r.Context(), sender, id); err != nil {
		s.writeFailure(w, r, err, "cancel proposal")
		return
	}
	writeAccepted(w, r)
}

func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	l, err := s.backend.Treasury(r.Context())
	if err != nil {
		s.writeFailure(w, r, err, "retrieve treasury")
		return
	}
	writeJSON(w, http.StatusOK, TreasuryResponse{
		DailyLimit:  amountString(l.DailyLimit),
		TodayTotal:  amountString(l.TodayTotal),
		Remaining:   amountString(l.Remaining),
		PeriodStart: l.PeriodStart,
		PeriodEnd:   l.PeriodStart + treasury.WindowSeconds,
	})
}

func (s *Server) handleTreasuryAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.backend.TreasuryAssets(r.Context())
	if err != nil {
		s.writeFailure(w, r, err, "retrieve treasury assets")
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(assets, func(a treasury.Asset, _ int) AssetResponse {
		return AssetResponse{
			Token:   a.Token,
			Name:    a.Name,
			Type:    a.AssetType,
			Active:  a.Active,
			Balance: amountString(a.Balance),
		}
	}))
}

// handleWithdrawals handles GET /api/v1/treasury/withdrawals, newest first
func (s *Server) handleWithdrawals(w http.ResponseWriter, r *http.Request) {
	limit := defaultWithdrawLimit
	if raw := r.URL.Query().Get("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			badRequest(w, r, ErrInvalidPaginationParameters)
			return
		}
		limit = min(v, MaxPaginationCount)
	}
	records, err := s.backend.Withdrawals(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, r, err, "retrieve withdrawals")
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(records, func(wd WithdrawalInfo, _ int) WithdrawalResponse {
		return WithdrawalResponse{
			Id:        wd.Id,
			Token:     wd.Token,
			To:        wd.To,
			Caller:    wd.Caller,
			Amount:    amountString(wd.Amount),
			Block:     wd.Block,
			Timestamp: wd.Timestamp,
		}
	}))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req WithdrawalRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	token, err := genesis.ResolveToken(req.Token)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	to, err := genesis.ResolveAccount(req.To)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	amount, err := genesis.ParseAmount(req.Amount)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.backend.Withdraw(r.Context(), sender, token, to, amount); err != nil {
		s.writeFailure(w, r, err, "withdraw")
		return
	}
	writeAccepted(w, r)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req DepositRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	token, err := genesis.ResolveToken(req.Token)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	amount, err := genesis.ParseAmount(req.Amount)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.backend.Deposit(r.Context(), sender, token, amount); err != nil {
		s.writeFailure(w, r, err, "deposit")
		return
	}
	writeAccepted(w, r)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	account, err := genesis.ResolveAccount(r.PathValue("address"))
	if err != nil {
		badRequest(w, r, err)
		return
	}
	info, err := s.backend.Account(r.Context(), account)
	if err != nil {
		s.writeFailure(w, r, err, "retrieve account")
		return
	}
	ret := AccountResponse{
		Address: info.Address,
		Balance: amountString(info.Balance),
		Votes:   amountString(info.Votes),
	}
	if info.Delegate != (common.Address{}) {
		delegate := info.Delegate
		ret.Delegate = &delegate
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req DelegateRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	delegatee, err := genesis.ResolveAccount(req.Delegatee)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.backend.Delegate(r.Context(), sender, delegatee); err != nil {
		s.writeFailure(w, r, err, "delegate")
		return
	}
	writeAccepted(w, r)
}

// handleAdvance handles POST /api/v1/dev/advance. It is only routed in dev
// mode
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	if req.Blocks == 0 || req.Blocks > maxAdvanceBlocks {
		badRequest(w, r, fmt.Errorf("blocks must be between 1 and %d", maxAdvanceBlocks))
		return
	}
	if req.StepSeconds == 0 {
		req.StepSeconds = 1
	}
	tip, err := s.backend.Advance(
		r.Context(),
		req.Blocks,
		time.Duration(req.StepSeconds)*time.Second,
	)
	if err != nil {
		s.writeFailure(w, r, err, "advance chain")
		return
	}
	writeJSON(w, http.StatusOK, TipResponse{
		Number:    tip.Number,
		Timestamp: tip.Timestamp,
	})
}
