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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Amounts are decimal strings so that values above 2^53 survive JSON
// clients

// RootResponse is returned by GET /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// TipResponse is returned by GET /api/v1/chain/tip.
type TipResponse struct {
	Number    uint64 `json:"number"`
	Timestamp int64  `json:"timestamp"`
}

type CallResponse struct {
	Target common.Address `json:"target"`
	Value  string         `json:"value"`
	Data   hexutil.Bytes  `json:"data"`
}

type VotesResponse struct {
	Against string `json:"against"`
	For     string `json:"for"`
	Abstain string `json:"abstain"`
}

// ProposalResponse represents a proposal with its derived state.
type ProposalResponse struct {
	Id              common.Hash    `json:"id"`
	Proposer        common.Address `json:"proposer"`
	DescriptionHash common.Hash    `json:"description_hash"`
	Description     string         `json:"description"`
	Calls           []CallResponse `json:"calls"`
	State           string         `json:"state"`
	Votes           VotesResponse  `json:"votes"`
	OperationId     *common.Hash   `json:"operation_id"`
	CreatedBlock    uint64         `json:"created_block"`
	SnapshotBlock   uint64         `json:"snapshot_block"`
	DeadlineBlock   uint64         `json:"deadline_block"`
	Eta             int64          `json:"eta"`
}

type StateResponse struct {
	Id    common.Hash `json:"id"`
	State string      `json:"state"`
}

type DeadlineResponse struct {
	Id       common.Hash `json:"id"`
	Snapshot uint64      `json:"snapshot"`
	Deadline uint64      `json:"deadline"`
}

type ProposalVotesResponse struct {
	Id      common.Hash      `json:"id"`
	Totals  VotesResponse    `json:"totals"`
	Ballots []BallotResponse `json:"ballots"`
}

type BallotResponse struct {
	Voter   common.Address `json:"voter"`
	Support string         `json:"support"`
	Weight  string         `json:"weight"`
	Reason  string         `json:"reason,omitempty"`
	Block   uint64         `json:"block"`
}

// ProposeRequest is the body of POST /api/v1/proposals. Exactly one of
// Actions and Calls is set
type ProposeRequest struct {
	Description string          `json:"description"`
	Actions     []ActionRequest `json:"actions,omitempty"`
	Calls       []CallRequest   `json:"calls,omitempty"`
}

// ActionRequest is a tagged proposal action. Type selects which of the
// other fields apply:
//
//	transfer:         token, to, amount
//	parameter_update: target, parameter, value
//	call:             target, value, method, args
type ActionRequest struct {
	Type      string   `json:"type"`
	Token     string   `json:"token,omitempty"`
	To        string   `json:"to,omitempty"`
	Amount    string   `json:"amount,omitempty"`
	Target    string   `json:"target,omitempty"`
	Parameter string   `json:"parameter,omitempty"`
	Value     string   `json:"value,omitempty"`
	Method    string   `json:"method,omitempty"`
	Args      []string `json:"args,omitempty"`
}

// CallRequest is a raw call with ABI-encoded data
type CallRequest struct {
	Target common.Address `json:"target"`
	Value  string         `json:"value,omitempty"`
	Data   hexutil.Bytes  `json:"data"`
}

type ProposeResponse struct {
	Id common.Hash `json:"id"`
}

// VoteRequest is the body of POST /api/v1/proposals/{id}/votes. Support is
// "against", "for" or "abstain", or the matching number 0, 1 or 2
type VoteRequest struct {
	Support string `json:"support"`
	Reason  string `json:"reason,omitempty"`
}

type VoteResponse struct {
	Weight string `json:"weight"`
}

type QueueResponse struct {
	Eta int64 `json:"eta"`
}

type TreasuryResponse struct {
	DailyLimit  string `json:"daily_limit"`
	TodayTotal  string `json:"today_total"`
	Remaining   string `json:"remaining"`
	PeriodStart int64  `json:"period_start"`
	PeriodEnd   int64  `json:"period_end"`
}

type AssetResponse struct {
	Token   common.Address `json:"token"`
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Active  bool           `json:"active"`
	Balance string         `json:"balance"`
}

type WithdrawalRequest struct {
	Token  string `json:"token"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type WithdrawalResponse struct {
	Id        uint           `json:"id"`
	Token     common.Address `json:"token"`
	To        common.Address `json:"to"`
	Caller    common.Address `json:"caller"`
	Amount    string         `json:"amount"`
	Block     uint64         `json:"block"`
	Timestamp int64          `json:"timestamp"`
}

type DepositRequest struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type AccountResponse struct {
	Address  common.Address  `json:"address"`
	Balance  string          `json:"balance"`
	Votes    string          `json:"votes"`
	Delegate *common.Address `json:"delegate"`
}

type DelegateRequest struct {
	Delegatee string `json:"delegatee"`
}

// AdvanceRequest is the body of POST /api/v1/dev/advance
type AdvanceRequest struct {
	Blocks      uint64 `json:"blocks"`
	StepSeconds int64  `json:"step_seconds"`
}

// OperationResponse acknowledges a committed operation
type OperationResponse struct {
	RequestId string `json:"request_id"`
	Status    string `json:"status"`
}

// ErrorResponse represents an error response. Kind is the ledger error
// kind for rejected operations
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Kind       string `json:"kind,omitempty"`
	RequestId  string `json:"request_id,omitempty"`
}
