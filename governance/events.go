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

	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/ethereum/go-ethereum/common"
)

const (
	ProposalCreatedEventType  event.EventType = "governance.proposal_created"
	VoteCastEventType         event.EventType = "governance.vote_cast"
	ProposalQueuedEventType   event.EventType = "governance.proposal_queued"
	ProposalExecutedEventType event.EventType = "governance.proposal_executed"
	ProposalCanceledEventType event.EventType = "governance.proposal_canceled"
	ParamsChangedEventType    event.EventType = "governance.params_changed"
)

type ProposalCreatedEvent struct {
	ProposalId    common.Hash
	Proposer      common.Address
	Calls         []timelock.Call
	Description   string
	SnapshotBlock uint64
	DeadlineBlock uint64
}

type VoteCastEvent struct {
	ProposalId common.Hash
	Voter      common.Address
	Weight     *big.Int
	Reason     string
	Support    uint8
}

type ProposalQueuedEvent struct {
	ProposalId  common.Hash
	OperationId common.Hash
	Eta         int64
}

type ProposalExecutedEvent struct {
	ProposalId common.Hash
	Executor   common.Address
}

type ProposalCanceledEvent struct {
	ProposalId common.Hash
	Canceler   common.Address
}

type ParamsChangedEvent struct {
	Parameter string
	Old       Params
	New       Params
}
