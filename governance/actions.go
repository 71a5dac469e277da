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

	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/ethereum/go-ethereum/common"
)

// Action is one step of a proposal. Every action encodes to a single call
// on a registered contract
type Action interface {
	Encode(r *ledger.Router) (timelock.Call, error)
	isAction()
}

// TransferAction withdraws funds from the treasury
type TransferAction struct {
	Token  common.Address
	To     common.Address
	Amount *big.Int
}

// ParameterUpdateAction changes a tunable parameter of a contract
type ParameterUpdateAction struct {
	Target    string
	Parameter string
	Value     *big.Int
}

// CallAction invokes an allowlisted method with textual arguments
type CallAction struct {
	Target common.Address
	Value  *big.Int
	Method string
	Args   []string
}

type parameterSetter struct {
	contract string
	method   string
}

// parameters maps the parameter names accepted by ParameterUpdateAction to
// their setters
var parameters = map[string]parameterSetter{
	"voting_delay":           {ContractName, "setVotingDelay"},
	"voting_period":          {ContractName, "setVotingPeriod"},
	"proposal_threshold":     {ContractName, "setProposalThreshold"},
	"quorum_numerator":       {ContractName, "updateQuorumNumerator"},
	"grace_period":           {ContractName, "setGracePeriod"},
	"min_delay":              {timelock.ContractName, "updateDelay"},
	"daily_withdrawal_limit": {treasury.ContractName, "setDailyWithdrawalLimit"},
}

func (TransferAction) isAction()        {}
func (ParameterUpdateAction) isAction() {}
func (CallAction) isAction()            {}

func (a TransferAction) Encode(r *ledger.Router) (timelock.Call, error) {
	c, err := contractByName(r, treasury.ContractName)
	if err != nil {
		return timelock.Call{}, err
	}
	if a.Amount == nil || a.Amount.Sign() <= 0 {
		return timelock.Call{}, ledger.InvalidInput("transfer amount must be positive")
	}
	data, err := c.Pack("withdraw", a.Token, a.To, a.Amount)
	if err != nil {
		return timelock.Call{}, err
	}
	return timelock.Call{Target: c.Address, Value: new(big.Int), Data: data}, nil
}

func (a ParameterUpdateAction) Encode(r *ledger.Router) (timelock.Call, error) {
	setter, ok := parameters[a.Parameter]
	if !ok {
		return timelock.Call{}, ledger.InvalidInput("unknown parameter %q", a.Parameter)
	}
	if a.Target != "" && a.Target != setter.contract {
		return timelock.Call{}, ledger.InvalidInput(
			"parameter %q belongs to %s, not %s",
			a.Parameter,
			setter.contract,
			a.Target,
		)
	}
	if a.Value == nil || a.Value.Sign() < 0 {
		return timelock.Call{}, ledger.InvalidInput("invalid value for %s", a.Parameter)
	}
	c, err := contractByName(r, setter.contract)
	if err != nil {
		return timelock.Call{}, err
	}
	data, err := c.Pack(setter.method, a.Value)
	if err != nil {
		return timelock.Call{}, err
	}
	return timelock.Call{Target: c.Address, Value: new(big.Int), Data: data}, nil
}

func (a CallAction) Encode(r *ledger.Router) (timelock.Call, error) {
	c := r.Contract(a.Target)
	if c == nil {
		return timelock.Call{}, ledger.InvalidInput("unknown call target %s", a.Target)
	}
	data, err := c.PackStrings(a.Method, a.Args)
	if err != nil {
		return timelock.Call{}, err
	}
	value := a.Value
	if value == nil {
		value = new(big.Int)
	}
	return timelock.Call{Target: c.Address, Value: value, Data: data}, nil
}

// EncodeActions turns actions into the calls a proposal carries
func EncodeActions(r *ledger.Router, actions []Action) ([]timelock.Call, error) {
	if len(actions) == 0 {
		return nil, ledger.InvalidInput("empty proposal")
	}
	ret := make([]timelock.Call, 0, len(actions))
	for i, action := range actions {
		if action == nil {
			return nil, ledger.InvalidInput("action %d is empty", i)
		}
		call, err := action.Encode(r)
		if err != nil {
			return nil, err
		}
		ret = append(ret, call)
	}
	return ret, nil
}

func contractByName(r *ledger.Router, name string) (*ledger.Contract, error) {
	c := r.ContractByName(name)
	if c == nil {
		return nil, ledger.InvalidInput("contract %s is not registered", name)
	}
	return c, nil
}
