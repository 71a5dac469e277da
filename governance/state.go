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
	"encoding/json"
	"fmt"
	"strings"
)

// ProposalState is derived from a proposal's record and the current block
type ProposalState int

const (
	StatePending ProposalState = iota
	StateActive
	StateCanceled
	StateDefeated
	StateSucceeded
	StateQueued
	StateExpired
	StateExecuted
)

var stateNames = map[ProposalState]string{
	StatePending:   "Pending",
	StateActive:    "Active",
	StateCanceled:  "Canceled",
	StateDefeated:  "Defeated",
	StateSucceeded: "Succeeded",
	StateQueued:    "Queued",
	StateExpired:   "Expired",
	StateExecuted:  "Executed",
}

func (s ProposalState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ProposalState(%d)", int(s))
}

func (s ProposalState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseProposalState accepts a state name in any case
func ParseProposalState(name string) (ProposalState, error) {
	for state, stateName := range stateNames {
		if strings.EqualFold(stateName, name) {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown proposal state %q", name)
}

// Final reports whether no further transition is possible
func (s ProposalState) Final() bool {
	switch s {
	case StateCanceled, StateDefeated, StateExpired, StateExecuted:
		return true
	default:
		return false
	}
}
