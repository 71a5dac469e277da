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

// ContractName is the router name of the governor
const ContractName = "governor"

const contractABI = `[
	{"type":"function","name":"setVotingDelay","inputs":[{"name":"newVotingDelay","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setVotingPeriod","inputs":[{"name":"newVotingPeriod","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setProposalThreshold","inputs":[{"name":"newProposalThreshold","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"updateQuorumNumerator","inputs":[{"name":"newQuorumNumerator","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setGracePeriod","inputs":[{"name":"newGracePeriod","type":"uint256"}],"outputs":[]}
]`
