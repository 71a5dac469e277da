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

package treasury

// ContractName is the router name of the treasury
const ContractName = "treasury"

const contractABI = `[
	{"type":"function","name":"withdraw","inputs":[{"name":"token","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setDailyWithdrawalLimit","inputs":[{"name":"newLimit","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"registerAsset","inputs":[{"name":"token","type":"address"},{"name":"name","type":"string"},{"name":"assetType","type":"string"}],"outputs":[]},
	{"type":"function","name":"setAssetActive","inputs":[{"name":"token","type":"address"},{"name":"active","type":"bool"}],"outputs":[]}
]`
