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

package access

// ContractName is the router name of the access contract
const ContractName = "access"

const contractABI = `[
	{"type":"function","name":"grantRole","inputs":[{"name":"role","type":"string"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"revokeRole","inputs":[{"name":"role","type":"string"},{"name":"account","type":"address"}],"outputs":[]}
]`
