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

package testutil

import (
	"math/big"
	"testing"

	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const counterABI = `[
	{"type":"function","name":"add","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"fail","inputs":[],"outputs":[]}
]`

// RegisterCounter registers a contract whose add method credits the
// caller's counter and whose fail method always reverts. Counters live in
// the balance table under the contract's own token address
func RegisterCounter(t *testing.T, r *ledger.Router) *ledger.Contract {
	t.Helper()
	c, err := ledger.NewContract("counter", counterABI)
	require.NoError(t, err)
	require.NoError(t, c.Handle("add", func(lc *ledger.Context, _ *big.Int, args []any) error {
		cur, err := lc.DB().GetBalance(c.Address, lc.Sender(), lc.Txn())
		if err != nil {
			return err
		}
		return lc.DB().SetBalance(c.Address, lc.Sender(), cur.Add(cur, args[0].(*big.Int)), lc.Txn())
	}))
	require.NoError(t, c.Handle("fail", func(*ledger.Context, *big.Int, []any) error {
		return ledger.Precondition("counter failure")
	}))
	require.NoError(t, r.Register(c))
	return c
}

// CounterValue returns the counter of account
func CounterValue(
	t *testing.T,
	lc *ledger.Context,
	c *ledger.Contract,
	account common.Address,
) int64 {
	t.Helper()
	v, err := lc.DB().GetBalance(c.Address, account, lc.Txn())
	require.NoError(t, err)
	return v.Int64()
}
