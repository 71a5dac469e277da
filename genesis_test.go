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

package numbat

import (
	"strings"
	"testing"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/config/genesis"
	"github.com/blinklabs-io/numbat/internal/test/testutil"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseGenesis = `network: unit
setupAdmin: "0x00000000000000000000000000000000000000a1"
governance:
  votingDelay: 1
  votingPeriod: 10
  proposalThreshold: "0"
  quorumNumerator: 4
timelock:
  minDelay: 30
treasury:
  dailyLimit: "1000"
  assets:
    - token: "0x00000000000000000000000000000000000000c0"
      name: USDC
  balances:
    - token: "0x00000000000000000000000000000000000000c0"
      amount: "500"
allocations:
  - account: "0x00000000000000000000000000000000000000b1"
    amount: "100"
`

func newGenesisEnv(t *testing.T) (*testutil.Env, *Contracts) {
	t.Helper()
	env := testutil.NewEnv(t)
	c, err := NewContracts(nil)
	require.NoError(t, err)
	require.NoError(t, c.Register(env.Router))
	return env, c
}

func parseGenesis(t *testing.T, doc string) *genesis.Genesis {
	t.Helper()
	g, err := genesis.NewGenesisFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	return g
}

func TestApplyGenesisWithoutHandOff(t *testing.T) {
	env, c := newGenesisEnv(t)
	g := parseGenesis(t, baseGenesis)
	admin := testutil.Addr(0xa1)
	env.MustDo(t, admin, func(lc *ledger.Context) error {
		return c.ApplyGenesis(lc, g)
	})
	env.View(t, func(lc *ledger.Context) error {
		isAdmin, err := c.Access.HasRole(lc, access.RoleAdmin, admin)
		require.NoError(t, err)
		assert.True(t, isAdmin)
		handedOff, err := c.Access.HandedOff(lc)
		require.NoError(t, err)
		assert.False(t, handedOff)

		asset, err := c.Treasury.Asset(lc, testutil.Addr(0xc0))
		require.NoError(t, err)
		assert.Equal(t, "erc20", asset.AssetType)
		assert.Equal(t, int64(500), asset.Balance.Int64())

		balance, err := c.Votes.BalanceOf(lc, testutil.Addr(0xb1))
		require.NoError(t, err)
		assert.Equal(t, int64(100), balance.Int64())
		// Undelegated tokens carry no votes
		votes, err := c.Votes.GetVotes(lc, testutil.Addr(0xb1))
		require.NoError(t, err)
		assert.Zero(t, votes.Sign())
		return nil
	})

	// The setup admin can still manage roles until hand-off
	env.MustDo(t, admin, func(lc *ledger.Context) error {
		return c.Access.Grant(lc, access.RoleTreasuryAdmin, testutil.Addr(0xd1))
	})

	// Genesis only applies to empty state
	err := env.Do(admin, func(lc *ledger.Context) error {
		return c.ApplyGenesis(lc, g)
	})
	assert.ErrorIs(t, err, ledger.ErrStatePrecondition)
}

func TestApplyGenesisRejectsGovernanceTokenBalance(t *testing.T) {
	env, c := newGenesisEnv(t)
	g := parseGenesis(t, baseGenesis+`balances:
  - token: "@token"
    account: "0x00000000000000000000000000000000000000b2"
    amount: "1"
`)
	err := env.Do(testutil.Addr(0xa1), func(lc *ledger.Context) error {
		return c.ApplyGenesis(lc, g)
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	assert.Contains(t, err.Error(), "balances[0]")

	// Nothing from the failed genesis was kept
	env.View(t, func(lc *ledger.Context) error {
		isAdmin, err := c.Access.HasRole(lc, access.RoleAdmin, testutil.Addr(0xa1))
		require.NoError(t, err)
		assert.False(t, isAdmin)
		return nil
	})
}
