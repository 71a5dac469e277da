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

package votes_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/blinklabs-io/numbat/internal/test/testutil"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/votes"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = testutil.Addr(1)
	bob   = testutil.Addr(2)
	carol = testutil.Addr(3)
)

func newTestVotes(t *testing.T) (*testutil.Env, *votes.Votes) {
	t.Helper()
	env := testutil.NewEnv(t)
	v, err := votes.New(votes.Config{})
	require.NoError(t, err)
	require.NoError(t, env.Router.Register(v.Contract()))
	return env, v
}

func requireVotes(
	t *testing.T,
	env *testutil.Env,
	fn func(lc *ledger.Context) (*big.Int, error),
	expected int64,
) {
	t.Helper()
	env.View(t, func(lc *ledger.Context) error {
		got, err := fn(lc)
		require.NoError(t, err)
		assert.Equal(t, expected, got.Int64())
		return nil
	})
}

func TestDelegationAndCheckpoints(t *testing.T) {
	env, v := newTestVotes(t)
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return v.Mint(lc, alice, big.NewInt(100))
	})
	// Undelegated tokens carry no weight
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.GetVotes(lc, alice)
	}, 0)
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return v.Delegate(lc, alice)
	})
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.GetVotes(lc, alice)
	}, 100)
	env.Advance(t, 1, time.Second)

	env.MustDo(t, bob, func(lc *ledger.Context) error {
		return v.Delegate(lc, carol)
	})
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return v.Transfer(lc, bob, big.NewInt(40))
	})
	env.View(t, func(lc *ledger.Context) error {
		assert.Equal(t, uint64(2), lc.Block().Number)
		cur, err := v.GetVotes(lc, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(60), cur.Int64())
		cur, err = v.GetVotes(lc, carol)
		require.NoError(t, err)
		assert.Equal(t, int64(40), cur.Int64())
		// Lookups see the start of the block
		past, err := v.GetPastVotes(lc, alice, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), past.Int64())
		past, err = v.GetPastVotes(lc, alice, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(100), past.Int64())
		past, err = v.GetPastVotes(lc, carol, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(0), past.Int64())
		supply, err := v.GetPastTotalSupply(lc, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(100), supply.Int64())
		delegatee, err := v.Delegates(lc, bob)
		require.NoError(t, err)
		assert.Equal(t, carol, delegatee)
		_, err = v.GetPastVotes(lc, alice, 3)
		require.ErrorIs(t, err, ledger.ErrStatePrecondition)
		return nil
	})
	env.Advance(t, 1, time.Second)
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.GetPastVotes(lc, carol, 3)
	}, 40)

	// Redelegating moves the whole balance
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return v.Delegate(lc, carol)
	})
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.GetVotes(lc, carol)
	}, 100)
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.GetVotes(lc, alice)
	}, 0)
}

func TestTransferRejected(t *testing.T) {
	env, v := newTestVotes(t)
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		if err := v.Mint(lc, alice, big.NewInt(10)); err != nil {
			return err
		}
		return v.Delegate(lc, alice)
	})
	err := env.Do(alice, func(lc *ledger.Context) error {
		return v.Transfer(lc, bob, big.NewInt(11))
	})
	require.ErrorIs(t, err, ledger.ErrResourceLimit)
	err = env.Do(alice, func(lc *ledger.Context) error {
		return v.Transfer(lc, common.Address{}, big.NewInt(1))
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	err = env.Do(alice, func(lc *ledger.Context) error {
		return v.Mint(lc, bob, big.NewInt(0))
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.BalanceOf(lc, alice)
	}, 10)
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.BalanceOf(lc, bob)
	}, 0)
}

func TestTransferOtherToken(t *testing.T) {
	env, v := newTestVotes(t)
	usdc := testutil.Addr(0xc0)
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		if err := lc.DB().SetBalance(usdc, alice, big.NewInt(500), lc.Txn()); err != nil {
			return err
		}
		if err := v.Delegate(lc, alice); err != nil {
			return err
		}
		return v.TransferToken(lc, usdc, alice, bob, big.NewInt(200))
	})
	env.View(t, func(lc *ledger.Context) error {
		bal, err := lc.DB().GetBalance(usdc, bob, lc.Txn())
		require.NoError(t, err)
		assert.Equal(t, int64(200), bal.Int64())
		bal, err = lc.DB().GetBalance(usdc, alice, lc.Txn())
		require.NoError(t, err)
		assert.Equal(t, int64(300), bal.Int64())
		cur, err := v.GetVotes(lc, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(0), cur.Int64())
		return nil
	})
}

func TestTransferThroughRouter(t *testing.T) {
	env, v := newTestVotes(t)
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return v.Mint(lc, alice, big.NewInt(50))
	})
	data, err := v.Contract().Pack("transfer", bob, big.NewInt(20))
	require.NoError(t, err)
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, alice, v.Token(), nil, data)
	})
	requireVotes(t, env, func(lc *ledger.Context) (*big.Int, error) {
		return v.BalanceOf(lc, bob)
	}, 20)
	env.View(t, func(lc *ledger.Context) error {
		total, err := v.TotalSupply(lc)
		require.NoError(t, err)
		assert.Equal(t, int64(50), total.Int64())
		return nil
	})
}
