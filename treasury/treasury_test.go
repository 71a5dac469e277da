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

package treasury_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/internal/test/testutil"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/blinklabs-io/numbat/votes"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin     = testutil.Addr(1)
	operator  = testutil.Addr(2)
	gov       = testutil.Addr(3)
	recipient = testutil.Addr(4)
	outsider  = testutil.Addr(5)
	usdc      = testutil.Addr(0xc0)
)

// tenths returns n tenths of a whole coin with 18 decimals
func tenths(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(100_000_000_000_000_000))
}

func coins(n int64) *big.Int {
	return tenths(n * 10)
}

type fixture struct {
	env *testutil.Env
	tr  *treasury.Treasury
}

func newFixture(t *testing.T, limit *big.Int) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	a, err := access.New(access.Config{})
	require.NoError(t, err)
	v, err := votes.New(votes.Config{})
	require.NoError(t, err)
	tr, err := treasury.New(treasury.Config{Access: a, Tokens: v})
	require.NoError(t, err)
	require.NoError(t, env.Router.Register(tr.Contract()))
	env.MustDo(t, admin, func(lc *ledger.Context) error {
		if err := a.Bootstrap(lc, admin); err != nil {
			return err
		}
		grants := []struct {
			role    access.Role
			account common.Address
		}{
			{access.RoleTreasuryAdmin, admin},
			{access.RoleTreasuryAIOperator, operator},
			{access.RoleTreasuryGovernance, gov},
		}
		for _, g := range grants {
			if err := a.Grant(lc, g.role, g.account); err != nil {
				return err
			}
		}
		if err := tr.Initialize(lc, limit); err != nil {
			return err
		}
		if err := tr.RegisterAsset(lc, usdc, "USDC", treasury.AssetTypeERC20); err != nil {
			return err
		}
		if err := lc.DB().SetBalance(ledger.NativeToken, tr.Address(), coins(5000), lc.Txn()); err != nil {
			return err
		}
		return lc.DB().SetBalance(usdc, tr.Address(), coins(5000), lc.Txn())
	})
	return &fixture{env: env, tr: tr}
}

func (f *fixture) withdraw(
	caller common.Address,
	token common.Address,
	amount *big.Int,
) error {
	return f.env.Do(caller, func(lc *ledger.Context) error {
		return f.tr.Withdraw(lc, token, recipient, amount)
	})
}

func (f *fixture) ledger(t *testing.T) *treasury.Ledger {
	t.Helper()
	var ret *treasury.Ledger
	f.env.View(t, func(lc *ledger.Context) error {
		var err error
		ret, err = f.tr.Ledger(lc)
		return err
	})
	return ret
}

func (f *fixture) balance(t *testing.T, token, account common.Address) *big.Int {
	t.Helper()
	var ret *big.Int
	f.env.View(t, func(lc *ledger.Context) error {
		var err error
		ret, err = lc.DB().GetBalance(token, account, lc.Txn())
		return err
	})
	return ret
}

func TestDailyCap(t *testing.T) {
	f := newFixture(t, coins(1000))
	require.NoError(t, f.withdraw(operator, ledger.NativeToken, coins(500)))
	require.NoError(t, f.withdraw(gov, ledger.NativeToken, tenths(4995)))

	err := f.withdraw(operator, ledger.NativeToken, coins(1))
	require.ErrorIs(t, err, ledger.ErrResourceLimit)
	assert.EqualError(t, err, "daily withdrawal limit exceeded")

	// The rejection changed nothing
	wl := f.ledger(t)
	assert.Equal(t, tenths(9995), wl.TodayTotal)
	assert.Equal(t, tenths(5), wl.Remaining)
	assert.Equal(t, tenths(9995), f.balance(t, ledger.NativeToken, recipient))
	f.env.View(t, func(lc *ledger.Context) error {
		history, err := f.tr.Withdrawals(lc, 0)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, gov.Bytes(), history[0].Caller)
		assert.Equal(t, tenths(4995), history[0].Amount.Big())
		return nil
	})
}

func TestWindowReset(t *testing.T) {
	f := newFixture(t, coins(1000))
	require.NoError(t, f.withdraw(operator, ledger.NativeToken, coins(800)))
	f.env.Advance(t, 1, 86399*time.Second)
	require.ErrorIs(t, f.withdraw(operator, ledger.NativeToken, coins(800)), ledger.ErrResourceLimit)
	f.env.Advance(t, 1, time.Second)
	wl := f.ledger(t)
	assert.Equal(t, int64(0), wl.TodayTotal.Int64())
	assert.Equal(t, coins(1000), wl.Remaining)
	require.NoError(t, f.withdraw(operator, ledger.NativeToken, coins(800)))
	wl = f.ledger(t)
	assert.Equal(t, coins(800), wl.TodayTotal)
	assert.Equal(t, testutil.StartTime.Unix()+treasury.WindowSeconds, wl.PeriodStart)
}

func TestSharedCounterAcrossAssets(t *testing.T) {
	f := newFixture(t, coins(1000))
	require.NoError(t, f.withdraw(operator, ledger.NativeToken, coins(600)))
	require.ErrorIs(t, f.withdraw(operator, usdc, coins(500)), ledger.ErrResourceLimit)
	require.NoError(t, f.withdraw(operator, usdc, coins(400)))
	assert.Equal(t, coins(400), f.balance(t, usdc, recipient))
	assert.Equal(t, coins(4600), f.balance(t, usdc, f.tr.Address()))
}

func TestLimitCheckedBeforeBalance(t *testing.T) {
	f := newFixture(t, coins(10000))
	err := f.withdraw(operator, ledger.NativeToken, coins(6000))
	require.ErrorIs(t, err, ledger.ErrResourceLimit)
	assert.EqualError(t, err, "insufficient balance")
	err = f.withdraw(operator, ledger.NativeToken, coins(20000))
	assert.EqualError(t, err, "daily withdrawal limit exceeded")
	assert.Equal(t, int64(0), f.ledger(t).TodayTotal.Int64())
}

func TestWithdrawValidation(t *testing.T) {
	f := newFixture(t, coins(1000))
	tests := []struct {
		name   string
		caller common.Address
		token  common.Address
		amount *big.Int
		err    error
	}{
		{"unauthorized", outsider, ledger.NativeToken, coins(1), ledger.ErrUnauthorized},
		{"admin is not a withdrawer", admin, ledger.NativeToken, coins(1), ledger.ErrUnauthorized},
		{"zero amount", operator, ledger.NativeToken, big.NewInt(0), ledger.ErrInvalidInput},
		{"unknown asset", operator, testutil.Addr(0xdd), coins(1), ledger.ErrInvalidInput},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.ErrorIs(t, f.withdraw(test.caller, test.token, test.amount), test.err)
		})
	}
	f.env.MustDo(t, admin, func(lc *ledger.Context) error {
		return f.tr.SetAssetActive(lc, usdc, false)
	})
	require.ErrorIs(t, f.withdraw(operator, usdc, coins(1)), ledger.ErrStatePrecondition)
}

func TestSetDailyWithdrawalLimit(t *testing.T) {
	f := newFixture(t, coins(1000))
	err := f.env.Do(operator, func(lc *ledger.Context) error {
		return f.tr.SetDailyWithdrawalLimit(lc, coins(2000))
	})
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	err = f.env.Do(admin, func(lc *ledger.Context) error {
		return f.tr.SetDailyWithdrawalLimit(lc, big.NewInt(0))
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	require.NoError(t, f.withdraw(operator, ledger.NativeToken, coins(900)))
	f.env.MustDo(t, admin, func(lc *ledger.Context) error {
		return f.tr.SetDailyWithdrawalLimit(lc, coins(2000))
	})
	wl := f.ledger(t)
	assert.Equal(t, coins(2000), wl.DailyLimit)
	assert.Equal(t, coins(900), wl.TodayTotal)
	assert.Equal(t, coins(1100), wl.Remaining)
}

func TestAssetRegistry(t *testing.T) {
	f := newFixture(t, coins(1000))
	dai := testutil.Addr(0xda)
	tests := []struct {
		name      string
		token     common.Address
		assetName string
		assetType string
		err       error
	}{
		{"duplicate token", usdc, "USDC2", treasury.AssetTypeERC20, ledger.ErrStatePrecondition},
		{"duplicate name", dai, "USDC", treasury.AssetTypeERC20, ledger.ErrStatePrecondition},
		{"native with token address", dai, "DAI", treasury.AssetTypeNative, ledger.ErrInvalidInput},
		{"unknown type", dai, "DAI", "nft", ledger.ErrInvalidInput},
		{"empty name", dai, " ", treasury.AssetTypeERC20, ledger.ErrInvalidInput},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := f.env.Do(admin, func(lc *ledger.Context) error {
				return f.tr.RegisterAsset(lc, test.token, test.assetName, test.assetType)
			})
			require.ErrorIs(t, err, test.err)
		})
	}
	f.env.MustDo(t, gov, func(lc *ledger.Context) error {
		return f.tr.RegisterAsset(lc, dai, "DAI", treasury.AssetTypeERC20)
	})
	f.env.View(t, func(lc *ledger.Context) error {
		assets, err := f.tr.Assets(lc)
		require.NoError(t, err)
		require.Len(t, assets, 3)
		assert.Equal(t, treasury.AssetTypeNative, assets[0].Name)
		assert.Equal(t, coins(5000), assets[0].Balance)
		assert.Equal(t, "DAI", assets[2].Name)
		_, err = f.tr.Asset(lc, testutil.Addr(0xee))
		require.ErrorIs(t, err, models.ErrTreasuryAssetNotFound)
		return nil
	})
}

func TestDeposit(t *testing.T) {
	f := newFixture(t, coins(1000))
	f.env.MustDo(t, admin, func(lc *ledger.Context) error {
		return lc.DB().SetBalance(ledger.NativeToken, outsider, coins(10), lc.Txn())
	})
	f.env.MustDo(t, outsider, func(lc *ledger.Context) error {
		return f.tr.Deposit(lc, ledger.NativeToken, coins(4))
	})
	// Native value attached to a routed call
	data, err := f.tr.Contract().Pack("deposit", ledger.NativeToken, coins(3))
	require.NoError(t, err)
	f.env.MustDo(t, outsider, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, outsider, f.tr.Address(), coins(3), data)
	})
	err = f.env.Do(outsider, func(lc *ledger.Context) error {
		return f.tr.Deposit(lc, ledger.NativeToken, coins(4))
	})
	require.ErrorIs(t, err, ledger.ErrResourceLimit)
	assert.Equal(t, coins(3), f.balance(t, ledger.NativeToken, outsider))
	assert.Equal(t, coins(5007), f.balance(t, ledger.NativeToken, f.tr.Address()))
}

func TestWithdrawThroughRouter(t *testing.T) {
	f := newFixture(t, coins(1000))
	data, err := f.tr.Contract().Pack("withdraw", usdc, recipient, coins(10))
	require.NoError(t, err)
	err = f.env.Do(outsider, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, outsider, f.tr.Address(), nil, data)
	})
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	f.env.MustDo(t, outsider, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, gov, f.tr.Address(), nil, data)
	})
	assert.Equal(t, coins(10), f.balance(t, usdc, recipient))
}
