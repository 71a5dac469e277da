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

package access_test

import (
	"testing"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/internal/test/testutil"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	setupAdmin = testutil.Addr(1)
	alice      = testutil.Addr(2)
	bob        = testutil.Addr(3)
)

func newTestAccess(t *testing.T) (*testutil.Env, *access.Access) {
	t.Helper()
	env := testutil.NewEnv(t)
	a, err := access.New(access.Config{})
	require.NoError(t, err)
	require.NoError(t, env.Router.Register(a.Contract()))
	env.MustDo(t, setupAdmin, func(lc *ledger.Context) error {
		return a.Bootstrap(lc, setupAdmin)
	})
	return env, a
}

func TestBootstrapOnce(t *testing.T) {
	env, a := newTestAccess(t)
	err := env.Do(alice, func(lc *ledger.Context) error {
		return a.Bootstrap(lc, alice)
	})
	require.ErrorIs(t, err, ledger.ErrStatePrecondition)
	env.View(t, func(lc *ledger.Context) error {
		members, err := a.Members(lc, access.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, []common.Address{setupAdmin}, members)
		return nil
	})
}

func TestGrantRevokeRenounce(t *testing.T) {
	env, a := newTestAccess(t)
	// Only admin may grant
	err := env.Do(alice, func(lc *ledger.Context) error {
		return a.Grant(lc, access.RoleTreasuryAIOperator, alice)
	})
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	env.MustDo(t, setupAdmin, func(lc *ledger.Context) error {
		if err := a.Grant(lc, access.RoleTreasuryAIOperator, alice); err != nil {
			return err
		}
		// Granting twice is a no-op
		return a.Grant(lc, access.RoleTreasuryAIOperator, alice)
	})
	env.View(t, func(lc *ledger.Context) error {
		ok, err := a.HasRole(lc, access.RoleTreasuryAIOperator, alice)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, a.Check(lc.WithSender(alice), access.RoleTreasuryAIOperator))
		require.ErrorIs(t, a.Check(lc.WithSender(bob), access.RoleTreasuryAIOperator), ledger.ErrUnauthorized)
		require.NoError(t, a.CheckAny(lc.WithSender(alice), access.RoleTreasuryGovernance, access.RoleTreasuryAIOperator))
		return nil
	})

	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return a.Renounce(lc, access.RoleTreasuryAIOperator)
	})
	env.MustDo(t, setupAdmin, func(lc *ledger.Context) error {
		return a.Grant(lc, access.RoleGovernanceGuardian, bob)
	})
	env.MustDo(t, setupAdmin, func(lc *ledger.Context) error {
		return a.Revoke(lc, access.RoleGovernanceGuardian, bob)
	})
	env.View(t, func(lc *ledger.Context) error {
		ok, err := a.HasRole(lc, access.RoleTreasuryAIOperator, alice)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = a.HasRole(lc, access.RoleGovernanceGuardian, bob)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})

	err = env.Do(setupAdmin, func(lc *ledger.Context) error {
		return a.Grant(lc, access.Role("superuser"), bob)
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestCheckOpen(t *testing.T) {
	env, a := newTestAccess(t)
	env.View(t, func(lc *ledger.Context) error {
		require.ErrorIs(t, a.CheckOpen(lc.WithSender(bob), access.RoleTimelockExecutor), ledger.ErrUnauthorized)
		return nil
	})
	env.MustDo(t, setupAdmin, func(lc *ledger.Context) error {
		return a.Grant(lc, access.RoleTimelockExecutor, common.Address{})
	})
	env.View(t, func(lc *ledger.Context) error {
		require.NoError(t, a.CheckOpen(lc.WithSender(bob), access.RoleTimelockExecutor))
		// Strict checks ignore the open grant
		require.ErrorIs(t, a.Check(lc.WithSender(bob), access.RoleTimelockExecutor), ledger.ErrUnauthorized)
		return nil
	})
}

func TestHandOffIsOneWay(t *testing.T) {
	env, a := newTestAccess(t)
	timelock := ledger.ContractAddress("timelock")
	env.MustDo(t, setupAdmin, func(lc *ledger.Context) error {
		return a.HandOff(lc, timelock)
	})
	env.View(t, func(lc *ledger.Context) error {
		members, err := a.Members(lc, access.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, []common.Address{timelock}, members)
		sealed, err := a.HandedOff(lc)
		require.NoError(t, err)
		assert.True(t, sealed)
		return nil
	})
	// The setup admin lost admin
	err := env.Do(setupAdmin, func(lc *ledger.Context) error {
		return a.Grant(lc, access.RoleAdmin, setupAdmin)
	})
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	// Even the new admin cannot hand off again
	err = env.Do(timelock, func(lc *ledger.Context) error {
		return a.HandOff(lc, setupAdmin)
	})
	require.ErrorIs(t, err, ledger.ErrStatePrecondition)
}

func TestGrantThroughRouter(t *testing.T) {
	env, a := newTestAccess(t)
	timelock := ledger.ContractAddress("timelock")
	env.MustDo(t, setupAdmin, func(lc *ledger.Context) error {
		return a.HandOff(lc, timelock)
	})
	data, err := a.Contract().Pack("grantRole", string(access.RoleGovernanceGuardian), bob)
	require.NoError(t, err)
	// Called by anyone other than the admin the call reverts
	err = env.Do(alice, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, alice, a.Contract().Address, nil, data)
	})
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	env.MustDo(t, alice, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, timelock, a.Contract().Address, nil, data)
	})
	env.View(t, func(lc *ledger.Context) error {
		ok, err := a.HasRole(lc, access.RoleGovernanceGuardian, bob)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
}
