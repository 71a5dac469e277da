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

package ledger_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterABI = `[
	{"type":"function","name":"add","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setOwner","inputs":[{"name":"owner","type":"address"},{"name":"enabled","type":"bool"}],"outputs":[]},
	{"type":"function","name":"selfDestruct","inputs":[],"outputs":[]},
	{"type":"function","name":"recurse","inputs":[],"outputs":[]}
]`

type counter struct {
	total   *big.Int
	callers []common.Address
}

func newTestExecutor(t *testing.T, reg prometheus.Registerer, eb *event.EventBus) (*ledger.Executor, *database.Database) {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	c, err := chain.New(chain.Config{Database: db, StartTime: time.Unix(1_700_000_000, 0)})
	require.NoError(t, err)
	return ledger.NewExecutor(ledger.ExecutorConfig{
		Chain:        c,
		Database:     db,
		PromRegistry: reg,
		EventBus:     eb,
	}), db
}

func registerCounter(t *testing.T, r *ledger.Router) (*ledger.Contract, *counter) {
	t.Helper()
	state := &counter{total: new(big.Int)}
	c, err := ledger.NewContract("counter", counterABI)
	require.NoError(t, err)
	require.NoError(t, c.Handle("add", func(lc *ledger.Context, _ *big.Int, args []any) error {
		amount := args[0].(*big.Int)
		if amount.Sign() == 0 {
			return ledger.InvalidInput("zero amount")
		}
		state.total.Add(state.total, amount)
		state.callers = append(state.callers, lc.Sender())
		return nil
	}))
	require.NoError(t, c.Handle("setOwner", func(*ledger.Context, *big.Int, []any) error {
		return nil
	}))
	require.NoError(t, c.Handle("recurse", func(lc *ledger.Context, _ *big.Int, _ []any) error {
		data, err := c.Pack("recurse")
		if err != nil {
			return err
		}
		return lc.Router().Call(lc, c.Address, c.Address, nil, data)
	}))
	require.Error(t, c.Handle("missing", nil))
	require.NoError(t, r.Register(c))
	return c, state
}

func TestContractAddressDeterministic(t *testing.T) {
	assert.Equal(t, ledger.ContractAddress("treasury"), ledger.ContractAddress("treasury"))
	assert.NotEqual(t, ledger.ContractAddress("treasury"), ledger.ContractAddress("timelock"))
	assert.NotEqual(t, common.Address{}, ledger.ContractAddress("treasury"))
}

func TestRouterResolve(t *testing.T) {
	r := ledger.NewRouter()
	c, _ := registerCounter(t, r)
	assert.Equal(t, []string{"add", "recurse", "setOwner"}, c.Methods())
	assert.Same(t, c, r.ContractByName("counter"))
	require.Error(t, r.Register(c))

	data, err := c.Pack("add", big.NewInt(5))
	require.NoError(t, err)
	_, m, args, err := r.Resolve(c.Address, data)
	require.NoError(t, err)
	assert.Equal(t, "add", m.Name)
	assert.Equal(t, 0, big.NewInt(5).Cmp(args[0].(*big.Int)))

	_, _, _, err = r.Resolve(common.HexToAddress("0x1234"), data)
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	_, _, _, err = r.Resolve(c.Address, []byte{0x01})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	_, _, _, err = r.Resolve(c.Address, []byte{0xde, 0xad, 0xbe, 0xef})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)

	// Present in the ABI but not allowlisted
	_, err = c.Pack("selfDestruct")
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	raw, err := c.ABI.Pack("selfDestruct")
	require.NoError(t, err)
	_, _, _, err = r.Resolve(c.Address, raw)
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestPackStrings(t *testing.T) {
	r := ledger.NewRouter()
	c, _ := registerCounter(t, r)
	data, err := c.PackStrings("add", []string{"1000000000000000000000"})
	require.NoError(t, err)
	expected, _ := new(big.Int).SetString("1000000000000000000000", 10)
	direct, err := c.Pack("add", expected)
	require.NoError(t, err)
	assert.Equal(t, direct, data)

	_, err = c.PackStrings("setOwner", []string{"0x00000000000000000000000000000000000000aa", "true"})
	require.NoError(t, err)
	_, err = c.PackStrings("setOwner", []string{"not-an-address", "true"})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	_, err = c.PackStrings("add", []string{"-1"})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	_, err = c.PackStrings("add", nil)
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	_, err = c.PackStrings("nope", nil)
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestExecutorCommitAndRevert(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, evtCh := eb.Subscribe("test.event")
	exec, db := newTestExecutor(t, reg, eb)
	token := common.HexToAddress("0x77")
	account := common.HexToAddress("0x88")
	ctx := context.Background()

	err := exec.Execute(ctx, "credit", account, func(lc *ledger.Context) error {
		assert.Equal(t, account, lc.Sender())
		assert.Equal(t, uint64(1), lc.Block().Number)
		lc.Emit("test.event", "committed")
		return lc.DB().SetBalance(token, lc.Sender(), big.NewInt(10), lc.Txn())
	})
	require.NoError(t, err)

	err = exec.Execute(ctx, "credit", account, func(lc *ledger.Context) error {
		lc.Emit("test.event", "reverted")
		if err := lc.DB().SetBalance(token, lc.Sender(), big.NewInt(99), lc.Txn()); err != nil {
			return err
		}
		return ledger.ResourceLimit("insufficient balance")
	})
	require.ErrorIs(t, err, ledger.ErrResourceLimit)

	err = exec.View(ctx, func(lc *ledger.Context) error {
		bal, err := lc.DB().GetBalance(token, account, lc.Txn())
		require.NoError(t, err)
		assert.Equal(t, int64(10), bal.Int64())
		return nil
	})
	require.NoError(t, err)
	bal, err := db.GetBalance(token, account, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal.Int64())

	select {
	case evt := <-evtCh:
		assert.Equal(t, "committed", evt.Data)
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for event")
	}
	select {
	case evt := <-evtCh:
		t.Fatalf("unexpected event from reverted operation: %v", evt.Data)
	default:
	}

	expected := `
# HELP numbat_ledger_operations_total operations executed by outcome
# TYPE numbat_ledger_operations_total counter
numbat_ledger_operations_total{operation="credit",outcome="resource_limit"} 1
numbat_ledger_operations_total{operation="credit",outcome="success"} 1
`
	require.NoError(
		t,
		testutil.GatherAndCompare(
			reg,
			strings.NewReader(expected),
			"numbat_ledger_operations_total",
		),
	)
}

func TestExecutorCanceledContext(t *testing.T) {
	exec, _ := newTestExecutor(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := exec.Execute(ctx, "noop", common.Address{}, func(*ledger.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRouterCall(t *testing.T) {
	exec, db := newTestExecutor(t, nil, nil)
	c, state := registerCounter(t, exec.Router())
	caller := common.HexToAddress("0xca11")
	require.NoError(t, db.SetBalance(ledger.NativeToken, caller, big.NewInt(100), nil))
	ctx := context.Background()

	data, err := c.Pack("add", big.NewInt(3))
	require.NoError(t, err)
	err = exec.Execute(ctx, "call", common.HexToAddress("0xee"), func(lc *ledger.Context) error {
		return lc.Router().Call(lc, caller, c.Address, big.NewInt(40), data)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), state.total.Int64())
	assert.Equal(t, []common.Address{caller}, state.callers)
	bal, err := db.GetBalance(ledger.NativeToken, c.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(40), bal.Int64())
	bal, err = db.GetBalance(ledger.NativeToken, caller, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal.Int64())

	// Value larger than the caller's balance
	err = exec.Execute(ctx, "call", caller, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, caller, c.Address, big.NewInt(1000), data)
	})
	require.ErrorIs(t, err, ledger.ErrResourceLimit)

	// Handler errors keep their kind through the call wrapper
	zero, err := c.Pack("add", big.NewInt(0))
	require.NoError(t, err)
	err = exec.Execute(ctx, "call", caller, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, caller, c.Address, nil, zero)
	})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	var lerr *ledger.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "zero amount", lerr.Reason)

	recurse, err := c.Pack("recurse")
	require.NoError(t, err)
	err = exec.Execute(ctx, "call", caller, func(lc *ledger.Context) error {
		return lc.Router().Call(lc, caller, c.Address, nil, recurse)
	})
	require.ErrorIs(t, err, ledger.ErrStatePrecondition)
}
