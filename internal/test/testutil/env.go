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
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// StartTime is the timestamp of block 1 in every test environment
var StartTime = time.Unix(1_700_000_000, 0)

// Env is an in-memory chain with an executor and an empty router
type Env struct {
	DB       *database.Database
	Chain    *chain.Chain
	EventBus *event.EventBus
	Executor *ledger.Executor
	Router   *ledger.Router
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	eb := event.NewEventBus(nil, nil)
	t.Cleanup(func() {
		eb.Stop()
		_ = db.Close()
	})
	c, err := chain.New(chain.Config{
		Database:  db,
		EventBus:  eb,
		StartTime: StartTime,
	})
	require.NoError(t, err)
	router := ledger.NewRouter()
	return &Env{
		DB:       db,
		Chain:    c,
		EventBus: eb,
		Router:   router,
		Executor: ledger.NewExecutor(ledger.ExecutorConfig{
			Chain:    c,
			Database: db,
			EventBus: eb,
			Router:   router,
		}),
	}
}

// Do runs fn as sender in its own transaction
func (e *Env) Do(
	sender common.Address,
	fn func(*ledger.Context) error,
) error {
	return e.Executor.Execute(context.Background(), "test", sender, fn)
}

// MustDo is Do, failing the test on error
func (e *Env) MustDo(
	t *testing.T,
	sender common.Address,
	fn func(*ledger.Context) error,
) {
	t.Helper()
	require.NoError(t, e.Do(sender, fn))
}

// View runs fn read-only, failing the test on error
func (e *Env) View(t *testing.T, fn func(*ledger.Context) error) {
	t.Helper()
	require.NoError(t, e.Executor.View(context.Background(), fn))
}

// Advance seals blocks, each step apart
func (e *Env) Advance(t *testing.T, blocks uint64, step time.Duration) chain.Block {
	t.Helper()
	b, err := e.Chain.Advance(blocks, step)
	require.NoError(t, err)
	return b
}

// Addr returns a deterministic test address
func Addr(n uint64) common.Address {
	return common.BigToAddress(new(big.Int).SetUint64(n))
}
