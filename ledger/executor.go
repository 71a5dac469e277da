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

package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/event"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

type ExecutorConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
	Chain        *chain.Chain
	Database     *database.Database
	Router       *Router
}

// Executor runs operations one at a time, each in its own database
// transaction at the chain's open block
type Executor struct {
	logger   *slog.Logger
	chain    *chain.Chain
	db       *database.Database
	eventBus *event.EventBus
	router   *Router
	metrics  executorMetrics
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Router == nil {
		cfg.Router = NewRouter()
	}
	e := &Executor{
		logger:   cfg.Logger.With("component", "ledger"),
		chain:    cfg.Chain,
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		router:   cfg.Router,
	}
	if cfg.PromRegistry != nil {
		e.metrics.init(cfg.PromRegistry)
	}
	return e
}

func (e *Executor) Router() *Router {
	return e.router
}

func (e *Executor) Chain() *chain.Chain {
	return e.chain
}

// Execute runs fn as sender. Any error rolls back every change fn made and
// drops the events it emitted. Events are published after commit
func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	sender common.Address,
	fn func(*Context) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	var events []event.Event
	var block chain.Block
	err := e.chain.Execute(func(b chain.Block) error {
		block = b
		txn := e.db.Transaction(true)
		lc := NewContext(ctx, txn, b, sender, e.router)
		if err := txn.Do(func(*database.Txn) error { return fn(lc) }); err != nil {
			return err
		}
		events = lc.Events()
		return nil
	})
	e.metrics.observe(operation, start, err)
	if err != nil {
		e.logger.Debug(
			fmt.Sprintf("operation %s reverted: %s", operation, err),
			"sender", sender.Hex(),
			"block", block.Number,
		)
		return err
	}
	e.logger.Debug(
		fmt.Sprintf("operation %s committed", operation),
		"sender", sender.Hex(),
		"block", block.Number,
		"events", len(events),
	)
	if e.eventBus != nil {
		for _, evt := range events {
			e.eventBus.Publish(evt.Type, evt)
		}
	}
	return nil
}

// View runs fn against a read-only transaction at the open block. Changes
// made by fn are discarded
func (e *Executor) View(ctx context.Context, fn func(*Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.chain.View(func(b chain.Block) error {
		txn := e.db.Transaction(false)
		defer txn.Release()
		return fn(NewContext(ctx, txn, b, common.Address{}, e.router))
	})
}
