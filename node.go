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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/numbat/api"
	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/treasury"
)

var ErrAlreadyStarted = errors.New("node already started")

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	chain         *chain.Chain
	router        *ledger.Router
	executor      *ledger.Executor
	contracts     *Contracts
	api           *api.Server
	runCtx        context.Context
	runCancel     context.CancelFunc
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	startMutex    sync.Mutex
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	contracts, err := NewContracts(cfg.logger)
	if err != nil {
		return nil, err
	}
	n := &Node{
		config:    cfg,
		eventBus:  event.NewEventBus(cfg.promRegistry, cfg.logger),
		contracts: contracts,
		done:      make(chan struct{}),
	}
	return n, nil
}

// Run starts the node and blocks until ctx is done or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return errors.Join(err, n.Stop())
	}
	select {
	case <-ctx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

// Start opens the ledger, applying genesis to a new chain, then starts the
// block producer and the API server. A failed start still needs Stop to
// release what was opened
func (n *Node) Start(ctx context.Context) error {
	n.startMutex.Lock()
	defer n.startMutex.Unlock()
	if n.runCtx != nil {
		return ErrAlreadyStarted
	}
	n.runCtx, n.runCancel = context.WithCancel(ctx)
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
	})
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"database stores are out of sync",
				"component", "node",
				"error", err,
			)
		}
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load chain
	var startTime time.Time
	if n.config.genesis.StartTime > 0 {
		startTime = time.Unix(n.config.genesis.StartTime, 0)
	}
	n.chain, err = chain.New(chain.Config{
		Logger:        n.config.logger,
		PromRegistry:  n.config.promRegistry,
		EventBus:      n.eventBus,
		Database:      n.db,
		BlockInterval: n.config.blockInterval,
		StartTime:     startTime,
		Now:           n.config.now,
	})
	if err != nil {
		return err
	}
	n.router = ledger.NewRouter()
	if err := n.contracts.Register(n.router); err != nil {
		return err
	}
	n.executor = ledger.NewExecutor(ledger.ExecutorConfig{
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
		EventBus:     n.eventBus,
		Chain:        n.chain,
		Database:     n.db,
		Router:       n.router,
	})
	if err := n.loadGenesis(); err != nil {
		return err
	}
	n.logEvents()
	if err := n.chain.Start(n.runCtx); err != nil {
		return err
	}
	// Configure API
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.Config{
				ListenAddress: n.config.apiListenAddress,
				DevMode:       n.config.devMode,
			},
			api.NewNodeAdapter(api.AdapterConfig{
				Executor: n.executor,
				Governor: n.contracts.Governor,
				Treasury: n.contracts.Treasury,
				Votes:    n.contracts.Votes,
			}),
			n.config.logger,
		)
		if err := n.api.Start(n.runCtx); err != nil {
			return err
		}
	}
	tip := n.chain.Tip()
	n.config.logger.Info(
		fmt.Sprintf("node started at block %d", tip.Number),
		"component", "node",
		"network", n.config.genesis.Network,
	)
	return nil
}

// logEvents reports governance outcomes and treasury movements
func (n *Node) logEvents() {
	for _, eventType := range []event.EventType{
		governance.ProposalCreatedEventType,
		governance.ProposalQueuedEventType,
		governance.ProposalExecutedEventType,
		governance.ProposalCanceledEventType,
		governance.ParamsChangedEventType,
		treasury.WithdrawalEventType,
		treasury.LimitChangedEventType,
	} {
		n.eventBus.SubscribeFunc(eventType, func(evt event.Event) {
			n.config.logger.Info(
				string(evt.Type),
				"component", "node",
				"data", evt.Data,
			)
		})
	}
}

// Executor runs operations against the node's ledger
func (n *Node) Executor() *ledger.Executor {
	return n.executor
}

func (n *Node) Contracts() *Contracts {
	return n.contracts
}

func (n *Node) Chain() *chain.Chain {
	return n.chain
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// APIAddr returns the address the API server listens on, or an empty
// string when it is disabled
func (n *Node) APIAddr() string {
	if n.api == nil {
		return ""
	}
	return n.api.Addr()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work", "component", "node")

	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Stop the block producer
	n.config.logger.Debug("shutdown phase 2: stopping block producer", "component", "node")

	if n.chain != nil {
		n.chain.Stop()
	}
	if n.runCancel != nil {
		n.runCancel()
	}

	// Phase 3: Close database
	n.config.logger.Debug("shutdown phase 3: closing database", "component", "node")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	n.config.logger.Debug("shutdown phase 4: cleanup resources", "component", "node")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
