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

package chain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/event"
	"github.com/prometheus/client_golang/prometheus"
)

// Block identifies the block that operations currently execute in.
// Timestamp is in unix seconds
type Block struct {
	Number    uint64
	Timestamp int64
}

// Time returns the block timestamp as a time.Time
func (b Block) Time() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
	Database     *database.Database
	// BlockInterval is the period of the block producer. Zero disables the
	// producer and blocks are only sealed explicitly
	BlockInterval time.Duration
	// StartTime is the timestamp of the first block of a new chain
	StartTime time.Time
	// Now is the clock used for new block timestamps
	Now func() time.Time
}

// Chain serializes operations and owns the block clock. The open block is
// the block that operations execute in; sealing it opens the next one
type Chain struct {
	config    Config
	logger    *slog.Logger
	db        *database.Database
	eventBus  *event.EventBus
	metrics   chainMetrics
	execMutex sync.RWMutex
	tipMutex  sync.RWMutex
	tip       Block
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	runMutex  sync.Mutex
}

func New(cfg Config) (*Chain, error) {
	if cfg.Database == nil {
		return nil, ErrNoDatabase
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := &Chain{
		config:   cfg,
		logger:   cfg.Logger.With("component", "chain"),
		db:       cfg.Database,
		eventBus: cfg.EventBus,
	}
	if cfg.PromRegistry != nil {
		c.metrics.init(cfg.PromRegistry)
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load chain: %w", err)
	}
	return c, nil
}

func (c *Chain) load() error {
	tip, err := c.db.GetTip(nil)
	if err != nil {
		return err
	}
	if tip.Number > 0 {
		c.tip = Block{Number: tip.Number, Timestamp: tip.Timestamp}
		c.metrics.update(c.tip)
		c.logger.Info(
			fmt.Sprintf("restored chain tip at block %d", tip.Number),
		)
		return nil
	}
	start := c.config.StartTime
	if start.IsZero() {
		start = c.config.Now()
	}
	c.tip = Block{Number: 1, Timestamp: start.Unix()}
	if err := c.saveTip(c.tip); err != nil {
		return err
	}
	c.metrics.update(c.tip)
	return nil
}

func (c *Chain) saveTip(b Block) error {
	return c.db.Transaction(true).Do(func(txn *database.Txn) error {
		return c.db.SetTip(
			models.Tip{Number: b.Number, Timestamp: b.Timestamp},
			txn,
		)
	})
}

// Tip returns the open block
func (c *Chain) Tip() Block {
	c.tipMutex.RLock()
	defer c.tipMutex.RUnlock()
	return c.tip
}

// Execute runs fn with exclusive access to the chain state. No block is
// sealed while fn runs
func (c *Chain) Execute(fn func(Block) error) error {
	c.execMutex.Lock()
	defer c.execMutex.Unlock()
	return fn(c.Tip())
}

// View runs fn with shared access to the chain state. Views run
// concurrently with each other but never with Execute
func (c *Chain) View(fn func(Block) error) error {
	c.execMutex.RLock()
	defer c.execMutex.RUnlock()
	return fn(c.Tip())
}

// SealBlock closes the open block and opens the next one. The new block
// timestamp is the current clock time, but always at least one second after
// the previous block
func (c *Chain) SealBlock() (Block, error) {
	c.execMutex.Lock()
	prev := c.Tip()
	ts := c.config.Now().Unix()
	if ts <= prev.Timestamp {
		ts = prev.Timestamp + 1
	}
	next, err := c.openBlock(Block{Number: prev.Number + 1, Timestamp: ts})
	c.execMutex.Unlock()
	if err != nil {
		return Block{}, err
	}
	c.publish(next)
	return next, nil
}

// Advance seals the given number of blocks, each step later than the
// previous one. Used to move the clock forward on development networks
func (c *Chain) Advance(blocks uint64, step time.Duration) (Block, error) {
	if blocks == 0 {
		return c.Tip(), nil
	}
	stepSecs := int64(step / time.Second)
	if stepSecs < 1 {
		return Block{}, ErrInvalidStep
	}
	var sealed []Block
	c.execMutex.Lock()
	for range blocks {
		prev := c.Tip()
		next, err := c.openBlock(
			Block{Number: prev.Number + 1, Timestamp: prev.Timestamp + stepSecs},
		)
		if err != nil {
			c.execMutex.Unlock()
			return Block{}, err
		}
		sealed = append(sealed, next)
	}
	c.execMutex.Unlock()
	for _, b := range sealed {
		c.publish(b)
	}
	return sealed[len(sealed)-1], nil
}

// openBlock persists the new tip. The caller holds the execution lock
func (c *Chain) openBlock(next Block) (Block, error) {
	if err := c.saveTip(next); err != nil {
		return Block{}, fmt.Errorf("failed to save tip: %w", err)
	}
	c.tipMutex.Lock()
	c.tip = next
	c.tipMutex.Unlock()
	c.metrics.update(next)
	c.logger.Debug(
		fmt.Sprintf("opened block %d", next.Number),
		"timestamp", next.Timestamp,
	)
	return next, nil
}

func (c *Chain) publish(b Block) {
	if c.eventBus == nil {
		return
	}
	c.eventBus.Publish(
		BlockEventType,
		event.NewEvent(
			BlockEventType,
			BlockEvent{Number: b.Number, Timestamp: b.Timestamp},
		),
	)
}

// Start runs the block producer until ctx is done or Stop is called. It
// does nothing when no block interval is configured
func (c *Chain) Start(ctx context.Context) error {
	if c.config.BlockInterval <= 0 {
		return nil
	}
	c.runMutex.Lock()
	defer c.runMutex.Unlock()
	if c.cancel != nil {
		return ErrProducerRunning
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.produce(ctx)
	c.logger.Info(
		"started block producer",
		"interval", c.config.BlockInterval.String(),
	)
	return nil
}

func (c *Chain) produce(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.config.BlockInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.SealBlock(); err != nil {
				c.logger.Error(
					"failed to seal block",
					"error", err,
				)
			}
		}
	}
}

// Stop stops the block producer and waits for it to exit
func (c *Chain) Stop() {
	c.runMutex.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.runMutex.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}
