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

	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/event"
	"github.com/ethereum/go-ethereum/common"
)

// Context is the environment of a single operation. Every state access in
// the operation goes through its database transaction
type Context struct {
	ctx     context.Context
	txn     *database.Txn
	router  *Router
	pending *[]event.Event
	block   chain.Block
	sender  common.Address
	depth   int
}

// NewContext builds an operation context. Executor uses it for every
// operation; it is exported for callers that manage their own transaction
func NewContext(
	ctx context.Context,
	txn *database.Txn,
	block chain.Block,
	sender common.Address,
	router *Router,
) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		ctx:     ctx,
		txn:     txn,
		router:  router,
		pending: &[]event.Event{},
		block:   block,
		sender:  sender,
	}
}

func (c *Context) Context() context.Context {
	return c.ctx
}

func (c *Context) Txn() *database.Txn {
	return c.txn
}

func (c *Context) DB() *database.Database {
	return c.txn.DB()
}

func (c *Context) Block() chain.Block {
	return c.block
}

// Sender is the principal the operation runs as
func (c *Context) Sender() common.Address {
	return c.sender
}

func (c *Context) Router() *Router {
	return c.router
}

// WithSender returns a context sharing the transaction and pending events
// but running as sender
func (c *Context) WithSender(sender common.Address) *Context {
	ret := *c
	ret.sender = sender
	return &ret
}

// Emit queues an event. Events are published only if the operation commits
func (c *Context) Emit(eventType event.EventType, data any) {
	*c.pending = append(*c.pending, event.NewEvent(eventType, data))
}

// Events returns the events emitted so far
func (c *Context) Events() []event.Event {
	return *c.pending
}
