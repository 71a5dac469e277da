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
	"log/slog"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/blinklabs-io/numbat/votes"
)

// Contracts holds the built-in contracts of a node
type Contracts struct {
	Access   *access.Access
	Votes    *votes.Votes
	Timelock *timelock.Timelock
	Treasury *treasury.Treasury
	Governor *governance.Governor
}

// NewContracts builds the built-in contracts. They hold no state of their
// own, so the same set can serve any database
func NewContracts(logger *slog.Logger) (*Contracts, error) {
	var err error
	c := &Contracts{}
	if c.Access, err = access.New(access.Config{Logger: logger}); err != nil {
		return nil, err
	}
	if c.Votes, err = votes.New(votes.Config{Logger: logger}); err != nil {
		return nil, err
	}
	if c.Timelock, err = timelock.New(timelock.Config{
		Logger: logger,
		Access: c.Access,
	}); err != nil {
		return nil, err
	}
	if c.Treasury, err = treasury.New(treasury.Config{
		Logger: logger,
		Access: c.Access,
		Tokens: c.Votes,
	}); err != nil {
		return nil, err
	}
	if c.Governor, err = governance.New(governance.Config{
		Logger:   logger,
		Access:   c.Access,
		Token:    c.Votes,
		Timelock: c.Timelock,
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// Register adds every contract to the router
func (c *Contracts) Register(r *ledger.Router) error {
	for _, contract := range []*ledger.Contract{
		c.Access.Contract(),
		c.Votes.Contract(),
		c.Timelock.Contract(),
		c.Treasury.Contract(),
		c.Governor.Contract(),
	} {
		if err := r.Register(contract); err != nil {
			return err
		}
	}
	return nil
}
