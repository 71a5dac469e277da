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

// Package genesis loads the initial state of a network: parameters, token
// allocations, role grants and treasury holdings
package genesis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"os"
	"strings"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"
)

// NativeTokenAlias names the native coin wherever a token is expected
const NativeTokenAlias = "native"

// DelegateSelf delegates an allocation to its holder
const DelegateSelf = "self"

type Genesis struct {
	Network     string           `yaml:"network"`
	SetupAdmin  string           `yaml:"setupAdmin"`
	Governance  GovernanceConfig `yaml:"governance"`
	Treasury    TreasuryConfig   `yaml:"treasury"`
	Roles       []RoleGrant      `yaml:"roles"`
	Allocations []Allocation     `yaml:"allocations"`
	Balances    []Balance        `yaml:"balances"`
	Timelock    TimelockConfig   `yaml:"timelock"`
	StartTime   int64            `yaml:"startTime"`
	HandOff     bool             `yaml:"handOff"`
	raw         []byte
}

type GovernanceConfig struct {
	ProposalThreshold string `yaml:"proposalThreshold"`
	VotingDelay       uint64 `yaml:"votingDelay"`
	VotingPeriod      uint64 `yaml:"votingPeriod"`
	QuorumNumerator   uint64 `yaml:"quorumNumerator"`
	GracePeriod       uint64 `yaml:"gracePeriod"`
}

type TimelockConfig struct {
	MinDelay uint64 `yaml:"minDelay"`
}

type TreasuryConfig struct {
	DailyLimit string          `yaml:"dailyLimit"`
	Assets     []Asset         `yaml:"assets"`
	Balances   []TreasuryFunds `yaml:"balances"`
}

type Asset struct {
	Token string `yaml:"token"`
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
}

type TreasuryFunds struct {
	Token  string `yaml:"token"`
	Amount string `yaml:"amount"`
}

type RoleGrant struct {
	Role    string `yaml:"role"`
	Account string `yaml:"account"`
}

// Allocation mints governance tokens. Delegate is empty, DelegateSelf or
// an account
type Allocation struct {
	Account  string `yaml:"account"`
	Amount   string `yaml:"amount"`
	Delegate string `yaml:"delegate"`
}

// Balance seeds an account with a non-governance token
type Balance struct {
	Token   string `yaml:"token"`
	Account string `yaml:"account"`
	Amount  string `yaml:"amount"`
}

func NewGenesisFromReader(r io.Reader) (*Genesis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var ret Genesis
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ret); err != nil {
		return nil, fmt.Errorf("failed to decode genesis: %w", err)
	}
	ret.raw = data
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return &ret, nil
}

func NewGenesisFromFile(file string) (*Genesis, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewGenesisFromReader(f)
}

// NewGenesisFromFS loads a genesis file from a filesystem such as
// EmbeddedDevnetFS
func NewGenesisFromFS(fsys fs.FS, file string) (*Genesis, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewGenesisFromReader(f)
}

// Devnet returns the embedded development network genesis
func Devnet() (*Genesis, error) {
	return NewGenesisFromFS(EmbeddedDevnetFS, DevnetGenesisFile)
}

// Hash identifies the genesis a database was initialized from
func (g *Genesis) Hash() common.Hash {
	return crypto.Keccak256Hash(g.raw)
}

// Raw returns the genesis document as loaded
func (g *Genesis) Raw() []byte {
	return g.raw
}

// Validate checks every address and amount in the genesis
func (g *Genesis) Validate() error {
	if g.Network == "" {
		return errors.New("genesis: network name is required")
	}
	if _, err := ResolveAccount(g.SetupAdmin); err != nil {
		return fmt.Errorf("genesis: setupAdmin: %w", err)
	}
	if g.Governance.VotingPeriod == 0 {
		return errors.New("genesis: governance.votingPeriod must be positive")
	}
	for name, span := range map[string]uint64{
		"votingDelay":  g.Governance.VotingDelay,
		"votingPeriod": g.Governance.VotingPeriod,
		"gracePeriod":  g.Governance.GracePeriod,
	} {
		if span > governance.MaxBlockSpan {
			return fmt.Errorf("genesis: governance.%s out of range: %d", name, span)
		}
	}
	if g.Timelock.MinDelay > timelock.MaxDelay {
		return fmt.Errorf("genesis: timelock.minDelay out of range: %d", g.Timelock.MinDelay)
	}
	if g.StartTime < 0 {
		return errors.New("genesis: startTime must not be negative")
	}
	if _, err := ParseAmount(g.Governance.ProposalThreshold); err != nil {
		return fmt.Errorf("genesis: governance.proposalThreshold: %w", err)
	}
	if _, err := ParseAmount(g.Treasury.DailyLimit); err != nil {
		return fmt.Errorf("genesis: treasury.dailyLimit: %w", err)
	}
	for i, a := range g.Treasury.Assets {
		if _, err := ResolveToken(a.Token); err != nil {
			return fmt.Errorf("genesis: treasury.assets[%d]: %w", i, err)
		}
	}
	for i, b := range g.Treasury.Balances {
		if _, err := ResolveToken(b.Token); err != nil {
			return fmt.Errorf("genesis: treasury.balances[%d]: %w", i, err)
		}
		if _, err := ParseAmount(b.Amount); err != nil {
			return fmt.Errorf("genesis: treasury.balances[%d]: %w", i, err)
		}
	}
	for i, r := range g.Roles {
		if _, err := access.ParseRole(r.Role); err != nil {
			return fmt.Errorf("genesis: roles[%d]: %w", i, err)
		}
		if _, err := ResolveAccount(r.Account); err != nil {
			return fmt.Errorf("genesis: roles[%d]: %w", i, err)
		}
	}
	for i, a := range g.Allocations {
		if _, err := ResolveAccount(a.Account); err != nil {
			return fmt.Errorf("genesis: allocations[%d]: %w", i, err)
		}
		if _, err := ParseAmount(a.Amount); err != nil {
			return fmt.Errorf("genesis: allocations[%d]: %w", i, err)
		}
		if a.Delegate != "" && a.Delegate != DelegateSelf {
			if _, err := ResolveAccount(a.Delegate); err != nil {
				return fmt.Errorf("genesis: allocations[%d].delegate: %w", i, err)
			}
		}
	}
	for i, b := range g.Balances {
		if _, err := ResolveToken(b.Token); err != nil {
			return fmt.Errorf("genesis: balances[%d]: %w", i, err)
		}
		if _, err := ResolveAccount(b.Account); err != nil {
			return fmt.Errorf("genesis: balances[%d]: %w", i, err)
		}
		if _, err := ParseAmount(b.Amount); err != nil {
			return fmt.Errorf("genesis: balances[%d]: %w", i, err)
		}
	}
	return nil
}

// ResolveAccount parses a hex address or an @name contract reference
func ResolveAccount(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if name, ok := strings.CutPrefix(s, "@"); ok {
		if name == "" {
			return common.Address{}, errors.New("empty contract name")
		}
		return ledger.ContractAddress(name), nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// ResolveToken is ResolveAccount that also accepts NativeTokenAlias
func ResolveToken(s string) (common.Address, error) {
	if strings.TrimSpace(s) == NativeTokenAlias {
		return ledger.NativeToken, nil
	}
	return ResolveAccount(s)
}

// ParseAmount parses a non-negative integer written with Go integer
// literal syntax, so 0x prefixes and underscores are accepted
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}
