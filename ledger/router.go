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
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// MaxCallDepth bounds nested calls made through the router
const MaxCallDepth = 8

// NativeToken is the token address of the chain's native coin
var NativeToken = common.Address{}

// ContractAddress returns the fixed address of a built-in contract
func ContractAddress(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("numbat:" + name))[12:])
}

// Handler runs an allowlisted method. Args are the ABI decoded inputs in
// declaration order
type Handler func(lc *Context, value *big.Int, args []any) error

// Contract is a call target with an ABI and the subset of its methods that
// may be invoked through the router
type Contract struct {
	Name     string
	Address  common.Address
	ABI      abi.ABI
	handlers map[string]Handler
}

// NewContract parses abiJSON and returns a contract at the address derived
// from name
func NewContract(name string, abiJSON string) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
	}
	return &Contract{
		Name:     name,
		Address:  ContractAddress(name),
		ABI:      parsed,
		handlers: make(map[string]Handler),
	}, nil
}

// Handle allowlists method and binds its handler
func (c *Contract) Handle(method string, handler Handler) error {
	if _, ok := c.ABI.Methods[method]; !ok {
		return fmt.Errorf("method %s not found in %s ABI", method, c.Name)
	}
	c.handlers[method] = handler
	return nil
}

// Methods returns the allowlisted method names
func (c *Contract) Methods() []string {
	ret := make([]string, 0, len(c.handlers))
	for name := range c.handlers {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}

// Pack encodes a call to an allowlisted method
func (c *Contract) Pack(method string, args ...any) ([]byte, error) {
	if _, ok := c.handlers[method]; !ok {
		return nil, InvalidInput("method %s.%s is not allowed", c.Name, method)
	}
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, InvalidInput("invalid arguments for %s.%s: %v", c.Name, method, err)
	}
	return data, nil
}

// PackStrings encodes a call from textual arguments, converting each one
// to the type of the matching ABI input
func (c *Contract) PackStrings(method string, args []string) ([]byte, error) {
	m, ok := c.ABI.Methods[method]
	if !ok {
		return nil, InvalidInput("unknown method %s.%s", c.Name, method)
	}
	if len(args) != len(m.Inputs) {
		return nil, InvalidInput(
			"%s.%s expects %d arguments, got %d",
			c.Name,
			method,
			len(m.Inputs),
			len(args),
		)
	}
	values := make([]any, len(args))
	for i, input := range m.Inputs {
		v, err := parseArg(input.Type, args[i])
		if err != nil {
			return nil, InvalidInput("argument %s of %s.%s: %v", input.Name, c.Name, method, err)
		}
		values[i] = v
	}
	return c.Pack(method, values...)
}

func parseArg(t abi.Type, s string) (any, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.UintTy:
		v, ok := new(big.Int).SetString(s, 0)
		if !ok || v.Sign() < 0 || v.BitLen() > t.Size {
			return nil, fmt.Errorf("invalid uint%d %q", t.Size, s)
		}
		switch t.Size {
		case 8:
			return uint8(v.Uint64()), nil
		case 16:
			return uint16(v.Uint64()), nil
		case 32:
			return uint32(v.Uint64()), nil
		case 64:
			return v.Uint64(), nil
		default:
			return v, nil
		}
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		if t.Size != 32 {
			return nil, fmt.Errorf("unsupported type %s", t.String())
		}
		b, err := hexutil.Decode(s)
		if err != nil || len(b) != 32 {
			return nil, fmt.Errorf("invalid bytes32 %q", s)
		}
		return common.BytesToHash(b), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
}

// Router dispatches encoded calls to registered contracts
type Router struct {
	contracts map[common.Address]*Contract
	byName    map[string]*Contract
	mu        sync.RWMutex
}

func NewRouter() *Router {
	return &Router{
		contracts: make(map[common.Address]*Contract),
		byName:    make(map[string]*Contract),
	}
}

// Register adds a contract. Names and addresses must be unique
func (r *Router) Register(c *Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[c.Address]; ok {
		return fmt.Errorf("contract already registered at %s", c.Address)
	}
	if _, ok := r.byName[c.Name]; ok {
		return fmt.Errorf("contract %s already registered", c.Name)
	}
	r.contracts[c.Address] = c
	r.byName[c.Name] = c
	return nil
}

// Contract returns the contract at addr, or nil
func (r *Router) Contract(addr common.Address) *Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contracts[addr]
}

// ContractByName returns the named contract, or nil
func (r *Router) ContractByName(name string) *Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Contracts returns all registered contracts ordered by name
func (r *Router) Contracts() []*Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]*Contract, 0, len(r.byName))
	for _, c := range r.byName {
		ret = append(ret, c)
	}
	slices.SortFunc(ret, func(a, b *Contract) int {
		return strings.Compare(a.Name, b.Name)
	})
	return ret
}

// Resolve decodes a call and returns the contract, method and arguments it
// would run. Unknown targets and methods outside the allowlist are rejected
func (r *Router) Resolve(
	target common.Address,
	data []byte,
) (*Contract, *abi.Method, []any, error) {
	c := r.Contract(target)
	if c == nil {
		return nil, nil, nil, InvalidInput("unknown call target %s", target)
	}
	if len(data) < 4 {
		return nil, nil, nil, InvalidInput("calldata too short for %s", c.Name)
	}
	m, err := c.ABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, nil, InvalidInput(
			"unknown method %s on %s",
			hexutil.Encode(data[:4]),
			c.Name,
		)
	}
	if _, ok := c.handlers[m.Name]; !ok {
		return nil, nil, nil, InvalidInput("method %s.%s is not allowed", c.Name, m.Name)
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, nil, InvalidInput("invalid calldata for %s.%s: %v", c.Name, m.Name, err)
	}
	return c, m, args, nil
}

// Call runs an encoded call with caller as the sender. A positive value
// moves native coin from caller to target before the handler runs
func (r *Router) Call(
	lc *Context,
	caller common.Address,
	target common.Address,
	value *big.Int,
	data []byte,
) error {
	if lc.depth >= MaxCallDepth {
		return Precondition("call depth exceeded")
	}
	c, m, args, err := r.Resolve(target, data)
	if err != nil {
		return err
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return InvalidInput("negative call value")
	}
	if value.Sign() > 0 {
		if err := transferNative(lc, caller, target, value); err != nil {
			return err
		}
	}
	sub := lc.WithSender(caller)
	sub.depth++
	if err := c.handlers[m.Name](sub, value, args); err != nil {
		return fmt.Errorf("%s.%s: %w", c.Name, m.Name, err)
	}
	return nil
}

func transferNative(
	lc *Context,
	from common.Address,
	to common.Address,
	amount *big.Int,
) error {
	db := lc.DB()
	fromBal, err := db.GetBalance(NativeToken, from, lc.Txn())
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ResourceLimit("insufficient balance for call value")
	}
	if from == to {
		return nil
	}
	if err := db.SetBalance(NativeToken, from, fromBal.Sub(fromBal, amount), lc.Txn()); err != nil {
		return err
	}
	toBal, err := db.GetBalance(NativeToken, to, lc.Txn())
	if err != nil {
		return err
	}
	return db.SetBalance(NativeToken, to, toBal.Add(toBal, amount), lc.Txn())
}
