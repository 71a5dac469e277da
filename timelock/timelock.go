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

// Package timelock delays the execution of approved call batches. An
// operation is identified by the hash of its calls, predecessor and salt
// and runs at most once
package timelock

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
)

// ContractName is the router name of the timelock
const ContractName = "timelock"

// DoneTimestamp is the timestamp reported for executed operations
const DoneTimestamp int64 = 1

// MaxDelay bounds the minimum and per-operation delay in seconds
const MaxDelay uint64 = math.MaxInt64 / 2

const contractABI = `[
	{"type":"function","name":"updateDelay","inputs":[{"name":"newDelay","type":"uint256"}],"outputs":[]}
]`

var ErrNoAccess = errors.New("timelock requires access control")

const (
	CallScheduledEventType  event.EventType = "timelock.call_scheduled"
	CallExecutedEventType   event.EventType = "timelock.call_executed"
	CancelledEventType      event.EventType = "timelock.cancelled"
	MinDelayChangeEventType event.EventType = "timelock.min_delay_change"
)

type CallScheduledEvent struct {
	OperationId common.Hash
	Calls       []Call
	Predecessor common.Hash
	Delay       uint64
	ReadyAt     int64
}

type CallExecutedEvent struct {
	OperationId common.Hash
	Executor    common.Address
}

type CancelledEvent struct {
	OperationId common.Hash
}

type MinDelayChangeEvent struct {
	OldDuration uint64
	NewDuration uint64
}

// Call is a single entry of an operation batch
type Call struct {
	Target common.Address
	Value  *big.Int
	Data   []byte
}

var batchArgs = func() abi.Arguments {
	addressArr, _ := abi.NewType("address[]", "", nil)
	uintArr, _ := abi.NewType("uint256[]", "", nil)
	bytesArr, _ := abi.NewType("bytes[]", "", nil)
	bytes32, _ := abi.NewType("bytes32", "", nil)
	return abi.Arguments{
		{Type: addressArr},
		{Type: uintArr},
		{Type: bytesArr},
		{Type: bytes32},
		{Type: bytes32},
	}
}()

// HashOperationBatch returns the id of an operation
func HashOperationBatch(
	calls []Call,
	predecessor common.Hash,
	salt common.Hash,
) (common.Hash, error) {
	targets := lo.Map(calls, func(c Call, _ int) common.Address { return c.Target })
	values := lo.Map(calls, func(c Call, _ int) *big.Int {
		if c.Value == nil {
			return new(big.Int)
		}
		return c.Value
	})
	payloads := lo.Map(calls, func(c Call, _ int) []byte { return c.Data })
	encoded, err := batchArgs.Pack(targets, values, payloads, predecessor, salt)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode operation: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

type Config struct {
	Logger *slog.Logger
	Access *access.Access
}

type Timelock struct {
	logger   *slog.Logger
	access   *access.Access
	contract *ledger.Contract
}

func New(cfg Config) (*Timelock, error) {
	if cfg.Access == nil {
		return nil, ErrNoAccess
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t := &Timelock{
		logger: cfg.Logger.With("component", "timelock"),
		access: cfg.Access,
	}
	c, err := ledger.NewContract(ContractName, contractABI)
	if err != nil {
		return nil, err
	}
	if err := c.Handle("updateDelay", func(lc *ledger.Context, _ *big.Int, args []any) error {
		newDelay := args[0].(*big.Int)
		if !newDelay.IsUint64() {
			return ledger.InvalidInput("delay out of range")
		}
		return t.UpdateDelay(lc, newDelay.Uint64())
	}); err != nil {
		return nil, err
	}
	t.contract = c
	return t, nil
}

func (t *Timelock) Contract() *ledger.Contract {
	return t.contract
}

// Address is the principal calls run as when an operation executes
func (t *Timelock) Address() common.Address {
	return t.contract.Address
}

// Initialize sets the minimum delay at genesis
func (t *Timelock) Initialize(lc *ledger.Context, minDelay uint64) error {
	if err := checkDelay(minDelay); err != nil {
		return err
	}
	return lc.DB().SetTimelockMinDelay(minDelay, lc.Txn())
}

func checkDelay(delay uint64) error {
	if delay > MaxDelay {
		return ledger.InvalidInput("delay out of range: %d > %d", delay, MaxDelay)
	}
	return nil
}

// ReadyTime returns now plus delay seconds, rejecting sums past the int64
// range
func ReadyTime(now int64, delay uint64) (int64, error) {
	if err := checkDelay(delay); err != nil {
		return 0, err
	}
	if now < 0 || int64(delay) > math.MaxInt64-now { // #nosec G115
		return 0, ledger.InvalidInput("delay %d overflows timestamp %d", delay, now)
	}
	return now + int64(delay), nil // #nosec G115
}

// MinDelay returns the minimum delay in seconds
func (t *Timelock) MinDelay(lc *ledger.Context) (uint64, error) {
	return lc.DB().GetTimelockMinDelay(lc.Txn())
}

// Schedule queues a batch to become executable delay seconds from now.
// Every call must target a registered contract and an allowlisted method
func (t *Timelock) Schedule(
	lc *ledger.Context,
	calls []Call,
	predecessor common.Hash,
	salt common.Hash,
	delay uint64,
) (common.Hash, error) {
	if err := t.access.Check(lc, access.RoleTimelockProposer); err != nil {
		return common.Hash{}, err
	}
	if len(calls) == 0 {
		return common.Hash{}, ledger.InvalidInput("empty operation")
	}
	for _, call := range calls {
		if _, _, _, err := lc.Router().Resolve(call.Target, call.Data); err != nil {
			return common.Hash{}, err
		}
		if call.Value != nil && call.Value.Sign() < 0 {
			return common.Hash{}, ledger.InvalidInput("negative call value")
		}
	}
	id, err := HashOperationBatch(calls, predecessor, salt)
	if err != nil {
		return common.Hash{}, ledger.InvalidInput("%v", err)
	}
	existing, err := lc.DB().GetTimelockOperation(id.Bytes(), lc.Txn())
	if err != nil {
		return common.Hash{}, err
	}
	if existing != nil {
		return common.Hash{}, ledger.Precondition("operation %s already scheduled", id.Hex())
	}
	minDelay, err := t.MinDelay(lc)
	if err != nil {
		return common.Hash{}, err
	}
	if delay < minDelay {
		return common.Hash{}, ledger.InvalidInput(
			"insufficient delay: %d < %d",
			delay,
			minDelay,
		)
	}
	readyAt, err := ReadyTime(lc.Block().Timestamp, delay)
	if err != nil {
		return common.Hash{}, err
	}
	if err := lc.DB().SetTimelockOperation(
		&models.TimelockOperation{
			OperationId:    id.Bytes(),
			Predecessor:    predecessor.Bytes(),
			Salt:           salt.Bytes(),
			ReadyAt:        readyAt,
			Delay:          delay,
			ScheduledBlock: lc.Block().Number,
		},
		lc.Txn(),
	); err != nil {
		return common.Hash{}, err
	}
	lc.Emit(
		CallScheduledEventType,
		CallScheduledEvent{
			OperationId: id,
			Calls:       calls,
			Predecessor: predecessor,
			Delay:       delay,
			ReadyAt:     readyAt,
		},
	)
	t.logger.Debug(
		"scheduled operation",
		"operation", id.Hex(),
		"ready_at", readyAt,
	)
	return id, nil
}

// Execute runs a ready operation. The calls run in order as the timelock;
// if any of them fails the whole operation reverts and stays ready
func (t *Timelock) Execute(
	lc *ledger.Context,
	calls []Call,
	predecessor common.Hash,
	salt common.Hash,
) (common.Hash, error) {
	if err := t.access.CheckOpen(lc, access.RoleTimelockExecutor); err != nil {
		return common.Hash{}, err
	}
	id, err := HashOperationBatch(calls, predecessor, salt)
	if err != nil {
		return common.Hash{}, ledger.InvalidInput("%v", err)
	}
	op, err := lc.DB().GetTimelockOperation(id.Bytes(), lc.Txn())
	if err != nil {
		return common.Hash{}, err
	}
	if !t.ready(lc, op) {
		return common.Hash{}, ledger.Precondition("operation %s is not ready", id.Hex())
	}
	if predecessor != (common.Hash{}) {
		done, err := t.IsOperationDone(lc, predecessor)
		if err != nil {
			return common.Hash{}, err
		}
		if !done {
			return common.Hash{}, ledger.Precondition("missing dependency %s", predecessor.Hex())
		}
	}
	eventsBefore := len(lc.Events())
	for i, call := range calls {
		if err := lc.Router().Call(lc, t.Address(), call.Target, call.Value, call.Data); err != nil {
			return common.Hash{}, fmt.Errorf("call %d: %w", i, err)
		}
	}
	op.Executed = true
	op.ExecutedBlock = lc.Block().Number
	if err := lc.DB().SetTimelockOperation(op, lc.Txn()); err != nil {
		return common.Hash{}, err
	}
	emitted := lc.Events()[eventsBefore:]
	receipt := &database.ExecutionReceipt{
		OperationId: id.Bytes(),
		Executor:    lc.Sender().Bytes(),
		Block:       lc.Block().Number,
		Timestamp:   lc.Block().Timestamp,
		CallCount:   len(calls),
		Events: lo.Map(emitted, func(evt event.Event, _ int) string {
			return string(evt.Type)
		}),
	}
	if err := lc.DB().SetExecutionReceipt(receipt, lc.Txn()); err != nil {
		return common.Hash{}, err
	}
	lc.Emit(
		CallExecutedEventType,
		CallExecutedEvent{OperationId: id, Executor: lc.Sender()},
	)
	t.logger.Info(
		"executed operation",
		"operation", id.Hex(),
		"calls", len(calls),
		"block", lc.Block().Number,
	)
	return id, nil
}

// Cancel removes a pending operation
func (t *Timelock) Cancel(lc *ledger.Context, id common.Hash) error {
	if err := t.access.Check(lc, access.RoleTimelockCanceller); err != nil {
		return err
	}
	pending, err := t.IsOperationPending(lc, id)
	if err != nil {
		return err
	}
	if !pending {
		return ledger.Precondition("operation %s cannot be cancelled", id.Hex())
	}
	if err := lc.DB().DeleteTimelockOperation(id.Bytes(), lc.Txn()); err != nil {
		return err
	}
	lc.Emit(CancelledEventType, CancelledEvent{OperationId: id})
	return nil
}

// UpdateDelay changes the minimum delay. Only the timelock itself may call
// it, so changes go through a scheduled operation
func (t *Timelock) UpdateDelay(lc *ledger.Context, newDelay uint64) error {
	if lc.Sender() != t.Address() {
		return ledger.Unauthorized("caller %s is not the timelock", lc.Sender().Hex())
	}
	if _, err := ReadyTime(lc.Block().Timestamp, newDelay); err != nil {
		return err
	}
	old, err := t.MinDelay(lc)
	if err != nil {
		return err
	}
	if err := lc.DB().SetTimelockMinDelay(newDelay, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		MinDelayChangeEventType,
		MinDelayChangeEvent{OldDuration: old, NewDuration: newDelay},
	)
	return nil
}

// GetOperation returns a scheduled or executed operation, or nil
func (t *Timelock) GetOperation(
	lc *ledger.Context,
	id common.Hash,
) (*models.TimelockOperation, error) {
	return lc.DB().GetTimelockOperation(id.Bytes(), lc.Txn())
}

// Receipt returns the execution receipt of an operation, or nil
func (t *Timelock) Receipt(
	lc *ledger.Context,
	id common.Hash,
) (*database.ExecutionReceipt, error) {
	return lc.DB().GetExecutionReceipt(id.Bytes(), lc.Txn())
}

func (t *Timelock) IsOperation(lc *ledger.Context, id common.Hash) (bool, error) {
	op, err := t.GetOperation(lc, id)
	if err != nil {
		return false, err
	}
	return op != nil, nil
}

func (t *Timelock) IsOperationPending(lc *ledger.Context, id common.Hash) (bool, error) {
	op, err := t.GetOperation(lc, id)
	if err != nil {
		return false, err
	}
	return op != nil && !op.Executed, nil
}

func (t *Timelock) IsOperationReady(lc *ledger.Context, id common.Hash) (bool, error) {
	op, err := t.GetOperation(lc, id)
	if err != nil {
		return false, err
	}
	return t.ready(lc, op), nil
}

func (t *Timelock) IsOperationDone(lc *ledger.Context, id common.Hash) (bool, error) {
	op, err := t.GetOperation(lc, id)
	if err != nil {
		return false, err
	}
	return op != nil && op.Executed, nil
}

// GetTimestamp returns 0 for unknown operations, DoneTimestamp for executed
// ones and the ready time otherwise
func (t *Timelock) GetTimestamp(lc *ledger.Context, id common.Hash) (int64, error) {
	op, err := t.GetOperation(lc, id)
	if err != nil {
		return 0, err
	}
	switch {
	case op == nil:
		return 0, nil
	case op.Executed:
		return DoneTimestamp, nil
	default:
		return op.ReadyAt, nil
	}
}

func (t *Timelock) ready(lc *ledger.Context, op *models.TimelockOperation) bool {
	return op != nil && !op.Executed && op.ReadyAt <= lc.Block().Timestamp
}
