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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/numbat/database/types"
	"github.com/fxamacker/cbor/v2"
)

// ExecutionReceipt records the execution of a timelock operation
type ExecutionReceipt struct {
	_           struct{} `cbor:",toarray"`
	OperationId []byte
	Executor    []byte
	Block       uint64
	Timestamp   int64
	CallCount   int
	Events      []string
}

// GetExecutionReceipt returns the receipt of an executed operation, or nil if
// it has not been executed
func (d *Database) GetExecutionReceipt(
	operationId []byte,
	txn *Txn,
) (*ExecutionReceipt, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	data, err := d.blob.Get(txn.Blob(), types.ExecutionReceiptKey(operationId))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get execution receipt: %w", err)
	}
	var receipt ExecutionReceipt
	if err := cbor.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode execution receipt: %w", err)
	}
	return &receipt, nil
}

// SetExecutionReceipt stores the receipt of an executed operation
func (d *Database) SetExecutionReceipt(
	receipt *ExecutionReceipt,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	data, err := cbor.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to encode execution receipt: %w", err)
	}
	if err := d.blob.Set(
		txn.Blob(),
		types.ExecutionReceiptKey(receipt.OperationId),
		data,
	); err != nil {
		return fmt.Errorf("failed to set execution receipt: %w", err)
	}
	return nil
}
