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

package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
)

// BigInt stores an arbitrary precision integer as a base-10 string so that
// token amounts are not truncated by the SQL driver
//
//nolint:recvcheck
type BigInt struct {
	*big.Int
}

// NewBigInt returns a BigInt holding a copy of the provided value. A nil
// value is treated as zero
func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		return BigInt{Int: new(big.Int)}
	}
	return BigInt{Int: new(big.Int).Set(v)}
}

// Big returns a copy of the stored value, or zero if unset
func (b BigInt) Big() *big.Int {
	if b.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.Int)
}

// GormDataType stores the value in a text column
func (BigInt) GormDataType() string {
	return "string"
}

func (b BigInt) Value() (driver.Value, error) {
	if b.Int == nil {
		return "0", nil
	}
	return b.String(), nil
}

func (b *BigInt) Scan(val any) error {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		b.Int = big.NewInt(v)
		return nil
	case nil:
		b.Int = new(big.Int)
		return nil
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	if s == "" {
		b.Int = new(big.Int)
		return nil
	}
	tmp, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("failed to set big.Int value from string: %s", s)
	}
	b.Int = tmp
	return nil
}

// ErrBlobKeyNotFound is returned by blob operations when a key is missing
var ErrBlobKeyNotFound = errors.New("blob key not found")

// ErrTxnWrongType is returned when a transaction has the wrong type
var ErrTxnWrongType = errors.New("invalid transaction type")

// ErrNilTxn is returned when a nil transaction is provided where a valid transaction is required
var ErrNilTxn = errors.New("nil transaction")

// ErrNoStoreAvailable is returned when no blob or metadata store is available
var ErrNoStoreAvailable = errors.New("no store available")

// ErrBlobStoreUnavailable is returned when blob store cannot be accessed
var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

// Txn is a simple transaction handle for commit/rollback only.
// Database layer (Txn) coordinates metadata and blob operations separately.
type Txn interface {
	Commit() error
	Rollback() error
}
