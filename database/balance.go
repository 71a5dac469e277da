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
	"fmt"
	"math/big"

	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/types"
	"github.com/ethereum/go-ethereum/common"
)

// GetBalance returns the amount of token held by account
func (d *Database) GetBalance(
	token common.Address,
	account common.Address,
	txn *Txn,
) (*big.Int, error) {
	bal, err := d.metadata.GetBalance(
		token.Bytes(),
		account.Bytes(),
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal.Amount.Big(), nil
}

// SetBalance sets the amount of token held by account
func (d *Database) SetBalance(
	token common.Address,
	account common.Address,
	amount *big.Int,
	txn *Txn,
) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("negative balance for %s", account)
	}
	bal, err := d.metadata.GetBalance(
		token.Bytes(),
		account.Bytes(),
		metadataTxn(txn),
	)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	if bal == nil {
		bal = &models.Balance{
			Token:   token.Bytes(),
			Account: account.Bytes(),
		}
	}
	bal.Amount = types.NewBigInt(amount)
	if err := d.metadata.SetBalance(bal, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}
