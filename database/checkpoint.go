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

// GetDelegatee returns the account that receives the voting weight of
// account, or the zero address if it never delegated
func (d *Database) GetDelegatee(
	account common.Address,
	txn *Txn,
) (common.Address, error) {
	delegation, err := d.metadata.GetDelegation(
		account.Bytes(),
		metadataTxn(txn),
	)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get delegation: %w", err)
	}
	if delegation == nil {
		return common.Address{}, nil
	}
	return common.BytesToAddress(delegation.Delegatee), nil
}

// SetDelegatee records the delegatee of account
func (d *Database) SetDelegatee(
	account common.Address,
	delegatee common.Address,
	txn *Txn,
) error {
	delegation, err := d.metadata.GetDelegation(
		account.Bytes(),
		metadataTxn(txn),
	)
	if err != nil {
		return fmt.Errorf("failed to get delegation: %w", err)
	}
	if delegation == nil {
		delegation = &models.Delegation{Account: account.Bytes()}
	}
	delegation.Delegatee = delegatee.Bytes()
	if err := d.metadata.SetDelegation(delegation, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set delegation: %w", err)
	}
	return nil
}

// GetVotes returns the current voting weight of a delegatee
func (d *Database) GetVotes(
	delegatee common.Address,
	txn *Txn,
) (*big.Int, error) {
	cp, err := d.metadata.GetLatestVoteCheckpoint(
		delegatee.Bytes(),
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote checkpoint: %w", err)
	}
	if cp == nil {
		return new(big.Int), nil
	}
	return cp.Votes.Big(), nil
}

// GetPastVotes returns the voting weight of a delegatee as it stood at the
// start of block, ignoring changes made during that block
func (d *Database) GetPastVotes(
	delegatee common.Address,
	block uint64,
	txn *Txn,
) (*big.Int, error) {
	cp, err := d.metadata.GetVoteCheckpoint(
		delegatee.Bytes(),
		block,
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote checkpoint: %w", err)
	}
	if cp == nil {
		return new(big.Int), nil
	}
	return cp.Votes.Big(), nil
}

// SetVotes writes the voting weight of a delegatee effective from block
func (d *Database) SetVotes(
	delegatee common.Address,
	block uint64,
	votes *big.Int,
	txn *Txn,
) error {
	cp, err := d.metadata.GetLatestVoteCheckpoint(
		delegatee.Bytes(),
		metadataTxn(txn),
	)
	if err != nil {
		return fmt.Errorf("failed to get vote checkpoint: %w", err)
	}
	// Several changes within one block share a checkpoint
	if cp == nil || cp.FromBlock != block {
		cp = &models.VoteCheckpoint{
			Delegatee: delegatee.Bytes(),
			FromBlock: block,
		}
	}
	cp.Votes = types.NewBigInt(votes)
	if err := d.metadata.SetVoteCheckpoint(cp, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set vote checkpoint: %w", err)
	}
	return nil
}

// GetTotalSupply returns the current total governance token supply
func (d *Database) GetTotalSupply(txn *Txn) (*big.Int, error) {
	cp, err := d.metadata.GetLatestSupplyCheckpoint(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get supply checkpoint: %w", err)
	}
	if cp == nil {
		return new(big.Int), nil
	}
	return cp.Supply.Big(), nil
}

// GetPastTotalSupply returns the total supply as it stood at the start of
// block
func (d *Database) GetPastTotalSupply(
	block uint64,
	txn *Txn,
) (*big.Int, error) {
	cp, err := d.metadata.GetSupplyCheckpoint(block, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("failed to get supply checkpoint: %w", err)
	}
	if cp == nil {
		return new(big.Int), nil
	}
	return cp.Supply.Big(), nil
}

// SetTotalSupply writes the total supply effective from block
func (d *Database) SetTotalSupply(
	block uint64,
	supply *big.Int,
	txn *Txn,
) error {
	cp, err := d.metadata.GetLatestSupplyCheckpoint(metadataTxn(txn))
	if err != nil {
		return fmt.Errorf("failed to get supply checkpoint: %w", err)
	}
	if cp == nil || cp.FromBlock != block {
		cp = &models.SupplyCheckpoint{FromBlock: block}
	}
	cp.Supply = types.NewBigInt(supply)
	if err := d.metadata.SetSupplyCheckpoint(cp, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set supply checkpoint: %w", err)
	}
	return nil
}

// GetQuorumNumerator returns the quorum numerator in effect at block
func (d *Database) GetQuorumNumerator(block uint64, txn *Txn) (uint64, error) {
	cp, err := d.metadata.GetQuorumCheckpoint(block, metadataTxn(txn))
	if err != nil {
		return 0, fmt.Errorf("failed to get quorum checkpoint: %w", err)
	}
	if cp == nil {
		return 0, nil
	}
	return cp.Numerator, nil
}

// SetQuorumNumerator writes the quorum numerator effective from block
func (d *Database) SetQuorumNumerator(
	block uint64,
	numerator uint64,
	txn *Txn,
) error {
	cp, err := d.metadata.GetQuorumCheckpoint(block, metadataTxn(txn))
	if err != nil {
		return fmt.Errorf("failed to get quorum checkpoint: %w", err)
	}
	if cp == nil || cp.FromBlock != block {
		cp = &models.QuorumCheckpoint{FromBlock: block}
	}
	cp.Numerator = numerator
	if err := d.metadata.SetQuorumCheckpoint(cp, metadataTxn(txn)); err != nil {
		return fmt.Errorf("failed to set quorum checkpoint: %w", err)
	}
	return nil
}
