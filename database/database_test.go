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

package database_test

import (
	"math/big"
	"testing"

	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestTxnRollbackDiscardsChanges(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(true)
	require.NoError(t, db.SetTip(models.Tip{Number: 7, Timestamp: 1000}, txn))
	require.NoError(t, txn.Rollback())
	tip, err := db.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tip.Number)

	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetTip(models.Tip{Number: 8, Timestamp: 2000}, txn)
	})
	require.NoError(t, err)
	tip, err = db.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), tip.Number)
	assert.Equal(t, int64(2000), tip.Timestamp)
}

func TestBalance(t *testing.T) {
	db := newTestDatabase(t)
	token := common.HexToAddress("0x01")
	account := common.HexToAddress("0x02")
	bal, err := db.GetBalance(token, account, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	amount, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	require.NoError(t, db.SetBalance(token, account, amount, nil))
	bal, err = db.GetBalance(token, account, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Cmp(bal))

	require.Error(t, db.SetBalance(token, account, big.NewInt(-1), nil))
}

func TestVoteCheckpoints(t *testing.T) {
	db := newTestDatabase(t)
	delegatee := common.HexToAddress("0xabc")
	require.NoError(t, db.SetVotes(delegatee, 5, big.NewInt(100), nil))
	// A second change in the same block overwrites the checkpoint
	require.NoError(t, db.SetVotes(delegatee, 5, big.NewInt(150), nil))
	require.NoError(t, db.SetVotes(delegatee, 7, big.NewInt(50), nil))

	testDefs := []struct {
		block    uint64
		expected int64
	}{
		{block: 4, expected: 0},
		{block: 5, expected: 0},
		{block: 6, expected: 150},
		{block: 7, expected: 150},
		{block: 8, expected: 50},
	}
	for _, testDef := range testDefs {
		votes, err := db.GetPastVotes(delegatee, testDef.block, nil)
		require.NoError(t, err)
		assert.Equal(
			t,
			testDef.expected,
			votes.Int64(),
			"block %d",
			testDef.block,
		)
	}
	votes, err := db.GetVotes(delegatee, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50), votes.Int64())
}

func TestTotalSupplyAndQuorumCheckpoints(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.SetTotalSupply(1, big.NewInt(1000), nil))
	require.NoError(t, db.SetTotalSupply(3, big.NewInt(2000), nil))
	supply, err := db.GetPastTotalSupply(3, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), supply.Int64())
	supply, err = db.GetTotalSupply(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), supply.Int64())

	require.NoError(t, db.SetQuorumNumerator(0, 4, nil))
	require.NoError(t, db.SetQuorumNumerator(10, 10, nil))
	numerator, err := db.GetQuorumNumerator(9, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), numerator)
	numerator, err = db.GetQuorumNumerator(10, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), numerator)
}

func TestProposalBody(t *testing.T) {
	db := newTestDatabase(t)
	proposalId := common.HexToHash("0x1234").Bytes()
	body, err := db.GetProposalBody(proposalId, nil)
	require.NoError(t, err)
	assert.Nil(t, body)

	expected := &database.ProposalBody{
		Description: "Fund the grants program",
		Targets:     [][]byte{common.HexToAddress("0x10").Bytes()},
		Values:      []*big.Int{big.NewInt(0)},
		Calldatas:   [][]byte{{0xde, 0xad, 0xbe, 0xef}},
	}
	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetProposalBody(proposalId, expected, txn)
	})
	require.NoError(t, err)
	body, err = db.GetProposalBody(proposalId, nil)
	require.NoError(t, err)
	require.NotNil(t, body)
	assert.Equal(t, expected.Description, body.Description)
	assert.Equal(t, expected.Targets, body.Targets)
	assert.Equal(t, expected.Calldatas, body.Calldatas)
	require.Len(t, body.Values, 1)
	assert.Equal(t, 0, body.Values[0].Sign())

	require.ErrorIs(
		t,
		db.SetProposalBody(proposalId, expected, nil),
		types.ErrNilTxn,
	)
}

func TestExecutionReceipt(t *testing.T) {
	db := newTestDatabase(t)
	opId := common.HexToHash("0x99").Bytes()
	receipt, err := db.GetExecutionReceipt(opId, nil)
	require.NoError(t, err)
	assert.Nil(t, receipt)
	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetExecutionReceipt(
			&database.ExecutionReceipt{
				OperationId: opId,
				Executor:    common.HexToAddress("0x5").Bytes(),
				Block:       12,
				Timestamp:   1700000000,
				CallCount:   2,
				Events:      []string{"treasury.withdrawal"},
			},
			txn,
		)
	})
	require.NoError(t, err)
	receipt, err = db.GetExecutionReceipt(opId, nil)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(12), receipt.Block)
	assert.Equal(t, 2, receipt.CallCount)
	assert.Equal(t, []string{"treasury.withdrawal"}, receipt.Events)
}

func TestPersistentReopen(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetTip(models.Tip{Number: 3, Timestamp: 42}, txn)
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close()
	tip, err := db.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), tip.Number)
}
