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

package badger

import (
	"testing"

	"github.com/blinklabs-io/numbat/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGetSetDelete(t *testing.T) {
	registry := prometheus.NewRegistry()
	d, err := New(WithPromRegistry(registry))
	require.NoError(t, err)
	defer d.Close() //nolint:errcheck

	txn := d.NewTransaction(true)
	require.NoError(t, d.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Commit())

	txn = d.NewTransaction(false)
	val, err := d.Get(txn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	_, err = d.Get(txn, []byte("missing"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, txn.Rollback())

	// A finished transaction can no longer be used
	_, err = d.Get(txn, []byte("k1"))
	assert.Error(t, err)

	txn = d.NewTransaction(true)
	require.NoError(t, d.Delete(txn, []byte("k1")))
	require.NoError(t, txn.Commit())

	assert.InDelta(
		t,
		1,
		testutil.ToFloat64(d.opsTotal.WithLabelValues("delete")),
		0,
	)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	defer d.Close() //nolint:errcheck

	txn := d.NewTransaction(true)
	require.NoError(t, d.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Rollback())

	txn = d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = d.Get(txn, []byte("k"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestCommitTimestamp(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	defer d.Close() //nolint:errcheck

	ts, err := d.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	assert.ErrorIs(t, d.SetCommitTimestamp(1, nil), types.ErrNilTxn)

	txn := d.NewTransaction(true)
	require.NoError(t, d.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())

	ts, err = d.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)
}

func TestPersistentDataDir(t *testing.T) {
	dir := t.TempDir()
	d, err := New(WithDataDir(dir), WithGc(false))
	require.NoError(t, err)
	txn := d.NewTransaction(true)
	require.NoError(t, d.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())
	require.NoError(t, d.Close())

	d, err = New(WithDataDir(dir), WithGc(false))
	require.NoError(t, err)
	defer d.Close() //nolint:errcheck
	txn = d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := d.Get(txn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}
