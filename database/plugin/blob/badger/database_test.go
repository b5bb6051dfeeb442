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

package badger_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl/database/plugin/blob/badger"
	"github.com/tiny-spl/tinyspl/database/types"
)

func TestBlobStoreInMemory(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	require.False(t, store.GcEnabled)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, store.Set(txn, []byte("k2"), []byte("v2")))
	require.NoError(t, store.Set(txn, []byte("x1"), []byte("v3")))
	require.NoError(t, txn.Commit())
	// Using a finished transaction is an error
	require.ErrorIs(t, store.Set(txn, []byte("k3"), nil), types.ErrTxnFinished)

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	keys, err := store.Keys(txn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("k1"), []byte("k2")}, keys)
	_, err = store.Get(txn, []byte("missing"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, txn.Rollback())

	// Rolled back writes are not visible
	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("k1")))
	require.NoError(t, txn.Rollback())
	txn = store.NewTransaction(false)
	_, err = store.Get(txn, []byte("k1"))
	require.NoError(t, err)
	require.NoError(t, txn.Rollback())

	_, err = store.Get(nil, []byte("k1"))
	require.ErrorIs(t, err, types.ErrNilTxn)

	require.NoError(t, store.Close())
}

func TestBlobStoreCommitTimestamp(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close()
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)
	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(txn, 1234567))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1234567), ts)
}

func TestBlobStoreMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	store, err := badger.New(badger.WithPromRegistry(registry))
	require.NoError(t, err)
	defer store.Close()
	count, err := testutil.GatherAndCount(
		registry,
		"database_blob_lsm_size_bytes",
		"database_blob_vlog_size_bytes",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBlobStoreOnDisk(t *testing.T) {
	dataDir := t.TempDir()
	store, err := badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("persisted"), []byte("yes")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store, err = badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	defer store.Close()
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("persisted"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), val)
}
