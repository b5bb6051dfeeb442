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


package sqlite

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/database/types"
	"github.com/tiny-spl/tinyspl/pubkey"
)

var (
	testMint      = pubkey.MustFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testAuthority = pubkey.MustFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

func newTestStore(t *testing.T) *MetadataStoreSqlite {
	t.Helper()
	store, err := New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestOptions(t *testing.T) {
	m := &MetadataStoreSqlite{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	for _, opt := range []SqliteOptionFunc{
		WithDataDir("/tmp/test"),
		WithLogger(logger),
		WithPromRegistry(reg),
	} {
		opt(m)
	}
	assert.Equal(t, "/tmp/test", m.DataDir)
	assert.Equal(t, logger, m.Logger)
	assert.Equal(t, reg, m.PromRegistry)
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	first := newTestStore(t)
	second := newTestStore(t)
	require.NoError(
		t,
		first.CreateCollection(&models.Collection{Symbol: "ABC", Mint: testMint}, nil),
	)
	got, err := second.GetCollection(testMint, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuthority(t *testing.T) {
	store := newTestStore(t)
	got, err := store.GetAuthority(testMint, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	mintAuthority := testAuthority
	auth := &models.Authority{
		MintAuthority:  &mintAuthority,
		CollectionMint: testMint,
		Address:        testAuthority,
		IsVerified:     true,
	}
	require.NoError(t, store.SetAuthority(auth, nil))
	// Above the signed 64-bit range
	auth.CurrentSupply = types.Uint64(1 << 63)
	require.NoError(t, store.SetAuthority(auth, nil))

	got, err = store.GetAuthority(testMint, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.Uint64(1<<63), got.CurrentSupply)
	assert.True(t, got.IsVerified)
	require.NotNil(t, got.MintAuthority)
	assert.Equal(t, testAuthority, *got.MintAuthority)
}

func TestCollectionUnique(t *testing.T) {
	store := newTestStore(t)
	collection := &models.Collection{
		Name:      "Alpha Beta Coin",
		Symbol:    "ABC",
		Uri:       "https://example.com/abc.json",
		Mint:      testMint,
		Authority: testAuthority,
	}
	require.NoError(t, store.CreateCollection(collection, nil))
	dup := *collection
	dup.ID = 0
	require.Error(t, store.CreateCollection(&dup, nil))
	got, err := store.GetCollection(testMint, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ABC", got.Symbol)
	assert.Equal(t, testAuthority, got.Authority)
}

func TestTxnRollback(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(
		t,
		store.CreateCollection(&models.Collection{Symbol: "ABC", Mint: testMint}, txn),
	)
	require.NoError(t, store.SetCommitTimestamp(txn, 1234))
	require.NoError(t, txn.Rollback())
	// Finished transactions are rejected
	_, err := store.GetCollection(testMint, txn)
	require.ErrorIs(t, err, types.ErrTxnFinished)
	require.NoError(t, txn.Commit())

	got, err := store.GetCollection(testMint, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)
}

func TestTxnCommit(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(
		t,
		store.CreateCollection(&models.Collection{Symbol: "ABC", Mint: testMint}, txn),
	)
	require.NoError(t, store.SetCommitTimestamp(txn, 1234))
	require.NoError(t, store.SetCommitTimestamp(txn, 5678))
	require.NoError(t, txn.Commit())

	got, err := store.GetCollection(testMint, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(5678), ts)
}

func TestTxnFromOtherStore(t *testing.T) {
	first := newTestStore(t)
	second := newTestStore(t)
	txn := first.Transaction()
	defer func() {
		require.NoError(t, txn.Rollback())
	}()
	_, err := second.GetAuthority(testMint, txn)
	require.Error(t, err)
}
