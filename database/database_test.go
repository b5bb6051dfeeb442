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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/database/types"
	"github.com/tiny-spl/tinyspl/pubkey"
)

var (
	testCollection = pubkey.MustFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testAuthority  = pubkey.MustFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	testSigner     = pubkey.MustFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
)

func newTestDb(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestAuthorityRoundTrip(t *testing.T) {
	db := newTestDb(t)
	_, err := db.GetAuthority(testCollection, nil)
	require.ErrorIs(t, err, database.ErrAuthorityNotFound)

	mintAuthority := testSigner
	authority := &models.Authority{
		CollectionMint: testCollection,
		Address:        testAuthority,
		IsVerified:     true,
		CurrentSupply:  types.Uint64(18446744073709551000),
		MintAuthority:  &mintAuthority,
	}
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		return db.SetAuthority(authority, txn)
	}))

	got, err := db.GetAuthority(testCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, testCollection, got.CollectionMint)
	assert.Equal(t, testAuthority, got.Address)
	assert.True(t, got.IsVerified)
	assert.Equal(t, types.Uint64(18446744073709551000), got.CurrentSupply)
	require.NotNil(t, got.MintAuthority)
	assert.Equal(t, testSigner, *got.MintAuthority)

	// Update in place
	got.CurrentSupply += 5
	require.NoError(t, db.SetAuthority(got, nil))
	again, err := db.GetAuthority(testCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
	assert.Equal(t, types.Uint64(18446744073709551005), again.CurrentSupply)
}

func TestAuthorityWithoutMintAuthority(t *testing.T) {
	db := newTestDb(t)
	require.NoError(t, db.SetAuthority(
		&models.Authority{
			CollectionMint: testCollection,
			Address:        testAuthority,
		},
		nil,
	))
	got, err := db.GetAuthority(testCollection, nil)
	require.NoError(t, err)
	assert.Nil(t, got.MintAuthority)
	assert.False(t, got.IsVerified)
}

func TestTxnRollback(t *testing.T) {
	db := newTestDb(t)
	errTest := errors.New("test")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.CreateCollection(
			&models.Collection{
				Mint:      testCollection,
				Authority: testAuthority,
				Name:      "Test",
				Symbol:    "TST",
			},
			txn,
		); err != nil {
			return err
		}
		if err := db.SetBuffer(&database.Buffer{Id: 1, Authority: testSigner}, txn); err != nil {
			return err
		}
		return errTest
	})
	require.ErrorIs(t, err, errTest)
	_, err = db.GetCollection(testCollection, nil)
	require.ErrorIs(t, err, database.ErrCollectionNotFound)
	_, err = db.GetBuffer(1, nil)
	require.ErrorIs(t, err, database.ErrBufferNotFound)
}

func TestCollectionRegistry(t *testing.T) {
	db := newTestDb(t)
	collection := &models.Collection{
		Mint:      testCollection,
		Authority: testAuthority,
		Name:      "Test Coin",
		Symbol:    "TST",
		Uri:       "https://example.com/tst.json",
	}
	require.NoError(t, db.CreateCollection(collection, nil))
	got, err := db.GetCollection(testCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, "Test Coin", got.Name)
	assert.Equal(t, "TST", got.Symbol)
	assert.Equal(t, "https://example.com/tst.json", got.Uri)
	assert.Equal(t, testAuthority, got.Authority)
	// Mints are unique
	require.Error(t, db.CreateCollection(&models.Collection{Mint: testCollection}, nil))
}

func TestBuffers(t *testing.T) {
	db := newTestDb(t)
	txn := db.Transaction(true)
	var ids []uint64
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		for range 3 {
			id, err := db.NextBufferId(txn)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			if err := db.SetBuffer(
				&database.Buffer{
					Id:        id,
					Authority: testSigner,
					Data:      []byte{byte(id), 0, 0},
				},
				txn,
			); err != nil {
				return err
			}
		}
		return nil
	}))
	assert.Equal(t, []uint64{0, 1, 2}, ids)

	buf, err := db.GetBuffer(1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), buf.Id)
	assert.Equal(t, testSigner, buf.Authority)
	assert.Equal(t, []byte{1, 0, 0}, buf.Data)

	txn = db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		return db.DeleteBuffer(1, txn)
	}))
	remaining, err := db.BufferIds(nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2}, remaining)

	// Ids are not reused after a delete
	txn = db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		id, err := db.NextBufferId(txn)
		assert.Equal(t, uint64(3), id)
		return err
	}))
}

func TestPersistence(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		if err := db.SetAuthority(
			&models.Authority{
				CollectionMint: testCollection,
				Address:        testAuthority,
				IsVerified:     true,
			},
			txn,
		); err != nil {
			return err
		}
		return db.SetBuffer(&database.Buffer{Id: 7, Authority: testSigner}, txn)
	}))
	require.NoError(t, db.Close())

	// Reopening checks that both stores committed together
	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close()
	got, err := db.GetAuthority(testCollection, nil)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	_, err = db.GetBuffer(7, nil)
	require.NoError(t, err)
}

func TestSeparateInMemoryDatabases(t *testing.T) {
	db1 := newTestDb(t)
	db2 := newTestDb(t)
	require.NoError(t, db1.CreateCollection(&models.Collection{Mint: testCollection}, nil))
	_, err := db2.GetCollection(testCollection, nil)
	require.ErrorIs(t, err, database.ErrCollectionNotFound)
}

func TestBufferTxnLeavesMetadataFree(t *testing.T) {
	db := newTestDb(t)
	txn := db.Transaction(true)
	defer txn.Release()
	require.NoError(t, db.SetBuffer(&database.Buffer{Id: 3, Authority: testSigner}, txn))
	// The in-memory metadata store has a single connection, which must not
	// be held by a transaction that only touched buffers
	_, err := db.GetCollection(testCollection, nil)
	require.ErrorIs(t, err, database.ErrCollectionNotFound)
	require.NoError(t, txn.Commit())
	_, err = db.GetBuffer(3, nil)
	require.NoError(t, err)
}

func TestFinishedTxnRejectsMetadata(t *testing.T) {
	db := newTestDb(t)
	txn := db.Transaction(true)
	require.NoError(t, txn.Commit())
	err := db.CreateCollection(&models.Collection{Mint: testCollection}, txn)
	require.ErrorIs(t, err, types.ErrTxnFinished)
	_, err = db.GetCollection(testCollection, nil)
	require.ErrorIs(t, err, database.ErrCollectionNotFound)
}
