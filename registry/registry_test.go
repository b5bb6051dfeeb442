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

package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/pubkey"
	"github.com/tiny-spl/tinyspl/registry"
)

var (
	testMint      = pubkey.MustFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testAuthority = pubkey.MustFromBase58("11111111111111111111111111111111")
)

func TestLookup(t *testing.T) {
	db, err := database.New(nil)
	require.NoError(t, err)
	defer db.Close()
	r := registry.New(db, nil)
	_, err = r.Lookup(context.Background(), testMint)
	require.ErrorIs(t, err, registry.ErrUnknownCollection)
	require.NoError(
		t,
		db.CreateCollection(
			&models.Collection{
				Name:      "Test Token",
				Symbol:    "TST",
				Uri:       "https://example.com/tst.json",
				Mint:      testMint,
				Authority: testAuthority,
			},
			nil,
		),
	)
	md, err := r.Lookup(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "TST", md.Symbol)
	assert.Equal(t, "Test Token", md.Name)
	assert.Equal(t, testAuthority, md.Authority)
	// Callers get their own copy
	md.Symbol = "XXX"
	md, err = r.Lookup(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "TST", md.Symbol)
}

func TestLookupCancelled(t *testing.T) {
	db, err := database.New(nil)
	require.NoError(t, err)
	defer db.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = registry.New(db, nil).Lookup(ctx, testMint)
	require.ErrorIs(t, err, context.Canceled)
}
