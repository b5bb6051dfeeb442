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


package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl"
	"github.com/tiny-spl/tinyspl/balance"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

const (
	testTree       = "4Wh3kmYZ2qNJ5FsYYVrXUMnoW4cGUnqSrixsDkLBJTin"
	testCollection = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testOwner      = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

func TestEncodeLeaf(t *testing.T) {
	out, err := encodeLeaf(
		encodeOptions{
			symbol:     "ABC",
			collection: testCollection,
			amount:     1234,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "1,234 ABC", out.Name)
	assert.Equal(t, "ABC", out.Symbol)
	collection := pubkey.MustFromBase58(testCollection)
	assert.Equal(t, balance.Uri(collection, 1234), out.Uri)
	authority, err := tinyspl.AuthorityAddress(collection)
	require.NoError(t, err)
	assert.Equal(t, authority, out.Authority)
	assert.Nil(t, out.AssetId)
	assert.Nil(t, out.LeafHash)
}

func TestEncodeLeafIdentity(t *testing.T) {
	out, err := encodeLeaf(
		encodeOptions{
			symbol:     "ABC",
			collection: testCollection,
			amount:     5,
			tree:       testTree,
			owner:      testOwner,
			nonce:      7,
		},
	)
	require.NoError(t, err)
	require.NotNil(t, out.AssetId)
	assetId, err := leaf.AssetId(pubkey.MustFromBase58(testTree), 7)
	require.NoError(t, err)
	assert.Equal(t, assetId, *out.AssetId)
	owner := pubkey.MustFromBase58(testOwner)
	expected := leaf.LeafHash(assetId, owner, owner, 7, out.DataHash, out.CreatorHash)
	assert.Equal(t, expected, *out.LeafHash)
}

func TestEncodeLeafErrors(t *testing.T) {
	testDefs := []struct {
		name string
		opts encodeOptions
	}{
		{"bad collection", encodeOptions{symbol: "ABC", collection: "nope"}},
		{"long symbol", encodeOptions{symbol: "ABCDEFGHIJK", collection: testCollection}},
		{"tree without owner", encodeOptions{symbol: "ABC", collection: testCollection, tree: testTree}},
		{
			"bad delegate",
			encodeOptions{
				symbol:     "ABC",
				collection: testCollection,
				tree:       testTree,
				owner:      testOwner,
				delegate:   "0OIl",
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := encodeLeaf(testDef.opts)
			require.Error(t, err)
		})
	}
}

func TestDecodeUri(t *testing.T) {
	collection := pubkey.MustFromBase58(testCollection)
	out, err := decodeUri(balance.Uri(collection, 1_000_000))
	require.NoError(t, err)
	assert.Equal(t, collection, out.Collection)
	assert.Equal(t, uint64(1_000_000), out.Amount)
	assert.Equal(t, "1,000,000", out.FormattedAmount)
	_, err = decodeUri("https://metadata.tinys.pl/collection?id=" + testCollection)
	require.ErrorIs(t, err, balance.ErrMissingAmount)
}

func TestAssetIdCommand(t *testing.T) {
	cmd := assetIdCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{testTree, "3"})
	require.NoError(t, cmd.Execute())
	expected, err := leaf.AssetId(pubkey.MustFromBase58(testTree), 3)
	require.NoError(t, err)
	assert.Equal(t, expected.String()+"\n", out.String())

	cmd = assetIdCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{testTree, "-1"})
	require.Error(t, cmd.Execute())
}

func TestAuthorityCommand(t *testing.T) {
	cmd := authorityCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{testCollection})
	require.NoError(t, cmd.Execute())
	expected, err := tinyspl.AuthorityAddress(pubkey.MustFromBase58(testCollection))
	require.NoError(t, err)
	assert.Equal(t, expected.String()+"\n", out.String())
}
