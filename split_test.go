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

package tinyspl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl"
	"github.com/tiny-spl/tinyspl/balance"
	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/conservation"
	"github.com/tiny-spl/tinyspl/leaf"
)

func TestSplit(t *testing.T) {
	env := newTestEnv(t)
	src := env.mint(t, 900)
	leaves, err := env.program.Split(
		context.Background(),
		env.splitArgs(t, src, 300, 300, 300),
	)
	require.NoError(t, err)
	require.Len(t, leaves, 3)
	for i, l := range leaves {
		amount, err := balance.AmountOf(l.Record)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), amount)
		assert.Equal(t, "300 ABC", l.Record.Name)
		assert.Equal(t, uint32(i+1), l.Index)
		assert.Equal(t, testOwner, l.Owner)
		stored, err := env.trees.Leaf(testTree, l.Index)
		require.NoError(t, err)
		assert.Equal(t, l.LeafHash, stored)
	}
	// The source leaf is burned and the supply is unchanged
	stored, err := env.trees.Leaf(testTree, src.Index)
	require.NoError(t, err)
	assert.Equal(t, leaf.Hash{}, stored)
	assert.Equal(t, uint64(900), env.supply(t))
}

func TestSplitRejectsBeforeTouchingTree(t *testing.T) {
	env := newTestEnv(t)
	src := env.mint(t, 900)
	stranger := testNewOwner
	tests := []struct {
		name    string
		modify  func(*tinyspl.SplitArgs)
		wantErr error
	}{
		{
			name: "amounts do not add up",
			modify: func(a *tinyspl.SplitArgs) {
				a.DestinationAmounts = []uint64{300, 301}
			},
			wantErr: conservation.ErrInvalidSplitAmounts,
		},
		{
			name: "zero destination",
			modify: func(a *tinyspl.SplitArgs) {
				a.DestinationAmounts = []uint64{900, 0}
			},
			wantErr: conservation.ErrInvalidSplitAmounts,
		},
		{
			name: "signer is neither owner nor delegate",
			modify: func(a *tinyspl.SplitArgs) {
				a.Signer = stranger
			},
			wantErr: compression.ErrLeafAuthorityMustSign,
		},
		{
			name: "claimed asset id differs",
			modify: func(a *tinyspl.SplitArgs) {
				a.AssetId = stranger
			},
			wantErr: tinyspl.ErrAssetIdMismatch,
		},
		{
			name: "wrong source amount",
			modify: func(a *tinyspl.SplitArgs) {
				a.SourceAmount = 901
				a.DestinationAmounts = []uint64{900, 1}
			},
			wantErr: compression.ErrInvalidProof,
		},
		{
			name: "unknown root",
			modify: func(a *tinyspl.SplitArgs) {
				a.Root = leaf.Keccak256([]byte("stale"))
			},
			wantErr: compression.ErrRootNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := env.root(t)
			args := env.splitArgs(t, src, 300, 300, 300)
			tc.modify(&args)
			_, err := env.program.Split(context.Background(), args)
			require.ErrorIs(t, err, tc.wantErr)
			requireOperationError(t, err, "split")
			assert.Equal(t, root, env.root(t))
			numMinted, err := env.trees.NumMinted(testTree)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), numMinted)
		})
	}
}

func TestSplitDoubleSpend(t *testing.T) {
	env := newTestEnv(t)
	src := env.mint(t, 900)
	args := env.splitArgs(t, src, 450, 450)
	_, err := env.program.Split(context.Background(), args)
	require.NoError(t, err)
	_, err = env.program.Split(context.Background(), args)
	require.ErrorIs(t, err, compression.ErrLeafContentsModified)
}

func TestSplitWithStaleProof(t *testing.T) {
	env := newTestEnv(t)
	src := env.mint(t, 900)
	// Proof taken before later mints is fast-forwarded by the tree
	args := env.splitArgs(t, src, 100, 800)
	env.mint(t, 5)
	env.mint(t, 6)
	leaves, err := env.program.Split(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, uint32(3), leaves[0].Index)
}

func TestSplitToNewOwner(t *testing.T) {
	env := newTestEnv(t)
	src := env.mint(t, 10)
	args := env.splitArgs(t, src, 4, 6)
	args.NewOwner = testNewOwner
	leaves, err := env.program.Split(context.Background(), args)
	require.NoError(t, err)
	for _, l := range leaves {
		assert.Equal(t, testNewOwner, l.Owner)
		assert.Equal(t, testNewOwner, l.Delegate)
	}
	// The previous owner can no longer spend them
	stolen := env.splitArgs(t, leaves[0], 2, 2)
	stolen.Signer = testOwner
	_, err = env.program.Split(context.Background(), stolen)
	require.ErrorIs(t, err, compression.ErrLeafAuthorityMustSign)
}

func TestTransfer(t *testing.T) {
	env := newTestEnv(t)
	src := env.mint(t, 77)
	moved, err := env.program.Transfer(
		context.Background(),
		tinyspl.TransferArgs{
			Proof:          env.proof(t, src.Index),
			Tree:           testTree,
			CollectionMint: testCollection,
			AssetId:        src.AssetId,
			Root:           env.root(t),
			Owner:          src.Owner,
			Delegate:       src.Delegate,
			NewOwner:       testNewOwner,
			Signer:         src.Owner,
			Amount:         src.Amount,
			Nonce:          src.Nonce,
			Index:          src.Index,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, testNewOwner, moved.Owner)
	assert.Equal(t, uint64(77), moved.Amount)
	assert.Equal(t, "77 ABC", moved.Record.Name)
	assert.NotEqual(t, src.AssetId, moved.AssetId)
	// The new owner can split what it received
	args := env.splitArgs(t, moved, 7, 70)
	leaves, err := env.program.Split(context.Background(), args)
	require.NoError(t, err)
	assert.Len(t, leaves, 2)
}

func TestTransferZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	src := env.mint(t, 77)
	_, err := env.program.Transfer(
		context.Background(),
		tinyspl.TransferArgs{
			Proof:          env.proof(t, src.Index),
			Tree:           testTree,
			CollectionMint: testCollection,
			AssetId:        src.AssetId,
			Root:           env.root(t),
			Owner:          src.Owner,
			Delegate:       src.Delegate,
			NewOwner:       testNewOwner,
			Signer:         src.Owner,
			Nonce:          src.Nonce,
			Index:          src.Index,
		},
	)
	require.ErrorIs(t, err, conservation.ErrInvalidSplitAmounts)
	requireOperationError(t, err, "transfer")
}
