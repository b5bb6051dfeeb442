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

package compression

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

var (
	ErrLeafAuthorityMustSign = errors.New("leaf authority must sign")
	ErrCollectionMismatch    = errors.New(
		"passed in collection mint does not match the collection mint of token",
	)
)

// InclusionArgs describes a claimed leaf and the transaction that wants to
// spend it
type InclusionArgs struct {
	Record         *leaf.MetadataArgs
	Proof          []leaf.Hash
	Tree           pubkey.Pubkey
	Root           leaf.Hash
	Owner          pubkey.Pubkey
	Delegate       pubkey.Pubkey
	CollectionMint pubkey.Pubkey
	Signer         pubkey.Pubkey
	Nonce          uint64
	Index          uint32
}

// VerifyInclusion checks that the signer controls the claimed leaf, that the
// leaf belongs to the collection and that the tree contains it. Tree service
// errors are returned unchanged.
func VerifyInclusion(
	ctx context.Context,
	txn Txn,
	args InclusionArgs,
) (leaf.Identity, error) {
	if !args.Signer.Equal(args.Owner) && !args.Signer.Equal(args.Delegate) {
		return leaf.Identity{}, ErrLeafAuthorityMustSign
	}
	if args.Record == nil || args.Record.Collection == nil ||
		!args.Record.Collection.Key.Equal(args.CollectionMint) {
		return leaf.Identity{}, ErrCollectionMismatch
	}
	id, err := leaf.DeriveIdentity(
		args.Tree,
		args.Nonce,
		args.Owner,
		args.Delegate,
		args.Record,
	)
	if err != nil {
		return leaf.Identity{}, fmt.Errorf("derive leaf identity: %w", err)
	}
	err = txn.VerifyLeaf(
		ctx,
		VerifyLeafArgs{
			Tree:  args.Tree,
			Root:  args.Root,
			Leaf:  id.LeafHash,
			Index: args.Index,
			Proof: args.Proof,
		},
	)
	if err != nil {
		return leaf.Identity{}, err
	}
	return id, nil
}
