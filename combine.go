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

package tinyspl

import (
	"context"
	"fmt"
	"time"

	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/conservation"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
	"go.opentelemetry.io/otel/attribute"
)

// MinCombineSources is the fewest leaves a combine accepts
const MinCombineSources = 2

// CombineArgs identifies the source leaves of a combine as parallel arrays.
// Proof holds the proofs of every source concatenated in order, and
// ProofPathEndIndexes the exclusive end offset of each source's proof in it
type CombineArgs struct {
	Proof               []leaf.Hash
	ProofPathEndIndexes []uint32
	AssetIds            []pubkey.Pubkey
	Roots               []leaf.Hash
	Amounts             []uint64
	Nonces              []uint64
	Indexes             []uint32
	Tree                pubkey.Pubkey
	CollectionMint      pubkey.Pubkey
	Owner               pubkey.Pubkey
	Delegate            pubkey.Pubkey
	// NewOwner owns the combined leaf. It defaults to Owner
	NewOwner pubkey.Pubkey
	Signer   pubkey.Pubkey
}

func (a CombineArgs) validate() ([][]leaf.Hash, error) {
	err := conservation.CheckParallel(
		len(a.AssetIds),
		len(a.Roots),
		len(a.Amounts),
		len(a.Nonces),
		len(a.Indexes),
		len(a.ProofPathEndIndexes),
	)
	if err != nil {
		return nil, err
	}
	if len(a.AssetIds) < MinCombineSources {
		return nil, fmt.Errorf(
			"%w: %d sources, need at least %d",
			conservation.ErrInvalidCombineParameters,
			len(a.AssetIds),
			MinCombineSources,
		)
	}
	if err := conservation.CheckDistinct(a.AssetIds); err != nil {
		return nil, err
	}
	return conservation.SliceProofSegments(a.Proof, a.ProofPathEndIndexes)
}

// Combine burns every source leaf and mints one leaf holding their total.
// Every source is verified before the first burn
func (p *Program) Combine(
	ctx context.Context,
	args CombineArgs,
) (ret Leaf, err error) {
	const op = "combine"
	start := time.Now()
	ctx, endSpan := p.startSpan(
		ctx,
		op,
		attribute.String("tree", args.Tree.String()),
		attribute.Int("sources", len(args.AssetIds)),
	)
	defer func() {
		endSpan(err)
		err = p.finish(op, args.Tree, start, err)
	}()
	proofs, err := args.validate()
	if err != nil {
		return Leaf{}, err
	}
	total, err := conservation.VerifyCombine(args.Amounts)
	if err != nil {
		return Leaf{}, err
	}
	newOwner := args.NewOwner
	if newOwner.IsZero() {
		newOwner = args.Owner
	}
	coll, err := p.loadCollection(ctx, args.CollectionMint)
	if err != nil {
		return Leaf{}, err
	}
	records, err := coll.mintableRecords([]uint64{total})
	if err != nil {
		return Leaf{}, err
	}
	var spent []spentLeaf
	err = p.update(ctx, func(txn *database.Txn, tree compression.Txn) error {
		spent = make([]spentLeaf, 0, len(args.AssetIds))
		if _, err := p.verifiedAuthority(txn, args.CollectionMint); err != nil {
			return err
		}
		for i := range args.AssetIds {
			s, err := verifySpend(
				ctx,
				tree,
				args.Tree,
				args.Owner,
				args.Delegate,
				args.Signer,
				args.CollectionMint,
				spendArgs{
					record:  coll.record(args.Amounts[i]),
					proof:   proofs[i],
					root:    args.Roots[i],
					assetId: args.AssetIds[i],
					amount:  args.Amounts[i],
					nonce:   args.Nonces[i],
					index:   args.Indexes[i],
				},
			)
			if err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
			spent = append(spent, s)
		}
		for i, s := range spent {
			if err := burnLeaf(ctx, tree, args.Tree, args.Owner, args.Delegate, s); err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
		}
		var err error
		ret, err = mintLeaf(ctx, tree, args.Tree, newOwner, records[0], total)
		return err
	})
	if err != nil {
		return Leaf{}, err
	}
	p.logger.Debug(
		"combined balances",
		"tree", args.Tree.String(),
		"sources", len(spent),
		"amount", total,
		"asset_id", ret.AssetId.String(),
	)
	p.publishBurned(args.Tree, args.CollectionMint, args.Owner, spent...)
	p.publishMinted(args.Tree, args.CollectionMint, ret)
	return ret, nil
}
