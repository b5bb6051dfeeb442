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
	"time"

	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/conservation"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
	"go.opentelemetry.io/otel/attribute"
)

// SplitArgs identifies a source leaf and the amounts it is divided into
type SplitArgs struct {
	Proof              []leaf.Hash
	DestinationAmounts []uint64
	Tree               pubkey.Pubkey
	CollectionMint     pubkey.Pubkey
	AssetId            pubkey.Pubkey
	Root               leaf.Hash
	Owner              pubkey.Pubkey
	Delegate           pubkey.Pubkey
	// NewOwner owns every destination leaf. It defaults to Owner
	NewOwner     pubkey.Pubkey
	Signer       pubkey.Pubkey
	SourceAmount uint64
	Nonce        uint64
	Index        uint32
}

// Split burns the source leaf and mints one leaf per destination amount. The
// destination amounts must be positive and add up to the source amount
func (p *Program) Split(
	ctx context.Context,
	args SplitArgs,
) ([]Leaf, error) {
	return p.split(ctx, "split", args)
}

// TransferArgs identifies a leaf to hand over whole to a new owner
type TransferArgs struct {
	Proof          []leaf.Hash
	Tree           pubkey.Pubkey
	CollectionMint pubkey.Pubkey
	AssetId        pubkey.Pubkey
	Root           leaf.Hash
	Owner          pubkey.Pubkey
	Delegate       pubkey.Pubkey
	NewOwner       pubkey.Pubkey
	Signer         pubkey.Pubkey
	Amount         uint64
	Nonce          uint64
	Index          uint32
}

// Transfer replaces a leaf with a leaf of the same amount owned by NewOwner
func (p *Program) Transfer(
	ctx context.Context,
	args TransferArgs,
) (Leaf, error) {
	leaves, err := p.split(
		ctx,
		"transfer",
		SplitArgs{
			Proof:              args.Proof,
			DestinationAmounts: []uint64{args.Amount},
			Tree:               args.Tree,
			CollectionMint:     args.CollectionMint,
			AssetId:            args.AssetId,
			Root:               args.Root,
			Owner:              args.Owner,
			Delegate:           args.Delegate,
			NewOwner:           args.NewOwner,
			Signer:             args.Signer,
			SourceAmount:       args.Amount,
			Nonce:              args.Nonce,
			Index:              args.Index,
		},
	)
	if err != nil {
		return Leaf{}, err
	}
	return leaves[0], nil
}

func (p *Program) split(
	ctx context.Context,
	op string,
	args SplitArgs,
) (ret []Leaf, err error) {
	start := time.Now()
	ctx, endSpan := p.startSpan(
		ctx,
		op,
		attribute.String("tree", args.Tree.String()),
		attribute.String("asset_id", args.AssetId.String()),
		attribute.Int("destinations", len(args.DestinationAmounts)),
	)
	defer func() {
		endSpan(err)
		err = p.finish(op, args.Tree, start, err)
	}()
	if err := conservation.VerifySplit(args.SourceAmount, args.DestinationAmounts); err != nil {
		return nil, err
	}
	newOwner := args.NewOwner
	if newOwner.IsZero() {
		newOwner = args.Owner
	}
	coll, err := p.loadCollection(ctx, args.CollectionMint)
	if err != nil {
		return nil, err
	}
	records, err := coll.mintableRecords(args.DestinationAmounts)
	if err != nil {
		return nil, err
	}
	var spent spentLeaf
	err = p.update(ctx, func(txn *database.Txn, tree compression.Txn) error {
		ret = nil
		if _, err := p.verifiedAuthority(txn, args.CollectionMint); err != nil {
			return err
		}
		var err error
		spent, err = verifySpend(
			ctx,
			tree,
			args.Tree,
			args.Owner,
			args.Delegate,
			args.Signer,
			args.CollectionMint,
			spendArgs{
				record:  coll.record(args.SourceAmount),
				proof:   args.Proof,
				root:    args.Root,
				assetId: args.AssetId,
				amount:  args.SourceAmount,
				nonce:   args.Nonce,
				index:   args.Index,
			},
		)
		if err != nil {
			return err
		}
		if err := burnLeaf(ctx, tree, args.Tree, args.Owner, args.Delegate, spent); err != nil {
			return err
		}
		for i, record := range records {
			minted, err := mintLeaf(
				ctx,
				tree,
				args.Tree,
				newOwner,
				record,
				args.DestinationAmounts[i],
			)
			if err != nil {
				return err
			}
			ret = append(ret, minted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug(
		"split balance",
		"op", op,
		"tree", args.Tree.String(),
		"asset_id", args.AssetId.String(),
		"source_amount", args.SourceAmount,
		"destinations", len(ret),
	)
	p.publishBurned(args.Tree, args.CollectionMint, args.Owner, spent)
	p.publishMinted(args.Tree, args.CollectionMint, ret...)
	return ret, nil
}
