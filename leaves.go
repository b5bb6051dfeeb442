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
	"errors"
	"fmt"

	"github.com/tiny-spl/tinyspl/balance"
	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/event"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

// Leaf is a balance leaf appended to a tree by an operation
type Leaf struct {
	Record   *leaf.MetadataArgs
	AssetId  pubkey.Pubkey
	LeafHash leaf.Hash
	Owner    pubkey.Pubkey
	Delegate pubkey.Pubkey
	Amount   uint64
	Nonce    uint64
	Index    uint32
}

// collectionContext is what every balance record of a collection is built
// from
type collectionContext struct {
	symbol    string
	mint      pubkey.Pubkey
	authority pubkey.Pubkey
}

func (p *Program) loadCollection(
	ctx context.Context,
	mint pubkey.Pubkey,
) (collectionContext, error) {
	md, err := p.registry.Lookup(ctx, mint)
	if err != nil {
		return collectionContext{}, err
	}
	authority, err := AuthorityAddress(mint)
	if err != nil {
		return collectionContext{}, fmt.Errorf("derive authority: %w", err)
	}
	return collectionContext{
		symbol:    md.Symbol,
		mint:      mint,
		authority: authority,
	}, nil
}

// record builds the balance record for an amount in the collection
func (c collectionContext) record(amount uint64) *leaf.MetadataArgs {
	return balance.NewRecord(c.symbol, amount, c.mint, c.authority)
}

// mintableRecords builds and validates the records of every destination
// amount, so that nothing is burned for a destination that cannot be minted
func (c collectionContext) mintableRecords(
	amounts []uint64,
) ([]*leaf.MetadataArgs, error) {
	ret := make([]*leaf.MetadataArgs, 0, len(amounts))
	for _, amount := range amounts {
		record := c.record(amount)
		if err := record.Validate(); err != nil {
			return nil, err
		}
		ret = append(ret, record)
	}
	return ret, nil
}

// verifiedAuthority loads the authority of a collection and requires that it
// was created by CreateMint
func (p *Program) verifiedAuthority(
	txn *database.Txn,
	mint pubkey.Pubkey,
) (*models.Authority, error) {
	auth, err := p.db.GetAuthority(mint, txn)
	if err != nil {
		if errors.Is(err, database.ErrAuthorityNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnverifiedMint, mint)
		}
		return nil, err
	}
	if !auth.IsVerified {
		return nil, fmt.Errorf("%w: %s", ErrUnverifiedMint, mint)
	}
	return auth, nil
}

// spentLeaf is a source leaf that passed inclusion verification
type spentLeaf struct {
	id     leaf.Identity
	proof  []leaf.Hash
	root   leaf.Hash
	amount uint64
	nonce  uint64
	index  uint32
}

type spendArgs struct {
	record  *leaf.MetadataArgs
	proof   []leaf.Hash
	root    leaf.Hash
	assetId pubkey.Pubkey
	amount  uint64
	nonce   uint64
	index   uint32
}

// verifySpend checks that the signer may spend a leaf that is present in the
// tree and whose asset id is the one the caller claimed
func verifySpend(
	ctx context.Context,
	tree compression.Txn,
	treeAddr pubkey.Pubkey,
	owner pubkey.Pubkey,
	delegate pubkey.Pubkey,
	signer pubkey.Pubkey,
	collectionMint pubkey.Pubkey,
	args spendArgs,
) (spentLeaf, error) {
	id, err := compression.VerifyInclusion(
		ctx,
		tree,
		compression.InclusionArgs{
			Record:         args.record,
			Proof:          args.proof,
			Tree:           treeAddr,
			Root:           args.root,
			Owner:          owner,
			Delegate:       delegate,
			CollectionMint: collectionMint,
			Signer:         signer,
			Nonce:          args.nonce,
			Index:          args.index,
		},
	)
	if err != nil {
		return spentLeaf{}, err
	}
	if !id.AssetId.Equal(args.assetId) {
		return spentLeaf{}, fmt.Errorf(
			"%w: derived %s, got %s",
			ErrAssetIdMismatch,
			id.AssetId,
			args.assetId,
		)
	}
	return spentLeaf{
		id:     id,
		proof:  args.proof,
		root:   args.root,
		amount: args.amount,
		nonce:  args.nonce,
		index:  args.index,
	}, nil
}

func burnLeaf(
	ctx context.Context,
	tree compression.Txn,
	treeAddr pubkey.Pubkey,
	owner pubkey.Pubkey,
	delegate pubkey.Pubkey,
	spent spentLeaf,
) error {
	return tree.Burn(
		ctx,
		compression.BurnArgs{
			Proof:       spent.proof,
			Tree:        treeAddr,
			Root:        spent.root,
			Owner:       owner,
			Delegate:    delegate,
			DataHash:    spent.id.DataHash,
			CreatorHash: spent.id.CreatorHash,
			Nonce:       spent.nonce,
			Index:       spent.index,
		},
	)
}

// mintLeaf appends a balance leaf owned and delegated to owner
func mintLeaf(
	ctx context.Context,
	tree compression.Txn,
	treeAddr pubkey.Pubkey,
	owner pubkey.Pubkey,
	record *leaf.MetadataArgs,
	amount uint64,
) (Leaf, error) {
	res, err := tree.MintToCollection(
		ctx,
		compression.MintArgs{
			Record:   record,
			Tree:     treeAddr,
			Owner:    owner,
			Delegate: owner,
		},
	)
	if err != nil {
		return Leaf{}, err
	}
	return Leaf{
		Record:   record,
		AssetId:  res.AssetId,
		LeafHash: res.LeafHash,
		Owner:    owner,
		Delegate: owner,
		Amount:   amount,
		Nonce:    res.Nonce,
		Index:    res.Index,
	}, nil
}

func (p *Program) publishMinted(
	treeAddr pubkey.Pubkey,
	collectionMint pubkey.Pubkey,
	leaves ...Leaf,
) {
	for _, l := range leaves {
		p.eventBus.Publish(
			event.NewEvent(
				event.LeafMintedEventType,
				event.LeafMintedEvent{
					Tree:           treeAddr,
					CollectionMint: collectionMint,
					Owner:          l.Owner,
					AssetId:        l.AssetId,
					Amount:         l.Amount,
					Nonce:          l.Nonce,
					Index:          l.Index,
				},
			),
		)
	}
	if p.metrics != nil {
		p.metrics.leavesMinted.Add(float64(len(leaves)))
	}
}

func (p *Program) publishBurned(
	treeAddr pubkey.Pubkey,
	collectionMint pubkey.Pubkey,
	owner pubkey.Pubkey,
	spent ...spentLeaf,
) {
	for _, s := range spent {
		p.eventBus.Publish(
			event.NewEvent(
				event.LeafBurnedEventType,
				event.LeafBurnedEvent{
					Tree:           treeAddr,
					CollectionMint: collectionMint,
					Owner:          owner,
					AssetId:        s.id.AssetId,
					Amount:         s.amount,
					Nonce:          s.nonce,
					Index:          s.index,
				},
			),
		)
	}
	if p.metrics != nil {
		p.metrics.leavesBurned.Add(float64(len(spent)))
	}
}
