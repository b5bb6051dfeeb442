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
	"strconv"
	"time"

	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/conservation"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/database/types"
	"github.com/tiny-spl/tinyspl/pubkey"
	"go.opentelemetry.io/otel/attribute"
)

// MintToArgs describes new supply minted as a single balance leaf
type MintToArgs struct {
	Tree           pubkey.Pubkey
	CollectionMint pubkey.Pubkey
	Owner          pubkey.Pubkey
	Signer         pubkey.Pubkey
	Amount         uint64
}

// MintTo appends one balance leaf of the given amount and adds the amount to
// the collection supply. The signer must be the collection's mint authority
func (p *Program) MintTo(
	ctx context.Context,
	args MintToArgs,
) (ret Leaf, err error) {
	const op = "mint_to"
	start := time.Now()
	ctx, endSpan := p.startSpan(
		ctx,
		op,
		attribute.String("tree", args.Tree.String()),
		attribute.String("collection_mint", args.CollectionMint.String()),
		attribute.String("amount", strconv.FormatUint(args.Amount, 10)),
	)
	defer func() {
		endSpan(err)
		err = p.finish(op, args.Tree, start, err)
	}()
	if args.Amount == 0 {
		return Leaf{}, ErrInvalidAmount
	}
	coll, err := p.loadCollection(ctx, args.CollectionMint)
	if err != nil {
		return Leaf{}, err
	}
	records, err := coll.mintableRecords([]uint64{args.Amount})
	if err != nil {
		return Leaf{}, err
	}
	p.supplyMutex.Lock()
	defer p.supplyMutex.Unlock()
	err = p.update(ctx, func(txn *database.Txn, tree compression.Txn) error {
		auth, err := p.verifiedAuthority(txn, args.CollectionMint)
		if err != nil {
			return err
		}
		if auth.MintAuthority == nil || !auth.MintAuthority.Equal(args.Signer) {
			return fmt.Errorf("%w: %s", ErrInvalidMintAuthority, args.Signer)
		}
		supply, err := conservation.CheckedAdd(
			uint64(auth.CurrentSupply),
			args.Amount,
		)
		if err != nil {
			return fmt.Errorf("supply: %w", err)
		}
		ret, err = mintLeaf(ctx, tree, args.Tree, args.Owner, records[0], args.Amount)
		if err != nil {
			return err
		}
		auth.CurrentSupply = types.Uint64(supply)
		return p.db.SetAuthority(auth, txn)
	})
	if err != nil {
		return Leaf{}, err
	}
	if p.metrics != nil {
		p.metrics.amountMinted.Add(float64(args.Amount))
	}
	p.logger.Debug(
		"minted balance",
		"tree", args.Tree.String(),
		"collection_mint", args.CollectionMint.String(),
		"asset_id", ret.AssetId.String(),
		"amount", args.Amount,
	)
	p.publishMinted(args.Tree, args.CollectionMint, ret)
	return ret, nil
}
