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
	"time"

	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/event"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
	"go.opentelemetry.io/otel/attribute"
)

// CreateMintArgs describes a new collection. The mint authority becomes the
// only signer allowed to MintTo the collection
type CreateMintArgs struct {
	Name           string
	Symbol         string
	Uri            string
	CollectionMint pubkey.Pubkey
	MintAuthority  pubkey.Pubkey
}

func (a CreateMintArgs) validate() error {
	switch {
	case len(a.Name) > leaf.MaxNameLength:
		return fmt.Errorf("%w: collection name is %d bytes", leaf.ErrInvalidMetadata, len(a.Name))
	case len(a.Symbol) > leaf.MaxSymbolLength:
		return fmt.Errorf("%w: collection symbol is %d bytes", leaf.ErrInvalidMetadata, len(a.Symbol))
	case len(a.Uri) > leaf.MaxUriLength:
		return fmt.Errorf("%w: collection uri is %d bytes", leaf.ErrInvalidMetadata, len(a.Uri))
	case a.CollectionMint.IsZero():
		return fmt.Errorf("%w: collection mint is empty", leaf.ErrInvalidMetadata)
	}
	return nil
}

// CreateMint registers a collection and its verified protocol authority with
// zero supply
func (p *Program) CreateMint(
	ctx context.Context,
	args CreateMintArgs,
) (ret *AuthorityInfo, err error) {
	const op = "create_mint"
	start := time.Now()
	ctx, endSpan := p.startSpan(
		ctx,
		op,
		attribute.String("collection_mint", args.CollectionMint.String()),
	)
	defer func() {
		endSpan(err)
		err = p.finish(op, pubkey.Pubkey{}, start, err)
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := args.validate(); err != nil {
		return nil, err
	}
	authority, err := AuthorityAddress(args.CollectionMint)
	if err != nil {
		return nil, fmt.Errorf("derive authority: %w", err)
	}
	mintAuthority := args.MintAuthority
	auth := &models.Authority{
		MintAuthority:  &mintAuthority,
		CollectionMint: args.CollectionMint,
		Address:        authority,
		CurrentSupply:  0,
		IsVerified:     true,
	}
	txn := p.db.Transaction(true)
	defer txn.Release()
	err = txn.Do(func(txn *database.Txn) error {
		_, err := p.db.GetCollection(args.CollectionMint, txn)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrCollectionExists, args.CollectionMint)
		}
		if !errors.Is(err, database.ErrCollectionNotFound) {
			return err
		}
		_, err = p.db.GetAuthority(args.CollectionMint, txn)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrCollectionExists, args.CollectionMint)
		}
		if !errors.Is(err, database.ErrAuthorityNotFound) {
			return err
		}
		err = p.db.CreateCollection(
			&models.Collection{
				Name:      args.Name,
				Symbol:    args.Symbol,
				Uri:       args.Uri,
				Mint:      args.CollectionMint,
				Authority: authority,
			},
			txn,
		)
		if err != nil {
			return err
		}
		return p.db.SetAuthority(auth, txn)
	})
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.collections.Inc()
	}
	p.logger.Info(
		"created collection",
		"collection_mint", args.CollectionMint.String(),
		"symbol", args.Symbol,
		"authority", authority.String(),
	)
	p.eventBus.Publish(
		event.NewEvent(
			event.CollectionCreatedEventType,
			event.CollectionCreatedEvent{
				Name:           args.Name,
				Symbol:         args.Symbol,
				Uri:            args.Uri,
				CollectionMint: args.CollectionMint,
				Authority:      authority,
				MintAuthority:  args.MintAuthority,
			},
		),
	)
	return authorityInfo(auth), nil
}
