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
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tiny-spl/tinyspl"
	"github.com/tiny-spl/tinyspl/balance"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

func assetIdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "asset-id <tree> <nonce>",
		Short: "Derive the asset id of the leaf minted with nonce into tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := pubkey.FromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid tree: %w", err)
			}
			nonce, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid nonce: %w", err)
			}
			assetId, err := leaf.AssetId(tree, nonce)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), assetId.String())
			return nil
		},
	}
}

func authorityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "authority <collection-mint>",
		Short: "Derive the protocol authority address of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := pubkey.FromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid collection mint: %w", err)
			}
			addr, err := tinyspl.AuthorityAddress(mint)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr.String())
			return nil
		},
	}
}

type encodeOptions struct {
	symbol     string
	collection string
	authority  string
	tree       string
	owner      string
	delegate   string
	amount     uint64
	nonce      uint64
}

type encodeOutput struct {
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Uri         string         `json:"uri"`
	Authority   pubkey.Pubkey  `json:"authority"`
	DataHash    leaf.Hash      `json:"dataHash"`
	CreatorHash leaf.Hash      `json:"creatorHash"`
	AssetId     *pubkey.Pubkey `json:"assetId,omitempty"`
	LeafHash    *leaf.Hash     `json:"leafHash,omitempty"`
}

func encodeLeaf(opts encodeOptions) (*encodeOutput, error) {
	collection, err := pubkey.FromBase58(opts.collection)
	if err != nil {
		return nil, fmt.Errorf("invalid collection: %w", err)
	}
	var authority pubkey.Pubkey
	if opts.authority != "" {
		authority, err = pubkey.FromBase58(opts.authority)
		if err != nil {
			return nil, fmt.Errorf("invalid authority: %w", err)
		}
	} else {
		authority, err = tinyspl.AuthorityAddress(collection)
		if err != nil {
			return nil, err
		}
	}
	record := balance.NewRecord(opts.symbol, opts.amount, collection, authority)
	if err := record.Validate(); err != nil {
		return nil, err
	}
	ret := &encodeOutput{
		Name:        record.Name,
		Symbol:      record.Symbol,
		Uri:         record.Uri,
		Authority:   authority,
		DataHash:    leaf.DataHash(record),
		CreatorHash: leaf.CreatorHash(record.Creators),
	}
	if opts.tree == "" {
		return ret, nil
	}
	if opts.owner == "" {
		return nil, errors.New("--owner is required with --tree")
	}
	tree, err := pubkey.FromBase58(opts.tree)
	if err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}
	owner, err := pubkey.FromBase58(opts.owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner: %w", err)
	}
	delegate := owner
	if opts.delegate != "" {
		delegate, err = pubkey.FromBase58(opts.delegate)
		if err != nil {
			return nil, fmt.Errorf("invalid delegate: %w", err)
		}
	}
	identity, err := leaf.DeriveIdentity(tree, opts.nonce, owner, delegate, record)
	if err != nil {
		return nil, err
	}
	ret.AssetId = &identity.AssetId
	ret.LeafHash = &identity.LeafHash
	return ret, nil
}

func encodeCommand() *cobra.Command {
	var opts encodeOptions
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build the leaf metadata for a balance and compute its hashes",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := encodeLeaf(opts)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&opts.symbol, "symbol", "", "collection symbol")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "collection mint")
	cmd.Flags().Uint64Var(&opts.amount, "amount", 0, "balance amount")
	cmd.Flags().
		StringVar(&opts.authority, "authority", "", "verified creator, derived from the collection when empty")
	cmd.Flags().StringVar(&opts.tree, "tree", "", "tree address, enables asset id and leaf hash output")
	cmd.Flags().Uint64Var(&opts.nonce, "nonce", 0, "leaf nonce")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "leaf owner")
	cmd.Flags().StringVar(&opts.delegate, "delegate", "", "leaf delegate, defaults to the owner")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("collection")
	return cmd
}

type decodeOutput struct {
	Collection      pubkey.Pubkey `json:"collection"`
	Amount          uint64        `json:"amount"`
	FormattedAmount string        `json:"formattedAmount"`
}

func decodeUri(uri string) (*decodeOutput, error) {
	amount, err := balance.DecodeAmount(uri)
	if err != nil {
		return nil, err
	}
	collection, err := balance.DecodeCollection(uri)
	if err != nil {
		return nil, err
	}
	return &decodeOutput{
		Collection:      collection,
		Amount:          amount,
		FormattedAmount: balance.FormatAmount(amount),
	}, nil
}

func decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <uri>",
		Short: "Recover the collection and amount from a balance metadata uri",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := decodeUri(args[0])
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}
