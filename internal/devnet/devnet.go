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


// Package devnet runs a complete balance lifecycle against an in-process
// tree service. It backs the devnet command and doubles as an end to end
// smoke test of the orchestrator.
package devnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tiny-spl/tinyspl"
	"github.com/tiny-spl/tinyspl/internal/memtree"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/metabuf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

const (
	DefaultMintAmount = 1_000_000
	DefaultSymbol     = "DEV"
	DefaultName       = "Devnet Token"
	DefaultUri        = "https://example.com/devnet.json"

	// Split produces three leaves, each of which must be non-empty
	minMintAmount = 3
)

var ErrMintAmountTooSmall = errors.New("mint amount too small to split three ways")

type Config struct {
	Logger            *slog.Logger
	PromRegistry      prometheus.Registerer
	DataDir           string
	MintAmount        uint64
	TreeMaxDepth      int
	TreeMaxBufferSize int
}

// Accounts are the addresses taking part in a run
type Accounts struct {
	Tree          pubkey.Pubkey
	Collection    pubkey.Pubkey
	MintAuthority pubkey.Pubkey
	Owner         pubkey.Pubkey
	Recipient     pubkey.Pubkey
}

// Report describes the outcome of every step of a run
type Report struct {
	Accounts     Accounts
	Authority    *tinyspl.AuthorityInfo
	Minted       tinyspl.Leaf
	Split        []tinyspl.Leaf
	Combined     tinyspl.Leaf
	Transferred  tinyspl.Leaf
	Root         leaf.Hash
	LoggedChunks int
}

// DeriveAccounts returns deterministic addresses for a run. They are
// program derived, so no private keys exist for them
func DeriveAccounts() (Accounts, error) {
	var ret Accounts
	for _, acct := range []struct {
		dest *pubkey.Pubkey
		name string
	}{
		{&ret.Tree, "tree"},
		{&ret.Collection, "collection"},
		{&ret.MintAuthority, "mint_authority"},
		{&ret.Owner, "owner"},
		{&ret.Recipient, "recipient"},
	} {
		addr, _, err := pubkey.FindProgramAddress(
			[][]byte{[]byte("devnet"), []byte(acct.name)},
			tinyspl.ProgramId,
		)
		if err != nil {
			return Accounts{}, fmt.Errorf("derive %s address: %w", acct.name, err)
		}
		*acct.dest = addr
	}
	return ret, nil
}

// Run creates a collection, mints a balance, splits it three ways, combines
// two of the parts and transfers the result to a second owner
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.MintAmount == 0 {
		cfg.MintAmount = DefaultMintAmount
	}
	if cfg.MintAmount < minMintAmount {
		return nil, fmt.Errorf("%w: %d", ErrMintAmountTooSmall, cfg.MintAmount)
	}
	if cfg.TreeMaxDepth == 0 {
		cfg.TreeMaxDepth = memtree.DefaultMaxDepth
	}
	if cfg.TreeMaxBufferSize == 0 {
		cfg.TreeMaxBufferSize = memtree.DefaultMaxBufferSize
	}
	logger := cfg.Logger.With("component", "devnet")
	accts, err := DeriveAccounts()
	if err != nil {
		return nil, err
	}
	trees := memtree.New(cfg.Logger)
	err = trees.CreateTree(accts.Tree, cfg.TreeMaxDepth, cfg.TreeMaxBufferSize)
	if err != nil {
		return nil, err
	}
	program, err := tinyspl.New(
		tinyspl.NewConfig(
			tinyspl.WithTreeService(trees),
			tinyspl.WithLogger(cfg.Logger),
			tinyspl.WithPrometheusRegistry(cfg.PromRegistry),
			tinyspl.WithDatabasePath(cfg.DataDir),
		),
	)
	if err != nil {
		return nil, err
	}
	r := &runner{
		accts:   accts,
		program: program,
		trees:   trees,
		logger:  logger,
	}
	report, err := r.run(ctx, cfg)
	return report, errors.Join(err, program.Close())
}

type runner struct {
	program *tinyspl.Program
	trees   *memtree.Service
	logger  *slog.Logger
	accts   Accounts
}

func (r *runner) run(ctx context.Context, cfg Config) (*Report, error) {
	report := &Report{Accounts: r.accts}
	auth, err := r.program.CreateMint(
		ctx,
		tinyspl.CreateMintArgs{
			Name:           DefaultName,
			Symbol:         DefaultSymbol,
			Uri:            DefaultUri,
			CollectionMint: r.accts.Collection,
			MintAuthority:  r.accts.MintAuthority,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create mint: %w", err)
	}
	r.logger.Info(
		"created collection",
		"collection", r.accts.Collection.String(),
		"authority", auth.Address.String(),
	)

	report.LoggedChunks, err = r.logCollectionMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("log metadata: %w", err)
	}

	report.Minted, err = r.program.MintTo(
		ctx,
		tinyspl.MintToArgs{
			Tree:           r.accts.Tree,
			CollectionMint: r.accts.Collection,
			Owner:          r.accts.Owner,
			Signer:         r.accts.MintAuthority,
			Amount:         cfg.MintAmount,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	r.logger.Info("minted", "name", report.Minted.Record.Name)

	half := cfg.MintAmount / 2
	quarter := (cfg.MintAmount - half) / 2
	src := report.Minted
	proof, root, err := r.proof(src.Index)
	if err != nil {
		return nil, err
	}
	report.Split, err = r.program.Split(
		ctx,
		tinyspl.SplitArgs{
			Proof:              proof,
			DestinationAmounts: []uint64{half, quarter, cfg.MintAmount - half - quarter},
			Tree:               r.accts.Tree,
			CollectionMint:     r.accts.Collection,
			AssetId:            src.AssetId,
			Root:               root,
			Owner:              src.Owner,
			Delegate:           src.Delegate,
			Signer:             src.Owner,
			SourceAmount:       src.Amount,
			Nonce:              src.Nonce,
			Index:              src.Index,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	for _, l := range report.Split {
		r.logger.Info("split", "name", l.Record.Name, "index", l.Index)
	}

	combineArgs := tinyspl.CombineArgs{
		Tree:           r.accts.Tree,
		CollectionMint: r.accts.Collection,
		Owner:          r.accts.Owner,
		Delegate:       r.accts.Owner,
		Signer:         r.accts.Owner,
	}
	for _, l := range report.Split[1:] {
		proof, root, err := r.proof(l.Index)
		if err != nil {
			return nil, err
		}
		combineArgs.Proof = append(combineArgs.Proof, proof...)
		combineArgs.ProofPathEndIndexes = append(
			combineArgs.ProofPathEndIndexes,
			uint32(len(combineArgs.Proof)), //nolint:gosec
		)
		combineArgs.AssetIds = append(combineArgs.AssetIds, l.AssetId)
		combineArgs.Roots = append(combineArgs.Roots, root)
		combineArgs.Amounts = append(combineArgs.Amounts, l.Amount)
		combineArgs.Nonces = append(combineArgs.Nonces, l.Nonce)
		combineArgs.Indexes = append(combineArgs.Indexes, l.Index)
	}
	report.Combined, err = r.program.Combine(ctx, combineArgs)
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}
	r.logger.Info("combined", "name", report.Combined.Record.Name)

	src = report.Combined
	proof, root, err = r.proof(src.Index)
	if err != nil {
		return nil, err
	}
	report.Transferred, err = r.program.Transfer(
		ctx,
		tinyspl.TransferArgs{
			Proof:          proof,
			Tree:           r.accts.Tree,
			CollectionMint: r.accts.Collection,
			AssetId:        src.AssetId,
			Root:           root,
			Owner:          src.Owner,
			Delegate:       src.Delegate,
			NewOwner:       r.accts.Recipient,
			Signer:         src.Owner,
			Amount:         src.Amount,
			Nonce:          src.Nonce,
			Index:          src.Index,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	r.logger.Info(
		"transferred",
		"name", report.Transferred.Record.Name,
		"owner", report.Transferred.Owner.String(),
	)

	report.Authority, err = r.program.Authority(r.accts.Collection)
	if err != nil {
		return nil, err
	}
	report.Root, err = r.trees.Root(r.accts.Tree)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *runner) proof(index uint32) ([]leaf.Hash, leaf.Hash, error) {
	proof, err := r.trees.Proof(r.accts.Tree, index)
	if err != nil {
		return nil, leaf.Hash{}, fmt.Errorf("proof for leaf %d: %w", index, err)
	}
	root, err := r.trees.Root(r.accts.Tree)
	if err != nil {
		return nil, leaf.Hash{}, err
	}
	return proof, root, nil
}

// logCollectionMetadata pushes the collection's JSON document through a
// logging metadata buffer, uploading it in two pieces
func (r *runner) logCollectionMetadata(ctx context.Context) (int, error) {
	md, err := r.program.Registry().Lookup(ctx, r.accts.Collection)
	if err != nil {
		return 0, err
	}
	doc, err := json.Marshal(
		map[string]string{
			"name":   md.Name,
			"symbol": md.Symbol,
			"uri":    md.Uri,
		},
	)
	if err != nil {
		return 0, err
	}
	bufs, err := metabuf.New(
		metabuf.Config{
			Database: r.program.Database(),
			EventBus: r.program.EventBus(),
			Logger:   r.logger,
		},
	)
	if err != nil {
		return 0, err
	}
	authority := r.accts.MintAuthority
	id, err := bufs.Init(ctx, authority, uint32(len(doc))) //nolint:gosec
	if err != nil {
		return 0, err
	}
	mid := len(doc) / 2
	if err := bufs.Upload(ctx, id, authority, 0, doc[:mid]); err != nil {
		return 0, err
	}
	if err := bufs.Upload(ctx, id, authority, uint32(mid), doc[mid:]); err != nil { //nolint:gosec
		return 0, err
	}
	chunks, err := bufs.Log(ctx, id, authority)
	if err != nil {
		return 0, err
	}
	return chunks, bufs.Close(ctx, id, authority)
}
