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

// Package memtree is an in-process concurrent Merkle tree service holding
// compressed balance leaves. It implements the compression.Service contract
// and is used by tests and the devnet command.
package memtree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

const (
	DefaultMaxDepth      = 14
	DefaultMaxBufferSize = 64
)

var ErrInvalidTreeConfig = errors.New("invalid tree config")

// Service holds a set of trees keyed by address
type Service struct {
	logger *slog.Logger
	trees  map[pubkey.Pubkey]*tree
	mutex  sync.RWMutex
}

// New returns an empty tree service
func New(logger *slog.Logger) *Service {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		logger: logger.With("component", "memtree"),
		trees:  make(map[pubkey.Pubkey]*tree),
	}
}

// CreateTree adds an empty tree with the given depth and change log buffer size
func (s *Service) CreateTree(
	address pubkey.Pubkey,
	maxDepth int,
	maxBufferSize int,
) error {
	if maxDepth < 1 || maxDepth > maxSupportedDepth {
		return fmt.Errorf(
			"%w: max depth %d not in [1, %d]",
			ErrInvalidTreeConfig,
			maxDepth,
			maxSupportedDepth,
		)
	}
	if maxBufferSize < 1 {
		return fmt.Errorf(
			"%w: max buffer size %d",
			ErrInvalidTreeConfig,
			maxBufferSize,
		)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.trees[address]; ok {
		return compression.ErrTreeExists
	}
	s.trees[address] = newTree(address, maxDepth, maxBufferSize)
	s.logger.Debug(
		"created tree",
		"tree", address.String(),
		"max_depth", maxDepth,
		"max_buffer_size", maxBufferSize,
	)
	return nil
}

func (s *Service) readTree(address pubkey.Pubkey) (*tree, error) {
	t, ok := s.trees[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", compression.ErrUnknownTree, address)
	}
	return t, nil
}

// Root returns the current root of a tree
func (s *Service) Root(address pubkey.Pubkey) (leaf.Hash, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	t, err := s.readTree(address)
	if err != nil {
		return leaf.Hash{}, err
	}
	return t.root(), nil
}

// Proof returns the sibling nodes from the leaf at index up to the root,
// valid against the current root
func (s *Service) Proof(address pubkey.Pubkey, index uint32) ([]leaf.Hash, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	t, err := s.readTree(address)
	if err != nil {
		return nil, err
	}
	if uint64(index) >= t.capacity() {
		return nil, compression.ErrLeafIndexOutOfBounds
	}
	return t.proof(index), nil
}

// Leaf returns the leaf hash stored at index
func (s *Service) Leaf(address pubkey.Pubkey, index uint32) (leaf.Hash, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	t, err := s.readTree(address)
	if err != nil {
		return leaf.Hash{}, err
	}
	if uint64(index) >= t.capacity() {
		return leaf.Hash{}, compression.ErrLeafIndexOutOfBounds
	}
	return t.leaf(index), nil
}

// NumMinted returns the number of leaves ever appended to a tree
func (s *Service) NumMinted(address pubkey.Pubkey) (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	t, err := s.readTree(address)
	if err != nil {
		return 0, err
	}
	return t.numMinted, nil
}

// Update runs fn against a staged copy of every tree it touches. The staged
// trees replace the live ones only when fn succeeds, and applying them cannot
// fail. Updates are serialized.
func (s *Service) Update(
	ctx context.Context,
	fn func(compression.Txn) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	txn := &Txn{
		service: s,
		staged:  make(map[pubkey.Pubkey]*tree),
	}
	if err := fn(txn); err != nil {
		s.logger.Debug(
			"discarding staged tree changes",
			"error", err,
		)
		return err
	}
	// Callers may have committed their own state inside fn, so once fn
	// succeeds the staged trees are always applied
	for address, t := range txn.staged {
		s.trees[address] = t
	}
	return nil
}

// Txn stages tree mutations for a single Update call
type Txn struct {
	service *Service
	staged  map[pubkey.Pubkey]*tree
}

func (t *Txn) tree(address pubkey.Pubkey) (*tree, error) {
	if staged, ok := t.staged[address]; ok {
		return staged, nil
	}
	live, err := t.service.readTree(address)
	if err != nil {
		return nil, err
	}
	staged := live.clone()
	t.staged[address] = staged
	return staged, nil
}

// VerifyLeaf checks that a leaf is present under a recent root
func (t *Txn) VerifyLeaf(
	ctx context.Context,
	args compression.VerifyLeafArgs,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tr, err := t.tree(args.Tree)
	if err != nil {
		return err
	}
	return tr.verify(args.Root, args.Leaf, args.Index, args.Proof)
}

// Burn replaces a verified leaf with the empty leaf
func (t *Txn) Burn(ctx context.Context, args compression.BurnArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tr, err := t.tree(args.Tree)
	if err != nil {
		return err
	}
	assetId, err := leaf.AssetId(args.Tree, args.Nonce)
	if err != nil {
		return err
	}
	leafHash := leaf.LeafHash(
		assetId,
		args.Owner,
		args.Delegate,
		args.Nonce,
		args.DataHash,
		args.CreatorHash,
	)
	if err := tr.verify(args.Root, leafHash, args.Index, args.Proof); err != nil {
		return err
	}
	tr.setLeaf(args.Index, leaf.Hash{})
	t.service.logger.Debug(
		"burned leaf",
		"tree", args.Tree.String(),
		"index", args.Index,
		"asset_id", assetId.String(),
	)
	return nil
}

// MintToCollection validates the record and appends its leaf. The leaf nonce
// and index are both the number of leaves minted before it.
func (t *Txn) MintToCollection(
	ctx context.Context,
	args compression.MintArgs,
) (compression.MintResult, error) {
	if err := ctx.Err(); err != nil {
		return compression.MintResult{}, err
	}
	if args.Record == nil {
		return compression.MintResult{}, leaf.ErrMissingCollection
	}
	if err := args.Record.Validate(); err != nil {
		return compression.MintResult{}, err
	}
	tr, err := t.tree(args.Tree)
	if err != nil {
		return compression.MintResult{}, err
	}
	nonce := tr.numMinted
	id, err := leaf.DeriveIdentity(
		args.Tree,
		nonce,
		args.Owner,
		args.Delegate,
		args.Record,
	)
	if err != nil {
		return compression.MintResult{}, err
	}
	index, err := tr.append(id.LeafHash)
	if err != nil {
		return compression.MintResult{}, err
	}
	t.service.logger.Debug(
		"minted leaf",
		"tree", args.Tree.String(),
		"index", index,
		"asset_id", id.AssetId.String(),
	)
	return compression.MintResult{
		AssetId:  id.AssetId,
		LeafHash: id.LeafHash,
		Nonce:    nonce,
		Index:    index,
	}, nil
}
