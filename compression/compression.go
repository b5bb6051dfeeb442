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

// Package compression describes the external concurrent Merkle tree service
// that stores balance leaves, and the inclusion check performed against it
// before a leaf can be spent.
package compression

import (
	"context"
	"errors"

	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

// Errors a tree service implementation is expected to report. Callers pass
// them through unchanged.
var (
	ErrUnknownTree          = errors.New("unknown merkle tree")
	ErrTreeFull             = errors.New("merkle tree is full")
	ErrInvalidProof         = errors.New("invalid merkle proof")
	ErrRootNotFound         = errors.New("root is not a recent root of the tree")
	ErrLeafIndexOutOfBounds = errors.New("leaf index out of bounds")
	ErrLeafContentsModified = errors.New("leaf contents modified since the supplied root")
	ErrTreeExists           = errors.New("merkle tree already exists")
)

// VerifyLeafArgs identifies a leaf that must be present under a recent root
type VerifyLeafArgs struct {
	Proof []leaf.Hash
	Tree  pubkey.Pubkey
	Root  leaf.Hash
	Leaf  leaf.Hash
	Index uint32
}

// BurnArgs identifies a leaf to replace with the empty leaf. The service
// recomputes the leaf hash from its parts.
type BurnArgs struct {
	Proof       []leaf.Hash
	Tree        pubkey.Pubkey
	Root        leaf.Hash
	Owner       pubkey.Pubkey
	Delegate    pubkey.Pubkey
	DataHash    leaf.Hash
	CreatorHash leaf.Hash
	Nonce       uint64
	Index       uint32
}

// MintArgs describes a new leaf appended to a tree
type MintArgs struct {
	Record   *leaf.MetadataArgs
	Tree     pubkey.Pubkey
	Owner    pubkey.Pubkey
	Delegate pubkey.Pubkey
}

// MintResult is the position the service assigned to a minted leaf
type MintResult struct {
	AssetId  pubkey.Pubkey
	LeafHash leaf.Hash
	Nonce    uint64
	Index    uint32
}

// Txn is the set of tree operations available inside an atomic unit
type Txn interface {
	VerifyLeaf(ctx context.Context, args VerifyLeafArgs) error
	Burn(ctx context.Context, args BurnArgs) error
	MintToCollection(ctx context.Context, args MintArgs) (MintResult, error)
}

// Service applies tree mutations atomically. If fn returns an error, none of
// the mutations it requested are kept. If fn returns nil, all of them are.
type Service interface {
	Update(ctx context.Context, fn func(Txn) error) error
}
