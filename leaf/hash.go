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

package leaf

import (
	"encoding/binary"
	"errors"
	"hash"
	"sync"

	"github.com/tiny-spl/tinyspl/pubkey"
	"golang.org/x/crypto/sha3"
)

// LeafSchemaV1 is the version byte prefixed to every leaf preimage
const LeafSchemaV1 uint8 = 1

// BubblegumProgramId owns the tree configs and derives asset IDs
var BubblegumProgramId = pubkey.MustFromBase58(
	"BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY",
)

var assetSeedPrefix = []byte("asset")

var (
	ErrMissingCollection = errors.New("metadata has no collection")
	ErrMissingCreators   = errors.New("metadata has no creators")
)

var keccakHasherPool = sync.Pool{
	New: func() any { return sha3.NewLegacyKeccak256() },
}

// Keccak256 hashes the concatenation of the provided byte slices
func Keccak256(data ...[]byte) Hash {
	hasher := keccakHasherPool.Get().(hash.Hash)
	hasher.Reset()
	for _, d := range data {
		hasher.Write(d)
	}
	var res Hash
	hasher.Sum(res[:0])
	keccakHasherPool.Put(hasher)
	return res
}

// Identity is everything derived from a leaf's coordinates and content
type Identity struct {
	AssetId     pubkey.Pubkey
	LeafHash    Hash
	DataHash    Hash
	CreatorHash Hash
}

// AssetId derives the public identifier of the leaf minted with the given
// nonce into the given tree
func AssetId(tree pubkey.Pubkey, nonce uint64) (pubkey.Pubkey, error) {
	nonceBytes := binary.LittleEndian.AppendUint64(nil, nonce)
	addr, _, err := pubkey.FindProgramAddress(
		[][]byte{assetSeedPrefix, tree[:], nonceBytes},
		BubblegumProgramId,
	)
	return addr, err
}

// DataHash binds the metadata record and its seller fee into one digest
func DataHash(m *MetadataArgs) Hash {
	metadataHash := Keccak256(m.MarshalBorsh())
	return Keccak256(
		metadataHash[:],
		binary.LittleEndian.AppendUint16(nil, m.SellerFeeBasisPoints),
	)
}

func CreatorHash(creators []Creator) Hash {
	parts := make([][]byte, 0, len(creators))
	for _, c := range creators {
		part := make([]byte, 0, pubkey.PublicKeyLength+2)
		part = append(part, c.Address[:]...)
		if c.Verified {
			part = append(part, 1)
		} else {
			part = append(part, 0)
		}
		part = append(part, c.Share)
		parts = append(parts, part)
	}
	return Keccak256(parts...)
}

func LeafHash(
	assetId pubkey.Pubkey,
	owner pubkey.Pubkey,
	delegate pubkey.Pubkey,
	nonce uint64,
	dataHash Hash,
	creatorHash Hash,
) Hash {
	return Keccak256(
		[]byte{LeafSchemaV1},
		assetId[:],
		owner[:],
		delegate[:],
		binary.LittleEndian.AppendUint64(nil, nonce),
		dataHash[:],
		creatorHash[:],
	)
}

// DeriveIdentity computes the asset ID and the hashes that the tree program
// recomputes when it checks the leaf. It has no side effects
func DeriveIdentity(
	tree pubkey.Pubkey,
	nonce uint64,
	owner pubkey.Pubkey,
	delegate pubkey.Pubkey,
	record *MetadataArgs,
) (Identity, error) {
	if record.Collection == nil {
		return Identity{}, ErrMissingCollection
	}
	if len(record.Creators) == 0 {
		return Identity{}, ErrMissingCreators
	}
	assetId, err := AssetId(tree, nonce)
	if err != nil {
		return Identity{}, err
	}
	dataHash := DataHash(record)
	creatorHash := CreatorHash(record.Creators)
	return Identity{
		AssetId:     assetId,
		DataHash:    dataHash,
		CreatorHash: creatorHash,
		LeafHash: LeafHash(
			assetId,
			owner,
			delegate,
			nonce,
			dataHash,
			creatorHash,
		),
	}, nil
}
