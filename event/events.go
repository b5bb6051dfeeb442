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

package event

import (
	"github.com/tiny-spl/tinyspl/pubkey"
)

const (
	CollectionCreatedEventType = EventType("collection.created")
	LeafMintedEventType        = EventType("leaf.minted")
	LeafBurnedEventType        = EventType("leaf.burned")
	MetadataLoggedEventType    = EventType("metadata.logged")
)

// CollectionCreatedEvent is emitted after a collection and its authority are registered
type CollectionCreatedEvent struct {
	Name           string
	Symbol         string
	Uri            string
	CollectionMint pubkey.Pubkey
	Authority      pubkey.Pubkey
	MintAuthority  pubkey.Pubkey
}

// LeafMintedEvent is emitted for every balance leaf appended to a tree
type LeafMintedEvent struct {
	Tree           pubkey.Pubkey
	CollectionMint pubkey.Pubkey
	Owner          pubkey.Pubkey
	AssetId        pubkey.Pubkey
	Amount         uint64
	Nonce          uint64
	Index          uint32
}

// LeafBurnedEvent is emitted for every balance leaf removed from a tree
type LeafBurnedEvent struct {
	Tree           pubkey.Pubkey
	CollectionMint pubkey.Pubkey
	Owner          pubkey.Pubkey
	AssetId        pubkey.Pubkey
	Amount         uint64
	Nonce          uint64
	Index          uint32
}

// MetadataLoggedEvent carries one chunk of a logged metadata buffer
type MetadataLoggedEvent struct {
	Data     []byte
	BufferId uint64
	Offset   uint32
	Final    bool
}
