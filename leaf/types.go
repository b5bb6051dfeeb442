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
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/tiny-spl/tinyspl/pubkey"
)

const HashLength = 32

// Hash is a 32-byte Keccak-256 digest. Tree roots and proof nodes use the
// same representation
//
//nolint:recvcheck
type Hash [HashLength]byte

func HashFromBytes(b []byte) (Hash, error) {
	var ret Hash
	if len(b) != HashLength {
		return ret, fmt.Errorf("invalid hash length: %d", len(b))
	}
	copy(ret[:], b)
	return ret, nil
}

// HashFromBase58 decodes a hash in the base58 form used by indexers for roots
// and proof nodes
func HashFromBase58(s string) (Hash, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decode base58 hash %q: %w", s, err)
	}
	return HashFromBytes(b)
}

func (h Hash) String() string {
	return base58.Encode(h[:])
}

func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(data []byte) error {
	tmp, err := HashFromBase58(string(data))
	if err != nil {
		return err
	}
	*h = tmp
	return nil
}

type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

type TokenProgramVersion uint8

const (
	TokenProgramVersionOriginal TokenProgramVersion = iota
	TokenProgramVersionToken2022
)

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

type Collection struct {
	Verified bool
	Key      pubkey.Pubkey
}

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

type Creator struct {
	Address  pubkey.Pubkey
	Verified bool
	Share    uint8
}

// MetadataArgs is the metadata record committed to by a compressed leaf. Field
// order matches the serialized layout
type MetadataArgs struct {
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	Uses                 *Uses
	Name                 string
	Symbol               string
	Uri                  string
	Creators             []Creator
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenProgramVersion  TokenProgramVersion
}

// Clone returns a deep copy
func (m *MetadataArgs) Clone() *MetadataArgs {
	ret := *m
	if m.EditionNonce != nil {
		tmp := *m.EditionNonce
		ret.EditionNonce = &tmp
	}
	if m.TokenStandard != nil {
		tmp := *m.TokenStandard
		ret.TokenStandard = &tmp
	}
	if m.Collection != nil {
		tmp := *m.Collection
		ret.Collection = &tmp
	}
	if m.Uses != nil {
		tmp := *m.Uses
		ret.Uses = &tmp
	}
	if m.Creators != nil {
		ret.Creators = make([]Creator, len(m.Creators))
		copy(ret.Creators, m.Creators)
	}
	return &ret
}
