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
	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/pubkey"
)

// ProgramId owns the per-collection authority addresses
var ProgramId = pubkey.MustFromBase58(
	"tsP1jf31M3iGNPmANP3ep3iWCMTxpMFLNbewWVWWbSo",
)

var authoritySeedPrefix = []byte("tiny_spl")

// AuthorityAddress derives the protocol authority address of a collection
// mint. It is the sole verified creator of every balance leaf in the
// collection
func AuthorityAddress(collectionMint pubkey.Pubkey) (pubkey.Pubkey, error) {
	addr, _, err := pubkey.FindProgramAddress(
		[][]byte{authoritySeedPrefix, collectionMint[:]},
		ProgramId,
	)
	return addr, err
}

// AuthorityInfo is the protocol authority of a collection
type AuthorityInfo struct {
	MintAuthority  *pubkey.Pubkey
	CollectionMint pubkey.Pubkey
	Address        pubkey.Pubkey
	CurrentSupply  uint64
	IsVerified     bool
}

func authorityInfo(auth *models.Authority) *AuthorityInfo {
	ret := &AuthorityInfo{
		CollectionMint: auth.CollectionMint,
		Address:        auth.Address,
		CurrentSupply:  uint64(auth.CurrentSupply),
		IsVerified:     auth.IsVerified,
	}
	if auth.MintAuthority != nil {
		tmp := *auth.MintAuthority
		ret.MintAuthority = &tmp
	}
	return ret
}
