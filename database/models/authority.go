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

package models

import (
	"github.com/tiny-spl/tinyspl/database/types"
	"github.com/tiny-spl/tinyspl/pubkey"
)

// Authority is the per-collection protocol authority. Its address is the
// verified creator of every balance leaf in the collection.
type Authority struct {
	MintAuthority  *pubkey.Pubkey `gorm:"size:64"`
	CollectionMint pubkey.Pubkey  `gorm:"uniqueIndex;size:64"`
	Address        pubkey.Pubkey  `gorm:"size:64"`
	ID             uint           `gorm:"primarykey"`
	CurrentSupply  types.Uint64
	IsVerified     bool
}

func (Authority) TableName() string {
	return "authority"
}
