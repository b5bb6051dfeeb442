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
	"github.com/tiny-spl/tinyspl/pubkey"
)

// Collection is the registered metadata of a collection mint
type Collection struct {
	Name      string
	Symbol    string
	Uri       string
	Mint      pubkey.Pubkey `gorm:"uniqueIndex;size:64"`
	Authority pubkey.Pubkey `gorm:"size:64"`
	ID        uint          `gorm:"primarykey"`
}

func (Collection) TableName() string {
	return "collection"
}
