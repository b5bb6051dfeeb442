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

package sqlite

import (
	"errors"

	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/pubkey"
	"gorm.io/gorm"
)

// GetAuthority returns the authority of a collection mint, or nil if there is none
func (d *MetadataStoreSqlite) GetAuthority(
	collectionMint pubkey.Pubkey,
	txn *Txn,
) (*models.Authority, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.Authority
	result := db.Where("collection_mint = ?", collectionMint).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// SetAuthority creates or updates an authority record
func (d *MetadataStoreSqlite) SetAuthority(
	authority *models.Authority,
	txn *Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(authority).Error
}
