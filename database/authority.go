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

package database

import (
	"errors"

	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/pubkey"
)

var ErrAuthorityNotFound = errors.New("authority not found")

// GetAuthority returns the protocol authority of a collection mint
func (d *Database) GetAuthority(
	collectionMint pubkey.Pubkey,
	txn *Txn,
) (*models.Authority, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret, err := d.metadata.GetAuthority(collectionMint, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, ErrAuthorityNotFound
	}
	return ret, nil
}

// SetAuthority creates or updates a protocol authority
func (d *Database) SetAuthority(authority *models.Authority, txn *Txn) error {
	if txn == nil {
		return d.metadata.SetAuthority(authority, nil)
	}
	return d.metadata.SetAuthority(authority, txn.Metadata())
}
