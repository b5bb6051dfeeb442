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

	"github.com/tiny-spl/tinyspl/database/types"
	"gorm.io/gorm"
)

// Txn wraps a GORM transaction
type Txn struct {
	store    *MetadataStoreSqlite
	db       *gorm.DB
	finished bool
}

func (t *Txn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Commit().Error
}

func (t *Txn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Rollback().Error
}

// resolveDB returns the handle queries should use. A nil transaction runs
// queries outside of any transaction.
func (d *MetadataStoreSqlite) resolveDB(txn *Txn) (*gorm.DB, error) {
	if txn == nil {
		return d.DB(), nil
	}
	if txn.store != d {
		return nil, errors.New("transaction from different store")
	}
	if txn.finished {
		return nil, types.ErrTxnFinished
	}
	if txn.db.Error != nil {
		return nil, txn.db.Error
	}
	return txn.db, nil
}
