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
	"fmt"
	"sync"
	"time"

	"github.com/tiny-spl/tinyspl/database/plugin/blob/badger"
	"github.com/tiny-spl/tinyspl/database/plugin/metadata/sqlite"
	"github.com/tiny-spl/tinyspl/database/types"
)

// Txn spans the blob and metadata stores. The blob side is opened up front.
// The metadata side begins on first use, so buffer operations never hold a
// sqlite connection. The commit timestamp is only advanced when both sides
// took part.
type Txn struct {
	db          *Database
	blobTxn     *badger.Txn
	metadataTxn *sqlite.Txn
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if bs := db.Blob(); bs != nil {
		t.blobTxn = bs.NewTransaction(readWrite)
	}
	return t
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the metadata transaction, beginning it if needed. It
// returns nil when there is no metadata store.
func (t *Txn) Metadata() *sqlite.Txn {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.metadataTxn != nil {
		return t.metadataTxn
	}
	ms := t.db.Metadata()
	if ms == nil {
		return nil
	}
	t.metadataTxn = ms.Transaction()
	if t.finished {
		// Hand back a closed handle so late callers see ErrTxnFinished
		_ = t.metadataTxn.Rollback()
	}
	return t.metadataTxn
}

func (t *Txn) Blob() *badger.Txn {
	return t.blobTxn
}

// Do runs fn inside the transaction, committing on success and rolling
// back when fn fails
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %w: after: %w", rbErr, err)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	if !t.readWrite {
		return t.rollback()
	}
	if t.blobTxn == nil && t.metadataTxn == nil {
		t.finished = true
		if t.db.Metadata() == nil {
			return types.ErrNoStoreAvailable
		}
		return nil
	}
	if t.blobTxn != nil && t.metadataTxn != nil {
		ts := time.Now().UnixMilli()
		if err := t.db.updateCommitTimestamp(t.metadataTxn, t.blobTxn, ts); err != nil {
			_ = t.rollback()
			return fmt.Errorf("update commit timestamp: %w", err)
		}
	}
	// The blob side goes first so a failed blob commit leaves sqlite untouched
	if t.blobTxn != nil {
		if err := t.blobTxn.Commit(); err != nil {
			if t.metadataTxn != nil {
				_ = t.metadataTxn.Rollback()
			}
			t.finished = true
			return fmt.Errorf("blob commit: %w", err)
		}
	}
	t.finished = true
	if t.metadataTxn != nil {
		if err := t.metadataTxn.Commit(); err != nil {
			t.db.logger.Error(
				"metadata commit failed after blob commit",
				"error", err,
			)
			return fmt.Errorf("metadata commit after blob commit: %w", err)
		}
	}
	return nil
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	var errs []error
	if t.blobTxn != nil {
		if err := t.blobTxn.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("blob rollback: %w", err))
		}
	}
	if t.metadataTxn != nil {
		if err := t.metadataTxn.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("metadata rollback: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Release rolls back an unfinished transaction and logs any failure, for
// use in defers
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
