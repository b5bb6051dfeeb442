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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/tiny-spl/tinyspl/database/types"
	"github.com/tiny-spl/tinyspl/pubkey"
)

var ErrBufferNotFound = errors.New("buffer not found")

// Buffer is a logging metadata buffer as stored in the blob store
type Buffer struct {
	_         struct{} `cbor:",toarray"`
	Data      []byte
	Authority pubkey.Pubkey
	Id        uint64
}

// NextBufferId allocates a new buffer id
func (d *Database) NextBufferId(txn *Txn) (uint64, error) {
	if txn == nil || txn.Blob() == nil {
		return 0, types.ErrNilTxn
	}
	var next uint64
	val, err := d.blob.Get(txn.Blob(), []byte(types.BufferSeqBlobKey))
	if err != nil {
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, err
		}
	} else {
		if len(val) != 8 {
			return 0, fmt.Errorf("corrupt buffer sequence: %d bytes", len(val))
		}
		next = binary.BigEndian.Uint64(val)
	}
	err = d.blob.Set(
		txn.Blob(),
		[]byte(types.BufferSeqBlobKey),
		types.BlobKeyUint64ToBytes(next+1),
	)
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetBuffer returns the buffer with the given id
func (d *Database) GetBuffer(id uint64, txn *Txn) (*Buffer, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	val, err := d.blob.Get(txn.Blob(), types.BufferBlobKey(id))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrBufferNotFound
		}
		return nil, err
	}
	var ret Buffer
	if err := cbor.Unmarshal(val, &ret); err != nil {
		return nil, fmt.Errorf("decode buffer %d: %w", id, err)
	}
	return &ret, nil
}

// SetBuffer stores a buffer
func (d *Database) SetBuffer(buf *Buffer, txn *Txn) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	val, err := cbor.Marshal(buf)
	if err != nil {
		return fmt.Errorf("encode buffer %d: %w", buf.Id, err)
	}
	return d.blob.Set(txn.Blob(), types.BufferBlobKey(buf.Id), val)
}

// DeleteBuffer removes a buffer
func (d *Database) DeleteBuffer(id uint64, txn *Txn) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	return d.blob.Delete(txn.Blob(), types.BufferBlobKey(id))
}

// BufferIds returns the ids of every stored buffer
func (d *Database) BufferIds(txn *Txn) ([]uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	keys, err := d.blob.Keys(txn.Blob(), []byte(types.BufferBlobKeyPrefix))
	if err != nil {
		return nil, err
	}
	ret := make([]uint64, 0, len(keys))
	for _, key := range keys {
		idBytes := key[len(types.BufferBlobKeyPrefix):]
		if len(idBytes) != 8 {
			continue
		}
		ret = append(ret, binary.BigEndian.Uint64(idBytes))
	}
	return ret, nil
}
