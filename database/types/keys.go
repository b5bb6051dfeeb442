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

package types

import (
	"encoding/binary"
)

const (
	BufferBlobKeyPrefix    = "lb"
	BufferSeqBlobKey       = "buffer_seq"
	CommitTimestampBlobKey = "metadata_commit_timestamp"
)

func BlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// BufferBlobKey is the key of a logging metadata buffer
func BufferBlobKey(id uint64) []byte {
	key := []byte(BufferBlobKeyPrefix)
	return append(key, BlobKeyUint64ToBytes(id)...)
}
