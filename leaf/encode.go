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
	"encoding/binary"
)

// Serialization follows the Borsh layout expected by the tree program:
// little-endian fixed-width integers, u32 length prefixes for strings and
// vectors, and a single tag byte for options and unit enums

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
		return
	}
	e.u8(0)
}

func (e *encoder) u16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) u64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *encoder) bytes(v []byte) {
	e.buf = append(e.buf, v...)
}

func (e *encoder) string(v string) {
	e.u32(uint32(len(v))) //nolint:gosec
	e.buf = append(e.buf, v...)
}

// option writes the presence tag and reports whether a value follows
func (e *encoder) option(present bool) bool {
	e.bool(present)
	return present
}

// MarshalBorsh returns the canonical byte encoding of the record
func (m *MetadataArgs) MarshalBorsh() []byte {
	e := &encoder{
		buf: make([]byte, 0, 128+len(m.Name)+len(m.Symbol)+len(m.Uri)),
	}
	e.string(m.Name)
	e.string(m.Symbol)
	e.string(m.Uri)
	e.u16(m.SellerFeeBasisPoints)
	e.bool(m.PrimarySaleHappened)
	e.bool(m.IsMutable)
	if e.option(m.EditionNonce != nil) {
		e.u8(*m.EditionNonce)
	}
	if e.option(m.TokenStandard != nil) {
		e.u8(uint8(*m.TokenStandard))
	}
	if e.option(m.Collection != nil) {
		e.bool(m.Collection.Verified)
		e.bytes(m.Collection.Key[:])
	}
	if e.option(m.Uses != nil) {
		e.u8(uint8(m.Uses.UseMethod))
		e.u64(m.Uses.Remaining)
		e.u64(m.Uses.Total)
	}
	e.u8(uint8(m.TokenProgramVersion))
	e.u32(uint32(len(m.Creators))) //nolint:gosec
	for _, c := range m.Creators {
		e.bytes(c.Address[:])
		e.bool(c.Verified)
		e.u8(c.Share)
	}
	return e.buf
}
