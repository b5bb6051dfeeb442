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
	"errors"
	"fmt"
)

const (
	MaxNameLength     = 32
	MaxSymbolLength   = 10
	MaxUriLength      = 200
	MaxCreatorLimit   = 5
	MaxBasisPoints    = 10000
	totalCreatorShare = 100
)

var ErrInvalidMetadata = errors.New("invalid metadata")

// Validate applies the limits the tree program enforces when minting, so an
// unmintable record is caught before anything is burned
func (m *MetadataArgs) Validate() error {
	if len(m.Name) > MaxNameLength {
		return fmt.Errorf(
			"%w: name is %d bytes, max %d",
			ErrInvalidMetadata,
			len(m.Name),
			MaxNameLength,
		)
	}
	if len(m.Symbol) > MaxSymbolLength {
		return fmt.Errorf(
			"%w: symbol is %d bytes, max %d",
			ErrInvalidMetadata,
			len(m.Symbol),
			MaxSymbolLength,
		)
	}
	if len(m.Uri) > MaxUriLength {
		return fmt.Errorf(
			"%w: uri is %d bytes, max %d",
			ErrInvalidMetadata,
			len(m.Uri),
			MaxUriLength,
		)
	}
	if m.SellerFeeBasisPoints > MaxBasisPoints {
		return fmt.Errorf(
			"%w: seller fee basis points %d",
			ErrInvalidMetadata,
			m.SellerFeeBasisPoints,
		)
	}
	if len(m.Creators) > MaxCreatorLimit {
		return fmt.Errorf(
			"%w: %d creators, max %d",
			ErrInvalidMetadata,
			len(m.Creators),
			MaxCreatorLimit,
		)
	}
	if len(m.Creators) > 0 {
		var total int
		for _, c := range m.Creators {
			total += int(c.Share)
		}
		if total != totalCreatorShare {
			return fmt.Errorf(
				"%w: creator shares sum to %d",
				ErrInvalidMetadata,
				total,
			)
		}
	}
	return nil
}
