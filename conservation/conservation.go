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

// Package conservation checks that split and combine operations neither
// create nor destroy value.
package conservation

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/tiny-spl/tinyspl/leaf"
)

var (
	ErrInvalidSplitAmounts      = errors.New("invalid split amounts supplied")
	ErrCannotCombineSameAsset   = errors.New("cannot combine more than 1 of the same asset")
	ErrInvalidCombineParameters = errors.New("different number of parameters supplied for combining")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")
)

// Sum adds the amounts, failing on overflow
func Sum(amounts []uint64) (uint64, error) {
	var total uint64
	for _, amount := range amounts {
		var carry uint64
		total, carry = bits.Add64(total, amount, 0)
		if carry != 0 {
			return 0, ErrArithmeticOverflow
		}
	}
	return total, nil
}

// CheckedAdd returns a+b, failing on overflow
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// VerifySplit checks that the destination amounts are all positive and add up
// exactly to the source amount
func VerifySplit(sourceAmount uint64, destinations []uint64) error {
	if len(destinations) == 0 {
		return fmt.Errorf("%w: no destinations", ErrInvalidSplitAmounts)
	}
	for i, amount := range destinations {
		if amount == 0 {
			return fmt.Errorf(
				"%w: destination %d is zero",
				ErrInvalidSplitAmounts,
				i,
			)
		}
	}
	total, err := Sum(destinations)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSplitAmounts, err)
	}
	if total != sourceAmount {
		return fmt.Errorf(
			"%w: destinations sum to %d, source is %d",
			ErrInvalidSplitAmounts,
			total,
			sourceAmount,
		)
	}
	return nil
}

// VerifyCombine returns the total of the source amounts, which becomes the
// amount of the single destination
func VerifyCombine(sources []uint64) (uint64, error) {
	return Sum(sources)
}

// CheckDistinct fails if any identifier appears more than once
func CheckDistinct[T comparable](ids []T) error {
	seen := make(map[T]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %v", ErrCannotCombineSameAsset, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// CheckParallel fails unless every length is equal
func CheckParallel(lengths ...int) error {
	for _, l := range lengths {
		if l != lengths[0] {
			return fmt.Errorf(
				"%w: lengths %v",
				ErrInvalidCombineParameters,
				lengths,
			)
		}
	}
	return nil
}

// SliceSegments splits a concatenated list into consecutive segments using
// exclusive end offsets. Offsets must be non-decreasing and the last one must
// consume the whole list
func SliceSegments[T any](items []T, ends []uint32) ([][]T, error) {
	segments := make([][]T, 0, len(ends))
	var start uint32
	for i, end := range ends {
		if end < start {
			return nil, fmt.Errorf(
				"%w: segment %d ends at %d before it starts at %d",
				ErrInvalidCombineParameters,
				i,
				end,
				start,
			)
		}
		if uint64(end) > uint64(len(items)) {
			return nil, fmt.Errorf(
				"%w: segment %d ends at %d beyond %d items",
				ErrInvalidCombineParameters,
				i,
				end,
				len(items),
			)
		}
		segments = append(segments, items[start:end:end])
		start = end
	}
	if uint64(start) != uint64(len(items)) {
		return nil, fmt.Errorf(
			"%w: %d trailing items not assigned to a segment",
			ErrInvalidCombineParameters,
			uint64(len(items))-uint64(start),
		)
	}
	return segments, nil
}

// SliceProofSegments splits the concatenated proof nodes of a combine into one
// proof per source leaf
func SliceProofSegments(proof []leaf.Hash, ends []uint32) ([][]leaf.Hash, error) {
	return SliceSegments(proof, ends)
}
