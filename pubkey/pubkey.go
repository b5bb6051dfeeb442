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

package pubkey

import (
	"bytes"
	"crypto/sha256"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	// PublicKeyLength is the size of an ed25519 public key / account address
	PublicKeyLength = 32
	// MaxSeeds is the maximum number of seeds, including the bump seed
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrInvalidLength         = errors.New("invalid public key length")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// Pubkey is a 32-byte account address
//
//nolint:recvcheck
type Pubkey [PublicKeyLength]byte

// New returns a Pubkey from the provided bytes
func New(b []byte) (Pubkey, error) {
	var ret Pubkey
	if len(b) != PublicKeyLength {
		return ret, fmt.Errorf("%w: %d", ErrInvalidLength, len(b))
	}
	copy(ret[:], b)
	return ret, nil
}

// FromBase58 decodes a base58 encoded address
func FromBase58(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("decode base58 address %q: %w", s, err)
	}
	return New(b)
}

// MustFromBase58 is like FromBase58 but panics on error. It is intended for
// package-level constants
func MustFromBase58(s string) Pubkey {
	p, err := FromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) Bytes() []byte {
	return p[:]
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

func (p Pubkey) Equal(other Pubkey) bool {
	return bytes.Equal(p[:], other[:])
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(data []byte) error {
	tmp, err := FromBase58(string(data))
	if err != nil {
		return err
	}
	*p = tmp
	return nil
}

// Value stores the address in its base58 form
func (p Pubkey) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *Pubkey) Scan(val any) error {
	switch v := val.(type) {
	case string:
		return p.UnmarshalText([]byte(v))
	case []byte:
		return p.UnmarshalText(v)
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
}

// IsOnCurve reports whether b is a valid compressed ed25519 point
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress derives a program address from the seeds and program ID.
// Seeds that hash to a point on the ed25519 curve are rejected
func CreateProgramAddress(seeds [][]byte, programId Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return Pubkey{}, ErrMaxSeedLengthExceeded
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Pubkey{}, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(programId[:])
	h.Write([]byte(pdaMarker))
	sum := h.Sum(nil)
	if IsOnCurve(sum) {
		return Pubkey{}, ErrInvalidSeeds
	}
	return New(sum)
}

// FindProgramAddress searches bump seeds from 255 downward and returns the
// first off-curve address along with its bump
func FindProgramAddress(
	seeds [][]byte,
	programId Pubkey,
) (Pubkey, uint8, error) {
	bumpSeed := []byte{math.MaxUint8}
	seedsWithBump := make([][]byte, 0, len(seeds)+1)
	seedsWithBump = append(seedsWithBump, seeds...)
	seedsWithBump = append(seedsWithBump, bumpSeed)
	for range math.MaxUint8 {
		addr, err := CreateProgramAddress(seedsWithBump, programId)
		if err == nil {
			return addr, bumpSeed[0], nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return Pubkey{}, 0, err
		}
		bumpSeed[0]--
	}
	return Pubkey{}, 0, ErrNoViableBump
}
