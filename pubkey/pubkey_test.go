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
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBase58SystemProgram(t *testing.T) {
	p, err := FromBase58("11111111111111111111111111111111")
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	assert.Equal(t, "11111111111111111111111111111111", p.String())
}

func TestFromBase58RoundTrip(t *testing.T) {
	const addr = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	p, err := FromBase58(addr)
	require.NoError(t, err)
	assert.Equal(t, addr, p.String())
	text, err := p.MarshalText()
	require.NoError(t, err)
	var decoded Pubkey
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, p, decoded)
}

func TestFromBase58Errors(t *testing.T) {
	_, err := FromBase58("0OIl")
	require.Error(t, err)
	// Valid base58 but too short for an address
	_, err = FromBase58("3yZe7d")
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestScanValue(t *testing.T) {
	p := MustFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	v, err := p.Value()
	require.NoError(t, err)
	var scanned Pubkey
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, p, scanned)
	require.Error(t, scanned.Scan(42))
}

func TestIsOnCurve(t *testing.T) {
	assert.True(t, IsOnCurve(edwards25519.NewGeneratorPoint().Bytes()))
	assert.True(t, IsOnCurve(edwards25519.NewIdentityPoint().Bytes()))
	assert.False(t, IsOnCurve([]byte{1, 2, 3}))
}

func TestFindProgramAddress(t *testing.T) {
	programId := MustFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	seeds := [][]byte{[]byte("tiny_spl"), programId.Bytes()}
	addr, bump, err := FindProgramAddress(seeds, programId)
	require.NoError(t, err)
	assert.False(t, IsOnCurve(addr.Bytes()))

	// Deterministic
	addr2, bump2, err := FindProgramAddress(seeds, programId)
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)
	assert.Equal(t, bump, bump2)

	// The bump reproduces the address through CreateProgramAddress
	created, err := CreateProgramAddress(
		append(seeds, []byte{bump}),
		programId,
	)
	require.NoError(t, err)
	assert.Equal(t, addr, created)

	// Different seeds yield a different address
	other, _, err := FindProgramAddress(
		[][]byte{[]byte("tiny_spl"), make([]byte, 32)},
		programId,
	)
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
}

func TestCreateProgramAddressSeedLimits(t *testing.T) {
	var programId Pubkey
	_, err := CreateProgramAddress([][]byte{make([]byte, 33)}, programId)
	require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	seeds := make([][]byte, MaxSeeds+1)
	_, err = CreateProgramAddress(seeds, programId)
	require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
}
