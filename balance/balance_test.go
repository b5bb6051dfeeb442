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

package balance

import (
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

var (
	testMint      = pubkey.MustFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	testAuthority = pubkey.MustFromBase58("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
)

// groupDigits is a straightforward reference for FormatAmount
func groupDigits(amount uint64) string {
	digits := strconv.FormatUint(amount, 10)
	var out []byte
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return string(out)
}

func TestFormatAmount(t *testing.T) {
	testDefs := []struct {
		amount   uint64
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{100000, "100,000"},
		{1234567, "1,234,567"},
		{math.MaxUint64, "18,446,744,073,709,551,615"},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, FormatAmount(testDef.amount))
	}
}

func TestFormatAmountMatchesReference(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		amount := r.Uint64() >> r.UintN(64)
		assert.Equal(t, groupDigits(amount), FormatAmount(amount))
	}
}

func TestEncodeName(t *testing.T) {
	args := Encode("ABC", 1234567, testMint)
	assert.Equal(t, "1,234,567 ABC", args.Name)
	assert.Equal(t, "ABC", args.Symbol)
	assert.Equal(
		t,
		"https://metadata.tinys.pl/collection?id="+testMint.String()+"&amount=1234567",
		args.Uri,
	)
}

func TestEncodeStripsNul(t *testing.T) {
	args := Encode("ABC\x00\x00\x00\x00\x00\x00\x00", 5, testMint)
	assert.Equal(t, "ABC", args.Symbol)
	assert.Equal(t, "5 ABC", args.Name)
	assert.NotContains(t, args.Uri, "\x00")
}

func TestRoundTrip(t *testing.T) {
	amounts := []uint64{0, 1, 900, 1234567, math.MaxUint32, math.MaxUint64}
	r := rand.New(rand.NewPCG(3, 4))
	for range 500 {
		amounts = append(amounts, r.Uint64())
	}
	for _, amount := range amounts {
		decoded, err := DecodeAmount(Encode("ABC", amount, testMint).Uri)
		require.NoError(t, err)
		assert.Equal(t, amount, decoded)
	}
}

func TestDecodeAmountErrors(t *testing.T) {
	_, err := DecodeAmount("https://metadata.tinys.pl/collection?id=abc")
	require.ErrorIs(t, err, ErrMissingAmount)

	_, err = DecodeAmount("https://metadata.tinys.pl/collection?amount=12a")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = DecodeAmount("https://metadata.tinys.pl/collection?amount=-1")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = DecodeAmount("https://metadata.tinys.pl/collection?amount=18446744073709551616")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = DecodeAmount("https://metadata.tinys.pl/collection?amount=")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = DecodeAmount("://bad")
	require.Error(t, err)
}

func TestDecodeCollection(t *testing.T) {
	mint, err := DecodeCollection(Uri(testMint, 10))
	require.NoError(t, err)
	assert.Equal(t, testMint, mint)

	_, err = DecodeCollection("https://metadata.tinys.pl/collection?amount=1")
	require.ErrorIs(t, err, ErrMissingCollection)
}

func TestNewRecord(t *testing.T) {
	m := NewRecord("ABC", 900, testMint, testAuthority)
	require.NoError(t, m.Validate())
	assert.Equal(t, "900 ABC", m.Name)
	require.NotNil(t, m.Collection)
	assert.Equal(t, testMint, m.Collection.Key)
	assert.True(t, m.Collection.Verified)
	require.Len(t, m.Creators, 1)
	assert.Equal(t, testAuthority, m.Creators[0].Address)
	assert.True(t, m.Creators[0].Verified)
	assert.Equal(t, uint8(100), m.Creators[0].Share)
	require.NotNil(t, m.TokenStandard)
	assert.Equal(t, leaf.TokenStandardNonFungible, *m.TokenStandard)
	assert.Nil(t, m.EditionNonce)
	assert.Nil(t, m.Uses)
	assert.True(t, m.IsMutable)
	assert.False(t, m.PrimarySaleHappened)

	amount, err := AmountOf(m)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), amount)
}

func TestNewRecordIsCanonical(t *testing.T) {
	// Same amount and symbol always produce byte-identical records
	a := NewRecord("ABC", 300, testMint, testAuthority).MarshalBorsh()
	b := NewRecord("ABC", 300, testMint, testAuthority).MarshalBorsh()
	assert.Equal(t, a, b)
}
