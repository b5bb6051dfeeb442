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

// Package balance encodes token amounts into the metadata of compressed
// leaves. The amount lives only in the metadata URI, so it can always be
// recovered from the leaf content without any extra account state.
package balance

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	MetadataBaseUrl      = "https://metadata.tinys.pl/collection"
	CollectionQueryParam = "id"
	AmountQueryParam     = "amount"
)

var (
	ErrMissingAmount     = errors.New("metadata uri has no amount")
	ErrInvalidAmount     = errors.New("metadata uri amount is not an unsigned integer")
	ErrMissingCollection = errors.New("metadata uri has no collection")
)

// Args is the display metadata for a balance
type Args struct {
	Name   string
	Symbol string
	Uri    string
}

// FormatAmount groups the decimal digits of amount in runs of three,
// separated by commas
func FormatAmount(amount uint64) string {
	return message.NewPrinter(language.English).Sprintf("%d", amount)
}

// Uri builds the metadata locator for an amount of the given collection
func Uri(collectionMint pubkey.Pubkey, amount uint64) string {
	return fmt.Sprintf(
		"%s?%s=%s&%s=%d",
		MetadataBaseUrl,
		CollectionQueryParam,
		collectionMint.String(),
		AmountQueryParam,
		amount,
	)
}

// Encode builds the name, symbol and uri for a balance. NUL bytes are
// removed, since on-chain symbols are stored NUL padded
func Encode(symbol string, amount uint64, collectionMint pubkey.Pubkey) Args {
	symbol = stripNul(symbol)
	return Args{
		Name:   stripNul(FormatAmount(amount) + " " + symbol),
		Symbol: symbol,
		Uri:    stripNul(Uri(collectionMint, amount)),
	}
}

// NewRecord builds the full leaf record for a balance. The authority is the
// sole verified creator
func NewRecord(
	symbol string,
	amount uint64,
	collectionMint pubkey.Pubkey,
	authority pubkey.Pubkey,
) *leaf.MetadataArgs {
	args := Encode(symbol, amount, collectionMint)
	standard := leaf.TokenStandardNonFungible
	return &leaf.MetadataArgs{
		Name:                 args.Name,
		Symbol:               args.Symbol,
		Uri:                  args.Uri,
		SellerFeeBasisPoints: 0,
		PrimarySaleHappened:  false,
		IsMutable:            true,
		EditionNonce:         nil,
		TokenStandard:        &standard,
		Collection: &leaf.Collection{
			Key:      collectionMint,
			Verified: true,
		},
		Uses:                nil,
		TokenProgramVersion: leaf.TokenProgramVersionOriginal,
		Creators: []leaf.Creator{
			{
				Address:  authority,
				Verified: true,
				Share:    100,
			},
		},
	}
}

// DecodeAmount recovers the amount from a metadata uri
func DecodeAmount(uri string) (uint64, error) {
	query, err := parseQuery(uri)
	if err != nil {
		return 0, err
	}
	if !query.Has(AmountQueryParam) {
		return 0, ErrMissingAmount
	}
	amount, err := strconv.ParseUint(query.Get(AmountQueryParam), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return amount, nil
}

// DecodeCollection recovers the collection mint from a metadata uri
func DecodeCollection(uri string) (pubkey.Pubkey, error) {
	query, err := parseQuery(uri)
	if err != nil {
		return pubkey.Pubkey{}, err
	}
	if !query.Has(CollectionQueryParam) {
		return pubkey.Pubkey{}, ErrMissingCollection
	}
	return pubkey.FromBase58(query.Get(CollectionQueryParam))
}

// AmountOf returns the amount encoded in a leaf record
func AmountOf(m *leaf.MetadataArgs) (uint64, error) {
	return DecodeAmount(m.Uri)
}

func parseQuery(uri string) (url.Values, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse metadata uri: %w", err)
	}
	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("parse metadata uri query: %w", err)
	}
	return query, nil
}

func stripNul(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
