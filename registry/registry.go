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

// Package registry looks up the display metadata of a collection mint
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/pubkey"
)

var ErrUnknownCollection = errors.New("unknown collection")

// Metadata is the display metadata registered for a collection mint
type Metadata struct {
	Name      string
	Symbol    string
	Uri       string
	Mint      pubkey.Pubkey
	Authority pubkey.Pubkey
}

// Registry resolves collection metadata. Implementations return an error
// wrapping ErrUnknownCollection for a mint that was never registered
type Registry interface {
	Lookup(ctx context.Context, mint pubkey.Pubkey) (*Metadata, error)
}

// DatabaseRegistry serves lookups from the collection table. Registered
// metadata never changes, so hits are cached for the life of the registry
type DatabaseRegistry struct {
	db     *database.Database
	logger *slog.Logger
	cache  map[pubkey.Pubkey]*Metadata
	mu     sync.RWMutex
}

func New(db *database.Database, logger *slog.Logger) *DatabaseRegistry {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &DatabaseRegistry{
		db:     db,
		logger: logger.With("component", "registry"),
		cache:  make(map[pubkey.Pubkey]*Metadata),
	}
}

func (r *DatabaseRegistry) Lookup(
	ctx context.Context,
	mint pubkey.Pubkey,
) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	ret, ok := r.cache[mint]
	r.mu.RUnlock()
	if ok {
		return copyMetadata(ret), nil
	}
	collection, err := r.db.GetCollection(mint, nil)
	if err != nil {
		if errors.Is(err, database.ErrCollectionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, mint)
		}
		return nil, fmt.Errorf("lookup collection %s: %w", mint, err)
	}
	ret = &Metadata{
		Name:      collection.Name,
		Symbol:    collection.Symbol,
		Uri:       collection.Uri,
		Mint:      collection.Mint,
		Authority: collection.Authority,
	}
	r.mu.Lock()
	r.cache[mint] = ret
	r.mu.Unlock()
	r.logger.Debug(
		"cached collection metadata",
		"mint", mint.String(),
		"symbol", ret.Symbol,
	)
	return copyMetadata(ret), nil
}

func copyMetadata(m *Metadata) *Metadata {
	tmp := *m
	return &tmp
}
