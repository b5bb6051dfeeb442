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

package metadata

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tiny-spl/tinyspl/database/models"
	"github.com/tiny-spl/tinyspl/database/plugin/metadata/sqlite"
	"github.com/tiny-spl/tinyspl/pubkey"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(*sqlite.Txn, int64) error
	Transaction() *sqlite.Txn

	// Protocol authority
	GetAuthority(
		pubkey.Pubkey, // collectionMint
		*sqlite.Txn,
	) (*models.Authority, error)
	SetAuthority(*models.Authority, *sqlite.Txn) error

	// Collection registry
	GetCollection(
		pubkey.Pubkey, // mint
		*sqlite.Txn,
	) (*models.Collection, error)
	CreateCollection(*models.Collection, *sqlite.Txn) error
}

// New returns a sqlite metadata store. An empty data directory keeps the store in memory
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(
		sqlite.WithDataDir(dataDir),
		sqlite.WithLogger(logger),
		sqlite.WithPromRegistry(promRegistry),
	)
}
