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

package blob

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tiny-spl/tinyspl/database/plugin/blob/badger"
)

type BlobStore interface {
	Close() error
	NewTransaction(bool) *badger.Txn
	Get(*badger.Txn, []byte) ([]byte, error)
	Set(*badger.Txn, []byte, []byte) error
	Delete(*badger.Txn, []byte) error
	Keys(*badger.Txn, []byte) ([][]byte, error)

	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(*badger.Txn, int64) error
}

// New returns a badger blob store. An empty data directory keeps the store in memory
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	return badger.New(
		badger.WithDataDir(dataDir),
		badger.WithLogger(logger),
		badger.WithPromRegistry(promRegistry),
	)
}
