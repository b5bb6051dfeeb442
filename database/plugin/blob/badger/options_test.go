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

package badger_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tiny-spl/tinyspl/database/plugin/blob/badger"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	b := &badger.BlobStoreBadger{GcEnabled: true}
	opts := []badger.BlobStoreBadgerOptionFunc{
		badger.WithDataDir("/tmp/combined"),
		badger.WithBlockCacheSize(1000000),
		badger.WithIndexCacheSize(2000000),
		badger.WithLogger(logger),
		badger.WithPromRegistry(registry),
		badger.WithGc(false),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.DataDir != "/tmp/combined" {
		t.Errorf("Expected dataDir to be '/tmp/combined', got '%s'", b.DataDir)
	}
	if b.BlockCacheSize != 1000000 {
		t.Errorf(
			"Expected blockCacheSize to be 1000000, got %d",
			b.BlockCacheSize,
		)
	}
	if b.IndexCacheSize != 2000000 {
		t.Errorf(
			"Expected indexCacheSize to be 2000000, got %d",
			b.IndexCacheSize,
		)
	}
	if b.Logger != logger {
		t.Errorf("Expected logger to be set correctly")
	}
	if b.PromRegistry != registry {
		t.Errorf("Expected promRegistry to be set correctly")
	}
	if b.GcEnabled {
		t.Errorf("Expected gcEnabled to be false, got %v", b.GcEnabled)
	}
}
