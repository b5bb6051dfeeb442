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

package tinyspl

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/tiny-spl/tinyspl/internal/memtree"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Nil(t, cfg.promRegistry)
	assert.Nil(t, cfg.treeService)
	assert.Empty(t, cfg.dataDir)
	assert.False(t, cfg.tracing)
}

func TestNewConfigOptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	trees := memtree.New(nil)
	cfg := NewConfig(
		WithPrometheusRegistry(registry),
		WithTreeService(trees),
		WithDatabasePath("/tmp/tinyspl"),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(5*time.Second),
	)
	assert.Equal(t, registry, cfg.promRegistry)
	assert.Equal(t, trees, cfg.treeService)
	assert.Equal(t, "/tmp/tinyspl", cfg.dataDir)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
}
