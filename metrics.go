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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type programMetrics struct {
	operations       *prometheus.CounterVec
	operationErrors  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	leavesMinted     prometheus.Counter
	leavesBurned     prometheus.Counter
	amountMinted     prometheus.Counter
	collections      prometheus.Counter
}

func (m *programMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinyspl_operations_total",
			Help: "completed operations by name",
		},
		[]string{"op"},
	)
	m.operationErrors = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinyspl_operation_errors_total",
			Help: "rejected operations by name",
		},
		[]string{"op"},
	)
	m.operationLatency = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tinyspl_operation_duration_seconds",
			Help:    "operation latency by name",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"op"},
	)
	m.leavesMinted = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "tinyspl_leaves_minted_total",
		Help: "balance leaves appended to trees",
	})
	m.leavesBurned = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "tinyspl_leaves_burned_total",
		Help: "balance leaves burned",
	})
	m.amountMinted = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "tinyspl_supply_minted_total",
		Help: "total amount added to collection supply by MintTo",
	})
	m.collections = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "tinyspl_collections_created_total",
		Help: "collections created",
	})
}
