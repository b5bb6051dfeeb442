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


// Package node assembles the long running tinyspl service: the program with
// its stores and event bus, the logging metadata buffers and the metadata
// API
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tiny-spl/tinyspl"
	"github.com/tiny-spl/tinyspl/event"
	"github.com/tiny-spl/tinyspl/internal/config"
	"github.com/tiny-spl/tinyspl/internal/memtree"
	"github.com/tiny-spl/tinyspl/metabuf"
	"github.com/tiny-spl/tinyspl/metadataapi"
)

type Node struct {
	cfg             *config.Config
	logger          *slog.Logger
	promRegistry    *prometheus.Registry
	program         *tinyspl.Program
	buffers         *metabuf.Manager
	api             *metadataapi.Server
	shutdownTimeout time.Duration
}

func New(cfg *config.Config, logger *slog.Logger) (*Node, error) {
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	program, err := tinyspl.New(
		tinyspl.NewConfig(
			tinyspl.WithTreeService(memtree.New(logger)),
			tinyspl.WithLogger(logger),
			tinyspl.WithDatabasePath(cfg.DatabasePath),
			tinyspl.WithPrometheusRegistry(promRegistry),
			tinyspl.WithTracing(cfg.Tracing),
			tinyspl.WithTracingStdout(cfg.TracingStdout),
			tinyspl.WithShutdownTimeout(shutdownTimeout),
		),
	)
	if err != nil {
		return nil, err
	}
	buffers, err := metabuf.New(
		metabuf.Config{
			Database:     program.Database(),
			EventBus:     program.EventBus(),
			Logger:       logger,
			PromRegistry: promRegistry,
		},
	)
	if err != nil {
		return nil, errors.Join(err, program.Close())
	}
	api, err := metadataapi.New(
		metadataapi.Config{
			ListenAddress: net.JoinHostPort(
				cfg.BindAddr,
				strconv.FormatUint(uint64(cfg.ApiPort), 10),
			),
			Registry:         program.Registry(),
			Buffers:          buffers,
			Gatherer:         promRegistry,
			Logger:           logger,
			MaxRequestsPerIP: cfg.MaxRequestsPerIp,
		},
	)
	if err != nil {
		return nil, errors.Join(err, program.Close())
	}
	return &Node{
		cfg:             cfg,
		logger:          logger.With("component", "node"),
		promRegistry:    promRegistry,
		program:         program,
		buffers:         buffers,
		api:             api,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Program returns the orchestrator run by the node
func (n *Node) Program() *tinyspl.Program {
	return n.program
}

// Buffers returns the logging metadata buffer manager
func (n *Node) Buffers() *metabuf.Manager {
	return n.buffers
}

// ApiAddr returns the address the metadata API is bound to
func (n *Node) ApiAddr() net.Addr {
	return n.api.Addr()
}

// Start launches the metadata API and the event log
func (n *Node) Start(ctx context.Context) error {
	bus := n.program.EventBus()
	for _, evtType := range []event.EventType{
		event.CollectionCreatedEventType,
		event.LeafMintedEventType,
		event.LeafBurnedEventType,
	} {
		bus.SubscribeFunc(evtType, func(evt event.Event) {
			n.logger.Debug(
				"event",
				"type", evt.Type,
				"data", fmt.Sprintf("%+v", evt.Data),
			)
		})
	}
	return n.api.Start(ctx)
}

// Stop shuts down the API and releases the program's resources
func (n *Node) Stop(ctx context.Context) error {
	return errors.Join(n.api.Stop(ctx), n.program.Close())
}

// Run starts a node and blocks until SIGINT or SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	n, err := New(cfg, logger)
	if err != nil {
		return err
	}
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	if err := n.Start(signalCtx); err != nil {
		return errors.Join(err, n.program.Close())
	}
	<-signalCtx.Done()
	logger.Info("signal received, initiating graceful shutdown", "component", "node")
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		n.shutdownTimeout,
	)
	defer cancel()
	if err := n.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown errors occurred", "error", err, "component", "node")
		return err
	}
	logger.Info("shutdown complete", "component", "node")
	return nil
}
