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

// Package tinyspl implements divisible token balances stored as compressed
// leaves of a concurrent Merkle tree. Every balance-changing operation
// conserves the total amount and is bound to a recent root of the tree.
package tinyspl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/event"
	"github.com/tiny-spl/tinyspl/pubkey"
	"github.com/tiny-spl/tinyspl/registry"
)

type Program struct {
	config        Config
	logger        *slog.Logger
	db            *database.Database
	trees         compression.Service
	registry      registry.Registry
	eventBus      *event.EventBus
	metrics       *programMetrics
	shutdownFuncs []func(context.Context) error
	// Serializes read-modify-write of authority supply
	supplyMutex  sync.Mutex
	closeOnce    sync.Once
	ownsDatabase bool
	ownsEventBus bool
}

// New creates a Program. A database and event bus are created when none
// are supplied, and are released by Close
func New(cfg Config) (*Program, error) {
	if cfg.treeService == nil {
		return nil, fmt.Errorf("invalid configuration: %w", ErrNoTreeService)
	}
	p := &Program{
		config:   cfg,
		logger:   cfg.logger.With("component", "tinyspl"),
		trees:    cfg.treeService,
		db:       cfg.database,
		registry: cfg.registry,
		eventBus: cfg.eventBus,
	}
	// Configure tracing
	if cfg.tracing {
		if err := p.setupTracing(); err != nil {
			return nil, err
		}
	}
	if p.db == nil {
		db, err := database.New(
			&database.Config{
				DataDir:      cfg.dataDir,
				Logger:       cfg.logger,
				PromRegistry: cfg.promRegistry,
			},
		)
		if err != nil {
			var dbErr database.CommitTimestampError
			if db != nil && errors.As(err, &dbErr) {
				// Authority and collection records are the source of truth,
				// so a stale buffer commit is only worth a warning
				p.logger.Warn(
					"database commit timestamps disagree",
					"error", err,
				)
			} else {
				err = fmt.Errorf("failed to open database: %w", err)
				if db != nil {
					err = errors.Join(err, db.Close())
				}
				return nil, errors.Join(err, p.runShutdownFuncs())
			}
		}
		p.db = db
		p.ownsDatabase = true
	}
	if p.eventBus == nil {
		p.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
		p.ownsEventBus = true
	}
	if p.registry == nil {
		p.registry = registry.New(p.db, cfg.logger)
	}
	if cfg.promRegistry != nil {
		p.metrics = &programMetrics{}
		p.metrics.init(cfg.promRegistry)
	}
	return p, nil
}

// Database returns the database holding authority and collection records
func (p *Program) Database() *database.Database {
	return p.db
}

// EventBus returns the bus that leaf and collection events are published on
func (p *Program) EventBus() *event.EventBus {
	return p.eventBus
}

// Registry returns the collection metadata registry
func (p *Program) Registry() registry.Registry {
	return p.registry
}

// Authority returns the protocol authority record of a collection
func (p *Program) Authority(collectionMint pubkey.Pubkey) (*AuthorityInfo, error) {
	auth, err := p.db.GetAuthority(collectionMint, nil)
	if err != nil {
		return nil, err
	}
	return authorityInfo(auth), nil
}

// Close flushes traces and releases the resources the Program created
func (p *Program) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.runShutdownFuncs()
		if p.ownsEventBus {
			p.eventBus.Stop()
		}
		if p.ownsDatabase && p.db != nil {
			if closeErr := p.db.Close(); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
			}
		}
		p.logger.Debug("program closed")
	})
	return err
}

func (p *Program) runShutdownFuncs() error {
	shutdownTimeout := 30 * time.Second
	if p.config.shutdownTimeout > 0 {
		shutdownTimeout = p.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var err error
	for _, fn := range p.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	p.shutdownFuncs = nil
	return err
}

// update runs fn as one unit against the tree service and the database. The
// database commits inside the tree unit, so a failed commit also discards
// the tree mutations
func (p *Program) update(
	ctx context.Context,
	fn func(*database.Txn, compression.Txn) error,
) error {
	return p.trees.Update(ctx, func(tree compression.Txn) error {
		txn := p.db.Transaction(true)
		defer txn.Release()
		return txn.Do(func(txn *database.Txn) error {
			return fn(txn, tree)
		})
	})
}

// finish records the outcome of an operation and wraps a failure in an
// OperationError
func (p *Program) finish(
	op string,
	tree pubkey.Pubkey,
	start time.Time,
	err error,
) error {
	if p.metrics != nil {
		p.metrics.operationLatency.WithLabelValues(op).Observe(
			time.Since(start).Seconds(),
		)
	}
	if err != nil {
		if p.metrics != nil {
			p.metrics.operationErrors.WithLabelValues(op).Inc()
		}
		p.logger.Debug(
			"operation rejected",
			"op", op,
			"tree", tree.String(),
			"error", err,
		)
		return &OperationError{Op: op, Tree: tree, Err: err}
	}
	if p.metrics != nil {
		p.metrics.operations.WithLabelValues(op).Inc()
	}
	return nil
}
