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


// Package metabuf manages logging metadata buffers. A buffer is allocated
// with a fixed size, filled by its authority in pieces, and then emitted on
// the event bus in bounded chunks so indexers can rebuild the full document.
package metabuf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tiny-spl/tinyspl/database"
	"github.com/tiny-spl/tinyspl/event"
	"github.com/tiny-spl/tinyspl/pubkey"
)

const (
	// MaxChunkSize is the largest payload carried by one logged event
	MaxChunkSize = 1238
	// MaxBufferSize bounds the size of a single buffer
	MaxBufferSize = 10 * 1024 * 1024
)

var (
	ErrBufferNotFound    = errors.New("metadata buffer not found")
	ErrInvalidAuthority  = errors.New("signer is not the buffer authority")
	ErrOutOfBounds       = errors.New("upload exceeds buffer bounds")
	ErrInvalidBufferSize = errors.New("invalid buffer size")
)

type Config struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// Manager owns the lifecycle of logging metadata buffers
type Manager struct {
	db       *database.Database
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  *managerMetrics
	// Serializes read-modify-write of buffer contents
	mu sync.Mutex
}

type managerMetrics struct {
	buffersOpen   prometheus.Gauge
	bytesUploaded prometheus.Counter
	chunksLogged  prometheus.Counter
}

func New(cfg Config) (*Manager, error) {
	if cfg.Database == nil {
		return nil, errors.New("metabuf: database is required")
	}
	if cfg.EventBus == nil {
		return nil, errors.New("metabuf: event bus is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	m := &Manager{
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		logger:   cfg.Logger.With("component", "metabuf"),
	}
	if cfg.PromRegistry != nil {
		factory := promauto.With(cfg.PromRegistry)
		m.metrics = &managerMetrics{
			buffersOpen: factory.NewGauge(prometheus.GaugeOpts{
				Name: "tinyspl_metadata_buffers_open",
				Help: "logging metadata buffers allocated and not yet closed",
			}),
			bytesUploaded: factory.NewCounter(prometheus.CounterOpts{
				Name: "tinyspl_metadata_buffer_bytes_uploaded_total",
				Help: "bytes written into logging metadata buffers",
			}),
			chunksLogged: factory.NewCounter(prometheus.CounterOpts{
				Name: "tinyspl_metadata_chunks_logged_total",
				Help: "metadata chunks emitted on the event bus",
			}),
		}
	}
	return m, nil
}

// Init allocates a zero-filled buffer of size bytes owned by authority and
// returns its id
func (m *Manager) Init(
	ctx context.Context,
	authority pubkey.Pubkey,
	size uint32,
) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if size == 0 || size > MaxBufferSize {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBufferSize, size)
	}
	if authority.IsZero() {
		return 0, ErrInvalidAuthority
	}
	var id uint64
	txn := m.db.Transaction(true)
	defer txn.Release()
	err := txn.Do(func(txn *database.Txn) error {
		var err error
		id, err = m.db.NextBufferId(txn)
		if err != nil {
			return err
		}
		return m.db.SetBuffer(
			&database.Buffer{
				Id:        id,
				Authority: authority,
				Data:      make([]byte, size),
			},
			txn,
		)
	})
	if err != nil {
		return 0, fmt.Errorf("init buffer: %w", err)
	}
	if m.metrics != nil {
		m.metrics.buffersOpen.Inc()
	}
	m.logger.Debug(
		"allocated metadata buffer",
		"id", id,
		"size", size,
		"authority", authority.String(),
	)
	return id, nil
}

// Upload copies data into the buffer starting at offset
func (m *Manager) Upload(
	ctx context.Context,
	id uint64,
	signer pubkey.Pubkey,
	offset uint32,
	data []byte,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn := m.db.Transaction(true)
	defer txn.Release()
	err := txn.Do(func(txn *database.Txn) error {
		buf, err := m.authorized(id, signer, txn)
		if err != nil {
			return err
		}
		end := uint64(offset) + uint64(len(data))
		if end > uint64(len(buf.Data)) {
			return fmt.Errorf(
				"%w: offset %d length %d buffer size %d",
				ErrOutOfBounds,
				offset,
				len(data),
				len(buf.Data),
			)
		}
		copy(buf.Data[offset:end], data)
		return m.db.SetBuffer(buf, txn)
	})
	if err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.bytesUploaded.Add(float64(len(data)))
	}
	return nil
}

// Log publishes the buffer contents as a sequence of MetadataLoggedEvent
// chunks of at most MaxChunkSize bytes and returns the number of chunks
func (m *Manager) Log(
	ctx context.Context,
	id uint64,
	signer pubkey.Pubkey,
) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	txn := m.db.Transaction(false)
	buf, err := m.authorized(id, signer, txn)
	txn.Release()
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}
	chunks := 0
	for start := 0; start < len(buf.Data); start += MaxChunkSize {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		end := min(start+MaxChunkSize, len(buf.Data))
		m.eventBus.Publish(
			event.NewEvent(
				event.MetadataLoggedEventType,
				event.MetadataLoggedEvent{
					BufferId: id,
					// Buffer size is capped well below MaxUint32
					Offset: uint32(start), // #nosec G115
					Data:   buf.Data[start:end],
					Final:  end == len(buf.Data),
				},
			),
		)
		chunks++
	}
	if m.metrics != nil {
		m.metrics.chunksLogged.Add(float64(chunks))
	}
	return chunks, nil
}

// Close releases the buffer
func (m *Manager) Close(
	ctx context.Context,
	id uint64,
	signer pubkey.Pubkey,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn := m.db.Transaction(true)
	defer txn.Release()
	err := txn.Do(func(txn *database.Txn) error {
		if _, err := m.authorized(id, signer, txn); err != nil {
			return err
		}
		return m.db.DeleteBuffer(id, txn)
	})
	if err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.buffersOpen.Dec()
	}
	m.logger.Debug("closed metadata buffer", "id", id)
	return nil
}

// Contents returns a copy of the buffer data
func (m *Manager) Contents(id uint64) ([]byte, error) {
	buf, err := m.db.GetBuffer(id, nil)
	if err != nil {
		if errors.Is(err, database.ErrBufferNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrBufferNotFound, id)
		}
		return nil, err
	}
	return buf.Data, nil
}

func (m *Manager) authorized(
	id uint64,
	signer pubkey.Pubkey,
	txn *database.Txn,
) (*database.Buffer, error) {
	buf, err := m.db.GetBuffer(id, txn)
	if err != nil {
		if errors.Is(err, database.ErrBufferNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrBufferNotFound, id)
		}
		return nil, err
	}
	if buf.Authority != signer {
		return nil, ErrInvalidAuthority
	}
	return buf, nil
}
