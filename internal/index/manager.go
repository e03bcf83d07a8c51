// Package index manages the lifecycle of the vector index snapshot: loading
// it at startup, rebuilding it when documents change, and publishing each
// rebuilt snapshot atomically so queries never block on ingestion.
package index

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

// Manager owns the current index snapshot. Readers call Current and search
// without locks; writers call Rebuild or RequestRebuild. Rebuilds are
// serialized, and each rebuild reads the full chunk set from storage so a
// rebuild that starts after a write always includes that write.
type Manager struct {
	store        storage.Storage
	dimensions   int
	snapshotPath string
	logger       *zap.Logger

	current atomic.Pointer[vector.Snapshot]

	// rebuildMu serializes rebuilds. rebuildCh coalesces async rebuild
	// requests: at most one request is pending while a rebuild runs.
	rebuildMu sync.Mutex
	rebuildCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a manager publishing snapshots of the given
// dimensionality. The initial snapshot is empty; call Load to restore
// persisted state.
func NewManager(store storage.Storage, dimensions int, snapshotPath string, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		dimensions:   dimensions,
		snapshotPath: snapshotPath,
		logger:       zap.NewNop(),
		rebuildCh:    make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(vector.Empty(dimensions))
	return m
}

// Current returns the latest published snapshot. Never nil.
func (m *Manager) Current() *vector.Snapshot {
	return m.current.Load()
}

// Load restores the persisted snapshot from disk. If the snapshot file is
// missing, corrupt, or has the wrong dimensionality, the index is rebuilt
// from storage instead.
func (m *Manager) Load(ctx context.Context) error {
	snap, err := vector.LoadSnapshot(m.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("snapshot file unusable, rebuilding from storage",
				zap.String("path", m.snapshotPath), zap.Error(err))
		}
		return m.Rebuild(ctx)
	}
	if snap.Dimensions() != m.dimensions {
		m.logger.Warn("snapshot dimensionality changed, rebuilding from storage",
			zap.Int("file", snap.Dimensions()), zap.Int("expected", m.dimensions))
		return m.Rebuild(ctx)
	}
	m.current.Store(snap)
	m.logger.Info("index snapshot loaded",
		zap.String("path", m.snapshotPath), zap.Int("chunks", snap.Size()))
	return nil
}

// Rebuild reads all chunks from storage, builds a fresh snapshot, publishes
// it, and persists it to disk. It returns after the new snapshot is visible
// to Current. Concurrent calls are serialized; each call performs a full
// rebuild against the storage state at the time it acquires the lock.
func (m *Manager) Rebuild(ctx context.Context) error {
	m.rebuildMu.Lock()
	defer m.rebuildMu.Unlock()

	chunks, err := m.store.ListAllChunks(ctx)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}
	snap, err := vector.Build(m.dimensions, chunks)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	m.current.Store(snap)
	m.logger.Info("index rebuilt", zap.Int("chunks", snap.Size()))

	if err := snap.Save(m.snapshotPath); err != nil {
		// The in-memory snapshot is already live; persistence failure only
		// affects the next restart.
		m.logger.Error("failed to persist snapshot", zap.Error(err))
	}
	return nil
}

// RequestRebuild schedules an asynchronous rebuild. Requests arriving while
// a rebuild is running collapse into a single pending rebuild.
func (m *Manager) RequestRebuild() {
	select {
	case m.rebuildCh <- struct{}{}:
	default:
	}
}

// Start runs the background loop serving RequestRebuild until Stop is called.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.doneCh)
		for {
			select {
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			case <-m.rebuildCh:
				if err := m.Rebuild(ctx); err != nil {
					m.logger.Error("background rebuild failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop terminates the background loop and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

// Save persists the current snapshot to disk.
func (m *Manager) Save() error {
	return m.Current().Save(m.snapshotPath)
}
