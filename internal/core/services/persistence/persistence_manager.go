package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
	"github.com/lcalzada-xor/wifitrack/internal/core/ports"
)

type configBatch struct {
	standard  []domain.Config
	passpoint []domain.PasspointConfig
}

// Manager handles background writing of saved-configuration sets to storage.
// The tracker hands it copies from the worker goroutine; writes happen here
// so the reconciliation path never blocks on I/O. Only the newest pending
// batch matters, so older queued batches are superseded rather than written.
type Manager struct {
	store    ports.ConfigStore
	batches  chan configBatch
	interval time.Duration
	enabled  bool
	mu       sync.RWMutex
}

// NewManager creates a manager flushing at most once per interval.
func NewManager(store ports.ConfigStore, interval time.Duration) *Manager {
	return &Manager{
		store:    store,
		batches:  make(chan configBatch, 16),
		interval: interval,
		enabled:  true,
	}
}

// Persist queues the latest configuration sets if enabled. Non-blocking: a
// full queue drops the batch, the next config change re-queues a fresher one.
func (m *Manager) Persist(standard []domain.Config, passpoint []domain.PasspointConfig) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.enabled {
		return
	}
	select {
	case m.batches <- configBatch{standard: standard, passpoint: passpoint}:
	default:
	}
}

// IsEnabled returns the current persistence status.
func (m *Manager) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SetEnabled toggles the persistence logic.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Start begins the persistence loop.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	var pending *configBatch

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				m.flush(pending)
				return
			case batch := <-m.batches:
				pending = &batch
			case <-ticker.C:
				m.flush(pending)
				pending = nil
			}
		}
	}()
}

func (m *Manager) flush(batch *configBatch) {
	if batch == nil || m.store == nil {
		return
	}
	if err := m.store.SaveStandardConfigs(batch.standard); err != nil {
		slog.Error("failed to persist saved configs", "error", err)
	}
	if err := m.store.SavePasspointConfigs(batch.passpoint); err != nil {
		slog.Error("failed to persist passpoint configs", "error", err)
	}
}
