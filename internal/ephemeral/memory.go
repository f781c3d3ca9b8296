package ephemeral

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	value    string
	expireAt time.Time
}

// Memory is an in-process Store. Expired entries are removed lazily on Get
// or in bulk by Sweep; without sweeping, keys that are never read again stay
// in memory until the process exits.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	logger  *zap.Logger
}

// NewMemory creates an empty in-process store.
func NewMemory(logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		logger:  logger,
	}
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expireAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Get implements Store. An expired entry is deleted before reporting absent.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expireAt) {
		delete(m.entries, key)
		m.logger.Debug("ephemeral key expired", zap.String("key", key))
		return "", false, nil
	}
	return e.value, true, nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expireAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
