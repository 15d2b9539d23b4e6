package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryIdempotency keeps idempotency keys in process memory. Used when no
// Redis address is configured.
type MemoryIdempotency struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time // key -> expiresAt
	now  func() time.Time
}

func NewMemoryIdempotency(ttl time.Duration) *MemoryIdempotency {
	if ttl <= 0 {
		ttl = defaultIdempotencyKeyTTL
	}
	return &MemoryIdempotency{
		ttl:  ttl,
		keys: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MemoryIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.cleanupExpiredLocked(now)

	if _, exists := m.keys[key]; exists {
		return false, nil
	}
	m.keys[key] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryIdempotency) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)
	return nil
}

// cleanupExpiredLocked drops expired keys; the caller holds mu.
func (m *MemoryIdempotency) cleanupExpiredLocked(now time.Time) {
	for key, expiresAt := range m.keys {
		if now.After(expiresAt) {
			delete(m.keys, key)
		}
	}
}
