package profile

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	profile   Profile
	expiresAt time.Time
}

// MemoryCache keeps profiles in process. Entries expire after ttl; a zero
// ttl keeps them until deleted.
type MemoryCache struct {
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryCache creates an in-process profile cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the user's profile if present and not expired
func (m *MemoryCache) Get(ctx context.Context, userID string) (Profile, bool, error) {
	m.mu.RLock()
	entry, exists := m.entries[userID]
	m.mu.RUnlock()

	if !exists {
		return Profile{}, false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a Put may have refreshed it
		if current, ok := m.entries[userID]; ok && current.expiresAt == entry.expiresAt {
			delete(m.entries, userID)
		}
		m.mu.Unlock()
		return Profile{}, false, nil
	}
	return entry.profile, true, nil
}

// Put stores or replaces the user's profile
func (m *MemoryCache) Put(ctx context.Context, p Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = m.now()
	}

	entry := memoryEntry{profile: p}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[p.UserID] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes the user's profile
func (m *MemoryCache) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.entries, userID)
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached profiles, expired ones included
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
