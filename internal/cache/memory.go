package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry    Entry
	deadline time.Time
}

// MemoryStore is the default in-process backend.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(item.deadline) {
		return Entry{}, false, nil
	}
	return item.entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry Entry, expiry time.Duration) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	// Keys embed the calendar day, so yesterday's entries are never read again.
	for k, item := range s.items {
		if !now.Before(item.deadline) {
			delete(s.items, k)
		}
	}
	s.items[key] = memoryItem{entry: entry, deadline: now.Add(expiry)}
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
