package session

import (
	"context"
	"sync"
	"time"

	"github.com/shadowmilk/guildforms/internal/models"
)

type memoryEntry struct {
	principal *models.Principal
	expiresAt time.Time
}

// MemoryStore хранит сессии в карте под RWMutex.
// Истечение проверяется при чтении, фоновой очистки нет.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get возвращает личность по идентификатору сессии.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Principal, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return entry.principal, nil
}

// Put сохраняет личность на время ttl.
func (s *MemoryStore) Put(ctx context.Context, id string, principal *models.Principal, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[id] = memoryEntry{
		principal: principal,
		expiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Delete удаляет сессию. Отсутствующая сессия ошибкой не считается.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
