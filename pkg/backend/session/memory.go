package session

import (
	"context"
	"sync"
)

// MemoryStore is the default in-process session store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Message)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}

	out := make([]Message, len(messages))
	copy(out, messages)

	return out, true, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, messages []Message) error {
	stored := make([]Message, len(messages))
	copy(stored, messages)

	s.mu.Lock()
	s.sessions[sessionID] = stored
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return nil
}
