// Package memory implements the conversation store in process memory. It is
// used in tests and for running locally without Google Cloud credentials.
package memory

import (
	"context"
	"sync"

	"palmchat-backend/internal/models"
	"palmchat-backend/internal/store"
)

// Store keeps one record per thread in a map.
type Store struct {
	mu      sync.RWMutex
	records map[string]models.ConversationRecord
}

var _ store.ConversationStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[string]models.ConversationRecord)}
}

// Load returns a copy of the record for threadID, or store.ErrNotFound.
func (s *Store) Load(_ context.Context, threadID string) (*models.ConversationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[threadID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := record
	out.History = append([]models.Message(nil), record.History...)
	return &out, nil
}

// Save overwrites the record for threadID with a copy of the given record.
func (s *Store) Save(_ context.Context, threadID string, record *models.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.History = append([]models.Message(nil), record.History...)
	s.records[threadID] = stored
	return nil
}
