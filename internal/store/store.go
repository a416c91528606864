package store

import (
	"context"
	"errors"

	"palmchat-backend/internal/models"
)

// ErrNotFound is returned by Load when no record exists for a thread. A brand
// new thread is a normal condition, not a failure.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable wraps transport failures talking to the backing store.
var ErrUnavailable = errors.New("conversation store unavailable")

// ConversationStore persists at most one ConversationRecord per thread
// identifier. Save overwrites the whole record; there is no versioning and no
// optimistic locking between a Load and a later Save, so concurrent writers
// to the same thread can lose updates.
type ConversationStore interface {
	Load(ctx context.Context, threadID string) (*models.ConversationRecord, error)
	Save(ctx context.Context, threadID string, record *models.ConversationRecord) error
}
