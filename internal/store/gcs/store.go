// Package gcs implements the conversation store on Google Cloud Storage.
// Each thread maps to a single JSON object in a fixed bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"palmchat-backend/internal/models"
	"palmchat-backend/internal/store"
)

// Store persists conversation records as one blob per thread.
type Store struct {
	bucket *storage.BucketHandle
}

var _ store.ConversationStore = (*Store)(nil)

// NewStore creates a Store backed by the named bucket.
func NewStore(client *storage.Client, bucketName string) *Store {
	return &Store{bucket: client.Bucket(bucketName)}
}

func blobName(threadID string) string {
	return threadID + ".json"
}

// Load reads and decodes the record for threadID. Returns store.ErrNotFound
// when no blob exists.
func (s *Store) Load(ctx context.Context, threadID string) (*models.ConversationRecord, error) {
	name := blobName(threadID)

	r, err := s.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", store.ErrUnavailable, name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", store.ErrUnavailable, name, err)
	}

	var record models.ConversationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", name, err)
	}
	return &record, nil
}

// Save serializes the record and overwrites the thread's blob. The write is
// single-shot; atomicity is whatever the object store provides.
func (s *Store) Save(ctx context.Context, threadID string, record *models.ConversationRecord) error {
	name := blobName(threadID)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", name, err)
	}

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: write %s: %v", store.ErrUnavailable, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: write %s: %v", store.ErrUnavailable, name, err)
	}
	return nil
}
